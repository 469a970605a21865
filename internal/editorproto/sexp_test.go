package editorproto

import (
	"reflect"
	"testing"
)

func feedAll(t *testing.T, p *SexpParser, chunks ...string) (Value, bool) {
	t.Helper()
	var last Value
	var ok bool
	for _, chunk := range chunks {
		data := []byte(chunk)
		for len(data) > 0 {
			n, v, done, err := p.Feed(data)
			if err != nil {
				t.Fatalf("Feed error: %v", err)
			}
			if n == 0 {
				t.Fatalf("Feed consumed 0 bytes of %q", data)
			}
			if done {
				last, ok = v, true
			}
			data = data[n:]
		}
	}
	return last, ok
}

func TestSexpParserSimpleCommand(t *testing.T) {
	p := &SexpParser{}
	v, ok := feedAll(t, p, `(close "main.tex")`)
	if !ok {
		t.Fatal("expected a complete value")
	}
	want := Value{Kind: KindArray, Arr: []Value{
		{Kind: KindName, Str: "close"},
		{Kind: KindString, Str: "main.tex"},
	}}
	if !reflect.DeepEqual(v, want) {
		t.Fatalf("got %+v, want %+v", v, want)
	}
}

func TestSexpParserAcrossChunkBoundaries(t *testing.T) {
	p := &SexpParser{}
	// Split mid-identifier, mid-string, and mid-number.
	v, ok := feedAll(t, p, `(cha`, `nge "a.`, `tex" 1`, `0 2 "hi")`)
	if !ok {
		t.Fatal("expected a complete value once all chunks are fed")
	}
	if len(v.Arr) != 5 || v.Arr[0].Str != "change" || v.Arr[1].Str != "a.tex" {
		t.Fatalf("unexpected parse: %+v", v)
	}
	if v.Arr[2].Num != 10 || v.Arr[3].Num != 2 {
		t.Fatalf("unexpected numbers: %+v, %+v", v.Arr[2], v.Arr[3])
	}
	if v.Arr[4].Str != "hi" {
		t.Fatalf("unexpected string: %+v", v.Arr[4])
	}
}

func TestSexpParserSingleByteFeeds(t *testing.T) {
	p := &SexpParser{}
	input := `(open "x.tex" "body")`
	var v Value
	var ok bool
	for i := 0; i < len(input); i++ {
		n, got, done, err := p.Feed([]byte{input[i]})
		if err != nil {
			t.Fatalf("Feed error at byte %d: %v", i, err)
		}
		if n != 1 {
			t.Fatalf("Feed at byte %d consumed %d, want 1", i, n)
		}
		if done {
			v, ok = got, true
		}
	}
	if !ok {
		t.Fatal("expected a complete value after feeding every byte singly")
	}
	if v.Arr[0].Str != "open" || v.Arr[1].Str != "x.tex" || v.Arr[2].Str != "body" {
		t.Fatalf("unexpected parse: %+v", v)
	}
}

func TestSexpParserNegativeAndFractionalNumbers(t *testing.T) {
	p := &SexpParser{}
	v, ok := feedAll(t, p, `(move-window -1.5 2.25 100 50)`)
	if !ok {
		t.Fatal("expected a complete value")
	}
	if v.Arr[1].Num != -1.5 {
		t.Fatalf("got %v, want -1.5", v.Arr[1].Num)
	}
	if v.Arr[2].Num != 2.25 {
		t.Fatalf("got %v, want 2.25", v.Arr[2].Num)
	}
}

func TestSexpParserStringEscapesAndOctal(t *testing.T) {
	p := &SexpParser{}
	v, ok := feedAll(t, p, "(open \"f\" \"a\\nb\\101c\")")
	if !ok {
		t.Fatal("expected a complete value")
	}
	got := v.Arr[2].Str
	want := "a\nbAc"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSexpParserNestedArray(t *testing.T) {
	p := &SexpParser{}
	v, ok := feedAll(t, p, `(theme (1 0 0) (0 1 0))`)
	if !ok {
		t.Fatal("expected a complete value")
	}
	if len(v.Arr) != 3 || !v.Arr[1].IsArray() || !v.Arr[2].IsArray() {
		t.Fatalf("unexpected parse: %+v", v)
	}
	if v.Arr[1].Arr[0].Num != 1 || v.Arr[2].Arr[1].Num != 1 {
		t.Fatalf("unexpected nested values: %+v", v)
	}
}

func TestSexpParserRejectsUnexpectedCharacter(t *testing.T) {
	p := &SexpParser{}
	_, _, _, err := p.Feed([]byte("(close #)"))
	if err == nil {
		t.Fatal("expected an error for an unexpected character")
	}
}
