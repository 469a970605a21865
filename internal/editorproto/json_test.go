package editorproto

import (
	"strings"
	"testing"
)

func TestJSONParserSimpleCommand(t *testing.T) {
	p := NewJSONParser(strings.NewReader(`["close", "main.tex"]`))
	v, err := p.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsArray() || len(v.Arr) != 2 {
		t.Fatalf("unexpected value: %+v", v)
	}
	if v.Arr[0].Str != "close" || v.Arr[1].Str != "main.tex" {
		t.Fatalf("unexpected value: %+v", v)
	}
}

func TestJSONParserSuccessiveValues(t *testing.T) {
	p := NewJSONParser(strings.NewReader(`["previous-page"] ["next-page"]`))
	first, err := p.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := p.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Arr[0].Str != "previous-page" || second.Arr[0].Str != "next-page" {
		t.Fatalf("unexpected values: %+v, %+v", first, second)
	}
}

func TestJSONParserNumbersAndNullAndBool(t *testing.T) {
	p := NewJSONParser(strings.NewReader(`["stay-on-top", true, null, 3.5]`))
	v, err := p.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Arr[1].Kind != KindBool || !v.Arr[1].Bool {
		t.Fatalf("unexpected bool element: %+v", v.Arr[1])
	}
	if v.Arr[2].Kind != KindNull {
		t.Fatalf("unexpected null element: %+v", v.Arr[2])
	}
	if v.Arr[3].Kind != KindNumber || v.Arr[3].Num != 3.5 {
		t.Fatalf("unexpected number element: %+v", v.Arr[3])
	}
}

func TestJSONParserThenParseCommand(t *testing.T) {
	p := NewJSONParser(strings.NewReader(`["change", "a.tex", 2, 1, "Z"]`))
	v, err := p.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cmd, err := ParseCommand(v, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Kind != CmdChange || cmd.Offset != 2 || cmd.Remove != 1 || string(cmd.Data) != "Z" {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}
