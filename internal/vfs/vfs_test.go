package vfs

import "testing"

func TestLookupOrCreateInitialValues(t *testing.T) {
	v := New()
	e := v.LookupOrCreate("main.tex")
	if e.Seen != SeenNever {
		t.Fatalf("Seen = %d, want SeenNever", e.Seen)
	}
	if e.HasSavedBytes || e.HasEditBytes || e.HasFSBytes {
		t.Fatalf("fresh entry should have no content")
	}
	if e.Access != AccessNone {
		t.Fatalf("Access = %v, want AccessNone", e.Access)
	}
}

func TestNormalizePath(t *testing.T) {
	v := New()
	a := v.LookupOrCreate("./main.tex")
	b := v.Lookup("main.tex")
	if a != b {
		t.Fatalf("./main.tex and main.tex should resolve to the same entry")
	}
}

func TestEffectiveContent(t *testing.T) {
	v := New()
	e := v.LookupOrCreate("x.tex")
	v.SetFSBytes(e, []byte("disk"), Stat{})
	if got, ok := e.Content(); !ok || string(got) != "disk" {
		t.Fatalf("Content() = %q, want disk", got)
	}
	v.SetEditBytes(e, []byte("edited"))
	if got, _ := e.Content(); string(got) != "edited" {
		t.Fatalf("Content() = %q, want edited (edit overrides fs)", got)
	}
	v.OpenForRead(e, []byte("saved"))
	if got, _ := e.Content(); string(got) != "saved" {
		t.Fatalf("Content() = %q, want saved (saved overrides edit)", got)
	}
}

func TestRollbackIdempotence(t *testing.T) {
	v := New()
	e := v.LookupOrCreate("a.tex")
	v.OpenForRead(e, []byte("hello"))

	mark := v.Log.Snapshot()

	e2 := v.LookupOrCreate("b.tex")
	v.OpenForRead(e2, []byte("world"))
	if err := v.WriteSaved(e, 0, []byte("H")); err != nil {
		t.Fatal(err)
	}
	v.CloseSaved(e2)

	v.Log.Rollback(mark)

	if !e.HasSavedBytes || string(e.SavedBytes) != "hello" {
		t.Fatalf("a.tex SavedBytes = %q, want hello", e.SavedBytes)
	}
	if e2.HasSavedBytes {
		t.Fatalf("b.tex should have no saved bytes restored to its pre-snapshot state")
	}
}

func TestRollbackCollapsesRepeatedMutations(t *testing.T) {
	v := New()
	e := v.LookupOrCreate("a.tex")
	v.OpenForRead(e, []byte("v0"))
	mark := v.Log.Snapshot()

	v.Log.SetSavedBytes(e, []byte("v1"), AccessWrite)
	v.Log.SetSavedBytes(e, []byte("v2"), AccessWrite)
	v.Log.SetSavedBytes(e, []byte("v3"), AccessWrite)

	if v.Log.Len() != int(mark)+1 {
		t.Fatalf("expected a single collapsed ENTRY record, got log len %d", v.Log.Len())
	}

	v.Log.Rollback(mark)
	if string(e.SavedBytes) != "v0" {
		t.Fatalf("SavedBytes = %q, want v0", e.SavedBytes)
	}
}

func TestOpenFileTableSingletonInvariant(t *testing.T) {
	v := New()
	e := v.LookupOrCreate("doc.tex")
	if err := v.Open.OpenNamed("document", e); err != nil {
		t.Fatal(err)
	}
	if err := v.Open.OpenNamed("document", e); err == nil {
		t.Fatal("expected error opening an already-open singleton stream")
	}
}

func TestOpenFileTableRollback(t *testing.T) {
	v := New()
	e := v.LookupOrCreate("doc.tex")
	mark := v.Log.Snapshot()
	if err := v.Open.Open(3, e); err != nil {
		t.Fatal(err)
	}
	v.Log.Rollback(mark)
	if v.Open.Entry(3) != nil {
		t.Fatal("fid 3 should be closed again after rollback")
	}
}

func TestWriteSavedGrowsBuffer(t *testing.T) {
	v := New()
	e := v.LookupOrCreate("x.tex")
	if err := v.WriteSaved(e, 0, []byte("abc")); err != nil {
		t.Fatal(err)
	}
	if err := v.WriteSaved(e, 3, []byte("def")); err != nil {
		t.Fatal(err)
	}
	if string(e.SavedBytes) != "abcdef" {
		t.Fatalf("SavedBytes = %q, want abcdef", e.SavedBytes)
	}
}
