package synctex

import "testing"

func TestFindTargetMatchesSourceLine(t *testing.T) {
	ix := New()
	ix.Update([]byte(sampleSynctex))

	if ix.HasTarget() {
		t.Fatal("no search should be in progress yet")
	}
	ix.SetTarget(0, "main.tex", 5)
	if !ix.HasTarget() {
		t.Fatal("expected a search in progress")
	}

	page, x, y, ok := ix.FindTarget([]byte(sampleSynctex))
	if !ok {
		t.Fatal("expected a candidate")
	}
	if page != 0 || x != 10 || y != 20 {
		t.Fatalf("page,x,y = %d,%d,%d, want 0,10,20", page, x, y)
	}
}

func TestFindTargetUnknownFileReturnsNoMatch(t *testing.T) {
	ix := New()
	ix.Update([]byte(sampleSynctex))

	ix.SetTarget(0, "other.tex", 5)
	_, _, _, ok := ix.FindTarget([]byte(sampleSynctex))
	if ok {
		t.Fatal("expected no candidate for an input file that was never recorded")
	}
}

func TestSetTargetEmptyPathCancelsSearch(t *testing.T) {
	ix := New()
	ix.SetTarget(0, "main.tex", 5)
	if !ix.HasTarget() {
		t.Fatal("expected a search in progress")
	}
	ix.SetTarget(0, "", 0)
	if ix.HasTarget() {
		t.Fatal("expected the search to be cancelled")
	}
}
