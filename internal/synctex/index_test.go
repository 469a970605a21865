package synctex

import "testing"

const sampleSynctex = "Input:1:main.tex\n{1\nx1,5:10,20\n}1\n"

func TestUpdateBuildsInputAndPageTables(t *testing.T) {
	ix := New()
	ix.Update([]byte(sampleSynctex))

	if ix.InputCount() != 1 {
		t.Fatalf("InputCount() = %d, want 1", ix.InputCount())
	}
	if ix.PageCount() != 1 {
		t.Fatalf("PageCount() = %d, want 1", ix.PageCount())
	}
	if off := ix.InputOffset(0); off != 0 {
		t.Fatalf("InputOffset(0) = %d, want 0", off)
	}
	bop, eop := ix.PageOffset(0)
	if bop != 17 || eop != 31 {
		t.Fatalf("PageOffset(0) = %d,%d, want 17,31", bop, eop)
	}
}

func TestUpdateIsIncremental(t *testing.T) {
	ix := New()
	ix.Update([]byte(sampleSynctex[:18])) // just the Input: line
	if ix.InputCount() != 1 || ix.PageCount() != 0 {
		t.Fatalf("after partial feed: input=%d page=%d, want 1,0", ix.InputCount(), ix.PageCount())
	}
	ix.Update([]byte(sampleSynctex))
	if ix.PageCount() != 1 {
		t.Fatalf("after full feed: PageCount() = %d, want 1", ix.PageCount())
	}
}

func TestRollbackOnShrink(t *testing.T) {
	ix := New()
	ix.Update([]byte(sampleSynctex))
	if ix.PageCount() != 1 {
		t.Fatalf("setup: PageCount() = %d, want 1", ix.PageCount())
	}

	ix.Update([]byte(sampleSynctex[:10])) // shrink below the page's offsets
	if ix.PageCount() != 0 {
		t.Fatalf("after rollback: PageCount() = %d, want 0", ix.PageCount())
	}
	// the Input: line's own offset (0) is before the truncation point (10),
	// so it survives the rollback - only records recorded at or after the
	// new length are discarded.
	if ix.InputCount() != 1 {
		t.Fatalf("after rollback: InputCount() = %d, want 1", ix.InputCount())
	}
}
