// index.go - incremental .synctex index: page/input offset tables and
// rollback-on-shrink, mirroring synctex_new/free/rollback/update (§4.5)
package synctex

// intBuffer is a growable offset list that only ever shrinks from the tail,
// matching the original's struct int_buffer (a manual C realloc-doubling
// array); Go's append already gives us that, so this is just a typed slice
// with the rollback/append helpers synctex.c hangs off int_buffer.
type intBuffer struct {
	vals []int
}

func (b *intBuffer) len() int { return len(b.vals) }

func (b *intBuffer) append(offset int) {
	b.vals = append(b.vals, offset)
}

// rollback drops every trailing entry whose absolute value is at or past
// offset, matching ib_rollback's `int_abs(ptr[len-1]) >= offset` loop.
func (b *intBuffer) rollback(offset int) {
	for b.len() > 0 && intAbs(b.vals[b.len()-1]) >= offset {
		b.vals = b.vals[:b.len()-1]
	}
}

func intAbs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

// Index is the incremental SyncTeX record index built by Update as a
// .synctex file grows, supporting backward search (Scan, click -> source)
// and forward search (SetTarget/FindTarget, source -> click), matching
// synctex_t.
type Index struct {
	inputOff, pageOff, closeOff, closeInp intBuffer
	bol, cur                              int

	// Forward search state, matching the Step 0..2 fields of synctex_t.
	targetPath        string
	targetLine        int
	targetCurrentPage int

	inputTag, inputFound int

	scannedPages int

	candidatePage, candidateLine, candidateX, candidateY int
}

// New returns an empty index with no search in progress.
func New() *Index {
	return &Index{}
}

// HasTarget reports whether a forward search is currently in progress.
func (ix *Index) HasTarget() bool {
	return ix.targetPath != ""
}

// Rollback discards every record whose byte offset is at or past offset,
// matching synctex_rollback; it also re-opens any input file that was
// closed at or after offset and clamps any in-progress forward search's
// scan position back within the shrunk tables.
func (ix *Index) Rollback(offset int) {
	ix.pageOff.rollback(offset)
	ix.inputOff.rollback(offset)
	ix.closeOff.rollback(offset)

	for ix.closeInp.len() > ix.closeOff.len() {
		last := ix.closeInp.len() - 1
		index := ix.closeInp.vals[last]
		ix.closeInp.vals = ix.closeInp.vals[:last]
		if index < ix.inputOff.len() {
			if !ix.inputClosed(index) {
				panic("synctex: rollback: input not marked closed")
			}
			ix.inputOff.vals[index] = -ix.inputOff.vals[index]
		}
	}

	if ix.cur > offset {
		ix.cur = offset
	}

	if ix.HasTarget() {
		if ix.inputTag >= ix.inputOff.len() {
			ix.inputTag = ix.inputOff.len()
			ix.inputFound = 0
		} else {
			pages := ix.pageOff.len() / 2
			if ix.scannedPages > pages {
				ix.scannedPages = pages
			}
			if ix.candidatePage > pages {
				ix.candidatePage = -1
			}
		}
	}
}

// PageCount returns the number of pages fully delimited so far.
func (ix *Index) PageCount() int { return ix.pageOff.len() / 2 }

// InputCount returns the number of input files registered so far.
func (ix *Index) InputCount() int { return ix.inputOff.len() }

// PageOffset returns the byte offsets of the `{N` and `}N` lines bracketing
// the 0-based page index.
func (ix *Index) PageOffset(index int) (bop, eop int) {
	if index*2+1 >= ix.pageOff.len() {
		panic("synctex: page index out of range")
	}
	return ix.pageOff.vals[2*index], ix.pageOff.vals[2*index+1]
}

// InputOffset returns the byte offset of the `Input:N:...` line for the
// 0-based input index.
func (ix *Index) InputOffset(index int) int {
	if index >= ix.inputOff.len() {
		panic("synctex: input index out of range")
	}
	return intAbs(ix.inputOff.vals[index])
}

func (ix *Index) inputClosed(index int) bool {
	if index >= ix.inputOff.len() {
		panic("synctex: input index out of range")
	}
	return ix.inputOff.vals[index] < 0
}
