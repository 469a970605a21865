// search.go - forward search: resolve a source file:line to a device
// rectangle, matching synctex_set_target/synctex_find_target and the
// candidate heuristics in synctex_backscan_page (§4.5.2)
package synctex

// SetTarget begins a forward search for path:line, seeded with the page
// currently on screen (used to break ties between matches on either side
// of a page boundary). Passing an empty path cancels any search in
// progress, matching synctex_set_target(stx, NULL, ...).
func (ix *Index) SetTarget(currentPage int, path string, line int) {
	if path == "" {
		ix.targetPath = ""
		return
	}
	ix.targetPath = path
	ix.targetLine = line
	ix.targetCurrentPage = currentPage
	ix.inputTag = 0
	ix.inputFound = 0
}

func (ix *Index) clearSearch() {
	ix.targetPath = ""
}

// findInput locates the input tag whose recorded path matches targetPath,
// resuming from where a prior, now-rolled-back search left off, matching
// synctex_find_input.
func (ix *Index) findInput(data []byte) bool {
	if ix.inputFound != 0 {
		return true
	}
	if ix.inputTag == ix.inputOff.len() {
		return false
	}

	for ix.inputTag < ix.inputOff.len() {
		name := inputName(data, intAbs(ix.inputOff.vals[ix.inputTag]))
		if name != ix.targetPath {
			ix.inputTag++
			continue
		}

		offset := intAbs(ix.inputOff.vals[ix.inputTag])
		pages := ix.PageCount()
		page := 0
		for page < pages && ix.pageOff.vals[page*2+1] < offset {
			page++
		}
		ix.scannedPages = page
		ix.inputFound = 1
		ix.candidatePage = -1
		return true
	}

	return false
}

// backscanPage scans one page's records for the closest match to
// targetLine, updating the running best candidate, matching
// synctex_backscan_page. The page's very first oneliner-adjacent box
// record is the shipout trigger location, not real source content, and is
// skipped (tracked as r0 below) except as an empty-page fallback.
func (ix *Index) backscanPage(data []byte, page int, updatedCandidate *bool) {
	tag := ix.inputTag + 1
	line := ix.targetLine
	bop, _ := ix.PageOffset(page)
	pos := bop

	var r, r0 record
	r0.link.tag = -1
	hadRecord := false

	for {
		var ok bool
		r, pos, ok = parseLine(data, pos)
		if !ok {
			break
		}

		if r0.link.tag == -1 && (r.kind == recEnterH || r.kind == recEnterV) {
			r0 = r
			if r0.link.tag == tag && r0.link.line < line {
				return
			}
			continue
		}

		if isOneliner(r.kind) && r.link.tag == tag {
			if r.link.tag == r0.link.tag && r.link.line == r0.link.line {
				continue
			}

			hadRecord = true

			if r.link.line <= line || (r.link.line > line && ix.candidatePage == -1) {
				ix.candidatePage = page
				ix.candidateX = r.point.x
				ix.candidateY = r.point.y
				ix.candidateLine = r.link.line
				*updatedCandidate = true
			}

			if r.link.line >= line {
				if ix.candidatePage != page {
					if ix.targetCurrentPage == page {
						ix.candidatePage = page
						ix.candidateX = r.point.x
						ix.candidateY = r.point.y
						ix.candidateLine = r.link.line
						*updatedCandidate = true
					}
				}
				ix.clearSearch()
				return
			}
		}
	}

	if !hadRecord {
		if r0.link.tag == tag && r0.link.line >= line {
			if ix.candidatePage == -1 ||
				(page <= ix.targetCurrentPage && ix.candidateLine == r0.link.line) {
				ix.candidatePage = page
				ix.candidateX = r0.point.x
				ix.candidateY = r0.point.y
				ix.candidateLine = r0.link.line
				*updatedCandidate = true
			}
		}
	}
}

// FindTarget advances the forward search set up by SetTarget as far as the
// currently-available data allows, returning the best candidate found so
// far (if any got better this call) plus its page/x/y. Call it again after
// Update brings in more of the .synctex file if it returns ok=false and
// HasTarget is still true.
func (ix *Index) FindTarget(data []byte) (page, x, y int, ok bool) {
	if !ix.HasTarget() {
		return 0, 0, 0, false
	}

	if !ix.findInput(data) {
		return 0, 0, 0, false
	}

	pages := ix.PageCount()
	updated := false
	for ix.HasTarget() && ix.scannedPages < pages {
		ix.backscanPage(data, ix.scannedPages, &updated)
		ix.scannedPages++
	}

	if updated {
		page, x, y = ix.candidatePage, ix.candidateX, ix.candidateY
	}

	if ix.inputClosed(ix.inputTag) {
		ix.clearSearch()
	}

	return page, x, y, updated
}
