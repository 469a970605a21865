// scan.go - backward search: resolve a device-space click to the smallest
// enclosing source record, matching synctex_scan/parse_tree (§4.5.2)
package synctex

import "math"

// Rect is a device-space integer rectangle in SyncTeX's y-down, baseline-
// relative convention (y0 is point.y - height, y1 is point.y + depth).
type Rect struct {
	X0, Y0, X1, Y1 int
}

func (r Rect) area() float64 {
	return float64(r.Y1-r.Y0) * float64(r.X1-r.X0)
}

func (r Rect) containsPoint(x, y int) bool {
	return x >= r.X0 && x < r.X1 && y >= r.Y0 && y < r.Y1
}

// Target is the outcome of a backward (Scan) or forward (FindTarget)
// search: a source file position paired with its device-space rectangle.
type Target struct {
	File   string
	Line   int
	Column int
	Rect   Rect
}

type candidate struct {
	area float64
	rect Rect
	link link
	file string
}

func (ix *Index) filenameForTag(data []byte, tag int) (string, bool) {
	if tag <= 0 {
		return "", false
	}
	name := inputName(data, intAbs(ix.inputOff.vals[tag-1]))
	return name, name != ""
}

// Scan finds the smallest source record (by device-space area) enclosing
// (x, y) on the given 0-based page, matching synctex_scan. It reports
// ok=false when the page has no match (or doesn't exist).
func (ix *Index) Scan(data []byte, page int, x, y int) (Target, bool) {
	if ix.PageCount() <= page {
		return Target{}, false
	}

	bop, _ := ix.PageOffset(page)
	c := candidate{area: math.Inf(1)}

	ix.parseTree(data, bop, x, y, &c)

	if c.link.tag == 0 {
		return Target{}, false
	}
	return Target{File: c.file, Line: c.link.line, Column: c.link.column, Rect: c.rect}, true
}

func recordRect(r record) Rect {
	return Rect{
		X0: r.point.x,
		X1: r.point.x + r.size.width,
		Y0: r.point.y - r.size.height,
		Y1: r.point.y + r.size.depth,
	}
}

// parseTree walks the page body's record tree from pos, narrowing c to the
// smallest-area record containing (x, y), matching parse_tree.
func (ix *Index) parseTree(data []byte, pos int, x, y int, c *candidate) {
	var saved []size

	for {
		r, next, ok := parseLine(data, pos)
		if !ok {
			return
		}
		pos = next
		rect := recordRect(r)

		switch r.kind {
		case recCurrent, recKern, recGlue, recMath:
			if rect.Y0 <= y && y <= rect.Y1 {
				if rect.X0 < x {
					rect.X1 = x
				} else {
					rect.X1 = rect.X0
					rect.X0 = x
				}
				area := rect.area()
				if area < c.area {
					if name, has := ix.filenameForTag(data, r.link.tag); has {
						c.area = area
						c.rect = rect
						c.link = r.link
						c.file = name
					}
				}
			}

		case recEnterH, recEnterV:
			if rect.containsPoint(x, y) {
				area := rect.area()
				if area < c.area {
					if name, has := ix.filenameForTag(data, r.link.tag); has {
						c.area = area
						c.rect = rect
						c.link = r.link
						c.file = name
					}
				}
				if len(saved) >= maxNestDepth {
					panic("synctex: box nesting exceeds maxNestDepth")
				}
				saved = append(saved, r.size)
			} else {
				pos = skipRecord(data, pos, r)
			}

		case recLeaveH, recLeaveV:
			if len(saved) == 0 {
				return
			}
			saved = saved[:len(saved)-1]

		case recOther:
			// no-op, matches the original's empty default case
		}
	}
}
