// pdfdoc.go - embedded PDF page geometry for pdf:image and pdf:pagesize (§4.3.6)
package resmgr

import (
	"bytes"
	"fmt"

	"seehuhn.de/go/pdf"
)

// PageBox is one of the five box types a PDF page dictionary may define;
// MediaBox is the only one guaranteed present (inherited from the page
// tree root if absent on the page itself).
type PageBox int

const (
	MediaBox PageBox = iota
	CropBox
	ArtBox
	BleedBox
	TrimBox
)

func (b PageBox) pdfName() pdf.Name {
	switch b {
	case CropBox:
		return "CropBox"
	case ArtBox:
		return "ArtBox"
	case BleedBox:
		return "BleedBox"
	case TrimBox:
		return "TrimBox"
	default:
		return "MediaBox"
	}
}

// Rect is a PDF rectangle in default user space units (1/72 in).
type Rect struct{ LLx, LLy, URx, URy float64 }

func (r Rect) Width() float64  { return r.URx - r.LLx }
func (r Rect) Height() float64 { return r.URy - r.LLy }

// PDFDoc wraps an opened embedded-PDF resource so the DVI interpreter's
// pdf:image special can resolve page count and box geometry (§4.3.6)
// without reaching into pdfops's content-stream interpreter.
type PDFDoc struct {
	reader *pdf.Reader
	pages  []pdf.Reference
}

// OpenPDFDoc parses the PDF trailer and walks the page tree once, caching
// the flattened leaf-page list (pdf:image only ever addresses pages by
// 1-based index).
func OpenPDFDoc(data []byte) (*PDFDoc, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)), nil)
	if err != nil {
		return nil, fmt.Errorf("resmgr: pdf: %w", err)
	}
	pages, err := collectPages(r)
	if err != nil {
		return nil, fmt.Errorf("resmgr: pdf: page tree: %w", err)
	}
	return &PDFDoc{reader: r, pages: pages}, nil
}

func collectPages(r *pdf.Reader) ([]pdf.Reference, error) {
	root, err := pdf.GetDict(r, r.Catalog.Pages)
	if err != nil {
		return nil, err
	}
	var pages []pdf.Reference
	var walk func(node pdf.Dict) error
	walk = func(node pdf.Dict) error {
		kids, _ := pdf.GetArray(r, node["Kids"])
		if kids == nil {
			return nil
		}
		for _, kid := range kids {
			ref, ok := kid.(pdf.Reference)
			if !ok {
				continue
			}
			dict, err := pdf.GetDict(r, ref)
			if err != nil {
				return err
			}
			if dict["Type"] == pdf.Name("Pages") {
				if err := walk(dict); err != nil {
					return err
				}
			} else {
				pages = append(pages, ref)
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return nil, err
	}
	return pages, nil
}

// PageCount returns the number of leaf pages.
func (d *PDFDoc) PageCount() int { return len(d.pages) }

// Box resolves the requested box for 1-based page n from the page's own
// dictionary; a box other than MediaBox that the page omits falls back to
// the page's MediaBox. Boxes set only on ancestor Pages nodes are not
// consulted, so a page that inherits its MediaBox yields an error.
func (d *PDFDoc) Box(n int, box PageBox) (Rect, error) {
	if n < 1 || n > len(d.pages) {
		return Rect{}, fmt.Errorf("resmgr: pdf: page %d out of range (1..%d)", n, len(d.pages))
	}
	dict, err := pdf.GetDict(d.reader, d.pages[n-1])
	if err != nil {
		return Rect{}, err
	}
	name := box.pdfName()
	arr, _ := pdf.GetArray(d.reader, dict[name])
	if arr == nil && box != MediaBox {
		arr, _ = pdf.GetArray(d.reader, dict["MediaBox"])
	}
	if arr == nil {
		return Rect{}, fmt.Errorf("resmgr: pdf: page %d has no %s", n, name)
	}
	return rectFromArray(arr)
}

func rectFromArray(arr pdf.Array) (Rect, error) {
	if len(arr) != 4 {
		return Rect{}, fmt.Errorf("resmgr: pdf: malformed rectangle")
	}
	vals := make([]float64, 4)
	for i, v := range arr {
		switch n := v.(type) {
		case pdf.Integer:
			vals[i] = float64(n)
		case pdf.Real:
			vals[i] = float64(n)
		default:
			return Rect{}, fmt.Errorf("resmgr: pdf: non-numeric rectangle element")
		}
	}
	return Rect{LLx: vals[0], LLy: vals[1], URx: vals[2], URy: vals[3]}, nil
}
