// manager.go - resource manager: typed caches, font binding, invalidation (§4.2)
package resmgr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/texpresso-go/texpresso/internal/texlog"
)

// Manager lazily loads and caches typed resources, mirroring
// dvi_resmanager's five singly-linked cache lists with Go maps (insertion
// order doesn't matter here; invalidate-by-name does, and a map serves
// that just as well as a linked list).
type Manager struct {
	backend Backend

	fontMap *FontMap

	fonts     map[string]*DviFont
	encodings map[string]*Encoding
	outlines  map[outlineKey]*OutlineFont
	pdfs      map[string]*PDFDoc
	images    map[string]image.Image
}

type outlineKey struct {
	name  string
	index int
}

// New constructs a Manager and eagerly loads the fontmap from up to three
// standard names, matching dvi_resmanager_new's load_fontmap call.
func New(backend Backend) *Manager {
	m := &Manager{
		backend:   backend,
		fonts:     make(map[string]*DviFont),
		encodings: make(map[string]*Encoding),
		outlines:  make(map[outlineKey]*OutlineFont),
		pdfs:      make(map[string]*PDFDoc),
		images:    make(map[string]image.Image),
	}
	m.loadFontMap()
	return m
}

func (m *Manager) loadFontMap() {
	var readers [3]io.Reader
	var closers []io.Closer
	for i, name := range fontMapNames {
		rc, err := openWithExtensions(m.backend, ResMAP, name)
		if err != nil {
			texlog.Warn("resmgr:fontmap:"+name, "resmgr: loading fontmap %s: %v", name, err)
			continue
		}
		if rc == nil {
			continue
		}
		readers[i] = rc
		closers = append(closers, rc)
	}
	fm, err := LoadFontMap(readers[:])
	for _, c := range closers {
		c.Close()
	}
	if err != nil {
		texlog.Warn("resmgr:fontmap", "resmgr: parsing fontmap: %v", err)
		return
	}
	m.fontMap = fm
}

// GetEncoding loads and caches the named .enc file.
func (m *Manager) GetEncoding(name string) *Encoding {
	if enc, ok := m.encodings[name]; ok {
		return enc
	}
	m.encodings[name] = nil // reserve the slot so a failed load isn't retried every frame
	rc, err := openWithExtensions(m.backend, ResENC, name)
	if err != nil || rc == nil {
		return nil
	}
	defer rc.Close()
	enc, err := LoadEncoding(rc)
	if err != nil {
		texlog.Warn("resmgr:enc:"+name, "resmgr: loading encoding %s: %v", name, err)
		return nil
	}
	m.encodings[name] = enc
	return enc
}

// GetOutlineFont loads and caches the outline face at name (TTC face
// index), forcing the AAT charmap when present (§4.2).
func (m *Manager) GetOutlineFont(name string, index int) *OutlineFont {
	key := outlineKey{name, index}
	if f, ok := m.outlines[key]; ok {
		return f
	}
	m.outlines[key] = nil
	texlog.Printf("[dvi] loading %s", name)
	rc, err := openWithExtensions(m.backend, ResFONT, name)
	if err != nil || rc == nil {
		return nil
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		texlog.Warn("resmgr:font:"+name, "resmgr: reading font %s: %v", name, err)
		return nil
	}
	plat, enc := PreferredCharmapPlatform(data)
	f := &OutlineFont{Data: data, Index: index, CharmapPlatform: plat, CharmapEncoding: enc}
	m.outlines[key] = f
	return f
}

// GetTexFont binds a full DviFont: TFM metrics, the fontmap-resolved
// outline and encoding (if any), and recursively loads its VF if the
// backend has a <name>.vf file (dvi_resmanager_get_tex_font).
func (m *Manager) GetTexFont(name string) *DviFont {
	if f, ok := m.fonts[name]; ok {
		return f
	}
	font := &DviFont{Name: name}
	m.fonts[name] = font // reserve before recursing: VF font tables can cycle back

	if e := m.fontMap.Lookup(name); e != nil && e.FontFileName != "" {
		font.Outline = m.GetOutlineFont(e.FontFileName, 0)
		if e.EncFileName != "" {
			font.Encoding = m.GetEncoding(e.EncFileName)
		}
	}

	if rc, err := openWithExtensions(m.backend, ResTFM, name); err == nil && rc != nil {
		tfm, err := LoadTFM(rc)
		rc.Close()
		if err != nil {
			texlog.Warn("resmgr:tfm:"+name, "resmgr: loading TFM for %s: ignoring metrics (%v)", name, err)
		} else {
			font.TFM = tfm
		}
	}

	if rc, err := openWithExtensions(m.backend, ResVF, name); err == nil && rc != nil {
		data, readErr := io.ReadAll(rc)
		rc.Close()
		if readErr == nil {
			vf, err := LoadVF(data, func(fontName string) (*DviFont, error) {
				return m.GetTexFont(fontName), nil
			})
			if err != nil {
				texlog.Warn("resmgr:vf:"+name, "resmgr: loading VF for %s: skipping (%v)", name, err)
			} else {
				font.VF = vf
			}
		}
	}

	if font.VF == nil && font.Outline == nil {
		texlog.Warn("resmgr:nofont:"+name, "resmgr: %s: no font file nor VF file found", name)
	}

	return font
}

// GetPDF loads and caches an embedded PDF document by filename.
func (m *Manager) GetPDF(filename string) (*PDFDoc, error) {
	if doc, ok := m.pdfs[filename]; ok {
		return doc, nil
	}
	rc, err := m.backend.OpenFile(ResPDF, filename)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, fmt.Errorf("resmgr: pdf: %s not found", filename)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	doc, err := OpenPDFDoc(data)
	if err != nil {
		return nil, err
	}
	m.pdfs[filename] = doc
	return doc, nil
}

// GetImage loads and caches a raster image (anything pdf:image embeds
// that isn't itself a PDF), decoded via the standard image codecs plus
// golang.org/x/image's extended format registrations.
func (m *Manager) GetImage(filename string) (image.Image, error) {
	if img, ok := m.images[filename]; ok {
		return img, nil
	}
	rc, err := m.backend.OpenFile(ResPDF, filename) // images share the PDF kind's path resolution (document-relative)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, fmt.Errorf("resmgr: image: %s not found", filename)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	img, err := decodeImage(filename, data)
	if err != nil {
		return nil, fmt.Errorf("resmgr: image: decoding %s: %w", filename, err)
	}
	m.images[filename] = img
	return img, nil
}

// decodeImage dispatches BMP and TIFF to golang.org/x/image's decoders
// (not registered with the stdlib image.RegisterFormat machinery) and
// falls back to the stdlib's PNG/JPEG/GIF registrations otherwise.
func decodeImage(filename string, data []byte) (image.Image, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".bmp":
		return bmp.Decode(bytes.NewReader(data))
	case ".tif", ".tiff":
		return tiff.Decode(bytes.NewReader(data))
	default:
		img, _, err := image.Decode(bytes.NewReader(data))
		return img, err
	}
}

// Invalidate unlinks the cached entry for (kind, name); invalidating MAP
// is illegal (§4.2), matching the original's abort() on RES_MAP.
func (m *Manager) Invalidate(kind ResKind, name string) {
	switch kind {
	case ResPDF:
		delete(m.pdfs, name)
		delete(m.images, name)
	case ResENC:
		delete(m.encodings, name)
	case ResMAP:
		texlog.Fatal("resmgr: invalidating MAP is not supported")
	case ResTFM, ResVF:
		delete(m.fonts, name)
	case ResFONT:
		for k := range m.outlines {
			if k.name == name {
				delete(m.outlines, k)
			}
		}
	}
}

// Close releases the underlying bundle backend.
func (m *Manager) Close() error { return m.backend.Close() }
