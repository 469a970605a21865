// state.go - interpreter registers, graphics state, font table (§4.3)
package dvi

import (
	"github.com/texpresso-go/texpresso/internal/fixed"
	"github.com/texpresso-go/texpresso/internal/render"
	"github.com/texpresso-go/texpresso/internal/resmgr"
)

// Registers are the DVI VM's motion registers, in raw DVI units (scaled
// points); the page-to-device scale is applied only when composing a CTM.
type Registers struct {
	H, V, W, X, Y, Z int32
}

// LineJoin and LineCaps mirror the PDF graphics state's stroke styling,
// settable via pdf: specials (§4.3.6, §4.4).
type LineJoin int

const (
	MiteredJoin LineJoin = iota
	RoundedJoin
	BevelJoin
)

type LineCaps int

const (
	ButtCaps LineCaps = iota
	RoundCaps
	SquareCaps
)

// ColorState holds the line and fill colors a pdf:color special toggles.
type ColorState struct {
	Line, Fill render.Color
}

// GraphicState is the DVI/pdfTeX graphics state pushed and popped by
// PUSH/POP, extended with the PDF-content-stream fields a pdf: special can
// touch (§4.3.6, §4.4).
type GraphicState struct {
	CTM        render.Matrix
	Colors     ColorState
	LineWidth  float64
	MiterLimit float64
	LineJoin   LineJoin
	LineCaps   LineCaps
	ClipDepth  int
	Dash       [4]float64
	DashLen    int
	DashPhase  float64

	// H, V snapshot the registers at the point this graphics state was
	// entered, so dvi_get_ctm can compute a relative offset (§4.3, "Enter
	// VF").
	H, V int32
}

// FontKind distinguishes a TeX (TFM-metriced) font binding from a native
// XDV font binding.
type FontKind int

const (
	TexFontKind FontKind = iota
	XDVFontKind
)

// FontSpec is a TeX FNT_DEF's checksum/scale/design-size triple.
type FontSpec struct {
	Checksum    uint32
	ScaleFactor fixed.T
	DesignSize  fixed.T
}

// XDVFontSpec is an XDV_NATIVE_FONT_DEF's size/flags/color/shape-axis data.
type XDVFontSpec struct {
	Size    fixed.T
	Flags   uint16
	RGBA    uint32
	Extend  int32
	Slant   int32
	Bold    int32
}

// FontDef is one font-table slot: either a TeX font with its metrics/scale,
// or a native XDV font with its size/style spec.
type FontDef struct {
	Kind FontKind

	// Name is the render.Device font key: the FNT_DEF/XDV_NATIVE_FONT_DEF
	// name this slot was bound to.
	Name string

	TexFont *resmgr.DviFont
	Spec    FontSpec
	XDVFont *resmgr.OutlineFont
	XDVSpec XDVFontSpec
}

// FontTable maps a DVI FNT_DEFn/FNT_NUMn font number to its bound FontDef;
// local to one DVI stream or one VF. Font numbers are not bounded:
// dvi_fonttable_get's abort above 9999 is not enforced, any number gets a slot.
type FontTable struct {
	slots map[int]*FontDef
}

func NewFontTable() *FontTable { return &FontTable{slots: map[int]*FontDef{}} }

// Get returns (creating if absent) the font-table slot for f.
func (t *FontTable) Get(f int) *FontDef {
	if d, ok := t.slots[f]; ok {
		return d
	}
	d := &FontDef{}
	t.slots[f] = d
	return d
}

// State is one interpreter cursor: the current font, graphics state plus its
// push/pop stack, registers plus their push/pop stack, and the font table
// driving FNT_NUM/FNT_DEFn. A virtual font's embedded DVI program runs
// against a fresh State built by Context.EnterVF (§4.3.4 "Enter VF").
type State struct {
	Version   Version
	Font      int
	GS        GraphicState
	Registers Registers
	Fonts     *FontTable

	gsStack        []GraphicState
	registersStack []Registers
}

func NewState(fonts *FontTable) *State {
	return &State{Fonts: fonts}
}

func (st *State) pushGS() {
	st.gsStack = append(st.gsStack, st.GS)
}

func (st *State) popGS() bool {
	if len(st.gsStack) == 0 {
		return false
	}
	n := len(st.gsStack) - 1
	st.GS = st.gsStack[n]
	st.gsStack = st.gsStack[:n]
	return true
}

func (st *State) pushRegisters() bool {
	st.registersStack = append(st.registersStack, st.Registers)
	return true
}

func (st *State) popRegisters() bool {
	if len(st.registersStack) == 0 {
		return false
	}
	n := len(st.registersStack) - 1
	st.Registers = st.registersStack[n]
	st.registersStack = st.registersStack[:n]
	return true
}

// CTM composes the parent graphics-state CTM with the (h,v) motion the
// registers have accumulated since GS.H/GS.V was last reset, scaled by
// scale (dvi_get_ctm).
func (st *State) CTM(scale float64) render.Matrix {
	h := float64(st.Registers.H - st.GS.H)
	v := float64(st.Registers.V - st.GS.V)
	return st.GS.CTM.PreTranslate(h*scale, -v*scale)
}

// SetCTM installs ctm as the current graphics state's transform and resets
// the (h,v) baseline to the current registers (dvi_set_ctm).
func (st *State) SetCTM(ctm render.Matrix) {
	st.GS.CTM = ctm
	st.GS.H = st.Registers.H
	st.GS.V = st.Registers.V
}
