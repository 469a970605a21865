// context.go - shared interpreter context: scale, resource manager, device (§4.3)
package dvi

import (
	"github.com/texpresso-go/texpresso/internal/fixed"
	"github.com/texpresso-go/texpresso/internal/render"
	"github.com/texpresso-go/texpresso/internal/resmgr"
)

// SyncPos is the (file, line) source location associated with the text
// currently being typeset, supplied by the caller (the executor threads
// SyncTeX position updates in as it replays `Update`, §4.5/§6.1 QSEEN).
type SyncPos struct {
	File string
	Line int
}

// Context is the state shared by every State (root and VF sub-states)
// interpreting one DVI/XDV stream: the page-to-device scale derived from
// the preamble, the resource manager backing font/image/PDF lookups, the
// drawing device, and the optional SyncTeX callback (dvi_context).
type Context struct {
	Manager *resmgr.Manager
	Device  render.Device
	Scale   float64

	Root *State

	Sync    render.SyncCallback
	SyncPos SyncPos

	// SpecialHandler dispatches an XXXn special's text payload; nil or a
	// false return just logs and continues (§4.3.6 specials are installed
	// by internal/pdfops, which owns the `pdf:`/`src:`/color-stack special
	// grammar this interpreter doesn't parse itself).
	SpecialHandler func(ctx *Context, st *State, text string) bool

	// InitSpecialHandler receives the text of every XXXn special that
	// IncDvi's fontdef replay passes before a page's main replay loop
	// (dvi_init_special / incdvi_parse_fontdef's XXXn prescan);
	// internal/pdfops installs one that acts on pdfcolorstackinit.
	InitSpecialHandler func(ctx *Context, st *State, text string)
}

// NewContext builds a Context with a fresh root State over a new font table.
func NewContext(mgr *resmgr.Manager, dev render.Device) *Context {
	c := &Context{Manager: mgr, Device: dev}
	c.Root = NewState(NewFontTable())
	return c
}

// ResetFrame re-initializes the root state's graphics state to the
// standard DVI device CTM (a one-inch margin, y flipped to point down) and
// clears both stacks, matching what dvi_context_begin_frame does to the
// root state before every page replay.
func (ctx *Context) ResetFrame() {
	ctx.Root.registersStack = ctx.Root.registersStack[:0]
	ctx.Root.gsStack = ctx.Root.gsStack[:0]
	ctx.Root.GS = GraphicState{
		CTM: render.Matrix{A: 1, D: -1, E: 72, F: 72},
	}
}

// EnterVF builds the sub-state a virtual font's embedded DVI program runs
// against: a fresh CTM pre-scaled by the VF scale factor, zeroed registers,
// empty stacks, version VF, and the VF's own font table (§4.3.4 "Enter VF").
func (ctx *Context) EnterVF(parent *State, fonts *FontTable, defaultFont int, scaleFactor fixed.T) *State {
	vf := NewState(fonts)
	vf.Version = VersionVF
	vf.Font = defaultFont
	s := fixed.ToFloat(scaleFactor)
	vf.GS = parent.GS
	vf.GS.CTM = parent.CTM(ctx.Scale).PreScale(s, s)
	vf.GS.H, vf.GS.V = 0, 0
	vf.Registers = Registers{}
	return vf
}
