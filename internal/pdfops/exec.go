// exec.go - content-stream operator execution against a DVI graphics state
// (§4.4, dvi_special.c's pdf_code switch)
package pdfops

import (
	"github.com/texpresso-go/texpresso/internal/dvi"
	"github.com/texpresso-go/texpresso/internal/render"
	"github.com/texpresso-go/texpresso/internal/texlog"
)

// rectPath is the only path shape this executor can hand to render.Device,
// which exposes FillRect/StrokeRect but no general path-fill primitive
// (render.Device is an external boundary component texpresso-go never
// backs with a concrete rasterizer, §4.3/component 8). A content stream
// that draws one `re` and immediately paints it -- overwhelmingly the
// common case for colored backgrounds and rules emitted by pdf: drivers --
// renders correctly; anything built from m/l/c/v/y curves is tracked only
// well enough to keep the graphics state consistent and is logged once
// rather than silently dropped.
type rectPath struct {
	x, y, w, h float64
	valid      bool // false once any non-rect construction operator runs
	present    bool // true once at least one construction operator ran
}

// Executor runs one PDF content stream (a pdf: code block, an embedded
// image's form XObject if ever supported, or a bt/btrans-opened region)
// against a DVI interpreter State and its Device.
type Executor struct {
	Ctx  *dvi.Context
	St   *dvi.State
	path rectPath
}

// Run executes every command in data in sequence (pdf_code).
func (e *Executor) Run(data []byte) {
	lex := NewLexer(data)
	for {
		cmd, ok := lex.Next()
		if !ok {
			return
		}
		e.exec(cmd)
	}
}

func (e *Executor) exec(cmd Command) {
	ops := cmd.Operands
	gs := &e.St.GS
	switch cmd.Op {
	case OpQ_push:
		dvi.ExecPush(e.St)
	case OpQ_pop:
		dvi.ExecPop(e.St)
	case OpCm:
		if len(ops) < 6 {
			return
		}
		m := render.Matrix{A: ops[0].Float(), B: ops[1].Float(), C: ops[2].Float(), D: ops[3].Float(), E: ops[4].Float(), F: ops[5].Float()}
		gs.CTM = gs.CTM.PreConcat(m)

	case OpW:
		if len(ops) >= 1 {
			gs.LineWidth = ops[0].Float()
		}
	case OpJ:
		if len(ops) >= 1 {
			gs.LineCaps = capFromInt(int(ops[0].Float()))
		}
	case OpJoin:
		if len(ops) >= 1 {
			gs.LineJoin = joinFromInt(int(ops[0].Float()))
		}
	case OpM:
		if len(ops) >= 1 {
			gs.MiterLimit = ops[0].Float()
		}
	case OpD:
		if len(ops) >= 2 && ops[0].Kind == ValArray {
			gs.DashLen = len(ops[0].Array)
			for i, v := range ops[0].Array {
				if i >= len(gs.Dash) {
					break
				}
				gs.Dash[i] = v.Float()
			}
			gs.DashPhase = ops[1].Float()
		}
	case OpRi, OpI, OpGs:
		// rendering intent, flatness, and ExtGState references don't affect
		// the simplified graphics state this interpreter maintains.

	case OpMoveTo, OpLineTo, OpCurveTo, OpCurveToV, OpCurveToY, OpClosePath:
		e.path.valid = false
		e.path.present = true
	case OpRect:
		if len(ops) >= 4 {
			if !e.path.present {
				e.path = rectPath{x: ops[0].Float(), y: ops[1].Float(), w: ops[2].Float(), h: ops[3].Float(), valid: true, present: true}
			} else {
				e.path.valid = false
			}
		}

	case OpFill, OpFillEO:
		e.paint(true, false)
	case OpStroke:
		e.paint(false, true)
	case OpFillStrk, OpFillStrkEO, OpCloseFillStrk, OpCloseFillStrkEO:
		e.paint(true, true)
	case OpCloseStrk:
		e.paint(false, true)
	case OpNoOp, OpClip, OpClipEO:
		e.path = rectPath{}

	case OpG:
		gs.Colors.Line = gray(ops)
	case Opg:
		gs.Colors.Fill = gray(ops)
	case OpRG:
		gs.Colors.Line = rgb(ops)
	case Oprg:
		gs.Colors.Fill = rgb(ops)
	case OpK:
		gs.Colors.Line = cmyk(ops)
	case Opk:
		gs.Colors.Fill = cmyk(ops)
	case OpSC, OpSCN:
		gs.Colors.Line = genericColor(ops)
	case OpSc, OpScn:
		gs.Colors.Fill = genericColor(ops)
	case OpCS, OpCs:
		// color-space selection itself: SC/sc's component count already
		// tells genericColor how to interpret the values that follow.

	case OpBT, OpET, OpTc, OpTw, OpTz, OpTL, OpTf, OpTr, OpTs, OpTd, OpTD, OpTm,
		OpTStar, OpTj, OpTJ, OpQuote, OpDoubleQuote, OpD0, OpD1,
		OpSh, OpDo, OpMP, OpDP, OpBMC, OpBDC, OpEMC, OpBX, OpEX, OpBI, OpID, OpEI:
		texlog.Warn("pdfops:unhandled:"+cmd.Keyword, "pdfops: %s: unhandled content-stream operator", cmd.Keyword)

	default:
		texlog.Warn("pdfops:unknown:"+cmd.Keyword, "pdfops: unrecognized content-stream operator %q", cmd.Keyword)
	}
}

// paint flushes the pending path to the device, honoring fill and/or
// stroke, then clears path state (a pdf: region never spans two
// distinct shapes between paints in the documents this interpreter
// targets, so painting always resets to an empty path).
func (e *Executor) paint(fill, stroke bool) {
	defer func() { e.path = rectPath{} }()
	if !e.path.present {
		return
	}
	if !e.path.valid {
		texlog.Warn("pdfops:complexpath", "pdfops: skipping fill/stroke of a non-rectangular path (unsupported by render.Device)")
		return
	}
	gs := &e.St.GS
	x0, y0 := applyMatrix(gs.CTM, e.path.x, e.path.y)
	x1, y1 := applyMatrix(gs.CTM, e.path.x+e.path.w, e.path.y+e.path.h)
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if e.Ctx.Device == nil {
		return
	}
	if fill {
		e.Ctx.Device.FillRect(x0, y0, x1, y1, gs.Colors.Fill)
	}
	if stroke {
		e.Ctx.Device.StrokeRect(x0, y0, x1, y1, gs.Colors.Line, gs.LineWidth)
	}
}

// applyMatrix maps (x,y) through m, in the same a*x+c*y+e convention
// render.Matrix documents.
func applyMatrix(m render.Matrix, x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.E, m.B*x + m.D*y + m.F
}

func capFromInt(v int) dvi.LineCaps {
	switch v {
	case 1:
		return dvi.RoundCaps
	case 2:
		return dvi.SquareCaps
	default:
		return dvi.ButtCaps
	}
}

func joinFromInt(v int) dvi.LineJoin {
	switch v {
	case 1:
		return dvi.RoundedJoin
	case 2:
		return dvi.BevelJoin
	default:
		return dvi.MiteredJoin
	}
}

func gray(ops []Value) render.Color {
	if len(ops) < 1 {
		return render.Color{}
	}
	g := ops[0].Float()
	return render.Color{R: g, G: g, B: g}
}

func rgb(ops []Value) render.Color {
	if len(ops) < 3 {
		return render.Color{}
	}
	return render.Color{R: ops[0].Float(), G: ops[1].Float(), B: ops[2].Float()}
}

func cmyk(ops []Value) render.Color {
	if len(ops) < 4 {
		return render.Color{}
	}
	c, m, y, k := ops[0].Float(), ops[1].Float(), ops[2].Float(), ops[3].Float()
	return render.Color{R: (1 - c) * (1 - k), G: (1 - m) * (1 - k), B: (1 - y) * (1 - k)}
}

// genericColor interprets an SC/sc/SCN/scn operand list by its numeric
// component count (1=gray, 3=rgb, 4=cmyk), ignoring a trailing pattern
// name operand SCN/scn may carry; this approximates the original's full
// ICC/Indexed/Separation color-space resolution (via fz_colorspace) with
// the three device spaces real pdf: drivers actually emit colors through.
func genericColor(ops []Value) render.Color {
	var nums []Value
	for _, v := range ops {
		if v.Kind == ValNumber {
			nums = append(nums, v)
		}
	}
	switch len(nums) {
	case 1:
		return gray(nums)
	case 3:
		return rgb(nums)
	case 4:
		return cmyk(nums)
	default:
		return render.Color{}
	}
}
