package pdfops

import (
	"testing"

	"github.com/texpresso-go/texpresso/internal/dvi"
	"github.com/texpresso-go/texpresso/internal/render"
)

func newExecFixture() (*dvi.Context, *dvi.State, *render.Recorder) {
	st := dvi.NewState(dvi.NewFontTable())
	st.GS.CTM = render.Matrix{A: 1, D: 1}
	rec := render.NewRecorder()
	rec.BeginFrame(612, 792)
	ctx := &dvi.Context{Root: st, Scale: 1, Device: rec}
	return ctx, st, rec
}

func TestExecRectFillDrivesDevice(t *testing.T) {
	ctx, st, rec := newExecFixture()
	e := &Executor{Ctx: ctx, St: st}
	e.Run([]byte("1 0 0 rg 10 20 100 50 re f"))

	frame := rec.LastFrame()
	if len(frame) != 1 {
		t.Fatalf("got %d ops, want 1", len(frame))
	}
	op := frame[0]
	if op.Kind != "rect" {
		t.Fatalf("op.Kind = %q, want rect", op.Kind)
	}
	if op.X0 != 10 || op.Y0 != 20 || op.X1 != 110 || op.Y1 != 70 {
		t.Fatalf("rect = %v,%v,%v,%v want 10,20,110,70", op.X0, op.Y0, op.X1, op.Y1)
	}
	if op.Color.R != 1 || op.Color.G != 0 || op.Color.B != 0 {
		t.Fatalf("color = %+v, want red", op.Color)
	}
}

func TestExecStrokeUsesLineColorAndWidth(t *testing.T) {
	ctx, st, rec := newExecFixture()
	e := &Executor{Ctx: ctx, St: st}
	e.Run([]byte("2 w 0 0 1 RG 0 0 10 10 re S"))

	frame := rec.LastFrame()
	if len(frame) != 1 || frame[0].Kind != "stroke" {
		t.Fatalf("frame = %+v, want one stroke op", frame)
	}
	if frame[0].Color.B != 1 {
		t.Fatalf("stroke color = %+v, want blue", frame[0].Color)
	}
}

func TestExecCmConcatenatesCTM(t *testing.T) {
	ctx, st, rec := newExecFixture()
	e := &Executor{Ctx: ctx, St: st}
	// translate by (100,200), then fill a 1x1 rect at the origin: the
	// filled rect should land at the translated position.
	e.Run([]byte("1 0 0 1 100 200 cm 0 0 0 g 0 0 1 1 re f"))

	frame := rec.LastFrame()
	if len(frame) != 1 {
		t.Fatalf("got %d ops, want 1", len(frame))
	}
	if frame[0].X0 != 100 || frame[0].Y0 != 200 {
		t.Fatalf("rect origin = %v,%v, want 100,200", frame[0].X0, frame[0].Y0)
	}
}

func TestExecNonRectPathSkipsDrawing(t *testing.T) {
	ctx, st, rec := newExecFixture()
	e := &Executor{Ctx: ctx, St: st}
	e.Run([]byte("0 0 m 10 0 l 10 10 l h f"))

	if len(rec.LastFrame()) != 0 {
		t.Fatalf("expected no device ops for an unsupported curved/triangular path, got %v", rec.LastFrame())
	}
}

func TestExecPushPopRestoresColor(t *testing.T) {
	ctx, st, rec := newExecFixture()
	e := &Executor{Ctx: ctx, St: st}
	e.Run([]byte("q 1 0 0 rg Q 0 0 10 10 re f"))

	frame := rec.LastFrame()
	if len(frame) != 1 {
		t.Fatalf("got %d ops, want 1", len(frame))
	}
	if frame[0].Color.R != 0 {
		t.Fatalf("color after q/Q = %+v, want the pre-push black", frame[0].Color)
	}
}
