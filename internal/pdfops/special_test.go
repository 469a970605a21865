package pdfops

import (
	"testing"

	"github.com/texpresso-go/texpresso/internal/dvi"
	"github.com/texpresso-go/texpresso/internal/render"
)

func newSpecialFixture() (*dvi.Context, *dvi.State, *Handler) {
	ctx, st, _ := newExecFixtureWithRecorder()
	h := NewHandler()
	h.Wire(ctx)
	return ctx, st, h
}

func newExecFixtureWithRecorder() (*dvi.Context, *dvi.State, *render.Recorder) {
	return newExecFixture()
}

func TestSpecialColorPushPop(t *testing.T) {
	ctx, st, _ := newSpecialFixture()

	if !ctx.SpecialHandler(ctx, st, "color push rgb 1 0 0") {
		t.Fatal("color push should be handled")
	}
	if st.GS.Colors.Fill.R != 1 {
		t.Fatalf("fill color = %+v, want red", st.GS.Colors.Fill)
	}
	if !ctx.SpecialHandler(ctx, st, "color pop") {
		t.Fatal("color pop should be handled")
	}
	if st.GS.Colors.Fill.R != 0 {
		t.Fatalf("fill color after pop = %+v, want reset to black", st.GS.Colors.Fill)
	}
}

func TestSpecialXDirectCTM(t *testing.T) {
	ctx, st, _ := newSpecialFixture()
	st.GS.CTM = render.Matrix{A: 1, D: 1}

	if !ctx.SpecialHandler(ctx, st, "x: matrix 1 0 0 1 50 60") {
		t.Fatal("x: should be handled")
	}
	if st.GS.CTM.E != 50 || st.GS.CTM.F != 60 {
		t.Fatalf("CTM = %+v, want E=50 F=60", st.GS.CTM)
	}
}

func TestSpecialPDFCodeRunsContentStream(t *testing.T) {
	ctx, st, _ := newSpecialFixture()
	rec := ctx.Device.(*render.Recorder)

	if !ctx.SpecialHandler(ctx, st, "pdf: code (1 0 0 rg 0 0 10 10 re f)") {
		t.Fatal("pdf: code should be handled")
	}
	frame := rec.LastFrame()
	if len(frame) != 1 || frame[0].Kind != "rect" {
		t.Fatalf("frame = %+v, want one rect op", frame)
	}
}

func TestSpecialPdfColorstackPushCurrentPop(t *testing.T) {
	ctx, st, h := newSpecialFixture()
	h.InitSpecial(ctx, st, "pdfcolorstackinit 0 page direct(rgb 0 0 0)")

	ctx.SpecialHandler(ctx, st, "pdfcolorstack 0 push(rgb 0 1 0)")
	if st.GS.Colors.Fill.G != 1 {
		t.Fatalf("fill after push = %+v, want green", st.GS.Colors.Fill)
	}
	ctx.SpecialHandler(ctx, st, "pdfcolorstack 0 pop")
	if st.GS.Colors.Fill.G != 0 {
		t.Fatalf("fill after pop = %+v, want reset to the init base color", st.GS.Colors.Fill)
	}
}

func TestSpecialInlineSyncPosition(t *testing.T) {
	ctx, st, _ := newSpecialFixture()

	ctx.SpecialHandler(ctx, st, "I main.tex 42")
	if ctx.SyncPos.File != "main.tex" || ctx.SyncPos.Line != 42 {
		t.Fatalf("SyncPos = %+v, want main.tex:42", ctx.SyncPos)
	}

	ctx.SyncPos = dvi.SyncPos{File: "other.tex", Line: 7}
	ctx.SpecialHandler(ctx, st, "p")
	if ctx.SyncPos.File != "main.tex" || ctx.SyncPos.Line != 42 {
		t.Fatalf("SyncPos after recall = %+v, want main.tex:42", ctx.SyncPos)
	}
}
