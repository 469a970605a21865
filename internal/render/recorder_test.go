package render

import "testing"

func TestRecorderGroupsOpsByFrame(t *testing.T) {
	r := NewRecorder()
	r.BeginFrame(612, 792)
	r.FillRect(0, 0, 10, 10, Black)
	r.ShowGlyph("cmr10", 5, Identity, 10, Black)
	r.EndFrame()

	r.BeginFrame(612, 792)
	r.ShowImage("figure.pdf", Identity)
	r.EndFrame()

	if len(r.Frames) != 2 {
		t.Fatalf("Frames = %d, want 2", len(r.Frames))
	}
	if len(r.Frames[0]) != 2 {
		t.Fatalf("frame 0 ops = %d, want 2", len(r.Frames[0]))
	}
	if r.Frames[0][0].Kind != "rect" || r.Frames[0][1].Kind != "glyph" {
		t.Fatalf("frame 0 kinds = %v", r.Frames[0])
	}
	if len(r.LastFrame()) != 1 || r.LastFrame()[0].Kind != "image" {
		t.Fatalf("LastFrame = %v", r.LastFrame())
	}
}

func TestMatrixComposition(t *testing.T) {
	m := Identity.PreTranslate(3, 4).PreScale(2, 2)
	if m.E != 3 || m.F != 4 {
		t.Fatalf("translation lost: %+v", m)
	}
	if m.A != 2 || m.D != 2 {
		t.Fatalf("scale lost: %+v", m)
	}
}
