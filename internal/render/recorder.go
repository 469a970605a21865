// recorder.go - headless recording Device for tests and offline diffing
package render

// Op is one recorded drawing operation, tagged by kind so tests can assert
// on a page's display list without a real rasterizer.
type Op struct {
	Kind     string // "rect", "stroke", "glyph", "image"
	X0, Y0   float64
	X1, Y1   float64
	Color    Color
	FontKey  string
	GlyphID  uint32
	CTM      Matrix
	Size     float64
	ImageKey string
}

// Recorder is a Device that appends every call to an in-memory op list,
// grouped by frame. It never rasterizes anything; it exists to make the DVI
// interpreter's output assertable and to stand in for the real renderer
// binding (component 8) in tests.
type Recorder struct {
	Frames [][]Op

	width, height float64
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) BeginFrame(width, height float64) {
	r.width, r.height = width, height
	r.Frames = append(r.Frames, nil)
}

func (r *Recorder) EndFrame() {}

func (r *Recorder) append(op Op) {
	i := len(r.Frames) - 1
	if i < 0 {
		r.Frames = append(r.Frames, nil)
		i = 0
	}
	r.Frames[i] = append(r.Frames[i], op)
}

func (r *Recorder) FillRect(x0, y0, x1, y1 float64, color Color) {
	r.append(Op{Kind: "rect", X0: x0, Y0: y0, X1: x1, Y1: y1, Color: color})
}

func (r *Recorder) StrokeRect(x0, y0, x1, y1 float64, color Color, lineWidth float64) {
	r.append(Op{Kind: "stroke", X0: x0, Y0: y0, X1: x1, Y1: y1, Color: color, Size: lineWidth})
}

func (r *Recorder) ShowGlyph(fontKey string, glyphID uint32, ctm Matrix, size float64, color Color) {
	r.append(Op{Kind: "glyph", FontKey: fontKey, GlyphID: glyphID, CTM: ctm, Size: size, Color: color})
}

func (r *Recorder) ShowImage(imageKey string, ctm Matrix) {
	r.append(Op{Kind: "image", ImageKey: imageKey, CTM: ctm})
}

// LastFrame returns the most recently completed frame's ops, or nil.
func (r *Recorder) LastFrame() []Op {
	if len(r.Frames) == 0 {
		return nil
	}
	return r.Frames[len(r.Frames)-1]
}
