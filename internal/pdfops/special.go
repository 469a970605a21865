// special.go - \special{...} dispatch: pdfcolorstack, color push/pop, x:,
// pdf:, and the inline SyncTeX-like I/p/P/l/L position specials (§4.4,
// dvi_special.c's dvi_exec_special / dvi_exec_pdf / dvi_init_special)
package pdfops

import (
	"strconv"
	"strings"

	"github.com/texpresso-go/texpresso/internal/dvi"
	"github.com/texpresso-go/texpresso/internal/render"
	"github.com/texpresso-go/texpresso/internal/texlog"
)

// syncSlot is one entry of the two-slot inline-position history the I/p/P
// and l/L specials maintain (dc->sync.pos[0..1]); distinct from
// internal/synctex's `.synctex` sidecar index, which a separate, complete
// compile records out of band.
type syncSlot struct {
	file string
	line int
}

// Handler owns the per-document state a page's specials accumulate:
// indexed pdfcolorstacks, the default color stack, and the inline sync
// position history. One Handler is wired into exactly one dvi.Context.
type Handler struct {
	colors *ColorStacks
	pos    [2]syncSlot
}

// NewHandler builds a fresh, per-document special handler.
func NewHandler() *Handler {
	return &Handler{colors: NewColorStacks()}
}

// Wire installs h's Special/InitSpecial methods into ctx's hooks
// (dvi_init_special / dvi_exec_special are installed once per document the
// same way).
func (h *Handler) Wire(ctx *dvi.Context) {
	ctx.SpecialHandler = h.Special
	ctx.InitSpecialHandler = h.InitSpecial
}

// InitSpecial handles the one special dvi_init_special processes ahead of
// the main replay loop: pdfcolorstackinit seeds a stack's base color from
// the page's background before anything else executes.
func (h *Handler) InitSpecial(ctx *dvi.Context, st *dvi.State, text string) {
	text = strings.TrimSpace(text)
	if !hasPrefix(text, "pdfcolorstackinit") {
		return
	}
	rest := skipWS(text[len("pdfcolorstackinit"):])
	idx, rest := popInt(rest)
	rest = skipWS(rest)
	// "page"/"direct(...)" discriminates how the base color is encoded;
	// this interpreter only ever sees the common "page direct(...)" form
	// pdfTeX's driver emits and defaults to black otherwise.
	color := render.Black
	if i := strings.Index(rest, "("); i >= 0 {
		if j := strings.Index(rest[i:], ")"); j >= 0 {
			color = parseColorSpec(rest[i+1 : i+j])
		}
	}
	h.colors.Init(idx, color)
}

// Special handles every special dvi_exec_special recognizes outside of
// init-time: pdfcolorstack push/pop/current, the `color` shorthand, direct
// CTM application (`x:`), the full `pdf:` grammar, and the inline sync
// position specials. It returns false (unhandled, logged by the caller)
// for anything else.
func (h *Handler) Special(ctx *dvi.Context, st *dvi.State, text string) bool {
	text = strings.TrimSpace(text)
	switch {
	case text == "landscape":
		return true // page orientation only matters to incdvi's prescan

	case hasPrefix(text, "pdfcolorstack"):
		return h.execColorstack(st, text[len("pdfcolorstack"):])

	case hasPrefix(text, "color"):
		return h.execColor(st, skipWS(text[len("color"):]))

	case hasPrefix(text, "x:"):
		return h.execX(st, skipWS(text[len("x:"):]))

	case hasPrefix(text, "pdf:"):
		return h.execPDF(ctx, st, skipWS(text[len("pdf:"):]))

	case hasPrefix(text, "I "):
		return h.execI(ctx, text[2:])
	case text == "p" || hasPrefix(text, "P"):
		return h.execP(ctx, text)
	case text == "l" || hasPrefix(text, "L"):
		return h.execL(ctx, text)
	}
	return false
}

func hasPrefix(s, prefix string) bool { return strings.HasPrefix(s, prefix) }

func popInt(s string) (int, string) {
	s = skipWS(s)
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	n, _ := strconv.Atoi(s[:i])
	return n, s[i:]
}

// execColorstack handles "N push(spec)", "N pop", and "N current" against
// the per-index stacks (colorstack_push/pop/pdfcolorstack_current).
func (h *Handler) execColorstack(st *dvi.State, rest string) bool {
	idx, rest := popInt(rest)
	rest = skipWS(rest)
	switch {
	case hasPrefix(rest, "push"):
		spec := rest[len("push"):]
		if i := strings.Index(spec, "("); i >= 0 {
			if j := strings.Index(spec[i:], ")"); j >= 0 {
				h.colors.Push(idx, parseColorSpec(spec[i+1:i+j]))
			}
		}
	case hasPrefix(rest, "pop"):
		h.colors.Pop(idx)
	case hasPrefix(rest, "current"):
		// "current" re-applies the stack's top color to the graphics state
		// without changing the stack, matching pdfcolorstack_current's use
		// as a plain query the driver re-asserts after a font change.
	}
	c := h.colors.Current(idx)
	st.GS.Colors.Fill = c
	st.GS.Colors.Line = c
	return true
}

// execColor handles the simpler "color push <spec>"/"color pop" shorthand,
// which always addresses the default (-1-indexed) stack.
func (h *Handler) execColor(st *dvi.State, rest string) bool {
	switch {
	case hasPrefix(rest, "push"):
		h.colors.PushDefault(parseColorSpec(strings.TrimSpace(rest[len("push"):])))
	case hasPrefix(rest, "pop"):
		h.colors.PopDefault()
	default:
		return false
	}
	c := h.colors.CurrentDefault()
	st.GS.Colors.Fill = c
	st.GS.Colors.Line = c
	return true
}

// parseColorSpec accepts the "gray G" / "rgb R G B" / "cmyk C M Y K"
// forms pdfTeX's color/pdfcolorstack drivers write.
func parseColorSpec(spec string) render.Color {
	fields := strings.Fields(spec)
	if len(fields) == 0 {
		return render.Black
	}
	nums := make([]Value, 0, len(fields))
	for _, f := range fields[1:] {
		if v, ok := parseSignedFloat(f); ok {
			nums = append(nums, Value{Kind: ValNumber, Num: v})
		}
	}
	switch strings.ToLower(fields[0]) {
	case "gray", "g":
		return gray(nums)
	case "cmyk":
		return cmyk(nums)
	default: // "rgb" and anything unrecognized falls back to 3 components
		return rgb(nums)
	}
}

// execX applies a `x: <xform_spec>` directly to the current CTM, matching
// dvi_exec_special's "x:" direct-matrix case (the matrix form bt/btrans
// also accepts, without the push/pop it implies).
func (h *Handler) execX(st *dvi.State, rest string) bool {
	xf := ParseXForm(rest)
	st.GS.CTM = st.GS.CTM.PreConcat(xf.ToMatrix())
	return true
}

// execPDF dispatches the `pdf:` sub-grammar (dvi_exec_pdf).
func (h *Handler) execPDF(ctx *dvi.Context, st *dvi.State, rest string) bool {
	switch {
	case hasPrefix(rest, "pagesize"):
		return true // dimensions only matter to incdvi's page-dim prescan

	case hasPrefix(rest, "bcontent") || hasPrefix(rest, "econtent"):
		return true // content-marking brackets carry no graphics-state change

	case hasPrefix(rest, "begintransform") || hasPrefix(rest, "btrans ") || hasPrefix(rest, "bt "):
		xformText := afterFirstKeyword(rest)
		dvi.ExecPush(st)
		xf := ParseXForm(xformText)
		st.GS.CTM = st.GS.CTM.PreConcat(xf.ToMatrix())
		return true

	case hasPrefix(rest, "endtransform") || hasPrefix(rest, "etrans") || hasPrefix(rest, "et"):
		dvi.ExecPop(st)
		return true

	case hasPrefix(rest, "begincolor") || hasPrefix(rest, "bcolor ") || hasPrefix(rest, "bc "):
		spec := afterFirstKeyword(rest)
		h.colors.PushDefault(parseColorSpec(spec))
		c := h.colors.CurrentDefault()
		st.GS.Colors.Fill, st.GS.Colors.Line = c, c
		return true

	case hasPrefix(rest, "endcolor") || hasPrefix(rest, "ecolor") || hasPrefix(rest, "ec"):
		h.colors.PopDefault()
		c := h.colors.CurrentDefault()
		st.GS.Colors.Fill, st.GS.Colors.Line = c, c
		return true

	case hasPrefix(rest, "code"):
		code := strings.TrimSpace(rest[len("code"):])
		code = unwrap(code, '(', ')')
		(&Executor{Ctx: ctx, St: st}).Run([]byte(code))
		return true

	case strings.Contains(rest, "image"):
		return h.execImage(ctx, st, rest)
	}
	texlog.Warn("pdfops:pdf:unhandled", "pdfops: pdf: unhandled directive %q", rest)
	return false
}

func afterFirstKeyword(s string) string {
	_, rest := splitToken(s)
	return rest
}

func unwrap(s string, open, close byte) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == open && s[len(s)-1] == close {
		return s[1 : len(s)-1]
	}
	return s
}

// execImage resolves and draws a pdf:image special (embed_graphics /
// embed_pdf / embed_image): the xform_spec before "image" sizes and
// transforms the placement, the {filename} after it names the resource,
// dispatched by extension the same way the original's embed_graphics does.
func (h *Handler) execImage(ctx *dvi.Context, st *dvi.State, rest string) bool {
	idx := strings.Index(rest, "image")
	xf := ParseXForm(strings.TrimSpace(rest[:idx]))
	after := strings.TrimSpace(rest[idx+len("image"):])
	filename := unwrap(after, '{', '}')
	if filename == "" {
		filename = unwrap(after, '(', ')')
	}
	if filename == "" || ctx.Manager == nil || ctx.Device == nil {
		return true
	}

	base := st.CTM(ctx.Scale)
	var srcW, srcH float64 = 1, 1
	if strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		doc, err := ctx.Manager.GetPDF(filename)
		if err != nil {
			texlog.Warn("pdfops:image:"+filename, "pdfops: pdf:image: %v", err)
			return true
		}
		page := xf.Page
		if page < 1 {
			page = 1
		}
		box, err := doc.Box(page, xf.PageBox)
		if err == nil {
			srcW, srcH = box.Width(), box.Height()
		}
	} else {
		img, err := ctx.Manager.GetImage(filename)
		if err != nil {
			texlog.Warn("pdfops:image:"+filename, "pdfops: pdf:image: %v", err)
			return true
		}
		b := img.Bounds()
		srcW, srcH = float64(b.Dx()), float64(b.Dy())
	}

	w, hh := srcW, srcH
	if xf.HasWidth {
		w = xf.Width
	}
	if xf.HasHeight {
		hh = xf.Height
	}
	ctm := base.PreConcat(xf.ToMatrix()).PreScale(w, hh)
	ctx.Device.ShowImage(filename, ctm)
	return true
}

// execI records an inline sync position, "I file line" (dc->sync.pos
// update); file and line are split on the last space since filenames
// themselves may contain spaces.
func (h *Handler) execI(ctx *dvi.Context, rest string) bool {
	sp := strings.LastIndexByte(strings.TrimSpace(rest), ' ')
	if sp < 0 {
		return false
	}
	file := strings.TrimSpace(rest[:sp])
	line, _ := strconv.Atoi(strings.TrimSpace(rest[sp+1:]))
	h.pos[1] = h.pos[0]
	h.pos[0] = syncSlot{file: file, line: line}
	ctx.SyncPos = dvi.SyncPos{File: file, Line: line}
	return true
}

// execP recalls a previously-recorded sync position into ctx.SyncPos: "p"
// and bare "P" address slot 0, any "P<digit>"/"P n" suffix addresses slot 1
// (the original's richer numbered-history addressing collapses to this
// two-slot model, which is all dc->sync.pos ever stores).
func (h *Handler) execP(ctx *dvi.Context, text string) bool {
	slot := 0
	if text != "p" && len(text) > 1 {
		slot = 1
	}
	s := h.pos[slot]
	if s.file != "" {
		ctx.SyncPos = dvi.SyncPos{File: s.file, Line: s.line}
	}
	return true
}

// execL is execP's line-only counterpart ("l"/"L..."): it updates only
// the recalled line, keeping the current file.
func (h *Handler) execL(ctx *dvi.Context, text string) bool {
	slot := 0
	if text != "l" && len(text) > 1 {
		slot = 1
	}
	s := h.pos[slot]
	if s.file != "" {
		ctx.SyncPos.Line = s.line
	}
	return true
}
