// colorstack.go - pdfcolorstack special machinery (§4.4, dvi_special.c's
// colorstack_push/pop/init/pdfcolorstack_current and the `color push/pop`
// shorthand, which always addresses the one built-in "default" stack)
package pdfops

import "github.com/texpresso-go/texpresso/internal/render"

// ColorStacks holds one growable color stack per pdfcolorstack index, plus
// the always-present default stack `\special{color push/pop ...}` and
// `pdf: begincolor/endcolor` address (dvi_special.c's `dc->pdf.colorstack`
// array, index -1 reserved for the default stack).
type ColorStacks struct {
	byIndex map[int][]render.Color
	def     []render.Color
}

func NewColorStacks() *ColorStacks {
	return &ColorStacks{byIndex: map[int][]render.Color{}}
}

// Init seeds stack idx's base color, mirroring
// dvi_exec_special's "pdfcolorstackinit N page <current>" page-init form
// (dvi_init_special only ever processes this one special ahead of the
// replay loop).
func (c *ColorStacks) Init(idx int, base render.Color) {
	c.byIndex[idx] = []render.Color{base}
}

// Push pushes color atop stack idx (colorstack_push).
func (c *ColorStacks) Push(idx int, color render.Color) {
	c.byIndex[idx] = append(c.byIndex[idx], color)
}

// Pop pops stack idx, a no-op on an empty (or never-initialized) stack
// (colorstack_pop tolerates an imbalanced push/pop count).
func (c *ColorStacks) Pop(idx int) {
	s := c.byIndex[idx]
	if len(s) == 0 {
		return
	}
	c.byIndex[idx] = s[:len(s)-1]
}

// Current reports the color atop stack idx, or the zero color if the
// stack was never pushed to (pdfcolorstack_current).
func (c *ColorStacks) Current(idx int) render.Color {
	s := c.byIndex[idx]
	if len(s) == 0 {
		return render.Color{}
	}
	return s[len(s)-1]
}

// PushDefault/PopDefault/CurrentDefault back `\special{color push ...}`,
// `\special{color pop}` and `pdf: begincolor`/`pdf: endcolor`, which all
// address the distinguished -1-indexed stack (dvi_special.c's DEFAULT_COLOR
// handling inside exec_pdfcolorstack/exec_color).
func (c *ColorStacks) PushDefault(color render.Color) { c.def = append(c.def, color) }

func (c *ColorStacks) PopDefault() {
	if len(c.def) == 0 {
		return
	}
	c.def = c.def[:len(c.def)-1]
}

func (c *ColorStacks) CurrentDefault() render.Color {
	if len(c.def) == 0 {
		return render.Color{}
	}
	return c.def[len(c.def)-1]
}
