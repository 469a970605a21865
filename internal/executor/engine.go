// engine.go - worker lifecycle, status, and the page/synctex read surface
// the renderer and editor integration drive, mirroring engine_tex.c's
// txp_engine_class methods (§4.7)
package executor

import (
	"fmt"
	"os"

	"github.com/texpresso-go/texpresso/internal/dvi"
	"github.com/texpresso-go/texpresso/internal/render"
	"github.com/texpresso-go/texpresso/internal/resmgr"
	"github.com/texpresso-go/texpresso/internal/synctex"
	"github.com/texpresso-go/texpresso/internal/vfs"
)

// Status mirrors txp_engine_status: whether the document is still being
// produced, rewinding to an earlier checkpoint, or has no live worker left.
type Status int

const (
	StatusRunning Status = iota
	StatusBack
	StatusTerminated
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusBack:
		return "back"
	default:
		return "terminated"
	}
}

// notInTransaction flags rollback.traceLen as "no edit transaction open",
// mirroring engine_tex.c's NOT_IN_TRANSACTION sentinel.
const notInTransaction = -2

type rollbackState struct {
	traceLen int
	offset   int
	flush    bool
}

// Engine is the Go port of struct tex_engine: one compiled document, backed
// by a VFS, an incremental DVI page index, a SyncTeX index, and a ring of
// speculatively-forked worker processes.
type Engine struct {
	Name          string
	TectonicPath  string
	InclusionPath string
	BundleURL     string

	vfs *vfs.VFS
	dvi *dvi.IncDvi
	tex *synctex.Index

	processes []process
	trace     []traceEntry
	fences    [16]fence
	fencePos  int
	restart   vfs.Mark

	rollback rollbackState
}

// New creates an engine for a single TeX document. dev receives the
// rendered page content; mgr resolves the fonts and images the DVI
// interpreter references (txp_create_tex_engine).
func New(name, tectonicPath, inclusionPath string, mgr *resmgr.Manager, dev render.Device) *Engine {
	e := &Engine{
		Name:          name,
		TectonicPath:  tectonicPath,
		InclusionPath: inclusionPath,
		vfs:           vfs.New(),
		tex:           synctex.New(),
		fencePos:      -1,
	}
	e.dvi = dvi.NewIncDvi(mgr, dev)
	e.restart = e.vfs.Log.Snapshot()
	e.rollback.traceLen = notInTransaction
	return e
}

// VFS exposes the engine's file-system state, e.g. for the editor protocol
// layer to push edited buffers into before the next end_changes.
func (e *Engine) VFS() *vfs.VFS { return e.vfs }

// FindFile returns (creating if necessary) the VFS entry for path
// (engine_find_file).
func (e *Engine) FindFile(path string) *vfs.FileEntry {
	return e.vfs.LookupOrCreate(path)
}

// Destroy terminates every worker in the ring, deepest first, rolling the
// VFS log back to its pristine state (engine_destroy).
func (e *Engine) Destroy() {
	for len(e.processes) > 0 {
		e.popProcess()
	}
}

// Status reports whether a worker is alive and producing output
// (engine_get_status).
func (e *Engine) Status() Status {
	if len(e.processes) == 0 {
		return StatusTerminated
	}
	if e.currentProcess().ch == nil {
		return StatusTerminated
	}
	return StatusRunning
}

// PageCount returns the number of complete pages parsed from the document
// buffer so far (engine_page_count).
func (e *Engine) PageCount() int {
	doc := e.vfs.Open.NamedEntry("document")
	if doc == nil {
		return 0
	}
	data, ok := doc.Content()
	if !ok {
		return 0
	}
	e.dvi.Update(data)
	return e.dvi.PageCount()
}

// RenderPage replays page (0-based) into the Device bound at construction
// (engine_render_page).
func (e *Engine) RenderPage(page int) {
	doc := e.vfs.Open.NamedEntry("document")
	if doc == nil {
		return
	}
	data, ok := doc.Content()
	if !ok {
		return
	}
	e.dvi.RenderPage(data, page)
}

// ScaleFactor reports the DVI-to-point scale factor the current document
// was compiled with (engine_scale_factor).
func (e *Engine) ScaleFactor() float64 {
	return e.dvi.TexScaleFactor()
}

// Synctex returns the engine's SyncTeX index, for forward/backward search
// (engine_synctex).
func (e *Engine) Synctex() *synctex.Index {
	if syn := e.vfs.Open.NamedEntry("synctex"); syn != nil {
		if data, ok := syn.Content(); ok {
			e.tex.Update(data)
		}
	}
	return e.tex
}

// Step answers at most one pending query from the active worker, spawning
// one first if requested and none exists (engine_step). It returns false
// when there was nothing to do.
func (e *Engine) Step(restartIfNeeded bool) bool {
	if restartIfNeeded {
		if err := e.prepareProcess(); err != nil {
			fmt.Fprintf(os.Stderr, "[process] failed to start: %v\n", err)
			return false
		}
	}

	if e.Status() != StatusRunning {
		return false
	}

	p := e.currentProcess()
	pending, err := p.ch.HasPendingQuery(10)
	if err != nil || !pending {
		return false
	}

	q, ok := e.readQuery()
	if !ok {
		return false
	}
	e.answerQuery(q)
	p.ch.Flush()
	return true
}
