// dispatch.go - answer_query's per-tag handlers: OPEN/READ/WRIT/CLOS/SIZE/
// SEEN/GPIC/SPIC/CHLD plus the supplemented MTIM and APND (§4.7.2,
// SPEC_FULL.md §4 items 2-3)
package executor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/texpresso-go/texpresso/internal/fixed"
	"github.com/texpresso-go/texpresso/internal/vfs"
	"github.com/texpresso-go/texpresso/internal/wire"
)

// answerQuery dispatches q to its handler and writes the reply (for tags
// that have one) back to the active process, matching answer_query's big
// switch.
func (e *Engine) answerQuery(q Query) {
	p := e.currentProcess()

	switch q.Tag {
	case wire.QOPRD, wire.QOPWR:
		writeAnswer(p.ch, e.handleOpen(q))
	case wire.QREAD:
		writeAnswer(p.ch, e.handleRead(q))
	case wire.QWRIT:
		writeAnswer(p.ch, e.handleWrite(q))
	case wire.QAPND:
		writeAnswer(p.ch, e.handleAppend(q))
	case wire.QCLOS:
		writeAnswer(p.ch, e.handleClose(q))
	case wire.QSIZE:
		writeAnswer(p.ch, e.handleSize(q))
	case wire.QMTIM:
		writeAnswer(p.ch, e.handleMtime(q))
	case wire.QSEEN:
		e.handleSeen(q) // no reply
	case wire.QGPIC:
		writeAnswer(p.ch, e.handleGetPicCache(q))
	case wire.QSPIC:
		writeAnswer(p.ch, e.handleSetPicCache(q))
	case wire.QCHLD:
		writeAnswer(p.ch, e.handleChild(q))
	default:
		panic(fmt.Sprintf("executor: unknown query tag %q", q.Tag))
	}
}

func hasContent(e *vfs.FileEntry) bool {
	_, ok := e.Content()
	return ok
}

func hasExt(path string, exts ...string) bool {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	for _, want := range exts {
		if ext == want {
			return true
		}
	}
	return false
}

// handleOpen implements Q_OPEN's read/write split: a read binds the entry
// to its current content (falling through to disk if the VFS has never
// seen it), a write allocates a fresh empty buffer the worker will fill via
// WRIT/APND.
func (e *Engine) handleOpen(q Query) Answer {
	if e.vfs.Open.Entry(q.Fid) != nil {
		panic("executor: protocol violation: fid already open")
	}

	isWrite := q.Tag == wire.QOPWR
	var entry *vfs.FileEntry

	if !isWrite {
		entry = e.vfs.Lookup(q.Path)
		if entry == nil || !hasContent(entry) {
			fsPath, st, found := e.lookupPath(q.Path)
			if !found {
				e.vfs.Open.Open(q.Fid, e.vfs.LookupOrCreate(q.Path))
				return Answer{Tag: wire.APASS}
			}
			if entry == nil {
				entry = e.vfs.LookupOrCreate(q.Path)
			}
			data, err := os.ReadFile(fsPath)
			if err != nil {
				e.vfs.Open.Open(q.Fid, entry)
				return Answer{Tag: wire.APASS}
			}
			e.vfs.SetFSBytes(entry, data, st)
			e.vfs.OpenForRead(entry, data)
		}
	} else {
		entry = e.vfs.LookupOrCreate(q.Path)
		e.vfs.Log.SetSavedBytes(entry, nil, vfs.AccessWrite)
	}

	if entry.Seen == vfs.SeenNever {
		e.recordSeen(entry, 0, q.TimeMs)
	}
	if err := e.vfs.Open.Open(q.Fid, entry); err != nil {
		panic(err)
	}
	if isWrite {
		e.bindNamedOutput(q.Path, entry)
	}

	return Answer{Tag: wire.AOPEN, Path: q.Path}
}

// bindNamedOutput classifies a freshly opened write file by name/extension
// into the singleton streams the engine tracks specially (§4.6), matching
// the extension dispatch in Q_OPEN's write branch.
func (e *Engine) bindNamedOutput(path string, entry *vfs.FileEntry) {
	var name string
	switch {
	case path == "stdout":
		name = "stdout"
	case hasExt(path, "xdv", "dvi", "pdf"):
		name = "document"
		e.dvi.Reset()
	case hasExt(path, "synctex"):
		name = "synctex"
		e.tex.Rollback(0)
	case hasExt(path, "log"):
		name = "log"
	default:
		return
	}
	if err := e.vfs.Open.OpenNamed(name, entry); err != nil {
		panic(err)
	}
}

func (e *Engine) handleRead(q Query) Answer {
	entry := e.vfs.Open.Entry(q.Fid)
	if entry == nil {
		panic("executor: protocol violation: READ on unopened fid")
	}
	data, ok := entry.Content()
	if !ok {
		panic("executor: protocol violation: READ on entry with no content")
	}
	if q.Pos > len(data) {
		panic("executor: protocol violation: READ past end of file")
	}

	n := q.Size
	if n > len(data)-q.Pos {
		n = len(data) - q.Pos
	}

	forked := false
	if e.fencePos >= 0 && e.fences[e.fencePos].entry == entry &&
		e.fences[e.fencePos].position < q.Pos+n {
		n = e.fences[e.fencePos].position - q.Pos
		if n < 0 {
			panic("executor: fence lies behind the current read position")
		}
		forked = n == 0
	}

	if forked {
		e.fencePos--
		return Answer{Tag: wire.AFORK}
	}
	if e.needSnapshot(q.TimeMs) {
		return Answer{Tag: wire.AFORK}
	}
	return Answer{Tag: wire.AREAD, Data: data[q.Pos : q.Pos+n]}
}

// afterWrite re-derives the DVI page index or SyncTeX index after a write
// lands in the document or synctex stream (the incdvi_update/synctex_update
// calls inline in Q_WRIT).
func (e *Engine) afterWrite(entry *vfs.FileEntry) {
	if entry == e.vfs.Open.NamedEntry("document") {
		if data, ok := entry.Content(); ok {
			e.dvi.Update(data)
		}
	} else if entry == e.vfs.Open.NamedEntry("synctex") {
		if data, ok := entry.Content(); ok {
			e.tex.Update(data)
		}
	}
}

func (e *Engine) handleWrite(q Query) Answer {
	entry := e.vfs.Open.Entry(q.Fid)
	if entry == nil {
		panic("executor: protocol violation: WRIT on unopened fid")
	}
	if entry.Access != vfs.AccessWrite {
		panic("executor: protocol violation: WRIT on a non-write entry")
	}
	e.vfs.WriteSaved(entry, q.Pos, q.Data)
	e.afterWrite(entry)
	return Answer{Tag: wire.ADONE}
}

func (e *Engine) handleAppend(q Query) Answer {
	entry := e.vfs.Open.Entry(q.Fid)
	if entry == nil {
		panic("executor: protocol violation: APND on unopened fid")
	}
	e.vfs.WriteSaved(entry, len(entry.SavedBytes), q.Data)
	e.afterWrite(entry)
	return Answer{Tag: wire.ADONE}
}

func (e *Engine) handleClose(q Query) Answer {
	entry := e.vfs.Open.Entry(q.Fid)
	if entry == nil {
		panic("executor: protocol violation: CLOS on unopened fid")
	}
	e.vfs.Open.Close(q.Fid)
	// The document stream is deliberately left bound after closing, per
	// Q_CLOS: the final page index must survive the worker closing its
	// output fd.
	for _, name := range [2]string{"stdout", "log"} {
		if e.vfs.Open.NamedEntry(name) == entry {
			e.vfs.Open.CloseNamed(name)
		}
	}
	return Answer{Tag: wire.ADONE}
}

func (e *Engine) handleSize(q Query) Answer {
	entry := e.vfs.Open.Entry(q.Fid)
	if entry == nil {
		panic("executor: protocol violation: SIZE on unopened fid")
	}
	data, ok := entry.Content()
	if !ok {
		panic("executor: protocol violation: SIZE on entry with no content")
	}
	return Answer{Tag: wire.ASIZE, Size: len(data)}
}

func (e *Engine) handleMtime(q Query) Answer {
	entry := e.vfs.Open.Entry(q.Fid)
	if entry == nil || !entry.HasFSStat {
		return Answer{Tag: wire.AMTIM}
	}
	return Answer{
		Tag:  wire.AMTIM,
		Sec:  int32(entry.FSStat.Mtime / 1e9),
		Nsec: int32(entry.FSStat.Mtime % 1e9),
	}
}

func (e *Engine) handleSeen(q Query) {
	entry := e.vfs.Open.Entry(q.Fid)
	if entry == nil {
		panic("executor: protocol violation: SEEN on unopened fid")
	}
	if e.fencePos >= 0 && e.fences[e.fencePos].entry == entry &&
		e.fences[e.fencePos].position < q.Pos {
		panic("executor: SEEN position crossed an active fence")
	}
	if q.Pos <= entry.Seen {
		return
	}
	e.recordSeen(entry, q.Pos, q.TimeMs)
}

// fixedFromFloat re-quantizes a point-space float back to a Q12.20 wire
// value for answering GPIC (the cache itself stores plain float64 points).
func fixedFromFloat(v float64) fixed.T { return fixed.Make(int32(v * (1 << 20))) }

func (e *Engine) handleGetPicCache(q Query) Answer {
	entry := e.vfs.Lookup(q.Path)
	if entry == nil || entry.PicCache == nil ||
		entry.PicCache.Key != (vfs.PicKey{Type: q.PicType, Page: q.Page}) {
		return Answer{Tag: wire.APASS}
	}
	var bounds [4]fixed.T
	for i, b := range entry.PicCache.Bounds {
		bounds[i] = fixedFromFloat(b)
	}
	return Answer{Tag: wire.AGPIC, Bounds: bounds}
}

func (e *Engine) handleSetPicCache(q Query) Answer {
	entry := e.vfs.Lookup(q.Path)
	if entry != nil && entry.Access == vfs.AccessRead {
		var bounds [4]float64
		for i, b := range q.Bounds {
			bounds[i] = fixed.ToFloat(b)
		}
		entry.PicCache = &vfs.PicCache{Key: vfs.PicKey{Type: q.PicType, Page: q.Page}, Bounds: bounds}
	}
	return Answer{Tag: wire.ADONE}
}

func (e *Engine) handleChild(q Query) Answer {
	ch, err := wire.ChannelFromFD(q.ChildFD)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[process] rejecting CHLD: %v\n", err)
		return Answer{Tag: wire.ADONE}
	}

	p := e.currentProcess()
	if len(e.processes) == maxProcesses {
		e.decimateProcesses()
		p = e.currentProcess()
	}
	p.snap = e.vfs.Log.Snapshot()
	e.processes = append(e.processes, process{pid: q.ChildPID, ch: ch, traceLen: p.traceLen})
	return Answer{Tag: wire.ADONE}
}
