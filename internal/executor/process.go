// process.go - the ring of speculatively-forked worker processes and the
// seen trace recorded across them, mirroring engine_tex.c's process_t ring,
// prepare_process/close_process/pop_process/decimate_processes, and
// record_seen (§4.7.1, §4.7.3)
package executor

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/texpresso-go/texpresso/internal/vfs"
	"github.com/texpresso-go/texpresso/internal/wire"
)

// maxProcesses bounds the checkpoint ring; decimateProcesses halves it once
// full, matching the original's fixed processes[32] array.
const maxProcesses = 32

// process is one worker in the ring: either the root process (spawned by
// prepareProcess) or a checkpoint forked by an earlier process in response
// to an A_FORK answer and relayed back to us via a CHLD query.
type process struct {
	pid      int
	cmd      *exec.Cmd
	ch       *wire.Channel
	traceLen int
	snap     vfs.Mark
}

// traceEntry is one (entry, prior-seen, elapsed) tuple recorded the moment
// a file's high-water mark is learned, so a rollback can restore the prior
// value (§4.7.3).
type traceEntry struct {
	entry *vfs.FileEntry
	seen  int
	time  int
}

// fence is a (file, byte offset) rewind guard placed by computeFences: once
// the active process's reads reach this position it must fork again rather
// than continue, so the resulting checkpoint lands exactly where a future
// rollback will need it (§4.7.5).
type fence struct {
	entry    *vfs.FileEntry
	position int
}

func (e *Engine) currentProcess() *process {
	if len(e.processes) == 0 {
		panic("executor: no active process")
	}
	return &e.processes[len(e.processes)-1]
}

// workerArgs builds the Tectonic invocation matching exec_xelatex: texpresso
// output mode, the bundle socket triple, and "continue on errors" so a
// broken document still produces partial output.
func (e *Engine) workerArgs() []string {
	return []string{
		e.TectonicPath,
		"-X", "texpresso",
		"--bundle", e.BundleURL,
		"--untrusted",
		"--synctex",
		"--outfmt", "xdv",
		"-Z", "continue-on-errors",
		e.Name,
	}
}

// prepareProcess spawns the root worker if the ring is empty
// (prepare_process). Later checkpoints are never spawned here: they arrive
// as CHLD queries from a worker that forked itself.
func (e *Engine) prepareProcess() error {
	if len(e.processes) > 0 {
		return nil
	}
	e.vfs.Log.Rollback(e.restart)

	parent, child, err := wire.SocketPair()
	if err != nil {
		return fmt.Errorf("executor: socketpair: %w", err)
	}
	childFile, err := child.File()
	child.Close()
	if err != nil {
		parent.Close()
		return fmt.Errorf("executor: dup worker socket: %w", err)
	}

	args := e.workerArgs()
	cmd := exec.Command(args[0], args[1:]...)
	cmd.ExtraFiles = []*os.File{childFile}
	cmd.Env = append(os.Environ(), "TEXPRESSO_FD=3")
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		childFile.Close()
		parent.Close()
		return fmt.Errorf("executor: spawn worker: %w", err)
	}
	childFile.Close()

	ch := wire.NewChannel(parent)
	if err := ch.HandshakeAsServer(); err != nil {
		ch.Close()
		_ = cmd.Process.Kill()
		return fmt.Errorf("executor: handshake: %w", err)
	}

	fmt.Fprintf(os.Stderr, "[process] launched pid %d (using %s)\n", cmd.Process.Pid, e.TectonicPath)
	e.processes = append(e.processes, process{pid: cmd.Process.Pid, cmd: cmd, ch: ch})
	return nil
}

// closeProcess kills and disconnects p without touching the ring or the log
// (close_process).
func (e *Engine) closeProcess(p *process) {
	if p.ch == nil {
		return
	}
	if p.cmd != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Signal(syscall.SIGTERM)
	}
	p.ch.Close()
	p.ch = nil
}

// popProcess discards the deepest process in the ring and rewinds the VFS
// log to the snapshot mark of the process that remains on top, or to
// restart if the ring is now empty (pop_process).
func (e *Engine) popProcess() {
	p := e.currentProcess()
	e.closeProcess(p)
	e.processes = e.processes[:len(e.processes)-1]

	mark := e.restart
	if len(e.processes) > 0 {
		mark = e.currentProcess().snap
	}
	e.vfs.Log.Rollback(mark)
}

// decimateProcesses halves a full ring when a new CHLD query would overflow
// it: every other entry survives, except the most recent 8, which are kept
// untouched (decimate_processes).
func (e *Engine) decimateProcesses() {
	n := len(e.processes)
	bound := (n - 8) / 2

	i := 0
	for i < bound {
		e.closeProcess(&e.processes[2*i])
		e.processes[i] = e.processes[2*i+1]
		i++
	}
	for j := bound * 2; j < n; j++ {
		e.processes[i] = e.processes[j]
		i++
	}
	e.processes = e.processes[:i]
}

// recordSeen appends (or, within one process, coalesces into) a trace tuple
// recording that entry's seen position advanced to seen at timeMs
// (record_seen). Coalescing is disabled across process boundaries: a
// process boundary is detected by comparing against the second-to-last
// process's traceLen, so a rollback can still tell which process owns each
// tuple.
func (e *Engine) recordSeen(entry *vfs.FileEntry, seen, timeMs int) {
	p := e.currentProcess()

	if p.traceLen > 0 && e.trace[p.traceLen-1].entry == entry &&
		(len(e.processes) <= 1 || e.processes[len(e.processes)-2].traceLen != p.traceLen) {
		e.trace[p.traceLen-1].time = timeMs
		entry.Seen = seen
		return
	}

	e.trace = append(e.trace[:p.traceLen], traceEntry{entry: entry, seen: entry.Seen, time: timeMs})
	entry.Seen = seen
	p.traceLen++
}

// readQuery reads the active process's next query, closing it on any
// protocol error or EOF (read_query).
func (e *Engine) readQuery() (Query, bool) {
	p := e.currentProcess()
	q, err := readQuery(p.ch)
	if err != nil {
		fmt.Fprintln(os.Stderr, "[process] terminating process")
		e.closeProcess(p)
		return Query{}, false
	}
	return q, true
}
