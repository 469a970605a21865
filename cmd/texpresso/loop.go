// loop.go - the event loop: read one editor command, apply it, drain the
// worker's pending queries, mirror stdout/log growth back to the editor
// (§4.8, §5's "single-threaded cooperative" scheduling)
package main

import (
	"fmt"
	"io"

	"github.com/texpresso-go/texpresso/internal/editorproto"
	"github.com/texpresso-go/texpresso/internal/texlog"
)

// driveLoop blocks on source.Next() until EOF, applying each command to
// sess, letting the engine answer every query the resulting worker
// activity produces, then reporting any growth or shrink of the "stdout"
// and "log" named VFS streams to enc. A malformed command or a core
// invariant error from Apply is logged (§7: worker-caused errors are
// recoverable) rather than aborting the session.
func driveLoop(sess *editorproto.Session, enc *editorproto.Encoder, source commandSource, isJSON, lineOutput bool) error {
	var outLen, logLen int

	for {
		v, err := source.Next()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("reading command: %w", err)
		}

		cmd, err := editorproto.ParseCommand(v, isJSON)
		if err != nil {
			texlog.Warn("loop-parse", "texpresso: malformed command: %v", err)
			continue
		}

		if err := sess.Apply(cmd); err != nil {
			texlog.Warn("loop-apply:"+cmd.Kind.String(), "texpresso: %v", err)
			continue
		}

		for sess.Engine.Step(true) {
		}

		pollSynctexTarget(sess)

		if err := mirrorBuffer(enc, editorproto.BufOut, sess.Engine.VFS().Open.NamedEntry("stdout"), &outLen, lineOutput); err != nil {
			return fmt.Errorf("mirroring stdout: %w", err)
		}
		if err := mirrorBuffer(enc, editorproto.BufLog, sess.Engine.VFS().Open.NamedEntry("log"), &logLen, lineOutput); err != nil {
			return fmt.Errorf("mirroring log: %w", err)
		}
	}
}

// pollSynctexTarget advances a CmdSynctexForward search as far as the
// .synctex data parsed so far allows, the same poll main.c's event loop
// performs every iteration ("if synctex_has_target(stx) &&
// synctex_find_target(...)"). A headless orchestrator has no window to pan,
// so the hit's page becomes the session's current page; the (x, y) position
// within that page is a GUI scroll concern with no equivalent here and is
// discarded, same as upstream discards it once the pan offset is applied.
func pollSynctexTarget(sess *editorproto.Session) {
	idx := sess.Engine.Synctex()
	if !idx.HasTarget() {
		return
	}
	entry := sess.Engine.VFS().Open.NamedEntry("synctex")
	if entry == nil {
		return
	}
	data, ok := entry.Content()
	if !ok {
		return
	}
	if page, _, _, ok := idx.FindTarget(data); ok {
		sess.CurrentPage = page
		idx.SetTarget(0, "", 0)
	}
}
