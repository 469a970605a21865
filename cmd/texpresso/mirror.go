// mirror.go - tracks how much of the "stdout"/"log" VFS streams has
// already been reported to the editor, emitting append/append-lines or
// truncate as they grow or shrink (§4.8's outgoing message set).
package main

import (
	"github.com/texpresso-go/texpresso/internal/editorproto"
	"github.com/texpresso-go/texpresso/internal/vfs"
)

// mirrorBuffer compares entry's current content against *reportedThrough
// (the length last reported for this stream) and emits the appropriate
// message. entry is nil until the worker has opened the stream at least
// once, in which case there is nothing yet to report.
func mirrorBuffer(enc *editorproto.Encoder, name editorproto.BufferName, entry *vfs.FileEntry, reportedThrough *int, lineOutput bool) error {
	if entry == nil {
		return nil
	}
	content, ok := entry.Content()
	if !ok {
		return nil
	}

	if len(content) < *reportedThrough {
		if err := enc.Truncate(name, content); err != nil {
			return err
		}
		*reportedThrough = len(content)
		return nil
	}
	if len(content) == *reportedThrough {
		return nil
	}

	if lineOutput {
		if enc.AppendLines(name, content, *reportedThrough) {
			*reportedThrough = throughLastNewline(content, *reportedThrough)
		}
		return nil
	}

	if err := enc.Append(name, *reportedThrough, content[*reportedThrough:]); err != nil {
		return err
	}
	*reportedThrough = len(content)
	return nil
}

// throughLastNewline returns the offset just past the last newline in
// content at or after from, or from unchanged if content has none yet —
// AppendLines only reports complete lines, so an in-progress trailing
// line must stay unreported until it, too, completes.
func throughLastNewline(content []byte, from int) int {
	last := -1
	for i := from; i < len(content); i++ {
		if content[i] == '\n' {
			last = i
		}
	}
	if last == -1 {
		return from
	}
	return last + 1
}
