// apply.go - applies a parsed Command to an executor.Engine and its VFS,
// implementing the action column of §4.8's command table.
package editorproto

import (
	"fmt"

	"github.com/texpresso-go/texpresso/internal/executor"
)

// Session pairs an engine with the one piece of state editor commands
// mutate beyond the VFS/engine themselves: which page is on display.
type Session struct {
	Engine      *executor.Engine
	CurrentPage int
}

func NewSession(eng *executor.Engine) *Session {
	return &Session{Engine: eng}
}

// Apply performs cmd's core effect (§4.8's table). The UI-only verbs
// (theme, window placement, stay-on-top, crop, invert) are accepted but
// are no-ops here: a frontend intercepts them before they would reach
// Apply in a full build.
func (s *Session) Apply(cmd Command) error {
	switch cmd.Kind {
	case CmdOpen:
		return s.applyOpen(cmd)
	case CmdClose:
		return s.applyClose(cmd)
	case CmdChange:
		return s.applyChange(cmd)
	case CmdPreviousPage:
		if s.CurrentPage > 0 {
			s.CurrentPage--
		}
		return nil
	case CmdNextPage:
		if s.CurrentPage+1 < s.Engine.PageCount() {
			s.CurrentPage++
		}
		return nil
	case CmdSynctexForward:
		s.Engine.Synctex().SetTarget(s.CurrentPage, cmd.Path, cmd.Line)
		return nil
	case CmdRescan:
		s.Engine.BeginChanges()
		s.Engine.DetectChanges()
		s.Engine.EndChanges()
		return nil
	case CmdTheme, CmdMoveWindow, CmdMapWindow, CmdUnmapWindow, CmdStayOnTop, CmdCrop, CmdInvert:
		return nil
	default:
		return fmt.Errorf("editorproto: unhandled command kind %v", cmd.Kind)
	}
}

func firstDiff(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

func (s *Session) applyOpen(cmd Command) error {
	entry := s.Engine.FindFile(cmd.Path)
	old, hadContent := entry.Content()
	s.Engine.VFS().SetEditBytes(entry, cmd.Data)
	if !hadContent {
		return nil
	}
	if diff := firstDiff(old, cmd.Data); diff < len(old) || diff < len(cmd.Data) {
		s.Engine.BeginChanges()
		s.Engine.NotifyFileChanges(entry, diff)
		s.Engine.EndChanges()
	}
	return nil
}

func (s *Session) applyClose(cmd Command) error {
	entry := s.Engine.FindFile(cmd.Path)
	old, _ := entry.Content()
	s.Engine.VFS().ClearEditBytes(entry)
	restored, ok := entry.Content()
	if !ok {
		return nil
	}
	if diff := firstDiff(old, restored); diff < len(old) || diff < len(restored) {
		s.Engine.BeginChanges()
		s.Engine.NotifyFileChanges(entry, diff)
		s.Engine.EndChanges()
	}
	return nil
}

// changeSpan resolves a change command's edit span to byte offsets within
// content, translating lines (BaseLine) or UTF-16 columns (BaseRange) as
// needed (§4.8, §4.8.1).
func changeSpan(content []byte, cmd Command) (offset, removeLen int, err error) {
	switch cmd.Base {
	case BaseByte:
		return cmd.Offset, cmd.Remove, nil

	case BaseLine:
		start, err := LineByteOffset(content, cmd.Offset)
		if err != nil {
			return 0, 0, err
		}
		end, err := LineByteOffset(content, cmd.Offset+cmd.Remove)
		if err != nil {
			end = len(content)
		}
		return start, end - start, nil

	case BaseRange:
		startLineOff, err := LineByteOffset(content, cmd.StartLine)
		if err != nil {
			return 0, 0, err
		}
		start, err := UTF16ToByteOffset(content, startLineOff, cmd.StartChar)
		if err != nil {
			return 0, 0, err
		}
		endLineOff, err := LineByteOffset(content, cmd.EndLine)
		if err != nil {
			return 0, 0, err
		}
		end, err := UTF16ToByteOffset(content, endLineOff, cmd.EndChar)
		if err != nil {
			return 0, 0, err
		}
		return start, end - start, nil

	default:
		return 0, 0, fmt.Errorf("editorproto: change: unknown base %d", cmd.Base)
	}
}

func (s *Session) applyChange(cmd Command) error {
	entry := s.Engine.FindFile(cmd.Path)
	content, _ := entry.Content()

	offset, removeLen, err := changeSpan(content, cmd)
	if err != nil {
		return fmt.Errorf("editorproto: change: %w", err)
	}
	if offset < 0 || removeLen < 0 || offset+removeLen > len(content) {
		return fmt.Errorf("editorproto: change: span out of range")
	}

	spliced := make([]byte, 0, len(content)-removeLen+len(cmd.Data))
	spliced = append(spliced, content[:offset]...)
	spliced = append(spliced, cmd.Data...)
	spliced = append(spliced, content[offset+removeLen:]...)

	s.Engine.VFS().SetEditBytes(entry, spliced)
	s.Engine.BeginChanges()
	s.Engine.NotifyFileChanges(entry, offset)
	s.Engine.EndChanges()
	return nil
}
