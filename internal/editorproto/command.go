// command.go - the EditorCommand sum type and its verb dispatch, ported
// from editor.c's editor_parse (§4.8).
package editorproto

import "fmt"

// CommandKind names a parsed editor command's verb.
type CommandKind int

const (
	CmdOpen CommandKind = iota
	CmdClose
	CmdChange
	CmdTheme
	CmdPreviousPage
	CmdNextPage
	CmdMoveWindow
	CmdRescan
	CmdMapWindow
	CmdUnmapWindow
	CmdStayOnTop
	CmdSynctexForward
	CmdCrop
	CmdInvert
)

func (k CommandKind) String() string {
	switch k {
	case CmdOpen:
		return "open"
	case CmdClose:
		return "close"
	case CmdChange:
		return "change"
	case CmdTheme:
		return "theme"
	case CmdPreviousPage:
		return "previous-page"
	case CmdNextPage:
		return "next-page"
	case CmdMoveWindow:
		return "move-window"
	case CmdRescan:
		return "rescan"
	case CmdMapWindow:
		return "map-window"
	case CmdUnmapWindow:
		return "unmap-window"
	case CmdStayOnTop:
		return "stay-on-top"
	case CmdSynctexForward:
		return "synctex-forward"
	case CmdCrop:
		return "crop"
	case CmdInvert:
		return "invert"
	default:
		return "unknown"
	}
}

// ChangeBase selects how a Change command's span was expressed.
type ChangeBase int

const (
	BaseByte ChangeBase = iota
	BaseLine
	BaseRange
)

// Command is the decoded form of one editor message, covering every verb
// editor.c recognizes. Only Open/Close/Change/PreviousPage/NextPage/
// Rescan/SynctexForward are core operations (§4.8); the rest are UI-only
// and are parsed for protocol completeness but never drive the engine.
type Command struct {
	Kind CommandKind

	Path string
	Data []byte // open's full buffer, or change's inserted bytes

	Base ChangeBase
	// BaseByte: Offset is a byte offset, Remove is a byte count.
	// BaseLine: Offset is a 0-based line, Remove is a line count.
	Offset int
	Remove int
	// BaseRange: UTF-16 code-unit columns within their lines.
	StartLine, StartChar int
	EndLine, EndChar      int

	Line int // SynctexForward

	ThemeBG, ThemeFG [3]float64
	WindowX, WindowY, WindowW, WindowH float64
	StayOnTop                         bool
}

// ParseCommand dispatches a decoded top-level Value (always a KindArray
// whose first element names the verb) into a Command.
func ParseCommand(v Value, isJSON bool) (Command, error) {
	if !v.IsArray() {
		return Command{}, fmt.Errorf("editorproto: command is not an array")
	}
	n := len(v.Arr)
	if n == 0 {
		return Command{}, fmt.Errorf("editorproto: empty command array")
	}

	verbVal := v.at(0)
	var verb string
	switch {
	case verbVal.IsName():
		verb = verbVal.Str
	case verbVal.IsString() && isJSON:
		verb = verbVal.Str
	default:
		return Command{}, fmt.Errorf("editorproto: command has no verb")
	}

	arity := func(want int) error {
		if n != want {
			return fmt.Errorf("editorproto: %s: invalid arity (got %d, want %d)", verb, n, want)
		}
		return nil
	}

	switch verb {
	case "open":
		if err := arity(3); err != nil {
			return Command{}, err
		}
		path, err := v.at(1).asString()
		if err != nil {
			return Command{}, fmt.Errorf("editorproto: open: %w", err)
		}
		data, err := v.at(2).asString()
		if err != nil {
			return Command{}, fmt.Errorf("editorproto: open: %w", err)
		}
		return Command{Kind: CmdOpen, Path: path, Data: []byte(data)}, nil

	case "close":
		if err := arity(2); err != nil {
			return Command{}, err
		}
		path, err := v.at(1).asString()
		if err != nil {
			return Command{}, fmt.Errorf("editorproto: close: %w", err)
		}
		return Command{Kind: CmdClose, Path: path}, nil

	case "change":
		if err := arity(5); err != nil {
			return Command{}, err
		}
		return parseChange(v, BaseByte)

	case "change-lines":
		if err := arity(5); err != nil {
			return Command{}, err
		}
		return parseChange(v, BaseLine)

	case "change-range":
		if err := arity(7); err != nil {
			return Command{}, err
		}
		path, err := v.at(1).asString()
		if err != nil {
			return Command{}, fmt.Errorf("editorproto: change-range: %w", err)
		}
		startLine, err1 := v.at(2).asNumber()
		startChar, err2 := v.at(3).asNumber()
		endLine, err3 := v.at(4).asNumber()
		endChar, err4 := v.at(5).asNumber()
		data, err5 := v.at(6).asString()
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
			return Command{}, fmt.Errorf("editorproto: change-range: invalid arguments")
		}
		return Command{
			Kind: CmdChange, Path: path, Data: []byte(data), Base: BaseRange,
			StartLine: int(startLine), StartChar: int(startChar),
			EndLine: int(endLine), EndChar: int(endChar),
		}, nil

	case "theme":
		if err := arity(3); err != nil {
			return Command{}, err
		}
		bg, err1 := parseColor(v.at(1))
		fg, err2 := parseColor(v.at(2))
		if err1 != nil || err2 != nil {
			return Command{}, fmt.Errorf("editorproto: theme: invalid arguments")
		}
		return Command{Kind: CmdTheme, ThemeBG: bg, ThemeFG: fg}, nil

	case "previous-page":
		if err := arity(1); err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdPreviousPage}, nil

	case "next-page":
		if err := arity(1); err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdNextPage}, nil

	case "move-window":
		if err := arity(5); err != nil {
			return Command{}, err
		}
		return parseWindow(v, CmdMoveWindow)

	case "rescan":
		if err := arity(1); err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdRescan}, nil

	case "map-window":
		if err := arity(5); err != nil {
			return Command{}, err
		}
		return parseWindow(v, CmdMapWindow)

	case "unmap-window":
		if err := arity(1); err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdUnmapWindow}, nil

	case "stay-on-top":
		if err := arity(2); err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdStayOnTop, StayOnTop: v.at(1).Truthy(isJSON)}, nil

	case "synctex-forward":
		if err := arity(3); err != nil {
			return Command{}, err
		}
		path, err := v.at(1).asString()
		if err != nil {
			return Command{}, fmt.Errorf("editorproto: synctex-forward: %w", err)
		}
		line, err := v.at(2).asNumber()
		if err != nil {
			return Command{}, fmt.Errorf("editorproto: synctex-forward: %w", err)
		}
		return Command{Kind: CmdSynctexForward, Path: path, Line: int(line)}, nil

	case "crop":
		if err := arity(1); err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdCrop}, nil

	case "invert":
		if err := arity(1); err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdInvert}, nil

	default:
		return Command{}, fmt.Errorf("editorproto: unknown verb: %s", verb)
	}
}

func parseChange(v Value, base ChangeBase) (Command, error) {
	path, err := v.at(1).asString()
	if err != nil {
		return Command{}, fmt.Errorf("editorproto: change: %w", err)
	}
	offset, err1 := v.at(2).asNumber()
	remove, err2 := v.at(3).asNumber()
	data, err3 := v.at(4).asString()
	if err1 != nil || err2 != nil || err3 != nil {
		return Command{}, fmt.Errorf("editorproto: change: invalid arguments")
	}
	return Command{
		Kind: CmdChange, Path: path, Data: []byte(data), Base: base,
		Offset: int(offset), Remove: int(remove),
	}, nil
}

func parseColor(v Value) ([3]float64, error) {
	var c [3]float64
	if len(v.Arr) < 3 {
		return c, fmt.Errorf("editorproto: color needs 3 components")
	}
	for i := 0; i < 3; i++ {
		n, err := v.at(i).asNumber()
		if err != nil {
			return c, err
		}
		c[i] = n
	}
	return c, nil
}

func parseWindow(v Value, kind CommandKind) (Command, error) {
	x, err1 := v.at(1).asNumber()
	y, err2 := v.at(2).asNumber()
	w, err3 := v.at(3).asNumber()
	h, err4 := v.at(4).asNumber()
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return Command{}, fmt.Errorf("editorproto: %v: invalid arguments", kind)
	}
	return Command{Kind: kind, WindowX: x, WindowY: y, WindowW: w, WindowH: h}, nil
}
