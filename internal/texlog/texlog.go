// texlog.go - shared stderr logging, recoverable warnings, fatal aborts (§7)
package texlog

import (
	"fmt"
	"os"
	"sync"
)

var (
	mu         sync.Mutex
	seen       = map[string]bool{}
	hadWarning bool

	// Colorize is set by the CLI once, from golang.org/x/term.IsTerminal on
	// stderr, so warnings stand out in an interactive session without
	// emitting raw escape codes into a pipe or log file.
	Colorize bool

	// Quiet suppresses Printf's routine status lines when set by -quiet;
	// Warn and Fatal are never suppressed by it (SUPPLEMENTED FEATURE 4).
	Quiet bool
)

const (
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

// Warn prints a subsystem-prefixed diagnostic to stderr at most once per
// distinct key. Resource loads, unrecognized specials and malformed
// streams are all recoverable (§4.2, §4.3.6, §7) and must not repeat on
// every incremental rebuild once the cause has been reported.
func Warn(key, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	hadWarning = true
	if seen[key] {
		return
	}
	seen[key] = true
	if Colorize {
		fmt.Fprint(os.Stderr, ansiYellow)
	}
	fmt.Fprintf(os.Stderr, format, args...)
	if Colorize {
		fmt.Fprint(os.Stderr, ansiReset)
	}
	fmt.Fprintln(os.Stderr)
}

// HadWarning reports whether Warn or Fatal has fired since the last Reset,
// for §6.4's exit code (0 on a spotless run, 1 on any warning or worse).
func HadWarning() bool {
	mu.Lock()
	defer mu.Unlock()
	return hadWarning
}

// Reset clears the dedup table and the warning flag, e.g. between test
// cases or between documents opened by the same orchestrator process.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	seen = map[string]bool{}
	hadWarning = false
}

// Printf prints a routine status line (e.g. "[dvi] loading %s") that isn't
// a warning, unless Quiet is set.
func Printf(format string, args ...any) {
	mu.Lock()
	quiet := Quiet
	mu.Unlock()
	if quiet {
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// Fatal reports a violation of the core's own invariants and aborts the
// process (§7: "anything the core does wrong to its own invariants is
// fatal"). Unlike Warn it is never deduplicated and never returns.
func Fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal: "+format+"\n", args...)
	os.Exit(1)
}
