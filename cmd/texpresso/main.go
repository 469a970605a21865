// main.go - orchestrator entry point: flag parsing, back end selection,
// subsystem wiring (§6.4)
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"golang.org/x/term"

	"github.com/texpresso-go/texpresso/internal/editorproto"
	"github.com/texpresso-go/texpresso/internal/executor"
	"github.com/texpresso-go/texpresso/internal/render"
	"github.com/texpresso-go/texpresso/internal/resmgr"
	"github.com/texpresso-go/texpresso/internal/texlog"
)

// defaultBundleURL is the bundle texpresso-go asks Tectonic to fetch fonts
// and packages from when -bundle names none, matching Tectonic's own
// built-in default ("tectonic -X build" uses the same URL absent -b/--bundle).
const defaultBundleURL = "https://relay.fullyjustified.net/default_bundle.tar"

func main() {
	os.Exit(run())
}

// run wraps the whole CLI in a recover so an internal invariant violation
// prints a diagnosable trace instead of an opaque stack dump mid-protocol,
// the Go equivalent of the teacher's print-then-abort path through a fatal
// error (no direct teacher counterpart: main.go itself never recovers, but
// §7's "anything the core does wrong to its own invariants is fatal" still
// wants one clean exit path rather than a bare panic to the terminal).
func run() (exitCode int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "texpresso: fatal: %v\n", r)
			debug.PrintStack()
			exitCode = 1
		}
	}()

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	documentDir := filepath.Dir(opts.docPath)
	name := filepath.Base(opts.docPath)

	backend, err := selectBackend(opts, documentDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "texpresso: %v\n", err)
		return 1
	}
	defer backend.Close()

	mgr := resmgr.New(backend)
	defer mgr.Close()

	dev := render.NewRecorder()
	eng := executor.New(name, opts.tectonicPath, documentDir, mgr, dev)
	eng.BundleURL = opts.bundleURL
	defer eng.Destroy()

	sess := editorproto.NewSession(eng)
	enc := editorproto.NewEncoder(os.Stdout, opts.json, opts.lineOutput)

	var source commandSource
	if opts.json {
		source = editorproto.NewJSONParser(os.Stdin)
	} else {
		source = newSexpReader(os.Stdin)
	}

	texlog.Reset()
	texlog.Colorize = !opts.quiet && term.IsTerminal(int(os.Stderr.Fd()))
	texlog.Quiet = opts.quiet
	// -verbose is accepted for CLI parity with the original's log-level
	// flags; informational logging is unconditional by default here, so
	// it has nothing further to enable.
	_ = opts.verbose

	if err := driveLoop(sess, enc, source, opts.json, opts.lineOutput); err != nil {
		fmt.Fprintf(os.Stderr, "texpresso: %v\n", err)
		return 1
	}

	if texlog.HadWarning() {
		return 1
	}
	return 0
}
