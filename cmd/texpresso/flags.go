// flags.go - CLI flag parsing, generalized from the teacher's test
// harnesses' flag.Bool/flag.Int pairs and xyproto-flapc/main.go's full
// multi-flag shape (SPEC_FULL.md §1 "Configuration") into the one
// positional argument plus handful of named options §6.4 and SUPPLEMENTED
// FEATURE 4 (-quiet/-verbose) need.
package main

import (
	"flag"
	"fmt"
)

// options holds the parsed, validated command line.
type options struct {
	docPath      string
	tectonic     bool
	texlive      bool
	texpresso    bool
	bundleURL    string
	tectonicPath string
	json         bool
	lineOutput   bool
	quiet        bool
	verbose      bool
}

// parseFlags parses args (normally os.Args[1:]) into options, enforcing
// the mutual exclusions main.c's argument loop enforces ("Provide either
// -tectonic or -texlive.", orig/src/engine/main/main.c).
func parseFlags(args []string) (options, error) {
	fs := flag.NewFlagSet("texpresso", flag.ContinueOnError)

	var o options
	fs.BoolVar(&o.tectonic, "tectonic", false, "resolve fonts and packages from the Tectonic bundle")
	fs.BoolVar(&o.texlive, "texlive", false, "resolve fonts and packages from a local TeXLive installation")
	fs.BoolVar(&o.texpresso, "texpresso", false, "accepted for CLI compatibility; this orchestrator always speaks the editor protocol over stdin/stdout")
	fs.StringVar(&o.bundleURL, "bundle", defaultBundleURL, "Tectonic bundle URL, used only with -tectonic")
	fs.StringVar(&o.tectonicPath, "tectonic-path", "tectonic", "path to the tectonic binary")
	fs.BoolVar(&o.json, "json", false, "use JSON framing instead of S-expressions on stdin/stdout")
	fs.BoolVar(&o.lineOutput, "line-output", false, "report stdout/log growth as whole completed lines instead of byte ranges")
	fs.BoolVar(&o.quiet, "quiet", false, "suppress informational logging")
	fs.BoolVar(&o.verbose, "verbose", false, "print additional diagnostic logging")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: %s [options] document.tex\n\nOptions:\n", fs.Name())
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if o.tectonic && o.texlive {
		return options{}, fmt.Errorf("texpresso: provide either -tectonic or -texlive, not both")
	}
	if o.quiet && o.verbose {
		return options{}, fmt.Errorf("texpresso: -quiet and -verbose are mutually exclusive")
	}

	rest := fs.Args()
	if len(rest) != 1 {
		return options{}, fmt.Errorf("texpresso: expected exactly one document path, got %d", len(rest))
	}
	o.docPath = rest[0]

	return o, nil
}
