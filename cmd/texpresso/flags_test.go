package main

import "testing"

func TestParseFlagsRequiresExactlyOneDocument(t *testing.T) {
	if _, err := parseFlags(nil); err == nil {
		t.Fatal("expected an error with no document path given")
	}
	if _, err := parseFlags([]string{"a.tex", "b.tex"}); err == nil {
		t.Fatal("expected an error with two document paths given")
	}
}

func TestParseFlagsRejectsTectonicAndTexliveTogether(t *testing.T) {
	if _, err := parseFlags([]string{"-tectonic", "-texlive", "doc.tex"}); err == nil {
		t.Fatal("expected an error when both -tectonic and -texlive are given")
	}
}

func TestParseFlagsRejectsQuietAndVerboseTogether(t *testing.T) {
	if _, err := parseFlags([]string{"-quiet", "-verbose", "doc.tex"}); err == nil {
		t.Fatal("expected an error when both -quiet and -verbose are given")
	}
}

func TestParseFlagsDefaults(t *testing.T) {
	o, err := parseFlags([]string{"doc.tex"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.docPath != "doc.tex" {
		t.Fatalf("docPath = %q", o.docPath)
	}
	if o.bundleURL != defaultBundleURL {
		t.Fatalf("bundleURL = %q, want default", o.bundleURL)
	}
	if o.tectonicPath != "tectonic" {
		t.Fatalf("tectonicPath = %q", o.tectonicPath)
	}
	if o.json || o.lineOutput || o.quiet || o.verbose || o.tectonic || o.texlive {
		t.Fatalf("expected every boolean flag to default false, got %+v", o)
	}
}

func TestParseFlagsParsesEveryOption(t *testing.T) {
	o, err := parseFlags([]string{
		"-texlive", "-json", "-line-output", "-verbose",
		"-bundle", "https://example.test/bundle.tar",
		"-tectonic-path", "/opt/bin/tectonic",
		"doc.tex",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !o.texlive || !o.json || !o.lineOutput || !o.verbose {
		t.Fatalf("expected every named boolean flag set, got %+v", o)
	}
	if o.bundleURL != "https://example.test/bundle.tar" {
		t.Fatalf("bundleURL = %q", o.bundleURL)
	}
	if o.tectonicPath != "/opt/bin/tectonic" {
		t.Fatalf("tectonicPath = %q", o.tectonicPath)
	}
}
