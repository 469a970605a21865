// backend.go - bundle back end auto-selection (§6.4), grounded on
// orig/src/engine/main/main.c's texlive_available()/tectonic_available()
// checks and its "prefer TeXLive, then Tectonic, else fail" default.
package main

import (
	"fmt"
	"os/exec"

	"github.com/texpresso-go/texpresso/internal/resmgr"
)

func texliveAvailable() bool {
	_, err := exec.LookPath("kpsewhich")
	return err == nil
}

func tectonicAvailable(tectonicPath string) bool {
	_, err := exec.LookPath(tectonicPath)
	return err == nil
}

// selectBackend picks the Backend that resolves fonts, maps and auxiliary
// files: an explicit -tectonic/-texlive flag wins; absent either, prefer
// TeXLive when kpsewhich is on PATH, then Tectonic, else fail — the same
// order main()'s fallback chain uses.
func selectBackend(o options, documentDir string) (resmgr.Backend, error) {
	switch {
	case o.tectonic:
		return resmgr.NewBundleServeBackend(o.tectonicPath, documentDir)
	case o.texlive:
		if !texliveAvailable() {
			return nil, fmt.Errorf("-texlive given but kpsewhich is not on PATH")
		}
		return resmgr.NewTeXLiveBackend(documentDir), nil
	}

	if texliveAvailable() {
		return resmgr.NewTeXLiveBackend(documentDir), nil
	}
	if tectonicAvailable(o.tectonicPath) {
		return resmgr.NewBundleServeBackend(o.tectonicPath, documentDir)
	}
	return nil, fmt.Errorf("neither a TeXLive installation (kpsewhich) nor %s was found on PATH", o.tectonicPath)
}
