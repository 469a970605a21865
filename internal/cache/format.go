// format.go - compiled-format cache, grounded on orig/src/engine/main/
// main.c's format_path/validate_format/bootstrap_format and orig/src/
// common/tectonic_provider.c's tectonic_record_version/check_version
// (§6.5's first bullet).
package cache

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FormatCache stores one .fmt file plus a .deps sidecar per (prefix,
// format name), mirroring format_path's "<cache>/format/<prefix><format>.fmt".
type FormatCache struct {
	dir string
}

func NewFormatCache() (*FormatCache, error) {
	dir, err := subdir("format")
	if err != nil {
		return nil, err
	}
	return &FormatCache{dir: dir}, nil
}

// Paths returns the .fmt and .deps paths for a given bundle prefix
// ("texlive-" or "tectonic-") and format name.
func (c *FormatCache) Paths(prefix, formatName string) (fmtPath, depsPath string) {
	base := filepath.Join(c.dir, prefix+formatName)
	return base + ".fmt", base + ".deps"
}

// Dependency is one TeXLive file a compiled format was produced from.
// Name is the lookup name passed to the TeXLive resolver (what
// texlive_file_path's record_dependency call records as its first
// line), not a resolved filesystem path: the original re-runs the
// name-to-path lookup at validation time rather than trusting a path
// recorded earlier, so a dependency is keyed the same way here.
type Dependency struct {
	Name    string
	Size    int64
	ModTime int64 // unix seconds
}

// RecordTeXLive writes deps as the .deps sidecar, two lines per entry —
// the lookup name, then "size:mtime" — matching texlive_file_path's
// fprintf(record_dependency, "%s\n%d:%d\n", name, size, mtime).
func RecordTeXLive(depsPath string, deps []Dependency) error {
	f, err := os.Create(depsPath)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, d := range deps {
		fmt.Fprintf(w, "%s\n%d:%d\n", d.Name, d.Size, d.ModTime)
	}
	return w.Flush()
}

// ValidateTeXLive reports whether every recorded dependency still
// resolves, through resolve, to a file with the recorded size and
// mtime (texlive_check_dependencies: re-looks-up each name through the
// TeXLive file table rather than stat'ing a remembered path, so a
// dependency that moved between runs is still caught as "resolves to
// something different" rather than silently validating a stale path).
func ValidateTeXLive(depsPath string, resolve func(name string) (path string, ok bool)) bool {
	f, err := os.Open(depsPath)
	if err != nil {
		return false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for {
		dep, ok, malformed := scanNextDependency(scanner)
		if malformed {
			return false
		}
		if !ok {
			break
		}
		path, ok := resolve(dep.Name)
		if !ok {
			return false
		}
		st, err := os.Stat(path)
		if err != nil {
			return false
		}
		if st.Size() != dep.Size || st.ModTime().Unix() != dep.ModTime {
			return false
		}
	}
	return scanner.Err() == nil
}

// scanNextDependency reads one name line and one "size:mtime" line off
// scanner. ok is false at a clean end of file; malformed is true for a
// record that is cut short or does not parse, same as
// texlive_check_dependencies treating a short fscanf match as failure.
func scanNextDependency(scanner *bufio.Scanner) (dep Dependency, ok, malformed bool) {
	if !scanner.Scan() {
		return Dependency{}, false, false
	}
	name := scanner.Text()
	if !scanner.Scan() {
		return Dependency{}, false, true
	}
	size, mtime, found := strings.Cut(scanner.Text(), ":")
	if !found {
		return Dependency{}, false, true
	}
	sz, err1 := strconv.ParseInt(size, 10, 64)
	mt, err2 := strconv.ParseInt(mtime, 10, 64)
	if err1 != nil || err2 != nil {
		return Dependency{}, false, true
	}
	return Dependency{Name: name, Size: sz, ModTime: mt}, true, false
}

// tectonicAbsentMarker is tectonic_record_version's "!" sentinel: written
// instead of a SHA256SUM body when Tectonic itself could not be queried,
// so ValidateTectonic can tell "no bundle available" from "stale bundle"
// apart without a third return value.
const tectonicAbsentMarker = "!"

// RecordTectonic writes the Tectonic bundle's SHA256SUM contents (or the
// absent marker, if sha256sum is nil) as the .deps sidecar
// (tectonic_record_version).
func RecordTectonic(depsPath string, sha256sum []byte) error {
	if sha256sum == nil {
		return os.WriteFile(depsPath, []byte(tectonicAbsentMarker), 0o644)
	}
	return os.WriteFile(depsPath, sha256sum, 0o644)
}

// ValidateTectonic reports whether the recorded SHA256SUM still matches
// the bundle's current one (tectonic_check_version); a nil current
// checksum only validates against a previously-recorded absent marker.
func ValidateTectonic(depsPath string, sha256sum []byte) bool {
	recorded, err := os.ReadFile(depsPath)
	if err != nil {
		return false
	}
	if sha256sum == nil {
		return string(recorded) == tectonicAbsentMarker
	}
	return bytes.Equal(recorded, sha256sum)
}

// Valid reports whether both the .fmt file and its .deps sidecar exist
// and the sidecar's dependencies still check out, mirroring
// validate_format's two-stage "access() then dependency check".
func (c *FormatCache) Valid(fmtPath, depsPath string, validateDeps func(depsPath string) bool) bool {
	if _, err := os.Stat(fmtPath); err != nil {
		return false
	}
	if _, err := os.Stat(depsPath); err != nil {
		return false
	}
	return validateDeps(depsPath)
}
