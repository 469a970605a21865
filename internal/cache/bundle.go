// bundle.go - per-file bundle cache, grounded on orig/src/common/
// tectonic_provider.c's tectonic_get_file/check_cache_validity/
// prepare_cache (§6.5's second bullet). The subprocess itself is
// internal/resmgr.BundleServeBackend's concern; this package only owns
// the on-disk mirror and its SHA256SUM-keyed invalidation.
package cache

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// sha256sumName is the bundle's version marker file: its content
// changing invalidates every other cached entry (check_cache_validity).
const sha256sumName = "SHA256SUM"

// BundleCache mirrors individual bundle files under <cache>/tectonic/<name>.
type BundleCache struct {
	dir string
}

func NewBundleCache() (*BundleCache, error) {
	dir, err := subdir("tectonic")
	if err != nil {
		return nil, err
	}
	return &BundleCache{dir: dir}, nil
}

// path returns the cached path for name, rejecting traversal outside dir.
func (c *BundleCache) path(name string) (string, bool) {
	p := filepath.Join(c.dir, name)
	if !strings.HasPrefix(p, c.dir) {
		return "", false
	}
	return p, true
}

// CheckValidity reports whether the cache's recorded SHA256SUM matches
// the bundle's current one (check_cache_validity). A read failure (no
// cache yet, or no SHA256SUM recorded) reports invalid, matching the
// original's "give up, treat as uninitialized" behavior.
func (c *BundleCache) CheckValidity(currentSHA256SUM []byte) bool {
	path, ok := c.path(sha256sumName)
	if !ok {
		return false
	}
	recorded, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return bytes.Equal(recorded, currentSHA256SUM)
}

// Invalidate removes every cached file (prepare_cache's readdir+unlink
// loop), to be called once CheckValidity has reported staleness.
func (c *BundleCache) Invalidate() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the cached local path for name, fetching it through fetch
// and persisting the result on a cache miss (tectonic_get_file). A nil
// ReadCloser from fetch (name absent in the bundle) is reported back as
// ("", nil), same as the original's NULL-on-absent convention.
func (c *BundleCache) Get(name string, fetch func(name string) (io.ReadCloser, error)) (string, error) {
	path, ok := c.path(name)
	if !ok {
		return "", nil
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	rc, err := fetch(name)
	if err != nil {
		return "", err
	}
	if rc == nil {
		return "", nil
	}
	defer rc.Close()

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", err
	}
	return path, nil
}
