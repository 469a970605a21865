// texlive.go - TeXLive-backed resource resolution via kpsewhich's ls-R
// file database, grounded on orig/xetex/main/texlive_provider.c (§6.4's
// "-texlive" back end).
package resmgr

import (
	"bufio"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/texpresso-go/texpresso/internal/texlog"
)

// TeXLiveBackend resolves non-PDF resources by name against every ls-R
// database kpsewhich knows about, the same table list_texlive_files
// builds once per process. PDFs, same as DirBackend, come straight from
// the document directory instead — TeXLive's databases don't index the
// user's own document.
type TeXLiveBackend struct {
	documentDir string

	once    sync.Once
	loadErr error
	table   map[string]string // lookup name -> resolved path
}

func NewTeXLiveBackend(documentDir string) *TeXLiveBackend {
	return &TeXLiveBackend{documentDir: documentDir}
}

// load runs `kpsewhich --all -engine=xetex ls-R` to find every ls-R
// database on the system and indexes each one, mirroring
// list_texlive_files's popen-and-parse. Once-per-process, like the
// original's "static int loaded" guard.
func (b *TeXLiveBackend) load() error {
	b.table = make(map[string]string)

	out, err := exec.Command("kpsewhich", "--all", "-engine=xetex", "ls-R").Output()
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		path := strings.TrimSpace(scanner.Text())
		if path == "" {
			continue
		}
		b.indexLSRFile(path)
	}
	return scanner.Err()
}

func (b *TeXLiveBackend) ensureLoaded() error {
	b.once.Do(func() {
		if err := b.load(); err != nil {
			texlog.Warn("resmgr-texlive", "[resmgr] kpsewhich ls-R lookup failed: %v", err)
			b.loadErr = err
		}
	})
	return b.loadErr
}

// indexLSRFile parses one ls-R database (process_line): subdirectory
// header lines ("./fonts/tfm:" or ".:" for the root) switch the current
// subdirectory; every other line is a filename under it. root is the
// database file's own directory, the texmf tree it describes.
func (b *TeXLiveBackend) indexLSRFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	root := filepath.Dir(path)
	sub := ""
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if newSub, ok := parseLSRHeader(line); ok {
			sub = newSub
			continue
		}
		b.add(root, sub, line)
	}
}

// parseLSRHeader recognizes an ls-R subdirectory header and returns the
// subdirectory it introduces, relative to the tree root ("" for the root
// itself). Ports the original's two-branch "drop the trailing ':' or
// ':/', then the leading '.' or './'" into TrimSuffix/TrimPrefix calls.
func parseLSRHeader(line string) (sub string, ok bool) {
	if len(line) < 2 || line[0] != '.' || line[len(line)-1] != ':' {
		return "", false
	}
	body := strings.TrimSuffix(line, ":")
	body = strings.TrimSuffix(body, "/")
	body = strings.TrimPrefix(body, ".")
	body = strings.TrimPrefix(body, "/")
	return body, true
}

// add records name's resolved path, first occurrence wins — matching
// the original's "already having: %s" skip, since earlier texmf trees
// take priority over later ones in kpsewhich's search order.
func (b *TeXLiveBackend) add(root, sub, name string) {
	if _, exists := b.table[name]; exists {
		return
	}
	if sub == "" {
		b.table[name] = filepath.Join(root, name)
	} else {
		b.table[name] = filepath.Join(root, sub, name)
	}
}

// Resolve looks up name against the TeXLive file table, loading it on
// first use. It is the resolver internal/cache.ValidateTeXLive needs to
// re-check a recorded dependency the same way texlive_check_dependencies
// re-runs find(&table, name) rather than trusting a remembered path.
func (b *TeXLiveBackend) Resolve(name string) (path string, ok bool) {
	if err := b.ensureLoaded(); err != nil {
		return "", false
	}
	path, ok = b.table[name]
	return path, ok
}

func (b *TeXLiveBackend) OpenFile(kind ResKind, name string) (io.ReadCloser, error) {
	if kind == ResPDF {
		path := name
		if !filepath.IsAbs(name) {
			path = filepath.Join(b.documentDir, name)
		}
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, err
		}
		return f, nil
	}

	if err := b.ensureLoaded(); err != nil {
		return nil, err
	}
	path, ok := b.table[name]
	if !ok {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return f, nil
}

func (b *TeXLiveBackend) Close() error { return nil }
