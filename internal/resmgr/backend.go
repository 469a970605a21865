// backend.go - bundle back ends: plain document directory, served bundle (§4.2, §6.3)
package resmgr

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	)

// Backend resolves a (kind, name) pair to an input stream, or reports
// absence without error — a missing resource is routine, not exceptional
// (§4.2 "Failure").
type Backend interface {
	OpenFile(kind ResKind, name string) (io.ReadCloser, error)
	Close() error
}

// DirBackend serves PDFs relative to the document directory and everything
// else directly off the filesystem, mirroring tectonic_hooks_open_file's
// plain "no bundle, just a TEXMF-less directory" mode.
type DirBackend struct {
	documentDir string
}

func NewDirBackend(documentDir string) *DirBackend {
	return &DirBackend{documentDir: documentDir}
}

func (b *DirBackend) resolvePath(kind ResKind, name string) string {
	if kind == ResPDF {
		if filepath.IsAbs(name) {
			return name
		}
		return filepath.Join(b.documentDir, name)
	}
	return name
}

func (b *DirBackend) OpenFile(kind ResKind, name string) (io.ReadCloser, error) {
	path := b.resolvePath(kind, name)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return f, nil
}

func (b *DirBackend) Close() error { return nil }

// BundleServeBackend talks to a `tectonic -X bundle serve` child process
// over a pair of pipes, serializing requests with an in-process mutex,
// since the child only handles one request at a time.
type BundleServeBackend struct {
	documentDir string
	cmd         *exec.Cmd
	toChild     io.WriteCloser
	fromChild   *bufio.Reader
	fromChildRC io.Closer
	mu          sync.Mutex
}

// NewBundleServeBackend spawns tectonicPath in bundle-serve mode.
func NewBundleServeBackend(tectonicPath, documentDir string) (*BundleServeBackend, error) {
	cmd := exec.Command(tectonicPath, "-X", "bundle", "serve")
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &BundleServeBackend{
		documentDir: documentDir,
		cmd:         cmd,
		toChild:     stdin,
		fromChild:   bufio.NewReaderSize(stdout, 64*1024),
		fromChildRC: stdout,
	}, nil
}

// cat sends one "<name>\n" request and reads the 9-byte status+size answer
// plus its payload, exactly as bundle_serve_hooks_cat.
func (b *BundleServeBackend) cat(name string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := io.WriteString(b.toChild, name+"\n"); err != nil {
		return nil, fmt.Errorf("resmgr: bundle serve request: %w", err)
	}

	var answer [9]byte
	if _, err := io.ReadFull(b.fromChild, answer[:]); err != nil {
		return nil, fmt.Errorf("resmgr: bundle serve answer: %w", err)
	}

	status := answer[0]
	switch status {
	case 'C', 'P', 'E':
	default:
		return nil, fmt.Errorf("resmgr: bundle serve: unknown response %q", status)
	}

	size := binary.LittleEndian.Uint64(answer[1:9])
	payload := make([]byte, size)
	if size > 0 {
		if _, err := io.ReadFull(b.fromChild, payload); err != nil {
			return nil, fmt.Errorf("resmgr: bundle serve payload: %w", err)
		}
	}

	switch status {
	case 'C':
		return io.NopCloser(bytes.NewReader(payload)), nil
	case 'P':
		return os.Open(string(payload))
	default:
		return nil, fmt.Errorf("resmgr: bundle serve: %s", payload)
	}
}

func (b *BundleServeBackend) OpenFile(kind ResKind, name string) (io.ReadCloser, error) {
	if kind == ResPDF {
		var path string
		if filepath.IsAbs(name) {
			path = name
		} else {
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
	rc, err := b.cat(name)
	if err != nil {
		return nil, err
	}
	return rc, nil
}

func (b *BundleServeBackend) Close() error {
	b.toChild.Close()
	b.fromChildRC.Close()
	return b.cmd.Wait()
}
