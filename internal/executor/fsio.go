// fsio.go - disk-backed path resolution for OPRD, mirroring lookup_path and
// expand_path's fall back from the document directory to the inclusion
// path (§4.7.2)
package executor

import (
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/texpresso-go/texpresso/internal/vfs"
)

func statFromOS(fi os.FileInfo) vfs.Stat {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return vfs.Stat{Size: fi.Size(), Mtime: fi.ModTime().UnixNano()}
	}
	return vfs.Stat{
		Dev: uint64(st.Dev), Ino: st.Ino, Mode: uint32(st.Mode),
		Nlink: uint64(st.Nlink), Uid: st.Uid, Gid: st.Gid, Rdev: uint64(st.Rdev),
		Size: st.Size, Blksize: int64(st.Blksize), Blocks: st.Blocks,
		Atime: st.Atim.Nano(), Mtime: st.Mtim.Nano(), Ctime: st.Ctim.Nano(),
	}
}

// lookupPath resolves path against the document directory first, then
// (unless path is absolute or a "./" path) against inclusionPath, matching
// expand_path/lookup_path.
func (e *Engine) lookupPath(path string) (fsPath string, st vfs.Stat, ok bool) {
	if fi, err := os.Stat(path); err == nil {
		return path, statFromOS(fi), true
	}
	if e.InclusionPath == "" || filepath.IsAbs(path) {
		return "", vfs.Stat{}, false
	}
	trimmed := strings.TrimPrefix(path, "./")
	candidate := filepath.Join(e.InclusionPath, trimmed)
	if fi, err := os.Stat(candidate); err == nil {
		return candidate, statFromOS(fi), true
	}
	return "", vfs.Stat{}, false
}
