// entry.go - FileEntry: one logical path's view across disk, editor and worker
package vfs

import "math"

// AccessLevel records how the worker currently uses a FileEntry.
type AccessLevel int

const (
	AccessNone AccessLevel = iota
	AccessRead
	AccessWrite
)

func (a AccessLevel) String() string {
	switch a {
	case AccessRead:
		return "READ"
	case AccessWrite:
		return "WRITE"
	default:
		return "NONE"
	}
}

// Sentinel values for FileEntry.Seen.
const (
	SeenNever    = -1
	SeenNotFound = math.MaxInt32
)

// Stat mirrors the filesystem metadata the VFS compares to detect disk-level
// changes (§4.7.6 detect_changes).
type Stat struct {
	Dev, Ino           uint64
	Mode               uint32
	Nlink              uint64
	Uid, Gid           uint32
	Rdev               uint64
	Size               int64
	Blksize, Blocks    int64
	Atime, Mtime, Ctime int64 // nanoseconds since epoch
}

// Same reports whether two stat snapshots describe identical metadata.
func (s Stat) Same(o Stat) bool {
	return s.Dev == o.Dev && s.Ino == o.Ino && s.Mode == o.Mode &&
		s.Nlink == o.Nlink && s.Uid == o.Uid && s.Gid == o.Gid &&
		s.Rdev == o.Rdev && s.Size == o.Size && s.Blksize == o.Blksize &&
		s.Blocks == o.Blocks && s.Atime == o.Atime && s.Mtime == o.Mtime &&
		s.Ctime == o.Ctime
}

// PicKey identifies a cached graphics bounding box by resource kind and page.
type PicKey struct {
	Type int
	Page int
}

// PicCache is the optional bounding-box cache on a FileEntry (§3).
type PicCache struct {
	Key    PicKey
	Bounds [4]float64
}

// FileEntry is one logical file path's state in the VFS (§3).
type FileEntry struct {
	Path string

	FSBytes    []byte
	HasFSBytes bool
	FSStat     Stat
	HasFSStat  bool

	EditBytes    []byte
	HasEditBytes bool

	SavedBytes    []byte
	HasSavedBytes bool
	Access        AccessLevel

	// Seen is the highest byte offset the worker has observably consumed.
	// It is mutated exclusively through the executor's trace (§4.7.3); the
	// VFS rollback log does not journal it.
	Seen int

	PicCache *PicCache

	// dirtyMark is log.mark+1 for the segment in which this entry was last
	// logged (0 if never logged); it
	// implements the snap_id de-duplication rule of §4.6.
	dirtyMark mark
}

// newFileEntry constructs a fresh entry with the invariant initial values
// from fs.c's filesystem_lookup_or_create.
func newFileEntry(path string) *FileEntry {
	return &FileEntry{
		Path: path,
		Seen: SeenNever,
	}
}

// Content returns the effective bytes the worker would read, per §3:
// saved_bytes if present, else edit_bytes, else fs_bytes.
func (e *FileEntry) Content() ([]byte, bool) {
	if e.HasSavedBytes {
		return e.SavedBytes, true
	}
	if e.HasEditBytes {
		return e.EditBytes, true
	}
	if e.HasFSBytes {
		return e.FSBytes, true
	}
	return nil, false
}
