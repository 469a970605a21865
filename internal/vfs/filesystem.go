// filesystem.go - linear-probed path table backing the VFS (§4.6)
package vfs

import "strings"

const initialCapacity = 64

type cell struct {
	hash    uint64
	entry   *FileEntry
	present bool
}

// FileSystem is a map from normalized path to FileEntry,
// backed by an open-addressing hash table grown at 3/4 load factor.
type FileSystem struct {
	table []cell
	count int
	log   *Log
}

// NewFileSystem creates an empty path table bound to the given rollback log.
func NewFileSystem(log *Log) *FileSystem {
	return &FileSystem{
		table: make([]cell, initialCapacity),
		log:   log,
	}
}

// normalizePath strips a leading "./" (and any further slashes), matching
// fs.c's normalize_path.
func normalizePath(path string) string {
	if strings.HasPrefix(path, "./") {
		path = path[2:]
		path = strings.TrimLeft(path, "/")
	}
	return path
}

// sdbmHash is the sdbm string hash used by fs.c's table_get.
func sdbmHash(s string) uint64 {
	var hash uint64
	for i := 0; i < len(s); i++ {
		c := uint64(s[i])
		hash = c + (hash << 6) + (hash << 16) - hash
	}
	return hash * 2654435761
}

func (fs *FileSystem) find(path string) int {
	mask := uint64(len(fs.table) - 1)
	hash := sdbmHash(path)
	index := hash & mask
	for fs.table[index].present {
		c := &fs.table[index]
		if c.hash == hash && c.entry.Path == path {
			break
		}
		index = (index + 1) & mask
	}
	return int(index)
}

// Lookup returns the entry for path, or nil if the VFS has never seen it.
func (fs *FileSystem) Lookup(path string) *FileEntry {
	path = normalizePath(path)
	idx := fs.find(path)
	if !fs.table[idx].present {
		return nil
	}
	return fs.table[idx].entry
}

// LookupOrCreate returns the entry for path, creating one with the initial
// invariant field values (§3) if absent.
func (fs *FileSystem) LookupOrCreate(path string) *FileEntry {
	path = normalizePath(path)
	idx := fs.find(path)
	if fs.table[idx].present {
		return fs.table[idx].entry
	}

	entry := newFileEntry(path)
	fs.table[idx] = cell{hash: sdbmHash(path), entry: entry, present: true}
	fs.count++

	if fs.count*4 >= len(fs.table)*3 {
		fs.resize(len(fs.table) * 2)
	}
	return entry
}

func (fs *FileSystem) resize(newCap int) {
	newTable := make([]cell, newCap)
	mask := uint64(newCap - 1)
	for _, old := range fs.table {
		if !old.present {
			continue
		}
		index := old.hash & mask
		for newTable[index].present {
			index = (index + 1) & mask
		}
		newTable[index] = old
	}
	fs.table = newTable
}

// ForEach calls fn for every live entry in table order; fn returning false
// stops the scan early.
func (fs *FileSystem) ForEach(fn func(*FileEntry) bool) {
	for _, c := range fs.table {
		if !c.present {
			continue
		}
		if !fn(c.entry) {
			return
		}
	}
}

// Count returns the number of live entries.
func (fs *FileSystem) Count() int { return fs.count }
