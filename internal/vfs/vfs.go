// vfs.go - the VFS facade: path table + rollback log + open file table
package vfs

// VFS bundles the three pieces of state §4.6 says move together: the path
// table, the undo log, and the worker-visible open file table.
type VFS struct {
	Log   *Log
	Files *FileSystem
	Open  *OpenFileTable
}

// New creates an empty VFS.
func New() *VFS {
	log := NewLog()
	return &VFS{
		Log:   log,
		Files: NewFileSystem(log),
		Open:  NewOpenFileTable(log),
	}
}

// Lookup returns the entry for path, or nil.
func (v *VFS) Lookup(path string) *FileEntry { return v.Files.Lookup(path) }

// LookupOrCreate returns (creating if necessary) the entry for path.
func (v *VFS) LookupOrCreate(path string) *FileEntry { return v.Files.LookupOrCreate(path) }

// SetEditBytes updates the editor's view of a file's contents. Per §3 this
// field is not journaled by the rollback log: edits are the cause of
// rewinds, not state the executor ever restores.
func (v *VFS) SetEditBytes(e *FileEntry, data []byte) {
	e.EditBytes = data
	e.HasEditBytes = true
}

// ClearEditBytes removes the editor's view (editor "close" command).
func (v *VFS) ClearEditBytes(e *FileEntry) {
	e.EditBytes = nil
	e.HasEditBytes = false
}

// SetFSBytes records bytes last read from disk, likewise unjournaled.
func (v *VFS) SetFSBytes(e *FileEntry, data []byte, st Stat) {
	e.FSBytes = data
	e.HasFSBytes = true
	e.FSStat = st
	e.HasFSStat = true
}

// WriteSaved journals and applies a worker write: either the entry has no
// saved content yet (first WRIT binds the whole buffer) or the write lands
// inside the existing saved buffer and is logged as an OVERWRITE.
func (v *VFS) WriteSaved(e *FileEntry, offset int, data []byte) error {
	if !e.HasSavedBytes {
		buf := make([]byte, offset+len(data))
		v.Log.SetSavedBytes(e, buf, AccessWrite)
	}
	need := offset + len(data)
	if need > len(e.SavedBytes) {
		grown := make([]byte, need)
		copy(grown, e.SavedBytes)
		v.Log.SetSavedBytes(e, grown, AccessWrite)
	}
	v.Log.Overwrite(e.SavedBytes, offset, data)
	return nil
}

// OpenForRead journals binding a read-only worker view onto content,
// matching the OPRD query handler's effect on the VFS.
func (v *VFS) OpenForRead(e *FileEntry, data []byte) {
	v.Log.SetSavedBytes(e, data, AccessRead)
}

// CloseSaved journals clearing the worker's saved view of an entry.
func (v *VFS) CloseSaved(e *FileEntry) {
	v.Log.ClearSavedBytes(e)
}
