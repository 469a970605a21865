// opentable.go - worker-visible open file table (§4.6 CELL records)
package vfs

import "fmt"

// MaxFiles bounds the numbered file-descriptor slots a worker can hold open
// simultaneously, mirroring the original's fixed-size descriptor table.
const MaxFiles = 256

type openFileSlot struct {
	entry     *FileEntry
	open      bool
	dirtyMark mark
}

// OpenFileTable tracks which FileEntry backs each of the worker's named
// singleton streams (stdout, document, synctex, log) and numbered file
// descriptors, with every slot mutation journaled through Log.
type OpenFileTable struct {
	log *Log

	stdout, document, synctex, logFile openFileSlot
	files                              [MaxFiles]openFileSlot
}

// NewOpenFileTable creates an empty table bound to log.
func NewOpenFileTable(log *Log) *OpenFileTable {
	return &OpenFileTable{log: log}
}

func (t *OpenFileTable) namedSlot(name string) (*openFileSlot, error) {
	switch name {
	case "stdout":
		return &t.stdout, nil
	case "document":
		return &t.document, nil
	case "synctex":
		return &t.synctex, nil
	case "log":
		return &t.logFile, nil
	default:
		return nil, fmt.Errorf("vfs: unknown named stream %q", name)
	}
}

// OpenNamed binds one of the singleton streams to entry. It is a VFS
// invariant breach (§7) to open a singleton stream that is already open.
func (t *OpenFileTable) OpenNamed(name string, entry *FileEntry) error {
	slot, err := t.namedSlot(name)
	if err != nil {
		return err
	}
	if slot.open {
		return fmt.Errorf("vfs: %s is already open", name)
	}
	t.log.logCell(slot)
	slot.entry = entry
	slot.open = true
	return nil
}

// CloseNamed releases a singleton stream.
func (t *OpenFileTable) CloseNamed(name string) error {
	slot, err := t.namedSlot(name)
	if err != nil {
		return err
	}
	t.log.logCell(slot)
	slot.entry = nil
	slot.open = false
	return nil
}

// NamedEntry returns the entry bound to a singleton stream, or nil.
func (t *OpenFileTable) NamedEntry(name string) *FileEntry {
	slot, err := t.namedSlot(name)
	if err != nil || !slot.open {
		return nil
	}
	return slot.entry
}

// Open binds numbered descriptor fid to entry.
func (t *OpenFileTable) Open(fid int, entry *FileEntry) error {
	if fid < 0 || fid >= MaxFiles {
		return fmt.Errorf("vfs: file id %d out of range", fid)
	}
	slot := &t.files[fid]
	if slot.open {
		return fmt.Errorf("vfs: fid %d is already open", fid)
	}
	t.log.logCell(slot)
	slot.entry = entry
	slot.open = true
	return nil
}

// Close releases numbered descriptor fid.
func (t *OpenFileTable) Close(fid int) error {
	if fid < 0 || fid >= MaxFiles {
		return fmt.Errorf("vfs: file id %d out of range", fid)
	}
	slot := &t.files[fid]
	t.log.logCell(slot)
	slot.entry = nil
	slot.open = false
	return nil
}

// Entry returns the entry bound to fid, or nil if fid is not open.
func (t *OpenFileTable) Entry(fid int) *FileEntry {
	if fid < 0 || fid >= MaxFiles {
		return nil
	}
	slot := &t.files[fid]
	if !slot.open {
		return nil
	}
	return slot.entry
}
