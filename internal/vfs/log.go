// log.go - append-only undo log backing VFS rollback (§4.6)
package vfs

// mark identifies a position in the log; mark+1 is the "snap_id" stamp
// compared against FileEntry.dirtyMark to collapse repeated mutations of the
// same entry within one snapshot segment into a single record (the +1 keeps
// a never-logged entry's zero dirtyMark from matching mark 0).
type mark int

// Mark is the public handle returned by Snapshot and accepted by Rollback.
type Mark = mark

// record is one undo record; applying undo restores the field(s) it saved.
type record interface {
	undo()
}

// Log is the append-only, tagged undo log described in §4.6. Every mutation
// of a FileEntry's logged fields (SavedBytes, Access) or of an open-file
// table cell is preceded by an undo record describing how to reverse it.
type Log struct {
	records []record
	mark    mark
}

// NewLog creates an empty log positioned at mark 0.
func NewLog() *Log {
	return &Log{mark: 0}
}

// Snapshot returns the log's current position, usable as a later Rollback
// target. It also starts a new de-duplication segment: the next mutation of
// any given entry or cell will be logged even if it was logged just before
// this call.
func (l *Log) Snapshot() Mark {
	l.mark = mark(len(l.records))
	return l.mark
}

// Rollback pops records until the log length equals mark, applying each
// record's undo in reverse order, then re-establishes mark as the current
// snapshot position.
func (l *Log) Rollback(m Mark) {
	if int(m) > len(l.records) {
		panic("vfs: rollback mark beyond log length")
	}
	for len(l.records) > int(m) {
		last := l.records[len(l.records)-1]
		l.records = l.records[:len(l.records)-1]
		last.undo()
		switch r := last.(type) {
		case *entryRecord:
			r.entry.dirtyMark = 0
		case *cellRecord:
			r.slot.dirtyMark = 0
		}
	}
	l.mark = m
}

// Len reports the number of live undo records (used by tests asserting
// rollback idempotence leaves no residue beyond the target mark).
func (l *Log) Len() int { return len(l.records) }

// --- ENTRY records: saved_bytes + access_level, de-duplicated per entry ---

type entryRecord struct {
	entry         *FileEntry
	savedBytes    []byte
	hasSavedBytes bool
	access        AccessLevel
}

func (r *entryRecord) undo() {
	r.entry.SavedBytes = r.savedBytes
	r.entry.HasSavedBytes = r.hasSavedBytes
	r.entry.Access = r.access
}

// logEntry appends an ENTRY record for entry if it hasn't already been
// logged in the current snapshot segment.
func (l *Log) logEntry(e *FileEntry) {
	stamp := l.mark + 1
	if e.dirtyMark == stamp {
		return
	}
	l.records = append(l.records, &entryRecord{
		entry:         e,
		savedBytes:    e.SavedBytes,
		hasSavedBytes: e.HasSavedBytes,
		access:        e.Access,
	})
	e.dirtyMark = stamp
}

// SetSavedBytes journals and then applies a change to an entry's saved
// content and access level (the path taken when the worker opens or writes
// a file, §4.7.2's OPEN/WRIT handling).
func (l *Log) SetSavedBytes(e *FileEntry, data []byte, access AccessLevel) {
	l.logEntry(e)
	e.SavedBytes = data
	e.HasSavedBytes = true
	e.Access = access
}

// ClearSavedBytes journals and then clears saved content (e.g. on CLOS).
func (l *Log) ClearSavedBytes(e *FileEntry) {
	l.logEntry(e)
	e.SavedBytes = nil
	e.HasSavedBytes = false
	e.Access = AccessNone
}

// --- OVERWRITE records: in-place byte range mutation inside SavedBytes ---

type overwriteRecord struct {
	buf      []byte
	start    int
	oldBytes []byte
}

func (r *overwriteRecord) undo() {
	copy(r.buf[r.start:r.start+len(r.oldBytes)], r.oldBytes)
}

// Overwrite journals the bytes about to be clobbered in buf[start:start+len(newData)]
// and then writes newData in place (the WRIT-at-offset path, §4.6).
func (l *Log) Overwrite(buf []byte, start int, newData []byte) {
	old := make([]byte, len(newData))
	copy(old, buf[start:start+len(newData)])
	l.records = append(l.records, &overwriteRecord{buf: buf, start: start, oldBytes: old})
	copy(buf[start:start+len(newData)], newData)
}

// --- CELL records: open-file-table slots ---

type cellRecord struct {
	slot  *openFileSlot
	value *FileEntry
	open  bool
}

func (r *cellRecord) undo() {
	r.slot.entry = r.value
	r.slot.open = r.open
}

func (l *Log) logCell(s *openFileSlot) {
	stamp := l.mark + 1
	if s.dirtyMark == stamp {
		return
	}
	l.records = append(l.records, &cellRecord{slot: s, value: s.entry, open: s.open})
	s.dirtyMark = stamp
}
