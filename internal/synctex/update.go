// update.go - incremental feed of a growing .synctex buffer, matching
// synctex_update: only the bytes appended since the last call are scanned
// for control lines (§4.5)
package synctex

// Update scans the newly-appended suffix of data (a full snapshot of the
// .synctex file read so far, which may have grown since the last call) for
// complete `{N`/`}N`/`Input:N:`/`/N` control lines and records their
// offsets. If data is shorter than what was already scanned - the file was
// truncated and is being rewritten, as incdvi's log does on a shrinking
// recompile - it rolls back to the new length first.
func (ix *Index) Update(data []byte) {
	cur, n := ix.cur, len(data)

	if n <= cur {
		if n < cur {
			ix.Rollback(n)
		}
		return
	}

	bol := ix.bol
	if bol > cur {
		bol = cur
		for bol > 0 && data[bol-1] != '\n' {
			bol--
		}
	}

	for cur < n {
		if data[cur] == '\n' {
			if cur > bol {
				ix.processLine(bol, data, bol, cur)
			}
			cur++
			bol = cur
		} else {
			cur++
		}
	}

	ix.bol = bol
	ix.cur = cur
}
