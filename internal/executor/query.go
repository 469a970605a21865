// query.go - wire encoding of the worker query/answer protocol (§4.7.2,
// §6.1), layered on internal/wire's tag/framing primitives
package executor

import (
	"github.com/texpresso-go/texpresso/internal/fixed"
	"github.com/texpresso-go/texpresso/internal/wire"
)

// Query is one decoded worker request. Not every field is meaningful for
// every Tag; see the table in spec.md §4.7.2.
type Query struct {
	Tag    wire.Tag
	TimeMs int

	Fid  int
	Path string
	Kind wire.FileKind

	Pos  int
	Size int
	Data []byte

	PicType int
	Page    int
	Bounds  [4]fixed.T

	ChildPID int
	ChildFD  int
}

func readQuery(ch *wire.Channel) (Query, error) {
	tag, err := ch.ReadTag()
	if err != nil {
		return Query{}, err
	}
	elapsed, err := ch.ReadElapsedMs()
	if err != nil {
		return Query{}, err
	}
	q := Query{Tag: tag, TimeMs: int(elapsed)}

	switch tag {
	case wire.QOPRD, wire.QOPWR:
		fid, err := ch.ReadI32()
		if err != nil {
			return q, err
		}
		path, err := ch.ReadCString()
		if err != nil {
			return q, err
		}
		kind, err := ch.ReadTag()
		if err != nil {
			return q, err
		}
		q.Fid, q.Path, q.Kind = int(fid), path, wire.FileKind(kind)

	case wire.QREAD:
		fid, err := ch.ReadI32()
		if err != nil {
			return q, err
		}
		pos, err := ch.ReadI32()
		if err != nil {
			return q, err
		}
		size, err := ch.ReadI32()
		if err != nil {
			return q, err
		}
		q.Fid, q.Pos, q.Size = int(fid), int(pos), int(size)

	case wire.QWRIT:
		fid, err := ch.ReadI32()
		if err != nil {
			return q, err
		}
		pos, err := ch.ReadI32()
		if err != nil {
			return q, err
		}
		size, err := ch.ReadI32()
		if err != nil {
			return q, err
		}
		data, err := ch.ReadBytes(int(size))
		if err != nil {
			return q, err
		}
		q.Fid, q.Pos, q.Size, q.Data = int(fid), int(pos), int(size), data

	case wire.QAPND:
		fid, err := ch.ReadI32()
		if err != nil {
			return q, err
		}
		size, err := ch.ReadI32()
		if err != nil {
			return q, err
		}
		data, err := ch.ReadBytes(int(size))
		if err != nil {
			return q, err
		}
		q.Fid, q.Size, q.Data = int(fid), int(size), data

	case wire.QCLOS, wire.QSIZE, wire.QMTIM:
		fid, err := ch.ReadI32()
		if err != nil {
			return q, err
		}
		q.Fid = int(fid)

	case wire.QSEEN:
		fid, err := ch.ReadI32()
		if err != nil {
			return q, err
		}
		pos, err := ch.ReadI32()
		if err != nil {
			return q, err
		}
		q.Fid, q.Pos = int(fid), int(pos)

	case wire.QGPIC:
		path, err := ch.ReadCString()
		if err != nil {
			return q, err
		}
		picType, err := ch.ReadI32()
		if err != nil {
			return q, err
		}
		page, err := ch.ReadI32()
		if err != nil {
			return q, err
		}
		q.Path, q.PicType, q.Page = path, int(picType), int(page)

	case wire.QSPIC:
		path, err := ch.ReadCString()
		if err != nil {
			return q, err
		}
		picType, err := ch.ReadI32()
		if err != nil {
			return q, err
		}
		page, err := ch.ReadI32()
		if err != nil {
			return q, err
		}
		q.Path, q.PicType, q.Page = path, int(picType), int(page)
		for i := range q.Bounds {
			v, err := ch.ReadI32()
			if err != nil {
				return q, err
			}
			q.Bounds[i] = fixed.Make(v)
		}

	case wire.QCHLD:
		pid, err := ch.ReadI32()
		if err != nil {
			return q, err
		}
		fd, err := ch.RecvFD()
		if err != nil {
			return q, err
		}
		q.ChildPID, q.ChildFD = int(pid), fd
	}

	return q, nil
}

// Answer is the executor's reply to a Query.
type Answer struct {
	Tag wire.Tag

	Size   int
	Path   string
	Data   []byte
	Bounds [4]fixed.T
	Sec    int32
	Nsec   int32
}

func writeAnswer(ch *wire.Channel, a Answer) error {
	if err := ch.WriteTag(a.Tag); err != nil {
		return err
	}
	switch a.Tag {
	case wire.AOPEN:
		if err := ch.WriteI32(int32(len(a.Path))); err != nil {
			return err
		}
		return ch.WriteBytes([]byte(a.Path))

	case wire.AREAD:
		if err := ch.WriteI32(int32(len(a.Data))); err != nil {
			return err
		}
		return ch.WriteBytes(a.Data)

	case wire.ASIZE:
		return ch.WriteI32(int32(a.Size))

	case wire.AMTIM:
		if err := ch.WriteI32(a.Sec); err != nil {
			return err
		}
		return ch.WriteI32(a.Nsec)

	case wire.AGPIC:
		for _, b := range a.Bounds {
			if err := ch.WriteI32(b.Repr()); err != nil {
				return err
			}
		}
		return nil

	default: // ADONE, APASS, AFORK: tag only
		return nil
	}
}
