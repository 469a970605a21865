// tags.go - query/answer/ask tags and file kinds (§4.7.2, §6.1)
package wire

// Query tags: one query travels from worker to executor at a time.
var (
	QOPRD = NewTag("OPRD")
	QOPWR = NewTag("OPWR")
	QREAD = NewTag("READ")
	QWRIT = NewTag("WRIT")
	QAPND = NewTag("APND") // supplemented, §4 item 3
	QCLOS = NewTag("CLOS")
	QSIZE = NewTag("SIZE")
	QMTIM = NewTag("MTIM") // supplemented, §4 item 2
	QSEEN = NewTag("SEEN")
	QGPIC = NewTag("GPIC")
	QSPIC = NewTag("SPIC")
	QCHLD = NewTag("CHLD")
)

// Answer tags: the executor's reply to a query.
var (
	ADONE = NewTag("DONE")
	APASS = NewTag("PASS")
	ASIZE = NewTag("SIZE")
	AMTIM = NewTag("MTIM")
	AREAD = NewTag("READ")
	AFORK = NewTag("FORK")
	AOPEN = NewTag("OPEN")
	AGPIC = NewTag("GPIC")
)

// Ask tags: unsolicited executor-to-worker messages (§4.7.1, §4.7.6).
var (
	CFLSH = NewTag("FLSH")
)

// FileKind identifies the kind of resource an OPRD/OPWR query names (§4.2,
// §6.1). The enumeration is wider than spec.md's illustrative subset —
// see SPEC_FULL.md §4 item 1 — so that every kind the worker might proxy
// through OPRD/OPWR round-trips even when the resource manager only keeps
// a typed cache for a handful of them.
type FileKind Tag

func NewFileKind(s string) FileKind { return FileKind(NewTag(s)) }

func (k FileKind) String() string { return Tag(k).String() }

var (
	KindAFM         = NewFileKind("AFM\x00")
	KindBIB         = NewFileKind("BIB\x00")
	KindBST         = NewFileKind("BST\x00")
	KindCMap        = NewFileKind("CMAP")
	KindCnf         = NewFileKind("CNF\x00")
	KindEnc         = NewFileKind("ENC\x00")
	KindFormat      = NewFileKind("FRMT")
	KindFontMap     = NewFileKind("FMAP")
	KindMiscFonts   = NewFileKind("MFNT")
	KindOFM         = NewFileKind("OFM\x00")
	KindOpenType    = NewFileKind("OTF\x00")
	KindOVF         = NewFileKind("OVF\x00")
	KindPict        = NewFileKind("PICT")
	KindPK          = NewFileKind("PK\x00\x00")
	KindProgramData = NewFileKind("PDAT")
	KindSFD         = NewFileKind("SFD\x00")
	KindPrimary     = NewFileKind("PRIM")
	KindTeX         = NewFileKind("TEX\x00")
	KindTeXPSHeader = NewFileKind("TPSH")
	KindTFM         = NewFileKind("TFM\x00")
	KindTrueType    = NewFileKind("TTF\x00")
	KindType1       = NewFileKind("TYP1")
	KindVF          = NewFileKind("VF\x00\x00")
	KindPDF         = NewFileKind("PDF\x00")
	KindOther       = NewFileKind("OTHR")
)
