// reskind.go - resource kinds the DVI interpreter's resource manager caches (§4.2)
package resmgr

// ResKind is dvi_reskind from original_source/src/dvi/mydvi.h: the narrow
// enumeration the resource manager's typed caches and extension policy
// dispatch on. It is distinct from wire.FileKind, the much broader kind
// tag carried on the OPRD/OPWR query itself (§6.1) — every PDF/ENC/MAP/
// TFM/VF/FONT resource still travels over the wire tagged with its
// specific wire.FileKind so the worker's VFS can apply its own caching
// policy, but once the bytes reach the resource manager they're handled
// according to this narrower shape.
type ResKind int

const (
	ResPDF ResKind = iota
	ResENC
	ResMAP
	ResTFM
	ResVF
	ResFONT
)

func (k ResKind) String() string {
	switch k {
	case ResPDF:
		return "PDF"
	case ResENC:
		return "ENC"
	case ResMAP:
		return "MAP"
	case ResTFM:
		return "TFM"
	case ResVF:
		return "VF"
	case ResFONT:
		return "FONT"
	default:
		return "?"
	}
}
