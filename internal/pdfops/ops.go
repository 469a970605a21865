// ops.go - PDF content-stream operator set (§4.4, pdf_lexer.h's PDF_OP enum)
package pdfops

// Op identifies one PDF content-stream operator keyword.
type Op int

const (
	OpUnknown Op = iota

	// Graphics state
	OpQ_push // q
	OpQ_pop  // Q
	OpCm     // cm
	OpW      // w
	OpJ      // J
	OpJoin   // j
	OpM      // M (miter limit)
	OpD      // d
	OpRi     // ri
	OpI      // i
	OpGs     // gs

	// Path construction
	OpMoveTo    // m
	OpLineTo    // l
	OpCurveTo   // c
	OpCurveToV  // v
	OpCurveToY  // y
	OpClosePath // h
	OpRect      // re

	// Path painting
	OpFill      // f / F
	OpFillEO    // f*
	OpStroke    // S
	OpCloseStrk // s
	OpFillStrk  // B
	OpFillStrkEO
	OpCloseFillStrk
	OpCloseFillStrkEO
	OpNoOp // n (no-op path-paint, usually after W/W*)

	// Clipping
	OpClip   // W
	OpClipEO // W*

	// Color
	OpCS  // CS
	OpCs  // cs
	OpSC  // SC
	OpSc  // sc
	OpSCN // SCN
	OpScn // scn
	OpG   // G
	Opg   // g
	OpRG  // RG
	Oprg  // rg
	OpK   // K
	Opk   // k

	// Text
	OpBT
	OpET
	OpTc
	OpTw
	OpTz
	OpTL
	OpTf
	OpTr
	OpTs
	OpTd
	OpTD
	OpTm
	OpTStar
	OpTj
	OpTJ
	OpQuote
	OpDoubleQuote

	// Type 3 glyphs
	OpD0
	OpD1

	// Shading / XObjects / marked content / compatibility / inline images
	OpSh
	OpDo
	OpMP
	OpDP
	OpBMC
	OpBDC
	OpEMC
	OpBX
	OpEX
	OpBI
	OpID
	OpEI
)

// keywords maps every content-stream operator keyword pdf_lexer.c's
// re2c scanner recognizes to its Op.
var keywords = map[string]Op{
	"q": OpQ_push, "Q": OpQ_pop, "cm": OpCm,
	"w": OpW, "J": OpJ, "j": OpJoin, "M": OpM, "d": OpD, "ri": OpRi, "i": OpI, "gs": OpGs,

	"m": OpMoveTo, "l": OpLineTo, "c": OpCurveTo, "v": OpCurveToV, "y": OpCurveToY,
	"h": OpClosePath, "re": OpRect,

	"f": OpFill, "F": OpFill, "f*": OpFillEO,
	"S": OpStroke, "s": OpCloseStrk,
	"B": OpFillStrk, "B*": OpFillStrkEO,
	"b": OpCloseFillStrk, "b*": OpCloseFillStrkEO,
	"n": OpNoOp,

	"W": OpClip, "W*": OpClipEO,

	"CS": OpCS, "cs": OpCs, "SC": OpSC, "sc": OpSc, "SCN": OpSCN, "scn": OpScn,
	"G": OpG, "g": Opg, "RG": OpRG, "rg": Oprg, "K": OpK, "k": Opk,

	"BT": OpBT, "ET": OpET, "Tc": OpTc, "Tw": OpTw, "Tz": OpTz, "TL": OpTL,
	"Tf": OpTf, "Tr": OpTr, "Ts": OpTs, "Td": OpTd, "TD": OpTD, "Tm": OpTm,
	"T*": OpTStar, "Tj": OpTj, "TJ": OpTJ, "'": OpQuote, "\"": OpDoubleQuote,

	"d0": OpD0, "d1": OpD1,

	"sh": OpSh, "Do": OpDo,
	"MP": OpMP, "DP": OpDP, "BMC": OpBMC, "BDC": OpBDC, "EMC": OpEMC,
	"BX": OpBX, "EX": OpEX,
	"BI": OpBI, "ID": OpID, "EI": OpEI,
}

func lookupOp(kw string) Op {
	if op, ok := keywords[kw]; ok {
		return op
	}
	return OpUnknown
}
