// Package qpy reads and writes QPY, the binary circuit serialization format
// used by Qiskit.
//
// All multi-byte fields are big-endian. A file is a fixed header followed by
// one program type key and the programs themselves:
//
//	"QISKIT" | version u8 | qiskit major, minor, patch u8 | num_programs u64 |
//	symbolic_encoding u8 | type_key u8 | program...
//
// Only circuit programs are supported, in format versions 10 through 14.
package qpy

const (
	MinVersion = 10
	MaxVersion = 14

	// CurrentVersion is written by Dump unless DumpOptions says otherwise.
	CurrentVersion = 14

	preface = "QISKIT"
)

const programCircuit = 'q'

const (
	SymbolicEncodingSympy     = 'p'
	SymbolicEncodingSymengine = 'e'
)

func validSymbolicEncoding(b byte) bool {
	return b == SymbolicEncodingSympy || b == SymbolicEncodingSymengine
}

// value type keys
const (
	typeInteger   = 'i'
	typeFloat     = 'f'
	typeComplex   = 'c'
	typeString    = 's'
	typeNull      = 'z'
	typeParameter = 'p'
)

// instruction argument kinds
const (
	argQubit = 'q'
	argClbit = 'c'
)

// condition kinds
const (
	conditionNone     = 0
	conditionRegister = 1
	conditionExpr     = 2
)

// standalone var types
const (
	varTypeBool     = 'b'
	varTypeUint     = 'u'
	varTypeFloat    = 'f'
	varTypeDuration = 'd'
)

// Fixed sizes of the packed records. The struct formats are
//
//	file header          !6sBBBBQc
//	circuit header v2    !H1cHIIQIQ
//	circuit header v12   !H1cHIIQIQI
//	register v4          !1c?IH?
//	var declaration      !16scH
//	instruction v2       !HHHIIBHqII
//	instruction arg      !1cI
//	instruction param    !1cQ
//	parameter            !H16s
//	layout v2            !?iiiIi
//	initial layout bit   !ii
const (
	fileHeaderSize        = 6 + 1 + 3 + 8 + 1
	circuitHeaderV2Size   = 2 + 1 + 2 + 4 + 4 + 8 + 4 + 8
	circuitHeaderV12Size  = circuitHeaderV2Size + 4
	registerV4Size        = 1 + 1 + 4 + 2 + 1
	varDeclarationSize    = 16 + 1 + 2
	instructionV2Size     = 2 + 2 + 2 + 4 + 4 + 1 + 2 + 8 + 4 + 4
	instructionArgSize    = 1 + 4
	instructionParamSize  = 1 + 8
	parameterSize         = 2 + 16
	layoutV2Size          = 1 + 4 + 4 + 4 + 4 + 4
	initialLayoutBitSize  = 4 + 4
	customDefHeaderSize   = 8
	calibrationHeaderSize = 2
)

// Header is the file header of a QPY payload.
type Header struct {
	Version          uint8
	QiskitVersion    [3]uint8
	NumPrograms      uint64
	SymbolicEncoding byte
}
