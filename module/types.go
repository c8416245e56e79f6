// Package module implements the bounded module decoder (C3): spec §3, §4.3.
// It parses the header, globals table, function table and data segments of
// the binary module format, and (optionally) hands each function body to the
// verifier (package verify, C4).
package module

import "github.com/asmcore/asmcore/opcode"

// Global is a global variable declaration (spec §3 "Global variable").
// Offset is assigned by AssignGlobalOffsets, not carried in the binary.
type Global struct {
	NameOffset uint32
	Type       opcode.MemType
	Offset     uint32
	Exported   bool
}

// DataSegment initializes a byte range of linear memory at instantiation
// time (spec §3 "Data segment").
type DataSegment struct {
	DestAddr     uint32
	SourceOffset uint32
	SourceSize   uint32
	Init         bool
}

// FuncDescriptor is one entry of the function table (spec §3 "Function
// descriptor"). CodeStart/CodeEnd are offsets into the module's own byte
// range, not absolute — Module.FuncBody resolves them.
type FuncDescriptor struct {
	Signature opcode.Signature
	NameOffset uint32
	CodeStart  uint32
	CodeEnd    uint32
	LocalI32   uint16
	LocalI64   uint16
	LocalF32   uint16
	LocalF64   uint16
	Exported   bool
	External   bool
}

// TotalLocals returns parameter count plus declared locals of all four
// value types, in the I32,I64,F32,F64 ordering spec §3 requires.
func (f FuncDescriptor) TotalLocals() int {
	return len(f.Signature.Params) + int(f.LocalI32) + int(f.LocalI64) + int(f.LocalF32) + int(f.LocalF64)
}

// Module is a fully decoded module (spec §3 "Module"): header fields, the
// three ordered vectors, and the original byte range for name/code lookup.
type Module struct {
	MemSizeLog2 uint8
	MemExport   bool

	Globals      []Global
	Functions    []FuncDescriptor
	DataSegments []DataSegment

	// Bytes is the module's own byte range [Start, End); CodeStart/CodeEnd
	// and NameOffset are relative to Start.
	Bytes []byte
	Start int
	End   int
}

// MemSize returns the linear memory size in bytes (1 << MemSizeLog2).
func (m *Module) MemSize() uint32 {
	return uint32(1) << m.MemSizeLog2
}

// FuncBody returns the absolute byte range of function i's body within
// Module.Bytes (spec §4.3's [start+code_start, start+code_end)).
func (m *Module) FuncBody(i int) []byte {
	f := m.Functions[i]
	return m.Bytes[f.CodeStart:f.CodeEnd]
}

// NumGlobals and GlobalType satisfy verify.GlobalsView, letting the
// verifier (C4) type-check LoadGlobal/StoreGlobal without module importing
// verify's package (which would cycle back here).
func (m *Module) NumGlobals() int { return len(m.Globals) }

func (m *Module) GlobalType(i int) opcode.MemType { return m.Globals[i].Type }

// NumFuncs and FuncSignature satisfy verify.FuncTable, letting the verifier
// type-check CallFunction targets and return types.
func (m *Module) NumFuncs() int { return len(m.Functions) }

func (m *Module) FuncSignature(i int) opcode.Signature { return m.Functions[i].Signature }

// NumLocalsOfType returns the number of declared locals (excluding
// parameters) of the given value type for function f.
func (f FuncDescriptor) NumLocalsOfType(t opcode.ValueType) int {
	switch t {
	case opcode.I32:
		return int(f.LocalI32)
	case opcode.I64:
		return int(f.LocalI64)
	case opcode.F32:
		return int(f.LocalF32)
	case opcode.F64:
		return int(f.LocalF64)
	default:
		return 0
	}
}
