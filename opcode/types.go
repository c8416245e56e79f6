// Package opcode enumerates the value types, memory access types, and
// bytecode opcodes shared by the decoder (C3), verifier (C4) and emitter
// (C7), along with the small per-opcode tables spec §4.1 requires:
// signature_of, mem_size_of, value_type_of, load_store_opcode, is_supported.
package opcode

import "fmt"

// ValueType is the type of a produced value, or Stmt for statements
// (spec §3 "Value type").
type ValueType byte

const (
	Stmt ValueType = iota
	I32
	I64
	F32
	F64
)

func (t ValueType) String() string {
	switch t {
	case Stmt:
		return "stmt"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	default:
		return fmt.Sprintf("valuetype(%d)", byte(t))
	}
}

// IsValue reports whether t is a legal parameter, local or expression type
// (everything except the Stmt pseudo-type).
func (t ValueType) IsValue() bool {
	return t >= I32 && t <= F64
}

// MemType is the element type of a load or store, including narrow
// signed/unsigned variants (spec §3 "Memory access type").
type MemType byte

const (
	MemI8 MemType = iota
	MemU8
	MemI16
	MemU16
	MemI32
	MemU32
	MemI64
	MemU64
	MemF32
	MemF64
	memTypeCount
)

var memSize = [memTypeCount]byte{
	MemI8: 1, MemU8: 1,
	MemI16: 2, MemU16: 2,
	MemI32: 4, MemU32: 4,
	MemI64: 8, MemU64: 8,
	MemF32: 4, MemF64: 8,
}

var memValueType = [memTypeCount]ValueType{
	MemI8: I32, MemU8: I32,
	MemI16: I32, MemU16: I32,
	MemI32: I32, MemU32: I32,
	MemI64: I64, MemU64: I64,
	MemF32: F32, MemF64: F64,
}

// memSignExtend records whether loading mt sign-extends a narrow value to its
// widened value type (as opposed to zero-extending).
var memSignExtend = [memTypeCount]bool{
	MemI8: true, MemU8: false,
	MemI16: true, MemU16: false,
	MemI32: true, MemU32: false,
	MemI64: true, MemU64: false,
	MemF32: false, MemF64: false,
}

// IsValid reports whether mt is one of the ten defined memory access types.
func (mt MemType) IsValid() bool {
	return mt < memTypeCount
}

// MemSizeOf returns the byte size of mt (natural alignment equals size).
func MemSizeOf(mt MemType) byte {
	if !mt.IsValid() {
		return 0
	}
	return memSize[mt]
}

// ValueTypeOf widens mt to the value type it produces when loaded.
func ValueTypeOf(mt MemType) ValueType {
	if !mt.IsValid() {
		return Stmt
	}
	return memValueType[mt]
}

// SignExtends reports whether loading mt sign-extends (true) or
// zero-extends (false) a narrow value. Meaningless for full-width and
// float types.
func SignExtends(mt MemType) bool {
	if !mt.IsValid() {
		return false
	}
	return memSignExtend[mt]
}

func (mt MemType) String() string {
	names := [memTypeCount]string{"i8", "u8", "i16", "u16", "i32", "u32", "i64", "u64", "f32", "f64"}
	if !mt.IsValid() {
		return fmt.Sprintf("memtype(%d)", byte(mt))
	}
	return names[mt]
}

// Signature is a function signature: a return count (0 or 1, encoded as
// Return == Stmt for void) and an ordered parameter list (spec §3
// "Function signature").
type Signature struct {
	Return ValueType
	Params []ValueType
}

// ReturnCount is 0 or 1 per spec §3.
func (s Signature) ReturnCount() int {
	if s.Return == Stmt {
		return 0
	}
	return 1
}
