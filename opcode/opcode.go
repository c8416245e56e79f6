package opcode

// Op is a single bytecode opcode (spec §4.1, §6 "operand encoding").
type Op byte

// Statement opcodes (spec §4.1).
const (
	OpBlock Op = iota
	OpLoop
	OpIf
	OpIfThen
	OpSwitch
	OpSwitchNf
	OpReturn
	OpReturn0
	OpSetLocal
	OpStoreGlobal
	OpStoreMem
	OpBreak
	OpContinue
	OpNop
	OpInfiniteLoop

	statementOpEnd
)

// Expression opcodes that are not per-type binops/unops.
const (
	OpI8Const Op = iota + statementOpEnd
	OpI32Const
	OpI64Const
	OpF32Const
	OpF64Const
	OpGetLocal
	OpLoadGlobal
	OpLoadMem
	OpCallFunction
	OpBoolNot
	OpTernary
	OpComma

	fixedExprOpEnd
)

// binopKind and unopKind describe the per-type arithmetic/comparison/
// conversion families spec §4.1 describes as "simple unary/binary/
// comparison/conversion opcodes per {I32,I64,F32,F64}"; no table below uses
// them. The families are enumerated by the intBinops/intCompares/floatBinops/
// floatCompares/conversions tables, and each family member gets one opcode
// per applicable type, generated in init() below rather than
// spelled out literally four times over: it's the same opcode table the
// spec calls for, just built once instead of copy-pasted per type.
type binopKind struct {
	name     string
	types    []ValueType
	isCompare bool // result is always I32 regardless of operand type
}

type unopKind struct {
	name  string
	types []ValueType
}

var intBinops = []string{"Add", "Sub", "Mul", "DivS", "DivU", "RemS", "RemU", "And", "Or", "Xor", "Shl", "ShrS", "ShrU"}
var intCompares = []string{"Eq", "Ne", "LtS", "LtU", "LeS", "LeU", "GtS", "GtU", "GeS", "GeU"}
var floatBinops = []string{"Add", "Sub", "Mul", "Div"}
var floatCompares = []string{"Eq", "Ne", "Lt", "Le", "Gt", "Ge"}

// conversion describes a widening/narrowing/reinterpreting cast between two
// value types, e.g. I32FromF64.
type conversion struct {
	from, to ValueType
}

var conversions = []conversion{
	{F64, I32}, {F32, I32}, {I64, I32},
	{I32, I64}, {F64, I64}, {F32, I64},
	{I32, F64}, {I64, F64}, {F32, F64},
	{I32, F32}, {I64, F32}, {F64, F32},
}

var (
	// name -> opcode, populated in init.
	byName = map[string]Op{}
	// opcode -> signature, populated in init.
	sigs = map[Op]Signature{}
	// opcode -> human-readable name, for disassembly.
	names = map[Op]string{}

	nextOp = fixedExprOpEnd
)

func alloc(name string, sig Signature) Op {
	op := nextOp
	nextOp++
	byName[name] = op
	sigs[op] = sig
	names[op] = name
	return op
}

// Per-type binop/compare/unop opcodes, named e.g. "i32.Add", found by name
// via ByName and typed via SignatureOf rather than as individual Go identifiers:
// the spec treats them as one opcode family per type, not fifty-odd
// constants to hand-declare.
func init() {
	for _, t := range []ValueType{I32, I64, F32, F64} {
		var bins, cmps []string
		switch t {
		case I32, I64:
			bins, cmps = intBinops, intCompares
		case F32, F64:
			bins, cmps = floatBinops, floatCompares
		}
		for _, b := range bins {
			alloc(t.String()+"."+b, Signature{Return: t, Params: []ValueType{t, t}})
		}
		for _, c := range cmps {
			alloc(t.String()+"."+c, Signature{Return: I32, Params: []ValueType{t, t}})
		}
		alloc(t.String()+".Neg", Signature{Return: t, Params: []ValueType{t}})
	}
	for _, c := range conversions {
		alloc(c.to.String()+".From"+capitalize(c.from.String()), Signature{Return: c.to, Params: []ValueType{c.from}})
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

// ByName looks up a generated per-type opcode by its family name, e.g.
// "i32.Add" or "f64.FromI32". Used by the emitter (C7) to pick the opcode
// for (type class, token) pairs per spec §4.7.
func ByName(name string) (Op, bool) {
	op, ok := byName[name]
	return op, ok
}

// IsStatement reports whether op is one of the statement opcodes.
func (op Op) IsStatement() bool {
	return op < statementOpEnd
}

// signature_of(opcode) — spec §4.1. Only defined for "simple expression
// opcodes" (constants, per-type binops/unops/compares/conversions);
// GetLocal/LoadGlobal/LoadMem/CallFunction derive their type from context
// and are typed by the verifier (C4), not this table.
func SignatureOf(op Op) (Signature, bool) {
	switch op {
	case OpI8Const, OpI32Const:
		return Signature{Return: I32}, true
	case OpI64Const:
		return Signature{Return: I64}, true
	case OpF32Const:
		return Signature{Return: F32}, true
	case OpF64Const:
		return Signature{Return: F64}, true
	case OpBoolNot:
		return Signature{Return: I32, Params: []ValueType{I32}}, true
	}
	sig, ok := sigs[op]
	return sig, ok
}

// NameOf returns the disassembly name of op, or "" if op is not a named
// per-type opcode (fixed opcodes are named by their Go constant instead).
func NameOf(op Op) string {
	return names[op]
}

// LoadStoreOpcode returns the load (isStore=false) or store (isStore=true)
// opcode for a given memory access type. There is exactly one load opcode
// (OpLoadMem) and one store opcode (OpStoreMem) in this bytecode; the
// memory access type itself, not the opcode, selects width/signedness, so
// this simply validates mt and returns the fixed opcode — kept as its own
// function because spec §4.1 names it as part of C1's surface and a
// redesign that gave each MemType its own load/store opcode would change
// only this function.
func LoadStoreOpcode(mt MemType, isStore bool) (Op, bool) {
	if !mt.IsValid() {
		return 0, false
	}
	if isStore {
		return OpStoreMem, true
	}
	return OpLoadMem, true
}

// IsSupported reports whether op is usable on the target. 64-bit opcodes
// are unsupported on a hypothetical 32-bit-only target; every opcode is
// supported on the (sole) 64-bit-capable target this toolchain models.
func IsSupported(op Op, support64 bool) bool {
	if support64 {
		return true
	}
	sig, ok := SignatureOf(op)
	if !ok {
		return true
	}
	if sig.Return == I64 {
		return false
	}
	for _, p := range sig.Params {
		if p == I64 {
			return false
		}
	}
	return true
}
