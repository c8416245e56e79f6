package verify

import "github.com/asmcore/asmcore/opcode"

// FuncEnv is the per-function decode context C4 consumes (spec §3 "Function
// environment"): a signature plus per-type local counts. The module decoder
// (C3) builds one of these from a FuncDescriptor before calling Verify;
// verify never imports package module (module imports verify) so it cannot
// depend on FuncDescriptor directly.
type FuncEnv struct {
	Signature opcode.Signature

	// LocalCount[t-1] is the number of declared locals of value type t,
	// for t in {I32,I64,F32,F64}. Locals are ordered I32,I64,F32,F64
	// after the parameters (spec §3).
	LocalCount [4]int
}

// TotalLocals is parameters plus all declared locals (spec §3
// "total_locals = parameters + sum of per-type locals").
func (e FuncEnv) TotalLocals() int {
	n := len(e.Signature.Params)
	for _, c := range e.LocalCount {
		n += c
	}
	return n
}

var localOrder = [4]opcode.ValueType{opcode.I32, opcode.I64, opcode.F32, opcode.F64}

// LocalType returns the type of local index i (parameters first, then
// declared locals in I32,I64,F32,F64 order) and whether i is in range.
func (e FuncEnv) LocalType(i int) (opcode.ValueType, bool) {
	if i < 0 {
		return opcode.Stmt, false
	}
	if i < len(e.Signature.Params) {
		return e.Signature.Params[i], true
	}
	i -= len(e.Signature.Params)
	for _, t := range localOrder {
		n := e.LocalCount[t-1]
		if i < n {
			return t, true
		}
		i -= n
	}
	return opcode.Stmt, false
}

// GlobalsView lets Verify type-check LoadGlobal/StoreGlobal without
// importing package module. *module.Module satisfies this.
type GlobalsView interface {
	NumGlobals() int
	GlobalType(i int) opcode.MemType
}

// FuncTable lets Verify type-check CallFunction targets and return types
// without importing package module. *module.Module satisfies this.
type FuncTable interface {
	NumFuncs() int
	FuncSignature(i int) opcode.Signature
}
