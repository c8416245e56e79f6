package verify_test

import (
	"testing"

	"github.com/asmcore/asmcore/binary"
	"github.com/asmcore/asmcore/cerr"
	"github.com/asmcore/asmcore/emit"
	"github.com/asmcore/asmcore/opcode"
	"github.com/asmcore/asmcore/verify"
	"github.com/asmcore/asmcore/verify/ir"
)

// noTables is an empty GlobalsView/FuncTable for functions that reference
// neither globals nor other functions.
type noTables struct{}

func (noTables) NumGlobals() int                   { return 0 }
func (noTables) GlobalType(int) opcode.MemType      { return opcode.MemI32 }
func (noTables) NumFuncs() int                      { return 0 }
func (noTables) FuncSignature(int) opcode.Signature { return opcode.Signature{} }

func assemble(t *testing.T, body emit.Stmt) []byte {
	t.Helper()
	w := binary.NewWriter()
	if err := emit.NewEncoder(w).EncodeStmt(body); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return w.Bytes()
}

func TestVerifyConstantReturn(t *testing.T) {
	code := assemble(t, emit.ReturnStmt{Value: emit.IntConst{Val: 121, T: opcode.I32}})
	env := verify.FuncEnv{Signature: opcode.Signature{Return: opcode.I32}}
	g, err := verify.Verify(env, code, 0, noTables{}, noTables{})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if g.Return != opcode.I32 {
		t.Fatalf("graph.Return = %s, want i32", g.Return)
	}
}

func TestVerifyTypeMismatch(t *testing.T) {
	// A function declared to return I32 but whose body returns an F64
	// constant must fail with KindTypeMismatch.
	code := assemble(t, emit.ReturnStmt{Value: emit.FloatConst{Val: 1.5, T: opcode.F64}})
	env := verify.FuncEnv{Signature: opcode.Signature{Return: opcode.I32}}
	_, err := verify.Verify(env, code, 0, noTables{}, noTables{})
	if err == nil {
		t.Fatalf("expected a type mismatch error")
	}
	ce, ok := err.(*cerr.Error)
	if !ok || ce.Kind != cerr.KindTypeMismatch {
		t.Fatalf("got %v, want KindTypeMismatch", err)
	}
}

func TestVerifyBreakDepthOutOfRange(t *testing.T) {
	// A bare Break(0) with no enclosing block/loop is out of range.
	// BreakStmt at the top level has an empty control stack, so label 0
	// already exceeds the (zero) enclosing construct count; breakDepth
	// would normally reject this at emit time, so hand-roll the raw byte
	// sequence to exercise the verifier's own bounds check independent of
	// the encoder's.
	raw := []byte{byte(opcode.OpBreak), 0}
	env := verify.FuncEnv{}
	_, err := verify.Verify(env, raw, 0, noTables{}, noTables{})
	if err == nil {
		t.Fatalf("expected a break-depth error")
	}
	ce, ok := err.(*cerr.Error)
	if !ok || ce.Kind != cerr.KindBreakDepthOutOfRange {
		t.Fatalf("got %v, want KindBreakDepthOutOfRange", err)
	}
}

func TestVerifyLoopProducesPhiOnReassignedLocal(t *testing.T) {
	// while (local0) { local0 = local0 - 1 }; return local0
	// local0's producer at the loop header differs from the producer at
	// the back-edge (the SetLocal inside the body), so the Loop node must
	// carry a Phi for local 0.
	body := emit.Block{Stmts: []emit.Stmt{
		emit.While{
			Cond: emit.LocalRef{Index: 0, T: opcode.I32},
			Body: emit.Assign{Local: 0, Value: emit.BinaryOp{
				Token: "-", Class: emit.ClassSigned, Width: opcode.I32,
				LHS: emit.LocalRef{Index: 0, T: opcode.I32}, RHS: emit.IntConst{Val: 1, T: opcode.I32},
			}},
		},
		emit.ReturnStmt{Value: emit.LocalRef{Index: 0, T: opcode.I32}},
	}}
	code := assemble(t, body)
	env := verify.FuncEnv{
		Signature:  opcode.Signature{Return: opcode.I32, Params: []opcode.ValueType{opcode.I32}},
		LocalCount: [4]int{},
	}
	g, err := verify.Verify(env, code, 0, noTables{}, noTables{})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if g.Return != opcode.I32 {
		t.Fatalf("graph.Return = %s, want i32", g.Return)
	}
	block, ok := g.Entry.(*ir.Block)
	if !ok || len(block.Children) == 0 {
		t.Fatalf("entry = %T, want a non-empty *ir.Block", g.Entry)
	}
	loop, ok := block.Children[0].(*ir.Loop)
	if !ok {
		t.Fatalf("first block child = %T, want *ir.Loop", block.Children[0])
	}
	found := false
	for _, p := range loop.Phis {
		if p.Local == 0 {
			found = true
		}
	}
	if !found {
		t.Fatalf("loop phis = %+v, want a phi for local 0", loop.Phis)
	}
}
