package emit_test

import (
	"testing"

	"github.com/asmcore/asmcore/binary"
	"github.com/asmcore/asmcore/emit"
	"github.com/asmcore/asmcore/opcode"
)

func encodeExpr(t *testing.T, e emit.Expr) []byte {
	t.Helper()
	w := binary.NewWriter()
	if err := emit.NewEncoder(w).EncodeExpr(e); err != nil {
		t.Fatalf("EncodeExpr: %v", err)
	}
	return w.Bytes()
}

func encodeStmt(t *testing.T, s emit.Stmt) []byte {
	t.Helper()
	w := binary.NewWriter()
	if err := emit.NewEncoder(w).EncodeStmt(s); err != nil {
		t.Fatalf("EncodeStmt: %v", err)
	}
	return w.Bytes()
}

func TestEncodeIntConstSmallUsesI8(t *testing.T) {
	got := encodeExpr(t, emit.IntConst{Val: 5, T: opcode.I32})
	want := []byte{byte(opcode.OpI8Const), 5}
	if string(got) != string(want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}

func TestEncodeIntConstOutOfI8RangeUsesI32(t *testing.T) {
	got := encodeExpr(t, emit.IntConst{Val: 1000, T: opcode.I32})
	if got[0] != byte(opcode.OpI32Const) {
		t.Fatalf("opcode = %d, want OpI32Const", got[0])
	}
	if len(got) != 5 {
		t.Fatalf("len(got) = %d, want 5 (opcode + i32)", len(got))
	}
}

func TestEncodeBinaryOpSignedVsUnsignedDivision(t *testing.T) {
	lhs := emit.LocalRef{Index: 0, T: opcode.I32}
	rhs := emit.LocalRef{Index: 1, T: opcode.I32}

	signed := encodeExpr(t, emit.BinaryOp{Token: "/", Class: emit.ClassSigned, Width: opcode.I32, LHS: lhs, RHS: rhs})
	unsigned := encodeExpr(t, emit.BinaryOp{Token: "/", Class: emit.ClassUnsigned, Width: opcode.I32, LHS: lhs, RHS: rhs})

	wantSigned, ok := opcode.ByName("i32.DivS")
	if !ok {
		t.Fatalf("i32.DivS not registered")
	}
	wantUnsigned, ok := opcode.ByName("i32.DivU")
	if !ok {
		t.Fatalf("i32.DivU not registered")
	}
	if signed[0] != byte(wantSigned) {
		t.Fatalf("signed div opcode = %d, want %d", signed[0], wantSigned)
	}
	if unsigned[0] != byte(wantUnsigned) {
		t.Fatalf("unsigned div opcode = %d, want %d", unsigned[0], wantUnsigned)
	}
}

func TestEncodeWhileLowersToLoopOfTwoStatements(t *testing.T) {
	// while (local0) local0 = 0
	got := encodeStmt(t, emit.While{
		Cond: emit.LocalRef{Index: 0, T: opcode.I32},
		Body: emit.Assign{Local: 0, Value: emit.IntConst{Val: 0, T: opcode.I32}},
	})
	if got[0] != byte(opcode.OpLoop) {
		t.Fatalf("opcode = %d, want OpLoop", got[0])
	}
	if got[1] != 2 {
		t.Fatalf("loop statement count = %d, want 2", got[1])
	}
	if got[2] != byte(opcode.OpIf) {
		t.Fatalf("first loop statement = %d, want OpIf (the break guard)", got[2])
	}
}

func TestEncodeBreakDepthOutOfRangeErrors(t *testing.T) {
	w := binary.NewWriter()
	err := emit.NewEncoder(w).EncodeStmt(emit.BreakStmt{Label: 0})
	if err == nil {
		t.Fatalf("expected an error for a break with no enclosing construct")
	}
}

func TestEncodeContinueSkipsNonLoopFrames(t *testing.T) {
	// loop { block { continue 0 } } — continue 0 must skip over the
	// intervening block frame and target the loop two frames up.
	got := encodeStmt(t, emit.InfiniteLoopStmt{Body: []emit.Stmt{
		emit.Block{Stmts: []emit.Stmt{
			emit.ContinueStmt{Label: 0},
		}},
	}})
	// bytes: OpInfiniteLoop, count(1), OpBlock, count(1), OpContinue, depth
	if got[0] != byte(opcode.OpInfiniteLoop) {
		t.Fatalf("opcode = %d, want OpInfiniteLoop", got[0])
	}
	depth := got[len(got)-1]
	if depth != 1 {
		t.Fatalf("continue depth = %d, want 1 (skipping the intervening block)", depth)
	}
}

func TestEncodeConvertPicksFromConversion(t *testing.T) {
	got := encodeExpr(t, emit.Convert{From: emit.LocalRef{Index: 0, T: opcode.I32}, To: opcode.F64})
	want, ok := opcode.ByName("f64.FromI32")
	if !ok {
		t.Fatalf("f64.FromI32 not registered")
	}
	if got[0] != byte(want) {
		t.Fatalf("opcode = %d, want %d (f64.FromI32)", got[0], want)
	}
}
