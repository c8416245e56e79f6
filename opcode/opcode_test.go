package opcode_test

import (
	"testing"

	"github.com/asmcore/asmcore/opcode"
)

func TestMemSizeAndWidening(t *testing.T) {
	cases := []struct {
		mt    opcode.MemType
		size  byte
		value opcode.ValueType
	}{
		{opcode.MemI8, 1, opcode.I32},
		{opcode.MemU8, 1, opcode.I32},
		{opcode.MemI16, 2, opcode.I32},
		{opcode.MemU16, 2, opcode.I32},
		{opcode.MemI32, 4, opcode.I32},
		{opcode.MemU32, 4, opcode.I32},
		{opcode.MemI64, 8, opcode.I64},
		{opcode.MemU64, 8, opcode.I64},
		{opcode.MemF32, 4, opcode.F32},
		{opcode.MemF64, 8, opcode.F64},
	}
	for _, c := range cases {
		if got := opcode.MemSizeOf(c.mt); got != c.size {
			t.Errorf("MemSizeOf(%v) = %d, want %d", c.mt, got, c.size)
		}
		if got := opcode.ValueTypeOf(c.mt); got != c.value {
			t.Errorf("ValueTypeOf(%v) = %v, want %v", c.mt, got, c.value)
		}
	}
}

func TestSignExtension(t *testing.T) {
	for _, mt := range []opcode.MemType{opcode.MemI8, opcode.MemI16, opcode.MemI32, opcode.MemI64} {
		if !opcode.SignExtends(mt) {
			t.Errorf("SignExtends(%v) = false, want true", mt)
		}
	}
	for _, mt := range []opcode.MemType{opcode.MemU8, opcode.MemU16, opcode.MemU32, opcode.MemU64} {
		if opcode.SignExtends(mt) {
			t.Errorf("SignExtends(%v) = true, want false", mt)
		}
	}
}

func TestBinopSignatureByType(t *testing.T) {
	op, ok := opcode.ByName("i32.Add")
	if !ok {
		t.Fatal("i32.Add not found")
	}
	sig, ok := opcode.SignatureOf(op)
	if !ok {
		t.Fatal("signature not found for i32.Add")
	}
	if sig.Return != opcode.I32 || len(sig.Params) != 2 || sig.Params[0] != opcode.I32 {
		t.Errorf("unexpected signature %+v", sig)
	}
}

func TestCompareAlwaysReturnsI32(t *testing.T) {
	op, ok := opcode.ByName("f64.Lt")
	if !ok {
		t.Fatal("f64.Lt not found")
	}
	sig, _ := opcode.SignatureOf(op)
	if sig.Return != opcode.I32 {
		t.Errorf("comparison return = %v, want i32", sig.Return)
	}
	if len(sig.Params) != 2 || sig.Params[0] != opcode.F64 {
		t.Errorf("unexpected params %+v", sig.Params)
	}
}

func TestConversionSignature(t *testing.T) {
	op, ok := opcode.ByName("i32.FromF64")
	if !ok {
		t.Fatal("i32.FromF64 not found")
	}
	sig, _ := opcode.SignatureOf(op)
	if sig.Return != opcode.I32 || len(sig.Params) != 1 || sig.Params[0] != opcode.F64 {
		t.Errorf("unexpected conversion signature %+v", sig)
	}
}

func TestIsSupported32BitTarget(t *testing.T) {
	op, _ := opcode.ByName("i64.Add")
	if opcode.IsSupported(op, false) {
		t.Error("i64.Add should be unsupported on a 32-bit-only target")
	}
	if !opcode.IsSupported(op, true) {
		t.Error("i64.Add should be supported on a 64-bit-capable target")
	}
	op32, _ := opcode.ByName("i32.Add")
	if !opcode.IsSupported(op32, false) {
		t.Error("i32.Add should be supported on a 32-bit-only target")
	}
}

func TestLoadStoreOpcode(t *testing.T) {
	if _, ok := opcode.LoadStoreOpcode(opcode.MemType(200), false); ok {
		t.Error("expected failure for invalid mem type")
	}
	load, ok := opcode.LoadStoreOpcode(opcode.MemI32, false)
	if !ok || load != opcode.OpLoadMem {
		t.Errorf("load opcode = %v, ok=%v", load, ok)
	}
	store, ok := opcode.LoadStoreOpcode(opcode.MemI32, true)
	if !ok || store != opcode.OpStoreMem {
		t.Errorf("store opcode = %v, ok=%v", store, ok)
	}
}

func TestIsStatement(t *testing.T) {
	if !opcode.OpBlock.IsStatement() {
		t.Error("Block should be a statement opcode")
	}
	if opcode.OpGetLocal.IsStatement() {
		t.Error("GetLocal should not be a statement opcode")
	}
}
