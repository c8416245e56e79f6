package binary_test

import (
	"testing"

	"github.com/asmcore/asmcore/binary"
)

func TestRoundTripFixedWidth(t *testing.T) {
	w := binary.NewWriter()
	w.U8(0xAB)
	w.U16(0x1234)
	w.U32(0xDEADBEEF)
	w.I32(-1)
	w.I64(-2)
	w.F32(1.5)
	w.F64(2.25)

	r := binary.New(w.Bytes(), 0)
	if got := r.U8(); got != 0xAB {
		t.Errorf("U8 = %#x, want 0xAB", got)
	}
	if got := r.U16(); got != 0x1234 {
		t.Errorf("U16 = %#x, want 0x1234", got)
	}
	if got := r.U32(); got != 0xDEADBEEF {
		t.Errorf("U32 = %#x, want 0xDEADBEEF", got)
	}
	if got := r.I32(); got != -1 {
		t.Errorf("I32 = %d, want -1", got)
	}
	if got := r.I64(); got != -2 {
		t.Errorf("I64 = %d, want -2", got)
	}
	if got := r.F32(); got != 1.5 {
		t.Errorf("F32 = %v, want 1.5", got)
	}
	if got := r.F64(); got != 2.25 {
		t.Errorf("F64 = %v, want 2.25", got)
	}
	if r.Failed() {
		t.Fatal("unexpected latched error")
	}
	if !r.AtEnd() {
		t.Errorf("expected reader to be exhausted, %d bytes remaining", r.Remaining())
	}
}

func TestTruncationLatchesOnce(t *testing.T) {
	r := binary.New([]byte{0x01, 0x02}, 0)
	_ = r.U32() // only 2 bytes available, needs 4
	if !r.Failed() {
		t.Fatal("expected truncation to latch")
	}
	code, pc, _, _ := r.Error()
	if code != binary.ErrTruncated {
		t.Errorf("code = %v, want ErrTruncated", code)
	}
	if pc != 0 {
		t.Errorf("errorPC = %d, want 0", pc)
	}
	// Subsequent reads short-circuit to zero and do not move the latch.
	if v := r.U8(); v != 0 {
		t.Errorf("post-latch U8 = %d, want 0", v)
	}
	code2, pc2, _, _ := r.Error()
	if code2 != code || pc2 != pc {
		t.Error("latch moved after it was already set")
	}
}

func TestOffsetU32Bounds(t *testing.T) {
	w := binary.NewWriter()
	w.U32(100) // claims an offset of 100 into a module span of only 10
	r := binary.New(w.Bytes(), 0)
	v := r.OffsetU32(10)
	if !r.Failed() {
		t.Fatal("expected OffsetOutOfBounds")
	}
	if v != 0 {
		t.Errorf("OffsetU32 on failure = %d, want 0", v)
	}
	code, _, _, _ := r.Error()
	if code != binary.ErrOffsetOutOfBounds {
		t.Errorf("code = %v, want ErrOffsetOutOfBounds", code)
	}
}

func TestOffsetU32WithinBounds(t *testing.T) {
	w := binary.NewWriter()
	w.U32(10)
	r := binary.New(w.Bytes(), 0)
	v := r.OffsetU32(10)
	if r.Failed() {
		t.Fatal("unexpected failure for offset exactly at bound")
	}
	if v != 10 {
		t.Errorf("OffsetU32 = %d, want 10", v)
	}
}

func TestWindowOutOfRange(t *testing.T) {
	data := make([]byte, 16)
	r := binary.Window(data, 10, 20) // end exceeds len(data)
	if !r.Failed() {
		t.Fatal("expected Window to latch OffsetOutOfBounds")
	}
}

func TestWindowValid(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4, 5, 6, 7}
	r := binary.Window(data, 2, 6)
	if r.Position() != 2 {
		t.Errorf("Position() = %d, want 2", r.Position())
	}
	if got := r.U8(); got != 2 {
		t.Errorf("first byte = %d, want 2 (data[2])", got)
	}
}

func TestPatchU32(t *testing.T) {
	w := binary.NewWriter()
	pos := w.Len()
	w.U32(0)
	w.U8(0xFF)
	w.PatchU32(pos, 0xCAFEBABE)
	r := binary.New(w.Bytes(), 0)
	if got := r.U32(); got != 0xCAFEBABE {
		t.Errorf("patched U32 = %#x, want 0xCAFEBABE", got)
	}
}
