package cerr_test

import (
	"errors"
	"testing"

	"github.com/asmcore/asmcore/cerr"
)

func TestBuilderDefaults(t *testing.T) {
	e := cerr.New(cerr.PhaseVerify, cerr.KindTypeMismatch).At(12).Build()
	if e.PT != -1 {
		t.Errorf("PT default = %d, want -1", e.PT)
	}
	if e.FuncIndex != -1 {
		t.Errorf("FuncIndex default = %d, want -1", e.FuncIndex)
	}
	if e.PC != 12 {
		t.Errorf("PC = %d, want 12", e.PC)
	}
}

func TestErrorIs(t *testing.T) {
	a := cerr.New(cerr.PhaseDecode, cerr.KindOffsetOutOfBounds).At(1).Build()
	b := cerr.New(cerr.PhaseDecode, cerr.KindOffsetOutOfBounds).At(99).Build()
	if !errors.Is(a, b) {
		t.Error("expected errors with same phase/kind to match via errors.Is")
	}
	c := cerr.New(cerr.PhaseVerify, cerr.KindOffsetOutOfBounds).Build()
	if errors.Is(a, c) {
		t.Error("expected errors with different phase to not match")
	}
}

func TestErrorMessageIncludesDetail(t *testing.T) {
	e := cerr.New(cerr.PhaseVerify, cerr.KindLocalIndexOutOfRange).
		At(5).Func(2).Detail("local %d >= %d", 9, 4).Build()
	msg := e.Error()
	if msg == "" {
		t.Fatal("expected non-empty message")
	}
	for _, want := range []string{"verify", "local_index_out_of_range", "func 2", "local 9 >= 4"} {
		if !contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func contains(s, sub string) bool {
	return len(s) >= len(sub) && (func() bool {
		for i := 0; i+len(sub) <= len(s); i++ {
			if s[i:i+len(sub)] == sub {
				return true
			}
		}
		return false
	})()
}
