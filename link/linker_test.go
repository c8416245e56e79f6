package link_test

import (
	"testing"

	"github.com/asmcore/asmcore/link"
)

// TestForwardReference exercises spec §8 scenario 7: func 0 calls func 1
// before func 1 has been compiled, so func 0's relocation must be patched
// once func 1 finishes and Link() runs.
func TestForwardReference(t *testing.T) {
	l := link.New(2, nil)

	// Compile func 0 first: its call site resolves func 1's code, which
	// does not exist yet, so it gets a placeholder.
	callee := l.GetFunctionCode(1)
	if !callee.Placeholder {
		t.Fatalf("expected placeholder for not-yet-compiled function")
	}
	func0 := &link.Code{Relocations: []*link.Relocation{{CalleeIndex: 1, Target: callee}}}
	l.Finish(0, func0)

	// Now compile func 1 for real.
	func1 := &link.Code{}
	l.Finish(1, func1)

	l.Link()

	if func0.Relocations[0].Target != func1 {
		t.Fatalf("relocation not patched to final code")
	}
	if !func0.Patched {
		t.Fatalf("expected Patched to be set after a real rewrite")
	}
	if err := l.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestLinkFixedPoint(t *testing.T) {
	l := link.New(2, nil)
	callee := l.GetFunctionCode(1)
	func0 := &link.Code{Relocations: []*link.Relocation{{CalleeIndex: 1, Target: callee}}}
	l.Finish(0, func0)
	l.Finish(1, &link.Code{})

	l.Link()
	l.Link() // second call must not re-patch (spec §8 "Linker fixed point")
	if func0.Patched {
		// Patched only records that *some* call patched something; reset
		// and check idempotence directly via relocation target identity.
	}
	before := func0.Relocations[0].Target
	l.Link()
	if func0.Relocations[0].Target != before {
		t.Fatalf("relocation target changed on idempotent Link() call")
	}
}

func TestGetFunctionCodeReturnsCompiledCode(t *testing.T) {
	l := link.New(1, nil)
	final := &link.Code{}
	l.Finish(0, final)
	if got := l.GetFunctionCode(0); got != final {
		t.Fatalf("GetFunctionCode did not return already-compiled code")
	}
}

func TestVerifyDetectsMissingFinal(t *testing.T) {
	l := link.New(1, nil)
	if err := l.Verify(); err == nil {
		t.Fatalf("expected Verify to reject a function with no final code")
	}
}

func TestVerifyAllowsExternalWithoutFinal(t *testing.T) {
	l := link.New(1, []bool{true})
	if err := l.Verify(); err != nil {
		t.Fatalf("Verify should not require final code for external functions: %v", err)
	}
}
