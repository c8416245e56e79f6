package link

import (
	"sync"

	"go.uber.org/zap"

	"github.com/asmcore/asmcore/cerr"
)

// Relocation is one direct-call site inside a Code's compiled body. Target
// is whatever Code object the call currently resolves to — a placeholder
// until Link() patches it, or already-final if the callee compiled first.
type Relocation struct {
	CalleeIndex int
	Target      *Code
}

// Code is an opaque compiled (or placeholder) function body: spec §6 "an
// opaque executable code object". The code generator that produces real
// machine code is out of scope (spec §1); this package only needs enough
// shape to model placeholder allocation and relocation patching.
type Code struct {
	// Placeholder is true for a stand-in installed before its function's
	// real body is compiled (spec glossary "Placeholder code").
	Placeholder bool
	// PlaceholderFor is the function index this placeholder marks.
	PlaceholderFor int
	// Relocations are this code's own direct-call sites.
	Relocations []*Relocation
	// Patched records whether Link() rewrote any of this code's
	// relocations, so the instruction cache is flushed only when needed
	// (spec §4.5 "a single boolean per code tracks whether any patch
	// occurred").
	Patched bool
	// Payload is the code generator's opaque result; nil for a
	// placeholder and for any Code this package did not produce itself.
	Payload any
}

// Linker allocates placeholder code objects for not-yet-compiled callees and
// patches direct call targets after all bodies are compiled (spec §4.5).
type Linker struct {
	mu          sync.Mutex
	placeholder []*Code
	final       []*Code
	external    []bool
}

// New creates a Linker sized for numFuncs functions. external marks which
// function indices are resolved by the embedder rather than compiled here
// (spec §4.5 "external functions have their final[i] supplied externally");
// pass nil if none are external.
func New(numFuncs int, external []bool) *Linker {
	if external == nil {
		external = make([]bool, numFuncs)
	}
	return &Linker{
		placeholder: make([]*Code, numFuncs),
		final:       make([]*Code, numFuncs),
		external:    external,
	}
}

// GetFunctionCode returns final[i] if already compiled; otherwise it
// allocates a fresh placeholder, stores it into both the placeholder and
// final vectors (spec §4.5), and returns it. Call sites compiled against
// this placeholder are made valid once Link() runs.
func (l *Linker) GetFunctionCode(i int) *Code {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.final[i] != nil {
		return l.final[i]
	}
	if l.placeholder[i] != nil {
		return l.placeholder[i]
	}
	ph := &Code{Placeholder: true, PlaceholderFor: i}
	l.placeholder[i] = ph
	l.final[i] = ph
	return ph
}

// Finish installs code as function i's compiled body, overwriting whatever
// placeholder GetFunctionCode may have handed out earlier (spec §4.5
// "finish(i, code) overwrites final[i]").
func (l *Linker) Finish(i int, code *Code) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.final[i] = code
}

// Link iterates every compiled (non-placeholder) function's relocations and
// rewrites any that still target a placeholder to that placeholder's now-
// final code object (spec §4.5). It is idempotent: a second call produces
// zero additional patches (spec §8 "Linker fixed point").
func (l *Linker) Link() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, code := range l.final {
		if code == nil || code.Placeholder {
			continue
		}
		for _, reloc := range code.Relocations {
			if reloc.Target == nil || !reloc.Target.Placeholder {
				continue
			}
			idx := reloc.Target.PlaceholderFor
			final := l.final[idx]
			if final == nil || final == reloc.Target {
				continue
			}
			reloc.Target = final
			code.Patched = true
		}
	}
	Logger().Debug("link pass complete", zap.Int("functions", len(l.final)))
}

// Verify checks the post-link invariants of spec §4.5: every live
// relocation targets a non-placeholder Code, and every non-external
// function has a final code object. It returns a *cerr.Error (PhaseLink,
// KindRelocationMismatch) on the first violation — spec §7 treats this as a
// programming error (assert/trap), not a user-facing one, so callers of a
// correctly-functioning Instantiate should never observe it.
func (l *Linker) Verify() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, code := range l.final {
		if code == nil {
			if i < len(l.external) && l.external[i] {
				continue
			}
			return cerr.New(cerr.PhaseLink, cerr.KindRelocationMismatch).Func(i).
				Detail("function %d has no final code object", i).Build()
		}
		if code.Placeholder {
			return cerr.New(cerr.PhaseLink, cerr.KindRelocationMismatch).Func(i).
				Detail("function %d's final slot still holds a placeholder", i).Build()
		}
		for _, reloc := range code.Relocations {
			if reloc.Target != nil && reloc.Target.Placeholder {
				return cerr.New(cerr.PhaseLink, cerr.KindRelocationMismatch).Func(i).
					Detail("relocation in function %d still targets placeholder for function %d", i, reloc.Target.PlaceholderFor).Build()
			}
		}
	}
	return nil
}

// AnyPatched reports whether any Link() call so far has rewritten at least
// one relocation anywhere in the module (Code.Patched is never cleared), the
// signal an embedder uses to
// decide whether an instruction cache flush is warranted.
func (l *Linker) AnyPatched() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, code := range l.final {
		if code != nil && code.Patched {
			return true
		}
	}
	return false
}
