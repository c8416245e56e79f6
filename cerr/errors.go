// Package cerr provides the structured error type shared by every phase of
// the toolchain: decode, verify, link, instantiate, emit.
package cerr

import "fmt"

// Phase indicates which stage of the pipeline raised the error.
type Phase string

const (
	PhaseDecode      Phase = "decode"
	PhaseVerify      Phase = "verify"
	PhaseLink        Phase = "link"
	PhaseInstantiate Phase = "instantiate"
	PhaseEmit        Phase = "emit"
)

// Kind is the latched error taxonomy of spec §4.4, plus the decode- and
// instantiate-phase kinds needed outside a function body.
type Kind string

const (
	KindUnexpectedEndOfBytes  Kind = "unexpected_end_of_bytes"
	KindUnknownOpcode         Kind = "unknown_opcode"
	KindTypeMismatch          Kind = "type_mismatch"
	KindLocalIndexOutOfRange  Kind = "local_index_out_of_range"
	KindGlobalIndexOutOfRange Kind = "global_index_out_of_range"
	KindFunctionIndexOutOfRange Kind = "function_index_out_of_range"
	KindBreakDepthOutOfRange  Kind = "break_depth_out_of_range"
	KindStmtExpectedValueFound Kind = "stmt_expected_value_found"
	KindValueExpectedStmtFound Kind = "value_expected_stmt_found"
	KindOffsetOutOfBounds     Kind = "offset_out_of_bounds"
	KindInvalidSignature      Kind = "invalid_signature"
	KindInvalidLocalType      Kind = "invalid_local_type"
	KindInvalidMemType        Kind = "invalid_mem_type"

	// Decode/instantiate-phase kinds, outside the function-body taxonomy.
	KindModuleTooSmall  Kind = "module_too_small"
	KindModuleTooLarge  Kind = "module_too_large"
	KindFunctionTooLarge Kind = "function_too_large"
	KindSectionMalformed Kind = "section_malformed"
	KindMemoryTooLarge  Kind = "memory_too_large"
	KindSegmentOutOfBounds Kind = "segment_out_of_bounds"
	KindUnresolvedImport Kind = "unresolved_import"
	KindAllocationFailed Kind = "allocation_failed"
	KindRelocationMismatch Kind = "relocation_mismatch"

	// Runtime-trap kinds raised only by the conformance interpreter (package
	// conformance/interp), which is the one caller in this repository that
	// executes a body rather than just decoding/verifying it.
	KindMemoryAccessOutOfBounds Kind = "memory_access_out_of_bounds"
	KindIntegerDivisionByZero   Kind = "integer_division_by_zero"
)

// Error is the {kind, pc_offset, pt_offset, message} surface of spec §6.
type Error struct {
	Phase Phase
	Kind  Kind

	// PC is the offending byte offset, relative to the module or function
	// origin depending on Phase.
	PC int
	// PT is the secondary point of interest (e.g. TypeMismatch's
	// expected-type source), -1 when not applicable.
	PT int
	// FuncIndex annotates a verify-phase error with which function failed,
	// -1 when not applicable (e.g. a decode-phase error).
	FuncIndex int

	Detail string
	Cause  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s at pc=%d", e.Phase, e.Kind, e.PC)
	if e.FuncIndex >= 0 {
		msg += fmt.Sprintf(" (func %d)", e.FuncIndex)
	}
	if e.PT >= 0 {
		msg += fmt.Sprintf(" (pt=%d)", e.PT)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(" (caused by: %v)", e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a *Error with the same Phase and Kind,
// mirroring the teacher's errors.Error.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// Builder constructs an Error one field at a time.
type Builder struct {
	err Error
}

// New starts a builder for the given phase and kind. PT and FuncIndex
// default to -1 (not applicable) until set.
func New(phase Phase, kind Kind) *Builder {
	return &Builder{err: Error{Phase: phase, Kind: kind, PT: -1, FuncIndex: -1}}
}

func (b *Builder) At(pc int) *Builder {
	b.err.PC = pc
	return b
}

func (b *Builder) Point(pt int) *Builder {
	b.err.PT = pt
	return b
}

func (b *Builder) Func(index int) *Builder {
	b.err.FuncIndex = index
	return b
}

func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

func (b *Builder) Build() *Error {
	e := b.err
	return &e
}
