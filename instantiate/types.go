package instantiate

import (
	"github.com/asmcore/asmcore/link"
	"github.com/asmcore/asmcore/opcode"
	"github.com/asmcore/asmcore/verify/ir"
)

// Value is a single tagged value of one of the four ValueTypes, the shape
// host imports and the conformance oracle exchange across the module
// boundary (spec §6 "Host-object interface").
type Value struct {
	Type opcode.ValueType
	I32  int32
	I64  int64
	F32  float32
	F64  float64
}

// HostImport is the Go-callable shape an embedder registers for an
// `external` function (spec §4.6 step 5 "resolved... through an externally
// supplied name→callable map").
type HostImport func(args []Value) (Value, error)

// ImportResolver resolves external function names to host callables,
// mirroring the teacher's runtime.Host-style registration surface
// (runtime/host.go) without its Component-Model-specific canonical ABI.
type ImportResolver interface {
	Resolve(name string) (HostImport, bool)
}

// CallDescriptor is the calling convention handed to a CodeGenerator
// alongside an IR graph: the callee's own index and signature, so the
// generator can emit a call adapter without re-deriving them.
type CallDescriptor struct {
	FuncIndex int
	Signature opcode.Signature
}

// CodeGenerator is the out-of-scope "pipeline" (spec §1) materialized as a
// Go interface so C6/C5 have a concrete dependency to compile against, per
// spec §6 "Code-generator interface... Not specified here". No
// implementation ships in the library's public surface; the conformance
// package's tree-walking interpreter satisfies it for the tests and for the
// asmrun command.
type CodeGenerator interface {
	Compile(g *ir.Graph, call CallDescriptor) (*link.Code, error)
}
