// Package ir is the typed intermediate representation the function verifier
// (C4) builds while it decodes a function body: spec §4.4 "Graph
// construction". It mirrors the shape of a typed statement/expression tree
// (grounded in the teacher's asyncify/internal/ir.Node hierarchy) rather than
// a flat instruction list, because the verifier discovers structure
// (blocks, loops, merges) as part of type-checking, not as a separate pass.
package ir

import "github.com/asmcore/asmcore/opcode"

// Kind identifies the concrete shape of a Node, used by disassembly and by
// the conformance interpreter's type switch.
type Kind int

const (
	KindConst Kind = iota
	KindGetLocal
	KindLoadGlobal
	KindLoadMem
	KindCall
	KindUnop
	KindBinop
	KindTernary
	KindComma
	KindSetLocal
	KindStoreGlobal
	KindStoreMem
	KindBlock
	KindLoop
	KindIf
	KindIfThen
	KindSwitch
	KindBreak
	KindContinue
	KindReturn
	KindReturn0
	KindNop
	KindInfiniteLoop
	KindExprStmt
)

// Node is one IR node: either a value-producing expression or a statement.
// Every node knows its own value type (opcode.Stmt for statements).
type Node interface {
	Kind() Kind
	Type() opcode.ValueType
	// Seq is this node's position in the function's total effect order
	// (spec §5 "side effects... totally ordered by the effect chain"),
	// assigned once at construction time and monotonically increasing in
	// program order.
	Seq() int
}

type base struct {
	kind Kind
	typ  opcode.ValueType
	seq  int
}

func (b base) Kind() Kind             { return b.kind }
func (b base) Type() opcode.ValueType { return b.typ }
func (b base) Seq() int               { return b.seq }

// Phi records a merge-point value for one local whose producer differs
// across the incoming control-flow edges of an If/IfThen/Switch/Loop (spec §4.4
// "Control nodes... create merge points (phis) for values live across the
// merge"). Sources is ordered by incoming edge (then/else, or entry/back-edge
// for a Loop header).
type Phi struct {
	Local   int
	Type    opcode.ValueType
	Sources []Node
}

// Const is a literal of kind I8Const/I32Const/I64Const/F32Const/F64Const.
// Bits holds the raw value: for I32 the 32-bit two's-complement pattern,
// zero-extended (an I8Const is first sign-extended to 32 bits); for I64 the
// 64-bit pattern; the IEEE
// bit pattern for float kinds (read via math.Float32/64frombits by callers
// that know Type()).
type Const struct {
	base
	Bits uint64
}

// GetLocal reads local index Index, typed per the function's local layout.
type GetLocal struct {
	base
	Index int
}

// LoadGlobal reads global index Index, widened from its MemType.
type LoadGlobal struct {
	base
	Index int
}

// LoadMem reads MemType MT at address Addr (always I32).
type LoadMem struct {
	base
	MT   opcode.MemType
	Addr Node
}

// Call invokes function Index with Args evaluated left-to-right (spec §4.4
// "CallFunction consumes the callee's arguments left-to-right").
type Call struct {
	base
	Index int
	Args  []Node
}

// Unop applies Op (e.g. i32.Neg, f64.FromI32) to Operand. BoolNot also uses
// this shape with Op set to opcode.OpBoolNot.
type Unop struct {
	base
	Op      opcode.Op
	Operand Node
}

// Binop applies Op (e.g. i32.Add, f64.Lt) to LHS, RHS.
type Binop struct {
	base
	Op       opcode.Op
	LHS, RHS Node
}

// Ternary is `cond ? then : else`; Cond is I32, Then/Else share Type().
type Ternary struct {
	base
	Cond, Then, Else Node
}

// Comma evaluates A for effect, then yields B's value.
type Comma struct {
	base
	A, B Node
}

// SetLocal assigns Value to local Index. A statement node (Type() == Stmt).
type SetLocal struct {
	base
	Index int
	Value Node
}

// StoreGlobal assigns Value to global Index.
type StoreGlobal struct {
	base
	Index int
	Value Node
}

// StoreMem writes Value (possibly narrowed) to MT at Addr.
type StoreMem struct {
	base
	MT    opcode.MemType
	Addr  Node
	Value Node
}

// Block is a labeled sequence of Children; Break(0) from inside targets its
// exit. The verifier builds every Block with an empty Phis: values reaching
// the block's exit along Break edges are not merged here.
type Block struct {
	base
	Label    int
	Children []Node
	Phis     []Phi
}

// Loop is a labeled block whose body back-edges to its own start; Break(0)
// exits the loop, Continue(0) (when present) re-enters at the top. Phis
// holds the loop-header merges for locals whose value differs between loop
// entry and the back-edge (spec §4.4).
type Loop struct {
	base
	Label    int
	Children []Node
	Phis     []Phi
}

// If is a conditional with no else branch; Phis records merges between the
// fallthrough path and the then-path for locals reassigned in Then.
type If struct {
	base
	Cond Node
	Then Node
	Phis []Phi
}

// IfThen is a full if/else; Phis records merges between Then and Else.
type IfThen struct {
	base
	Cond       Node
	Then, Else Node
	Phis       []Phi
}

// Switch is Switch/SwitchNf; Fallthrough is true for the fallthrough variant
// (spec §4.4 "SwitchNf vs Switch"). Key is I32; out-of-range keys execute no
// case.
type Switch struct {
	base
	Fallthrough bool
	Label       int
	Key         Node
	Cases       []Node
	Phis        []Phi
}

// Break transfers to the exit of the Depth-th enclosing labeled construct.
type Break struct {
	base
	Depth int
}

// Continue targets the back-edge of the Depth-th enclosing labeled construct;
// Depth counts every labeled construct (Block, Loop, Switch), not only loops.
type Continue struct {
	base
	Depth int
}

// Return is a terminator producing Value (nil for a void Return0).
type Return struct {
	base
	Value Node
}

// Nop does nothing.
type Nop struct{ base }

// InfiniteLoop is a loop with no exit edges and no terminator (spec §4.4).
type InfiniteLoop struct {
	base
	Children []Node
}

// ExprStmt wraps an expression used in statement position (spec §4.4 "An
// expression used as a statement is legal").
type ExprStmt struct {
	base
	Expr Node
}

// Graph is C4's output for one function body: an entry node (the function's
// single top-level statement) plus the declared return type, used by the
// round-trip testable property (spec §8) to check
// graph.Return == signature.Return without re-walking the tree.
type Graph struct {
	Entry  Node
	Return opcode.ValueType
}
