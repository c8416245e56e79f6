package verify

import (
	"math"

	"go.uber.org/zap"

	"github.com/asmcore/asmcore/binary"
	"github.com/asmcore/asmcore/cerr"
	"github.com/asmcore/asmcore/opcode"
	"github.com/asmcore/asmcore/verify/ir"
)

func float32bits(f float32) uint32 { return math.Float32bits(f) }
func float64bits(f float64) uint64 { return math.Float64bits(f) }

// Verify decodes code — the byte range [codeStart, codeStart+len(code)) of
// some module — as a single function body per spec §4.4's grammar,
// simultaneously building a typed IR graph. It returns either a *ir.Graph or
// the first latched *cerr.Error (spec §4.4 "Output").
func Verify(env FuncEnv, code []byte, codeStart int, globals GlobalsView, funcs FuncTable) (*ir.Graph, error) {
	v := &verifier{
		r:       binary.New(code, codeStart),
		env:     env,
		globals: globals,
		funcs:   funcs,
		locals:  make(map[int]ir.Node, env.TotalLocals()),
	}
	for i := 0; i < env.TotalLocals(); i++ {
		t, _ := env.LocalType(i)
		v.locals[i] = v.b.GetLocalNode(t, i)
	}

	entry := v.decodeStatement()
	if v.err != nil {
		return nil, v.err
	}
	if v.r.Failed() {
		return nil, v.decodeReadErr()
	}

	Logger().Debug("verified function body",
		zap.Int("code_start", codeStart),
		zap.Int("total_locals", env.TotalLocals()),
		zap.String("return_type", env.Signature.Return.String()),
	)
	return &ir.Graph{Entry: entry, Return: env.Signature.Return}, nil
}

type verifier struct {
	r       *binary.Reader
	env     FuncEnv
	globals GlobalsView
	funcs   FuncTable
	frames  frames
	locals  map[int]ir.Node
	b       ir.Builder
	err     *cerr.Error
}

func (v *verifier) failed() bool {
	return v.err != nil || v.r.Failed()
}

// fail latches the first error at the byte position the caller observed
// before consuming the offending field, matching the decoder's discipline
// of reporting the PC where the bad value was read, not where decoding
// subsequently gave up (spec §4.2, §4.4).
func (v *verifier) fail(kind cerr.Kind, pc int, detail string, args ...any) {
	if v.err != nil {
		return
	}
	v.err = cerr.New(cerr.PhaseVerify, kind).At(pc).Detail(detail, args...).Build()
}

func (v *verifier) failPT(kind cerr.Kind, pc, pt int, detail string, args ...any) {
	if v.err != nil {
		return
	}
	v.err = cerr.New(cerr.PhaseVerify, kind).At(pc).Point(pt).Detail(detail, args...).Build()
}

func (v *verifier) decodeReadErr() *cerr.Error {
	code, pc, pt, hasPT := v.r.Error()
	kind := cerr.KindUnexpectedEndOfBytes
	if code == binary.ErrOffsetOutOfBounds {
		kind = cerr.KindOffsetOutOfBounds
	}
	b := cerr.New(cerr.PhaseVerify, kind).At(pc)
	if hasPT {
		b = b.Point(pt)
	}
	return b.Build()
}

func (v *verifier) readOp() (opcode.Op, int) {
	pc := v.r.Position()
	return opcode.Op(v.r.U8()), pc
}

// ---- statements ----

func (v *verifier) decodeStatement() ir.Node {
	if v.failed() {
		return v.b.NopNode()
	}
	op, pc := v.readOp()
	if v.r.Failed() {
		return v.b.NopNode()
	}
	switch op {
	case opcode.OpBlock:
		return v.decodeBlockLike(frameBlock)
	case opcode.OpLoop:
		return v.decodeBlockLike(frameLoop)
	case opcode.OpIf:
		return v.decodeIf()
	case opcode.OpIfThen:
		return v.decodeIfThen()
	case opcode.OpSwitch:
		return v.decodeSwitch(false)
	case opcode.OpSwitchNf:
		return v.decodeSwitch(true)
	case opcode.OpReturn:
		return v.decodeReturn(true)
	case opcode.OpReturn0:
		return v.decodeReturn(false)
	case opcode.OpSetLocal:
		return v.decodeSetLocal()
	case opcode.OpStoreGlobal:
		return v.decodeStoreGlobal()
	case opcode.OpStoreMem:
		return v.decodeStoreMem()
	case opcode.OpBreak:
		return v.decodeBreak()
	case opcode.OpContinue:
		return v.decodeContinue()
	case opcode.OpNop:
		return v.b.NopNode()
	case opcode.OpInfiniteLoop:
		return v.decodeInfiniteLoop()
	default:
		// Not a statement opcode: must be a legal expression opcode used
		// in statement position (spec §4.4 "expr-as-statement").
		expr, _ := v.decodeExprOp(op, pc)
		return v.b.ExprStmtNode(expr)
	}
}

func (v *verifier) decodeBlockLike(kind frameKind) ir.Node {
	n := int(v.r.U8())
	if v.failed() {
		return v.b.NopNode()
	}
	label := v.frames.len()

	if kind == frameLoop {
		return v.decodeLoopBody(label, n)
	}

	v.frames.push(frameBlock, label)
	children := make([]ir.Node, n)
	for i := 0; i < n; i++ {
		children[i] = v.decodeStatement()
		if v.failed() {
			break
		}
	}
	v.frames.pop()
	return v.b.BlockNode(label, children, nil)
}

// decodeLoopBody applies the phi-placeholder construction spec §4.4
// requires at loop headers: every local's current producer becomes an
// "entry" value, the body is decoded against that snapshot, and any local
// whose producer changed by the back-edge gets a two-source Phi(entry,
// back-edge) recorded on the Loop node; v.locals then goes back to the entry
// producer for that local, since package ir has no node wrapping a Phi.
func (v *verifier) decodeLoopBody(label, n int) ir.Node {
	entry := make(map[int]ir.Node, len(v.locals))
	for i, node := range v.locals {
		entry[i] = node
	}

	v.frames.push(frameLoop, label)
	children := make([]ir.Node, n)
	for i := 0; i < n; i++ {
		children[i] = v.decodeStatement()
		if v.failed() {
			break
		}
	}
	v.frames.pop()

	var phis []ir.Phi
	for i, entryNode := range entry {
		back := v.locals[i]
		if back != entryNode {
			t, _ := v.env.LocalType(i)
			phis = append(phis, ir.Phi{Local: i, Type: t, Sources: []ir.Node{entryNode, back}})
			v.locals[i] = entryNode // code after the loop sees the header value
		}
	}
	return v.b.LoopNode(label, children, phis)
}

func (v *verifier) decodeIf() ir.Node {
	cond := v.decodeTypedExpr(opcode.I32, "if condition")
	snapshot := v.snapshotLocals()
	then := v.decodeStatement()
	phis := v.mergeLocals(snapshot, v.snapshotLocals())
	return v.b.IfNode(cond, then, phis)
}

func (v *verifier) decodeIfThen() ir.Node {
	cond := v.decodeTypedExpr(opcode.I32, "if condition")
	preThen := v.snapshotLocals()
	then := v.decodeStatement()
	afterThen := v.snapshotLocals()
	v.restoreLocals(preThen)
	els := v.decodeStatement()
	afterElse := v.snapshotLocals()
	phis := v.mergeLocals(afterThen, afterElse)
	return v.b.IfThenNode(cond, then, els, phis)
}

func (v *verifier) snapshotLocals() map[int]ir.Node {
	snap := make(map[int]ir.Node, len(v.locals))
	for k, n := range v.locals {
		snap[k] = n
	}
	return snap
}

func (v *verifier) restoreLocals(snap map[int]ir.Node) {
	for k, n := range snap {
		v.locals[k] = n
	}
}

// mergeLocals diffs two post-branch snapshots and records a Phi for every
// local whose producer disagrees. Package ir has no Node wrapping a Phi (only
// Block/Loop/If/IfThen/Switch carry a Phi slice alongside their own
// producer), so v.locals falls back to the second snapshot's producer for
// that local (decodeLoopBody likewise falls back to the entry producer after
// a loop). The recorded Phi itself is still the authoritative merge value;
// the fallback only feeds later merge-point comparisons, since GetLocal
// always builds its own read node.
func (v *verifier) mergeLocals(a, b map[int]ir.Node) []ir.Phi {
	var phis []ir.Phi
	for i, an := range a {
		bn := b[i]
		if an != bn {
			t, _ := v.env.LocalType(i)
			phis = append(phis, ir.Phi{Local: i, Type: t, Sources: []ir.Node{an, bn}})
		}
		v.locals[i] = bn
	}
	return phis
}

func (v *verifier) decodeSwitch(noFallthrough bool) ir.Node {
	k := int(v.r.U8())
	if v.failed() {
		return v.b.NopNode()
	}
	key := v.decodeTypedExpr(opcode.I32, "switch key")
	label := v.frames.len()
	v.frames.push(frameSwitch, label)
	preSwitch := v.snapshotLocals()
	cases := make([]ir.Node, k)
	// snapshots[0] is the no-case-taken path (an out-of-range key executes
	// no case, spec §4.4); snapshots[1:] are the k declared cases.
	snapshots := make([]map[int]ir.Node, k+1)
	snapshots[0] = preSwitch
	for i := 0; i < k; i++ {
		snapBefore := v.snapshotLocals()
		cases[i] = v.decodeStatement()
		snapshots[i+1] = v.snapshotLocals()
		v.restoreLocals(snapBefore)
		if v.failed() {
			break
		}
	}
	v.frames.pop()

	merged := make(map[int]ir.Node, len(preSwitch))
	for i, n := range preSwitch {
		merged[i] = n
	}
	for _, snap := range snapshots[1:] {
		for i, n := range merged {
			if snap[i] != n {
				merged[i] = nil // disagreement recorded below, resolved by phi
			}
		}
	}
	var phis []ir.Phi
	if merged != nil {
		for i, n := range merged {
			if n == nil {
				t, _ := v.env.LocalType(i)
				var sources []ir.Node
				for _, snap := range snapshots {
					sources = append(sources, snap[i])
				}
				phis = append(phis, ir.Phi{Local: i, Type: t, Sources: sources})
			} else {
				v.locals[i] = n
			}
		}
	}
	return v.b.SwitchNode(!noFallthrough, label, key, cases, phis)
}

func (v *verifier) decodeReturn(hasValue bool) ir.Node {
	if !hasValue {
		if v.env.Signature.Return != opcode.Stmt {
			v.fail(cerr.KindValueExpectedStmtFound, v.r.Position(), "Return0 in a function declared to return %s", v.env.Signature.Return)
		}
		return v.b.ReturnNode(nil)
	}
	if v.env.Signature.Return == opcode.Stmt {
		pc := v.r.Position()
		_, _ = v.decodeExpr()
		v.fail(cerr.KindStmtExpectedValueFound, pc, "Return with a value in a void function")
		return v.b.ReturnNode(nil)
	}
	value := v.decodeTypedExpr(v.env.Signature.Return, "return value")
	return v.b.ReturnNode(value)
}

func (v *verifier) decodeSetLocal() ir.Node {
	pc := v.r.Position()
	idx := int(v.r.U8())
	if v.failed() {
		return v.b.NopNode()
	}
	t, ok := idx2Type(v, idx)
	if !ok {
		v.fail(cerr.KindLocalIndexOutOfRange, pc, "local index %d out of range (total_locals=%d)", idx, v.env.TotalLocals())
		return v.b.NopNode()
	}
	value := v.decodeTypedExpr(t, "SetLocal value")
	if v.err == nil {
		v.locals[idx] = value
	}
	return v.b.SetLocalNode(idx, value)
}

func idx2Type(v *verifier, idx int) (opcode.ValueType, bool) {
	return v.env.LocalType(idx)
}

func (v *verifier) decodeStoreGlobal() ir.Node {
	pc := v.r.Position()
	idx := int(v.r.U8())
	if v.failed() {
		return v.b.NopNode()
	}
	if idx < 0 || idx >= v.globals.NumGlobals() {
		v.fail(cerr.KindGlobalIndexOutOfRange, pc, "global index %d out of range (count=%d)", idx, v.globals.NumGlobals())
		_, _ = v.decodeExpr()
		return v.b.NopNode()
	}
	t := opcode.ValueTypeOf(v.globals.GlobalType(idx))
	value := v.decodeTypedExpr(t, "StoreGlobal value")
	return v.b.StoreGlobalNode(idx, value)
}

func (v *verifier) decodeStoreMem() ir.Node {
	pc := v.r.Position()
	mt := opcode.MemType(v.r.U8())
	if v.failed() {
		return v.b.NopNode()
	}
	if !mt.IsValid() {
		v.fail(cerr.KindInvalidMemType, pc, "invalid mem type %d", mt)
		return v.b.NopNode()
	}
	addr := v.decodeTypedExpr(opcode.I32, "StoreMem address")
	// Narrowing stores accept the wider value type and truncate (spec §4.4).
	value := v.decodeTypedExpr(opcode.ValueTypeOf(mt), "StoreMem value")
	return v.b.StoreMemNode(mt, addr, value)
}

func (v *verifier) decodeBreak() ir.Node {
	pc := v.r.Position()
	depth := int(v.r.U8())
	if v.failed() {
		return v.b.NopNode()
	}
	if _, ok := v.frames.at(depth); !ok {
		v.fail(cerr.KindBreakDepthOutOfRange, pc, "break depth %d exceeds enclosing label count %d", depth, v.frames.len())
	}
	return v.b.BreakNode(depth)
}

func (v *verifier) decodeContinue() ir.Node {
	pc := v.r.Position()
	depth := int(v.r.U8())
	if v.failed() {
		return v.b.NopNode()
	}
	if _, ok := v.frames.at(depth); !ok {
		v.fail(cerr.KindBreakDepthOutOfRange, pc, "continue depth %d exceeds enclosing label count %d", depth, v.frames.len())
	}
	return v.b.ContinueNode(depth)
}

func (v *verifier) decodeInfiniteLoop() ir.Node {
	n := int(v.r.U8())
	if v.failed() {
		return v.b.NopNode()
	}
	label := v.frames.len()
	v.frames.push(frameLoop, label)
	children := make([]ir.Node, n)
	for i := 0; i < n; i++ {
		children[i] = v.decodeStatement()
		if v.failed() {
			break
		}
	}
	v.frames.pop()
	return v.b.InfiniteLoopNode(children)
}

// ---- expressions ----

// decodeExpr reads one opcode and dispatches to decodeExprOp, returning its
// value type alongside the node (spec §4.4 "every expression has a value
// type determined by its opcode").
func (v *verifier) decodeExpr() (opcode.ValueType, ir.Node) {
	if v.failed() {
		return opcode.Stmt, v.b.ConstNode(opcode.I32, 0)
	}
	op, pc := v.readOp()
	if v.r.Failed() {
		return opcode.Stmt, v.b.ConstNode(opcode.I32, 0)
	}
	return v.decodeExprOp(op, pc)
}

// decodeTypedExpr decodes one expression and requires it to have type want,
// latching TypeMismatch (with pt pointing at this call site) otherwise.
func (v *verifier) decodeTypedExpr(want opcode.ValueType, what string) ir.Node {
	pt := v.r.Position()
	got, node := v.decodeExpr()
	if v.err == nil && got != want {
		v.failPT(cerr.KindTypeMismatch, v.r.Position(), pt, "%s: expected %s, found %s", what, want, got)
	}
	return node
}

func (v *verifier) decodeExprOp(op opcode.Op, pc int) (opcode.ValueType, ir.Node) {
	switch op {
	case opcode.OpI8Const:
		val := v.r.I8()
		return opcode.I32, v.b.ConstNode(opcode.I32, uint64(uint32(int32(val))))
	case opcode.OpI32Const:
		val := v.r.I32()
		return opcode.I32, v.b.ConstNode(opcode.I32, uint64(uint32(val)))
	case opcode.OpI64Const:
		val := v.r.I64()
		return opcode.I64, v.b.ConstNode(opcode.I64, uint64(val))
	case opcode.OpF32Const:
		val := v.r.F32()
		return opcode.F32, v.b.ConstNode(opcode.F32, uint64(float32bits(val)))
	case opcode.OpF64Const:
		val := v.r.F64()
		return opcode.F64, v.b.ConstNode(opcode.F64, float64bits(val))
	case opcode.OpGetLocal:
		idx := int(v.r.U8())
		if v.failed() {
			return opcode.I32, v.b.ConstNode(opcode.I32, 0)
		}
		t, ok := v.env.LocalType(idx)
		if !ok {
			v.fail(cerr.KindLocalIndexOutOfRange, pc, "local index %d out of range (total_locals=%d)", idx, v.env.TotalLocals())
			return opcode.I32, v.b.ConstNode(opcode.I32, 0)
		}
		// Always a fresh read node: v.locals only tracks producers for phi
		// detection, and a consumer evaluating a reused producer node would
		// recompute the old value instead of reading the local's current one.
		return t, v.b.GetLocalNode(t, idx)
	case opcode.OpLoadGlobal:
		idx := int(v.r.U8())
		if v.failed() {
			return opcode.I32, v.b.ConstNode(opcode.I32, 0)
		}
		if idx < 0 || idx >= v.globals.NumGlobals() {
			v.fail(cerr.KindGlobalIndexOutOfRange, pc, "global index %d out of range (count=%d)", idx, v.globals.NumGlobals())
			return opcode.I32, v.b.ConstNode(opcode.I32, 0)
		}
		t := opcode.ValueTypeOf(v.globals.GlobalType(idx))
		return t, v.b.LoadGlobalNode(t, idx)
	case opcode.OpLoadMem:
		mt := opcode.MemType(v.r.U8())
		if v.failed() {
			return opcode.I32, v.b.ConstNode(opcode.I32, 0)
		}
		if !mt.IsValid() {
			v.fail(cerr.KindInvalidMemType, pc, "invalid mem type %d", mt)
			return opcode.I32, v.b.ConstNode(opcode.I32, 0)
		}
		addr := v.decodeTypedExpr(opcode.I32, "LoadMem address")
		t := opcode.ValueTypeOf(mt)
		return t, v.b.LoadMemNode(t, mt, addr)
	case opcode.OpCallFunction:
		idx := int(v.r.U8())
		if v.failed() {
			return opcode.I32, v.b.ConstNode(opcode.I32, 0)
		}
		if idx < 0 || idx >= v.funcs.NumFuncs() {
			v.fail(cerr.KindFunctionIndexOutOfRange, pc, "function index %d out of range (count=%d)", idx, v.funcs.NumFuncs())
			return opcode.I32, v.b.ConstNode(opcode.I32, 0)
		}
		sig := v.funcs.FuncSignature(idx)
		args := make([]ir.Node, len(sig.Params))
		for i, pt := range sig.Params {
			args[i] = v.decodeTypedExpr(pt, "call argument")
			if v.failed() {
				break
			}
		}
		return sig.Return, v.b.CallNode(sig.Return, idx, args)
	case opcode.OpBoolNot:
		operand := v.decodeTypedExpr(opcode.I32, "BoolNot operand")
		return opcode.I32, v.b.UnopNode(opcode.I32, op, operand)
	case opcode.OpTernary:
		cond := v.decodeTypedExpr(opcode.I32, "ternary condition")
		pt := v.r.Position()
		thenT, thenN := v.decodeExpr()
		elseT, elseN := v.decodeExpr()
		if v.err == nil && thenT != elseT {
			v.failPT(cerr.KindTypeMismatch, v.r.Position(), pt, "ternary: then-type %s, else-type %s differ", thenT, elseT)
		}
		return thenT, v.b.TernaryNode(thenT, cond, thenN, elseN)
	case opcode.OpComma:
		_, a := v.decodeExpr()
		bt, bNode := v.decodeExpr()
		return bt, v.b.CommaNode(bt, a, bNode)
	default:
		sig, ok := opcode.SignatureOf(op)
		if !ok {
			v.fail(cerr.KindUnknownOpcode, pc, "unknown opcode %d", op)
			return opcode.I32, v.b.ConstNode(opcode.I32, 0)
		}
		switch len(sig.Params) {
		case 1:
			operand := v.decodeTypedExpr(sig.Params[0], "unary operand")
			return sig.Return, v.b.UnopNode(sig.Return, op, operand)
		case 2:
			lhs := v.decodeTypedExpr(sig.Params[0], "binary lhs")
			rhs := v.decodeTypedExpr(sig.Params[1], "binary rhs")
			return sig.Return, v.b.BinopNode(sig.Return, op, lhs, rhs)
		default:
			return sig.Return, v.b.ConstNode(sig.Return, 0)
		}
	}
}
