// Package interp is a minimal, non-optimizing tree-walking interpreter over
// package verify/ir's graphs. It is the "conformance oracle" SPEC_FULL.md
// §4.4a calls for: just enough to execute the seven end-to-end scenarios of
// spec §8 and check the universal invariants, never a substitute for the
// real code-generator pipeline (spec §1) that stays out of scope.
package interp

import (
	"fmt"
	"math"
	"strings"

	"github.com/asmcore/asmcore/cerr"
	"github.com/asmcore/asmcore/instantiate"
	"github.com/asmcore/asmcore/link"
	"github.com/asmcore/asmcore/opcode"
	"github.com/asmcore/asmcore/verify/ir"
)

// Machine is an instantiate.CodeGenerator whose compiled output is itself:
// Compile does no lowering, just records the call relocations Link() needs
// to patch, and the same Machine later walks the graph to execute it.
type Machine struct {
	linker *link.Linker
}

// NewMachine creates a Machine driving relocations through l.
func NewMachine(l *link.Linker) *Machine {
	return &Machine{linker: l}
}

type compiledFunc struct {
	graph *ir.Graph
}

// Compile satisfies instantiate.CodeGenerator. It walks g once to discover
// every CallFunction target and obtains a (possibly placeholder) Code object
// for each from the linker, so Link() has something to patch once every
// function in the module has compiled (spec §4.5).
func (m *Machine) Compile(g *ir.Graph, call instantiate.CallDescriptor) (*link.Code, error) {
	seen := make(map[int]bool)
	var relocs []*link.Relocation
	walk(g.Entry, func(n ir.Node) {
		c, ok := n.(*ir.Call)
		if !ok || seen[c.Index] {
			return
		}
		seen[c.Index] = true
		relocs = append(relocs, &link.Relocation{CalleeIndex: c.Index, Target: m.linker.GetFunctionCode(c.Index)})
	})
	return &link.Code{Relocations: relocs, Payload: &compiledFunc{graph: g}}, nil
}

// Call invokes function index funcIndex of inst with args and returns its
// result (zero Value for a void function). Direct calls dispatch through
// inst.Func (a live lookup against the linker's final table) rather than
// through the calling Code's own Relocations: a tree-walking interpreter
// with the whole Instance in hand has no need for a relocation-patched jump
// target the way compiled machine code would, so Compile's Relocations
// exist here purely to exercise and assert the linker's placeholder/patch
// bookkeeping (spec §4.5, §8 "Linker fixed point"), not to drive dispatch.
func (m *Machine) Call(inst *instantiate.Instance, funcIndex int, args []instantiate.Value) (instantiate.Value, error) {
	return m.callCode(inst, inst.Func(funcIndex), args)
}

func (m *Machine) callCode(inst *instantiate.Instance, code *link.Code, args []instantiate.Value) (instantiate.Value, error) {
	switch p := code.Payload.(type) {
	case *compiledFunc:
		locals := make([]instantiate.Value, localSlots(p.graph, len(args)))
		copy(locals, args)
		c := &execCtx{inst: inst, m: m, locals: locals}
		f, err := c.execStmt(p.graph.Entry)
		if err != nil {
			return instantiate.Value{}, err
		}
		if f.kind == sigReturn {
			return f.value, nil
		}
		return instantiate.Value{}, nil
	case instantiate.HostImport:
		return p(args)
	default:
		return instantiate.Value{}, fmt.Errorf("conformance: function has no executable payload (placeholder=%v)", code.Placeholder)
	}
}

// localSlots sizes the flat local array: parameters occupy the low indices,
// and the interpreter (unlike the verifier) has no declared-local count to
// consult, so it takes the highest index any GetLocal/SetLocal in the graph
// actually references — always valid since the verifier already bounds-
// checked every such index against the function's real total_locals.
func localSlots(g *ir.Graph, numArgs int) int {
	max := numArgs - 1
	walk(g.Entry, func(n ir.Node) {
		switch t := n.(type) {
		case *ir.GetLocal:
			if t.Index > max {
				max = t.Index
			}
		case *ir.SetLocal:
			if t.Index > max {
				max = t.Index
			}
		}
	})
	return max + 1
}

// walk visits n and every node reachable from it, depth-first.
func walk(n ir.Node, visit func(ir.Node)) {
	if n == nil {
		return
	}
	visit(n)
	switch t := n.(type) {
	case *ir.LoadMem:
		walk(t.Addr, visit)
	case *ir.Call:
		for _, a := range t.Args {
			walk(a, visit)
		}
	case *ir.Unop:
		walk(t.Operand, visit)
	case *ir.Binop:
		walk(t.LHS, visit)
		walk(t.RHS, visit)
	case *ir.Ternary:
		walk(t.Cond, visit)
		walk(t.Then, visit)
		walk(t.Else, visit)
	case *ir.Comma:
		walk(t.A, visit)
		walk(t.B, visit)
	case *ir.SetLocal:
		walk(t.Value, visit)
	case *ir.StoreGlobal:
		walk(t.Value, visit)
	case *ir.StoreMem:
		walk(t.Addr, visit)
		walk(t.Value, visit)
	case *ir.Block:
		for _, c := range t.Children {
			walk(c, visit)
		}
	case *ir.Loop:
		for _, c := range t.Children {
			walk(c, visit)
		}
	case *ir.If:
		walk(t.Cond, visit)
		walk(t.Then, visit)
	case *ir.IfThen:
		walk(t.Cond, visit)
		walk(t.Then, visit)
		walk(t.Else, visit)
	case *ir.Switch:
		walk(t.Key, visit)
		for _, c := range t.Cases {
			walk(c, visit)
		}
	case *ir.Return:
		walk(t.Value, visit)
	case *ir.InfiniteLoop:
		for _, c := range t.Children {
			walk(c, visit)
		}
	case *ir.ExprStmt:
		walk(t.Expr, visit)
	}
}

type signalKind int

const (
	sigNone signalKind = iota
	sigBreak
	sigContinue
	sigReturn
)

// flow is what execStmt propagates up through nested statements: either
// nothing happened, or a break/continue still looking for its target depth,
// or a return carrying its value.
type flow struct {
	kind  signalKind
	depth int
	value instantiate.Value
}

type execCtx struct {
	inst   *instantiate.Instance
	m      *Machine
	locals []instantiate.Value
}

func (c *execCtx) execStmt(n ir.Node) (flow, error) {
	switch t := n.(type) {
	case *ir.Nop:
		return flow{}, nil
	case *ir.ExprStmt:
		_, err := c.evalExpr(t.Expr)
		return flow{}, err
	case *ir.SetLocal:
		v, err := c.evalExpr(t.Value)
		if err != nil {
			return flow{}, err
		}
		c.locals[t.Index] = v
		return flow{}, nil
	case *ir.StoreGlobal:
		v, err := c.evalExpr(t.Value)
		if err != nil {
			return flow{}, err
		}
		g := c.inst.Module.Globals[t.Index]
		return flow{}, writeMem(c.inst.Globals, g.Type, int32(g.Offset), v)
	case *ir.StoreMem:
		addr, err := c.evalExpr(t.Addr)
		if err != nil {
			return flow{}, err
		}
		val, err := c.evalExpr(t.Value)
		if err != nil {
			return flow{}, err
		}
		return flow{}, writeMem(c.inst.Memory, t.MT, addr.I32, val)
	case *ir.Block:
		return c.execSeq(t.Children)
	case *ir.Loop:
		return c.execLoop(t.Children)
	case *ir.InfiniteLoop:
		return c.execLoop(t.Children)
	case *ir.If:
		cond, err := c.evalExpr(t.Cond)
		if err != nil {
			return flow{}, err
		}
		if cond.I32 != 0 {
			return c.execStmt(t.Then)
		}
		return flow{}, nil
	case *ir.IfThen:
		cond, err := c.evalExpr(t.Cond)
		if err != nil {
			return flow{}, err
		}
		if cond.I32 != 0 {
			return c.execStmt(t.Then)
		}
		return c.execStmt(t.Else)
	case *ir.Switch:
		return c.execSwitch(t)
	case *ir.Break:
		return flow{kind: sigBreak, depth: t.Depth}, nil
	case *ir.Continue:
		return flow{kind: sigContinue, depth: t.Depth}, nil
	case *ir.Return:
		if t.Value == nil {
			return flow{kind: sigReturn}, nil
		}
		v, err := c.evalExpr(t.Value)
		if err != nil {
			return flow{}, err
		}
		return flow{kind: sigReturn, value: v}, nil
	default:
		return flow{}, fmt.Errorf("conformance: unsupported statement node %T", n)
	}
}

// execSeq runs a non-loop labeled sequence (Block); depth-0 break/continue
// both exit the block at its own boundary since it has no back-edge.
func (c *execCtx) execSeq(children []ir.Node) (flow, error) {
	for _, child := range children {
		f, err := c.execStmt(child)
		if err != nil {
			return flow{}, err
		}
		switch f.kind {
		case sigNone:
			continue
		case sigBreak, sigContinue:
			if f.depth == 0 {
				return flow{}, nil
			}
			f.depth--
			return f, nil
		case sigReturn:
			return f, nil
		}
	}
	return flow{}, nil
}

func (c *execCtx) execLoop(children []ir.Node) (flow, error) {
loopBody:
	for {
		for _, child := range children {
			f, err := c.execStmt(child)
			if err != nil {
				return flow{}, err
			}
			switch f.kind {
			case sigNone:
				continue
			case sigBreak:
				if f.depth == 0 {
					break loopBody
				}
				f.depth--
				return f, nil
			case sigContinue:
				if f.depth == 0 {
					continue loopBody
				}
				f.depth--
				return f, nil
			case sigReturn:
				return f, nil
			}
		}
	}
	return flow{}, nil
}

func (c *execCtx) execSwitch(t *ir.Switch) (flow, error) {
	key, err := c.evalExpr(t.Key)
	if err != nil {
		return flow{}, err
	}
	idx := int(key.I32)
	if idx < 0 || idx >= len(t.Cases) {
		return flow{}, nil // out-of-range key executes no case, spec §4.4
	}
	if !t.Fallthrough {
		f, err := c.execStmt(t.Cases[idx])
		if err != nil {
			return flow{}, err
		}
		if f.kind == sigBreak || f.kind == sigContinue {
			if f.depth == 0 {
				return flow{}, nil
			}
			f.depth--
		}
		return f, nil
	}
	for i := idx; i < len(t.Cases); i++ {
		f, err := c.execStmt(t.Cases[i])
		if err != nil {
			return flow{}, err
		}
		switch f.kind {
		case sigNone:
			continue
		case sigBreak, sigContinue:
			if f.depth == 0 {
				return flow{}, nil
			}
			f.depth--
			return f, nil
		case sigReturn:
			return f, nil
		}
	}
	return flow{}, nil
}

func (c *execCtx) evalExpr(n ir.Node) (instantiate.Value, error) {
	switch t := n.(type) {
	case *ir.Const:
		return constValue(t), nil
	case *ir.GetLocal:
		return c.locals[t.Index], nil
	case *ir.LoadGlobal:
		g := c.inst.Module.Globals[t.Index]
		return readMem(c.inst.Globals, g.Type, int32(g.Offset))
	case *ir.LoadMem:
		addr, err := c.evalExpr(t.Addr)
		if err != nil {
			return instantiate.Value{}, err
		}
		return readMem(c.inst.Memory, t.MT, addr.I32)
	case *ir.Call:
		args := make([]instantiate.Value, len(t.Args))
		for i, a := range t.Args {
			v, err := c.evalExpr(a)
			if err != nil {
				return instantiate.Value{}, err
			}
			args[i] = v
		}
		return c.m.callCode(c.inst, c.inst.Func(t.Index), args)
	case *ir.Unop:
		operand, err := c.evalExpr(t.Operand)
		if err != nil {
			return instantiate.Value{}, err
		}
		return evalUnop(t.Op, operand)
	case *ir.Binop:
		lhs, err := c.evalExpr(t.LHS)
		if err != nil {
			return instantiate.Value{}, err
		}
		rhs, err := c.evalExpr(t.RHS)
		if err != nil {
			return instantiate.Value{}, err
		}
		return evalBinop(t.Op, lhs, rhs)
	case *ir.Ternary:
		cond, err := c.evalExpr(t.Cond)
		if err != nil {
			return instantiate.Value{}, err
		}
		if cond.I32 != 0 {
			return c.evalExpr(t.Then)
		}
		return c.evalExpr(t.Else)
	case *ir.Comma:
		if _, err := c.evalExpr(t.A); err != nil {
			return instantiate.Value{}, err
		}
		return c.evalExpr(t.B)
	default:
		return instantiate.Value{}, fmt.Errorf("conformance: unsupported expression node %T", n)
	}
}

func constValue(t *ir.Const) instantiate.Value {
	switch t.Type() {
	case opcode.I32:
		return instantiate.Value{Type: opcode.I32, I32: int32(uint32(t.Bits))}
	case opcode.I64:
		return instantiate.Value{Type: opcode.I64, I64: int64(t.Bits)}
	case opcode.F32:
		return instantiate.Value{Type: opcode.F32, F32: math.Float32frombits(uint32(t.Bits))}
	default:
		return instantiate.Value{Type: opcode.F64, F64: math.Float64frombits(t.Bits)}
	}
}

func evalUnop(op opcode.Op, v instantiate.Value) (instantiate.Value, error) {
	if op == opcode.OpBoolNot {
		r := int32(0)
		if v.I32 == 0 {
			r = 1
		}
		return instantiate.Value{Type: opcode.I32, I32: r}, nil
	}
	typ, fn, err := splitOpName(op)
	if err != nil {
		return instantiate.Value{}, err
	}
	if fn == "Neg" {
		switch typ {
		case "i32":
			return instantiate.Value{Type: opcode.I32, I32: -v.I32}, nil
		case "i64":
			return instantiate.Value{Type: opcode.I64, I64: -v.I64}, nil
		case "f32":
			return instantiate.Value{Type: opcode.F32, F32: -v.F32}, nil
		default:
			return instantiate.Value{Type: opcode.F64, F64: -v.F64}, nil
		}
	}
	if strings.HasPrefix(fn, "From") {
		from := strings.ToLower(strings.TrimPrefix(fn, "From"))
		return convertValue(typ, from, v)
	}
	return instantiate.Value{}, fmt.Errorf("conformance: unsupported unary op %s.%s", typ, fn)
}

func evalBinop(op opcode.Op, lhs, rhs instantiate.Value) (instantiate.Value, error) {
	typ, fn, err := splitOpName(op)
	if err != nil {
		return instantiate.Value{}, err
	}
	switch typ {
	case "i32":
		return evalIntOp(32, fn, uint64(uint32(lhs.I32)), uint64(uint32(rhs.I32)))
	case "i64":
		return evalIntOp(64, fn, uint64(lhs.I64), uint64(rhs.I64))
	case "f32":
		v, isBool, b, err := evalFloatOp(fn, float64(lhs.F32), float64(rhs.F32))
		if err != nil {
			return instantiate.Value{}, err
		}
		if isBool {
			return boolValue(b), nil
		}
		return instantiate.Value{Type: opcode.F32, F32: float32(v)}, nil
	case "f64":
		v, isBool, b, err := evalFloatOp(fn, lhs.F64, rhs.F64)
		if err != nil {
			return instantiate.Value{}, err
		}
		if isBool {
			return boolValue(b), nil
		}
		return instantiate.Value{Type: opcode.F64, F64: v}, nil
	default:
		return instantiate.Value{}, fmt.Errorf("conformance: unsupported binary operand type %q", typ)
	}
}

func splitOpName(op opcode.Op) (typ, fn string, err error) {
	name := opcode.NameOf(op)
	parts := strings.SplitN(name, ".", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("conformance: opcode %d has no per-type name", op)
	}
	return parts[0], parts[1], nil
}

func boolValue(b bool) instantiate.Value {
	v := int32(0)
	if b {
		v = 1
	}
	return instantiate.Value{Type: opcode.I32, I32: v}
}

// evalIntOp evaluates an integer arithmetic/comparison op at the given bit
// width on raw (already width-masked) bit patterns.
func evalIntOp(width int, fn string, a, b uint64) (instantiate.Value, error) {
	mask := func(v uint64) uint64 {
		if width == 32 {
			return v & 0xFFFFFFFF
		}
		return v
	}
	signed := func(v uint64) int64 {
		if width == 32 {
			return int64(int32(uint32(v)))
		}
		return int64(v)
	}
	toValue := func(bits uint64) instantiate.Value {
		if width == 32 {
			return instantiate.Value{Type: opcode.I32, I32: int32(uint32(bits))}
		}
		return instantiate.Value{Type: opcode.I64, I64: int64(bits)}
	}
	switch fn {
	case "Add":
		return toValue(mask(a + b)), nil
	case "Sub":
		return toValue(mask(a - b)), nil
	case "Mul":
		return toValue(mask(a * b)), nil
	case "DivS":
		if b == 0 {
			return instantiate.Value{}, divByZero()
		}
		return toValue(mask(uint64(signed(a) / signed(b)))), nil
	case "DivU":
		if b == 0 {
			return instantiate.Value{}, divByZero()
		}
		return toValue(mask(a / b)), nil
	case "RemS":
		if b == 0 {
			return instantiate.Value{}, divByZero()
		}
		return toValue(mask(uint64(signed(a) % signed(b)))), nil
	case "RemU":
		if b == 0 {
			return instantiate.Value{}, divByZero()
		}
		return toValue(mask(a % b)), nil
	case "And":
		return toValue(mask(a & b)), nil
	case "Or":
		return toValue(mask(a | b)), nil
	case "Xor":
		return toValue(mask(a ^ b)), nil
	case "Shl":
		return toValue(mask(a << (b % uint64(width)))), nil
	case "ShrS":
		return toValue(mask(uint64(signed(a) >> (b % uint64(width))))), nil
	case "ShrU":
		return toValue(mask(a >> (b % uint64(width)))), nil
	case "Eq":
		return boolValue(a == b), nil
	case "Ne":
		return boolValue(a != b), nil
	case "LtS":
		return boolValue(signed(a) < signed(b)), nil
	case "LeS":
		return boolValue(signed(a) <= signed(b)), nil
	case "GtS":
		return boolValue(signed(a) > signed(b)), nil
	case "GeS":
		return boolValue(signed(a) >= signed(b)), nil
	case "LtU":
		return boolValue(a < b), nil
	case "LeU":
		return boolValue(a <= b), nil
	case "GtU":
		return boolValue(a > b), nil
	case "GeU":
		return boolValue(a >= b), nil
	default:
		return instantiate.Value{}, fmt.Errorf("conformance: unsupported integer op %q", fn)
	}
}

func evalFloatOp(fn string, a, b float64) (result float64, isBool, boolResult bool, err error) {
	switch fn {
	case "Add":
		return a + b, false, false, nil
	case "Sub":
		return a - b, false, false, nil
	case "Mul":
		return a * b, false, false, nil
	case "Div":
		return a / b, false, false, nil
	case "Eq":
		return 0, true, a == b, nil
	case "Ne":
		return 0, true, a != b, nil
	case "Lt":
		return 0, true, a < b, nil
	case "Le":
		return 0, true, a <= b, nil
	case "Gt":
		return 0, true, a > b, nil
	case "Ge":
		return 0, true, a >= b, nil
	default:
		return 0, false, false, fmt.Errorf("conformance: unsupported float op %q", fn)
	}
}

func convertValue(to, from string, v instantiate.Value) (instantiate.Value, error) {
	switch to + "<-" + from {
	case "i32<-f64":
		return instantiate.Value{Type: opcode.I32, I32: int32(int64(v.F64))}, nil
	case "i32<-f32":
		return instantiate.Value{Type: opcode.I32, I32: int32(int64(v.F32))}, nil
	case "i32<-i64":
		return instantiate.Value{Type: opcode.I32, I32: int32(v.I64)}, nil
	case "i64<-i32":
		return instantiate.Value{Type: opcode.I64, I64: int64(v.I32)}, nil
	case "i64<-f64":
		return instantiate.Value{Type: opcode.I64, I64: int64(v.F64)}, nil
	case "i64<-f32":
		return instantiate.Value{Type: opcode.I64, I64: int64(v.F32)}, nil
	case "f64<-i32":
		return instantiate.Value{Type: opcode.F64, F64: float64(v.I32)}, nil
	case "f64<-i64":
		return instantiate.Value{Type: opcode.F64, F64: float64(v.I64)}, nil
	case "f64<-f32":
		return instantiate.Value{Type: opcode.F64, F64: float64(v.F32)}, nil
	case "f32<-i32":
		return instantiate.Value{Type: opcode.F32, F32: float32(v.I32)}, nil
	case "f32<-i64":
		return instantiate.Value{Type: opcode.F32, F32: float32(v.I64)}, nil
	case "f32<-f64":
		return instantiate.Value{Type: opcode.F32, F32: float32(v.F64)}, nil
	default:
		return instantiate.Value{}, fmt.Errorf("conformance: unsupported conversion %s<-%s", to, from)
	}
}

func divByZero() error {
	return cerr.New(cerr.PhaseInstantiate, cerr.KindIntegerDivisionByZero).Detail("division by zero").Build()
}

// readMem loads mt at byte address addr from mem, matching the same
// little-endian, sign/zero-extending layout writeMem uses.
func readMem(mem []byte, mt opcode.MemType, addr int32) (instantiate.Value, error) {
	size := int(opcode.MemSizeOf(mt))
	a := int(addr)
	if a < 0 || size == 0 || a+size > len(mem) {
		return instantiate.Value{}, oob(a, size, len(mem))
	}
	t := opcode.ValueTypeOf(mt)
	switch size {
	case 1:
		b := mem[a]
		if opcode.SignExtends(mt) {
			return instantiate.Value{Type: opcode.I32, I32: int32(int8(b))}, nil
		}
		return instantiate.Value{Type: opcode.I32, I32: int32(b)}, nil
	case 2:
		v := uint16(mem[a]) | uint16(mem[a+1])<<8
		if opcode.SignExtends(mt) {
			return instantiate.Value{Type: opcode.I32, I32: int32(int16(v))}, nil
		}
		return instantiate.Value{Type: opcode.I32, I32: int32(v)}, nil
	case 4:
		u := uint32(mem[a]) | uint32(mem[a+1])<<8 | uint32(mem[a+2])<<16 | uint32(mem[a+3])<<24
		if t == opcode.F32 {
			return instantiate.Value{Type: opcode.F32, F32: math.Float32frombits(u)}, nil
		}
		return instantiate.Value{Type: opcode.I32, I32: int32(u)}, nil
	default: // 8
		lo := uint64(mem[a]) | uint64(mem[a+1])<<8 | uint64(mem[a+2])<<16 | uint64(mem[a+3])<<24
		hi := uint64(mem[a+4]) | uint64(mem[a+5])<<8 | uint64(mem[a+6])<<16 | uint64(mem[a+7])<<24
		u := lo | hi<<32
		if t == opcode.F64 {
			return instantiate.Value{Type: opcode.F64, F64: math.Float64frombits(u)}, nil
		}
		return instantiate.Value{Type: opcode.I64, I64: int64(u)}, nil
	}
}

// writeMem stores v (narrowing it if mt is smaller than v's type, spec §4.4
// "narrowing stores... truncate") at byte address addr in mem.
func writeMem(mem []byte, mt opcode.MemType, addr int32, v instantiate.Value) error {
	size := int(opcode.MemSizeOf(mt))
	a := int(addr)
	if a < 0 || size == 0 || a+size > len(mem) {
		return oob(a, size, len(mem))
	}
	switch size {
	case 1:
		mem[a] = byte(intBits(v))
	case 2:
		u := uint16(intBits(v))
		mem[a], mem[a+1] = byte(u), byte(u>>8)
	case 4:
		var u uint32
		if opcode.ValueTypeOf(mt) == opcode.F32 {
			u = math.Float32bits(v.F32)
		} else {
			u = uint32(intBits(v))
		}
		mem[a], mem[a+1], mem[a+2], mem[a+3] = byte(u), byte(u>>8), byte(u>>16), byte(u>>24)
	default: // 8
		var u uint64
		if opcode.ValueTypeOf(mt) == opcode.F64 {
			u = math.Float64bits(v.F64)
		} else {
			u = uint64(intBits(v))
		}
		for i := 0; i < 8; i++ {
			mem[a+i] = byte(u >> (8 * uint(i)))
		}
	}
	return nil
}

// intBits returns v's raw integer bit pattern regardless of whether it is
// tagged I32 or I64, so a narrowing store (spec §4.4: storing a wider value
// type into a narrower MemType truncates) reads the field the value actually
// carries instead of assuming I32.
func intBits(v instantiate.Value) uint64 {
	if v.Type == opcode.I64 {
		return uint64(v.I64)
	}
	return uint64(uint32(v.I32))
}

func oob(addr, size, memLen int) error {
	return cerr.New(cerr.PhaseInstantiate, cerr.KindMemoryAccessOutOfBounds).
		Detail("access at %d (size %d) exceeds memory size %d", addr, size, memLen).Build()
}
