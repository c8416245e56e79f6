package emit

import (
	"fmt"

	"github.com/asmcore/asmcore/binary"
	"github.com/asmcore/asmcore/opcode"
)

// ctrlFrame is the encoder's mirror of verify/frames.go's frame stack,
// pushed for every construct that introduces a bytecode label (Block, Loop,
// Switch/SwitchNf) so Break/Continue can compute a relative depth instead of
// the AST naming a target directly (spec §4.7 "Control stacks... are
// maintained so Break/Continue can compute the correct relative depth").
type ctrlFrame struct {
	isLoop bool
}

// Encoder lowers a typed AST into the bytecode grammar of spec §4.4,
// writing through a *binary.Writer.
type Encoder struct {
	w     *binary.Writer
	stack []ctrlFrame
}

// NewEncoder creates an Encoder writing into w.
func NewEncoder(w *binary.Writer) *Encoder {
	return &Encoder{w: w}
}

func (e *Encoder) push(isLoop bool) { e.stack = append(e.stack, ctrlFrame{isLoop: isLoop}) }
func (e *Encoder) pop()             { e.stack = e.stack[:len(e.stack)-1] }

// breakDepth validates that label names an enclosing breakable construct and
// returns it unchanged: source-level break counts enclosing constructs of
// any kind (block/loop/switch), which is exactly how the bytecode's Break(d)
// indexes the unified frame stack (verify/frames.go's frames.at).
func (e *Encoder) breakDepth(label int) (int, error) {
	if label < 0 || label >= len(e.stack) {
		return 0, fmt.Errorf("emit: break label %d exceeds enclosing construct count %d", label, len(e.stack))
	}
	return label, nil
}

// continueDepth translates a source-level "continue the label-th enclosing
// loop" into a raw bytecode depth, walking outward from the top of the stack
// and counting only loop frames — the computation spec §4.7 calls out the
// control stack's "loop?" flag for, since continue's source meaning skips
// over any intervening non-loop block or switch.
func (e *Encoder) continueDepth(label int) (int, error) {
	loopsSeen := -1
	for i := len(e.stack) - 1; i >= 0; i-- {
		if e.stack[i].isLoop {
			loopsSeen++
			if loopsSeen == label {
				return len(e.stack) - 1 - i, nil
			}
		}
	}
	return 0, fmt.Errorf("emit: continue label %d exceeds enclosing loop count %d", label, loopsSeen+1)
}

// EncodeExpr writes e's bytecode encoding.
func (e *Encoder) EncodeExpr(expr Expr) error {
	switch n := expr.(type) {
	case IntConst:
		return e.encodeIntConst(n)
	case FloatConst:
		if n.T == opcode.F32 {
			e.w.U8(byte(opcode.OpF32Const))
			e.w.F32(float32(n.Val))
		} else {
			e.w.U8(byte(opcode.OpF64Const))
			e.w.F64(n.Val)
		}
		return nil
	case LocalRef:
		e.w.U8(byte(opcode.OpGetLocal))
		e.w.U8(uint8(n.Index))
		return nil
	case GlobalRef:
		e.w.U8(byte(opcode.OpLoadGlobal))
		e.w.U8(uint8(n.Index))
		return nil
	case MemRef:
		e.w.U8(byte(opcode.OpLoadMem))
		e.w.U8(byte(n.MT))
		return e.EncodeExpr(n.Addr)
	case Call:
		e.w.U8(byte(opcode.OpCallFunction))
		e.w.U8(uint8(n.FuncIndex))
		for _, arg := range n.Args {
			if err := e.EncodeExpr(arg); err != nil {
				return err
			}
		}
		return nil
	case Not:
		e.w.U8(byte(opcode.OpBoolNot))
		return e.EncodeExpr(n.Operand)
	case CondExpr:
		e.w.U8(byte(opcode.OpTernary))
		if err := e.EncodeExpr(n.Cond); err != nil {
			return err
		}
		if err := e.EncodeExpr(n.Then); err != nil {
			return err
		}
		return e.EncodeExpr(n.Else)
	case CommaExpr:
		e.w.U8(byte(opcode.OpComma))
		if err := e.EncodeExpr(n.A); err != nil {
			return err
		}
		return e.EncodeExpr(n.B)
	case Neg:
		op, ok := opcode.ByName(n.Operand.Type().String() + ".Neg")
		if !ok {
			return fmt.Errorf("emit: no Neg opcode for type %s", n.Operand.Type())
		}
		e.w.U8(byte(op))
		return e.EncodeExpr(n.Operand)
	case Convert:
		op, ok := convertOpcode(n.From.Type(), n.To)
		if !ok {
			return fmt.Errorf("emit: no conversion opcode %s->%s", n.From.Type(), n.To)
		}
		e.w.U8(byte(op))
		return e.EncodeExpr(n.From)
	case BinaryOp:
		op, err := binopOpcode(n)
		if err != nil {
			return err
		}
		e.w.U8(byte(op))
		if err := e.EncodeExpr(n.LHS); err != nil {
			return err
		}
		return e.EncodeExpr(n.RHS)
	default:
		return fmt.Errorf("emit: unsupported expression shape %T", expr)
	}
}

// EncodeStmt writes s's bytecode encoding, recursing into any nested
// statements and expressions.
func (e *Encoder) EncodeStmt(stmt Stmt) error {
	switch n := stmt.(type) {
	case ExprStmt:
		return e.EncodeExpr(n.Expr)
	case Assign:
		e.w.U8(byte(opcode.OpSetLocal))
		e.w.U8(uint8(n.Local))
		return e.EncodeExpr(n.Value)
	case StoreGlobal:
		e.w.U8(byte(opcode.OpStoreGlobal))
		e.w.U8(uint8(n.Global))
		return e.EncodeExpr(n.Value)
	case StoreMem:
		e.w.U8(byte(opcode.OpStoreMem))
		e.w.U8(byte(n.MT))
		if err := e.EncodeExpr(n.Addr); err != nil {
			return err
		}
		return e.EncodeExpr(n.Value)
	case Block:
		e.w.U8(byte(opcode.OpBlock))
		e.w.U8(uint8(len(n.Stmts)))
		e.push(false)
		defer e.pop()
		for _, s := range n.Stmts {
			if err := e.EncodeStmt(s); err != nil {
				return err
			}
		}
		return nil
	case If:
		e.w.U8(byte(opcode.OpIf))
		if err := e.EncodeExpr(n.Cond); err != nil {
			return err
		}
		return e.EncodeStmt(n.Then)
	case IfElse:
		e.w.U8(byte(opcode.OpIfThen))
		if err := e.EncodeExpr(n.Cond); err != nil {
			return err
		}
		if err := e.EncodeStmt(n.Then); err != nil {
			return err
		}
		return e.EncodeStmt(n.Else)
	case While:
		return e.encodeWhile(n)
	case Switch:
		return e.encodeSwitch(n)
	case BreakStmt:
		depth, err := e.breakDepth(n.Label)
		if err != nil {
			return err
		}
		e.w.U8(byte(opcode.OpBreak))
		e.w.U8(uint8(depth))
		return nil
	case ContinueStmt:
		depth, err := e.continueDepth(n.Label)
		if err != nil {
			return err
		}
		e.w.U8(byte(opcode.OpContinue))
		e.w.U8(uint8(depth))
		return nil
	case ReturnStmt:
		if n.Value == nil {
			e.w.U8(byte(opcode.OpReturn0))
			return nil
		}
		e.w.U8(byte(opcode.OpReturn))
		return e.EncodeExpr(n.Value)
	case NopStmt:
		e.w.U8(byte(opcode.OpNop))
		return nil
	case InfiniteLoopStmt:
		e.w.U8(byte(opcode.OpInfiniteLoop))
		e.w.U8(uint8(len(n.Body)))
		e.push(true)
		defer e.pop()
		for _, s := range n.Body {
			if err := e.EncodeStmt(s); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("emit: unsupported statement shape %T", stmt)
	}
}

// encodeWhile lowers `while (cond) body` to `Loop(2, If(Not(cond),
// Break(0)); body)` per spec §4.7.
func (e *Encoder) encodeWhile(n While) error {
	e.w.U8(byte(opcode.OpLoop))
	e.w.U8(2)
	e.push(true)
	defer e.pop()
	guard := If{Cond: Not{Operand: n.Cond}, Then: BreakStmt{Label: 0}}
	if err := e.EncodeStmt(guard); err != nil {
		return err
	}
	return e.EncodeStmt(n.Body)
}

func (e *Encoder) encodeSwitch(n Switch) error {
	if n.Fallthrough {
		e.w.U8(byte(opcode.OpSwitch))
	} else {
		e.w.U8(byte(opcode.OpSwitchNf))
	}
	e.w.U8(uint8(len(n.Cases)))
	if err := e.EncodeExpr(n.Key); err != nil {
		return err
	}
	e.push(false)
	defer e.pop()
	for _, c := range n.Cases {
		if err := e.EncodeStmt(c.Body); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeIntConst(n IntConst) error {
	if n.T == opcode.I64 {
		e.w.U8(byte(opcode.OpI64Const))
		e.w.I64(n.Val)
		return nil
	}
	if n.Val >= -128 && n.Val <= 127 {
		e.w.U8(byte(opcode.OpI8Const))
		e.w.I8(int8(n.Val))
		return nil
	}
	e.w.U8(byte(opcode.OpI32Const))
	e.w.I32(int32(n.Val))
	return nil
}

// binopOpcode maps a (class, token) pair to the per-type opcode family name spec
// §4.7 describes as "arithmetic/comparison ops -> the opcode chosen by the
// pair (inferred type class, token)".
func binopOpcode(n BinaryOp) (opcode.Op, error) {
	var typeName string
	var signed bool
	switch n.Class {
	case ClassF32:
		typeName = "f32"
	case ClassF64:
		typeName = "f64"
	case ClassSigned:
		typeName = n.Width.String()
		signed = true
	case ClassUnsigned:
		typeName = n.Width.String()
		signed = false
	}
	var name string
	switch n.Token {
	case "+":
		name = "Add"
	case "-":
		name = "Sub"
	case "*":
		name = "Mul"
	case "/":
		name = pick(n.Class, "Div", "DivS", "DivU")
	case "%":
		name = pick(n.Class, "", "RemS", "RemU")
	case "&":
		name = "And"
	case "|":
		name = "Or"
	case "^":
		name = "Xor"
	case "<<":
		name = "Shl"
	case ">>":
		name = pick(n.Class, "", "ShrS", "ShrU")
	case "==":
		name = "Eq"
	case "!=":
		name = "Ne"
	case "<":
		name = pick(n.Class, "Lt", "LtS", "LtU")
	case "<=":
		name = pick(n.Class, "Le", "LeS", "LeU")
	case ">":
		name = pick(n.Class, "Gt", "GtS", "GtU")
	case ">=":
		name = pick(n.Class, "Ge", "GeS", "GeU")
	default:
		return 0, fmt.Errorf("emit: unsupported binary token %q", n.Token)
	}
	if name == "" {
		return 0, fmt.Errorf("emit: token %q not defined for float operands", n.Token)
	}
	op, ok := opcode.ByName(typeName + "." + name)
	if !ok {
		return 0, fmt.Errorf("emit: no opcode named %s.%s", typeName, name)
	}
	_ = signed
	return op, nil
}

// pick returns floatName for a float class, or signedName/unsignedName for
// the signed/unsigned integer classes respectively.
func pick(class TypeClass, floatName, signedName, unsignedName string) string {
	switch class {
	case ClassF32, ClassF64:
		return floatName
	case ClassSigned:
		return signedName
	default:
		return unsignedName
	}
}

func convertOpcode(from, to opcode.ValueType) (opcode.Op, bool) {
	name := to.String() + ".From" + capitalizeFirst(from.String())
	return opcode.ByName(name)
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
