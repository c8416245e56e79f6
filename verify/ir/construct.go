package ir

import "github.com/asmcore/asmcore/opcode"

// Builder stamps each constructed node with the next effect-order sequence
// number, so the verifier never has to thread a counter through every
// recursive call by hand.
type Builder struct {
	next int
}

func (b *Builder) seq() int {
	s := b.next
	b.next++
	return s
}

func (b *Builder) ConstNode(t opcode.ValueType, bits uint64) *Const {
	return &Const{base: base{KindConst, t, b.seq()}, Bits: bits}
}

func (b *Builder) GetLocalNode(t opcode.ValueType, index int) *GetLocal {
	return &GetLocal{base: base{KindGetLocal, t, b.seq()}, Index: index}
}

func (b *Builder) LoadGlobalNode(t opcode.ValueType, index int) *LoadGlobal {
	return &LoadGlobal{base: base{KindLoadGlobal, t, b.seq()}, Index: index}
}

func (b *Builder) LoadMemNode(t opcode.ValueType, mt opcode.MemType, addr Node) *LoadMem {
	return &LoadMem{base: base{KindLoadMem, t, b.seq()}, MT: mt, Addr: addr}
}

func (b *Builder) CallNode(t opcode.ValueType, index int, args []Node) *Call {
	return &Call{base: base{KindCall, t, b.seq()}, Index: index, Args: args}
}

func (b *Builder) UnopNode(t opcode.ValueType, op opcode.Op, operand Node) *Unop {
	return &Unop{base: base{KindUnop, t, b.seq()}, Op: op, Operand: operand}
}

func (b *Builder) BinopNode(t opcode.ValueType, op opcode.Op, lhs, rhs Node) *Binop {
	return &Binop{base: base{KindBinop, t, b.seq()}, Op: op, LHS: lhs, RHS: rhs}
}

func (b *Builder) TernaryNode(t opcode.ValueType, cond, then, els Node) *Ternary {
	return &Ternary{base: base{KindTernary, t, b.seq()}, Cond: cond, Then: then, Else: els}
}

func (b *Builder) CommaNode(t opcode.ValueType, a, c Node) *Comma {
	return &Comma{base: base{KindComma, t, b.seq()}, A: a, B: c}
}

func (b *Builder) SetLocalNode(index int, value Node) *SetLocal {
	return &SetLocal{base: base{KindSetLocal, opcode.Stmt, b.seq()}, Index: index, Value: value}
}

func (b *Builder) StoreGlobalNode(index int, value Node) *StoreGlobal {
	return &StoreGlobal{base: base{KindStoreGlobal, opcode.Stmt, b.seq()}, Index: index, Value: value}
}

func (b *Builder) StoreMemNode(mt opcode.MemType, addr, value Node) *StoreMem {
	return &StoreMem{base: base{KindStoreMem, opcode.Stmt, b.seq()}, MT: mt, Addr: addr, Value: value}
}

func (b *Builder) BlockNode(label int, children []Node, phis []Phi) *Block {
	return &Block{base: base{KindBlock, opcode.Stmt, b.seq()}, Label: label, Children: children, Phis: phis}
}

func (b *Builder) LoopNode(label int, children []Node, phis []Phi) *Loop {
	return &Loop{base: base{KindLoop, opcode.Stmt, b.seq()}, Label: label, Children: children, Phis: phis}
}

func (b *Builder) IfNode(cond, then Node, phis []Phi) *If {
	return &If{base: base{KindIf, opcode.Stmt, b.seq()}, Cond: cond, Then: then, Phis: phis}
}

func (b *Builder) IfThenNode(cond, then, els Node, phis []Phi) *IfThen {
	return &IfThen{base: base{KindIfThen, opcode.Stmt, b.seq()}, Cond: cond, Then: then, Else: els, Phis: phis}
}

func (b *Builder) SwitchNode(fallthru bool, label int, key Node, cases []Node, phis []Phi) *Switch {
	return &Switch{base: base{KindSwitch, opcode.Stmt, b.seq()}, Fallthrough: fallthru, Label: label, Key: key, Cases: cases, Phis: phis}
}

func (b *Builder) BreakNode(depth int) *Break {
	return &Break{base: base{KindBreak, opcode.Stmt, b.seq()}, Depth: depth}
}

func (b *Builder) ContinueNode(depth int) *Continue {
	return &Continue{base: base{KindContinue, opcode.Stmt, b.seq()}, Depth: depth}
}

func (b *Builder) ReturnNode(value Node) *Return {
	k := KindReturn
	if value == nil {
		k = KindReturn0
	}
	return &Return{base: base{k, opcode.Stmt, b.seq()}, Value: value}
}

func (b *Builder) NopNode() *Nop {
	return &Nop{base{KindNop, opcode.Stmt, b.seq()}}
}

func (b *Builder) InfiniteLoopNode(children []Node) *InfiniteLoop {
	return &InfiniteLoop{base: base{KindInfiniteLoop, opcode.Stmt, b.seq()}, Children: children}
}

func (b *Builder) ExprStmtNode(expr Node) *ExprStmt {
	return &ExprStmt{base: base{KindExprStmt, opcode.Stmt, b.seq()}, Expr: expr}
}
