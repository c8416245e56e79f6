package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/asmcore/asmcore/opcode"
	"github.com/asmcore/asmcore/verify/ir"
)

// dumpGraph writes an indented tree of g's nodes to w, the plain-text
// disassembly asmdump reports per function.
func dumpGraph(w io.Writer, g *ir.Graph) {
	fmt.Fprintf(w, "return=%s\n", g.Return)
	dumpNode(w, g.Entry, 0)
}

func dumpNode(w io.Writer, n ir.Node, depth int) {
	if n == nil {
		return
	}
	pad := strings.Repeat("  ", depth)
	switch t := n.(type) {
	case *ir.Const:
		fmt.Fprintf(w, "%sconst.%s %d (seq %d)\n", pad, t.Type(), t.Bits, t.Seq())
	case *ir.GetLocal:
		fmt.Fprintf(w, "%sget_local %d : %s\n", pad, t.Index, t.Type())
	case *ir.LoadGlobal:
		fmt.Fprintf(w, "%sload_global %d : %s\n", pad, t.Index, t.Type())
	case *ir.LoadMem:
		fmt.Fprintf(w, "%sload_mem.%s (seq %d)\n", pad, t.MT, t.Seq())
		dumpNode(w, t.Addr, depth+1)
	case *ir.Call:
		fmt.Fprintf(w, "%scall %d : %s (seq %d)\n", pad, t.Index, t.Type(), t.Seq())
		for _, a := range t.Args {
			dumpNode(w, a, depth+1)
		}
	case *ir.Unop:
		fmt.Fprintf(w, "%s%s\n", pad, opcode.NameOf(t.Op))
		dumpNode(w, t.Operand, depth+1)
	case *ir.Binop:
		fmt.Fprintf(w, "%s%s\n", pad, opcode.NameOf(t.Op))
		dumpNode(w, t.LHS, depth+1)
		dumpNode(w, t.RHS, depth+1)
	case *ir.Ternary:
		fmt.Fprintf(w, "%sternary\n", pad)
		dumpNode(w, t.Cond, depth+1)
		dumpNode(w, t.Then, depth+1)
		dumpNode(w, t.Else, depth+1)
	case *ir.Comma:
		fmt.Fprintf(w, "%scomma\n", pad)
		dumpNode(w, t.A, depth+1)
		dumpNode(w, t.B, depth+1)
	case *ir.SetLocal:
		fmt.Fprintf(w, "%sset_local %d (seq %d)\n", pad, t.Index, t.Seq())
		dumpNode(w, t.Value, depth+1)
	case *ir.StoreGlobal:
		fmt.Fprintf(w, "%sstore_global %d (seq %d)\n", pad, t.Index, t.Seq())
		dumpNode(w, t.Value, depth+1)
	case *ir.StoreMem:
		fmt.Fprintf(w, "%sstore_mem.%s (seq %d)\n", pad, t.MT, t.Seq())
		dumpNode(w, t.Addr, depth+1)
		dumpNode(w, t.Value, depth+1)
	case *ir.Block:
		fmt.Fprintf(w, "%sblock (label %d, %d phi)\n", pad, t.Label, len(t.Phis))
		for _, c := range t.Children {
			dumpNode(w, c, depth+1)
		}
	case *ir.Loop:
		fmt.Fprintf(w, "%sloop (label %d, %d phi)\n", pad, t.Label, len(t.Phis))
		for _, c := range t.Children {
			dumpNode(w, c, depth+1)
		}
	case *ir.If:
		fmt.Fprintf(w, "%sif\n", pad)
		dumpNode(w, t.Cond, depth+1)
		dumpNode(w, t.Then, depth+1)
	case *ir.IfThen:
		fmt.Fprintf(w, "%sif_then\n", pad)
		dumpNode(w, t.Cond, depth+1)
		dumpNode(w, t.Then, depth+1)
		dumpNode(w, t.Else, depth+1)
	case *ir.Switch:
		kind := "switch_nf"
		if t.Fallthrough {
			kind = "switch"
		}
		fmt.Fprintf(w, "%s%s (label %d, %d cases)\n", pad, kind, t.Label, len(t.Cases))
		dumpNode(w, t.Key, depth+1)
		for _, c := range t.Cases {
			dumpNode(w, c, depth+1)
		}
	case *ir.Break:
		fmt.Fprintf(w, "%sbreak %d\n", pad, t.Depth)
	case *ir.Continue:
		fmt.Fprintf(w, "%scontinue %d\n", pad, t.Depth)
	case *ir.Return:
		fmt.Fprintf(w, "%sreturn\n", pad)
		dumpNode(w, t.Value, depth+1)
	case *ir.Nop:
		fmt.Fprintf(w, "%snop\n", pad)
	case *ir.InfiniteLoop:
		fmt.Fprintf(w, "%sinfinite_loop\n", pad)
		for _, c := range t.Children {
			dumpNode(w, c, depth+1)
		}
	case *ir.ExprStmt:
		fmt.Fprintf(w, "%sexpr_stmt\n", pad)
		dumpNode(w, t.Expr, depth+1)
	default:
		fmt.Fprintf(w, "%s<unknown node %T>\n", pad, n)
	}
}
