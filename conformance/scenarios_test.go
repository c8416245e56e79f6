// Package conformance runs the seven end-to-end scenarios of spec §8 as
// executable bytecode fixtures assembled with the C7 emitter, decoded and
// verified by C3/C4, instantiated by C6, and executed by the tree-walking
// interpreter of conformance/interp — the one place in this repository a
// function body actually runs rather than just being decoded or checked.
package conformance

import (
	"math/rand"
	"testing"

	"github.com/asmcore/asmcore/conformance/interp"
	"github.com/asmcore/asmcore/emit"
	"github.com/asmcore/asmcore/instantiate"
	"github.com/asmcore/asmcore/link"
	"github.com/asmcore/asmcore/module"
	"github.com/asmcore/asmcore/opcode"
)

// run assembles src, decodes+verifies it, instantiates it with a fresh
// interp.Machine, and calls the named export with args.
func run(t *testing.T, src emit.ModuleSource, export string, args []instantiate.Value) instantiate.Value {
	t.Helper()
	bin, err := emit.AssembleModule(src)
	if err != nil {
		t.Fatalf("AssembleModule: %v", err)
	}
	m, err := module.Decode(bin, 0, module.DefaultOptions())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	machine := interp.NewMachine(link.New(len(m.Functions), nil))
	inst, err := instantiate.Instantiate(m, instantiate.Options{
		Limits:  instantiate.DefaultLimits(),
		CodeGen: machine,
	})
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	idx, ok := inst.Exports[export]
	if !ok {
		t.Fatalf("export %q not found", export)
	}
	v, err := machine.Call(inst, idx, args)
	if err != nil {
		t.Fatalf("Call %q: %v", export, err)
	}
	return v
}

func i32(v int32) instantiate.Value { return instantiate.Value{Type: opcode.I32, I32: v} }

// Scenario 1: a function with no parameters that returns a constant.
func TestScenarioConstantReturn(t *testing.T) {
	src := emit.ModuleSource{
		Functions: []emit.FunctionSource{{
			Name:      "main",
			Signature: opcode.Signature{Return: opcode.I32},
			Body:      emit.ReturnStmt{Value: emit.IntConst{Val: 121, T: opcode.I32}},
			Exported:  true,
		}},
	}
	got := run(t, src, "main", nil)
	if got.I32 != 121 {
		t.Fatalf("got %d, want 121", got.I32)
	}
}

// Scenario 2: a function that returns its single I32 parameter unchanged,
// checked at the signed-range boundaries.
func TestScenarioParameterPassthrough(t *testing.T) {
	src := emit.ModuleSource{
		Functions: []emit.FunctionSource{{
			Name:      "id",
			Signature: opcode.Signature{Return: opcode.I32, Params: []opcode.ValueType{opcode.I32}},
			Body:      emit.ReturnStmt{Value: emit.LocalRef{Index: 0, T: opcode.I32}},
			Exported:  true,
		}},
	}
	if got := run(t, src, "id", []instantiate.Value{i32(0x7FFFFFFF)}); got.I32 != 0x7FFFFFFF {
		t.Fatalf("got %d, want 0x7FFFFFFF", got.I32)
	}
	if got := run(t, src, "id", []instantiate.Value{i32(-1)}); got.I32 != -1 {
		t.Fatalf("got %d, want -1", got.I32)
	}
}

// Scenario 3: integer addition of two constants.
func TestScenarioAddition(t *testing.T) {
	src := emit.ModuleSource{
		Functions: []emit.FunctionSource{{
			Name:      "add",
			Signature: opcode.Signature{Return: opcode.I32},
			Body: emit.ReturnStmt{Value: emit.BinaryOp{
				Token: "+", Class: emit.ClassSigned, Width: opcode.I32,
				LHS: emit.IntConst{Val: 11, T: opcode.I32},
				RHS: emit.IntConst{Val: 44, T: opcode.I32},
			}},
			Exported: true,
		}},
	}
	if got := run(t, src, "add", nil); got.I32 != 55 {
		t.Fatalf("got %d, want 55", got.I32)
	}
}

// Scenario 4: a countdown loop, local 0 decremented to zero and returned,
// exercising While's Loop(2, If(Not(cond), Break(0)); body) lowering.
func TestScenarioCountdownLoop(t *testing.T) {
	src := emit.ModuleSource{
		Functions: []emit.FunctionSource{{
			Name:      "countdown",
			Signature: opcode.Signature{Return: opcode.I32, Params: []opcode.ValueType{opcode.I32}},
			Body: emit.Block{Stmts: []emit.Stmt{
				emit.While{
					Cond: emit.LocalRef{Index: 0, T: opcode.I32},
					Body: emit.Assign{Local: 0, Value: emit.BinaryOp{
						Token: "-", Class: emit.ClassSigned, Width: opcode.I32,
						LHS: emit.LocalRef{Index: 0, T: opcode.I32},
						RHS: emit.IntConst{Val: 1, T: opcode.I32},
					}},
				},
				emit.ReturnStmt{Value: emit.LocalRef{Index: 0, T: opcode.I32}},
			}},
			Exported: true,
		}},
	}
	for _, in := range []int32{1, 10, 100} {
		if got := run(t, src, "countdown", []instantiate.Value{i32(in)}); got.I32 != 0 {
			t.Fatalf("countdown(%d) = %d, want 0", in, got.I32)
		}
	}
}

// Scenario 5: a memory-resident sum. The function owns a private 20-cell
// I32 array seeded by a data segment, walks addresses from (numCells-1)*4
// down to 4 (cell 0 is left out of the walk on purpose, a sentinel the sum
// does not cover), and accumulates via I32Add on LoadMem(I32,_).
func TestScenarioMemorySum(t *testing.T) {
	const numCells = 20
	cells := make([]int32, numCells)
	rnd := rand.New(rand.NewSource(1))
	for i := range cells {
		cells[i] = rnd.Int31n(1000)
	}
	data := make([]byte, numCells*4)
	for i, v := range cells {
		u := uint32(v)
		data[i*4+0] = byte(u)
		data[i*4+1] = byte(u >> 8)
		data[i*4+2] = byte(u >> 16)
		data[i*4+3] = byte(u >> 24)
	}
	want := int32(0)
	for i := 1; i < numCells; i++ {
		want += cells[i]
	}

	// locals: 0 = loop counter, 1 = accumulator.
	body := emit.Block{Stmts: []emit.Stmt{
		emit.Assign{Local: 0, Value: emit.IntConst{Val: numCells - 1, T: opcode.I32}},
		emit.Assign{Local: 1, Value: emit.IntConst{Val: 0, T: opcode.I32}},
		emit.While{
			Cond: emit.BinaryOp{
				Token: ">", Class: emit.ClassSigned, Width: opcode.I32,
				LHS: emit.LocalRef{Index: 0, T: opcode.I32}, RHS: emit.IntConst{Val: 0, T: opcode.I32},
			},
			Body: emit.Block{Stmts: []emit.Stmt{
				emit.Assign{Local: 1, Value: emit.BinaryOp{
					Token: "+", Class: emit.ClassSigned, Width: opcode.I32,
					LHS: emit.LocalRef{Index: 1, T: opcode.I32},
					RHS: emit.MemRef{MT: opcode.MemI32, Addr: emit.BinaryOp{
						Token: "*", Class: emit.ClassSigned, Width: opcode.I32,
						LHS: emit.LocalRef{Index: 0, T: opcode.I32}, RHS: emit.IntConst{Val: 4, T: opcode.I32},
					}},
				}},
				emit.Assign{Local: 0, Value: emit.BinaryOp{
					Token: "-", Class: emit.ClassSigned, Width: opcode.I32,
					LHS: emit.LocalRef{Index: 0, T: opcode.I32}, RHS: emit.IntConst{Val: 1, T: opcode.I32},
				}},
			}},
		},
		emit.ReturnStmt{Value: emit.LocalRef{Index: 1, T: opcode.I32}},
	}}

	src := emit.ModuleSource{
		MemSizeLog2: 8, // 256 bytes, plenty for 20 I32 cells
		Functions: []emit.FunctionSource{{
			Name:      "sum",
			Signature: opcode.Signature{Return: opcode.I32},
			Body:      body,
			Locals:    [4]uint16{2, 0, 0, 0},
			Exported:  true,
		}},
		DataSegments: []emit.DataSegmentSource{{DestAddr: 0, Data: data, Init: true}},
	}
	if got := run(t, src, "sum", nil); got.I32 != want {
		t.Fatalf("sum() = %d, want %d", got.I32, want)
	}
}

// Scenario 6: a fallthrough switch over a parameter, with both "stop" and
// "fall through to the next case" arms.
func TestScenarioFallthroughSwitch(t *testing.T) {
	src := emit.ModuleSource{
		Functions: []emit.FunctionSource{{
			Name:      "classify",
			Signature: opcode.Signature{Return: opcode.I32, Params: []opcode.ValueType{opcode.I32}},
			Body: emit.Block{Stmts: []emit.Stmt{
				emit.Switch{
					Key:         emit.LocalRef{Index: 0, T: opcode.I32},
					Fallthrough: true,
					Cases: []emit.SwitchCase{
						{Body: emit.NopStmt{}},
						{Body: emit.ReturnStmt{Value: emit.IntConst{Val: 45, T: opcode.I32}}},
						{Body: emit.NopStmt{}},
						{Body: emit.ReturnStmt{Value: emit.IntConst{Val: 47, T: opcode.I32}}},
					},
				},
				emit.ReturnStmt{Value: emit.LocalRef{Index: 0, T: opcode.I32}},
			}},
			Exported: true,
		}},
	}
	// -1 and 4 are out of range for the 4-case switch: it executes no case
	// and falls through to the function's own trailing return, which hands
	// back the key unchanged.
	cases := []struct{ in, want int32 }{
		{-1, -1}, {0, 45}, {1, 45}, {2, 47}, {3, 47}, {4, 4},
	}
	for _, c := range cases {
		got := run(t, src, "classify", []instantiate.Value{i32(c.in)})
		if got.I32 != c.want {
			t.Fatalf("classify(%d) = %d, want %d", c.in, got.I32, c.want)
		}
	}
}

// Scenario 7: function 0 calls function 1 before function 1 has compiled
// (instantiate.Instantiate compiles strictly in index order), exercising the
// linker's placeholder-then-patch path end to end, independent of the result
// itself being order-insensitive.
func TestScenarioForwardCall(t *testing.T) {
	src := emit.ModuleSource{
		Functions: []emit.FunctionSource{
			{
				Name:      "caller",
				Signature: opcode.Signature{Return: opcode.I32},
				Body: emit.ReturnStmt{Value: emit.Call{
					FuncIndex: 1,
					Args: []emit.Expr{
						emit.IntConst{Val: 77, T: opcode.I32},
						emit.IntConst{Val: 22, T: opcode.I32},
					},
					Ret: opcode.I32,
				}},
				Exported: true,
			},
			{
				Name:      "sum2",
				Signature: opcode.Signature{Return: opcode.I32, Params: []opcode.ValueType{opcode.I32, opcode.I32}},
				Body: emit.ReturnStmt{Value: emit.BinaryOp{
					Token: "+", Class: emit.ClassSigned, Width: opcode.I32,
					LHS: emit.LocalRef{Index: 0, T: opcode.I32},
					RHS: emit.LocalRef{Index: 1, T: opcode.I32},
				}},
			},
		},
	}
	if got := run(t, src, "caller", nil); got.I32 != 99 {
		t.Fatalf("caller() = %d, want 99", got.I32)
	}
}
