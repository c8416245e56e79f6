package instantiate_test

import (
	"testing"

	"github.com/asmcore/asmcore/conformance/interp"
	"github.com/asmcore/asmcore/emit"
	"github.com/asmcore/asmcore/instantiate"
	"github.com/asmcore/asmcore/link"
	"github.com/asmcore/asmcore/module"
	"github.com/asmcore/asmcore/opcode"
)

func decodeAssembled(t *testing.T, src emit.ModuleSource) *module.Module {
	t.Helper()
	bin, err := emit.AssembleModule(src)
	if err != nil {
		t.Fatalf("AssembleModule: %v", err)
	}
	m, err := module.Decode(bin, 0, module.DefaultOptions())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return m
}

func TestInstantiateAppliesDataSegmentsLastWriteWins(t *testing.T) {
	src := emit.ModuleSource{
		MemSizeLog2: 8,
		Functions: []emit.FunctionSource{
			{Name: "main", Signature: opcode.Signature{Return: opcode.I32}, Exported: true,
				Body: emit.ReturnStmt{Value: emit.IntConst{Val: 0, T: opcode.I32}}},
		},
		DataSegments: []emit.DataSegmentSource{
			{DestAddr: 0, Data: []byte{1, 1, 1, 1}, Init: true},
			{DestAddr: 2, Data: []byte{9, 9}, Init: true},
		},
	}
	m := decodeAssembled(t, src)
	machine := interp.NewMachine(link.New(len(m.Functions), nil))
	inst, err := instantiate.Instantiate(m, instantiate.Options{Limits: instantiate.DefaultLimits(), CodeGen: machine})
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	want := []byte{1, 1, 9, 9}
	for i, b := range want {
		if inst.Memory[i] != b {
			t.Fatalf("memory[%d] = %d, want %d (later segment should win the overlap)", i, inst.Memory[i], b)
		}
	}
}

func TestInstantiateRejectsMemoryOverLimit(t *testing.T) {
	src := emit.ModuleSource{
		MemSizeLog2: 20,
		Functions: []emit.FunctionSource{
			{Name: "main", Signature: opcode.Signature{Return: opcode.I32}, Exported: true,
				Body: emit.ReturnStmt{Value: emit.IntConst{Val: 0, T: opcode.I32}}},
		},
	}
	m := decodeAssembled(t, src)
	machine := interp.NewMachine(link.New(len(m.Functions), nil))
	_, err := instantiate.Instantiate(m, instantiate.Options{
		Limits:  instantiate.Limits{MaxMemLog2: 10},
		CodeGen: machine,
	})
	if err == nil {
		t.Fatalf("expected an error when mem_size_log2 exceeds the configured limit")
	}
}

func TestInstantiateRegistersOnlyExportedFunctions(t *testing.T) {
	src := emit.ModuleSource{
		Functions: []emit.FunctionSource{
			{Name: "public", Signature: opcode.Signature{Return: opcode.I32}, Exported: true,
				Body: emit.ReturnStmt{Value: emit.IntConst{Val: 7, T: opcode.I32}}},
			{Name: "private", Signature: opcode.Signature{Return: opcode.I32}, Exported: false,
				Body: emit.ReturnStmt{Value: emit.IntConst{Val: 9, T: opcode.I32}}},
		},
	}
	m := decodeAssembled(t, src)
	machine := interp.NewMachine(link.New(len(m.Functions), nil))
	inst, err := instantiate.Instantiate(m, instantiate.Options{Limits: instantiate.DefaultLimits(), CodeGen: machine})
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	if _, ok := inst.Exports["public"]; !ok {
		t.Fatalf("expected \"public\" to be exported")
	}
	if _, ok := inst.Exports["private"]; ok {
		t.Fatalf("\"private\" must not be exported")
	}
}

type mapResolver map[string]instantiate.HostImport

func (r mapResolver) Resolve(name string) (instantiate.HostImport, bool) {
	fn, ok := r[name]
	return fn, ok
}

func TestInstantiateResolvesExternalFunctionsViaImportResolver(t *testing.T) {
	src := emit.ModuleSource{
		Functions: []emit.FunctionSource{
			{Name: "host_double", Signature: opcode.Signature{Return: opcode.I32, Params: []opcode.ValueType{opcode.I32}}, External: true},
		},
	}
	m := decodeAssembled(t, src)
	machine := interp.NewMachine(link.New(len(m.Functions), nil))
	resolver := mapResolver{
		"host_double": func(args []instantiate.Value) (instantiate.Value, error) {
			return instantiate.Value{Type: opcode.I32, I32: args[0].I32 * 2}, nil
		},
	}
	inst, err := instantiate.Instantiate(m, instantiate.Options{
		Limits:  instantiate.DefaultLimits(),
		CodeGen: machine,
		Imports: resolver,
	})
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	code := inst.Func(0)
	if code == nil || code.Payload == nil {
		t.Fatalf("expected function 0's code to carry the resolved host payload")
	}
}

func TestInstantiateFailsWithoutImportResolverForExternalFunction(t *testing.T) {
	src := emit.ModuleSource{
		Functions: []emit.FunctionSource{
			{Name: "host_fn", Signature: opcode.Signature{Return: opcode.I32}, External: true},
		},
	}
	m := decodeAssembled(t, src)
	machine := interp.NewMachine(link.New(len(m.Functions), nil))
	_, err := instantiate.Instantiate(m, instantiate.Options{Limits: instantiate.DefaultLimits(), CodeGen: machine})
	if err == nil {
		t.Fatalf("expected an error resolving an external function with no ImportResolver configured")
	}
}
