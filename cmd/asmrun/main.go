// Command asmrun decodes, links and instantiates a module against the
// conformance package's tree-walking interpreter — a reference oracle for
// exercising the toolchain end to end, never a substitute for a real
// machine-code generator (spec §1, out of scope).
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/asmcore/asmcore/conformance/interp"
	"github.com/asmcore/asmcore/instantiate"
	"github.com/asmcore/asmcore/link"
	"github.com/asmcore/asmcore/module"
	"github.com/asmcore/asmcore/opcode"
)

func main() {
	var (
		path        = flag.String("module", "", "Path to a binary module file")
		funcName    = flag.String("func", "", "Exported function to call")
		argStr      = flag.String("args", "", "Comma-separated argument values")
		list        = flag.Bool("list", false, "List exported functions and exit")
		interactive = flag.Bool("i", false, "Interactive mode: pick a function and type its arguments")
	)
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "Usage: asmrun -module <file> [-func name] [-args v1,v2,...]")
		fmt.Fprintln(os.Stderr, "       asmrun -module <file> -list")
		fmt.Fprintln(os.Stderr, "       asmrun -module <file> -i")
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractiveCall(*path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*path, *funcName, *argStr, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(path, funcName, argStr string, listOnly bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	m, err := module.Decode(data, 0, module.DefaultOptions())
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	fmt.Printf("Module: %s\n", path)
	fmt.Printf("globals=%d functions=%d data_segments=%d\n", len(m.Globals), len(m.Functions), len(m.DataSegments))

	machine := interp.NewMachine(link.New(len(m.Functions), nil))
	inst, err := instantiate.Instantiate(m, instantiate.Options{
		Limits:  instantiate.DefaultLimits(),
		CodeGen: machine,
	})
	if err != nil {
		return fmt.Errorf("instantiate: %w", err)
	}

	fmt.Printf("\nExported functions:\n")
	for _, f := range m.Functions {
		if !f.Exported {
			continue
		}
		name, _ := m.Name(f.NameOffset)
		fmt.Printf("  %s%s\n", name, signatureString(f.Signature))
	}

	if listOnly || funcName == "" {
		return nil
	}

	idx, ok := inst.Exports[funcName]
	if !ok {
		return fmt.Errorf("no exported function named %q", funcName)
	}
	sig := m.Functions[idx].Signature

	var rawArgs []string
	if argStr != "" {
		rawArgs = strings.Split(argStr, ",")
	}
	if len(rawArgs) != len(sig.Params) {
		return fmt.Errorf("%s expects %d argument(s), got %d", funcName, len(sig.Params), len(rawArgs))
	}
	args := make([]instantiate.Value, len(rawArgs))
	for i, raw := range rawArgs {
		v, err := parseValue(sig.Params[i], raw)
		if err != nil {
			return fmt.Errorf("argument %d: %w", i, err)
		}
		args[i] = v
	}

	fmt.Printf("\nCalling %s(%s)...\n", funcName, argStr)
	result, err := machine.Call(inst, idx, args)
	if err != nil {
		return fmt.Errorf("call %s: %w", funcName, err)
	}
	fmt.Printf("Result: %s\n", formatValue(result))
	return nil
}

func parseValue(t opcode.ValueType, raw string) (instantiate.Value, error) {
	raw = strings.TrimSpace(raw)
	switch t {
	case opcode.I32:
		v, err := strconv.ParseInt(raw, 10, 32)
		return instantiate.Value{Type: opcode.I32, I32: int32(v)}, err
	case opcode.I64:
		v, err := strconv.ParseInt(raw, 10, 64)
		return instantiate.Value{Type: opcode.I64, I64: v}, err
	case opcode.F32:
		v, err := strconv.ParseFloat(raw, 32)
		return instantiate.Value{Type: opcode.F32, F32: float32(v)}, err
	case opcode.F64:
		v, err := strconv.ParseFloat(raw, 64)
		return instantiate.Value{Type: opcode.F64, F64: v}, err
	default:
		return instantiate.Value{}, fmt.Errorf("unsupported parameter type %s", t)
	}
}

func formatValue(v instantiate.Value) string {
	switch v.Type {
	case opcode.I32:
		return fmt.Sprintf("%d : i32", v.I32)
	case opcode.I64:
		return fmt.Sprintf("%d : i64", v.I64)
	case opcode.F32:
		return fmt.Sprintf("%v : f32", v.F32)
	case opcode.F64:
		return fmt.Sprintf("%v : f64", v.F64)
	default:
		return "void"
	}
}

func signatureString(sig opcode.Signature) string {
	parts := make([]string, len(sig.Params))
	for i, p := range sig.Params {
		parts[i] = p.String()
	}
	ret := "void"
	if sig.ReturnCount() > 0 {
		ret = sig.Return.String()
	}
	return "(" + strings.Join(parts, ", ") + ") -> " + ret
}
