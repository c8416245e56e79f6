package instantiate

import (
	"go.uber.org/zap"

	"github.com/asmcore/asmcore/cerr"
	"github.com/asmcore/asmcore/link"
	"github.com/asmcore/asmcore/module"
	"github.com/asmcore/asmcore/opcode"
	"github.com/asmcore/asmcore/verify"
)

// Limits bounds resource allocation at instantiation time (spec §4.6 step 1).
type Limits struct {
	MaxMemLog2 uint8
}

// DefaultLimits caps linear memory at 1<<26 = 64MiB, generous for the small
// trusted modules this toolchain targets.
func DefaultLimits() Limits {
	return Limits{MaxMemLog2: 26}
}

// Options configures Instantiate.
type Options struct {
	Limits  Limits
	CodeGen CodeGenerator
	Imports ImportResolver
}

// Instance is an instantiated module: its linear memory, globals area, and
// the linker's final code table, with exported names resolved to function
// indices (spec §6 "a module object exposing, by name, every exported
// function and optionally the memory buffer").
type Instance struct {
	Module  *module.Module
	Memory  []byte
	Globals []byte
	Linker  *link.Linker

	Exports       map[string]int
	MemoryExported bool
}

// Func returns function i's final compiled (or host-adapter) code.
func (in *Instance) Func(i int) *link.Code {
	return in.Linker.GetFunctionCode(i)
}

// Instantiate runs spec §4.6's eight steps in order, each a failure gate,
// releasing any buffers already allocated if a later step fails.
func Instantiate(m *module.Module, opts Options) (*Instance, error) {
	// Step 1: reject oversized memory requests.
	if m.MemSizeLog2 > opts.Limits.MaxMemLog2 {
		return nil, cerr.New(cerr.PhaseInstantiate, cerr.KindMemoryTooLarge).
			Detail("mem_size_log2 %d exceeds maximum %d", m.MemSizeLog2, opts.Limits.MaxMemLog2).Build()
	}

	// Step 2: allocate zero-initialized linear memory.
	memory := make([]byte, m.MemSize())

	// Step 3: apply data segments in declaration order; later writes to
	// overlapping ranges win (spec §5 "last write wins"). Decode already
	// rejected any init=true segment whose range exceeds mem_size.
	for _, seg := range m.DataSegments {
		if !seg.Init {
			continue
		}
		src := m.Bytes[int(seg.SourceOffset) : int(seg.SourceOffset)+int(seg.SourceSize)]
		copy(memory[seg.DestAddr:], src)
	}

	// Step 4: globals offsets were assigned by Decode; allocate the area.
	globals := make([]byte, globalsAreaSize(m))

	external := make([]bool, len(m.Functions))
	for i, f := range m.Functions {
		external[i] = f.External
	}
	linker := link.New(len(m.Functions), external)

	// Step 5/6: compile or resolve each function, installing its code.
	for i, f := range m.Functions {
		if f.External {
			code, err := resolveExternal(m, f, opts.Imports, i)
			if err != nil {
				return nil, err
			}
			linker.Finish(i, code)
			continue
		}
		if opts.CodeGen == nil {
			return nil, cerr.New(cerr.PhaseInstantiate, cerr.KindAllocationFailed).Func(i).
				Detail("no CodeGenerator configured to compile function %d", i).Build()
		}
		env := verify.FuncEnv{
			Signature:  f.Signature,
			LocalCount: [4]int{int(f.LocalI32), int(f.LocalI64), int(f.LocalF32), int(f.LocalF64)},
		}
		graph, err := verify.Verify(env, m.FuncBody(i), m.Start+int(f.CodeStart), m, m)
		if err != nil {
			if ce, ok := err.(*cerr.Error); ok {
				ce.FuncIndex = i
			}
			return nil, err
		}
		code, err := opts.CodeGen.Compile(graph, CallDescriptor{FuncIndex: i, Signature: f.Signature})
		if err != nil {
			return nil, cerr.New(cerr.PhaseInstantiate, cerr.KindAllocationFailed).Func(i).
				Cause(err).Detail("code generation failed for function %d", i).Build()
		}
		linker.Finish(i, code)
	}

	// Step 7: patch direct calls now that every body has final code.
	linker.Link()
	if err := linker.Verify(); err != nil {
		return nil, err
	}

	// Step 8: register exports.
	exports := make(map[string]int)
	for i, f := range m.Functions {
		if !f.Exported {
			continue
		}
		name, err := m.Name(f.NameOffset)
		if err != nil {
			return nil, err
		}
		exports[name] = i
	}

	Logger().Debug("instantiated module",
		zap.Int("mem_size", len(memory)),
		zap.Int("globals_size", len(globals)),
		zap.Int("exports", len(exports)),
	)

	return &Instance{
		Module:         m,
		Memory:         memory,
		Globals:        globals,
		Linker:         linker,
		Exports:        exports,
		MemoryExported: m.MemExport,
	}, nil
}

func globalsAreaSize(m *module.Module) uint32 {
	var size uint32
	for _, g := range m.Globals {
		end := g.Offset + uint32(opcode.MemSizeOf(g.Type))
		if end > size {
			size = end
		}
	}
	return size
}

func resolveExternal(m *module.Module, f module.FuncDescriptor, imports ImportResolver, index int) (*link.Code, error) {
	if imports == nil {
		return nil, cerr.New(cerr.PhaseInstantiate, cerr.KindUnresolvedImport).Func(index).
			Detail("function %d is external but no ImportResolver was configured", index).Build()
	}
	name, err := m.Name(f.NameOffset)
	if err != nil {
		return nil, err
	}
	fn, ok := imports.Resolve(name)
	if !ok {
		return nil, cerr.New(cerr.PhaseInstantiate, cerr.KindUnresolvedImport).Func(index).
			Detail("no host import registered for external function %q (index %d)", name, index).Build()
	}
	return &link.Code{Payload: fn}, nil
}
