package module

import (
	"go.uber.org/zap"

	"github.com/asmcore/asmcore/binary"
	"github.com/asmcore/asmcore/cerr"
	"github.com/asmcore/asmcore/opcode"
)

// Limits are the implementation-defined size limits spec §4.3 requires to
// exist. Out-of-range module or function sizes fail fast, before any byte
// of the offending section is interpreted.
type Limits struct {
	MinModuleSize   int
	MaxModuleSize   int
	MaxFunctionSize int
}

// DefaultLimits returns conservative defaults sized for the embedder use
// case this toolchain targets: small, trusted, frequently-recompiled
// modules rather than multi-megabyte binaries.
func DefaultLimits() Limits {
	return Limits{
		MinModuleSize:   8, // header alone
		MaxModuleSize:   64 << 20,
		MaxFunctionSize: 1 << 20,
	}
}

// Options configures Decode.
type Options struct {
	Limits Limits
	// VerifyFunctions, when true, hands every non-external function body
	// to the verifier (C4) as part of decoding, per spec §4.3.
	VerifyFunctions bool
}

// DefaultOptions returns Options with default limits and verification on.
func DefaultOptions() Options {
	return Options{Limits: DefaultLimits(), VerifyFunctions: true}
}

// Decode parses data as a module per spec §4.3. Start is the absolute
// position data[0] occupies for PC reporting purposes (pass 0 for a
// top-level module).
func Decode(data []byte, start int, opts Options) (*Module, error) {
	n := len(data)
	if n < opts.Limits.MinModuleSize {
		return nil, cerr.New(cerr.PhaseDecode, cerr.KindModuleTooSmall).At(start).
			Detail("module size %d below minimum %d", n, opts.Limits.MinModuleSize).Build()
	}
	if n > opts.Limits.MaxModuleSize {
		return nil, cerr.New(cerr.PhaseDecode, cerr.KindModuleTooLarge).At(start).
			Detail("module size %d exceeds maximum %d", n, opts.Limits.MaxModuleSize).Build()
	}

	r := binary.New(data, start)

	m := &Module{Bytes: data, Start: start, End: start + n}

	m.MemSizeLog2 = r.U8()
	m.MemExport = r.U8() != 0
	globalsCount := r.U16()
	functionsCount := r.U16()
	dataSegCount := r.U16()
	if r.Failed() {
		return nil, decodeErr(r, "header")
	}

	m.Globals = make([]Global, globalsCount)
	for i := range m.Globals {
		nameOff := r.U32()
		typ := opcode.MemType(r.U8())
		exported := r.U8() != 0
		if r.Failed() {
			return nil, decodeErr(r, "globals")
		}
		if !typ.IsValid() {
			return nil, cerr.New(cerr.PhaseDecode, cerr.KindInvalidMemType).At(r.Position()).
				Detail("global %d has invalid mem type %d", i, typ).Build()
		}
		m.Globals[i] = Global{NameOffset: nameOff, Type: typ, Exported: exported}
	}
	AssignGlobalOffsets(m.Globals)

	m.Functions = make([]FuncDescriptor, functionsCount)
	for i := range m.Functions {
		fd, err := decodeFuncDescriptor(r, n)
		if err != nil {
			return nil, err
		}
		if size := int(fd.CodeEnd - fd.CodeStart); size > opts.Limits.MaxFunctionSize {
			return nil, cerr.New(cerr.PhaseDecode, cerr.KindFunctionTooLarge).At(int(fd.CodeStart)).Func(i).
				Detail("function body size %d exceeds maximum %d", size, opts.Limits.MaxFunctionSize).Build()
		}
		m.Functions[i] = fd
	}

	m.DataSegments = make([]DataSegment, dataSegCount)
	for i := range m.DataSegments {
		dest := r.U32()
		srcOff := r.U32()
		srcSize := r.U32()
		init := r.U8() != 0
		if r.Failed() {
			return nil, decodeErr(r, "data segments")
		}
		if init && uint64(dest)+uint64(srcSize) > uint64(m.MemSize()) {
			return nil, cerr.New(cerr.PhaseDecode, cerr.KindSegmentOutOfBounds).At(r.Position()).
				Detail("segment %d: dest_addr %d + source_size %d exceeds mem_size %d", i, dest, srcSize, m.MemSize()).Build()
		}
		if init && uint64(srcOff)+uint64(srcSize) > uint64(n) {
			return nil, cerr.New(cerr.PhaseDecode, cerr.KindSegmentOutOfBounds).At(r.Position()).
				Detail("segment %d: source_offset %d + source_size %d exceeds module size %d", i, srcOff, srcSize, n).Build()
		}
		m.DataSegments[i] = DataSegment{DestAddr: dest, SourceOffset: srcOff, SourceSize: srcSize, Init: init}
	}

	if opts.VerifyFunctions {
		if err := verifyAll(m, opts.Limits); err != nil {
			return nil, err
		}
	}

	Logger().Debug("decoded module",
		zap.Int("globals", len(m.Globals)),
		zap.Int("functions", len(m.Functions)),
		zap.Int("data_segments", len(m.DataSegments)),
	)
	return m, nil
}

func decodeFuncDescriptor(r *binary.Reader, moduleSpan int) (FuncDescriptor, error) {
	sig, err := decodeSignature(r)
	if err != nil {
		return FuncDescriptor{}, err
	}
	nameOff := r.U32()
	codeStart := r.OffsetU32(moduleSpan)
	codeEnd := r.OffsetU32(moduleSpan)
	localI32 := r.U16()
	localI64 := r.U16()
	localF32 := r.U16()
	localF64 := r.U16()
	exported := r.U8() != 0
	external := r.U8() != 0
	if r.Failed() {
		return FuncDescriptor{}, decodeErr(r, "function table")
	}
	if codeEnd < codeStart {
		return FuncDescriptor{}, cerr.New(cerr.PhaseDecode, cerr.KindOffsetOutOfBounds).At(r.Position()).
			Detail("code_end %d < code_start %d", codeEnd, codeStart).Build()
	}
	return FuncDescriptor{
		Signature: sig, NameOffset: nameOff,
		CodeStart: codeStart, CodeEnd: codeEnd,
		LocalI32: localI32, LocalI64: localI64, LocalF32: localF32, LocalF64: localF64,
		Exported: exported, External: external,
	}, nil
}

// decodeSignature parses "param_count:u8, return_type:u8, params:u8[]"
// (spec §4.3, §6).
func decodeSignature(r *binary.Reader) (opcode.Signature, error) {
	paramCount := r.U8()
	ret := opcode.ValueType(r.U8())
	if r.Failed() {
		return opcode.Signature{}, decodeErr(r, "signature")
	}
	if ret != opcode.Stmt && !ret.IsValue() {
		return opcode.Signature{}, cerr.New(cerr.PhaseDecode, cerr.KindInvalidSignature).At(r.Position()).
			Detail("invalid return type %d", ret).Build()
	}
	params := make([]opcode.ValueType, paramCount)
	for i := range params {
		t := opcode.ValueType(r.U8())
		if r.Failed() {
			return opcode.Signature{}, decodeErr(r, "signature params")
		}
		if t == opcode.Stmt {
			return opcode.Signature{}, cerr.New(cerr.PhaseDecode, cerr.KindInvalidSignature).At(r.Position()).
				Detail("parameter %d is Stmt, which is not a legal parameter type", i).Build()
		}
		if !t.IsValue() {
			return opcode.Signature{}, cerr.New(cerr.PhaseDecode, cerr.KindInvalidSignature).At(r.Position()).
				Detail("parameter %d has invalid type %d", i, t).Build()
		}
		params[i] = t
	}
	return opcode.Signature{Return: ret, Params: params}, nil
}

// AssignGlobalOffsets computes each global's offset by rounding the running
// size up to the global's own natural alignment and then adding its size
// (spec §3 "Global variable").
func AssignGlobalOffsets(globals []Global) {
	var size uint32
	for i := range globals {
		align := uint32(opcode.MemSizeOf(globals[i].Type))
		if align == 0 {
			align = 1
		}
		if rem := size % align; rem != 0 {
			size += align - rem
		}
		globals[i].Offset = size
		size += align
	}
}

func decodeErr(r *binary.Reader, section string) error {
	code, pc, pt, hasPT := r.Error()
	kind := cerr.KindUnexpectedEndOfBytes
	if code == binary.ErrOffsetOutOfBounds {
		kind = cerr.KindOffsetOutOfBounds
	}
	b := cerr.New(cerr.PhaseDecode, kind).At(pc).Detail("%s", section)
	if hasPT {
		b = b.Point(pt)
	}
	return b.Build()
}
