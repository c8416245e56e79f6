package emit

import (
	"fmt"

	"github.com/asmcore/asmcore/binary"
	"github.com/asmcore/asmcore/opcode"
)

// GlobalSource describes one global variable to assemble.
type GlobalSource struct {
	Name     string
	Type     opcode.MemType
	Exported bool
}

// FunctionSource describes one function to assemble. Body is nil for an
// external (host-resolved) function.
type FunctionSource struct {
	Name      string
	Signature opcode.Signature
	Body      Stmt
	Locals    [4]uint16 // I32, I64, F32, F64 local counts beyond the parameters
	Exported  bool
	External  bool
}

// DataSegmentSource describes one data segment to assemble.
type DataSegmentSource struct {
	DestAddr uint32
	Data     []byte
	Init     bool
}

// ModuleSource is the assembler's input: everything needed to produce a
// binary module byte-for-byte decodable by package module (spec §4.3, §6).
type ModuleSource struct {
	MemSizeLog2  uint8
	MemExport    bool
	Globals      []GlobalSource
	Functions    []FunctionSource
	DataSegments []DataSegmentSource
}

// nameEntry records where a name string needs writing and which table slot's
// name_offset field must be patched once it has been.
type nameEntry struct {
	patchPos int
	text     string
}

// AssembleModule encodes src into a complete module byte buffer: header,
// globals table, function table, data segment table, then the appended
// payload area (function code, raw data-segment bytes, and the name table),
// with every forward-reference offset backpatched once the payload's actual
// layout is known. This is the module-level counterpart to Encoder, giving
// C7 a full emit -> module.Decode -> verify round trip without a real
// front-end parser producing binaries on disk.
func AssembleModule(src ModuleSource) ([]byte, error) {
	w := binary.NewWriter()

	w.U8(src.MemSizeLog2)
	if src.MemExport {
		w.U8(1)
	} else {
		w.U8(0)
	}
	w.U16(uint16(len(src.Globals)))
	w.U16(uint16(len(src.Functions)))
	w.U16(uint16(len(src.DataSegments)))

	var names []nameEntry

	for _, g := range src.Globals {
		names = append(names, nameEntry{patchPos: w.Len(), text: g.Name})
		w.U32(0) // name_offset, patched below
		w.U8(byte(g.Type))
		if g.Exported {
			w.U8(1)
		} else {
			w.U8(0)
		}
	}

	type funcPatch struct {
		codeStartAt, codeEndAt int
	}
	funcPatches := make([]funcPatch, len(src.Functions))

	for i, f := range src.Functions {
		w.U8(uint8(len(f.Signature.Params)))
		w.U8(byte(f.Signature.Return))
		for _, p := range f.Signature.Params {
			w.U8(byte(p))
		}
		var fp funcPatch
		names = append(names, nameEntry{patchPos: w.Len(), text: f.Name})
		w.U32(0) // name_offset
		fp.codeStartAt = w.Len()
		w.U32(0) // code_start
		fp.codeEndAt = w.Len()
		w.U32(0) // code_end
		w.U16(f.Locals[0])
		w.U16(f.Locals[1])
		w.U16(f.Locals[2])
		w.U16(f.Locals[3])
		if f.Exported {
			w.U8(1)
		} else {
			w.U8(0)
		}
		if f.External {
			w.U8(1)
		} else {
			w.U8(0)
		}
		funcPatches[i] = fp
	}

	type segPatch struct {
		srcOffAt int
		data     []byte
	}
	segPatches := make([]segPatch, len(src.DataSegments))

	for i, seg := range src.DataSegments {
		w.U32(seg.DestAddr)
		sp := segPatch{data: seg.Data}
		sp.srcOffAt = w.Len()
		w.U32(0) // source_offset
		w.U32(uint32(len(seg.Data)))
		if seg.Init {
			w.U8(1)
		} else {
			w.U8(0)
		}
		segPatches[i] = sp
	}

	// Payload area: function code first, then raw data-segment bytes, then
	// the name table, each appended at its current write position so the
	// table patches above can point at exact offsets.
	for i, f := range src.Functions {
		if f.External {
			continue // code_start/code_end stay 0; module.Decode never reads an external body
		}
		start := w.Len()
		enc := NewEncoder(w)
		if err := enc.EncodeStmt(f.Body); err != nil {
			return nil, fmt.Errorf("emit: function %q: %w", f.Name, err)
		}
		w.PatchU32(funcPatches[i].codeStartAt, uint32(start))
		w.PatchU32(funcPatches[i].codeEndAt, uint32(w.Len()))
	}

	for _, seg := range segPatches {
		off := w.Len()
		w.WriteBytes(seg.data)
		w.PatchU32(seg.srcOffAt, uint32(off))
	}

	for _, n := range names {
		off := w.Len()
		w.U16(uint16(len(n.text)))
		w.WriteBytes([]byte(n.text))
		w.PatchU32(n.patchPos, uint32(off))
	}

	return w.Bytes(), nil
}
