package module

import "github.com/asmcore/asmcore/cerr"

// Name reads the diagnostic/export name stored at a name_offset field (spec
// §3 "name_offset: u32... for diagnostics"). The spec leaves the name
// table's own encoding unspecified beyond "an offset into the module byte
// range"; this decoder uses a length-prefixed (u16 length, then that many
// bytes) string, the same convention spec §4.3's fixed-width little-endian
// fields use everywhere else, documented in DESIGN.md.
func (m *Module) Name(offset uint32) (string, error) {
	i := int(offset)
	if i < 0 || i+2 > len(m.Bytes) {
		return "", cerr.New(cerr.PhaseDecode, cerr.KindOffsetOutOfBounds).At(m.Start + i).
			Detail("name offset %d out of range", offset).Build()
	}
	n := int(m.Bytes[i]) | int(m.Bytes[i+1])<<8
	start := i + 2
	if start+n > len(m.Bytes) {
		return "", cerr.New(cerr.PhaseDecode, cerr.KindOffsetOutOfBounds).At(m.Start + i).
			Detail("name at offset %d (len %d) exceeds module bounds", offset, n).Build()
	}
	return string(m.Bytes[start : start+n]), nil
}
