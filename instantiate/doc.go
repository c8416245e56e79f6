// Package instantiate implements the module instantiator (C6): spec §4.6.
// It allocates linear memory and the globals area, applies data segments,
// drives compilation of each function through the verifier (C4) and an
// embedder-supplied code generator, resolves external functions through a
// host import map, and runs the linker (C5) to a fixed point before
// exposing exports to the embedder.
package instantiate
