// Package verify implements the single-pass, type-directed function body
// verifier and IR graph builder (C4): spec §4.4. It is a recursive-descent
// walk over the bytecode grammar of §4.4, returning (value type, ir.Node)
// pairs for expressions and ir.Node for statements, with a single latched
// *cerr.Error short-circuiting the remainder of the walk once set (spec §9
// "implementations using a result-type discipline can replace exception-like
// early exits with a latched error carried through the walk").
package verify
