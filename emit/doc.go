// Package emit implements the bytecode emitter (C7): spec §4.7. It walks a
// typed AST of a restricted typed dynamic-language dialect (an "asm"-style
// subset: typed locals, no dynamic dispatch, no objects) and emits the exact
// binary bytecode the verifier (package verify) and module decoder (package
// module) consume, so the full loop of spec §2 — emit, decode, verify,
// link, instantiate — is reproducible within this repository without a real
// front-end parser.
//
// Control-stack handling (block_depth, a stack of breakable blocks each
// flagged loop-or-not) is grounded in the same shape the verifier's own
// label stack uses (package verify's frames type), per spec §9 "encode once
// and share between verifier and emitter" — ast.go and encoder.go mirror
// verify/frames.go's frame-stack discipline from the opposite direction.
package emit
