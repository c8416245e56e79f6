// Package link implements the placeholder-and-patch linker (C5): spec §4.5.
// It lets functions be compiled in any order while direct call sites target
// unresolved callees, by allocating a placeholder Code object the first time
// a not-yet-compiled function is referenced and rewriting every relocation
// that still points at a placeholder once all bodies are compiled.
//
// Spec §9 flags the source's trick of stashing a placeholder marker in an
// otherwise-unused code-object field as something a re-architected
// implementation should avoid; this package instead gives Code an explicit
// Placeholder/PlaceholderFor pair, matching the design note's suggested
// "{placeholder_id -> slot} sidecar table".
package link
