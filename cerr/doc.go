// Package cerr defines the structured error surface used by every package in
// this module: a Phase, a Kind drawn from a closed taxonomy, the offending PC
// (and optional secondary point pt), and an advisory message. See spec §4.4
// and §6.
package cerr
