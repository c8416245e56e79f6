// Package binary implements the bounded, endian-aware byte reader shared by
// the module decoder (C3) and function verifier (C4): spec §4.2.
//
// Reader never reads out of range. The first error latches; every read
// after that returns the zero value without touching cur, so callers don't
// need to check an error after every single read — only before committing a
// structural decision (spec §9).
package binary

import "math"

// ErrorCode is the latched error code (spec §4.2, §4.4's UnexpectedEndOfBytes
// plus OffsetOutOfBounds for offset_u32).
type ErrorCode byte

const (
	ErrNone ErrorCode = iota
	ErrTruncated
	ErrOffsetOutOfBounds
)

// Reader reads little-endian fixed-width values from a fixed byte range,
// tracking position relative to a module/function origin and latching the
// first error encountered.
type Reader struct {
	data  []byte
	start int // absolute offset of data[0] in the original module, for PC reporting
	cur   int // absolute position, start <= cur <= end
	end   int

	code    ErrorCode
	errorPC int
	errorPT int // meaningful only when hasErrorPT is set
	hasErrorPT bool
}

// New creates a Reader over data, where data[0] is at absolute position
// origin (used only so Position()/PC reporting matches the module's own
// byte offsets; pass 0 if data already starts at its own origin).
func New(data []byte, origin int) *Reader {
	return &Reader{
		data:  data,
		start: origin,
		cur:   origin,
		end:   origin + len(data),
	}
}

// Position returns the current absolute byte position.
func (r *Reader) Position() int {
	return r.cur
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return r.end - r.cur
}

// AtEnd reports whether the reader has consumed every byte in range.
func (r *Reader) AtEnd() bool {
	return r.cur >= r.end
}

// Failed reports whether an error has latched.
func (r *Reader) Failed() bool {
	return r.code != ErrNone
}

// Error returns the latched error code, the PC at which it was detected, and
// whether a secondary point of interest is set.
func (r *Reader) Error() (code ErrorCode, pc int, pt int, hasPT bool) {
	return r.code, r.errorPC, r.errorPT, r.hasErrorPT
}

func (r *Reader) latch(code ErrorCode) {
	if r.code != ErrNone {
		return
	}
	r.code = code
	r.errorPC = r.cur
}

// LatchAt latches a caller-supplied error code (used by C3/C4 for errors
// that are not simple truncation, e.g. an out-of-range index) without
// disturbing an already-latched error.
func (r *Reader) LatchAt(code ErrorCode, pc int) {
	if r.code != ErrNone {
		return
	}
	r.code = code
	r.errorPC = pc
}

// SetPoint records a secondary point of interest alongside whatever error is
// latched (or about to be latched) — e.g. TypeMismatch's pt per spec §4.4.
func (r *Reader) SetPoint(pt int) {
	r.errorPT = pt
	r.hasErrorPT = true
}

func (r *Reader) index() int {
	return r.cur - r.start
}

// U8 reads one byte.
func (r *Reader) U8() uint8 {
	if r.Failed() {
		return 0
	}
	if r.Remaining() < 1 {
		r.latch(ErrTruncated)
		return 0
	}
	b := r.data[r.index()]
	r.cur++
	return b
}

// U16 reads a little-endian uint16.
func (r *Reader) U16() uint16 {
	if r.Failed() {
		return 0
	}
	if r.Remaining() < 2 {
		r.latch(ErrTruncated)
		return 0
	}
	i := r.index()
	v := uint16(r.data[i]) | uint16(r.data[i+1])<<8
	r.cur += 2
	return v
}

// U32 reads a little-endian uint32.
func (r *Reader) U32() uint32 {
	if r.Failed() {
		return 0
	}
	if r.Remaining() < 4 {
		r.latch(ErrTruncated)
		return 0
	}
	i := r.index()
	v := uint32(r.data[i]) | uint32(r.data[i+1])<<8 | uint32(r.data[i+2])<<16 | uint32(r.data[i+3])<<24
	r.cur += 4
	return v
}

// I8 reads one byte as a signed 8-bit value.
func (r *Reader) I8() int8 {
	return int8(r.U8())
}

// I32 reads a little-endian int32.
func (r *Reader) I32() int32 {
	return int32(r.U32())
}

// I64 reads a little-endian int64 as two little-endian u32 halves.
func (r *Reader) I64() int64 {
	lo := r.U32()
	hi := r.U32()
	return int64(uint64(hi)<<32 | uint64(lo))
}

// F32 reads a little-endian IEEE-754 single.
func (r *Reader) F32() float32 {
	return math.Float32frombits(r.U32())
}

// F64 reads a little-endian IEEE-754 double.
func (r *Reader) F64() float64 {
	lo := r.U32()
	hi := r.U32()
	return math.Float64frombits(uint64(hi)<<32 | uint64(lo))
}

// Bytes reads n raw bytes without interpretation.
func (r *Reader) Bytes(n int) []byte {
	if r.Failed() {
		return nil
	}
	if n < 0 || r.Remaining() < n {
		r.latch(ErrTruncated)
		return nil
	}
	i := r.index()
	b := r.data[i : i+n]
	r.cur += n
	return b
}

// OffsetU32 reads a u32 and fails with ErrOffsetOutOfBounds if the value
// exceeds the number of bytes remaining in the module from its own start
// (spec §4.2 "offset_u32... fails if it does not satisfy value <= end -
// start"). moduleSpan is end-start of the whole module, not this reader's
// window.
func (r *Reader) OffsetU32(moduleSpan int) uint32 {
	pc := r.cur
	v := r.U32()
	if r.Failed() {
		return 0
	}
	if int64(v) > int64(moduleSpan) {
		r.LatchAt(ErrOffsetOutOfBounds, pc)
		return 0
	}
	return v
}

// Seek repositions the reader within its window (used by the decoder after
// reading a forward-declared table of offsets).
func (r *Reader) Seek(absolutePos int) {
	if absolutePos < r.start || absolutePos > r.end {
		r.latch(ErrOffsetOutOfBounds)
		return
	}
	r.cur = absolutePos
}

// Window returns a new Reader over [absStart, absEnd) of the same backing
// module bytes, used by C3 to hand C4 a bounded range for one function
// body. originBytes is the full module byte slice.
func Window(originBytes []byte, absStart, absEnd int) *Reader {
	if absStart < 0 || absEnd < absStart || absEnd > len(originBytes) {
		r := &Reader{start: absStart, cur: absStart, end: absStart}
		r.latch(ErrOffsetOutOfBounds)
		return r
	}
	return New(originBytes[absStart:absEnd], absStart)
}
