// Package listpack implements the compact, contiguous entry sequence used as
// the per-node payload of a quicklist. A listpack is a single byte buffer:
//
//	Total(4, LE) + NumElements(2, LE) + entries... + 0xFF
//
// Each entry is [encoding header][payload][backlen], where backlen is a
// reversed varint holding the byte length of header+payload so entries can be
// walked tail to head. Elements are stored either as raw bytes or, when the
// value is the canonical decimal form of an int64, as a packed integer.
package listpack

import (
	"bytes"
	"encoding/binary"
	"strconv"
)

const (
	headerSize     = 6
	terminatorByte = 0xFF

	// Encoding headers. The first four are range-tagged, the 0xF* ones are
	// exact tags followed by fixed-width payloads.
	enc7BitUintMask = 0x80 // 0xxxxxxx: uint 0..127
	enc6BitStr      = 0x80 // 10xxxxxx: string, len 0..63
	enc13BitInt     = 0xC0 // 110xxxxx yyyyyyyy: signed 13-bit int
	enc12BitStr     = 0xE0 // 1110xxxx yyyyyyyy: string, len 0..4095
	enc16BitInt     = 0xF1
	enc24BitInt     = 0xF2
	enc32BitInt     = 0xF3
	enc64BitInt     = 0xF4
	enc32BitStr     = 0xF0 // 4-byte LE length follows
)

// Value is the decoded view of one element. Exactly one of Bytes/Int is
// meaningful, selected by IsInt. Bytes aliases the listpack buffer and is
// invalidated by any mutation of it.
type Value struct {
	Bytes []byte
	Int   int64
	IsInt bool
}

// Equal reports whether the element equals b, numerically when the element
// is stored as an integer and b parses as one, bytewise otherwise.
func (v Value) Equal(b []byte) bool {
	if v.IsInt {
		if iv, ok := parseInt(b); ok {
			return iv == v.Int
		}
		// Fall back to comparing canonical decimal form.
		return bytes.Equal(strconv.AppendInt(nil, v.Int, 10), b)
	}
	return bytes.Equal(v.Bytes, b)
}

// Raw returns the element as bytes, rendering integers in decimal. The
// result aliases the listpack buffer for byte elements.
func (v Value) Raw() []byte {
	if v.IsInt {
		return strconv.AppendInt(nil, v.Int, 10)
	}
	return v.Bytes
}

// Listpack is a mutable packed sequence. The zero value is not usable; use
// New or FromBytes.
type Listpack struct {
	data []byte
}

// New returns an empty listpack.
func New() *Listpack {
	data := make([]byte, headerSize+1)
	binary.LittleEndian.PutUint32(data, uint32(len(data)))
	data[headerSize] = terminatorByte
	return &Listpack{data: data}
}

// FromBytes adopts b as a listpack. b must be a well-formed listpack buffer;
// the listpack takes ownership of it.
func FromBytes(b []byte) *Listpack {
	return &Listpack{data: b}
}

// Bytes returns the backing buffer. It aliases the listpack and is
// invalidated by mutation.
func (lp *Listpack) Bytes() []byte { return lp.data }

// Size returns the total byte size of the listpack, header included.
func (lp *Listpack) Size() int { return len(lp.data) }

// Count returns the number of stored elements.
func (lp *Listpack) Count() int {
	return int(binary.LittleEndian.Uint16(lp.data[4:6]))
}

// Clone returns an independent deep copy.
func (lp *Listpack) Clone() *Listpack {
	data := make([]byte, len(lp.data))
	copy(data, lp.data)
	return &Listpack{data: data}
}

func (lp *Listpack) setCount(n int) {
	binary.LittleEndian.PutUint16(lp.data[4:6], uint16(n))
}

func (lp *Listpack) setTotal() {
	binary.LittleEndian.PutUint32(lp.data[0:4], uint32(len(lp.data)))
}

// parseInt mirrors the strict decimal form used for packing: optional '-',
// no leading zeros, no '+', must fit int64.
func parseInt(b []byte) (int64, bool) {
	if len(b) == 0 || len(b) > 20 {
		return 0, false
	}
	s := b
	if s[0] == '-' {
		s = s[1:]
		// "-0" (and "-01") has no canonical integer form.
		if len(s) == 0 || s[0] == '0' {
			return 0, false
		}
	}
	if len(s) > 1 && s[0] == '0' {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// encodeEntry appends the full wire form of v (header+payload+backlen) to dst.
func encodeEntry(dst []byte, v []byte) []byte {
	start := len(dst)
	if iv, ok := parseInt(v); ok {
		dst = appendInt(dst, iv)
	} else {
		dst = appendStr(dst, v)
	}
	return appendBacklen(dst, len(dst)-start)
}

func appendInt(dst []byte, v int64) []byte {
	switch {
	case v >= 0 && v <= 127:
		return append(dst, byte(v))
	case v >= -4096 && v <= 4095:
		u := uint16(v) & 0x1FFF
		return append(dst, enc13BitInt|byte(u>>8), byte(u))
	case v >= -32768 && v <= 32767:
		return append(dst, enc16BitInt, byte(v), byte(v>>8))
	case v >= -8388608 && v <= 8388607:
		return append(dst, enc24BitInt, byte(v), byte(v>>8), byte(v>>16))
	case v >= -2147483648 && v <= 2147483647:
		return append(dst, enc32BitInt, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	default:
		dst = append(dst, enc64BitInt)
		return binary.LittleEndian.AppendUint64(dst, uint64(v))
	}
}

func appendStr(dst []byte, v []byte) []byte {
	switch {
	case len(v) < 64:
		dst = append(dst, enc6BitStr|byte(len(v)))
	case len(v) < 4096:
		dst = append(dst, enc12BitStr|byte(len(v)>>8), byte(len(v)))
	default:
		dst = append(dst, enc32BitStr)
		dst = binary.LittleEndian.AppendUint32(dst, uint32(len(v)))
	}
	return append(dst, v...)
}

// appendBacklen appends the reversed varint for an entry of l bytes. The
// byte nearest the end carries the low 7 bits; continuation flags point
// backwards so the value can be decoded right to left.
func appendBacklen(dst []byte, l int) []byte {
	switch {
	case l < 1<<7:
		return append(dst, byte(l))
	case l < 1<<14:
		return append(dst, byte(l>>7), byte(l&0x7F)|0x80)
	case l < 1<<21:
		return append(dst, byte(l>>14), byte((l>>7)&0x7F)|0x80, byte(l&0x7F)|0x80)
	case l < 1<<28:
		return append(dst, byte(l>>21), byte((l>>14)&0x7F)|0x80,
			byte((l>>7)&0x7F)|0x80, byte(l&0x7F)|0x80)
	default:
		return append(dst, byte(l>>28), byte((l>>21)&0x7F)|0x80,
			byte((l>>14)&0x7F)|0x80, byte((l>>7)&0x7F)|0x80, byte(l&0x7F)|0x80)
	}
}

func backlenSize(l int) int {
	switch {
	case l < 1<<7:
		return 1
	case l < 1<<14:
		return 2
	case l < 1<<21:
		return 3
	case l < 1<<28:
		return 4
	default:
		return 5
	}
}

// decodeBacklen reads the reversed varint whose last byte is at end-1.
func decodeBacklen(data []byte, end int) int {
	val, shift := 0, 0
	for p := end - 1; p >= 0; p-- {
		val |= int(data[p]&0x7F) << shift
		if data[p]&0x80 == 0 {
			break
		}
		shift += 7
	}
	return val
}

// entryLen returns the header+payload byte length of the entry at p,
// excluding its backlen.
func (lp *Listpack) entryLen(p int) int {
	b := lp.data[p]
	switch {
	case b < enc7BitUintMask:
		return 1
	case b&0xC0 == enc6BitStr:
		return 1 + int(b&0x3F)
	case b&0xE0 == enc13BitInt:
		return 2
	case b&0xF0 == enc12BitStr:
		return 2 + int(b&0x0F)<<8 + int(lp.data[p+1])
	case b == enc16BitInt:
		return 3
	case b == enc24BitInt:
		return 4
	case b == enc32BitInt:
		return 5
	case b == enc64BitInt:
		return 9
	case b == enc32BitStr:
		return 5 + int(binary.LittleEndian.Uint32(lp.data[p+1:p+5]))
	default:
		return 0 // terminator
	}
}

// GetAt decodes the element whose entry starts at byte position p.
func (lp *Listpack) GetAt(p int) Value {
	b := lp.data[p]
	switch {
	case b < enc7BitUintMask:
		return Value{Int: int64(b), IsInt: true}
	case b&0xC0 == enc6BitStr:
		l := int(b & 0x3F)
		return Value{Bytes: lp.data[p+1 : p+1+l]}
	case b&0xE0 == enc13BitInt:
		u := int64(b&0x1F)<<8 | int64(lp.data[p+1])
		if u >= 1<<12 {
			u -= 1 << 13 // sign extend
		}
		return Value{Int: u, IsInt: true}
	case b&0xF0 == enc12BitStr:
		l := int(b&0x0F)<<8 + int(lp.data[p+1])
		return Value{Bytes: lp.data[p+2 : p+2+l]}
	case b == enc16BitInt:
		return Value{Int: int64(int16(binary.LittleEndian.Uint16(lp.data[p+1 : p+3]))), IsInt: true}
	case b == enc24BitInt:
		u := int64(lp.data[p+1]) | int64(lp.data[p+2])<<8 | int64(lp.data[p+3])<<16
		if u >= 1<<23 {
			u -= 1 << 24
		}
		return Value{Int: u, IsInt: true}
	case b == enc32BitInt:
		return Value{Int: int64(int32(binary.LittleEndian.Uint32(lp.data[p+1 : p+5]))), IsInt: true}
	case b == enc64BitInt:
		return Value{Int: int64(binary.LittleEndian.Uint64(lp.data[p+1 : p+9])), IsInt: true}
	default: // enc32BitStr
		l := int(binary.LittleEndian.Uint32(lp.data[p+1 : p+5]))
		return Value{Bytes: lp.data[p+5 : p+5+l]}
	}
}

// First returns the byte position of the first entry, or -1 if empty.
func (lp *Listpack) First() int {
	if lp.data[headerSize] == terminatorByte {
		return -1
	}
	return headerSize
}

// Last returns the byte position of the last entry, or -1 if empty.
func (lp *Listpack) Last() int {
	return lp.Prev(len(lp.data) - 1)
}

// Next returns the byte position of the entry after p, or -1 at the end.
func (lp *Listpack) Next(p int) int {
	l := lp.entryLen(p)
	q := p + l + backlenSize(l)
	if lp.data[q] == terminatorByte {
		return -1
	}
	return q
}

// Prev returns the byte position of the entry before p, or -1 at the head.
// p may be the terminator position to locate the last entry.
func (lp *Listpack) Prev(p int) int {
	if p <= headerSize {
		return -1
	}
	l := decodeBacklen(lp.data, p)
	return p - backlenSize(l) - l
}

// Seek returns the byte position of element i; negative i counts from the
// tail (-1 = last). Returns -1 when out of range. Walks from the nearer end.
func (lp *Listpack) Seek(i int) int {
	n := lp.Count()
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return -1
	}
	if i <= n/2 {
		p := lp.First()
		for ; i > 0; i-- {
			p = lp.Next(p)
		}
		return p
	}
	p := lp.Last()
	for ; i < n-1; i++ {
		p = lp.Prev(p)
	}
	return p
}

// Get decodes element i (negative from tail).
func (lp *Listpack) Get(i int) (Value, bool) {
	p := lp.Seek(i)
	if p < 0 {
		return Value{}, false
	}
	return lp.GetAt(p), true
}

// splice replaces data[from:to] with ins.
func (lp *Listpack) splice(from, to int, ins []byte) {
	out := make([]byte, 0, len(lp.data)-(to-from)+len(ins))
	out = append(out, lp.data[:from]...)
	out = append(out, ins...)
	out = append(out, lp.data[to:]...)
	lp.data = out
	lp.setTotal()
}

// Append adds v as the last element.
func (lp *Listpack) Append(v []byte) {
	lp.splice(len(lp.data)-1, len(lp.data)-1, encodeEntry(nil, v))
	lp.setCount(lp.Count() + 1)
}

// Prepend adds v as the first element.
func (lp *Listpack) Prepend(v []byte) {
	lp.splice(headerSize, headerSize, encodeEntry(nil, v))
	lp.setCount(lp.Count() + 1)
}

// InsertAt inserts v so that it becomes element i; i may equal Count to
// append. Panics if i is outside [0, Count].
func (lp *Listpack) InsertAt(i int, v []byte) {
	n := lp.Count()
	if i == n {
		lp.Append(v)
		return
	}
	p := lp.Seek(i)
	if p < 0 {
		panic("listpack: insert position out of range")
	}
	lp.splice(p, p, encodeEntry(nil, v))
	lp.setCount(n + 1)
}

// DeleteAt removes element i (negative from tail). No-op if out of range.
func (lp *Listpack) DeleteAt(i int) {
	lp.DeleteRange(i, 1)
}

// DeleteRange removes up to count elements starting at element start
// (negative from tail), returning the number removed. A negative count
// deletes through the tail.
func (lp *Listpack) DeleteRange(start, count int) int {
	n := lp.Count()
	if start < 0 {
		start += n
	}
	if start < 0 || start >= n {
		return 0
	}
	if count < 0 {
		count = n - start
	}
	if count == 0 {
		return 0
	}
	if count > n-start {
		count = n - start
	}
	from := lp.Seek(start)
	to := from
	for i := 0; i < count; i++ {
		l := lp.entryLen(to)
		to += l + backlenSize(l)
	}
	lp.splice(from, to, nil)
	lp.setCount(n - count)
	return count
}

// Concat appends every element of other, leaving other untouched.
func (lp *Listpack) Concat(other *Listpack) {
	ins := other.data[headerSize : len(other.data)-1]
	lp.splice(len(lp.data)-1, len(lp.data)-1, ins)
	lp.setCount(lp.Count() + other.Count())
}

// Compare reports whether element i equals b. Out-of-range i reports false.
func (lp *Listpack) Compare(i int, b []byte) bool {
	v, ok := lp.Get(i)
	return ok && v.Equal(b)
}
