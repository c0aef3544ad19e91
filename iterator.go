package quicklist

import (
	"github.com/miretskiy/quicklist/listpack"
)

// Direction of iterator traversal.
type Direction int

const (
	FromHead Direction = iota
	FromTail
)

// Entry is a materialized view of one element. Byte values alias the owning
// node's payload and are invalidated by any mutation of the list.
type Entry struct {
	node   *Node
	val    listpack.Value
	offset int // element offset within node, negative = from node tail
	pi     int // byte position within the node payload
}

// Value returns the byte view, or nil when the element is stored as an
// integer (see Int).
func (e *Entry) Value() []byte {
	if e.val.IsInt {
		return nil
	}
	return e.val.Bytes
}

// Int returns the decoded integer and whether the element is stored as one.
func (e *Entry) Int() (int64, bool) {
	return e.val.Int, e.val.IsInt
}

// Raw returns the element as bytes, rendering stored integers in decimal.
func (e *Entry) Raw() []byte {
	return e.val.Raw()
}

// Equal reports whether the element equals b, without materializing a copy:
// numerically when the element is stored as an integer and b parses as one,
// bytewise otherwise.
func (e *Entry) Equal(b []byte) bool {
	return e.val.Equal(b)
}

// Node returns the opaque node holding this element, usable as a bookmark
// target. Valid only until the list is mutated.
func (e *Entry) Node() *Node {
	return e.node
}

// Iterator is a single-pass cursor over the list in one direction. While an
// iterator is live, the only permitted mutation of the list is DelEntry on
// the iterator's current element; anything else invalidates it. Cold nodes
// are transiently decompressed while the cursor is inside them and
// recompressed as it moves on; call Close when abandoning an iterator early
// so the node it parked on is restored too.
type Iterator struct {
	ql        *Quicklist
	current   *Node
	pi        int // byte position in current payload, -1 = not fetched yet
	offset    int // element offset in current node, negative = from node tail
	direction Direction
}

// Iterator returns a cursor positioned before the first element in the
// given direction.
func (ql *Quicklist) Iterator(direction Direction) *Iterator {
	it := &Iterator{}
	if direction == FromHead {
		ql.Rewind(it)
	} else {
		ql.RewindTail(it)
	}
	return it
}

// IteratorAtIdx returns a cursor whose first Next yields the element at idx
// (negative from the tail), traversing in the given direction afterwards.
// Returns nil when idx is out of range.
func (ql *Quicklist) IteratorAtIdx(direction Direction, idx int64) *Iterator {
	var e Entry
	if !ql.Index(idx, &e) {
		return nil
	}
	return &Iterator{
		ql:        ql,
		current:   e.node,
		pi:        -1,
		offset:    e.offset,
		direction: direction,
	}
}

// Rewind reinitializes it in place for a fresh head-to-tail traversal.
func (ql *Quicklist) Rewind(it *Iterator) {
	*it = Iterator{ql: ql, current: ql.head, pi: -1, offset: 0, direction: FromHead}
}

// RewindTail reinitializes it in place for a fresh tail-to-head traversal.
func (ql *Quicklist) RewindTail(it *Iterator) {
	*it = Iterator{ql: ql, current: ql.tail, pi: -1, offset: -1, direction: FromTail}
}

// Next advances to the next element, filling e with a view of it. Returns
// false when the traversal is exhausted. Moving past a cold node restores
// its compressed form.
func (it *Iterator) Next(e *Entry) bool {
	*e = Entry{}
	for it.current != nil {
		if it.pi < 0 {
			// Fresh node (or a re-seek after DelEntry): fetch at the
			// current offset without advancing.
			it.ql.decompressNodeForUse(it.current)
			it.pi = it.current.lp.Seek(it.offset)
		} else if it.direction == FromHead {
			it.pi = it.current.lp.Next(it.pi)
			it.offset++
		} else {
			it.pi = it.current.lp.Prev(it.pi)
			it.offset--
		}
		if it.pi >= 0 {
			e.node = it.current
			e.offset = it.offset
			e.pi = it.pi
			e.val = it.current.lp.GetAt(it.pi)
			return true
		}
		// Ran out of payload: restore this node, move to the adjacent one.
		it.ql.compressOrPass(it.current)
		if it.direction == FromHead {
			it.current = it.current.next
			it.offset = 0
		} else {
			it.current = it.current.prev
			it.offset = -1
		}
		it.pi = -1
	}
	return false
}

// Close releases the iterator, recompressing the node the cursor was
// parked on if it belongs outside the hot window. The iterator must not be
// used afterwards (Rewind/RewindTail revive it).
func (it *Iterator) Close() {
	if it.current != nil {
		it.ql.compressOrPass(it.current)
	}
	it.current = nil
	it.pi = -1
}

// DelEntry removes the element the iterator currently points at, leaving
// the iterator positioned so the following Next yields the element after
// the removed one (in the iterator's direction). This is the only mutation
// permitted while an iterator is live.
func (ql *Quicklist) DelEntry(it *Iterator, e *Entry) {
	prev := e.node.prev
	next := e.node.next
	deleted := ql.delIndex(e.node, e.offset)
	// The byte position is stale either way; force a re-seek at the same
	// offset, which now addresses the element after the removed one.
	it.pi = -1
	if deleted {
		if it.direction == FromHead {
			it.current = next
			it.offset = 0
		} else {
			it.current = prev
			it.offset = -1
		}
	}
}
