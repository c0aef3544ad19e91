// Package quicklist implements an ordered collection stored as a doubly
// linked chain of packed nodes. Each node holds many elements in a single
// contiguous listpack, giving O(1) operations at both ends with far less
// per-element overhead than one-allocation-per-element lists. Nodes far
// from both ends can be kept compressed, trading CPU for memory.
//
// A Quicklist is single-threaded: it performs no internal locking, and
// concurrent use from multiple goroutines requires external serialization.
package quicklist

import (
	"github.com/miretskiy/quicklist/compression"
	"github.com/miretskiy/quicklist/listpack"
)

// Where selects an end of the list.
type Where int

const (
	Head Where = 0
	Tail Where = -1
)

// Quicklist is the chain. Create with New; the zero value is not usable.
type Quicklist struct {
	head, tail *Node
	count      uint64 // total elements across all nodes
	len        uint64 // number of nodes

	fill         int // per-node capacity rule, see WithFill
	compress     int // hot window depth, 0 = compression off
	codec        compression.Codec
	level        compression.Level
	verifyOnRead bool

	bookmarks []bookmark
}

// New creates an empty quicklist.
func New(opts ...Option) *Quicklist {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(&cfg)
	}
	depth := cfg.CompressDepth
	if depth < 0 {
		depth = 0
	}
	return &Quicklist{
		fill:         clampFill(cfg.Fill),
		compress:     depth,
		codec:        cfg.Codec,
		level:        cfg.Level,
		verifyOnRead: cfg.VerifyOnRead,
	}
}

// NewFromListpack creates a quicklist whose first node adopts lp wholesale.
// The listpack is consumed; the caller must not use it afterwards.
func NewFromListpack(lp *listpack.Listpack, opts ...Option) *Quicklist {
	ql := New(opts...)
	ql.AppendListpack(lp)
	return ql
}

// SetFill updates the per-node capacity rule. Existing nodes are not
// re-split; the rule governs future inserts only.
func (ql *Quicklist) SetFill(fill int) {
	ql.fill = clampFill(fill)
}

// SetCompressDepth updates the hot window depth and immediately restores the
// compression invariant across the whole chain.
func (ql *Quicklist) SetCompressDepth(depth int) {
	if depth < 0 {
		depth = 0
	}
	ql.compress = depth
	ql.normalizeCompression()
}

// SetOptions updates fill and compression depth together.
func (ql *Quicklist) SetOptions(fill, depth int) {
	ql.SetFill(fill)
	ql.SetCompressDepth(depth)
}

// normalizeCompression walks the whole chain enforcing the hot window:
// nodes within depth of either end raw, everything else compressed.
func (ql *Quicklist) normalizeCompression() {
	depth := uint64(ql.compress)
	idx := uint64(0)
	for n := ql.head; n != nil; n = n.next {
		cold := ql.allowsCompression() &&
			ql.len >= depth*2 && idx >= depth && idx < ql.len-depth
		if cold {
			ql.compressNode(n)
		} else {
			ql.decompressNode(n)
		}
		idx++
	}
}

// Count returns the total number of elements.
func (ql *Quicklist) Count() uint64 { return ql.count }

// NodeCount returns the number of nodes in the chain.
func (ql *Quicklist) NodeCount() uint64 { return ql.len }

// insertNode links nn into the chain next to old (after when after is true).
// old may be nil only when the chain is empty.
func (ql *Quicklist) insertNode(old, nn *Node, after bool) {
	if after {
		nn.prev = old
		if old != nil {
			nn.next = old.next
			if old.next != nil {
				old.next.prev = nn
			}
			old.next = nn
		}
		if ql.tail == old {
			ql.tail = nn
		}
	} else {
		nn.next = old
		if old != nil {
			nn.prev = old.prev
			if old.prev != nil {
				old.prev.next = nn
			}
			old.prev = nn
		}
		if ql.head == old {
			ql.head = nn
		}
	}
	if ql.len == 0 {
		ql.head, ql.tail = nn, nn
	}
	ql.len++
	// The new node shifted the hot window boundary past old.
	if old != nil {
		ql.compressOrPass(old)
	}
}

// delNode unlinks n, clears bookmarks referencing it, and re-evaluates the
// hot window. n's element count must be up to date.
func (ql *Quicklist) delNode(n *Node) {
	for i := range ql.bookmarks {
		if ql.bookmarks[i].node == n {
			ql.bookmarks[i].node = nil
		}
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n == ql.tail {
		ql.tail = n.prev
	}
	if n == ql.head {
		ql.head = n.next
	}
	ql.count -= uint64(n.count)
	ql.len--
	// Removing a node within the hot window pulls a compressed node into it.
	ql.compressPass(nil)
	n.prev, n.next = nil, nil
	n.lp, n.zdata = nil, nil
}

// delIndex removes element i (negative from the node's tail) from n,
// dropping n entirely if it becomes empty. Reports whether n was deleted.
func (ql *Quicklist) delIndex(n *Node, i int) bool {
	n.lp.DeleteAt(i)
	ql.count--
	if n.lp.Count() == 0 {
		n.count = 0
		ql.delNode(n)
		return true
	}
	n.updateSz()
	return false
}

// PushHead prepends value. Reports whether a new head node was allocated.
func (ql *Quicklist) PushHead(value []byte) bool {
	origHead := ql.head
	if ql.allowInsert(origHead, len(value)) {
		origHead.lp.Prepend(value)
		origHead.updateSz()
	} else {
		lp := listpack.New()
		lp.Append(value)
		ql.insertNode(ql.head, newNode(lp), false)
	}
	ql.count++
	return origHead != ql.head
}

// PushTail appends value. Reports whether a new tail node was allocated.
func (ql *Quicklist) PushTail(value []byte) bool {
	origTail := ql.tail
	if ql.allowInsert(origTail, len(value)) {
		origTail.lp.Append(value)
		origTail.updateSz()
	} else {
		lp := listpack.New()
		lp.Append(value)
		ql.insertNode(ql.tail, newNode(lp), true)
	}
	ql.count++
	return origTail != ql.tail
}

// Push adds value at the chosen end.
func (ql *Quicklist) Push(value []byte, where Where) {
	if where == Head {
		ql.PushHead(value)
	} else {
		ql.PushTail(value)
	}
}

// AppendListpack adopts lp wholesale as the new tail node. The listpack is
// consumed; the caller must not use it afterwards. An empty listpack is
// ignored: the chain never holds zero-element nodes.
func (ql *Quicklist) AppendListpack(lp *listpack.Listpack) {
	if lp.Count() == 0 {
		return
	}
	n := newNode(lp)
	ql.insertNode(ql.tail, n, true)
	ql.count += uint64(n.count)
}

// AppendValuesFromListpack pushes every element of lp onto the tail,
// element by element, re-packing them under the current fill policy.
func (ql *Quicklist) AppendValuesFromListpack(lp *listpack.Listpack) *Quicklist {
	for p := lp.First(); p >= 0; p = lp.Next(p) {
		ql.PushTail(lp.GetAt(p).Raw())
	}
	return ql
}

// PopCustom removes and returns the element at the chosen end. For byte
// elements the saver callback converts the transient payload view into a
// caller-owned value before the payload is mutated; for integer elements the
// decoded value is returned instead and data is nil.
func (ql *Quicklist) PopCustom(where Where, saver func(data []byte) []byte) (data []byte, val int64, ok bool) {
	if ql.count == 0 {
		return nil, 0, false
	}
	var n *Node
	pos := 0
	if where == Head {
		n = ql.head
	} else {
		n, pos = ql.tail, -1
	}
	v, ok := n.lp.Get(pos)
	if !ok {
		return nil, 0, false
	}
	if v.IsInt {
		val = v.Int
	} else if saver != nil {
		data = saver(v.Bytes)
	}
	ql.delIndex(n, pos)
	return data, val, true
}

// Pop removes and returns the element at the chosen end, copying byte
// payloads so the result owns its memory.
func (ql *Quicklist) Pop(where Where) (data []byte, val int64, ok bool) {
	return ql.PopCustom(where, func(data []byte) []byte {
		return append([]byte(nil), data...)
	})
}

// InsertBefore inserts value immediately before the located entry.
func (ql *Quicklist) InsertBefore(e *Entry, value []byte) {
	ql.insert(e, value, false)
}

// InsertAfter inserts value immediately after the located entry.
func (ql *Quicklist) InsertAfter(e *Entry, value []byte) {
	ql.insert(e, value, true)
}

func (ql *Quicklist) insert(e *Entry, value []byte, after bool) {
	node := e.node
	if node == nil {
		// No reference node: create the only node in the list.
		lp := listpack.New()
		lp.Append(value)
		ql.insertNode(nil, newNode(lp), after)
		ql.count++
		return
	}

	off := e.offset
	if off < 0 {
		off += int(node.count)
	}
	full := !ql.allowInsert(node, len(value))
	atTail := after && off == int(node.count)-1
	atHead := !after && off == 0
	fullNext := atTail && !ql.allowInsert(node.next, len(value))
	fullPrev := atHead && !ql.allowInsert(node.prev, len(value))

	switch {
	case !full && after:
		ql.decompressNodeForUse(node)
		node.lp.InsertAt(off+1, value)
		node.updateSz()
		ql.recompressOnly(node)

	case !full && !after:
		ql.decompressNodeForUse(node)
		node.lp.InsertAt(off, value)
		node.updateSz()
		ql.recompressOnly(node)

	case atTail && node.next != nil && !fullNext:
		// Full node, inserting after its last element: new element becomes
		// the head of the next node.
		nn := node.next
		ql.decompressNodeForUse(nn)
		nn.lp.Prepend(value)
		nn.updateSz()
		ql.recompressOnly(nn)

	case atHead && node.prev != nil && !fullPrev:
		// Symmetric: new element becomes the tail of the previous node.
		pn := node.prev
		ql.decompressNodeForUse(pn)
		pn.lp.Append(value)
		pn.updateSz()
		ql.recompressOnly(pn)

	case (atTail && node.next != nil && fullNext) ||
		(atHead && node.prev != nil && fullPrev):
		// Both this node and the neighbor are full: new standalone node.
		lp := listpack.New()
		lp.Append(value)
		ql.insertNode(node, newNode(lp), after)

	default:
		// Full node, interior position: split it and place the value at
		// the boundary, then try to re-merge undersized neighbors.
		ql.decompressNodeForUse(node)
		nn := ql.splitNode(node, off, after)
		if after {
			nn.lp.Prepend(value)
		} else {
			nn.lp.Append(value)
		}
		nn.updateSz()
		ql.insertNode(node, nn, after)
		ql.mergeNodes(node)
	}
	ql.count++
}

// splitNode splits n at offset. With after, n keeps [0..offset] and the
// returned node holds [offset+1..end]; otherwise n keeps [offset..end] and
// the returned node holds [0..offset-1]. Relative order is preserved.
func (ql *Quicklist) splitNode(n *Node, offset int, after bool) *Node {
	newLp := n.lp.Clone()
	if after {
		n.lp.DeleteRange(offset+1, -1)
		newLp.DeleteRange(0, offset+1)
	} else {
		n.lp.DeleteRange(0, offset)
		newLp.DeleteRange(offset, -1)
	}
	n.updateSz()
	return newNode(newLp)
}

// mergeNodes tries to fold center and its neighbors (up to two on each
// side) into fewer nodes wherever the fill policy allows the combined
// payload. Called after a split leaves potentially undersized nodes.
func (ql *Quicklist) mergeNodes(center *Node) {
	var prev, prevPrev, next, nextNext *Node
	if center.prev != nil {
		prev = center.prev
		prevPrev = center.prev.prev
	}
	if center.next != nil {
		next = center.next
		nextNext = center.next.next
	}
	if ql.allowMerge(prevPrev, prev) {
		ql.mergeListpacks(prevPrev, prev)
	}
	if ql.allowMerge(next, nextNext) {
		ql.mergeListpacks(next, nextNext)
	}
	target := center
	if ql.allowMerge(center.prev, center) {
		target = ql.mergeListpacks(center.prev, center)
	}
	if ql.allowMerge(target, target.next) {
		ql.mergeListpacks(target, target.next)
	}
}

// mergeListpacks folds b's payload onto the end of a (a precedes b in the
// chain), removes b, and returns a.
func (ql *Quicklist) mergeListpacks(a, b *Node) *Node {
	ql.decompressNode(a)
	ql.decompressNode(b)
	a.lp.Concat(b.lp)
	a.updateSz()
	b.count = 0 // element ownership moved to a
	ql.delNode(b)
	ql.compressOrPass(a)
	return a
}

// DelRange removes up to count elements starting at absolute position start
// (negative start counts from the tail, -1 = last element). Returns the
// number of elements removed; an out-of-range start removes nothing.
func (ql *Quicklist) DelRange(start, count int64) int {
	if count <= 0 {
		return 0
	}
	extent := uint64(count)
	if start >= 0 {
		if uint64(start) >= ql.count {
			return 0
		}
		if extent > ql.count-uint64(start) {
			extent = ql.count - uint64(start)
		}
	} else if extent > uint64(-start) {
		// A negative start is also the number of elements to the tail.
		extent = uint64(-start)
	}

	var e Entry
	if !ql.Index(start, &e) {
		return 0
	}
	node := e.node
	offset := e.offset
	removed := 0
	for extent > 0 && node != nil {
		next := node.next
		var del uint64
		wholeNode := false
		switch {
		case offset == 0 && extent >= uint64(node.count):
			wholeNode = true
			del = uint64(node.count)
		case offset >= 0 && extent+uint64(offset) >= uint64(node.count):
			// Deletion runs past the end of this node.
			del = uint64(node.count) - uint64(offset)
		case offset < 0:
			// First iteration with a tail-relative offset: -offset is the
			// element count through the node's tail.
			del = uint64(-offset)
			if del > extent {
				del = extent
			}
		default:
			del = extent
		}
		if wholeNode {
			ql.delNode(node)
		} else {
			ql.decompressNodeForUse(node)
			node.lp.DeleteRange(offset, int(del))
			node.updateSz()
			ql.count -= del
			if node.count == 0 {
				ql.delNode(node)
			} else {
				ql.recompressOnly(node)
			}
		}
		removed += int(del)
		extent -= del
		node = next
		offset = 0
	}
	return removed
}

// ReplaceAtIndex replaces the element at index with value, as a delete plus
// insert at the same position inside the node (the new value's encoded size
// may differ from the old one's). Reports whether index was in range.
func (ql *Quicklist) ReplaceAtIndex(index int64, value []byte) bool {
	var e Entry
	if !ql.Index(index, &e) {
		return false
	}
	off := e.offset
	if off < 0 {
		off += int(e.node.count)
	}
	e.node.lp.DeleteAt(off)
	e.node.lp.InsertAt(off, value)
	e.node.updateSz()
	ql.compressOrPass(e.node)
	return true
}

// Rotate moves the tail element to the head.
func (ql *Quicklist) Rotate() {
	if ql.count <= 1 {
		return
	}
	v, _ := ql.tail.lp.Get(-1)
	// Copy before pushing: with a single node the push mutates the same
	// payload the view borrows from.
	value := append([]byte(nil), v.Raw()...)
	ql.PushHead(value)
	ql.delIndex(ql.tail, -1)
}

// Index locates the element at idx (negative from the tail, -1 = last) and
// fills e with a borrowed view of it. Walks node-by-node from the nearer
// end. Returns false, with no side effects, when idx is out of range.
func (ql *Quicklist) Index(idx int64, e *Entry) bool {
	*e = Entry{}
	forward := idx >= 0
	var index uint64
	var n *Node
	if forward {
		index = uint64(idx)
		n = ql.head
	} else {
		index = uint64(-idx) - 1
		n = ql.tail
	}
	if index >= ql.count {
		return false
	}
	var accum uint64
	for n != nil {
		if accum+uint64(n.count) > index {
			break
		}
		accum += uint64(n.count)
		if forward {
			n = n.next
		} else {
			n = n.prev
		}
	}
	if n == nil {
		return false
	}
	e.node = n
	if forward {
		e.offset = int(index - accum)
	} else {
		e.offset = -int(index-accum) - 1
	}
	ql.decompressNodeForUse(n)
	e.pi = n.lp.Seek(e.offset)
	e.val = n.lp.GetAt(e.pi)
	return true
}

// Dup returns an independent deep copy with the same configuration and
// element sequence. Compressed nodes are copied compressed. The copy starts
// with no bookmarks.
func (ql *Quicklist) Dup() *Quicklist {
	cp := &Quicklist{
		fill:         ql.fill,
		compress:     ql.compress,
		codec:        ql.codec,
		level:        ql.level,
		verifyOnRead: ql.verifyOnRead,
	}
	for cur := ql.head; cur != nil; cur = cur.next {
		n := &Node{
			container:         containerPacked,
			encoding:          cur.encoding,
			sz:                cur.sz,
			count:             cur.count,
			checksum:          cur.checksum,
			attemptedCompress: cur.attemptedCompress,
		}
		if cur.compressedNode() {
			n.zdata = append([]byte(nil), cur.zdata...)
		} else {
			n.lp = cur.lp.Clone()
		}
		n.prev = cp.tail
		if cp.tail != nil {
			cp.tail.next = n
		} else {
			cp.head = n
		}
		cp.tail = n
		cp.len++
		cp.count += uint64(cur.count)
	}
	return cp
}
