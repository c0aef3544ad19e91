package quicklist

// Size classes for non-positive fill values: fill -1 maps to the first
// class, -5 (and below) to the last.
var sizeClass = [...]int{4096, 8192, 16384, 32768, 65536}

const (
	// sizeSafetyLimit caps every node's payload regardless of a positive
	// fill, so one node cannot grow without bound on element count alone.
	// A single element larger than this still gets stored, alone in its
	// own node.
	sizeSafetyLimit = 8192

	fillMin = -5
	fillMax = 32767 // node entry count is uint16
)

func clampFill(fill int) int {
	if fill < fillMin {
		return fillMin
	}
	if fill > fillMax {
		return fillMax
	}
	return fill
}

func sizeClassBudget(fill int) int {
	idx := -fill
	if idx < 1 {
		idx = 1 // fill == 0 behaves as -1
	}
	if idx > len(sizeClass) {
		idx = len(sizeClass)
	}
	return sizeClass[idx-1]
}

// sizeMeetsClass reports whether a payload of sz bytes fits the byte budget
// selected by a non-positive fill. Always false for positive fill, which
// counts elements instead.
func sizeMeetsClass(sz, fill int) bool {
	if fill > 0 {
		return false
	}
	return sz <= sizeClassBudget(fill)
}

func safeToAdd(sz int) bool {
	return sz <= sizeSafetyLimit
}

// entryOverhead is a conservative estimate of the listpack framing added
// around a value of sz bytes: encoding header plus backlen.
func entryOverhead(sz int) int {
	var hdr int
	switch {
	case sz < 64:
		hdr = 1
	case sz < 4096:
		hdr = 2
	default:
		hdr = 5
	}
	bl := 1
	if sz+hdr >= 128 {
		bl = 2
	}
	if sz+hdr >= 16384 {
		bl = 5
	}
	return hdr + bl
}

// allowInsert reports whether node n may take one more element of sz bytes
// under the configured fill policy.
func (ql *Quicklist) allowInsert(n *Node, sz int) bool {
	if n == nil {
		return false
	}
	newSz := int(n.sz) + sz + entryOverhead(sz)
	if sizeMeetsClass(newSz, ql.fill) {
		return true
	}
	if !safeToAdd(newSz) {
		return false
	}
	if int(n.count) < ql.fill {
		return true
	}
	return false
}

// allowMerge reports whether nodes a and b may be combined into one node
// without breaking the fill policy.
func (ql *Quicklist) allowMerge(a, b *Node) bool {
	if a == nil || b == nil {
		return false
	}
	// Approximate merged size; one header and terminator collapse.
	mergeSz := int(a.sz) + int(b.sz)
	if sizeMeetsClass(mergeSz, ql.fill) {
		return true
	}
	if !safeToAdd(mergeSz) {
		return false
	}
	if int(a.count)+int(b.count) <= ql.fill {
		return true
	}
	return false
}
