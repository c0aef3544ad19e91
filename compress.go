package quicklist

// The compression manager keeps the "hot window" invariant: with depth d,
// the d nodes nearest the head and the d nodes nearest the tail stay raw,
// and everything in between is compressed when the codec can shrink it.
// Mutations that move the window boundary call compressPass with the node
// they touched; transient reads go through decompressNodeForUse /
// recompressOnly instead.

func (ql *Quicklist) allowsCompression() bool {
	return ql.compress != 0
}

// compressPass re-establishes the hot window after a structural change.
// It decompresses every node within depth of either end, and compresses the
// first node beyond depth on each side plus the given node if it sits
// outside the window. node may be nil (e.g. after a node removal).
func (ql *Quicklist) compressPass(node *Node) {
	if !ql.allowsCompression() {
		return
	}
	if ql.len < uint64(ql.compress)*2 {
		// Too short to have a cold middle; keep every node raw, including
		// nodes compressed before the chain shrank.
		for n := ql.head; n != nil; n = n.next {
			ql.decompressNode(n)
		}
		return
	}

	forward := ql.head
	reverse := ql.tail
	inDepth := false
	for depth := 0; depth < ql.compress; depth++ {
		ql.decompressNode(forward)
		ql.decompressNode(reverse)
		if forward == node || reverse == node {
			inDepth = true
		}
		// Windows met or crossed: nothing is cold.
		if forward == reverse || forward.next == reverse {
			return
		}
		forward = forward.next
		reverse = reverse.prev
	}

	if !inDepth {
		ql.compressNode(node)
	}
	// forward and reverse sit one node beyond each window edge.
	ql.compressNode(forward)
	ql.compressNode(reverse)
}

// compressOrPass recompresses a transiently-decompressed node, or runs a
// full window pass for a node whose raw state may be stale.
func (ql *Quicklist) compressOrPass(node *Node) {
	if node != nil && node.recompress {
		ql.recompressOnly(node)
	} else {
		ql.compressPass(node)
	}
}
