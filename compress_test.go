package quicklist

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/miretskiy/quicklist/compression"
)

// compressiblePayload returns a distinct, highly compressible value of n
// bytes that does not parse as an integer.
func compressiblePayload(i, n int) []byte {
	return append([]byte(fmt.Sprintf("v%04d-", i)), bytes.Repeat([]byte("x"), n)...)
}

// buildCompressedChain creates a chain of exactly nodes single-element
// nodes with compressible payloads.
func buildCompressedChain(t *testing.T, nodes int, opts ...Option) *Quicklist {
	t.Helper()
	ql := New(append([]Option{WithFill(1)}, opts...)...)
	for i := 0; i < nodes; i++ {
		ql.PushTail(compressiblePayload(i, 200))
	}
	require.Equal(t, uint64(nodes), ql.NodeCount())
	return ql
}

// assertCompressionInvariant checks the hot window: nodes within depth of
// either end raw, everything else compressed or attempted-and-rejected,
// with no transient decompression left pending.
func assertCompressionInvariant(t *testing.T, ql *Quicklist) {
	t.Helper()
	depth := uint64(ql.compress)
	idx := uint64(0)
	for n := ql.head; n != nil; n = n.next {
		hot := depth == 0 || ql.len < depth*2 || idx < depth || idx >= ql.len-depth
		if hot {
			require.False(t, n.compressedNode(), "node %d must be raw", idx)
		} else {
			require.True(t, n.compressedNode() || n.attemptedCompress,
				"node %d must be compressed or rejected", idx)
		}
		require.False(t, n.recompress, "node %d left pending recompress", idx)
		idx++
	}
}

func TestCompressDepthZeroKeepsEverythingRaw(t *testing.T) {
	ql := buildCompressedChain(t, 8)
	for n := ql.head; n != nil; n = n.next {
		require.False(t, n.compressedNode())
	}
}

func TestCompressionWindow(t *testing.T) {
	// depth=1 on a 5-node chain: nodes 1,2,3 compressed, 0 and 4 raw.
	ql := buildCompressedChain(t, 5, WithCompressDepth(1))
	var nodes []*Node
	for n := ql.head; n != nil; n = n.next {
		nodes = append(nodes, n)
	}
	require.False(t, nodes[0].compressedNode())
	require.True(t, nodes[1].compressedNode())
	require.True(t, nodes[2].compressedNode())
	require.True(t, nodes[3].compressedNode())
	require.False(t, nodes[4].compressedNode())
	assertCompressionInvariant(t, ql)

	// sz always tracks the uncompressed payload size.
	require.Equal(t, nodes[0].sz, nodes[1].sz)
}

func TestIterationTransientlyDecompresses(t *testing.T) {
	ql := buildCompressedChain(t, 5, WithCompressDepth(1))
	var nodes []*Node
	for n := ql.head; n != nil; n = n.next {
		nodes = append(nodes, n)
	}

	it := ql.Iterator(FromHead)
	var e Entry
	i := 0
	for it.Next(&e) {
		require.Equal(t, compressiblePayload(i, 200), e.Value())
		require.False(t, e.Node().compressedNode(), "visited node must be raw")
		if e.Node() == nodes[3] {
			// The cursor moved past nodes 1 and 2: both restored.
			require.True(t, nodes[1].compressedNode())
			require.True(t, nodes[2].compressedNode())
		}
		i++
	}
	require.Equal(t, 5, i)
	it.Close()
	assertCompressionInvariant(t, ql)
}

func TestRepeatedReadsDoNotLeakRawState(t *testing.T) {
	ql := buildCompressedChain(t, 6, WithCompressDepth(1))
	for pass := 0; pass < 3; pass++ {
		it := ql.Iterator(FromTail)
		var e Entry
		for it.Next(&e) {
		}
		it.Close()
		assertCompressionInvariant(t, ql)
	}
}

func TestPopShiftsWindow(t *testing.T) {
	ql := buildCompressedChain(t, 6, WithCompressDepth(1))
	for ql.Count() > 0 {
		_, _, ok := ql.Pop(Head)
		require.True(t, ok)
		assertCompressionInvariant(t, ql)
	}
}

func TestPushShiftsWindow(t *testing.T) {
	ql := New(WithFill(1), WithCompressDepth(2))
	for i := 0; i < 10; i++ {
		ql.PushHead(compressiblePayload(i, 200))
		assertCompressionInvariant(t, ql)
	}
}

func TestDelRangeRestoresWindow(t *testing.T) {
	ql := buildCompressedChain(t, 10, WithCompressDepth(2))
	require.Equal(t, 4, ql.DelRange(3, 4)) // drops cold nodes
	assertCompressionInvariant(t, ql)
	require.Equal(t, uint64(6), ql.Count())
}

func TestIncompressibleNodesFlaggedOnce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ql := New(WithFill(1), WithCompressDepth(1))
	for i := 0; i < 5; i++ {
		payload := make([]byte, 200)
		rng.Read(payload)
		ql.PushTail(payload)
	}
	assertCompressionInvariant(t, ql)
	cold := ql.head.next
	require.False(t, cold.compressedNode())
	require.True(t, cold.attemptedCompress)
}

func TestSetCompressDepthRebalances(t *testing.T) {
	ql := buildCompressedChain(t, 6)
	assertCompressionInvariant(t, ql) // depth 0: all raw

	ql.SetCompressDepth(2)
	assertCompressionInvariant(t, ql)
	require.True(t, ql.head.next.next.compressedNode())

	ql.SetCompressDepth(0)
	for n := ql.head; n != nil; n = n.next {
		require.False(t, n.compressedNode())
	}
}

func TestShrinkBelowWindowDecompresses(t *testing.T) {
	ql := buildCompressedChain(t, 6, WithCompressDepth(2))
	// Dropping to 3 nodes leaves no room for a cold middle.
	require.Equal(t, 3, ql.DelRange(0, 3))
	require.Equal(t, uint64(3), ql.NodeCount())
	for n := ql.head; n != nil; n = n.next {
		require.False(t, n.compressedNode())
	}
}

func TestCompressedCodecs(t *testing.T) {
	for _, codec := range []compression.Codec{
		compression.CodecLZ4, compression.CodecS2, compression.CodecZstd,
	} {
		ql := buildCompressedChain(t, 5,
			WithCompressDepth(1), WithCodec(codec), WithVerifyOnRead(true))
		require.True(t, ql.head.next.compressedNode(), "%s", codec)

		it := ql.Iterator(FromHead)
		var e Entry
		for i := 0; it.Next(&e); i++ {
			require.Equal(t, compressiblePayload(i, 200), e.Value(), "%s", codec)
		}
		it.Close()
		assertCompressionInvariant(t, ql)
	}
}

func TestDupPreservesCompressedNodes(t *testing.T) {
	ql := buildCompressedChain(t, 5, WithCompressDepth(1))
	cp := ql.Dup()
	require.True(t, cp.head.next.compressedNode())
	require.Equal(t, contents(t, ql), contents(t, cp))
	assertCompressionInvariant(t, ql)
	assertCompressionInvariant(t, cp)
}

func TestIndexIntoCompressedNode(t *testing.T) {
	ql := buildCompressedChain(t, 5, WithCompressDepth(1))
	var e Entry
	require.True(t, ql.Index(2, &e)) // middle, cold node
	require.Equal(t, compressiblePayload(2, 200), e.Value())
	// The lookup borrows the payload, leaving the node transiently raw
	// with recompression pending until the next operation touches it.
	require.False(t, e.Node().compressedNode())
	require.True(t, e.Node().recompress)

	ql.compressOrPass(e.Node())
	assertCompressionInvariant(t, ql)
}
