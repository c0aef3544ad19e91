package quicklist

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIteratorForward(t *testing.T) {
	ql := New(WithFill(3))
	pushTailInts(ql, 0, 9)

	it := ql.Iterator(FromHead)
	defer it.Close()
	var e Entry
	for i := 0; i < 10; i++ {
		require.True(t, it.Next(&e))
		require.Equal(t, strconv.Itoa(i), string(e.Raw()))
	}
	require.False(t, it.Next(&e))
	require.False(t, it.Next(&e)) // stays exhausted
}

func TestIteratorBackward(t *testing.T) {
	ql := New(WithFill(3))
	pushTailInts(ql, 0, 9)

	it := ql.Iterator(FromTail)
	defer it.Close()
	var e Entry
	for i := 9; i >= 0; i-- {
		require.True(t, it.Next(&e))
		require.Equal(t, strconv.Itoa(i), string(e.Raw()))
	}
	require.False(t, it.Next(&e))
}

func TestIteratorEmptyList(t *testing.T) {
	ql := New()
	it := ql.Iterator(FromHead)
	defer it.Close()
	var e Entry
	require.False(t, it.Next(&e))
}

func TestIteratorAtIdx(t *testing.T) {
	ql := New(WithFill(2))
	pushTailInts(ql, 0, 9)

	it := ql.IteratorAtIdx(FromHead, 5)
	require.NotNil(t, it)
	var e Entry
	require.True(t, it.Next(&e))
	require.Equal(t, "5", string(e.Raw()))
	require.True(t, it.Next(&e))
	require.Equal(t, "6", string(e.Raw()))
	it.Close()

	it = ql.IteratorAtIdx(FromTail, -4)
	require.NotNil(t, it)
	require.True(t, it.Next(&e))
	require.Equal(t, "6", string(e.Raw()))
	require.True(t, it.Next(&e))
	require.Equal(t, "5", string(e.Raw()))
	it.Close()

	require.Nil(t, ql.IteratorAtIdx(FromHead, 10))
	require.Nil(t, ql.IteratorAtIdx(FromTail, -11))
}

func TestIteratorRewind(t *testing.T) {
	ql := New(WithFill(2))
	pushTailInts(ql, 0, 4)

	it := ql.Iterator(FromHead)
	var e Entry
	require.True(t, it.Next(&e))
	require.True(t, it.Next(&e))

	ql.Rewind(it) // reinitialize in place
	require.True(t, it.Next(&e))
	require.Equal(t, "0", string(e.Raw()))

	ql.RewindTail(it)
	require.True(t, it.Next(&e))
	require.Equal(t, "4", string(e.Raw()))
	it.Close()
}

func TestDelEntryForward(t *testing.T) {
	ql := New(WithFill(2))
	pushTailInts(ql, 0, 9)

	// Delete every even element while iterating.
	it := ql.Iterator(FromHead)
	var e Entry
	for it.Next(&e) {
		if v, isInt := e.Int(); isInt && v%2 == 0 {
			ql.DelEntry(it, &e)
		}
	}
	it.Close()
	require.Equal(t, []string{"1", "3", "5", "7", "9"}, contents(t, ql))
	require.Equal(t, uint64(5), ql.Count())
}

func TestDelEntryDrainsWholeList(t *testing.T) {
	// fill=1 forces one element per node, so every deletion removes a node
	// and the iterator must hop to the next one.
	ql := New(WithFill(1))
	pushTailInts(ql, 0, 5)
	require.Equal(t, uint64(6), ql.NodeCount())

	it := ql.Iterator(FromHead)
	var e Entry
	for it.Next(&e) {
		ql.DelEntry(it, &e)
	}
	it.Close()
	require.Equal(t, uint64(0), ql.Count())
	require.Equal(t, uint64(0), ql.NodeCount())
}

func TestDelEntryBackward(t *testing.T) {
	ql := New(WithFill(2))
	pushTailInts(ql, 0, 9)

	it := ql.Iterator(FromTail)
	var e Entry
	for it.Next(&e) {
		if v, isInt := e.Int(); isInt && v%2 != 0 {
			ql.DelEntry(it, &e)
		}
	}
	it.Close()
	require.Equal(t, []string{"0", "2", "4", "6", "8"}, contents(t, ql))
}

func TestDelEntryKeepsPositionForward(t *testing.T) {
	ql := New(WithFill(3))
	pushTailInts(ql, 0, 5)

	it := ql.Iterator(FromHead)
	var e Entry
	require.True(t, it.Next(&e)) // at 0
	require.True(t, it.Next(&e)) // at 1
	ql.DelEntry(it, &e)
	require.True(t, it.Next(&e)) // next valid element after the deleted one
	require.Equal(t, "2", string(e.Raw()))
	it.Close()
}
