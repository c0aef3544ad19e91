package quicklist

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBookmarkCreateFindDelete(t *testing.T) {
	ql := New(WithFill(2))
	pushTailInts(ql, 0, 9) // 5 nodes

	mid := ql.head.next.next
	require.NoError(t, ql.BookmarkCreate("mid", mid))
	require.NoError(t, ql.BookmarkCreate("last", ql.tail))

	require.Same(t, mid, ql.BookmarkFind("mid"))
	require.Same(t, ql.tail, ql.BookmarkFind("last"))
	require.Nil(t, ql.BookmarkFind("missing"))

	require.True(t, ql.BookmarkDelete("mid"))
	require.Nil(t, ql.BookmarkFind("mid"))
	require.False(t, ql.BookmarkDelete("mid"))
	require.Same(t, ql.tail, ql.BookmarkFind("last"))
}

func TestBookmarkDuplicateName(t *testing.T) {
	ql := New()
	ql.PushTail([]byte("a"))
	require.NoError(t, ql.BookmarkCreate("bm", ql.head))
	require.ErrorIs(t, ql.BookmarkCreate("bm", ql.head), ErrBookmarkExists)
}

func TestBookmarkTableFull(t *testing.T) {
	ql := New()
	ql.PushTail([]byte("a"))
	for i := 0; i < maxBookmarks; i++ {
		require.NoError(t, ql.BookmarkCreate(fmt.Sprintf("bm%d", i), ql.head))
	}
	require.ErrorIs(t, ql.BookmarkCreate("overflow", ql.head), ErrTooManyBookmarks)

	// Deleting one frees a slot.
	require.True(t, ql.BookmarkDelete("bm0"))
	require.NoError(t, ql.BookmarkCreate("overflow", ql.head))
}

func TestBookmarkClearedOnNodeRemoval(t *testing.T) {
	ql := New(WithFill(1))
	pushTailInts(ql, 0, 4) // one node per element

	doomed := ql.head.next
	require.NoError(t, ql.BookmarkCreate("doomed", doomed))
	require.NoError(t, ql.BookmarkCreate("tail", ql.tail))

	// Removing element 1 removes its node; the bookmark stays registered
	// but resolves to nothing.
	require.Equal(t, 1, ql.DelRange(1, 1))
	require.Nil(t, ql.BookmarkFind("doomed"))
	require.Same(t, ql.tail, ql.BookmarkFind("tail"))

	// The dead entry still occupies its slot until deleted by name.
	require.True(t, ql.BookmarkDelete("doomed"))
}

func TestBookmarksClear(t *testing.T) {
	ql := New()
	ql.PushTail([]byte("a"))
	require.NoError(t, ql.BookmarkCreate("one", ql.head))
	require.NoError(t, ql.BookmarkCreate("two", ql.head))
	ql.BookmarksClear()
	require.Nil(t, ql.BookmarkFind("one"))
	require.NoError(t, ql.BookmarkCreate("one", ql.head))
}

func TestBookmarkSurvivesPop(t *testing.T) {
	// Popping the last element of a bookmarked node clears the bookmark;
	// popping from other nodes leaves it alone.
	ql := New(WithFill(1))
	pushTailInts(ql, 0, 3)
	require.NoError(t, ql.BookmarkCreate("mid", ql.head.next))

	_, _, ok := ql.Pop(Head)
	require.True(t, ok)
	require.Same(t, ql.head, ql.BookmarkFind("mid"))

	_, _, ok = ql.Pop(Head)
	require.True(t, ok)
	require.Nil(t, ql.BookmarkFind("mid"))
}
