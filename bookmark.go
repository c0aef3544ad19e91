package quicklist

// Bookmarks are named, non-owning references to chain nodes, meant for
// resuming traversal of very large lists across operations. The table is a
// small linear-scan slice: lookups are O(bookmark count), and every node
// removal pays the same scan, so keep the count low.

// maxBookmarks bounds the table; the name index is a linear scan and node
// deletion pays for every entry.
const maxBookmarks = 15

type bookmark struct {
	name string
	node *Node // nil once the referenced node has been removed
}

// BookmarkCreate registers name as a reference to node n. Fails when the
// name is taken or the table is full.
func (ql *Quicklist) BookmarkCreate(name string, n *Node) error {
	if len(ql.bookmarks) >= maxBookmarks {
		return ErrTooManyBookmarks
	}
	for i := range ql.bookmarks {
		if ql.bookmarks[i].name == name {
			return ErrBookmarkExists
		}
	}
	ql.bookmarks = append(ql.bookmarks, bookmark{name: name, node: n})
	return nil
}

// BookmarkFind returns the node referenced by name, or nil when the name is
// unknown or its node has since been removed from the chain.
func (ql *Quicklist) BookmarkFind(name string) *Node {
	for i := range ql.bookmarks {
		if ql.bookmarks[i].name == name {
			return ql.bookmarks[i].node
		}
	}
	return nil
}

// BookmarkDelete removes the named bookmark, reporting whether it existed.
func (ql *Quicklist) BookmarkDelete(name string) bool {
	for i := range ql.bookmarks {
		if ql.bookmarks[i].name == name {
			ql.bookmarks = append(ql.bookmarks[:i], ql.bookmarks[i+1:]...)
			return true
		}
	}
	return false
}

// BookmarksClear drops the whole table.
func (ql *Quicklist) BookmarksClear() {
	ql.bookmarks = nil
}
