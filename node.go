package quicklist

import (
	"github.com/cespare/xxhash/v2"

	"github.com/miretskiy/quicklist/compression"
	"github.com/miretskiy/quicklist/listpack"
)

type nodeEncoding uint8

const (
	encodingRaw nodeEncoding = iota + 1
	encodingCompressed
)

type nodeContainer uint8

const (
	containerPlain  nodeContainer = iota + 1 // reserved for future payload kinds
	containerPacked                          // listpack payload; the only container in use
)

const (
	// Payloads smaller than this are never worth compressing.
	minCompressBytes = 48
	// Compression must save at least this many bytes to be kept.
	minCompressSave = 8
)

// Node is one link in the chain, owning one packed payload that is either
// raw (lp set) or compressed (zdata set), discriminated by encoding. Nodes
// are created and destroyed by the list; callers only ever hold them as
// opaque bookmark targets.
type Node struct {
	prev, next *Node

	lp    *listpack.Listpack // raw payload; nil while compressed
	zdata []byte             // codec output; nil while raw

	checksum  uint64 // xxhash of the raw payload, valid while compressed
	sz        uint32 // payload byte size, always the uncompressed size
	count     uint16 // elements in the payload
	encoding  nodeEncoding
	container nodeContainer

	// recompress marks a cold node transiently decompressed for a read;
	// attemptedCompress marks a payload the codec could not shrink, so it
	// is not retried until the payload changes.
	recompress        bool
	attemptedCompress bool
}

func newNode(lp *listpack.Listpack) *Node {
	n := &Node{
		lp:        lp,
		encoding:  encodingRaw,
		container: containerPacked,
	}
	n.updateSz()
	return n
}

// updateSz refreshes the cached size and count from the payload. Every
// payload mutation goes through here, which also makes the node eligible
// for a fresh compression attempt.
func (n *Node) updateSz() {
	n.sz = uint32(n.lp.Size())
	n.count = uint16(n.lp.Count())
	n.attemptedCompress = false
}

func (n *Node) compressedNode() bool {
	return n.encoding == encodingCompressed
}

// compressNode replaces the raw payload with its compressed form when the
// codec shrinks it by at least minCompressSave bytes. On rejection the node
// stays raw and is flagged so the attempt is not repeated for an unchanged
// payload. Reports whether the node is compressed afterwards.
func (ql *Quicklist) compressNode(n *Node) bool {
	if n == nil || n.encoding != encodingRaw {
		return n != nil && n.compressedNode()
	}
	if n.attemptedCompress || ql.codec == compression.CodecNone {
		n.recompress = false
		return false
	}
	raw := n.lp.Bytes()
	if len(raw) < minCompressBytes {
		n.attemptedCompress = true
		n.recompress = false
		return false
	}
	dst := make([]byte, len(raw)-minCompressSave)
	out, err := compression.Compress(ql.codec, ql.level, dst, raw)
	if err != nil {
		n.attemptedCompress = true
		n.recompress = false
		return false
	}
	n.checksum = xxhash.Sum64(raw)
	n.zdata = make([]byte, len(out))
	copy(n.zdata, out)
	n.lp = nil
	n.encoding = encodingCompressed
	n.recompress = false
	return true
}

// decompressNode restores the raw payload. The node is considered
// legitimately raw afterwards (no recompress pending).
func (ql *Quicklist) decompressNode(n *Node) {
	if n == nil || n.encoding != encodingCompressed {
		return
	}
	raw := make([]byte, n.sz)
	if err := compression.Decompress(ql.codec, raw, n.zdata); err != nil {
		log.Error("quicklist: node decompression failed",
			"codec", ql.codec.String(), "err", err)
		panic(ErrCorrupted)
	}
	if ql.verifyOnRead && xxhash.Sum64(raw) != n.checksum {
		log.Error("quicklist: node payload checksum mismatch",
			"codec", ql.codec.String())
		panic(ErrCorrupted)
	}
	n.zdata = nil
	n.lp = listpack.FromBytes(raw)
	n.encoding = encodingRaw
	n.recompress = false
}

// decompressNodeForUse decompresses a cold node for a transient read and
// marks it to be recompressed once the read pass moves on.
func (ql *Quicklist) decompressNodeForUse(n *Node) {
	if n != nil && n.encoding == encodingCompressed {
		ql.decompressNode(n)
		n.recompress = true
	}
}

// recompressOnly restores the compressed form of a node that was
// transiently decompressed, without re-evaluating the hot window.
func (ql *Quicklist) recompressOnly(n *Node) {
	if n.recompress {
		n.recompress = false
		ql.compressNode(n)
	}
}
