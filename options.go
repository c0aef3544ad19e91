package quicklist

import (
	"errors"

	"github.com/miretskiy/quicklist/compression"
)

// config holds internal configuration
type config struct {
	Fill          int // per-node capacity rule, see WithFill
	CompressDepth int // raw nodes kept at each end, 0 = no compression
	Codec         compression.Codec
	Level         compression.Level
	VerifyOnRead  bool
}

// Option configures a Quicklist
type Option interface {
	apply(*config)
}

// funcOpt wraps a function as an Option
type funcOpt func(*config)

func (f funcOpt) apply(c *config) {
	f(c)
}

// WithFill sets the per-node capacity rule.
//
//	fill > 0: at most fill elements per node (subject to the 8 KiB safety
//	          ceiling applied to every node)
//	fill <= 0: per-node byte budget from a fixed size-class table, more
//	           negative meaning larger: -1=4KiB, -2=8KiB, -3=16KiB,
//	           -4=32KiB, -5=64KiB (clamped at -5)
//
// Changing fill never re-splits existing nodes; it only governs future
// inserts.
func WithFill(fill int) Option {
	return funcOpt(func(c *config) {
		c.Fill = fill
	})
}

// WithCompressDepth sets how many nodes at each end of the list stay
// uncompressed (default: 0 = compression disabled). With depth d, every node
// further than d from both ends is compressed when that saves space.
func WithCompressDepth(depth int) Option {
	return funcOpt(func(c *config) {
		c.CompressDepth = depth
	})
}

// WithCodec selects the block codec for cold nodes (default: lz4).
// The codec is fixed for the lifetime of the list.
func WithCodec(codec compression.Codec) Option {
	return funcOpt(func(c *config) {
		c.Codec = codec
	})
}

// WithCompressionLevel sets the codec effort level (default: CompressionDefault)
func WithCompressionLevel(level compression.Level) Option {
	return funcOpt(func(c *config) {
		c.Level = level
	})
}

// WithVerifyOnRead enables payload checksum verification when a compressed
// node is decompressed (default: false, opt-in). A mismatch means memory
// corruption and is fatal.
func WithVerifyOnRead(enabled bool) Option {
	return funcOpt(func(c *config) {
		c.VerifyOnRead = enabled
	})
}

// Common errors
var (
	ErrBookmarkExists   = errors.New("bookmark already exists")
	ErrTooManyBookmarks = errors.New("bookmark table full")
	ErrCorrupted        = errors.New("data corruption detected")
)

// defaultConfig returns sensible defaults
func defaultConfig() config {
	return config{
		Fill:          -2, // 8 KiB per node
		CompressDepth: 0,  // no compression
		Codec:         compression.CodecLZ4,
		Level:         compression.CompressionDefault,
		VerifyOnRead:  false,
	}
}
