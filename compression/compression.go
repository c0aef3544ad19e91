// Package compression provides fixed-destination block codecs used to shrink
// cold quicklist nodes. All codecs follow "into" semantics: output must fit
// in the caller-provided dst, otherwise ErrBufferTooSmall is returned. The
// quicklist sizes dst below len(src), so "too small" doubles as the signal
// that compressing this payload is not worth keeping.
package compression

import (
	"errors"
)

type Codec uint8
type Level uint8

const (
	CodecNone Codec = iota
	CodecLZ4
	CodecS2
	CodecZstd
)

const (
	CompressionDefault Level = iota
	CompressionSpeed
	CompressionBest
)

// ErrBufferTooSmall is returned when the provided destination buffer is
// insufficient to hold the output. The quicklist uses this to reject
// compression that does not shrink the payload enough.
var ErrBufferTooSmall = errors.New("destination buffer too small")

// IsBufferTooSmall is a helper to detect heuristic/capacity failures.
func IsBufferTooSmall(err error) bool {
	return errors.Is(err, ErrBufferTooSmall)
}

func (c Codec) String() string {
	switch c {
	case CodecLZ4:
		return "lz4"
	case CodecS2:
		return "s2"
	case CodecZstd:
		return "zstd"
	default:
		return "none"
	}
}

// Compress attempts to compress src into dst using the specified codec and
// level. Returns the filled prefix of dst, or ErrBufferTooSmall.
func Compress(codec Codec, level Level, dst, src []byte) ([]byte, error) {
	switch codec {
	case CodecLZ4:
		return compressLZ4(dst, src, level)
	case CodecS2:
		return compressS2(dst, src, level)
	case CodecZstd:
		return compressZstd(dst, src, level)
	default:
		return nil, errors.New("unsupported codec")
	}
}

// Decompress restores data into the provided dst buffer. dst must be sized
// to the exact uncompressed length, which the quicklist node records.
func Decompress(codec Codec, dst, src []byte) error {
	switch codec {
	case CodecLZ4:
		return decompressLZ4(dst, src)
	case CodecS2:
		return decompressS2(dst, src)
	case CodecZstd:
		return decompressZstd(dst, src)
	default:
		return errors.New("unsupported codec")
	}
}
