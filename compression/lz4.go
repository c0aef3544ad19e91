package compression

import (
	"errors"

	"github.com/pierrec/lz4/v4"
)

// lzLevel maps our normalized levels to LZ4 specific levels.
// LZ4 levels 0-2 use the fast algorithm, while 3-12 use High Compression (HC).
func lzLevel(l Level) lz4.CompressionLevel {
	switch l {
	case CompressionSpeed:
		return lz4.Fast
	case CompressionBest:
		return lz4.Level9
	default:
		return lz4.Level5
	}
}

func compressLZ4(dst, src []byte, level Level) ([]byte, error) {
	// CompressBlock naturally errors or returns 0 if dst is too small.
	if level == CompressionSpeed || level == CompressionDefault {
		var c lz4.Compressor
		n, err := c.CompressBlock(src, dst)
		if err != nil || n == 0 {
			return nil, ErrBufferTooSmall
		}
		return dst[:n], nil
	}
	c := lz4.CompressorHC{Level: lzLevel(level)}
	n, err := c.CompressBlock(src, dst)
	if err != nil || n == 0 {
		return nil, ErrBufferTooSmall
	}
	return dst[:n], nil
}

func decompressLZ4(dst, src []byte) error {
	// UncompressBlock is inherently an "Into" operation.
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return err
	}
	if n != len(dst) {
		return errors.New("lz4 decompression: unexpected output length")
	}
	return nil
}
