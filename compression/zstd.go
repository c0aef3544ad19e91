package compression

import (
	"errors"
	"sync"

	"github.com/klauspost/compress/zstd"
)

func zLevel(l Level) zstd.EncoderLevel {
	switch l {
	case CompressionSpeed:
		return zstd.SpeedFastest
	case CompressionBest:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

// Stateless EncodeAll/DecodeAll reuse a single encoder per level and a
// single decoder, per the klauspost recommendation.
var (
	zstdEncoders sync.Map // Level -> *zstd.Encoder
	zstdDecoder  *zstd.Decoder
	zstdDecInit  sync.Once
)

func zstdEncoder(level Level) *zstd.Encoder {
	if e, ok := zstdEncoders.Load(level); ok {
		return e.(*zstd.Encoder)
	}
	e, _ := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zLevel(level)),
		zstd.WithEncoderConcurrency(1))
	actual, _ := zstdEncoders.LoadOrStore(level, e)
	return actual.(*zstd.Encoder)
}

func compressZstd(dst, src []byte, level Level) ([]byte, error) {
	// EncodeAll appends to dst[:0]; if the output exceeds cap(dst) it
	// reallocates, which we detect by comparing base pointers.
	res := zstdEncoder(level).EncodeAll(src, dst[:0])
	if len(res) > cap(dst) || (len(res) > 0 && len(dst) > 0 && &res[0] != &dst[0]) {
		return nil, ErrBufferTooSmall
	}
	return res, nil
}

func decompressZstd(dst, src []byte) error {
	zstdDecInit.Do(func() {
		zstdDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	})
	res, err := zstdDecoder.DecodeAll(src, dst[:0])
	if err != nil {
		return err
	}
	if len(res) != len(dst) {
		return errors.New("zstd decompression: unexpected output length")
	}
	return nil
}
