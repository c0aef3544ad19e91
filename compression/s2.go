package compression

import (
	"errors"

	"github.com/klauspost/compress/s2"
)

func compressS2(dst, src []byte, level Level) ([]byte, error) {
	// s2 refuses to encode in place unless dst can hold the worst case, so
	// an undersized dst (the quicklist's "must shrink" probe) would always
	// be bypassed for a fresh allocation. Encode into scratch instead and
	// keep the result only when it fits dst.
	bound := s2.MaxEncodedLen(len(src))
	if bound < 0 {
		return nil, errors.New("s2: source too large")
	}
	var res []byte
	if cap(dst) >= bound {
		if level == CompressionBest {
			res = s2.EncodeBetter(dst[:cap(dst)], src)
		} else {
			res = s2.Encode(dst[:cap(dst)], src)
		}
		if len(res) > len(dst) {
			return nil, ErrBufferTooSmall
		}
		return dst[:len(res)], nil
	}
	scratch := make([]byte, bound)
	if level == CompressionBest {
		res = s2.EncodeBetter(scratch, src)
	} else {
		res = s2.Encode(scratch, src)
	}
	if len(res) > len(dst) {
		return nil, ErrBufferTooSmall
	}
	n := copy(dst, res)
	return dst[:n], nil
}

func decompressS2(dst, src []byte) error {
	res, err := s2.Decode(dst, src)
	if err != nil {
		return err
	}
	if len(res) != len(dst) {
		return errors.New("s2 decompression: unexpected output length")
	}
	return nil
}
