// Copyright 2025 The OLAPStore Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package codec

import (
	"github.com/cockroachdb/errors"
	"github.com/pierrec/lz4/v4"

	"github.com/olapstore/olapstore/segment/value"
)

// Compress compresses data with the given block-mode compressor. None is a
// byte-identical passthrough.
func Compress(data []byte, c value.CompressionType) ([]byte, error) {
	switch c {
	case value.CompressionNone:
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	case value.CompressionLZ4:
		if len(data) == 0 {
			return nil, nil
		}
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		var compressor lz4.Compressor
		n, err := compressor.CompressBlock(data, buf)
		if err != nil {
			return nil, errors.Wrap(value.ErrCompression, err.Error())
		}
		if n == 0 {
			// CompressBlock signals "not worth compressing" (common for
			// tiny or high-entropy pages) by returning n==0 without
			// touching buf. Fall back to a literal-only LZ4 block, which
			// UncompressBlock decodes like any other block.
			return encodeLiteralBlock(data), nil
		}
		return buf[:n], nil
	default:
		return nil, errors.Wrapf(value.ErrCompression, "unknown compression type %d", c)
	}
}

// encodeLiteralBlock encodes data as a single-sequence LZ4 block containing
// only a literal run and no match — always representable, regardless of
// how incompressible data is. This is the same shape every real LZ4 block
// ends with (the final sequence of a block is never allowed to be a match),
// so any spec-compliant decoder, including pierrec's, accepts it.
func encodeLiteralBlock(data []byte) []byte {
	litLen := len(data)
	out := make([]byte, 0, litLen+litLen/255+2)
	if litLen < 15 {
		out = append(out, byte(litLen)<<4)
	} else {
		out = append(out, 0xF0)
		rem := litLen - 15
		for rem >= 255 {
			out = append(out, 255)
			rem -= 255
		}
		out = append(out, byte(rem))
	}
	return append(out, data...)
}

// Decompress decompresses data with the given compressor. uncompressedLen
// is required for LZ4 block mode, which (unlike the frame format) does not
// self-describe its output size.
func Decompress(data []byte, c value.CompressionType, uncompressedLen int) ([]byte, error) {
	switch c {
	case value.CompressionNone:
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	case value.CompressionLZ4:
		out := make([]byte, uncompressedLen)
		n, err := lz4.UncompressBlock(data, out)
		if err != nil {
			return nil, errors.Wrap(value.ErrCompression, err.Error())
		}
		return out[:n], nil
	default:
		return nil, errors.Wrapf(value.ErrCompression, "unknown compression type %d", c)
	}
}
