// Copyright 2025 The OLAPStore Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package codec

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olapstore/olapstore/segment/value"
)

func TestPlainRoundTripInt64(t *testing.T) {
	in := []value.Value{value.NewInt64(42)}
	encoded, err := Encode(in, value.EncodingPlain)
	require.NoError(t, err)
	out, err := Decode(encoded, value.EncodingPlain, 1, value.FieldInt64)
	require.NoError(t, err)
	require.Len(t, out, 1)
	iv, ok := out[0].AsInt64()
	require.True(t, ok)
	require.Equal(t, int64(42), iv)
}

func TestPlainRoundTripBytes(t *testing.T) {
	in := []value.Value{value.NewBytes([]byte("hello")), value.NewBytes([]byte("world"))}
	encoded, err := Encode(in, value.EncodingPlain)
	require.NoError(t, err)
	out, err := Decode(encoded, value.EncodingPlain, 2, value.FieldBytes)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, []byte("hello"), out[0].AsBytes())
	require.Equal(t, []byte("world"), out[1].AsBytes())
}

func TestPlainDispatchesOnFieldType(t *testing.T) {
	in := []value.Value{value.NewFloat32(3.25)}
	encoded, err := Encode(in, value.EncodingPlain)
	require.NoError(t, err)
	out, err := Decode(encoded, value.EncodingPlain, 1, value.FieldFloat32)
	require.NoError(t, err)
	require.Equal(t, value.FieldFloat32, out[0].Kind())
	require.InDelta(t, float32(3.25), out[0].Float32(), 1e-9)
}

func TestDeltaRoundTripMonotone(t *testing.T) {
	var in []value.Value
	for i := int64(1_000_000); i < 1_000_010; i++ {
		in = append(in, value.NewInt64(i))
	}
	encoded, err := Encode(in, value.EncodingDeltaBinary)
	require.NoError(t, err)
	out, err := Decode(encoded, value.EncodingDeltaBinary, len(in), value.FieldInt64)
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for i, v := range out {
		iv, ok := v.AsInt64()
		require.True(t, ok)
		want, _ := in[i].AsInt64()
		require.Equal(t, want, iv)
	}
}

func TestDictionaryCardinalityAndRoundTrip(t *testing.T) {
	in := []value.Value{
		value.NewBytes([]byte("a")),
		value.NewBytes([]byte("b")),
		value.NewBytes([]byte("a")),
		value.NewBytes([]byte("c")),
		value.NewBytes([]byte("b")),
	}
	encoded, err := Encode(in, value.EncodingDictionary)
	require.NoError(t, err)
	// The leading u32 is the dictionary size: three distinct values.
	require.EqualValues(t, 3, binary.LittleEndian.Uint32(encoded[0:4]))
	out, err := Decode(encoded, value.EncodingDictionary, len(in), value.FieldBytes)
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for i, v := range out {
		require.Equal(t, in[i].AsBytes(), v.AsBytes())
	}
}

func TestRunLengthRoundTrip(t *testing.T) {
	in := []value.Value{
		value.NewInt64(7), value.NewInt64(7), value.NewInt64(7),
		value.NewInt64(9),
	}
	encoded, err := Encode(in, value.EncodingRunLength)
	require.NoError(t, err)
	out, err := Decode(encoded, value.EncodingRunLength, len(in), value.FieldInt64)
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for i, v := range out {
		iv, _ := v.AsInt64()
		want, _ := in[i].AsInt64()
		require.Equal(t, want, iv)
	}
}

func TestDecodePlainTruncatedBytesErrors(t *testing.T) {
	// length prefix claims more bytes than are present.
	bad := []byte{0xff, 0xff, 0xff, 0xff}
	_, err := Decode(bad, value.EncodingPlain, 1, value.FieldBytes)
	require.ErrorIs(t, err, value.ErrEncoding)
}

func TestCompressionRoundTripLZ4(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog, repeatedly, repeatedly, repeatedly")
	compressed, err := Compress(data, value.CompressionLZ4)
	require.NoError(t, err)
	out, err := Decompress(compressed, value.CompressionLZ4, len(data))
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestCompressionRoundTripNone(t *testing.T) {
	data := []byte("uncompressed")
	compressed, err := Compress(data, value.CompressionNone)
	require.NoError(t, err)
	out, err := Decompress(compressed, value.CompressionNone, len(data))
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestCompressionRoundTripTinyLZ4(t *testing.T) {
	// Small, low-entropy input exercises the literal-only-block fallback
	// path when the compressor declines to compress.
	data := []byte("x")
	compressed, err := Compress(data, value.CompressionLZ4)
	require.NoError(t, err)
	out, err := Decompress(compressed, value.CompressionLZ4, len(data))
	require.NoError(t, err)
	require.Equal(t, data, out)
}
