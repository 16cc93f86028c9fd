// Copyright 2025 The OLAPStore Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package segment

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olapstore/olapstore/segment/value"
)

func demoSchema() []value.ColumnMeta {
	return []value.ColumnMeta{
		value.NewColumnMeta(0, "order_id", value.FieldInt32).WithEncoding(value.EncodingDeltaBinary),
		value.NewColumnMeta(1, "user_id", value.FieldInt64).WithEncoding(value.EncodingDeltaBinary),
		value.NewColumnMeta(2, "ts", value.FieldInt64).WithEncoding(value.EncodingDeltaBinary),
		value.NewColumnMeta(3, "amount", value.FieldFloat64).WithEncoding(value.EncodingPlain),
		value.NewColumnMeta(4, "note", value.FieldBytes).WithEncoding(value.EncodingDictionary).WithCompression(value.CompressionLZ4).WithNullable(),
	}
}

// TestSegmentRoundTrip is scenario S1: a 5-column schema, 2000 rows,
// finalize, reopen, and check row count plus a column slice.
func TestSegmentRoundTrip(t *testing.T) {
	schema := demoSchema()
	w := NewWriter(schema, []uint32{0})

	const numRows = 2000
	for i := 0; i < numRows; i++ {
		row := []value.Value{
			value.NewInt32(int32(i)),
			value.NewInt64(1_000_000 + int64(i)),
			value.NewInt64(int64(i) * 1000),
			value.NewFloat64(float64(i) * 1.5),
			value.NewBytes([]byte("note")),
		}
		require.NoError(t, w.AppendRow(row))
	}

	var buf bytes.Buffer
	n, err := w.Finalize(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)

	r, err := Open(buf.Bytes(), schema)
	require.NoError(t, err)
	require.EqualValues(t, numRows, r.NumRows())

	col1, err := r.ReadColumn(1)
	require.NoError(t, err)
	require.Len(t, col1, numRows)
	for i := 0; i < 5; i++ {
		iv, ok := col1[i].AsInt64()
		require.True(t, ok)
		require.EqualValues(t, 1_000_000+i, iv)
	}
}

func TestSegmentAppendRowSchemaMismatch(t *testing.T) {
	schema := demoSchema()
	w := NewWriter(schema, []uint32{0})
	err := w.AppendRow([]value.Value{value.NewInt32(1)})
	require.ErrorIs(t, err, value.ErrSchemaMismatch)
}

// TestSegmentCRCMismatch is scenario S6: flip a byte inside the footer and
// expect Open to fail ChecksumMismatch.
func TestSegmentCRCMismatch(t *testing.T) {
	schema := demoSchema()
	w := NewWriter(schema, []uint32{0})
	for i := 0; i < 10; i++ {
		require.NoError(t, w.AppendRow([]value.Value{
			value.NewInt32(int32(i)),
			value.NewInt64(int64(i)),
			value.NewInt64(int64(i)),
			value.NewFloat64(float64(i)),
			value.NewBytes([]byte("x")),
		}))
	}
	var buf bytes.Buffer
	_, err := w.Finalize(&buf)
	require.NoError(t, err)

	data := buf.Bytes()
	// The footer ends right before the 16-byte trailer (crc, length,
	// magic); flip a byte 4 bytes before that trailer, inside the footer.
	flipAt := len(data) - 20
	require.Greater(t, flipAt, 0)
	data[flipAt] ^= 0xFF

	_, err = Open(data, schema)
	require.ErrorIs(t, err, value.ErrChecksumMismatch)
}

func TestSegmentShortKeyIndexUsesKeyColumnMask(t *testing.T) {
	schema := demoSchema()
	w := NewWriter(schema, []uint32{0})
	for i := 0; i < 2500; i++ {
		require.NoError(t, w.AppendRow([]value.Value{
			value.NewInt32(int32(i)),
			value.NewInt64(int64(i)),
			value.NewInt64(int64(i)),
			value.NewFloat64(float64(i)),
			value.NewBytes([]byte("x")),
		}))
	}
	var buf bytes.Buffer
	_, err := w.Finalize(&buf)
	require.NoError(t, err)

	r, err := Open(buf.Bytes(), schema)
	require.NoError(t, err)
	sk, err := r.ShortKeyIndex()
	require.NoError(t, err)
	// 2500 rows sampled every 1024 -> row ids 0, 1024, 2048.
	require.Len(t, sk.Entries, 3)
	// Only key column 0 (order_id) makes up each sampled key.
	require.Equal(t, value.NewInt32(1024).SortKey(), sk.Entries[1].Key)
}

func TestSegmentColumnZoneMapAndBloom(t *testing.T) {
	schema := demoSchema()
	w := NewWriter(schema, []uint32{0})
	for i := 0; i < 50; i++ {
		require.NoError(t, w.AppendRow([]value.Value{
			value.NewInt32(int32(i)),
			value.NewInt64(int64(i)),
			value.NewInt64(int64(i)),
			value.NewFloat64(float64(i)),
			value.NewBytes([]byte("x")),
		}))
	}
	var buf bytes.Buffer
	_, err := w.Finalize(&buf)
	require.NoError(t, err)

	r, err := Open(buf.Bytes(), schema)
	require.NoError(t, err)

	zm, err := r.ColumnZoneMap(0)
	require.NoError(t, err)
	require.Len(t, zm.Entries, 1)

	bf, err := r.ColumnBloomFilter(0)
	require.NoError(t, err)
	require.True(t, bf.MayContain(value.NewInt32(10).SortKey()))
}
