// Copyright 2025 The OLAPStore Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSortKeyOrdering(t *testing.T) {
	lo := NewInt32(10)
	hi := NewInt32(20)
	require.Less(t, string(lo.SortKey()), string(hi.SortKey()))
}

func TestSortKeyFloat(t *testing.T) {
	lo := NewFloat64(1.5)
	hi := NewFloat64(2.5)
	require.Less(t, string(lo.SortKey()), string(hi.SortKey()))
}

func TestSortKeyBytesIsRaw(t *testing.T) {
	v := NewBytes([]byte("abc"))
	require.Equal(t, []byte("abc"), v.SortKey())
}

func TestSortKeyNullIsEmpty(t *testing.T) {
	require.Empty(t, NewNull().SortKey())
}

func TestAsInt64Fallback(t *testing.T) {
	iv, ok := NewBytes([]byte("x")).AsInt64()
	require.False(t, ok)
	require.Zero(t, iv)
}

func TestColumnMetaDefaults(t *testing.T) {
	intMeta := NewColumnMeta(1, "a", FieldInt64)
	require.Equal(t, EncodingDeltaBinary, intMeta.Encoding)
	require.Equal(t, CompressionLZ4, intMeta.Compression)

	bytesMeta := NewColumnMeta(2, "b", FieldBytes)
	require.Equal(t, EncodingDictionary, bytesMeta.Encoding)

	floatMeta := NewColumnMeta(3, "c", FieldFloat64)
	require.Equal(t, EncodingPlain, floatMeta.Encoding)
}

func TestFixedSize(t *testing.T) {
	n, ok := FieldInt32.FixedSize()
	require.True(t, ok)
	require.Equal(t, 4, n)

	_, ok = FieldBytes.FixedSize()
	require.False(t, ok)
}
