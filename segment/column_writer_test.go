// Copyright 2025 The OLAPStore Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package segment

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olapstore/olapstore/segment/page"
	"github.com/olapstore/olapstore/segment/value"
)

func TestColumnWriterFlushesFullPages(t *testing.T) {
	meta := value.NewColumnMeta(0, "c", value.FieldInt32).WithEncoding(value.EncodingDeltaBinary)
	cw := NewColumnWriter(meta)
	for i := 0; i < page.MaxRows+10; i++ {
		require.NoError(t, cw.AddValue(value.NewInt32(int32(i))))
	}
	require.EqualValues(t, page.MaxRows+10, cw.NumRows())
	require.Len(t, cw.Ordinal.Entries, 1) // second page not yet flushed

	data, err := cw.Finalize()
	require.NoError(t, err)
	require.NotEmpty(t, data)
	require.Len(t, cw.Ordinal.Entries, 2)
	require.Len(t, cw.ZoneMap.Entries, 2)
}

func TestColumnWriterBloomTracksAllValues(t *testing.T) {
	meta := value.NewColumnMeta(0, "c", value.FieldInt32)
	cw := NewColumnWriter(meta)
	require.NoError(t, cw.AddValue(value.NewInt32(42)))
	require.True(t, cw.Bloom.MayContain(value.NewInt32(42).SortKey()))
}

func TestColumnWriterZoneMapTracksMinMax(t *testing.T) {
	meta := value.NewColumnMeta(0, "c", value.FieldInt32)
	cw := NewColumnWriter(meta)
	for _, v := range []int32{5, 1, 9, 3} {
		require.NoError(t, cw.AddValue(value.NewInt32(v)))
	}
	_, err := cw.Finalize()
	require.NoError(t, err)
	require.Len(t, cw.ZoneMap.Entries, 1)
	require.Equal(t, value.NewInt32(1).SortKey(), cw.ZoneMap.Entries[0].Min)
	require.Equal(t, value.NewInt32(9).SortKey(), cw.ZoneMap.Entries[0].Max)
}
