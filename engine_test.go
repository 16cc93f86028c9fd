// Copyright 2025 The OLAPStore Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package olapstore

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/olapstore/olapstore/partition"
)

func TestEngineCreateDatabaseAndTableWithPartitions(t *testing.T) {
	engine := NewSingleDir(t.TempDir())
	require.NoError(t, engine.CreateDatabase(1, "ecommerce"))

	schema := NewTabletSchema(KeysDuplicate, []ColumnSchema{KeyColumn(0, "order_id", ColumnInt64)})
	specs := []PartitionSpec{
		{PartitionID: 10, TabletIDs: []TabletID{100, 101}, SchemaHash: schema.SchemaHash},
		{PartitionID: 11, TabletIDs: []TabletID{200, 201}, SchemaHash: schema.SchemaHash},
	}
	pinfo := partition.NewUnpartitionedInfo(10, nil)

	err := engine.CreateTableWithPartitions(1, 5, "orders", schema, pinfo, specs, 1)
	require.NoError(t, err)
	require.Equal(t, 4, engine.TabletCount())

	tablet, err := engine.GetTablet(100, schema.SchemaHash)
	require.NoError(t, err)
	require.EqualValues(t, 100, tablet.TabletID())

	require.NoError(t, engine.DropTablet(100, schema.SchemaHash))
	_, err = engine.GetTablet(100, schema.SchemaHash)
	require.ErrorIs(t, err, ErrTabletNotFound)
}

func TestEnginePublishRowset(t *testing.T) {
	engine := NewSingleDir(t.TempDir())
	schema := NewTabletSchema(KeysDuplicate, []ColumnSchema{KeyColumn(0, "id", ColumnInt64)})
	meta := NewTabletMeta(1, 1, schema)
	_, err := engine.CreateTablet(meta)
	require.NoError(t, err)

	rs := NewRowsetMeta(1, 1, 1, Version{Start: 0, End: 1}, 100, 10)
	require.NoError(t, engine.PublishRowset(1, schema.SchemaHash, rs))

	tablet, err := engine.GetTablet(1, schema.SchemaHash)
	require.NoError(t, err)
	require.EqualValues(t, 1, tablet.MaxVersion())
}

func TestEngineScheduleCompactionTopTen(t *testing.T) {
	engine := NewSingleDir(t.TempDir())
	schema := NewTabletSchema(KeysDuplicate, []ColumnSchema{KeyColumn(0, "id", ColumnInt64)})

	for tid := TabletID(1); tid <= 15; tid++ {
		meta := NewTabletMeta(tid, 1, schema)
		tablet, err := engine.CreateTablet(meta)
		require.NoError(t, err)
		for v := int64(0); v < int64(tid); v++ {
			rs := NewRowsetMeta(RowsetID(v+1), tid, 1, Version{Start: v, End: v}, 10, 1)
			require.NoError(t, tablet.AddRowset(rs))
		}
	}

	candidates, err := engine.ScheduleCompaction(context.Background(), CompactionCumulative)
	require.NoError(t, err)
	require.Len(t, candidates, 10)
	// Tablet 15 has the most rowsets (15), so it must rank first.
	require.EqualValues(t, 15, candidates[0])
}

func TestEngineWithMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	engine := NewSingleDir(t.TempDir(), WithMetrics(reg))
	schema := NewTabletSchema(KeysDuplicate, []ColumnSchema{KeyColumn(0, "id", ColumnInt64)})
	_, err := engine.CreateTablet(NewTabletMeta(1, 1, schema))
	require.NoError(t, err)

	metricFamilies, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, metricFamilies)
}

func TestEngineSegmentPath(t *testing.T) {
	engine := NewSingleDir("/var/lib/olap")
	require.Equal(t, "/var/lib/olap/7/3_0.seg", engine.SegmentPath(7, 3, 0))
}
