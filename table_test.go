// Copyright 2025 The OLAPStore Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package olapstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olapstore/olapstore/partition"
)

func TestCatalogManagerLifecycle(t *testing.T) {
	c := NewCatalogManager()
	require.NoError(t, c.CreateDatabase(1, "db1"))

	schema := NewTabletSchema(KeysDuplicate, []ColumnSchema{KeyColumn(0, "id", ColumnInt64)})
	table := NewOlapTable(10, "orders", schema, nil)
	require.NoError(t, c.AddTable(1, table))

	got, err := c.GetTable(1, 10)
	require.NoError(t, err)
	require.Same(t, table, got)

	require.NoError(t, c.DropTable(1, 10))
	_, err = c.GetTable(1, 10)
	require.ErrorIs(t, err, ErrTableNotFound)
}

func TestCatalogManagerMissingDatabase(t *testing.T) {
	c := NewCatalogManager()
	_, err := c.GetTable(99, 1)
	require.ErrorIs(t, err, ErrDatabaseNotFound)

	schema := NewTabletSchema(KeysDuplicate, nil)
	err = c.AddTable(99, NewOlapTable(1, "x", schema, nil))
	require.ErrorIs(t, err, ErrDatabaseNotFound)
}

func TestOlapTableTabletForRow(t *testing.T) {
	items := []partition.RangePartitionItem{
		{PartitionID: 11, UpperBound: "2025-01-01"},
	}
	partitions := map[partition.PartitionID]*partition.Partition{
		11: partition.NewPartition(11, partition.NewMaterializedIndex(1, []partition.TabletID{200, 201, 202, 203}), partition.HashBucket{Buckets: 4}),
	}
	pinfo := partition.NewRangePartitionInfo(nil, items, partitions)
	schema := NewTabletSchema(KeysDuplicate, []ColumnSchema{KeyColumn(0, "order_id", ColumnInt64)})
	table := NewOlapTable(1, "orders", schema, pinfo)

	tabletID, err := table.TabletForRow("2024-09-20", "2002001")
	require.NoError(t, err)
	require.Contains(t, []TabletID{200, 201, 202, 203}, tabletID)

	_, err = table.TabletForRow("2030-01-01", "x")
	require.ErrorIs(t, err, ErrPartitionNotFound)
}
