// Copyright 2025 The OLAPStore Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package olapstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func schemaFor(t *testing.T) TabletSchema {
	t.Helper()
	return NewTabletSchema(KeysDuplicate, []ColumnSchema{
		KeyColumn(0, "id", ColumnInt64),
	})
}

// TestVersionCaptureScenarioS2S3 covers S2 (capture) and S3 (hole
// detection).
func TestVersionCaptureScenarioS2S3(t *testing.T) {
	meta := NewTabletMeta(1, 1, schemaFor(t))
	tablet := NewTablet(meta)

	rs1 := NewRowsetMeta(1, 1, 1, Version{Start: 0, End: 1}, 100, 10)
	rs2 := NewRowsetMeta(2, 1, 1, Version{Start: 2, End: 3}, 100, 10)
	require.NoError(t, tablet.AddRowset(rs1))
	require.NoError(t, tablet.AddRowset(rs2))

	covered, err := tablet.CaptureConsistentVersions(0, 3)
	require.NoError(t, err)
	require.Len(t, covered, 2)
	require.Equal(t, RowsetID(1), covered[0].RowsetID)
	require.Equal(t, RowsetID(2), covered[1].RowsetID)
	require.EqualValues(t, 3, tablet.MaxVersion())

	_, err = tablet.CaptureConsistentVersions(0, 100)
	require.ErrorIs(t, err, ErrMissingVersions)
}

func TestAddRowsetDuplicateVersionExists(t *testing.T) {
	meta := NewTabletMeta(1, 1, schemaFor(t))
	tablet := NewTablet(meta)
	rs := NewRowsetMeta(1, 1, 1, PointVersion(0), 10, 1)
	require.NoError(t, tablet.AddRowset(rs))
	err := tablet.AddRowset(rs)
	require.ErrorIs(t, err, ErrVersionExists)
}

func TestMarkRowsetStaleRemovesFromGraph(t *testing.T) {
	meta := NewTabletMeta(1, 1, schemaFor(t))
	tablet := NewTablet(meta)
	rs := NewRowsetMeta(1, 1, 1, Version{Start: 0, End: 5}, 10, 1)
	require.NoError(t, tablet.AddRowset(rs))

	tablet.MarkRowsetStale(1)
	_, err := tablet.CaptureConsistentVersions(0, 5)
	require.ErrorIs(t, err, ErrMissingVersions)

	// Stale on a missing rowset id is a silent no-op.
	tablet.MarkRowsetStale(999)
}

func TestComputeCompactionScoreCountsVisibleOnly(t *testing.T) {
	meta := NewTabletMeta(1, 1, schemaFor(t))
	tablet := NewTablet(meta)
	for i := int64(0); i < 7; i++ {
		rs := NewRowsetMeta(RowsetID(i+1), 1, 1, Version{Start: i, End: i}, 10, 1)
		require.NoError(t, tablet.AddRowset(rs))
	}
	require.Equal(t, float64(7), tablet.ComputeCompactionScore(CompactionCumulative))
}

func TestVersionGraphDescendingPreference(t *testing.T) {
	g := NewVersionGraph()
	// Two ways to reach 3 from 0: [0,1]+[2,3] or [0,3] directly. Descending
	// edge order should prefer the single wider edge first.
	g.AddEdge(Version{Start: 0, End: 3})
	g.AddEdge(Version{Start: 0, End: 1})
	g.AddEdge(Version{Start: 2, End: 3})

	path := g.FindCoveringPath(0, 3)
	require.Len(t, path, 1)
	require.Equal(t, Version{Start: 0, End: 3}, path[0])
}

func TestVersionGraphNoPath(t *testing.T) {
	g := NewVersionGraph()
	g.AddEdge(Version{Start: 0, End: 1})
	require.Nil(t, g.FindCoveringPath(0, 10))
	require.True(t, g.HasVersionHoles(0, 10))
}

// TestTabletManagerLifecycle is invariant 8: create then get returns the
// same handle; after drop, get fails.
func TestTabletManagerLifecycle(t *testing.T) {
	tm := NewTabletManager()
	meta := NewTabletMeta(5, 1, schemaFor(t))
	created, err := tm.CreateTablet(meta)
	require.NoError(t, err)

	got, err := tm.GetTablet(5, meta.SchemaHash)
	require.NoError(t, err)
	require.Same(t, created, got)

	require.NoError(t, tm.DropTablet(5, meta.SchemaHash))
	_, err = tm.GetTablet(5, meta.SchemaHash)
	require.ErrorIs(t, err, ErrTabletNotFound)
}

func TestTabletManagerShardsByModulo(t *testing.T) {
	tm := NewTabletManager()
	// Tablet ids 1 and 65 land on the same shard (1 % 64 == 65 % 64) but
	// must not collide in the map.
	m1 := NewTabletMeta(1, 1, schemaFor(t))
	m2 := NewTabletMeta(65, 1, schemaFor(t))
	_, err := tm.CreateTablet(m1)
	require.NoError(t, err)
	_, err = tm.CreateTablet(m2)
	require.NoError(t, err)
	require.Equal(t, 2, tm.TabletCount())
}

// TestCompactionRankingScenarioS5 is scenario S5: 7 rowsets on one tablet,
// 0 on another; the busy tablet ranks first.
func TestCompactionRankingScenarioS5(t *testing.T) {
	tm := NewTabletManager()
	busy := NewTabletMeta(1, 1, schemaFor(t))
	idle := NewTabletMeta(2, 1, schemaFor(t))
	busyHandle, err := tm.CreateTablet(busy)
	require.NoError(t, err)
	_, err = tm.CreateTablet(idle)
	require.NoError(t, err)

	for i := int64(0); i < 7; i++ {
		rs := NewRowsetMeta(RowsetID(i+1), 1, 1, Version{Start: i, End: i}, 10, 1)
		require.NoError(t, busyHandle.AddRowset(rs))
	}

	candidates, err := tm.CollectCompactionCandidates(context.Background(), CompactionCumulative)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(candidates), 2)
	require.EqualValues(t, 1, candidates[0].TabletID)
	require.Greater(t, candidates[0].Score, candidates[1].Score)
}
