// Copyright 2025 The OLAPStore Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package partition

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// TabletID mirrors olapstore.TabletID without importing the root package
// (which itself depends on partition), avoiding an import cycle.
type TabletID = uint64

// PartitionID mirrors olapstore.PartitionID.
type PartitionID = uint64

// ErrPartitionNotFound is returned by PartitionInfo.FindPartition when a
// key or its partition id has no match. MaterializedIndex lookups report a
// miss with a false bool instead.
var ErrPartitionNotFound = errors.New("olapstore: partition not found")

// MaterializedIndex holds, for one index (base or a rollup) within a
// partition, the TabletID backing each bucket. len(Tablets) == NumBuckets.
type MaterializedIndex struct {
	IndexID uint64
	Tablets []TabletID
}

// NewMaterializedIndex builds a materialized index over tablets, one per
// bucket in bucket order.
func NewMaterializedIndex(indexID uint64, tablets []TabletID) MaterializedIndex {
	return MaterializedIndex{IndexID: indexID, Tablets: tablets}
}

// TabletForBucket returns the tablet backing bucket, or (0, false) if
// bucket is out of range.
func (m MaterializedIndex) TabletForBucket(bucket uint32) (TabletID, bool) {
	if int(bucket) >= len(m.Tablets) {
		return 0, false
	}
	return m.Tablets[bucket], true
}

// Partition is one partition's tablet topology: a base index, any rollup
// indexes, and the bucketing policy used to route rows within it.
type Partition struct {
	PartitionID    PartitionID
	BaseIndex      MaterializedIndex
	RollupIndexes  []MaterializedIndex
	Bucket         BucketType
	VisibleVersion int64
}

// NewPartition starts a partition at visible version 0 with no rollups.
func NewPartition(id PartitionID, base MaterializedIndex, bucket BucketType) *Partition {
	return &Partition{PartitionID: id, BaseIndex: base, Bucket: bucket}
}

// TabletForKey routes sortKey to a TabletID via the partition's bucket
// policy and base index.
func (p *Partition) TabletForKey(sortKey string) (TabletID, bool) {
	bucket := p.Bucket.BucketForKey(sortKey)
	return p.BaseIndex.TabletForBucket(bucket)
}

// RangeBound is a RANGE partition boundary, compared as a string.
type RangeBound string

// MaxRangeBound returns an upper bound that exceeds any real data — used
// as the open-ended final range partition's boundary.
func MaxRangeBound() RangeBound {
	return RangeBound(strings.Repeat("￿", 64))
}

// RangePartitionItem is one RANGE partition's exclusive upper bound: a key
// belongs to this partition iff key < UpperBound.
type RangePartitionItem struct {
	PartitionID PartitionID
	UpperBound  RangeBound
}

// Policy selects how PartitionInfo.FindPartition resolves a key to a
// PartitionID.
type Policy int

const (
	PolicyRange Policy = iota
	PolicyList
	PolicyUnpartitioned
)

// PartitionInfo is a table's partitioning configuration: the partition
// columns, the routing policy, and the concrete set of partitions.
//
// RangePartitionItem ordering is taken as given — PartitionInfo does not
// validate that items are sorted by UpperBound. An unsorted item list
// silently yields a wrong-but-defined routing decision rather than an
// error.
type PartitionInfo struct {
	PartitionColumns []string
	Policy           Policy
	RangeItems       []RangePartitionItem
	ListMapping      map[string]PartitionID
	UnpartitionedID  PartitionID
	Partitions       map[PartitionID]*Partition
}

// NewRangePartitionInfo builds a RANGE-partitioned PartitionInfo.
func NewRangePartitionInfo(columns []string, items []RangePartitionItem, partitions map[PartitionID]*Partition) *PartitionInfo {
	return &PartitionInfo{
		PartitionColumns: columns,
		Policy:           PolicyRange,
		RangeItems:       items,
		Partitions:       partitions,
	}
}

// NewListPartitionInfo builds a LIST-partitioned PartitionInfo.
func NewListPartitionInfo(columns []string, mapping map[string]PartitionID, partitions map[PartitionID]*Partition) *PartitionInfo {
	return &PartitionInfo{
		PartitionColumns: columns,
		Policy:           PolicyList,
		ListMapping:      mapping,
		Partitions:       partitions,
	}
}

// NewUnpartitionedInfo builds a PartitionInfo with a single partition and
// no partition columns.
func NewUnpartitionedInfo(partitionID PartitionID, p *Partition) *PartitionInfo {
	return &PartitionInfo{
		Policy:          PolicyUnpartitioned,
		UnpartitionedID: partitionID,
		Partitions:      map[PartitionID]*Partition{partitionID: p},
	}
}

// FindPartition resolves key to its Partition per the configured policy.
func (pi *PartitionInfo) FindPartition(key string) (*Partition, error) {
	var pid PartitionID
	switch pi.Policy {
	case PolicyUnpartitioned:
		pid = pi.UnpartitionedID
	case PolicyList:
		id, ok := pi.ListMapping[key]
		if !ok {
			return nil, errors.Wrapf(ErrPartitionNotFound, "key=%s", key)
		}
		pid = id
	case PolicyRange:
		found := false
		for _, item := range pi.RangeItems {
			if RangeBound(key) < item.UpperBound {
				pid = item.PartitionID
				found = true
				break
			}
		}
		if !found {
			return nil, errors.Wrapf(ErrPartitionNotFound, "key=%s", key)
		}
	default:
		return nil, errors.Wrapf(ErrPartitionNotFound, "key=%s", key)
	}

	p, ok := pi.Partitions[pid]
	if !ok {
		return nil, errors.Wrapf(ErrPartitionNotFound, "pid=%d", pid)
	}
	return p, nil
}
