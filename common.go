// Copyright 2025 The OLAPStore Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package olapstore

import "fmt"

// ID type aliases used throughout the catalog, tablet, and partition layers.
type (
	TabletID    = uint64
	PartitionID = uint64
	SchemaHash  = uint32
	DbID        = uint64
	TableID     = uint64
	RowsetID    = uint64
)

// Version is the closed interval [Start,End] of rowset versions a rowset
// covers. A point version has Start == End.
type Version struct {
	Start int64
	End   int64
}

// PointVersion returns the degenerate single-version interval [v,v].
func PointVersion(v int64) Version { return Version{Start: v, End: v} }

func (v Version) String() string { return fmt.Sprintf("[%d,%d]", v.Start, v.End) }

// Less orders versions by Start, then by span length — the total order
// assumed by range-partition-style scans over a rowset's version history.
func (v Version) Less(o Version) bool {
	if v.Start != o.Start {
		return v.Start < o.Start
	}
	return (v.End - v.Start) < (o.End - o.Start)
}

// KeysType is the tablet's row model.
type KeysType int

const (
	// KeysAggregate merges rows sharing a key via each value column's
	// AggregateType (Sum/Max/Min/Replace).
	KeysAggregate KeysType = iota
	// KeysUnique keeps only the latest row for a given key.
	KeysUnique
	// KeysDuplicate keeps every row (no merging).
	KeysDuplicate
)

func (k KeysType) String() string {
	switch k {
	case KeysAggregate:
		return "Aggregate"
	case KeysUnique:
		return "Unique"
	case KeysDuplicate:
		return "Duplicate"
	default:
		return "Unknown"
	}
}

// ColumnType is the logical (schema-level) type of a column, as distinct
// from the physical segment.FieldType it is stored as.
type ColumnType int

const (
	ColumnInt8 ColumnType = iota
	ColumnInt16
	ColumnInt32
	ColumnInt64
	ColumnFloat32
	ColumnFloat64
	ColumnVarchar
	ColumnDate
)

// AggregateType is the merge function applied to a value column under the
// Aggregate keys model. Reserved for a future read path — this spec's core
// does not implement row merging itself.
type AggregateType int

const (
	AggregateNone AggregateType = iota
	AggregateSum
	AggregateMax
	AggregateMin
	AggregateReplace
)

// CompactionType selects a compaction scoring policy. Both variants
// currently map to the same score (count of Visible rowsets); the
// parameter is reserved so a future Base/Cumulative policy split does not
// require an API change.
type CompactionType int

const (
	CompactionBase CompactionType = iota
	CompactionCumulative
)
