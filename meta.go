// Copyright 2025 The OLAPStore Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package olapstore

import "fmt"

// ColumnSchema describes one logical column of a tablet's schema.
type ColumnSchema struct {
	ColumnID      uint32
	Name          string
	ColumnType    ColumnType
	IsKey         bool
	IsNullable    bool
	AggregateType AggregateType
	// Length is the max byte length for ColumnVarchar; unused otherwise.
	Length uint32
}

// KeyColumn builds a non-nullable key column.
func KeyColumn(id uint32, name string, ct ColumnType) ColumnSchema {
	return ColumnSchema{ColumnID: id, Name: name, ColumnType: ct, IsKey: true}
}

// ValueColumn builds a nullable value column aggregated via agg.
func ValueColumn(id uint32, name string, ct ColumnType, agg AggregateType) ColumnSchema {
	return ColumnSchema{ColumnID: id, Name: name, ColumnType: ct, IsNullable: true, AggregateType: agg}
}

// VarcharColumn builds a VARCHAR column of at most maxLen bytes.
func VarcharColumn(id uint32, name string, maxLen uint32, isKey bool) ColumnSchema {
	return ColumnSchema{
		ColumnID:   id,
		Name:       name,
		ColumnType: ColumnVarchar,
		IsKey:      isKey,
		IsNullable: !isKey,
		Length:     maxLen,
	}
}

// TabletSchema is a tablet's full schema: row model, column list, and a
// hash identifying this exact schema shape.
type TabletSchema struct {
	SchemaVersion      uint32
	KeysType           KeysType
	Columns            []ColumnSchema
	SchemaHash         SchemaHash
	NumRowsPerRowBlock uint32
}

// NewTabletSchema builds a schema, deriving SchemaHash as the XOR of each
// column's id times the Knuth multiplicative constant 2654435761 — a
// cheap, collision-tolerant fingerprint, not a cryptographic hash.
func NewTabletSchema(keysType KeysType, columns []ColumnSchema) TabletSchema {
	var hash uint32
	for _, c := range columns {
		hash ^= c.ColumnID * 2654435761
	}
	return TabletSchema{
		SchemaVersion:      1,
		KeysType:           keysType,
		Columns:            columns,
		SchemaHash:         hash,
		NumRowsPerRowBlock: 1024,
	}
}

// KeyColumns returns the schema's key columns, in schema order.
func (s TabletSchema) KeyColumns() []ColumnSchema {
	var out []ColumnSchema
	for _, c := range s.Columns {
		if c.IsKey {
			out = append(out, c)
		}
	}
	return out
}

// KeyColumnIDs returns the ids of KeyColumns, in schema order — the mask
// segment.Writer uses to build the short-key sparse index.
func (s TabletSchema) KeyColumnIDs() []uint32 {
	var out []uint32
	for _, c := range s.Columns {
		if c.IsKey {
			out = append(out, c.ColumnID)
		}
	}
	return out
}

// ValueColumns returns the schema's non-key columns, in schema order.
func (s TabletSchema) ValueColumns() []ColumnSchema {
	var out []ColumnSchema
	for _, c := range s.Columns {
		if !c.IsKey {
			out = append(out, c)
		}
	}
	return out
}

// NumColumns returns len(Columns).
func (s TabletSchema) NumColumns() int { return len(s.Columns) }

// RowsetState is a rowset's lifecycle stage.
type RowsetState int

const (
	RowsetPrepared RowsetState = iota
	RowsetCommitted
	RowsetVisible
	RowsetStale
)

func (s RowsetState) String() string {
	switch s {
	case RowsetPrepared:
		return "Prepared"
	case RowsetCommitted:
		return "Committed"
	case RowsetVisible:
		return "Visible"
	case RowsetStale:
		return "Stale"
	default:
		return "Unknown"
	}
}

// RowsetMeta is one rowset's persisted metadata: the version range it
// covers, its size, and the segment files holding its data.
type RowsetMeta struct {
	RowsetID     RowsetID
	TabletID     TabletID
	PartitionID  PartitionID
	Version      Version
	NumRows      uint64
	DataDiskSize uint64
	NumSegments  uint32
	State        RowsetState
	SegmentPaths []string
}

// NewRowsetMeta builds a Prepared rowset, splitting numRows into
// ceil(numRows/1_000_000) segments. The ceiling form avoids allocating an
// extra empty segment at exact multiples of 1e6.
func NewRowsetMeta(rowsetID RowsetID, tabletID TabletID, partitionID PartitionID, version Version, numRows, dataDiskSize uint64) RowsetMeta {
	const shardRows = 1_000_000
	numSegments := uint32((numRows + shardRows - 1) / shardRows)
	if numSegments == 0 {
		numSegments = 1
	}
	paths := make([]string, numSegments)
	for i := uint32(0); i < numSegments; i++ {
		paths[i] = fmt.Sprintf("%d_%d_%d.seg", tabletID, rowsetID, i)
	}
	return RowsetMeta{
		RowsetID:     rowsetID,
		TabletID:     tabletID,
		PartitionID:  partitionID,
		Version:      version,
		NumRows:      numRows,
		DataDiskSize: dataDiskSize,
		NumSegments:  numSegments,
		State:        RowsetPrepared,
		SegmentPaths: paths,
	}
}

// IsVisible reports whether the rowset is in the Visible state.
func (r *RowsetMeta) IsVisible() bool { return r.State == RowsetVisible }

// MarkStale transitions the rowset to Stale, typically after it has been
// superseded by a compaction.
func (r *RowsetMeta) MarkStale() { r.State = RowsetStale }

// TabletMeta is a tablet's full persisted state: its schema, its rowsets,
// and the bookkeeping compaction needs.
type TabletMeta struct {
	TabletID             TabletID
	PartitionID          PartitionID
	SchemaHash           SchemaHash
	Schema               TabletSchema
	Rowsets              map[RowsetID]*RowsetMeta
	CumulativeLayerPoint int64
	MaxVersion           int64
}

// NewTabletMeta builds an empty tablet at CumulativeLayerPoint/MaxVersion
// == -1 (no rowsets published yet).
func NewTabletMeta(tabletID TabletID, partitionID PartitionID, schema TabletSchema) *TabletMeta {
	return &TabletMeta{
		TabletID:             tabletID,
		PartitionID:          partitionID,
		SchemaHash:           schema.SchemaHash,
		Schema:               schema,
		Rowsets:              make(map[RowsetID]*RowsetMeta),
		CumulativeLayerPoint: -1,
		MaxVersion:           -1,
	}
}
