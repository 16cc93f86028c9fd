// Copyright 2025 The OLAPStore Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package segment implements the OLAP Segment V2 file format: per-column
// data pages, ordinal/zone-map/bloom indexes, a short-key sparse index,
// and the self-describing footer tying them together.
package segment

import (
	"github.com/olapstore/olapstore/segment/index"
	"github.com/olapstore/olapstore/segment/page"
	"github.com/olapstore/olapstore/segment/value"
)

// ColumnWriter buffers one column's values into pages, building that
// column's ordinal index, zone map, and bloom filter as it goes.
//
// Ordinal offsets recorded here are relative to the start of this
// column's own page stream (they start at 0). Writer.Finalize biases
// every entry by the column's base offset in the file before
// serializing the index, since only Writer knows where each column's
// data region begins.
type ColumnWriter struct {
	Meta value.ColumnMeta

	pages      [][]byte
	current    *page.Builder
	nextRowID  uint32
	dataOffset uint64

	Ordinal index.OrdinalIndex
	ZoneMap index.ZoneMapIndex
	Bloom   *index.BloomFilter
}

// NewColumnWriter starts a column writer, sizing its bloom filter for an
// expected 4096 distinct values (matching the reference writer's default).
func NewColumnWriter(meta value.ColumnMeta) *ColumnWriter {
	return &ColumnWriter{
		Meta:    meta,
		current: page.NewBuilder(0, meta.Encoding, meta.Compression),
		Bloom:   index.NewBloomFilter(4096),
	}
}

// AddValue appends one value to the column.
func (cw *ColumnWriter) AddValue(v value.Value) error {
	cw.Bloom.Add(v.SortKey())

	cw.current.Add(v)
	cw.nextRowID++

	if cw.current.IsFull() {
		return cw.flushPage()
	}
	return nil
}

func (cw *ColumnWriter) flushPage() error {
	firstRowID := cw.current.FirstRowID
	cw.ZoneMap.AddPage(cw.current.Values())

	built, err := cw.current.Build()
	if err != nil {
		return err
	}
	cw.current = page.NewBuilder(cw.nextRowID, cw.Meta.Encoding, cw.Meta.Compression)

	cw.Ordinal.Add(firstRowID, cw.dataOffset)

	cw.pages = append(cw.pages, built)
	cw.dataOffset += uint64(len(built))
	return nil
}

// Finalize flushes any partial page and returns the column's concatenated
// page bytes.
func (cw *ColumnWriter) Finalize() ([]byte, error) {
	if !cw.current.IsEmpty() {
		if err := cw.flushPage(); err != nil {
			return nil, err
		}
	}
	var out []byte
	for _, p := range cw.pages {
		out = append(out, p...)
	}
	return out, nil
}

// NumRows returns the number of values written so far.
func (cw *ColumnWriter) NumRows() uint32 { return cw.nextRowID }
