// Copyright 2025 The OLAPStore Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package segment

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/olapstore/olapstore/segment/index"
	"github.com/olapstore/olapstore/segment/value"
)

// Writer accumulates rows column-by-column and serializes them into one
// Segment V2 file: data region, index region, then footer.
type Writer struct {
	schema     []value.ColumnMeta
	colWriters []*ColumnWriter
	skBuilder  *index.Builder
	numRows    uint32
	keyColIdx  []int
}

// NewWriter starts a segment writer over schema, sampling the short-key
// index from the columns whose id appears in keyColumnIDs, in the order
// given. There is no implicit "every column is a key" fallback.
func NewWriter(schema []value.ColumnMeta, keyColumnIDs []uint32) *Writer {
	colWriters := make([]*ColumnWriter, len(schema))
	for i, m := range schema {
		colWriters[i] = NewColumnWriter(m)
	}
	byID := make(map[uint32]int, len(schema))
	for i, m := range schema {
		byID[m.ColumnID] = i
	}
	keyColIdx := make([]int, 0, len(keyColumnIDs))
	for _, id := range keyColumnIDs {
		if i, ok := byID[id]; ok {
			keyColIdx = append(keyColIdx, i)
		}
	}
	return &Writer{
		schema:     schema,
		colWriters: colWriters,
		skBuilder:  index.NewBuilder(),
		keyColIdx:  keyColIdx,
	}
}

// AppendRow appends one row; len(row) must equal len(schema).
func (w *Writer) AppendRow(row []value.Value) error {
	if len(row) != len(w.colWriters) {
		return errors.Wrapf(value.ErrSchemaMismatch, "row has %d values, schema has %d columns", len(row), len(w.colWriters))
	}

	keyVals := make([]value.Value, 0, len(w.keyColIdx))
	for _, i := range w.keyColIdx {
		keyVals = append(keyVals, row[i])
	}
	w.skBuilder.MaybeAdd(w.numRows, keyVals)

	for i, cw := range w.colWriters {
		if err := cw.AddValue(row[i]); err != nil {
			return err
		}
	}
	w.numRows++
	return nil
}

// NumRows returns the number of rows appended so far.
func (w *Writer) NumRows() uint32 { return w.numRows }

// Schema returns the column schema this writer was created with.
func (w *Writer) Schema() []value.ColumnMeta { return w.schema }

// Finalize writes the complete segment file to dst and returns its total
// byte length.
func (w *Writer) Finalize(dst io.Writer) (int64, error) {
	var pos int64

	if _, err := dst.Write(Magic[:]); err != nil {
		return 0, errors.Wrap(value.ErrSegmentIO, err.Error())
	}
	var verBuf [4]byte
	binary.LittleEndian.PutUint32(verBuf[:], Version)
	if _, err := dst.Write(verBuf[:]); err != nil {
		return 0, errors.Wrap(value.ErrSegmentIO, err.Error())
	}
	pos += 12

	numCols := len(w.colWriters)
	ordinals := make([]*index.OrdinalIndex, numCols)
	zoneMaps := make([]*index.ZoneMapIndex, numCols)
	blooms := make([]*index.BloomFilter, numCols)
	dataOffsets := make([]uint64, numCols)
	dataSizes := make([]uint64, numCols)

	for i, cw := range w.colWriters {
		ordinals[i] = &cw.Ordinal
		zoneMaps[i] = &cw.ZoneMap
		blooms[i] = cw.Bloom
		dataOffsets[i] = uint64(pos)

		data, err := cw.Finalize()
		if err != nil {
			return 0, err
		}
		if _, err := dst.Write(data); err != nil {
			return 0, errors.Wrap(value.ErrSegmentIO, err.Error())
		}
		dataSizes[i] = uint64(len(data))
		pos += int64(len(data))

		// ColumnWriter.Ordinal records offsets relative to this column's
		// own page stream (starting at 0); bias them by the column's
		// base offset in the file now that it's known, so the reader can
		// treat every ordinal entry as an absolute file offset.
		for j := range ordinals[i].Entries {
			ordinals[i].Entries[j].Offset += dataOffsets[i]
		}
	}

	colMetas := make([]ColumnIndexMeta, numCols)
	for i := 0; i < numCols; i++ {
		ordBytes := ordinals[i].Serialize()
		zmBytes := zoneMaps[i].Serialize()
		bfBytes := blooms[i].Serialize()

		cm := ColumnIndexMeta{
			DataOffset:    dataOffsets[i],
			DataSize:      dataSizes[i],
			OrdinalOffset: uint64(pos),
			OrdinalSize:   uint64(len(ordBytes)),
			ZoneMapOffset: uint64(pos) + uint64(len(ordBytes)),
			ZoneMapSize:   uint64(len(zmBytes)),
			BloomOffset:   uint64(pos) + uint64(len(ordBytes)) + uint64(len(zmBytes)),
			BloomSize:     uint64(len(bfBytes)),
		}
		colMetas[i] = cm

		for _, b := range [][]byte{ordBytes, zmBytes, bfBytes} {
			if _, err := dst.Write(b); err != nil {
				return 0, errors.Wrap(value.ErrSegmentIO, err.Error())
			}
			pos += int64(len(b))
		}
	}

	skBytes := w.skBuilder.Build().Serialize()
	skOffset := pos
	if _, err := dst.Write(skBytes); err != nil {
		return 0, errors.Wrap(value.ErrSegmentIO, err.Error())
	}
	pos += int64(len(skBytes))

	footer := &Footer{
		NumRows:        w.numRows,
		NumColumns:     uint32(numCols),
		ShortKeyOffset: uint64(skOffset),
		ShortKeySize:   uint64(len(skBytes)),
		ColumnMetas:    colMetas,
	}
	footerBytes := footer.serialize()
	footerCRC := crc32.ChecksumIEEE(footerBytes)
	footerLen := uint32(len(footerBytes))

	if _, err := dst.Write(footerBytes); err != nil {
		return 0, errors.Wrap(value.ErrSegmentIO, err.Error())
	}
	var trailer bytes.Buffer
	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], footerCRC)
	trailer.Write(u32[:])
	binary.LittleEndian.PutUint32(u32[:], footerLen)
	trailer.Write(u32[:])
	trailer.Write(Magic[:])
	if _, err := dst.Write(trailer.Bytes()); err != nil {
		return 0, errors.Wrap(value.ErrSegmentIO, err.Error())
	}
	pos += int64(len(footerBytes)) + 16

	return pos, nil
}
