// Copyright 2025 The OLAPStore Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package segment

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"

	"github.com/cockroachdb/errors"

	"github.com/olapstore/olapstore/segment/index"
	"github.com/olapstore/olapstore/segment/page"
	"github.com/olapstore/olapstore/segment/value"
)

// Reader parses a fully-materialized segment file and serves column and
// index reads against it.
type Reader struct {
	data   []byte
	footer *Footer
	schema []value.ColumnMeta
}

// Open parses data as a segment file written against schema. schema must
// match the writer's column order and field types; it is not itself
// persisted in the file — it comes from the tablet's catalog entry.
func Open(data []byte, schema []value.ColumnMeta) (*Reader, error) {
	n := len(data)
	if n < 20 || !bytes.Equal(data[n-8:], Magic[:]) {
		return nil, errors.Wrap(value.ErrSegmentIO, "invalid segment magic")
	}
	footerLen := int(binary.LittleEndian.Uint32(data[n-12 : n-8]))
	footerCRC := binary.LittleEndian.Uint32(data[n-16 : n-12])
	footerStart := n - 16 - footerLen
	if footerStart < 0 {
		return nil, errors.Wrap(value.ErrSegmentIO, "invalid footer length")
	}
	footerBytes := data[footerStart : footerStart+footerLen]

	if crc32.ChecksumIEEE(footerBytes) != footerCRC {
		return nil, value.ErrChecksumMismatch
	}

	footer, err := deserializeFooter(footerBytes)
	if err != nil {
		return nil, err
	}
	return &Reader{data: data, footer: footer, schema: schema}, nil
}

// NumRows returns the segment's row count.
func (r *Reader) NumRows() uint32 { return r.footer.NumRows }

// ReadColumn decodes every page of column colIdx and returns its values in
// row order.
//
// The ordinal index stores absolute file offsets directly, so this walks
// entries pairwise — [entries[k].Offset, entries[k+1].Offset) — using the
// column's own DataOffset+DataSize (the true end of its page stream) as
// the final entry's upper bound, instead of re-deriving page boundaries
// by probing row_id*1024 or bounding at OrdinalOffset (which is where this
// column's index data begins, after the whole data region, not where this
// column's data ends).
//
// A page that fails its CRC or decode is skipped rather than aborting the
// whole read, matching the reference reader's fault tolerance.
func (r *Reader) ReadColumn(colIdx int) ([]value.Value, error) {
	if colIdx < 0 || colIdx >= len(r.footer.ColumnMetas) {
		return nil, errors.Wrapf(value.ErrSegmentIO, "column %d not found", colIdx)
	}
	if colIdx >= len(r.schema) {
		return nil, errors.Wrap(value.ErrSchemaMismatch, "reader schema shorter than footer column count")
	}
	cm := r.footer.ColumnMetas[colIdx]
	meta := r.schema[colIdx]

	ordData, err := r.slice(cm.OrdinalOffset, cm.OrdinalSize)
	if err != nil {
		return nil, err
	}
	ord, err := index.DeserializeOrdinalIndex(ordData)
	if err != nil {
		return nil, err
	}

	columnEnd := cm.DataOffset + cm.DataSize
	var values []value.Value
	for i := range ord.Entries {
		start, end, err := ord.PageRange(i, columnEnd)
		if err != nil || start >= end || end > uint64(len(r.data)) {
			continue
		}
		decoded, err := page.Decode(r.data[start:end], meta.Encoding, meta.Compression, meta.FieldType)
		if err != nil {
			continue
		}
		values = append(values, decoded.Values...)
	}
	return values, nil
}

// ColumnZoneMap returns the deserialized zone map for colIdx, for
// predicate-based page pruning ahead of a ReadColumn call.
func (r *Reader) ColumnZoneMap(colIdx int) (*index.ZoneMapIndex, error) {
	if colIdx < 0 || colIdx >= len(r.footer.ColumnMetas) {
		return nil, errors.Wrapf(value.ErrSegmentIO, "column %d not found", colIdx)
	}
	cm := r.footer.ColumnMetas[colIdx]
	data, err := r.slice(cm.ZoneMapOffset, cm.ZoneMapSize)
	if err != nil {
		return nil, err
	}
	return index.DeserializeZoneMapIndex(data)
}

// ColumnBloomFilter returns the deserialized bloom filter for colIdx.
func (r *Reader) ColumnBloomFilter(colIdx int) (*index.BloomFilter, error) {
	if colIdx < 0 || colIdx >= len(r.footer.ColumnMetas) {
		return nil, errors.Wrapf(value.ErrSegmentIO, "column %d not found", colIdx)
	}
	cm := r.footer.ColumnMetas[colIdx]
	data, err := r.slice(cm.BloomOffset, cm.BloomSize)
	if err != nil {
		return nil, err
	}
	return index.DeserializeBloomFilter(data), nil
}

// ShortKeyIndex returns the segment's deserialized short-key sparse index.
func (r *Reader) ShortKeyIndex() (*index.ShortKeyIndex, error) {
	data, err := r.slice(r.footer.ShortKeyOffset, r.footer.ShortKeySize)
	if err != nil {
		return nil, err
	}
	return index.DeserializeShortKeyIndex(data)
}

func (r *Reader) slice(offset, size uint64) ([]byte, error) {
	end := offset + size
	if end > uint64(len(r.data)) || offset > end {
		return nil, errors.Wrap(value.ErrSegmentIO, "index region out of bounds")
	}
	return r.data[offset:end], nil
}
