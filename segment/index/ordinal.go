// Copyright 2025 The OLAPStore Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package index implements the four segment column indexes: the ordinal
// index (row id → page offset), the zone map (per-page min/max), the
// short-key sparse index (every 1024th row's composite key), and the
// bloom filter (approximate membership over a column's values).
package index

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/olapstore/olapstore/segment/value"
)

// OrdinalEntry records the offset of the page whose first row id is
// FirstRowID. Inside a ColumnWriter the offset is relative to the column's
// own page stream; Writer.Finalize turns it into an absolute file offset
// before serializing. Offsets are never row_id*1024-derived.
type OrdinalEntry struct {
	FirstRowID uint32
	Offset     uint64
}

// OrdinalIndex maps row ids to the page containing them via a sorted list
// of (first_row_id, offset) entries, one per page.
type OrdinalIndex struct {
	Entries []OrdinalEntry
}

// Add appends the next page's entry. Entries must be added in row order.
func (idx *OrdinalIndex) Add(firstRowID uint32, offset uint64) {
	idx.Entries = append(idx.Entries, OrdinalEntry{FirstRowID: firstRowID, Offset: offset})
}

// PageRange returns the half-open byte range [start, end) of the page
// holding entry i, where end is either the next entry's offset or
// columnEnd (the true end of the column's own data region — its
// DataOffset+DataSize, not its ordinal index offset) for the last entry.
func (idx *OrdinalIndex) PageRange(i int, columnEnd uint64) (start, end uint64, err error) {
	if i < 0 || i >= len(idx.Entries) {
		return 0, 0, errors.Wrap(value.ErrSegmentIO, "ordinal index: entry out of range")
	}
	start = idx.Entries[i].Offset
	if i+1 < len(idx.Entries) {
		end = idx.Entries[i+1].Offset
	} else {
		end = columnEnd
	}
	return start, end, nil
}

// Lookup returns the index of the page that contains rowID, via binary
// search over FirstRowID.
func (idx *OrdinalIndex) Lookup(rowID uint32) (int, bool) {
	if len(idx.Entries) == 0 {
		return 0, false
	}
	lo, hi := 0, len(idx.Entries)-1
	best := -1
	for lo <= hi {
		mid := (lo + hi) / 2
		if idx.Entries[mid].FirstRowID <= rowID {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}

// Serialize writes the index as u32 count followed by count ×
// (u32 first_row_id, u64 offset).
func (idx *OrdinalIndex) Serialize() []byte {
	out := make([]byte, 0, 4+len(idx.Entries)*12)
	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], uint32(len(idx.Entries)))
	out = append(out, u32[:]...)
	for _, e := range idx.Entries {
		binary.LittleEndian.PutUint32(u32[:], e.FirstRowID)
		out = append(out, u32[:]...)
		var u64 [8]byte
		binary.LittleEndian.PutUint64(u64[:], e.Offset)
		out = append(out, u64[:]...)
	}
	return out
}

// DeserializeOrdinalIndex parses the format written by Serialize.
func DeserializeOrdinalIndex(data []byte) (*OrdinalIndex, error) {
	if len(data) < 4 {
		return nil, errors.Wrap(value.ErrSegmentIO, "ordinal index: truncated header")
	}
	count := int(binary.LittleEndian.Uint32(data[0:4]))
	pos := 4
	entries := make([]OrdinalEntry, 0, count)
	for i := 0; i < count; i++ {
		if pos+12 > len(data) {
			return nil, errors.Wrap(value.ErrSegmentIO, "ordinal index: truncated entry")
		}
		firstRowID := binary.LittleEndian.Uint32(data[pos:])
		offset := binary.LittleEndian.Uint64(data[pos+4:])
		entries = append(entries, OrdinalEntry{FirstRowID: firstRowID, Offset: offset})
		pos += 12
	}
	return &OrdinalIndex{Entries: entries}, nil
}
