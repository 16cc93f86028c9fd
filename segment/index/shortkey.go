// Copyright 2025 The OLAPStore Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package index

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/olapstore/olapstore/segment/value"
)

// ShortKeyInterval is the row spacing of short-key sparse index entries.
const ShortKeyInterval = 1024

// ShortKeyEntry is one sparse index sample: the composite key of the row
// at RowID, built from the tablet's designated key columns.
type ShortKeyEntry struct {
	Key   []byte
	RowID uint32
}

// ShortKeyIndex is a sorted-by-RowID sample of every ShortKeyInterval-th
// row's composite key, used to binary-search a coarse starting row for a
// point or range lookup.
type ShortKeyIndex struct {
	Entries []ShortKeyEntry
}

// Builder accumulates rows and samples every ShortKeyInterval-th one.
//
// The caller passes only the row's key columns (resolved against the
// tablet schema's explicit key-column id list), never "every column".
type Builder struct {
	rowCount uint32
	entries  []ShortKeyEntry
}

// NewBuilder starts an empty short-key builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// MaybeAdd offers one row's key-column values to the builder, sampling it
// if it lands on a ShortKeyInterval boundary. keyValues must be in the
// tablet schema's key-column order.
func (b *Builder) MaybeAdd(rowID uint32, keyValues []value.Value) {
	if rowID%ShortKeyInterval == 0 {
		var key []byte
		for _, v := range keyValues {
			key = append(key, v.SortKey()...)
		}
		b.entries = append(b.entries, ShortKeyEntry{Key: key, RowID: rowID})
	}
	b.rowCount++
}

// Build finalizes the sampled entries into a ShortKeyIndex.
func (b *Builder) Build() *ShortKeyIndex {
	return &ShortKeyIndex{Entries: b.entries}
}

// Seek returns the largest sampled RowID whose key is <= key, i.e. the
// start of the block that might contain key. Returns (0, false) if the
// index is empty or key sorts before every sample.
func (idx *ShortKeyIndex) Seek(key []byte) (uint32, bool) {
	n := len(idx.Entries)
	if n == 0 {
		return 0, false
	}
	i := sort.Search(n, func(i int) bool {
		return bytes.Compare(idx.Entries[i].Key, key) > 0
	})
	if i == 0 {
		return 0, false
	}
	return idx.Entries[i-1].RowID, true
}

// Serialize writes u32 count followed by count × (u32 key_len, key, u32 row_id).
func (idx *ShortKeyIndex) Serialize() []byte {
	var out []byte
	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], uint32(len(idx.Entries)))
	out = append(out, u32[:]...)
	for _, e := range idx.Entries {
		binary.LittleEndian.PutUint32(u32[:], uint32(len(e.Key)))
		out = append(out, u32[:]...)
		out = append(out, e.Key...)
		binary.LittleEndian.PutUint32(u32[:], e.RowID)
		out = append(out, u32[:]...)
	}
	return out
}

// DeserializeShortKeyIndex parses the format written by Serialize.
func DeserializeShortKeyIndex(data []byte) (*ShortKeyIndex, error) {
	if len(data) < 4 {
		return nil, errors.Wrap(value.ErrSegmentIO, "short key index: truncated header")
	}
	count := int(binary.LittleEndian.Uint32(data[0:4]))
	pos := 4
	entries := make([]ShortKeyEntry, 0, count)
	for i := 0; i < count; i++ {
		if pos+4 > len(data) {
			return nil, errors.Wrap(value.ErrSegmentIO, "short key index: truncated key length")
		}
		klen := int(binary.LittleEndian.Uint32(data[pos:]))
		pos += 4
		if pos+klen+4 > len(data) {
			return nil, errors.Wrap(value.ErrSegmentIO, "short key index: truncated entry")
		}
		key := append([]byte(nil), data[pos:pos+klen]...)
		pos += klen
		rowID := binary.LittleEndian.Uint32(data[pos:])
		pos += 4
		entries = append(entries, ShortKeyEntry{Key: key, RowID: rowID})
	}
	return &ShortKeyIndex{Entries: entries}, nil
}
