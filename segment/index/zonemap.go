// Copyright 2025 The OLAPStore Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package index

import (
	"bytes"
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/olapstore/olapstore/segment/value"
)

// ZoneMapEntry records the min/max SortKey and null presence for one page,
// letting a scan skip pages that cannot satisfy a predicate.
type ZoneMapEntry struct {
	Min     []byte
	Max     []byte
	HasNull bool
}

// ZoneMapIndex is one ZoneMapEntry per page, in page order.
type ZoneMapIndex struct {
	Entries []ZoneMapEntry
}

// AddPage computes and appends the zone map entry for a page's values.
func (z *ZoneMapIndex) AddPage(values []value.Value) {
	var entry ZoneMapEntry
	first := true
	for _, v := range values {
		if v.IsNull() {
			entry.HasNull = true
			continue
		}
		k := v.SortKey()
		if first {
			entry.Min = append([]byte(nil), k...)
			entry.Max = append([]byte(nil), k...)
			first = false
			continue
		}
		if bytes.Compare(k, entry.Min) < 0 {
			entry.Min = append([]byte(nil), k...)
		}
		if bytes.Compare(k, entry.Max) > 0 {
			entry.Max = append([]byte(nil), k...)
		}
	}
	z.Entries = append(z.Entries, entry)
}

// MayContain reports whether page i's range could contain key. A page with
// no non-null values (Min/Max nil) never matches, whatever its HasNull
// flag says.
func (z *ZoneMapIndex) MayContain(i int, key []byte) bool {
	if i < 0 || i >= len(z.Entries) {
		return false
	}
	e := z.Entries[i]
	if e.Min == nil && e.Max == nil {
		return false
	}
	return bytes.Compare(key, e.Min) >= 0 && bytes.Compare(key, e.Max) <= 0
}

// Serialize writes u32 count followed by count ×
// (u8 has_null, u32 min_len, min, u32 max_len, max).
func (z *ZoneMapIndex) Serialize() []byte {
	var out []byte
	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], uint32(len(z.Entries)))
	out = append(out, u32[:]...)
	for _, e := range z.Entries {
		if e.HasNull {
			out = append(out, 1)
		} else {
			out = append(out, 0)
		}
		binary.LittleEndian.PutUint32(u32[:], uint32(len(e.Min)))
		out = append(out, u32[:]...)
		out = append(out, e.Min...)
		binary.LittleEndian.PutUint32(u32[:], uint32(len(e.Max)))
		out = append(out, u32[:]...)
		out = append(out, e.Max...)
	}
	return out
}

// DeserializeZoneMapIndex parses the format written by Serialize.
func DeserializeZoneMapIndex(data []byte) (*ZoneMapIndex, error) {
	if len(data) < 4 {
		return nil, errors.Wrap(value.ErrSegmentIO, "zone map: truncated header")
	}
	count := int(binary.LittleEndian.Uint32(data[0:4]))
	pos := 4
	entries := make([]ZoneMapEntry, 0, count)
	readBlob := func() ([]byte, error) {
		if pos+4 > len(data) {
			return nil, errors.Wrap(value.ErrSegmentIO, "zone map: truncated length")
		}
		n := int(binary.LittleEndian.Uint32(data[pos:]))
		pos += 4
		if pos+n > len(data) {
			return nil, errors.Wrap(value.ErrSegmentIO, "zone map: truncated blob")
		}
		b := data[pos : pos+n]
		pos += n
		if n == 0 {
			return nil, nil
		}
		return append([]byte(nil), b...), nil
	}
	for i := 0; i < count; i++ {
		if pos+1 > len(data) {
			return nil, errors.Wrap(value.ErrSegmentIO, "zone map: truncated entry")
		}
		hasNull := data[pos] == 1
		pos++
		min, err := readBlob()
		if err != nil {
			return nil, err
		}
		max, err := readBlob()
		if err != nil {
			return nil, err
		}
		entries = append(entries, ZoneMapEntry{Min: min, Max: max, HasNull: hasNull})
	}
	return &ZoneMapIndex{Entries: entries}, nil
}
