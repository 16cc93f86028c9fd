// Copyright 2025 The OLAPStore Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package segment

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/olapstore/olapstore/segment/value"
)

// Magic identifies an OLAP Segment V2 file; Version is the format version
// this package reads and writes.
var Magic = [8]byte{'O', 'L', 'A', 'P', 'S', 'E', 'G', 0}

const Version uint32 = 2

// ColumnIndexMeta locates one column's data region and three index
// regions within the segment file.
//
// DataOffset/DataSize bound the column's own page stream exactly, so
// ReadColumn can cap the last page's byte range at the column's true end
// instead of at OrdinalOffset (which is where this column's index data
// begins, after the whole data region and any preceding columns' index
// blocks, not where this column's data ends). This extends §4.5's
// per-column footer entry by one (offset, size) pair beyond the wire
// format as originally specified, to make that corrected read path
// possible — see DESIGN.md Open-Question-2.
type ColumnIndexMeta struct {
	DataOffset    uint64
	DataSize      uint64
	OrdinalOffset uint64
	OrdinalSize   uint64
	ZoneMapOffset uint64
	ZoneMapSize   uint64
	BloomOffset   uint64
	BloomSize     uint64
}

// columnIndexMetaSize is the serialized size of one ColumnIndexMeta: eight
// u64 fields.
const columnIndexMetaSize = 64

// Footer is the self-describing trailer written after the data and index
// regions, giving a reader everything needed to locate both.
type Footer struct {
	NumRows        uint32
	NumColumns     uint32
	ShortKeyOffset uint64
	ShortKeySize   uint64
	ColumnMetas    []ColumnIndexMeta
}

// footerHeaderSize is num_rows(4) + num_columns(4) + short_key_offset(8) +
// short_key_size(8).
const footerHeaderSize = 24

func (f *Footer) serialize() []byte {
	out := make([]byte, 0, footerHeaderSize+len(f.ColumnMetas)*columnIndexMetaSize)
	var u32 [4]byte
	var u64 [8]byte
	binary.LittleEndian.PutUint32(u32[:], f.NumRows)
	out = append(out, u32[:]...)
	binary.LittleEndian.PutUint32(u32[:], f.NumColumns)
	out = append(out, u32[:]...)
	binary.LittleEndian.PutUint64(u64[:], f.ShortKeyOffset)
	out = append(out, u64[:]...)
	binary.LittleEndian.PutUint64(u64[:], f.ShortKeySize)
	out = append(out, u64[:]...)
	for _, cm := range f.ColumnMetas {
		for _, v := range []uint64{
			cm.DataOffset, cm.DataSize,
			cm.OrdinalOffset, cm.OrdinalSize,
			cm.ZoneMapOffset, cm.ZoneMapSize,
			cm.BloomOffset, cm.BloomSize,
		} {
			binary.LittleEndian.PutUint64(u64[:], v)
			out = append(out, u64[:]...)
		}
	}
	return out
}

func deserializeFooter(data []byte) (*Footer, error) {
	if len(data) < footerHeaderSize {
		return nil, errors.Wrap(value.ErrSegmentIO, "footer: truncated header")
	}
	f := &Footer{
		NumRows:        binary.LittleEndian.Uint32(data[0:4]),
		NumColumns:     binary.LittleEndian.Uint32(data[4:8]),
		ShortKeyOffset: binary.LittleEndian.Uint64(data[8:16]),
		ShortKeySize:   binary.LittleEndian.Uint64(data[16:24]),
	}
	pos := footerHeaderSize
	for i := uint32(0); i < f.NumColumns; i++ {
		if pos+columnIndexMetaSize > len(data) {
			break
		}
		readU64 := func(off int) uint64 { return binary.LittleEndian.Uint64(data[pos+off:]) }
		f.ColumnMetas = append(f.ColumnMetas, ColumnIndexMeta{
			DataOffset:    readU64(0),
			DataSize:      readU64(8),
			OrdinalOffset: readU64(16),
			OrdinalSize:   readU64(24),
			ZoneMapOffset: readU64(32),
			ZoneMapSize:   readU64(40),
			BloomOffset:   readU64(48),
			BloomSize:     readU64(56),
		})
		pos += columnIndexMetaSize
	}
	return f, nil
}
