// Copyright 2025 The OLAPStore Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package page implements the framed, CRC-protected data page used by
// segment columns:
//
//	u32 value_count | u32 first_row_id | u32 uncompressed_size | u8 has_nulls
//	[optional null bitmap — not implemented, see Builder.Build]
//	<compressed(encoded(values))>
//	u32 CRC32   // over all preceding bytes of this page
package page

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/cockroachdb/errors"

	"github.com/olapstore/olapstore/segment/codec"
	"github.com/olapstore/olapstore/segment/value"
)

// MaxRows is the maximum number of values a single page may hold.
const MaxRows = 1024

// headerSize is value_count(4) + first_row_id(4) + uncompressed_size(4) +
// has_nulls(1).
const headerSize = 13

// Builder accumulates values for one page until it is full, then frames
// them into the on-disk page format.
type Builder struct {
	FirstRowID  uint32
	encoding    value.EncodingType
	compression value.CompressionType
	values      []value.Value
}

// NewBuilder starts a page whose first value will carry row id firstRowID.
func NewBuilder(firstRowID uint32, enc value.EncodingType, comp value.CompressionType) *Builder {
	return &Builder{FirstRowID: firstRowID, encoding: enc, compression: comp}
}

// Add appends a value to the page.
func (b *Builder) Add(v value.Value) { b.values = append(b.values, v) }

// Len returns the number of values buffered so far.
func (b *Builder) Len() int { return len(b.values) }

// IsEmpty reports whether no values have been added.
func (b *Builder) IsEmpty() bool { return len(b.values) == 0 }

// IsFull reports whether the page has reached MaxRows.
func (b *Builder) IsFull() bool { return len(b.values) >= MaxRows }

// Values returns the values buffered so far, in append order. Callers
// must not mutate the returned slice.
func (b *Builder) Values() []value.Value { return b.values }

// Build encodes, compresses, and frames the buffered values into page
// bytes. The has_nulls byte is always written as 0 — no null bitmap is
// implemented; null values pass through the column codec itself.
func (b *Builder) Build() ([]byte, error) {
	count := uint32(len(b.values))
	encoded, err := codec.Encode(b.values, b.encoding)
	if err != nil {
		return nil, err
	}
	uncompSize := uint32(len(encoded))
	compressed, err := codec.Compress(encoded, b.compression)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, headerSize+len(compressed)+4)
	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], count)
	out = append(out, u32[:]...)
	binary.LittleEndian.PutUint32(u32[:], b.FirstRowID)
	out = append(out, u32[:]...)
	binary.LittleEndian.PutUint32(u32[:], uncompSize)
	out = append(out, u32[:]...)
	out = append(out, 0) // has_nulls
	out = append(out, compressed...)

	crc := crc32.ChecksumIEEE(out)
	binary.LittleEndian.PutUint32(u32[:], crc)
	out = append(out, u32[:]...)
	return out, nil
}

// Decoded holds the result of decoding one page.
type Decoded struct {
	ValueCount int
	FirstRowID uint32
	Values     []value.Value
}

// Decode verifies the page's trailing CRC32, then decompresses and decodes
// its payload. fieldType guides Plain decoding (see codec.Decode).
func Decode(data []byte, enc value.EncodingType, comp value.CompressionType, fieldType value.FieldType) (*Decoded, error) {
	if len(data) < headerSize+4 {
		return nil, errors.Wrap(value.ErrSegmentIO, "page data too short")
	}
	valueCount := int(binary.LittleEndian.Uint32(data[0:4]))
	firstRowID := binary.LittleEndian.Uint32(data[4:8])
	uncompSize := int(binary.LittleEndian.Uint32(data[8:12]))
	// data[12] is has_nulls; reserved, unused by this decoder.

	payloadEnd := len(data) - 4
	payload := data[headerSize:payloadEnd]

	storedCRC := binary.LittleEndian.Uint32(data[payloadEnd:])
	actualCRC := crc32.ChecksumIEEE(data[:payloadEnd])
	if storedCRC != actualCRC {
		return nil, value.ErrChecksumMismatch
	}

	raw, err := codec.Decompress(payload, comp, uncompSize)
	if err != nil {
		return nil, err
	}
	values, err := codec.Decode(raw, enc, valueCount, fieldType)
	if err != nil {
		return nil, err
	}
	return &Decoded{ValueCount: valueCount, FirstRowID: firstRowID, Values: values}, nil
}
