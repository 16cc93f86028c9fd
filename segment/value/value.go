// Copyright 2025 The OLAPStore Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package value defines the segment layer's physical value representation
// (the tagged union Value, FieldType, ColumnMeta, EncodingType,
// CompressionType) and the error sentinels the segment, codec, page, and
// index packages all raise. It sits at the bottom of the segment package
// graph so codec/page/index can depend on it without a cycle back to the
// segment package itself.
package value

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cockroachdb/errors"
)

// Error sentinels for the segment layer. olapstore.Err* aliases these so
// callers of the Engine API see one unified taxonomy regardless of which
// layer raised the error.
var (
	ErrSegmentIO        = errors.New("olapstore: segment I/O error")
	ErrEncoding         = errors.New("olapstore: encoding error")
	ErrCompression      = errors.New("olapstore: compression error")
	ErrChecksumMismatch = errors.New("olapstore: checksum mismatch")
	ErrSchemaMismatch   = errors.New("olapstore: schema mismatch")
)

// FieldType is the physical, on-disk type of a segment column.
type FieldType int

const (
	FieldInt8 FieldType = iota
	FieldInt16
	FieldInt32
	FieldInt64
	FieldFloat32
	FieldFloat64
	// FieldBytes is variable-length, framed with a 4-byte length prefix.
	FieldBytes
	// FieldDate stores a day count as i32, physically identical to FieldInt32.
	FieldDate
)

// FixedSize reports the fixed byte width of the type, or (0, false) for the
// variable-length FieldBytes.
func (f FieldType) FixedSize() (int, bool) {
	switch f {
	case FieldInt8:
		return 1, true
	case FieldInt16:
		return 2, true
	case FieldInt32, FieldDate:
		return 4, true
	case FieldInt64:
		return 8, true
	case FieldFloat32:
		return 4, true
	case FieldFloat64:
		return 8, true
	case FieldBytes:
		return 0, false
	default:
		return 0, false
	}
}

// IsInteger reports whether the type is one of the integer-like (including
// Date) physical types, i.e. eligible for delta encoding.
func (f FieldType) IsInteger() bool {
	switch f {
	case FieldInt8, FieldInt16, FieldInt32, FieldInt64, FieldDate:
		return true
	default:
		return false
	}
}

// EncodingType selects the column codec.
type EncodingType int

const (
	EncodingPlain EncodingType = iota
	EncodingRunLength
	EncodingDeltaBinary
	EncodingDictionary
)

// CompressionType selects the page-level compressor.
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionLZ4
)

// ColumnMeta is a column's physical on-disk description. It is not stored
// in the segment file; writer and reader are each given the same schema.
type ColumnMeta struct {
	ColumnID    uint32
	Name        string
	FieldType   FieldType
	Nullable    bool
	Encoding    EncodingType
	Compression CompressionType
	MaxLength   uint32
}

// NewColumnMeta builds a ColumnMeta with the default encoding for the given
// field type (Delta for integers/dates, Dictionary for Bytes, Plain
// otherwise) and default LZ4 compression.
func NewColumnMeta(columnID uint32, name string, ft FieldType) ColumnMeta {
	enc := EncodingPlain
	switch {
	case ft.IsInteger():
		enc = EncodingDeltaBinary
	case ft == FieldBytes:
		enc = EncodingDictionary
	}
	return ColumnMeta{
		ColumnID:    columnID,
		Name:        name,
		FieldType:   ft,
		Encoding:    enc,
		Compression: CompressionLZ4,
		MaxLength:   65535,
	}
}

// WithEncoding returns a copy of m with Encoding overridden.
func (m ColumnMeta) WithEncoding(enc EncodingType) ColumnMeta {
	m.Encoding = enc
	return m
}

// WithCompression returns a copy of m with Compression overridden.
func (m ColumnMeta) WithCompression(c CompressionType) ColumnMeta {
	m.Compression = c
	return m
}

// WithNullable returns a copy of m marked nullable.
func (m ColumnMeta) WithNullable() ColumnMeta {
	m.Nullable = true
	return m
}

// Value is a tagged union over the physical column value types.
type Value struct {
	kind  FieldType
	null  bool
	i     int64
	f32   float32
	f64   float64
	bytes []byte
}

// NewNull returns the null Value.
func NewNull() Value { return Value{null: true} }

func NewInt8(v int8) Value   { return Value{kind: FieldInt8, i: int64(v)} }
func NewInt16(v int16) Value { return Value{kind: FieldInt16, i: int64(v)} }
func NewInt32(v int32) Value { return Value{kind: FieldInt32, i: int64(v)} }
func NewInt64(v int64) Value { return Value{kind: FieldInt64, i: v} }
func NewDate(days int32) Value {
	return Value{kind: FieldDate, i: int64(days)}
}
func NewFloat32(v float32) Value { return Value{kind: FieldFloat32, f32: v} }
func NewFloat64(v float64) Value { return Value{kind: FieldFloat64, f64: v} }
func NewBytes(b []byte) Value    { return Value{kind: FieldBytes, bytes: b} }

// IsNull reports whether the value is the Null variant.
func (v Value) IsNull() bool { return v.null }

// Kind returns the value's physical type tag. Meaningless for Null.
func (v Value) Kind() FieldType { return v.kind }

// AsInt64 projects an integer-kind value to int64, or (0, false) for
// non-integer kinds (mirrors the reference encoder's as_i64 fallback used
// by RunLength encoding of non-integer values).
func (v Value) AsInt64() (int64, bool) {
	switch v.kind {
	case FieldInt8, FieldInt16, FieldInt32, FieldInt64, FieldDate:
		return v.i, true
	default:
		return 0, false
	}
}

// AsBytes returns the raw bytes for a Bytes value, or nil otherwise.
func (v Value) AsBytes() []byte {
	if v.kind == FieldBytes {
		return v.bytes
	}
	return nil
}

func (v Value) Float32() float32 { return v.f32 }
func (v Value) Float64() float64 { return v.f64 }

// SortKey produces the canonical byte string used by indexes: big-endian
// for integers, the IEEE-754 big-endian bit pattern for floats, raw bytes
// for Bytes, and empty for Null.
func (v Value) SortKey() []byte {
	if v.null {
		return nil
	}
	switch v.kind {
	case FieldInt8, FieldInt16, FieldInt32, FieldInt64, FieldDate:
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(v.i))
		return buf[:]
	case FieldFloat32:
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], math.Float32bits(v.f32))
		return buf[:]
	case FieldFloat64:
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(v.f64))
		return buf[:]
	case FieldBytes:
		return v.bytes
	default:
		return nil
	}
}

// String renders the value for display/debugging.
func (v Value) String() string {
	if v.null {
		return "NULL"
	}
	switch v.kind {
	case FieldInt8, FieldInt16, FieldInt32, FieldInt64, FieldDate:
		return fmt.Sprintf("%d", v.i)
	case FieldFloat32:
		return fmt.Sprintf("%v", v.f32)
	case FieldFloat64:
		return fmt.Sprintf("%v", v.f64)
	case FieldBytes:
		return string(v.bytes)
	default:
		return ""
	}
}
