// Copyright 2025 The OLAPStore Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package codec implements the four column encodings (Plain, RunLength,
// DeltaBinary, Dictionary) and the None/LZ4 block compressors used by
// segment pages.
package codec

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/olapstore/olapstore/segment/value"
)

// Encode dispatches to the codec named by enc.
func Encode(values []value.Value, enc value.EncodingType) ([]byte, error) {
	switch enc {
	case value.EncodingPlain:
		return encodePlain(values)
	case value.EncodingRunLength:
		return encodeRunLength(values)
	case value.EncodingDeltaBinary:
		return encodeDelta(values)
	case value.EncodingDictionary:
		return encodeDictionary(values)
	default:
		return nil, errors.Wrapf(value.ErrEncoding, "unknown encoding %d", enc)
	}
}

// Decode dispatches to the codec named by enc. fieldType guides Plain
// decoding (see decodePlain); the other codecs recover enough information
// from the stream itself.
func Decode(data []byte, enc value.EncodingType, count int, fieldType value.FieldType) ([]value.Value, error) {
	switch enc {
	case value.EncodingPlain:
		return decodePlain(data, count, fieldType)
	case value.EncodingRunLength:
		return decodeRunLength(data)
	case value.EncodingDeltaBinary:
		return decodeDelta(data, count)
	case value.EncodingDictionary:
		return decodeDictionary(data, count)
	default:
		return nil, errors.Wrapf(value.ErrEncoding, "unknown encoding %d", enc)
	}
}

// ── Plain ──────────────────────────────────────────────────────────────────

func encodePlain(values []value.Value) ([]byte, error) {
	var out []byte
	for _, v := range values {
		switch {
		case v.IsNull():
			out = append(out, 0)
		default:
			switch v.Kind() {
			case value.FieldInt8:
				iv, _ := v.AsInt64()
				out = append(out, byte(int8(iv)))
			case value.FieldInt16:
				iv, _ := v.AsInt64()
				var buf [2]byte
				binary.LittleEndian.PutUint16(buf[:], uint16(int16(iv)))
				out = append(out, buf[:]...)
			case value.FieldInt32, value.FieldDate:
				iv, _ := v.AsInt64()
				var buf [4]byte
				binary.LittleEndian.PutUint32(buf[:], uint32(int32(iv)))
				out = append(out, buf[:]...)
			case value.FieldInt64:
				iv, _ := v.AsInt64()
				var buf [8]byte
				binary.LittleEndian.PutUint64(buf[:], uint64(iv))
				out = append(out, buf[:]...)
			case value.FieldFloat32:
				var buf [4]byte
				binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v.Float32()))
				out = append(out, buf[:]...)
			case value.FieldFloat64:
				var buf [8]byte
				binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v.Float64()))
				out = append(out, buf[:]...)
			case value.FieldBytes:
				b := v.AsBytes()
				var lenBuf [4]byte
				binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(b)))
				out = append(out, lenBuf[:]...)
				out = append(out, b...)
			}
		}
	}
	return out, nil
}

// decodePlain dispatches on fieldType so the decoded Values carry the
// column's real type, rather than always materializing Int64.
func decodePlain(data []byte, count int, fieldType value.FieldType) ([]value.Value, error) {
	out := make([]value.Value, 0, count)
	pos := 0
	switch fieldType {
	case value.FieldInt8:
		for len(out) < count && pos+1 <= len(data) {
			out = append(out, value.NewInt8(int8(data[pos])))
			pos++
		}
	case value.FieldInt16:
		for len(out) < count && pos+2 <= len(data) {
			out = append(out, value.NewInt16(int16(binary.LittleEndian.Uint16(data[pos:]))))
			pos += 2
		}
	case value.FieldInt32:
		for len(out) < count && pos+4 <= len(data) {
			out = append(out, value.NewInt32(int32(binary.LittleEndian.Uint32(data[pos:]))))
			pos += 4
		}
	case value.FieldDate:
		for len(out) < count && pos+4 <= len(data) {
			out = append(out, value.NewDate(int32(binary.LittleEndian.Uint32(data[pos:]))))
			pos += 4
		}
	case value.FieldInt64:
		for len(out) < count && pos+8 <= len(data) {
			out = append(out, value.NewInt64(int64(binary.LittleEndian.Uint64(data[pos:]))))
			pos += 8
		}
	case value.FieldFloat32:
		for len(out) < count && pos+4 <= len(data) {
			out = append(out, value.NewFloat32(math.Float32frombits(binary.LittleEndian.Uint32(data[pos:]))))
			pos += 4
		}
	case value.FieldFloat64:
		for len(out) < count && pos+8 <= len(data) {
			out = append(out, value.NewFloat64(math.Float64frombits(binary.LittleEndian.Uint64(data[pos:]))))
			pos += 8
		}
	case value.FieldBytes:
		for len(out) < count && pos+4 <= len(data) {
			n := int(binary.LittleEndian.Uint32(data[pos:]))
			pos += 4
			if pos+n > len(data) {
				return out, errors.Wrap(value.ErrEncoding, "plain: truncated bytes value")
			}
			b := make([]byte, n)
			copy(b, data[pos:pos+n])
			out = append(out, value.NewBytes(b))
			pos += n
		}
	default:
		return nil, errors.Wrapf(value.ErrEncoding, "plain: unsupported field type %d", fieldType)
	}
	return out, nil
}

// ── Run-Length Encoding ──────────────────────────────────────────────────
//
// Emits (u32 run, i64 value) pairs for consecutive equal values. Decoding
// always materializes Int64, matching the reference decoder; callers that
// need the column's real type use RunLength only on integer-ish columns.

func encodeRunLength(values []value.Value) ([]byte, error) {
	if len(values) == 0 {
		return nil, nil
	}
	var out []byte
	cur := values[0]
	run := uint32(1)
	for _, v := range values[1:] {
		if runLengthEqual(v, cur) {
			run++
			continue
		}
		writeRun(&out, run, cur)
		cur = v
		run = 1
	}
	writeRun(&out, run, cur)
	return out, nil
}

func runLengthEqual(a, b value.Value) bool {
	if a.IsNull() != b.IsNull() {
		return false
	}
	if a.IsNull() {
		return true
	}
	if a.Kind() != b.Kind() {
		return false
	}
	if a.Kind() == value.FieldBytes {
		return bytes.Equal(a.AsBytes(), b.AsBytes())
	}
	ai, aok := a.AsInt64()
	bi, bok := b.AsInt64()
	if aok && bok {
		return ai == bi
	}
	return a.String() == b.String()
}

func writeRun(out *[]byte, run uint32, v value.Value) {
	var runBuf [4]byte
	binary.LittleEndian.PutUint32(runBuf[:], run)
	*out = append(*out, runBuf[:]...)

	iv, ok := v.AsInt64()
	if !ok {
		iv = 0
	}
	var valBuf [8]byte
	binary.LittleEndian.PutUint64(valBuf[:], uint64(iv))
	*out = append(*out, valBuf[:]...)
}

func decodeRunLength(data []byte) ([]value.Value, error) {
	var out []value.Value
	pos := 0
	for pos+12 <= len(data) {
		run := binary.LittleEndian.Uint32(data[pos : pos+4])
		val := int64(binary.LittleEndian.Uint64(data[pos+4 : pos+12]))
		pos += 12
		for i := uint32(0); i < run; i++ {
			out = append(out, value.NewInt64(val))
		}
	}
	return out, nil
}

// ── Delta Binary ─────────────────────────────────────────────────────────
//
// Writes a base i64 followed by n-1 deltas as little-endian i64. Decoding
// always materializes Int64, matching the reference decoder.

func encodeDelta(values []value.Value) ([]byte, error) {
	if len(values) == 0 {
		return nil, nil
	}
	ints := make([]int64, len(values))
	for i, v := range values {
		iv, _ := v.AsInt64()
		ints[i] = iv
	}
	out := make([]byte, 0, len(ints)*8)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(ints[0]))
	out = append(out, buf[:]...)
	prev := ints[0]
	for _, x := range ints[1:] {
		binary.LittleEndian.PutUint64(buf[:], uint64(x-prev))
		out = append(out, buf[:]...)
		prev = x
	}
	return out, nil
}

func decodeDelta(data []byte, count int) ([]value.Value, error) {
	if len(data) < 8 {
		return nil, nil
	}
	base := int64(binary.LittleEndian.Uint64(data[0:8]))
	out := make([]value.Value, 0, count)
	out = append(out, value.NewInt64(base))
	prev := base
	pos := 8
	for len(out) < count && pos+8 <= len(data) {
		delta := int64(binary.LittleEndian.Uint64(data[pos : pos+8]))
		prev += delta
		out = append(out, value.NewInt64(prev))
		pos += 8
	}
	return out, nil
}

// ── Dictionary ───────────────────────────────────────────────────────────
//
// Builds an insertion-order dictionary of distinct byte representations,
// emitting (u32 dict_len, (u32 len, bytes) × dict_len, u32 code × n).
// Non-Bytes values are keyed by their display string, mirroring the
// reference encoder's fallback.

func encodeDictionary(values []value.Value) ([]byte, error) {
	var dict [][]byte
	index := make(map[string]uint32)
	codes := make([]uint32, len(values))

	for i, v := range values {
		key := dictKey(v)
		code, ok := index[string(key)]
		if !ok {
			code = uint32(len(dict))
			index[string(key)] = code
			dict = append(dict, key)
		}
		codes[i] = code
	}

	var out []byte
	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], uint32(len(dict)))
	out = append(out, u32[:]...)
	for _, entry := range dict {
		binary.LittleEndian.PutUint32(u32[:], uint32(len(entry)))
		out = append(out, u32[:]...)
		out = append(out, entry...)
	}
	for _, c := range codes {
		binary.LittleEndian.PutUint32(u32[:], c)
		out = append(out, u32[:]...)
	}
	return out, nil
}

func dictKey(v value.Value) []byte {
	if v.Kind() == value.FieldBytes {
		return v.AsBytes()
	}
	return []byte(v.String())
}

func decodeDictionary(data []byte, count int) ([]value.Value, error) {
	if len(data) < 4 {
		return nil, errors.Wrap(value.ErrEncoding, "dict: data too short")
	}
	dictLen := int(binary.LittleEndian.Uint32(data[0:4]))
	pos := 4
	dict := make([][]byte, 0, dictLen)
	for i := 0; i < dictLen; i++ {
		if pos+4 > len(data) {
			break
		}
		n := int(binary.LittleEndian.Uint32(data[pos : pos+4]))
		pos += 4
		if pos+n > len(data) {
			break
		}
		dict = append(dict, data[pos:pos+n])
		pos += n
	}

	out := make([]value.Value, 0, count)
	for i := 0; i < count; i++ {
		if pos+4 > len(data) {
			break
		}
		code := int(binary.LittleEndian.Uint32(data[pos : pos+4]))
		pos += 4
		var entry []byte
		if code >= 0 && code < len(dict) {
			entry = dict[code]
		}
		b := make([]byte, len(entry))
		copy(b, entry)
		out = append(out, value.NewBytes(b))
	}
	return out, nil
}
