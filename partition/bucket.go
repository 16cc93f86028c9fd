// Copyright 2025 The OLAPStore Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package partition implements partition routing (Range/List/Unpartitioned)
// and bucket routing (Hash/Random) within a partition.
package partition

import "time"

// BucketType selects how a row's sort key maps to a bucket index within a
// partition's MaterializedIndex.
type BucketType interface {
	NumBuckets() uint32
	BucketForKey(key string) uint32
}

// HashBucket routes by FNV-1a 64-bit hash of the key, modulo NumBuckets.
type HashBucket struct {
	BucketColumns []string
	Buckets       uint32
}

func (h HashBucket) NumBuckets() uint32 { return h.Buckets }

func (h HashBucket) BucketForKey(key string) uint32 {
	var hv uint64 = 0xcbf29ce484222325
	for i := 0; i < len(key); i++ {
		hv ^= uint64(key[i])
		hv *= 0x100000001b3
	}
	return uint32(hv % uint64(h.Buckets))
}

// RandomBucket routes nondeterministically, spreading writes across
// buckets without regard to key. Matches the reference implementation's
// use of the current time's sub-second nanoseconds as the source of
// randomness.
type RandomBucket struct {
	Buckets uint32
}

func (r RandomBucket) NumBuckets() uint32 { return r.Buckets }

func (r RandomBucket) BucketForKey(_ string) uint32 {
	return uint32(time.Now().Nanosecond()) % r.Buckets
}
