// Copyright 2025 The OLAPStore Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package olapstore implements the core of a single-node, column-oriented
// analytical (OLAP) storage engine.
//
// Tables are partitioned and bucketed into tablets. Each tablet accumulates
// immutable, versioned rowsets; each rowset is one or more column-store
// segment files (package segment). A StorageEngine composes partition
// routing, tablet lifecycle, and segment I/O:
//
//	engine := olapstore.NewSingleDir("/var/lib/olap")
//	if err := engine.CreateDatabase(1, "ecommerce"); err != nil {
//		...
//	}
//
// Segments are written and read independently of the engine through the
// segment package, and can be exercised without a StorageEngine at all —
// see segment.NewWriter and segment.Open.
//
// Readers and writers of the same segment are never used concurrently;
// Tablet and TabletManager are safe for concurrent use by multiple
// goroutines, each guarded by its own lock. A TabletManager shard lock may be
// held while a Tablet lock is taken, never the reverse.
package olapstore
