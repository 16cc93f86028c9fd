// Copyright 2025 The OLAPStore Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package olapstore

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/olapstore/olapstore/segment/value"
)

// Sentinel errors identifying each kind in the engine's error taxonomy.
// Use errors.Is against these to classify a failure; the concrete error
// returned to the caller additionally carries redactable context (IDs,
// versions) via errors.Wrapf/errors.Safe.
//
// The segment-layer sentinels are aliased from segment/value rather than
// redefined, so callers see one unified taxonomy via errors.Is regardless
// of which layer raised the error.
var (
	ErrTabletNotFound    = errors.New("olapstore: tablet not found")
	ErrTableNotFound     = errors.New("olapstore: table not found")
	ErrDatabaseNotFound  = errors.New("olapstore: database not found")
	ErrPartitionNotFound = errors.New("olapstore: partition not found")
	ErrVersionExists     = errors.New("olapstore: version already exists")
	ErrMissingVersions   = errors.New("olapstore: missing versions in range")
	ErrSegmentIO         = value.ErrSegmentIO
	ErrEncoding          = value.ErrEncoding
	ErrCompression       = value.ErrCompression
	ErrChecksumMismatch  = value.ErrChecksumMismatch
	ErrSchemaMismatch    = value.ErrSchemaMismatch
	ErrUnsupported       = errors.New("olapstore: unsupported")
)

// errTabletNotFound wraps ErrTabletNotFound with the offending tablet id.
func errTabletNotFound(tabletID TabletID) error {
	return errors.Wrapf(ErrTabletNotFound, "tablet_id=%s", errors.Safe(fmt.Sprint(tabletID)))
}

func errTableNotFound(dbID DbID, tableID TableID) error {
	return errors.Wrapf(ErrTableNotFound, "db_id=%s table_id=%s",
		errors.Safe(fmt.Sprint(dbID)), errors.Safe(fmt.Sprint(tableID)))
}

func errDatabaseNotFound(dbID DbID) error {
	return errors.Wrapf(ErrDatabaseNotFound, "db_id=%s", errors.Safe(fmt.Sprint(dbID)))
}

func errPartitionNotFound(key string) error {
	return errors.Wrapf(ErrPartitionNotFound, "key=%q", key)
}

func errVersionExists(v Version) error {
	return errors.Wrapf(ErrVersionExists, "version=%s", errors.Safe(v.String()))
}

func errMissingVersions(lo, hi int64) error {
	return errors.Wrapf(ErrMissingVersions, "range=[%s,%s]",
		errors.Safe(fmt.Sprint(lo)), errors.Safe(fmt.Sprint(hi)))
}
