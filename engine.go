// Copyright 2025 The OLAPStore Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package olapstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/olapstore/olapstore/partition"
)

// Options configures a StorageEngine. Use the With* functions with
// NewSingleDir rather than constructing Options directly.
type Options struct {
	Logger   *slog.Logger
	Registry prometheus.Registerer
}

// Option configures an Options value.
type Option func(*Options)

// WithLogger overrides the engine's logger. The default logs to stderr as
// text at Info level.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithMetrics registers the engine's Prometheus collectors against reg.
// Without this option, metrics recording is a no-op.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *Options) { o.Registry = reg }
}

func defaultOptions() Options {
	return Options{
		Logger: slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}
}

// PartitionSpec is one partition's tablet layout at table-creation time:
// one TabletID per bucket.
type PartitionSpec struct {
	PartitionID PartitionID
	TabletIDs   []TabletID
	SchemaHash  SchemaHash
}

// StorageEngine is the single-node OLAP storage engine facade: the
// catalog of databases/tables and the sharded registry of tablets that
// back them.
type StorageEngine struct {
	DataDir        string
	TabletManager  *TabletManager
	CatalogManager *CatalogManager

	log     *slog.Logger
	metrics *metrics
}

// NewSingleDir constructs a StorageEngine rooted at dataDir, applying any
// supplied Options.
func NewSingleDir(dataDir string, opts ...Option) *StorageEngine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	tm := NewTabletManager()
	e := &StorageEngine{
		DataDir:        dataDir,
		TabletManager:  tm,
		CatalogManager: NewCatalogManager(),
		log:            o.Logger,
	}
	e.metrics = newMetrics(o.Registry, func() float64 { return float64(tm.TabletCount()) })
	return e
}

// CreateDatabase registers a new database.
func (e *StorageEngine) CreateDatabase(dbID DbID, dbName string) error {
	if err := e.CatalogManager.CreateDatabase(dbID, dbName); err != nil {
		return err
	}
	e.log.Info("database created", "db_id", dbID, "db_name", dbName)
	return nil
}

// CreateTableWithPartitions creates one tablet per bucket across every
// partition in partitionSpecs, then registers the table in the catalog.
// replicationNum is accepted for API parity with a future multi-replica
// scheduler; this single-node engine always creates exactly one replica
// per tablet.
func (e *StorageEngine) CreateTableWithPartitions(
	dbID DbID,
	tableID TableID,
	tableName string,
	schema TabletSchema,
	partitionInfo *partition.PartitionInfo,
	partitionSpecs []PartitionSpec,
	replicationNum uint32,
) error {
	for _, spec := range partitionSpecs {
		for _, tid := range spec.TabletIDs {
			meta := NewTabletMeta(tid, spec.PartitionID, schema)
			if _, err := e.TabletManager.CreateTablet(meta); err != nil {
				return err
			}
			e.metrics.incTabletsCreated()
		}
	}
	table := NewOlapTable(tableID, tableName, schema, partitionInfo)
	if err := e.CatalogManager.AddTable(dbID, table); err != nil {
		return err
	}
	e.log.Info("table created", "db_id", dbID, "table_id", tableID, "table_name", tableName,
		"partitions", len(partitionSpecs))
	return nil
}

// CreateTablet registers a single tablet directly, bypassing the catalog.
// Used for tablets created outside CreateTableWithPartitions, such as a
// schema-change clone.
func (e *StorageEngine) CreateTablet(meta *TabletMeta) (*Tablet, error) {
	t, err := e.TabletManager.CreateTablet(meta)
	if err != nil {
		return nil, err
	}
	e.metrics.incTabletsCreated()
	return t, nil
}

// GetTablet looks up a tablet by id and schema hash.
func (e *StorageEngine) GetTablet(tabletID TabletID, schemaHash SchemaHash) (*Tablet, error) {
	return e.TabletManager.GetTablet(tabletID, schemaHash)
}

// DropTablet removes a tablet from the registry.
func (e *StorageEngine) DropTablet(tabletID TabletID, schemaHash SchemaHash) error {
	return e.TabletManager.DropTablet(tabletID, schemaHash)
}

// PublishRowset makes a committed rowset visible on its tablet, typically
// called once a load job's segment files have been written to disk.
func (e *StorageEngine) PublishRowset(tabletID TabletID, schemaHash SchemaHash, rowset RowsetMeta) error {
	t, err := e.TabletManager.GetTablet(tabletID, schemaHash)
	if err != nil {
		return err
	}
	if err := t.AddRowset(rowset); err != nil {
		return err
	}
	e.metrics.incRowsetsPublished()
	e.log.Info("rowset published", "tablet_id", tabletID, "rowset_id", rowset.RowsetID,
		"version", rowset.Version.String(), "num_rows", rowset.NumRows)
	return nil
}

// ScheduleCompaction scores every registered tablet and returns up to the
// 10 highest-scoring tablet ids as this round's compaction candidates.
func (e *StorageEngine) ScheduleCompaction(ctx context.Context, ctype CompactionType) ([]TabletID, error) {
	candidates, err := e.TabletManager.CollectCompactionCandidates(ctx, ctype)
	if err != nil {
		return nil, err
	}
	e.metrics.observeCompactionRun(candidates)

	n := len(candidates)
	if n > 10 {
		n = 10
	}
	out := make([]TabletID, n)
	for i := 0; i < n; i++ {
		out[i] = candidates[i].TabletID
	}
	e.log.Debug("compaction scheduled", "candidates", len(candidates), "selected", n)
	return out, nil
}

// TabletCount returns the total number of registered tablets.
func (e *StorageEngine) TabletCount() int { return e.TabletManager.TabletCount() }

// SegmentPath returns the on-disk path for one rowset segment file.
func (e *StorageEngine) SegmentPath(tabletID TabletID, rowsetID RowsetID, segIdx uint32) string {
	return fmt.Sprintf("%s/%d/%d_%d.seg", e.DataDir, tabletID, rowsetID, segIdx)
}
