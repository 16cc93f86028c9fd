// Copyright 2025 The OLAPStore Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package olapstore

import (
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/olapstore/olapstore/partition"
)

// OlapTable is one logical table's schema and partitioning configuration.
type OlapTable struct {
	TableID       TableID
	TableName     string
	Schema        TabletSchema
	PartitionInfo *partition.PartitionInfo
}

// NewOlapTable constructs a table descriptor.
func NewOlapTable(tableID TableID, tableName string, schema TabletSchema, partitionInfo *partition.PartitionInfo) *OlapTable {
	return &OlapTable{TableID: tableID, TableName: tableName, Schema: schema, PartitionInfo: partitionInfo}
}

// TabletForRow routes a row to the tablet that should store it:
// partitionKey selects the partition (e.g. a date bucket), sortKey
// selects the bucket within it (e.g. a user id).
func (t *OlapTable) TabletForRow(partitionKey, sortKey string) (TabletID, error) {
	part, err := t.PartitionInfo.FindPartition(partitionKey)
	if err != nil {
		if errors.Is(err, partition.ErrPartitionNotFound) {
			return 0, errPartitionNotFound(partitionKey)
		}
		return 0, err
	}
	tabletID, ok := part.TabletForKey(sortKey)
	if !ok {
		return 0, errPartitionNotFound(sortKey)
	}
	return tabletID, nil
}

type database struct {
	dbID   DbID
	dbName string
	tables map[TableID]*OlapTable
}

// CatalogManager is the thread-safe database/table catalog: every table
// this node knows about, grouped by database.
type CatalogManager struct {
	mu  sync.RWMutex
	dbs map[DbID]*database
}

// NewCatalogManager returns an empty catalog.
func NewCatalogManager() *CatalogManager {
	return &CatalogManager{dbs: make(map[DbID]*database)}
}

// CreateDatabase registers a new, empty database.
func (c *CatalogManager) CreateDatabase(dbID DbID, dbName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dbs[dbID] = &database{dbID: dbID, dbName: dbName, tables: make(map[TableID]*OlapTable)}
	return nil
}

// AddTable registers table under dbID.
func (c *CatalogManager) AddTable(dbID DbID, table *OlapTable) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	db, ok := c.dbs[dbID]
	if !ok {
		return errDatabaseNotFound(dbID)
	}
	db.tables[table.TableID] = table
	return nil
}

// GetTable looks up a registered table.
func (c *CatalogManager) GetTable(dbID DbID, tableID TableID) (*OlapTable, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	db, ok := c.dbs[dbID]
	if !ok {
		return nil, errDatabaseNotFound(dbID)
	}
	table, ok := db.tables[tableID]
	if !ok {
		return nil, errTableNotFound(dbID, tableID)
	}
	return table, nil
}

// DropTable removes a registered table.
func (c *CatalogManager) DropTable(dbID DbID, tableID TableID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	db, ok := c.dbs[dbID]
	if !ok {
		return errDatabaseNotFound(dbID)
	}
	if _, ok := db.tables[tableID]; !ok {
		return errTableNotFound(dbID, tableID)
	}
	delete(db.tables, tableID)
	return nil
}
