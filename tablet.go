// Copyright 2025 The OLAPStore Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package olapstore

import (
	"context"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

// VersionGraph is a directed multigraph over rowset versions: an edge
// start→end represents one rowset covering [start,end]. It answers two
// questions cheaply: whether [lo,hi] has a version hole, and the minimal
// set of rowsets that together cover it.
type VersionGraph struct {
	adj map[int64]map[int64]struct{}
}

// NewVersionGraph returns an empty graph.
func NewVersionGraph() *VersionGraph {
	return &VersionGraph{adj: make(map[int64]map[int64]struct{})}
}

// AddEdge records a rowset spanning v.
func (g *VersionGraph) AddEdge(v Version) {
	ends, ok := g.adj[v.Start]
	if !ok {
		ends = make(map[int64]struct{})
		g.adj[v.Start] = ends
	}
	ends[v.End] = struct{}{}
}

// RemoveEdge drops v, typically after its rowset is marked Stale.
func (g *VersionGraph) RemoveEdge(v Version) {
	ends, ok := g.adj[v.Start]
	if !ok {
		return
	}
	delete(ends, v.End)
	if len(ends) == 0 {
		delete(g.adj, v.Start)
	}
}

// FindCoveringPath does a breadth-first search from lo toward hi, at each
// node trying outgoing edges in descending end-version order so the
// shortest (fewest-rowset) covering path is preferred. It returns the
// ordered list of Versions traversed, or nil if no path reaches hi
// without exceeding it.
func (g *VersionGraph) FindCoveringPath(lo, hi int64) []Version {
	type state struct {
		cur  int64
		path []Version
	}
	queue := []state{{cur: lo}}
	visited := map[int64]struct{}{lo: {}}

	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]

		ends, ok := g.adj[s.cur]
		if !ok {
			continue
		}
		sorted := make([]int64, 0, len(ends))
		for e := range ends {
			sorted = append(sorted, e)
		}
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })

		for _, end := range sorted {
			newPath := make([]Version, len(s.path), len(s.path)+1)
			copy(newPath, s.path)
			newPath = append(newPath, Version{Start: s.cur, End: end})

			if end == hi {
				return newPath
			}
			if end < hi {
				if _, seen := visited[end+1]; !seen {
					visited[end+1] = struct{}{}
					queue = append(queue, state{cur: end + 1, path: newPath})
				}
			}
		}
	}
	return nil
}

// HasVersionHoles reports whether [lo,hi] cannot be fully covered by the
// graph's edges.
func (g *VersionGraph) HasVersionHoles(lo, hi int64) bool {
	return g.FindCoveringPath(lo, hi) == nil
}

// tabletInner holds a tablet's mutable state behind a single RWMutex.
type tabletInner struct {
	meta         *TabletMeta
	versionGraph *VersionGraph
}

// Tablet is a single shard of a partition's data: its schema, its
// rowsets, and the version graph describing how they chain together.
// Safe for concurrent use.
type Tablet struct {
	mu    sync.RWMutex
	inner tabletInner
}

// NewTablet wraps meta in a Tablet handle, seeding the version graph from
// meta's existing rowsets.
func NewTablet(meta *TabletMeta) *Tablet {
	vg := NewVersionGraph()
	for _, rs := range meta.Rowsets {
		vg.AddEdge(rs.Version)
	}
	return &Tablet{inner: tabletInner{meta: meta, versionGraph: vg}}
}

// TabletID returns the tablet's id.
func (t *Tablet) TabletID() TabletID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.inner.meta.TabletID
}

// SchemaHash returns the tablet's schema hash.
func (t *Tablet) SchemaHash() SchemaHash {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.inner.meta.SchemaHash
}

// Schema returns a copy of the tablet's schema.
func (t *Tablet) Schema() TabletSchema {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.inner.meta.Schema
}

// MaxVersion returns the highest version end published so far, or -1.
func (t *Tablet) MaxVersion() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.inner.meta.MaxVersion
}

// AddRowset publishes a committed rowset, marking it Visible and wiring
// its version into the graph. Returns ErrVersionExists if rs.RowsetID is
// already present.
func (t *Tablet) AddRowset(rs RowsetMeta) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.inner.meta.Rowsets[rs.RowsetID]; exists {
		return errVersionExists(rs.Version)
	}
	rs.State = RowsetVisible
	t.inner.versionGraph.AddEdge(rs.Version)
	if rs.Version.End > t.inner.meta.MaxVersion {
		t.inner.meta.MaxVersion = rs.Version.End
	}
	stored := rs
	t.inner.meta.Rowsets[rs.RowsetID] = &stored
	return nil
}

// CaptureConsistentVersions returns the minimal set of rowsets covering
// [lo,hi] — a consistent read snapshot over that version range.
func (t *Tablet) CaptureConsistentVersions(lo, hi int64) ([]RowsetMeta, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	path := t.inner.versionGraph.FindCoveringPath(lo, hi)
	if path == nil {
		return nil, errMissingVersions(lo, hi)
	}

	out := make([]RowsetMeta, 0, len(path))
	for _, v := range path {
		for _, rs := range t.inner.meta.Rowsets {
			if rs.Version == v {
				out = append(out, *rs)
				break
			}
		}
	}
	return out, nil
}

// ComputeCompactionScore returns this tablet's compaction priority: the
// count of its Visible rowsets. Both CompactionType variants currently
// share this formula.
func (t *Tablet) ComputeCompactionScore(_ CompactionType) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var n float64
	for _, rs := range t.inner.meta.Rowsets {
		if rs.State == RowsetVisible {
			n++
		}
	}
	return n
}

// MarkRowsetStale transitions rowsetID to Stale and removes its edge from
// the version graph, typically called after a compaction has merged it
// into a replacement rowset. A miss is a silent no-op.
func (t *Tablet) MarkRowsetStale(rowsetID RowsetID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rs, ok := t.inner.meta.Rowsets[rowsetID]
	if !ok {
		return
	}
	rs.MarkStale()
	t.inner.versionGraph.RemoveEdge(rs.Version)
}

// numShards is the number of independent RWMutex shards TabletManager
// spreads its tablets across, bounding lock contention under millions of
// tablets.
const numShards = 64

type tabletKey struct {
	tabletID   TabletID
	schemaHash SchemaHash
}

type shard struct {
	mu      sync.RWMutex
	tablets map[tabletKey]*Tablet
}

// TabletManager is a sharded, concurrency-safe registry of every tablet
// hosted by this node.
type TabletManager struct {
	shards [numShards]*shard
}

// NewTabletManager returns an empty manager.
func NewTabletManager() *TabletManager {
	m := &TabletManager{}
	for i := range m.shards {
		m.shards[i] = &shard{tablets: make(map[tabletKey]*Tablet)}
	}
	return m
}

func (m *TabletManager) shardFor(tabletID TabletID) *shard {
	return m.shards[tabletID%numShards]
}

// CreateTablet registers a new tablet and returns its handle.
func (m *TabletManager) CreateTablet(meta *TabletMeta) (*Tablet, error) {
	t := NewTablet(meta)
	key := tabletKey{tabletID: meta.TabletID, schemaHash: meta.SchemaHash}
	s := m.shardFor(meta.TabletID)
	s.mu.Lock()
	s.tablets[key] = t
	s.mu.Unlock()
	return t, nil
}

// GetTablet looks up a registered tablet by id and schema hash.
func (m *TabletManager) GetTablet(tabletID TabletID, schemaHash SchemaHash) (*Tablet, error) {
	s := m.shardFor(tabletID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tablets[tabletKey{tabletID: tabletID, schemaHash: schemaHash}]
	if !ok {
		return nil, errTabletNotFound(tabletID)
	}
	return t, nil
}

// DropTablet removes a registered tablet.
func (m *TabletManager) DropTablet(tabletID TabletID, schemaHash SchemaHash) error {
	s := m.shardFor(tabletID)
	s.mu.Lock()
	defer s.mu.Unlock()
	key := tabletKey{tabletID: tabletID, schemaHash: schemaHash}
	if _, ok := s.tablets[key]; !ok {
		return errTabletNotFound(tabletID)
	}
	delete(s.tablets, key)
	return nil
}

// TabletCount returns the total number of registered tablets across all
// shards.
func (m *TabletManager) TabletCount() int {
	n := 0
	for _, s := range m.shards {
		s.mu.RLock()
		n += len(s.tablets)
		s.mu.RUnlock()
	}
	return n
}

// CompactionCandidate is one tablet's compaction score, as returned by
// CollectCompactionCandidates.
type CompactionCandidate struct {
	TabletID   TabletID
	SchemaHash SchemaHash
	Score      float64
}

// CollectCompactionCandidates scores every registered tablet concurrently
// — one goroutine per shard, fanned out via errgroup — and returns all
// candidates sorted by descending score.
func (m *TabletManager) CollectCompactionCandidates(ctx context.Context, ctype CompactionType) ([]CompactionCandidate, error) {
	perShard := make([][]CompactionCandidate, numShards)

	g, _ := errgroup.WithContext(ctx)
	for i, s := range m.shards {
		i, s := i, s
		g.Go(func() error {
			s.mu.RLock()
			defer s.mu.RUnlock()
			local := make([]CompactionCandidate, 0, len(s.tablets))
			for key, t := range s.tablets {
				local = append(local, CompactionCandidate{
					TabletID:   key.tabletID,
					SchemaHash: key.schemaHash,
					Score:      t.ComputeCompactionScore(ctype),
				})
			}
			perShard[i] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "collect compaction candidates")
	}

	var result []CompactionCandidate
	for _, local := range perShard {
		result = append(result, local...)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Score > result[j].Score })
	return result, nil
}
