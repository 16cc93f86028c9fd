// Copyright 2025 The OLAPStore Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package olapstore

import "github.com/prometheus/client_golang/prometheus"

// metrics holds the engine's Prometheus instrumentation. A nil *metrics
// (as produced when the caller supplies no registerer) makes every method
// a no-op, so callers never need to nil-check before recording.
type metrics struct {
	rowsetsPublished prometheus.Counter
	tabletsCreated   prometheus.Counter
	compactionRuns   prometheus.Counter
	compactionScore  prometheus.Histogram
	tabletCount      prometheus.GaugeFunc
}

func newMetrics(reg prometheus.Registerer, tabletCount func() float64) *metrics {
	if reg == nil {
		return nil
	}
	m := &metrics{
		rowsetsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "olapstore",
			Name:      "rowsets_published_total",
			Help:      "Number of rowsets published via PublishRowset.",
		}),
		tabletsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "olapstore",
			Name:      "tablets_created_total",
			Help:      "Number of tablets created.",
		}),
		compactionRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "olapstore",
			Name:      "compaction_schedule_runs_total",
			Help:      "Number of ScheduleCompaction invocations.",
		}),
		compactionScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "olapstore",
			Name:      "compaction_candidate_score",
			Help:      "Distribution of compaction candidate scores per schedule run.",
			Buckets:   prometheus.LinearBuckets(0, 2, 10),
		}),
	}
	m.tabletCount = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "olapstore",
		Name:      "tablets_registered",
		Help:      "Current number of tablets registered with the engine.",
	}, tabletCount)

	reg.MustRegister(m.rowsetsPublished, m.tabletsCreated, m.compactionRuns, m.compactionScore, m.tabletCount)
	return m
}

func (m *metrics) incRowsetsPublished() {
	if m == nil {
		return
	}
	m.rowsetsPublished.Inc()
}

func (m *metrics) incTabletsCreated() {
	if m == nil {
		return
	}
	m.tabletsCreated.Inc()
}

func (m *metrics) observeCompactionRun(scores []CompactionCandidate) {
	if m == nil {
		return
	}
	m.compactionRuns.Inc()
	for _, c := range scores {
		m.compactionScore.Observe(c.Score)
	}
}
