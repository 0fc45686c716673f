// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics holds the Prometheus instrumentation for pkg/service's
// operations: pattern cache hit/miss, files scanned and matched, and rule
// catalog load duration/size.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type metricsService struct {
	once sync.Once

	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter

	filesScanned  prometheus.Counter
	filesSkipped  prometheus.Counter
	matchesFound  prometheus.Counter
	replaceApplied prometheus.Counter

	catalogLoadDuration prometheus.Histogram
	catalogRuleCount    prometheus.Gauge
	catalogLoadErrors   prometheus.Counter

	searchDuration prometheus.Histogram
}

var svcMetrics metricsService

func (m *metricsService) init() {
	m.once.Do(func() {
		m.cacheHits = prometheus.NewCounter(prometheus.CounterOpts{Name: "sgrep_pattern_cache_hits_total", Help: "Compiled pattern cache hits"})
		m.cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{Name: "sgrep_pattern_cache_misses_total", Help: "Compiled pattern cache misses"})

		m.filesScanned = prometheus.NewCounter(prometheus.CounterOpts{Name: "sgrep_files_scanned_total", Help: "Files walked by a search or replace operation"})
		m.filesSkipped = prometheus.NewCounter(prometheus.CounterOpts{Name: "sgrep_files_skipped_total", Help: "Files skipped due to size cap, decode, or parse failure"})
		m.matchesFound = prometheus.NewCounter(prometheus.CounterOpts{Name: "sgrep_matches_found_total", Help: "Pattern or rule matches found"})
		m.replaceApplied = prometheus.NewCounter(prometheus.CounterOpts{Name: "sgrep_replace_applied_total", Help: "File edits written to disk (excludes dry runs)"})

		buckets := []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
		m.catalogLoadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "sgrep_rule_catalog_load_seconds", Help: "Duration of a rule catalog load/reload", Buckets: buckets})
		m.catalogRuleCount = prometheus.NewGauge(prometheus.GaugeOpts{Name: "sgrep_rule_catalog_size", Help: "Number of rules currently loaded in the catalog"})
		m.catalogLoadErrors = prometheus.NewCounter(prometheus.CounterOpts{Name: "sgrep_rule_catalog_load_errors_total", Help: "Rule catalog load/reload failures"})

		m.searchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "sgrep_search_seconds", Help: "Duration of a search, file_search, rule_search, replace, file_replace, or rule_replace call", Buckets: buckets})

		prometheus.MustRegister(
			m.cacheHits, m.cacheMisses,
			m.filesScanned, m.filesSkipped, m.matchesFound, m.replaceApplied,
			m.catalogLoadDuration, m.catalogRuleCount, m.catalogLoadErrors,
			m.searchDuration,
		)
	})
}

// RecordCacheHit increments the compiled pattern cache hit counter.
func RecordCacheHit() { svcMetrics.init(); svcMetrics.cacheHits.Inc() }

// RecordCacheMiss increments the compiled pattern cache miss counter.
func RecordCacheMiss() { svcMetrics.init(); svcMetrics.cacheMisses.Inc() }

// RecordFilesScanned adds n to the total files walked across all operations.
func RecordFilesScanned(n int) { svcMetrics.init(); svcMetrics.filesScanned.Add(float64(n)) }

// RecordFilesSkipped adds n to the total files skipped (size cap, decode, parse).
func RecordFilesSkipped(n int) { svcMetrics.init(); svcMetrics.filesSkipped.Add(float64(n)) }

// RecordMatches adds n to the total matches found.
func RecordMatches(n int) { svcMetrics.init(); svcMetrics.matchesFound.Add(float64(n)) }

// RecordReplaceApplied adds n to the total file edits actually written.
func RecordReplaceApplied(n int) { svcMetrics.init(); svcMetrics.replaceApplied.Add(float64(n)) }

// RecordCatalogLoad observes a catalog load/reload's duration and resulting
// size, or increments the error counter if err is non-nil.
func RecordCatalogLoad(seconds float64, ruleCount int, err error) {
	svcMetrics.init()
	if err != nil {
		svcMetrics.catalogLoadErrors.Inc()
		return
	}
	svcMetrics.catalogLoadDuration.Observe(seconds)
	svcMetrics.catalogRuleCount.Set(float64(ruleCount))
}

// RecordSearchDuration observes the wall-clock duration of one façade call.
func RecordSearchDuration(seconds float64) {
	svcMetrics.init()
	svcMetrics.searchDuration.Observe(seconds)
}
