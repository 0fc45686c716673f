// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordCacheHit_IncrementsCounter(t *testing.T) {
	svcMetrics.init()
	before := testutil.ToFloat64(svcMetrics.cacheHits)
	RecordCacheHit()
	after := testutil.ToFloat64(svcMetrics.cacheHits)
	assert.Equal(t, before+1, after)
}

func TestRecordCatalogLoad_SetsGaugeOnSuccess(t *testing.T) {
	RecordCatalogLoad(0.01, 7, nil)
	assert.Equal(t, float64(7), testutil.ToFloat64(svcMetrics.catalogRuleCount))
}

func TestRecordCatalogLoad_IncrementsErrorsOnFailure(t *testing.T) {
	before := testutil.ToFloat64(svcMetrics.catalogLoadErrors)
	RecordCatalogLoad(0, 0, assertErr{})
	after := testutil.ToFloat64(svcMetrics.catalogLoadErrors)
	assert.Equal(t, before+1, after)
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
