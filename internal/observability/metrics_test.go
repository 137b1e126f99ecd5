package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.CacheLookup(LookupHit)
	m.CacheLookup(LookupHit)
	m.CacheLookup(LookupExpired)
	m.CacheSave(nil)
	m.CacheSave(errors.New("disk full"))
	m.Fetch(FetchSuccess, 150*time.Millisecond)
	m.Interaction(InteractionServed)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues(LookupHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues(LookupExpired)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheSaves.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheSaves.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetches.WithLabelValues(FetchSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.interactions.WithLabelValues(InteractionServed)))

	count, err := testutil.GatherAndCount(reg, "speechmeme_upstream_fetch_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_NilIsNoOp(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CacheLookup(LookupMiss)
		m.CacheSave(nil)
		m.Fetch(FetchError, time.Second)
		m.Interaction(InteractionError)
	})
}
