package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGetReturnsSingleton(t *testing.T) {
	assert.Same(t, Get(), Initialize())
}

func TestRecomputationCounter(t *testing.T) {
	m := Get()
	m.StatsRecomputationsTotal.Reset()

	m.StatsRecomputationsTotal.WithLabelValues("rating", "written").Inc()
	m.StatsRecomputationsTotal.WithLabelValues("rating", "written").Inc()
	m.StatsRecomputationsTotal.WithLabelValues("share", "unchanged").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StatsRecomputationsTotal.WithLabelValues("rating", "written")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StatsRecomputationsTotal.WithLabelValues("share", "unchanged")))
}
