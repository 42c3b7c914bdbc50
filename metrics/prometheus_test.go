package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	m := New()
	m.PipelineRuns.Inc()
	m.StageFailures.WithLabelValues("processing").Inc()
	m.DeliveryAttempts.WithLabelValues("failure").Add(2)
	m.Subscribers.Set(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PipelineRuns))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DeliveryAttempts.WithLabelValues("failure")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Subscribers))

	families, err := m.Registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "relay_pipeline_runs_total")
	assert.Contains(t, names, "relay_stage_failures_total")
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.PipelineRuns.Inc()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.PipelineRuns))
}
