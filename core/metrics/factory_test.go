package metrics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/mealmatch/core/factory"
	metrics "github.com/kilianp07/mealmatch/core/metrics"
	inframetrics "github.com/kilianp07/mealmatch/infra/metrics"
)

func TestNewMetricsSinkBuiltins(t *testing.T) {
	s, err := metrics.NewMetricsSink(nil)
	require.NoError(t, err)
	assert.IsType(t, metrics.NopSink{}, s)

	s, err = metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}})
	require.NoError(t, err)
	assert.IsType(t, metrics.NopSink{}, s)

	s, err = metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "prometheus"}})
	require.NoError(t, err)
	prom, ok := s.(*inframetrics.PromSink)
	require.True(t, ok, "got %T", s)
	_, isRecorder := s.(metrics.BatchOutcomeRecorder)
	assert.True(t, isRecorder)

	// a second prometheus sink reuses the registered collectors
	again, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "prometheus"}})
	require.NoError(t, err)
	assert.Equal(t, prom, again)
}

func TestNewMetricsSinkUnknownType(t *testing.T) {
	_, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "missing"}})
	assert.Error(t, err)
}

func TestRegisterMetricsSinkDuplicate(t *testing.T) {
	err := metrics.RegisterMetricsSink("prometheus", func(map[string]any) (metrics.MetricsSink, error) {
		return metrics.NopSink{}, nil
	})
	assert.Error(t, err)
}
