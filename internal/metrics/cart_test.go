package metrics

import (
	"fmt"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestCartMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCartMetrics(reg)

	m.ObserveWrite(ResultSuccess)
	m.ObserveWrite(ResultFailure)
	m.ObserveWrite(ResultFailure)
	m.ObserveFallback(DirectionEnter, ReasonQuota)
	m.ObserveHydration(SourceFallback)
	m.ObserveAction("")

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := fetchCounterValue(mfs, "cart_persist_writes_total", map[string]string{"result": ResultFailure})
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	got, err = fetchCounterValue(mfs, "cart_persist_fallback_transitions_total", map[string]string{"direction": DirectionEnter, "reason": ReasonQuota})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = fetchCounterValue(mfs, "cart_hydrations_total", map[string]string{"source": SourceFallback})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = fetchCounterValue(mfs, "cart_actions_total", map[string]string{"action": "unknown"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestNilCartMetricsIsNoop(t *testing.T) {
	var m *CartMetrics
	m.ObserveWrite(ResultSuccess)
	m.ObserveFallback(DirectionRecover, ReasonNone)
	m.ObserveHydration(SourceEmpty)
	m.ObserveAction("add")

	unregistered := NewCartMetrics(nil)
	unregistered.ObserveWrite(ResultSuccess)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if matchLabels(metric.GetLabel(), labels) {
				return metric.GetCounter().GetValue(), nil
			}
		}
	}
	return 0, fmt.Errorf("metric %s%v not found", name, labels)
}

func matchLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok {
			if v != pair.GetValue() {
				return false
			}
			matched++
		}
	}
	return matched == len(want)
}
