package rewards

import (
	"github.com/eigerco/erarewards/internal/safemath"
	"github.com/eigerco/erarewards/pkg/metrics"
)

var metricExtraWeight = metrics.LazyLoadCounter("extra_weight")

// NoopWeightMeter discards weight registrations.
type NoopWeightMeter struct{}

func (NoopWeightMeter) RegisterExtraWeight(uint64) {}

// MeteredWeightMeter sums registered weight and exports it as a metric.
type MeteredWeightMeter struct {
	total uint64
}

func (m *MeteredWeightMeter) RegisterExtraWeight(units uint64) {
	m.total = safemath.SaturatingAdd(m.total, units)
	metricExtraWeight().Add(int64(min(units, uint64(1<<63-1))))
}

// Total returns the weight registered so far.
func (m *MeteredWeightMeter) Total() uint64 {
	return m.total
}
