package oee

import (
	"testing"
	"time"

	"github.com/KevinKickass/FloorCore/internal/types"
	"github.com/stretchr/testify/assert"
)

func minutes(n int) *int { return &n }

func TestEfficiency(t *testing.T) {
	tests := []struct {
		name    string
		actual  int
		planned int
		want    float64
	}{
		{"exact", 100, 100, 100},
		{"under", 95, 100, 95},
		{"rounding", 1, 3, 33.33},
		{"rounding up", 2, 3, 66.67},
		{"overproduction kept", 110, 100, 110},
		{"zero planned", 50, 0, 0},
		{"negative planned", 50, -10, 0},
		{"zero actual", 0, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Efficiency(tt.actual, tt.planned))
		})
	}
}

func TestCompute(t *testing.T) {
	order := &types.ProductionOrder{Quantity: 100, ActualQuantity: 90}
	stops := []types.StopInterval{
		{StartTime: time.Now(), DurationMinutes: minutes(30)},
		{StartTime: time.Now(), DurationMinutes: minutes(18)},
	}

	m := Compute(order, stops, 480)

	assert.Equal(t, 48, m.DowntimeMinutes)
	assert.Equal(t, 90.0, m.AvailabilityPercentage)
	assert.Equal(t, 100.0, m.PerformancePercentage)
	assert.Equal(t, 90.0, m.QualityPercentage)
	assert.Equal(t, 81.0, m.OEEPercentage)
}

func TestCompute_OpenIntervalsContributeNothing(t *testing.T) {
	order := &types.ProductionOrder{Quantity: 10, ActualQuantity: 10}
	stops := []types.StopInterval{
		{StartTime: time.Now()}, // open, no duration yet
		{StartTime: time.Now(), DurationMinutes: minutes(12)},
	}

	m := Compute(order, stops, 120)
	assert.Equal(t, 12, m.DowntimeMinutes)
	assert.Equal(t, 90.0, m.AvailabilityPercentage)
}

func TestCompute_ZeroScheduledTime(t *testing.T) {
	order := &types.ProductionOrder{Quantity: 100, ActualQuantity: 100}

	m := Compute(order, nil, 0)
	assert.Equal(t, 0.0, m.AvailabilityPercentage)
	assert.Equal(t, 0.0, m.OEEPercentage)
}

func TestCompute_Clamping(t *testing.T) {
	// More downtime than scheduled time: availability clamps to 0
	order := &types.ProductionOrder{Quantity: 100, ActualQuantity: 150}
	stops := []types.StopInterval{{StartTime: time.Now(), DurationMinutes: minutes(600)}}

	m := Compute(order, stops, 480)
	assert.Equal(t, 0.0, m.AvailabilityPercentage)
	// Quality clamps to 100 even with overproduction
	assert.Equal(t, 100.0, m.QualityPercentage)
	assert.Equal(t, 0.0, m.OEEPercentage)
}

func TestCompute_NilOrder(t *testing.T) {
	m := Compute(nil, nil, 480)
	assert.Equal(t, 0.0, m.QualityPercentage)
	assert.Equal(t, 100.0, m.AvailabilityPercentage)
}

func TestComputeWithPerformance(t *testing.T) {
	order := &types.ProductionOrder{Quantity: 100, ActualQuantity: 100}

	m := ComputeWithPerformance(order, nil, 480, 80)
	assert.Equal(t, 80.0, m.PerformancePercentage)
	assert.Equal(t, 80.0, m.OEEPercentage)

	// Out-of-range performance clamps
	m = ComputeWithPerformance(order, nil, 480, 140)
	assert.Equal(t, 100.0, m.PerformancePercentage)
}
