// Package oee derives efficiency and OEE figures from order and downtime
// data. Everything here is pure; nothing is stored and nothing mutates.
package oee

import (
	"math"

	"github.com/KevinKickass/FloorCore/internal/types"
)

// Metrics is the derived OEE breakdown, percentages in [0,100] except OEE
// itself which is the product of the three.
type Metrics struct {
	AvailabilityPercentage float64 `json:"availability_percentage"`
	PerformancePercentage  float64 `json:"performance_percentage"`
	QualityPercentage      float64 `json:"quality_percentage"`
	OEEPercentage          float64 `json:"oee_percentage"`
	DowntimeMinutes        int     `json:"downtime_minutes"`
}

// Efficiency returns actual/planned as a percentage, rounded to two
// decimals. Zero planned quantity yields 0, not an error. Values above 100
// are kept; overproduction is real and should be visible.
func Efficiency(actual, planned int) float64 {
	if planned <= 0 {
		return 0
	}
	return round2(float64(actual) / float64(planned) * 100)
}

// Compute derives the OEE breakdown for one order. scheduledMinutes is the
// planned production window; performance defaults to 100 absent cycle-time
// data and can be overridden with ComputeWithPerformance.
func Compute(order *types.ProductionOrder, stops []types.StopInterval, scheduledMinutes int) Metrics {
	return ComputeWithPerformance(order, stops, scheduledMinutes, 100)
}

func ComputeWithPerformance(order *types.ProductionOrder, stops []types.StopInterval, scheduledMinutes int, performance float64) Metrics {
	downtime := DowntimeMinutes(stops)

	var availability float64
	if scheduledMinutes > 0 {
		availability = float64(scheduledMinutes-downtime) / float64(scheduledMinutes) * 100
	}

	var quality float64
	if order != nil && order.Quantity > 0 {
		quality = float64(order.ActualQuantity) / float64(order.Quantity) * 100
	}

	availability = clamp(availability)
	performance = clamp(performance)
	quality = clamp(quality)

	return Metrics{
		AvailabilityPercentage: round2(availability),
		PerformancePercentage:  round2(performance),
		QualityPercentage:      round2(quality),
		OEEPercentage:          round2(availability * performance * quality / 10000),
		DowntimeMinutes:        downtime,
	}
}

// DowntimeMinutes sums closed interval durations. Open intervals contribute
// nothing; their duration is unknown until they close.
func DowntimeMinutes(stops []types.StopInterval) int {
	total := 0
	for _, s := range stops {
		if s.DurationMinutes != nil {
			total += *s.DurationMinutes
		}
	}
	return total
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
