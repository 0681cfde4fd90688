package storage

import (
	"testing"
	"time"

	"github.com/KevinKickass/FloorCore/internal/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOrderPatch_AllowList(t *testing.T) {
	status := types.OrderInProgress
	machineID := uuid.New()
	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	set, args := buildOrderPatch(types.OrderPatch{
		Status:    &status,
		MachineID: &machineID,
		StartTime: &start,
	})

	require.Equal(t, []string{"status = $1", "machine_id = $2", "start_time = $3"}, set)
	require.Equal(t, []any{status, machineID, start}, args)
}

func TestBuildOrderPatch_ClearFlagsWriteNull(t *testing.T) {
	status := types.OrderInProgress

	set, args := buildOrderPatch(types.OrderPatch{
		Status:         &status,
		ClearStopTime:  true,
		ClearMachineID: true,
	})

	assert.Contains(t, set, "stop_time = NULL")
	assert.Contains(t, set, "machine_id = NULL")
	// NULL writes carry no args
	assert.Len(t, args, 1)
}

func TestBuildOrderPatch_ClearWinsOverValue(t *testing.T) {
	machineID := uuid.New()
	now := time.Now()

	set, _ := buildOrderPatch(types.OrderPatch{
		MachineID:      &machineID,
		ClearMachineID: true,
		StopTime:       &now,
		ClearStopTime:  true,
	})

	assert.Contains(t, set, "machine_id = NULL")
	assert.Contains(t, set, "stop_time = NULL")
	assert.NotContains(t, set, "machine_id = $1")
}

func TestBuildOrderPatch_CompleteShape(t *testing.T) {
	done := types.OrderCompleted
	actual := 95
	efficiency := 95.0
	archived := true
	completeTime := time.Now()

	set, args := buildOrderPatch(types.OrderPatch{
		Status:         &done,
		ActualQuantity: &actual,
		Efficiency:     &efficiency,
		Archived:       &archived,
		CompleteTime:   &completeTime,
	})

	assert.Len(t, set, 5)
	assert.Len(t, args, 5)
	assert.Equal(t, []string{
		"status = $1",
		"complete_time = $2",
		"actual_quantity = $3",
		"efficiency_percentage = $4",
		"archived = $5",
	}, set)
}

func TestOrderPatch_Empty(t *testing.T) {
	assert.True(t, types.OrderPatch{}.Empty())

	status := types.OrderPaused
	assert.False(t, types.OrderPatch{Status: &status}.Empty())
	assert.False(t, types.OrderPatch{ClearStopTime: true}.Empty())
}

func TestStatusStrings(t *testing.T) {
	got := statusStrings(types.HaltedStatuses)
	assert.Equal(t, []string{"paused", "stopped"}, got)
}
