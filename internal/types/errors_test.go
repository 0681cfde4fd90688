package types

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrors_MatchThroughWrapping(t *testing.T) {
	err := fmt.Errorf("cannot start order x: %w", ErrConflict)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrNotFound)

	err = fmt.Errorf("%w: machine m1", ErrMachineUnavailable)
	assert.ErrorIs(t, err, ErrMachineUnavailable)
	// MachineUnavailable is its own sentinel, not a wrapped Conflict;
	// callers that care about the distinction branch on it first
	assert.NotErrorIs(t, err, ErrConflict)
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("CONFLICT", "Order state changed", "order x is completed")
	assert.Equal(t, "CONFLICT", resp.Error.Code)
	assert.Equal(t, "Order state changed", resp.Error.Message)
	assert.Equal(t, "order x is completed", resp.Error.Details)

	resp = NewErrorResponse("NOT_FOUND", "gone", nil)
	assert.Nil(t, resp.Error.Details)
}

func TestHaltedStatuses(t *testing.T) {
	assert.True(t, OrderPaused.Halted())
	assert.True(t, OrderStopped.Halted())
	assert.False(t, OrderPending.Halted())
	assert.False(t, OrderInProgress.Halted())
	assert.False(t, OrderCompleted.Halted())
}

func TestValidMachineStatus(t *testing.T) {
	for _, st := range []MachineStatus{MachineAvailable, MachineInUse, MachineMaintenance, MachineOffline} {
		assert.True(t, ValidMachineStatus(st))
	}
	assert.False(t, ValidMachineStatus("running"))
	assert.False(t, ValidMachineStatus(""))
}

func TestOrderPatchEmptyDetectsClearFlags(t *testing.T) {
	assert.True(t, OrderPatch{}.Empty())
	assert.False(t, OrderPatch{ClearMachineID: true}.Empty())
}
