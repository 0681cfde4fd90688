package lifecycle

import (
	"fmt"

	"github.com/KevinKickass/FloorCore/internal/types"
	"github.com/google/uuid"
)

// Transition commands. The HTTP layer builds these from validated request
// bodies; the coordinator never sees raw request data.

type StartCommand struct {
	OrderID    uuid.UUID
	MachineID  uuid.UUID
	OperatorID *uuid.UUID
}

func (c StartCommand) Validate() error {
	if c.OrderID == uuid.Nil {
		return fmt.Errorf("%w: order_id is required", types.ErrInvalid)
	}
	if c.MachineID == uuid.Nil {
		return fmt.Errorf("%w: machine_id is required", types.ErrInvalid)
	}
	return nil
}

type HaltCommand struct {
	OrderID     uuid.UUID
	Reason      string
	Category    string
	Notes       string
	RequestedBy *uuid.UUID
}

func (c HaltCommand) Validate() error {
	if c.OrderID == uuid.Nil {
		return fmt.Errorf("%w: order_id is required", types.ErrInvalid)
	}
	if c.Reason == "" {
		return fmt.Errorf("%w: reason is required", types.ErrInvalid)
	}
	return nil
}

type ResumeCommand struct {
	OrderID    uuid.UUID
	ResolvedBy *uuid.UUID
}

func (c ResumeCommand) Validate() error {
	if c.OrderID == uuid.Nil {
		return fmt.Errorf("%w: order_id is required", types.ErrInvalid)
	}
	return nil
}

type CompleteCommand struct {
	OrderID        uuid.UUID
	ActualQuantity int
	Waste          *int
}

func (c CompleteCommand) Validate() error {
	if c.OrderID == uuid.Nil {
		return fmt.Errorf("%w: order_id is required", types.ErrInvalid)
	}
	if c.ActualQuantity < 0 {
		return fmt.Errorf("%w: actual_quantity must not be negative", types.ErrInvalid)
	}
	if c.Waste != nil && *c.Waste < 0 {
		return fmt.Errorf("%w: waste must not be negative", types.ErrInvalid)
	}
	return nil
}

type AbortCommand struct {
	OrderID     uuid.UUID
	Reason      string
	Notes       string
	RequestedBy *uuid.UUID
}

func (c AbortCommand) Validate() error {
	if c.OrderID == uuid.Nil {
		return fmt.Errorf("%w: order_id is required", types.ErrInvalid)
	}
	if c.Reason == "" {
		return fmt.Errorf("%w: reason is required", types.ErrInvalid)
	}
	return nil
}

// HaltResult identifies the opened downtime interval.
type HaltResult struct {
	StopID uuid.UUID         `json:"stop_id"`
	Status types.OrderStatus `json:"status"`
}

// ResumeResult carries the closed interval's duration.
type ResumeResult struct {
	DurationMinutes int `json:"duration_minutes"`
}
