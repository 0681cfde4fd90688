package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KevinKickass/FloorCore/internal/config"
	"github.com/KevinKickass/FloorCore/internal/events"
	"github.com/KevinKickass/FloorCore/internal/oee"
	"github.com/KevinKickass/FloorCore/internal/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Coordinator drives production orders through their legal states. It is the
// only component that mutates order, machine and ledger together; each
// transition is one transaction, and events go out strictly after commit.
//
// There is no lock here. Mutual exclusion comes entirely from conditional
// updates on the status columns, so any number of coordinator instances can
// run against the same database.
type Coordinator struct {
	store     Store
	broadcast events.Broadcaster
	logger    *zap.Logger
	timeout   time.Duration
	now       func() time.Time
}

func NewCoordinator(store Store, broadcast events.Broadcaster, logger *zap.Logger, cfg config.CoordinatorConfig) *Coordinator {
	timeout := cfg.TransitionTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Coordinator{
		store:     store,
		broadcast: broadcast,
		logger:    logger,
		timeout:   timeout,
		now:       time.Now,
	}
}

// SetClock replaces the time source. Tests only.
func (c *Coordinator) SetClock(now func() time.Time) {
	c.now = now
}

func (c *Coordinator) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

// Start moves a pending order to in_progress and claims the machine. Either
// both land or neither does: a failed acquire rolls the order update back,
// and a lost order race rolls the acquire back.
func (c *Coordinator) Start(ctx context.Context, cmd StartCommand) (*types.ProductionOrder, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	var updated *types.ProductionOrder
	start := c.now()

	err := c.store.InTx(ctx, func(tx TxStore) error {
		inProgress := types.OrderInProgress
		rows, err := tx.ConditionalUpdateOrder(ctx, cmd.OrderID,
			[]types.OrderStatus{types.OrderPending},
			types.OrderPatch{
				Status:     &inProgress,
				MachineID:  &cmd.MachineID,
				OperatorID: cmd.OperatorID,
				StartTime:  &start,
			})
		if err != nil {
			return err
		}
		if rows == 0 {
			return c.classifyConflict(ctx, tx, cmd.OrderID, "start")
		}

		if err := tx.AcquireMachine(ctx, cmd.MachineID); err != nil {
			return err
		}

		updated, err = tx.GetOrder(ctx, cmd.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("Order started",
		zap.String("order_id", cmd.OrderID.String()),
		zap.String("machine_id", cmd.MachineID.String()))

	c.broadcast.Publish(events.NewOrderEvent(events.EventOrderStarted, events.OrderEventData{
		OrderID:     updated.ID,
		OrderNumber: updated.OrderNumber,
		MachineID:   updated.MachineID,
		Status:      string(updated.Status),
	}))
	return updated, nil
}

// Halt pauses a running order and opens a downtime interval. The machine
// stays reserved; a halted order resumes on the machine it started on.
func (c *Coordinator) Halt(ctx context.Context, cmd HaltCommand) (*HaltResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	var (
		stopID  uuid.UUID
		updated *types.ProductionOrder
	)
	halted := c.now()

	err := c.store.InTx(ctx, func(tx TxStore) error {
		paused := types.OrderPaused
		rows, err := tx.ConditionalUpdateOrder(ctx, cmd.OrderID,
			[]types.OrderStatus{types.OrderInProgress},
			types.OrderPatch{
				Status:   &paused,
				StopTime: &halted,
			})
		if err != nil {
			return err
		}
		if rows == 0 {
			return c.classifyConflict(ctx, tx, cmd.OrderID, "halt")
		}

		stopID, err = tx.OpenStopInterval(ctx, types.StopSpec{
			OrderID:   cmd.OrderID,
			Reason:    cmd.Reason,
			Category:  cmd.Category,
			Notes:     cmd.Notes,
			StartTime: halted,
			CreatedBy: cmd.RequestedBy,
		})
		if err != nil {
			return err
		}

		updated, err = tx.GetOrder(ctx, cmd.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("Order halted",
		zap.String("order_id", cmd.OrderID.String()),
		zap.String("reason", cmd.Reason),
		zap.String("stop_id", stopID.String()))

	c.broadcast.Publish(events.NewOrderEvent(events.EventOrderPaused, events.OrderEventData{
		OrderID:     updated.ID,
		OrderNumber: updated.OrderNumber,
		MachineID:   updated.MachineID,
		Status:      string(updated.Status),
		StopID:      &stopID,
		Reason:      cmd.Reason,
	}))
	return &HaltResult{StopID: stopID, Status: updated.Status}, nil
}

// Resume closes the open downtime interval and puts the order back in
// progress. Only valid for halted orders that actually hold a machine.
func (c *Coordinator) Resume(ctx context.Context, cmd ResumeCommand) (*ResumeResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	var (
		minutes int
		updated *types.ProductionOrder
	)
	resumed := c.now()

	err := c.store.InTx(ctx, func(tx TxStore) error {
		order, err := tx.GetOrder(ctx, cmd.OrderID)
		if err != nil {
			return err
		}
		if order.Status.Halted() && order.MachineID == nil {
			// Aborted before it ever started; there is nothing to resume onto
			return fmt.Errorf("%w: order %s was never started", types.ErrConflict, cmd.OrderID)
		}

		inProgress := types.OrderInProgress
		rows, err := tx.ConditionalUpdateOrder(ctx, cmd.OrderID,
			types.HaltedStatuses,
			types.OrderPatch{
				Status:        &inProgress,
				ClearStopTime: true,
			})
		if err != nil {
			return err
		}
		if rows == 0 {
			return c.classifyConflict(ctx, tx, cmd.OrderID, "resume")
		}

		minutes, err = tx.CloseOpenStopInterval(ctx, cmd.OrderID, resumed, cmd.ResolvedBy)
		if err != nil {
			if !errors.Is(err, types.ErrNotFound) {
				return err
			}
			// Halt always opens an interval in the same transaction, so this
			// only happens on hand-edited data. Resume anyway.
			c.logger.Warn("No open stop interval on resume",
				zap.String("order_id", cmd.OrderID.String()))
			minutes = 0
		}

		updated, err = tx.GetOrder(ctx, cmd.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("Order resumed",
		zap.String("order_id", cmd.OrderID.String()),
		zap.Int("duration_minutes", minutes))

	c.broadcast.Publish(events.NewOrderEvent(events.EventOrderResumed, events.OrderEventData{
		OrderID:         updated.ID,
		OrderNumber:     updated.OrderNumber,
		MachineID:       updated.MachineID,
		Status:          string(updated.Status),
		DurationMinutes: &minutes,
	}))
	return &ResumeResult{DurationMinutes: minutes}, nil
}

// Complete finishes a running order: records the produced quantity, derives
// the efficiency percentage, archives the order and releases the machine.
// The order's machine link is cleared; a completed order holds nothing.
// Terminal; nothing moves a completed order again.
func (c *Coordinator) Complete(ctx context.Context, cmd CompleteCommand) (*types.ProductionOrder, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	var (
		updated   *types.ProductionOrder
		machineID *uuid.UUID
	)
	completed := c.now()

	err := c.store.InTx(ctx, func(tx TxStore) error {
		order, err := tx.GetOrder(ctx, cmd.OrderID)
		if err != nil {
			return err
		}
		machineID = order.MachineID

		done := types.OrderCompleted
		archived := true
		efficiency := oee.Efficiency(cmd.ActualQuantity, order.Quantity)
		patch := types.OrderPatch{
			Status:         &done,
			ActualQuantity: &cmd.ActualQuantity,
			Efficiency:     &efficiency,
			CompleteTime:   &completed,
			Archived:       &archived,
			ClearMachineID: true,
		}
		if cmd.Waste != nil {
			notes := appendWasteNote(order.Notes, *cmd.Waste)
			patch.Notes = &notes
		}

		rows, err := tx.ConditionalUpdateOrder(ctx, cmd.OrderID,
			[]types.OrderStatus{types.OrderInProgress}, patch)
		if err != nil {
			return err
		}
		if rows == 0 {
			return c.classifyConflict(ctx, tx, cmd.OrderID, "complete")
		}

		// A running order has no open interval, but close a stray one rather
		// than archiving an order with downtime still ticking
		if _, err := tx.CloseOpenStopInterval(ctx, cmd.OrderID, completed, nil); err != nil && !errors.Is(err, types.ErrNotFound) {
			return err
		}

		if machineID != nil {
			if err := tx.ReleaseMachine(ctx, *machineID); err != nil {
				return err
			}
		}

		updated, err = tx.GetOrder(ctx, cmd.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("Order completed",
		zap.String("order_id", cmd.OrderID.String()),
		zap.Int("actual_quantity", updated.ActualQuantity),
		zap.Float64("efficiency", updated.EfficiencyPercentage))

	c.broadcast.Publish(events.NewOrderEvent(events.EventOrderCompleted, events.OrderEventData{
		OrderID:              updated.ID,
		OrderNumber:          updated.OrderNumber,
		MachineID:            machineID,
		Status:               string(updated.Status),
		ActualQuantity:       &updated.ActualQuantity,
		EfficiencyPercentage: &updated.EfficiencyPercentage,
	}))
	return updated, nil
}

// Abort forces any non-completed order into the halted (stopped) state.
// A pending order is halted without machine effects; an already halted
// order just changes its label and keeps its open interval.
func (c *Coordinator) Abort(ctx context.Context, cmd AbortCommand) (*HaltResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	var (
		stopID  uuid.UUID
		updated *types.ProductionOrder
	)
	aborted := c.now()

	err := c.store.InTx(ctx, func(tx TxStore) error {
		order, err := tx.GetOrder(ctx, cmd.OrderID)
		if err != nil {
			return err
		}
		stopped := types.OrderStopped

		if order.Status.Halted() {
			// Already halted: relabel, keep the open interval
			rows, err := tx.ConditionalUpdateOrder(ctx, cmd.OrderID,
				types.HaltedStatuses, types.OrderPatch{Status: &stopped})
			if err != nil {
				return err
			}
			if rows == 0 {
				return c.classifyConflict(ctx, tx, cmd.OrderID, "abort")
			}
			updated, err = tx.GetOrder(ctx, cmd.OrderID)
			return err
		}

		rows, err := tx.ConditionalUpdateOrder(ctx, cmd.OrderID,
			[]types.OrderStatus{types.OrderPending, types.OrderInProgress},
			types.OrderPatch{
				Status:   &stopped,
				StopTime: &aborted,
			})
		if err != nil {
			return err
		}
		if rows == 0 {
			return c.classifyConflict(ctx, tx, cmd.OrderID, "abort")
		}

		stopID, err = tx.OpenStopInterval(ctx, types.StopSpec{
			OrderID:   cmd.OrderID,
			Reason:    cmd.Reason,
			Notes:     cmd.Notes,
			StartTime: aborted,
			CreatedBy: cmd.RequestedBy,
		})
		if err != nil {
			return err
		}

		updated, err = tx.GetOrder(ctx, cmd.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("Order aborted",
		zap.String("order_id", cmd.OrderID.String()),
		zap.String("reason", cmd.Reason))

	c.broadcast.Publish(events.NewOrderEvent(events.EventOrderAborted, events.OrderEventData{
		OrderID:     updated.ID,
		OrderNumber: updated.OrderNumber,
		MachineID:   updated.MachineID,
		Status:      string(updated.Status),
		Reason:      cmd.Reason,
	}))
	return &HaltResult{StopID: stopID, Status: updated.Status}, nil
}

// classifyConflict turns a 0-rows-affected result into the precise outcome:
// the order is gone, already terminal, or simply in another state by now.
func (c *Coordinator) classifyConflict(ctx context.Context, tx TxStore, orderID uuid.UUID, transition string) error {
	order, err := tx.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status == types.OrderCompleted {
		return fmt.Errorf("%w: cannot %s order %s, it is completed", types.ErrConflict, transition, orderID)
	}
	return fmt.Errorf("%w: cannot %s order %s in status %s", types.ErrConflict, transition, orderID, order.Status)
}

func appendWasteNote(notes string, waste int) string {
	note := fmt.Sprintf("waste: %d", waste)
	if notes == "" {
		return note
	}
	return notes + "\n" + note
}
