package storage

import (
	"context"
	"time"

	"github.com/KevinKickass/FloorCore/internal/types"
	"github.com/google/uuid"
)

// TxStores bundles the three stores over one Querier, typically a pgx.Tx.
// The lifecycle coordinator works exclusively against this flat surface so
// a transition touches order, machine and ledger in the same transaction.
type TxStores struct {
	orders   *OrderStore
	machines *MachineStore
	stops    *StopStore
}

func NewTxStores(q Querier) *TxStores {
	return &TxStores{
		orders:   NewOrderStore(q),
		machines: NewMachineStore(q),
		stops:    NewStopStore(q),
	}
}

func (t *TxStores) GetOrder(ctx context.Context, id uuid.UUID) (*types.ProductionOrder, error) {
	return t.orders.Get(ctx, id)
}

func (t *TxStores) ConditionalUpdateOrder(ctx context.Context, id uuid.UUID, expected []types.OrderStatus, patch types.OrderPatch) (int64, error) {
	return t.orders.ConditionalUpdate(ctx, id, expected, patch)
}

func (t *TxStores) GetMachine(ctx context.Context, id uuid.UUID) (*types.Machine, error) {
	return t.machines.Get(ctx, id)
}

func (t *TxStores) AcquireMachine(ctx context.Context, id uuid.UUID) error {
	return t.machines.Acquire(ctx, id)
}

func (t *TxStores) ReleaseMachine(ctx context.Context, id uuid.UUID) error {
	return t.machines.Release(ctx, id)
}

func (t *TxStores) OpenStopInterval(ctx context.Context, spec types.StopSpec) (uuid.UUID, error) {
	return t.stops.OpenInterval(ctx, spec)
}

func (t *TxStores) CloseOpenStopInterval(ctx context.Context, orderID uuid.UUID, end time.Time, resolvedBy *uuid.UUID) (int, error) {
	return t.stops.CloseOpenInterval(ctx, orderID, end, resolvedBy)
}
