package storage

import (
	"context"

	"github.com/KevinKickass/FloorCore/internal/types"
	"github.com/google/uuid"
)

// Pool-level operations for callers outside a transaction (the HTTP read
// endpoints and admin CRUD). Reads go through the bounded retry; writes
// never do.

func (p *PostgresClient) GetOrder(ctx context.Context, id uuid.UUID) (*types.ProductionOrder, error) {
	var order *types.ProductionOrder
	err := p.retryRead(ctx, func() error {
		var err error
		order, err = NewOrderStore(p.pool).Get(ctx, id)
		return err
	})
	return order, err
}

func (p *PostgresClient) ListOrders(ctx context.Context, filter types.OrderFilter) ([]types.ProductionOrder, error) {
	var orders []types.ProductionOrder
	err := p.retryRead(ctx, func() error {
		var err error
		orders, err = NewOrderStore(p.pool).List(ctx, filter)
		return err
	})
	return orders, err
}

func (p *PostgresClient) ListActiveOrders(ctx context.Context) ([]types.ProductionOrder, error) {
	var orders []types.ProductionOrder
	err := p.retryRead(ctx, func() error {
		var err error
		orders, err = NewOrderStore(p.pool).ListActive(ctx)
		return err
	})
	return orders, err
}

func (p *PostgresClient) ListOrderHistory(ctx context.Context) ([]types.ProductionOrder, error) {
	var orders []types.ProductionOrder
	err := p.retryRead(ctx, func() error {
		var err error
		orders, err = NewOrderStore(p.pool).ListHistory(ctx)
		return err
	})
	return orders, err
}

func (p *PostgresClient) CreateOrder(ctx context.Context, spec types.OrderSpec) (*types.ProductionOrder, error) {
	return NewOrderStore(p.pool).Create(ctx, spec)
}

func (p *PostgresClient) GetMachine(ctx context.Context, id uuid.UUID) (*types.Machine, error) {
	var machine *types.Machine
	err := p.retryRead(ctx, func() error {
		var err error
		machine, err = NewMachineStore(p.pool).Get(ctx, id)
		return err
	})
	return machine, err
}

func (p *PostgresClient) ListMachines(ctx context.Context, environment string) ([]types.Machine, error) {
	var machines []types.Machine
	err := p.retryRead(ctx, func() error {
		var err error
		machines, err = NewMachineStore(p.pool).List(ctx, environment)
		return err
	})
	return machines, err
}

func (p *PostgresClient) CreateMachine(ctx context.Context, spec types.MachineSpec) (*types.Machine, error) {
	return NewMachineStore(p.pool).Create(ctx, spec)
}

func (p *PostgresClient) SetMachineStatus(ctx context.Context, id uuid.UUID, status types.MachineStatus) (types.MachineStatus, error) {
	return NewMachineStore(p.pool).SetStatus(ctx, id, status)
}

func (p *PostgresClient) DeleteMachine(ctx context.Context, id uuid.UUID) error {
	return NewMachineStore(p.pool).Delete(ctx, id)
}

func (p *PostgresClient) ListStopsByOrder(ctx context.Context, orderID uuid.UUID) ([]types.StopInterval, error) {
	var stops []types.StopInterval
	err := p.retryRead(ctx, func() error {
		var err error
		stops, err = NewStopStore(p.pool).ListByOrder(ctx, orderID)
		return err
	})
	return stops, err
}

func (p *PostgresClient) AggregateStops(ctx context.Context, filter types.StopFilter) (*types.StopSummary, error) {
	var summary *types.StopSummary
	err := p.retryRead(ctx, func() error {
		var err error
		summary, err = NewStopStore(p.pool).Aggregate(ctx, filter)
		return err
	})
	return summary, err
}
