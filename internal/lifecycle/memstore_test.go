package lifecycle

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/KevinKickass/FloorCore/internal/types"
	"github.com/google/uuid"
)

// memStore is an in-memory Store with the same conditional-update semantics
// as the Postgres stores: status CAS on orders and machines, one open
// interval per order, transaction rollback on error.
type memStore struct {
	mu       sync.Mutex
	orders   map[uuid.UUID]types.ProductionOrder
	machines map[uuid.UUID]types.Machine
	stops    map[uuid.UUID]types.StopInterval
}

func newMemStore() *memStore {
	return &memStore{
		orders:   make(map[uuid.UUID]types.ProductionOrder),
		machines: make(map[uuid.UUID]types.Machine),
		stops:    make(map[uuid.UUID]types.StopInterval),
	}
}

func (m *memStore) addOrder(o types.ProductionOrder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
}

func (m *memStore) addMachine(mc types.Machine) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.machines[mc.ID] = mc
}

func (m *memStore) order(id uuid.UUID) types.ProductionOrder {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[id]
}

func (m *memStore) machine(id uuid.UUID) types.Machine {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.machines[id]
}

func (m *memStore) orderStops(orderID uuid.UUID) []types.StopInterval {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.StopInterval
	for _, s := range m.stops {
		if s.OrderID == orderID {
			out = append(out, s)
		}
	}
	return out
}

func (m *memStore) InTx(ctx context.Context, fn func(tx TxStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapOrders := cloneMap(m.orders)
	snapMachines := cloneMap(m.machines)
	snapStops := cloneMap(m.stops)

	if err := fn(&memTx{s: m}); err != nil {
		m.orders = snapOrders
		m.machines = snapMachines
		m.stops = snapStops
		return err
	}
	return nil
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

type memTx struct {
	s *memStore
}

func (t *memTx) GetOrder(_ context.Context, id uuid.UUID) (*types.ProductionOrder, error) {
	o, ok := t.s.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: order", types.ErrNotFound)
	}
	copy := o
	return &copy, nil
}

func (t *memTx) ConditionalUpdateOrder(_ context.Context, id uuid.UUID, expected []types.OrderStatus, patch types.OrderPatch) (int64, error) {
	o, ok := t.s.orders[id]
	if !ok {
		return 0, nil
	}
	matched := false
	for _, st := range expected {
		if o.Status == st {
			matched = true
			break
		}
	}
	if !matched {
		return 0, nil
	}

	if patch.Status != nil {
		o.Status = *patch.Status
	}
	if patch.ClearMachineID {
		o.MachineID = nil
	} else if patch.MachineID != nil {
		o.MachineID = patch.MachineID
	}
	if patch.OperatorID != nil {
		o.OperatorID = patch.OperatorID
	}
	if patch.StartTime != nil {
		o.StartTime = patch.StartTime
	}
	if patch.ClearStopTime {
		o.StopTime = nil
	} else if patch.StopTime != nil {
		o.StopTime = patch.StopTime
	}
	if patch.CompleteTime != nil {
		o.CompleteTime = patch.CompleteTime
	}
	if patch.ActualQuantity != nil {
		o.ActualQuantity = *patch.ActualQuantity
	}
	if patch.Efficiency != nil {
		o.EfficiencyPercentage = *patch.Efficiency
	}
	if patch.Archived != nil {
		o.Archived = *patch.Archived
	}
	if patch.Notes != nil {
		o.Notes = *patch.Notes
	}

	t.s.orders[id] = o
	return 1, nil
}

func (t *memTx) GetMachine(_ context.Context, id uuid.UUID) (*types.Machine, error) {
	m, ok := t.s.machines[id]
	if !ok {
		return nil, fmt.Errorf("%w: machine", types.ErrNotFound)
	}
	copy := m
	return &copy, nil
}

func (t *memTx) AcquireMachine(_ context.Context, id uuid.UUID) error {
	m, ok := t.s.machines[id]
	if !ok {
		return fmt.Errorf("%w: machine", types.ErrNotFound)
	}
	if m.Status != types.MachineAvailable {
		return fmt.Errorf("%w: machine %s", types.ErrMachineUnavailable, id)
	}
	m.Status = types.MachineInUse
	t.s.machines[id] = m
	return nil
}

func (t *memTx) ReleaseMachine(_ context.Context, id uuid.UUID) error {
	m, ok := t.s.machines[id]
	if !ok {
		return fmt.Errorf("%w: machine", types.ErrNotFound)
	}
	m.Status = types.MachineAvailable
	t.s.machines[id] = m
	return nil
}

func (t *memTx) OpenStopInterval(_ context.Context, spec types.StopSpec) (uuid.UUID, error) {
	for _, s := range t.s.stops {
		if s.OrderID == spec.OrderID && s.EndTime == nil {
			return uuid.Nil, fmt.Errorf("%w: open stop interval exists", types.ErrConflict)
		}
	}
	category := spec.Category
	if category == "" {
		category = "Other"
	}
	id := uuid.New()
	t.s.stops[id] = types.StopInterval{
		ID:        id,
		OrderID:   spec.OrderID,
		Reason:    spec.Reason,
		Category:  category,
		Notes:     spec.Notes,
		StartTime: spec.StartTime,
		CreatedBy: spec.CreatedBy,
	}
	return id, nil
}

func (t *memTx) CloseOpenStopInterval(_ context.Context, orderID uuid.UUID, end time.Time, resolvedBy *uuid.UUID) (int, error) {
	for id, s := range t.s.stops {
		if s.OrderID == orderID && s.EndTime == nil {
			minutes := int(math.Round(end.Sub(s.StartTime).Minutes()))
			if minutes < 0 {
				minutes = 0
			}
			s.EndTime = &end
			s.DurationMinutes = &minutes
			s.ResolvedBy = resolvedBy
			t.s.stops[id] = s
			return minutes, nil
		}
	}
	return 0, fmt.Errorf("%w: no open stop interval", types.ErrNotFound)
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
