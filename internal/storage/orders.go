package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KevinKickass/FloorCore/internal/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrderStore is the durable production order store. The only mutation
// primitive besides Create is ConditionalUpdate, which applies an
// allow-listed patch iff the order currently has one of the expected
// statuses. Zero rows affected signals a lost race, not an error.
type OrderStore struct {
	db Querier
}

func NewOrderStore(db Querier) *OrderStore {
	return &OrderStore{db: db}
}

const orderColumns = `id, order_number, product_name, quantity, actual_quantity,
	environment, priority, status, machine_id, operator_id,
	start_time, stop_time, complete_time, efficiency_percentage,
	archived, notes, created_at, updated_at`

func scanOrder(row pgx.Row) (*types.ProductionOrder, error) {
	var o types.ProductionOrder
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.ProductName, &o.Quantity, &o.ActualQuantity,
		&o.Environment, &o.Priority, &o.Status, &o.MachineID, &o.OperatorID,
		&o.StartTime, &o.StopTime, &o.CompleteTime, &o.EfficiencyPercentage,
		&o.Archived, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: order", types.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	return &o, nil
}

func (s *OrderStore) Create(ctx context.Context, spec types.OrderSpec) (*types.ProductionOrder, error) {
	if spec.OrderNumber == "" {
		return nil, fmt.Errorf("%w: order_number is required", types.ErrInvalid)
	}
	if spec.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", types.ErrInvalid)
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO production_orders
			(id, order_number, product_name, quantity, environment, priority, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+orderColumns,
		uuid.New(), spec.OrderNumber, spec.ProductName, spec.Quantity,
		spec.Environment, spec.Priority, types.OrderPending, spec.Notes)

	o, err := scanOrder(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: duplicate order number %q", types.ErrConflict, spec.OrderNumber)
		}
		return nil, err
	}
	return o, nil
}

func (s *OrderStore) Get(ctx context.Context, id uuid.UUID) (*types.ProductionOrder, error) {
	return scanOrder(s.db.QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM production_orders
		WHERE id = $1
	`, id))
}

func (s *OrderStore) List(ctx context.Context, filter types.OrderFilter) ([]types.ProductionOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM production_orders`
	var where []string
	var args []any

	if len(filter.Statuses) > 0 {
		args = append(args, statusStrings(filter.Statuses))
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if filter.Environment != "" {
		args = append(args, filter.Environment)
		where = append(where, fmt.Sprintf("environment = $%d", len(args)))
	}
	if filter.MachineID != nil {
		args = append(args, *filter.MachineID)
		where = append(where, fmt.Sprintf("machine_id = $%d", len(args)))
	}
	if filter.Archived != nil {
		args = append(args, *filter.Archived)
		where = append(where, fmt.Sprintf("archived = $%d", len(args)))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]types.ProductionOrder, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// ListActive returns the orders currently on the floor: started and not yet
// completed, halted or not.
func (s *OrderStore) ListActive(ctx context.Context) ([]types.ProductionOrder, error) {
	return s.List(ctx, types.OrderFilter{
		Statuses: []types.OrderStatus{types.OrderInProgress, types.OrderPaused, types.OrderStopped},
	})
}

// ListHistory returns archived (completed) orders, newest completion first.
func (s *OrderStore) ListHistory(ctx context.Context) ([]types.ProductionOrder, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM production_orders
		WHERE archived = true
		ORDER BY complete_time DESC NULLS LAST
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query order history: %w", err)
	}
	defer rows.Close()

	orders := make([]types.ProductionOrder, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// ConditionalUpdate applies patch iff the order currently has one of the
// expected statuses. Returns the number of rows affected; 0 means another
// actor moved the order first and the caller must treat it as a conflict.
func (s *OrderStore) ConditionalUpdate(ctx context.Context, id uuid.UUID, expected []types.OrderStatus, patch types.OrderPatch) (int64, error) {
	if len(expected) == 0 {
		return 0, fmt.Errorf("%w: expected statuses must not be empty", types.ErrInvalid)
	}
	if patch.Empty() {
		return 0, fmt.Errorf("%w: empty patch", types.ErrInvalid)
	}

	set, args := buildOrderPatch(patch)
	set = append(set, "updated_at = NOW()")

	args = append(args, id)
	idIdx := len(args)
	args = append(args, statusStrings(expected))

	query := fmt.Sprintf(`
		UPDATE production_orders
		SET %s
		WHERE id = $%d AND status = ANY($%d)
	`, strings.Join(set, ", "), idIdx, idIdx+1)

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update order: %w", err)
	}
	return tag.RowsAffected(), nil
}

// buildOrderPatch turns the allow-listed patch into SET clauses and args.
// Column names come exclusively from the fixed list below; request data only
// ever lands in args.
func buildOrderPatch(p types.OrderPatch) ([]string, []any) {
	var set []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if p.Status != nil {
		add("status", *p.Status)
	}
	if p.ClearMachineID {
		set = append(set, "machine_id = NULL")
	} else if p.MachineID != nil {
		add("machine_id", *p.MachineID)
	}
	if p.OperatorID != nil {
		add("operator_id", *p.OperatorID)
	}
	if p.StartTime != nil {
		add("start_time", *p.StartTime)
	}
	if p.ClearStopTime {
		set = append(set, "stop_time = NULL")
	} else if p.StopTime != nil {
		add("stop_time", *p.StopTime)
	}
	if p.CompleteTime != nil {
		add("complete_time", *p.CompleteTime)
	}
	if p.ActualQuantity != nil {
		add("actual_quantity", *p.ActualQuantity)
	}
	if p.Efficiency != nil {
		add("efficiency_percentage", *p.Efficiency)
	}
	if p.Archived != nil {
		add("archived", *p.Archived)
	}
	if p.Notes != nil {
		add("notes", *p.Notes)
	}

	return set, args
}

func statusStrings(statuses []types.OrderStatus) []string {
	out := make([]string, len(statuses))
	for i, st := range statuses {
		out[i] = string(st)
	}
	return out
}
