package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/KevinKickass/FloorCore/internal/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MachineStore is the durable machine registry. Occupancy is enforced with
// conditional updates on the status column, never read-then-write.
type MachineStore struct {
	db Querier
}

func NewMachineStore(db Querier) *MachineStore {
	return &MachineStore{db: db}
}

const machineColumns = `id, name, environment, capacity, status, created_at, updated_at`

func scanMachine(row pgx.Row) (*types.Machine, error) {
	var m types.Machine
	err := row.Scan(&m.ID, &m.Name, &m.Environment, &m.Capacity, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: machine", types.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan machine: %w", err)
	}
	return &m, nil
}

func (s *MachineStore) Create(ctx context.Context, spec types.MachineSpec) (*types.Machine, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("%w: machine name is required", types.ErrInvalid)
	}
	if spec.Capacity < 0 {
		return nil, fmt.Errorf("%w: capacity must not be negative", types.ErrInvalid)
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO machines (id, name, environment, capacity, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+machineColumns,
		uuid.New(), spec.Name, spec.Environment, spec.Capacity, types.MachineAvailable)

	m, err := scanMachine(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: machine name already exists", types.ErrConflict)
		}
		return nil, err
	}
	return m, nil
}

func (s *MachineStore) Get(ctx context.Context, id uuid.UUID) (*types.Machine, error) {
	return scanMachine(s.db.QueryRow(ctx, `
		SELECT `+machineColumns+`
		FROM machines
		WHERE id = $1
	`, id))
}

// List returns machines, optionally restricted to one production environment.
func (s *MachineStore) List(ctx context.Context, environment string) ([]types.Machine, error) {
	query := `SELECT ` + machineColumns + ` FROM machines`
	args := []any{}
	if environment != "" {
		query += ` WHERE environment = $1`
		args = append(args, environment)
	}
	query += ` ORDER BY name`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query machines: %w", err)
	}
	defer rows.Close()

	machines := make([]types.Machine, 0)
	for rows.Next() {
		m, err := scanMachine(rows)
		if err != nil {
			return nil, err
		}
		machines = append(machines, *m)
	}
	return machines, rows.Err()
}

// Acquire atomically claims an available machine for an order. The WHERE
// clause is the lock: concurrent acquires race on the same conditional
// update and exactly one wins.
func (s *MachineStore) Acquire(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE machines
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
	`, id, types.MachineInUse, types.MachineAvailable)
	if err != nil {
		return fmt.Errorf("failed to acquire machine: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: machine %s", types.ErrMachineUnavailable, id)
	}
	return nil
}

// Release puts the machine back to available. Idempotent.
func (s *MachineStore) Release(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE machines
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`, id, types.MachineAvailable)
	if err != nil {
		return fmt.Errorf("failed to release machine: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: machine %s", types.ErrNotFound, id)
	}
	return nil
}

// SetStatus applies an admin status change and returns the status it
// replaced. Rejected while an order holds the machine; in_use is owned
// exclusively by the coordinator. The self-join reads the pre-update row,
// so the returned status is the one this update actually overwrote.
func (s *MachineStore) SetStatus(ctx context.Context, id uuid.UUID, status types.MachineStatus) (types.MachineStatus, error) {
	if !types.ValidMachineStatus(status) {
		return "", fmt.Errorf("%w: unknown machine status %q", types.ErrInvalid, status)
	}
	if status == types.MachineInUse {
		return "", fmt.Errorf("%w: in_use is set by order transitions only", types.ErrInvalid)
	}

	var previous types.MachineStatus
	err := s.db.QueryRow(ctx, `
		UPDATE machines m
		SET status = $2, updated_at = NOW()
		FROM machines prev
		WHERE m.id = $1 AND prev.id = m.id AND m.status <> $3
		RETURNING prev.status
	`, id, status, types.MachineInUse).Scan(&previous)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, err := s.Get(ctx, id); err != nil {
				return "", err
			}
			return "", fmt.Errorf("%w: machine %s is held by an order", types.ErrMachineBusy, id)
		}
		return "", fmt.Errorf("failed to update machine status: %w", err)
	}
	return previous, nil
}

// Delete removes a machine that is not currently held.
func (s *MachineStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM machines
		WHERE id = $1 AND status <> $2
	`, id, types.MachineInUse)
	if err != nil {
		return fmt.Errorf("failed to delete machine: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: machine %s is held by an order", types.ErrMachineBusy, id)
	}
	return nil
}
