package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KevinKickass/FloorCore/internal/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// StopStore is the downtime ledger. Per order at most one interval may be
// open; both open and close enforce that in SQL rather than in Go.
type StopStore struct {
	db Querier
}

func NewStopStore(db Querier) *StopStore {
	return &StopStore{db: db}
}

const stopColumns = `id, order_id, reason, category, notes,
	start_time, end_time, duration_minutes, created_by, resolved_by`

func scanStop(row pgx.Row) (*types.StopInterval, error) {
	var s types.StopInterval
	err := row.Scan(
		&s.ID, &s.OrderID, &s.Reason, &s.Category, &s.Notes,
		&s.StartTime, &s.EndTime, &s.DurationMinutes, &s.CreatedBy, &s.ResolvedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: stop interval", types.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan stop interval: %w", err)
	}
	return &s, nil
}

// OpenInterval records the start of a downtime period. The NOT EXISTS guard
// makes a second open interval for the same order impossible even under
// concurrent halts.
func (s *StopStore) OpenInterval(ctx context.Context, spec types.StopSpec) (uuid.UUID, error) {
	if spec.OrderID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: order_id is required", types.ErrInvalid)
	}
	if spec.Reason == "" {
		return uuid.Nil, fmt.Errorf("%w: reason is required", types.ErrInvalid)
	}
	category := spec.Category
	if strings.TrimSpace(category) == "" {
		category = "Other"
	}
	start := spec.StartTime
	if start.IsZero() {
		start = time.Now()
	}

	var id uuid.UUID
	err := s.db.QueryRow(ctx, `
		INSERT INTO production_stops (id, order_id, reason, category, notes, start_time, created_by)
		SELECT $1, $2, $3, $4, $5, $6, $7
		WHERE NOT EXISTS (
			SELECT 1 FROM production_stops
			WHERE order_id = $2 AND end_time IS NULL
		)
		RETURNING id
	`, uuid.New(), spec.OrderID, spec.Reason, category, spec.Notes, start, spec.CreatedBy).Scan(&id)

	if err != nil {
		// Either the NOT EXISTS guard or the partial unique index caught a
		// concurrent open interval
		if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err) {
			return uuid.Nil, fmt.Errorf("%w: order %s already has an open stop interval", types.ErrConflict, spec.OrderID)
		}
		return uuid.Nil, fmt.Errorf("failed to open stop interval: %w", err)
	}
	return id, nil
}

// CloseOpenInterval closes the order's open interval at end and returns the
// rounded duration in minutes.
func (s *StopStore) CloseOpenInterval(ctx context.Context, orderID uuid.UUID, end time.Time, resolvedBy *uuid.UUID) (int, error) {
	var minutes int
	err := s.db.QueryRow(ctx, `
		UPDATE production_stops
		SET end_time = $2,
		    duration_minutes = GREATEST(0, ROUND(EXTRACT(EPOCH FROM ($2 - start_time)) / 60))::int,
		    resolved_by = $3
		WHERE order_id = $1 AND end_time IS NULL
		RETURNING duration_minutes
	`, orderID, end, resolvedBy).Scan(&minutes)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: no open stop interval for order %s", types.ErrNotFound, orderID)
		}
		return 0, fmt.Errorf("failed to close stop interval: %w", err)
	}
	return minutes, nil
}

func (s *StopStore) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]types.StopInterval, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+stopColumns+`
		FROM production_stops
		WHERE order_id = $1
		ORDER BY start_time
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stop intervals: %w", err)
	}
	defer rows.Close()

	stops := make([]types.StopInterval, 0)
	for rows.Next() {
		st, err := scanStop(rows)
		if err != nil {
			return nil, err
		}
		stops = append(stops, *st)
	}
	return stops, rows.Err()
}

// Aggregate summarizes downtime over the given window. Open intervals count
// with zero minutes; they have no duration yet.
func (s *StopStore) Aggregate(ctx context.Context, filter types.StopFilter) (*types.StopSummary, error) {
	query := `
		SELECT category, COUNT(*), COALESCE(SUM(duration_minutes), 0)
		FROM production_stops`
	var where []string
	var args []any

	if filter.From != nil {
		args = append(args, *filter.From)
		where = append(where, fmt.Sprintf("start_time >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where = append(where, fmt.Sprintf("start_time < $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " GROUP BY category"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate stops: %w", err)
	}
	defer rows.Close()

	summary := &types.StopSummary{ByCategory: make(map[string]types.CategoryStat)}
	for rows.Next() {
		var category string
		var count, minutes int
		if err := rows.Scan(&category, &count, &minutes); err != nil {
			return nil, fmt.Errorf("failed to scan stop aggregate: %w", err)
		}
		summary.ByCategory[category] = types.CategoryStat{Count: count, TotalMinutes: minutes}
		summary.Count += count
		summary.TotalMinutes += minutes
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to aggregate stops: %w", err)
	}
	return summary, nil
}
