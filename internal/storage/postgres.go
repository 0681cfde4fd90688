package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KevinKickass/FloorCore/internal/config"
	"github.com/KevinKickass/FloorCore/internal/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx satisfied by both *pgxpool.Pool and pgx.Tx,
// so every store works inside or outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresClient struct {
	pool        *pgxpool.Pool
	readRetries int
}

func NewPostgresClient(cfg config.DatabaseConfig) (*PostgresClient, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	// Connection testen
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresClient{pool: pool, readRetries: 2}, nil
}

func (p *PostgresClient) Close() {
	p.pool.Close()
}

func (p *PostgresClient) Pool() *pgxpool.Pool {
	return p.pool
}

// SetReadRetries overrides the bounded retry count for idempotent reads.
func (p *PostgresClient) SetReadRetries(n int) {
	if n >= 0 {
		p.readRetries = n
	}
}

// WithTx runs fn inside a single transaction. All multi-entity transitions
// go through here; there is no other BEGIN/COMMIT in the codebase.
func (p *PostgresClient) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", types.ErrStorageUnavailable, err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: failed to commit transaction: %v", types.ErrStorageUnavailable, err)
	}

	return nil
}

// retryRead re-attempts an idempotent read a bounded number of times on
// connectivity faults. Domain outcomes and context errors pass through;
// writes are never retried here.
func (p *PostgresClient) retryRead(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt <= p.readRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(50 * time.Millisecond):
			}
		}
		err = fn()
		if err == nil || !retryable(err) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", types.ErrStorageUnavailable, err)
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return false
	}
	if errors.Is(err, types.ErrNotFound) || errors.Is(err, types.ErrConflict) ||
		errors.Is(err, types.ErrInvalid) || errors.Is(err, types.ErrMachineUnavailable) ||
		errors.Is(err, types.ErrMachineBusy) {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Constraint violations are domain outcomes, not transient faults
		return false
	}
	return true
}

// isUniqueViolation reports a 23505 from Postgres.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
