package lifecycle

import (
	"context"
	"time"

	"github.com/KevinKickass/FloorCore/internal/storage"
	"github.com/KevinKickass/FloorCore/internal/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TxStore is the transactional surface a transition runs against. Every
// method observes and mutates state inside the same transaction, so a
// transition either lands fully or not at all.
type TxStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*types.ProductionOrder, error)
	ConditionalUpdateOrder(ctx context.Context, id uuid.UUID, expected []types.OrderStatus, patch types.OrderPatch) (int64, error)
	GetMachine(ctx context.Context, id uuid.UUID) (*types.Machine, error)
	AcquireMachine(ctx context.Context, id uuid.UUID) error
	ReleaseMachine(ctx context.Context, id uuid.UUID) error
	OpenStopInterval(ctx context.Context, spec types.StopSpec) (uuid.UUID, error)
	CloseOpenStopInterval(ctx context.Context, orderID uuid.UUID, end time.Time, resolvedBy *uuid.UUID) (int, error)
}

// Store opens transactions for the coordinator.
type Store interface {
	InTx(ctx context.Context, fn func(tx TxStore) error) error
}

type pgStore struct {
	db *storage.PostgresClient
}

// NewStore binds the coordinator to Postgres.
func NewStore(db *storage.PostgresClient) Store {
	return &pgStore{db: db}
}

func (s *pgStore) InTx(ctx context.Context, fn func(tx TxStore) error) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		return fn(storage.NewTxStores(tx))
	})
}
