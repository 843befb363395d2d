// Package storage persists trades. The JSON-file store is the reference
// backend; the others honour the same contract.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/viktsys/tradestore/models"
)

// Store is the capability the HTTP layer depends on.
type Store interface {
	Create(ctx context.Context, fields models.TradeFields) (models.Trade, error)
	Get(ctx context.Context, id string) (models.Trade, error)
	// List returns every stored trade in backend order.
	List(ctx context.Context) ([]models.Trade, error)
	Update(ctx context.Context, id string, fields models.TradeFields) (models.Trade, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// clock is swapped in tests.
var clock = func() time.Time { return time.Now() }

// Now is the creation/update time used by every backend, truncated to the
// microsecond precision the relational backend can hold.
func Now() time.Time {
	return clock().UTC().Truncate(time.Microsecond)
}

// NewTradeID returns a random (version 4) UUID.
func NewTradeID() string {
	return uuid.NewString()
}

// ValidID reports whether id is a canonical UUID string. Anything else can
// never name a stored trade.
func ValidID(id string) bool {
	u, err := uuid.Parse(id)
	return err == nil && u.String() == id
}
