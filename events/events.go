// Package events announces trade lifecycle changes to other systems.
package events

import (
	"context"
	"time"

	"github.com/viktsys/tradestore/models"
)

type Type string

const (
	TradeCreated Type = "trade.created"
	TradeUpdated Type = "trade.updated"
	TradeDeleted Type = "trade.deleted"
)

// Event is the published document. Trade is nil for deletions.
type Event struct {
	Type       Type          `json:"type"`
	TradeID    string        `json:"trade_id"`
	Trade      *models.Trade `json:"trade,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

// NopPublisher drops every event. It is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() {}
