package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/viktsys/tradestore/models"
)

// MemoryStore keeps trades in a map. It backs tests and throwaway servers.
type MemoryStore struct {
	mu     sync.RWMutex
	trades map[string]models.Trade
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{trades: make(map[string]models.Trade)}
}

func (s *MemoryStore) Create(ctx context.Context, fields models.TradeFields) (models.Trade, error) {
	if err := ctx.Err(); err != nil {
		return models.Trade{}, err
	}

	trade := models.NewTrade(NewTradeID(), fields, Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades[trade.TradeID] = trade
	return trade, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (models.Trade, error) {
	if err := ctx.Err(); err != nil {
		return models.Trade{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	trade, ok := s.trades[id]
	if !ok {
		return models.Trade{}, ErrNotFound
	}
	return trade, nil
}

// List orders by creation time to keep test output stable.
func (s *MemoryStore) List(ctx context.Context) ([]models.Trade, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	trades := make([]models.Trade, 0, len(s.trades))
	for _, t := range s.trades {
		trades = append(trades, t)
	}
	s.mu.RUnlock()

	sort.Slice(trades, func(i, j int) bool {
		if trades[i].Timestamp.Equal(trades[j].Timestamp) {
			return trades[i].TradeID < trades[j].TradeID
		}
		return trades[i].Timestamp.Before(trades[j].Timestamp)
	})
	return trades, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, fields models.TradeFields) (models.Trade, error) {
	if err := ctx.Err(); err != nil {
		return models.Trade{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.trades[id]
	if !ok {
		return models.Trade{}, ErrNotFound
	}
	updated := existing.WithUpdate(fields, Now())
	s.trades[id] = updated
	return updated, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trades[id]; !ok {
		return ErrNotFound
	}
	delete(s.trades, id)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
