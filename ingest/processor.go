// Package ingest loads sample trades into a running API.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/viktsys/tradestore/models"
)

const DefaultWorkerCount = 8

// Sink receives the trades. *client.Client implements it.
type Sink interface {
	CreateTrade(ctx context.Context, p models.TradePayload) (models.Trade, error)
	ListTrades(ctx context.Context) ([]models.Trade, error)
	DeleteTrade(ctx context.Context, id string) error
}

// Failure is a trade the sink rejected. Index is 1-based in load order.
type Failure struct {
	Index  int
	Symbol string
	Err    error
}

type Summary struct {
	Created []string
	Failed  []Failure
}

func (s Summary) OK() bool {
	return len(s.Failed) == 0
}

type Processor struct {
	sink    Sink
	workers int
	log     logrus.FieldLogger

	processed int64
}

func NewProcessor(sink Sink, workers int, log logrus.FieldLogger) *Processor {
	if workers < 1 {
		workers = DefaultWorkerCount
	}
	return &Processor{sink: sink, workers: workers, log: log}
}

// LoadFiles reads every file before sending anything, so a malformed file
// loads nothing.
func (p *Processor) LoadFiles(ctx context.Context, paths ...string) (Summary, error) {
	var all []models.TradePayload
	for _, path := range paths {
		payloads, err := ReadFile(path)
		if err != nil {
			return Summary{}, err
		}
		p.log.WithFields(logrus.Fields{"file": path, "trades": len(payloads)}).Info("Loaded sample trades")
		all = append(all, payloads...)
	}
	return p.Load(ctx, all)
}

type result struct {
	tradeID string
	err     error
}

// Load creates every payload through the sink with a bounded pool of workers.
// Rejections are collected, not fatal; only a cancelled context aborts.
func (p *Processor) Load(ctx context.Context, payloads []models.TradePayload) (Summary, error) {
	startTime := time.Now()
	results := make([]result, len(payloads))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < min(p.workers, max(len(payloads), 1)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = p.create(ctx, idx, payloads[idx])
			}
		}()
	}

	var ctxErr error
send:
	for idx := range payloads {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break send
		}
	}
	close(jobs)
	wg.Wait()

	if ctxErr != nil {
		return Summary{}, ctxErr
	}

	summary := Summary{Created: make([]string, 0, len(payloads))}
	for idx, r := range results {
		if r.err != nil {
			summary.Failed = append(summary.Failed, Failure{
				Index:  idx + 1,
				Symbol: symbolOf(payloads[idx]),
				Err:    r.err,
			})
			continue
		}
		summary.Created = append(summary.Created, r.tradeID)
	}

	p.log.WithFields(logrus.Fields{
		"created":  len(summary.Created),
		"failed":   len(summary.Failed),
		"duration": time.Since(startTime).String(),
	}).Info("Sample data load completed")
	return summary, nil
}

func (p *Processor) create(ctx context.Context, idx int, payload models.TradePayload) result {
	entry := p.log.WithFields(logrus.Fields{"index": idx + 1, "symbol": symbolOf(payload)})

	trade, err := p.sink.CreateTrade(ctx, payload)
	if err != nil {
		entry.WithError(err).Warn("Trade rejected")
		return result{err: err}
	}

	atomic.AddInt64(&p.processed, 1)
	entry.WithField("trade_id", trade.TradeID).Debug("Trade created")
	return result{tradeID: trade.TradeID}
}

// Processed reports how many trades this processor has created so far.
func (p *Processor) Processed() int64 {
	return atomic.LoadInt64(&p.processed)
}

// Clear deletes every trade the sink lists. It returns the number deleted
// and the joined errors of the deletes that failed.
func (p *Processor) Clear(ctx context.Context) (int, error) {
	trades, err := p.sink.ListTrades(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list trades: %w", err)
	}
	if len(trades) == 0 {
		p.log.Info("No trades to clear")
		return 0, nil
	}

	ids := make(chan string)
	errChan := make(chan error, len(trades))
	var deleted int64
	var wg sync.WaitGroup
	for i := 0; i < min(p.workers, len(trades)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range ids {
				if err := p.sink.DeleteTrade(ctx, id); err != nil {
					errChan <- fmt.Errorf("delete %s: %w", id, err)
					continue
				}
				atomic.AddInt64(&deleted, 1)
			}
		}()
	}

	for _, t := range trades {
		ids <- t.TradeID
	}
	close(ids)
	wg.Wait()
	close(errChan)

	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}

	n := int(atomic.LoadInt64(&deleted))
	p.log.WithFields(logrus.Fields{"deleted": n, "total": len(trades)}).Info("Cleared trades")
	return n, errors.Join(errs...)
}

func symbolOf(p models.TradePayload) string {
	if p.Symbol == nil {
		return ""
	}
	return *p.Symbol
}
