package storage

import (
	"context"
	"encoding/json"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/viktsys/tradestore/models"
)

const badgerKeyPrefix = "trade:"

// BadgerStore keeps each trade as a JSON value under trade:<id> in an
// embedded Badger database. Unlike the file store it cannot be shared
// between processes.
type BadgerStore struct {
	db  *badger.DB
	log logrus.FieldLogger
}

type BadgerOptions struct {
	Path     string
	InMemory bool
}

func OpenBadgerStore(opts BadgerOptions, log logrus.FieldLogger) (*BadgerStore, error) {
	if !opts.InMemory && strings.TrimSpace(opts.Path) == "" {
		return nil, errors.New("storage: badger path is required")
	}

	bopts := badger.DefaultOptions(opts.Path).
		WithLogger(nil).
		WithInMemory(opts.InMemory)

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, newStorageError("init", "", errors.Wrap(err, "open badger"))
	}
	return &BadgerStore{db: db, log: log}, nil
}

func badgerKey(id string) []byte {
	return []byte(badgerKeyPrefix + id)
}

func (s *BadgerStore) Create(ctx context.Context, fields models.TradeFields) (models.Trade, error) {
	if err := ctx.Err(); err != nil {
		return models.Trade{}, err
	}

	trade := models.NewTrade(NewTradeID(), fields, Now())
	err := s.db.Update(func(txn *badger.Txn) error {
		return setTrade(txn, trade)
	})
	if err != nil {
		return models.Trade{}, newStorageError("create", trade.TradeID, err)
	}
	return trade, nil
}

func (s *BadgerStore) Get(ctx context.Context, id string) (models.Trade, error) {
	if err := ctx.Err(); err != nil {
		return models.Trade{}, err
	}

	var trade models.Trade
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		trade, err = getTrade(txn, id)
		return err
	})
	if err != nil {
		return models.Trade{}, classify("get", id, err)
	}
	return trade, nil
}

func (s *BadgerStore) List(ctx context.Context) ([]models.Trade, error) {
	trades := make([]models.Trade, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			id := strings.TrimPrefix(string(item.Key()), badgerKeyPrefix)

			var trade models.Trade
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &trade)
			})
			if err != nil {
				s.log.WithError(err).WithField("trade_id", id).Warn("skipping corrupt trade record")
				continue
			}
			trades = append(trades, trade)
		}
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, newStorageError("list", "", err)
	}
	return trades, nil
}

func (s *BadgerStore) Update(ctx context.Context, id string, fields models.TradeFields) (models.Trade, error) {
	if err := ctx.Err(); err != nil {
		return models.Trade{}, err
	}

	var updated models.Trade
	err := s.db.Update(func(txn *badger.Txn) error {
		existing, err := getTrade(txn, id)
		if err != nil {
			return err
		}
		updated = existing.WithUpdate(fields, Now())
		return setTrade(txn, updated)
	})
	if err != nil {
		return models.Trade{}, classify("update", id, err)
	}
	return updated, nil
}

func (s *BadgerStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(badgerKey(id)); err != nil {
			return err
		}
		return txn.Delete(badgerKey(id))
	})
	if err != nil {
		return classify("delete", id, err)
	}
	return nil
}

func (s *BadgerStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func getTrade(txn *badger.Txn, id string) (models.Trade, error) {
	item, err := txn.Get(badgerKey(id))
	if err != nil {
		return models.Trade{}, err
	}

	var trade models.Trade
	err = item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, &trade); err != nil {
			return corrupt(id, err)
		}
		return nil
	})
	return trade, err
}

func setTrade(txn *badger.Txn, trade models.Trade) error {
	b, err := json.Marshal(trade)
	if err != nil {
		return errors.Wrap(err, "encode trade")
	}
	return txn.Set(badgerKey(trade.TradeID), b)
}

// classify maps badger errors onto the package's error contract.
func classify(op, id string, err error) error {
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return ErrNotFound
	case errors.Is(err, ErrCorruptData):
		return err
	default:
		return newStorageError(op, id, err)
	}
}
