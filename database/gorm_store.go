package database

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/viktsys/tradestore/models"
	"github.com/viktsys/tradestore/storage"
)

// GormStore keeps trades in a relational table through gorm.
type GormStore struct {
	db *gorm.DB
}

var _ storage.Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, fields models.TradeFields) (models.Trade, error) {
	trade := models.NewTrade(storage.NewTradeID(), fields, storage.Now())
	record := toRecord(trade)
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return models.Trade{}, storageErr(ctx, "create", trade.TradeID, err)
	}
	return trade, nil
}

func (s *GormStore) Get(ctx context.Context, id string) (models.Trade, error) {
	if !storage.ValidID(id) {
		return models.Trade{}, storage.ErrNotFound
	}

	var record TradeRecord
	err := s.db.WithContext(ctx).First(&record, "trade_id = ?", id).Error
	if err != nil {
		return models.Trade{}, storageErr(ctx, "get", id, err)
	}
	return record.toTrade(), nil
}

func (s *GormStore) List(ctx context.Context) ([]models.Trade, error) {
	var records []TradeRecord
	err := s.db.WithContext(ctx).Order("timestamp, trade_id").Find(&records).Error
	if err != nil {
		return nil, storageErr(ctx, "list", "", err)
	}

	trades := make([]models.Trade, 0, len(records))
	for _, r := range records {
		trades = append(trades, r.toTrade())
	}
	return trades, nil
}

func (s *GormStore) Update(ctx context.Context, id string, fields models.TradeFields) (models.Trade, error) {
	if !storage.ValidID(id) {
		return models.Trade{}, storage.ErrNotFound
	}

	var updated models.Trade
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record TradeRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&record, "trade_id = ?", id).Error; err != nil {
			return err
		}

		updated = record.toTrade().WithUpdate(fields, storage.Now())
		next := toRecord(updated)
		return tx.Save(&next).Error
	})
	if err != nil {
		return models.Trade{}, storageErr(ctx, "update", id, err)
	}
	return updated, nil
}

func (s *GormStore) Delete(ctx context.Context, id string) error {
	if !storage.ValidID(id) {
		return storage.ErrNotFound
	}

	res := s.db.WithContext(ctx).Delete(&TradeRecord{}, "trade_id = ?", id)
	if res.Error != nil {
		return storageErr(ctx, "delete", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func storageErr(ctx context.Context, op, id string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return storage.ErrNotFound
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return &storage.StorageError{Op: op, ID: id, Err: err}
	}
}
