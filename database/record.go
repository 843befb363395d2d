package database

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/viktsys/tradestore/models"
)

// TradeRecord is the row layout of the trades table. Text columns are
// unbounded so that postgres accepts whatever the other backends accept.
type TradeRecord struct {
	TradeID          string          `gorm:"primaryKey;type:uuid"`
	Symbol           string          `gorm:"type:text;not null"`
	Quantity         decimal.Decimal `gorm:"type:numeric;not null"`
	Price            decimal.Decimal `gorm:"type:numeric;not null"`
	Side             string          `gorm:"type:text;not null"`
	TraderID         string          `gorm:"type:text"`
	Account          string          `gorm:"type:text"`
	Notes            string          `gorm:"type:text"`
	Timestamp        time.Time       `gorm:"not null"`
	UpdatedTimestamp *time.Time
}

func (TradeRecord) TableName() string {
	return "trades"
}

func toRecord(t models.Trade) TradeRecord {
	return TradeRecord{
		TradeID:          t.TradeID,
		Symbol:           t.Symbol,
		Quantity:         t.Quantity,
		Price:            t.Price,
		Side:             t.Side,
		TraderID:         t.TraderID,
		Account:          t.Account,
		Notes:            t.Notes,
		Timestamp:        t.Timestamp,
		UpdatedTimestamp: t.UpdatedTimestamp,
	}
}

func (r TradeRecord) toTrade() models.Trade {
	t := models.Trade{
		TradeID:   r.TradeID,
		Symbol:    r.Symbol,
		Quantity:  r.Quantity,
		Price:     r.Price,
		Side:      r.Side,
		TraderID:  r.TraderID,
		Account:   r.Account,
		Notes:     r.Notes,
		Timestamp: r.Timestamp.UTC(),
	}
	if r.UpdatedTimestamp != nil {
		updated := r.UpdatedTimestamp.UTC()
		t.UpdatedTimestamp = &updated
	}
	return t
}
