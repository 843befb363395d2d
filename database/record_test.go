package database

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm/schema"

	"github.com/viktsys/tradestore/models"
)

func TestRecordRoundTrip(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 30, 0, 123456000, time.UTC)
	trade := models.NewTrade("7d9f8c2e-1b3a-4c5d-8e9f-0a1b2c3d4e5f", models.TradeFields{
		Symbol:   "PETR4",
		Quantity: decimal.NewFromInt(300),
		Price:    decimal.RequireFromString("38.17"),
		Side:     "SELL",
		Account:  "ACC-1",
	}, created)

	got := toRecord(trade).toTrade()

	if got.TradeID != trade.TradeID || got.Symbol != "PETR4" || got.Side != "SELL" || got.Account != "ACC-1" {
		t.Errorf("Round trip changed fields: %+v", got)
	}
	if !got.Quantity.Equal(trade.Quantity) || !got.Price.Equal(trade.Price) {
		t.Errorf("Round trip changed amounts: quantity %s price %s", got.Quantity, got.Price)
	}
	if !got.Timestamp.Equal(created) {
		t.Errorf("Expected timestamp %v, got %v", created, got.Timestamp)
	}
	if got.UpdatedTimestamp != nil {
		t.Errorf("Expected no updated timestamp, got %v", got.UpdatedTimestamp)
	}
}

func TestRecordToTradeNormalisesToUTC(t *testing.T) {
	saoPaulo := time.FixedZone("BRT", -3*60*60)
	updated := time.Date(2026, 3, 1, 10, 0, 0, 0, saoPaulo)
	record := TradeRecord{
		TradeID:          "7d9f8c2e-1b3a-4c5d-8e9f-0a1b2c3d4e5f",
		Timestamp:        time.Date(2026, 3, 1, 9, 0, 0, 0, saoPaulo),
		UpdatedTimestamp: &updated,
	}

	trade := record.toTrade()

	if trade.Timestamp.Location() != time.UTC {
		t.Errorf("Expected UTC timestamp, got %v", trade.Timestamp.Location())
	}
	if trade.UpdatedTimestamp == nil || trade.UpdatedTimestamp.Location() != time.UTC {
		t.Fatalf("Expected UTC updated timestamp, got %v", trade.UpdatedTimestamp)
	}
	if !trade.UpdatedTimestamp.Equal(updated) {
		t.Errorf("Expected %v, got %v", updated, trade.UpdatedTimestamp)
	}
	if record.UpdatedTimestamp.Location() != saoPaulo {
		t.Errorf("Conversion must not modify the record")
	}
}

func TestTradeRecordTableName(t *testing.T) {
	if got := (TradeRecord{}).TableName(); got != "trades" {
		t.Errorf("Expected table trades, got %s", got)
	}
}

func TestTradeRecordTextColumnsAreUnbounded(t *testing.T) {
	s, err := schema.Parse(&TradeRecord{}, &sync.Map{}, schema.NamingStrategy{})
	if err != nil {
		t.Fatalf("Failed to parse schema: %v", err)
	}

	for _, name := range []string{"Symbol", "Side", "TraderID", "Account", "Notes"} {
		field := s.LookUpField(name)
		if field == nil {
			t.Fatalf("Field %s not in schema", name)
		}
		if field.Size != 0 {
			t.Errorf("Expected %s to have no size limit, got %d", name, field.Size)
		}
		if field.DataType != "text" {
			t.Errorf("Expected %s to be text, got %s", name, field.DataType)
		}
	}
}
