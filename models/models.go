package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Clients send and expect bare JSON numbers for quantity and price.
	decimal.MarshalJSONWithoutQuotes = true
}

// Trade is a single financial transaction record as persisted by the store.
type Trade struct {
	TradeID          string          `json:"trade_id"`
	Symbol           string          `json:"symbol"`
	Quantity         decimal.Decimal `json:"quantity"`
	Price            decimal.Decimal `json:"price"`
	Side             string          `json:"side"`
	TraderID         string          `json:"trader_id,omitempty"`
	Account          string          `json:"account,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	Timestamp        time.Time       `json:"timestamp"`
	UpdatedTimestamp *time.Time      `json:"updated_timestamp,omitempty"`
}

// TradeFields holds the client-owned attributes of a trade, already validated.
type TradeFields struct {
	Symbol   string          `json:"symbol"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Side     string          `json:"side"`
	TraderID string          `json:"trader_id,omitempty"`
	Account  string          `json:"account,omitempty"`
	Notes    string          `json:"notes,omitempty"`
}

// TradePayload is the request body of a create or update. Required keys are
// pointers so that an absent key can be told apart from a zero value.
// Server-owned keys (trade_id, timestamp, updated_timestamp) are not decoded.
type TradePayload struct {
	Symbol   *string          `json:"symbol,omitempty" validate:"required,notblank"`
	Quantity *decimal.Decimal `json:"quantity,omitempty" validate:"required"`
	Price    *decimal.Decimal `json:"price,omitempty" validate:"required"`
	Side     *string          `json:"side,omitempty" validate:"required,notblank"`
	TraderID *string          `json:"trader_id,omitempty"`
	Account  *string          `json:"account,omitempty"`
	Notes    *string          `json:"notes,omitempty"`
}

// Fields converts a validated payload. Absent required keys become zero values,
// so callers must validate first.
func (p TradePayload) Fields() TradeFields {
	var f TradeFields
	if p.Symbol != nil {
		f.Symbol = *p.Symbol
	}
	if p.Quantity != nil {
		f.Quantity = *p.Quantity
	}
	if p.Price != nil {
		f.Price = *p.Price
	}
	if p.Side != nil {
		f.Side = *p.Side
	}
	if p.TraderID != nil {
		f.TraderID = *p.TraderID
	}
	if p.Account != nil {
		f.Account = *p.Account
	}
	if p.Notes != nil {
		f.Notes = *p.Notes
	}
	return f
}

// Payload is the inverse of TradePayload.Fields. Empty optional fields are left out.
func (f TradeFields) Payload() TradePayload {
	quantity, price := f.Quantity, f.Price
	symbol, side := f.Symbol, f.Side
	p := TradePayload{
		Symbol:   &symbol,
		Quantity: &quantity,
		Price:    &price,
		Side:     &side,
	}
	if f.TraderID != "" {
		traderID := f.TraderID
		p.TraderID = &traderID
	}
	if f.Account != "" {
		account := f.Account
		p.Account = &account
	}
	if f.Notes != "" {
		notes := f.Notes
		p.Notes = &notes
	}
	return p
}

// NewTrade builds a freshly created trade.
func NewTrade(id string, f TradeFields, now time.Time) Trade {
	t := Trade{TradeID: id, Timestamp: now}
	t.apply(f)
	return t
}

// WithUpdate returns t with f merged over it. TradeID and Timestamp are kept;
// UpdatedTimestamp is set to now, or nudged forward when the clock has not
// moved past the previous write.
func (t Trade) WithUpdate(f TradeFields, now time.Time) Trade {
	floor := t.Timestamp
	if t.UpdatedTimestamp != nil && t.UpdatedTimestamp.After(floor) {
		floor = *t.UpdatedTimestamp
	}
	if !now.After(floor) {
		now = floor.Add(time.Microsecond)
	}

	out := Trade{TradeID: t.TradeID, Timestamp: t.Timestamp, UpdatedTimestamp: &now}
	out.apply(f)
	return out
}

func (t *Trade) apply(f TradeFields) {
	t.Symbol = f.Symbol
	t.Quantity = f.Quantity
	t.Price = f.Price
	t.Side = f.Side
	t.TraderID = f.TraderID
	t.Account = f.Account
	t.Notes = f.Notes
}

// Fields returns the client-owned part of t.
func (t Trade) Fields() TradeFields {
	return TradeFields{
		Symbol:   t.Symbol,
		Quantity: t.Quantity,
		Price:    t.Price,
		Side:     t.Side,
		TraderID: t.TraderID,
		Account:  t.Account,
		Notes:    t.Notes,
	}
}
