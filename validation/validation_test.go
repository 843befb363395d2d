package validation

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viktsys/tradestore/models"
)

func decode(t *testing.T, body string) *models.TradePayload {
	t.Helper()
	var p models.TradePayload
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	return &p
}

func missingFields(t *testing.T, err error) []string {
	t.Helper()
	var mfe *MissingFieldsError
	require.ErrorAs(t, err, &mfe)
	return mfe.Fields
}

func TestValidate(t *testing.T) {
	t.Run("should accept a complete payload", func(t *testing.T) {
		p := decode(t, `{"symbol":"AAPL","quantity":100,"price":150.25,"side":"BUY"}`)
		assert.NoError(t, Validate(p))
	})

	t.Run("should accept zero quantity and price", func(t *testing.T) {
		p := decode(t, `{"symbol":"AAPL","quantity":0,"price":0,"side":"SELL"}`)
		assert.NoError(t, Validate(p))
	})

	t.Run("should accept a free-form side", func(t *testing.T) {
		p := decode(t, `{"symbol":"AAPL","quantity":1,"price":1,"side":"short"}`)
		assert.NoError(t, Validate(p))
	})

	t.Run("should list every missing field in order", func(t *testing.T) {
		p := decode(t, `{"symbol":"AAPL"}`)
		assert.Equal(t, []string{"quantity", "price", "side"}, missingFields(t, Validate(p)))
	})

	t.Run("should report exactly the two missing fields", func(t *testing.T) {
		p := decode(t, `{"symbol":"AAPL","price":10}`)
		assert.Equal(t, []string{"quantity", "side"}, missingFields(t, Validate(p)))
	})

	t.Run("should treat null and blank values as missing", func(t *testing.T) {
		p := decode(t, `{"symbol":"  ","quantity":null,"price":1,"side":""}`)
		assert.Equal(t, []string{"symbol", "quantity", "side"}, missingFields(t, Validate(p)))
	})

	t.Run("should report all fields for an empty object", func(t *testing.T) {
		p := decode(t, `{}`)
		assert.Equal(t, RequiredFields, missingFields(t, Validate(p)))
	})

	t.Run("should reject a quantity with a huge exponent", func(t *testing.T) {
		p := decode(t, `{"symbol":"AAPL","quantity":1e50000000,"price":1,"side":"BUY"}`)
		var rangeErr *AmountRangeError
		require.ErrorAs(t, Validate(p), &rangeErr)
		assert.Equal(t, "quantity", rangeErr.Field)
	})

	t.Run("should report missing fields before range errors", func(t *testing.T) {
		p := decode(t, `{"symbol":"AAPL","quantity":1e50000000,"price":1}`)
		assert.Equal(t, []string{"side"}, missingFields(t, Validate(p)))
	})

	t.Run("should report all fields for a nil payload", func(t *testing.T) {
		assert.Equal(t, RequiredFields, missingFields(t, Validate(nil)))
	})
}

func TestMissingFieldsError_Error(t *testing.T) {
	err := &MissingFieldsError{Fields: []string{"price", "side"}}
	assert.Equal(t, "missing required fields: price, side", err.Error())
}

func TestCheckAmount(t *testing.T) {
	for _, tc := range []struct {
		value string
		ok    bool
	}{
		{"0", true},
		{"150.25", true},
		{"-42.5", true},
		{"1e30", true},
		{"1e-30", true},
		{"12345678901234567890123456789012345678", true},
		{"1e31", false},
		{"1e-31", false},
		{"123456789012345678901234567890123456789", false},
		{"1e50000000", false},
	} {
		err := CheckAmount("price", decimal.RequireFromString(tc.value))
		if tc.ok {
			assert.NoError(t, err, tc.value)
			continue
		}
		var rangeErr *AmountRangeError
		if assert.ErrorAs(t, err, &rangeErr, tc.value) {
			assert.Equal(t, "price", rangeErr.Field)
		}
	}
}
