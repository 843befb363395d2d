package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/viktsys/tradestore/models"
)

type mockKafkaClient struct {
	mock.Mock
}

func (m *mockKafkaClient) ProduceSync(ctx context.Context, records ...*kgo.Record) kgo.ProduceResults {
	args := m.Called(ctx, records)
	return args.Get(0).(kgo.ProduceResults)
}

func (m *mockKafkaClient) Close() {
	m.Called()
}

func sampleTrade() *models.Trade {
	trade := models.NewTrade("7d9f8c2e-1b3a-4c5d-8e9f-0a1b2c3d4e5f", models.TradeFields{
		Symbol:   "AAPL",
		Quantity: decimal.NewFromInt(100),
		Price:    decimal.RequireFromString("150.25"),
		Side:     "BUY",
	}, time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC))
	return &trade
}

func TestKafkaPublisher_Publish(t *testing.T) {
	t.Run("should produce one keyed record with the event type header", func(t *testing.T) {
		client := new(mockKafkaClient)
		publisher := newKafkaPublisher(client, "trades", time.Second)

		var produced *kgo.Record
		client.On("ProduceSync", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				records := args.Get(1).([]*kgo.Record)
				require.Len(t, records, 1)
				produced = records[0]
			}).
			Return(kgo.ProduceResults{{}})

		trade := sampleTrade()
		err := publisher.Publish(context.Background(), Event{
			Type:       TradeCreated,
			TradeID:    trade.TradeID,
			Trade:      trade,
			OccurredAt: trade.Timestamp,
		})
		require.NoError(t, err)
		client.AssertExpectations(t)

		require.NotNil(t, produced)
		assert.Equal(t, "trades", produced.Topic)
		assert.Equal(t, trade.TradeID, string(produced.Key))
		require.Len(t, produced.Headers, 1)
		assert.Equal(t, "event-type", produced.Headers[0].Key)
		assert.Equal(t, "trade.created", string(produced.Headers[0].Value))

		var body map[string]any
		require.NoError(t, json.Unmarshal(produced.Value, &body))
		assert.Equal(t, "trade.created", body["type"])
		assert.Equal(t, trade.TradeID, body["trade_id"])
		assert.Equal(t, "AAPL", body["trade"].(map[string]any)["symbol"])
	})

	t.Run("should omit the trade for deletions", func(t *testing.T) {
		client := new(mockKafkaClient)
		publisher := newKafkaPublisher(client, "trades", 0)

		var produced *kgo.Record
		client.On("ProduceSync", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				produced = args.Get(1).([]*kgo.Record)[0]
			}).
			Return(kgo.ProduceResults{{}})

		err := publisher.Publish(context.Background(), Event{Type: TradeDeleted, TradeID: "abc", OccurredAt: time.Now()})
		require.NoError(t, err)

		var body map[string]any
		require.NoError(t, json.Unmarshal(produced.Value, &body))
		assert.NotContains(t, body, "trade")
	})

	t.Run("should return the broker error", func(t *testing.T) {
		client := new(mockKafkaClient)
		publisher := newKafkaPublisher(client, "trades", time.Second)

		brokerErr := errors.New("leader not available")
		client.On("ProduceSync", mock.Anything, mock.Anything).
			Return(kgo.ProduceResults{{Err: brokerErr}})

		err := publisher.Publish(context.Background(), Event{Type: TradeUpdated, TradeID: "abc"})
		require.Error(t, err)
		assert.ErrorIs(t, err, brokerErr)
		assert.Contains(t, err.Error(), "trade.updated")
	})
}

func TestKafkaPublisher_Close(t *testing.T) {
	client := new(mockKafkaClient)
	client.On("Close").Return()

	newKafkaPublisher(client, "trades", time.Second).Close()

	client.AssertExpectations(t)
}

func TestNewKafkaPublisher_RequiresBrokersAndTopic(t *testing.T) {
	_, err := NewKafkaPublisher(WithTopic("trades"))
	assert.Error(t, err)

	_, err = NewKafkaPublisher(WithBrokers("localhost:9092"), WithTopic(""))
	assert.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), Event{Type: TradeCreated}))
	p.Close()
}
