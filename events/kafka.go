package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	defaultClientID       = "tradestore"
	defaultPublishTimeout = 5 * time.Second

	headerEventType = "event-type"
)

type Option func(*config)

type config struct {
	brokers        []string
	topic          string
	clientID       string
	publishTimeout time.Duration
	franzOpt       []kgo.Opt
}

func WithBrokers(brokers ...string) Option {
	return func(c *config) {
		c.brokers = brokers
	}
}

func WithTopic(topic string) Option {
	return func(c *config) {
		c.topic = topic
	}
}

func WithClientID(clientID string) Option {
	return func(c *config) {
		c.clientID = clientID
	}
}

// WithPublishTimeout bounds how long Publish waits for the broker ack.
func WithPublishTimeout(d time.Duration) Option {
	return func(c *config) {
		c.publishTimeout = d
	}
}

func WithFranzOpt(franzOpt kgo.Opt) Option {
	return func(c *config) {
		c.franzOpt = append(c.franzOpt, franzOpt)
	}
}

type kafkaClient interface {
	ProduceSync(ctx context.Context, records ...*kgo.Record) kgo.ProduceResults
	Close()
}

// KafkaPublisher writes one record per event, keyed by trade id so every
// change to a trade lands on the same partition.
type KafkaPublisher struct {
	client         kafkaClient
	topic          string
	publishTimeout time.Duration
}

func NewKafkaPublisher(opts ...Option) (*KafkaPublisher, error) {
	cfg := &config{
		clientID:       defaultClientID,
		publishTimeout: defaultPublishTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if len(cfg.brokers) == 0 {
		return nil, errors.New("events: at least one broker is required")
	}
	if cfg.topic == "" {
		return nil, errors.New("events: topic is required")
	}

	franzOpts := []kgo.Opt{
		kgo.SeedBrokers(cfg.brokers...),
		kgo.ClientID(cfg.clientID),
	}
	franzOpts = append(franzOpts, cfg.franzOpt...)

	franz, err := kgo.NewClient(franzOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	return newKafkaPublisher(franz, cfg.topic, cfg.publishTimeout), nil
}

func newKafkaPublisher(client kafkaClient, topic string, timeout time.Duration) *KafkaPublisher {
	return &KafkaPublisher{client: client, topic: topic, publishTimeout: timeout}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	record, err := p.eventToRecord(event)
	if err != nil {
		return err
	}

	if p.publishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.publishTimeout)
		defer cancel()
	}

	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("publish %s for trade %s: %w", event.Type, event.TradeID, err)
	}
	return nil
}

func (p *KafkaPublisher) eventToRecord(event Event) (*kgo.Record, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", event.Type, err)
	}

	return &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.TradeID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: headerEventType, Value: []byte(event.Type)},
		},
	}, nil
}

func (p *KafkaPublisher) Close() {
	p.client.Close()
}
