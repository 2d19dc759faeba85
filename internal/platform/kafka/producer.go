// Package kafka publishes notifications to a Kafka-compatible broker.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"mintgate/internal/platform/config"
	audit "mintgate/pkg/platform/audit"
)

// Message is the wire form of a notification.
type Message struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Action    string    `json:"action"`
	ProjectID uint64    `json:"project_id"`
	Minter    string    `json:"minter,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	Value     string    `json:"value,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage converts an event to its wire form.
func NewMessage(e audit.Event) Message {
	return Message{
		ID:        e.ID.String(),
		Category:  string(e.Category),
		Action:    e.Action,
		ProjectID: uint64(e.ProjectID),
		Minter:    e.Minter.String(),
		Actor:     e.Actor.String(),
		Value:     e.Value,
		RequestID: e.RequestID,
		Timestamp: e.Timestamp,
	}
}

// Producer is an audit sink writing one record per notification. Records are
// keyed by project id so a project's notifications stay ordered in one partition.
type Producer struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

type Option func(*Producer)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Producer) {
		p.logger = logger
	}
}

// NewProducer connects to the brokers in cfg. When cfg.EnsureTopic is set the
// topic is created if it does not exist yet.
func NewProducer(ctx context.Context, cfg config.KafkaConfig, opts ...Option) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "mintgate"
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(clientID),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(5*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka: create client: %w", err)
	}
	p := &Producer{client: client, topic: cfg.Topic}
	for _, opt := range opts {
		opt(p)
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka: ping brokers: %w", err)
	}
	if cfg.EnsureTopic {
		if err := EnsureTopic(ctx, client, cfg.Topic, cfg.Partitions); err != nil {
			client.Close()
			return nil, err
		}
	}
	return p, nil
}

// EnsureTopic creates topic with the given partition count unless it exists.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string, partitions int32) error {
	if partitions <= 0 {
		partitions = 1
	}
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopic(ctx, partitions, -1, nil, topic)
	if err != nil {
		return fmt.Errorf("kafka: create topic %s: %w", topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("kafka: create topic %s: %w", topic, resp.Err)
	}
	return nil
}

// Publish writes event synchronously and waits for the broker acknowledgement.
func (p *Producer) Publish(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(NewMessage(event))
	if err != nil {
		return fmt.Errorf("kafka: encode notification: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.ProjectID.String()),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "category", Value: []byte(event.Category)},
			{Key: "action", Value: []byte(event.Action)},
		},
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		if p.logger != nil {
			p.logger.WarnContext(ctx, "failed to produce notification",
				"topic", p.topic,
				"action", event.Action,
				"error", err,
			)
		}
		return fmt.Errorf("kafka: produce: %w", err)
	}
	return nil
}

// Health pings the brokers.
func (p *Producer) Health(ctx context.Context) error {
	return p.client.Ping(ctx)
}

// Close flushes buffered records and closes the client.
func (p *Producer) Close(ctx context.Context) error {
	err := p.client.Flush(ctx)
	p.client.Close()
	return err
}
