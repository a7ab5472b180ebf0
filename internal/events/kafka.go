package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl/plain"
)

// KafkaConfig configures the Kafka publisher.
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	Username string
	Password string
}

// producer is the subset of *kgo.Client used by the publisher.
type producer interface {
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
	Flush(ctx context.Context) error
	Close()
}

// KafkaPublisher produces events asynchronously to a single topic, keyed by order id
// so every event of one order lands on the same partition.
type KafkaPublisher struct {
	client producer
	topic  string
	logger zerolog.Logger
}

// NewKafkaPublisher connects a franz-go client to the configured brokers.
func NewKafkaPublisher(cfg KafkaConfig, logger zerolog.Logger) (*KafkaPublisher, error) {
	logger = logger.With().Str("component", "kafka-publisher").Logger()

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.AllowAutoTopicCreation(),
		kgo.RequiredAcks(kgo.AllISRAcks()),

		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ProducerLinger(10 * time.Millisecond),
		kgo.ProducerBatchMaxBytes(1_000_000),

		kgo.WithLogger(kgoLogger{logger: logger}),
	}

	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts, kgo.SASL(plain.Auth{
			User: cfg.Username,
			Pass: cfg.Password,
		}.AsMechanism()))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Bool("sasl", cfg.Username != "").
		Msg("kafka publisher initialised")

	return newKafkaPublisher(client, cfg.Topic, logger), nil
}

func newKafkaPublisher(client producer, topic string, logger zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{client: client, topic: topic, logger: logger}
}

// Publish enqueues the event and returns immediately. Broker failures are logged
// from the delivery callback.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	record, err := buildRecord(p.topic, event)
	if err != nil {
		return err
	}

	// The callback fires after ctx may be gone; detach so in-flight records are not aborted.
	p.client.Produce(context.WithoutCancel(ctx), record, func(r *kgo.Record, err error) {
		if err != nil {
			p.logger.Error().
				Err(err).
				Str("event_type", string(event.Type)).
				Str("order_id", event.OrderID.String()).
				Msg("failed to publish order event")
			return
		}
		p.logger.Debug().
			Str("event_type", string(event.Type)).
			Str("order_id", event.OrderID.String()).
			Int32("partition", r.Partition).
			Int64("offset", r.Offset).
			Msg("order event published")
	})

	return nil
}

// Close flushes buffered records for up to five seconds, then closes the client.
func (p *KafkaPublisher) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.client.Flush(ctx); err != nil {
		p.logger.Warn().Err(err).Msg("failed to flush pending order events")
	}
	p.client.Close()
}

func buildRecord(topic string, event Event) (*kgo.Record, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	return &kgo.Record{
		Topic: topic,
		Key:   []byte(event.OrderID.String()),
		Value: data,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "version", Value: []byte(SchemaVersion)},
		},
		Timestamp: event.OccurredAt,
	}, nil
}

// kgoLogger routes franz-go client logs into zerolog.
type kgoLogger struct {
	logger zerolog.Logger
}

func (l kgoLogger) Level() kgo.LogLevel {
	switch l.logger.GetLevel() {
	case zerolog.TraceLevel, zerolog.DebugLevel:
		return kgo.LogLevelDebug
	case zerolog.InfoLevel:
		return kgo.LogLevelInfo
	case zerolog.WarnLevel:
		return kgo.LogLevelWarn
	default:
		return kgo.LogLevelError
	}
}

func (l kgoLogger) Log(level kgo.LogLevel, msg string, keyvals ...any) {
	var e *zerolog.Event
	switch level {
	case kgo.LogLevelError:
		e = l.logger.Error()
	case kgo.LogLevelWarn:
		e = l.logger.Warn()
	case kgo.LogLevelInfo:
		e = l.logger.Info()
	default:
		e = l.logger.Debug()
	}

	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			key = fmt.Sprint(keyvals[i])
		}
		e = e.Interface(key, keyvals[i+1])
	}
	e.Msg(msg)
}
