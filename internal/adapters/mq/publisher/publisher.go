// Package publisher delivers award events to downstream consumers.
package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/okian/internxp/internal/domain/model"
	"github.com/okian/internxp/pkg/logger"
)

const (
	defaultMaxAttempts  = 3
	defaultWriteTimeout = 10 * time.Second
	initialBackoff      = 100 * time.Millisecond
	maxBackoff          = 2 * time.Second
)

// Sentinel errors.
var (
	ErrNoBrokers = errors.New("publisher: at least one broker required")
	ErrNoTopic   = errors.New("publisher: topic required")
)

// MessageWriter is the subset of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes events as JSON keyed by candidate ID, so one candidate's
// events land on one partition in order.
type Kafka struct {
	writer      MessageWriter
	topic       string
	maxAttempts int
	backoff     time.Duration
	logger      logger.Logger
}

// NewKafka builds a publisher backed by a kafka-go Writer.
func NewKafka(brokers []string, topic string, opts ...KafkaOption) (*Kafka, error) {
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}
	if topic == "" {
		return nil, ErrNoTopic
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: defaultWriteTimeout,
		RequiredAcks: kafka.RequireOne,
	}
	return NewKafkaWithWriter(w, topic, opts...), nil
}

// NewKafkaWithWriter wraps an existing writer.
func NewKafkaWithWriter(w MessageWriter, topic string, opts ...KafkaOption) *Kafka {
	k := &Kafka{
		writer:      w,
		topic:       topic,
		maxAttempts: defaultMaxAttempts,
		backoff:     initialBackoff,
	}
	for _, opt := range opts {
		opt(k)
	}
	if k.logger == nil {
		k.logger = logger.Get().Named("kafka-publisher")
	}
	return k
}

// Name implements worker.Publisher.
func (k *Kafka) Name() string { return "kafka" }

// Publish writes the event, retrying transient failures with backoff.
func (k *Kafka) Publish(ctx context.Context, e model.AwardEvent) error { //nolint:gocritic // hugeParam: matches worker.Publisher
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(e.CandidateID),
		Value: value,
		Time:  e.TS,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(e.Type)},
			{Key: "event-id", Value: []byte(e.EventID)},
		},
	}

	backoff := k.backoff
	var lastErr error
	for attempt := 1; attempt <= k.maxAttempts; attempt++ {
		if lastErr = k.writer.WriteMessages(ctx, msg); lastErr == nil {
			return nil
		}
		k.logger.Warn(ctx, "kafka write failed",
			logger.String("topic", k.topic),
			logger.Int("attempt", attempt),
			logger.Error(lastErr),
		)
		if attempt == k.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < maxBackoff {
			backoff *= 2
		}
	}
	return fmt.Errorf("kafka publish after %d attempts: %w", k.maxAttempts, lastErr)
}

// Close flushes and closes the writer.
func (k *Kafka) Close() error { return k.writer.Close() }

// Log writes events to the structured log. It is the default when no
// brokers are configured.
type Log struct {
	logger logger.Logger
}

// NewLog creates a log publisher.
func NewLog(l logger.Logger) *Log {
	if l == nil {
		l = logger.Get().Named("award-events")
	}
	return &Log{logger: l}
}

// Name implements worker.Publisher.
func (l *Log) Name() string { return "log" }

// Publish logs the event at info level.
func (l *Log) Publish(ctx context.Context, e model.AwardEvent) error { //nolint:gocritic // hugeParam: matches worker.Publisher
	l.logger.Info(ctx, "award event",
		logger.String("eventId", e.EventID),
		logger.String("type", string(e.Type)),
		logger.String("candidateId", e.CandidateID),
		logger.Int("points", e.Points),
		logger.String("source", string(e.Source)),
		logger.String("awardedBy", e.AwardedBy),
	)
	return nil
}

// Close is a no-op.
func (l *Log) Close() error { return nil }
