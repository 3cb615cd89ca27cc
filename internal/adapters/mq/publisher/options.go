package publisher

import (
	"time"

	"github.com/okian/internxp/pkg/logger"
)

// KafkaOption configures a Kafka publisher.
type KafkaOption func(*Kafka)

// WithMaxAttempts sets how many writes are tried per event.
func WithMaxAttempts(n int) KafkaOption {
	return func(k *Kafka) {
		if n > 0 {
			k.maxAttempts = n
		}
	}
}

// WithBackoff sets the delay before the first retry. It doubles per attempt.
func WithBackoff(d time.Duration) KafkaOption {
	return func(k *Kafka) {
		if d > 0 {
			k.backoff = d
		}
	}
}

// WithLogger sets the logger used for retry warnings.
func WithLogger(l logger.Logger) KafkaOption {
	return func(k *Kafka) {
		if l != nil {
			k.logger = l
		}
	}
}
