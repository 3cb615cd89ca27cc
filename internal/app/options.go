package service

import (
	"time"

	workerpool "github.com/okian/internxp/internal/adapters/mq/worker"
	"github.com/okian/internxp/internal/adapters/repository"
	"github.com/okian/internxp/internal/domain/award"
	"github.com/okian/internxp/internal/domain/certificate"
	"github.com/okian/internxp/internal/domain/dedupe"
	"github.com/okian/internxp/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the candidate and task store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithEngine sets the reward engine.
func WithEngine(e *award.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithDeduper sets the idempotency key cache.
func WithDeduper(d dedupe.Deduper) Option {
	return func(s *Service) {
		if d != nil {
			s.deduper = d
		}
	}
}

// WithPublisher sets where award events are delivered.
func WithPublisher(p workerpool.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithRenderer sets the certificate renderer.
func WithRenderer(r *certificate.Renderer) Option {
	return func(s *Service) {
		if r != nil {
			s.renderer = r
		}
	}
}

// WithBlobStore sets where rendered certificates are saved. Without one,
// certificates are rendered but not persisted.
func WithBlobStore(b BlobStore) Option {
	return func(s *Service) {
		if b != nil {
			s.blobs = b
		}
	}
}

// WithWorkerCount sets the number of publisher goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending award events.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the idempotency key cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLeaderboardLimit caps the number of ranked entries.
func WithLeaderboardLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.leaderboardLimit = n
		}
	}
}

// WithDefaultXPReward sets the reward for tasks created without one.
func WithDefaultXPReward(points int) Option {
	return func(s *Service) {
		if points > 0 {
			s.defaultReward = points
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
