// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/internxp/internal/adapters/mq/publisher"
	eventqueue "github.com/okian/internxp/internal/adapters/mq/queue"
	workerpool "github.com/okian/internxp/internal/adapters/mq/worker"
	"github.com/okian/internxp/internal/adapters/repository"
	"github.com/okian/internxp/internal/domain/award"
	"github.com/okian/internxp/internal/domain/certificate"
	"github.com/okian/internxp/internal/domain/dedupe"
	"github.com/okian/internxp/internal/domain/model"
	"github.com/okian/internxp/internal/domain/types"
	"github.com/okian/internxp/pkg/errs"
	"github.com/okian/internxp/pkg/logger"
	"github.com/okian/internxp/pkg/metrics"
)

// Service owns the candidate ledger, the task tracker and the derived views.
type Service struct {
	mu sync.RWMutex

	store     repository.Store
	engine    *award.Engine
	deduper   dedupe.Deduper
	queue     eventqueue.Queue
	publisher workerpool.Publisher
	pool      *workerpool.Pool
	renderer  *certificate.Renderer
	blobs     BlobStore

	workerCount      int
	queueSize        int
	dedupeSize       int
	leaderboardLimit int
	defaultReward    int
	now              func() time.Time

	started bool
	logger  logger.Logger
}

// BlobStore persists rendered certificates.
type BlobStore interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// New constructs a Service. Components not supplied through options fall back
// to in-memory implementations.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:      2,
		queueSize:        10000,
		dedupeSize:       50000,
		leaderboardLimit: 100,
		defaultReward:    model.DefaultXPReward,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.engine == nil {
		s.engine = award.NewEngine()
	}
	if s.deduper == nil {
		s.deduper = dedupe.NewKeyCache(dedupe.WithMaxSize(s.dedupeSize))
	}
	if s.queue == nil {
		s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	}
	if s.publisher == nil {
		s.publisher = publisher.NewLog(s.logger.Named("events"))
	}
	if s.renderer == nil {
		s.renderer = certificate.NewRenderer()
	}
	return s
}

// Start launches the publisher pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if err := s.store.Ping(ctx); err != nil {
		return errs.Wrap("service.Start", err)
	}

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.publisher)
	s.pool.Start(context.WithoutCancel(ctx))
	s.started = true

	s.logger.Info(ctx, "award service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.String("publisher", s.publisher.Name()),
	)
	return nil
}

// Stop drains pending award events and closes the store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping award service...")

	var errList []error
	if err := s.pool.Shutdown(ctx); err != nil {
		errList = append(errList, err)
	}
	if closer, ok := s.publisher.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errList = append(errList, err)
		}
	}
	if err := s.store.Close(); err != nil {
		errList = append(errList, err)
	}
	s.started = false
	s.logger.Info(ctx, "award service stopped")
	return errors.Join(errList...)
}

// SeenAndRecord records an idempotency key. It reports true if the key was
// already present.
func (s *Service) SeenAndRecord(ctx context.Context, key string) bool {
	seen := s.deduper.SeenAndRecord(ctx, key)
	if seen {
		metrics.RecordIdempotentReplay()
	}
	return seen
}

// Unrecord forgets an idempotency key so a failed request can be retried.
func (s *Service) Unrecord(ctx context.Context, key string) {
	s.deduper.Unrecord(ctx, key)
}

// Ping checks the backing store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Stats returns ledger and pipeline counters.
func (s *Service) Stats(ctx context.Context) (types.Stats, error) {
	n, err := s.store.Counts(ctx)
	if err != nil {
		return types.Stats{}, storeErr("service.Stats", err)
	}
	st := types.Stats{
		Candidates:     n.Candidates,
		Hired:          n.Hired,
		Rejected:       n.Rejected,
		Undecided:      n.Undecided,
		Tasks:          n.Tasks,
		TasksCompleted: n.TasksCompleted,
		TotalXP:        n.TotalXP,
		Badges:         n.Badges,
		QueueDepth:     s.queue.Len(ctx),
		IdempotentKeys: s.deduper.Size(),
	}
	metrics.UpdateCandidatesTotal(st.Candidates)
	return st, nil
}

// emit queues an award event for publishing. A full queue drops the event;
// the ledger write it describes has already succeeded.
func (s *Service) emit(ctx context.Context, e model.AwardEvent) { //nolint:gocritic // hugeParam: value semantics
	e.EventID = uuid.NewString()
	if e.TS.IsZero() {
		e.TS = s.now().UTC()
	}
	if !s.queue.Enqueue(ctx, e) {
		s.logger.Warn(ctx, "award event dropped",
			logger.String("type", string(e.Type)),
			logger.String("candidateId", e.CandidateID),
		)
	}
}

// storeErr maps repository sentinels onto error kinds.
func storeErr(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return errs.WrapKind(op, errs.ErrNotFound, err)
	case errors.Is(err, repository.ErrDuplicateEmail),
		errors.Is(err, repository.ErrAlreadyCompleted),
		errors.Is(err, repository.ErrNegativeBalance):
		return errs.WrapKind(op, errs.ErrConflict, err)
	default:
		return errs.WrapKind(op, errs.ErrInternal, err)
	}
}
