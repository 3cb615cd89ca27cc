package repository

import (
	"github.com/okian/internxp/internal/domain/model"
	"github.com/okian/internxp/pkg/logger"
)

// MemoryOption applies a configuration option to the MemoryStore.
type MemoryOption func(*MemoryStore)

// WithCandidates seeds the store. Seeds bypass email uniqueness checks.
func WithCandidates(cs ...model.Candidate) MemoryOption {
	return func(s *MemoryStore) {
		for i := range cs {
			s.putCandidate(cs[i].Clone())
		}
	}
}

// WithTasks seeds the store with tasks.
func WithTasks(ts ...model.Task) MemoryOption {
	return func(s *MemoryStore) {
		for i := range ts {
			s.putTask(ts[i].Clone())
		}
	}
}

// PGOption applies a configuration option to the PGStore.
type PGOption func(*PGStore)

// WithLogger sets the logger used for migrations and slow paths.
func WithLogger(l logger.Logger) PGOption {
	return func(s *PGStore) {
		if l != nil {
			s.log = l
		}
	}
}
