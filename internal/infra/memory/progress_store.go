package memory

import (
	"context"
	"sync"

	"cyberlearn-service/internal/domain"
)

// ProgressStore is an in-memory implementation of app.ProgressRepository with
// the same optimistic-concurrency contract as the Postgres store: a save whose
// version does not match the stored document fails with ErrVersionConflict.
type ProgressStore struct {
	mu   sync.RWMutex
	docs map[string]domain.UserProgress
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{docs: make(map[string]domain.UserProgress)}
}

func (s *ProgressStore) GetProgress(_ context.Context, userID string) (domain.UserProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[userID]
	if !ok {
		return domain.UserProgress{}, domain.ErrProgressNotFound
	}
	return cloneProgress(doc), nil
}

func (s *ProgressStore) SaveProgress(_ context.Context, progress *domain.UserProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.docs[progress.UserID]
	if exists && stored.Version != progress.Version {
		return domain.ErrVersionConflict
	}
	if !exists && progress.Version != 0 {
		return domain.ErrVersionConflict
	}
	progress.Version++
	s.docs[progress.UserID] = cloneProgress(*progress)
	return nil
}

// cloneProgress deep-copies the slices so callers cannot alias stored state.
func cloneProgress(p domain.UserProgress) domain.UserProgress {
	out := p
	out.CategoryProgress = make([]domain.CategoryProgress, len(p.CategoryProgress))
	for i, cp := range p.CategoryProgress {
		cpCopy := cp
		cpCopy.CompletedLessons = append([]string(nil), cp.CompletedLessons...)
		cpCopy.CompletedQuizzes = append([]string(nil), cp.CompletedQuizzes...)
		out.CategoryProgress[i] = cpCopy
	}
	out.QuizAttempts = append([]domain.QuizAttempt(nil), p.QuizAttempts...)
	out.Achievements = append([]domain.EarnedAchievement(nil), p.Achievements...)
	return out
}
