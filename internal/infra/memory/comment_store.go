package memory

import (
	"context"
	"sync"

	"cyberlearn-service/internal/domain"
)

// CommentStore is an in-memory implementation of app.CommentRepository.
// Listing preserves insertion order, matching the created-at ascending order
// the tree builder expects.
type CommentStore struct {
	mu       sync.RWMutex
	order    []string
	comments map[string]domain.Comment
}

func NewCommentStore() *CommentStore {
	return &CommentStore{comments: make(map[string]domain.Comment)}
}

func (s *CommentStore) ListCommentsByBlog(_ context.Context, blogID string) ([]domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Comment
	for _, id := range s.order {
		if c := s.comments[id]; c.BlogID == blogID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *CommentStore) GetComment(_ context.Context, commentID string) (domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comments[commentID]
	if !ok {
		return domain.Comment{}, domain.ErrCommentNotFound
	}
	return c, nil
}

func (s *CommentStore) InsertComment(_ context.Context, comment domain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[comment.ID]; !ok {
		s.order = append(s.order, comment.ID)
	}
	s.comments[comment.ID] = comment
	return nil
}

func (s *CommentStore) UpdateComment(_ context.Context, comment domain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[comment.ID]; !ok {
		return domain.ErrCommentNotFound
	}
	s.comments[comment.ID] = comment
	return nil
}
