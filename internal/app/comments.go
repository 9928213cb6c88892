package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"cyberlearn-service/internal/domain"
)

// CommentRepository stores comments flat, ordered by creation time.
type CommentRepository interface {
	ListCommentsByBlog(ctx context.Context, blogID string) ([]domain.Comment, error)
	GetComment(ctx context.Context, commentID string) (domain.Comment, error)
	InsertComment(ctx context.Context, comment domain.Comment) error
	UpdateComment(ctx context.Context, comment domain.Comment) error
}

// BlogRepository resolves the blog a comment thread belongs to.
type BlogRepository interface {
	GetBlog(ctx context.Context, blogID string) (domain.Blog, error)
}

// Actor is the authenticated principal acting on comments.
type Actor struct {
	UserID string
	Name   string
	Avatar string
	Admin  bool
}

// CommentService covers the comment thread use cases: nested listing, posting
// replies, owner-gated edits, and soft deletion.
type CommentService struct {
	comments CommentRepository
	blogs    BlogRepository
	clock    func() time.Time
	newID    func() string
}

func NewCommentService(comments CommentRepository, blogs BlogRepository) *CommentService {
	return &CommentService{
		comments: comments,
		blogs:    blogs,
		clock:    time.Now,
		newID:    uuid.NewString,
	}
}

// NewCommentServiceWithClock is test-only for deterministic timestamps and ids.
func NewCommentServiceWithClock(comments CommentRepository, blogs BlogRepository, now func() time.Time, newID func() string) *CommentService {
	s := NewCommentService(comments, blogs)
	s.clock = now
	s.newID = newID
	return s
}

// ListTree returns the blog's comments as a nested reply tree.
func (s *CommentService) ListTree(ctx context.Context, blogID string) ([]*domain.Comment, error) {
	if _, err := s.blogs.GetBlog(ctx, blogID); err != nil {
		return nil, err
	}
	flat, err := s.comments.ListCommentsByBlog(ctx, blogID)
	if err != nil {
		return nil, err
	}
	return BuildCommentTree(flat), nil
}

// Add posts a comment or reply. Empty content is rejected before any store
// mutation. The author's display name and avatar are snapshotted onto the
// comment at creation time.
func (s *CommentService) Add(ctx context.Context, blogID string, actor Actor, content, parentID string) (domain.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return domain.Comment{}, domain.ErrEmptyContent
	}
	if _, err := s.blogs.GetBlog(ctx, blogID); err != nil {
		return domain.Comment{}, err
	}

	author := domain.Author{Kind: domain.AuthorAnonymous}
	name := actor.Name
	if actor.UserID != "" {
		author = domain.KnownAuthor(actor.UserID)
	}
	if name == "" {
		name = "Anonymous"
	}

	now := s.clock()
	comment := domain.Comment{
		ID:           s.newID(),
		BlogID:       blogID,
		Author:       author,
		AuthorName:   name,
		AuthorAvatar: actor.Avatar,
		Content:      content,
		ParentID:     parentID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.comments.InsertComment(ctx, comment); err != nil {
		return domain.Comment{}, err
	}
	return comment, nil
}

// Edit replaces a comment's content and sets the edited flag. Only the owner
// or an admin may edit.
func (s *CommentService) Edit(ctx context.Context, commentID string, actor Actor, content string) (domain.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return domain.Comment{}, domain.ErrEmptyContent
	}
	comment, err := s.comments.GetComment(ctx, commentID)
	if err != nil {
		return domain.Comment{}, err
	}
	if !canModify(comment, actor) {
		return domain.Comment{}, domain.ErrNotCommentOwner
	}

	comment.Content = content
	comment.IsEdited = true
	comment.UpdatedAt = s.clock()
	if err := s.comments.UpdateComment(ctx, comment); err != nil {
		return domain.Comment{}, err
	}
	return comment, nil
}

// Delete soft-deletes a comment: content becomes the deletion sentinel and
// the author switches to the Deleted variant, but the row keeps its place in
// the tree so replies stay attached.
func (s *CommentService) Delete(ctx context.Context, commentID string, actor Actor) error {
	comment, err := s.comments.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if !canModify(comment, actor) {
		return domain.ErrNotCommentOwner
	}

	comment.Content = domain.DeletedContent
	comment.AuthorName = "Deleted"
	comment.AuthorAvatar = ""
	comment.Author = domain.Author{Kind: domain.AuthorDeleted}
	comment.IsDeleted = true
	comment.UpdatedAt = s.clock()
	return s.comments.UpdateComment(ctx, comment)
}

func canModify(comment domain.Comment, actor Actor) bool {
	if actor.Admin {
		return true
	}
	return comment.Author.Kind == domain.AuthorKnown && comment.Author.UserID == actor.UserID
}
