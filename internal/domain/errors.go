package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizEmpty indicates a quiz has no questions to score.
	ErrQuizEmpty = errors.New("quiz has no questions")
	// ErrLessonNotFound indicates the lesson could not be loaded.
	ErrLessonNotFound = errors.New("lesson not found")
	// ErrBlogNotFound indicates a comment operation targeted an unknown blog.
	ErrBlogNotFound = errors.New("blog not found")
	// ErrCommentNotFound indicates a comment id is invalid.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrAchievementNotFound indicates an achievement id is invalid.
	ErrAchievementNotFound = errors.New("achievement not found")
	// ErrProgressNotFound is returned by stores when a user has no progress
	// record yet; the aggregator creates one lazily on first event.
	ErrProgressNotFound = errors.New("user progress not found")
	// ErrEmptyContent rejects comments with no content before any mutation.
	ErrEmptyContent = errors.New("content is required")
	// ErrNotCommentOwner rejects edits/deletes by non-owner, non-admin callers.
	ErrNotCommentOwner = errors.New("not authorized to modify comment")
	// ErrVersionConflict signals a lost-update race on a versioned save.
	ErrVersionConflict = errors.New("progress version conflict")
)
