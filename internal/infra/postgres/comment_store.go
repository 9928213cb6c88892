package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"cyberlearn-service/internal/domain"
)

type commentRow struct {
	bun.BaseModel `bun:"table:comments"`

	ID        string    `bun:"id,pk"`
	BlogID    string    `bun:"blog_id,notnull"`
	ParentID  string    `bun:"parent_id,nullzero"`
	Data      []byte    `bun:"data,type:jsonb,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// CommentStore keeps comments as flat JSONB rows with parent pointers.
// Listing returns creation order ascending, which is the order the tree
// builder relies on.
type CommentStore struct {
	db *bun.DB
}

func NewCommentStore(db *bun.DB) *CommentStore {
	return &CommentStore{db: db}
}

func (s *CommentStore) ListCommentsByBlog(ctx context.Context, blogID string) ([]domain.Comment, error) {
	var rows []commentRow
	err := s.db.NewSelect().Model(&rows).
		Where("blog_id = ?", blogID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	out := make([]domain.Comment, 0, len(rows))
	for _, row := range rows {
		var c domain.Comment
		if err := json.Unmarshal(row.Data, &c); err != nil {
			return nil, fmt.Errorf("unmarshal comment %s: %w", row.ID, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *CommentStore) GetComment(ctx context.Context, commentID string) (domain.Comment, error) {
	row := new(commentRow)
	err := s.db.NewSelect().Model(row).Where("id = ?", commentID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Comment{}, domain.ErrCommentNotFound
	}
	if err != nil {
		return domain.Comment{}, fmt.Errorf("load comment: %w", err)
	}

	var c domain.Comment
	if err := json.Unmarshal(row.Data, &c); err != nil {
		return domain.Comment{}, fmt.Errorf("unmarshal comment: %w", err)
	}
	return c, nil
}

func (s *CommentStore) InsertComment(ctx context.Context, comment domain.Comment) error {
	row, err := rowFromComment(comment)
	if err != nil {
		return err
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (s *CommentStore) UpdateComment(ctx context.Context, comment domain.Comment) error {
	row, err := rowFromComment(comment)
	if err != nil {
		return err
	}
	res, err := s.db.NewUpdate().Model(row).
		Column("data").
		Where("id = ?", comment.ID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}

func rowFromComment(comment domain.Comment) (*commentRow, error) {
	comment.Replies = nil // tree shape is derived, never persisted
	data, err := json.Marshal(comment)
	if err != nil {
		return nil, fmt.Errorf("marshal comment: %w", err)
	}
	return &commentRow{
		ID:        comment.ID,
		BlogID:    comment.BlogID,
		ParentID:  comment.ParentID,
		Data:      data,
		CreatedAt: comment.CreatedAt,
	}, nil
}
