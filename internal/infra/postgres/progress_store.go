package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"cyberlearn-service/internal/domain"
)

type progressRow struct {
	bun.BaseModel `bun:"table:user_progress"`

	UserID  string `bun:"user_id,pk"`
	Version int64  `bun:"version,notnull"`
	Data    []byte `bun:"data,type:jsonb,notnull"`
}

// ProgressStore persists UserProgress as whole JSONB documents guarded by a
// version column. A save only lands when the stored version still matches the
// version the document was loaded with; otherwise the caller gets
// ErrVersionConflict and is expected to reload and retry.
type ProgressStore struct {
	db *bun.DB
}

func NewProgressStore(db *bun.DB) *ProgressStore {
	return &ProgressStore{db: db}
}

func (s *ProgressStore) GetProgress(ctx context.Context, userID string) (domain.UserProgress, error) {
	row := new(progressRow)
	err := s.db.NewSelect().Model(row).Where("user_id = ?", userID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserProgress{}, domain.ErrProgressNotFound
	}
	if err != nil {
		return domain.UserProgress{}, fmt.Errorf("load progress: %w", err)
	}

	var progress domain.UserProgress
	if err := json.Unmarshal(row.Data, &progress); err != nil {
		return domain.UserProgress{}, fmt.Errorf("unmarshal progress: %w", err)
	}
	progress.Version = row.Version
	return progress, nil
}

func (s *ProgressStore) SaveProgress(ctx context.Context, progress *domain.UserProgress) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}

	if progress.Version == 0 {
		// first write for this user; a concurrent insert loses and retries
		res, err := s.db.NewInsert().
			Model(&progressRow{UserID: progress.UserID, Version: 1, Data: data}).
			On("CONFLICT (user_id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("insert progress: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return domain.ErrVersionConflict
		}
		progress.Version = 1
		return nil
	}

	res, err := s.db.NewUpdate().
		Model((*progressRow)(nil)).
		Set("data = ?", data).
		Set("version = version + 1").
		Where("user_id = ?", progress.UserID).
		Where("version = ?", progress.Version).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrVersionConflict
	}
	progress.Version++
	return nil
}
