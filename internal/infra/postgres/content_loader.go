package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"cyberlearn-service/internal/domain"
)

// ContentLoader reads content documents (quizzes, lessons, blogs,
// achievements) stored as JSONB rows. It is the read path behind the quiz
// cache and the lesson/blog/achievement repositories.
type ContentLoader struct {
	pool *pgxpool.Pool
}

func NewContentLoader(pool *pgxpool.Pool) *ContentLoader {
	return &ContentLoader{pool: pool}
}

func (l *ContentLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var quiz domain.Quiz
	if err := l.loadDoc(ctx, `SELECT data FROM quizzes WHERE id=$1`, quizID, &quiz, domain.ErrQuizNotFound); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

func (l *ContentLoader) CountQuizzesByCategory(ctx context.Context, categoryID string) (int, error) {
	var count int
	err := l.pool.QueryRow(ctx, `SELECT COUNT(*) FROM quizzes WHERE category_id=$1`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count quizzes: %w", err)
	}
	return count, nil
}

func (l *ContentLoader) GetLesson(ctx context.Context, lessonID string) (domain.Lesson, error) {
	var lesson domain.Lesson
	if err := l.loadDoc(ctx, `SELECT data FROM lessons WHERE id=$1`, lessonID, &lesson, domain.ErrLessonNotFound); err != nil {
		return domain.Lesson{}, err
	}
	return lesson, nil
}

func (l *ContentLoader) CountLessonsByCategory(ctx context.Context, categoryID string) (int, error) {
	var count int
	err := l.pool.QueryRow(ctx, `SELECT COUNT(*) FROM lessons WHERE category_id=$1`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count lessons: %w", err)
	}
	return count, nil
}

func (l *ContentLoader) GetBlog(ctx context.Context, blogID string) (domain.Blog, error) {
	var blog domain.Blog
	if err := l.loadDoc(ctx, `SELECT data FROM blogs WHERE id=$1`, blogID, &blog, domain.ErrBlogNotFound); err != nil {
		return domain.Blog{}, err
	}
	return blog, nil
}

func (l *ContentLoader) GetAchievement(ctx context.Context, achievementID string) (domain.Achievement, error) {
	var a domain.Achievement
	if err := l.loadDoc(ctx, `SELECT data FROM achievements WHERE id=$1`, achievementID, &a, domain.ErrAchievementNotFound); err != nil {
		return domain.Achievement{}, err
	}
	return a, nil
}

func (l *ContentLoader) ListAchievementsByCategory(ctx context.Context, categoryID string) ([]domain.Achievement, error) {
	rows, err := l.pool.Query(ctx, `SELECT data FROM achievements WHERE category_id=$1 ORDER BY id`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	defer rows.Close()

	var out []domain.Achievement
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		var a domain.Achievement
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("unmarshal achievement: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (l *ContentLoader) loadDoc(ctx context.Context, query, id string, dst any, notFound error) error {
	var raw []byte
	err := l.pool.QueryRow(ctx, query, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("unmarshal document: %w", err)
	}
	return nil
}
