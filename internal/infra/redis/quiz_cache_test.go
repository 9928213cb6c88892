package redis

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"cyberlearn-service/internal/domain"
)

type countingLoader struct {
	loads atomic.Int64
	quiz  domain.Quiz
}

func (l *countingLoader) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	l.loads.Add(1)
	if quizID != l.quiz.ID {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return l.quiz, nil
}

func (l *countingLoader) CountQuizzesByCategory(_ context.Context, _ string) (int, error) {
	return 4, nil
}

func newTestCache(t *testing.T, ttl time.Duration) (*QuizCache, *countingLoader, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	loader := &countingLoader{quiz: domain.Quiz{
		ID:         "quiz-1",
		Title:      "Network Defense",
		CategoryID: "cat-1",
		Questions: []domain.Question{
			{ID: "q1", Type: domain.TypeMCQ, Prompt: "Port of HTTPS?", Options: []string{"80", "443"}, CorrectIndex: 1, Points: 5},
		},
		TotalPoints: 5,
	}}
	return NewQuizCache(client, loader, ttl), loader, mr
}

func TestQuizCacheHitSkipsLoader(t *testing.T) {
	cache, loader, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		quiz, err := cache.GetQuiz(ctx, "quiz-1")
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		if quiz.Title != "Network Defense" || len(quiz.Questions) != 1 {
			t.Fatalf("get %d: wrong quiz %+v", i, quiz)
		}
	}
	if got := loader.loads.Load(); got != 1 {
		t.Fatalf("expected one backing load, got %d", got)
	}
	if !mr.Exists("quiz:quiz-1") {
		t.Fatalf("expected quiz:quiz-1 key in redis")
	}
}

func TestQuizCacheRoundTripsFullDocument(t *testing.T) {
	cache, _, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	if _, err := cache.GetQuiz(ctx, "quiz-1"); err != nil {
		t.Fatalf("warm: %v", err)
	}
	quiz, err := cache.GetQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("cached get: %v", err)
	}
	q := quiz.Questions[0]
	// the cached copy must keep the authoritative answer fields intact
	if q.CorrectIndex != 1 || q.Points != 5 || len(q.Options) != 2 {
		t.Fatalf("cached question lost fields: %+v", q)
	}
}

func TestQuizCacheExpiryReloads(t *testing.T) {
	cache, loader, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	if _, err := cache.GetQuiz(ctx, "quiz-1"); err != nil {
		t.Fatalf("first get: %v", err)
	}

	// jitter caps the ttl at 10% over, so 2 minutes is past any variant
	mr.FastForward(2 * time.Minute)

	if _, err := cache.GetQuiz(ctx, "quiz-1"); err != nil {
		t.Fatalf("second get: %v", err)
	}
	if got := loader.loads.Load(); got != 2 {
		t.Fatalf("expected reload after ttl, got %d loads", got)
	}
}

func TestQuizCacheMissPropagatesNotFound(t *testing.T) {
	cache, _, mr := newTestCache(t, time.Minute)

	if _, err := cache.GetQuiz(context.Background(), "quiz-nope"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if mr.Exists("quiz:quiz-nope") {
		t.Fatalf("misses must not be cached")
	}
}

func TestQuizCacheCorruptEntryFallsBack(t *testing.T) {
	cache, loader, mr := newTestCache(t, time.Minute)
	if err := mr.Set("quiz:quiz-1", "{not json"); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}

	quiz, err := cache.GetQuiz(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if quiz.Title != "Network Defense" {
		t.Fatalf("expected loader fallback, got %+v", quiz)
	}
	if got := loader.loads.Load(); got != 1 {
		t.Fatalf("expected exactly one fallback load, got %d", got)
	}
}

func TestQuizCacheCountsPassThrough(t *testing.T) {
	cache, _, _ := newTestCache(t, time.Minute)

	n, err := cache.CountQuizzesByCategory(context.Background(), "cat-1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4, got %d", n)
	}
}
