package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"cyberlearn-service/internal/domain"
	"cyberlearn-service/internal/infra/memory"
)

func newTestServices() (*QuizService, *ProgressService) {
	store := memory.NewStaticStore().
		AddQuiz(threePointQuiz()).
		AddQuiz(domain.Quiz{ID: "quiz-empty", CategoryID: "cat-1"}).
		AddQuiz(domain.Quiz{ID: "quiz-2", CategoryID: "cat-1", TotalPoints: 5, Questions: []domain.Question{
			{ID: "q9", Type: domain.TypeMCQ, CorrectIndex: 0, Points: 5},
		}}).
		AddLesson(domain.Lesson{ID: "lesson-1", Title: "Phishing 101", CategoryID: "cat-1"}).
		AddLesson(domain.Lesson{ID: "lesson-2", Title: "Passwords", CategoryID: "cat-1"}).
		AddAchievement(domain.Achievement{ID: "ach-1", Title: "Category Champion", CategoryID: "cat-1"})

	quizzes := memory.NewQuizCache(store, 5*time.Minute)
	progress := NewProgressServiceWithClock(
		memory.NewProgressStore(), store, quizzes, store,
		func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	)
	return NewQuizService(quizzes, progress), progress
}

func TestLessonCompletionIdempotentAppend(t *testing.T) {
	_, progress := newTestServices()
	ctx := context.Background()

	if _, _, err := progress.RecordLessonCompletion(ctx, "u1", "lesson-1"); err != nil {
		t.Fatalf("first completion: %v", err)
	}
	p, summary, err := progress.RecordLessonCompletion(ctx, "u1", "lesson-1")
	if err != nil {
		t.Fatalf("second completion: %v", err)
	}

	cp := p.Category("cat-1")
	if cp == nil {
		t.Fatalf("expected category progress for cat-1")
	}
	if len(cp.CompletedLessons) != 1 {
		t.Fatalf("expected exactly one completed lesson, got %v", cp.CompletedLessons)
	}
	if summary.LessonsCompleted != 1 || summary.TotalLessons != 2 || summary.Percentage != 50 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if p.TotalPoints != 0 {
		t.Fatalf("lesson completion must not award points, got %d", p.TotalPoints)
	}
}

func TestLessonCompletionUnknownLesson(t *testing.T) {
	_, progress := newTestServices()
	_, _, err := progress.RecordLessonCompletion(context.Background(), "u1", "lesson-missing")
	if !errors.Is(err, domain.ErrLessonNotFound) {
		t.Fatalf("expected lesson not found, got %v", err)
	}
}

func TestQuizAttemptHistoryAppends(t *testing.T) {
	svc, progress := newTestServices()
	ctx := context.Background()

	if _, err := svc.Submit(ctx, "u1", "quiz-1", allCorrectAnswers()); err != nil {
		t.Fatalf("submit 1: %v", err)
	}
	if _, err := svc.Submit(ctx, "u1", "quiz-1", map[string]string{}); err != nil {
		t.Fatalf("submit 2: %v", err)
	}

	p, err := progress.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	if len(p.QuizAttempts) != 2 {
		t.Fatalf("expected both attempts in history, got %d", len(p.QuizAttempts))
	}
	if !p.QuizAttempts[0].PointsAwarded || p.QuizAttempts[1].PointsAwarded {
		t.Fatalf("expected first attempt awarded, second not: %+v", p.QuizAttempts)
	}
}

func TestCategoryPercentageCountsQuizzesFresh(t *testing.T) {
	svc, progress := newTestServices()
	ctx := context.Background()

	if _, err := svc.Submit(ctx, "u1", "quiz-1", allCorrectAnswers()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	p, _ := progress.Get(ctx, "u1")
	cp := p.Category("cat-1")
	// 1 completed of 3 quizzes in the category (quiz-1, quiz-2, quiz-empty)
	if cp.ProgressPercentage != 33 {
		t.Fatalf("expected 33%%, got %d", cp.ProgressPercentage)
	}
}

func TestZeroQuizCategoryPercentageGuard(t *testing.T) {
	store := memory.NewStaticStore().
		AddQuiz(domain.Quiz{ID: "quiz-lonely", CategoryID: "cat-other", TotalPoints: 5, Questions: []domain.Question{
			{ID: "q1", Type: domain.TypeMCQ, CorrectIndex: 0, Points: 5},
		}}).
		AddLesson(domain.Lesson{ID: "lesson-x", CategoryID: "cat-empty"})
	quizzes := memory.NewQuizCache(store, time.Minute)
	progress := NewProgressService(memory.NewProgressStore(), store, quizzes, store)

	// cat-empty has lessons but zero quizzes; completing a lesson must not
	// divide by the quiz count
	p, _, err := progress.RecordLessonCompletion(context.Background(), "u1", "lesson-x")
	if err != nil {
		t.Fatalf("lesson completion: %v", err)
	}
	if got := p.Category("cat-empty").ProgressPercentage; got != 0 {
		t.Fatalf("expected 0%% for category without quizzes, got %d", got)
	}
}

func TestAchievementGrantedOnCategoryCompletion(t *testing.T) {
	store := memory.NewStaticStore().
		AddQuiz(threePointQuiz()).
		AddAchievement(domain.Achievement{ID: "ach-1", Title: "Category Champion", CategoryID: "cat-1"})
	quizzes := memory.NewQuizCache(store, time.Minute)
	progress := NewProgressService(memory.NewProgressStore(), store, quizzes, store)
	svc := NewQuizService(quizzes, progress)
	ctx := context.Background()

	// quiz-1 is the only quiz in cat-1 here, so completing it reaches 100%
	result, err := svc.Submit(ctx, "u1", "quiz-1", allCorrectAnswers())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Progress.CategoryProgress[0].ProgressPercentage != 100 {
		t.Fatalf("expected 100%%, got %d", result.Progress.CategoryProgress[0].ProgressPercentage)
	}

	p, _ := progress.Get(ctx, "u1")
	if !p.HasAchievement("ach-1") {
		t.Fatalf("expected achievement granted at 100%% category completion")
	}

	// resubmitting must not duplicate the award
	if _, err := svc.Submit(ctx, "u1", "quiz-1", allCorrectAnswers()); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	p, _ = progress.Get(ctx, "u1")
	if len(p.Achievements) != 1 {
		t.Fatalf("expected single achievement record, got %d", len(p.Achievements))
	}
}

func TestProgressCreatedLazily(t *testing.T) {
	_, progress := newTestServices()

	p, err := progress.Get(context.Background(), "u-new")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.UserID != "u-new" || p.TotalPoints != 0 || len(p.CategoryProgress) != 0 {
		t.Fatalf("expected blank record for unseen user, got %+v", p)
	}
}

// flakyStore injects version conflicts into the first n saves.
type flakyStore struct {
	ProgressRepository
	conflicts int
}

func (s *flakyStore) SaveProgress(ctx context.Context, progress *domain.UserProgress) error {
	if s.conflicts > 0 {
		s.conflicts--
		return domain.ErrVersionConflict
	}
	return s.ProgressRepository.SaveProgress(ctx, progress)
}

func TestRecordQuizAttemptRetriesOnVersionConflict(t *testing.T) {
	store := memory.NewStaticStore().
		AddQuiz(threePointQuiz())
	quizzes := memory.NewQuizCache(store, time.Minute)
	flaky := &flakyStore{ProgressRepository: memory.NewProgressStore(), conflicts: 2}
	progress := NewProgressService(flaky, store, quizzes, store)
	svc := NewQuizService(quizzes, progress)
	ctx := context.Background()

	result, err := svc.Submit(ctx, "u1", "quiz-1", allCorrectAnswers())
	if err != nil {
		t.Fatalf("submit with transient conflicts: %v", err)
	}
	if result.Progress.TotalPoints != 45 {
		t.Fatalf("expected save to land after retries, got %d points", result.Progress.TotalPoints)
	}

	p, err := progress.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(p.QuizAttempts) != 1 {
		t.Fatalf("retries must not duplicate the attempt, got %d", len(p.QuizAttempts))
	}
}

func TestRecordQuizAttemptGivesUpAfterRetries(t *testing.T) {
	store := memory.NewStaticStore().
		AddQuiz(threePointQuiz())
	quizzes := memory.NewQuizCache(store, time.Minute)
	flaky := &flakyStore{ProgressRepository: memory.NewProgressStore(), conflicts: 100}
	progress := NewProgressService(flaky, store, quizzes, store)
	svc := NewQuizService(quizzes, progress)

	_, err := svc.Submit(context.Background(), "u1", "quiz-1", allCorrectAnswers())
	if !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected conflict to surface after retry budget, got %v", err)
	}
}

// slowStore stretches the gap between reading the attempt history and saving,
// the window in which unserialized scoring would credit points twice.
type slowStore struct {
	ProgressRepository
}

func (s *slowStore) GetProgress(ctx context.Context, userID string) (domain.UserProgress, error) {
	p, err := s.ProgressRepository.GetProgress(ctx, userID)
	time.Sleep(10 * time.Millisecond)
	return p, err
}

func TestConcurrentSameQuizSubmissionsAwardOnce(t *testing.T) {
	store := memory.NewStaticStore().
		AddQuiz(threePointQuiz())
	quizzes := memory.NewQuizCache(store, time.Minute)
	progress := NewProgressService(&slowStore{ProgressRepository: memory.NewProgressStore()}, store, quizzes, store)
	svc := NewQuizService(quizzes, progress)
	ctx := context.Background()

	done := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := svc.Submit(ctx, "u1", "quiz-1", allCorrectAnswers())
			done <- err
		}()
	}
	for i := 0; i < 2; i++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent submit: %v", err)
		}
	}

	p, err := progress.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	if p.TotalPoints != 45 {
		t.Fatalf("expected points credited once for a 45-point quiz, got %d", p.TotalPoints)
	}
	if len(p.QuizAttempts) != 2 {
		t.Fatalf("expected both attempts in history, got %d", len(p.QuizAttempts))
	}
	awarded := 0
	for _, a := range p.QuizAttempts {
		if a.PointsAwarded {
			awarded++
		}
	}
	if awarded != 1 {
		t.Fatalf("expected exactly one points-awarding attempt, got %d", awarded)
	}
}

// failingStore simulates a backing store outage on reads.
type failingStore struct {
	ProgressRepository
	err error
}

func (s *failingStore) GetProgress(context.Context, string) (domain.UserProgress, error) {
	return domain.UserProgress{}, s.err
}

func TestSubmitSurfacesStoreReadFailure(t *testing.T) {
	store := memory.NewStaticStore().
		AddQuiz(threePointQuiz())
	quizzes := memory.NewQuizCache(store, time.Minute)
	storeErr := errors.New("connection reset")
	progress := NewProgressService(&failingStore{ProgressRepository: memory.NewProgressStore(), err: storeErr}, store, quizzes, store)
	svc := NewQuizService(quizzes, progress)

	// a failed history read must fail the submission, not score against a
	// blank history and re-award points
	_, err := svc.Submit(context.Background(), "u1", "quiz-1", allCorrectAnswers())
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store failure to surface, got %v", err)
	}
}

func TestConcurrentSameUserSubmissionsDoNotLoseUpdates(t *testing.T) {
	svc, progress := newTestServices()
	ctx := context.Background()

	done := make(chan error, 2)
	go func() {
		_, err := svc.Submit(ctx, "u1", "quiz-1", allCorrectAnswers())
		done <- err
	}()
	go func() {
		_, err := svc.Submit(ctx, "u1", "quiz-2", map[string]string{"q9": "0"})
		done <- err
	}()
	for i := 0; i < 2; i++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent submit: %v", err)
		}
	}

	p, _ := progress.Get(ctx, "u1")
	if len(p.QuizAttempts) != 2 {
		t.Fatalf("expected both attempts recorded, got %d", len(p.QuizAttempts))
	}
	if p.TotalPoints != 50 {
		t.Fatalf("expected 45+5 points, got %d", p.TotalPoints)
	}
}
