package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"cyberlearn-service/internal/domain"
)

// ProgressRepository persists the per-user progress document. Save replaces
// the whole document and must fail with domain.ErrVersionConflict when the
// stored version no longer matches the loaded one.
type ProgressRepository interface {
	GetProgress(ctx context.Context, userID string) (domain.UserProgress, error)
	SaveProgress(ctx context.Context, progress *domain.UserProgress) error
}

// LessonRepository loads lesson content and category lesson counts.
type LessonRepository interface {
	GetLesson(ctx context.Context, lessonID string) (domain.Lesson, error)
	CountLessonsByCategory(ctx context.Context, categoryID string) (int, error)
}

// AchievementRepository loads achievement definitions.
type AchievementRepository interface {
	GetAchievement(ctx context.Context, achievementID string) (domain.Achievement, error)
	ListAchievementsByCategory(ctx context.Context, categoryID string) ([]domain.Achievement, error)
}

// saveRetries bounds the optimistic-concurrency retry loop.
const saveRetries = 3

// LessonCompletionSummary is the caller-facing result of completing a lesson.
type LessonCompletionSummary struct {
	LessonsCompleted int `json:"lessonsCompleted"`
	TotalLessons     int `json:"totalLessons"`
	Percentage       int `json:"percentage"`
}

// ProgressService maintains the durable per-user learning record. Updates to
// one user's document are serialized by a per-user mutex, and the repository
// save is version-checked, so two concurrent submissions for the same user
// cannot lose each other's writes.
type ProgressService struct {
	store   ProgressRepository
	lessons LessonRepository
	quizzes QuizRepository
	awards  AchievementRepository
	clock   func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewProgressService(store ProgressRepository, lessons LessonRepository, quizzes QuizRepository, awards AchievementRepository) *ProgressService {
	return &ProgressService{
		store:   store,
		lessons: lessons,
		quizzes: quizzes,
		awards:  awards,
		clock:   time.Now,
		locks:   make(map[string]*sync.Mutex),
	}
}

// NewProgressServiceWithClock is test-only for deterministic timestamps.
func NewProgressServiceWithClock(store ProgressRepository, lessons LessonRepository, quizzes QuizRepository, awards AchievementRepository, now func() time.Time) *ProgressService {
	s := NewProgressService(store, lessons, quizzes, awards)
	s.clock = now
	return s
}

// Get returns the user's progress for the progress endpoint, falling back to
// an empty record for users with no history yet.
func (s *ProgressService) Get(ctx context.Context, userID string) (domain.UserProgress, error) {
	progress, err := s.store.GetProgress(ctx, userID)
	if errors.Is(err, domain.ErrProgressNotFound) {
		return s.blank(userID), nil
	}
	return progress, err
}

// RecordQuizAttempt scores the submission against the freshly loaded attempt
// history, appends the attempt, marks the quiz completed in its category,
// refreshes the category percentage against a fresh quiz count, and credits
// newly earned points. Scoring happens inside the per-user lock so two
// simultaneous submissions of the same quiz cannot both see a history without
// the other's attempt and both credit new points. The whole document is
// persisted in one write; on failure nothing is considered committed.
func (s *ProgressService) RecordQuizAttempt(ctx context.Context, userID string, quiz domain.Quiz, answers map[string]string) (domain.UserProgress, domain.ScoreReport, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	var progress domain.UserProgress
	var report domain.ScoreReport
	err := s.withRetry(func() error {
		var err error
		progress, err = s.loadOrCreate(ctx, userID)
		if err != nil {
			return err
		}

		report = Score(quiz, answers, progress.QuizAttempts)

		now := s.clock()
		cp := progress.EnsureCategory(quiz.CategoryID)

		progress.QuizAttempts = append(progress.QuizAttempts, domain.QuizAttempt{
			QuizID:        quiz.ID,
			Score:         report.EarnedPoints,
			PointsAwarded: report.NewPointsEarned > 0,
			AttemptedAt:   now,
		})
		if !cp.HasQuiz(quiz.ID) {
			cp.CompletedQuizzes = append(cp.CompletedQuizzes, quiz.ID)
		}

		// total is queried fresh on every aggregation, never cached
		total, err := s.quizzes.CountQuizzesByCategory(ctx, quiz.CategoryID)
		if err != nil {
			return err
		}
		cp.ProgressPercentage = percentOf(len(cp.CompletedQuizzes), total)

		progress.TotalPoints += report.NewPointsEarned
		if cp.ProgressPercentage >= 100 {
			if err := s.grantCategoryAchievements(ctx, &progress, quiz.CategoryID, now); err != nil {
				return err
			}
		}
		progress.UpdatedAt = now

		return s.store.SaveProgress(ctx, &progress)
	})
	if err != nil {
		return domain.UserProgress{}, domain.ScoreReport{}, err
	}
	return progress, report, nil
}

// GetLesson resolves a lesson for read endpoints.
func (s *ProgressService) GetLesson(ctx context.Context, lessonID string) (domain.Lesson, error) {
	return s.lessons.GetLesson(ctx, lessonID)
}

// RecordLessonCompletion marks a lesson completed in its category. Lesson
// completion awards no points; points accrue only from quizzes.
func (s *ProgressService) RecordLessonCompletion(ctx context.Context, userID, lessonID string) (domain.UserProgress, LessonCompletionSummary, error) {
	lesson, err := s.lessons.GetLesson(ctx, lessonID)
	if err != nil {
		return domain.UserProgress{}, LessonCompletionSummary{}, err
	}

	unlock := s.lockUser(userID)
	defer unlock()

	var progress domain.UserProgress
	var completed int
	err = s.withRetry(func() error {
		var err error
		progress, err = s.loadOrCreate(ctx, userID)
		if err != nil {
			return err
		}

		cp := progress.EnsureCategory(lesson.CategoryID)
		if !cp.HasLesson(lesson.ID) {
			cp.CompletedLessons = append(cp.CompletedLessons, lesson.ID)
		}
		completed = len(cp.CompletedLessons)
		progress.UpdatedAt = s.clock()

		return s.store.SaveProgress(ctx, &progress)
	})
	if err != nil {
		return domain.UserProgress{}, LessonCompletionSummary{}, err
	}

	totalLessons, err := s.lessons.CountLessonsByCategory(ctx, lesson.CategoryID)
	if err != nil {
		return domain.UserProgress{}, LessonCompletionSummary{}, err
	}
	return progress, LessonCompletionSummary{
		LessonsCompleted: completed,
		TotalLessons:     totalLessons,
		Percentage:       percentOf(completed, totalLessons),
	}, nil
}

// grantCategoryAchievements appends any category achievements the user has
// not yet earned. Re-running it for an already-complete category is a no-op.
func (s *ProgressService) grantCategoryAchievements(ctx context.Context, progress *domain.UserProgress, categoryID string, now time.Time) error {
	if s.awards == nil {
		return nil
	}
	achievements, err := s.awards.ListAchievementsByCategory(ctx, categoryID)
	if err != nil {
		return err
	}
	for _, a := range achievements {
		if !progress.HasAchievement(a.ID) {
			progress.Achievements = append(progress.Achievements, domain.EarnedAchievement{
				AchievementID: a.ID,
				EarnedAt:      now,
			})
		}
	}
	return nil
}

func (s *ProgressService) loadOrCreate(ctx context.Context, userID string) (domain.UserProgress, error) {
	progress, err := s.store.GetProgress(ctx, userID)
	if errors.Is(err, domain.ErrProgressNotFound) {
		return s.blank(userID), nil
	}
	return progress, err
}

func (s *ProgressService) blank(userID string) domain.UserProgress {
	now := s.clock()
	return domain.UserProgress{
		UserID:           userID,
		CategoryProgress: []domain.CategoryProgress{},
		QuizAttempts:     []domain.QuizAttempt{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// withRetry re-runs the read-modify-write cycle on version conflicts, bounded
// to saveRetries attempts.
func (s *ProgressService) withRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < saveRetries; attempt++ {
		if err = fn(); !errors.Is(err, domain.ErrVersionConflict) {
			return err
		}
	}
	return err
}

// lockUser serializes updates per user id.
func (s *ProgressService) lockUser(userID string) func() {
	s.mu.Lock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
