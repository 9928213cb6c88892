package app

import (
	"context"
	"math"

	"cyberlearn-service/internal/domain"
)

// QuizRepository loads quiz content with its question set resolved
// (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	CountQuizzesByCategory(ctx context.Context, categoryID string) (int, error)
}

// ProgressSummary is the slice of UserProgress returned with a submission.
type ProgressSummary struct {
	TotalPoints      int                       `json:"totalPoints"`
	CategoryProgress []domain.CategoryProgress `json:"categoryProgress"`
}

// SubmissionResult is the caller-facing outcome of a quiz submission.
type SubmissionResult struct {
	domain.ScoreReport
	Progress ProgressSummary `json:"progress"`
}

// QuizService runs the submission and scoring pipeline.
type QuizService struct {
	quizzes  QuizRepository
	progress *ProgressService
}

func NewQuizService(quizzes QuizRepository, progress *ProgressService) *QuizService {
	return &QuizService{quizzes: quizzes, progress: progress}
}

// GetQuiz returns the quiz with questions resolved, answers included.
// Transport is responsible for stripping authoritative answers on reads.
func (s *QuizService) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.quizzes.GetQuiz(ctx, quizID)
}

// Submit scores a submission, records the attempt in the user's progress
// ledger, and assembles the response. An unknown quiz or an empty question
// set surfaces as a not-found condition, never as a zero score. Scoring and
// recording happen as one serialized read-modify-write on the user's
// progress document, so the attempt history the no-double-award rule reads
// always includes every previously recorded submission.
func (s *QuizService) Submit(ctx context.Context, userID, quizID string, answers map[string]string) (SubmissionResult, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return SubmissionResult{}, err
	}
	if len(quiz.Questions) == 0 {
		return SubmissionResult{}, domain.ErrQuizEmpty
	}

	updated, report, err := s.progress.RecordQuizAttempt(ctx, userID, quiz, answers)
	if err != nil {
		return SubmissionResult{}, err
	}

	return SubmissionResult{
		ScoreReport: report,
		Progress: ProgressSummary{
			TotalPoints:      updated.TotalPoints,
			CategoryProgress: updated.CategoryProgress,
		},
	}, nil
}

// Score evaluates a submission against a quiz given the user's attempt
// history. Points for a question are credited to NewPointsEarned only when
// the question was not already answered correctly in a prior points-awarding
// attempt on this quiz.
func Score(quiz domain.Quiz, answers map[string]string, attempts []domain.QuizAttempt) domain.ScoreReport {
	previouslyCorrect := previouslyCorrectQuestions(quiz, answers, attempts)

	report := domain.ScoreReport{
		TotalQuestions:  len(quiz.Questions),
		TotalPoints:     quiz.TotalPoints,
		QuestionResults: make([]domain.QuestionResult, 0, len(quiz.Questions)),
	}

	for _, q := range quiz.Questions {
		raw := answers[q.ID]
		verdict := Evaluate(q, DecodeAnswer(q.Type, raw))
		points := q.PointValue()
		wasPrevious := previouslyCorrect[q.ID]

		earned := 0
		if verdict.Correct {
			report.CorrectAnswers++
			report.EarnedPoints += points
			if !wasPrevious {
				earned = points
				report.NewPointsEarned += points
			}
		}

		report.QuestionResults = append(report.QuestionResults, domain.QuestionResult{
			QuestionID:           q.ID,
			UserAnswer:           raw,
			CorrectAnswer:        verdict.Canonical,
			IsCorrect:            verdict.Correct,
			Explanation:          q.Explanation,
			Points:               points,
			PointsEarned:         earned,
			WasPreviouslyCorrect: wasPrevious,
		})
	}

	report.Percentage = percentOf(report.EarnedPoints, quiz.TotalPoints)
	report.Rank = domain.RankFor(report.Percentage)
	return report
}

// previouslyCorrectQuestions approximates which questions the user already
// answered correctly on this quiz. Past attempts record only score and whether
// points were awarded, not per-question correctness, so the check re-evaluates
// the current answers and applies only when some prior attempt awarded points.
// A correctQuestionIds snapshot per attempt would make this an exact replay.
func previouslyCorrectQuestions(quiz domain.Quiz, answers map[string]string, attempts []domain.QuizAttempt) map[string]bool {
	awarded := false
	for _, a := range attempts {
		if a.QuizID == quiz.ID && a.PointsAwarded {
			awarded = true
			break
		}
	}
	if !awarded {
		return nil
	}

	correct := make(map[string]bool, len(quiz.Questions))
	for _, q := range quiz.Questions {
		if Evaluate(q, DecodeAnswer(q.Type, answers[q.ID])).Correct {
			correct[q.ID] = true
		}
	}
	return correct
}

// percentOf computes round(part/whole*100), resolving a zero denominator to 0.
func percentOf(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
