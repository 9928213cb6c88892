package domain

import "time"

// QuestionType selects which evaluation rule applies to a question.
type QuestionType string

const (
	TypeMCQ       QuestionType = "mcq"
	TypeTrueFalse QuestionType = "true_false"
	TypeFillBlank QuestionType = "fill_blank"
	TypeScenario  QuestionType = "scenario"
	TypePractical QuestionType = "practical"
)

// IsChoice reports whether answers to this type are option indices.
// Everything except fill-blank compares against CorrectIndex.
func (t QuestionType) IsChoice() bool {
	return t != TypeFillBlank
}

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// DefaultQuestionPoints applies when a question carries no explicit point value.
const DefaultQuestionPoints = 5

// Question is one evaluable unit. Exactly one of CorrectIndex/Answer is
// authoritative, selected by Type. Questions are immutable once created.
type Question struct {
	ID            string       `json:"id"`
	CategoryID    string       `json:"categoryId"`
	SubcategoryID string       `json:"subcategoryId,omitempty"`
	LessonID      string       `json:"lessonId,omitempty"`
	Type          QuestionType `json:"type"`
	Difficulty    Difficulty   `json:"difficulty"`
	Prompt        string       `json:"question"`
	Options       []string     `json:"options,omitempty"`
	CorrectIndex  int          `json:"correctIndex"`
	Answer        string       `json:"answer,omitempty"`
	ScenarioData  string       `json:"scenarioData,omitempty"`
	Instructions  string       `json:"practicalInstructions,omitempty"`
	Explanation   string       `json:"explanation,omitempty"`
	Resources     []string     `json:"resources,omitempty"`
	Tags          []string     `json:"tags,omitempty"`
	Points        int          `json:"points"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// PointValue returns the question's point worth, falling back to the default.
func (q Question) PointValue() int {
	if q.Points > 0 {
		return q.Points
	}
	return DefaultQuestionPoints
}

// QuizLevel names where in the content hierarchy a quiz attaches.
type QuizLevel string

const (
	LevelLesson      QuizLevel = "lesson"
	LevelSubcategory QuizLevel = "subcategory"
	LevelCategory    QuizLevel = "category"
)

// Quiz is a leveled collection of questions. TotalPoints is computed when the
// question set is assembled; it is not re-validated on later edits.
type Quiz struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	CategoryID    string     `json:"categoryId"`
	SubcategoryID string     `json:"subcategoryId,omitempty"`
	LessonID      string     `json:"lessonId,omitempty"`
	Difficulty    Difficulty `json:"difficulty"`
	Level         QuizLevel  `json:"level"`
	Questions     []Question `json:"questions"`
	TimeLimit     int        `json:"timeLimit,omitempty"` // minutes
	TotalPoints   int        `json:"totalPoints"`
	PassingScore  int        `json:"passingScore,omitempty"` // percent
	CreatedAt     time.Time  `json:"createdAt"`
}

// SumPoints recomputes the quiz's point total from its questions.
func (q Quiz) SumPoints() int {
	total := 0
	for _, question := range q.Questions {
		total += question.PointValue()
	}
	return total
}

// Lesson is a content page inside a category.
type Lesson struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	CategoryID    string    `json:"categoryId"`
	SubcategoryID string    `json:"subcategoryId,omitempty"`
	Content       string    `json:"content,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Rank is the qualitative label for a score percentage.
type Rank string

const (
	RankExcellent        Rank = "Excellent"
	RankGood             Rank = "Good"
	RankAverage          Rank = "Average"
	RankNeedsImprovement Rank = "Needs Improvement"
)

// RankFor maps a percentage onto its rank with inclusive lower bounds.
func RankFor(percentage int) Rank {
	switch {
	case percentage >= 90:
		return RankExcellent
	case percentage >= 80:
		return RankGood
	case percentage >= 70:
		return RankAverage
	default:
		return RankNeedsImprovement
	}
}

// QuestionResult is one row of a scoring pass.
type QuestionResult struct {
	QuestionID           string `json:"questionId"`
	UserAnswer           string `json:"userAnswer"`
	CorrectAnswer        any    `json:"correctAnswer"` // option index or answer text, by type
	IsCorrect            bool   `json:"isCorrect"`
	Explanation          string `json:"explanation,omitempty"`
	Points               int    `json:"points"`
	PointsEarned         int    `json:"pointsEarned"`
	WasPreviouslyCorrect bool   `json:"wasPreviouslyCorrect"`
}

// ScoreReport is the outcome of scoring one submission against one quiz.
type ScoreReport struct {
	TotalQuestions  int              `json:"totalQuestions"`
	CorrectAnswers  int              `json:"correctAnswers"`
	TotalPoints     int              `json:"totalPoints"`
	EarnedPoints    int              `json:"earnedPoints"`
	NewPointsEarned int              `json:"newPointsEarned"`
	Percentage      int              `json:"percentage"`
	Rank            Rank             `json:"rank"`
	QuestionResults []QuestionResult `json:"questionResults"`
}

// QuizAttempt is an append-only history record; attempts are never overwritten.
type QuizAttempt struct {
	QuizID        string    `json:"quiz"`
	Score         int       `json:"score"`
	PointsAwarded bool      `json:"pointsAwarded"`
	AttemptedAt   time.Time `json:"attemptedAt"`
}

// CategoryProgress is the per-category sub-record of UserProgress. Completed
// lists have set semantics, enforced by membership checks on mutation.
type CategoryProgress struct {
	CategoryID         string   `json:"category"`
	CompletedLessons   []string `json:"completedLessons"`
	CompletedQuizzes   []string `json:"completedQuizzes"`
	ProgressPercentage int      `json:"progressPercentage"`
}

// HasLesson reports whether a lesson is already recorded as completed.
func (c CategoryProgress) HasLesson(lessonID string) bool {
	return contains(c.CompletedLessons, lessonID)
}

// HasQuiz reports whether a quiz is already recorded as completed.
func (c CategoryProgress) HasQuiz(quizID string) bool {
	return contains(c.CompletedQuizzes, quizID)
}

func contains(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

// EarnedAchievement marks an achievement the user has unlocked.
type EarnedAchievement struct {
	AchievementID string    `json:"achievement"`
	EarnedAt      time.Time `json:"earnedAt"`
}

// UserProgress is the durable per-user learning ledger. TotalPoints is
// monotonically non-decreasing: it grows only by points from questions not
// previously answered correctly. Version backs optimistic concurrency on save.
type UserProgress struct {
	UserID           string              `json:"user"`
	CategoryProgress []CategoryProgress  `json:"categoryProgress"`
	QuizAttempts     []QuizAttempt       `json:"quizAttempts"`
	Achievements     []EarnedAchievement `json:"achievements,omitempty"`
	TotalPoints      int                 `json:"totalPoints"`
	Version          int64               `json:"-"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

// Category locates the sub-record for a category, or nil if the user has not
// touched it yet. At most one entry exists per category.
func (p *UserProgress) Category(categoryID string) *CategoryProgress {
	for i := range p.CategoryProgress {
		if p.CategoryProgress[i].CategoryID == categoryID {
			return &p.CategoryProgress[i]
		}
	}
	return nil
}

// EnsureCategory returns the category sub-record, appending an empty one first
// if needed.
func (p *UserProgress) EnsureCategory(categoryID string) *CategoryProgress {
	if cp := p.Category(categoryID); cp != nil {
		return cp
	}
	p.CategoryProgress = append(p.CategoryProgress, CategoryProgress{
		CategoryID:       categoryID,
		CompletedLessons: []string{},
		CompletedQuizzes: []string{},
	})
	return &p.CategoryProgress[len(p.CategoryProgress)-1]
}

// HasAchievement reports whether the achievement was already earned.
func (p *UserProgress) HasAchievement(achievementID string) bool {
	for _, a := range p.Achievements {
		if a.AchievementID == achievementID {
			return true
		}
	}
	return false
}

// LatestAttempt returns the most recent attempt for a quiz, or nil.
func (p *UserProgress) LatestAttempt(quizID string) *QuizAttempt {
	for i := len(p.QuizAttempts) - 1; i >= 0; i-- {
		if p.QuizAttempts[i].QuizID == quizID {
			return &p.QuizAttempts[i]
		}
	}
	return nil
}

// Achievement is a per-category award definition.
type Achievement struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CategoryID  string    `json:"categoryId"`
	Points      int       `json:"points,omitempty"`
	BadgeIcon   string    `json:"badgeIcon,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AuthorKind distinguishes known, anonymous, and deleted comment authors.
type AuthorKind string

const (
	AuthorKnown     AuthorKind = "known"
	AuthorAnonymous AuthorKind = "anonymous"
	AuthorDeleted   AuthorKind = "deleted"
)

// Author identifies who wrote a comment. UserID is set only for AuthorKnown;
// soft deletion replaces the author with the Deleted variant instead of
// nulling a reference.
type Author struct {
	Kind   AuthorKind `json:"kind"`
	UserID string     `json:"userId,omitempty"`
}

// KnownAuthor builds the author variant for an authenticated user.
func KnownAuthor(userID string) Author {
	return Author{Kind: AuthorKnown, UserID: userID}
}

// DeletedContent is the sentinel a soft-deleted comment's content is replaced with.
const DeletedContent = "[deleted]"

// Comment belongs to a blog post, optionally to a parent comment. Storage is
// flat with parent pointers; Replies is populated only by the tree builder.
// Name and avatar are snapshotted at creation so later profile changes do not
// rewrite history.
type Comment struct {
	ID           string     `json:"id"`
	BlogID       string     `json:"blog"`
	Author       Author     `json:"author"`
	AuthorName   string     `json:"authorName"`
	AuthorAvatar string     `json:"authorAvatar,omitempty"`
	Content      string     `json:"content"`
	ParentID     string     `json:"parentComment,omitempty"` // empty for roots
	IsEdited     bool       `json:"isEdited"`
	IsDeleted    bool       `json:"isDeleted"`
	Likes        int        `json:"likes"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	Replies      []*Comment `json:"replies,omitempty"`
}

// Blog is the minimal view of a post comments attach to.
type Blog struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}
