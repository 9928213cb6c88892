package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"cyberlearn-service/internal/app"
	"cyberlearn-service/internal/domain"
	"cyberlearn-service/internal/logger"
)

// Handler wires the application services to the REST surface.
type Handler struct {
	quizzes      *app.QuizService
	progress     *app.ProgressService
	comments     *app.CommentService
	achievements app.AchievementRepository
	validate     *validator.Validate
	log          *logger.Logger
}

func NewHandler(quizzes *app.QuizService, progress *app.ProgressService, comments *app.CommentService, achievements app.AchievementRepository, log *logger.Logger) *Handler {
	return &Handler{
		quizzes:      quizzes,
		progress:     progress,
		comments:     comments,
		achievements: achievements,
		validate:     validator.New(),
		log:          log,
	}
}

type submitQuizRequest struct {
	Answers map[string]string `json:"answers" validate:"required,min=1"`
}

type addCommentRequest struct {
	Content       string `json:"content" validate:"required"`
	ParentComment string `json:"parentComment,omitempty"`
}

type editCommentRequest struct {
	Content string `json:"content" validate:"required"`
}

// questionView is a question with its authoritative answer stripped; quiz
// reads must never leak correct indices or fill-blank answers to clients.
type questionView struct {
	ID           string              `json:"id"`
	Type         domain.QuestionType `json:"type"`
	Difficulty   domain.Difficulty   `json:"difficulty"`
	Prompt       string              `json:"question"`
	Options      []string            `json:"options,omitempty"`
	ScenarioData string              `json:"scenarioData,omitempty"`
	Instructions string              `json:"practicalInstructions,omitempty"`
	Points       int                 `json:"points"`
	Tags         []string            `json:"tags,omitempty"`
}

type quizView struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	CategoryID   string            `json:"categoryId"`
	Difficulty   domain.Difficulty `json:"difficulty"`
	Level        domain.QuizLevel  `json:"level"`
	TimeLimit    int               `json:"timeLimit,omitempty"`
	TotalPoints  int               `json:"totalPoints"`
	PassingScore int               `json:"passingScore,omitempty"`
	Questions    []questionView    `json:"questions"`
}

func sanitizeQuiz(quiz domain.Quiz) quizView {
	view := quizView{
		ID:           quiz.ID,
		Title:        quiz.Title,
		Description:  quiz.Description,
		CategoryID:   quiz.CategoryID,
		Difficulty:   quiz.Difficulty,
		Level:        quiz.Level,
		TimeLimit:    quiz.TimeLimit,
		TotalPoints:  quiz.TotalPoints,
		PassingScore: quiz.PassingScore,
		Questions:    make([]questionView, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		view.Questions = append(view.Questions, questionView{
			ID:           q.ID,
			Type:         q.Type,
			Difficulty:   q.Difficulty,
			Prompt:       q.Prompt,
			Options:      q.Options,
			ScenarioData: q.ScenarioData,
			Instructions: q.Instructions,
			Points:       q.PointValue(),
			Tags:         q.Tags,
		})
	}
	return view
}

func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.quizzes.GetQuiz(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sanitizeQuiz(quiz))
}

func (h *Handler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req submitQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "answers are required")
		return
	}

	result, err := h.quizzes.Submit(r.Context(), actor.UserID, mux.Vars(r)["id"], req.Answers)
	if err != nil {
		h.log.WithUserID(actor.UserID).WithError(err).Warn("quiz submission failed")
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) GetLesson(w http.ResponseWriter, r *http.Request) {
	lesson, err := h.progress.GetLesson(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, lesson)
}

func (h *Handler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	_, summary, err := h.progress.RecordLessonCompletion(r.Context(), actor.UserID, mux.Vars(r)["id"])
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	progress, err := h.progress.Get(r.Context(), actor.UserID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, progress)
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	tree, err := h.comments.ListTree(r.Context(), mux.Vars(r)["blogId"])
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, tree)
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "content is required")
		return
	}

	comment, err := h.comments.Add(r.Context(), mux.Vars(r)["blogId"], actor, req.Content, req.ParentComment)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, comment)
}

func (h *Handler) EditComment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req editCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "content is required")
		return
	}

	comment, err := h.comments.Edit(r.Context(), mux.Vars(r)["id"], actor, req.Content)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, comment)
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.comments.Delete(r.Context(), mux.Vars(r)["id"], actor); err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "comment deleted"})
}

func (h *Handler) GetAchievement(w http.ResponseWriter, r *http.Request) {
	achievement, err := h.achievements.GetAchievement(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, achievement)
}
