package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"cyberlearn-service/internal/domain"
)

type errorBody struct {
	Message string `json:"message"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"message":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(data)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, errorBody{Message: message})
}

// respondWithDomainError maps the error taxonomy onto HTTP statuses: absent
// resources are 404, rejected input 400, ownership failures 403, and anything
// else is a store/infrastructure failure surfaced as 500.
func respondWithDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrQuizEmpty),
		errors.Is(err, domain.ErrLessonNotFound),
		errors.Is(err, domain.ErrBlogNotFound),
		errors.Is(err, domain.ErrCommentNotFound),
		errors.Is(err, domain.ErrAchievementNotFound),
		errors.Is(err, domain.ErrProgressNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrEmptyContent):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotCommentOwner):
		respondWithError(w, http.StatusForbidden, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
