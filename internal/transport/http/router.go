package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cyberlearn-service/internal/logger"
	"cyberlearn-service/internal/metrics"
)

// NewRouter assembles the REST surface. Reads of public content need no
// token; anything that acts as a user goes through the auth middleware.
func NewRouter(h *Handler, jwtSecret []byte, log *logger.Logger, m *metrics.Metrics) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestLogger(log))
	r.Use(Instrument(m))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/quizzes/{id}", h.GetQuiz).Methods(http.MethodGet)
	api.HandleFunc("/lessons/{id}", h.GetLesson).Methods(http.MethodGet)
	api.HandleFunc("/blogs/{blogId}/comments", h.ListComments).Methods(http.MethodGet)
	api.HandleFunc("/achievements/{id}", h.GetAchievement).Methods(http.MethodGet)

	authed := r.PathPrefix("/api").Subrouter()
	authed.Use(AuthMiddleware(jwtSecret))
	authed.HandleFunc("/quizzes/{id}/submit", h.SubmitQuiz).Methods(http.MethodPost)
	authed.HandleFunc("/lessons/{id}/complete", h.CompleteLesson).Methods(http.MethodPost)
	authed.HandleFunc("/progress", h.GetProgress).Methods(http.MethodGet)
	authed.HandleFunc("/blogs/{blogId}/comments", h.AddComment).Methods(http.MethodPost)
	authed.HandleFunc("/comments/{id}", h.EditComment).Methods(http.MethodPatch)
	authed.HandleFunc("/comments/{id}", h.DeleteComment).Methods(http.MethodDelete)

	return r
}
