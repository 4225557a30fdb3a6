package http

import (
	"encoding/json"
	"log"
	"net/http"

	"introxpection-quiz/internal/app"
	"introxpection-quiz/internal/domain"
	"github.com/go-chi/chi/v5"
)

// QuizHandler serves the read-only quiz endpoints.
type QuizHandler struct {
	service *app.PlayService
}

func NewQuizHandler(service *app.PlayService) *QuizHandler {
	return &QuizHandler{service: service}
}

type statsResponse struct {
	domain.QuizStats
	Active int `json:"active"`
}

// List returns the quiz catalog.
func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.service.Quizzes(r.Context())
	if err != nil {
		log.Printf("list quizzes: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorPayload{Message: "could not list quizzes"})
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

// Stats returns completion statistics and the number of live attempts.
func (h *QuizHandler) Stats(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizID")
	stats, err := h.service.Stats(r.Context(), quizID)
	if err != nil {
		log.Printf("stats %s: %v", quizID, err)
		writeJSON(w, http.StatusInternalServerError, errorPayload{Message: "could not load stats"})
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{QuizStats: stats, Active: h.service.Active(quizID)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
