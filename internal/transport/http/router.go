package http

import (
	"net/http"

	"introxpection-quiz/internal/app"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter mounts the health, catalog, stats and websocket routes.
// CORS is only enabled when origins are configured.
func NewRouter(service *app.PlayService, ws *WSHandler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)

	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			ExposedHeaders: []string{"Content-Length"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws", ws.ServeWS)

	quizzes := NewQuizHandler(service)
	r.Route("/quizzes", func(r chi.Router) {
		r.Get("/", quizzes.List)
		r.Get("/{quizID}/stats", quizzes.Stats)
	})
	return r
}
