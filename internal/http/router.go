package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ollama-relay/internal/handlers"
	"ollama-relay/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	ChatService    service.ChatService
	AllowedOrigins []string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	// RealIP and the request id come first so every later log line carries them
	r.Use(middleware.RealIP)
	r.Use(RequestID)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	// CORS runs before routing so preflights for any path are answered here
	r.Use(CORS(normalizeOrigins(deps.AllowedOrigins)))

	r.Method(http.MethodGet, "/", handlers.NewHealthHandler())
	r.Method(http.MethodPost, "/chat", handlers.NewChatHandler(deps.ChatService))

	return r
}
