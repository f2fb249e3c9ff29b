// Package api provides the JSON HTTP surface over the chat composer
// and the quiz engine.
package api

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gayu2216/krishna-knowledge/internal/log"
	"github.com/gayu2216/krishna-knowledge/internal/quiz"
)

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger       log.Logger
	Composer     answerer       // Required
	QuizSessions *quiz.Registry // Required
	CountChoices []int          // Quiz count choices offered in the catalog
	Pool         *pgxpool.Pool  // Optional: nil disables the database readiness check
	RateBurst    int            // Rate limiter burst size per IP (0 = default 30)
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates a server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Composer == nil {
		return nil, errors.New("answer composer is required")
	}
	if cfg.QuizSessions == nil {
		return nil, errors.New("quiz session registry is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	mux := http.NewServeMux()
	newChatHandler(cfg.Composer, logger).registerRoutes(mux)
	newQuizHandler(cfg.QuizSessions, cfg.CountChoices, logger).registerRoutes(mux)

	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 30
	}
	rl := newRateLimiter(1.0, burst)

	// Middleware stack, outermost first:
	//   Recovery → Logging → RateLimit → Routes
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, logger)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Health probes bypass the middleware stack.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", healthHandler(logger))
	topMux.Handle("GET /ready", readinessHandler(cfg.Pool, logger))
	topMux.Handle("/", handler)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
