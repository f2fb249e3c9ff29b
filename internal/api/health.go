package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gayu2216/krishna-knowledge/internal/log"
)

// healthHandler answers liveness probes with 200 OK.
func healthHandler(logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	}
}

// readinessHandler answers readiness probes. With a pool configured it
// pings the database; a failed ping reports 503.
func readinessHandler(pool *pgxpool.Pool, logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pool == nil {
			WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"}, logger)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := pool.Ping(ctx); err != nil {
			logger.Warn("readiness ping failed", "error", err)
			WriteError(w, http.StatusServiceUnavailable, "database_unavailable", "database not reachable", logger)
			return
		}

		stats := pool.Stat()
		WriteJSON(w, http.StatusOK, map[string]any{
			"status":      "ready",
			"total_conns": stats.TotalConns(),
			"idle_conns":  stats.IdleConns(),
		}, logger)
	}
}
