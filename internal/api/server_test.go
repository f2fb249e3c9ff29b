package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gayu2216/krishna-knowledge/internal/log"
	"github.com/gayu2216/krishna-knowledge/internal/quiz"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	registry, err := quiz.NewRegistry(quiz.Config{Generator: &scriptedGenerator{correct: quiz.ChoiceA}})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	srv, err := NewServer(ServerConfig{
		Logger:       log.NewNop(),
		Composer:     &fakeComposer{reply: "Hare Krishna! An answer."},
		QuizSessions: registry,
		CountChoices: []int{3, 5},
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return srv
}

func TestNewServerValidation(t *testing.T) {
	t.Parallel()

	registry, err := quiz.NewRegistry(quiz.Config{Generator: &scriptedGenerator{correct: quiz.ChoiceA}})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	if _, err := NewServer(ServerConfig{QuizSessions: registry}); err == nil {
		t.Error("NewServer() without composer should fail")
	}
	if _, err := NewServer(ServerConfig{Composer: &fakeComposer{}}); err == nil {
		t.Error("NewServer() without quiz registry should fail")
	}
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	handler := newTestServer(t).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/health status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/ready status = %d (no pool configured)", rec.Code)
	}
}

func TestServerRoutesWired(t *testing.T) {
	t.Parallel()

	handler := newTestServer(t).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/quiz/catalog", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("catalog status = %d", rec.Code)
	}

	rec = postJSON(t, handler, "/api/v1/chat", `{"message": "Who is Krishna?"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("chat status = %d: %s", rec.Code, rec.Body)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	t.Parallel()

	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	handler := recoveryMiddleware(log.NewNop())(panicking)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 after panic", rec.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	t.Parallel()

	rl := newRateLimiter(1.0, 1)

	if !rl.allow("10.0.0.1") {
		t.Fatal("first request should be allowed")
	}
	if rl.allow("10.0.0.1") {
		t.Error("second immediate request should be limited")
	}
	// A different IP has its own bucket.
	if !rl.allow("10.0.0.2") {
		t.Error("other IP should be allowed")
	}
}
