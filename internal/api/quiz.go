package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/gayu2216/krishna-knowledge/internal/log"
	"github.com/gayu2216/krishna-knowledge/internal/quiz"
)

// quizHandler serves the quiz endpoints over a session registry.
type quizHandler struct {
	sessions     *quiz.Registry
	countChoices []int
	logger       log.Logger
}

func newQuizHandler(sessions *quiz.Registry, countChoices []int, logger log.Logger) *quizHandler {
	return &quizHandler{sessions: sessions, countChoices: countChoices, logger: logger}
}

func (h *quizHandler) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/quiz/catalog", h.catalog)
	mux.HandleFunc("POST /api/v1/quiz/sessions", h.create)
	mux.HandleFunc("GET /api/v1/quiz/sessions/{id}", h.state)
	mux.HandleFunc("POST /api/v1/quiz/sessions/{id}/start", h.start)
	mux.HandleFunc("POST /api/v1/quiz/sessions/{id}/answer", h.answer)
	mux.HandleFunc("POST /api/v1/quiz/sessions/{id}/next", h.next)
	mux.HandleFunc("POST /api/v1/quiz/sessions/{id}/finish", h.finish)
	mux.HandleFunc("POST /api/v1/quiz/sessions/{id}/restart", h.restart)
	mux.HandleFunc("DELETE /api/v1/quiz/sessions/{id}", h.remove)
}

// catalog lists the age groups, their topics and difficulties, and the
// question counts a quiz can be started with.
func (h *quizHandler) catalog(w http.ResponseWriter, _ *http.Request) {
	type segmentInfo struct {
		Name         string            `json:"name"`
		Description  string            `json:"description"`
		Topics       []string          `json:"topics"`
		Difficulties []quiz.Difficulty `json:"difficulties"`
	}

	segments := make([]segmentInfo, 0, len(quiz.Segments()))
	for _, s := range quiz.Segments() {
		segments = append(segments, segmentInfo{
			Name:         string(s),
			Description:  s.Description(),
			Topics:       s.Topics(),
			Difficulties: s.Difficulties(),
		})
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"age_groups":    segments,
		"count_choices": h.countChoices,
	}, h.logger)
}

func (h *quizHandler) create(w http.ResponseWriter, _ *http.Request) {
	id, session, err := h.sessions.Create()
	if err != nil {
		h.logger.Error("creating quiz session", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "could not create session", h.logger)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]string{
		"session_id": id.String(),
		"phase":      session.Phase().String(),
	}, h.logger)
}

type startRequest struct {
	AgeGroup   string `json:"age_group"`
	Topic      string `json:"topic"`
	Count      int    `json:"count"`
	Difficulty string `json:"difficulty"`
}

// start generates the quiz questions and moves the session in
// progress. Generation is synchronous: the response arrives once all
// slots have resolved or been dropped.
func (h *quizHandler) start(w http.ResponseWriter, r *http.Request) {
	session, ok := h.resolve(w, r)
	if !ok {
		return
	}

	var req startRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body", h.logger)
		return
	}

	segment, err := quiz.ParseSegment(req.AgeGroup)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_age_group", err.Error(), h.logger)
		return
	}
	if !h.countAllowed(req.Count) {
		WriteError(w, http.StatusBadRequest, "invalid_count", "count not in offered choices", h.logger)
		return
	}

	if err := session.Start(r.Context(), segment, req.Topic, req.Count, quiz.Difficulty(req.Difficulty)); err != nil {
		h.writeQuizError(w, err)
		return
	}

	_, total := session.Progress()
	WriteJSON(w, http.StatusOK, map[string]any{
		"phase":     session.Phase().String(),
		"requested": req.Count,
		"generated": total,
	}, h.logger)
}

// questionView is a question as shown to the player: the correct
// letter and explanation stay hidden until the question is answered.
type questionView struct {
	Number   int               `json:"number"`
	Total    int               `json:"total"`
	Question string            `json:"question"`
	Options  map[string]string `json:"options"`
}

func (h *quizHandler) state(w http.ResponseWriter, r *http.Request) {
	session, ok := h.resolve(w, r)
	if !ok {
		return
	}

	body := map[string]any{
		"phase": session.Phase().String(),
		"score": session.Score(),
	}

	if question, _, err := session.Current(); err == nil {
		current, total := session.Progress()
		view := questionView{
			Number:   current,
			Total:    total,
			Question: question.Question,
			Options:  optionStrings(question.Options),
		}
		body["question"] = view

		if answered, selected := session.Answered(); answered {
			body["answered"] = true
			body["selected"] = string(selected)
			body["correct"] = string(question.Correct)
			body["explanation"] = question.Explanation
		}
	}

	if result, err := session.Result(); err == nil {
		body["result"] = result
	}

	WriteJSON(w, http.StatusOK, body, h.logger)
}

type answerRequest struct {
	Choice string `json:"choice"`
}

// answer submits the player's letter for the current question and
// reveals the correct answer and explanation.
func (h *quizHandler) answer(w http.ResponseWriter, r *http.Request) {
	session, ok := h.resolve(w, r)
	if !ok {
		return
	}

	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body", h.logger)
		return
	}

	correct, err := session.Submit(quiz.Choice(req.Choice))
	if err != nil {
		h.writeQuizError(w, err)
		return
	}

	question, _, err := session.Current()
	if err != nil {
		h.writeQuizError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"correct":        correct,
		"correct_answer": string(question.Correct),
		"explanation":    question.Explanation,
		"score":          session.Score(),
	}, h.logger)
}

func (h *quizHandler) next(w http.ResponseWriter, r *http.Request) {
	session, ok := h.resolve(w, r)
	if !ok {
		return
	}

	if err := session.Advance(); err != nil {
		h.writeQuizError(w, err)
		return
	}

	current, total := session.Progress()
	WriteJSON(w, http.StatusOK, map[string]any{
		"number": current,
		"total":  total,
	}, h.logger)
}

func (h *quizHandler) finish(w http.ResponseWriter, r *http.Request) {
	session, ok := h.resolve(w, r)
	if !ok {
		return
	}

	if err := session.Finish(); err != nil {
		h.writeQuizError(w, err)
		return
	}

	result, err := session.Result()
	if err != nil {
		h.writeQuizError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result, h.logger)
}

func (h *quizHandler) restart(w http.ResponseWriter, r *http.Request) {
	session, ok := h.resolve(w, r)
	if !ok {
		return
	}

	if err := session.Restart(); err != nil {
		h.writeQuizError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"phase": session.Phase().String()}, h.logger)
}

func (h *quizHandler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_session_id", "session id must be a UUID", h.logger)
		return
	}

	h.sessions.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

// resolve parses the path session ID and looks it up, writing the
// error response itself on failure.
func (h *quizHandler) resolve(w http.ResponseWriter, r *http.Request) (*quiz.Session, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_session_id", "session id must be a UUID", h.logger)
		return nil, false
	}

	session, err := h.sessions.Get(id)
	if err != nil {
		WriteError(w, http.StatusNotFound, "session_not_found", "unknown quiz session", h.logger)
		return nil, false
	}
	return session, true
}

func (h *quizHandler) countAllowed(count int) bool {
	for _, c := range h.countChoices {
		if c == count {
			return true
		}
	}
	return false
}

// writeQuizError maps quiz package errors to HTTP responses.
func (h *quizHandler) writeQuizError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrInvalidChoice),
		errors.Is(err, quiz.ErrInvalidCount),
		errors.Is(err, quiz.ErrInvalidDifficulty):
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), h.logger)
	case errors.Is(err, quiz.ErrAlreadyAnswered),
		errors.Is(err, quiz.ErrNotAnswered),
		errors.Is(err, quiz.ErrLastQuestion),
		errors.Is(err, quiz.ErrQuestionsRemain),
		errors.Is(err, quiz.ErrWrongPhase):
		WriteError(w, http.StatusConflict, "invalid_state", err.Error(), h.logger)
	case errors.Is(err, quiz.ErrNoQuestions):
		WriteError(w, http.StatusBadGateway, "generation_failed", "no questions could be generated, please try again", h.logger)
	default:
		h.logger.Error("quiz operation failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "quiz operation failed", h.logger)
	}
}

func optionStrings(options map[quiz.Choice]string) map[string]string {
	out := make(map[string]string, len(options))
	for letter, text := range options {
		out[string(letter)] = text
	}
	return out
}
