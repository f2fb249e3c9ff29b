package quiz

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/gayu2216/krishna-knowledge/internal/log"
)

// Phase is the lifecycle state of a quiz session.
type Phase int

const (
	PhaseSetup Phase = iota
	PhaseInProgress
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhaseInProgress:
		return "in_progress"
	case PhaseCompleted:
		return "completed"
	}
	return "unknown"
}

// Session state errors.
var (
	ErrWrongPhase        = errors.New("action not valid in current phase")
	ErrNoQuestions       = errors.New("no questions could be generated")
	ErrInvalidChoice     = errors.New("answer must be one of A, B, C, or D")
	ErrAlreadyAnswered   = errors.New("question already answered")
	ErrNotAnswered       = errors.New("current question not answered yet")
	ErrLastQuestion      = errors.New("already at the last question")
	ErrQuestionsRemain   = errors.New("questions remain, cannot finish yet")
	ErrInvalidCount      = errors.New("question count must be positive")
	ErrInvalidDifficulty = errors.New("difficulty not offered for this age group")
)

// slotAttempts bounds generate+parse cycles per question slot: one
// initial attempt plus one retry.
const slotAttempts = 2

// Config configures a quiz Session.
type Config struct {
	// Generator produces raw question text, one call per attempt.
	Generator Generator
	// Limiter paces generation calls during Start. Optional.
	Limiter *rate.Limiter
	// Logger records slot failures and lifecycle events. Optional.
	Logger log.Logger
}

func (c *Config) validate() error {
	if c.Generator == nil {
		return errors.New("generator is required")
	}
	return nil
}

// Session drives a quiz through Setup, InProgress, and Completed.
// All methods are safe for concurrent use, though a quiz is normally
// driven by a single caller.
type Session struct {
	mu sync.Mutex

	generator Generator
	limiter   *rate.Limiter
	retry     Retry
	logger    log.Logger

	phase          Phase
	segment        Segment
	topic          string
	difficulty     Difficulty
	questions      []Question
	current        int
	totalRequested int
	score          int
	answered       bool
	selected       Choice
	startedAt      time.Time
}

// NewSession returns a Session in the Setup phase.
func NewSession(cfg Config) (*Session, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("quiz session config: %w", err)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}
	return &Session{
		generator: cfg.Generator,
		limiter:   cfg.Limiter,
		retry:     Retry{MaxAttempts: slotAttempts},
		logger:    cfg.Logger,
		phase:     PhaseSetup,
	}, nil
}

// Start generates count questions for the given audience, topic, and
// difficulty, then moves the session to InProgress. Generation is a
// serial loop over slots; a slot whose generate+parse cycle fails
// twice is dropped, so the final quiz may hold fewer questions than
// requested. When every slot fails the session stays in Setup and
// ErrNoQuestions is returned.
func (s *Session) Start(ctx context.Context, segment Segment, topic string, count int, difficulty Difficulty) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseSetup {
		return fmt.Errorf("%w: start requires setup, session is %s", ErrWrongPhase, s.phase)
	}
	if !segment.Valid() {
		return fmt.Errorf("unknown age group %q", string(segment))
	}
	if count <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidCount, count)
	}
	if !segment.AllowsDifficulty(difficulty) {
		return fmt.Errorf("%w: %s for %s", ErrInvalidDifficulty, difficulty, segment)
	}

	questions := make([]Question, 0, count)
	for slot := 1; slot <= count; slot++ {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("rate limit wait: %w", err)
			}
		}

		question, err := s.generateOne(ctx, segment, topic, difficulty)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("quiz generation interrupted: %w", ctx.Err())
			}
			s.logger.Warn("dropping quiz slot after retry",
				"slot", slot,
				"requested", count,
				"error", err)
			continue
		}
		questions = append(questions, *question)
	}

	if len(questions) == 0 {
		return ErrNoQuestions
	}

	s.phase = PhaseInProgress
	s.segment = segment
	s.topic = topic
	s.difficulty = difficulty
	s.questions = questions
	s.totalRequested = count
	s.current = 0
	s.score = 0
	s.answered = false
	s.selected = ""
	s.startedAt = time.Now()

	s.logger.Info("quiz started",
		"segment", string(segment),
		"topic", topic,
		"difficulty", string(difficulty),
		"requested", count,
		"generated", len(questions))
	return nil
}

// generateOne runs one slot's generate+parse cycle under the retry
// policy.
func (s *Session) generateOne(ctx context.Context, segment Segment, topic string, difficulty Difficulty) (*Question, error) {
	var question *Question
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		raw, err := s.generator.Generate(ctx, segment, topic, difficulty)
		if err != nil {
			return err
		}
		parsed, err := Parse(raw)
		if err != nil {
			return err
		}
		question = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return question, nil
}

// Submit records the player's answer for the current question and
// reports whether it was correct. The score increments only on a
// correct answer. Submitting a second time before advancing is
// rejected with ErrAlreadyAnswered.
func (s *Session) Submit(choice Choice) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseInProgress {
		return false, fmt.Errorf("%w: submit requires an active quiz, session is %s", ErrWrongPhase, s.phase)
	}
	if s.answered {
		return false, ErrAlreadyAnswered
	}
	if !choice.Valid() {
		return false, fmt.Errorf("%w: got %q", ErrInvalidChoice, string(choice))
	}

	s.selected = choice
	s.answered = true

	correct := choice == s.questions[s.current].Correct
	if correct {
		s.score++
	}
	return correct, nil
}

// Advance moves to the next question after the current one has been
// answered. On the last question callers must use Finish instead.
func (s *Session) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseInProgress {
		return fmt.Errorf("%w: advance requires an active quiz, session is %s", ErrWrongPhase, s.phase)
	}
	if !s.answered {
		return ErrNotAnswered
	}
	if s.current+1 >= len(s.questions) {
		return ErrLastQuestion
	}

	s.current++
	s.answered = false
	s.selected = ""
	return nil
}

// Finish completes the quiz. Valid only after the last question has
// been answered; score and totals are frozen afterwards.
func (s *Session) Finish() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseInProgress {
		return fmt.Errorf("%w: finish requires an active quiz, session is %s", ErrWrongPhase, s.phase)
	}
	if !s.answered {
		return ErrNotAnswered
	}
	if s.current+1 != len(s.questions) {
		return ErrQuestionsRemain
	}

	s.phase = PhaseCompleted
	s.logger.Info("quiz completed",
		"score", s.score,
		"requested", s.totalRequested,
		"generated", len(s.questions),
		"duration", time.Since(s.startedAt).Round(time.Second).String())
	return nil
}

// Restart returns a completed session to Setup, discarding all
// questions and scores. Restarting mid-quiz is not supported.
func (s *Session) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseCompleted {
		return fmt.Errorf("%w: restart requires a completed quiz, session is %s", ErrWrongPhase, s.phase)
	}

	s.phase = PhaseSetup
	s.questions = nil
	s.current = 0
	s.totalRequested = 0
	s.score = 0
	s.answered = false
	s.selected = ""
	s.startedAt = time.Time{}
	return nil
}

// Phase returns the session's lifecycle state.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Current returns the question at the cursor along with its zero-based
// index.
func (s *Session) Current() (Question, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseInProgress {
		return Question{}, 0, fmt.Errorf("%w: no current question, session is %s", ErrWrongPhase, s.phase)
	}
	return s.questions[s.current], s.current, nil
}

// Answered reports whether the current question has been answered and
// which letter was chosen.
func (s *Session) Answered() (bool, Choice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answered, s.selected
}

// Score returns the number of correct answers so far.
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// Progress reports the one-based number of the current question and
// how many questions the quiz holds.
func (s *Session) Progress() (current, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.questions) == 0 {
		return 0, 0
	}
	return s.current + 1, len(s.questions)
}

// Result is the frozen outcome of a completed quiz. Percentage is
// computed over the originally requested count, so dropped slots
// count against the player.
type Result struct {
	Score      int     `json:"score"`
	Requested  int     `json:"requested"`
	Generated  int     `json:"generated"`
	Percentage float64 `json:"percentage"`
	Grade      string  `json:"grade"`
}

// Result summarizes a completed quiz.
func (s *Session) Result() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseCompleted {
		return Result{}, fmt.Errorf("%w: result requires a completed quiz, session is %s", ErrWrongPhase, s.phase)
	}

	pct := percentage(s.score, s.totalRequested)
	return Result{
		Score:      s.score,
		Requested:  s.totalRequested,
		Generated:  len(s.questions),
		Percentage: pct,
		Grade:      gradeFor(pct),
	}, nil
}

func percentage(score, requested int) float64 {
	if requested <= 0 {
		return 0
	}
	return 100 * float64(score) / float64(requested)
}

// gradeFor maps a percentage to a display grade.
func gradeFor(pct float64) string {
	switch {
	case pct >= 80:
		return "Excellent!"
	case pct >= 60:
		return "Good!"
	case pct >= 40:
		return "Fair"
	default:
		return "Keep Learning!"
	}
}
