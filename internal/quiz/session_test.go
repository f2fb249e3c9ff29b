package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"golang.org/x/time/rate"
)

// fakeGenerator replays canned responses in order. Once the list is
// exhausted it keeps returning the last entry.
type fakeGenerator struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     int
}

func (f *fakeGenerator) Generate(_ context.Context, _ Segment, _ string, _ Difficulty) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", errors.New("no canned responses")
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// validText builds a well-formed response whose correct answer is the
// given letter.
func validText(correct Choice) string {
	return fmt.Sprintf(`QUESTION: A test scenario about duty. What would the Gita advise?
A) First approach
B) Second approach
C) Third approach
D) Fourth approach
CORRECT: %s
EXPLANATION: Because the Gita says so.`, correct)
}

const garbageText = "Sorry, I cannot produce a question right now."

func newTestSession(t *testing.T, gen Generator) *Session {
	t.Helper()
	s, err := NewSession(Config{Generator: gen})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	return s
}

func TestSessionStart(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{responses: []string{validText(ChoiceA)}}
	s := newTestSession(t, gen)

	err := s.Start(context.Background(), SegmentAdults, "Karma yoga", 3, DifficultyMedium)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if got := s.Phase(); got != PhaseInProgress {
		t.Errorf("phase = %s, want in_progress", got)
	}
	current, total := s.Progress()
	if current != 1 || total != 3 {
		t.Errorf("Progress() = %d/%d, want 1/3", current, total)
	}
	if _, idx, err := s.Current(); err != nil || idx != 0 {
		t.Errorf("Current() idx = %d, err = %v, want 0, nil", idx, err)
	}
}

func TestSessionStartValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		segment    Segment
		count      int
		difficulty Difficulty
		wantErr    error
	}{
		{"zero count", SegmentAdults, 0, DifficultyEasy, ErrInvalidCount},
		{"negative count", SegmentAdults, -2, DifficultyEasy, ErrInvalidCount},
		{"hard for children", SegmentChildren, 3, DifficultyHard, ErrInvalidDifficulty},
		{"hard for teenagers", SegmentTeenagers, 3, DifficultyHard, ErrInvalidDifficulty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, &fakeGenerator{responses: []string{validText(ChoiceA)}})
			err := s.Start(context.Background(), tt.segment, "any", tt.count, tt.difficulty)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Start() error = %v, want %v", err, tt.wantErr)
			}
			if s.Phase() != PhaseSetup {
				t.Errorf("failed start must leave the session in setup, got %s", s.Phase())
			}
		})
	}
}

func TestSessionStartRetriesSlotOnce(t *testing.T) {
	t.Parallel()

	// Slot 1 fails its first attempt and succeeds on retry; the
	// remaining slots succeed directly.
	gen := &fakeGenerator{responses: []string{
		garbageText,
		validText(ChoiceA),
	}}
	s := newTestSession(t, gen)

	if err := s.Start(context.Background(), SegmentAdults, "Karma yoga", 3, DifficultyMedium); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if _, total := s.Progress(); total != 3 {
		t.Errorf("generated %d questions, want 3", total)
	}
	if got := gen.callCount(); got != 4 {
		t.Errorf("generator called %d times, want 4 (one retry)", got)
	}
}

func TestSessionStartDropsTwiceFailedSlot(t *testing.T) {
	t.Parallel()

	// Slot 1 fails both attempts and is dropped; slot 2 succeeds.
	gen := &fakeGenerator{responses: []string{
		garbageText,
		garbageText,
		validText(ChoiceB),
	}}
	s := newTestSession(t, gen)

	if err := s.Start(context.Background(), SegmentAdults, "Life challenges", 2, DifficultyEasy); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if _, total := s.Progress(); total != 1 {
		t.Errorf("generated %d questions, want 1 after dropping a slot", total)
	}
	if got := gen.callCount(); got != 3 {
		t.Errorf("generator called %d times, want 3", got)
	}
}

func TestSessionStartAllSlotsFail(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, &fakeGenerator{responses: []string{garbageText}})

	err := s.Start(context.Background(), SegmentAdults, "Karma yoga", 3, DifficultyMedium)
	if !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("Start() error = %v, want ErrNoQuestions", err)
	}
	if s.Phase() != PhaseSetup {
		t.Errorf("phase = %s, want setup after aborted start", s.Phase())
	}
}

func TestSessionStartTwice(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, &fakeGenerator{responses: []string{validText(ChoiceA)}})
	if err := s.Start(context.Background(), SegmentAdults, "Karma yoga", 1, DifficultyEasy); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	err := s.Start(context.Background(), SegmentAdults, "Karma yoga", 1, DifficultyEasy)
	if !errors.Is(err, ErrWrongPhase) {
		t.Errorf("second Start() error = %v, want ErrWrongPhase", err)
	}
}

func TestSessionSubmit(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, &fakeGenerator{responses: []string{validText(ChoiceA)}})
	if err := s.Start(context.Background(), SegmentAdults, "Karma yoga", 1, DifficultyMedium); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Wrong answer: score stays, selection is recorded.
	correct, err := s.Submit(ChoiceB)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if correct {
		t.Error("Submit(B) reported correct, want incorrect")
	}
	if s.Score() != 0 {
		t.Errorf("score = %d, want 0", s.Score())
	}
	answered, selected := s.Answered()
	if !answered || selected != ChoiceB {
		t.Errorf("Answered() = %v, %q, want true, B", answered, selected)
	}

	// A second submission before advancing is rejected.
	if _, err := s.Submit(ChoiceA); !errors.Is(err, ErrAlreadyAnswered) {
		t.Errorf("double Submit() error = %v, want ErrAlreadyAnswered", err)
	}
	if s.Score() != 0 {
		t.Errorf("rejected submit changed score to %d", s.Score())
	}
}

func TestSessionSubmitInvalidChoice(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, &fakeGenerator{responses: []string{validText(ChoiceA)}})
	if err := s.Start(context.Background(), SegmentAdults, "Karma yoga", 1, DifficultyMedium); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if _, err := s.Submit(Choice("E")); !errors.Is(err, ErrInvalidChoice) {
		t.Errorf("Submit(E) error = %v, want ErrInvalidChoice", err)
	}
	answered, _ := s.Answered()
	if answered {
		t.Error("invalid submit must not mark the question answered")
	}
}

func TestSessionFullFlow(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, &fakeGenerator{responses: []string{validText(ChoiceA)}})
	if err := s.Start(context.Background(), SegmentSeniors, "Spiritual wisdom", 2, DifficultyHard); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Question 1: answer correctly, then next.
	if err := s.Advance(); !errors.Is(err, ErrNotAnswered) {
		t.Errorf("Advance() before answering error = %v, want ErrNotAnswered", err)
	}
	if correct, err := s.Submit(ChoiceA); err != nil || !correct {
		t.Fatalf("Submit(A) = %v, %v, want correct", correct, err)
	}
	if err := s.Finish(); !errors.Is(err, ErrQuestionsRemain) {
		t.Errorf("Finish() mid-quiz error = %v, want ErrQuestionsRemain", err)
	}
	if err := s.Advance(); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}

	// Advancing clears the answer state.
	if answered, selected := s.Answered(); answered || selected != "" {
		t.Errorf("Answered() after advance = %v, %q, want false, empty", answered, selected)
	}

	// Question 2: answer, then finish.
	if _, err := s.Submit(ChoiceA); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := s.Advance(); !errors.Is(err, ErrLastQuestion) {
		t.Errorf("Advance() on last question error = %v, want ErrLastQuestion", err)
	}
	if err := s.Finish(); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	if s.Phase() != PhaseCompleted {
		t.Errorf("phase = %s, want completed", s.Phase())
	}

	result, err := s.Result()
	if err != nil {
		t.Fatalf("Result() error = %v", err)
	}
	if result.Score != 2 || result.Requested != 2 || result.Percentage != 100 {
		t.Errorf("Result() = %+v, want score 2/2 at 100%%", result)
	}
	if result.Grade != "Excellent!" {
		t.Errorf("grade = %q, want Excellent!", result.Grade)
	}

	// Restart returns to setup and allows a fresh quiz.
	if err := s.Restart(); err != nil {
		t.Fatalf("Restart() error = %v", err)
	}
	if s.Phase() != PhaseSetup {
		t.Errorf("phase after restart = %s, want setup", s.Phase())
	}
	if err := s.Start(context.Background(), SegmentChildren, "Basic stories", 1, DifficultyEasy); err != nil {
		t.Fatalf("Start() after restart error = %v", err)
	}
}

func TestSessionRestartMidQuiz(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, &fakeGenerator{responses: []string{validText(ChoiceA)}})
	if err := s.Start(context.Background(), SegmentAdults, "Karma yoga", 1, DifficultyMedium); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := s.Restart(); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("Restart() mid-quiz error = %v, want ErrWrongPhase", err)
	}
}

// Dropped slots keep counting against the player: the percentage
// denominator is the requested count, not the generated count.
func TestSessionPercentageUsesRequestedCount(t *testing.T) {
	t.Parallel()

	// 5 requested: slots 1-3 succeed, slots 4 and 5 fail twice each.
	gen := &fakeGenerator{responses: []string{
		validText(ChoiceA),
		validText(ChoiceA),
		validText(ChoiceA),
		garbageText,
	}}
	s := newTestSession(t, gen)

	if err := s.Start(context.Background(), SegmentAdults, "Karma yoga", 5, DifficultyMedium); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, total := s.Progress(); total != 3 {
		t.Fatalf("generated %d questions, want 3", total)
	}

	for i := 0; i < 3; i++ {
		if _, err := s.Submit(ChoiceA); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if i < 2 {
			if err := s.Advance(); err != nil {
				t.Fatalf("Advance() error = %v", err)
			}
		}
	}
	if err := s.Finish(); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}

	result, err := s.Result()
	if err != nil {
		t.Fatalf("Result() error = %v", err)
	}
	if result.Percentage != 60.0 {
		t.Errorf("percentage = %v, want 60.0 (3 of 5 requested)", result.Percentage)
	}
	if result.Generated != 3 || result.Requested != 5 {
		t.Errorf("Result() = %+v, want generated 3 of requested 5", result)
	}
	if result.Grade != "Good!" {
		t.Errorf("grade = %q, want Good!", result.Grade)
	}
}

func TestSessionScoreInvariant(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, &fakeGenerator{responses: []string{validText(ChoiceC)}})
	if err := s.Start(context.Background(), SegmentAdults, "Karma yoga", 3, DifficultyMedium); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	submits := 0
	for _, choice := range []Choice{ChoiceC, ChoiceA, ChoiceC} {
		if _, err := s.Submit(choice); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		submits++
		if score := s.Score(); score < 0 || score > submits {
			t.Fatalf("score %d out of range after %d submits", score, submits)
		}
		if submits < 3 {
			if err := s.Advance(); err != nil {
				t.Fatalf("Advance() error = %v", err)
			}
		}
	}
	if s.Score() != 2 {
		t.Errorf("score = %d, want 2", s.Score())
	}
}

func TestSessionWithLimiter(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{responses: []string{validText(ChoiceA)}}
	s, err := NewSession(Config{
		Generator: gen,
		Limiter:   rate.NewLimiter(rate.Inf, 1),
	})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	if err := s.Start(context.Background(), SegmentAdults, "Karma yoga", 2, DifficultyMedium); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
}

func TestSessionStartCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newTestSession(t, &fakeGenerator{err: context.Canceled})
	err := s.Start(ctx, SegmentAdults, "Karma yoga", 3, DifficultyMedium)
	if err == nil {
		t.Fatal("Start() with cancelled context should fail")
	}
	if !strings.Contains(err.Error(), "interrupted") && !errors.Is(err, context.Canceled) {
		t.Errorf("Start() error = %v, want cancellation", err)
	}
}

func TestGradeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pct  float64
		want string
	}{
		{100, "Excellent!"},
		{80, "Excellent!"},
		{79.9, "Good!"},
		{60, "Good!"},
		{59.9, "Fair"},
		{40, "Fair"},
		{39.9, "Keep Learning!"},
		{0, "Keep Learning!"},
	}
	for _, tt := range tests {
		if got := gradeFor(tt.pct); got != tt.want {
			t.Errorf("gradeFor(%v) = %q, want %q", tt.pct, got, tt.want)
		}
	}
}

func TestNewSessionRequiresGenerator(t *testing.T) {
	t.Parallel()

	if _, err := NewSession(Config{}); err == nil {
		t.Fatal("NewSession() without generator should fail")
	}
}
