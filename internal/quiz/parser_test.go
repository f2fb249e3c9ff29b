package quiz

import (
	"errors"
	"testing"
)

const wellFormed = `Hare Krishna! Here it comes.

QUESTION: Your colleague takes credit for your work in a team meeting. How would Krishna's teachings guide your response?
A) Confront them angrily in front of everyone
B) Do your duty without attachment to recognition
C) Quit the job immediately
D) Take credit for their work in return
CORRECT: B
EXPLANATION: The Gita teaches nishkama karma, acting without attachment to results.
Krishna tells Arjuna to focus on duty rather than reward.`

func TestParseWellFormed(t *testing.T) {
	t.Parallel()

	q, err := Parse(wellFormed)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if q.Question != "Your colleague takes credit for your work in a team meeting. How would Krishna's teachings guide your response?" {
		t.Errorf("question = %q", q.Question)
	}
	if len(q.Options) != 4 {
		t.Fatalf("got %d options, want 4", len(q.Options))
	}
	if q.Options[ChoiceB] != "Do your duty without attachment to recognition" {
		t.Errorf("option B = %q", q.Options[ChoiceB])
	}
	if q.Correct != ChoiceB {
		t.Errorf("correct = %q, want B", q.Correct)
	}
	want := "The Gita teaches nishkama karma, acting without attachment to results. Krishna tells Arjuna to focus on duty rather than reward."
	if q.Explanation != want {
		t.Errorf("explanation = %q, want %q", q.Explanation, want)
	}
}

func TestParseVariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		raw   string
		check func(t *testing.T, q *Question)
	}{
		{
			name: "question on next line",
			raw: `QUESTION:
What did Krishna lift to shelter the villagers?
A) A mountain
B) A chariot
C) A palace
D) A river
CORRECT: A
EXPLANATION: Govardhana hill.`,
			check: func(t *testing.T, q *Question) {
				if q.Question != "What did Krishna lift to shelter the villagers?" {
					t.Errorf("question = %q", q.Question)
				}
			},
		},
		{
			name: "options in any order",
			raw: `QUESTION: Which path centers on selfless action?
D) Raja yoga
B) Karma yoga
A) Jnana yoga
C) Bhakti yoga
CORRECT: B
EXPLANATION: done`,
			check: func(t *testing.T, q *Question) {
				if q.Options[ChoiceA] != "Jnana yoga" || q.Options[ChoiceD] != "Raja yoga" {
					t.Errorf("options = %v", q.Options)
				}
			},
		},
		{
			name: "stray parenthesis stripped",
			raw: `QUESTION: Pick one.
A)) first
B) second
C) third
D) fourth
CORRECT: A
EXPLANATION: x`,
			check: func(t *testing.T, q *Question) {
				if q.Options[ChoiceA] != "first" {
					t.Errorf("option A = %q, want stray paren removed", q.Options[ChoiceA])
				}
			},
		},
		{
			name: "lowercase markers accepted",
			raw: `question: Which river did Krishna play by?
A) Yamuna
B) Ganga
C) Saraswati
D) Kaveri
correct: a
explanation: Vrindavan sits on the Yamuna.`,
			check: func(t *testing.T, q *Question) {
				if q.Correct != ChoiceA {
					t.Errorf("correct = %q, want A from lowercase letter", q.Correct)
				}
				if q.Question == "" {
					t.Error("question missing from lowercase marker")
				}
			},
		},
		{
			name: "correct letter wrapped in noise",
			raw: `QUESTION: Pick one.
A) one
B) two
C) three
D) four
CORRECT: (C)
EXPLANATION:`,
			check: func(t *testing.T, q *Question) {
				if q.Correct != ChoiceC {
					t.Errorf("correct = %q, want C", q.Correct)
				}
			},
		},
		{
			name: "explanation stops at marker line",
			raw: `QUESTION: Pick one.
A) one
B) two
C) three
D) four
EXPLANATION: first part
second part
CORRECT: C
this trailing line matches no marker`,
			check: func(t *testing.T, q *Question) {
				if q.Explanation != "first part second part" {
					t.Errorf("explanation = %q", q.Explanation)
				}
				if q.Correct != ChoiceC {
					t.Errorf("correct = %q, marker after explanation must still be processed", q.Correct)
				}
			},
		},
		{
			name: "empty explanation allowed",
			raw: `QUESTION: Pick one.
A) one
B) two
C) three
D) four
CORRECT: D`,
			check: func(t *testing.T, q *Question) {
				if q.Explanation != "" {
					t.Errorf("explanation = %q, want empty", q.Explanation)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.raw)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			tt.check(t, q)
		})
	}
}

func TestParseRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{
			name: "missing question",
			raw: `A) one
B) two
C) three
D) four
CORRECT: A`,
			wantErr: ErrMissingQuestion,
		},
		{
			name: "only three options",
			raw: `QUESTION: Pick one.
A) one
B) two
C) three
CORRECT: A`,
			wantErr: ErrIncompleteOptions,
		},
		{
			name: "lowercase option prefixes not recognized",
			raw: `QUESTION: Pick one.
a) one
b) two
c) three
d) four
CORRECT: A`,
			wantErr: ErrIncompleteOptions,
		},
		{
			name: "correct letter out of range",
			raw: `QUESTION: Pick one.
A) one
B) two
C) three
D) four
CORRECT: E`,
			wantErr: ErrInvalidCorrect,
		},
		{
			name: "missing correct marker",
			raw: `QUESTION: Pick one.
A) one
B) two
C) three
D) four`,
			wantErr: ErrInvalidCorrect,
		},
		{
			name:    "empty input",
			raw:     "",
			wantErr: ErrMissingQuestion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.raw)
			if err == nil {
				t.Fatalf("Parse() = %+v, want error", q)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("Parse() error = %T, want *ParseError", err)
			}
			if q != nil {
				t.Errorf("rejected parse must not return a partial question: %+v", q)
			}
		})
	}
}
