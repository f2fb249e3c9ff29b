package quiz

import (
	"strings"
	"testing"
)

func TestSegmentCatalog(t *testing.T) {
	t.Parallel()

	for _, s := range Segments() {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
		if s.Description() == "" {
			t.Errorf("%q has no description", s)
		}
		if len(s.Topics()) != 4 {
			t.Errorf("%q has %d topics, want 4", s, len(s.Topics()))
		}
		if len(s.Difficulties()) == 0 {
			t.Errorf("%q offers no difficulties", s)
		}
	}
}

func TestSegmentDifficulties(t *testing.T) {
	t.Parallel()

	tests := []struct {
		segment Segment
		allowed []Difficulty
		denied  []Difficulty
	}{
		{SegmentChildren, []Difficulty{DifficultyEasy}, []Difficulty{DifficultyMedium, DifficultyHard}},
		{SegmentTeenagers, []Difficulty{DifficultyEasy, DifficultyMedium}, []Difficulty{DifficultyHard}},
		{SegmentAdults, []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}, nil},
		{SegmentSeniors, []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}, nil},
	}

	for _, tt := range tests {
		for _, d := range tt.allowed {
			if !tt.segment.AllowsDifficulty(d) {
				t.Errorf("%s should allow %s", tt.segment, d)
			}
		}
		for _, d := range tt.denied {
			if tt.segment.AllowsDifficulty(d) {
				t.Errorf("%s should not allow %s", tt.segment, d)
			}
		}
	}
}

func TestParseSegment(t *testing.T) {
	t.Parallel()

	s, err := ParseSegment("Adults (19-60)")
	if err != nil || s != SegmentAdults {
		t.Errorf("ParseSegment() = %q, %v", s, err)
	}
	if _, err := ParseSegment("Toddlers"); err == nil {
		t.Error("ParseSegment(unknown) should fail")
	}
}

func TestChoiceValid(t *testing.T) {
	t.Parallel()

	for _, c := range Choices() {
		if !c.Valid() {
			t.Errorf("%q should be valid", c)
		}
	}
	for _, c := range []Choice{"E", "a", "", "AB"} {
		if c.Valid() {
			t.Errorf("%q should be invalid", c)
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	prompt := BuildPrompt(SegmentAdults, "Karma yoga", DifficultyMedium)

	for _, want := range []string{
		"Adults (19-60)",
		"Topic: Karma yoga",
		"Difficulty: medium",
		"QUESTION:",
		"CORRECT:",
		"EXPLANATION:",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestNewModelGeneratorValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewModelGenerator(ModelConfig{}); err == nil {
		t.Fatal("NewModelGenerator() without genkit should fail")
	}
	if _, err := NewModelGenerator(ModelConfig{ModelName: "llama3"}); err == nil {
		t.Fatal("NewModelGenerator() without genkit instance should fail")
	}
}
