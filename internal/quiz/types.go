// Package quiz generates, parses, and scores multiple-choice quizzes
// about Krishna and Hindu philosophy, tailored to an audience segment.
package quiz

import "fmt"

// Choice identifies one of the four answer options.
type Choice string

const (
	ChoiceA Choice = "A"
	ChoiceB Choice = "B"
	ChoiceC Choice = "C"
	ChoiceD Choice = "D"
)

// Choices lists the four valid answer letters in display order.
func Choices() []Choice {
	return []Choice{ChoiceA, ChoiceB, ChoiceC, ChoiceD}
}

// Valid reports whether c is one of the four answer letters.
func (c Choice) Valid() bool {
	switch c {
	case ChoiceA, ChoiceB, ChoiceC, ChoiceD:
		return true
	}
	return false
}

// Question is a fully parsed multiple-choice question. A Question is
// only constructed by Parse after validation, so holders may assume
// all four options are present and Correct is one of them.
type Question struct {
	Question    string            `json:"question"`
	Options     map[Choice]string `json:"options"`
	Correct     Choice            `json:"correct"`
	Explanation string            `json:"explanation"`
}

// Difficulty selects how demanding the generated question should be.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Segment is an audience age bracket. The bracket drives the scenario
// framing of generated questions, the topics offered, and which
// difficulties are available.
type Segment string

const (
	SegmentChildren  Segment = "Children (5-12)"
	SegmentTeenagers Segment = "Teenagers (13-18)"
	SegmentAdults    Segment = "Adults (19-60)"
	SegmentSeniors   Segment = "Seniors (60+)"
)

// Segments lists all audience brackets in ascending age order.
func Segments() []Segment {
	return []Segment{SegmentChildren, SegmentTeenagers, SegmentAdults, SegmentSeniors}
}

// Valid reports whether s is a known audience bracket.
func (s Segment) Valid() bool {
	switch s {
	case SegmentChildren, SegmentTeenagers, SegmentAdults, SegmentSeniors:
		return true
	}
	return false
}

// Description returns a short blurb for the bracket's question style.
func (s Segment) Description() string {
	switch s {
	case SegmentChildren:
		return "Simple stories and basic concepts about Krishna"
	case SegmentTeenagers:
		return "More detailed stories with moral lessons"
	case SegmentAdults:
		return "Deep philosophical concepts and practical application"
	case SegmentSeniors:
		return "Wisdom-focused content with spiritual depth"
	}
	return ""
}

// Topics returns the topics offered for the bracket.
func (s Segment) Topics() []string {
	switch s {
	case SegmentChildren:
		return []string{"Krishna's childhood", "Simple life lessons", "Basic stories", "Colors and festivals"}
	case SegmentTeenagers:
		return []string{"Krishna's adventures", "Bhagavad Gita basics", "Friendship and values", "Life guidance"}
	case SegmentAdults:
		return []string{"Bhagavad Gita philosophy", "Karma yoga", "Life challenges", "Spiritual practices"}
	case SegmentSeniors:
		return []string{"Spiritual wisdom", "Life reflection", "Advanced philosophy", "Peace and devotion"}
	}
	return nil
}

// Difficulties returns the difficulty levels available for the
// bracket. Younger brackets get a reduced set.
func (s Segment) Difficulties() []Difficulty {
	switch s {
	case SegmentChildren:
		return []Difficulty{DifficultyEasy}
	case SegmentTeenagers:
		return []Difficulty{DifficultyEasy, DifficultyMedium}
	case SegmentAdults, SegmentSeniors:
		return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
	}
	return nil
}

// AllowsDifficulty reports whether d is offered for the bracket.
func (s Segment) AllowsDifficulty(d Difficulty) bool {
	for _, allowed := range s.Difficulties() {
		if allowed == d {
			return true
		}
	}
	return false
}

// ParseSegment resolves a bracket from its display name.
func ParseSegment(name string) (Segment, error) {
	s := Segment(name)
	if !s.Valid() {
		return "", fmt.Errorf("unknown age group %q", name)
	}
	return s, nil
}
