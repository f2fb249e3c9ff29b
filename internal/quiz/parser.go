package quiz

import (
	"errors"
	"fmt"
	"strings"
)

// Parse validation failures. Any of these means the model output did
// not follow the requested template; callers should retry generation
// rather than surface a partial question.
var (
	ErrMissingQuestion   = errors.New("question text missing")
	ErrIncompleteOptions = errors.New("fewer than four answer options")
	ErrInvalidCorrect    = errors.New("correct answer missing or not A-D")
)

// ParseError reports that model output could not be turned into a
// valid Question. It wraps the specific validation failure.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse quiz response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// scanState tracks the parser's position in the template. The scanner
// normally seeks field markers line by line; after an EXPLANATION
// marker it switches to absorbing continuation lines until the next
// marker appears.
type scanState int

const (
	seekMarker scanState = iota
	accumulateExplanation
)

const (
	markerQuestion    = "QUESTION:"
	markerCorrect     = "CORRECT:"
	markerExplanation = "EXPLANATION:"
)

// Parse turns raw model output into a Question. The input is expected
// to follow the five-field template the generator requests:
//
//	QUESTION: <text>
//	A) <option>
//	B) <option>
//	C) <option>
//	D) <option>
//	CORRECT: <letter>
//	EXPLANATION: <text, possibly over several lines>
//
// Lines that match no marker are ignored, so chatty preambles around
// the template do not break parsing. The scan is a single forward
// pass over non-blank trimmed lines. A *ParseError is returned when
// the question text, any of the four options, or a valid correct
// letter is missing.
func Parse(raw string) (*Question, error) {
	lines := nonBlankLines(raw)

	var (
		question    string
		options     = make(map[Choice]string, 4)
		correct     Choice
		explanation string
		state       = seekMarker
	)

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if state == accumulateExplanation {
			if !isMarkerLine(line) {
				explanation += " " + line
				continue
			}
			state = seekMarker
		}

		upper := strings.ToUpper(line)
		switch {
		case strings.Contains(upper, markerQuestion):
			// The text may sit after the colon or on the next line.
			rest := afterFirstColon(line)
			if rest != "" {
				question = rest
			} else if i+1 < len(lines) {
				i++
				question = lines[i]
			}

		case isOptionLine(line):
			letter := Choice(strings.ToUpper(line[:1]))
			value := strings.TrimSpace(line[2:])
			// Models sometimes echo the template's bracketed form as
			// "A)) text"; drop the stray parenthesis.
			value = strings.TrimSpace(strings.TrimPrefix(value, ")"))
			options[letter] = value

		case strings.Contains(upper, markerCorrect):
			rest := strings.ToUpper(afterFirstColon(line))
			for _, r := range rest {
				if c := Choice(r); c.Valid() {
					correct = c
					break
				}
			}

		case strings.Contains(upper, markerExplanation):
			explanation = afterFirstColon(line)
			state = accumulateExplanation
		}
	}

	if question == "" {
		return nil, &ParseError{Err: ErrMissingQuestion}
	}
	if len(options) < 4 {
		return nil, &ParseError{Err: fmt.Errorf("%w: found %d", ErrIncompleteOptions, len(options))}
	}
	if !correct.Valid() {
		return nil, &ParseError{Err: ErrInvalidCorrect}
	}

	return &Question{
		Question:    question,
		Options:     options,
		Correct:     correct,
		Explanation: strings.TrimSpace(explanation),
	}, nil
}

// nonBlankLines splits raw into trimmed lines, dropping empty ones.
func nonBlankLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// afterFirstColon returns the trimmed remainder after the first colon,
// or "" when the line holds no colon.
func afterFirstColon(line string) string {
	_, rest, ok := strings.Cut(line, ":")
	if !ok {
		return ""
	}
	return strings.TrimSpace(rest)
}

// isOptionLine reports whether the line opens with an option prefix
// such as "A)". The letter must be uppercase, matching the template.
func isOptionLine(line string) bool {
	if len(line) < 2 || line[1] != ')' {
		return false
	}
	return line[0] >= 'A' && line[0] <= 'D'
}

// isMarkerLine reports whether the line contains any field marker.
// Explanation accumulation stops at the first such line.
func isMarkerLine(line string) bool {
	upper := strings.ToUpper(line)
	for _, marker := range []string{markerQuestion, markerCorrect, "A)", "B)", "C)", "D)"} {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}
