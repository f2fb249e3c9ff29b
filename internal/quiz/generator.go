package quiz

import (
	"context"
	"errors"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/gayu2216/krishna-knowledge/internal/log"
)

// DefaultTemperature keeps question generation varied without
// drifting off the requested template.
const DefaultTemperature = 0.7

// Generator produces raw question text for one quiz slot. The output
// is expected to follow the five-field template and is handed to
// Parse; implementations do not retry.
type Generator interface {
	Generate(ctx context.Context, segment Segment, topic string, difficulty Difficulty) (string, error)
}

const promptTemplate = `You are creating a quiz question about Krishna and Hindu philosophy for %[1]s.

Topic: %[2]s
Difficulty: %[3]s

Create ONE multiple choice question with 4 options (A, B, C, D) and indicate the correct answer.

IMPORTANT: Instead of asking direct theoretical questions, create REAL-LIFE SCENARIOS that people in the %[1]s category commonly face, and connect these situations to Krishna's teachings from the Bhagavad Gita.

Guidelines for creating scenarios:
- For Children (5-12): Use school situations, family conflicts, sharing toys, dealing with bullies, homework challenges
- For Teenagers (13-18): Use peer pressure, exam stress, friendship issues, career confusion, social media problems
- For Adults (19-60): Use workplace conflicts, family responsibilities, financial stress, relationship issues, career decisions
- For Seniors (60+): Use health concerns, family wisdom sharing, retirement decisions, legacy thoughts, spiritual growth

The question should present a realistic situation and ask what Krishna's teachings would guide them to do, or how Gita principles apply to that situation.

Make the language and scenario complexity appropriate for %[1]s.

Format your response exactly as:
QUESTION: [Present a real-life scenario that the age group faces, then ask how Krishna's teachings from the Gita would guide their response]
A) [Option A - should reflect different approaches/mindsets]
B) [Option B - should reflect different approaches/mindsets]
C) [Option C - should reflect different approaches/mindsets]
D) [Option D - should reflect different approaches/mindsets]
CORRECT: [A/B/C/D]
EXPLANATION: [Brief explanation connecting the correct choice to specific Krishna's teachings or Gita verses/principles, and why this approach aligns with dharmic living]`

// BuildPrompt renders the generation prompt for one question.
func BuildPrompt(segment Segment, topic string, difficulty Difficulty) string {
	return fmt.Sprintf(promptTemplate, segment, topic, difficulty)
}

// ModelConfig configures a model-backed Generator.
type ModelConfig struct {
	Genkit      *genkit.Genkit
	ModelName   string
	Temperature float64
	Logger      log.Logger
}

func (c *ModelConfig) validate() error {
	if c.Genkit == nil {
		return errors.New("genkit instance is required")
	}
	if c.ModelName == "" {
		return errors.New("model name is required")
	}
	return nil
}

// ModelGenerator asks the configured model for one templated
// question per call. It is safe for concurrent use.
type ModelGenerator struct {
	g           *genkit.Genkit
	modelName   string
	temperature float64
	logger      log.Logger
}

// NewModelGenerator builds a Generator from cfg, applying the default
// temperature when none is set.
func NewModelGenerator(cfg ModelConfig) (*ModelGenerator, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("quiz generator config: %w", err)
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}
	return &ModelGenerator{
		g:           cfg.Genkit,
		modelName:   cfg.ModelName,
		temperature: cfg.Temperature,
		logger:      cfg.Logger,
	}, nil
}

// Generate requests one question for the given audience, topic, and
// difficulty and returns the model's raw text.
func (m *ModelGenerator) Generate(ctx context.Context, segment Segment, topic string, difficulty Difficulty) (string, error) {
	prompt := BuildPrompt(segment, topic, difficulty)

	resp, err := genkit.Generate(ctx, m.g,
		ai.WithModelName(m.modelName),
		ai.WithPrompt(prompt),
		ai.WithConfig(&ai.GenerationCommonConfig{Temperature: m.temperature}),
	)
	if err != nil {
		m.logger.Warn("quiz question generation failed",
			"segment", string(segment),
			"topic", topic,
			"error", err)
		return "", fmt.Errorf("generate quiz question: %w", err)
	}

	return resp.Text(), nil
}
