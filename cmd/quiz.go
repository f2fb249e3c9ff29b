package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gayu2216/krishna-knowledge/internal/quiz"
)

var (
	flagQuizAgeGroup   string
	flagQuizTopic      string
	flagQuizCount      int
	flagQuizDifficulty string
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Take a quiz about Krishna and Hindu philosophy",
	Long: `Generates a multiple-choice quiz tailored to an age group, topic, and
difficulty, then walks through it question by question.

Run "krishna quiz --list" to see the available age groups and topics.`,
	RunE: runQuiz,
}

var flagQuizList bool

func init() {
	quizCmd.Flags().StringVar(&flagQuizAgeGroup, "age-group", string(quiz.SegmentAdults), "audience age group")
	quizCmd.Flags().StringVar(&flagQuizTopic, "topic", "", "quiz topic (default: first topic of the age group)")
	quizCmd.Flags().IntVar(&flagQuizCount, "count", 0, "number of questions (default from config)")
	quizCmd.Flags().StringVar(&flagQuizDifficulty, "difficulty", string(quiz.DifficultyMedium), "easy, medium, or hard")
	quizCmd.Flags().BoolVar(&flagQuizList, "list", false, "list age groups, topics, and difficulties")
	rootCmd.AddCommand(quizCmd)
}

func runQuiz(cmd *cobra.Command, _ []string) error {
	if flagQuizList {
		printQuizCatalog()
		return nil
	}

	ctx := cmd.Context()

	segment, err := quiz.ParseSegment(flagQuizAgeGroup)
	if err != nil {
		return err
	}

	topic := flagQuizTopic
	if topic == "" {
		topic = segment.Topics()[0]
	}

	difficulty := quiz.Difficulty(flagQuizDifficulty)
	if !segment.AllowsDifficulty(difficulty) {
		difficulty = segment.Difficulties()[0]
		fmt.Printf("Difficulty %q not offered for %s, using %s.\n", flagQuizDifficulty, segment, difficulty)
	}

	a, logger, err := setupApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	count := flagQuizCount
	if count <= 0 {
		count = a.Config.QuizDefaultCount
	}

	session, err := quiz.NewSession(quiz.Config{Generator: a.QuizGenerator, Logger: logger})
	if err != nil {
		return err
	}

	fmt.Printf("Generating %d questions on %q for %s (%s)...\n\n", count, topic, segment, difficulty)
	if err := session.Start(ctx, segment, topic, count, difficulty); err != nil {
		if errors.Is(err, quiz.ErrNoQuestions) {
			return errors.New("could not generate any questions, please try again")
		}
		return err
	}

	if _, total := session.Progress(); total < count {
		fmt.Printf("Generated %d of %d questions.\n\n", total, count)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		question, _, err := session.Current()
		if err != nil {
			return err
		}
		number, total := session.Progress()

		fmt.Printf("Question %d of %d\n\n%s\n\n", number, total, question.Question)
		for _, letter := range quiz.Choices() {
			fmt.Printf("  %s) %s\n", letter, question.Options[letter])
		}
		fmt.Println()

		choice, ok := readChoice(scanner)
		if !ok {
			fmt.Println("\nQuiz abandoned.")
			return nil
		}

		correct, err := session.Submit(choice)
		if err != nil {
			return err
		}

		if correct {
			fmt.Println("Correct! Well done!")
		} else {
			fmt.Printf("Incorrect. The correct answer was %s.\n", question.Correct)
		}
		if question.Explanation != "" {
			fmt.Printf("Explanation: %s\n", question.Explanation)
		}
		fmt.Printf("Score: %d/%d\n\n", session.Score(), number)

		if number == total {
			if err := session.Finish(); err != nil {
				return err
			}
			break
		}
		if err := session.Advance(); err != nil {
			return err
		}
	}

	result, err := session.Result()
	if err != nil {
		return err
	}
	printQuizResult(result)
	return nil
}

// readChoice reads answer letters until a valid one arrives. Returns
// false on EOF.
func readChoice(scanner *bufio.Scanner) (quiz.Choice, bool) {
	for {
		fmt.Print("Your answer (A-D): ")
		if !scanner.Scan() {
			return "", false
		}
		choice := quiz.Choice(strings.ToUpper(strings.TrimSpace(scanner.Text())))
		if choice.Valid() {
			return choice, true
		}
		fmt.Println("Please answer with A, B, C, or D.")
	}
}

func printQuizCatalog() {
	for _, s := range quiz.Segments() {
		fmt.Printf("%s - %s\n", s, s.Description())
		fmt.Printf("  Topics: %s\n", strings.Join(s.Topics(), ", "))
		levels := make([]string, 0, len(s.Difficulties()))
		for _, d := range s.Difficulties() {
			levels = append(levels, string(d))
		}
		fmt.Printf("  Difficulties: %s\n\n", strings.Join(levels, ", "))
	}
}

func printQuizResult(result quiz.Result) {
	fmt.Println("Quiz completed!")
	fmt.Printf("Final score: %d/%d (%.1f%%)\n", result.Score, result.Requested, result.Percentage)
	fmt.Printf("Grade: %s\n", result.Grade)

	switch {
	case result.Percentage >= 80:
		fmt.Println("Outstanding performance! You have excellent knowledge of Krishna's teachings!")
	case result.Percentage >= 60:
		fmt.Println("Well done! You have good understanding of Krishna's philosophy.")
	case result.Percentage >= 40:
		fmt.Println("Good effort! Consider reviewing more about Krishna's teachings.")
	default:
		fmt.Println("Keep studying! There's so much wonderful wisdom to discover about Krishna.")
	}
}
