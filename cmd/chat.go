package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gayu2216/krishna-knowledge/internal/chat"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation about Krishna and the Gita",
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, _, err := setupApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	history := chat.NewHistory()

	fmt.Println(chat.WelcomeMessage)
	fmt.Println()
	fmt.Println("Type your question, /clear to reset the conversation, /exit to quit.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			fmt.Println("\nHare Krishna! Goodbye.")
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch input {
		case "/exit", "/quit":
			fmt.Println("Hare Krishna! Goodbye.")
			return nil
		case "/clear", "/reset":
			history.Reset()
			fmt.Println("Conversation cleared.")
			fmt.Println()
			continue
		}

		answer, err := a.Composer.Answer(ctx, input, history.Turns())
		if err != nil {
			answer = chat.ApologeticError(err)
		}

		history.Add(chat.RoleHuman, input)
		history.Add(chat.RoleAssistant, answer)

		fmt.Println()
		fmt.Println(answer)
		fmt.Println()
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}
