package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gayu2216/krishna-knowledge/internal/chat"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, _, err := setupApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	question := strings.Join(args, " ")

	answer, err := a.Composer.Answer(ctx, question, chat.NewHistory().Turns())
	if err != nil {
		fmt.Println(chat.ApologeticError(err))
		return nil
	}

	fmt.Println(answer)
	return nil
}
