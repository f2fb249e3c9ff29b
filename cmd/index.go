package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index [file...]",
	Short: "Add documents to the knowledge base",
	Long: `Chunks the given text files and indexes them into the knowledge base
so the chatbot can cite them. Each chunk keeps its source file name
for attribution in answers.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, _, err := setupApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	total := 0
	for _, path := range args {
		chunks, err := a.Ingestor.IngestFile(ctx, path)
		if err != nil {
			return fmt.Errorf("indexing %s: %w", path, err)
		}
		fmt.Printf("Indexed %s (%d chunks)\n", path, chunks)
		total += chunks
	}

	count, err := a.Knowledge.Count(ctx, map[string]string{"collection": a.Config.Collection})
	if err != nil {
		return fmt.Errorf("counting documents: %w", err)
	}

	fmt.Printf("\nAdded %d chunks. Collection %q now holds %d documents.\n",
		total, a.Config.Collection, count)
	return nil
}
