package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-quiz/internal/document"
	"github.com/p-n-ai/pai-quiz/internal/platform/config"
	"github.com/p-n-ai/pai-quiz/internal/platform/logging"
	"github.com/p-n-ai/pai-quiz/internal/quiz"
)

// newRootCmd builds the command tree. Each call returns commands with fresh
// flag state.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "quizctl",
		Short: "Inspect quiz PDFs",
		Long: `quizctl reads a quiz document the same way the quiz server does and
reports what it finds. Use it to check a PDF before deploying it.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level, _ := cmd.Flags().GetString("log-level")
			slog.SetDefault(logging.New(os.Stderr, config.LogConfig{Level: level, Format: "text"}))
		},
	}

	root.PersistentFlags().Bool("text", false, "Treat the input as plain text with form feeds between pages")
	root.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error")

	root.AddCommand(newExtractCmd())
	root.AddCommand(newCheckCmd())
	return root
}

// loadQuestions extracts questions from path. An empty extraction is not an
// error here; callers decide how to report it.
func loadQuestions(ctx context.Context, cmd *cobra.Command, path string) ([]quiz.Question, error) {
	textMode, _ := cmd.Flags().GetBool("text")

	var src document.Source
	if textMode {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", document.ErrAccess, err)
		}
		src = document.NewTextSource(document.SplitPages(string(data))...)
	} else {
		src = document.NewPDFSource(path)
	}

	pages, err := src.PageTexts(ctx)
	if err != nil {
		return nil, err
	}
	return quiz.Extract(pages), nil
}
