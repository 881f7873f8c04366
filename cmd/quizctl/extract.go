package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/p-n-ai/pai-quiz/internal/quiz"
)

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the questions extracted from a document",
		Args:  cobra.ExactArgs(1),
		RunE:  runExtract,
	}
	cmd.Flags().String("format", "json", "Output format: json or yaml")
	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "json" && format != "yaml" {
		return fmt.Errorf("invalid format %q: must be json or yaml", format)
	}

	qs, err := loadQuestions(cmd.Context(), cmd, args[0])
	if err != nil {
		return err
	}
	return writeQuestions(cmd.OutOrStdout(), qs, format)
}

func writeQuestions(w io.Writer, qs []quiz.Question, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(qs); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(qs); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}
