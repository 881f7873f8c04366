package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-quiz/internal/quiz"
)

var errUnscoreable = errors.New("document has unscoreable questions")

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Show the resolved correct answer of every question",
		Long: `check lists each extracted question with the option its answer line
resolves to. Questions without options, without an answer line, or whose
answer matches no option are flagged; they can never be scored correct.`,
		Args: cobra.ExactArgs(1),
		RunE: runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	qs, err := loadQuestions(cmd.Context(), cmd, args[0])
	if err != nil {
		return err
	}
	if len(qs) == 0 {
		return quiz.ErrNoQuestions
	}
	return reportCheck(cmd.OutOrStdout(), qs)
}

func reportCheck(w io.Writer, qs []quiz.Question) error {
	unscoreable := 0
	for i, q := range qs {
		fmt.Fprintf(w, "%d. %s\n", i+1, q.Prompt)
		correct, ok := q.CorrectOption()
		switch {
		case len(q.Options) == 0:
			unscoreable++
			fmt.Fprintln(w, "   ! no options")
		case q.AnswerMarker == "":
			unscoreable++
			fmt.Fprintln(w, "   ! no answer line")
		case !ok:
			unscoreable++
			fmt.Fprintf(w, "   ! answer %q matches no option\n", q.AnswerMarker)
		default:
			fmt.Fprintf(w, "   answer %q -> %s\n", q.AnswerMarker, correct)
		}
	}
	fmt.Fprintf(w, "\n%d questions, %d unscoreable\n", len(qs), unscoreable)

	if unscoreable > 0 {
		return fmt.Errorf("%w: %d of %d", errUnscoreable, unscoreable, len(qs))
	}
	return nil
}
