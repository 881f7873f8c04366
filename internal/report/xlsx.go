// Package report exports recorded quiz attempts as spreadsheets.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-quiz/internal/quiz"
)

const (
	AttemptsSheet = "Attempts"
	AnswersSheet  = "Answers"
)

var (
	attemptsHeader = []any{"Attempt ID", "Participant", "Submitted At", "Correct", "Total", "Percentage"}
	answersHeader  = []any{"Attempt ID", "Question", "Prompt", "Your Answer", "Correct Answer", "Correct"}
)

// WriteAttemptsXLSX writes a workbook with one summary row per attempt on the
// Attempts sheet and one row per answered question on the Answers sheet.
func WriteAttemptsXLSX(w io.Writer, attempts []quiz.Attempt) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", AttemptsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(AnswersSheet); err != nil {
		return fmt.Errorf("create answers sheet: %w", err)
	}

	if err := setRow(f, AttemptsSheet, 1, attemptsHeader); err != nil {
		return err
	}
	if err := setRow(f, AnswersSheet, 1, answersHeader); err != nil {
		return err
	}

	answerRow := 2
	for i, a := range attempts {
		summary := []any{
			a.ID,
			a.Participant,
			a.SubmittedAt.UTC().Format(time.RFC3339),
			a.Result.CorrectCount,
			a.Result.Total,
			a.Result.Percentage,
		}
		if err := setRow(f, AttemptsSheet, i+2, summary); err != nil {
			return err
		}

		for _, q := range a.Result.Questions {
			row := []any{
				a.ID,
				q.Number,
				q.Prompt,
				q.Selected,
				q.CorrectOption,
				q.IsCorrect,
			}
			if err := setRow(f, AnswersSheet, answerRow, row); err != nil {
				return err
			}
			answerRow++
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name for row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
