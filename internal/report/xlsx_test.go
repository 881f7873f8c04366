package report_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-quiz/internal/quiz"
	"github.com/p-n-ai/pai-quiz/internal/report"
)

func TestWriteAttemptsXLSX(t *testing.T) {
	questions := []quiz.Question{
		{
			Prompt:       "1. What is demand?",
			Options:      []string{"a) Desire", "b) Desire with ability to pay"},
			AnswerMarker: "b",
		},
		{
			Prompt:  "2. What is supply?",
			Options: []string{"a) Goods offered", "b) Goods bought"},
		},
	}
	result, err := quiz.Score(questions, []string{"b) Desire with ability to pay", "a) Goods offered"})
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	attempts := []quiz.Attempt{{
		ID:          "attempt-1",
		Participant: "Aina",
		Result:      result,
		SubmittedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}}

	var buf bytes.Buffer
	if err := report.WriteAttemptsXLSX(&buf, attempts); err != nil {
		t.Fatalf("WriteAttemptsXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	summary, err := f.GetRows(report.AttemptsSheet)
	if err != nil {
		t.Fatalf("GetRows(Attempts) error = %v", err)
	}
	if len(summary) != 2 {
		t.Fatalf("Attempts rows = %d, want 2 (header + 1)", len(summary))
	}
	want := []string{"attempt-1", "Aina", "2025-03-01T10:00:00Z", "1", "2", "50"}
	for i, w := range want {
		if summary[1][i] != w {
			t.Errorf("Attempts[1][%d] = %q, want %q", i, summary[1][i], w)
		}
	}

	answers, err := f.GetRows(report.AnswersSheet)
	if err != nil {
		t.Fatalf("GetRows(Answers) error = %v", err)
	}
	if len(answers) != 3 {
		t.Fatalf("Answers rows = %d, want 3 (header + 2)", len(answers))
	}
	if answers[1][4] != "b) Desire with ability to pay" || answers[1][5] != "TRUE" {
		t.Errorf("Answers[1] = %v, want resolved correct answer", answers[1])
	}
	if len(answers[2]) < 6 || answers[2][4] != "" || answers[2][5] != "FALSE" {
		t.Errorf("Answers[2] = %v, want unresolved and incorrect", answers[2])
	}
}

func TestWriteAttemptsXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := report.WriteAttemptsXLSX(&buf, nil); err != nil {
		t.Fatalf("WriteAttemptsXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(report.AttemptsSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("rows = %d, want header only", len(rows))
	}
}
