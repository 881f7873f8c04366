package quiz

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoQuestions is returned when a document yields no questions.
	ErrNoQuestions = errors.New("no questions found")
	// ErrSelectionCount is returned when the number of selections does not
	// match the number of questions.
	ErrSelectionCount = errors.New("selection count does not match question count")
)

// QuestionResult is the outcome for a single question.
type QuestionResult struct {
	Number        int    `json:"number"`
	Prompt        string `json:"prompt"`
	Selected      string `json:"selected"`
	IsCorrect     bool   `json:"is_correct"`
	CorrectOption string `json:"correct_option,omitempty"`
	Resolved      bool   `json:"resolved"`
}

// Result is the outcome of scoring a full set of selections.
type Result struct {
	Questions    []QuestionResult `json:"questions"`
	CorrectCount int              `json:"correct_count"`
	Total        int              `json:"total"`
	Percentage   float64          `json:"percentage"`
}

// ResolveCorrectOption returns the first option that contains the answer
// marker as a case-sensitive substring. An empty marker never resolves.
//
// This is a text heuristic, not a lookup by letter: a marker such as "b"
// matches any option containing a "b", including the wrong one.
func ResolveCorrectOption(q Question) (string, bool) {
	if q.AnswerMarker == "" {
		return "", false
	}
	for _, opt := range q.Options {
		if strings.Contains(opt, q.AnswerMarker) {
			return opt, true
		}
	}
	return "", false
}

// Score compares each selection with the resolved correct option of the
// question at the same index.
func Score(questions []Question, selections []string) (Result, error) {
	if len(questions) == 0 {
		return Result{}, ErrNoQuestions
	}
	if len(selections) != len(questions) {
		return Result{}, fmt.Errorf("%w: %d selections for %d questions",
			ErrSelectionCount, len(selections), len(questions))
	}

	res := Result{
		Questions: make([]QuestionResult, len(questions)),
		Total:     len(questions),
	}
	for i, q := range questions {
		correct, ok := ResolveCorrectOption(q)
		qr := QuestionResult{
			Number:        i + 1,
			Prompt:        q.Prompt,
			Selected:      selections[i],
			CorrectOption: correct,
			Resolved:      ok,
			IsCorrect:     ok && selections[i] == correct,
		}
		if qr.IsCorrect {
			res.CorrectCount++
		}
		res.Questions[i] = qr
	}
	res.Percentage = 100 * float64(res.CorrectCount) / float64(res.Total)
	return res, nil
}

// Summary returns the final score line, e.g. "Final Score: 3/5".
func (r Result) Summary() string {
	return fmt.Sprintf("Final Score: %d/%d", r.CorrectCount, r.Total)
}

// PercentageText returns the percentage line, e.g. "Percentage: 60.00%".
func (r Result) PercentageText() string {
	return fmt.Sprintf("Percentage: %.2f%%", r.Percentage)
}
