// Package quiz extracts multiple-choice questions from document text,
// scores submitted selections, and records attempts.
package quiz

import "slices"

// Question is a single multiple-choice question read from the document.
type Question struct {
	Prompt       string   `json:"prompt" yaml:"prompt"`
	Options      []string `json:"options" yaml:"options"`
	AnswerMarker string   `json:"answer_marker" yaml:"answer_marker"`
}

func newQuestion(prompt string) Question {
	return Question{
		Prompt:  prompt,
		Options: []string{},
	}
}

// Equal reports whether q and other have identical prompt, options and answer marker.
func (q Question) Equal(other Question) bool {
	return q.Prompt == other.Prompt &&
		q.AnswerMarker == other.AnswerMarker &&
		slices.Equal(q.Options, other.Options)
}

// CorrectOption returns the option resolved from the answer marker.
// See ResolveCorrectOption.
func (q Question) CorrectOption() (string, bool) {
	return ResolveCorrectOption(q)
}

// Scoreable reports whether the question has a resolvable correct option.
func (q Question) Scoreable() bool {
	_, ok := ResolveCorrectOption(q)
	return ok
}
