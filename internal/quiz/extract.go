package quiz

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const answerPrefix = "answer:"

// Extract splits page texts into questions.
//
// Lines are read in order across all pages. A line starting with a digit and
// containing ". " opens a new question; "a)".."d)" lines add options and an
// "Answer:" line sets the answer marker of the open question. Everything
// else is ignored. A question left open at the end of a page continues on
// the next one. Extract never fails: malformed input yields fewer questions
// or questions with no options or an empty marker.
func Extract(pages []string) []Question {
	var (
		out     []Question
		current *Question
	)

	finalize := func() {
		if current == nil {
			return
		}
		if !containsQuestion(out, *current) {
			out = append(out, *current)
		}
		current = nil
	}

	for _, page := range pages {
		for _, raw := range strings.Split(page, "\n") {
			line := strings.TrimSpace(raw)
			if line == "" {
				continue
			}

			switch {
			case isPromptLine(line):
				finalize()
				q := newQuestion(line)
				current = &q
			case current == nil:
				// Options and answers before the first prompt are dropped.
			case isOptionLine(line):
				current.Options = append(current.Options, line)
			case isAnswerLine(line):
				_, marker, _ := strings.Cut(line, ":")
				current.AnswerMarker = strings.TrimSpace(marker)
			}
		}
	}
	finalize()

	if out == nil {
		return []Question{}
	}
	return out
}

func isPromptLine(line string) bool {
	first, _ := utf8.DecodeRuneInString(line)
	return unicode.IsDigit(first) && strings.Contains(line, ". ")
}

func isOptionLine(line string) bool {
	first, size := utf8.DecodeRuneInString(line)
	if size >= len(line) {
		return false
	}
	switch unicode.ToLower(first) {
	case 'a', 'b', 'c', 'd':
	default:
		return false
	}
	second, _ := utf8.DecodeRuneInString(line[size:])
	return second == ')'
}

func isAnswerLine(line string) bool {
	return strings.HasPrefix(strings.ToLower(line), answerPrefix)
}

func containsQuestion(qs []Question, q Question) bool {
	for _, existing := range qs {
		if existing.Equal(q) {
			return true
		}
	}
	return false
}
