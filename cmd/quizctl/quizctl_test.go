package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/p-n-ai/pai-quiz/internal/document"
	"github.com/p-n-ai/pai-quiz/internal/quiz"
)

const sampleText = `BEFA Quiz
1. What is demand?
a) Desire
b) Desire with ability to pay
Answer: b
` + "\f" + `2. What does the current ratio measure?
a) Liquidity
b) Profitability
Answer: a) Liquidity
`

func writeSample(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quiz.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestExtract_JSON(t *testing.T) {
	path := writeSample(t, sampleText)

	out, err := runCLI(t, "extract", "--text", "--format", "json", path)
	if err != nil {
		t.Fatalf("extract error = %v", err)
	}

	var qs []quiz.Question
	if err := json.Unmarshal([]byte(out), &qs); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(qs) != 2 {
		t.Fatalf("got %d questions, want 2", len(qs))
	}
	if qs[1].AnswerMarker != "a) Liquidity" {
		t.Errorf("AnswerMarker = %q, want %q", qs[1].AnswerMarker, "a) Liquidity")
	}
}

func TestExtract_YAML(t *testing.T) {
	path := writeSample(t, sampleText)

	out, err := runCLI(t, "extract", "--text", "--format", "yaml", path)
	if err != nil {
		t.Fatalf("extract error = %v", err)
	}

	var qs []quiz.Question
	if err := yaml.Unmarshal([]byte(out), &qs); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, out)
	}
	if len(qs) != 2 || qs[0].Prompt != "1. What is demand?" {
		t.Errorf("questions = %+v, want two questions starting with demand", qs)
	}
}

func TestExtract_InvalidFormat(t *testing.T) {
	path := writeSample(t, sampleText)

	if _, err := runCLI(t, "extract", "--text", "--format", "xml", path); err == nil {
		t.Fatal("extract should reject unknown format")
	}
}

func TestCheck_AllScoreable(t *testing.T) {
	path := writeSample(t, sampleText)

	out, err := runCLI(t, "check", "--text", path)
	if err != nil {
		t.Fatalf("check error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "2 questions, 0 unscoreable") {
		t.Errorf("output = %q, want summary line", out)
	}
}

func TestCheck_FlagsUnscoreable(t *testing.T) {
	path := writeSample(t, "1. First?\na) One\n2. Second?\na) Two\nAnswer: z\n")

	out, err := runCLI(t, "check", "--text", path)
	if !errors.Is(err, errUnscoreable) {
		t.Fatalf("check error = %v, want errUnscoreable", err)
	}
	if !strings.Contains(out, "! no answer line") || !strings.Contains(out, `! answer "z" matches no option`) {
		t.Errorf("output = %q, want both questions flagged", out)
	}
}

func TestCheck_NoQuestions(t *testing.T) {
	path := writeSample(t, "nothing to see here\n")

	if _, err := runCLI(t, "check", "--text", path); !errors.Is(err, quiz.ErrNoQuestions) {
		t.Fatalf("check error = %v, want ErrNoQuestions", err)
	}
}

func TestExtract_MissingFile(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"text", []string{"extract", "--text"}},
		{"pdf", []string{"extract"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, filepath.Join(t.TempDir(), "missing"))
			if _, err := runCLI(t, args...); !errors.Is(err, document.ErrAccess) {
				t.Fatalf("extract error = %v, want ErrAccess", err)
			}
		})
	}
}

func TestExtract_FlagsDoNotLeakBetweenRuns(t *testing.T) {
	path := writeSample(t, sampleText)

	if _, err := runCLI(t, "extract", "--text", "--format", "xml", path); err == nil {
		t.Fatal("extract should reject unknown format")
	}

	out, err := runCLI(t, "extract", "--text", path)
	if err != nil {
		t.Fatalf("extract with default format error = %v", err)
	}
	var qs []quiz.Question
	if err := json.Unmarshal([]byte(out), &qs); err != nil || len(qs) != 2 {
		t.Errorf("default format output = %q (%v), want JSON with 2 questions", out, err)
	}

	if _, err := runCLI(t, "extract", path); !errors.Is(err, document.ErrAccess) {
		t.Errorf("extract without --text error = %v, want ErrAccess reading a text file as PDF", err)
	}
}
