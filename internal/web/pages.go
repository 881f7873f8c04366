package web

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/p-n-ai/pai-quiz/internal/quiz"
)

const (
	msgDocumentError = "The quiz document could not be read."
	msgNoQuestions   = "No questions could be extracted from the PDF."
	msgInternal      = "Something went wrong. Please try again."
)

type pageData struct {
	Title     string
	Message   string
	Warning   bool
	Questions []quiz.Question
	Attempt   *quiz.Attempt
}

func (s *Server) handleQuizPage(w http.ResponseWriter, r *http.Request) {
	qs, err := s.quiz.Questions(r.Context())
	if err != nil {
		s.renderLoadError(w, err)
		return
	}

	s.render(w, http.StatusOK, "quiz", pageData{
		Title:     s.title,
		Questions: qs,
	})
}

func (s *Server) handleSubmitForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	qs, err := s.quiz.Questions(r.Context())
	if err != nil {
		s.renderLoadError(w, err)
		return
	}

	selections := make([]string, len(qs))
	for i := range qs {
		selections[i] = r.PostFormValue(fmt.Sprintf("q%d", i))
	}

	attempt, err := s.quiz.Submit(r.Context(), quiz.Submission{
		Participant: r.PostFormValue("participant"),
		Selections:  selections,
		Questions:   qs,
	})
	if err != nil {
		s.renderLoadError(w, err)
		return
	}

	s.render(w, http.StatusOK, "results", pageData{
		Title:   s.title,
		Attempt: attempt,
	})
}

// renderLoadError renders the page for a failed load or submission. A
// document that cannot be read and a document without questions get
// different messages.
func (s *Server) renderLoadError(w http.ResponseWriter, err error) {
	switch {
	case quiz.IsDocumentError(err):
		slog.Warn("quiz document unavailable", "error", err)
		s.render(w, http.StatusServiceUnavailable, "message", pageData{
			Title:   s.title,
			Message: msgDocumentError,
			Warning: true,
		})
	case errors.Is(err, quiz.ErrNoQuestions):
		s.render(w, http.StatusOK, "message", pageData{
			Title:   s.title,
			Message: msgNoQuestions,
			Warning: true,
		})
	default:
		slog.Error("quiz request failed", "error", err)
		s.render(w, http.StatusInternalServerError, "message", pageData{
			Title:   s.title,
			Message: msgInternal,
			Warning: true,
		})
	}
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("template render failed", "template", name, "error", err)
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
