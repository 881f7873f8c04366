package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xeipuuv/gojsonschema"

	"github.com/p-n-ai/pai-quiz/internal/quiz"
)

const maxSubmitBody = 1 << 20

const submissionSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "participant": {"type": "string", "maxLength": 200},
    "selections": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["selections"],
  "additionalProperties": false
}`

var submissionSchema = mustSchema(submissionSchemaJSON)

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("invalid JSON schema: %v", err))
	}
	return schema
}

type submitRequest struct {
	Participant string   `json:"participant"`
	Selections  []string `json:"selections"`
}

type questionsResponse struct {
	Title     string          `json:"title"`
	Count     int             `json:"count"`
	Questions []quiz.Question `json:"questions"`
}

func (s *Server) handleAPIQuestions(w http.ResponseWriter, r *http.Request) {
	qs, err := s.quiz.Questions(r.Context())
	if err != nil {
		writeQuizError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questionsResponse{
		Title:     s.title,
		Count:     len(qs),
		Questions: qs,
	})
}

func (s *Server) handleAPISubmit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSubmitBody+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}
	if len(body) > maxSubmitBody {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	if problems, err := validateSubmission(body); err != nil {
		writeError(w, http.StatusBadRequest, "request body is not valid JSON")
		return
	} else if len(problems) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "invalid submission",
			"details": problems,
		})
		return
	}

	var req submitRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "request body is not valid JSON")
		return
	}

	attempt, err := s.quiz.Submit(r.Context(), quiz.Submission{
		Participant: req.Participant,
		Selections:  req.Selections,
	})
	if err != nil {
		writeQuizError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, attempt)
}

func (s *Server) handleAPIAttempt(w http.ResponseWriter, r *http.Request) {
	attempt, err := s.quiz.Attempt(r.Context(), chi.URLParam(r, "attemptID"))
	if err != nil {
		writeQuizError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attempt)
}

// validateSubmission checks body against the submission schema. It returns
// an error only when body is not JSON.
func validateSubmission(body []byte) ([]string, error) {
	result, err := submissionSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, err
	}
	if result.Valid() {
		return nil, nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return problems, nil
}

func writeQuizError(w http.ResponseWriter, err error) {
	switch {
	case quiz.IsDocumentError(err):
		slog.Warn("quiz document unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, msgDocumentError)
	case errors.Is(err, quiz.ErrNoQuestions):
		writeError(w, http.StatusNotFound, msgNoQuestions)
	case errors.Is(err, quiz.ErrSelectionCount):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, quiz.ErrAttemptNotFound):
		writeError(w, http.StatusNotFound, "attempt not found")
	default:
		slog.Error("quiz API request failed", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
