package web

import (
	"bytes"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/p-n-ai/pai-quiz/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// requireAdmin checks HTTP Basic credentials against the configured bcrypt
// hash. Admin routes do not exist when no hash is configured.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.admin.PassHash == "" {
			http.NotFound(w, r)
			return
		}

		user, pass, ok := r.BasicAuth()
		userOK := subtle.ConstantTimeCompare([]byte(user), []byte(s.admin.User)) == 1
		if !ok || !userOK || bcrypt.CompareHashAndPassword([]byte(s.admin.PassHash), []byte(pass)) != nil {
			slog.Warn("admin authentication failed", "user", user, "remote", r.RemoteAddr)
			w.Header().Set("WWW-Authenticate", `Basic realm="quiz-admin", charset="UTF-8"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleResultsExport(w http.ResponseWriter, r *http.Request) {
	attempts, err := s.quiz.Attempts(r.Context(), 0)
	if err != nil {
		slog.Error("failed to list attempts", "error", err)
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteAttemptsXLSX(&buf, attempts); err != nil {
		slog.Error("failed to build results workbook", "error", err)
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}

	slog.Info("results exported", "attempts", len(attempts))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="quiz-results.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
