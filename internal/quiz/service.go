package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/p-n-ai/pai-quiz/internal/document"
)

const (
	defaultCacheTTL    = 5 * time.Minute
	defaultParticipant = "anonymous"
	cacheKeyPrefix     = "quiz:questions:"
)

// JSONCache stores JSON-encodable values by key.
type JSONCache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
}

// ServiceConfig holds dependencies for the quiz service.
type ServiceConfig struct {
	Source   document.Source
	Document string // label recorded with each attempt
	Cache    JSONCache
	CacheTTL time.Duration
	Store    AttemptStore
	Events   EventLogger
}

// Service loads questions from the configured document and scores submissions.
type Service struct {
	source   document.Source
	document string
	cache    JSONCache
	cacheTTL time.Duration
	store    AttemptStore
	events   EventLogger
}

// Submission is a set of selections, one per question in document order.
type Submission struct {
	Participant string
	Selections  []string
	// Questions the selections answer. When nil the document is read again.
	Questions []Question
}

// NewService creates a quiz service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("document source is required")
	}
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore()
	}
	events := cfg.Events
	if events == nil {
		events = NopEventLogger{}
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Service{
		source:   cfg.Source,
		document: cfg.Document,
		cache:    cfg.Cache,
		cacheTTL: ttl,
		store:    store,
		events:   events,
	}, nil
}

// Questions reads and extracts the document's questions. It returns an error
// wrapping document.ErrAccess when the document cannot be read, and
// ErrNoQuestions when it was read but yielded nothing.
func (s *Service) Questions(ctx context.Context) ([]Question, error) {
	fingerprint, err := s.source.Fingerprint(ctx)
	if err != nil {
		s.logEvent(ctx, Event{Type: EventDocumentError, Data: map[string]any{"error": err.Error()}})
		return nil, err
	}
	key := cacheKeyPrefix + fingerprint

	if qs, ok := s.cachedQuestions(ctx, key); ok {
		s.logLoaded(ctx, qs, Event{Data: map[string]any{"cached": true}})
		return nonEmpty(qs)
	}

	pages, err := s.source.PageTexts(ctx)
	if err != nil {
		s.logEvent(ctx, Event{Type: EventDocumentError, Data: map[string]any{"error": err.Error()}})
		return nil, err
	}

	qs := Extract(pages)
	slog.Info("questions extracted",
		"document", s.document,
		"pages", len(pages),
		"questions", len(qs),
	)

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, qs, s.cacheTTL); err != nil {
			slog.Warn("failed to cache questions", "key", key, "error", err)
		}
	}

	s.logLoaded(ctx, qs, Event{Data: map[string]any{"cached": false, "pages": len(pages)}})
	return nonEmpty(qs)
}

// logLoaded records quiz_loaded, or no_questions for an empty extraction.
func (s *Service) logLoaded(ctx context.Context, qs []Question, e Event) {
	e.Type = EventQuizLoaded
	if len(qs) == 0 {
		e.Type = EventNoQuestions
	}
	e.Data["questions"] = len(qs)
	s.logEvent(ctx, e)
}

// Submit scores the submission and records the attempt. Selections are
// scored against sub.Questions, or the current questions when that is nil.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Attempt, error) {
	qs := sub.Questions
	if qs == nil {
		var err error
		if qs, err = s.Questions(ctx); err != nil {
			return nil, err
		}
	}

	result, err := Score(qs, sub.Selections)
	if err != nil {
		return nil, err
	}

	participant := strings.TrimSpace(sub.Participant)
	if participant == "" {
		participant = defaultParticipant
	}

	attempt := Attempt{
		Participant: participant,
		Document:    s.document,
		Selections:  append([]string{}, sub.Selections...),
		Result:      result,
		SubmittedAt: time.Now().UTC(),
	}
	id, err := s.store.SaveAttempt(ctx, attempt)
	if err != nil {
		slog.Error("failed to save attempt", "participant", participant, "error", err)
		return nil, fmt.Errorf("saving attempt: %w", err)
	}
	attempt.ID = id

	slog.Info("quiz submitted",
		"attempt_id", id,
		"correct", result.CorrectCount,
		"total", result.Total,
	)
	s.logEvent(ctx, Event{
		Type:      EventQuizSubmitted,
		AttemptID: id,
		Data: map[string]any{
			"correct":    result.CorrectCount,
			"total":      result.Total,
			"percentage": result.Percentage,
		},
	})
	return &attempt, nil
}

// Attempt returns a recorded attempt by ID.
func (s *Service) Attempt(ctx context.Context, id string) (*Attempt, error) {
	return s.store.GetAttempt(ctx, id)
}

// Attempts returns recorded attempts, newest first.
func (s *Service) Attempts(ctx context.Context, limit int) ([]Attempt, error) {
	return s.store.ListAttempts(ctx, limit)
}

func (s *Service) cachedQuestions(ctx context.Context, key string) ([]Question, bool) {
	if s.cache == nil {
		return nil, false
	}
	var qs []Question
	found, err := s.cache.GetJSON(ctx, key, &qs)
	if err != nil {
		slog.Warn("failed to read cached questions", "key", key, "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	slog.Debug("questions served from cache", "key", key, "questions", len(qs))
	return qs, true
}

func (s *Service) logEvent(ctx context.Context, e Event) {
	if err := s.events.LogEvent(ctx, e); err != nil {
		slog.Warn("failed to log event", "type", e.Type, "error", err)
	}
}

func nonEmpty(qs []Question) ([]Question, error) {
	if len(qs) == 0 {
		return nil, ErrNoQuestions
	}
	return qs, nil
}

// IsDocumentError reports whether err is a document-access failure.
func IsDocumentError(err error) bool {
	return errors.Is(err, document.ErrAccess)
}
