package quiz_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/p-n-ai/pai-quiz/internal/platform/database"
	"github.com/p-n-ai/pai-quiz/internal/quiz"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()
	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("quiz"),
		postgres.WithUsername("quiz"),
		postgres.WithPassword("quiz"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}

	url, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("ConnectionString() error = %v", err)
	}

	db, err := database.New(ctx, url, database.Options{MaxConns: 4})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(db.Close)

	// Applying twice checks the schema is idempotent.
	for range 2 {
		if err := db.Migrate(ctx, quiz.Schema); err != nil {
			t.Fatalf("Migrate() error = %v", err)
		}
	}
	return db
}

func TestPostgresStore(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := quiz.NewPostgresStore(nil); err == nil {
		t.Error("NewPostgresStore(nil) should fail")
	}
	store, err := quiz.NewPostgresStore(db.Pool)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}

	res, err := quiz.Score(sampleQuestions(), []string{"a) One", "a) Three", "a) Five"})
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	older, err := store.SaveAttempt(ctx, quiz.Attempt{
		Participant: "alice",
		Document:    "ratios.pdf",
		Selections:  []string{"a) One", "a) Three", "a) Five"},
		Result:      res,
		SubmittedAt: base,
	})
	if err != nil {
		t.Fatalf("SaveAttempt() error = %v", err)
	}
	newer, err := store.SaveAttempt(ctx, quiz.Attempt{
		Participant: "bob",
		Document:    "ratios.pdf",
		Result:      quiz.Result{Questions: []quiz.QuestionResult{}},
		SubmittedAt: base.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("SaveAttempt() error = %v", err)
	}

	got, err := store.GetAttempt(ctx, older)
	if err != nil {
		t.Fatalf("GetAttempt() error = %v", err)
	}
	if got.ID != older || got.Participant != "alice" || got.Document != "ratios.pdf" {
		t.Errorf("GetAttempt() = %+v", got)
	}
	if got.Result.CorrectCount != 2 || len(got.Result.Questions) != 3 {
		t.Errorf("Result = %+v, want 2 correct over 3 questions", got.Result)
	}
	if got.Result.Questions[1].CorrectOption != "b) Four" {
		t.Errorf("CorrectOption = %q, want b) Four", got.Result.Questions[1].CorrectOption)
	}
	if !got.SubmittedAt.Equal(base) {
		t.Errorf("SubmittedAt = %v, want %v", got.SubmittedAt, base)
	}

	list, err := store.ListAttempts(ctx, 0)
	if err != nil {
		t.Fatalf("ListAttempts() error = %v", err)
	}
	if len(list) != 2 || list[0].ID != newer || list[1].ID != older {
		t.Errorf("ListAttempts() order = %+v, want newest first", list)
	}
	if list[0].Selections == nil {
		t.Error("nil selections should be stored as an empty list")
	}

	limited, err := store.ListAttempts(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Errorf("ListAttempts(1) = %d, %v; want 1", len(limited), err)
	}

	for _, id := range []string{"not-a-uuid", "00000000-0000-0000-0000-000000000000"} {
		if _, err := store.GetAttempt(ctx, id); !errors.Is(err, quiz.ErrAttemptNotFound) {
			t.Errorf("GetAttempt(%q) error = %v, want ErrAttemptNotFound", id, err)
		}
	}
}

func TestPostgresEventLogger(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	store, err := quiz.NewPostgresStore(db.Pool)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}
	id, err := store.SaveAttempt(ctx, quiz.Attempt{Participant: "carol", Document: "ratios.pdf"})
	if err != nil {
		t.Fatalf("SaveAttempt() error = %v", err)
	}

	logger := quiz.NewPostgresEventLogger(db.Pool)
	if err := logger.LogEvent(ctx, quiz.Event{Type: quiz.EventQuizLoaded}); err != nil {
		t.Fatalf("LogEvent() without attempt error = %v", err)
	}
	if err := logger.LogEvent(ctx, quiz.Event{
		Type:      quiz.EventQuizSubmitted,
		AttemptID: id,
		Data:      map[string]any{"correct": 1},
	}); err != nil {
		t.Fatalf("LogEvent() with attempt error = %v", err)
	}
	if err := logger.LogEvent(ctx, quiz.Event{}); err == nil {
		t.Error("LogEvent() should reject an event without a type")
	}

	var count int
	if err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quiz_events WHERE attempt_id = $1::uuid`, id,
	).Scan(&count); err != nil {
		t.Fatalf("count events: %v", err)
	}
	if count != 1 {
		t.Errorf("events for attempt = %d, want 1", count)
	}
}
