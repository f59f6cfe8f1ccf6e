package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"quizarena-service/internal/domain"
)

func TestAttemptStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	answers := []int{1, 0}
	_ = store.CreateAttempt(ctx, domain.Attempt{ID: "a1", QuizID: "q", UserID: "u1", Answers: answers, AttemptedAt: base})
	_ = store.CreateAttempt(ctx, domain.Attempt{ID: "a2", QuizID: "q", UserID: "u1", AttemptedAt: base.Add(time.Minute)})
	_ = store.CreateAttempt(ctx, domain.Attempt{ID: "a3", QuizID: "other", UserID: "u2", AttemptedAt: base})

	answers[0] = 9
	got, err := store.GetAttempt(ctx, "a1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Answers[0] != 1 {
		t.Fatalf("stored attempt must not alias caller slices, got %v", got.Answers)
	}

	mine, _ := store.ListByUser(ctx, "u1")
	if len(mine) != 2 || mine[0].ID != "a2" {
		t.Fatalf("expected newest first, got %+v", mine)
	}

	quizAttempts, _ := store.ListByQuiz(ctx, "q", 1)
	if len(quizAttempts) != 2 {
		t.Fatalf("expected all quiz attempts, got %d", len(quizAttempts))
	}

	if _, err := store.GetAttempt(ctx, "missing"); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected attempt not found, got %v", err)
	}
}
