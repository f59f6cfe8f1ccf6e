package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"quizarena-service/internal/app"
	"quizarena-service/internal/domain"
	"quizarena-service/internal/infra/memory"
)

func TestCreateQuizDefaultsAndHidesAnswers(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuizStore()
	created := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	service := app.NewQuizService(store, memory.NewQuizRepository(store, time.Minute), app.WithQuizClock(func() time.Time { return created }))

	quiz, err := service.Create(ctx, "owner", app.CreateQuizInput{
		Title: "  Capitals ",
		Questions: []app.QuestionInput{
			{Text: "Capital of France?", Options: []string{"Paris", "Rome"}, CorrectAnswerIndex: 0},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if quiz.Title != "Capitals" || quiz.Category != "General" || !quiz.IsPublic || quiz.OwnerID != "owner" {
		t.Fatalf("unexpected quiz: %+v", quiz)
	}
	if !quiz.CreatedAt.Equal(created) {
		t.Fatalf("expected creation timestamp, got %v", quiz.CreatedAt)
	}

	public, err := service.Get(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(public.Questions) != 1 || public.Questions[0].Text != "Capital of France?" {
		t.Fatalf("unexpected public quiz: %+v", public)
	}

	listed, err := service.List(ctx, "General")
	if err != nil || len(listed) != 1 || listed[0].ID != quiz.ID {
		t.Fatalf("list = (%+v, %v)", listed, err)
	}
}

func TestCreateQuizValidation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuizStore()
	service := app.NewQuizService(store, memory.NewQuizRepository(store, time.Minute))

	cases := map[string]app.CreateQuizInput{
		"no title":     {Questions: []app.QuestionInput{{Text: "q", Options: []string{"a", "b"}}}},
		"no questions": {Title: "t"},
		"one option":   {Title: "t", Questions: []app.QuestionInput{{Text: "q", Options: []string{"a"}}}},
		"bad index":    {Title: "t", Questions: []app.QuestionInput{{Text: "q", Options: []string{"a", "b"}, CorrectAnswerIndex: 2}}},
		"empty text":   {Title: "t", Questions: []app.QuestionInput{{Options: []string{"a", "b"}}}},
	}
	for name, in := range cases {
		if _, err := service.Create(ctx, "owner", in); domain.KindOf(err) != domain.KindValidation {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}

	valid := app.CreateQuizInput{Title: "t", Questions: []app.QuestionInput{{Text: "q", Options: []string{"a", "b"}}}}
	if _, err := service.Create(ctx, "", valid); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestPrivateQuizIsNotListed(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuizStore()
	service := app.NewQuizService(store, memory.NewQuizRepository(store, time.Minute))
	private := false

	quiz, err := service.Create(ctx, "owner", app.CreateQuizInput{
		Title:     "Secret",
		IsPublic:  &private,
		Questions: []app.QuestionInput{{Text: "q", Options: []string{"a", "b"}}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	listed, _ := service.List(ctx, "")
	if len(listed) != 0 {
		t.Fatalf("expected private quiz hidden, got %+v", listed)
	}
	if _, err := service.Get(ctx, quiz.ID); err != nil {
		t.Fatalf("private quiz should still resolve by id: %v", err)
	}
}
