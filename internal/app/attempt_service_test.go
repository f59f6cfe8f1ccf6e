package app_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"quizarena-service/internal/app"
	"quizarena-service/internal/domain"
	"quizarena-service/internal/infra/memory"
)

func TestSubmitScoresAndRecords(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	result, err := env.service.Submit(ctx, "u1", app.SubmitInput{QuizID: "quiz-1", Answers: []int{1, 1, 2}})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.Score != 2 || result.TotalQuestions != 3 {
		t.Fatalf("expected 2/3, got %+v", result)
	}

	stored, err := env.attempts.GetAttempt(ctx, result.AttemptID)
	if err != nil {
		t.Fatalf("attempt not persisted: %v", err)
	}
	if stored.UserID != "u1" || stored.Score != 2 || !reflect.DeepEqual(stored.Answers, []int{1, 1, 2}) {
		t.Fatalf("unexpected stored attempt: %+v", stored)
	}
	if !stored.AttemptedAt.Equal(env.now()) {
		t.Fatalf("expected server timestamp, got %v", stored.AttemptedAt)
	}
}

func TestSubmitLengthMismatchPersistsNothing(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	for _, answers := range [][]int{{}, {1, 0}, {1, 0, 2, 0}} {
		_, err := env.service.Submit(ctx, "u1", app.SubmitInput{QuizID: "quiz-1", Answers: answers})
		if domain.KindOf(err) != domain.KindValidation {
			t.Fatalf("answers %v: expected validation error, got %v", answers, err)
		}
	}
	mine, _ := env.attempts.ListByUser(ctx, "u1")
	if len(mine) != 0 {
		t.Fatalf("expected no attempts persisted, got %d", len(mine))
	}
}

func TestSubmitErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	if _, err := env.service.Submit(ctx, "", app.SubmitInput{QuizID: "quiz-1", Answers: []int{1, 0, 2}}); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if _, err := env.service.Submit(ctx, "u1", app.SubmitInput{QuizID: "nope", Answers: []int{1}}); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
	if _, err := env.service.Submit(ctx, "u1", app.SubmitInput{QuizID: "nope"}); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found before answer validation, got %v", err)
	}
	if _, err := env.service.Submit(ctx, "u1", app.SubmitInput{QuizID: "quiz-1"}); !errors.Is(err, domain.ErrAnswerCountMismatch) {
		t.Fatalf("expected validation error for missing answers, got %v", err)
	}
}

func TestSubmitPropagatesStorageFailure(t *testing.T) {
	storageErr := errors.New("disk full")
	env := newTestEnv()
	service := app.NewAttemptService(env.quizRepo, failingAttempts{AttemptRepository: env.attempts, err: storageErr}, env.users)

	_, err := service.Submit(context.Background(), "u1", app.SubmitInput{QuizID: "quiz-1", Answers: []int{1, 0, 2}})
	if !errors.Is(err, storageErr) || domain.KindOf(err) != domain.KindPersistence {
		t.Fatalf("expected persistence error, got %v", err)
	}
}

func TestReviewScenario(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	result, err := env.service.Submit(ctx, "u1", app.SubmitInput{QuizID: "quiz-1", Answers: []int{1, 1, 2}})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	review, err := env.service.Review(ctx, "u1", result.AttemptID)
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if review.Score != 2 || review.TotalQuestions != 3 || len(review.Review) != 3 {
		t.Fatalf("unexpected review header: %+v", review)
	}
	if !review.Review[2].IsCorrect {
		t.Fatalf("expected third entry correct")
	}
	second := review.Review[1]
	if second.IsCorrect || second.SelectedAnswerIndex != 1 || second.CorrectAnswerIndex != 0 {
		t.Fatalf("unexpected second entry: %+v", second)
	}

	again, err := env.service.Review(ctx, "u1", result.AttemptID)
	if err != nil {
		t.Fatalf("second review: %v", err)
	}
	if !reflect.DeepEqual(review, again) {
		t.Fatalf("review is not idempotent:\n%+v\n%+v", review, again)
	}
}

func TestReviewOwnership(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	result, err := env.service.Submit(ctx, "u1", app.SubmitInput{QuizID: "quiz-1", Answers: []int{0, 0, 0}})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := env.service.Review(ctx, "u2", result.AttemptID); !errors.Is(err, domain.ErrNotAttemptOwner) {
		t.Fatalf("expected forbidden review, got %v", err)
	}
	if _, err := env.service.Detail(ctx, "u2", result.AttemptID); domain.KindOf(err) != domain.KindForbidden {
		t.Fatalf("expected forbidden detail, got %v", err)
	}
	if _, err := env.service.Review(ctx, "u2", "missing"); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected not found before forbidden, got %v", err)
	}
}

func TestReviewOfRemovedQuizIsNotFound(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	_ = env.attempts.CreateAttempt(ctx, domain.Attempt{ID: "orphan", QuizID: "gone", UserID: "u1", Answers: []int{0}})

	if _, err := env.service.Review(ctx, "u1", "orphan"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}

func TestDetailAndListMine(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	first, _ := env.service.Submit(ctx, "u1", app.SubmitInput{QuizID: "quiz-1", Answers: []int{1, 0, 2}})
	env.advance(time.Minute)
	second, _ := env.service.Submit(ctx, "u1", app.SubmitInput{QuizID: "quiz-1", Answers: []int{0, 0, 0}})
	_, _ = env.service.Submit(ctx, "u2", app.SubmitInput{QuizID: "quiz-1", Answers: []int{0, 0, 0}})

	detail, err := env.service.Detail(ctx, "u1", first.AttemptID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if detail.Quiz.Title != "Sample" || detail.Score != 3 || detail.Total != 3 || !reflect.DeepEqual(detail.Answers, []int{1, 0, 2}) {
		t.Fatalf("unexpected detail: %+v", detail)
	}

	mine, err := env.service.ListMine(ctx, "u1")
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(mine) != 2 || mine[0].ID != second.AttemptID || mine[1].ID != first.AttemptID {
		t.Fatalf("expected newest first, got %+v", mine)
	}
	if mine[0].Quiz.Title != "Sample" || mine[0].Total != 3 {
		t.Fatalf("unexpected summary: %+v", mine[0])
	}

	stats, err := env.service.Stats(ctx, "u1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Attempts != 2 || stats.BestScore != 3 || stats.QuizzesTaken != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestLeaderboardTieBreaksOnEarlierAttempt(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	_, _ = env.service.Submit(ctx, "u1", app.SubmitInput{QuizID: "quiz-1", Answers: []int{1, 0, 2}})
	env.advance(time.Second)
	_, _ = env.service.Submit(ctx, "u2", app.SubmitInput{QuizID: "quiz-1", Answers: []int{1, 0, 2}})

	board, err := env.service.Leaderboard(ctx, "quiz-1", 0)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(board.Entries))
	}
	if board.Entries[0].Username != "alice" || board.Entries[1].Username != "bob" {
		t.Fatalf("expected earlier attempt first, got %+v", board.Entries)
	}
	if !board.Entries[0].AttemptedAt.Before(board.Entries[1].AttemptedAt) {
		t.Fatalf("timestamps out of order: %+v", board.Entries)
	}
}

func TestLeaderboardKeepsRepeatAttemptsAndLimits(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	for i := 0; i < 7; i++ {
		answers := []int{1, 0, 2}
		answers[i%3] = 9
		_, _ = env.service.Submit(ctx, "u1", app.SubmitInput{QuizID: "quiz-1", Answers: answers})
		env.advance(time.Second)
	}
	_, _ = env.service.Submit(ctx, "u2", app.SubmitInput{QuizID: "quiz-1", Answers: []int{1, 0, 2}})

	board, err := env.service.Leaderboard(ctx, "quiz-1", 0)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board.Entries) != app.DefaultLeaderboardLimit {
		t.Fatalf("expected %d entries, got %d", app.DefaultLeaderboardLimit, len(board.Entries))
	}
	if board.Entries[0].Username != "bob" || board.Entries[0].Score != 3 {
		t.Fatalf("expected bob on top, got %+v", board.Entries[0])
	}
	for _, entry := range board.Entries[1:] {
		if entry.Username != "alice" {
			t.Fatalf("expected repeat attempts preserved, got %+v", board.Entries)
		}
	}

	small, _ := env.service.Leaderboard(ctx, "quiz-1", 2)
	if len(small.Entries) != 2 {
		t.Fatalf("expected explicit limit, got %d", len(small.Entries))
	}
}

func TestLeaderboardEmptyAndInvalidLimit(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	board, err := env.service.Leaderboard(ctx, "quiz-1", 0)
	if err != nil {
		t.Fatalf("empty leaderboard should not fail: %v", err)
	}
	if board.Entries == nil || len(board.Entries) != 0 {
		t.Fatalf("expected empty, non-nil entries, got %#v", board.Entries)
	}

	for _, limit := range []int{-1, app.MaxLeaderboardLimit + 1} {
		if _, err := env.service.Leaderboard(ctx, "quiz-1", limit); domain.KindOf(err) != domain.KindValidation {
			t.Fatalf("limit %d: expected validation error, got %v", limit, err)
		}
	}
}

func TestLeaderboardUsesCacheAndInvalidatesOnSubmit(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	cache := newMapCache()
	service := app.NewAttemptService(env.quizRepo, env.attempts, env.users, app.WithLeaderboardCache(cache), app.WithClock(env.now))

	_, _ = service.Leaderboard(ctx, "quiz-1", 0)
	if cache.sets != 1 {
		t.Fatalf("expected cache fill, got %d sets", cache.sets)
	}
	_, _ = service.Leaderboard(ctx, "quiz-1", 0)
	if cache.hits != 1 {
		t.Fatalf("expected cache hit, got %d", cache.hits)
	}

	if _, err := service.Submit(ctx, "u1", app.SubmitInput{QuizID: "quiz-1", Answers: []int{1, 0, 2}}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	board, _ := service.Leaderboard(ctx, "quiz-1", 0)
	if len(board.Entries) != 1 {
		t.Fatalf("expected fresh board after submit, got %+v", board)
	}
}

func TestLeaderboardRankedDuringSubmitIsNotCached(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	cache := newMapCache()
	attempts := &pausingAttempts{AttemptRepository: env.attempts, listed: make(chan struct{}), release: make(chan struct{})}
	service := app.NewAttemptService(env.quizRepo, attempts, env.users, app.WithLeaderboardCache(cache), app.WithClock(env.now))

	done := make(chan error, 1)
	go func() {
		_, err := service.Leaderboard(ctx, "quiz-1", 0)
		done <- err
	}()

	<-attempts.listed
	if _, err := service.Submit(ctx, "u1", app.SubmitInput{QuizID: "quiz-1", Answers: []int{1, 0, 2}}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	close(attempts.release)
	if err := <-done; err != nil {
		t.Fatalf("concurrent leaderboard: %v", err)
	}

	board, err := service.Leaderboard(ctx, "quiz-1", 0)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board.Entries) != 1 {
		t.Fatalf("leaderboard misses a completed submit: %+v (cache hits=%d)", board, cache.hits)
	}
}

func TestSubmitPublishesToFeed(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	feed := app.NewLeaderboardFeed()
	service := app.NewAttemptService(env.quizRepo, env.attempts, env.users, app.WithFeed(feed), app.WithClock(env.now))

	updates, cancel := feed.Subscribe("quiz-1")
	defer cancel()

	if _, err := service.Submit(ctx, "u2", app.SubmitInput{QuizID: "quiz-1", Answers: []int{1, 0, 0}}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	select {
	case board := <-updates:
		if len(board.Entries) != 1 || board.Entries[0].Username != "bob" || board.Entries[0].Score != 2 {
			t.Fatalf("unexpected published board: %+v", board)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected leaderboard update")
	}
}

type testEnv struct {
	service  *app.AttemptService
	quizRepo *memory.QuizRepository
	attempts *memory.AttemptStore
	users    *memory.UserStore
	clock    time.Time
}

func (e *testEnv) now() time.Time { return e.clock }

func (e *testEnv) advance(d time.Duration) { e.clock = e.clock.Add(d) }

func newTestEnv() *testEnv {
	env := &testEnv{
		quizRepo: memory.NewQuizRepository(memory.NewQuizStore(domain.Quiz{
			ID:       "quiz-1",
			Title:    "Sample",
			OwnerID:  "owner",
			IsPublic: true,
			Questions: []domain.Question{
				{Text: "First", Options: []string{"a", "b", "c"}, CorrectAnswerIndex: 1},
				{Text: "Second", Options: []string{"a", "b", "c"}, CorrectAnswerIndex: 0},
				{Text: "Third", Options: []string{"a", "b", "c"}, CorrectAnswerIndex: 2},
			},
		}), 5*time.Minute),
		attempts: memory.NewAttemptStore(),
		users: memory.NewUserStore(
			domain.User{ID: "u1", Username: "alice"},
			domain.User{ID: "u2", Username: "bob"},
		),
		clock: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	seq := 0
	env.service = app.NewAttemptService(env.quizRepo, env.attempts, env.users,
		app.WithClock(env.now),
		app.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("attempt-%02d", seq)
		}),
	)
	return env
}

type failingAttempts struct {
	app.AttemptRepository
	err error
}

func (f failingAttempts) CreateAttempt(context.Context, domain.Attempt) error { return f.err }

type mapCache struct {
	mu         sync.Mutex
	boards     map[string]domain.Leaderboard
	gens       map[string]int64
	hits, sets int
}

func newMapCache() *mapCache {
	return &mapCache{boards: make(map[string]domain.Leaderboard), gens: make(map[string]int64)}
}

func (c *mapCache) Get(_ context.Context, quizID string, limit int) (domain.Leaderboard, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	board, ok := c.boards[fmt.Sprintf("%s/%d", quizID, limit)]
	if ok {
		c.hits++
	}
	return board, ok
}

func (c *mapCache) Generation(_ context.Context, quizID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[quizID], nil
}

func (c *mapCache) Set(_ context.Context, gen int64, limit int, board domain.Leaderboard) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[board.QuizID] != gen {
		return
	}
	c.sets++
	c.boards[fmt.Sprintf("%s/%d", board.QuizID, limit)] = board
}

func (c *mapCache) Invalidate(_ context.Context, quizID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[quizID]++
	for key := range c.boards {
		if strings.HasPrefix(key, quizID+"/") {
			delete(c.boards, key)
		}
	}
	return nil
}

// pausingAttempts holds the first ListByQuiz call after it has read its rows.
type pausingAttempts struct {
	app.AttemptRepository
	once    sync.Once
	listed  chan struct{}
	release chan struct{}
}

func (p *pausingAttempts) ListByQuiz(ctx context.Context, quizID string, limit int) ([]domain.Attempt, error) {
	attempts, err := p.AttemptRepository.ListByQuiz(ctx, quizID, limit)
	p.once.Do(func() {
		close(p.listed)
		<-p.release
	})
	return attempts, err
}
