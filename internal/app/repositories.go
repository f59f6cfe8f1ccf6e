package app

import (
	"context"

	"quizarena-service/internal/domain"
)

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizCatalog stores quiz definitions authored by users.
type QuizCatalog interface {
	CreateQuiz(ctx context.Context, quiz domain.Quiz) error
	ListQuizzes(ctx context.Context, category string) ([]domain.QuizSummary, error)
}

// AttemptRepository persists immutable attempts. There is deliberately no update method.
type AttemptRepository interface {
	CreateAttempt(ctx context.Context, attempt domain.Attempt) error
	GetAttempt(ctx context.Context, attemptID string) (domain.Attempt, error)
	// ListByUser returns the user's attempts, newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.Attempt, error)
	// ListByQuiz returns leaderboard candidates for a quiz. Implementations may
	// push the leaderboard order and limit down to storage; limit <= 0 means all.
	ListByQuiz(ctx context.Context, quizID string, limit int) ([]domain.Attempt, error)
}

// UserRepository resolves identities.
type UserRepository interface {
	CreateUser(ctx context.Context, user domain.User) error
	GetUser(ctx context.Context, userID string) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	// GetUsers resolves many ids at once; unknown ids are absent from the map.
	GetUsers(ctx context.Context, userIDs []string) (map[string]domain.User, error)
}

// LeaderboardCache keeps recently ranked leaderboards. Every Invalidate bumps
// the quiz generation; Set stores a board only if the generation read before
// ranking is still current, so a board ranked before a submit is never cached
// after it.
type LeaderboardCache interface {
	Get(ctx context.Context, quizID string, limit int) (domain.Leaderboard, bool)
	Generation(ctx context.Context, quizID string) (int64, error)
	Set(ctx context.Context, gen int64, limit int, board domain.Leaderboard)
	Invalidate(ctx context.Context, quizID string) error
}

// Recorder receives business metrics.
type Recorder interface {
	AttemptRecorded(quizID string, score, total int)
	LeaderboardServed(cached bool)
}

type nopRecorder struct{}

func (nopRecorder) AttemptRecorded(string, int, int) {}
func (nopRecorder) LeaderboardServed(bool)           {}
