package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"quizarena-service/internal/domain"
)

// AttemptStore persists attempts with bun. Each attempt is a single-row
// insert; rows are never updated.
type AttemptStore struct {
	db *bun.DB
}

func NewAttemptStore(db *bun.DB) *AttemptStore {
	return &AttemptStore{db: db}
}

func (s *AttemptStore) CreateAttempt(ctx context.Context, attempt domain.Attempt) error {
	if _, err := s.db.NewInsert().Model(newAttemptRow(attempt)).Exec(ctx); err != nil {
		if mapped := missingReference(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

const foreignKeyViolation = "23503"

// missingReference maps a foreign key violation on insert to the not-found
// error for whichever parent row vanished.
func missingReference(err error) error {
	var pgErr pgdriver.Error
	if !errors.As(err, &pgErr) || pgErr.Field('C') != foreignKeyViolation {
		return nil
	}
	if pgErr.Field('n') == "attempts_quiz_id_fkey" {
		return domain.ErrQuizNotFound
	}
	return domain.ErrUserNotFound
}

func (s *AttemptStore) GetAttempt(ctx context.Context, attemptID string) (domain.Attempt, error) {
	var row attemptRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", attemptID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("get attempt: %w", err)
	}
	return row.toDomain(), nil
}

func (s *AttemptStore) ListByUser(ctx context.Context, userID string) ([]domain.Attempt, error) {
	var rows []attemptRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		OrderExpr("attempted_at DESC, id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attempts by user: %w", err)
	}
	return toAttempts(rows), nil
}

// ListByQuiz pushes the leaderboard order and limit down to Postgres
// (served by idx_attempts_leaderboard).
func (s *AttemptStore) ListByQuiz(ctx context.Context, quizID string, limit int) ([]domain.Attempt, error) {
	var rows []attemptRow
	q := s.db.NewSelect().
		Model(&rows).
		Where("quiz_id = ?", quizID).
		OrderExpr("score DESC, attempted_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list attempts by quiz: %w", err)
	}
	return toAttempts(rows), nil
}

func toAttempts(rows []attemptRow) []domain.Attempt {
	attempts := make([]domain.Attempt, 0, len(rows))
	for _, row := range rows {
		attempts = append(attempts, row.toDomain())
	}
	return attempts
}
