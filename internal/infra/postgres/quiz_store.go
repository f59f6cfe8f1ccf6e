package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"quizarena-service/internal/domain"
)

// QuizStore is the bun-backed quiz catalog.
type QuizStore struct {
	db *bun.DB
}

func NewQuizStore(db *bun.DB) *QuizStore {
	return &QuizStore{db: db}
}

func (s *QuizStore) CreateQuiz(ctx context.Context, quiz domain.Quiz) error {
	if _, err := s.db.NewInsert().Model(newQuizRow(quiz)).Exec(ctx); err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

// ListQuizzes returns public quizzes, oldest first. Question data is not loaded.
func (s *QuizStore) ListQuizzes(ctx context.Context, category string) ([]domain.QuizSummary, error) {
	var rows []quizRow
	q := s.db.NewSelect().
		Model(&rows).
		Column("id", "title", "category", "owner_id", "created_at").
		Where("is_public = TRUE").
		OrderExpr("created_at ASC, id ASC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}

	summaries := make([]domain.QuizSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, domain.QuizSummary{
			ID:        row.ID,
			Title:     row.Title,
			Category:  row.Category,
			OwnerID:   row.OwnerID,
			CreatedAt: row.CreatedAt.UTC(),
		})
	}
	return summaries, nil
}
