package postgres

import (
	"time"

	"github.com/uptrace/bun"

	"quizarena-service/internal/domain"
)

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes"`

	ID        string            `bun:"id,pk"`
	Title     string            `bun:"title,notnull"`
	Category  string            `bun:"category,notnull"`
	OwnerID   string            `bun:"owner_id,notnull"`
	IsPublic  bool              `bun:"is_public,notnull"`
	CreatedAt time.Time         `bun:"created_at,notnull"`
	Questions []domain.Question `bun:"data,type:jsonb,notnull"`
}

func newQuizRow(q domain.Quiz) *quizRow {
	return &quizRow{
		ID:        q.ID,
		Title:     q.Title,
		Category:  q.Category,
		OwnerID:   q.OwnerID,
		IsPublic:  q.IsPublic,
		CreatedAt: q.CreatedAt,
		Questions: q.Questions,
	}
}

type attemptRow struct {
	bun.BaseModel `bun:"table:attempts"`

	ID             string    `bun:"id,pk"`
	QuizID         string    `bun:"quiz_id,notnull"`
	UserID         string    `bun:"user_id,notnull"`
	Score          int       `bun:"score,notnull"`
	TotalQuestions int       `bun:"total_questions,notnull"`
	Answers        []int     `bun:"answers,array,notnull"`
	AttemptedAt    time.Time `bun:"attempted_at,notnull"`
}

func newAttemptRow(a domain.Attempt) *attemptRow {
	return &attemptRow{
		ID:             a.ID,
		QuizID:         a.QuizID,
		UserID:         a.UserID,
		Score:          a.Score,
		TotalQuestions: a.TotalQuestions,
		Answers:        a.Answers,
		AttemptedAt:    a.AttemptedAt,
	}
}

func (r attemptRow) toDomain() domain.Attempt {
	answers := r.Answers
	if answers == nil {
		answers = []int{}
	}
	return domain.Attempt{
		ID:             r.ID,
		QuizID:         r.QuizID,
		UserID:         r.UserID,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		Answers:        answers,
		AttemptedAt:    r.AttemptedAt.UTC(),
	}
}

type userRow struct {
	bun.BaseModel `bun:"table:users"`

	ID           string    `bun:"id,pk"`
	Username     string    `bun:"username,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
}

func (r userRow) toDomain() domain.User {
	return domain.User{ID: r.ID, Username: r.Username, PasswordHash: r.PasswordHash, CreatedAt: r.CreatedAt.UTC()}
}
