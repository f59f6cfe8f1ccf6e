package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"quizarena-service/internal/domain"
)

// QuizService is the quiz catalog: authoring and browsing.
type QuizService struct {
	catalog QuizCatalog
	quizzes QuizRepository
	now     func() time.Time
}

// QuizOption customizes a QuizService.
type QuizOption func(*QuizService)

// WithQuizClock sets the clock used for creation timestamps.
func WithQuizClock(now func() time.Time) QuizOption {
	return func(s *QuizService) { s.now = now }
}

func NewQuizService(catalog QuizCatalog, quizzes QuizRepository, opts ...QuizOption) *QuizService {
	s := &QuizService{catalog: catalog, quizzes: quizzes, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new quiz owned by the caller.
func (s *QuizService) Create(ctx context.Context, ownerID string, in CreateQuizInput) (domain.Quiz, error) {
	if ownerID == "" {
		return domain.Quiz{}, domain.ErrUnauthenticated
	}
	if err := in.Validate(); err != nil {
		return domain.Quiz{}, err
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = defaultCategory
	}
	public := true
	if in.IsPublic != nil {
		public = *in.IsPublic
	}

	questions := make([]domain.Question, 0, len(in.Questions))
	for _, q := range in.Questions {
		options := make([]string, len(q.Options))
		copy(options, q.Options)
		questions = append(questions, domain.Question{
			Text:               strings.TrimSpace(q.Text),
			Options:            options,
			CorrectAnswerIndex: q.CorrectAnswerIndex,
		})
	}

	quiz := domain.Quiz{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(in.Title),
		Category:  category,
		OwnerID:   ownerID,
		Questions: questions,
		IsPublic:  public,
		CreatedAt: s.now().UTC(),
	}
	if err := s.catalog.CreateQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// Get returns the taker's view of a quiz, without correct answers.
func (s *QuizService) Get(ctx context.Context, quizID string) (domain.PublicQuiz, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.PublicQuiz{}, err
	}
	return quiz.Public(), nil
}

// List returns public quizzes, optionally filtered by category.
func (s *QuizService) List(ctx context.Context, category string) ([]domain.QuizSummary, error) {
	return s.catalog.ListQuizzes(ctx, strings.TrimSpace(category))
}
