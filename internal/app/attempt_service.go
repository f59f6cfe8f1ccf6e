package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quizarena-service/internal/domain"
)

const (
	// DefaultLeaderboardLimit is used when callers do not ask for a size.
	DefaultLeaderboardLimit = 5
	// MaxLeaderboardLimit bounds a single leaderboard read.
	MaxLeaderboardLimit = 100
)

// AttemptService scores submissions and serves the attempt read paths.
type AttemptService struct {
	quizzes  QuizRepository
	attempts AttemptRepository
	users    UserRepository

	cache    LeaderboardCache
	feed     *LeaderboardFeed
	recorder Recorder
	log      *zap.Logger
	now      func() time.Time
	newID    func() string
}

// Option customizes an AttemptService.
type Option func(*AttemptService)

// WithClock is used by tests for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *AttemptService) { s.now = now }
}

// WithIDGenerator overrides attempt id generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *AttemptService) { s.newID = newID }
}

// WithLeaderboardCache enables caching of ranked leaderboards.
func WithLeaderboardCache(cache LeaderboardCache) Option {
	return func(s *AttemptService) { s.cache = cache }
}

// WithFeed publishes a fresh leaderboard after every recorded attempt.
func WithFeed(feed *LeaderboardFeed) Option {
	return func(s *AttemptService) { s.feed = feed }
}

func WithRecorder(recorder Recorder) Option {
	return func(s *AttemptService) { s.recorder = recorder }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *AttemptService) { s.log = log }
}

func NewAttemptService(quizzes QuizRepository, attempts AttemptRepository, users UserRepository, opts ...Option) *AttemptService {
	s := &AttemptService{
		quizzes:  quizzes,
		attempts: attempts,
		users:    users,
		recorder: nopRecorder{},
		log:      zap.NewNop(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit scores the caller's answers against the quiz and records one attempt.
func (s *AttemptService) Submit(ctx context.Context, callerID string, in SubmitInput) (domain.SubmitResult, error) {
	if callerID == "" {
		return domain.SubmitResult{}, domain.ErrUnauthenticated
	}
	if err := in.Validate(); err != nil {
		return domain.SubmitResult{}, err
	}

	quiz, err := s.quizzes.GetQuiz(ctx, in.QuizID)
	if err != nil {
		return domain.SubmitResult{}, err
	}

	score, err := scoreAnswers(quiz, in.Answers)
	if err != nil {
		return domain.SubmitResult{}, err
	}

	answers := make([]int, len(in.Answers))
	copy(answers, in.Answers)
	attempt := domain.Attempt{
		ID:             s.newID(),
		QuizID:         quiz.ID,
		UserID:         callerID,
		Score:          score,
		TotalQuestions: len(quiz.Questions),
		Answers:        answers,
		AttemptedAt:    s.now().UTC(),
	}
	if err := s.attempts.CreateAttempt(ctx, attempt); err != nil {
		return domain.SubmitResult{}, err
	}

	s.recorder.AttemptRecorded(quiz.ID, score, attempt.TotalQuestions)
	s.log.Info("attempt recorded",
		zap.String("attempt_id", attempt.ID),
		zap.String("quiz_id", quiz.ID),
		zap.String("user_id", callerID),
		zap.Int("score", score),
		zap.Int("total", attempt.TotalQuestions),
	)
	s.afterRecord(ctx, quiz.ID)

	return domain.SubmitResult{
		AttemptID:      attempt.ID,
		Score:          score,
		TotalQuestions: attempt.TotalQuestions,
	}, nil
}

// afterRecord drops the cached board and notifies live subscribers. Failures
// here never fail the submission.
func (s *AttemptService) afterRecord(ctx context.Context, quizID string) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, quizID); err != nil {
			s.log.Warn("leaderboard cache invalidation failed", zap.String("quiz_id", quizID), zap.Error(err))
		}
	}
	if s.feed == nil || !s.feed.HasSubscribers(quizID) {
		return
	}
	board, err := s.rank(ctx, quizID, DefaultLeaderboardLimit)
	if err != nil {
		s.log.Warn("leaderboard refresh failed", zap.String("quiz_id", quizID), zap.Error(err))
		return
	}
	s.feed.Publish(board)
}

// Review rebuilds the per-question breakdown of the caller's attempt.
func (s *AttemptService) Review(ctx context.Context, callerID, attemptID string) (domain.AttemptReview, error) {
	attempt, quiz, err := s.ownedAttempt(ctx, callerID, attemptID)
	if err != nil {
		return domain.AttemptReview{}, err
	}
	return buildReview(quiz, attempt), nil
}

// Detail returns the caller's attempt with its quiz reference.
func (s *AttemptService) Detail(ctx context.Context, callerID, attemptID string) (domain.AttemptDetail, error) {
	attempt, quiz, err := s.ownedAttempt(ctx, callerID, attemptID)
	if err != nil {
		return domain.AttemptDetail{}, err
	}
	return domain.AttemptDetail{
		ID:      attempt.ID,
		Quiz:    domain.QuizRef{ID: quiz.ID, Title: quiz.Title},
		Score:   attempt.Score,
		Total:   attempt.TotalQuestions,
		Answers: attempt.Answers,
	}, nil
}

// ownedAttempt fetches the attempt, checks ownership, then fetches its quiz.
func (s *AttemptService) ownedAttempt(ctx context.Context, callerID, attemptID string) (domain.Attempt, domain.Quiz, error) {
	if callerID == "" {
		return domain.Attempt{}, domain.Quiz{}, domain.ErrUnauthenticated
	}
	attempt, err := s.attempts.GetAttempt(ctx, attemptID)
	if err != nil {
		return domain.Attempt{}, domain.Quiz{}, err
	}
	if err := authorizeAttempt(attempt, callerID); err != nil {
		return domain.Attempt{}, domain.Quiz{}, err
	}
	quiz, err := s.quizzes.GetQuiz(ctx, attempt.QuizID)
	if err != nil {
		return domain.Attempt{}, domain.Quiz{}, err
	}
	return attempt, quiz, nil
}

// ListMine returns the caller's attempts, newest first. Attempts whose quiz
// has been removed are listed with an empty title.
func (s *AttemptService) ListMine(ctx context.Context, callerID string) ([]domain.AttemptSummary, error) {
	if callerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	attempts, err := s.attempts.ListByUser(ctx, callerID)
	if err != nil {
		return nil, err
	}

	titles := make(map[string]string)
	summaries := make([]domain.AttemptSummary, 0, len(attempts))
	for _, attempt := range attempts {
		title, ok := titles[attempt.QuizID]
		if !ok {
			quiz, err := s.quizzes.GetQuiz(ctx, attempt.QuizID)
			switch {
			case err == nil:
				title = quiz.Title
			case errors.Is(err, domain.ErrQuizNotFound):
			default:
				return nil, err
			}
			titles[attempt.QuizID] = title
		}
		summaries = append(summaries, domain.AttemptSummary{
			ID:          attempt.ID,
			Quiz:        domain.QuizRef{ID: attempt.QuizID, Title: title},
			Score:       attempt.Score,
			Total:       len(attempt.Answers),
			AttemptedAt: attempt.AttemptedAt,
		})
	}
	return summaries, nil
}

// Stats aggregates the caller's attempt history.
func (s *AttemptService) Stats(ctx context.Context, callerID string) (domain.AttemptStats, error) {
	if callerID == "" {
		return domain.AttemptStats{}, domain.ErrUnauthenticated
	}
	attempts, err := s.attempts.ListByUser(ctx, callerID)
	if err != nil {
		return domain.AttemptStats{}, err
	}
	return summarize(attempts), nil
}

// Leaderboard returns the top attempts of a quiz. It requires no identity.
func (s *AttemptService) Leaderboard(ctx context.Context, quizID string, limit int) (domain.Leaderboard, error) {
	if limit == 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit < 0 || limit > MaxLeaderboardLimit {
		return domain.Leaderboard{}, domain.Validation("limit must be between 1 and %d", MaxLeaderboardLimit)
	}

	var (
		gen       int64
		cacheable bool
	)
	if s.cache != nil {
		if board, ok := s.cache.Get(ctx, quizID, limit); ok {
			s.recorder.LeaderboardServed(true)
			return board, nil
		}
		var err error
		gen, err = s.cache.Generation(ctx, quizID)
		if err != nil {
			s.log.Warn("leaderboard cache generation read failed", zap.String("quiz_id", quizID), zap.Error(err))
		}
		cacheable = err == nil
	}

	board, err := s.rank(ctx, quizID, limit)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	if cacheable {
		s.cache.Set(ctx, gen, limit, board)
	}
	s.recorder.LeaderboardServed(false)
	return board, nil
}

func (s *AttemptService) rank(ctx context.Context, quizID string, limit int) (domain.Leaderboard, error) {
	candidates, err := s.attempts.ListByQuiz(ctx, quizID, limit)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	ranked := rankAttempts(candidates, limit)

	ids := make([]string, 0, len(ranked))
	for _, attempt := range ranked {
		ids = append(ids, attempt.UserID)
	}
	users, err := s.users.GetUsers(ctx, ids)
	if err != nil {
		return domain.Leaderboard{}, err
	}

	entries := make([]domain.LeaderboardEntry, 0, len(ranked))
	for _, attempt := range ranked {
		entries = append(entries, domain.LeaderboardEntry{
			Username:       users[attempt.UserID].Username,
			Score:          attempt.Score,
			TotalQuestions: attempt.TotalQuestions,
			AttemptedAt:    attempt.AttemptedAt,
		})
	}
	return domain.Leaderboard{QuizID: quizID, Entries: entries}, nil
}
