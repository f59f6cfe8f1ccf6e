package app

import (
	"sort"

	"quizarena-service/internal/domain"
)

// scoreAnswers counts positions where the selected option equals the correct
// one. answers must cover every question exactly once.
func scoreAnswers(quiz domain.Quiz, answers []int) (int, error) {
	if len(answers) != len(quiz.Questions) {
		return 0, domain.ErrAnswerCountMismatch
	}
	score := 0
	for i, question := range quiz.Questions {
		if question.CorrectAnswerIndex == answers[i] {
			score++
		}
	}
	return score, nil
}

// buildReview rebuilds the per-question breakdown in quiz order.
func buildReview(quiz domain.Quiz, attempt domain.Attempt) domain.AttemptReview {
	items := make([]domain.ReviewItem, 0, len(quiz.Questions))
	for i, question := range quiz.Questions {
		// -1 marks a question added after the attempt was recorded.
		selected := -1
		if i < len(attempt.Answers) {
			selected = attempt.Answers[i]
		}
		items = append(items, domain.ReviewItem{
			QuestionText:        question.Text,
			Options:             question.Options,
			CorrectAnswerIndex:  question.CorrectAnswerIndex,
			SelectedAnswerIndex: selected,
			IsCorrect:           question.CorrectAnswerIndex == selected,
		})
	}
	return domain.AttemptReview{
		Score:          attempt.Score,
		TotalQuestions: attempt.TotalQuestions,
		Review:         items,
	}
}

// rankAttempts orders by score desc, then earliest attempt, then id, and
// truncates to limit. The input slice is not modified.
func rankAttempts(attempts []domain.Attempt, limit int) []domain.Attempt {
	ranked := make([]domain.Attempt, len(attempts))
	copy(ranked, attempts)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if !ranked[i].AttemptedAt.Equal(ranked[j].AttemptedAt) {
			return ranked[i].AttemptedAt.Before(ranked[j].AttemptedAt)
		}
		return ranked[i].ID < ranked[j].ID
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// summarize aggregates a user's attempt history.
func summarize(attempts []domain.Attempt) domain.AttemptStats {
	stats := domain.AttemptStats{Attempts: len(attempts)}
	if len(attempts) == 0 {
		return stats
	}
	quizzes := make(map[string]struct{}, len(attempts))
	var percentSum float64
	for _, attempt := range attempts {
		quizzes[attempt.QuizID] = struct{}{}
		if attempt.Score > stats.BestScore {
			stats.BestScore = attempt.Score
		}
		if attempt.TotalQuestions > 0 {
			percentSum += float64(attempt.Score) * 100 / float64(attempt.TotalQuestions)
		}
	}
	stats.QuizzesTaken = len(quizzes)
	stats.AveragePercent = percentSum / float64(len(attempts))
	return stats
}
