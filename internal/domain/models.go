package domain

import "time"

// Question is an index-addressed multiple-choice question embedded in a quiz.
type Question struct {
	Text               string   `json:"questionText"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
}

// Quiz is an ordered collection of questions. Question order is significant:
// attempts store answers positionally against it.
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Category  string     `json:"category"`
	OwnerID   string     `json:"ownerId"`
	Questions []Question `json:"questions"`
	IsPublic  bool       `json:"isPublic"`
	CreatedAt time.Time  `json:"createdAt"`
}

// User is the identity record behind a caller id.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Attempt is the immutable record of one scored submission.
type Attempt struct {
	ID             string    `json:"id"`
	QuizID         string    `json:"quizId"`
	UserID         string    `json:"userId"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	Answers        []int     `json:"answers"`
	AttemptedAt    time.Time `json:"attemptedAt"`
}

// SubmitResult is returned straight from scoring, not re-read from storage.
type SubmitResult struct {
	AttemptID      string `json:"attemptId"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"totalQuestions"`
}

// ReviewItem is the per-question breakdown of a reviewed attempt.
type ReviewItem struct {
	QuestionText        string   `json:"questionText"`
	Options             []string `json:"options"`
	CorrectAnswerIndex  int      `json:"correctAnswerIndex"`
	SelectedAnswerIndex int      `json:"selectedAnswerIndex"`
	IsCorrect           bool     `json:"isCorrect"`
}

// AttemptReview is the full review of one attempt in quiz question order.
type AttemptReview struct {
	Score          int          `json:"score"`
	TotalQuestions int          `json:"totalQuestions"`
	Review         []ReviewItem `json:"review"`
}

// QuizRef is the minimal quiz projection embedded in attempt views.
type QuizRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// AttemptDetail is the owner's view of a single attempt.
type AttemptDetail struct {
	ID      string  `json:"id"`
	Quiz    QuizRef `json:"quiz"`
	Score   int     `json:"score"`
	Total   int     `json:"total"`
	Answers []int   `json:"answers"`
}

// AttemptSummary is one row of the caller's attempt history.
type AttemptSummary struct {
	ID          string    `json:"id"`
	Quiz        QuizRef   `json:"quiz"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	AttemptedAt time.Time `json:"attemptedAt"`
}

// AttemptStats aggregates a caller's history.
type AttemptStats struct {
	Attempts       int     `json:"attempts"`
	QuizzesTaken   int     `json:"quizzesTaken"`
	BestScore      int     `json:"bestScore"`
	AveragePercent float64 `json:"averagePercent"`
}

// LeaderboardEntry is a public projection of a ranked attempt.
type LeaderboardEntry struct {
	Username       string    `json:"username"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	AttemptedAt    time.Time `json:"attemptedAt"`
}

// Leaderboard captures the ranked top attempts of a quiz.
type Leaderboard struct {
	QuizID  string             `json:"quizId"`
	Entries []LeaderboardEntry `json:"entries"`
}

// QuizSummary is the catalog listing row.
type QuizSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	OwnerID   string    `json:"creator"`
	CreatedAt time.Time `json:"createdAt"`
}

// PublicQuestion hides the correct answer from quiz takers.
type PublicQuestion struct {
	Text    string   `json:"questionText"`
	Options []string `json:"options"`
}

// PublicQuiz is the quiz view served to takers.
type PublicQuiz struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Category  string           `json:"category"`
	Questions []PublicQuestion `json:"questions"`
}

// Public strips correct answers from the quiz.
func (q Quiz) Public() PublicQuiz {
	questions := make([]PublicQuestion, 0, len(q.Questions))
	for _, question := range q.Questions {
		questions = append(questions, PublicQuestion{Text: question.Text, Options: question.Options})
	}
	return PublicQuiz{ID: q.ID, Title: q.Title, Category: q.Category, Questions: questions}
}

// Summary projects the quiz into a catalog row.
func (q Quiz) Summary() QuizSummary {
	return QuizSummary{ID: q.ID, Title: q.Title, Category: q.Category, OwnerID: q.OwnerID, CreatedAt: q.CreatedAt}
}
