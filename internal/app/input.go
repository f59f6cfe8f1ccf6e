package app

import (
	"strings"

	"quizarena-service/internal/domain"
)

// SubmitInput is a parsed attempt submission.
type SubmitInput struct {
	QuizID  string
	Answers []int
}

// Validate checks the quiz reference only. Answers are checked against the
// quiz during scoring, after the quiz has resolved, so an unknown quiz is
// reported as not found even when answers are missing.
func (in SubmitInput) Validate() error {
	if strings.TrimSpace(in.QuizID) == "" {
		return domain.Validation("quizId is required")
	}
	return nil
}

// QuestionInput is one question of a quiz being authored.
type QuestionInput struct {
	Text               string
	Options            []string
	CorrectAnswerIndex int
}

// CreateQuizInput is a parsed quiz authoring request.
type CreateQuizInput struct {
	Title     string
	Category  string
	IsPublic  *bool
	Questions []QuestionInput
}

const defaultCategory = "General"

// Validate enforces that every question is answerable.
func (in CreateQuizInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" || len(in.Questions) == 0 {
		return domain.Validation("title and questions are required")
	}
	for i, q := range in.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return domain.Validation("question %d: text is required", i+1)
		}
		if len(q.Options) < 2 {
			return domain.Validation("question %d: at least two options are required", i+1)
		}
		if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex >= len(q.Options) {
			return domain.Validation("question %d: correct answer index out of range", i+1)
		}
	}
	return nil
}

// CredentialsInput carries register/login fields.
type CredentialsInput struct {
	Username string
	Password string
}

const minUsernameLength = 3

func (in CredentialsInput) Validate() error {
	if strings.TrimSpace(in.Username) == "" || in.Password == "" {
		return domain.Validation("missing username or password")
	}
	return nil
}
