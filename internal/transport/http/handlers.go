package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"quizarena-service/internal/app"
	"quizarena-service/internal/domain"
)

// Handler serves the REST API on top of the application services.
type Handler struct {
	attempts *app.AttemptService
	quizzes  *app.QuizService
	auth     *app.AuthService
}

func NewHandler(attempts *app.AttemptService, quizzes *app.QuizService, auth *app.AuthService) *Handler {
	return &Handler{attempts: attempts, quizzes: quizzes, auth: auth}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (req credentialsRequest) input() app.CredentialsInput {
	return app.CredentialsInput{Username: req.Username, Password: req.Password}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	session, err := h.auth.Register(r.Context(), req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	session, err := h.auth.Login(r.Context(), req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

type questionRequest struct {
	QuestionText       string   `json:"questionText"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
}

type createQuizRequest struct {
	Title     string            `json:"title"`
	Category  string            `json:"category"`
	IsPublic  *bool             `json:"isPublic"`
	Questions []questionRequest `json:"questions"`
}

func (req createQuizRequest) input() app.CreateQuizInput {
	in := app.CreateQuizInput{
		Title:     req.Title,
		Category:  req.Category,
		IsPublic:  req.IsPublic,
		Questions: make([]app.QuestionInput, 0, len(req.Questions)),
	}
	for _, q := range req.Questions {
		in.Questions = append(in.Questions, app.QuestionInput{
			Text:               q.QuestionText,
			Options:            q.Options,
			CorrectAnswerIndex: q.CorrectAnswerIndex,
		})
	}
	return in
}

func (h *Handler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req createQuizRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	quiz, err := h.quizzes.Create(r.Context(), CallerID(r.Context()), req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz.Summary())
}

func (h *Handler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.quizzes.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.quizzes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

type submitAttemptRequest struct {
	QuizID  string `json:"quizId"`
	Answers []int  `json:"answers"`
}

func (h *Handler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	var req submitAttemptRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	result, err := h.attempts.Submit(r.Context(), CallerID(r.Context()), app.SubmitInput{
		QuizID:  req.QuizID,
		Answers: req.Answers,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) ReviewAttempt(w http.ResponseWriter, r *http.Request) {
	review, err := h.attempts.Review(r.Context(), CallerID(r.Context()), chi.URLParam(r, "attemptID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (h *Handler) AttemptDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.attempts.Detail(r.Context(), CallerID(r.Context()), chi.URLParam(r, "attemptID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) MyAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.attempts.ListMine(r.Context(), CallerID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attempts)
}

func (h *Handler) MyStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.attempts.Stats(r.Context(), CallerID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Leaderboard is public; it answers with the ranked entries only.
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, err)
		return
	}
	board, err := h.attempts.Leaderboard(r.Context(), chi.URLParam(r, "quizID"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board.Entries)
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, domain.Validation("limit must be a positive integer")
	}
	return limit, nil
}
