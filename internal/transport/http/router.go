package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RouterDeps collects what the HTTP surface needs.
type RouterDeps struct {
	Handler   *Handler
	WS        *WSHandler
	Auth      Authenticator
	Metrics   http.Handler
	Log       *zap.Logger
	AuthLimit int // register/login requests per minute per IP
	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP.
	// Leave it off unless a reverse proxy overwrites those headers.
	TrustProxy bool
}

func NewRouter(deps RouterDeps) http.Handler {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	h := deps.Handler
	requireAuth := RequireAuth(deps.Auth)
	authLimiter := NewRateLimiter(deps.AuthLimit)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	if deps.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(RequestLogger(log))
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}
	if deps.WS != nil {
		r.Get("/ws/leaderboard", deps.WS.ServeWS)
	}

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
		})

		r.Route("/quizzes", func(r chi.Router) {
			r.Get("/", h.ListQuizzes)
			r.Get("/{id}", h.GetQuiz)
			r.With(requireAuth).Post("/", h.CreateQuiz)
		})

		r.Route("/attempts", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", h.SubmitAttempt)
			r.Get("/mine", h.MyAttempts)
			r.Get("/stats", h.MyStats)
			r.Get("/review/{attemptID}", h.ReviewAttempt)
			r.Get("/{attemptID}", h.AttemptDetail)
		})

		r.Get("/leaderboard/{quizID}", h.Leaderboard)
	})

	return r
}
