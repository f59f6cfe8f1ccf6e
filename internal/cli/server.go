package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quizarena-service/internal/app"
	"quizarena-service/internal/auth"
	"quizarena-service/internal/config"
	"quizarena-service/internal/domain"
	"quizarena-service/internal/infra/memory"
	"quizarena-service/internal/infra/postgres"
	rediscache "quizarena-service/internal/infra/redis"
	"quizarena-service/internal/logger"
	"quizarena-service/internal/metrics"
	transport "quizarena-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// backends are the repositories chosen by configuration.
type backends struct {
	catalog  app.QuizCatalog
	loader   memory.QuizLoader
	attempts app.AttemptRepository
	users    app.UserRepository
	close    func()
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer log.Sync()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	store, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.close()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = rediscache.NewQuizRepository(redisClient, store.loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(store.loader, quizTTL)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	feed := app.NewLeaderboardFeed()

	opts := []app.Option{
		app.WithFeed(feed),
		app.WithRecorder(metrics.NewRecorder(registry)),
		app.WithLogger(log.Named("attempts")),
	}
	if redisClient != nil {
		boardTTL := config.TTLDuration(cfg.Leaderboard.TTL, time.Minute)
		opts = append(opts, app.WithLeaderboardCache(rediscache.NewLeaderboardCache(redisClient, boardTTL, log.Named("leaderboard-cache"))))
	}
	attempts := app.NewAttemptService(quizRepo, store.attempts, store.users, opts...)
	quizzes := app.NewQuizService(store.catalog, quizRepo)

	secret := cfg.Auth.Secret
	if secret == "" {
		secret = uuid.NewString()
		log.Warn("auth.secret not configured; tokens will not survive a restart")
	}
	tokens := auth.NewTokenIssuer(secret, config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour))
	authService := app.NewAuthService(store.users, tokens, cfg.Auth.BcryptCost)

	router := transport.NewRouter(transport.RouterDeps{
		Handler:    transport.NewHandler(attempts, quizzes, authService),
		WS:         transport.NewWSHandler(attempts, feed, log.Named("ws")),
		Auth:       authService,
		Metrics:    promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Log:        log.Named("http"),
		AuthLimit:  cfg.Auth.RateLimit,
		TrustProxy: cfg.Server.TrustProxy,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quiz service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openBackends uses Postgres when configured and falls back to in-memory
// stores seeded with a sample quiz.
func openBackends(ctx context.Context, cfg config.Config, log *zap.Logger) (backends, error) {
	if cfg.Postgres.URL == "" {
		log.Info("postgres not configured, using in-memory stores")
		quizStore := memory.NewQuizStore(sampleQuizzes()...)
		return backends{
			catalog:  quizStore,
			loader:   quizStore,
			attempts: memory.NewAttemptStore(),
			users:    memory.NewUserStore(),
			close:    func() {},
		}, nil
	}

	if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
		return backends{}, err
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return backends{}, err
	}
	db := postgres.NewDB(cfg.Postgres.URL)
	return backends{
		catalog:  postgres.NewQuizStore(db),
		loader:   postgres.NewQuizLoader(pool),
		attempts: postgres.NewAttemptStore(db),
		users:    postgres.NewUserStore(db),
		close: func() {
			pool.Close()
			_ = db.Close()
		},
	}, nil
}

func sampleQuizzes() []domain.Quiz {
	return []domain.Quiz{
		{
			ID:       "quiz-1",
			Title:    "Go Basics",
			Category: "Programming",
			OwnerID:  "system",
			IsPublic: true,
			Questions: []domain.Question{
				{Text: "Which keyword starts a goroutine?", Options: []string{"async", "go", "spawn"}, CorrectAnswerIndex: 1},
				{Text: "What does len(nil slice) return?", Options: []string{"0", "panic", "-1"}, CorrectAnswerIndex: 0},
				{Text: "Which package formats source code?", Options: []string{"go/ast", "go/types", "go/format"}, CorrectAnswerIndex: 2},
			},
			CreatedAt: time.Date(2024, 11, 22, 0, 0, 0, 0, time.UTC),
		},
	}
}
