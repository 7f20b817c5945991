package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-trivia-service/internal/app"
	"chat-trivia-service/internal/config"
	"chat-trivia-service/internal/domain"
	"chat-trivia-service/internal/infra/gemini"
	"chat-trivia-service/internal/infra/memory"
	pgloader "chat-trivia-service/internal/infra/postgres"
	redisinfra "chat-trivia-service/internal/infra/redis"
	"chat-trivia-service/internal/quiz"
	transport "chat-trivia-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var loader memory.TriviaLoader = memory.NewStaticTriviaLoader(sampleSets())
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		loader = pgloader.NewTriviaLoader(pool)
	}

	triviaTTL := config.TTLDuration(cfg.Trivia.TTL, 10*time.Minute)
	var sets app.TriviaRepository
	var sessions app.SessionRepository
	if redisClient != nil {
		sets = redisinfra.NewTriviaRepository(redisClient, loader, triviaTTL)
		sessions = redisinfra.NewSessionStore(redisClient, redisTTL)
	} else {
		sets = memory.NewTriviaRepository(loader, triviaTTL)
		sessions = memory.NewSessionStore()
	}

	var generator app.Generator
	gen, err := gemini.NewGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, config.TTLDuration(cfg.Gemini.Timeout, 30*time.Second))
	switch {
	case errors.Is(err, domain.ErrGeneratorDisabled):
		log.Printf("gemini api key not set, trivia generation disabled")
	case err != nil:
		return err
	default:
		defer gen.Close()
		generator = gen
	}

	service := app.NewTriviaService(sets, sessions, generator)
	router := transport.NewRouter(service, transport.WidgetConfig{
		ToastTTL: config.TTLDuration(cfg.Toast.TTL, 4*time.Second),
		Confetti: quiz.ConfettiConfig{
			Particles: cfg.Confetti.Particles,
			Frames:    cfg.Confetti.Frames,
		},
		FPS: cfg.Confetti.FPS,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting trivia service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleSets seeds the in-memory loader so the widget works without a database.
func sampleSets() map[string]domain.TriviaSet {
	return map[string]domain.TriviaSet{
		"sample": {
			ID:          "sample",
			Title:       "Warm-up",
			Description: "A couple of easy ones",
			Questions: []domain.TriviaQuestion{
				{
					Question:  "What is the capital of France?",
					Correct:   "Paris",
					Incorrect: []string{"Berlin", "Madrid", "Rome"},
				},
				{
					Question:  "What is 2 + 2?",
					Correct:   "4",
					Incorrect: []string{"3", "5", "22"},
				},
			},
		},
	}
}
