package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"introxpection-quiz/internal/analytics"
	"introxpection-quiz/internal/app"
	"introxpection-quiz/internal/config"
	"introxpection-quiz/internal/engine"
	"introxpection-quiz/internal/infra/file"
	"introxpection-quiz/internal/infra/memory"
	pgstore "introxpection-quiz/internal/infra/postgres"
	redisstore "introxpection-quiz/internal/infra/redis"
	transport "introxpection-quiz/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
)

// quizSource is a loader that can also list what it offers.
type quizSource interface {
	memory.QuizLoader
	app.Catalog
}

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
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("redis ping failed: %v", err)
		}
	}
	redisTTL := config.Duration(cfg.Redis.TTL, 10*time.Minute)

	var (
		pool  *pgxpool.Pool
		bunDB *bun.DB
	)
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		bunDB = openBun(cfg.Postgres.URL)
		defer bunDB.Close()
	}

	var source quizSource
	switch {
	case pool != nil:
		source = pgstore.NewQuizLoader(pool)
	case cfg.Quiz.Dir != "":
		source = file.NewLoader(cfg.Quiz.Dir)
	default:
		source = memory.NewStaticQuizLoader(sampleQuizzes())
	}

	quizTTL := config.Duration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisstore.NewQuizRepository(redisClient, source, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(source, quizTTL)
	}

	var attempts app.AttemptRepository
	if redisClient != nil {
		attempts = redisstore.NewAttemptStore(redisClient, redisTTL)
	} else {
		attempts = memory.NewAttemptStore()
	}

	var stats analytics.StatsStore
	switch {
	case bunDB != nil:
		stats = pgstore.NewStatsStore(bunDB)
	case redisClient != nil:
		stats = redisstore.NewStatsStore(redisClient)
	default:
		stats = memory.NewStatsStore()
	}
	reporter := analytics.NewAsyncReporter(stats, cfg.Analytics.QueueSize, cfg.Analytics.Workers)
	reporter.Start()

	service := app.NewPlayService(quizRepo, attempts, stats, reporter)
	service.SetCatalog(source)

	autoAdvance := config.Duration(cfg.Server.AutoAdvance, engine.DefaultAutoAdvanceDelay)
	wsHandler := transport.NewWSHandler(service, autoAdvance).WithKeepAlive(redisTTL / 2)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(service, wsHandler, cfg.Server.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s (auto-advance %s)", finalPort, autoAdvance)
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
	err = server.Shutdown(shutdownCtx)
	// Sockets are hijacked and outlive Shutdown; they may still complete
	// attempts, so the reporter closes only after they are gone.
	if wsErr := wsHandler.Shutdown(shutdownCtx); wsErr != nil {
		log.Printf("waiting for websocket handlers: %v", wsErr)
	}
	reporter.Close()
	return err
}
