package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"introxpection-quiz/internal/analytics"
	"introxpection-quiz/internal/app"
	"introxpection-quiz/internal/domain"
	pgstore "introxpection-quiz/internal/infra/postgres"
	pgmigrations "introxpection-quiz/internal/infra/postgres/migrations"
	infraredis "introxpection-quiz/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestPlayAttemptEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := migrateDB(t, ctx, pgURL)
	defer db.Close()

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgstore.NewQuizLoader(pool)
	if err := loader.SaveQuiz(ctx, sampleQuiz()); err != nil {
		t.Fatalf("save quiz: %v", err)
	}
	list, err := loader.ListQuizzes(ctx)
	if err != nil {
		t.Fatalf("list quizzes: %v", err)
	}
	if len(list) != 1 || list[0].ID != "pets" || list[0].Questions != 2 {
		t.Fatalf("unexpected catalog %+v", list)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	quizRepo := infraredis.NewQuizRepository(redisClient, loader, 5*time.Minute)
	attempts := infraredis.NewAttemptStore(redisClient, 5*time.Minute)
	stats := pgstore.NewStatsStore(db)
	reporter := analytics.NewAsyncReporter(stats, 8, 1)
	reporter.Start()

	service := app.NewPlayService(quizRepo, attempts, stats, reporter)
	service.SetCatalog(loader)

	attempt, err := service.Start(ctx, "pets", nil, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if n := service.Active("pets"); n != 1 {
		t.Fatalf("expected one active attempt, got %d", n)
	}

	e := attempt.Engine
	if err := e.SelectAndAdvance(1); err != nil {
		t.Fatalf("answer q1: %v", err)
	}
	if err := e.SelectAndAdvance(0); err != nil {
		t.Fatalf("answer q2: %v", err)
	}
	result, ok := e.Result()
	if !ok || result.Profile.ID != "cat" {
		t.Fatalf("expected cat, got %+v (complete=%v)", result, ok)
	}

	// Close flushes the queued completion to Postgres.
	reporter.Close()
	service.Finish(attempt.ID)

	got, err := service.Stats(ctx, "pets")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if got.Completions != 1 || got.Results["cat"] != 1 {
		t.Fatalf("unexpected stats %+v", got)
	}
	if n := service.Active("pets"); n != 0 {
		t.Fatalf("expected no active attempts, got %d", n)
	}

	// Second load comes from the Redis cache even if Postgres changes underneath.
	if _, err := pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, "pets"); err != nil {
		t.Fatalf("delete quiz: %v", err)
	}
	if _, err := quizRepo.GetQuiz(ctx, "pets"); err != nil {
		t.Fatalf("expected cached quiz, got %v", err)
	}
	if err := quizRepo.Invalidate(ctx, "pets"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := quizRepo.GetQuiz(ctx, "pets"); err == nil {
		t.Fatalf("expected quiz not found after invalidation")
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateDB(t *testing.T, ctx context.Context, dsn string) *bun.DB {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func sampleQuiz() domain.Definition {
	return domain.Definition{
		ID:    "pets",
		Title: "Which pet are you?",
		Questions: []domain.Question{
			{
				Text: "Saturday morning?",
				Answers: []domain.Answer{
					{Text: "Run in the park", Scores: map[string]int{"dog": 2}},
					{Text: "Sleep in", Scores: map[string]int{"cat": 2}},
				},
			},
			{
				Text: "Guests arrive.",
				Answers: []domain.Answer{
					{Text: "Watch from a distance", Scores: map[string]int{"cat": 1}},
					{Text: "Greet everyone", Scores: map[string]int{"dog": 1}},
				},
			},
		},
		Profiles: []domain.Profile{
			{ID: "dog", Name: "Dog"},
			{ID: "cat", Name: "Cat"},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
