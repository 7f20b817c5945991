package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"chat-trivia-service/internal/app"
	pgloader "chat-trivia-service/internal/infra/postgres"
	pgmigrations "chat-trivia-service/internal/infra/postgres/migrations"
	infraredis "chat-trivia-service/internal/infra/redis"
	"chat-trivia-service/internal/quiz"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

const chatReply = "Here is a quiz for you:\n```json\n" +
	`{"title":"Capitals","questions":[{"question":"Capital of Japan?","correct":"Tokyo","incorrect":["Osaka","Kyoto"]},{"question":"Capital of Canada?","correct":"Ottawa","incorrect":["Toronto"]}]}` +
	"\n```"

func TestSaveAndPlayEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgloader.NewTriviaLoader(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	sets := infraredis.NewTriviaRepository(redisClient, loader, 5*time.Minute)
	sessions := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	service := app.NewTriviaService(sets, sessions, nil)

	set, err := service.SaveFromText(ctx, chatReply)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	stored, err := loader.LoadSet(ctx, set.ID)
	if err != nil {
		t.Fatalf("load from postgres: %v", err)
	}
	if stored.Title != "Capitals" || len(stored.Questions) != 2 {
		t.Fatalf("unexpected stored set %+v", stored)
	}

	var description string
	notifier := quiz.NotifierFunc(func(_, d string) { description = d })
	_, session, err := service.OpenSession(ctx, set.ID, notifier)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}

	session.Start()
	session.SelectAnswer("Tokyo")
	session.Advance()
	session.SelectAnswer("Toronto")
	outcome, _ := session.Advance()

	if !outcome.Finished || outcome.Score != 1 || outcome.Perfect {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if description != "You scored 1 out of 2" {
		t.Fatalf("unexpected notification %q", description)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "trivia", "POSTGRES_PASSWORD": "triviapass", "POSTGRES_DB": "triviadb"},
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
	dsn := fmt.Sprintf("postgres://trivia:triviapass@%s:%s/triviadb?sslmode=disable", host, port.Port())
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

func migrateDB(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	// postgres may accept TCP before it accepts queries
	var lastErr error
	for i := 0; i < 20; i++ {
		if lastErr = runMigrations(ctx, dsn); lastErr == nil {
			return
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("migrate: %v", lastErr)
}

func runMigrations(ctx context.Context, dsn string) error {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return err
	}
	_, err := migrator.Migrate(ctx)
	return err
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
