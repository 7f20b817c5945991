package redis

import (
	"context"
	"testing"
	"time"

	"chat-trivia-service/internal/domain"
	"chat-trivia-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestTriviaRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		TriviaLoader: memory.NewStaticTriviaLoader(map[string]domain.TriviaSet{
			"set-1": sampleSet(),
		}),
	}
	repo := NewTriviaRepository(client, loader, time.Minute)

	set, err := repo.GetSet(context.Background(), "set-1")
	if err != nil {
		t.Fatalf("get set: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("trivia:set:set-1") {
		t.Fatalf("expected set cached in redis")
	}

	// Second call should hit cache, loader not incremented.
	cached, err := repo.GetSet(context.Background(), "set-1")
	if err != nil {
		t.Fatalf("get cached set: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if cached.Questions[0].Correct != set.Questions[0].Correct || len(cached.Questions[0].Incorrect) != 2 {
		t.Fatalf("cached set differs: %+v", cached)
	}
}

func TestTriviaRepositorySaveWritesThrough(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{TriviaLoader: memory.NewStaticTriviaLoader(nil)}
	repo := NewTriviaRepository(newClient(mr), loader, time.Minute)

	if err := repo.SaveSet(context.Background(), sampleSet()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("trivia:set:set-1") {
		t.Fatalf("expected saved set cached")
	}
	if ttl := mr.TTL("trivia:set:set-1"); ttl < time.Minute {
		t.Fatalf("expected ttl of at least a minute, got %v", ttl)
	}

	mr.Del("trivia:set:set-1")
	if _, err := repo.GetSet(context.Background(), "set-1"); err != nil {
		t.Fatalf("expected loader fallback, got %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader fallback once, got %d", loader.calls)
	}
}

type countingLoader struct {
	memory.TriviaLoader
	calls int
}

func (l *countingLoader) LoadSet(ctx context.Context, id string) (domain.TriviaSet, error) {
	l.calls++
	return l.TriviaLoader.LoadSet(ctx, id)
}

func sampleSet() domain.TriviaSet {
	return domain.TriviaSet{
		ID: "set-1",
		Questions: []domain.TriviaQuestion{
			{Question: "What is 2 + 2?", Correct: "4", Incorrect: []string{"3", "5"}},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
