package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"chat-trivia-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// TriviaLoader reads and writes trivia sets in a backing store (e.g., Postgres).
type TriviaLoader interface {
	LoadSet(ctx context.Context, id string) (domain.TriviaSet, error)
	SaveSet(ctx context.Context, set domain.TriviaSet) error
}

// TriviaRepository caches whole trivia sets in Redis and falls back to a loader on cache miss.
// Sets are stored as JSON: SET trivia:set:{id} {json} EX ttl
type TriviaRepository struct {
	client *redis.Client
	loader TriviaLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewTriviaRepository(client *redis.Client, loader TriviaLoader, ttl time.Duration) *TriviaRepository {
	return &TriviaRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *TriviaRepository) GetSet(ctx context.Context, id string) (domain.TriviaSet, error) {
	if set, ok := r.cached(ctx, id); ok {
		return set, nil
	}

	result, err, _ := r.sf.Do(id, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if set, ok := r.cached(ctx, id); ok {
			return set, nil
		}
		set, err := r.loader.LoadSet(ctx, id)
		if err != nil {
			return domain.TriviaSet{}, err
		}
		r.store(ctx, set)
		return set, nil
	})
	if err != nil {
		return domain.TriviaSet{}, err
	}
	return result.(domain.TriviaSet), nil
}

// SaveSet writes through to the loader, then caches the set.
func (r *TriviaRepository) SaveSet(ctx context.Context, set domain.TriviaSet) error {
	if err := r.loader.SaveSet(ctx, set); err != nil {
		return err
	}
	r.store(ctx, set)
	return nil
}

func (r *TriviaRepository) cached(ctx context.Context, id string) (domain.TriviaSet, bool) {
	raw, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		return domain.TriviaSet{}, false
	}
	var set domain.TriviaSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return domain.TriviaSet{}, false
	}
	return set, true
}

// store is best effort; a failed write only costs a reload later.
func (r *TriviaRepository) store(ctx context.Context, set domain.TriviaSet) {
	data, err := json.Marshal(set)
	if err != nil {
		return
	}
	_ = r.client.Set(ctx, r.key(set.ID), data, r.ttlWithJitter()).Err()
}

func (r *TriviaRepository) key(id string) string {
	return "trivia:set:" + id
}

func (r *TriviaRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
