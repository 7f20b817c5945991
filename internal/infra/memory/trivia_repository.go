package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"chat-trivia-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// TriviaLoader reads and writes trivia sets in a backing store (e.g., Postgres).
type TriviaLoader interface {
	LoadSet(ctx context.Context, id string) (domain.TriviaSet, error)
	SaveSet(ctx context.Context, set domain.TriviaSet) error
}

// TriviaRepository caches trivia sets with TTL to avoid repeated DB hits.
type TriviaRepository struct {
	loader TriviaLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.Mutex
	rnd   *rand.Rand
	cache map[string]cachedSet
}

type cachedSet struct {
	set       domain.TriviaSet
	expiresAt time.Time
}

func NewTriviaRepository(loader TriviaLoader, ttl time.Duration) *TriviaRepository {
	return &TriviaRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedSet),
	}
}

func (r *TriviaRepository) GetSet(ctx context.Context, id string) (domain.TriviaSet, error) {
	if set, ok := r.cached(id); ok {
		return set, nil
	}

	result, err, _ := r.sf.Do(id, func() (interface{}, error) {
		if set, ok := r.cached(id); ok {
			return set, nil
		}
		set, err := r.loader.LoadSet(ctx, id)
		if err != nil {
			return domain.TriviaSet{}, err
		}
		r.store(set)
		return set, nil
	})
	if err != nil {
		return domain.TriviaSet{}, err
	}
	return result.(domain.TriviaSet), nil
}

// SaveSet writes through to the loader and warms the cache.
func (r *TriviaRepository) SaveSet(ctx context.Context, set domain.TriviaSet) error {
	if err := r.loader.SaveSet(ctx, set); err != nil {
		return err
	}
	r.store(set)
	return nil
}

func (r *TriviaRepository) cached(id string) (domain.TriviaSet, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.cache[id]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return domain.TriviaSet{}, false
	}
	return entry.set, true
}

func (r *TriviaRepository) store(set domain.TriviaSet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[set.ID] = cachedSet{
		set:       set,
		expiresAt: r.clock().Add(r.ttlWithJitterLocked()),
	}
}

func (r *TriviaRepository) ttlWithJitterLocked() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticTriviaLoader is a loader backed by an in-memory map (useful for tests/demos).
type StaticTriviaLoader struct {
	mu   sync.RWMutex
	sets map[string]domain.TriviaSet
}

func NewStaticTriviaLoader(sets map[string]domain.TriviaSet) *StaticTriviaLoader {
	copied := make(map[string]domain.TriviaSet, len(sets))
	for id, set := range sets {
		copied[id] = set
	}
	return &StaticTriviaLoader{sets: copied}
}

func (l *StaticTriviaLoader) LoadSet(_ context.Context, id string) (domain.TriviaSet, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if set, ok := l.sets[id]; ok {
		return set, nil
	}
	return domain.TriviaSet{}, domain.ErrTriviaSetNotFound
}

func (l *StaticTriviaLoader) SaveSet(_ context.Context, set domain.TriviaSet) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sets[set.ID] = set
	return nil
}
