package redis

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"time"

	"introxpection-quiz/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuizLoader fetches quiz definitions from a backing store (files, Postgres).
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Definition, error)
}

// QuizRepository caches definitions in Redis and falls back to a loader on
// cache miss. Each definition is stored as JSON:
//
//	SET quiz:{quizID}:definition {json} EX {ttl}
type QuizRepository struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuizRepository(client *redis.Client, loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.Definition, error) {
	key := r.definitionKey(quizID)

	if def, ok := r.cached(ctx, key); ok {
		return def, nil
	}

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if def, ok := r.cached(ctx, key); ok {
			return def, nil
		}

		def, err := r.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Definition{}, err
		}

		data, err := json.Marshal(def)
		if err != nil {
			return domain.Definition{}, err
		}
		if err := r.client.Set(ctx, key, data, r.ttlWithJitter()).Err(); err != nil {
			log.Printf("redis: cache quiz %s: %v", quizID, err)
		}
		return def, nil
	})
	if err != nil {
		return domain.Definition{}, err
	}
	return result.(domain.Definition), nil
}

// Invalidate removes the cached definition.
func (r *QuizRepository) Invalidate(ctx context.Context, quizID string) error {
	return r.client.Del(ctx, r.definitionKey(quizID)).Err()
}

func (r *QuizRepository) cached(ctx context.Context, key string) (domain.Definition, bool) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.Definition{}, false
	}
	var def domain.Definition
	if err := json.Unmarshal(data, &def); err != nil {
		log.Printf("redis: corrupt cached definition %s: %v", key, err)
		return domain.Definition{}, false
	}
	return def, true
}

func (r *QuizRepository) definitionKey(quizID string) string {
	return "quiz:" + quizID + ":definition"
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
