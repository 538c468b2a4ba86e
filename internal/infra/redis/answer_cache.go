package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"stratoguide/internal/domain/ports/repository"
	"stratoguide/internal/infra/metrics"
)

var _ repository.AnswerCache = (*AnswerCache)(nil)

const answerKeyPrefix = "answer:"

// AnswerCache stores answers under a hash of the normalized query.
type AnswerCache struct {
	client RedisClient
	ttl    time.Duration
}

func NewAnswerCache(client RedisClient, ttl time.Duration) *AnswerCache {
	return &AnswerCache{client: client, ttl: ttl}
}

func (c *AnswerCache) Get(ctx context.Context, query string) (string, bool, error) {
	v, err := c.client.Get(ctx, AnswerKey(query))
	switch {
	case errors.Is(err, redis.Nil):
		metrics.IncCacheRequest("answer", "miss")
		return "", false, nil
	case err != nil:
		metrics.IncCacheRequest("answer", "error")
		return "", false, err
	}
	metrics.IncCacheRequest("answer", "hit")
	return v, true, nil
}

func (c *AnswerCache) Set(ctx context.Context, query, answer string) error {
	return c.client.Set(ctx, AnswerKey(query), answer, c.ttl)
}

// AnswerKey folds case and whitespace so trivially different phrasings share an entry.
func AnswerKey(query string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	sum := sha256.Sum256([]byte(norm))
	return answerKeyPrefix + hex.EncodeToString(sum[:])
}
