package guestcart

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"grocerfront/internal/domain"
)

const cartKeyPrefix = "guestcart:"

// DefaultTTL bounds how long an abandoned guest cart is kept around.
const DefaultTTL = 30 * 24 * time.Hour

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

func NewRedisStore(client *redis.Client, ttl time.Duration, logger *log.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &RedisStore{client: client, ttl: ttl, logger: logger}
}

func (s *RedisStore) Load(ctx context.Context, anonymousID string) []domain.LineItem {
	raw, err := s.client.Get(ctx, cartKeyPrefix+anonymousID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Printf("guestcart: load anonymous_id=%s error=%v", anonymousID, err)
		}
		return nil
	}
	var items []domain.LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		// Corrupt payload is treated as an empty cart, never surfaced.
		s.logger.Printf("guestcart: corrupt cart anonymous_id=%s error=%v", anonymousID, err)
		return nil
	}
	return items
}

func (s *RedisStore) Save(ctx context.Context, anonymousID string, items []domain.LineItem) {
	raw, err := json.Marshal(items)
	if err != nil {
		s.logger.Printf("guestcart: marshal anonymous_id=%s error=%v", anonymousID, err)
		return
	}
	if err := s.client.Set(ctx, cartKeyPrefix+anonymousID, raw, s.ttl).Err(); err != nil {
		s.logger.Printf("guestcart: save anonymous_id=%s error=%v", anonymousID, err)
	}
}

func (s *RedisStore) Clear(ctx context.Context, anonymousID string) {
	if err := s.client.Del(ctx, cartKeyPrefix+anonymousID).Err(); err != nil {
		s.logger.Printf("guestcart: clear anonymous_id=%s error=%v", anonymousID, err)
	}
}
