package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"eventure-gateway/internal/models"

	"github.com/redis/go-redis/v9"
)

const intentKeyPrefix = "booking_intent:"

// RedisIntentStore keeps the intent slot in Redis. There is no TTL on the
// slot: the intent stays valid until consumed or explicitly cleared, however
// long the user lingers on the processor's site.
type RedisIntentStore struct {
	client *redis.Client
}

// NewRedisIntentStore creates a new Redis-backed intent store
func NewRedisIntentStore(client *redis.Client) *RedisIntentStore {
	return &RedisIntentStore{client: client}
}

func intentKey(sessionKey string) string {
	return intentKeyPrefix + sessionKey
}

func (s *RedisIntentStore) Save(ctx context.Context, sessionKey string, intent *models.BookingIntent) error {
	payload, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("failed to marshal booking intent: %w", err)
	}

	if err := s.client.Set(ctx, intentKey(sessionKey), payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to save booking intent: %w", err)
	}

	return nil
}

func (s *RedisIntentStore) Load(ctx context.Context, sessionKey string) (*models.BookingIntent, error) {
	payload, err := s.client.Get(ctx, intentKey(sessionKey)).Bytes()
	if err == redis.Nil {
		return &models.BookingIntent{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking intent: %w", err)
	}

	return decodeIntent(payload), nil
}

func (s *RedisIntentStore) Take(ctx context.Context, sessionKey string) (*models.BookingIntent, error) {
	payload, err := s.client.GetDel(ctx, intentKey(sessionKey)).Bytes()
	if err == redis.Nil {
		return nil, models.ErrNoIntent
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take booking intent: %w", err)
	}

	intent := decodeIntent(payload)
	if intent.IsEmpty() {
		return nil, models.ErrNoIntent
	}
	return intent, nil
}

func (s *RedisIntentStore) Clear(ctx context.Context, sessionKey string) error {
	if err := s.client.Del(ctx, intentKey(sessionKey)).Err(); err != nil {
		return fmt.Errorf("failed to clear booking intent: %w", err)
	}
	return nil
}
