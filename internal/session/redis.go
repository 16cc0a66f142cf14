package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clubware/askbridge/internal/conversation"
)

// Redis is a session store over a redis instance. Sessions are stored as
// JSON values with a native key TTL, so expiry needs no sweeping.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a redis-backed session store. It pings the server so a
// misconfigured address fails at startup, not on the first conversation.
func NewRedis(ctx context.Context, client *redis.Client, ttl time.Duration) (*Redis, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &Redis{client: client, ttl: ttl}, nil
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("askbridge:session:%d", userID)
}

// Get implements Store.
func (r *Redis) Get(ctx context.Context, userID int64) (*conversation.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session for user %d: %w", userID, err)
	}

	var sess conversation.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session for user %d: %w", userID, err)
	}
	return &sess, nil
}

// Put implements Store.
func (r *Redis) Put(ctx context.Context, userID int64, sess *conversation.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session for user %d: %w", userID, err)
	}
	if err := r.client.Set(ctx, sessionKey(userID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session for user %d: %w", userID, err)
	}
	return nil
}

// Delete implements Store.
func (r *Redis) Delete(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session for user %d: %w", userID, err)
	}
	return nil
}
