package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yanqian/rencard-user/internal/domain/auth"
	"github.com/yanqian/rencard-user/pkg/util"
)

const minTTL = time.Second

// RedisStore persists sessions as JSON blobs whose key TTL tracks ExpiresAt.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore constructs a store; prefix defaults to "session".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "session"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Save(ctx context.Context, ticket auth.SessionTicket) error {
	payload, err := json.Marshal(ticket)
	if err != nil {
		return err
	}
	ttl := time.Until(ticket.ExpiresAt)
	if ttl < minTTL {
		ttl = minTTL
	}
	return s.client.Set(ctx, s.key(ticket.ID), payload, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, id string) (auth.SessionTicket, error) {
	payload, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return auth.SessionTicket{}, auth.ErrSessionNotFound
		}
		return auth.SessionTicket{}, err
	}
	var ticket auth.SessionTicket
	if err := json.Unmarshal(payload, &ticket); err != nil {
		return auth.SessionTicket{}, err
	}
	if ticket.Expired(util.NowUTC()) {
		return auth.SessionTicket{}, auth.ErrSessionNotFound
	}
	return ticket, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

func (s *RedisStore) key(id string) string {
	return s.prefix + ":" + id
}

var _ auth.SessionStore = (*RedisStore)(nil)
