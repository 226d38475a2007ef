package auth

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// RefreshStore keeps single-use refresh tokens.
type RefreshStore interface {
	Issue(ctx context.Context, userID int) (string, error)
	// Consume returns the token's user and invalidates the token.
	Consume(ctx context.Context, token string) (int, error)
}

type refreshEntry struct {
	userID  int
	expires time.Time
}

type MemoryRefreshStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	tokens map[string]refreshEntry
}

func NewMemoryRefreshStore(ttl time.Duration) *MemoryRefreshStore {
	return &MemoryRefreshStore{ttl: ttl, tokens: map[string]refreshEntry{}}
}

func (s *MemoryRefreshStore) Issue(_ context.Context, userID int) (string, error) {
	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = refreshEntry{userID: userID, expires: time.Now().Add(s.ttl)}
	s.mu.Unlock()
	return token, nil
}

func (s *MemoryRefreshStore) Consume(_ context.Context, token string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tokens[token]
	if !ok || time.Now().After(entry.expires) {
		delete(s.tokens, token)
		return 0, ErrRefreshTokenNotFound
	}
	delete(s.tokens, token)
	return entry.userID, nil
}

// StartRefreshTokenCleaner drops expired tokens every interval until ctx ends.
func (s *MemoryRefreshStore) StartRefreshTokenCleaner(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for token, entry := range s.tokens {
				if now.After(entry.expires) {
					delete(s.tokens, token)
				}
			}
			s.mu.Unlock()
		}
	}
}

const refreshKeyPrefix = "auth:refresh:"

// RedisRefreshStore relies on key expiry, so it needs no cleaner.
type RedisRefreshStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisRefreshStore(rdb *redis.Client, ttl time.Duration) *RedisRefreshStore {
	return &RedisRefreshStore{rdb: rdb, ttl: ttl}
}

func (s *RedisRefreshStore) Issue(ctx context.Context, userID int) (string, error) {
	token := uuid.NewString()
	if err := s.rdb.Set(ctx, refreshKeyPrefix+token, userID, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (s *RedisRefreshStore) Consume(ctx context.Context, token string) (int, error) {
	val, err := s.rdb.GetDel(ctx, refreshKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrRefreshTokenNotFound
	}
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(val)
}
