package auth

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

const tokenKeyPrefix = "runera:token:"

// RedisTokenStore keeps the session token in the device key-value
// store.
type RedisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func (s *RedisTokenStore) Get(ctx context.Context, walletAddress string) (string, error) {
	token, err := s.client.Get(ctx, tokenKeyPrefix+walletAddress).Result()
	if err == redis.Nil {
		return "", nil
	}
	return token, err
}

func (s *RedisTokenStore) Set(ctx context.Context, walletAddress, token string) error {
	return s.client.Set(ctx, tokenKeyPrefix+walletAddress, token, 0).Err()
}

func (s *RedisTokenStore) Clear(ctx context.Context, walletAddress string) error {
	return s.client.Del(ctx, tokenKeyPrefix+walletAddress).Err()
}

// MemoryTokenStore backs the credential cache when no key-value store
// is configured.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: map[string]string{}}
}

func (s *MemoryTokenStore) Get(_ context.Context, walletAddress string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[walletAddress], nil
}

func (s *MemoryTokenStore) Set(_ context.Context, walletAddress, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[walletAddress] = token
	return nil
}

func (s *MemoryTokenStore) Clear(_ context.Context, walletAddress string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, walletAddress)
	return nil
}
