package ledger

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

const (
	activitiesKeyPrefix = "runera:activities:"
	streakKeyPrefix     = "runera:streak:"
)

// Store is the Local Activity Ledger: append-only activity records
// plus the streak counter, keyed by wallet. There is no delete.
type Store interface {
	Append(ctx context.Context, walletAddress string, rec ActivityRecord) error
	List(ctx context.Context, walletAddress string) ([]ActivityRecord, error)
	Streak(ctx context.Context, walletAddress string) (StreakCounter, error)
	SetStreak(ctx context.Context, walletAddress string, streak StreakCounter) error
}

func ConnectRedis(addr, password string) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
}

// RedisStore keeps the ledger in the device key-value store.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Append(ctx context.Context, walletAddress string, rec ActivityRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.RPush(ctx, activitiesKeyPrefix+walletAddress, payload).Err()
}

func (s *RedisStore) List(ctx context.Context, walletAddress string) ([]ActivityRecord, error) {
	raw, err := s.client.LRange(ctx, activitiesKeyPrefix+walletAddress, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	records := make([]ActivityRecord, 0, len(raw))
	for _, item := range raw {
		var rec ActivityRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *RedisStore) Streak(ctx context.Context, walletAddress string) (StreakCounter, error) {
	raw, err := s.client.Get(ctx, streakKeyPrefix+walletAddress).Result()
	if err == redis.Nil {
		return StreakCounter{}, nil
	}
	if err != nil {
		return StreakCounter{}, err
	}

	var streak StreakCounter
	if err := json.Unmarshal([]byte(raw), &streak); err != nil {
		return StreakCounter{}, err
	}
	return streak, nil
}

func (s *RedisStore) SetStreak(ctx context.Context, walletAddress string, streak StreakCounter) error {
	payload, err := json.Marshal(streak)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, streakKeyPrefix+walletAddress, payload, 0).Err()
}

// GetValue and SetValue expose plain keys of the device store, used
// for the persisted install ID.
func (s *RedisStore) GetValue(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (s *RedisStore) SetValue(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, key, value, 0).Err()
}
