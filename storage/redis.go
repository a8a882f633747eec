package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"EchoFM/config"
	"EchoFM/model"
)

// RedisStore persists engine state in Redis: named stores as hashes, listen
// history as a capped list (newest first), favorites as a set.
type RedisStore struct {
	client       *redis.Client
	prefix       string
	historyLimit int
}

// ConnectRedis opens and pings a Redis client from config.
func ConnectRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisStore wraps a connected client. historyLimit bounds the retained
// listen history (<= 0 means unbounded).
func NewRedisStore(client *redis.Client, historyLimit int) *RedisStore {
	return &RedisStore{
		client:       client,
		prefix:       "echofm",
		historyLimit: historyLimit,
	}
}

func (s *RedisStore) storeKey(store string) string {
	return fmt.Sprintf("%s:store:%s", s.prefix, store)
}

func (s *RedisStore) historyKey() string {
	return fmt.Sprintf("%s:history", s.prefix)
}

func (s *RedisStore) favoritesKey() string {
	return fmt.Sprintf("%s:favorites", s.prefix)
}

func (s *RedisStore) Get(ctx context.Context, store, key string) ([]byte, error) {
	val, err := s.client.HGet(ctx, s.storeKey(store), key).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", store, key, err)
	}
	return []byte(val), nil
}

func (s *RedisStore) Set(ctx context.Context, store, key string, value []byte) error {
	if err := s.client.HSet(ctx, s.storeKey(store), key, value).Err(); err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", store, key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, store, key string) error {
	if err := s.client.HDel(ctx, s.storeKey(store), key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", store, key, err)
	}
	return nil
}

func (s *RedisStore) AppendHistory(ctx context.Context, entry model.HistoryEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}
	if err := s.client.LPush(ctx, s.historyKey(), payload).Err(); err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	if s.historyLimit > 0 {
		if err := s.client.LTrim(ctx, s.historyKey(), 0, int64(s.historyLimit-1)).Err(); err != nil {
			return fmt.Errorf("failed to trim history: %w", err)
		}
	}
	return nil
}

func (s *RedisStore) UpdateHistoryProgress(ctx context.Context, trackID int64, progress float64, completed bool) error {
	items, err := s.client.LRange(ctx, s.historyKey(), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	for i, raw := range items {
		var entry model.HistoryEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			continue
		}
		if entry.TrackID != trackID {
			continue
		}
		entry.Progress = progress
		entry.Completed = completed
		payload, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal history entry: %w", err)
		}
		if err := s.client.LSet(ctx, s.historyKey(), int64(i), payload).Err(); err != nil {
			return fmt.Errorf("failed to update history entry: %w", err)
		}
		return nil
	}
	return nil
}

func (s *RedisStore) RecentHistory(ctx context.Context, n int) ([]model.HistoryEntry, error) {
	stop := int64(-1)
	if n > 0 {
		stop = int64(n - 1)
	}
	items, err := s.client.LRange(ctx, s.historyKey(), 0, stop).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	entries := make([]model.HistoryEntry, 0, len(items))
	for _, raw := range items {
		var entry model.HistoryEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			// Skip entries a newer or older build wrote differently.
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *RedisStore) ClearHistory(ctx context.Context) error {
	if err := s.client.Del(ctx, s.historyKey()).Err(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (s *RedisStore) AddFavorite(ctx context.Context, trackID int64) error {
	if err := s.client.SAdd(ctx, s.favoritesKey(), trackID).Err(); err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

func (s *RedisStore) RemoveFavorite(ctx context.Context, trackID int64) error {
	if err := s.client.SRem(ctx, s.favoritesKey(), trackID).Err(); err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

func (s *RedisStore) Favorites(ctx context.Context) ([]int64, error) {
	members, err := s.client.SMembers(ctx, s.favoritesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
