package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"studybuddy/backend/catalog"
	"studybuddy/backend/database"
)

func favoritesKey(owner string) string {
	return "favorites:" + owner
}

func decodeFavorites(raw string) ([]string, error) {
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("malformed favorites value: %w", err)
	}
	return ids, nil
}

func encodeFavorites(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	return string(data), err
}

// SQLiteFavoritesStore keeps one owner's favorites as a JSON array in the
// kv_store table.
type SQLiteFavoritesStore struct {
	owner string
}

func NewSQLiteFavoritesStore(owner string) *SQLiteFavoritesStore {
	return &SQLiteFavoritesStore{owner: owner}
}

func (s *SQLiteFavoritesStore) Load(ctx context.Context) ([]string, error) {
	var raw string
	err := database.DB.QueryRowContext(ctx, "SELECT value FROM kv_store WHERE key = ?", favoritesKey(s.owner)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	return decodeFavorites(raw)
}

func (s *SQLiteFavoritesStore) Save(ctx context.Context, ids []string) error {
	raw, err := encodeFavorites(ids)
	if err != nil {
		return err
	}
	_, err = database.DB.ExecContext(ctx, `
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		favoritesKey(s.owner), raw, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save favorites: %w", err)
	}
	return nil
}

// RedisFavoritesStore keeps favorites under the same key layout in Redis.
type RedisFavoritesStore struct {
	client *redis.Client
	owner  string
}

func NewRedisFavoritesStore(client *redis.Client, owner string) *RedisFavoritesStore {
	return &RedisFavoritesStore{client: client, owner: owner}
}

func (s *RedisFavoritesStore) Load(ctx context.Context) ([]string, error) {
	raw, err := s.client.Get(ctx, favoritesKey(s.owner)).Result()
	if errors.Is(err, redis.Nil) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	return decodeFavorites(raw)
}

func (s *RedisFavoritesStore) Save(ctx context.Context, ids []string) error {
	raw, err := encodeFavorites(ids)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, favoritesKey(s.owner), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save favorites: %w", err)
	}
	return nil
}

// ConnectRedis parses url, connects and pings the server.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Printf("Connected to Redis at %s", opt.Addr)
	return client, nil
}

// FavoritesFactory hands out the favorites store for an owner, backed by
// Redis when a client is configured and SQLite otherwise.
type FavoritesFactory struct {
	Redis *redis.Client
}

func (f FavoritesFactory) For(owner string) catalog.FavoritesStore {
	if f.Redis != nil {
		return NewRedisFavoritesStore(f.Redis, owner)
	}
	return NewSQLiteFavoritesStore(owner)
}

var (
	_ catalog.FavoritesStore = (*SQLiteFavoritesStore)(nil)
	_ catalog.FavoritesStore = (*RedisFavoritesStore)(nil)
)
