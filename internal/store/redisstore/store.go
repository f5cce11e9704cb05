// Package redisstore caches derived per-user statistics (heatmap, daily
// stats) so repeated dashboard loads skip recomputation. Entries are
// invalidated on any session or blocker write.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(addr, password string, db int, ttl time.Duration) *Store {
	return &Store{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl: ttl,
	}
}

func statsKey(userID uint64, name string) string {
	return fmt.Sprintf("vibelog:stats:%d:%s", userID, name)
}

// GetStats loads a cached value into out; returns false on a miss.
// Cache errors are reported as misses so a redis outage never breaks
// the stats endpoints.
func (s *Store) GetStats(ctx context.Context, userID uint64, name string, out any) bool {
	data, err := s.rdb.Get(ctx, statsKey(userID, name)).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

func (s *Store) SetStats(ctx context.Context, userID uint64, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, statsKey(userID, name), data, s.ttl).Err()
}

// InvalidateStats drops every cached stat for the user.
func (s *Store) InvalidateStats(ctx context.Context, userID uint64) error {
	pattern := fmt.Sprintf("vibelog:stats:%d:*", userID)
	iter := s.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}

func (s *Store) Close() error { return s.rdb.Close() }
