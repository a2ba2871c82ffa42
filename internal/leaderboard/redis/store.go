package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/typerace-go/internal/leaderboard"
)

// Store is a Redis-backed implementation of the leaderboard interface.
// Entries live in a sorted set scored by WPM, with the JSON-encoded entry
// as the member.
type Store struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis leaderboard store
func New(cfg Config) (*Store, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Store{client: client, cfg: cfg}, nil
}

// NewWithClient creates a Redis store with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Store {
	return &Store{client: client, cfg: cfg}
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

// Ensure Store implements the interface
var _ leaderboard.Store = (*Store)(nil)

func (s *Store) Record(ctx context.Context, e leaderboard.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	return s.client.ZAdd(ctx, leaderboardKey(), redis.Z{
		Score:  float64(e.WPM),
		Member: string(data),
	}).Err()
}

func (s *Store) Top(ctx context.Context, n int) ([]leaderboard.Entry, error) {
	members, err := s.client.ZRevRange(ctx, leaderboardKey(), 0, int64(n)-1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]leaderboard.Entry, 0, len(members))
	for _, m := range members {
		var e leaderboard.Entry
		if err := json.Unmarshal([]byte(m), &e); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *Store) Size(ctx context.Context) (int, error) {
	n, err := s.client.ZCard(ctx, leaderboardKey()).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
