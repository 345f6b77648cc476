package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jonathan/interview-planner/internal/planner"
)

const (
	defaultKeyPrefix = "interview:session:"
	maxUpdateRetries = 5
)

// RedisOptions configures a RedisStore
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	// TTL expires sessions that are not touched; zero keeps them until deleted
	TTL time.Duration
}

// RedisStore keeps JSON-encoded sessions in Redis so several API instances can share them.
type RedisStore struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return newRedisStore(rdb, opts), nil
}

func newRedisStore(rdb *goredis.Client, opts RedisOptions) *RedisStore {
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: opts.TTL}
}

func (r *RedisStore) key(id string) string {
	return r.prefix + id
}

// Create implements Store.
func (r *RedisStore) Create(ctx context.Context, s *planner.Session) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("session id is required")
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	ok, err := r.rdb.SetNX(ctx, r.key(s.ID), raw, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to create session %s: %w", s.ID, err)
	}
	if !ok {
		return ErrExists
	}
	return nil
}

// Get implements Store.
func (r *RedisStore) Get(ctx context.Context, id string) (*planner.Session, error) {
	raw, err := r.rdb.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}
	return decodeSession(raw)
}

// Update implements Store with an optimistic WATCH/MULTI transaction, retried when
// another writer touches the same session first. fn may therefore run more than once.
func (r *RedisStore) Update(ctx context.Context, id string, fn func(*planner.Session) error) error {
	return r.watch(ctx, id, fn, func(pipe goredis.Pipeliner, key string, s *planner.Session) error {
		updated, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to encode session: %w", err)
		}
		pipe.Set(ctx, key, updated, r.ttl)
		return nil
	})
}

// Take implements Store. The read, fn, and DEL run in one WATCH/MULTI transaction;
// like Update, fn is re-run when the session changes underneath it.
func (r *RedisStore) Take(ctx context.Context, id string, fn func(*planner.Session) error) error {
	return r.watch(ctx, id, fn, func(pipe goredis.Pipeliner, key string, _ *planner.Session) error {
		pipe.Del(ctx, key)
		return nil
	})
}

// watch loads the session under WATCH, applies fn, and queues write in a MULTI block.
func (r *RedisStore) watch(
	ctx context.Context,
	id string,
	fn func(*planner.Session) error,
	write func(pipe goredis.Pipeliner, key string, s *planner.Session) error,
) error {
	key := r.key(id)

	txf := func(tx *goredis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, goredis.Nil) {
				return ErrNotFound
			}
			return err
		}
		s, err := decodeSession(raw)
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			return write(pipe, key, s)
		})
		return err
	}

	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		err := r.rdb.Watch(ctx, txf, key)
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("failed to update session %s: %w", id, err)
		}
		return err
	}
	return fmt.Errorf("failed to update session %s: too much contention", id)
}

// Len implements Store by scanning the key prefix.
func (r *RedisStore) Len(ctx context.Context) (int, error) {
	count := 0
	iter := r.rdb.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

// Close implements Store.
func (r *RedisStore) Close() error {
	return r.rdb.Close()
}

func decodeSession(raw []byte) (*planner.Session, error) {
	var s planner.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid stored session: %w", err)
	}
	return &s, nil
}
