package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wricardo/mcp-training/pushbox/game/service"
)

// DefaultRedisPrefix namespaces session keys
const DefaultRedisPrefix = "pushbox"

// RedisPersistence stores each session under <prefix>:session:<id> and keeps
// the ids in the set <prefix>:sessions
type RedisPersistence struct {
	client  *redis.Client
	levels  service.LevelManager
	prefix  string
	ttl     time.Duration
	timeout time.Duration
}

var _ Persistence = (*RedisPersistence)(nil)

// RedisOptions configures RedisPersistence
type RedisOptions struct {
	// Prefix defaults to DefaultRedisPrefix
	Prefix string
	// TTL expires sessions that are not saved again in time. Zero keeps
	// them forever.
	TTL time.Duration
	// Timeout bounds every Redis call, default 2s
	Timeout time.Duration
}

// NewRedisPersistence checks the connection and returns a Redis-backed store
func NewRedisPersistence(client *redis.Client, levels service.LevelManager, opts RedisOptions) (*RedisPersistence, error) {
	if opts.Prefix == "" {
		opts.Prefix = DefaultRedisPrefix
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}

	rp := &RedisPersistence{
		client:  client,
		levels:  levels,
		prefix:  opts.Prefix,
		ttl:     opts.TTL,
		timeout: opts.Timeout,
	}

	ctx, cancel := rp.ctx()
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}
	return rp, nil
}

// Save writes the session and adds it to the index
func (rp *RedisPersistence) Save(session *service.Session) error {
	data, err := encodeSession(session)
	if err != nil {
		return err
	}

	ctx, cancel := rp.ctx()
	defer cancel()

	id := strings.ToLower(session.ID)
	pipe := rp.client.TxPipeline()
	pipe.Set(ctx, rp.key(id), data, rp.ttl)
	pipe.SAdd(ctx, rp.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save session to redis: %w", err)
	}
	return nil
}

// Load retrieves a session by ID
func (rp *RedisPersistence) Load(id string) (*service.Session, error) {
	ctx, cancel := rp.ctx()
	defer cancel()

	data, err := rp.client.Get(ctx, rp.key(strings.ToLower(id))).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session from redis: %w", err)
	}

	return decodeSession(data, rp.levels)
}

// Delete removes the session and its index entry
func (rp *RedisPersistence) Delete(id string) error {
	ctx, cancel := rp.ctx()
	defer cancel()

	id = strings.ToLower(id)
	removed, err := rp.client.Del(ctx, rp.key(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	if err := rp.client.SRem(ctx, rp.indexKey(), id).Err(); err != nil {
		return fmt.Errorf("failed to update redis session index: %w", err)
	}
	if removed == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return nil
}

// ListAll returns the indexed ids whose keys still exist. Ids whose keys
// expired are pruned from the index.
func (rp *RedisPersistence) ListAll() ([]string, error) {
	ctx, cancel := rp.ctx()
	defer cancel()

	ids, err := rp.client.SMembers(ctx, rp.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions in redis: %w", err)
	}

	live := make([]string, 0, len(ids))
	for _, id := range ids {
		n, err := rp.client.Exists(ctx, rp.key(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to check session in redis: %w", err)
		}
		if n == 0 {
			rp.client.SRem(ctx, rp.indexKey(), id)
			continue
		}
		live = append(live, id)
	}
	return live, nil
}

// Exists checks if a session key exists
func (rp *RedisPersistence) Exists(id string) bool {
	ctx, cancel := rp.ctx()
	defer cancel()

	n, err := rp.client.Exists(ctx, rp.key(strings.ToLower(id))).Result()
	return err == nil && n > 0
}

func (rp *RedisPersistence) key(id string) string {
	return rp.prefix + ":session:" + id
}

func (rp *RedisPersistence) indexKey() string {
	return rp.prefix + ":sessions"
}

func (rp *RedisPersistence) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), rp.timeout)
}
