package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/url-shortener/internal/shortener"
)

// insertScript stores the mapping only if the owner has no mapping for the code,
// and records its position in the owner's creation order.
var insertScript = redis.NewScript(`
if redis.call("HSETNX", KEYS[1], ARGV[1], ARGV[2]) == 0 then
	return 0
end
local seq = redis.call("INCR", KEYS[3])
redis.call("ZADD", KEYS[2], seq, ARGV[1])
return 1
`)

var deleteScript = redis.NewScript(`
if redis.call("HDEL", KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call("ZREM", KEYS[2], ARGV[1])
return 1
`)

// RedisStore is a Redis implementation of shortener.Repository.
// Each owner has a hash of code -> mapping and a sorted set holding creation
// order. All keys of one owner share a hash tag so scripts stay on one slot.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a new Redis-backed mapping store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "shortener:",
	}
}

type redisMapping struct {
	ID        string    `json:"id"`
	LongURL   string    `json:"longUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r *RedisStore) keys(owner shortener.OwnerID) []string {
	tag := "{" + string(owner) + "}"

	return []string{
		r.prefix + tag + ":codes",
		r.prefix + tag + ":order",
		r.prefix + tag + ":seq",
	}
}

func (r *RedisStore) Insert(ctx context.Context, m *shortener.Mapping) error {
	payload, err := json.Marshal(redisMapping{
		ID:        m.ID.String(),
		LongURL:   m.LongURL,
		CreatedAt: m.CreatedAt,
	})
	if err != nil {
		return err
	}

	inserted, err := insertScript.Run(ctx, r.client, r.keys(m.Owner), string(m.Code), payload).Int()
	if err != nil {
		return err
	}

	if inserted == 0 {
		return shortener.ErrCodeAlreadyTaken
	}

	return nil
}

func (r *RedisStore) Get(ctx context.Context, owner shortener.OwnerID, code shortener.Code) (*shortener.Mapping, error) {
	payload, err := r.client.HGet(ctx, r.keys(owner)[0], string(code)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return decodeRedisMapping(owner, code, payload)
}

func (r *RedisStore) List(ctx context.Context, owner shortener.OwnerID) ([]*shortener.Mapping, error) {
	keys := r.keys(owner)

	codes, err := r.client.ZRange(ctx, keys[1], 0, -1).Result()
	if err != nil {
		return nil, err
	}

	mappings := make([]*shortener.Mapping, 0, len(codes))
	if len(codes) == 0 {
		return mappings, nil
	}

	payloads, err := r.client.HMGet(ctx, keys[0], codes...).Result()
	if err != nil {
		return nil, err
	}

	for i, raw := range payloads {
		payload, ok := raw.(string)
		if !ok {
			// deleted between ZRANGE and HMGET
			continue
		}

		m, err := decodeRedisMapping(owner, shortener.Code(codes[i]), payload)
		if err != nil {
			return nil, err
		}

		mappings = append(mappings, m)
	}

	return mappings, nil
}

func (r *RedisStore) Delete(ctx context.Context, owner shortener.OwnerID, code shortener.Code) error {
	deleted, err := deleteScript.Run(ctx, r.client, r.keys(owner)[:2], string(code)).Int()
	if err != nil {
		return err
	}

	if deleted == 0 {
		return shortener.ErrNotFound
	}

	return nil
}

// Ping checks Redis connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func decodeRedisMapping(owner shortener.OwnerID, code shortener.Code, payload string) (*shortener.Mapping, error) {
	var stored redisMapping
	if err := json.Unmarshal([]byte(payload), &stored); err != nil {
		return nil, fmt.Errorf("decode mapping %s/%s: %w", owner, code, err)
	}

	id, err := uuid.Parse(stored.ID)
	if err != nil {
		return nil, fmt.Errorf("decode mapping %s/%s: %w", owner, code, err)
	}

	return &shortener.Mapping{
		ID:        id,
		Owner:     owner,
		LongURL:   stored.LongURL,
		Code:      code,
		CreatedAt: stored.CreatedAt.UTC(),
	}, nil
}

// Compile-time check.
var _ shortener.Repository = (*RedisStore)(nil)
