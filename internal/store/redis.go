package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// scanBatch is the HSCAN COUNT hint used for limited reads.
const scanBatch = 100

// RedisStore keeps each collection in one hash, key prefix+name, mapping
// document id to its JSON encoding.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps a connected client.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Collection(name string) Collection {
	return &redisCollection{client: s.client, name: name, key: s.prefix + name}
}

func (s *RedisStore) Driver() string { return "redis" }

func (s *RedisStore) Close() error { return s.client.Close() }

type redisCollection struct {
	client *redis.Client
	name   string
	key    string
}

func (c *redisCollection) Name() string { return c.name }

func (c *redisCollection) Get(ctx context.Context, id string) (Document, error) {
	raw, err := c.client.HGet(ctx, c.key, id).Result()
	if errors.Is(err, redis.Nil) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("hget %s %s: %w", c.key, id, err)
	}
	return decodeRedisDoc(id, raw)
}

func (c *redisCollection) Find(ctx context.Context, q Query) ([]Document, error) {
	// Without filters or ordering the first Limit entries are enough.
	if q.Limit > 0 && len(q.Filters) == 0 && q.OrderBy == "" {
		return c.scan(ctx, q.Limit)
	}

	all, err := c.client.HGetAll(ctx, c.key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", c.key, err)
	}

	docs := make([]Document, 0, len(all))
	for id, raw := range all {
		d, err := decodeRedisDoc(id, raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return apply(docs, q), nil
}

func (c *redisCollection) scan(ctx context.Context, limit int) ([]Document, error) {
	docs := make([]Document, 0, limit)
	var cursor uint64
	for {
		kvs, next, err := c.client.HScan(ctx, c.key, cursor, "*", scanBatch).Result()
		if err != nil {
			return nil, fmt.Errorf("hscan %s: %w", c.key, err)
		}
		for i := 0; i+1 < len(kvs) && len(docs) < limit; i += 2 {
			d, err := decodeRedisDoc(kvs[i], kvs[i+1])
			if err != nil {
				return nil, err
			}
			docs = append(docs, d)
		}
		if len(docs) >= limit || next == 0 {
			return docs, nil
		}
		cursor = next
	}
}

func (c *redisCollection) Add(ctx context.Context, data map[string]any) (Document, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Document{}, fmt.Errorf("encode document: %w", err)
	}

	id := uuid.NewString()
	if err = c.client.HSet(ctx, c.key, id, raw).Err(); err != nil {
		return Document{}, fmt.Errorf("hset %s %s: %w", c.key, id, err)
	}
	return decodeRedisDoc(id, string(raw))
}

// maxUpdateAttempts bounds the read-merge-swap loop in Update. Each failed
// swap means another writer changed the same document.
const maxUpdateAttempts = 100

// ErrUpdateConflict is returned when a document kept changing underneath
// Update for maxUpdateAttempts rounds.
var ErrUpdateConflict = errors.New("document changed concurrently")

// swapField replaces a hash field only while it still holds the expected
// value. Returns 1 on swap, 0 on mismatch and -1 when the field is gone.
var swapField = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], ARGV[1])
if not current then
	return -1
end
if current ~= ARGV[2] then
	return 0
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[3])
return 1
`)

// Update merges data into the stored document and swaps it in with
// swapField, so writers of other documents in the hash never conflict and
// writers of the same document retry on the fresh value.
func (c *redisCollection) Update(ctx context.Context, id string, data map[string]any) error {
	patch, err := Encode(data)
	if err != nil {
		return err
	}

	for range maxUpdateAttempts {
		raw, err := c.client.HGet(ctx, c.key, id).Result()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("hget %s %s: %w", c.key, id, err)
		}

		doc, err := decodeRedisDoc(id, raw)
		if err != nil {
			return err
		}
		for k, v := range patch {
			doc.Data[k] = v
		}
		merged, err := json.Marshal(doc.Data)
		if err != nil {
			return fmt.Errorf("encode document: %w", err)
		}

		res, err := swapField.Run(ctx, c.client, []string{c.key}, id, raw, string(merged)).Int()
		if err != nil {
			return fmt.Errorf("swap %s %s: %w", c.key, id, err)
		}
		switch res {
		case 1:
			return nil
		case -1:
			return ErrNotFound
		}
	}
	return fmt.Errorf("update %s %s: %w", c.key, id, ErrUpdateConflict)
}

func (c *redisCollection) Delete(ctx context.Context, id string) error {
	n, err := c.client.HDel(ctx, c.key, id).Result()
	if err != nil {
		return fmt.Errorf("hdel %s %s: %w", c.key, id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func decodeRedisDoc(id, raw string) (Document, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return Document{}, fmt.Errorf("decode document %s: %w", id, err)
	}
	return Document{ID: id, Data: data}, nil
}
