package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/meditrack-ph/meditrack-backend/pkg/redis"
)

// guardedSetScript skips the write when the stored stamp is newer, so two
// devices racing on the same document resolve to the latest mutation.
const guardedSetScript = `
local cur = redis.call('GET', KEYS[1])
if cur then
  local ok, obj = pcall(cjson.decode, cur)
  if ok and obj.stamp_ms and tonumber(obj.stamp_ms) > tonumber(ARGV[2]) then
    return 0
  end
end
redis.call('SET', KEYS[1], ARGV[1])
return 1
`

// indexAppendScript keeps indexes as lists so members come back in the
// order they were first added. Re-adding a member leaves its position alone.
const indexAppendScript = `
if redis.call('LPOS', KEYS[1], ARGV[1]) == false then
  redis.call('RPUSH', KEYS[1], ARGV[1])
end
return 1
`

type redisCommands interface {
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	LRem(ctx context.Context, key string, count int64, member any) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	Eval(ctx context.Context, script string, keys []string, args ...any) (any, error)
	BuildKey(parts ...string) string
}

// RedisStore persists documents as namespaced JSON strings in redis.
type RedisStore struct {
	client redisCommands
}

// NewRedisStore wraps the shared redis client as a document store.
func NewRedisStore(client *redis.Client) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Upsert(ctx context.Context, key string, doc any, stamp time.Time) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document %s: %w", key, err)
	}
	env, err := json.Marshal(envelope{StampMS: stamp.UnixMilli(), Doc: raw})
	if err != nil {
		return fmt.Errorf("encoding envelope %s: %w", key, err)
	}
	_, err = s.client.Eval(ctx, guardedSetScript, []string{s.client.BuildKey("doc", key)}, string(env), stamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("upserting document %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string, dest any) error {
	raw, err := s.client.Get(ctx, s.client.BuildKey("doc", key))
	if err != nil {
		if redis.IsNil(err) {
			return ErrNotFound
		}
		return fmt.Errorf("reading document %s: %w", key, err)
	}
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return fmt.Errorf("decoding envelope %s: %w", key, err)
	}
	if err := json.Unmarshal(env.Doc, dest); err != nil {
		return fmt.Errorf("decoding document %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.client.BuildKey("doc", key)); err != nil {
		return fmt.Errorf("deleting document %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) AddToIndex(ctx context.Context, index, key string) error {
	_, err := s.client.Eval(ctx, indexAppendScript, []string{s.client.BuildKey("idx", index)}, key)
	return err
}

func (s *RedisStore) RemoveFromIndex(ctx context.Context, index, key string) error {
	return s.client.LRem(ctx, s.client.BuildKey("idx", index), 0, key)
}

func (s *RedisStore) ListIndex(ctx context.Context, index string) ([]string, error) {
	return s.client.LRange(ctx, s.client.BuildKey("idx", index), 0, -1)
}
