package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shiftboard/hours-import/internal/domain"
)

// RedisStore 把会话序列化为 JSON 存到 redis，过期交给 redis 自己处理
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(id string) string {
	return fmt.Sprintf("hours_import_session_%s", id)
}

func (r *RedisStore) Put(ctx context.Context, id string, s *domain.ImportSession) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}

	data, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, redisKey(id), data, r.ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, id string) (*domain.ImportSession, error) {
	return decodeSession(r.client.Get(ctx, redisKey(id)).Bytes())
}

// Take 依赖 GETDEL（redis >= 6.2）
func (r *RedisStore) Take(ctx context.Context, id string) (*domain.ImportSession, error) {
	return decodeSession(r.client.GetDel(ctx, redisKey(id)).Bytes())
}

func decodeSession(data []byte, err error) (*domain.ImportSession, error) {
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s := &domain.ImportSession{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, redisKey(id)).Err()
}

// ReclaimExpired 什么也不做，key 会在 TTL 到期后被 redis 删除
func (r *RedisStore) ReclaimExpired(_ context.Context) (int, error) {
	return 0, nil
}
