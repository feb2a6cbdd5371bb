package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// repository.BoolCache のRedis実装
// 存在チェックの結果を "1"/"0" で持つ
type RedisBoolCache struct {
	client      *redis.Client
	serviceName string
}

func NewRedisBoolCache(addr string, serviceName string) *RedisBoolCache {
	return &RedisBoolCache{
		client:      redis.NewClient(&redis.Options{Addr: addr}),
		serviceName: serviceName,
	}
}

func (r *RedisBoolCache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader func(ctx context.Context) (bool, error)) (bool, error) {
	full := r.generateKey(key)

	v, err := r.client.Get(ctx, full).Result()
	if err == nil {
		return v == "1", nil
	}
	if err != redis.Nil {
		//Redisが落ちていてもDBで答えられる
		return loader(ctx)
	}

	//キャッシュミス：DBを引いて結果を保存
	b, err := loader(ctx)
	if err != nil {
		return false, err
	}

	val := "0"
	if b {
		val = "1"
	}
	_ = r.client.Set(ctx, full, val, ttl).Err()

	return b, nil
}

func (r *RedisBoolCache) Invalidate(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.generateKey(key)).Err()
}

func (r *RedisBoolCache) generateKey(key string) string {
	return fmt.Sprintf("%s:exists:%s", r.serviceName, key)
}
