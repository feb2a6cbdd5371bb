package repository

import (
	"context"
	"time"
)

// 存在チェック用のread-throughキャッシュ（key → bool、TTL付き）
// DBの存在チェックをアノテーションではなく明示的に包むための約束
type BoolCache interface {
	//キャッシュにあればその値、なければloaderを呼んで結果をTTL付きで保存して返す
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader func(ctx context.Context) (bool, error)) (bool, error)

	//書き込み側が無効化に使う
	Invalidate(ctx context.Context, key string) error
}
