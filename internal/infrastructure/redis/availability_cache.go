package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// AvailabilityCache はリソースの空き在庫数を短時間キャッシュする
// 表示用の値であり、confirm の在庫判定には使わない
type AvailabilityCache struct {
	client redis.Cmdable
}

func NewAvailabilityCache(client redis.Cmdable) *AvailabilityCache {
	return &AvailabilityCache{client: client}
}

// GetAvailable は空き在庫数をキャッシュから取得する
func (c *AvailabilityCache) GetAvailable(ctx context.Context, resourceID string) (int, error) {
	val, err := c.client.Get(ctx, availabilityKey(resourceID)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

// SetAvailable は空き在庫数をキャッシュに保存する
func (c *AvailabilityCache) SetAvailable(ctx context.Context, resourceID string, count int, ttl time.Duration) error {
	if err := c.client.Set(ctx, availabilityKey(resourceID), count, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate は在庫が変わったリソースのキャッシュを削除する
func (c *AvailabilityCache) Invalidate(ctx context.Context, resourceID string) error {
	if err := c.client.Del(ctx, availabilityKey(resourceID)).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func availabilityKey(resourceID string) string {
	return keyPrefix + "availability:" + resourceID
}
