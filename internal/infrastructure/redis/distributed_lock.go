package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockNotAcquired = errors.New("ロックを取得できませんでした")
	ErrLockNotOwned    = errors.New("ロックの所有者ではありません")
)

// 所有者確認と削除をアトミックに実行する
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

const extendScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
else
	return 0
end
`

// LockObserver はロック操作の所要時間を受け取る
type LockObserver interface {
	ObserveLock(operation string, ok bool, elapsed time.Duration)
}

// DistributedLock は Redis を使用した分散ロック
type DistributedLock struct {
	client   redis.Cmdable
	key      string
	value    string
	ttl      time.Duration
	observer LockObserver
}

// LockManager は分散ロックを管理する
// 完了処理のバッチなど、複数プロセスのうち1つだけが実行すべき処理に使う
type LockManager struct {
	client   redis.Cmdable
	observer LockObserver
	newToken func() string
}

func NewLockManager(client redis.Cmdable, observer LockObserver) *LockManager {
	return &LockManager{
		client:   client,
		observer: observer,
		newToken: func() string { return uuid.New().String() },
	}
}

func lockKey(key string) string {
	return keyPrefix + "lock:" + key
}

// AcquireLock はロックを取得する
func (m *LockManager) AcquireLock(ctx context.Context, key string, ttl time.Duration) (*DistributedLock, error) {
	start := time.Now()
	k := lockKey(key)
	value := m.newToken()

	// SetNX を使用してロックを取得（キーが存在しない場合のみ設定）
	ok, err := m.client.SetNX(ctx, k, value, ttl).Result()
	m.observe("acquire", err == nil && ok, start)
	if err != nil {
		return nil, fmt.Errorf("ロック取得に失敗: %w", err)
	}
	if !ok {
		return nil, ErrLockNotAcquired
	}

	return &DistributedLock{
		client:   m.client,
		key:      k,
		value:    value,
		ttl:      ttl,
		observer: m.observer,
	}, nil
}

// WithLock はロックを取得できた場合のみ fn を実行し、終了後に解放する
// 他のプロセスが保持している場合は ErrLockNotAcquired を返す
func (m *LockManager) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	lock, err := m.AcquireLock(ctx, key, ttl)
	if err != nil {
		return err
	}
	fnErr := fn(ctx)
	// 実行中に TTL が切れて他者に渡った場合は ErrLockNotOwned になるが、fn の結果を優先する
	if err := lock.Release(context.WithoutCancel(ctx)); err != nil && fnErr == nil {
		return err
	}
	return fnErr
}

func (m *LockManager) observe(operation string, ok bool, start time.Time) {
	if m.observer != nil {
		m.observer.ObserveLock(operation, ok, time.Since(start))
	}
}

// Key はRedis上のキーを返す
func (l *DistributedLock) Key() string {
	return l.key
}

// Release はロックを解放する
func (l *DistributedLock) Release(ctx context.Context) error {
	start := time.Now()
	result, err := l.client.Eval(ctx, releaseScript, []string{l.key}, l.value).Int()
	if l.observer != nil {
		l.observer.ObserveLock("release", err == nil && result == 1, time.Since(start))
	}
	if err != nil {
		return fmt.Errorf("ロック解放に失敗: %w", err)
	}
	if result == 0 {
		return ErrLockNotOwned
	}
	return nil
}

// Extend はロックの有効期限を延長する
func (l *DistributedLock) Extend(ctx context.Context, ttl time.Duration) error {
	result, err := l.client.Eval(ctx, extendScript, []string{l.key}, l.value, ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("ロック延長に失敗: %w", err)
	}
	if result == 0 {
		return ErrLockNotOwned
	}
	l.ttl = ttl
	return nil
}
