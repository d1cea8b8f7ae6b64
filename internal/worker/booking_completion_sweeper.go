package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	infraredis "github.com/sanosuguru/nomado-booking-ledger/internal/infrastructure/redis"
	"github.com/sanosuguru/nomado-booking-ledger/internal/pkg/logger"
)

// sweepLockKey は複数インスタンスで同時に掃引しないためのロックキー
const sweepLockKey = "worker:booking-completion"

// BookingCompleter は利用終了した確定済み予約を完了にするインターフェース
type BookingCompleter interface {
	CompleteElapsedBookings(ctx context.Context, now time.Time) (int, error)
}

// Locker はインスタンス間の排他を提供する
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error
}

// BookingCompletionSweeper は利用最終日を過ぎた確定済み予約を定期的に利用完了にするワーカー
type BookingCompletionSweeper struct {
	completer BookingCompleter
	locker    Locker
	interval  time.Duration
	now       func() time.Time
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewBookingCompletionSweeper は新しいスイーパーを作成
// locker が nil の場合は排他せずに実行する
func NewBookingCompletionSweeper(bc BookingCompleter, locker Locker, interval time.Duration) *BookingCompletionSweeper {
	return &BookingCompletionSweeper{
		completer: bc,
		locker:    locker,
		interval:  interval,
		now:       time.Now,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start はスイーパーを開始
func (s *BookingCompletionSweeper) Start(ctx context.Context) {
	logger.Info("予約完了スイーパー開始", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("予約完了スイーパー停止（コンテキストキャンセル）")
			return
		case <-s.stopCh:
			logger.Info("予約完了スイーパー停止（シグナル受信）")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop はスイーパーを停止
func (s *BookingCompletionSweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

func (s *BookingCompletionSweeper) sweep(ctx context.Context) {
	log := logger.Get()
	log.Debug("予約完了の掃引開始")

	var count int
	run := func(ctx context.Context) error {
		var err error
		count, err = s.completer.CompleteElapsedBookings(ctx, s.now())
		return err
	}

	var err error
	if s.locker != nil {
		err = s.locker.WithLock(ctx, sweepLockKey, s.interval, run)
	} else {
		err = run(ctx)
	}

	switch {
	case errors.Is(err, infraredis.ErrLockNotAcquired):
		log.Debug("他のインスタンスが掃引中")
		return
	case err != nil:
		// 一部だけ失敗した場合も完了件数は記録する
		log.Error("予約完了の掃引失敗", zap.Int("count", count), zap.Error(err))
		return
	}

	if count > 0 {
		log.Info("利用終了した予約を完了", zap.Int("count", count))
	} else {
		log.Debug("完了対象の予約なし")
	}
}
