package application

import (
	"context"
	"time"

	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/booking"
)

// AvailabilityCache は空き在庫数の表示用キャッシュ
type AvailabilityCache interface {
	GetAvailable(ctx context.Context, resourceID string) (int, error)
	SetAvailable(ctx context.Context, resourceID string, count int, ttl time.Duration) error
	Invalidate(ctx context.Context, resourceID string) error
}

// EventPublisher はコミット済みの予約イベントを外部に通知する
type EventPublisher interface {
	PublishBookingEvent(ctx context.Context, event booking.Event) error
}

// Recorder は台帳操作のメトリクスを記録する
type Recorder interface {
	ObserveTransition(operation, result string)
	ObserveCapacityConflict(kind string)
	ObservePaymentVerification(result string)
	ObserveCache(hit bool)
}

type nopRecorder struct{}

func (nopRecorder) ObserveTransition(string, string) {}
func (nopRecorder) ObserveCapacityConflict(string) {}
func (nopRecorder) ObservePaymentVerification(string) {}
func (nopRecorder) ObserveCache(bool) {}

// 一覧取得の既定値と上限
const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
