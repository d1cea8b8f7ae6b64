package booking

import (
	"context"
	"time"

	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を作成する
	// 予約番号の一意制約違反は ErrBookingIDConflict を返す
	Create(ctx context.Context, b *Booking) error

	// GetByBookingID は予約番号から予約を取得する
	GetByBookingID(ctx context.Context, bookingID string) (*Booking, error)

	// GetForUpdate は予約を行ロック付きで取得する（トランザクション必須）
	GetForUpdate(ctx context.Context, tx transaction.Tx, bookingID string) (*Booking, error)

	// GetByUserID はユーザーIDから予約一覧を取得する
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*Booking, error)

	// UpdateStatus は状態・在庫保持フラグ・タイムスタンプを更新する（トランザクション必須）
	UpdateStatus(ctx context.Context, tx transaction.Tx, b *Booking) error

	// ListConfirmedEndedBefore は利用最終日が before より前の確定済み予約の番号を取得する
	ListConfirmedEndedBefore(ctx context.Context, before time.Time, limit int) ([]string, error)
}
