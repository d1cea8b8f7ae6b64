package payment

import (
	"context"

	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/transaction"
)

// Repository は決済リポジトリのインターフェース
type Repository interface {
	// Create は決済を作成する
	Create(ctx context.Context, t *Transaction) error

	// GetByID はIDから決済を取得する
	GetByID(ctx context.Context, id string) (*Transaction, error)

	// GetActiveByBookingID は予約の処理中または成功済みの決済を取得する
	// 無ければ ErrTransactionNotFound を返す
	GetActiveByBookingID(ctx context.Context, bookingID string) (*Transaction, error)

	// GetForUpdate は決済を行ロック付きで取得する（トランザクション必須）
	GetForUpdate(ctx context.Context, tx transaction.Tx, id string) (*Transaction, error)

	// Update は決済の状態を更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, t *Transaction) error

	// CreateInvoice は請求書を作成する（決済ごとに1件）
	CreateInvoice(ctx context.Context, inv *Invoice) error
}

// MethodRepository は支払い方法リポジトリのインターフェース
type MethodRepository interface {
	// Create は支払い方法を登録する
	Create(ctx context.Context, m *Method) error

	// ListByUserID はユーザーの有効な支払い方法一覧を取得する
	ListByUserID(ctx context.Context, userID string) ([]*Method, error)

	// SetDefault は同一ユーザーの他の方法の既定フラグを外し、対象を既定にする（トランザクション必須）
	SetDefault(ctx context.Context, tx transaction.Tx, userID, methodID string) error
}
