package resource

import (
	"context"

	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/transaction"
)

// Repository はリソースリポジトリのインターフェース
type Repository interface {
	// Create は新しいリソースを作成する
	Create(ctx context.Context, r *Resource) error

	// GetByID はIDからリソースを取得する
	GetByID(ctx context.Context, id string) (*Resource, error)

	// List は種別ごとのリソース一覧を取得する（kindが空なら全件）
	List(ctx context.Context, kind Kind, limit, offset int) ([]*Resource, error)

	// DecrementCapacity は空き在庫の確認と減算を1文で行う（トランザクション必須）
	// 空きが足りない場合は ErrInsufficientCapacity を返す
	DecrementCapacity(ctx context.Context, tx transaction.Tx, id string, quantity int) error

	// RestoreCapacity は空き在庫を戻す（トランザクション必須）
	// 総在庫数を超える場合は ErrCapacityOverflow を返す
	RestoreCapacity(ctx context.Context, tx transaction.Tx, id string, quantity int) error

	// CountAvailable は空き在庫数を取得する
	CountAvailable(ctx context.Context, id string) (int, error)
}
