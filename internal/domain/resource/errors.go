package resource

import "errors"

// Resource ドメインのエラー定義
var (
	ErrResourceNotFound     = errors.New("リソースが見つかりません")
	ErrResourceInactive     = errors.New("リソースは現在予約を受け付けていません")
	ErrNameRequired         = errors.New("名称は必須です")
	ErrInvalidKind          = errors.New("リソース種別が不正です")
	ErrInvalidTransportType = errors.New("交通手段が不正です")
	ErrInvalidPrice         = errors.New("価格は0以上である必要があります")
	ErrInvalidTotalCapacity = errors.New("総在庫数は1以上である必要があります")
	ErrCapacityOutOfBounds  = errors.New("空き在庫数は0以上かつ総在庫数以下である必要があります")
	ErrInvalidQuantity      = errors.New("数量は1以上である必要があります")
	ErrInsufficientCapacity = errors.New("空きがありません")
	ErrCapacityOverflow     = errors.New("空き在庫数が総在庫数を超えます")
)
