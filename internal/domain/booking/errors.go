package booking

import "errors"

// Booking ドメインのエラー定義
var (
	ErrBookingNotFound    = errors.New("予約が見つかりません")
	ErrInvalidRange       = errors.New("チェックアウト日はチェックイン日より後である必要があります")
	ErrTravelDateRequired = errors.New("乗車日は必須です")
	ErrInvalidQuantity    = errors.New("数量は1以上である必要があります")
	ErrInvalidTransition  = errors.New("この状態からは遷移できません")
	ErrUserIDRequired     = errors.New("ユーザーIDは必須です")
	ErrResourceIDRequired = errors.New("リソースIDは必須です")
	ErrContactRequired    = errors.New("連絡先の氏名とメールアドレスは必須です")
	ErrBookingIDConflict  = errors.New("予約番号が重複しています")
	ErrBookingIDExhausted = errors.New("予約番号を採番できませんでした")
)
