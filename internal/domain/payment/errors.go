package payment

import "errors"

// Payment ドメインのエラー定義
var (
	ErrTransactionNotFound   = errors.New("決済が見つかりません")
	ErrTransactionNotPending = errors.New("決済は処理中ではありません")
	ErrTransactionNotRetry   = errors.New("この決済は再試行できません")
	ErrInvalidSignature      = errors.New("決済署名の検証に失敗しました")
	ErrOrderMismatch         = errors.New("注文IDが決済と一致しません")
	ErrActiveTransaction     = errors.New("この予約には処理中または成功済みの決済があります")
	ErrInvalidAmount         = errors.New("金額は0より大きい必要があります")
	ErrMethodNotFound        = errors.New("支払い方法が見つかりません")
	ErrInvoiceAlreadyExists  = errors.New("請求書は既に発行されています")
	ErrInvalidMethodType     = errors.New("支払い方法の種類が不正です")
)
