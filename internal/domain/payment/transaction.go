package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/resource"
)

// Status は決済の状態を表す
type Status string

const (
	StatusProcessing Status = "PROCESSING"
	StatusSuccess    Status = "SUCCESS"
	StatusFailed     Status = "FAILED"
)

// Type は決済の種別を表す
type Type string

const (
	TypeHotelBooking     Type = "HOTEL_BOOKING"
	TypeTransportBooking Type = "TRANSPORT_BOOKING"
)

// TypeFor は予約対象の種別から決済種別を決める
func TypeFor(kind resource.Kind) Type {
	if kind == resource.KindRoute {
		return TypeTransportBooking
	}
	return TypeHotelBooking
}

// Transaction は予約に対する決済を表す
type Transaction struct {
	ID               string
	UserID           string
	BookingID        string
	Type             Type
	Amount           decimal.Decimal
	Currency         string
	GatewayOrderID   string
	GatewayPaymentID string
	Status           Status
	FailureReason    string
	InitiatedAt      time.Time
	CompletedAt      *time.Time
}

// NewTransaction は処理中の決済を作成する
func NewTransaction(userID, bookingID string, typ Type, amount decimal.Decimal, currency string) *Transaction {
	return &Transaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		BookingID:   bookingID,
		Type:        typ,
		Amount:      amount,
		Currency:    currency,
		Status:      StatusProcessing,
		InitiatedAt: time.Now(),
	}
}

// Validate は決済の検証を行う
func (t *Transaction) Validate() error {
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// MarkSuccess は決済を成功にする
func (t *Transaction) MarkSuccess(paymentID string) error {
	if t.Status != StatusProcessing {
		return ErrTransactionNotPending
	}
	now := time.Now()
	t.Status = StatusSuccess
	t.GatewayPaymentID = paymentID
	t.CompletedAt = &now
	return nil
}

// MarkFailed は決済を失敗にする
func (t *Transaction) MarkFailed(reason string) error {
	if t.Status != StatusProcessing {
		return ErrTransactionNotPending
	}
	now := time.Now()
	t.Status = StatusFailed
	t.FailureReason = reason
	t.CompletedAt = &now
	return nil
}

// Retry は失敗した決済を処理中に戻す
func (t *Transaction) Retry() error {
	if t.Status != StatusFailed {
		return ErrTransactionNotRetry
	}
	t.Status = StatusProcessing
	t.FailureReason = ""
	t.CompletedAt = nil
	return nil
}
