package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType は予約のライフサイクルイベントの種類
type EventType string

const (
	EventReserved  EventType = "booking.reserved"
	EventConfirmed EventType = "booking.confirmed"
	EventCancelled EventType = "booking.cancelled"
	EventCompleted EventType = "booking.completed"
	EventNoShow    EventType = "booking.no_show"
)

// Event はコミット後に外部へ通知する予約イベント
type Event struct {
	Type        EventType       `json:"type"`
	BookingID   string          `json:"booking_id"`
	UserID      string          `json:"user_id"`
	ResourceID  string          `json:"resource_id"`
	Status      Status          `json:"status"`
	Quantity    int             `json:"quantity"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// NewEvent は予約の現在の状態からイベントを作成する
func NewEvent(typ EventType, b *Booking) Event {
	return Event{
		Type:        typ,
		BookingID:   b.BookingID,
		UserID:      b.UserID,
		ResourceID:  b.ResourceID,
		Status:      b.Status,
		Quantity:    b.Quantity,
		TotalAmount: b.TotalAmount,
		OccurredAt:  time.Now(),
	}
}
