package booking

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/resource"
)

// Status は予約の状態を表す
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
	StatusNoShow    Status = "NO_SHOW"
)

// IsTerminal は終端状態かを返す
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

// Contact は予約の連絡先
type Contact struct {
	Name  string
	Phone string
	Email string
}

// Booking は予約エンティティを表す
// UnitPrice と Quantity は作成後に変更しない。変わるのは状態とタイムスタンプのみ
type Booking struct {
	BookingID       string
	UserID          string
	ResourceID      string
	ResourceKind    resource.Kind
	Dates           DateRange
	Quantity        int
	UnitPrice       decimal.Decimal
	Duration        int
	TotalAmount     decimal.Decimal
	Status          Status
	CapacityHeld    bool // confirm で在庫を減算済みか
	Contact         Contact
	SpecialRequests string
	ConfirmedAt     *time.Time
	CancelledAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewBooking は見積もりから保留中の予約を作成する
// 予約番号は採番時に設定する
// 路線予約では乗車日（dates.Start）だけを保持する
func NewBooking(userID string, res *resource.Resource, dates DateRange, q Quote, contact Contact, specialRequests string) *Booking {
	if !res.IsDateRanged() {
		dates = NewTravel(dates.Start)
	}
	now := time.Now()
	return &Booking{
		UserID:          userID,
		ResourceID:      res.ID,
		ResourceKind:    res.Kind,
		Dates:           dates,
		Quantity:        q.Quantity,
		UnitPrice:       q.UnitPrice,
		Duration:        q.Duration,
		TotalAmount:     q.TotalAmount,
		Status:          StatusPending,
		Contact:         contact,
		SpecialRequests: specialRequests,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Quote は保存済みの入力から見積もりを再計算する
func (b *Booking) Quote() Quote {
	return newQuote(b.UnitPrice, b.Quantity, b.Duration)
}

// Confirm は予約を確定する
// 既に確定済みの場合は何もせず changed=false を返す（冪等）
func (b *Booking) Confirm() (changed bool, err error) {
	switch b.Status {
	case StatusConfirmed:
		return false, nil
	case StatusPending:
	default:
		return false, ErrInvalidTransition
	}
	now := time.Now()
	b.Status = StatusConfirmed
	b.CapacityHeld = true
	b.ConfirmedAt = &now
	b.UpdatedAt = now
	return true, nil
}

// Cancel は予約をキャンセルする
// restore は confirm 時に減算した在庫を戻す必要があるかを示す
func (b *Booking) Cancel() (restore bool, err error) {
	if b.Status != StatusPending && b.Status != StatusConfirmed {
		return false, ErrInvalidTransition
	}
	restore = b.CapacityHeld
	now := time.Now()
	b.Status = StatusCancelled
	b.CapacityHeld = false
	b.CancelledAt = &now
	b.UpdatedAt = now
	return restore, nil
}

// MarkCompleted は利用完了にする（確定済みからのみ）
func (b *Booking) MarkCompleted() error {
	return b.settle(StatusCompleted)
}

// MarkNoShow は不泊・不乗にする（確定済みからのみ）
func (b *Booking) MarkNoShow() error {
	return b.settle(StatusNoShow)
}

func (b *Booking) settle(to Status) error {
	if b.Status != StatusConfirmed {
		return ErrInvalidTransition
	}
	b.Status = to
	b.UpdatedAt = time.Now()
	return nil
}

// IsReviewable はレビュー投稿が可能か（利用完了済みか）を返す
func (b *Booking) IsReviewable() bool {
	return b.Status == StatusCompleted
}

// HasEnded は利用最終日が before より前かを返す
func (b *Booking) HasEnded(before time.Time) bool {
	return b.Dates.LastDay().Before(truncateDate(before))
}

// Validate は予約の検証を行う
func (b *Booking) Validate() error {
	if b.UserID == "" {
		return ErrUserIDRequired
	}
	if b.ResourceID == "" {
		return ErrResourceIDRequired
	}
	if b.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if b.Contact.Name == "" || b.Contact.Email == "" {
		return ErrContactRequired
	}
	return nil
}
