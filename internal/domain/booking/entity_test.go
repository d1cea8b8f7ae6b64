package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/resource"
)

func createTestBooking(t *testing.T) *Booking {
	res := testHotel("2000")
	dates := NewStay(day(2026, 3, 1), day(2026, 3, 4))
	q, err := NewQuote(res, 2, dates)
	require.NoError(t, err)
	b := NewBooking("user-1", res, dates, q, Contact{Name: "Asha", Phone: "+919800000000", Email: "asha@example.com"}, "")
	b.BookingID = "NOMABCDEFGHIJ"
	require.NoError(t, b.Validate())
	return b
}

func TestNewBooking(t *testing.T) {
	b := createTestBooking(t)
	assert.Equal(t, StatusPending, b.Status)
	assert.False(t, b.CapacityHeld)
	assert.Equal(t, "12000", b.TotalAmount.String())
	assert.True(t, b.Quote().TotalAmount.Equal(b.TotalAmount))
}

func TestNewBooking_RouteKeepsTravelDateOnly(t *testing.T) {
	tests := []struct {
		name  string
		dates DateRange
	}{
		{"チェックアウト日付き", NewStay(day(2026, 5, 10), day(2026, 6, 9))},
		{"同日の範囲", NewStay(day(2026, 5, 10), day(2026, 5, 10))},
		{"乗車日のみ", NewTravel(day(2026, 5, 10))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := testRoute(resource.TransportTrain, "500")
			q, err := NewQuote(res, 1, tt.dates)
			require.NoError(t, err)

			b := NewBooking("user-1", res, tt.dates, q, Contact{Name: "Ravi", Email: "ravi@example.com"}, "")
			assert.Equal(t, day(2026, 5, 10), b.Dates.Start)
			assert.True(t, b.Dates.End.IsZero())
			assert.Equal(t, day(2026, 5, 10), b.Dates.LastDay())
			assert.True(t, b.HasEnded(day(2026, 5, 11)))
		})
	}
}

func TestBooking_Confirm(t *testing.T) {
	b := createTestBooking(t)

	changed, err := b.Confirm()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.True(t, b.CapacityHeld)
	assert.NotNil(t, b.ConfirmedAt)

	// 2回目は何もしない
	confirmedAt := *b.ConfirmedAt
	changed, err = b.Confirm()
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, confirmedAt, *b.ConfirmedAt)
}

func TestBooking_Confirm_FromTerminal(t *testing.T) {
	for _, s := range []Status{StatusCancelled, StatusCompleted, StatusNoShow} {
		t.Run(string(s), func(t *testing.T) {
			b := createTestBooking(t)
			b.Status = s
			_, err := b.Confirm()
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, s, b.Status)
		})
	}
}

func TestBooking_Cancel(t *testing.T) {
	tests := []struct {
		name        string
		status      Status
		held        bool
		wantRestore bool
		wantErr     error
	}{
		{"保留中からキャンセル（在庫は戻さない）", StatusPending, false, false, nil},
		{"確定済みからキャンセル（在庫を戻す）", StatusConfirmed, true, true, nil},
		{"キャンセル済みからキャンセル", StatusCancelled, false, false, ErrInvalidTransition},
		{"利用完了からキャンセル", StatusCompleted, true, false, ErrInvalidTransition},
		{"不泊からキャンセル", StatusNoShow, true, false, ErrInvalidTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := createTestBooking(t)
			b.Status = tt.status
			b.CapacityHeld = tt.held

			restore, err := b.Cancel()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.status, b.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRestore, restore)
			assert.Equal(t, StatusCancelled, b.Status)
			assert.False(t, b.CapacityHeld)
			assert.NotNil(t, b.CancelledAt)
		})
	}
}

func TestBooking_MarkCompletedAndNoShow(t *testing.T) {
	t.Run("保留中から利用完了は不可", func(t *testing.T) {
		b := createTestBooking(t)
		assert.ErrorIs(t, b.MarkCompleted(), ErrInvalidTransition)
		assert.Equal(t, StatusPending, b.Status)
	})

	t.Run("確定済みから利用完了", func(t *testing.T) {
		b := createTestBooking(t)
		_, err := b.Confirm()
		require.NoError(t, err)
		require.NoError(t, b.MarkCompleted())
		assert.Equal(t, StatusCompleted, b.Status)
		assert.True(t, b.IsReviewable())
		assert.True(t, b.Status.IsTerminal())
	})

	t.Run("確定済みから不泊", func(t *testing.T) {
		b := createTestBooking(t)
		_, err := b.Confirm()
		require.NoError(t, err)
		require.NoError(t, b.MarkNoShow())
		assert.Equal(t, StatusNoShow, b.Status)
		assert.False(t, b.IsReviewable())
	})

	t.Run("終端状態からは遷移しない", func(t *testing.T) {
		b := createTestBooking(t)
		b.Status = StatusNoShow
		assert.ErrorIs(t, b.MarkCompleted(), ErrInvalidTransition)
	})
}

func TestBooking_HasEnded(t *testing.T) {
	b := createTestBooking(t) // チェックアウト 2026-03-04
	assert.False(t, b.HasEnded(time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)))
	assert.True(t, b.HasEnded(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)))
}

func TestBooking_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(b *Booking)
		wantErr error
	}{
		{"ユーザーID未指定", func(b *Booking) { b.UserID = "" }, ErrUserIDRequired},
		{"リソースID未指定", func(b *Booking) { b.ResourceID = "" }, ErrResourceIDRequired},
		{"数量0", func(b *Booking) { b.Quantity = 0 }, ErrInvalidQuantity},
		{"連絡先メール未指定", func(b *Booking) { b.Contact.Email = "" }, ErrContactRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := createTestBooking(t)
			tt.mutate(b)
			assert.ErrorIs(t, b.Validate(), tt.wantErr)
		})
	}
}
