package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/booking"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/resource"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/transaction"
)

const bookingColumns = `booking_id, user_id, resource_id, resource_kind, start_date, end_date, quantity, unit_price, duration, total_amount, status, capacity_held, contact_name, contact_phone, contact_email, special_requests, confirmed_at, cancelled_at, created_at, updated_at`

type bookingRow struct {
	BookingID       string          `db:"booking_id"`
	UserID          string          `db:"user_id"`
	ResourceID      string          `db:"resource_id"`
	ResourceKind    string          `db:"resource_kind"`
	StartDate       time.Time       `db:"start_date"`
	EndDate         *time.Time      `db:"end_date"`
	Quantity        int             `db:"quantity"`
	UnitPrice       decimal.Decimal `db:"unit_price"`
	Duration        int             `db:"duration"`
	TotalAmount     decimal.Decimal `db:"total_amount"`
	Status          string          `db:"status"`
	CapacityHeld    bool            `db:"capacity_held"`
	ContactName     string          `db:"contact_name"`
	ContactPhone    string          `db:"contact_phone"`
	ContactEmail    string          `db:"contact_email"`
	SpecialRequests string          `db:"special_requests"`
	ConfirmedAt     *time.Time      `db:"confirmed_at"`
	CancelledAt     *time.Time      `db:"cancelled_at"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

func (r *bookingRow) toEntity() *booking.Booking {
	dates := booking.DateRange{Start: r.StartDate}
	if r.EndDate != nil {
		dates.End = *r.EndDate
	}
	return &booking.Booking{
		BookingID: r.BookingID, UserID: r.UserID, ResourceID: r.ResourceID,
		ResourceKind: resource.Kind(r.ResourceKind), Dates: dates,
		Quantity: r.Quantity, UnitPrice: r.UnitPrice, Duration: r.Duration, TotalAmount: r.TotalAmount,
		Status: booking.Status(r.Status), CapacityHeld: r.CapacityHeld,
		Contact:         booking.Contact{Name: r.ContactName, Phone: r.ContactPhone, Email: r.ContactEmail},
		SpecialRequests: r.SpecialRequests,
		ConfirmedAt:     r.ConfirmedAt, CancelledAt: r.CancelledAt,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func endDateArg(d booking.DateRange) *time.Time {
	if d.End.IsZero() {
		return nil
	}
	end := d.End
	return &end
}

type BookingRepository struct{ db *sqlx.DB }

func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create は予約を保存する
// 予約番号が既に存在する場合は ErrBookingIDConflict を返し、呼び出し側で再採番する
func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	query := `INSERT INTO bookings (` + bookingColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.db.ExecContext(ctx, query,
		b.BookingID, b.UserID, b.ResourceID, string(b.ResourceKind), b.Dates.Start, endDateArg(b.Dates),
		b.Quantity, b.UnitPrice, b.Duration, b.TotalAmount, string(b.Status), b.CapacityHeld,
		b.Contact.Name, b.Contact.Phone, b.Contact.Email, b.SpecialRequests,
		b.ConfirmedAt, b.CancelledAt, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return booking.ErrBookingIDConflict
		}
		return fmt.Errorf("予約作成に失敗: %w", err)
	}
	return nil
}

func (r *BookingRepository) GetByBookingID(ctx context.Context, bookingID string) (*booking.Booking, error) {
	var row bookingRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+bookingColumns+` FROM bookings WHERE booking_id = $1`, bookingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

// GetForUpdate は予約行をロックして取得する
// 同じ予約に対する confirm / cancel はこのロックで直列化される
func (r *BookingRepository) GetForUpdate(ctx context.Context, tx transaction.Tx, bookingID string) (*booking.Booking, error) {
	sqlTx, err := requireTx(tx)
	if err != nil {
		return nil, err
	}
	var row bookingRow
	if err := sqlTx.GetContext(ctx, &row, `SELECT `+bookingColumns+` FROM bookings WHERE booking_id = $1 FOR UPDATE`, bookingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *BookingRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	var rows []bookingRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+bookingColumns+` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	result := make([]*booking.Booking, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlTx, err := requireTx(tx)
	if err != nil {
		return err
	}
	query := `UPDATE bookings SET status = $1, capacity_held = $2, confirmed_at = $3, cancelled_at = $4, updated_at = $5 WHERE booking_id = $6`
	result, err := sqlTx.ExecContext(ctx, query, string(b.Status), b.CapacityHeld, b.ConfirmedAt, b.CancelledAt, b.UpdatedAt, b.BookingID)
	if err != nil {
		return fmt.Errorf("予約更新に失敗: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("予約更新に失敗: %w", err)
	}
	if rows == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) ListConfirmedEndedBefore(ctx context.Context, before time.Time, limit int) ([]string, error) {
	var ids []string
	query := `SELECT booking_id FROM bookings WHERE status = 'CONFIRMED' AND COALESCE(end_date, start_date) < $1 ORDER BY COALESCE(end_date, start_date) LIMIT $2`
	if err := r.db.SelectContext(ctx, &ids, query, before, limit); err != nil {
		return nil, fmt.Errorf("利用終了予約の取得に失敗: %w", err)
	}
	return ids, nil
}

var _ booking.Repository = (*BookingRepository)(nil)
