package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/payment"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/transaction"
)

const paymentColumns = `id, user_id, booking_id, type, amount, currency, gateway_order_id, gateway_payment_id, status, failure_reason, initiated_at, completed_at`

type paymentRow struct {
	ID               string          `db:"id"`
	UserID           string          `db:"user_id"`
	BookingID        string          `db:"booking_id"`
	Type             string          `db:"type"`
	Amount           decimal.Decimal `db:"amount"`
	Currency         string          `db:"currency"`
	GatewayOrderID   string          `db:"gateway_order_id"`
	GatewayPaymentID string          `db:"gateway_payment_id"`
	Status           string          `db:"status"`
	FailureReason    string          `db:"failure_reason"`
	InitiatedAt      time.Time       `db:"initiated_at"`
	CompletedAt      *time.Time      `db:"completed_at"`
}

func (r *paymentRow) toEntity() *payment.Transaction {
	return &payment.Transaction{
		ID: r.ID, UserID: r.UserID, BookingID: r.BookingID, Type: payment.Type(r.Type),
		Amount: r.Amount, Currency: r.Currency,
		GatewayOrderID: r.GatewayOrderID, GatewayPaymentID: r.GatewayPaymentID,
		Status: payment.Status(r.Status), FailureReason: r.FailureReason,
		InitiatedAt: r.InitiatedAt, CompletedAt: r.CompletedAt,
	}
}

type PaymentRepository struct{ db *sqlx.DB }

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, t *payment.Transaction) error {
	query := `INSERT INTO payment_transactions (` + paymentColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	if _, err := r.db.ExecContext(ctx, query,
		t.ID, t.UserID, t.BookingID, string(t.Type), t.Amount, t.Currency,
		t.GatewayOrderID, t.GatewayPaymentID, string(t.Status), t.FailureReason, t.InitiatedAt, t.CompletedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return payment.ErrActiveTransaction
		}
		return fmt.Errorf("決済作成に失敗: %w", err)
	}
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*payment.Transaction, error) {
	var row paymentRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+paymentColumns+` FROM payment_transactions WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payment.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("決済取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *PaymentRepository) GetActiveByBookingID(ctx context.Context, bookingID string) (*payment.Transaction, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_transactions WHERE booking_id = $1 AND status IN ('PROCESSING', 'SUCCESS') ORDER BY initiated_at DESC LIMIT 1`
	var row paymentRow
	if err := r.db.GetContext(ctx, &row, query, bookingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payment.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("決済取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *PaymentRepository) GetForUpdate(ctx context.Context, tx transaction.Tx, id string) (*payment.Transaction, error) {
	sqlTx, err := requireTx(tx)
	if err != nil {
		return nil, err
	}
	var row paymentRow
	if err := sqlTx.GetContext(ctx, &row, `SELECT `+paymentColumns+` FROM payment_transactions WHERE id = $1 FOR UPDATE`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payment.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("決済取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *PaymentRepository) Update(ctx context.Context, tx transaction.Tx, t *payment.Transaction) error {
	sqlTx, err := requireTx(tx)
	if err != nil {
		return err
	}
	query := `UPDATE payment_transactions SET gateway_order_id = $1, gateway_payment_id = $2, status = $3, failure_reason = $4, completed_at = $5 WHERE id = $6`
	result, err := sqlTx.ExecContext(ctx, query, t.GatewayOrderID, t.GatewayPaymentID, string(t.Status), t.FailureReason, t.CompletedAt, t.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return payment.ErrActiveTransaction
		}
		return fmt.Errorf("決済更新に失敗: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("決済更新に失敗: %w", err)
	}
	if rows == 0 {
		return payment.ErrTransactionNotFound
	}
	return nil
}

func (r *PaymentRepository) CreateInvoice(ctx context.Context, inv *payment.Invoice) error {
	query := `INSERT INTO invoices (id, invoice_number, transaction_id, subtotal, tax_amount, total_amount, issued_at, due_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(ctx, query,
		inv.ID, inv.InvoiceNumber, inv.TransactionID, inv.Subtotal, inv.TaxAmount, inv.TotalAmount, inv.IssuedAt, inv.DueAt,
	); err != nil {
		if isUniqueViolation(err) {
			return payment.ErrInvoiceAlreadyExists
		}
		return fmt.Errorf("請求書作成に失敗: %w", err)
	}
	return nil
}

var _ payment.Repository = (*PaymentRepository)(nil)
