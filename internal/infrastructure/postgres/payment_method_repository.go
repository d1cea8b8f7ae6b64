package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/payment"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/transaction"
)

type paymentMethodRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Type      string    `db:"type"`
	Label     string    `db:"label"`
	IsDefault bool      `db:"is_default"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *paymentMethodRow) toEntity() *payment.Method {
	return &payment.Method{
		ID: r.ID, UserID: r.UserID, Type: payment.MethodType(r.Type), Label: r.Label,
		IsDefault: r.IsDefault, Active: r.Active, CreatedAt: r.CreatedAt,
	}
}

type PaymentMethodRepository struct{ db *sqlx.DB }

func NewPaymentMethodRepository(db *sqlx.DB) *PaymentMethodRepository {
	return &PaymentMethodRepository{db: db}
}

func (r *PaymentMethodRepository) Create(ctx context.Context, m *payment.Method) error {
	query := `INSERT INTO payment_methods (user_id, type, label, is_default, active, created_at) VALUES ($1, $2, $3, FALSE, $4, $5) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, m.UserID, string(m.Type), m.Label, m.Active, m.CreatedAt).Scan(&m.ID); err != nil {
		return fmt.Errorf("支払い方法登録に失敗: %w", err)
	}
	return nil
}

func (r *PaymentMethodRepository) ListByUserID(ctx context.Context, userID string) ([]*payment.Method, error) {
	var rows []paymentMethodRow
	query := `SELECT id, user_id, type, label, is_default, active, created_at FROM payment_methods WHERE user_id = $1 AND active ORDER BY is_default DESC, created_at`
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("支払い方法一覧取得に失敗: %w", err)
	}
	result := make([]*payment.Method, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

// SetDefault は他の方法の既定フラグを外してから対象を既定にする
// 2つのUPDATEは同一トランザクションで実行され、部分的な状態は確定しない
func (r *PaymentMethodRepository) SetDefault(ctx context.Context, tx transaction.Tx, userID, methodID string) error {
	sqlTx, err := requireTx(tx)
	if err != nil {
		return err
	}
	if _, err := sqlTx.ExecContext(ctx,
		`UPDATE payment_methods SET is_default = FALSE WHERE user_id = $1 AND id <> $2 AND is_default`,
		userID, methodID,
	); err != nil {
		return fmt.Errorf("既定の支払い方法の解除に失敗: %w", err)
	}
	result, err := sqlTx.ExecContext(ctx,
		`UPDATE payment_methods SET is_default = TRUE WHERE id = $1 AND user_id = $2 AND active`,
		methodID, userID,
	)
	if err != nil {
		return fmt.Errorf("既定の支払い方法の設定に失敗: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("既定の支払い方法の設定に失敗: %w", err)
	}
	if rows == 0 {
		return payment.ErrMethodNotFound
	}
	return nil
}

var _ payment.MethodRepository = (*PaymentMethodRepository)(nil)
