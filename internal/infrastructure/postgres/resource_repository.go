package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/resource"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/transaction"
)

const resourceColumns = `id, kind, name, city, transport_type, unit_price, total_capacity, available_capacity, active, created_at, updated_at, version`

type resourceRow struct {
	ID                string          `db:"id"`
	Kind              string          `db:"kind"`
	Name              string          `db:"name"`
	City              string          `db:"city"`
	TransportType     string          `db:"transport_type"`
	UnitPrice         decimal.Decimal `db:"unit_price"`
	TotalCapacity     int             `db:"total_capacity"`
	AvailableCapacity int             `db:"available_capacity"`
	Active            bool            `db:"active"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
	Version           int             `db:"version"`
}

func (r *resourceRow) toEntity() *resource.Resource {
	return &resource.Resource{
		ID: r.ID, Kind: resource.Kind(r.Kind), Name: r.Name, City: r.City,
		TransportType: resource.TransportType(r.TransportType), UnitPrice: r.UnitPrice,
		TotalCapacity: r.TotalCapacity, AvailableCapacity: r.AvailableCapacity, Active: r.Active,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, Version: r.Version,
	}
}

type ResourceRepository struct{ db *sqlx.DB }

func NewResourceRepository(db *sqlx.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

func (r *ResourceRepository) Create(ctx context.Context, res *resource.Resource) error {
	query := `INSERT INTO resources (kind, name, city, transport_type, unit_price, total_capacity, available_capacity, active, created_at, updated_at, version) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query,
		string(res.Kind), res.Name, res.City, string(res.TransportType), res.UnitPrice,
		res.TotalCapacity, res.AvailableCapacity, res.Active, res.CreatedAt, res.UpdatedAt, res.Version,
	).Scan(&res.ID); err != nil {
		return fmt.Errorf("リソース作成に失敗: %w", err)
	}
	return nil
}

func (r *ResourceRepository) GetByID(ctx context.Context, id string) (*resource.Resource, error) {
	var row resourceRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+resourceColumns+` FROM resources WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, resource.ErrResourceNotFound
		}
		return nil, fmt.Errorf("リソース取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *ResourceRepository) List(ctx context.Context, kind resource.Kind, limit, offset int) ([]*resource.Resource, error) {
	var rows []resourceRow
	var err error
	if kind == "" {
		err = r.db.SelectContext(ctx, &rows, `SELECT `+resourceColumns+` FROM resources WHERE active ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	} else {
		err = r.db.SelectContext(ctx, &rows, `SELECT `+resourceColumns+` FROM resources WHERE active AND kind = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, string(kind), limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("リソース一覧取得に失敗: %w", err)
	}
	result := make([]*resource.Resource, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

// DecrementCapacity は空き在庫の確認と減算を1つのUPDATE文で行う
// 同時に実行されても available_capacity が負になることはない
func (r *ResourceRepository) DecrementCapacity(ctx context.Context, tx transaction.Tx, id string, quantity int) error {
	if quantity < 1 {
		return resource.ErrInvalidQuantity
	}
	sqlTx, err := requireTx(tx)
	if err != nil {
		return err
	}
	query := `UPDATE resources SET available_capacity = available_capacity - $1, updated_at = NOW(), version = version + 1 WHERE id = $2 AND available_capacity >= $1`
	result, err := sqlTx.ExecContext(ctx, query, quantity, id)
	if err != nil {
		return fmt.Errorf("在庫減算に失敗: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("在庫減算に失敗: %w", err)
	}
	if rows == 0 {
		return resource.ErrInsufficientCapacity
	}
	return nil
}

// RestoreCapacity は空き在庫を戻す（総在庫数を超えない場合のみ）
func (r *ResourceRepository) RestoreCapacity(ctx context.Context, tx transaction.Tx, id string, quantity int) error {
	if quantity < 1 {
		return resource.ErrInvalidQuantity
	}
	sqlTx, err := requireTx(tx)
	if err != nil {
		return err
	}
	query := `UPDATE resources SET available_capacity = available_capacity + $1, updated_at = NOW(), version = version + 1 WHERE id = $2 AND available_capacity + $1 <= total_capacity`
	result, err := sqlTx.ExecContext(ctx, query, quantity, id)
	if err != nil {
		return fmt.Errorf("在庫復元に失敗: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("在庫復元に失敗: %w", err)
	}
	if rows == 0 {
		return resource.ErrCapacityOverflow
	}
	return nil
}

func (r *ResourceRepository) CountAvailable(ctx context.Context, id string) (int, error) {
	var available int
	if err := r.db.GetContext(ctx, &available, `SELECT available_capacity FROM resources WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, resource.ErrResourceNotFound
		}
		return 0, fmt.Errorf("空き在庫数取得に失敗: %w", err)
	}
	return available, nil
}

var _ resource.Repository = (*ResourceRepository)(nil)
