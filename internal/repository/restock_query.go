package repository

import (
	"context"
	"fmt"

	"github.com/TheYates/bernat-medical-sub000/internal/dto"
	"github.com/TheYates/bernat-medical-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// RestockQuery serves the read-only restock projections. It runs plain SQL
// through sqlx on the same connection pool GORM uses.
type RestockQuery interface {
	ListPending(ctx context.Context) ([]dto.RestockTransactionView, error)
	ListHistory(ctx context.Context, limit int) ([]dto.RestockTransactionView, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.RestockTransactionView, error)
}

const restockProjection = `
SELECT st.id, st.drug_id, d.name AS drug_name, d.purchase_form, d.sale_form,
       st.vendor_id, v.name AS vendor_name, st.type,
       st.purchase_quantity, st.sale_quantity, st.batch_number, st.expiry_date,
       st.reference_number, st.purchase_price,
       d.unit_cost, d.pos_price, d.prescription_price, st.created_by, cu.full_name AS created_by_name,
       st.status, st.approved_by, au.full_name AS approved_by_name,
       st.approved_at, st.created_at
  FROM stock_transactions st
  JOIN drugs d       ON d.id = st.drug_id
  LEFT JOIN vendors v ON v.id = st.vendor_id
  LEFT JOIN users cu  ON cu.id = st.created_by
  LEFT JOIN users au  ON au.id = st.approved_by`

type restockQuery struct{ db *sqlx.DB }

// NewRestockQuery wraps the GORM pool in an sqlx handle with the bind style
// of the active dialect.
func NewRestockQuery(db *gorm.DB) (RestockQuery, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("restock query: %w", err)
	}
	driverName := "pgx"
	if db.Dialector.Name() == "sqlite" {
		driverName = "sqlite3"
	}
	return &restockQuery{db: sqlx.NewDb(sqlDB, driverName)}, nil
}

func (q *restockQuery) ListPending(ctx context.Context) ([]dto.RestockTransactionView, error) {
	rows := []dto.RestockTransactionView{}
	query := q.db.Rebind(restockProjection + `
 WHERE st.status = ?
 ORDER BY st.created_at DESC`)
	if err := q.db.SelectContext(ctx, &rows, query, model.RestockPending); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListHistory returns resolved transactions, most recently resolved first.
func (q *restockQuery) ListHistory(ctx context.Context, limit int) ([]dto.RestockTransactionView, error) {
	rows := []dto.RestockTransactionView{}
	query := q.db.Rebind(restockProjection + `
 WHERE st.status <> ?
 ORDER BY st.approved_at DESC, st.created_at DESC
 LIMIT ?`)
	if err := q.db.SelectContext(ctx, &rows, query, model.RestockPending, limit); err != nil {
		return nil, err
	}
	return rows, nil
}

// Get returns gorm.ErrRecordNotFound when no row matches, like the GORM repositories.
func (q *restockQuery) Get(ctx context.Context, id uuid.UUID) (*dto.RestockTransactionView, error) {
	rows := []dto.RestockTransactionView{}
	query := q.db.Rebind(restockProjection + `
 WHERE st.id = ?`)
	if err := q.db.SelectContext(ctx, &rows, query, id); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}
