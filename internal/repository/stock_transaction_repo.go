package repository

import (
	"context"
	"time"

	"github.com/TheYates/bernat-medical-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockTransactionRepository persists restock lines and their status changes.
type StockTransactionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.StockTransaction, error)
	CountByStatus(ctx context.Context, status model.RestockStatus) (int64, error)

	// Used inside transactions; callers must pass the tx instance
	CreateTx(tx *gorm.DB, st *model.StockTransaction) error
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.StockTransaction, error)
	// ResolveTx moves a pending row to status. It returns the number of rows
	// changed, which is zero when another writer resolved it first.
	ResolveTx(tx *gorm.DB, id uuid.UUID, status model.RestockStatus, approver uuid.UUID, at time.Time) (int64, error)

	DB() *gorm.DB
}

type stockTransactionRepo struct{ db *gorm.DB }

func NewStockTransactionRepository(db *gorm.DB) StockTransactionRepository {
	return &stockTransactionRepo{db: db}
}

func (r *stockTransactionRepo) DB() *gorm.DB { return r.db }

func (r *stockTransactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.StockTransaction, error) {
	var st model.StockTransaction
	if err := r.db.WithContext(ctx).First(&st, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *stockTransactionRepo) CountByStatus(ctx context.Context, status model.RestockStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.StockTransaction{}).Where("status = ?", status).Count(&n).Error
	return n, err
}

func (r *stockTransactionRepo) CreateTx(tx *gorm.DB, st *model.StockTransaction) error {
	return TranslateError(tx.Omit(clause.Associations).Create(st).Error)
}

func (r *stockTransactionRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.StockTransaction, error) {
	var st model.StockTransaction
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&st, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *stockTransactionRepo) ResolveTx(tx *gorm.DB, id uuid.UUID, status model.RestockStatus, approver uuid.UUID, at time.Time) (int64, error) {
	res := tx.Model(&model.StockTransaction{}).
		Where("id = ? AND status = ?", id, model.RestockPending).
		Updates(map[string]interface{}{
			"status":      status,
			"approved_by": approver,
			"approved_at": at,
		})
	return res.RowsAffected, TranslateError(res.Error)
}
