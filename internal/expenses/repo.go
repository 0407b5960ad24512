package expenses

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/TheRealPress1/roamiii-backend/pkg/db/models"
)

// Repository exposes persistence helpers for expenses and splits.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, expense *models.Expense) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]models.Expense, error)
	SettleSplits(ctx context.Context, tripID uuid.UUID, splitIDs []uuid.UUID, now time.Time) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an expenses repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// Create persists the expense together with its splits. gorm writes the
// association rows in the same statement batch, and callers run this inside a
// transaction so a failed split insert rolls the expense back too.
func (r *repositoryImpl) Create(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	var expense models.Expense
	err := r.db.WithContext(ctx).
		Preload("Splits").
		First(&expense, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *repositoryImpl) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]models.Expense, error) {
	var rows []models.Expense
	err := r.db.WithContext(ctx).
		Preload("Splits", func(db *gorm.DB) *gorm.DB {
			return db.Order("expense_splits.position ASC")
		}).
		Where("trip_id = ?", tripID).
		Order("expense_date DESC, created_at DESC").
		Find(&rows).Error
	return rows, err
}

// SettleSplits marks the given splits settled. The trip scope in the WHERE
// clause stops callers from settling splits of another trip's expenses.
func (r *repositoryImpl) SettleSplits(ctx context.Context, tripID uuid.UUID, splitIDs []uuid.UUID, now time.Time) (int64, error) {
	if len(splitIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.ExpenseSplit{}).
		Where("id IN ? AND is_settled = false", splitIDs).
		Where("expense_id IN (?)", r.db.Model(&models.Expense{}).Select("id").Where("trip_id = ?", tripID)).
		Updates(map[string]any{
			"is_settled": true,
			"settled_at": now,
		})
	return result.RowsAffected, result.Error
}
