package messages

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/TheRealPress1/roamiii-backend/pkg/db/models"
	"github.com/TheRealPress1/roamiii-backend/pkg/pagination"
)

// Repository exposes persistence helpers for the trip message stream.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, message *models.TripMessage) error
	List(ctx context.Context, tripID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.TripMessage, *pagination.Cursor, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a messages repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, message *models.TripMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *repositoryImpl) List(ctx context.Context, tripID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.TripMessage, *pagination.Cursor, error) {
	buffered := pagination.LimitWithBuffer(limit)
	normalized := pagination.NormalizeLimit(limit)

	query := r.db.WithContext(ctx).Model(&models.TripMessage{}).Where("trip_id = ?", tripID)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.TripMessage
	if err := query.Order("created_at DESC, id DESC").Limit(buffered).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rows, nil, nil
}
