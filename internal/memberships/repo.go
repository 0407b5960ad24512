package memberships

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/TheRealPress1/roamiii-backend/pkg/db/models"
	"github.com/TheRealPress1/roamiii-backend/pkg/enums"
)

// Repository exposes persistence helpers for trip memberships.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, membership *models.TripMembership) error
	Get(ctx context.Context, tripID, userID uuid.UUID) (*models.TripMembership, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]models.TripMembership, error)
	ListActiveByTrip(ctx context.Context, tripID uuid.UUID) ([]models.TripMembership, error)
	ListTripIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	UpdateStatus(ctx context.Context, tripID, userID uuid.UUID, status enums.MembershipStatus) (int64, error)
	UpdateRole(ctx context.Context, tripID, userID uuid.UUID, role enums.MemberRole) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a memberships repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, membership *models.TripMembership) error {
	return r.db.WithContext(ctx).Create(membership).Error
}

func (r *repositoryImpl) Get(ctx context.Context, tripID, userID uuid.UUID) (*models.TripMembership, error) {
	var row models.TripMembership
	err := r.db.WithContext(ctx).
		First(&row, "trip_id = ? AND user_id = ?", tripID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repositoryImpl) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]models.TripMembership, error) {
	var rows []models.TripMembership
	err := r.db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) ListActiveByTrip(ctx context.Context, tripID uuid.UUID) ([]models.TripMembership, error) {
	var rows []models.TripMembership
	err := r.db.WithContext(ctx).
		Where("trip_id = ? AND status = ?", tripID, enums.MembershipStatusActive).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) ListTripIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.TripMembership{}).
		Where("user_id = ? AND status <> ?", userID, enums.MembershipStatusRemoved).
		Pluck("trip_id", &ids).Error
	return ids, err
}

func (r *repositoryImpl) UpdateStatus(ctx context.Context, tripID, userID uuid.UUID, status enums.MembershipStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.TripMembership{}).
		Where("trip_id = ? AND user_id = ?", tripID, userID).
		Update("status", status)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) UpdateRole(ctx context.Context, tripID, userID uuid.UUID, role enums.MemberRole) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.TripMembership{}).
		Where("trip_id = ? AND user_id = ?", tripID, userID).
		Update("role", role)
	return result.RowsAffected, result.Error
}
