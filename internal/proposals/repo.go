package proposals

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/TheRealPress1/roamiii-backend/pkg/db/models"
)

// Repository exposes persistence helpers for proposals and votes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, proposal *models.Proposal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID, isDestination bool) ([]models.Proposal, error)
	MarkIncluded(ctx context.Context, proposalID uuid.UUID) (int64, error)
	CountIncluded(ctx context.Context, tripID uuid.UUID, isDestination bool) (int64, error)
	UpsertVote(ctx context.Context, vote *models.Vote) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a proposals repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, proposal *models.Proposal) error {
	return r.db.WithContext(ctx).Create(proposal).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	var proposal models.Proposal
	err := r.db.WithContext(ctx).
		Preload("Votes").
		First(&proposal, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

// ListByTrip returns the proposals for one voting category with their votes
// embedded, oldest first so tie-breaks favor the earliest created.
func (r *repositoryImpl) ListByTrip(ctx context.Context, tripID uuid.UUID, isDestination bool) ([]models.Proposal, error) {
	var rows []models.Proposal
	err := r.db.WithContext(ctx).
		Preload("Votes").
		Where("trip_id = ? AND is_destination = ?", tripID, isDestination).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) MarkIncluded(ctx context.Context, proposalID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Proposal{}).
		Where("id = ?", proposalID).
		Update("included", true)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) CountIncluded(ctx context.Context, tripID uuid.UUID, isDestination bool) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Proposal{}).
		Where("trip_id = ? AND is_destination = ? AND included = true", tripID, isDestination).
		Count(&count).Error
	return count, err
}

// UpsertVote writes the single live vote row per (proposal, user). Re-voting
// updates in place rather than inserting a duplicate.
func (r *repositoryImpl) UpsertVote(ctx context.Context, vote *models.Vote) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "proposal_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"kind", "score", "updated_at"}),
		}).
		Create(vote).Error
}
