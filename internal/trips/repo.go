package trips

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/TheRealPress1/roamiii-backend/pkg/db/models"
	"github.com/TheRealPress1/roamiii-backend/pkg/enums"
)

// Repository exposes persistence helpers for trips. Phase and lock writes are
// guarded on the stored pre-state so racing writers cannot both apply.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, trip *models.Trip) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Trip, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Trip, error)
	AdvancePhaseGuarded(ctx context.Context, tripID uuid.UUID, from, to enums.TripPhase) (int64, error)
	ReopenPhaseGuarded(ctx context.Context, tripID uuid.UUID, from, to enums.TripPhase) (int64, error)
	LockDestinationGuarded(ctx context.Context, tripID, proposalID uuid.UUID) (int64, error)
	SetDeadlineGuarded(ctx context.Context, tripID uuid.UUID, phase enums.TripPhase, deadline *time.Time) (int64, error)
	SetDatesGuarded(ctx context.Context, tripID uuid.UUID, start, end *time.Time) (int64, error)
	ListDeadlineCandidates(ctx context.Context, now time.Time) ([]models.Trip, error)
	ListUpcomingDeadlines(ctx context.Context, now time.Time) ([]models.Trip, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a trips repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, trip *models.Trip) error {
	return r.db.WithContext(ctx).Create(trip).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Trip, error) {
	var trip models.Trip
	err := r.db.WithContext(ctx).First(&trip, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *repositoryImpl) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Trip, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Trip
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// AdvancePhaseGuarded moves the trip forward one phase. Zero rows affected
// means the stored phase no longer matches, so the caller lost a race.
func (r *repositoryImpl) AdvancePhaseGuarded(ctx context.Context, tripID uuid.UUID, from, to enums.TripPhase) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Trip{}).
		Where("id = ? AND phase = ?", tripID, from).
		Update("phase", to)
	return result.RowsAffected, result.Error
}

// ReopenPhaseGuarded moves the trip back one phase. Reopening to destination
// also clears the locked destination.
func (r *repositoryImpl) ReopenPhaseGuarded(ctx context.Context, tripID uuid.UUID, from, to enums.TripPhase) (int64, error) {
	updates := map[string]any{"phase": to}
	if to == enums.TripPhaseDestination {
		updates["locked_destination_id"] = nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.Trip{}).
		Where("id = ? AND phase = ?", tripID, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// LockDestinationGuarded sets the locked destination and advances to the
// itinerary phase in one conditional write. The guard requires the trip to
// still be in the destination phase with no lock applied.
func (r *repositoryImpl) LockDestinationGuarded(ctx context.Context, tripID, proposalID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Trip{}).
		Where("id = ? AND phase = ? AND locked_destination_id IS NULL", tripID, enums.TripPhaseDestination).
		Updates(map[string]any{
			"locked_destination_id": proposalID,
			"phase":                 enums.TripPhaseItinerary,
		})
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) SetDeadlineGuarded(ctx context.Context, tripID uuid.UUID, phase enums.TripPhase, deadline *time.Time) (int64, error) {
	var column string
	switch phase {
	case enums.TripPhaseDestination:
		column = "destination_voting_deadline"
	case enums.TripPhaseItinerary:
		column = "itinerary_voting_deadline"
	default:
		return 0, errors.New("phase has no voting deadline")
	}
	result := r.db.WithContext(ctx).
		Model(&models.Trip{}).
		Where("id = ? AND phase = ?", tripID, phase).
		Update(column, deadline)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) SetDatesGuarded(ctx context.Context, tripID uuid.UUID, start, end *time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Trip{}).
		Where("id = ? AND phase = ?", tripID, enums.TripPhaseFinalize).
		Updates(map[string]any{
			"start_date": start,
			"end_date":   end,
		})
	return result.RowsAffected, result.Error
}

// ListDeadlineCandidates returns trips whose active voting deadline has passed
// but whose phase has not resolved yet. Used by the fallback sweep.
func (r *repositoryImpl) ListDeadlineCandidates(ctx context.Context, now time.Time) ([]models.Trip, error) {
	var rows []models.Trip
	err := r.db.WithContext(ctx).
		Where(
			"(phase = ? AND destination_voting_deadline IS NOT NULL AND destination_voting_deadline <= ? AND locked_destination_id IS NULL) OR (phase = ? AND itinerary_voting_deadline IS NOT NULL AND itinerary_voting_deadline <= ?)",
			enums.TripPhaseDestination, now, enums.TripPhaseItinerary, now,
		).
		Find(&rows).Error
	return rows, err
}

// ListUpcomingDeadlines returns trips whose active voting deadline is still
// ahead. The worker re-arms its one-shot deadline checks from this set on
// startup, since pending timers do not survive a restart.
func (r *repositoryImpl) ListUpcomingDeadlines(ctx context.Context, now time.Time) ([]models.Trip, error) {
	var rows []models.Trip
	err := r.db.WithContext(ctx).
		Where(
			"(phase = ? AND destination_voting_deadline IS NOT NULL AND destination_voting_deadline > ? AND locked_destination_id IS NULL) OR (phase = ? AND itinerary_voting_deadline IS NOT NULL AND itinerary_voting_deadline > ?)",
			enums.TripPhaseDestination, now, enums.TripPhaseItinerary, now,
		).
		Find(&rows).Error
	return rows, err
}
