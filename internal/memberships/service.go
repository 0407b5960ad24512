package memberships

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/TheRealPress1/roamiii-backend/internal/notifications"
	"github.com/TheRealPress1/roamiii-backend/internal/users"
	"github.com/TheRealPress1/roamiii-backend/pkg/db"
	"github.com/TheRealPress1/roamiii-backend/pkg/db/models"
	"github.com/TheRealPress1/roamiii-backend/pkg/enums"
	pkgerrors "github.com/TheRealPress1/roamiii-backend/pkg/errors"
	"github.com/TheRealPress1/roamiii-backend/pkg/logger"
	"github.com/TheRealPress1/roamiii-backend/pkg/outbox"
)

// Service manages the trip roster. Membership rows are never deleted; removal
// flips status so votes and expense splits keep their attribution.
type Service interface {
	Invite(ctx context.Context, tripID, actorID uuid.UUID, email string) (*models.TripMembership, error)
	Accept(ctx context.Context, tripID, userID uuid.UUID) error
	Leave(ctx context.Context, tripID, userID uuid.UUID) error
	Remove(ctx context.Context, tripID, actorID, targetID uuid.UUID) error
	ChangeRole(ctx context.Context, tripID, targetID uuid.UUID, role enums.MemberRole) error
	List(ctx context.Context, tripID uuid.UUID) ([]MemberView, error)
	GetActive(ctx context.Context, tripID, userID uuid.UUID) (*models.TripMembership, error)
}

type service struct {
	client   *db.Client
	repo     Repository
	users    users.Repository
	outbox   *outbox.Service
	notifier notifications.Service
	logg     *logger.Logger
}

// NewService wires membership dependencies.
func NewService(
	client *db.Client,
	repo Repository,
	userRepo users.Repository,
	outboxSvc *outbox.Service,
	notifier notifications.Service,
	logg *logger.Logger,
) (Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db client required")
	}
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "memberships repository required")
	}
	if userRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if outboxSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox service required")
	}
	if notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications service required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		client:   client,
		repo:     repo,
		users:    userRepo,
		outbox:   outboxSvc,
		notifier: notifier,
		logg:     logg,
	}, nil
}

func (s *service) Invite(ctx context.Context, tripID, actorID uuid.UUID, email string) (*models.TripMembership, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}

	target, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}
	if target == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no account for that email")
	}

	existing, err := s.repo.Get(ctx, tripID, target.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup membership")
	}

	var membership *models.TripMembership
	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		switch {
		case existing == nil:
			row := models.TripMembership{
				TripID:          tripID,
				UserID:          target.ID,
				Role:            enums.MemberRoleMember,
				Status:          enums.MembershipStatusInvited,
				InvitedByUserID: &actorID,
			}
			if err := txRepo.Create(ctx, &row); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create membership")
			}
			membership = &row

		case existing.Status == enums.MembershipStatusRemoved:
			// Re-inviting a removed member reuses the existing row.
			if _, err := txRepo.UpdateStatus(ctx, tripID, target.ID, enums.MembershipStatusInvited); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reinstate membership")
			}
			existing.Status = enums.MembershipStatusInvited
			membership = existing

		default:
			return pkgerrors.New(pkgerrors.CodeConflict, "user is already on this trip")
		}

		return s.notifier.NotifyTx(ctx, tx, notifications.NotifyInput{
			UserID:  target.ID,
			TripID:  &tripID,
			Type:    enums.NotificationTypeTripInvite,
			Title:   "Trip invitation",
			Message: "You have been invited to join a trip.",
		})
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

func (s *service) Accept(ctx context.Context, tripID, userID uuid.UUID) error {
	existing, err := s.repo.Get(ctx, tripID, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup membership")
	}
	if existing == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "invitation not found")
	}
	if existing.Status != enums.MembershipStatusInvited {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "invitation is not pending")
	}

	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).UpdateStatus(ctx, tripID, userID, enums.MembershipStatusActive); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "activate membership")
		}
		return s.emitRosterChange(ctx, tx, tripID, userID, enums.MembershipStatusActive)
	})
}

func (s *service) Leave(ctx context.Context, tripID, userID uuid.UUID) error {
	existing, err := s.repo.Get(ctx, tripID, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup membership")
	}
	if existing == nil || existing.Status == enums.MembershipStatusRemoved {
		return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
	}
	if existing.Role == enums.MemberRoleOwner {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "trip owner cannot leave")
	}

	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).UpdateStatus(ctx, tripID, userID, enums.MembershipStatusRemoved); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove membership")
		}
		return s.emitRosterChange(ctx, tx, tripID, userID, enums.MembershipStatusRemoved)
	})
}

func (s *service) Remove(ctx context.Context, tripID, actorID, targetID uuid.UUID) error {
	if actorID == targetID {
		return pkgerrors.New(pkgerrors.CodeValidation, "use leave to remove yourself")
	}
	existing, err := s.repo.Get(ctx, tripID, targetID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup membership")
	}
	if existing == nil || existing.Status == enums.MembershipStatusRemoved {
		return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
	}
	if existing.Role == enums.MemberRoleOwner {
		return pkgerrors.New(pkgerrors.CodeForbidden, "trip owner cannot be removed")
	}

	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).UpdateStatus(ctx, tripID, targetID, enums.MembershipStatusRemoved); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove membership")
		}
		return s.emitRosterChange(ctx, tx, tripID, targetID, enums.MembershipStatusRemoved)
	})
}

func (s *service) ChangeRole(ctx context.Context, tripID, targetID uuid.UUID, role enums.MemberRole) error {
	if role != enums.MemberRoleAdmin && role != enums.MemberRoleMember {
		return pkgerrors.New(pkgerrors.CodeValidation, "role must be admin or member")
	}
	existing, err := s.repo.Get(ctx, tripID, targetID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup membership")
	}
	if existing == nil || existing.Status == enums.MembershipStatusRemoved {
		return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
	}
	if existing.Role == enums.MemberRoleOwner {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "owner role cannot change")
	}
	if existing.Role == role {
		return nil
	}
	if _, err := s.repo.UpdateRole(ctx, tripID, targetID, role); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update role")
	}
	return nil
}

func (s *service) List(ctx context.Context, tripID uuid.UUID) ([]MemberView, error) {
	rows, err := s.repo.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list memberships")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.UserID)
	}
	accounts, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	byID := make(map[uuid.UUID]models.User, len(accounts))
	for _, account := range accounts {
		byID[account.ID] = account
	}

	views := make([]MemberView, 0, len(rows))
	for _, row := range rows {
		account := byID[row.UserID]
		views = append(views, MemberView{
			UserID:      row.UserID,
			DisplayName: account.DisplayName,
			Email:       account.Email,
			Role:        row.Role,
			Status:      row.Status,
			JoinedAt:    row.CreatedAt,
		})
	}
	return views, nil
}

// GetActive returns the membership when it exists and is active.
func (s *service) GetActive(ctx context.Context, tripID, userID uuid.UUID) (*models.TripMembership, error) {
	row, err := s.repo.Get(ctx, tripID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup membership")
	}
	if row == nil || row.Status != enums.MembershipStatusActive {
		return nil, nil
	}
	return row, nil
}

func (s *service) emitRosterChange(ctx context.Context, tx *gorm.DB, tripID, userID uuid.UUID, status enums.MembershipStatus) error {
	event := outbox.DomainEvent{
		EventType:     enums.EventMembershipChanged,
		AggregateType: enums.AggregateTrip,
		AggregateID:   tripID,
		TripID:        tripID,
		Data: map[string]any{
			"userId": userID.String(),
			"status": string(status),
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("emit %s", enums.EventMembershipChanged))
	}
	return nil
}
