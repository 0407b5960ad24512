package expenses

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/TheRealPress1/roamiii-backend/internal/memberships"
	"github.com/TheRealPress1/roamiii-backend/internal/notifications"
	"github.com/TheRealPress1/roamiii-backend/internal/proposals"
	"github.com/TheRealPress1/roamiii-backend/pkg/db"
	"github.com/TheRealPress1/roamiii-backend/pkg/db/models"
	"github.com/TheRealPress1/roamiii-backend/pkg/enums"
	pkgerrors "github.com/TheRealPress1/roamiii-backend/pkg/errors"
	"github.com/TheRealPress1/roamiii-backend/pkg/logger"
	"github.com/TheRealPress1/roamiii-backend/pkg/outbox"
)

// Service manages the trip expense ledger.
type Service interface {
	Create(ctx context.Context, tripID, payerID uuid.UUID, input CreateInput) (*models.Expense, error)
	ClaimBooking(ctx context.Context, tripID, proposalID, payerID uuid.UUID, input ClaimBookingInput) (*models.Expense, error)
	List(ctx context.Context, tripID uuid.UUID) ([]models.Expense, error)
	GetSummary(ctx context.Context, tripID uuid.UUID) (*Summary, error)
	BalanceFor(ctx context.Context, tripID, userID uuid.UUID) (*UserBalance, error)
	Settle(ctx context.Context, tripID uuid.UUID, input SettleInput) (int64, error)
}

// UserBalance is one member's net ledger position.
type UserBalance struct {
	UserID  uuid.UUID `json:"user_id"`
	Balance string    `json:"balance"`
}

type service struct {
	client    *db.Client
	repo      Repository
	members   memberships.Repository
	proposals proposals.Repository
	notifier  notifications.Service
	outbox    *outbox.Service
	logg      *logger.Logger
}

// NewService wires expense dependencies.
func NewService(
	client *db.Client,
	repo Repository,
	memberRepo memberships.Repository,
	proposalRepo proposals.Repository,
	notifier notifications.Service,
	outboxSvc *outbox.Service,
	logg *logger.Logger,
) (Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db client required")
	}
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "expenses repository required")
	}
	if memberRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "memberships repository required")
	}
	if proposalRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "proposals repository required")
	}
	if notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications service required")
	}
	if outboxSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox service required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		client:    client,
		repo:      repo,
		members:   memberRepo,
		proposals: proposalRepo,
		notifier:  notifier,
		outbox:    outboxSvc,
		logg:      logg,
	}, nil
}

// Create records a shared expense with equal splits across the participants.
// Expense and splits commit atomically; a failed split insert rolls the
// expense back.
func (s *service) Create(ctx context.Context, tripID, payerID uuid.UUID, input CreateInput) (*models.Expense, error) {
	if input.Amount.Sign() <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description required")
	}
	category, err := enums.ParseExpenseCategory(input.Category)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
	}
	if len(input.ParticipantIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one participant required")
	}
	seen := make(map[uuid.UUID]struct{}, len(input.ParticipantIDs))
	for _, participantID := range input.ParticipantIDs {
		if _, dup := seen[participantID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate participant")
		}
		seen[participantID] = struct{}{}
	}

	roster, err := s.members.ListActiveByTrip(ctx, tripID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}
	active := make(map[uuid.UUID]struct{}, len(roster))
	for _, member := range roster {
		active[member.UserID] = struct{}{}
	}
	if _, ok := active[payerID]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "payer is not an active member")
	}
	for _, participantID := range input.ParticipantIDs {
		if _, ok := active[participantID]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "participant is not an active member")
		}
	}

	amounts, err := EqualSplitAmounts(input.Amount, len(input.ParticipantIDs))
	if err != nil {
		return nil, err
	}
	splits := make([]models.ExpenseSplit, len(amounts))
	for i, participantID := range input.ParticipantIDs {
		splits[i] = models.ExpenseSplit{
			UserID:   participantID,
			Amount:   amounts[i],
			Position: i,
		}
	}

	expense := models.Expense{
		TripID:      tripID,
		PaidBy:      payerID,
		Amount:      input.Amount.Round(2),
		Category:    category,
		Description: description,
		ExpenseDate: input.ExpenseDate,
		ProposalID:  input.ProposalID,
		Splits:      splits,
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, &expense); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create expense")
		}
		for _, participantID := range input.ParticipantIDs {
			if participantID == payerID {
				continue
			}
			err := s.notifier.NotifyTx(ctx, tx, notifications.NotifyInput{
				UserID:  participantID,
				TripID:  &tripID,
				Type:    enums.NotificationTypeExpenseAdded,
				Title:   "New shared expense",
				Message: description,
			})
			if err != nil {
				return err
			}
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventExpenseCreated,
			AggregateType: enums.AggregateExpense,
			AggregateID:   expense.ID,
			TripID:        tripID,
			Actor:         &outbox.ActorRef{UserID: payerID, TripID: &tripID},
			Data: map[string]any{
				"amount":   expense.Amount.String(),
				"category": string(category),
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit expense created")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// ClaimBooking records that the caller booked and paid for an itinerary item.
// The cost is split equally across the whole active roster, with the expense
// linked back to the proposal it covers.
func (s *service) ClaimBooking(ctx context.Context, tripID, proposalID, payerID uuid.UUID, input ClaimBookingInput) (*models.Expense, error) {
	proposal, err := s.proposals.GetByID(ctx, proposalID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get proposal")
	}
	if proposal == nil || proposal.TripID != tripID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "proposal not found")
	}
	if proposal.IsDestination {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bookings can only be claimed on itinerary proposals")
	}

	roster, err := s.members.ListActiveByTrip(ctx, tripID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}
	participantIDs := make([]uuid.UUID, 0, len(roster))
	for _, member := range roster {
		participantIDs = append(participantIDs, member.UserID)
	}

	category := input.Category
	if category == "" {
		category = string(enums.ExpenseCategoryActivities)
	}
	expenseDate := input.ExpenseDate
	if expenseDate.IsZero() {
		expenseDate = time.Now().UTC()
	}

	return s.Create(ctx, tripID, payerID, CreateInput{
		Amount:         input.Amount,
		Category:       category,
		Description:    "Booking: " + proposal.Title,
		ExpenseDate:    expenseDate,
		ProposalID:     &proposalID,
		ParticipantIDs: participantIDs,
	})
}

// List returns the trip's expenses with their splits.
func (s *service) List(ctx context.Context, tripID uuid.UUID) ([]models.Expense, error) {
	rows, err := s.repo.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expenses")
	}
	return rows, nil
}

// GetSummary builds the trip's full ledger view: total, category totals, net
// balances, and suggested settlement transfers.
func (s *service) GetSummary(ctx context.Context, tripID uuid.UUID) (*Summary, error) {
	rows, err := s.repo.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expenses")
	}
	if err := VerifySplitSums(rows); err != nil {
		return nil, err
	}

	balances := Balances(rows)
	return &Summary{
		Total:          TotalAmount(rows),
		CategoryTotals: CategoryTotals(rows),
		Balances:       balances,
		Transfers:      Settle(balances),
		Expenses:       rows,
	}, nil
}

func (s *service) BalanceFor(ctx context.Context, tripID, userID uuid.UUID) (*UserBalance, error) {
	rows, err := s.repo.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expenses")
	}
	if err := VerifySplitSums(rows); err != nil {
		return nil, err
	}
	return &UserBalance{
		UserID:  userID,
		Balance: BalanceFor(userID, rows).StringFixed(2),
	}, nil
}

func (s *service) Settle(ctx context.Context, tripID uuid.UUID, input SettleInput) (int64, error) {
	if len(input.SplitIDs) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "split ids required")
	}
	count, err := s.repo.SettleSplits(ctx, tripID, input.SplitIDs, time.Now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle splits")
	}
	return count, nil
}
