package proposals

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/TheRealPress1/roamiii-backend/pkg/db"
	"github.com/TheRealPress1/roamiii-backend/pkg/db/models"
	"github.com/TheRealPress1/roamiii-backend/pkg/enums"
	pkgerrors "github.com/TheRealPress1/roamiii-backend/pkg/errors"
	"github.com/TheRealPress1/roamiii-backend/pkg/logger"
	"github.com/TheRealPress1/roamiii-backend/pkg/outbox"
)

// TripReader is the narrow read surface the proposal flow needs from trips.
type TripReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Trip, error)
}

// Service manages proposals and votes. Vote casts and proposal creation are
// the main reactive triggers for the voting monitor, so both emit outbox
// events in the same transaction as the write.
type Service interface {
	Create(ctx context.Context, tripID, userID uuid.UUID, input CreateInput) (*models.Proposal, error)
	Get(ctx context.Context, proposalID uuid.UUID) (*models.Proposal, error)
	List(ctx context.Context, tripID uuid.UUID, isDestination bool) ([]models.Proposal, error)
	CastVote(ctx context.Context, proposalID, userID uuid.UUID, input VoteInput) (*models.Vote, error)
}

type service struct {
	client *db.Client
	repo   Repository
	trips  TripReader
	outbox *outbox.Service
	logg   *logger.Logger
}

// NewService wires proposal dependencies.
func NewService(client *db.Client, repo Repository, trips TripReader, outboxSvc *outbox.Service, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db client required")
	}
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "proposals repository required")
	}
	if trips == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "trip reader required")
	}
	if outboxSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox service required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		client: client,
		repo:   repo,
		trips:  trips,
		outbox: outboxSvc,
		logg:   logg,
	}, nil
}

func (s *service) Create(ctx context.Context, tripID, userID uuid.UUID, input CreateInput) (*models.Proposal, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}

	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get trip")
	}
	if trip == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "trip not found")
	}
	if input.IsDestination && trip.Phase != enums.TripPhaseDestination {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "destination voting is closed")
	}
	if !input.IsDestination && trip.Phase == enums.TripPhaseReady {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "trip is already ready")
	}

	proposal := models.Proposal{
		TripID:        tripID,
		CreatedBy:     userID,
		Title:         title,
		Notes:         input.Notes,
		IsDestination: input.IsDestination,
	}
	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, &proposal); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create proposal")
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventProposalCreated,
			AggregateType: enums.AggregateProposal,
			AggregateID:   proposal.ID,
			TripID:        tripID,
			Actor:         &outbox.ActorRef{UserID: userID, TripID: &tripID},
			Data: map[string]any{
				"title":         title,
				"isDestination": input.IsDestination,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit proposal created")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

func (s *service) Get(ctx context.Context, proposalID uuid.UUID) (*models.Proposal, error) {
	proposal, err := s.repo.GetByID(ctx, proposalID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get proposal")
	}
	if proposal == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "proposal not found")
	}
	return proposal, nil
}

func (s *service) List(ctx context.Context, tripID uuid.UUID, isDestination bool) ([]models.Proposal, error) {
	rows, err := s.repo.ListByTrip(ctx, tripID, isDestination)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list proposals")
	}
	return rows, nil
}

func (s *service) CastVote(ctx context.Context, proposalID, userID uuid.UUID, input VoteInput) (*models.Vote, error) {
	if input.Kind == nil && input.Score == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vote requires a kind or a score")
	}
	var kind *enums.VoteKind
	if input.Kind != nil {
		parsed, err := enums.ParseVoteKind(*input.Kind)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "kind must be in, maybe, or out")
		}
		kind = &parsed
	}
	if input.Score != nil && (*input.Score < 0 || *input.Score > 100) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "score must be between 0 and 100")
	}

	proposal, err := s.repo.GetByID(ctx, proposalID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get proposal")
	}
	if proposal == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "proposal not found")
	}

	trip, err := s.trips.GetByID(ctx, proposal.TripID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get trip")
	}
	if trip == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "trip not found")
	}
	votingPhase := enums.TripPhaseItinerary
	if proposal.IsDestination {
		votingPhase = enums.TripPhaseDestination
	}
	if trip.Phase != votingPhase {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "voting is closed for this proposal")
	}

	vote := models.Vote{
		ProposalID: proposalID,
		UserID:     userID,
		Kind:       kind,
		Score:      input.Score,
	}
	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).UpsertVote(ctx, &vote); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert vote")
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventVoteCast,
			AggregateType: enums.AggregateProposal,
			AggregateID:   proposalID,
			TripID:        proposal.TripID,
			Actor:         &outbox.ActorRef{UserID: userID, TripID: &proposal.TripID},
			Data: map[string]any{
				"proposalId": proposalID.String(),
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit vote cast")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &vote, nil
}
