package messages

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/TheRealPress1/roamiii-backend/pkg/db/models"
	"github.com/TheRealPress1/roamiii-backend/pkg/enums"
	pkgerrors "github.com/TheRealPress1/roamiii-backend/pkg/errors"
	"github.com/TheRealPress1/roamiii-backend/pkg/pagination"
)

const maxMessageLength = 4000

// Service exposes the trip message stream.
type Service interface {
	Post(ctx context.Context, tripID, authorID uuid.UUID, body string) (*models.TripMessage, error)
	PostSystemTx(ctx context.Context, tx *gorm.DB, tripID uuid.UUID, body string) error
	List(ctx context.Context, tripID uuid.UUID, limit int, cursor string) (*ListResult, error)
}

// ListResult wraps returned messages and the cursor for the next page.
type ListResult struct {
	Items  []models.TripMessage `json:"items"`
	Cursor string               `json:"cursor"`
}

type service struct {
	repo Repository
}

// NewService wires message dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "messages repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Post(ctx context.Context, tripID, authorID uuid.UUID, body string) (*models.TripMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message body required")
	}
	if len(body) > maxMessageLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message body too long")
	}

	row := models.TripMessage{
		TripID:   tripID,
		AuthorID: &authorID,
		Kind:     enums.MessageKindUser,
		Body:     body,
	}
	if err := s.repo.Create(ctx, &row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create message")
	}
	return &row, nil
}

// PostSystemTx writes a system-log entry inside the caller's transaction so it
// commits together with the transition it narrates.
func (s *service) PostSystemTx(ctx context.Context, tx *gorm.DB, tripID uuid.UUID, body string) error {
	row := models.TripMessage{
		TripID: tripID,
		Kind:   enums.MessageKindSystem,
		Body:   body,
	}
	repo := s.repo
	if tx != nil {
		repo = s.repo.WithTx(tx)
	}
	if err := repo.Create(ctx, &row); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create system message")
	}
	return nil
}

func (s *service) List(ctx context.Context, tripID uuid.UUID, limit int, cursor string) (*ListResult, error) {
	var parsed *pagination.Cursor
	if cursor != "" {
		c, err := pagination.ParseCursor(cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		parsed = c
	}

	rows, next, err := s.repo.List(ctx, tripID, limit, parsed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list messages")
	}

	encoded := ""
	if next != nil {
		encoded = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: encoded}, nil
}
