package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/TheRealPress1/roamiii-backend/internal/users"
	pkgauth "github.com/TheRealPress1/roamiii-backend/pkg/auth"
	"github.com/TheRealPress1/roamiii-backend/pkg/auth/session"
	"github.com/TheRealPress1/roamiii-backend/pkg/config"
	"github.com/TheRealPress1/roamiii-backend/pkg/db"
	"github.com/TheRealPress1/roamiii-backend/pkg/db/models"
	pkgerrors "github.com/TheRealPress1/roamiii-backend/pkg/errors"
	"github.com/TheRealPress1/roamiii-backend/pkg/logger"
)

// Service exposes account and session operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*UserView, *TokenPair, error)
	Login(ctx context.Context, input LoginInput) (*UserView, *TokenPair, error)
	Refresh(ctx context.Context, input RefreshInput) (*TokenPair, error)
	Logout(ctx context.Context, accessID string) error
	Me(ctx context.Context, userID uuid.UUID) (*UserView, error)
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type service struct {
	users    users.Repository
	sessions sessionManager
	jwtCfg   config.JWTConfig
	logg     *logger.Logger
}

// NewService wires auth dependencies.
func NewService(userRepo users.Repository, sessions *session.Manager, jwtCfg config.JWTConfig, logg *logger.Logger) (Service, error) {
	if userRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "session manager required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		users:    userRepo,
		sessions: sessions,
		jwtCfg:   jwtCfg,
		logg:     logg,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*UserView, *TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}
	if existing != nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	}

	hash, err := pkgauth.HashPassword(input.Password)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(input.DisplayName),
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if db.IsUniqueViolation(err, "ux_users_email") {
			return nil, nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	pair, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	logCtx := s.logg.WithUserID(ctx, user.ID.String())
	s.logg.Info(logCtx, "account registered")
	return toUserView(&user), pair, nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*UserView, *TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}
	if user == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	if err := pkgauth.VerifyPassword(user.PasswordHash, input.Password); err != nil {
		if errors.Is(err, pkgauth.ErrPasswordMismatch) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}

	pair, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return toUserView(user), pair, nil
}

func (s *service) Refresh(ctx context.Context, input RefreshInput) (*TokenPair, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, input.AccessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}

	newAccessID, refreshToken, err := s.sessions.Rotate(ctx, claims.ID, input.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	now := time.Now().UTC()
	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		UserID: claims.UserID,
		JTI:    newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(time.Duration(s.jwtCfg.ExpirationMinutes) * time.Minute),
	}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access id required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*UserView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return toUserView(user), nil
}

func (s *service) issueTokens(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	now := time.Now().UTC()
	accessID := session.NewAccessID()

	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		UserID: userID,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	refreshToken, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(time.Duration(s.jwtCfg.ExpirationMinutes) * time.Minute),
	}, nil
}

func toUserView(user *models.User) *UserView {
	return &UserView{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt,
	}
}
