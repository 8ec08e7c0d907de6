// Package service manages portal accounts: registration, login, profile
// upkeep, and administrative role changes.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/estdev3690/digital-e-gram-panchayat/internal/authz"
	"github.com/estdev3690/digital-e-gram-panchayat/internal/user/models"
	"github.com/estdev3690/digital-e-gram-panchayat/internal/user/secrets"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/domain"
	dErrors "github.com/estdev3690/digital-e-gram-panchayat/pkg/domain-errors"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/platform/sentinel"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/requestcontext"
)

// Store is the account repository contract.
type Store interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id domain.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, u *models.User) error
}

// TokenIssuer mints access tokens after a successful login.
type TokenIssuer interface {
	GenerateAccessToken(p domain.Principal, expiresIn time.Duration) (string, error)
}

type Service struct {
	store    Store
	tokens   TokenIssuer
	tokenTTL time.Duration
	logger   *slog.Logger
}

func NewService(store Store, tokens TokenIssuer, tokenTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{store: store, tokens: tokens, tokenTTL: tokenTTL, logger: logger}
}

// RegisterInput carries the fields for a new citizen account.
type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	Phone        string
	Address      string
	AadharNumber string
}

// Register creates a citizen account and logs it in. New accounts always get
// the user role; staff and admin are granted afterwards by an administrator.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	hash, err := secrets.Hash(in.Password)
	if err != nil {
		return nil, "", err
	}

	u, err := models.NewUser(domain.NewUserID(), in.Name, in.Email, hash,
		in.Phone, in.Address, in.AadharNumber, requestcontext.Now(ctx))
	if err != nil {
		return nil, "", err
	}

	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, "", dErrors.New(dErrors.CodeConflict, "User already exists")
		}
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	token, err := s.tokens.GenerateAccessToken(domain.Principal{ID: u.ID, Role: u.Role}, s.tokenTTL)
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", u.ID.String())
	return u, token, nil
}

// Login verifies credentials and mints an access token. Unknown emails and
// wrong passwords produce the same error so login does not leak which
// accounts exist.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	invalid := dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials")

	u, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, "", invalid
	}
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}
	if !secrets.Verify(u.PasswordHash, password) {
		return nil, "", invalid
	}

	token, err := s.tokens.GenerateAccessToken(domain.Principal{ID: u.ID, Role: u.Role}, s.tokenTTL)
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", u.ID.String())
	return u, token, nil
}

// Profile returns the calling principal's account.
func (s *Service) Profile(ctx context.Context) (*models.User, error) {
	principal := requestcontext.Principal(ctx)
	if principal.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return s.findUser(ctx, principal.ID)
}

// UpdateProfile applies a partial update to the caller's own account.
func (s *Service) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	principal := requestcontext.Principal(ctx)
	if principal.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	u, err := s.findUser(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	if err := u.ApplyProfile(update, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, u); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
	}
	return u, nil
}

// List returns every account. Admin only.
func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	if err := authz.Check(requestcontext.Principal(ctx), authz.ActionManageUsers); err != nil {
		return nil, err
	}
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return users, nil
}

// ChangeRole grants or revokes staff and admin roles. Admin only; an admin
// cannot demote their own account.
func (s *Service) ChangeRole(ctx context.Context, id domain.UserID, role domain.Role) (*models.User, error) {
	principal := requestcontext.Principal(ctx)
	if err := authz.Check(principal, authz.ActionManageUsers); err != nil {
		return nil, err
	}
	if principal.ID == id {
		return nil, dErrors.New(dErrors.CodeValidation, "cannot change your own role")
	}

	u, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.SetRole(role, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, u); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
	}

	s.logger.InfoContext(ctx, "user role changed",
		"user_id", id.String(), "role", string(role), "changed_by", principal.ID.String())
	return u, nil
}

// Lookup returns an account by id without an authorization check. It exists
// for internal collaborators such as response projections; HTTP access to
// other accounts stays behind List and ChangeRole.
func (s *Service) Lookup(ctx context.Context, id domain.UserID) (*models.User, error) {
	return s.findUser(ctx, id)
}

func (s *Service) findUser(ctx context.Context, id domain.UserID) (*models.User, error) {
	u, err := s.store.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "User not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}
	return u, nil
}
