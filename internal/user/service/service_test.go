package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/estdev3690/digital-e-gram-panchayat/internal/jwttoken"
	"github.com/estdev3690/digital-e-gram-panchayat/internal/platform/logger"
	"github.com/estdev3690/digital-e-gram-panchayat/internal/user/models"
	"github.com/estdev3690/digital-e-gram-panchayat/internal/user/store"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/domain"
	dErrors "github.com/estdev3690/digital-e-gram-panchayat/pkg/domain-errors"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/testutil"
)

type UserServiceSuite struct {
	suite.Suite
	store   *store.InMemory
	tokens  *jwttoken.Service
	service *Service
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceSuite))
}

func (s *UserServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.tokens = jwttoken.NewService("test-signing-key", "portal-test")
	s.service = NewService(s.store, s.tokens, time.Hour, logger.New(logger.ParseLevel("error")))
}

func (s *UserServiceSuite) register(email string) *models.User {
	u, _, err := s.service.Register(testutil.ContextAs(domain.RoleUser), RegisterInput{
		Name:     "Asha Devi",
		Email:    email,
		Password: "secret-pass",
		Phone:    "9000000001",
	})
	s.Require().NoError(err)
	return u
}

// =============================================================================
// Registration Tests
// =============================================================================

func (s *UserServiceSuite) TestRegister() {
	s.Run("creates a citizen account with a hashed password and a token", func() {
		u, token, err := s.service.Register(testutil.ContextAs(domain.RoleUser), RegisterInput{
			Name:     "Asha Devi",
			Email:    "asha@example.com",
			Password: "secret-pass",
		})
		s.Require().NoError(err)

		s.Equal(domain.RoleUser, u.Role)
		s.Equal("asha@example.com", u.Email)
		s.NotEmpty(u.PasswordHash)
		s.NotEqual("secret-pass", u.PasswordHash)

		claims, err := s.tokens.ValidateToken(token)
		s.Require().NoError(err)
		s.Equal(u.ID.String(), claims.UserID)
	})

	s.Run("email is normalized to lower case", func() {
		u := s.register("Rakesh@Example.COM")
		s.Equal("rakesh@example.com", u.Email)
	})

	s.Run("duplicate email conflicts", func() {
		s.register("dup@example.com")
		_, _, err := s.service.Register(testutil.ContextAs(domain.RoleUser), RegisterInput{
			Name:     "Other",
			Email:    "DUP@example.com",
			Password: "secret-pass",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("short password is rejected", func() {
		_, _, err := s.service.Register(testutil.ContextAs(domain.RoleUser), RegisterInput{
			Name:     "Short",
			Email:    "short@example.com",
			Password: "abc",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("malformed aadhar is rejected", func() {
		_, _, err := s.service.Register(testutil.ContextAs(domain.RoleUser), RegisterInput{
			Name:         "Bad Aadhar",
			Email:        "aadhar@example.com",
			Password:     "secret-pass",
			AadharNumber: "12345",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

// =============================================================================
// Login Tests
// =============================================================================

func (s *UserServiceSuite) TestLogin() {
	registered := s.register("login@example.com")

	s.Run("valid credentials mint a verifiable token", func() {
		u, token, err := s.service.Login(testutil.ContextAs(domain.RoleUser), "login@example.com", "secret-pass")
		s.Require().NoError(err)
		s.Equal(registered.ID, u.ID)

		claims, err := s.tokens.ValidateToken(token)
		s.Require().NoError(err)
		s.Equal(registered.ID.String(), claims.UserID)
	})

	s.Run("wrong password fails as invalid credentials", func() {
		_, _, err := s.service.Login(testutil.ContextAs(domain.RoleUser), "login@example.com", "wrong-pass")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("unknown email fails identically", func() {
		_, _, err := s.service.Login(testutil.ContextAs(domain.RoleUser), "ghost@example.com", "secret-pass")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

// =============================================================================
// Profile Tests
// =============================================================================

func (s *UserServiceSuite) TestProfile() {
	u := s.register("profile@example.com")
	ctx := testutil.ContextFor(domain.Principal{ID: u.ID, Role: u.Role})

	s.Run("returns the caller's own account", func() {
		got, err := s.service.Profile(ctx)
		s.Require().NoError(err)
		s.Equal(u.Email, got.Email)
	})

	s.Run("updates name and phone", func() {
		name, phone := "Asha D.", "9000000009"
		got, err := s.service.UpdateProfile(ctx, models.ProfileUpdate{Name: &name, Phone: &phone})
		s.Require().NoError(err)
		s.Equal("Asha D.", got.Name)
		s.Equal("9000000009", got.Phone)
	})

	s.Run("anonymous callers are unauthorized", func() {
		_, err := s.service.Profile(testutil.ContextFor(domain.Principal{}))
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

// =============================================================================
// Administration Tests
// =============================================================================

func (s *UserServiceSuite) TestAdministration() {
	citizen := s.register("citizen@example.com")
	adminCtx := testutil.ContextAs(domain.RoleAdmin)

	s.Run("admin lists accounts", func() {
		users, err := s.service.List(adminCtx)
		s.Require().NoError(err)
		s.Len(users, 1)
	})

	s.Run("staff cannot list accounts", func() {
		_, err := s.service.List(testutil.ContextAs(domain.RoleStaff))
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("admin promotes a citizen to staff", func() {
		got, err := s.service.ChangeRole(adminCtx, citizen.ID, domain.RoleStaff)
		s.Require().NoError(err)
		s.Equal(domain.RoleStaff, got.Role)
	})

	s.Run("admins cannot change their own role", func() {
		admin := domain.Principal{ID: domain.NewUserID(), Role: domain.RoleAdmin}
		_, err := s.service.ChangeRole(testutil.ContextFor(admin), admin.ID, domain.RoleUser)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown account is not found", func() {
		_, err := s.service.ChangeRole(adminCtx, domain.NewUserID(), domain.RoleStaff)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
