// Package models defines portal accounts.
package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/estdev3690/digital-e-gram-panchayat/pkg/domain"
	dErrors "github.com/estdev3690/digital-e-gram-panchayat/pkg/domain-errors"
)

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	aadharPattern = regexp.MustCompile(`^\d{12}$`)
)

// User is a portal account. PasswordHash never leaves the user module.
type User struct {
	ID           domain.UserID `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	PasswordHash string        `json:"-"`
	Role         domain.Role   `json:"role"`
	Phone        string        `json:"phone,omitempty"`
	Address      string        `json:"address,omitempty"`
	AadharNumber string        `json:"aadhar_number,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// NewUser builds a citizen account. Emails are normalized to lower case so
// the store's uniqueness constraint is case insensitive.
func NewUser(id domain.UserID, name, email, passwordHash, phone, address, aadhar string, now time.Time) (*User, error) {
	u := &User{
		ID:           id,
		Name:         strings.TrimSpace(name),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		Role:         domain.RoleUser,
		Phone:        strings.TrimSpace(phone),
		Address:      strings.TrimSpace(address),
		AadharNumber: strings.TrimSpace(aadhar),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.validate(); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *User) validate() error {
	if u.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if !emailPattern.MatchString(u.Email) {
		return dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	if u.PasswordHash == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	if u.AadharNumber != "" && !aadharPattern.MatchString(u.AadharNumber) {
		return dErrors.New(dErrors.CodeValidation, "aadhar number must be 12 digits")
	}
	return nil
}

// ProfileUpdate is the self-service mutable subset of an account. Role and
// email changes take separate, privileged paths.
type ProfileUpdate struct {
	Name    *string
	Phone   *string
	Address *string
}

func (u *User) ApplyProfile(p ProfileUpdate, now time.Time) error {
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.Phone != nil {
		u.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.Address != nil {
		u.Address = strings.TrimSpace(*p.Address)
	}
	if err := u.validate(); err != nil {
		return err
	}
	u.UpdatedAt = now
	return nil
}

// SetRole changes the account role.
func (u *User) SetRole(role domain.Role, now time.Time) error {
	if !role.IsValid() {
		return dErrors.Newf(dErrors.CodeInvalidInput, "unknown role %q", string(role))
	}
	u.Role = role
	u.UpdatedAt = now
	return nil
}
