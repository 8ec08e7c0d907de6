// Package models defines the service catalog entry citizens apply against.
package models

import (
	"strings"
	"time"

	"github.com/estdev3690/digital-e-gram-panchayat/pkg/domain"
	dErrors "github.com/estdev3690/digital-e-gram-panchayat/pkg/domain-errors"
)

// Service is one offering in the panchayat's catalog. Inactive services stay
// visible to administrators but cannot receive new applications.
type Service struct {
	ID                domain.ServiceID `json:"id"`
	Title             string           `json:"title"`
	Description       string           `json:"description"`
	Category          string           `json:"category"`
	RequiredDocuments []string         `json:"required_documents"`
	ProcessingTime    string           `json:"processing_time"`
	Fees              int64            `json:"fees"`
	IsActive          bool             `json:"is_active"`
	CreatedBy         domain.UserID    `json:"created_by"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// NewService builds a catalog entry, active by default.
func NewService(id domain.ServiceID, title, description, category string, requiredDocuments []string, processingTime string, fees int64, createdBy domain.UserID, now time.Time) (*Service, error) {
	svc := &Service{
		ID:                id,
		Title:             strings.TrimSpace(title),
		Description:       strings.TrimSpace(description),
		Category:          strings.TrimSpace(category),
		RequiredDocuments: requiredDocuments,
		ProcessingTime:    strings.TrimSpace(processingTime),
		Fees:              fees,
		IsActive:          true,
		CreatedBy:         createdBy,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := svc.validate(); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *Service) validate() error {
	if s.Title == "" {
		return dErrors.New(dErrors.CodeValidation, "service title is required")
	}
	if s.Description == "" {
		return dErrors.New(dErrors.CodeValidation, "service description is required")
	}
	if s.Fees < 0 {
		return dErrors.New(dErrors.CodeValidation, "service fees cannot be negative")
	}
	return nil
}

// Update is the mutable subset of a catalog entry. Nil pointers leave the
// corresponding field unchanged.
type Update struct {
	Title             *string
	Description       *string
	Category          *string
	RequiredDocuments *[]string
	ProcessingTime    *string
	Fees              *int64
	IsActive          *bool
}

// Apply merges the update into the entry and revalidates it.
func (s *Service) Apply(u Update, now time.Time) error {
	if u.Title != nil {
		s.Title = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		s.Description = strings.TrimSpace(*u.Description)
	}
	if u.Category != nil {
		s.Category = strings.TrimSpace(*u.Category)
	}
	if u.RequiredDocuments != nil {
		s.RequiredDocuments = *u.RequiredDocuments
	}
	if u.ProcessingTime != nil {
		s.ProcessingTime = strings.TrimSpace(*u.ProcessingTime)
	}
	if u.Fees != nil {
		s.Fees = *u.Fees
	}
	if u.IsActive != nil {
		s.IsActive = *u.IsActive
	}
	if err := s.validate(); err != nil {
		return err
	}
	s.UpdatedAt = now
	return nil
}
