package jwttoken

import "github.com/estdev3690/digital-e-gram-panchayat/internal/platform/middleware"

// MiddlewareAdapter adapts Service to the middleware.TokenValidator interface
// so the transport layer never imports jwt directly.
type MiddlewareAdapter struct {
	service *Service
}

func NewMiddlewareAdapter(service *Service) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.TokenClaims{
		UserID: claims.UserID,
		Role:   claims.Role,
	}, nil
}
