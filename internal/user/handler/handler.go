// Package handler exposes registration, login, and account management over
// HTTP.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/estdev3690/digital-e-gram-panchayat/internal/user/models"
	userservice "github.com/estdev3690/digital-e-gram-panchayat/internal/user/service"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/domain"
	dErrors "github.com/estdev3690/digital-e-gram-panchayat/pkg/domain-errors"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/platform/httputil"
)

type Handler struct {
	service *userservice.Service
	logger  *slog.Logger
}

func NewHandler(service *userservice.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// PublicRoutes mounts the unauthenticated endpoints.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
}

// ProfileRoutes mounts the self-service endpoints. The router must already
// enforce authentication.
func (h *Handler) ProfileRoutes(r chi.Router) {
	r.Get("/users/profile", h.Profile)
	r.Put("/users/profile", h.UpdateProfile)
}

// AdminRoutes mounts the account management endpoints.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Get("/users", h.List)
	r.Patch("/users/{userID}/role", h.ChangeRole)
}

type registerRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	AadharNumber string `json:"aadhar_number"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	u, token, err := h.service.Register(r.Context(), userservice.RegisterInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Phone:        req.Phone,
		Address:      req.Address,
		AadharNumber: req.AadharNumber,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, loginResponse{Token: token, User: u})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	u, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, loginResponse{Token: token, User: u})
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Profile(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}

type profileUpdateRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	u, err := h.service.UpdateProfile(r.Context(), models.ProfileUpdate{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, users)
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req changeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	u, err := h.service.ChangeRole(r.Context(), id, role)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}
