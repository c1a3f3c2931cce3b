package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/technosupport/ts-shopguard/internal/middleware"
	"github.com/technosupport/ts-shopguard/internal/users"
)

type AuthHandler struct {
	Users *users.Service
}

func NewAuthHandler(svc *users.Service) *AuthHandler {
	return &AuthHandler{Users: svc}
}

type registerRequest struct {
	Email            string   `json:"email"`
	Password         string   `json:"password"`
	FirstName        string   `json:"first_name"`
	LastName         string   `json:"last_name"`
	MobileNumber     string   `json:"mobile_number"`
	AlternateNumbers []string `json:"alternate_numbers"`
	ShopName         string   `json:"shop_name"`
	ShopAddress      string   `json:"shop_address"`
	OpeningTime      string   `json:"opening_time"`
	ClosingTime      string   `json:"closing_time"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string          `json:"token"`
	Profile profileResponse `json:"profile"`
}

// POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	p, err := h.Users.Register(r.Context(), users.RegisterParams{
		Email:            req.Email,
		Password:         req.Password,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		MobileNumber:     req.MobileNumber,
		AlternateNumbers: req.AlternateNumbers,
		ShopName:         req.ShopName,
		ShopAddress:      req.ShopAddress,
		OpeningTime:      req.OpeningTime,
		ClosingTime:      req.ClosingTime,
	})
	switch {
	case errors.Is(err, users.ErrEmailTaken):
		respondError(w, http.StatusConflict, "Email already registered")
		return
	case errors.Is(err, users.ErrBadShopHours), errors.Is(err, users.ErrInvalidCredentials):
		respondError(w, http.StatusBadRequest, "Invalid registration data")
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	respondJSON(w, http.StatusCreated, toProfileResponse(p))
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	token, p, err := h.Users.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, users.ErrInvalidCredentials) {
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	respondJSON(w, http.StatusOK, loginResponse{Token: token, Profile: toProfileResponse(p)})
}

// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Users.Logout(r.Context(), rawToken(r)); err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type ProfileHandler struct {
	Users      *users.Service
	Controller ShopHoursSetter
}

// ShopHoursSetter is the controller surface the profile handler touches.
type ShopHoursSetter interface {
	SetShopHours(opening, closing string)
}

// GET /api/v1/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	ac, ok := middleware.GetAuthContext(r.Context())
	if !ok {
		respondError(w, http.StatusForbidden, "Forbidden")
		return
	}

	p, err := h.Users.Get(r.Context(), ac.Email)
	if errors.Is(err, users.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Profile not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Lookup failed")
		return
	}
	respondJSON(w, http.StatusOK, toProfileResponse(p))
}

type hoursRequest struct {
	OpeningTime string `json:"opening_time"`
	ClosingTime string `json:"closing_time"`
}

// PUT /api/v1/profile/hours updates the persisted shop hours and pushes them
// into the live schedule check.
func (h *ProfileHandler) UpdateHours(w http.ResponseWriter, r *http.Request) {
	ac, ok := middleware.GetAuthContext(r.Context())
	if !ok {
		respondError(w, http.StatusForbidden, "Forbidden")
		return
	}

	var req hoursRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	p, err := h.Users.UpdateHours(r.Context(), ac.Email, req.OpeningTime, req.ClosingTime)
	if errors.Is(err, users.ErrBadShopHours) {
		respondError(w, http.StatusBadRequest, "Shop hours must be HH:MM")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Update failed")
		return
	}

	h.Controller.SetShopHours(p.OpeningTime, p.ClosingTime)
	respondJSON(w, http.StatusOK, toProfileResponse(p))
}
