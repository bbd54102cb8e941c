package server

import (
	"net/http"
	"time"

	"github.com/MrEthical07/fittrack"
	"github.com/MrEthical07/fittrack/internal/stores"
	"github.com/MrEthical07/fittrack/middleware"
)

// handleListUsers is the handler for the GET /users HTTP API.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		s.writeError(w, r, "listing users", err)

		return
	}

	middleware.WriteJSON(w, http.StatusOK, users)
}

// handleGetMe is the handler for the GET /users/me HTTP API.
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	ac, _ := middleware.AuthFromContext(r.Context())

	u, err := s.store.User(r.Context(), ac.User.ID)
	if err != nil {
		s.writeError(w, r, "reading current user", err)

		return
	}

	middleware.WriteJSON(w, http.StatusOK, u)
}

// handleGetUser is the handler for the GET /users/{userId} HTTP API.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	u, err := s.store.User(r.Context(), id)
	if err != nil {
		s.writeError(w, r, "reading user", err)

		return
	}

	middleware.WriteJSON(w, http.StatusOK, u)
}

type createUserRequest struct {
	Username      string               `json:"username" validate:"required,min=3,max=50"`
	Name          string               `json:"name" validate:"required,min=1,max=100"`
	LastName      string               `json:"lastName" validate:"required,min=1,max=100"`
	Email         string               `json:"email" validate:"required,email"`
	Password      string               `json:"password" validate:"required,min=8,max=256"`
	Type          fittrack.UserType    `json:"type" validate:"omitempty,oneof=ADMIN USER"`
	Height        *float64             `json:"height" validate:"omitempty,gt=0,lt=300"`
	Weight        *float64             `json:"weight" validate:"omitempty,gt=0,lt=700"`
	TargetWeight  *float64             `json:"targetWeight" validate:"omitempty,gt=0,lt=700"`
	Country       string               `json:"country" validate:"max=100"`
	City          string               `json:"city" validate:"max=100"`
	Phone         string               `json:"phone" validate:"max=32"`
	Occupation    string               `json:"occupation" validate:"max=100"`
	DateOfBirth   *time.Time           `json:"dateOfBirth"`
	Gender        stores.Gender        `json:"gender" validate:"omitempty,oneof=MALE FEMALE OTHER"`
	ActivityLevel stores.ActivityLevel `json:"activityLevel" validate:"omitempty,oneof=SEDENTARY LIGHT MODERATE ACTIVE EXTREME"`
}

// handleCreateUser is the handler for the POST /users/create HTTP API.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	req := &createUserRequest{}
	if !s.decode(w, r, req) {
		return
	}

	hash, err := s.engine.HashPassword(req.Password)
	if err != nil {
		s.writeError(w, r, "hashing password", err)

		return
	}

	u := &stores.User{
		Username:      req.Username,
		Name:          req.Name,
		LastName:      req.LastName,
		Password:      hash,
		Type:          req.Type,
		Email:         req.Email,
		Height:        req.Height,
		Weight:        req.Weight,
		TargetWeight:  req.TargetWeight,
		Country:       req.Country,
		City:          req.City,
		Phone:         req.Phone,
		Occupation:    req.Occupation,
		DateOfBirth:   req.DateOfBirth,
		Gender:        req.Gender,
		ActivityLevel: req.ActivityLevel,
	}
	if err = s.store.CreateUser(r.Context(), u); err != nil {
		s.writeError(w, r, "creating user", err)

		return
	}

	middleware.WriteJSON(w, http.StatusCreated, u)
}

// handleUpdateUser is the handler for the PATCH /users/{userId} HTTP API.
// Admins may update anyone, other users only themselves.  Fields outside
// [stores.UserPatch], such as the password and role, are ignored.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	ac, _ := middleware.AuthFromContext(r.Context())
	if ac.User.ID != id && !ac.User.IsAdmin() {
		writeForbidden(w, "Not authorized to update this user")

		return
	}

	patch := &stores.UserPatch{}
	if !s.decode(w, r, patch) {
		return
	}

	if patch.Empty() {
		writeValidation(w, []issue{{
			Code:    "invalid_update",
			Path:    []string{},
			Message: "No valid fields to update",
		}})

		return
	}

	u, err := s.store.UpdateUser(r.Context(), id, patch)
	if err != nil {
		s.writeError(w, r, "updating user", err)

		return
	}

	middleware.WriteJSON(w, http.StatusOK, u)
}
