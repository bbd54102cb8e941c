package server

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/httphdr"
	"github.com/MrEthical07/fittrack"
	"github.com/MrEthical07/fittrack/internal/stores"
	"github.com/MrEthical07/fittrack/middleware"
)

type loginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=256"`
}

type loginResponse struct {
	User    *stores.User `json:"user"`
	Message string       `json:"message"`
	Success bool         `json:"success"`
}

type messageResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// handleLogin is the handler for the POST /login HTTP API.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	req := &loginRequest{}
	if !s.decode(w, r, req) {
		return
	}

	ctx := r.Context()
	res, err := s.engine.Login(ctx, req.Username, req.Password)
	switch {
	case err == nil:
		// Go on.
	case errors.Is(err, fittrack.ErrLoginRateLimited):
		retry := s.engine.LoginRetryAfter(ctx, strings.TrimSpace(req.Username))
		w.Header().Set(httphdr.RetryAfter, strconv.Itoa(int(math.Ceil(retry.Seconds()))))
		middleware.WriteError(w, http.StatusTooManyRequests, middleware.ErrorDetail{
			Name:    errNameRateLimited,
			Message: "Too many login attempts, try again later",
		})

		return
	case errors.Is(err, fittrack.ErrInvalidCredentials):
		middleware.WriteError(w, http.StatusUnauthorized, middleware.ErrorDetail{
			Name:    errNameAuthFailed,
			Message: "Invalid username or password",
		})

		return
	default:
		s.writeError(w, r, "logging in", err)

		return
	}

	u, err := s.store.User(ctx, res.User.ID)
	if err != nil {
		s.writeError(w, r, "reading logged in user", err)

		return
	}

	http.SetCookie(w, s.engine.SessionCookie(res.Session))
	middleware.WriteJSON(w, http.StatusOK, &loginResponse{
		User:    u,
		Message: "Login successful",
		Success: true,
	})
}

// handleLogout is the handler for the POST /logout/{userId} HTTP API.  It
// ends every session of the caller.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ac, _ := middleware.AuthFromContext(r.Context())

	target, ok := parseUserID(w, r)
	if !ok {
		return
	} else if target != ac.User.ID {
		writeForbidden(w, "Cannot logout other users")

		return
	}

	_, err := s.engine.InvalidateAllSessions(r.Context(), target)
	if err != nil {
		s.writeError(w, r, "invalidating sessions", err)

		return
	}

	http.SetCookie(w, s.engine.ClearSessionCookie())
	middleware.WriteJSON(w, http.StatusOK, &messageResponse{
		Message: "Logged out successfully",
		Success: true,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,max=256"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// handleChangePassword is the handler for the
// POST /users/{userId}/change-password HTTP API.  Only the owner may call
// it.
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	ac, _ := middleware.AuthFromContext(r.Context())

	target, ok := parseUserID(w, r)
	if !ok {
		return
	} else if target != ac.User.ID {
		writeForbidden(w, "Cannot change the password of other users")

		return
	}

	req := &changePasswordRequest{}
	if !s.decode(w, r, req) {
		return
	}

	err := s.engine.ChangePassword(r.Context(), target, req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	switch {
	case err == nil:
		middleware.WriteJSON(w, http.StatusOK, &messageResponse{
			Message: "Password changed successfully",
			Success: true,
		})
	case errors.Is(err, fittrack.ErrPasswordPolicy):
		writeValidation(w, []issue{{
			Code:    "too_small",
			Path:    []string{"newPassword"},
			Message: "newPassword must be at least " + strconv.Itoa(s.engine.MinPasswordLength()) + " characters",
		}})
	case errors.Is(err, fittrack.ErrPasswordMismatch):
		writeValidation(w, []issue{{
			Code:    "custom",
			Path:    []string{"confirmPassword"},
			Message: "Passwords do not match",
		}})
	case errors.Is(err, fittrack.ErrInvalidCredentials):
		middleware.WriteError(w, http.StatusUnauthorized, middleware.ErrorDetail{
			Name:    errNameAuthFailed,
			Message: "Current password is incorrect",
		})
	default:
		s.writeError(w, r, "changing password", err)
	}
}

// parseUserID reads the userId path value.  It writes 400 and returns false
// when the value is not an integer.
func parseUserID(w http.ResponseWriter, r *http.Request) (id int64, ok bool) {
	id, err := strconv.ParseInt(r.PathValue("userId"), 10, 64)
	if err != nil {
		writeBadRequest(w, "Invalid user ID format")

		return 0, false
	}

	return id, true
}

// selfOrAdmin reads the userId path value and checks that the caller is that
// user or an admin.  It writes the error response and returns false
// otherwise.
func selfOrAdmin(w http.ResponseWriter, r *http.Request) (id int64, ok bool) {
	id, ok = parseUserID(w, r)
	if !ok {
		return 0, false
	}

	ac, _ := middleware.AuthFromContext(r.Context())
	if ac.User.ID != id && !ac.User.IsAdmin() {
		writeForbidden(w, "Not authorized to access this user")

		return 0, false
	}

	return id, true
}
