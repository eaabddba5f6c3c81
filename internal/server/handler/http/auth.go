package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dkorobov/taskdeck/internal/middleware"
	"github.com/dkorobov/taskdeck/internal/models"
	"github.com/dkorobov/taskdeck/internal/service"
	"github.com/dkorobov/taskdeck/internal/session"
)

// AuthService defines the interface for authentication operations
// required by the HTTP handlers.
type AuthService interface {
	// Register creates a new account; the returned user never carries a
	// usable password.
	Register(ctx context.Context, email, password, fullName string) (*models.User, error)
	// Authenticate verifies credentials, masking the failure cause.
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	// IssueSession mints a session token for the user.
	IssueSession(user *models.User) (string, error)
	// CurrentUser loads the user behind a resolved identity.
	CurrentUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AuthHandler handles HTTP requests for registration, login, logout, and
// the current-user endpoint.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
	// Sessions writes and clears the session cookie.
	Sessions session.Carrier
	// Log records internal failure causes; they are never echoed to clients.
	Log *zap.Logger
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"max=128"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// userResponse is the public view of a user. The password hash has no field
// here at all.
type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, FullName: u.FullName, CreatedAt: u.CreatedAt}
}

// Register handles user registration. It expects a JSON body with email and
// password; a taken email yields 409.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	user, err := h.AuthService.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		h.Log.Error("register failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// Login verifies credentials and, on success, sets the session cookie and
// returns the user id together with the raw token. Every credential failure
// produces the same generic 401: the response never reveals whether the
// email or the password was wrong.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	user, err := h.AuthService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, "incorrect email or password")
			return
		}
		h.Log.Error("login failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	token, err := h.AuthService.IssueSession(user)
	if err != nil {
		h.Log.Error("issue session failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.Sessions.Write(w, token)
	writeJSON(w, http.StatusOK, map[string]string{
		"message":      "login successful",
		"user_id":      user.ID.String(),
		"access_token": token,
	})
}

// Logout clears the session cookie unconditionally. Tokens are not tracked
// server-side, so a captured token stays valid until it expires.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Clear(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logout successful"})
}

// Me returns the authenticated user. A user deleted after token issuance is
// reported with the same 401 as any other authentication failure.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		middleware.Unauthorized(w)
		return
	}

	user, err := h.AuthService.CurrentUser(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			middleware.Unauthorized(w)
			return
		}
		h.Log.Error("load current user failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}
