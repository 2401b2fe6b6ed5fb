package handler

import (
	"log/slog"
	"net/http"

	"github.com/sellorama/sellorama/internal/domain"
	"github.com/sellorama/sellorama/internal/middleware"
	"github.com/sellorama/sellorama/internal/repository"
	"github.com/sellorama/sellorama/internal/telemetry"
)

// UserHandler handles signup, login, logout and profile lookup.
type UserHandler struct {
	users   domain.UserService
	metrics *telemetry.BusinessMetrics
	logger  *slog.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users domain.UserService, metrics *telemetry.BusinessMetrics, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{users: users, metrics: metrics, logger: logger}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionPayload struct {
	SessionID string `json:"session_id"`
}

// Signup handles POST /user/signup
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	session, err := h.users.Signup(r.Context(), domain.SignupParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	h.metrics.RecordSignup()
	respondJSON(w, http.StatusCreated, sessionPayload{SessionID: uuidString(session.ID)})
}

// Login handles POST /user/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	session, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if domain.ErrorCode(err) == domain.EUNAUTHORIZED {
			h.metrics.RecordLogin(false)
		}
		ErrorResponse(w, r, err)
		return
	}

	h.metrics.RecordLogin(true)
	respondJSON(w, http.StatusCreated, sessionPayload{SessionID: uuidString(session.ID)})
}

// Logout handles POST /user/logout
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(middleware.SessionHeader)
	if token == "" {
		ErrorResponse(w, r, domain.ErrSessionExpired)
		return
	}

	sessionID, err := repository.ParseUUID(token)
	if err != nil {
		ErrorResponse(w, r, domain.ErrSessionExpired)
		return
	}

	if err := h.users.Logout(r.Context(), sessionID); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondMessage(w, http.StatusOK, "Logged out")
}

type userPayload struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Get handles GET /user/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, userPayload{
		UserID:   uuidString(user.ID),
		Username: user.Username,
		Email:    user.Email,
	})
}
