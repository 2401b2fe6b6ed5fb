// Package service implements the business logic behind the HTTP
// surface. Services depend on repository.Querier (or repository.Store
// when they need transactions) so tests can substitute fakes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sellorama/sellorama/internal/auth"
	"github.com/sellorama/sellorama/internal/cache"
	"github.com/sellorama/sellorama/internal/domain"
	"github.com/sellorama/sellorama/internal/repository"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type userService struct {
	repo       repository.Store
	sessions   cache.SessionCache
	sessionTTL time.Duration
	logger     *slog.Logger
}

// NewUserService creates a new UserService instance
func NewUserService(repo repository.Store, sessions cache.SessionCache, sessionTTL time.Duration, logger *slog.Logger) domain.UserService {
	return &userService{
		repo:       repo,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Signup registers a new user and opens a session for them
func (s *userService) Signup(ctx context.Context, params domain.SignupParams) (*domain.Session, error) {
	const op = "UserService.Signup"

	if err := validate.Struct(params); err != nil {
		return nil, domain.Invalid(op, validationMessage(err))
	}

	exists, err := s.repo.UserExists(ctx, params.Username, params.Email)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to check existing user")
	}
	if exists {
		return nil, domain.ErrDuplicateUser
	}

	hashedPass, err := auth.HashPassword(params.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			return nil, domain.Invalid(op, err.Error())
		}
		return nil, domain.Internal(err, op, "failed to hash password")
	}

	// User, password, and session rows commit together so a partial
	// failure never strands a user without credentials.
	var session domain.Session
	err = s.repo.ExecTx(ctx, func(q repository.Querier) error {
		user, err := q.CreateUser(ctx, params.Username, params.Email)
		if err != nil {
			return domain.Internal(err, op, "failed to create user")
		}
		if err := q.CreatePassword(ctx, user.ID, hashedPass); err != nil {
			return domain.Internal(err, op, "failed to store password")
		}
		session, err = q.CreateSession(ctx, user.ID, time.Now().Add(s.sessionTTL))
		if err != nil {
			return domain.Internal(err, op, "failed to create session")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// Login verifies credentials and opens a session
func (s *userService) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	const op = "UserService.Login"

	creds, err := s.repo.GetUserCredentials(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, domain.Internal(err, op, "failed to look up credentials")
	}

	if err := auth.VerifyPassword(password, creds.HashedPass); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, domain.Internal(err, op, "failed to verify password")
	}

	// Opportunistic sweep of expired sessions across all users.
	if swept, err := s.repo.DeleteExpiredSessions(ctx); err != nil {
		s.logger.Warn("expired session sweep failed", "error", err)
	} else if swept > 0 {
		s.logger.Debug("swept expired sessions", "count", swept)
	}

	session, err := s.repo.CreateSession(ctx, creds.UserID, time.Now().Add(s.sessionTTL))
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create session")
	}

	return &session, nil
}

// Logout invalidates the given session token
func (s *userService) Logout(ctx context.Context, sessionID pgtype.UUID) error {
	const op = "UserService.Logout"

	if err := s.repo.DeleteSession(ctx, sessionID); err != nil {
		return domain.Internal(err, op, "failed to delete session")
	}

	if err := s.sessions.Delete(ctx, uuidString(sessionID)); err != nil {
		s.logger.Warn("failed to evict cached session", "error", err)
	}

	return nil
}

// Resolve maps an opaque session token to an identity
func (s *userService) Resolve(ctx context.Context, sessionID pgtype.UUID) (*domain.Identity, error) {
	const op = "UserService.Resolve"

	key := uuidString(sessionID)
	if identity, err := s.sessions.Get(ctx, key); err == nil {
		return identity, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("session cache lookup failed", "error", err)
	}

	row, err := s.repo.GetValidSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionExpired
		}
		return nil, domain.Internal(err, op, "failed to look up session")
	}

	identity := &domain.Identity{
		UserID:    repository.ToUUID(row.UserID),
		SessionID: repository.ToUUID(row.SessionID),
		Username:  row.Username,
	}

	if err := s.sessions.Set(ctx, key, identity); err != nil {
		s.logger.Warn("failed to cache session", "error", err)
	}

	return identity, nil
}

// GetUser retrieves a user's public profile by ID
func (s *userService) GetUser(ctx context.Context, userID pgtype.UUID) (*domain.User, error) {
	const op = "UserService.GetUser"

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.Internal(err, op, "failed to get user")
	}

	return &user, nil
}

func uuidString(id pgtype.UUID) string {
	return repository.ToUUID(id).String()
}

// validationMessage flattens the first validator error into a
// user-facing message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("invalid %s: failed %s validation", fe.Field(), fe.Tag())
	}
	return "invalid request"
}
