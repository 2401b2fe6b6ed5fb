package domain

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// User domain errors.
var (
	ErrUserNotFound       = &Error{Code: ENOTFOUND, Message: "User not found"}
	ErrDuplicateUser      = &Error{Code: ECONFLICT, Message: "Username or email already registered"}
	ErrInvalidCredentials = &Error{Code: EUNAUTHORIZED, Message: "Wrong username or password"}
	ErrSessionExpired     = &Error{Code: EUNAUTHORIZED, Message: "Session expired or does not exist"}
)

// UserService provides signup, login, and session resolution.
type UserService interface {
	// Signup registers a new user and opens a session for them.
	// Duplicate username or email yields ErrDuplicateUser.
	Signup(ctx context.Context, params SignupParams) (*Session, error)

	// Login verifies credentials and opens a session.
	// Expired sessions are swept opportunistically on each login.
	Login(ctx context.Context, username, password string) (*Session, error)

	// Logout invalidates the given session token.
	Logout(ctx context.Context, sessionID pgtype.UUID) error

	// Resolve maps an opaque session token to an identity.
	// Returns ErrSessionExpired for unknown or expired tokens.
	Resolve(ctx context.Context, sessionID pgtype.UUID) (*Identity, error)

	// GetUser retrieves a user's public profile by ID.
	GetUser(ctx context.Context, userID pgtype.UUID) (*User, error)
}

// User is a public user profile.
type User struct {
	ID        pgtype.UUID
	Username  string
	Email     string
	CreatedAt pgtype.Timestamptz
}

// SignupParams contains the fields required to register a user.
type SignupParams struct {
	Username string `validate:"required,min=3,max=32"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

// Session is an opaque session token handed to the client.
// The token doubles as the session row's primary key.
type Session struct {
	ID        pgtype.UUID
	UserID    pgtype.UUID
	ExpiresAt pgtype.Timestamptz
}

// AddressService manages the authenticated user's delivery addresses.
type AddressService interface {
	// CreateAddress records a new address for the authenticated user.
	CreateAddress(ctx context.Context, params AddressParams) (*Address, error)

	// ListAddresses returns the authenticated user's addresses.
	ListAddresses(ctx context.Context) ([]Address, error)
}

// Address is a delivery address owned by a user. Orders reference an
// address by ID; the address must belong to the ordering user.
type Address struct {
	ID         pgtype.UUID
	UserID     pgtype.UUID
	Line1      string
	Line2      string
	City       string
	PostalCode string
	Country    string
}

// AddressParams contains the fields required to create an address.
type AddressParams struct {
	Line1      string `validate:"required,max=200"`
	Line2      string `validate:"max=200"`
	City       string `validate:"required,max=100"`
	PostalCode string `validate:"required,max=20"`
	Country    string `validate:"required,max=100"`
}
