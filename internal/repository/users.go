package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sellorama/sellorama/internal/domain"
)

const createUser = `
INSERT INTO users (username, email)
VALUES ($1, $2)
RETURNING id, username, email, created_at`

// CreateUser inserts a user row. Uniqueness of username and email is
// enforced by the schema; callers should check UserExists first for a
// friendly conflict message.
func (q *Queries) CreateUser(ctx context.Context, username, email string) (domain.User, error) {
	var u domain.User
	err := q.db.QueryRow(ctx, createUser, username, email).
		Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	return u, err
}

const getUserByID = `
SELECT id, username, email, created_at
FROM users
WHERE id = $1`

func (q *Queries) GetUserByID(ctx context.Context, userID pgtype.UUID) (domain.User, error) {
	var u domain.User
	err := q.db.QueryRow(ctx, getUserByID, userID).
		Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	return u, err
}

const userExists = `
SELECT EXISTS (
	SELECT 1 FROM users WHERE username = $1 OR email = $2
)`

func (q *Queries) UserExists(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, userExists, username, email).Scan(&exists)
	return exists, err
}

const createPassword = `
INSERT INTO passwords (user_id, hashed_pass)
VALUES ($1, $2)`

func (q *Queries) CreatePassword(ctx context.Context, userID pgtype.UUID, hashedPass string) error {
	_, err := q.db.Exec(ctx, createPassword, userID, hashedPass)
	return err
}

const getUserCredentials = `
SELECT p.user_id, p.hashed_pass
FROM passwords p
JOIN users u ON u.id = p.user_id
WHERE u.username = $1`

func (q *Queries) GetUserCredentials(ctx context.Context, username string) (UserCredentials, error) {
	var c UserCredentials
	err := q.db.QueryRow(ctx, getUserCredentials, username).
		Scan(&c.UserID, &c.HashedPass)
	return c, err
}

const createSession = `
INSERT INTO sessions (user_id, expires_at)
VALUES ($1, $2)
RETURNING id, user_id, expires_at`

func (q *Queries) CreateSession(ctx context.Context, userID pgtype.UUID, expiresAt time.Time) (domain.Session, error) {
	var s domain.Session
	err := q.db.QueryRow(ctx, createSession, userID, expiresAt).
		Scan(&s.ID, &s.UserID, &s.ExpiresAt)
	return s, err
}

const getValidSession = `
SELECT s.id, s.user_id, u.username, s.expires_at
FROM sessions s
JOIN users u ON u.id = s.user_id
WHERE s.id = $1 AND s.expires_at > now()`

// GetValidSession resolves a session token, ignoring expired rows.
func (q *Queries) GetValidSession(ctx context.Context, sessionID pgtype.UUID) (SessionWithUser, error) {
	var s SessionWithUser
	err := q.db.QueryRow(ctx, getValidSession, sessionID).
		Scan(&s.SessionID, &s.UserID, &s.Username, &s.ExpiresAt)
	return s, err
}

const deleteSession = `
DELETE FROM sessions WHERE id = $1`

func (q *Queries) DeleteSession(ctx context.Context, sessionID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, deleteSession, sessionID)
	return err
}

const deleteExpiredSessions = `
DELETE FROM sessions WHERE expires_at < now()`

// DeleteExpiredSessions sweeps dangling sessions, returning the number removed.
func (q *Queries) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteExpiredSessions)
	return tag.RowsAffected(), err
}

const createAddress = `
INSERT INTO addresses (user_id, line1, line2, city, postal_code, country)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, user_id, line1, line2, city, postal_code, country`

func (q *Queries) CreateAddress(ctx context.Context, arg CreateAddressParams) (domain.Address, error) {
	var a domain.Address
	err := q.db.QueryRow(ctx, createAddress,
		arg.UserID, arg.Line1, arg.Line2, arg.City, arg.PostalCode, arg.Country).
		Scan(&a.ID, &a.UserID, &a.Line1, &a.Line2, &a.City, &a.PostalCode, &a.Country)
	return a, err
}

const getAddress = `
SELECT id, user_id, line1, line2, city, postal_code, country
FROM addresses
WHERE id = $1`

func (q *Queries) GetAddress(ctx context.Context, addressID pgtype.UUID) (domain.Address, error) {
	var a domain.Address
	err := q.db.QueryRow(ctx, getAddress, addressID).
		Scan(&a.ID, &a.UserID, &a.Line1, &a.Line2, &a.City, &a.PostalCode, &a.Country)
	return a, err
}

const listAddresses = `
SELECT id, user_id, line1, line2, city, postal_code, country
FROM addresses
WHERE user_id = $1
ORDER BY line1`

func (q *Queries) ListAddresses(ctx context.Context, userID pgtype.UUID) ([]domain.Address, error) {
	rows, err := q.db.Query(ctx, listAddresses, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addresses []domain.Address
	for rows.Next() {
		var a domain.Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Line1, &a.Line2, &a.City, &a.PostalCode, &a.Country); err != nil {
			return nil, err
		}
		addresses = append(addresses, a)
	}
	return addresses, rows.Err()
}
