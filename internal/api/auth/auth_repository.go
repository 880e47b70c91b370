package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koinbeefs/IntelliTravel/internal/types"
)

// Ensure RepositoryImpl implements the Repository interface
var _ Repository = (*RepositoryImpl)(nil)

// Repository defines the interface for account and refresh token persistence.
type Repository interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (types.User, error)
	GetUserByEmail(ctx context.Context, email string) (types.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (types.User, error)
	GetOrCreateGoogleUser(ctx context.Context, googleID, email, name string) (types.User, error)
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, token string) (uuid.UUID, error)
	RevokeRefreshToken(ctx context.Context, token string) error
	RevokeAllUserRefreshTokens(ctx context.Context, userID uuid.UUID) error
}

// RepositoryImpl struct holds the logger and database connection pool
type RepositoryImpl struct {
	logger *slog.Logger
	pgpool *pgxpool.Pool
}

func NewRepository(pgxpool *pgxpool.Pool, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgxpool,
	}
}

// CreateUser inserts a new account.
func (r *RepositoryImpl) CreateUser(ctx context.Context, username, email, passwordHash string) (types.User, error) {
	query := `
        INSERT INTO users (username, email, password_hash)
        VALUES ($1, $2, $3)
        RETURNING id, username, email, password_hash, created_at, updated_at`

	var u types.User
	err := r.pgpool.QueryRow(ctx, query, username, email, passwordHash).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to create user", slog.Any("error", err))
		return types.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// GetUserByEmail retrieves an account by email. A miss is types.ErrNotFound.
func (r *RepositoryImpl) GetUserByEmail(ctx context.Context, email string) (types.User, error) {
	query := `
        SELECT id, username, email, password_hash, google_id, created_at, updated_at
        FROM users WHERE email = $1`

	var u types.User
	err := r.pgpool.QueryRow(ctx, query, email).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.GoogleID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.User{}, types.ErrNotFound
		}
		return types.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// GetUserByID retrieves an account by id. A miss is types.ErrNotFound.
func (r *RepositoryImpl) GetUserByID(ctx context.Context, userID uuid.UUID) (types.User, error) {
	query := `
        SELECT id, username, email, password_hash, google_id, created_at, updated_at
        FROM users WHERE id = $1`

	var u types.User
	err := r.pgpool.QueryRow(ctx, query, userID).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.GoogleID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.User{}, types.ErrNotFound
		}
		return types.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return u, nil
}

// GetOrCreateGoogleUser finds the account linked to googleID, linking or
// creating one when needed. An existing email account gets the google id
// attached instead of a duplicate account.
func (r *RepositoryImpl) GetOrCreateGoogleUser(ctx context.Context, googleID, email, name string) (types.User, error) {
	var u types.User
	err := r.pgpool.QueryRow(ctx, `
        SELECT id, username, email, password_hash, google_id, created_at, updated_at
        FROM users WHERE google_id = $1`, googleID).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.GoogleID, &u.CreatedAt, &u.UpdatedAt)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return types.User{}, fmt.Errorf("failed to look up google user: %w", err)
	}

	existing, err := r.GetUserByEmail(ctx, email)
	if err == nil {
		_, err = r.pgpool.Exec(ctx, `UPDATE users SET google_id = $1, updated_at = NOW() WHERE id = $2`, googleID, existing.ID)
		if err != nil {
			return types.User{}, fmt.Errorf("failed to link google account: %w", err)
		}
		existing.GoogleID = &googleID
		return existing, nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		return types.User{}, err
	}

	query := `
        INSERT INTO users (username, email, password_hash, google_id)
        VALUES ($1, $2, '', $3)
        RETURNING id, username, email, password_hash, google_id, created_at, updated_at`
	err = r.pgpool.QueryRow(ctx, query, name, email, googleID).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.GoogleID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to create google user", slog.Any("error", err))
		return types.User{}, fmt.Errorf("failed to create google user: %w", err)
	}
	return u, nil
}

// StoreRefreshToken persists a refresh token until expiresAt.
func (r *RepositoryImpl) StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	_, err := r.pgpool.Exec(ctx,
		"INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES ($1, $2, $3)",
		userID, token, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// GetRefreshToken resolves a live refresh token to its user. Expired or
// revoked tokens are types.ErrNotFound.
func (r *RepositoryImpl) GetRefreshToken(ctx context.Context, token string) (uuid.UUID, error) {
	var userID uuid.UUID
	var expiresAt time.Time
	var revokedAt *time.Time

	err := r.pgpool.QueryRow(ctx,
		"SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token = $1",
		token).Scan(&userID, &expiresAt, &revokedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, types.ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	if time.Now().After(expiresAt) || revokedAt != nil {
		return uuid.Nil, types.ErrNotFound
	}
	return userID, nil
}

// RevokeRefreshToken marks one token revoked.
func (r *RepositoryImpl) RevokeRefreshToken(ctx context.Context, token string) error {
	_, err := r.pgpool.Exec(ctx,
		"UPDATE refresh_tokens SET revoked_at = NOW() WHERE token = $1 AND revoked_at IS NULL", token)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAllUserRefreshTokens revokes every live token a user holds.
func (r *RepositoryImpl) RevokeAllUserRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pgpool.Exec(ctx,
		"UPDATE refresh_tokens SET revoked_at = NOW() WHERE user_id = $1 AND revoked_at IS NULL", userID)
	if err != nil {
		return fmt.Errorf("failed to revoke user refresh tokens: %w", err)
	}
	return nil
}
