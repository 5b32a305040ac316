package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"foundr-auth/internal/domain"

	"github.com/jackc/pgx/v5"
)

// ProfileRepository implements domain.ProfileRepository for PostgreSQL.
// A query that matches no row surfaces as domain.ErrProfileNotFound so
// callers can distinguish a lookup-miss from an execution failure.
type ProfileRepository struct {
	db     DatabaseIface
	logger *slog.Logger
}

// NewProfileRepository creates a PostgreSQL profile repository.
func NewProfileRepository(db DatabaseIface, logger *slog.Logger) *ProfileRepository {
	return &ProfileRepository{
		db:     db,
		logger: logger.With("component", "profile_repository"),
	}
}

// GetByID fetches a profile row by provider user id.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `
		SELECT id, email, full_name, avatar_url, created_at, updated_at
		FROM users
		WHERE id = $1`

	profile := &domain.Profile{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&profile.ID,
		&profile.Email,
		&profile.FullName,
		&profile.AvatarURL,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get profile: %w", domain.ErrStoreUnavailable, err)
	}
	return profile, nil
}

// Create inserts a profile row keyed by the provider user id. Existing rows
// are left untouched so a retried signup does not fail.
func (r *ProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO users (id, email, full_name, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`

	now := time.Now().UTC()
	createdAt := profile.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	_, err := r.db.Exec(ctx, query,
		profile.ID,
		profile.Email,
		profile.FullName,
		profile.AvatarURL,
		createdAt,
		now,
	)
	if err != nil {
		r.logger.Error("failed to create profile", "user_id", profile.ID, "error", err)
		return fmt.Errorf("%w: create profile: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Update applies the given fields to a profile row and always stamps
// updated_at, returning the stored row.
func (r *ProfileRepository) Update(ctx context.Context, id string, updates domain.ProfileUpdate) (*domain.Profile, error) {
	query := `
		UPDATE users
		SET full_name = COALESCE($2, full_name),
		    avatar_url = COALESCE($3, avatar_url),
		    updated_at = $4
		WHERE id = $1
		RETURNING id, email, full_name, avatar_url, created_at, updated_at`

	profile := &domain.Profile{}
	err := r.db.QueryRow(ctx, query, id, updates.FullName, updates.AvatarURL, time.Now().UTC()).Scan(
		&profile.ID,
		&profile.Email,
		&profile.FullName,
		&profile.AvatarURL,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		r.logger.Error("failed to update profile", "user_id", id, "error", err)
		return nil, fmt.Errorf("%w: update profile: %w", domain.ErrStoreUnavailable, err)
	}
	return profile, nil
}

// GetIDByEmail resolves a profile id by email. Emails are matched
// case-insensitively, mirroring the store's unique index.
func (r *ProfileRepository) GetIDByEmail(ctx context.Context, email string) (string, error) {
	query := `SELECT id FROM users WHERE LOWER(email) = LOWER($1)`

	var id string
	err := r.db.QueryRow(ctx, query, email).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrProfileNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: lookup by email: %w", domain.ErrStoreUnavailable, err)
	}
	return id, nil
}
