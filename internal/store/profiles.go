package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/labkite/researchdesk/internal/apperr"
	"github.com/labkite/researchdesk/internal/models"
	"github.com/labkite/researchdesk/pkg/database"
)

const profileColumns = `id, email, full_name, institution, role, created_at, updated_at`

// ProfileStore persists user profiles, keyed by the auth user id.
type ProfileStore struct {
	db *database.Clients
}

// Get returns a profile by id.
func (s *ProfileStore) Get(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	q := fmt.Sprintf("SELECT %s FROM profiles WHERE id = $1", profileColumns)
	if err := s.db.DB.GetContext(ctx, &profile, q, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return &profile, nil
}

// Ensure creates the profile row on first sign-in and is a no-op on every
// later one.
func (s *ProfileStore) Ensure(ctx context.Context, profile models.Profile) error {
	_, err := s.db.DB.ExecContext(ctx,
		`INSERT INTO profiles (id, email, role) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO NOTHING`,
		profile.ID, profile.Email, profile.Role)
	if err != nil {
		return fmt.Errorf("failed to ensure profile: %w", err)
	}
	return nil
}

// Update changes the owner-editable profile fields. Nil fields keep their
// current value.
func (s *ProfileStore) Update(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.Profile, error) {
	if upd.Role != nil && !models.UserRole(*upd.Role).Valid() {
		return nil, &apperr.ValidationError{Fields: []string{fmt.Sprintf("invalid role %q", *upd.Role)}}
	}

	var updated models.Profile
	q := fmt.Sprintf(`UPDATE profiles
		SET full_name = COALESCE($2, full_name),
		    institution = COALESCE($3, institution),
		    role = COALESCE($4, role),
		    updated_at = now()
		WHERE id = $1 RETURNING %s`, profileColumns)
	err := s.db.DB.QueryRowxContext(ctx, q, userID, upd.FullName, upd.Institution, upd.Role).StructScan(&updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &updated, nil
}
