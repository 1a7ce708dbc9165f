package models

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Profile represents a user profile in the system. The ID matches the
// Supabase auth.users id, so a profile exists for every authenticated user.
type Profile struct {
	ID          string         `json:"id" db:"id"`
	Email       string         `json:"email" db:"email"`
	FullName    sql.NullString `json:"full_name" db:"full_name"`
	Institution sql.NullString `json:"institution" db:"institution"`
	Role        UserRole       `json:"role" db:"role"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// NewProfile builds a profile for a freshly signed-up user, defaulting the
// role to student when none is given.
func NewProfile(userID, email string, role UserRole) (Profile, error) {
	userID = strings.TrimSpace(userID)
	email = strings.TrimSpace(email)
	if userID == "" {
		return Profile{}, fmt.Errorf("profile: user id is required")
	}
	if email == "" {
		return Profile{}, fmt.Errorf("profile: email is required")
	}
	if role == "" {
		role = RoleStudent
	}
	if !role.Valid() {
		return Profile{}, fmt.Errorf("profile: invalid role %q", role)
	}
	return Profile{ID: userID, Email: email, Role: role}, nil
}

// ProfileUpdate carries the fields a profile owner may change.
type ProfileUpdate struct {
	FullName    *string `json:"full_name"`
	Institution *string `json:"institution"`
	Role        *string `json:"role"`
}
