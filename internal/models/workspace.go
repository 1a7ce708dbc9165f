package models

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Workspace is a named collaboration container. Only the owner can change
// or delete it; flipping IsPublic makes it readable (not writable) by
// everyone.
type Workspace struct {
	ID          string         `json:"id" db:"id"`
	OwnerID     string         `json:"owner_id" db:"owner_id"`
	Name        string         `json:"name" db:"name"`
	Description sql.NullString `json:"description" db:"description"`
	IsPublic    bool           `json:"is_public" db:"is_public"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// NewWorkspace validates the required fields of a new workspace.
func NewWorkspace(ownerID, name, description string, isPublic bool) (Workspace, error) {
	ownerID = strings.TrimSpace(ownerID)
	name = strings.TrimSpace(name)
	if ownerID == "" {
		return Workspace{}, fmt.Errorf("workspace: owner id is required")
	}
	if name == "" {
		return Workspace{}, fmt.Errorf("workspace: name is required")
	}
	ws := Workspace{OwnerID: ownerID, Name: name, IsPublic: isPublic}
	if description = strings.TrimSpace(description); description != "" {
		ws.Description = sql.NullString{String: description, Valid: true}
	}
	return ws, nil
}

// WorkspaceUpdate carries the fields a workspace owner may change.
type WorkspaceUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"is_public"`
}

// WorkspaceMember joins profiles to workspaces.
type WorkspaceMember struct {
	ID          string    `json:"id" db:"id"`
	WorkspaceID string    `json:"workspace_id" db:"workspace_id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Role        string    `json:"role" db:"role"`
	JoinedAt    time.Time `json:"joined_at" db:"joined_at"`
}
