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

const workspaceColumns = `id, owner_id, name, description, is_public, created_at, updated_at`

// WorkspaceStore persists workspaces and their membership rows.
type WorkspaceStore struct {
	db    *database.Clients
	cache *ListCache
}

// List returns the workspaces visible to the user: their own plus public
// ones, most recently updated first.
func (s *WorkspaceStore) List(ctx context.Context, userID string) ([]models.Workspace, error) {
	key := workspaceListKey(userID)

	workspaces := []models.Workspace{}
	if s.cache.Get(ctx, key, &workspaces) {
		return workspaces, nil
	}

	q := fmt.Sprintf(`SELECT %s FROM workspaces
		WHERE owner_id = $1 OR is_public = true
		ORDER BY updated_at DESC`, workspaceColumns)
	if err := s.db.DB.SelectContext(ctx, &workspaces, q, userID); err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}

	s.cache.Set(ctx, key, workspaces)
	return workspaces, nil
}

// Create persists a new workspace owned by its creator.
func (s *WorkspaceStore) Create(ctx context.Context, ws models.Workspace) (models.Workspace, error) {
	var created models.Workspace
	q := fmt.Sprintf(`INSERT INTO workspaces (owner_id, name, description, is_public)
		VALUES ($1, $2, $3, $4) RETURNING %s`, workspaceColumns)
	err := s.db.DB.QueryRowxContext(ctx, q, ws.OwnerID, ws.Name, ws.Description, ws.IsPublic).StructScan(&created)
	if err != nil {
		return models.Workspace{}, fmt.Errorf("failed to create workspace: %w", err)
	}

	s.cache.Invalidate(ctx, workspaceListKey(ws.OwnerID))
	return created, nil
}

// Update changes a workspace, scoped to its owner. Nil fields keep their
// current value.
func (s *WorkspaceStore) Update(ctx context.Context, ownerID, id string, upd models.WorkspaceUpdate) (*models.Workspace, error) {
	var updated models.Workspace
	q := fmt.Sprintf(`UPDATE workspaces
		SET name = COALESCE($3, name),
		    description = COALESCE($4, description),
		    is_public = COALESCE($5, is_public),
		    updated_at = now()
		WHERE id = $1 AND owner_id = $2 RETURNING %s`, workspaceColumns)
	err := s.db.DB.QueryRowxContext(ctx, q, id, ownerID, upd.Name, upd.Description, upd.IsPublic).StructScan(&updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update workspace: %w", err)
	}

	s.cache.Invalidate(ctx, workspaceListKey(ownerID))
	return &updated, nil
}

// Delete removes a workspace and its membership rows, scoped to the owner.
// Deleting someone else's (or a missing) workspace fails with ErrNotFound
// and leaves the cache untouched.
func (s *WorkspaceStore) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.db.DB.ExecContext(ctx,
		`DELETE FROM workspace_members WHERE workspace_id IN
		 (SELECT id FROM workspaces WHERE id = $1 AND owner_id = $2)`, id, ownerID); err != nil {
		return fmt.Errorf("failed to delete workspace members: %w", err)
	}

	res, err := s.db.DB.ExecContext(ctx,
		"DELETE FROM workspaces WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}
	if rows == 0 {
		return apperr.ErrNotFound
	}

	s.cache.Invalidate(ctx, workspaceListKey(ownerID))
	return nil
}

// ListMembers returns the members of a workspace the caller can see.
func (s *WorkspaceStore) ListMembers(ctx context.Context, userID, workspaceID string) ([]models.WorkspaceMember, error) {
	members := []models.WorkspaceMember{}
	err := s.db.DB.SelectContext(ctx, &members,
		`SELECT m.id, m.workspace_id, m.user_id, m.role, m.joined_at
		 FROM workspace_members m
		 JOIN workspaces w ON w.id = m.workspace_id
		 WHERE m.workspace_id = $1 AND (w.owner_id = $2 OR w.is_public = true)
		 ORDER BY m.joined_at`, workspaceID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspace members: %w", err)
	}
	return members, nil
}

// AddMember adds a user to a workspace. Only the owner may add members.
func (s *WorkspaceStore) AddMember(ctx context.Context, ownerID, workspaceID, userID, role string) (*models.WorkspaceMember, error) {
	if role == "" {
		role = "member"
	}

	var member models.WorkspaceMember
	err := s.db.DB.QueryRowxContext(ctx,
		`INSERT INTO workspace_members (workspace_id, user_id, role)
		 SELECT id, $3, $4 FROM workspaces WHERE id = $1 AND owner_id = $2
		 RETURNING id, workspace_id, user_id, role, joined_at`,
		workspaceID, ownerID, userID, role,
	).StructScan(&member)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to add workspace member: %w", err)
	}
	return &member, nil
}

// RemoveMember removes a user from a workspace, owner-scoped.
func (s *WorkspaceStore) RemoveMember(ctx context.Context, ownerID, workspaceID, userID string) error {
	res, err := s.db.DB.ExecContext(ctx,
		`DELETE FROM workspace_members WHERE user_id = $3 AND workspace_id IN
		 (SELECT id FROM workspaces WHERE id = $1 AND owner_id = $2)`,
		workspaceID, ownerID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove workspace member: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to remove workspace member: %w", err)
	}
	if rows == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
