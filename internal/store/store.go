// Package store implements the per-resource data access layer. Every method
// that reads or writes owned rows takes the owning user id explicitly: the
// caller resolves the session once and passes it down, nothing here reads
// ambient auth state. Row-not-found and not-owned both come back as
// apperr.ErrNotFound; the store does not distinguish them.
package store

import (
	"fmt"

	"github.com/labkite/researchdesk/pkg/database"
)

// Store bundles the per-resource repositories over one database handle and
// one list cache.
type Store struct {
	Queries       *QueryStore
	Workspaces    *WorkspaceStore
	Citations     *CitationStore
	Subscriptions *SubscriptionStore
	Profiles      *ProfileStore
}

func New(db *database.Clients) *Store {
	cache := NewListCache(db.Redis)
	return &Store{
		Queries:       &QueryStore{db: db, cache: cache},
		Workspaces:    &WorkspaceStore{db: db, cache: cache},
		Citations:     &CitationStore{db: db, cache: cache},
		Subscriptions: &SubscriptionStore{db: db},
		Profiles:      &ProfileStore{db: db},
	}
}

func queryListKey(userID string) string {
	return fmt.Sprintf("research_queries:user:%s", userID)
}

func workspaceListKey(userID string) string {
	return fmt.Sprintf("workspaces:user:%s", userID)
}

func citationListKey(queryID string) string {
	return fmt.Sprintf("citations:query:%s", queryID)
}
