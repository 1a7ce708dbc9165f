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

const citationColumns = `id, query_id, title, authors, year, publication, doi, url, citation_style, formatted_citation, created_at`

// CitationStore persists citation rows. Ownership is checked through the
// parent query: a citation is only visible to whoever owns the query it
// belongs to.
type CitationStore struct {
	db    *database.Clients
	cache *ListCache
}

// ListByQuery returns the citations of one of the user's queries, newest
// first.
func (s *CitationStore) ListByQuery(ctx context.Context, userID, queryID string) ([]models.Citation, error) {
	key := citationListKey(queryID)

	citations := []models.Citation{}
	if s.cache.Get(ctx, key, &citations) {
		return citations, nil
	}

	err := s.db.DB.SelectContext(ctx, &citations,
		fmt.Sprintf(`SELECT %s FROM citations
		 WHERE query_id = $1
		   AND EXISTS (SELECT 1 FROM research_queries q WHERE q.id = citations.query_id AND q.user_id = $2)
		 ORDER BY created_at DESC`, citationColumns),
		queryID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list citations: %w", err)
	}

	s.cache.Set(ctx, key, citations)
	return citations, nil
}

// Insert adds a manual citation entry to one of the user's queries.
func (s *CitationStore) Insert(ctx context.Context, userID string, cit models.Citation) (models.Citation, error) {
	var created models.Citation
	q := fmt.Sprintf(`INSERT INTO citations (query_id, title, authors, year, publication, doi, url, citation_style, formatted_citation)
		SELECT q.id, $3, $4, $5, $6, $7, $8, $9, $10 FROM research_queries q
		WHERE q.id = $1 AND q.user_id = $2
		RETURNING %s`, citationColumns)
	err := s.db.DB.QueryRowxContext(ctx, q,
		cit.QueryID, userID, cit.Title, cit.Authors, cit.Year,
		cit.Publication, cit.DOI, cit.URL, cit.CitationStyle, cit.FormattedCitation,
	).StructScan(&created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Citation{}, apperr.ErrNotFound
		}
		return models.Citation{}, fmt.Errorf("failed to insert citation: %w", err)
	}

	s.cache.Invalidate(ctx, citationListKey(cit.QueryID))
	return created, nil
}

// Delete removes a citation, scoped through the parent query's owner.
func (s *CitationStore) Delete(ctx context.Context, userID, id string) error {
	var queryID string
	err := s.db.DB.QueryRowContext(ctx,
		`DELETE FROM citations c
		 USING research_queries q
		 WHERE c.id = $1 AND q.id = c.query_id AND q.user_id = $2
		 RETURNING c.query_id`, id, userID).Scan(&queryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.ErrNotFound
		}
		return fmt.Errorf("failed to delete citation: %w", err)
	}

	s.cache.Invalidate(ctx, citationListKey(queryID))
	return nil
}
