package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/labkite/researchdesk/internal/apperr"
	"github.com/labkite/researchdesk/internal/models"
	"github.com/labkite/researchdesk/pkg/database"
)

const queryColumns = `id, user_id, title, query_text, ai_agents_used, status, results, citations, created_at, updated_at`

// QueryStore persists research queries. Status reads are overlaid with the
// live value the worker keeps in Redis, so a list reflects an in-flight
// transition before the row update lands.
type QueryStore struct {
	db    *database.Clients
	cache *ListCache
}

func statusKey(queryID string) string {
	return fmt.Sprintf("query:%s", queryID)
}

// List returns the user's queries, newest first. limit <= 0 means the
// default history window, which is the only shape served from cache.
func (s *QueryStore) List(ctx context.Context, userID string, limit int) ([]models.ResearchQuery, error) {
	cached := limit <= 0
	key := queryListKey(userID)

	queries := []models.ResearchQuery{}
	if !cached || !s.cache.Get(ctx, key, &queries) {
		q := fmt.Sprintf("SELECT %s FROM research_queries WHERE user_id = $1 ORDER BY created_at DESC", queryColumns)
		args := []interface{}{userID}
		if limit > 0 {
			q += " LIMIT $2"
			args = append(args, limit)
		}
		if err := s.db.DB.SelectContext(ctx, &queries, q, args...); err != nil {
			return nil, fmt.Errorf("failed to list research queries: %w", err)
		}
		if cached {
			s.cache.Set(ctx, key, queries)
		}
	}

	// Overlay live statuses from Redis
	for i := range queries {
		if status, err := s.db.Redis.Get(ctx, statusKey(queries[i].ID)).Result(); err == nil {
			queries[i].Status = models.QueryStatus(status)
		}
	}
	return queries, nil
}

// Get returns one query scoped to its owner.
func (s *QueryStore) Get(ctx context.Context, userID, id string) (*models.ResearchQuery, error) {
	var query models.ResearchQuery
	q := fmt.Sprintf("SELECT %s FROM research_queries WHERE id = $1 AND user_id = $2", queryColumns)
	if err := s.db.DB.GetContext(ctx, &query, q, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch research query: %w", err)
	}
	if status, err := s.db.Redis.Get(ctx, statusKey(query.ID)).Result(); err == nil {
		query.Status = models.QueryStatus(status)
	}
	return &query, nil
}

// Insert persists a new query row and returns it fully populated. The
// initial status is mirrored into Redis and the owner's list cache is
// invalidated so the next read refetches.
func (s *QueryStore) Insert(ctx context.Context, query models.ResearchQuery) (models.ResearchQuery, error) {
	var created models.ResearchQuery
	q := fmt.Sprintf(`INSERT INTO research_queries (user_id, title, query_text, ai_agents_used, status)
		VALUES ($1, $2, $3, $4, $5) RETURNING %s`, queryColumns)
	err := s.db.DB.QueryRowxContext(ctx, q,
		query.UserID, query.Title, query.QueryText, query.AIAgentsUsed, query.Status,
	).StructScan(&created)
	if err != nil {
		return models.ResearchQuery{}, fmt.Errorf("failed to insert research query: %w", err)
	}

	if err := s.db.Redis.Set(ctx, statusKey(created.ID), string(created.Status), 0).Err(); err != nil {
		return models.ResearchQuery{}, fmt.Errorf("failed to set query status: %w", err)
	}

	s.cache.Invalidate(ctx, queryListKey(query.UserID))
	return created, nil
}

// Update changes the owner-editable fields of a query. Nil fields keep
// their current value.
func (s *QueryStore) Update(ctx context.Context, userID, id string, upd models.QueryUpdate) (*models.ResearchQuery, error) {
	var updated models.ResearchQuery
	q := fmt.Sprintf(`UPDATE research_queries
		SET title = COALESCE($3, title), query_text = COALESCE($4, query_text), updated_at = now()
		WHERE id = $1 AND user_id = $2 RETURNING %s`, queryColumns)
	err := s.db.DB.QueryRowxContext(ctx, q, id, userID, upd.Title, upd.QueryText).StructScan(&updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update research query: %w", err)
	}

	s.cache.Invalidate(ctx, queryListKey(userID))
	return &updated, nil
}

// SetStatus records a lifecycle transition made by the worker, in both
// Postgres and the Redis overlay.
func (s *QueryStore) SetStatus(ctx context.Context, id string, status models.QueryStatus) error {
	var ownerID string
	err := s.db.DB.QueryRowContext(ctx,
		"UPDATE research_queries SET status = $2, updated_at = now() WHERE id = $1 RETURNING user_id",
		id, status,
	).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.ErrNotFound
		}
		return fmt.Errorf("failed to update query status: %w", err)
	}

	if err := s.db.Redis.Set(ctx, statusKey(id), string(status), 0).Err(); err != nil {
		return fmt.Errorf("failed to set query status: %w", err)
	}

	s.cache.Invalidate(ctx, queryListKey(ownerID))
	return nil
}

// Complete stores the worker's results and extracted citations and marks
// the query completed.
func (s *QueryStore) Complete(ctx context.Context, id string, results, citations json.RawMessage) error {
	var ownerID string
	err := s.db.DB.QueryRowContext(ctx,
		`UPDATE research_queries SET status = $2, results = $3, citations = $4, updated_at = now()
		 WHERE id = $1 RETURNING user_id`,
		id, models.StatusCompleted, results, citations,
	).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.ErrNotFound
		}
		return fmt.Errorf("failed to complete query: %w", err)
	}

	if err := s.db.Redis.Set(ctx, statusKey(id), string(models.StatusCompleted), 0).Err(); err != nil {
		return fmt.Errorf("failed to set query status: %w", err)
	}

	s.cache.Invalidate(ctx, queryListKey(ownerID))
	return nil
}
