package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/labkite/researchdesk/internal/models"
	"github.com/labkite/researchdesk/pkg/database"
)

const subscriptionColumns = `id, user_id, tier, monthly_query_limit, monthly_queries_used, status,
	current_period_start, current_period_end, stripe_customer_id, stripe_subscription_id, created_at, updated_at`

// SubscriptionStore reads and maintains the one-per-user billing record.
// Reads are never cached: the remaining-queries number gates submissions,
// so it always comes straight from the database.
type SubscriptionStore struct {
	db *database.Clients
}

// GetByUser returns the user's active subscription, or nil when none
// exists. Absence is a normal state, not an error.
func (s *SubscriptionStore) GetByUser(ctx context.Context, userID string) (*models.Subscription, error) {
	var sub models.Subscription
	q := fmt.Sprintf(`SELECT %s FROM subscriptions
		WHERE user_id = $1 AND status = 'active'
		ORDER BY created_at DESC LIMIT 1`, subscriptionColumns)
	if err := s.db.DB.GetContext(ctx, &sub, q, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch subscription: %w", err)
	}
	return &sub, nil
}

// IncrementUsage counts one processed query against the user's allowance.
// Called by the worker when processing actually starts, never by the
// submission path.
func (s *SubscriptionStore) IncrementUsage(ctx context.Context, userID string) error {
	_, err := s.db.DB.ExecContext(ctx,
		`UPDATE subscriptions SET monthly_queries_used = monthly_queries_used + 1, updated_at = now()
		 WHERE user_id = $1 AND status = 'active'`, userID)
	if err != nil {
		return fmt.Errorf("failed to increment query usage: %w", err)
	}
	return nil
}

// Create provisions a subscription for a user at the given tier, with the
// tier's standard monthly limit.
func (s *SubscriptionStore) Create(ctx context.Context, userID string, tier models.SubscriptionTier) (models.Subscription, error) {
	var created models.Subscription
	q := fmt.Sprintf(`INSERT INTO subscriptions (user_id, tier, monthly_query_limit, status, current_period_start, current_period_end)
		VALUES ($1, $2, $3, 'active', now(), now() + interval '1 month')
		RETURNING %s`, subscriptionColumns)
	err := s.db.DB.QueryRowxContext(ctx, q, userID, tier, tier.QueryLimit()).StructScan(&created)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("failed to create subscription: %w", err)
	}
	return created, nil
}
