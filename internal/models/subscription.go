package models

import (
	"database/sql"
	"time"
)

// Subscription is the one-per-user billing and quota record. Usage numbers
// held here are advisory for display and client-side gating; the worker
// increments monthly_queries_used when a query is actually processed, and
// the billing system resets it on period rollover.
type Subscription struct {
	ID                   string           `json:"id" db:"id"`
	UserID               string           `json:"user_id" db:"user_id"`
	Tier                 SubscriptionTier `json:"tier" db:"tier"`
	MonthlyQueryLimit    int              `json:"monthly_query_limit" db:"monthly_query_limit"`
	MonthlyQueriesUsed   int              `json:"monthly_queries_used" db:"monthly_queries_used"`
	Status               string           `json:"status" db:"status"`
	CurrentPeriodStart   sql.NullTime     `json:"current_period_start" db:"current_period_start"`
	CurrentPeriodEnd     sql.NullTime     `json:"current_period_end" db:"current_period_end"`
	StripeCustomerID     sql.NullString   `json:"stripe_customer_id" db:"stripe_customer_id"`
	StripeSubscriptionID sql.NullString   `json:"stripe_subscription_id" db:"stripe_subscription_id"`
	CreatedAt            time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at" db:"updated_at"`
}

// Remaining reports how many queries are left this period. Can go negative
// if usage was mis-set upstream; callers must treat <= 0 as exhausted.
func (s *Subscription) Remaining() int {
	if s == nil {
		return 0
	}
	return s.MonthlyQueryLimit - s.MonthlyQueriesUsed
}
