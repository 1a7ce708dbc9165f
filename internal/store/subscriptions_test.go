package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestGetSubscriptionAbsentIsNotAnError(t *testing.T) {
	st, mock, _ := setupStore(t)

	mock.ExpectQuery("SELECT (.+) FROM subscriptions").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	sub, err := st.Subscriptions.GetByUser(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Nil(t, sub)
}

func TestGetSubscriptionActive(t *testing.T) {
	st, mock, _ := setupStore(t)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM subscriptions").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "tier", "monthly_query_limit", "monthly_queries_used", "status",
			"current_period_start", "current_period_end", "stripe_customer_id", "stripe_subscription_id",
			"created_at", "updated_at",
		}).AddRow("sub-1", "user-1", "research", 500, 247, "active", now, now.AddDate(0, 1, 0), nil, nil, now, now))

	sub, err := st.Subscriptions.GetByUser(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Equal(t, 253, sub.Remaining())
}

func TestIncrementUsage(t *testing.T) {
	st, mock, _ := setupStore(t)

	mock.ExpectExec("UPDATE subscriptions SET monthly_queries_used").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, st.Subscriptions.IncrementUsage(context.Background(), "user-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
