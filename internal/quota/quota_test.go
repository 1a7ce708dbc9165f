package quota

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/labkite/researchdesk/internal/apperr"
	"github.com/labkite/researchdesk/internal/models"
)

func TestRemaining(t *testing.T) {
	tests := []struct {
		name string
		sub  *models.Subscription
		want int
	}{
		{
			name: "no subscription",
			sub:  nil,
			want: 0,
		},
		{
			name: "partially used",
			sub:  &models.Subscription{MonthlyQueryLimit: 500, MonthlyQueriesUsed: 247},
			want: 253,
		},
		{
			name: "fully used",
			sub:  &models.Subscription{MonthlyQueryLimit: 500, MonthlyQueriesUsed: 500},
			want: 0,
		},
		{
			name: "usage over limit goes negative",
			sub:  &models.Subscription{MonthlyQueryLimit: 100, MonthlyQueriesUsed: 120},
			want: -20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Remaining(tt.sub))
		})
	}
}

func TestCheck(t *testing.T) {
	// No subscription at all
	err := Check(nil)
	assert.True(t, errors.Is(err, apperr.ErrQuotaExceeded))

	// Exhausted allowance
	err = Check(&models.Subscription{MonthlyQueryLimit: 500, MonthlyQueriesUsed: 500})
	assert.True(t, errors.Is(err, apperr.ErrQuotaExceeded))

	// Usage mis-set above the limit must still be treated as exhausted
	err = Check(&models.Subscription{MonthlyQueryLimit: 100, MonthlyQueriesUsed: 150})
	assert.True(t, errors.Is(err, apperr.ErrQuotaExceeded))

	// One query left
	assert.NoError(t, Check(&models.Subscription{MonthlyQueryLimit: 500, MonthlyQueriesUsed: 499}))
}
