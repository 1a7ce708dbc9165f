// Package quota gates new research query submissions on the subscription's
// remaining monthly allowance. The numbers here are advisory: the guard
// only blocks submissions from this service when the known counter is
// exhausted. It never increments usage itself; the worker counts a query
// when it actually processes it.
package quota

import (
	"github.com/labkite/researchdesk/internal/apperr"
	"github.com/labkite/researchdesk/internal/models"
)

// Remaining reports how many queries the subscription has left this period.
// A missing subscription has zero allowance. The value can go negative if
// usage was mis-set upstream.
func Remaining(sub *models.Subscription) int {
	if sub == nil {
		return 0
	}
	return sub.Remaining()
}

// Check permits a submission only when a subscription exists and has
// strictly positive remaining allowance. Negative remaining is still
// exhausted.
func Check(sub *models.Subscription) error {
	if sub == nil || Remaining(sub) <= 0 {
		return apperr.ErrQuotaExceeded
	}
	return nil
}
