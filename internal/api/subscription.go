package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/labkite/researchdesk/internal/quota"
)

// handleGetSubscription returns the caller's subscription with the derived
// remaining allowance. A user without a subscription gets a null record and
// zero remaining rather than an error.
func (s *Server) handleGetSubscription(c *fiber.Ctx) error {
	session, err := sessionFrom(c)
	if err != nil {
		return s.respondError(c, err)
	}

	sub, err := s.store.Subscriptions.GetByUser(c.Context(), session.UserID)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"subscription": sub,
		"remaining":    quota.Remaining(sub),
	})
}
