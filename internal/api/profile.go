package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/labkite/researchdesk/internal/models"
)

func (s *Server) handleGetProfile(c *fiber.Ctx) error {
	session, err := sessionFrom(c)
	if err != nil {
		return s.respondError(c, err)
	}

	profile, err := s.store.Profiles.Get(c.Context(), session.UserID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"profile": profile})
}

func (s *Server) handleUpdateProfile(c *fiber.Ctx) error {
	session, err := sessionFrom(c)
	if err != nil {
		return s.respondError(c, err)
	}

	var upd models.ProfileUpdate
	if err := c.BodyParser(&upd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	profile, err := s.store.Profiles.Update(c.Context(), session.UserID, upd)
	if err != nil {
		return s.respondError(c, err)
	}

	s.logger.Info("Profile updated", "user_id", session.UserID)
	return c.JSON(fiber.Map{"profile": profile})
}
