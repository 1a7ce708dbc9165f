package api

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"github.com/labkite/researchdesk/internal/apperr"
	"github.com/labkite/researchdesk/internal/models"
)

func (s *Server) handleListCitations(c *fiber.Ctx) error {
	session, err := sessionFrom(c)
	if err != nil {
		return s.respondError(c, err)
	}

	citations, err := s.store.Citations.ListByQuery(c.Context(), session.UserID, c.Params("id"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"citations": citations})
}

// handleCreateCitation adds a manual citation-manager entry to one of the
// caller's queries.
func (s *Server) handleCreateCitation(c *fiber.Ctx) error {
	session, err := sessionFrom(c)
	if err != nil {
		return s.respondError(c, err)
	}

	var req models.CreateCitationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	citation, err := models.NewCitation(req.QueryID, req.Title, req.Authors, models.CitationStyle(req.CitationStyle))
	if err != nil {
		return s.respondError(c, &apperr.ValidationError{Fields: []string{err.Error()}})
	}
	if req.Year > 0 {
		citation.Year = sql.NullInt32{Int32: int32(req.Year), Valid: true}
	}
	if req.Publication != "" {
		citation.Publication = sql.NullString{String: req.Publication, Valid: true}
	}
	if req.DOI != "" {
		citation.DOI = sql.NullString{String: req.DOI, Valid: true}
	}
	if req.URL != "" {
		citation.URL = sql.NullString{String: req.URL, Valid: true}
	}

	created, err := s.store.Citations.Insert(c.Context(), session.UserID, citation)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"citation": created})
}

func (s *Server) handleDeleteCitation(c *fiber.Ctx) error {
	session, err := sessionFrom(c)
	if err != nil {
		return s.respondError(c, err)
	}

	if err := s.store.Citations.Delete(c.Context(), session.UserID, c.Params("id")); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": true})
}
