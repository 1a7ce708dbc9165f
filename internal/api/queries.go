package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/labkite/researchdesk/internal/agents"
	"github.com/labkite/researchdesk/internal/models"
	"github.com/labkite/researchdesk/internal/quota"
	"github.com/labkite/researchdesk/internal/research"
)

// handleListAgents returns the agent preset catalog shown in the research
// interface.
func (s *Server) handleListAgents(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"agents": agents.Catalog})
}

func (s *Server) handleListQueries(c *fiber.Ctx) error {
	session, err := sessionFrom(c)
	if err != nil {
		return s.respondError(c, err)
	}

	queries, err := s.store.Queries.List(c.Context(), session.UserID, c.QueryInt("limit"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"queries": queries})
}

func (s *Server) handleGetQuery(c *fiber.Ctx) error {
	session, err := sessionFrom(c)
	if err != nil {
		return s.respondError(c, err)
	}

	query, err := s.store.Queries.Get(c.Context(), session.UserID, c.Params("id"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"query": query})
}

// handleSubmitQuery runs the submission workflow and reports the remaining
// allowance alongside the created row.
func (s *Server) handleSubmitQuery(c *fiber.Ctx) error {
	session, err := sessionFrom(c)
	if err != nil {
		return s.respondError(c, err)
	}

	var req models.SubmitQueryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	form := research.Form{Title: req.Title, QueryText: req.QueryText, Agents: req.Agents}
	created, err := s.submitter.Submit(c.Context(), session.UserID, &form)
	if err != nil {
		return s.respondError(c, err)
	}

	sub, err := s.store.Subscriptions.GetByUser(c.Context(), session.UserID)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"query":     created,
		"remaining": quota.Remaining(sub),
	})
}

func (s *Server) handleUpdateQuery(c *fiber.Ctx) error {
	session, err := sessionFrom(c)
	if err != nil {
		return s.respondError(c, err)
	}

	var upd struct {
		Title     *string `json:"title"`
		QueryText *string `json:"query_text"`
	}
	if err := c.BodyParser(&upd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	query, err := s.store.Queries.Update(c.Context(), session.UserID, c.Params("id"), models.QueryUpdate{
		Title:     upd.Title,
		QueryText: upd.QueryText,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"query": query})
}

// handleRecallQuery loads a stored query back into form shape, exactly as
// submitted except that an empty agent list falls back to the default
// agent.
func (s *Server) handleRecallQuery(c *fiber.Ctx) error {
	session, err := sessionFrom(c)
	if err != nil {
		return s.respondError(c, err)
	}

	query, err := s.store.Queries.Get(c.Context(), session.UserID, c.Params("id"))
	if err != nil {
		return s.respondError(c, err)
	}

	form := research.Recall(query)
	return c.JSON(fiber.Map{
		"title":      form.Title,
		"query_text": form.QueryText,
		"ai_agents":  form.Agents,
	})
}
