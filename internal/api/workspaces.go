package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/labkite/researchdesk/internal/apperr"
	"github.com/labkite/researchdesk/internal/models"
)

func (s *Server) handleListWorkspaces(c *fiber.Ctx) error {
	session, err := sessionFrom(c)
	if err != nil {
		return s.respondError(c, err)
	}

	workspaces, err := s.store.Workspaces.List(c.Context(), session.UserID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"workspaces": workspaces})
}

func (s *Server) handleCreateWorkspace(c *fiber.Ctx) error {
	session, err := sessionFrom(c)
	if err != nil {
		return s.respondError(c, err)
	}

	var req models.CreateWorkspaceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ws, err := models.NewWorkspace(session.UserID, req.Name, req.Description, req.IsPublic)
	if err != nil {
		return s.respondError(c, &apperr.ValidationError{Fields: []string{err.Error()}})
	}

	created, err := s.store.Workspaces.Create(c.Context(), ws)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"workspace": created})
}

func (s *Server) handleUpdateWorkspace(c *fiber.Ctx) error {
	session, err := sessionFrom(c)
	if err != nil {
		return s.respondError(c, err)
	}

	var upd models.WorkspaceUpdate
	if err := c.BodyParser(&upd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	workspace, err := s.store.Workspaces.Update(c.Context(), session.UserID, c.Params("id"), upd)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"workspace": workspace})
}

func (s *Server) handleDeleteWorkspace(c *fiber.Ctx) error {
	session, err := sessionFrom(c)
	if err != nil {
		return s.respondError(c, err)
	}

	if err := s.store.Workspaces.Delete(c.Context(), session.UserID, c.Params("id")); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": true})
}

func (s *Server) handleListMembers(c *fiber.Ctx) error {
	session, err := sessionFrom(c)
	if err != nil {
		return s.respondError(c, err)
	}

	members, err := s.store.Workspaces.ListMembers(c.Context(), session.UserID, c.Params("id"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"members": members})
}

func (s *Server) handleAddMember(c *fiber.Ctx) error {
	session, err := sessionFrom(c)
	if err != nil {
		return s.respondError(c, err)
	}

	var req models.AddMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.UserID == "" {
		return s.respondError(c, &apperr.ValidationError{Fields: []string{"user id is required"}})
	}

	member, err := s.store.Workspaces.AddMember(c.Context(), session.UserID, c.Params("id"), req.UserID, req.Role)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"member": member})
}

func (s *Server) handleRemoveMember(c *fiber.Ctx) error {
	session, err := sessionFrom(c)
	if err != nil {
		return s.respondError(c, err)
	}

	if err := s.store.Workspaces.RemoveMember(c.Context(), session.UserID, c.Params("id"), c.Params("userID")); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"removed": true})
}
