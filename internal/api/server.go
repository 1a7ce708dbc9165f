package api

import (
	"errors"
	"log/slog"

	"github.com/IBM/sarama"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	jwtware "github.com/gofiber/jwt/v3"

	"github.com/labkite/researchdesk/internal/apperr"
	"github.com/labkite/researchdesk/internal/config"
	"github.com/labkite/researchdesk/internal/pkg/supabase"
	"github.com/labkite/researchdesk/internal/research"
	"github.com/labkite/researchdesk/internal/store"
	"github.com/labkite/researchdesk/pkg/database"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	store     *store.Store
	submitter *research.Submitter
	auth      supabase.Authenticator
	logger    *slog.Logger
}

func NewServer(cfg *config.Config, db *database.Clients, producer sarama.SyncProducer, auth supabase.Authenticator) *Server {
	app := fiber.New()

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status}\n",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.Server.MaxRequests,
		Expiration: cfg.Server.RequestTimeout,
	}))

	st := store.New(db)
	server := &Server{
		app:       app,
		cfg:       cfg,
		store:     st,
		submitter: research.NewSubmitter(st, producer, cfg.Kafka.Topic),
		auth:      auth,
		logger:    slog.Default(),
	}

	// Routes
	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	api := s.app.Group("/api")

	// Public routes
	api.Post("/login", s.handleLogin)
	api.Get("/agents", s.handleListAgents)

	// Protected routes
	protected := api.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(s.cfg.JWT.Secret),
	}))
	protected.Get("/queries", s.handleListQueries)
	protected.Post("/queries", s.handleSubmitQuery)
	protected.Get("/queries/:id", s.handleGetQuery)
	protected.Patch("/queries/:id", s.handleUpdateQuery)
	protected.Get("/queries/:id/recall", s.handleRecallQuery)
	protected.Get("/queries/:id/citations", s.handleListCitations)
	protected.Post("/citations", s.handleCreateCitation)
	protected.Delete("/citations/:id", s.handleDeleteCitation)
	protected.Get("/workspaces", s.handleListWorkspaces)
	protected.Post("/workspaces", s.handleCreateWorkspace)
	protected.Patch("/workspaces/:id", s.handleUpdateWorkspace)
	protected.Delete("/workspaces/:id", s.handleDeleteWorkspace)
	protected.Get("/workspaces/:id/members", s.handleListMembers)
	protected.Post("/workspaces/:id/members", s.handleAddMember)
	protected.Delete("/workspaces/:id/members/:userID", s.handleRemoveMember)
	protected.Get("/subscription", s.handleGetSubscription)
	protected.Get("/profile", s.handleGetProfile)
	protected.Patch("/profile", s.handleUpdateProfile)
}

func (s *Server) Start() error {
	return s.app.Listen(s.cfg.Server.Port)
}

// respondError maps a workflow error to its HTTP status. The message goes
// out verbatim so the user sees what the backend saw.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	status := apperr.HTTPStatus(err)
	if status == fiber.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Path(), "error", err)
	}
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		return c.Status(status).JSON(fiber.Map{
			"error":  err.Error(),
			"fields": ve.Fields,
		})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
