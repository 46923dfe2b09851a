// Package audit implements the read-only audit trail endpoint.
package audit

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/auth"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/config"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/db/controller/auditlog"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/db/models"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/web/handler"
)

const (
	// Path is the base path of the audit trail endpoint.
	Path = "/api/audit-logs"
)

// Service is the audit trail handler service.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the audit trail handler.
var Handler = Service{}

// Init initializes the audit trail handler and registers its routes.
func (s *Service) Init(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authority *auth.Authority,
	authService *auth.Service,
) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db

	app.Route(Path, func(router fiber.Router) {
		router.Use(auth.RequireAuth(authority))

		router.Get(handler.RootPath,
			auth.RequirePermission(authService, auth.FeatureAuditLogs, models.PermissionRead),
			s.List)
	})

	return nil
}

// List returns matching audit entries, newest first.
func (s *Service) List(c *fiber.Ctx) error {
	filter := auditlog.Filter{
		Action:     models.AuditAction(c.Query("action")),
		EntityType: c.Query("entity_type"),
		ProjectID:  c.Query("project_id"),
		Page:       c.QueryInt("page", 1),
		PageSize:   c.QueryInt("page_size", 50),
	}

	if raw := c.Query("user_id"); raw != "" {
		userID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user_id"})
		}

		filter.UserID = &userID
	}

	if raw := c.Query("start"); raw != "" {
		start, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid start time"})
		}

		filter.Start = &start
	}

	if raw := c.Query("end"); raw != "" {
		end, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid end time"})
		}

		filter.End = &end
	}

	entries, total, err := auditlog.List(s.db, filter)
	if err != nil {
		log.Error().Err(err).Msg("audit trail query failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	return c.JSON(fiber.Map{"entries": entries, "total": total})
}
