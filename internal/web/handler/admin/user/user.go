// Package user implements the administration endpoints for user accounts and
// their role assignments.
package user

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/audit"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/auth"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/config"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/db/controller/user"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/db/models"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/web/handler"
)

const (
	// Path is the base path of the user administration endpoints.
	Path = "/api/users"

	defaultPageSize = 50
)

// Service is the user administration handler service.
type Service struct {
	cfg      *config.Config
	db       *gorm.DB
	recorder *audit.Recorder
}

// Handler is the user administration handler.
var Handler = Service{}

type setStatusRequest struct {
	Status models.UserStatus `json:"status" validate:"required,oneof=active inactive suspended"`
}

type assignRoleRequest struct {
	RoleID uint `json:"role_id" validate:"required"`
}

// Init initializes the user administration handler and registers its routes.
func (s *Service) Init(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authority *auth.Authority,
	authService *auth.Service,
	recorder *audit.Recorder,
) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db
	s.recorder = recorder

	requireRead := auth.RequirePermission(authService, auth.FeatureUsers, models.PermissionRead)
	requireWrite := auth.RequirePermission(authService, auth.FeatureUsers, models.PermissionWrite)
	requireDelete := auth.RequirePermission(authService, auth.FeatureUsers, models.PermissionDelete)

	app.Route(Path, func(router fiber.Router) {
		router.Use(auth.RequireAuth(authority))

		router.Get(handler.RootPath, requireRead, s.List)
		router.Get("/:id", requireRead, s.Get)
		router.Put("/:id/status", requireWrite, s.SetStatus)
		router.Delete("/:id", requireDelete, s.Delete)

		router.Get("/:id/roles", requireRead, s.Roles)
		router.Post("/:id/roles", requireWrite, s.AssignRole)
		router.Delete("/:id/roles/:roleID", requireWrite, s.RemoveRole)
	})

	return nil
}

// List returns a page of users, optionally filtered by status.
func (s *Service) List(c *fiber.Ctx) error {
	var status *models.UserStatus

	if raw := c.Query("status"); raw != "" {
		st := models.UserStatus(raw)
		status = &st
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	pageSize := c.QueryInt("page_size", defaultPageSize)
	if pageSize < 1 || pageSize > 200 {
		pageSize = defaultPageSize
	}

	users, total, err := user.List(s.db, c.Query("project_id"), status, pageSize, (page-1)*pageSize)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"users": users, "total": total, "page": page, "page_size": pageSize})
}

// Get returns one user with their assigned roles.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	u, err := user.Get(s.db, id)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(u)
}

// SetStatus changes a user's account status.
func (s *Service) SetStatus(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	var req setStatusRequest

	if err := c.BodyParser(&req); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if err := handler.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := user.SetStatus(s.db, id, req.Status); err != nil {
		return fail(c, err)
	}

	s.audit(c, models.AuditUserUpdated, id, "status set to "+string(req.Status))

	return c.SendStatus(fiber.StatusNoContent)
}

// Delete removes a user. Their active refresh tokens are revoked first.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if err := user.Delete(s.db, id); err != nil {
		return fail(c, err)
	}

	s.audit(c, models.AuditUserDeleted, id, "user deleted")

	return c.SendStatus(fiber.StatusNoContent)
}

// Roles returns the roles assigned to a user.
func (s *Service) Roles(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	u, err := user.Get(s.db, id)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(u.Roles)
}

// AssignRole assigns a role to a user. Assigning twice is a no-op.
func (s *Service) AssignRole(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	var req assignRoleRequest

	if err := c.BodyParser(&req); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if err := handler.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := user.AssignRole(s.db, id, req.RoleID, actor(c)); err != nil {
		return fail(c, err)
	}

	s.audit(c, models.AuditRoleAssigned, id,
		"role "+strconv.FormatUint(uint64(req.RoleID), 10)+" assigned")

	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveRole removes a role assignment from a user.
func (s *Service) RemoveRole(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	roleID, err := c.ParamsInt("roleID")
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if err := user.RemoveRole(s.db, id, uint(roleID)); err != nil {
		return fail(c, err)
	}

	s.audit(c, models.AuditRoleRevoked, id, "role "+strconv.Itoa(roleID)+" removed")

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Service) audit(c *fiber.Ctx, action models.AuditAction, entityID uint64, details string) {
	entry := audit.Entry{
		Action:     action,
		EntityID:   &entityID,
		EntityType: "User",
		Details:    details,
		IPAddress:  c.IP(),
		UserAgent:  c.Get(fiber.HeaderUserAgent),
	}

	if userID, ok := auth.UserID(c); ok {
		entry.UserID = &userID
	}

	s.recorder.Record(entry)
}

func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, user.ErrUserNotFound), errors.Is(err, user.ErrRoleNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	default:
		log.Error().Err(err).Msg("user administration failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
}

func actor(c *fiber.Ctx) string {
	if userID, ok := auth.UserID(c); ok {
		return strconv.FormatUint(userID, 10)
	}

	return ""
}
