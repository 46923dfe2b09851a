// Package role implements the administration endpoints for roles and their
// permission grants.
package role

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/audit"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/auth"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/config"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/db/controller/role"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/db/models"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/web/handler"
)

const (
	// Path is the base path of the role administration endpoints.
	Path = "/api/roles"
)

// Service is the role administration handler service.
type Service struct {
	cfg      *config.Config
	db       *gorm.DB
	recorder *audit.Recorder
}

// Handler is the role administration handler.
var Handler = Service{}

type createRoleRequest struct {
	Name        string `json:"name"        validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Priority    int    `json:"priority"`
	ProjectID   string `json:"project_id"  validate:"max=100"`
}

type updateRoleRequest struct {
	Name        string `json:"name"        validate:"max=100"`
	Description string `json:"description" validate:"max=500"`
	Priority    *int   `json:"priority"`
}

type grantRequest struct {
	PermissionID uint `json:"permission_id" validate:"required"`
}

// Init initializes the role administration handler and registers its routes.
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

	requireRead := auth.RequirePermission(authService, auth.FeatureRoles, models.PermissionRead)
	requireWrite := auth.RequirePermission(authService, auth.FeatureRoles, models.PermissionWrite)
	requireDelete := auth.RequirePermission(authService, auth.FeatureRoles, models.PermissionDelete)

	app.Route(Path, func(router fiber.Router) {
		router.Use(auth.RequireAuth(authority))

		router.Get(handler.RootPath, requireRead, s.List)
		router.Post(handler.RootPath, requireWrite, s.Create)
		router.Get("/:id", requireRead, s.Get)
		router.Put("/:id", requireWrite, s.Update)
		router.Delete("/:id", requireDelete, s.Delete)

		router.Post("/:id/permissions", requireWrite, s.Grant)
		router.Delete("/:id/permissions/:permissionID", requireWrite, s.Revoke)
	})

	return nil
}

// List returns the roles of a project, highest priority first.
func (s *Service) List(c *fiber.Ctx) error {
	roles, err := role.List(s.db, c.Query("project_id"))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(roles)
}

// Get returns one role with its granted permissions.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	r, err := role.Get(s.db, uint(id))
	if err != nil {
		return fail(c, err)
	}

	permissions, err := role.GrantedPermissions(s.db, r.ID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"role": r, "permissions": permissions})
}

// Create creates a role.
func (s *Service) Create(c *fiber.Ctx) error {
	var req createRoleRequest

	if err := c.BodyParser(&req); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if err := handler.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	r := models.Role{
		Name:        req.Name,
		Description: req.Description,
		Priority:    req.Priority,
		ProjectID:   req.ProjectID,
		CreatedBy:   actor(c),
	}

	if err := role.Create(s.db, &r); err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(r)
}

// Update updates a role's mutable fields.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	var req updateRoleRequest

	if err := c.BodyParser(&req); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if err := handler.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	updates := map[string]interface{}{}

	if req.Name != "" {
		updates["name"] = req.Name
	}

	if req.Description != "" {
		updates["description"] = req.Description
	}

	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}

	r, err := role.Update(s.db, uint(id), updates)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(r)
}

// Delete removes a role.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if err := role.Delete(s.db, uint(id)); err != nil {
		return fail(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Grant grants a permission to a role. Granting twice is a no-op.
func (s *Service) Grant(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	var req grantRequest

	if err := c.BodyParser(&req); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if err := handler.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := role.GrantPermission(s.db, uint(id), req.PermissionID, actor(c)); err != nil {
		return fail(c, err)
	}

	s.audit(c, models.AuditPermissionGranted, uint64(id),
		"permission "+strconv.FormatUint(uint64(req.PermissionID), 10)+" granted")

	return c.SendStatus(fiber.StatusNoContent)
}

// Revoke removes a permission grant from a role.
func (s *Service) Revoke(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	permissionID, err := c.ParamsInt("permissionID")
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if err := role.RevokePermission(s.db, uint(id), uint(permissionID)); err != nil {
		return fail(c, err)
	}

	s.audit(c, models.AuditPermissionRevoked, uint64(id),
		"permission "+strconv.Itoa(permissionID)+" revoked")

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Service) audit(c *fiber.Ctx, action models.AuditAction, entityID uint64, details string) {
	entry := audit.Entry{
		Action:     action,
		EntityID:   &entityID,
		EntityType: "Role",
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
	case errors.Is(err, role.ErrRoleNotFound), errors.Is(err, role.ErrPermissionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case errors.Is(err, role.ErrRoleAlreadyExists), errors.Is(err, role.ErrRoleIsSystem):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Error().Err(err).Msg("role administration failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
}

func actor(c *fiber.Ctx) string {
	if userID, ok := auth.UserID(c); ok {
		return strconv.FormatUint(userID, 10)
	}

	return ""
}
