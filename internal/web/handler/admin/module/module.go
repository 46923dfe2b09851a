// Package module implements the administration endpoints for the module tree
// and its features.
package module

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/audit"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/auth"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/config"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/db/controller/feature"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/db/controller/module"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/db/models"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/web/handler"
)

const (
	// Path is the base path of the module administration endpoints.
	Path = "/api/modules"
)

// Service is the module administration handler service.
type Service struct {
	cfg      *config.Config
	db       *gorm.DB
	recorder *audit.Recorder
}

// Handler is the module administration handler.
var Handler = Service{}

type createModuleRequest struct {
	Name           string `json:"name"        validate:"required,max=100"`
	Description    string `json:"description" validate:"max=500"`
	Code           string `json:"code"        validate:"required,max=50"`
	ParentModuleID *uint  `json:"parent_module_id"`
	Order          int    `json:"order"`
	ProjectID      string `json:"project_id"  validate:"max=100"`
}

type updateModuleRequest struct {
	Name        string `json:"name"        validate:"max=100"`
	Description string `json:"description" validate:"max=500"`
	Order       *int   `json:"order"`
	IsActive    *bool  `json:"is_active"`
}

type setParentRequest struct {
	ParentModuleID *uint `json:"parent_module_id"`
}

type createFeatureRequest struct {
	Name        string `json:"name"        validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Code        string `json:"code"        validate:"required,max=50"`
	ProjectID   string `json:"project_id"  validate:"max=100"`
}

type updateFeatureRequest struct {
	Name        string `json:"name"        validate:"max=100"`
	Description string `json:"description" validate:"max=500"`
	IsActive    *bool  `json:"is_active"`
}

// Init initializes the module administration handler and registers its routes.
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

	requireWrite := auth.RequirePermission(authService, auth.FeatureModules, models.PermissionWrite)
	requireRead := auth.RequirePermission(authService, auth.FeatureModules, models.PermissionRead)
	requireDelete := auth.RequirePermission(authService, auth.FeatureModules, models.PermissionDelete)

	app.Route(Path, func(router fiber.Router) {
		router.Use(auth.RequireAuth(authority))

		router.Get(handler.RootPath, requireRead, s.List)
		router.Post(handler.RootPath, requireWrite, s.Create)
		router.Get("/:id", requireRead, s.Get)
		router.Put("/:id", requireWrite, s.Update)
		router.Put("/:id/parent", requireWrite, s.SetParent)
		router.Delete("/:id", requireDelete, s.Delete)

		router.Get("/:id/features", requireRead, s.ListFeatures)
		router.Post("/:id/features", requireWrite, s.CreateFeature)
		router.Put("/:id/features/:featureID", requireWrite, s.UpdateFeature)
		router.Delete("/:id/features/:featureID", requireDelete, s.DeleteFeature)
	})

	return nil
}

// List returns the modules of a project ordered among siblings.
func (s *Service) List(c *fiber.Ctx) error {
	modules, err := module.List(s.db, c.Query("project_id"))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(modules)
}

// Get returns one module with its direct children.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	m, err := module.Get(s.db, uint(id))
	if err != nil {
		return fail(c, err)
	}

	children, err := module.Children(s.db, m.ID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"module": m, "sub_modules": children})
}

// Create creates a module.
func (s *Service) Create(c *fiber.Ctx) error {
	var req createModuleRequest

	if err := c.BodyParser(&req); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if err := handler.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	m := models.Module{
		Name:           req.Name,
		Description:    req.Description,
		Code:           req.Code,
		ParentModuleID: req.ParentModuleID,
		Order:          req.Order,
		IsActive:       true,
		ProjectID:      req.ProjectID,
		CreatedBy:      actor(c),
	}

	if err := module.Create(s.db, &m); err != nil {
		return fail(c, err)
	}

	s.audit(c, models.AuditModuleCreated, uint64(m.ID), "module created: "+m.Name, m.ProjectID)

	return c.Status(fiber.StatusCreated).JSON(m)
}

// Update updates a module's mutable fields.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	var req updateModuleRequest

	if err := c.BodyParser(&req); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if err := handler.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	updates := map[string]interface{}{"updated_by": actor(c)}

	if req.Name != "" {
		updates["name"] = req.Name
	}

	if req.Description != "" {
		updates["description"] = req.Description
	}

	if req.Order != nil {
		updates["order"] = *req.Order
	}

	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	m, err := module.Update(s.db, uint(id), updates)
	if err != nil {
		return fail(c, err)
	}

	s.audit(c, models.AuditModuleUpdated, uint64(m.ID), "module updated: "+m.Name, m.ProjectID)

	return c.JSON(m)
}

// SetParent moves a module below a new parent.
func (s *Service) SetParent(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	var req setParentRequest

	if err := c.BodyParser(&req); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if err := module.SetParent(s.db, uint(id), req.ParentModuleID); err != nil {
		return fail(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Delete removes an empty module.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	m, err := module.Get(s.db, uint(id))
	if err != nil {
		return fail(c, err)
	}

	if err := module.Delete(s.db, uint(id)); err != nil {
		return fail(c, err)
	}

	s.audit(c, models.AuditModuleDeleted, uint64(m.ID), "module deleted: "+m.Name, m.ProjectID)

	return c.SendStatus(fiber.StatusNoContent)
}

// ListFeatures returns the features of a module.
func (s *Service) ListFeatures(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	features, err := feature.List(s.db, uint(id))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(features)
}

// CreateFeature creates a feature below a module, provisioning its full
// permission set.
func (s *Service) CreateFeature(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	var req createFeatureRequest

	if err := c.BodyParser(&req); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if err := handler.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if _, err := module.Get(s.db, uint(id)); err != nil {
		return fail(c, err)
	}

	f := models.Feature{
		Name:        req.Name,
		Description: req.Description,
		Code:        req.Code,
		ModuleID:    uint(id),
		IsActive:    true,
		ProjectID:   req.ProjectID,
		CreatedBy:   actor(c),
	}

	if err := feature.Create(s.db, &f); err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(f)
}

// UpdateFeature updates a feature below a module.
func (s *Service) UpdateFeature(c *fiber.Ctx) error {
	f, err := s.moduleFeature(c)
	if err != nil {
		return fail(c, err)
	}

	var req updateFeatureRequest

	if err := c.BodyParser(&req); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if err := handler.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	updates := map[string]interface{}{"updated_by": actor(c)}

	if req.Name != "" {
		updates["name"] = req.Name
	}

	if req.Description != "" {
		updates["description"] = req.Description
	}

	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	f, err = feature.Update(s.db, f.ID, updates)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(f)
}

// DeleteFeature removes a feature and the permissions provisioned for it.
func (s *Service) DeleteFeature(c *fiber.Ctx) error {
	f, err := s.moduleFeature(c)
	if err != nil {
		return fail(c, err)
	}

	if err := feature.Delete(s.db, f.ID); err != nil {
		return fail(c, err)
	}

	s.audit(c, models.AuditModuleUpdated, uint64(f.ModuleID), "feature deleted: "+f.Name, f.ProjectID)

	return c.SendStatus(fiber.StatusNoContent)
}

// moduleFeature resolves the :featureID path parameter and checks that the
// feature actually belongs to the :id module.
func (s *Service) moduleFeature(c *fiber.Ctx) (*models.Feature, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return nil, feature.ErrFeatureNotFound
	}

	featureID, err := c.ParamsInt("featureID")
	if err != nil {
		return nil, feature.ErrFeatureNotFound
	}

	f, err := feature.Get(s.db, uint(featureID))
	if err != nil {
		return nil, err
	}

	if f.ModuleID != uint(id) {
		return nil, feature.ErrFeatureNotFound
	}

	return f, nil
}

func (s *Service) audit(c *fiber.Ctx, action models.AuditAction, entityID uint64, details, projectID string) {
	entry := audit.Entry{
		Action:     action,
		EntityID:   &entityID,
		EntityType: "Module",
		Details:    details,
		IPAddress:  c.IP(),
		UserAgent:  c.Get(fiber.HeaderUserAgent),
		ProjectID:  projectID,
	}

	if userID, ok := auth.UserID(c); ok {
		entry.UserID = &userID
	}

	s.recorder.Record(entry)
}

// fail maps controller errors to HTTP statuses without leaking storage
// internals.
func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, module.ErrModuleNotFound), errors.Is(err, feature.ErrFeatureNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case errors.Is(err, module.ErrModuleAlreadyExists), errors.Is(err, feature.ErrFeatureAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, module.ErrCycleDetected):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, module.ErrModuleNotEmpty):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Error().Err(err).Msg("module administration failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
}

func actor(c *fiber.Ctx) string {
	if userID, ok := auth.UserID(c); ok {
		return strconv.FormatUint(userID, 10)
	}

	return ""
}
