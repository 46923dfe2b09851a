package daemon

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/auth"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/config"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/db/controller/feature"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/db/controller/module"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/db/controller/role"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/db/controller/user"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/db/models"
)

const seededBy = "system"

// seed provisions the built-in administration module, the Administrator role
// with every permission on it, and the initial admin account. It only runs
// against an empty user table.
func seed(_ *config.Config, db *gorm.DB) {
	var count int64

	db.Model(&models.User{}).Count(&count)

	if count != 0 {
		return
	}

	adminModule := models.Module{
		Name:        "Administration",
		Description: "Built-in administration resources",
		Code:        "ADMIN",
		CreatedBy:   seededBy,
	}

	if err := module.Create(db, &adminModule); err != nil {
		log.Fatal().Err(err).Msg("seeding administration module failed")
	}

	adminRole := models.Role{
		Name:        "Administrator",
		Description: "Full access to every administration feature",
		Priority:    100,
		IsSystem:    true,
		CreatedBy:   seededBy,
	}

	if err := role.Create(db, &adminRole); err != nil {
		log.Fatal().Err(err).Msg("seeding administrator role failed")
	}

	features := []struct {
		name string
		code string
	}{
		{"Modules", auth.FeatureModules},
		{"Roles", auth.FeatureRoles},
		{"Users", auth.FeatureUsers},
		{"Audit Logs", auth.FeatureAuditLogs},
	}

	for _, f := range features {
		adminFeature := models.Feature{
			Name:      f.name,
			Code:      f.code,
			ModuleID:  adminModule.ID,
			CreatedBy: seededBy,
		}

		if err := feature.Create(db, &adminFeature); err != nil {
			log.Fatal().Err(err).Str("feature", f.code).Msg("seeding feature failed")
		}

		permissions, err := feature.Permissions(db, adminFeature.ID)
		if err != nil {
			log.Fatal().Err(err).Str("feature", f.code).Msg("reading feature permissions failed")
		}

		for _, p := range permissions {
			if err := role.GrantPermission(db, adminRole.ID, p.ID, seededBy); err != nil {
				log.Fatal().Err(err).Str("feature", f.code).Msg("granting permission failed")
			}
		}
	}

	adminUser := models.User{
		Username: "admin",
		Email:    "admin@localhost",
		Password: models.HashPassword("changeme"),
		Status:   models.UserStatusActive,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		log.Fatal().Err(err).Msg("seeding admin user failed")
	}

	if err := user.AssignRole(db, adminUser.ID, adminRole.ID, seededBy); err != nil {
		log.Fatal().Err(err).Msg("assigning administrator role failed")
	}

	log.Warn().Msg("seeded default admin account, change its password immediately")
}
