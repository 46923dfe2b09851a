package daemon

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/audit"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/auth"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/config"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/db/dsn"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/db/models"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/web"
)

// sweepInterval is how often expired refresh tokens are removed from storage.
const sweepInterval = time.Hour

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
	ledger     *auth.Ledger
}

// Start starts the Daemon's web service and the token sweeper.
func (d *Daemon) Start() error {
	go d.sweep()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// WaitShutdown blocks until the web service has shut down gracefully.
func (d *Daemon) WaitShutdown() {
	d.webService.WaitShutdown()
}

// sweep periodically deletes refresh tokens that expired. Expired tokens are
// already rejected on use, this only reclaims storage.
func (d *Daemon) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		removed, err := d.ledger.SweepExpired(time.Now())
		if err != nil {
			log.Error().Err(err).Msg("refresh token sweep failed")

			continue
		}

		if removed > 0 {
			log.Info().Int64("removed", removed).Msg("swept expired refresh tokens")
		}
	}
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	dbDriver := gormmysql.Open(dsn.Create(cfg)) // open db with gorm mysql driver

	db, err := gorm.Open(dbDriver, &gorm.Config{TranslateError: true})
	if err != nil {
		panic("failed to connect database")
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Module{},
		&models.Feature{},
		&models.Permission{},
		&models.RolePermission{},
		&models.UserRole{},
		&models.RefreshToken{},
		&models.AuditLog{},
	); err != nil {
		panic("failed to migrate database")
	}

	seed(cfg, db)

	authority := auth.NewAuthority(cfg.JWT)
	ledger := auth.NewLedger(db, time.Duration(cfg.JWT.RefreshTokenDays)*24*time.Hour)
	recorder := audit.NewRecorder(db, audit.DefaultBuffer)
	orchestrator := auth.NewOrchestrator(db, authority, ledger, recorder, cfg.Security)

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db, authority, orchestrator, recorder),
		ledger:     ledger,
	}
}
