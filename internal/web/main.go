package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/audit"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/auth"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/config"
	fiberlogger "github.com/GoIdentity-Admin/GoIdentity-Admin/internal/logger/adapter/fiber"
	auditadmin "github.com/GoIdentity-Admin/GoIdentity-Admin/internal/web/handler/admin/audit"
	moduleadmin "github.com/GoIdentity-Admin/GoIdentity-Admin/internal/web/handler/admin/module"
	roleadmin "github.com/GoIdentity-Admin/GoIdentity-Admin/internal/web/handler/admin/role"
	useradmin "github.com/GoIdentity-Admin/GoIdentity-Admin/internal/web/handler/admin/user"
	authhandler "github.com/GoIdentity-Admin/GoIdentity-Admin/internal/web/handler/auth"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/web/middleware/ratelimit"
)

const checkAlivePath = "/checkalive"

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	authService  *auth.Service
	recorder     *audit.Recorder
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the web service.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		// flush buffered audit entries
		s.recorder.Close()

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration and wired
// authentication components.
func New(
	cfg *config.Config,
	db *gorm.DB,
	authority *auth.Authority,
	orchestrator *auth.Orchestrator,
	recorder *audit.Recorder,
) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	// create fiber app
	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
		},
	)

	// access logging middleware
	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: checkAlivePath,
	}))

	authService := auth.NewService(db)

	service := &Service{
		cfg:         cfg,
		App:         app,
		db:          db,
		authService: authService,
		recorder:    recorder,
	}
	service.alive.Store(true)

	limiter := ratelimit.New(cfg.Security.LoginRatePerMinute, cfg.Security.LoginRateBurst)

	// init handlers (they register their own routes with permission checks)
	if err := authhandler.Handler.Init(app, cfg, orchestrator, authority, ratelimit.Middleware(limiter)); err != nil {
		log.Fatal().Err(err).Msg("auth handler init failed")
	}

	if err := moduleadmin.Handler.Init(app, cfg, db, authority, authService, recorder); err != nil {
		log.Fatal().Err(err).Msg("module handler init failed")
	}

	if err := roleadmin.Handler.Init(app, cfg, db, authority, authService, recorder); err != nil {
		log.Fatal().Err(err).Msg("role handler init failed")
	}

	if err := useradmin.Handler.Init(app, cfg, db, authority, authService, recorder); err != nil {
		log.Fatal().Err(err).Msg("user handler init failed")
	}

	if err := auditadmin.Handler.Init(app, cfg, db, authority, authService); err != nil {
		log.Fatal().Err(err).Msg("audit handler init failed")
	}

	// liveness endpoint for load balancers
	app.Get(checkAlivePath, func(c *fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("OK")
	})

	// prometheus metrics endpoint
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return service
}
