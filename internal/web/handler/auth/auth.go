// Package auth implements the authentication endpoints: login, register,
// refresh, revoke and change-password. It shapes requests and responses only;
// every decision is made by the orchestrator behind it.
package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/auth"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/config"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/web/handler"
)

const (
	// Path is the base path of the authentication endpoints.
	Path = "/auth"
)

// Service is the authentication handler service.
type Service struct {
	cfg          *config.Config
	orchestrator *auth.Orchestrator
	authority    *auth.Authority
}

// Handler is the authentication handler.
var Handler = Service{}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password"   validate:"required"`
}

type registerRequest struct {
	Username    string `json:"username"     validate:"required,min=3,max=100"`
	Email       string `json:"email"        validate:"required,email"`
	Password    string `json:"password"     validate:"required"`
	FirstName   string `json:"first_name"   validate:"max=100"`
	LastName    string `json:"last_name"    validate:"max=100"`
	PhoneNumber string `json:"phone_number" validate:"max=50"`
	ProjectID   string `json:"project_id"   validate:"max=100"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required"`
}

type tokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Init initializes the authentication handler and registers its routes.
func (s *Service) Init(
	app *fiber.App,
	cfg *config.Config,
	orchestrator *auth.Orchestrator,
	authority *auth.Authority,
	limiter fiber.Handler,
) error {
	if app == nil || cfg == nil || orchestrator == nil || authority == nil {
		return errors.New("app, cfg or orchestrator is nil")
	}

	s.cfg = cfg
	s.orchestrator = orchestrator
	s.authority = authority

	app.Route(Path, func(router fiber.Router) {
		router.Post("/login", limiter, s.Login)
		router.Post("/register", limiter, s.Register)
		router.Post("/refresh", limiter, s.Refresh)
		router.Post("/revoke", limiter, s.Revoke)
		router.Post("/revoke-all", auth.RequireAuth(authority), s.RevokeAll)
		router.Post("/change-password", auth.RequireAuth(authority), s.ChangePassword)
	})

	return nil
}

// Login handles the login request.
func (s *Service) Login(c *fiber.Ctx) error {
	var req loginRequest

	if err := parse(c, &req); err != nil {
		return err
	}

	result, err := s.orchestrator.Login(req.Identifier, req.Password, origin(c))
	if err != nil {
		return mapError(c, err)
	}

	return c.JSON(fiber.Map{
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
		"expires_at":    result.ExpiresAt,
		"user": fiber.Map{
			"id":       result.User.ID,
			"username": result.User.Username,
			"email":    result.User.Email,
		},
	})
}

// Register handles the registration request.
func (s *Service) Register(c *fiber.Ctx) error {
	var req registerRequest

	if err := parse(c, &req); err != nil {
		return err
	}

	user, err := s.orchestrator.Register(auth.RegisterRequest{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		ProjectID:   req.ProjectID,
	}, origin(c))
	if err != nil {
		return mapError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

// Refresh exchanges a refresh token for a new token pair.
func (s *Service) Refresh(c *fiber.Ctx) error {
	var req refreshRequest

	if err := parse(c, &req); err != nil {
		return err
	}

	pair, err := s.orchestrator.Refresh(req.RefreshToken, origin(c))
	if err != nil {
		return mapError(c, err)
	}

	return c.JSON(tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
	})
}

// Revoke revokes a single refresh token.
func (s *Service) Revoke(c *fiber.Ctx) error {
	var req refreshRequest

	if err := parse(c, &req); err != nil {
		return err
	}

	if err := s.orchestrator.RevokeToken(req.RefreshToken, origin(c)); err != nil {
		return mapError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// RevokeAll revokes every refresh token of the authenticated user.
func (s *Service) RevokeAll(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if err := s.orchestrator.RevokeAllTokens(userID, origin(c)); err != nil {
		return mapError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ChangePassword changes the authenticated user's password.
func (s *Service) ChangePassword(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req changePasswordRequest

	if err := parse(c, &req); err != nil {
		return err
	}

	err := s.orchestrator.ChangePassword(userID, req.CurrentPassword, req.NewPassword, origin(c))
	if err != nil {
		return mapError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func parse(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := handler.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return nil
}

func origin(c *fiber.Ctx) auth.Origin {
	return auth.Origin{
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
}

// mapError translates orchestrator outcomes to HTTP without leaking internal
// detail. Anything unclassified becomes a plain 500.
func mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	case errors.Is(err, auth.ErrAccountNotActive):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "account is not active"})
	case errors.Is(err, auth.ErrAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "user already exists"})
	case errors.Is(err, auth.ErrPasswordPolicy), errors.Is(err, auth.ErrSamePassword):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, auth.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	default:
		log.Error().Err(err).Msg("authentication operation failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
}
