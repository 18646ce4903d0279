package server

import (
	"fmt"
	"strconv"
	"time"

	"lumen/internal/cache"
	"lumen/internal/middleware"
	"lumen/internal/models"
	"lumen/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Signup handles POST /api/auth/signup. It registers an auth account,
// provisions the matching profile, and returns a token for the new session.
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidArgumentError("Invalid request body"))
	}

	session, err := s.identityService.Signup(c.UserContext(), service.SignupInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.generateToken(session.AccountID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewBackendFailure(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  session.User,
	})
}

// Login handles POST /api/auth/login.
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidArgumentError("Invalid request body"))
	}

	account, err := s.identityService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	session, err := s.identityService.CurrentUser(c.UserContext(), account.ID)
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.generateToken(account.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewBackendFailure(err))
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  session.User,
	})
}

// Logout handles POST /api/auth/logout. The presented token's jti is
// blacklisted until the token would have expired anyway.
func (s *Server) Logout(c *fiber.Ctx) error {
	jti, _ := c.Locals("jti").(string)
	expiry, _ := c.Locals("tokenExpiry").(time.Time)

	if jti != "" && !expiry.IsZero() {
		if err := cache.RevokeToken(c.UserContext(), jti, expiry); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "token revocation failed",
				"error", err)
		}
	}

	return c.JSON(fiber.Map{"status": "ok"})
}

// generateToken creates a JWT whose subject is the auth account id, never a
// profile user id.
func (s *Server) generateToken(accountID uint) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(accountID), 10),
		"iss": "lumen-api",
		"aud": "lumen-client",
		"exp": now.Add(time.Hour * 24 * 7).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}
