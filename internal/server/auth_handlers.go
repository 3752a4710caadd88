package server

import (
	"time"

	"stackit/internal/cache"
	"stackit/internal/middleware"
	"stackit/internal/models"
	"stackit/internal/service"

	"github.com/gofiber/fiber/v2"
)

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register handles POST /api/auth/register
// @Summary Register
// @Description Create a user account (role user) and return a token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,email=string,password=string} true "Registration"
// @Success 201 {object} authResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.Status(fiber.StatusCreated).JSON(authResponse{Token: token, User: user})
}

// Login handles POST /api/auth/login
// @Summary Login
// @Description Authenticate with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Credentials"
// @Success 200 {object} authResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.JSON(authResponse{Token: token, User: user})
}

// Logout handles POST /api/auth/logout
// @Summary Logout
// @Description Revoke the current token until it expires
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string}
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, ok := c.Locals(claimsLocal).(*tokenClaims)
	if !ok || claims.ID == "" {
		return c.JSON(fiber.Map{"message": "Logged out"})
	}

	if s.redis == nil {
		middleware.Logger.WarnContext(c.UserContext(), "token revocation unavailable without redis")
		return c.JSON(fiber.Map{"message": "Logged out"})
	}

	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if remaining := time.Until(claims.ExpiresAt.Time); remaining > 0 {
			ttl = remaining
		}
	}
	if err := s.redis.Set(c.UserContext(), cache.RevokedTokenKey(claims.ID), "1", ttl).Err(); err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// Me handles GET /api/auth/me
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/me [get]
func (s *Server) Me(c *fiber.Ctx) error {
	user, err := s.userService.GetProfile(c.UserContext(), middleware.ActorFromCtx(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
