package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/lsjscarlett/store-locator/internal/middleware"
	"github.com/lsjscarlett/store-locator/internal/services"
)

type AuthHandler struct {
	service     *services.AuthService
	userService *services.UserService
}

func NewAuthHandler(service *services.AuthService, userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		service:     service,
		userService: userService,
	}
}

func SetupAuthRoutes(router fiber.Router, service *services.AuthService, userService *services.UserService, authRequired fiber.Handler) {
	h := NewAuthHandler(service, userService)

	router.Post("/login", h.Login)
	router.Post("/refresh", h.RefreshToken)
	router.Post("/logout", h.Logout)
	router.Get("/me", authRequired, h.GetMe)
}

// Login godoc
// @Summary User login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.LoginRequest true "Login credentials"
// @Success 200 {object} services.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req services.LoginRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	response, err := h.service.Login(c.UserContext(), req)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return errorJSON(c, fiber.StatusBadRequest, "Incorrect email or password")
	case errors.Is(err, services.ErrInactiveUser):
		return errorJSON(c, fiber.StatusBadRequest, "Inactive user")
	case err != nil:
		return err
	}

	return c.JSON(response)
}

// RefreshToken godoc
// @Summary Refresh access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} services.AuthResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req services.RefreshTokenRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	response, err := h.service.Refresh(c.UserContext(), req.RefreshToken)
	if errors.Is(err, services.ErrInvalidToken) || errors.Is(err, services.ErrInactiveUser) {
		return errorJSON(c, fiber.StatusUnauthorized, "Invalid refresh token")
	}
	if err != nil {
		return err
	}

	return c.JSON(response)
}

// Logout godoc
// @Summary Revoke a refresh token
// @Tags auth
// @Accept json
// @Param request body services.RefreshTokenRequest true "Refresh token"
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req services.RefreshTokenRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	if err := h.service.Logout(c.UserContext(), req.RefreshToken); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetMe godoc
// @Summary Get current user info
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.UserResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) GetMe(c *fiber.Ctx) error {
	user, err := h.userService.GetByID(c.UserContext(), middleware.CurrentUserID(c))
	if errors.Is(err, services.ErrUserNotFound) {
		return errorJSON(c, fiber.StatusUnauthorized, "User not found")
	}
	if err != nil {
		return err
	}

	return c.JSON(services.NewUserResponse(user))
}
