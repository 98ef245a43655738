package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/lsjscarlett/store-locator/internal/middleware"
	"github.com/lsjscarlett/store-locator/internal/services"
)

type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// SetupUserRoutes mounts user administration. The router is expected to be
// guarded to admins already.
func SetupUserRoutes(router fiber.Router, service *services.UserService) {
	h := NewUserHandler(service)

	router.Get("/", h.List)
	router.Post("/", h.Create)
	router.Put("/:id", h.Update)
}

// List godoc
// @Summary List users
// @Tags admin-users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} services.UserResponse
// @Router /admin/users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// Create godoc
// @Summary Create a user
// @Description role_id가 없으면 viewer
// @Tags admin-users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CreateUserRequest true "User"
// @Success 201 {object} services.UserResponse
// @Failure 400 {object} ErrorResponse
// @Router /admin/users [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req services.CreateUserRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	user, err := h.service.Create(c.UserContext(), req)
	if err != nil {
		return userError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(services.NewUserResponse(user))
}

// Update godoc
// @Summary Update a user's role or active flag
// @Tags admin-users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body services.UpdateUserRequest true "Update data"
// @Success 200 {object} services.UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/users/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid user ID")
	}

	var req services.UpdateUserRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	user, err := h.service.Update(c.UserContext(), middleware.CurrentUserID(c), uint(id), req)
	if err != nil {
		return userError(c, err)
	}
	return c.JSON(services.NewUserResponse(user))
}

func userError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		return errorJSON(c, fiber.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrEmailTaken):
		return errorJSON(c, fiber.StatusBadRequest, "Email already registered")
	case errors.Is(err, services.ErrRoleNotFound):
		return errorJSON(c, fiber.StatusBadRequest, "Role not found")
	case errors.Is(err, services.ErrSelfDeactivation):
		return errorJSON(c, fiber.StatusBadRequest, "Cannot deactivate your own account")
	}
	return err
}
