package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/lsjscarlett/store-locator/internal/services"
	"github.com/lsjscarlett/store-locator/internal/storecsv"
)

type StoreHandler struct {
	stores  *services.StoreService
	imports *services.ImportService
}

func NewStoreHandler(stores *services.StoreService, imports *services.ImportService) *StoreHandler {
	return &StoreHandler{stores: stores, imports: imports}
}

// SetupStoreRoutes mounts admin store management. Reads need any
// authenticated user; writes go through the writers guard.
func SetupStoreRoutes(router fiber.Router, stores *services.StoreService, imports *services.ImportService, writers fiber.Handler) {
	h := NewStoreHandler(stores, imports)

	router.Get("/", h.List)
	router.Post("/", writers, h.Create)
	router.Post("/import", writers, h.Import)
	router.Get("/:id", h.Get)
	router.Patch("/:id", writers, h.Update)
	router.Delete("/:id", writers, h.Deactivate)
}

// List godoc
// @Summary List stores
// @Tags admin-stores
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Param status query string false "active | inactive"
// @Param store_type query string false "Store type"
// @Success 200 {object} services.StoreListResponse
// @Router /admin/stores [get]
func (h *StoreHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if page < 1 || limit < 1 || limit > 100 {
		return errorJSON(c, fiber.StatusBadRequest, "page must be >= 1 and limit between 1 and 100")
	}

	resp, err := h.stores.List(c.UserContext(), services.StoreFilter{
		Page:      page,
		Limit:     limit,
		Status:    c.Query("status"),
		StoreType: c.Query("store_type"),
	})
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Get godoc
// @Summary Get a store
// @Tags admin-stores
// @Produce json
// @Security BearerAuth
// @Param id path string true "Store ID"
// @Success 200 {object} services.StoreView
// @Failure 404 {object} ErrorResponse
// @Router /admin/stores/{id} [get]
func (h *StoreHandler) Get(c *fiber.Ctx) error {
	store, err := h.stores.Get(c.UserContext(), c.Params("id"))
	if errors.Is(err, services.ErrStoreNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "Store not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(services.NewStoreView(*store))
}

// Create godoc
// @Summary Create a store
// @Description 좌표가 없으면 우편번호로 지오코딩 (실패 시 0,0)
// @Tags admin-stores
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.StoreInput true "Store"
// @Success 201 {object} services.StoreView
// @Failure 400 {object} ErrorResponse
// @Router /admin/stores [post]
func (h *StoreHandler) Create(c *fiber.Ctx) error {
	var in services.StoreInput
	if ok, err := bind(c, &in); !ok {
		return err
	}

	store, err := h.stores.Create(c.UserContext(), in)
	if errors.Is(err, services.ErrStoreExists) {
		return errorJSON(c, fiber.StatusBadRequest, "Store ID already exists")
	}
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(services.NewStoreView(*store))
}

// Update godoc
// @Summary Update a store
// @Tags admin-stores
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Store ID"
// @Param request body services.StorePatch true "Fields to change"
// @Success 200 {object} services.StoreView
// @Failure 404 {object} ErrorResponse
// @Router /admin/stores/{id} [patch]
func (h *StoreHandler) Update(c *fiber.Ctx) error {
	var patch services.StorePatch
	if ok, err := bind(c, &patch); !ok {
		return err
	}

	store, err := h.stores.Update(c.UserContext(), c.Params("id"), patch)
	if errors.Is(err, services.ErrStoreNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "Store not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(services.NewStoreView(*store))
}

// Deactivate godoc
// @Summary Deactivate a store
// @Description soft delete (status=inactive). 없는 ID도 204
// @Tags admin-stores
// @Security BearerAuth
// @Param id path string true "Store ID"
// @Success 204
// @Router /admin/stores/{id} [delete]
func (h *StoreHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.stores.Deactivate(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ImportResponse is the result of a CSV import.
type ImportResponse struct {
	Message string                `json:"message"`
	Stats   *services.ImportStats `json:"stats"`
}

// Import godoc
// @Summary Import stores from CSV
// @Tags admin-stores
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "CSV file"
// @Success 200 {object} ImportResponse
// @Failure 400 {object} ErrorResponse
// @Router /admin/stores/import [post]
func (h *StoreHandler) Import(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "CSV file is required in field \"file\"")
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		return errorJSON(c, fiber.StatusBadRequest, "File must be a CSV")
	}

	f, err := header.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	stats, err := h.imports.Import(c.UserContext(), f)
	if errors.Is(err, storecsv.ErrInvalidFile) {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	if err != nil {
		return err
	}
	return c.JSON(ImportResponse{Message: "Import completed", Stats: stats})
}
