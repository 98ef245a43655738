package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/lsjscarlett/store-locator/internal/services"
	"github.com/lsjscarlett/store-locator/internal/telemetry"
)

type SearchHandler struct {
	service *services.SearchService
}

func NewSearchHandler(service *services.SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

// SetupSearchRoutes mounts the public search endpoint. Extra handlers (a rate
// limiter) run before the search.
func SetupSearchRoutes(router fiber.Router, service *services.SearchService, guards ...fiber.Handler) {
	h := NewSearchHandler(service)

	handlers := make([]fiber.Handler, 0, len(guards)+1)
	handlers = append(handlers, guards...)
	handlers = append(handlers, h.Search)
	router.Post("/search", handlers...)
}

// Search godoc
// @Summary Search stores
// @Description 주소/우편번호 기준 반경 검색. 주소가 없거나 지오코딩에 실패하면 전국 검색
// @Tags stores
// @Accept json
// @Produce json
// @Param request body services.SearchRequest true "Search request"
// @Success 200 {object} services.SearchResponse
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 503 {object} services.SearchResponse
// @Router /stores/search [post]
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	req := services.NewSearchRequest()
	if ok, err := bind(c, &req); !ok {
		return err
	}

	resp, err := h.service.Search(c.UserContext(), req)
	if errors.Is(err, services.ErrSearchUnavailable) {
		if span := telemetry.SpanFromContext(c); span != nil {
			span.RecordError(err)
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
