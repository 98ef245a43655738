package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lsjscarlett/store-locator/internal/cache"
	"github.com/lsjscarlett/store-locator/internal/logger"
)

type InternalHandler struct {
	results *cache.Cache
	geocode *cache.Cache
}

func NewInternalHandler(results, geocode *cache.Cache) *InternalHandler {
	return &InternalHandler{results: results, geocode: geocode}
}

// SetupInternalRoutes mounts endpoints for storectl. The router must be
// guarded by the internal API key.
func SetupInternalRoutes(router fiber.Router, results, geocode *cache.Cache) {
	h := NewInternalHandler(results, geocode)

	router.Post("/cache/flush", h.FlushCache)
}

// FlushCacheRequest 캐시 삭제 요청
type FlushCacheRequest struct {
	Geocode bool `json:"geocode"`
}

// FlushCacheResponse 캐시 삭제 응답
type FlushCacheResponse struct {
	Message    string   `json:"message"`
	Namespaces []string `json:"namespaces"`
}

// FlushCache godoc
// @Summary Flush caches
// @Description 검색 결과 캐시 삭제 (geocode=true면 지오코딩 캐시도)
// @Tags internal
// @Accept json
// @Produce json
// @Param X-API-Key header string true "Internal API Key"
// @Param request body FlushCacheRequest false "Options"
// @Success 200 {object} FlushCacheResponse
// @Router /internal/cache/flush [post]
func (h *InternalHandler) FlushCache(c *fiber.Ctx) error {
	var req FlushCacheRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	ctx := c.UserContext()
	flushed := []string{}
	targets := []*cache.Cache{h.results}
	if req.Geocode {
		targets = append(targets, h.geocode)
	}
	for _, target := range targets {
		if target == nil {
			continue
		}
		if err := target.Purge(ctx); err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "cache backend unavailable")
		}
		flushed = append(flushed, target.Namespace())
	}

	logger.GetLogger("internal").Infof("[Internal] Flushed caches: %v", flushed)
	return c.JSON(FlushCacheResponse{Message: "Cache flushed", Namespaces: flushed})
}
