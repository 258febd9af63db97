package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/zhli-dev/meiduo-backend/internal/service"
	"github.com/zhli-dev/meiduo-backend/internal/util"
)

type AreaHandler struct {
	areas *service.AreaService
}

func RegisterAreas(e *echo.Echo, areas *service.AreaService) {
	handler := &AreaHandler{areas: areas}

	v1 := e.Group("/api/v1/areas")
	v1.GET("", handler.provinces)
	v1.GET("/:area_id", handler.areaWithSubs)
}

func (h *AreaHandler) provinces(c echo.Context) error {
	provinces, err := h.areas.Provinces(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load provinces"))
	}
	return c.JSON(http.StatusOK, provinces)
}

func (h *AreaHandler) areaWithSubs(c echo.Context) error {
	areaID, err := strconv.ParseInt(c.Param("area_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("area_id must be an integer"))
	}

	area, err := h.areas.AreaWithSubs(c.Request().Context(), areaID)
	if err != nil {
		if errors.Is(err, service.ErrAreaNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("area not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load area"))
	}
	return c.JSON(http.StatusOK, area)
}
