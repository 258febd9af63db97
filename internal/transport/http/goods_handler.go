package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/zhli-dev/meiduo-backend/internal/service"
	"github.com/zhli-dev/meiduo-backend/internal/util"
)

type GoodsHandler struct {
	goods *service.GoodsService
}

func RegisterGoods(e *echo.Echo, goods *service.GoodsService) {
	handler := &GoodsHandler{goods: goods}

	v1 := e.Group("/api/v1/categories/:category_id")
	v1.GET("/hotskus", handler.hotSKUs)
	v1.GET("/skus", handler.listSKUs)
}

func (h *GoodsHandler) hotSKUs(c echo.Context) error {
	categoryID, err := strconv.ParseInt(c.Param("category_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("category_id must be an integer"))
	}

	skus, err := h.goods.HotSKUs(c.Request().Context(), categoryID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load hot skus"))
	}
	return c.JSON(http.StatusOK, skus)
}

func (h *GoodsHandler) listSKUs(c echo.Context) error {
	categoryID, err := strconv.ParseInt(c.Param("category_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("category_id must be an integer"))
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	ordering := c.QueryParam("ordering")
	if ordering == "" {
		ordering = "default"
	}

	result, err := h.goods.ListSKUs(c.Request().Context(), categoryID, ordering, page, pageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load skus"))
	}
	return c.JSON(http.StatusOK, result)
}
