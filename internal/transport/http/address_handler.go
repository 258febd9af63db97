package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/zhli-dev/meiduo-backend/internal/domain"
	"github.com/zhli-dev/meiduo-backend/internal/service"
	"github.com/zhli-dev/meiduo-backend/internal/util"
)

type AddressHandler struct {
	addresses *service.AddressService
}

func RegisterAddresses(e *echo.Echo, users *service.UserService, addresses *service.AddressService) {
	handler := &AddressHandler{addresses: addresses}

	protected := e.Group("/api/v1/addresses", RequireAuth(users))
	protected.POST("", handler.create)
	protected.GET("", handler.list)
	protected.PUT("/:address_id", handler.update)
	protected.DELETE("/:address_id", handler.remove)
	protected.PUT("/:address_id/status", handler.setDefault)
	protected.PUT("/:address_id/title", handler.updateTitle)
}

func (h *AddressHandler) create(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	var req AddressRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	created, err := h.addresses.Create(c.Request().Context(), user.ID, addressFromRequest(req))
	if err != nil {
		return addressErrorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *AddressHandler) list(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	addrs, defaultID, err := h.addresses.List(c.Request().Context(), user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load addresses"))
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"addresses":          addrs,
		"default_address_id": defaultID,
		"limit":              20,
	})
}

func (h *AddressHandler) update(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	addressID, err := strconv.ParseInt(c.Param("address_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("address_id must be an integer"))
	}

	var req AddressRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	addr := addressFromRequest(req)
	addr.ID = addressID
	updated, err := h.addresses.Update(c.Request().Context(), user.ID, addr)
	if err != nil {
		return addressErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *AddressHandler) remove(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	addressID, err := strconv.ParseInt(c.Param("address_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("address_id must be an integer"))
	}

	if err := h.addresses.Delete(c.Request().Context(), user.ID, addressID); err != nil {
		return addressErrorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AddressHandler) setDefault(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	addressID, err := strconv.ParseInt(c.Param("address_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("address_id must be an integer"))
	}

	if err := h.addresses.SetDefault(c.Request().Context(), user.ID, addressID); err != nil {
		return addressErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, util.OK())
}

func (h *AddressHandler) updateTitle(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	addressID, err := strconv.ParseInt(c.Param("address_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("address_id must be an integer"))
	}

	var req AddressTitleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	if err := h.addresses.UpdateTitle(c.Request().Context(), user.ID, addressID, req.Title); err != nil {
		return addressErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"title": req.Title})
}

func addressErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidMobile):
		return c.JSON(http.StatusBadRequest, util.Error("invalid mobile number"))
	case errors.Is(err, service.ErrAddressLimit):
		return c.JSON(http.StatusBadRequest, util.Error("address book is full"))
	case errors.Is(err, service.ErrAddressNotFound):
		return c.JSON(http.StatusNotFound, util.Error("address not found"))
	default:
		return c.JSON(http.StatusInternalServerError, util.Error("unable to update addresses"))
	}
}

func addressFromRequest(req AddressRequest) *domain.Address {
	return &domain.Address{
		Title:      req.Title,
		Receiver:   req.Receiver,
		ProvinceID: req.ProvinceID,
		CityID:     req.CityID,
		DistrictID: req.DistrictID,
		Place:      req.Place,
		Mobile:     req.Mobile,
		Tel:        req.Tel,
		Email:      req.Email,
	}
}
