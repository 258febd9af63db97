package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/zhli-dev/meiduo-backend/internal/service"
	"github.com/zhli-dev/meiduo-backend/internal/util"
)

type VerificationHandler struct {
	verification *service.VerificationService
}

func RegisterVerification(e *echo.Echo, verification *service.VerificationService) {
	handler := &VerificationHandler{verification: verification}

	v1 := e.Group("/api/v1")
	v1.GET("/image_codes/:image_code_id", handler.imageCode)
	v1.GET("/sms_codes/:mobile", handler.sendSMSCode)
	v1.GET("/sms_codes", handler.sendSMSCodeByToken)
	v1.GET("/accounts/:account/sms/token", handler.issueSMSToken)
	v1.GET("/accounts/:account/password/token", handler.verifySMSCode)
	v1.POST("/users/:user_id/password", handler.resetPassword)
}

func (h *VerificationHandler) imageCode(c echo.Context) error {
	// The storefront generates challenge ids as UUIDs.
	imageCodeID, err := uuid.Parse(c.Param("image_code_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("image_code_id must be a valid UUID"))
	}

	image, err := h.verification.GenerateImageCode(c.Request().Context(), imageCodeID.String())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to generate image code"))
	}
	return c.Blob(http.StatusOK, "image/png", image)
}

func (h *VerificationHandler) sendSMSCode(c echo.Context) error {
	mobile := c.Param("mobile")
	imageCodeID := c.QueryParam("image_code_id")
	text := c.QueryParam("text")
	if imageCodeID == "" || text == "" {
		return c.JSON(http.StatusBadRequest, util.Error("image_code_id and text are required"))
	}

	if err := h.verification.SendSMSCode(c.Request().Context(), mobile, imageCodeID, text); err != nil {
		return verificationErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, util.OK())
}

func (h *VerificationHandler) sendSMSCodeByToken(c echo.Context) error {
	accessToken := c.QueryParam("access_token")
	if accessToken == "" {
		return c.JSON(http.StatusBadRequest, util.Error("access_token is required"))
	}

	if err := h.verification.SendSMSCodeByToken(c.Request().Context(), accessToken); err != nil {
		return verificationErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, util.OK())
}

func (h *VerificationHandler) issueSMSToken(c echo.Context) error {
	imageCodeID := c.QueryParam("image_code_id")
	text := c.QueryParam("text")
	if imageCodeID == "" || text == "" {
		return c.JSON(http.StatusBadRequest, util.Error("image_code_id and text are required"))
	}

	result, err := h.verification.IssueSMSToken(c.Request().Context(), c.Param("account"), imageCodeID, text)
	if err != nil {
		return verificationErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *VerificationHandler) verifySMSCode(c echo.Context) error {
	smsCode := c.QueryParam("sms_code")
	if smsCode == "" {
		return c.JSON(http.StatusBadRequest, util.Error("sms_code is required"))
	}

	result, err := h.verification.VerifySMSCode(c.Request().Context(), c.Param("account"), smsCode)
	if err != nil {
		return verificationErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *VerificationHandler) resetPassword(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("user_id must be an integer"))
	}

	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	if err := h.verification.ResetPassword(c.Request().Context(), userID, req.Password, req.Password2, req.AccessToken); err != nil {
		return verificationErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, util.OK())
}

func verificationErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrImageCodeInvalid):
		return c.JSON(http.StatusBadRequest, util.Error("image code expired or already used"))
	case errors.Is(err, service.ErrImageCodeMismatch):
		return c.JSON(http.StatusBadRequest, util.Error("incorrect image code"))
	case errors.Is(err, service.ErrInvalidMobile):
		return c.JSON(http.StatusBadRequest, util.Error("invalid mobile number"))
	case errors.Is(err, service.ErrSendTooFrequent):
		return c.JSON(http.StatusTooManyRequests, util.Error("sms code requested too frequently"))
	case errors.Is(err, service.ErrSMSCodeExpired):
		return c.JSON(http.StatusBadRequest, util.Error("sms code expired"))
	case errors.Is(err, service.ErrSMSCodeMismatch):
		return c.JSON(http.StatusBadRequest, util.Error("incorrect sms code"))
	case errors.Is(err, service.ErrInvalidToken):
		return c.JSON(http.StatusBadRequest, util.Error("invalid or expired access token"))
	case errors.Is(err, service.ErrAccountNotFound):
		return c.JSON(http.StatusNotFound, util.Error("account not found"))
	case errors.Is(err, service.ErrPasswordMismatch):
		return c.JSON(http.StatusBadRequest, util.Error("passwords do not match"))
	case errors.Is(err, util.ErrPasswordPolicy):
		return c.JSON(http.StatusBadRequest, util.Error(util.ErrPasswordPolicy.Error()))
	default:
		return c.JSON(http.StatusInternalServerError, util.Error("verification service unavailable"))
	}
}
