package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zhli-dev/meiduo-backend/internal/oauth"
	"github.com/zhli-dev/meiduo-backend/internal/service"
	"github.com/zhli-dev/meiduo-backend/internal/util"
)

type OAuthHandler struct {
	qq *service.OAuthQQService
}

func RegisterOAuthQQ(e *echo.Echo, qq *service.OAuthQQService) {
	handler := &OAuthHandler{qq: qq}

	v1 := e.Group("/api/v1/oauth/qq")
	v1.GET("/authorization", handler.authorizationURL)
	v1.GET("/user", handler.login)
	v1.POST("/user", handler.bind)
}

func (h *OAuthHandler) authorizationURL(c echo.Context) error {
	state := c.QueryParam("next")
	return c.JSON(http.StatusOK, util.Envelope{"login_url": h.qq.AuthorizationURL(state)})
}

// login finishes the QQ Connect callback. A bound openid yields a session
// token; an unknown one yields a bind token the client must present on the
// follow-up POST.
func (h *OAuthHandler) login(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, util.Error("code is required"))
	}

	result, err := h.qq.LoginWithCode(c.Request().Context(), code)
	if err != nil {
		if errors.Is(err, oauth.ErrUpstream) {
			return c.JSON(http.StatusServiceUnavailable, util.Error("qq connect unavailable"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to log in with qq"))
	}

	if !result.Bound {
		return c.JSON(http.StatusOK, util.Envelope{"access_token": result.AccessToken})
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"user":  toUserResponse(result.User),
		"token": result.Token,
	})
}

func (h *OAuthHandler) bind(c echo.Context) error {
	var req QQBindRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	result, err := h.qq.Bind(c.Request().Context(), service.BindInput{
		AccessToken: req.AccessToken,
		Mobile:      req.Mobile,
		Password:    req.Password,
		SMSCode:     req.SMSCode,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken):
			return c.JSON(http.StatusBadRequest, util.Error("invalid or expired access token"))
		case errors.Is(err, service.ErrInvalidMobile):
			return c.JSON(http.StatusBadRequest, util.Error("invalid mobile number"))
		case errors.Is(err, util.ErrPasswordPolicy):
			return c.JSON(http.StatusBadRequest, util.Error(util.ErrPasswordPolicy.Error()))
		case errors.Is(err, service.ErrSMSCodeExpired):
			return c.JSON(http.StatusBadRequest, util.Error("sms code expired"))
		case errors.Is(err, service.ErrSMSCodeMismatch):
			return c.JSON(http.StatusBadRequest, util.Error("incorrect sms code"))
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.JSON(http.StatusBadRequest, util.Error("incorrect password for existing account"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("unable to bind qq account"))
		}
	}

	return c.JSON(http.StatusCreated, util.Envelope{
		"user":  toUserResponse(result.User),
		"token": result.Token,
	})
}
