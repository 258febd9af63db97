package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zhli-dev/meiduo-backend/internal/domain"
	"github.com/zhli-dev/meiduo-backend/internal/service"
	"github.com/zhli-dev/meiduo-backend/internal/util"
)

type UserHandler struct {
	users *service.UserService
}

func RegisterUsers(e *echo.Echo, users *service.UserService) {
	handler := &UserHandler{users: users}

	v1 := e.Group("/api/v1")
	v1.POST("/users", handler.register)
	v1.POST("/authorizations", handler.login)
	v1.GET("/usernames/:username/count", handler.usernameCount)
	v1.GET("/mobiles/:mobile/count", handler.mobileCount)
	v1.GET("/emails/verification", handler.verifyEmail)

	protected := v1.Group("", RequireAuth(users))
	protected.GET("/user", handler.detail)
	protected.PUT("/email", handler.setEmail)
}

func (h *UserHandler) register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	result, err := h.users.Register(c.Request().Context(), service.RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		Password2: req.Password2,
		SMSCode:   req.SMSCode,
		Mobile:    req.Mobile,
		Allow:     req.Allow,
	})
	if err != nil {
		return userErrorResponse(c, err)
	}

	return c.JSON(http.StatusCreated, util.Envelope{
		"user":  toUserResponse(result.User),
		"token": result.Token,
	})
}

func (h *UserHandler) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	result, err := h.users.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, util.Error("incorrect username or password"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to log in"))
	}

	return c.JSON(http.StatusOK, util.Envelope{
		"user":  toUserResponse(result.User),
		"token": result.Token,
	})
}

func (h *UserHandler) usernameCount(c echo.Context) error {
	username := c.Param("username")
	count, err := h.users.UsernameCount(c.Request().Context(), username)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to check username"))
	}
	return c.JSON(http.StatusOK, util.Envelope{"username": username, "count": count})
}

func (h *UserHandler) mobileCount(c echo.Context) error {
	mobile := c.Param("mobile")
	count, err := h.users.MobileCount(c.Request().Context(), mobile)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to check mobile"))
	}
	return c.JSON(http.StatusOK, util.Envelope{"mobile": mobile, "count": count})
}

func (h *UserHandler) detail(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) setEmail(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	var req SetEmailRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	if err := h.users.SetEmail(c.Request().Context(), user.ID, req.Email); err != nil {
		if errors.Is(err, service.ErrInvalidEmail) {
			return c.JSON(http.StatusBadRequest, util.Error("invalid email address"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to update email"))
	}
	return c.JSON(http.StatusOK, util.Envelope{"email": req.Email})
}

func (h *UserHandler) verifyEmail(c echo.Context) error {
	tokenString := c.QueryParam("token")
	if tokenString == "" {
		return c.JSON(http.StatusBadRequest, util.Error("token is required"))
	}

	if err := h.users.VerifyEmail(c.Request().Context(), tokenString); err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			return c.JSON(http.StatusBadRequest, util.Error("invalid or expired token"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to verify email"))
	}
	return c.JSON(http.StatusOK, util.OK())
}

func userErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidUsername):
		return c.JSON(http.StatusBadRequest, util.Error("username must be 5-20 word characters"))
	case errors.Is(err, util.ErrPasswordPolicy):
		return c.JSON(http.StatusBadRequest, util.Error(util.ErrPasswordPolicy.Error()))
	case errors.Is(err, service.ErrPasswordMismatch):
		return c.JSON(http.StatusBadRequest, util.Error("passwords do not match"))
	case errors.Is(err, service.ErrAgreementRequired):
		return c.JSON(http.StatusBadRequest, util.Error("user agreement must be accepted"))
	case errors.Is(err, service.ErrInvalidMobile):
		return c.JSON(http.StatusBadRequest, util.Error("invalid mobile number"))
	case errors.Is(err, service.ErrSMSCodeExpired):
		return c.JSON(http.StatusBadRequest, util.Error("sms code expired"))
	case errors.Is(err, service.ErrSMSCodeMismatch):
		return c.JSON(http.StatusBadRequest, util.Error("incorrect sms code"))
	case errors.Is(err, service.ErrUsernameTaken):
		return c.JSON(http.StatusConflict, util.Error("username already registered"))
	case errors.Is(err, service.ErrMobileTaken):
		return c.JSON(http.StatusConflict, util.Error("mobile already registered"))
	default:
		return c.JSON(http.StatusInternalServerError, util.Error("unable to register"))
	}
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		Mobile:      user.Mobile,
		Email:       user.Email,
		EmailActive: user.EmailActive,
	}
}
