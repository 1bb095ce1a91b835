package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/damacus/iron-drive/internal/logging"
	"github.com/damacus/iron-drive/internal/services"
	"github.com/damacus/iron-drive/internal/utils"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	authService *services.AuthService
	otp         *services.OTPService
	registry    *Registry
}

func NewAuthHandler(authService *services.AuthService, otp *services.OTPService, registry *Registry) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		otp:         otp,
		registry:    registry,
	}
}

type codeRequest struct {
	Email string `json:"email" form:"email"`
}

type verifyRequest struct {
	ChallengeID string `json:"challengeId" form:"challengeId"`
	Code        string `json:"code" form:"code"`
}

// RequestCode starts the one-time code handshake
func (h *AuthHandler) RequestCode(c echo.Context) error {
	var req codeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	id, err := h.otp.RequestCode(c.Request().Context(), req.Email)
	if errors.Is(err, services.ErrInvalidEmail) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		logging.L().Error("failed to send code", logging.Err(err))
		return echo.NewHTTPError(http.StatusBadGateway, "Failed to send code")
	}
	return c.JSON(http.StatusOK, map[string]string{"challengeId": id})
}

// VerifyCode completes the handshake and sets the session cookie
func (h *AuthHandler) VerifyCode(c echo.Context) error {
	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	sess, err := h.otp.SubmitCode(req.ChallengeID, req.Code)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	encrypted, err := h.authService.EncryptSession(*sess)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create session")
	}

	cookie := new(http.Cookie)
	cookie.Name = utils.CookieName
	cookie.Value = encrypted
	cookie.Expires = time.Now().Add(24 * time.Hour)
	cookie.Path = "/"
	cookie.HttpOnly = true
	cookie.SameSite = http.SameSiteStrictMode
	cookie.Secure = requestIsSecure(c)
	c.SetCookie(cookie)

	return c.JSON(http.StatusOK, sess)
}

// Logout clears the session and drops its workspace
func (h *AuthHandler) Logout(c echo.Context) error {
	if existing, err := c.Cookie(utils.CookieName); err == nil {
		if sess, err := h.authService.DecryptSession(existing.Value); err == nil {
			h.registry.Drop(sess.ID)
		}
	}

	cookie := new(http.Cookie)
	cookie.Name = utils.CookieName
	cookie.Value = ""
	cookie.Expires = time.Now().Add(-1 * time.Hour)
	cookie.MaxAge = -1
	cookie.Path = "/"
	cookie.HttpOnly = true
	cookie.SameSite = http.SameSiteStrictMode
	cookie.Secure = requestIsSecure(c)
	c.SetCookie(cookie)
	return c.NoContent(http.StatusNoContent)
}
