package handlers

import (
	"errors"
	"net/http"

	"github.com/damacus/iron-drive/internal/models"
	"github.com/damacus/iron-drive/internal/store"
	"github.com/damacus/iron-drive/internal/utils"
	"github.com/damacus/iron-drive/internal/workspace"
	"github.com/labstack/echo/v4"
)

// GetSession retrieves and validates the session from the context
func GetSession(c echo.Context) (*models.Session, error) {
	val := c.Get(utils.ContextKeySession)
	if val == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	sess, ok := val.(*models.Session)
	if !ok || sess.ID == "" || sess.UserID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	return sess, nil
}

// toHTTPError maps workspace and store errors onto status codes
func toHTTPError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, workspace.ErrEmptyFolderName), errors.Is(err, workspace.ErrNoFiles):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, workspace.ErrNoIdentity):
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, workspace.ErrUnknownEntity):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, workspace.ErrUploadInProgress):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadGateway, store.Message(err))
	}
}

func requestIsSecure(c echo.Context) bool {
	req := c.Request()
	if req.TLS != nil {
		return true
	}

	return req.Header.Get("X-Forwarded-Proto") == "https"
}
