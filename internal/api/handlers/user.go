package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"meliproxy/internal/api/middleware"
	"meliproxy/internal/meli"
)

// UserHandler proxies user profile requests.
type UserHandler struct {
	client meli.Client
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(client meli.Client) *UserHandler {
	return &UserHandler{client: client}
}

// Register adds the user routes to the group.
func (h *UserHandler) Register(g *echo.Group) {
	g.GET("/user-info", h.UserInfo)
}

// UserInfo returns the authenticated user's remote profile verbatim.
func (h *UserHandler) UserInfo(c echo.Context) error {
	creds := middleware.SessionCredentials(c)
	if creds.AccessToken == "" {
		return errorJSON(c, http.StatusUnauthorized, msgNoToken)
	}

	raw, err := h.client.Me(c.Request().Context(), creds.AccessToken)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSONBlob(http.StatusOK, raw)
}
