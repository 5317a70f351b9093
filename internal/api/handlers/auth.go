package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"meliproxy/internal/api/middleware"
	"meliproxy/internal/meli"
	"meliproxy/internal/session"
)

// AuthHandler handles the OAuth flow and session lifecycle.
type AuthHandler struct {
	exchanger  meli.Exchanger
	sessions   session.Store
	cookieOpts session.CookieOptions
	log        *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	ex meli.Exchanger,
	store session.Store,
	cookieOpts session.CookieOptions,
	log *slog.Logger,
) *AuthHandler {
	return &AuthHandler{exchanger: ex, sessions: store, cookieOpts: cookieOpts, log: log}
}

// Register adds the auth routes to the group.
func (h *AuthHandler) Register(g *echo.Group) {
	g.GET("/auth", h.Auth)
	g.GET("/callback", h.Callback)
	g.POST("/logout", h.Logout)
	g.GET("/status", h.Status)
}

// newState generates a per-flow random state nonce. The nonce is
// persisted on the caller's session and verified by Callback before
// any code exchange, closing the CSRF hole a fixed state would leave.
func newState() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// Auth returns the authorization URL as data; navigation is left to
// the caller.
func (h *AuthHandler) Auth(c echo.Context) error {
	ctx := c.Request().Context()

	creds := middleware.SessionCredentials(c)
	state := newState()
	creds.PendingState = state

	if err := h.sessions.Put(ctx, middleware.SessionID(c), creds); err != nil {
		h.log.Error("persisting oauth state", "error", err)
		return errorJSON(c, http.StatusInternalServerError, msgStoreDown)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"auth_url": h.exchanger.AuthCodeURL(state),
	})
}

// Callback receives the authorization redirect and exchanges the code
// for tokens. This is the only state-mutating operation in the system.
func (h *AuthHandler) Callback(c echo.Context) error {
	ctx := c.Request().Context()

	if remoteErr := c.QueryParam("error"); remoteErr != "" {
		return errorJSON(c, http.StatusBadRequest, remoteErr)
	}

	code := c.QueryParam("code")
	if code == "" {
		return errorJSON(c, http.StatusBadRequest, msgMissingCode)
	}

	creds := middleware.SessionCredentials(c)
	if creds.PendingState == "" || c.QueryParam("state") != creds.PendingState {
		return errorJSON(c, http.StatusBadRequest, msgInvalidState)
	}

	info, err := h.exchanger.Exchange(ctx, code)
	if err != nil {
		h.log.Error("token exchange failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	next := &session.Credentials{
		AccessToken:  info.AccessToken,
		RefreshToken: info.RefreshToken,
		UserID:       info.UserID,
		ExpiresIn:    info.ExpiresIn,
	}
	if err := h.sessions.Put(ctx, middleware.SessionID(c), next); err != nil {
		h.log.Error("persisting credentials", "error", err)
		return errorJSON(c, http.StatusInternalServerError, msgStoreDown)
	}

	h.log.Info("user authenticated", "user_id", next.UserID)

	return c.JSON(http.StatusOK, map[string]any{
		"message":      "authentication successful",
		"user_id":      next.UserID,
		"access_token": session.TokenPreview(next.AccessToken),
	})
}

// Logout clears the caller's session state unconditionally.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.sessions.Delete(c.Request().Context(), middleware.SessionID(c)); err != nil {
		// Logout must not fail; the record expires on its own anyway.
		h.log.Error("deleting session", "error", err)
	}
	session.ClearCookie(c.Response(), h.cookieOpts)

	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

// Status reports whether the caller holds usable credentials.
func (h *AuthHandler) Status(c echo.Context) error {
	creds := middleware.SessionCredentials(c)
	if !creds.Authenticated() {
		return c.JSON(http.StatusOK, map[string]any{"authenticated": false})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"authenticated": true,
		"user_id":       creds.UserID,
		"token_preview": session.TokenPreview(creds.AccessToken),
	})
}
