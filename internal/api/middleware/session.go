package middleware

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"meliproxy/internal/session"
)

// Context keys set by the Session middleware.
const (
	ctxSessionID   = "session_id"
	ctxCredentials = "session_credentials"
)

// Session returns Echo middleware that resolves the caller's session.
// A missing cookie gets a fresh session id issued on the response, so
// every handler downstream can rely on a stable id. The credential
// record (empty when none is stored) is loaded into the context, which
// keeps handlers free of store lookups.
func Session(store session.Store, opts session.CookieOptions, log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if cookie, err := c.Cookie(opts.Name); err == nil && cookie.Value != "" {
				id = cookie.Value
			} else {
				id = uuid.NewString()
				session.SetCookie(c.Response(), id, opts)
			}

			creds, err := store.Get(c.Request().Context(), id)
			if err != nil {
				log.Error("session lookup failed", "error", err, "session_id", id)
				return c.JSON(http.StatusInternalServerError, map[string]string{
					"error": "session store unavailable",
				})
			}
			if creds == nil {
				creds = &session.Credentials{}
			}

			c.Set(ctxSessionID, id)
			c.Set(ctxCredentials, creds)

			return next(c)
		}
	}
}

// SessionID returns the session id resolved by the Session middleware,
// or empty when the middleware did not run.
func SessionID(c echo.Context) string {
	id, _ := c.Get(ctxSessionID).(string)
	return id
}

// SessionCredentials returns the credential record loaded by the
// Session middleware. It never returns nil.
func SessionCredentials(c echo.Context) *session.Credentials {
	if creds, ok := c.Get(ctxCredentials).(*session.Credentials); ok {
		return creds
	}
	return &session.Credentials{}
}
