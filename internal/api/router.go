// Package api assembles the Echo server for meliproxy.
package api

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"meliproxy/internal/api/handlers"
	"meliproxy/internal/api/middleware"
	"meliproxy/internal/config"
	"meliproxy/internal/meli"
	"meliproxy/internal/session"
)

// New builds the Echo server with all middleware and routes wired.
// Proxy routes are mounted under cfg.Server.BasePath; operational
// endpoints (healthz, readyz, metrics) live at the root.
func New(
	cfg *config.Config,
	log *slog.Logger,
	store session.Store,
	exchanger meli.Exchanger,
	client meli.Client,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(log))
	e.Use(middleware.RequestLog(log))
	e.Use(middleware.Metrics())

	handlers.NewHealthHandler(store).Register(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	cookieOpts := session.CookieOptions{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.CookieSecure,
		TTL:    cfg.Session.TTL,
	}

	g := e.Group(cfg.Server.BasePath, middleware.Session(store, cookieOpts, log))
	handlers.NewAuthHandler(exchanger, store, cookieOpts, log).Register(g)
	handlers.NewUserHandler(client).Register(g)
	handlers.NewItemsHandler(client).Register(g)
	handlers.NewSearchHandler(client).Register(g)

	return e
}
