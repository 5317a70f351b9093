package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"meliproxy/internal/api"
	"meliproxy/internal/config"
	"meliproxy/internal/meli"
	"meliproxy/internal/session"
	"meliproxy/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	store, err := newSessionStore(cfg)
	if err != nil {
		return fmt.Errorf("building session store: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.Meli.Timeout}

	exchanger := meli.NewOAuthExchanger(
		cfg.Meli.ClientID,
		cfg.Meli.ClientSecret,
		cfg.Meli.RedirectURI,
		meli.WithAuthURL(cfg.Meli.AuthURL),
		meli.WithTokenURL(cfg.Meli.TokenURL),
		meli.WithHTTPClient(httpClient),
	)

	client := meli.NewRESTClient(
		meli.WithAPIURL(cfg.Meli.APIURL),
		meli.WithSite(cfg.Meli.Site),
		meli.WithRESTHTTPClient(httpClient),
	)

	e := api.New(cfg, log, store, exchanger, client)
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting server",
		"addr", addr,
		"base_path", cfg.Server.BasePath,
		"session_backend", cfg.Session.Backend,
	)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info("server stopped")
	return nil
}

func newSessionStore(cfg *config.Config) (session.Store, error) {
	switch cfg.Session.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Session.Redis.Addr,
			Password: cfg.Session.Redis.Password,
			DB:       cfg.Session.Redis.DB,
		})
		return session.NewRedisStore(client, cfg.Session.TTL), nil
	case "memory":
		return session.NewMemoryStore(cfg.Session.TTL), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}
