// Package config handles loading and validating the application
// configuration from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Meli    MeliConfig    `yaml:"meli"`
	Session SessionConfig `yaml:"session"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	BasePath     string        `yaml:"base_path"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// MeliConfig defines Mercado Livre OAuth and API settings. Credentials
// are never hard-coded; load them through ${VAR} substitution.
type MeliConfig struct {
	ClientID     string        `yaml:"client_id"`
	ClientSecret string        `yaml:"client_secret"`
	RedirectURI  string        `yaml:"redirect_uri"`
	AuthURL      string        `yaml:"auth_url"`
	TokenURL     string        `yaml:"token_url"`
	APIURL       string        `yaml:"api_url"`
	Site         string        `yaml:"site"`
	Timeout      time.Duration `yaml:"timeout"`
}

// SessionConfig defines how per-client credential state is stored.
type SessionConfig struct {
	Backend      string        `yaml:"backend"` // memory, redis
	TTL          time.Duration `yaml:"ttl"`
	CookieName   string        `yaml:"cookie_name"`
	CookieSecure bool          `yaml:"cookie_secure"`
	Redis        RedisConfig   `yaml:"redis"`
}

// RedisConfig defines Redis connection settings for the session store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment
// variable substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyMeliDefaults(&cfg.Meli)
	applySessionDefaults(&cfg.Session)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.BasePath == "" {
		s.BasePath = "/api/ml"
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyMeliDefaults(m *MeliConfig) {
	if m.AuthURL == "" {
		m.AuthURL = "https://auth.mercadolivre.com.br/authorization"
	}
	if m.TokenURL == "" {
		m.TokenURL = "https://api.mercadolibre.com/oauth/token"
	}
	if m.APIURL == "" {
		m.APIURL = "https://api.mercadolibre.com"
	}
	if m.Site == "" {
		m.Site = "MLB"
	}
	if m.Timeout == 0 {
		m.Timeout = 30 * time.Second
	}
}

func applySessionDefaults(s *SessionConfig) {
	if s.Backend == "" {
		s.Backend = "memory"
	}
	if s.TTL == 0 {
		// Matches the 6h lifetime of Mercado Livre access tokens.
		s.TTL = 6 * time.Hour
	}
	if s.CookieName == "" {
		s.CookieName = "meliproxy_session"
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	if cfg.Meli.ClientID == "" {
		return errors.New("meli.client_id is required")
	}
	if cfg.Meli.ClientSecret == "" {
		return errors.New("meli.client_secret is required")
	}
	if cfg.Meli.RedirectURI == "" {
		return errors.New("meli.redirect_uri is required")
	}

	switch cfg.Session.Backend {
	case "memory":
	case "redis":
		if cfg.Session.Redis.Addr == "" {
			return errors.New("session.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}

	return nil
}
