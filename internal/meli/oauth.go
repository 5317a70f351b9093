package meli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"meliproxy/internal/metrics"
)

const (
	defaultAuthURL  = "https://auth.mercadolivre.com.br/authorization"
	defaultTokenURL = "https://api.mercadolibre.com/oauth/token" //nolint:gosec // not a credential
)

// TokenInfo holds the result of an authorization-code exchange.
// UserID is Mercado Livre's non-standard extension to the token
// response, identifying the account that granted access.
type TokenInfo struct {
	AccessToken  string
	RefreshToken string
	UserID       string
	ExpiresIn    int
}

// Exchanger defines the OAuth2 authorization-code operations.
type Exchanger interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*TokenInfo, error)
}

// OAuthExchanger implements Exchanger against the Mercado Livre OAuth
// endpoints. Client credentials go in the POST body, which is what the
// token endpoint expects.
type OAuthExchanger struct {
	cfg    *oauth2.Config
	client *http.Client
}

// OAuthOption configures the OAuthExchanger.
type OAuthOption func(*OAuthExchanger)

// WithAuthURL overrides the default authorization endpoint.
func WithAuthURL(u string) OAuthOption {
	return func(e *OAuthExchanger) {
		e.cfg.Endpoint.AuthURL = u
	}
}

// WithTokenURL overrides the default token endpoint.
func WithTokenURL(u string) OAuthOption {
	return func(e *OAuthExchanger) {
		e.cfg.Endpoint.TokenURL = u
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) OAuthOption {
	return func(e *OAuthExchanger) {
		e.client = c
	}
}

// NewOAuthExchanger creates a Mercado Livre OAuth2 exchanger.
func NewOAuthExchanger(
	clientID, clientSecret, redirectURI string,
	opts ...OAuthOption,
) *OAuthExchanger {
	e := &OAuthExchanger{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:   defaultAuthURL,
				TokenURL:  defaultTokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		client: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AuthCodeURL builds the authorization URL for the given state. Pure
// URL construction; no network call.
func (e *OAuthExchanger) AuthCodeURL(state string) string {
	return e.cfg.AuthCodeURL(state)
}

// Exchange trades an authorization code for tokens. Exactly one POST
// to the token endpoint; no retries.
func (e *OAuthExchanger) Exchange(ctx context.Context, code string) (*TokenInfo, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, e.client)

	tok, err := e.cfg.Exchange(ctx, code)
	if err != nil {
		metrics.OAuthExchangesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	metrics.OAuthExchangesTotal.WithLabelValues("success").Inc()

	return &TokenInfo{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		UserID:       extraString(tok, "user_id"),
		ExpiresIn:    extraInt(tok, "expires_in"),
	}, nil
}

// extraString reads a non-standard token response field as a string.
// JSON token responses surface numbers as float64.
func extraString(tok *oauth2.Token, key string) string {
	switch v := tok.Extra(key).(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func extraInt(tok *oauth2.Token, key string) int {
	switch v := tok.Extra(key).(type) {
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	default:
		return 0
	}
}
