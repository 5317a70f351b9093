package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meliproxy/internal/meli"
	"meliproxy/internal/session"
)

func TestAuthFlow_EndToEnd(t *testing.T) {
	t.Parallel()

	accessToken := "APP_USR-1234567890123456789012345678"
	ex := &fakeExchanger{
		exchange: func(code string) (*meli.TokenInfo, error) {
			assert.Equal(t, "auth-code-abc", code)
			return &meli.TokenInfo{
				AccessToken:  accessToken,
				RefreshToken: "TG-refresh",
				UserID:       "123456789",
				ExpiresIn:    21600,
			}, nil
		},
	}
	store := session.NewMemoryStore(time.Hour)
	e := newTestApp(t, ex, &fakeClient{}, store)

	// Initiate: the handler returns the URL as data and issues a
	// session cookie carrying the pending state.
	rec := doRequest(e, http.MethodGet, "/auth", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var authResp struct {
		AuthURL string `json:"auth_url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &authResp))

	authURL, err := url.Parse(authResp.AuthURL)
	require.NoError(t, err)
	state := authURL.Query().Get("state")
	require.NotEmpty(t, state)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	sid := cookies[0].Value

	// Callback with the matching state exchanges the code and
	// persists credentials.
	rec = doRequest(e, http.MethodGet, "/callback?code=auth-code-abc&state="+state, sid)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, ex.exchangeCalls)
	assert.Contains(t, rec.Body.String(), `"user_id":"123456789"`)
	assert.Contains(t, rec.Body.String(), `"access_token":"`+accessToken[:20]+`..."`)
	assert.NotContains(t, rec.Body.String(), accessToken, "full token must never be echoed")

	// Status reflects the stored credentials.
	rec = doRequest(e, http.MethodGet, "/status", sid)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":true`)
	assert.Contains(t, rec.Body.String(), `"user_id":"123456789"`)
	assert.Contains(t, rec.Body.String(), `"token_preview":"`+accessToken[:20]+`..."`)

	// Logout clears the session record and expires the cookie.
	rec = doRequest(e, http.MethodPost, "/logout", sid)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies = rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Negative(t, cookies[0].MaxAge)

	rec = doRequest(e, http.MethodGet, "/status", sid)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"authenticated":false}`, rec.Body.String())
}

func TestCallback_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		target        string
		pendingState  string
		exchange      func(code string) (*meli.TokenInfo, error)
		wantStatus    int
		wantBody      string
		wantExchanges int
	}{
		{
			name:       "remote error reported without exchange",
			target:     "/callback?error=access_denied",
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"access_denied"}`,
		},
		{
			name:       "missing code",
			target:     "/callback",
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"authorization code missing"}`,
		},
		{
			name:         "state mismatch",
			target:       "/callback?code=abc&state=wrong",
			pendingState: "expected-state",
			wantStatus:   http.StatusBadRequest,
			wantBody:     `{"error":"invalid oauth state"}`,
		},
		{
			name:       "no pending state",
			target:     "/callback?code=abc&state=anything",
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"invalid oauth state"}`,
		},
		{
			name:         "exchange failure surfaces as 500",
			target:       "/callback?code=abc&state=expected-state",
			pendingState: "expected-state",
			exchange: func(string) (*meli.TokenInfo, error) {
				return nil, errors.New("token request failed (status 400): invalid_grant")
			},
			wantStatus:    http.StatusInternalServerError,
			wantBody:      "invalid_grant",
			wantExchanges: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ex := &fakeExchanger{exchange: tt.exchange}
			store := session.NewMemoryStore(time.Hour)
			e := newTestApp(t, ex, &fakeClient{}, store)

			sid := "sid-" + strings.ReplaceAll(tt.name, " ", "-")
			if tt.pendingState != "" {
				seedSession(t, store, sid, &session.Credentials{PendingState: tt.pendingState})
			}

			rec := doRequest(e, http.MethodGet, tt.target, sid)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if strings.HasPrefix(tt.wantBody, "{") {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
			assert.Equal(t, tt.wantExchanges, ex.exchangeCalls)
		})
	}
}

func TestStatus_PartialCredentialsAreUnauthenticated(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		creds *session.Credentials
	}{
		{"empty session", nil},
		{"token without user id", &session.Credentials{AccessToken: "tok"}},
		{"user id without token", &session.Credentials{UserID: "123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := session.NewMemoryStore(time.Hour)
			e := newTestApp(t, &fakeExchanger{}, &fakeClient{}, store)

			sid := "sid-status"
			if tt.creds != nil {
				seedSession(t, store, sid, tt.creds)
			}

			rec := doRequest(e, http.MethodGet, "/status", sid)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"authenticated":false}`, rec.Body.String())
		})
	}
}

func TestAuth_StatePersistedPerFlow(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore(time.Hour)
	e := newTestApp(t, &fakeExchanger{}, &fakeClient{}, store)

	first := doRequest(e, http.MethodGet, "/auth", "sid-1")
	second := doRequest(e, http.MethodGet, "/auth", "sid-1")
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)

	// Each initiation gets a fresh nonce; the latest one wins.
	stateOf := func(rec string) string {
		var resp struct {
			AuthURL string `json:"auth_url"`
		}
		require.NoError(t, json.Unmarshal([]byte(rec), &resp))
		u, err := url.Parse(resp.AuthURL)
		require.NoError(t, err)
		return u.Query().Get("state")
	}

	s1 := stateOf(first.Body.String())
	s2 := stateOf(second.Body.String())
	assert.NotEqual(t, s1, s2)

	creds, err := store.Get(t.Context(), "sid-1")
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, s2, creds.PendingState)
}
