package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"meliproxy/internal/api/handlers"
	"meliproxy/internal/api/middleware"
	"meliproxy/internal/meli"
	"meliproxy/internal/session"
	"meliproxy/pkg/logger"
)

const testCookieName = "meliproxy_session"

// fakeExchanger implements meli.Exchanger with programmable behavior.
// exchangeCalls counts Exchange invocations so tests can assert that
// failed callbacks perform no token exchange.
type fakeExchanger struct {
	exchange      func(code string) (*meli.TokenInfo, error)
	exchangeCalls int
}

func (*fakeExchanger) AuthCodeURL(state string) string {
	return "https://auth.example.test/authorization?response_type=code&client_id=test-client&state=" + state
}

func (f *fakeExchanger) Exchange(_ context.Context, code string) (*meli.TokenInfo, error) {
	f.exchangeCalls++
	if f.exchange == nil {
		return nil, errors.New("unexpected Exchange call")
	}
	return f.exchange(code)
}

// fakeClient implements meli.Client with programmable behavior. calls
// counts every method invocation so tests can assert that
// unauthenticated requests make no outbound call.
type fakeClient struct {
	calls int

	me                  func(token string) (json.RawMessage, error)
	userItemIDs         func(token, userID string, offset, limit int) (*meli.ItemPage, error)
	item                func(token, itemID string) (json.RawMessage, error)
	itemDescription     func(token, itemID string) (json.RawMessage, error)
	itemWithDescription func(token, itemID string) (map[string]any, error)
	siteSearch          func(token string, req meli.SearchRequest) (json.RawMessage, error)
	myItems             func(token, userID string, offset, limit int) (*meli.MyItemsResult, error)
}

func (f *fakeClient) Me(_ context.Context, token string) (json.RawMessage, error) {
	f.calls++
	if f.me == nil {
		return nil, errors.New("unexpected Me call")
	}
	return f.me(token)
}

func (f *fakeClient) UserItemIDs(_ context.Context, token, userID string, offset, limit int) (*meli.ItemPage, error) {
	f.calls++
	if f.userItemIDs == nil {
		return nil, errors.New("unexpected UserItemIDs call")
	}
	return f.userItemIDs(token, userID, offset, limit)
}

func (f *fakeClient) Item(_ context.Context, token, itemID string) (json.RawMessage, error) {
	f.calls++
	if f.item == nil {
		return nil, errors.New("unexpected Item call")
	}
	return f.item(token, itemID)
}

func (f *fakeClient) ItemDescription(_ context.Context, token, itemID string) (json.RawMessage, error) {
	f.calls++
	if f.itemDescription == nil {
		return nil, errors.New("unexpected ItemDescription call")
	}
	return f.itemDescription(token, itemID)
}

func (f *fakeClient) ItemWithDescription(_ context.Context, token, itemID string) (map[string]any, error) {
	f.calls++
	if f.itemWithDescription == nil {
		return nil, errors.New("unexpected ItemWithDescription call")
	}
	return f.itemWithDescription(token, itemID)
}

func (f *fakeClient) SiteSearch(_ context.Context, token string, req meli.SearchRequest) (json.RawMessage, error) {
	f.calls++
	if f.siteSearch == nil {
		return nil, errors.New("unexpected SiteSearch call")
	}
	return f.siteSearch(token, req)
}

func (f *fakeClient) MyItems(_ context.Context, token, userID string, offset, limit int) (*meli.MyItemsResult, error) {
	f.calls++
	if f.myItems == nil {
		return nil, errors.New("unexpected MyItems call")
	}
	return f.myItems(token, userID, offset, limit)
}

// newTestApp builds an echo app with the session middleware and all
// proxy routes registered, mounted at the root.
func newTestApp(t *testing.T, ex meli.Exchanger, client meli.Client, store session.Store) *echo.Echo {
	t.Helper()

	log := logger.NewWithWriter(io.Discard, "error", "text")

	e := echo.New()
	opts := session.CookieOptions{Name: testCookieName, TTL: time.Hour}
	g := e.Group("", middleware.Session(store, opts, log))

	handlers.NewAuthHandler(ex, store, opts, log).Register(g)
	handlers.NewUserHandler(client).Register(g)
	handlers.NewItemsHandler(client).Register(g)
	handlers.NewSearchHandler(client).Register(g)

	return e
}

// doRequest serves one request, attaching the session cookie when a
// session id is given.
func doRequest(e *echo.Echo, method, target, sessionID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, http.NoBody)
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: sessionID})
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// seedSession stores credentials under a fixed session id.
func seedSession(t *testing.T, store session.Store, id string, creds *session.Credentials) {
	t.Helper()
	if err := store.Put(context.Background(), id, creds); err != nil {
		t.Fatalf("seeding session: %v", err)
	}
}
