package meli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"meliproxy/internal/metrics"
)

const (
	defaultAPIURL = "https://api.mercadolibre.com"
	defaultSite   = "MLB"

	defaultSearchSort  = "relevance"
	defaultSearchLimit = 50
)

// RESTClient implements Client against the Mercado Livre REST API.
type RESTClient struct {
	apiURL string
	site   string
	client *http.Client
}

// ClientOption configures the RESTClient.
type ClientOption func(*RESTClient)

// WithAPIURL overrides the default API base URL.
func WithAPIURL(u string) ClientOption {
	return func(c *RESTClient) {
		c.apiURL = u
	}
}

// WithSite overrides the default marketplace site for public search.
func WithSite(site string) ClientOption {
	return func(c *RESTClient) {
		c.site = site
	}
}

// WithRESTHTTPClient overrides the default HTTP client.
func WithRESTHTTPClient(hc *http.Client) ClientOption {
	return func(c *RESTClient) {
		c.client = hc
	}
}

// NewRESTClient creates a Mercado Livre REST API client.
func NewRESTClient(opts ...ClientOption) *RESTClient {
	c := &RESTClient{
		apiURL: defaultAPIURL,
		site:   defaultSite,
		client: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs one bearer-authenticated GET and returns the raw body.
// Every call is attempted exactly once; failures surface immediately.
func (c *RESTClient) get(
	ctx context.Context,
	token, endpoint, path string,
	query url.Values,
) (json.RawMessage, error) {
	metrics.UpstreamCallsTotal.WithLabelValues(endpoint).Inc()

	u := c.apiURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues(endpoint).Inc()
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues(endpoint).Inc()
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues(endpoint).Inc()
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.UpstreamErrorsTotal.WithLabelValues(endpoint).Inc()
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   path,
			Body:       string(body),
		}
	}

	return body, nil
}

// Me implements Client.Me.
func (c *RESTClient) Me(ctx context.Context, token string) (json.RawMessage, error) {
	return c.get(ctx, token, "users_me", "/users/me", nil)
}

// UserItemIDs implements Client.UserItemIDs.
func (c *RESTClient) UserItemIDs(
	ctx context.Context,
	token, userID string,
	offset, limit int,
) (*ItemPage, error) {
	query := url.Values{}
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(limit))

	body, err := c.get(
		ctx, token, "user_items_search",
		"/users/"+userID+"/items/search", query,
	)
	if err != nil {
		return nil, err
	}

	var resp userItemsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing user items response: %w", err)
	}

	return &ItemPage{
		IDs:    resp.Results,
		Total:  resp.Paging.Total,
		Offset: resp.Paging.Offset,
		Limit:  resp.Paging.Limit,
	}, nil
}

// Item implements Client.Item.
func (c *RESTClient) Item(ctx context.Context, token, itemID string) (json.RawMessage, error) {
	return c.get(ctx, token, "items", "/items/"+itemID, nil)
}

// ItemDescription implements Client.ItemDescription.
func (c *RESTClient) ItemDescription(
	ctx context.Context,
	token, itemID string,
) (json.RawMessage, error) {
	return c.get(
		ctx, token, "items_description",
		"/items/"+itemID+"/description", nil,
	)
}

// ItemWithDescription implements Client.ItemWithDescription. The
// description sub-fetch is best-effort: any failure there degrades to
// a null description instead of failing the whole request.
func (c *RESTClient) ItemWithDescription(
	ctx context.Context,
	token, itemID string,
) (map[string]any, error) {
	raw, err := c.Item(ctx, token, itemID)
	if err != nil {
		return nil, err
	}

	var detail map[string]any
	if err := json.Unmarshal(raw, &detail); err != nil {
		return nil, fmt.Errorf("parsing item response: %w", err)
	}

	detail["description"] = nil
	if desc, err := c.ItemDescription(ctx, token, itemID); err == nil {
		var d any
		if err := json.Unmarshal(desc, &d); err == nil {
			detail["description"] = d
		}
	}

	return detail, nil
}

// SiteSearch implements Client.SiteSearch. Omitted filters are not
// sent at all; sort, offset, and limit are always sent, defaulted.
func (c *RESTClient) SiteSearch(
	ctx context.Context,
	token string,
	req SearchRequest,
) (json.RawMessage, error) {
	query := url.Values{}

	sort := req.Sort
	if sort == "" {
		sort = defaultSearchSort
	}
	query.Set("sort", sort)

	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(req.Offset))

	if req.SellerID != "" {
		query.Set("seller_id", req.SellerID)
	}
	if req.Nickname != "" {
		query.Set("nickname", req.Nickname)
	}
	if req.Category != "" {
		query.Set("category", req.Category)
	}
	if req.Query != "" {
		query.Set("q", req.Query)
	}

	return c.get(ctx, token, "sites_search", "/sites/"+c.site+"/search", query)
}

// MyItems implements Client.MyItems. Phase one lists the user's item
// ids; phase two fetches each item's detail sequentially, skipping
// items whose fetch fails. Total comes from phase one, so it may
// exceed the number of items returned.
func (c *RESTClient) MyItems(
	ctx context.Context,
	token, userID string,
	offset, limit int,
) (*MyItemsResult, error) {
	page, err := c.UserItemIDs(ctx, token, userID, offset, limit)
	if err != nil {
		return nil, err
	}

	res := &MyItemsResult{
		Items:  make([]ItemSummary, 0, len(page.IDs)),
		Total:  page.Total,
		Offset: offset,
		Limit:  limit,
	}

	for _, id := range page.IDs {
		raw, err := c.Item(ctx, token, id)
		if err != nil {
			metrics.ItemFetchSkipsTotal.Inc()
			res.Skipped = append(res.Skipped, id)
			continue
		}

		var item ItemSummary
		if err := json.Unmarshal(raw, &item); err != nil {
			metrics.ItemFetchSkipsTotal.Inc()
			res.Skipped = append(res.Skipped, id)
			continue
		}

		res.Items = append(res.Items, item)
	}

	return res, nil
}
