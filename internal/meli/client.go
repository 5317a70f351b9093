// Package meli provides a Mercado Livre OAuth and REST API client
// abstracted behind interfaces for testability.
package meli

import (
	"context"
	"encoding/json"
)

// SearchRequest defines the parameters for a site-wide item search.
// Empty filter fields are omitted from the outbound request entirely.
type SearchRequest struct {
	Query    string
	SellerID string
	Nickname string
	Category string
	Sort     string // defaults to "relevance"
	Offset   int
	Limit    int // defaults to 50
}

// ItemPage holds one page of item ids belonging to a user, the first
// phase of the my-items aggregation.
type ItemPage struct {
	IDs    []string
	Total  int
	Offset int
	Limit  int
}

// MyItemsResult is the aggregated result of a my-items fetch. Total,
// Offset, and Limit reflect the id listing, not the number of items
// that were successfully detailed: ids whose detail fetch failed are
// reported in Skipped, so Total may exceed len(Items).
type MyItemsResult struct {
	Items   []ItemSummary
	Skipped []string
	Total   int
	Offset  int
	Limit   int
}

// Client defines the read-only surface of the Mercado Livre API used
// by the proxy handlers. Tokens are per-user and passed on every call.
type Client interface {
	// Me returns the authenticated user's profile verbatim.
	Me(ctx context.Context, token string) (json.RawMessage, error)
	// UserItemIDs returns one page of item ids owned by userID.
	UserItemIDs(ctx context.Context, token, userID string, offset, limit int) (*ItemPage, error)
	// Item returns the full item document verbatim.
	Item(ctx context.Context, token, itemID string) (json.RawMessage, error)
	// ItemDescription returns the item's description document verbatim.
	ItemDescription(ctx context.Context, token, itemID string) (json.RawMessage, error)
	// ItemWithDescription returns the item document with a description
	// field merged in, null when the description fetch fails.
	ItemWithDescription(ctx context.Context, token, itemID string) (map[string]any, error)
	// SiteSearch runs a public search on the configured site and
	// returns the remote payload verbatim.
	SiteSearch(ctx context.Context, token string, req SearchRequest) (json.RawMessage, error)
	// MyItems aggregates the user's item ids with per-item detail,
	// skipping items whose detail fetch fails.
	MyItems(ctx context.Context, token, userID string, offset, limit int) (*MyItemsResult, error)
}
