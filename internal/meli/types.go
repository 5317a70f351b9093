package meli

import "fmt"

// ItemSummary is the projection of a Mercado Livre item document down
// to the fields exposed in aggregated listings. It is derived per
// request and never stored.
type ItemSummary struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	Price             float64 `json:"price"`
	CurrencyID        string  `json:"currency_id"`
	AvailableQuantity int     `json:"available_quantity"`
	SoldQuantity      int     `json:"sold_quantity"`
	Condition         string  `json:"condition"`
	ListingTypeID     string  `json:"listing_type_id"`
	Status            string  `json:"status"`
	Permalink         string  `json:"permalink"`
	Thumbnail         string  `json:"thumbnail"`
	CategoryID        string  `json:"category_id"`
	DateCreated       string  `json:"date_created"`
	LastUpdated       string  `json:"last_updated"`
}

// userItemsResponse mirrors the /users/{id}/items/search payload.
type userItemsResponse struct {
	Results []string `json:"results"`
	Paging  struct {
		Total  int `json:"total"`
		Offset int `json:"offset"`
		Limit  int `json:"limit"`
	} `json:"paging"`
}

// APIError is returned for any non-2xx response from the Mercado
// Livre API.
type APIError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf(
		"mercado livre API error (status %d) on %s: %s",
		e.StatusCode, e.Endpoint, e.Body,
	)
}
