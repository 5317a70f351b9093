package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"meliproxy/internal/api/middleware"
	"meliproxy/internal/meli"
)

// SearchHandler proxies public marketplace searches.
type SearchHandler struct {
	client meli.Client
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(client meli.Client) *SearchHandler {
	return &SearchHandler{client: client}
}

// Register adds the search route to the group.
func (h *SearchHandler) Register(g *echo.Group) {
	g.GET("/search", h.Search)
}

// Search forwards the supplied filters to the site search endpoint and
// returns the remote payload verbatim. Omitted filters are not sent.
func (h *SearchHandler) Search(c echo.Context) error {
	creds := middleware.SessionCredentials(c)
	if creds.AccessToken == "" {
		return errorJSON(c, http.StatusUnauthorized, msgNoToken)
	}

	offset, err := intQuery(c, "offset", defaultListOffset)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	limit, err := intQuery(c, "limit", defaultListLimit)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	raw, err := h.client.SiteSearch(c.Request().Context(), creds.AccessToken, meli.SearchRequest{
		Query:    c.QueryParam("q"),
		SellerID: c.QueryParam("seller_id"),
		Nickname: c.QueryParam("nickname"),
		Category: c.QueryParam("category"),
		Sort:     c.QueryParam("sort"),
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSONBlob(http.StatusOK, raw)
}
