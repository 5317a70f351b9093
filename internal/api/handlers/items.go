package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"meliproxy/internal/api/middleware"
	"meliproxy/internal/meli"
)

const (
	defaultListOffset = 0
	defaultListLimit  = 50
)

// ItemsHandler serves the caller's own listings and item detail.
type ItemsHandler struct {
	client meli.Client
}

// NewItemsHandler creates a new ItemsHandler.
func NewItemsHandler(client meli.Client) *ItemsHandler {
	return &ItemsHandler{client: client}
}

// Register adds the item routes to the group.
func (h *ItemsHandler) Register(g *echo.Group) {
	g.GET("/my-items", h.MyItems)
	g.GET("/item/:item_id", h.ItemDetail)
}

// myItemsResponse is the aggregated listing page. Total reflects the
// remote id listing and may exceed len(Items) when detail fetches were
// skipped; the skipped ids are reported explicitly.
type myItemsResponse struct {
	Total   int                `json:"total"`
	Offset  int                `json:"offset"`
	Limit   int                `json:"limit"`
	Items   []meli.ItemSummary `json:"items"`
	Skipped []string           `json:"skipped,omitempty"`
}

// MyItems returns one page of the caller's own listings with per-item
// detail. Requires both access token and user id.
func (h *ItemsHandler) MyItems(c echo.Context) error {
	creds := middleware.SessionCredentials(c)
	if !creds.Authenticated() {
		return errorJSON(c, http.StatusUnauthorized, msgNoTokenOrUser)
	}

	offset, err := intQuery(c, "offset", defaultListOffset)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	limit, err := intQuery(c, "limit", defaultListLimit)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	res, err := h.client.MyItems(
		c.Request().Context(),
		creds.AccessToken, creds.UserID,
		offset, limit,
	)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, myItemsResponse{
		Total:   res.Total,
		Offset:  res.Offset,
		Limit:   res.Limit,
		Items:   res.Items,
		Skipped: res.Skipped,
	})
}

// ItemDetail returns a single item's full document with its
// description merged in, null when the description fetch fails.
func (h *ItemsHandler) ItemDetail(c echo.Context) error {
	creds := middleware.SessionCredentials(c)
	if creds.AccessToken == "" {
		return errorJSON(c, http.StatusUnauthorized, msgNoToken)
	}

	detail, err := h.client.ItemWithDescription(
		c.Request().Context(),
		creds.AccessToken,
		c.Param("item_id"),
	)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, detail)
}
