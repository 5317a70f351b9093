// Package handlers implements the HTTP handlers for the meliproxy API.
//
// Every route is a thin pass-through: it builds one or more outbound
// Mercado Livre API calls from the inbound request, forwards them, and
// reshapes the JSON response. Error bodies are always {"error": msg}
// with 400 for bad input or remote-reported OAuth errors, 401 for
// missing session credentials, and 500 for upstream transport failures.
package handlers

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Fixed messages for unauthenticated and malformed requests.
const (
	msgMissingCode   = "authorization code missing"
	msgInvalidState  = "invalid oauth state"
	msgNoToken       = "access token not found, log in first"
	msgNoTokenOrUser = "access token or user id not found, log in first"
	msgStoreDown     = "session store unavailable"
)

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

// intQuery coerces an integer query parameter, falling back to def
// when absent. Anything non-numeric is a client error.
func intQuery(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return v, nil
}
