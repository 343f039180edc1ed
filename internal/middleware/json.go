package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequireJSON rejects requests whose declared Content-Type is not
// application/json with 415. It guards every route that binds a JSON
// body; multipart upload routes must not use it.
func RequireJSON(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !HasJSONContentType(c) {
			return c.JSON(http.StatusUnsupportedMediaType, echo.Map{"error": "Content-Type must be application/json."})
		}
		return next(c)
	}
}

// HasJSONContentType reports whether the request declares a JSON body.
// Exposed for handlers that dispatch multiple actions on one route and
// only some of them carry a body.
func HasJSONContentType(c echo.Context) bool {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	return strings.Contains(strings.ToLower(ct), echo.MIMEApplicationJSON)
}
