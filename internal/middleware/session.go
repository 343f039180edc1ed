package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/equipment-inventory/internal/session"
)

// RequireSession returns an Echo middleware that resolves the session
// cookie against the session store and injects the session payload
// into the request context. Handlers and downstream middleware read
// the authenticated identity via c.Get("user_id"), c.Get("username")
// and c.Get("role"). Requests without a valid, unexpired session are
// rejected with 401 before any handler runs.
func RequireSession(store session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(session.CookieName)
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorised — please log in."})
			}
			data, err := store.Get(c.Request().Context(), cookie.Value)
			if err != nil {
				// Unknown and expired sessions look identical to the client.
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorised — please log in."})
			}
			c.Set("session_id", cookie.Value)
			c.Set("user_id", data.UserID)
			c.Set("username", data.Username)
			c.Set("role", data.Role)
			return next(c)
		}
	}
}
