package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/equipment-inventory/internal/handler"
	"github.com/iliyamo/equipment-inventory/internal/middleware"
	"github.com/iliyamo/equipment-inventory/internal/model"
	"github.com/iliyamo/equipment-inventory/internal/session"
)

// Handlers carries every handler the route table needs.
type Handlers struct {
	Auth      *handler.AuthHandler
	Category  *handler.CategoryHandler
	Equipment *handler.EquipmentHandler
	Image     *handler.ImageHandler
	Cart      *handler.CartHandler
	User      *handler.UserHandler
	Profile   *handler.ProfileHandler
}

// Register wires the whole route table onto the Echo instance. The
// layering is: public (health, auth), session-guarded (everything
// under /api), then role-guarded subsets (admin writes, client cart).
// cache wraps only routes whose response is identical for every
// authenticated caller; the equipment routes scope their output to
// the caller's role, so they stay uncached.
func Register(e *echo.Echo, h Handlers, store session.Store, uploadDir string, cache echo.MiddlewareFunc) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	// Uploaded product images are served as static files.
	e.Static("/uploads/products", uploadDir)

	// Auth endpoints manage the session themselves, so they sit
	// outside the session-guarded group. Content-type checks happen
	// inside the handler because GET ?action=me has no body.
	e.POST("/api/auth", h.Auth.Post)
	e.GET("/api/auth", h.Auth.Me)

	// Everything under /api (other than auth) requires a live session.
	api := e.Group("/api")
	api.Use(middleware.RequireSession(store))

	// Reads open to both roles. Equipment list/show scope themselves
	// to the caller's assignments when the role is client.
	api.GET("/categories", h.Category.Get, cache)
	api.GET("/equipment", h.Equipment.Get)
	api.GET("/images", h.Image.Get)

	// Profile is self-service for any authenticated user.
	api.GET("/profile", h.Profile.Get)
	api.PUT("/profile", h.Profile.Put, middleware.RequireJSON)

	// Admin-only management surface.
	admin := api.Group("", middleware.RequireRole(model.RoleAdmin))
	admin.POST("/categories", h.Category.Post, middleware.RequireJSON)
	admin.PUT("/categories", h.Category.Put, middleware.RequireJSON)
	admin.DELETE("/categories", h.Category.Delete)

	admin.POST("/equipment", h.Equipment.Post, middleware.RequireJSON)
	admin.PUT("/equipment", h.Equipment.Put, middleware.RequireJSON)
	admin.DELETE("/equipment", h.Equipment.Delete)

	// Image upload is multipart, so no JSON check on POST.
	admin.POST("/images", h.Image.Post)
	admin.PUT("/images", h.Image.Put)
	admin.DELETE("/images", h.Image.Delete)

	admin.GET("/users", h.User.Get)
	admin.POST("/users", h.User.Post, middleware.RequireJSON)
	admin.PUT("/users", h.User.Put, middleware.RequireJSON)
	admin.DELETE("/users", h.User.Delete)

	// The cart belongs to the client role.
	client := api.Group("", middleware.RequireRole(model.RoleClient))
	client.GET("/cart", h.Cart.Get)
	client.POST("/cart", h.Cart.Post, middleware.RequireJSON)
	client.PUT("/cart", h.Cart.Put, middleware.RequireJSON)
	client.DELETE("/cart", h.Cart.Delete)
}
