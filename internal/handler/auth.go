package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/equipment-inventory/internal/config"
	"github.com/iliyamo/equipment-inventory/internal/middleware"
	"github.com/iliyamo/equipment-inventory/internal/model"
	"github.com/iliyamo/equipment-inventory/internal/repository"
	"github.com/iliyamo/equipment-inventory/internal/session"
	"github.com/iliyamo/equipment-inventory/internal/utils"
	"github.com/iliyamo/equipment-inventory/internal/validate"
)

// AuthHandler bundles dependencies for the auth endpoints. It is the
// only handler that writes to the session store.
type AuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Sessions session.Store
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, s session.Store) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Sessions: s}
}

// ----- DTOs -----

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userPart struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Post dispatches POST /api/auth on the action query parameter.
func (h *AuthHandler) Post(c echo.Context) error {
	switch c.QueryParam("action") {
	case "login":
		return h.login(c)
	case "logout":
		return h.logout(c)
	case "register":
		return h.register(c)
	default:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Route not found."})
	}
}

// login verifies credentials and establishes a fresh session. The
// failure message never reveals whether the username exists.
func (h *AuthHandler) login(c echo.Context) error {
	if !middleware.HasJSONContentType(c) {
		return c.JSON(http.StatusUnsupportedMediaType, echo.Map{"error": "Content-Type must be application/json."})
	}
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Malformed JSON body."})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required."})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid username or password."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid username or password."})
	}

	// Rotating the ID on every login prevents session fixation: any
	// session the browser carried in is destroyed first.
	if cookie, err := c.Cookie(session.CookieName); err == nil && cookie.Value != "" {
		_ = h.Sessions.Destroy(ctx, cookie.Value)
	}
	sid, err := h.Sessions.Create(ctx, session.Data{UserID: u.ID, Username: u.Username, Role: u.Role})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error: could not create session."})
	}
	h.setSessionCookie(c, sid, int(h.Sessions.TTL().Seconds()))

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login successful.",
		"user":    userPart{ID: u.ID, Username: u.Username, Role: u.Role},
	})
}

// logout destroys the current session and expires the cookie.
func (h *AuthHandler) logout(c echo.Context) error {
	cookie, err := c.Cookie(session.CookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorised — please log in."})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if _, err := h.Sessions.Get(ctx, cookie.Value); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorised — please log in."})
	}
	if err := h.Sessions.Destroy(ctx, cookie.Value); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error: could not destroy session."})
	}
	h.setSessionCookie(c, "", -1)
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully."})
}

// register creates a client-role account. The role in the payload is
// ignored; only an admin (via /api/users) can mint another admin.
func (h *AuthHandler) register(c echo.Context) error {
	if !middleware.HasJSONContentType(c) {
		return c.JSON(http.StatusUnsupportedMediaType, echo.Map{"error": "Content-Type must be application/json."})
	}
	var in validate.UserInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Malformed JSON body."})
	}
	in.Role = model.RoleClient

	fields, err := validate.User(in, false)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	exists, err := h.Users.UsernameExists(ctx, fields.Username, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	if exists {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Username already exists."})
	}

	hash, err := utils.HashPassword(*fields.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error: could not hash password."})
	}
	u := &model.User{
		Username:     fields.Username,
		PasswordHash: hash,
		Role:         fields.Role,
		FullName:     fields.FullName,
		Email:        fields.Email,
	}
	if err := h.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Username already exists."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "User registered.", "data": u})
}

// Me reports the current session state. Unlike the guarded endpoints
// this never fails: an anonymous caller gets authenticated=false.
func (h *AuthHandler) Me(c echo.Context) error {
	if c.QueryParam("action") != "me" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Route not found."})
	}
	cookie, err := c.Cookie(session.CookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusOK, echo.Map{"authenticated": false})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	data, err := h.Sessions.Get(ctx, cookie.Value)
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"authenticated": false})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"authenticated": true,
		"user":          userPart{ID: data.UserID, Username: data.Username, Role: data.Role},
	})
}

// setSessionCookie writes the HttpOnly session cookie. maxAge < 0
// expires it immediately.
func (h *AuthHandler) setSessionCookie(c echo.Context, value string, maxAge int) {
	c.SetCookie(&http.Cookie{
		Name:     session.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.Cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
