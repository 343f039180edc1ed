package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/equipment-inventory/internal/config"
	"github.com/iliyamo/equipment-inventory/internal/repository"
	"github.com/iliyamo/equipment-inventory/internal/utils"
	"github.com/iliyamo/equipment-inventory/internal/validate"
)

// ProfileHandler lets any authenticated user read and edit their own
// account. Username and role are immutable here; those belong to the
// admin surface.
type ProfileHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewProfileHandler(cfg config.Config, u *repository.UserRepo) *ProfileHandler {
	return &ProfileHandler{Cfg: cfg, Users: u}
}

type profileUpdateReq struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
}

type passwordChangeReq struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Get returns the caller's own record.
func (h *ProfileHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorised — please log in."})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.FindByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

// Put dispatches on ?action: password change, or a partial profile
// update of full_name and email.
func (h *ProfileHandler) Put(c echo.Context) error {
	if c.QueryParam("action") == "password" {
		return h.changePassword(c)
	}
	return h.updateProfile(c)
}

func (h *ProfileHandler) updateProfile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorised — please log in."})
	}

	var req profileUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Malformed JSON body."})
	}

	patch := repository.UserPatch{}
	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if len(name) > 150 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "full_name must be ≤ 150 characters."})
		}
		escaped := validate.Escape(name)
		patch.FullName = &escaped
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email != "" && !validate.ValidEmail(email) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid email format"})
		}
		if len(email) > 150 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email must be ≤ 150 characters."})
		}
		patch.Email = &email
	}
	if patch.FullName == nil && patch.Email == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "No valid fields to update"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if _, err := h.Users.Update(ctx, uid, patch); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	u, err := h.Users.FindByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Profile updated successfully", "user": u})
}

func (h *ProfileHandler) changePassword(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorised — please log in."})
	}

	var req passwordChangeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Malformed JSON body."})
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "current_password and new_password are required"})
	}
	if len(req.NewPassword) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "New password must be at least 6 characters"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorised — please log in."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Current password is incorrect"})
	}

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error: could not hash password."})
	}
	if _, err := h.Users.Update(ctx, uid, repository.UserPatch{PasswordHash: &hash}); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password changed successfully"})
}
