package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/equipment-inventory/internal/config"
	"github.com/iliyamo/equipment-inventory/internal/model"
	"github.com/iliyamo/equipment-inventory/internal/repository"
	"github.com/iliyamo/equipment-inventory/internal/utils"
	"github.com/iliyamo/equipment-inventory/internal/validate"
)

// UserHandler is the admin-facing account management surface. The
// route table restricts every method to the admin role.
type UserHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewUserHandler(cfg config.Config, u *repository.UserRepo) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u}
}

// Get lists users. ?clients=1 narrows to client accounts (used to
// populate the assignee dropdown); ?id=N fetches one user.
func (h *UserHandler) Get(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	if c.QueryParam("clients") == "1" {
		items, err := h.Users.FindAllClients(ctx)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"data": items, "count": len(items)})
	}

	if id, ok := queryID(c, "id"); ok {
		u, err := h.Users.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found."})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"data": u})
	}

	items, err := h.Users.FindAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items, "count": len(items)})
}

// Post creates an account with any role, unlike public registration
// which always yields a client.
func (h *UserHandler) Post(c echo.Context) error {
	var in validate.UserInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Malformed JSON body."})
	}
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
	return c.JSON(http.StatusCreated, echo.Map{"message": "User created.", "data": u})
}

// Put updates the account named by ?id. Password is optional on
// update; when present it is re-hashed.
func (h *UserHandler) Put(c echo.Context) error {
	id, ok := queryID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id query parameter is required."})
	}

	var in validate.UserInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Malformed JSON body."})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if _, err := h.Users.FindByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}

	fields, err := validate.User(in, true)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}

	exists, err := h.Users.UsernameExists(ctx, fields.Username, &id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	if exists {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Username already exists on another user."})
	}

	patch := repository.UserPatch{
		Username: &fields.Username,
		Role:     &fields.Role,
		FullName: &fields.FullName,
		Email:    &fields.Email,
	}
	if fields.Password != nil {
		hash, herr := utils.HashPassword(*fields.Password, h.Cfg.BcryptCost)
		if herr != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error: could not hash password."})
		}
		patch.PasswordHash = &hash
	}

	ok, err = h.Users.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Username already exists on another user."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	if !ok {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Update failed — no rows affected."})
	}

	u, err := h.Users.FindByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User updated.", "data": u})
}

// Delete removes an account. An admin cannot delete themselves; there
// must always be a live admin session that did the deleting.
func (h *UserHandler) Delete(c echo.Context) error {
	id, ok := queryID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id query parameter is required."})
	}
	self, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorised — please log in."})
	}
	if id == self {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Cannot delete your own account."})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if _, err := h.Users.FindByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}

	ok, err = h.Users.Delete(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found."})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted."})
}
