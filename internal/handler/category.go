package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/equipment-inventory/internal/model"
	"github.com/iliyamo/equipment-inventory/internal/repository"
	"github.com/iliyamo/equipment-inventory/internal/validate"
)

// CategoryHandler serves the category CRUD. Reads are open to every
// session; writes are admin-only, enforced by the route table.
type CategoryHandler struct {
	Categories *repository.CategoryRepo
}

func NewCategoryHandler(r *repository.CategoryRepo) *CategoryHandler {
	return &CategoryHandler{Categories: r}
}

// categoryView embeds the live product count alongside the row.
type categoryView struct {
	*model.Category
	ProductCount int `json:"product_count"`
}

// Get returns one category (id set) or the full list.
func (h *CategoryHandler) Get(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	if id, ok := queryID(c, "id"); ok {
		cat, err := h.Categories.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "Category not found."})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
		}
		n, err := h.Categories.CountProducts(ctx, id)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"data": categoryView{Category: cat, ProductCount: n}})
	}

	items, err := h.Categories.FindAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items, "count": len(items)})
}

// Post creates a category.
func (h *CategoryHandler) Post(c echo.Context) error {
	var in validate.CategoryInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Malformed JSON body."})
	}
	fields, err := validate.Category(in)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	exists, err := h.Categories.NameExists(ctx, fields.Name, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	if exists {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Category name already exists."})
	}

	cat := &model.Category{Name: fields.Name, Description: fields.Description}
	if err := h.Categories.Create(ctx, cat); err != nil {
		if errors.Is(err, repository.ErrCategoryNameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Category name already exists."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Category created.", "data": cat})
}

// Put updates the category named by ?id.
func (h *CategoryHandler) Put(c echo.Context) error {
	id, ok := queryID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id query parameter is required."})
	}

	var in validate.CategoryInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Malformed JSON body."})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if _, err := h.Categories.FindByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Category not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}

	fields, err := validate.Category(in)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}

	exists, err := h.Categories.NameExists(ctx, fields.Name, &id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	if exists {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Category name already exists on another category."})
	}

	ok, err = h.Categories.Update(ctx, id, fields.Name, fields.Description)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	if !ok {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Update failed — no rows affected."})
	}

	cat, err := h.Categories.FindByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Category updated.", "data": cat})
}

// Delete removes an empty category. A category that still has
// products attached is refused so equipment never loses its grouping.
func (h *CategoryHandler) Delete(c echo.Context) error {
	id, ok := queryID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id query parameter is required."})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if _, err := h.Categories.FindByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Category not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}

	n, err := h.Categories.CountProducts(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	if n > 0 {
		return c.JSON(http.StatusConflict, echo.Map{
			"error": fmt.Sprintf("Cannot delete category with %d product(s). Reassign or delete products first.", n),
		})
	}

	ok, err = h.Categories.Delete(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Category not found."})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Category deleted."})
}
