package handler

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/equipment-inventory/internal/model"
	"github.com/iliyamo/equipment-inventory/internal/queue"
	"github.com/iliyamo/equipment-inventory/internal/repository"
	queue_publisher "github.com/iliyamo/equipment-inventory/internal/service"
	"github.com/iliyamo/equipment-inventory/internal/validate"
)

// EquipmentHandler serves the inventory itself. Admins see everything;
// clients only see items assigned to them.
type EquipmentHandler struct {
	Equipment *repository.EquipmentRepo
	Images    *repository.ProductImageRepo
	UploadDir string
}

func NewEquipmentHandler(e *repository.EquipmentRepo, i *repository.ProductImageRepo, uploadDir string) *EquipmentHandler {
	return &EquipmentHandler{Equipment: e, Images: i, UploadDir: uploadDir}
}

// Get dispatches on the query string: action=statistics, id=N,
// category_id=N, or the plain list.
func (h *EquipmentHandler) Get(c echo.Context) error {
	if c.QueryParam("action") == "statistics" {
		return h.statistics(c)
	}
	if id, ok := queryID(c, "id"); ok {
		return h.show(c, id)
	}
	if catID, ok := queryID(c, "category_id"); ok {
		return h.byCategory(c, catID)
	}
	return h.list(c)
}

func (h *EquipmentHandler) list(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	var (
		items []*model.Equipment
		err   error
	)
	if isAdmin(c) {
		items, err = h.Equipment.FindAll(ctx)
	} else {
		uid, uerr := getUserID(c)
		if uerr != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorised — please log in."})
		}
		items, err = h.Equipment.FindByAssignedTo(ctx, uid)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	if err := h.attachImages(c, items); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items, "count": len(items)})
}

func (h *EquipmentHandler) show(c echo.Context, id uint64) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	item, err := h.Equipment.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Equipment not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	if !isAdmin(c) {
		uid, uerr := getUserID(c)
		if uerr != nil || item.AssignedTo == nil || *item.AssignedTo != uid {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Forbidden — you do not have access to this product."})
		}
	}
	if err := h.attachImages(c, []*model.Equipment{item}); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": item})
}

func (h *EquipmentHandler) byCategory(c echo.Context, categoryID uint64) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	items, err := h.Equipment.FindByCategoryID(ctx, categoryID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	if !isAdmin(c) {
		uid, uerr := getUserID(c)
		if uerr != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorised — please log in."})
		}
		mine := items[:0]
		for _, it := range items {
			if it.AssignedTo != nil && *it.AssignedTo == uid {
				mine = append(mine, it)
			}
		}
		items = mine
	}
	if err := h.attachImages(c, items); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items, "count": len(items)})
}

func (h *EquipmentHandler) statistics(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Forbidden — insufficient role."})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	stats, err := h.Equipment.Statistics(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": stats})
}

// Post creates an item. Serial numbers are unique across the whole
// inventory, checked up front and again via the DB constraint.
func (h *EquipmentHandler) Post(c echo.Context) error {
	var in validate.EquipmentInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Malformed JSON body."})
	}
	fields, err := validate.Equipment(in)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	exists, err := h.Equipment.SerialExists(ctx, fields.SerialNumber, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	if exists {
		return c.JSON(http.StatusConflict, echo.Map{"error": "serial_number already exists."})
	}

	item := &model.Equipment{
		Name:         fields.Name,
		CategoryID:   fields.CategoryID,
		Brand:        fields.Brand,
		SerialNumber: fields.SerialNumber,
		Status:       fields.Status,
		PurchaseDate: fields.PurchaseDate,
		AssignedTo:   fields.AssignedTo,
		Notes:        fields.Notes,
	}
	if err := h.Equipment.Create(ctx, item); err != nil {
		if errors.Is(err, repository.ErrSerialExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "serial_number already exists."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	item.Images = []model.ProductImage{}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Equipment created.", "data": item})
}

// Put rewrites the item named by ?id. A change of assignee publishes
// an assignment event for downstream consumers.
func (h *EquipmentHandler) Put(c echo.Context) error {
	id, ok := queryID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id query parameter is required."})
	}

	var in validate.EquipmentInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Malformed JSON body."})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	existing, err := h.Equipment.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Equipment not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}

	fields, err := validate.Equipment(in)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}

	exists, err := h.Equipment.SerialExists(ctx, fields.SerialNumber, &id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	if exists {
		return c.JSON(http.StatusConflict, echo.Map{"error": "serial_number already exists on another item."})
	}

	patch := &model.Equipment{
		Name:         fields.Name,
		CategoryID:   fields.CategoryID,
		Brand:        fields.Brand,
		SerialNumber: fields.SerialNumber,
		Status:       fields.Status,
		PurchaseDate: fields.PurchaseDate,
		AssignedTo:   fields.AssignedTo,
		Notes:        fields.Notes,
	}
	ok, err = h.Equipment.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrSerialExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "serial_number already exists on another item."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	if !ok {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Update failed — no rows affected."})
	}

	item, err := h.Equipment.FindByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	if err := h.attachImages(c, []*model.Equipment{item}); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}

	if newlyAssigned(existing.AssignedTo, fields.AssignedTo) {
		adminID, _ := getUserID(c)
		// Best effort: a broker outage must not fail the update.
		_ = queue_publisher.PublishEquipmentAssigned(ctx, queue.EquipmentAssignedEvent{
			EquipmentID:  item.ID,
			Name:         item.Name,
			SerialNumber: item.SerialNumber,
			CategoryName: item.CategoryName,
			AssignedTo:   *fields.AssignedTo,
			AssignedBy:   adminID,
			AssignedAt:   time.Now().UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Equipment updated.", "data": item})
}

// Delete removes the item, its image rows, and the files on disk.
func (h *EquipmentHandler) Delete(c echo.Context) error {
	id, ok := queryID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id query parameter is required."})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	item, err := h.Equipment.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Equipment not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}

	paths, err := h.Images.DeleteByProductID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	for _, p := range paths {
		// Missing files are fine; the DB row is authoritative.
		_ = os.Remove(filepath.Join(h.UploadDir, filepath.Base(p)))
	}

	ok, err = h.Equipment.Delete(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	if !ok {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Delete failed."})
	}

	adminID, _ := getUserID(c)
	_ = queue_publisher.PublishEquipmentDeleted(ctx, queue.EquipmentDeletedEvent{
		EquipmentID:  item.ID,
		Name:         item.Name,
		SerialNumber: item.SerialNumber,
		ImagePaths:   paths,
		DeletedBy:    adminID,
		DeletedAt:    time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "Equipment deleted."})
}

// attachImages fills Images for each item so list responses never
// carry a null slice.
func (h *EquipmentHandler) attachImages(c echo.Context, items []*model.Equipment) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	for _, it := range items {
		imgs, err := h.Images.FindByProductID(ctx, it.ID)
		if err != nil {
			return err
		}
		it.Images = make([]model.ProductImage, 0, len(imgs))
		for _, img := range imgs {
			it.Images = append(it.Images, *img)
		}
	}
	return nil
}

// newlyAssigned reports whether the update introduces a different
// (non-nil) assignee than before.
func newlyAssigned(before, after *uint64) bool {
	if after == nil {
		return false
	}
	return before == nil || *before != *after
}
