package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/equipment-inventory/internal/config"
	"github.com/iliyamo/equipment-inventory/internal/repository"
	"github.com/iliyamo/equipment-inventory/internal/utils"
)

// allowedImageTypes maps the sniffed MIME type to the extension we
// store under. The client-supplied filename is never trusted for the
// stored name, but its extension is still checked against
// allowedImageExts so type and extension are validated independently.
var allowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

var allowedImageExts = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"webp": true,
}

// ImageHandler manages product photos: multipart upload, primary
// selection, and deletion. Admin-only, enforced by the route table.
type ImageHandler struct {
	Cfg       config.Config
	Images    *repository.ProductImageRepo
	Equipment *repository.EquipmentRepo
}

func NewImageHandler(cfg config.Config, i *repository.ProductImageRepo, e *repository.EquipmentRepo) *ImageHandler {
	return &ImageHandler{Cfg: cfg, Images: i, Equipment: e}
}

// Get lists the images of one product, or with action=primary returns
// just its primary image.
func (h *ImageHandler) Get(c echo.Context) error {
	productID, ok := queryID(c, "product_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id query parameter is required."})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if c.QueryParam("action") == "primary" {
		img, err := h.Images.FindPrimaryByProductID(ctx, productID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "No primary image for this product."})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"data": img})
	}

	imgs, err := h.Images.FindByProductID(ctx, productID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": imgs, "count": len(imgs)})
}

// Post handles POST /api/images?action=upload with a multipart form:
// product_id, images[] files, optional is_primary=true for the first
// file. Each file is size-checked and MIME-sniffed before it touches
// disk.
func (h *ImageHandler) Post(c echo.Context) error {
	if c.QueryParam("action") != "upload" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Route not found."})
	}

	productID, ok := queryID(c, "product_id")
	if !ok {
		// Accept the product id in the form body too.
		raw := c.FormValue("product_id")
		if raw == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id is required."})
		}
		var err error
		productID, err = parseID(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id must be a positive integer."})
		}
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if _, err := h.Equipment.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Malformed multipart form."})
	}
	files := form.File["images"]
	if len(files) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "No images uploaded."})
	}

	if err := os.MkdirAll(h.Cfg.UploadDir, 0o755); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error: could not create upload directory."})
	}

	wantPrimary := c.FormValue("is_primary") == "true"

	var (
		uploaded []echo.Map
		warnings []string
	)
	for i, fh := range files {
		path, uerr := h.saveFile(fh)
		if uerr != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", fh.Filename, uerr))
			continue
		}
		isPrimary := wantPrimary && i == 0
		imgID, derr := h.Images.Create(ctx, productID, path, isPrimary)
		if derr != nil {
			_ = os.Remove(filepath.Join(h.Cfg.UploadDir, filepath.Base(path)))
			warnings = append(warnings, fmt.Sprintf("%s: database error", fh.Filename))
			continue
		}
		uploaded = append(uploaded, echo.Map{
			"id":         imgID,
			"image_path": path,
			"is_primary": isPrimary,
		})
	}

	if len(uploaded) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "All uploads failed: " + strings.Join(warnings, "; ")})
	}
	total, terr := h.Images.CountByProductID(ctx, productID)
	if terr != nil {
		total = len(uploaded)
	}
	resp := echo.Map{
		"message": fmt.Sprintf("%d image(s) uploaded successfully.", len(uploaded)),
		"data":    uploaded,
		"total":   total,
	}
	if len(warnings) > 0 {
		resp["warnings"] = warnings
	}
	return c.JSON(http.StatusCreated, resp)
}

// Put handles PUT /api/images?id=N&action=primary.
func (h *ImageHandler) Put(c echo.Context) error {
	if c.QueryParam("action") != "primary" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Route not found."})
	}
	id, ok := queryID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id query parameter is required."})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Images.SetPrimary(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Image not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Image set as primary."})
}

// Delete removes one image row and its file.
func (h *ImageHandler) Delete(c echo.Context) error {
	id, ok := queryID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id query parameter is required."})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	path, err := h.Images.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Image not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error: " + err.Error()})
	}
	_ = os.Remove(filepath.Join(h.Cfg.UploadDir, filepath.Base(path)))
	return c.JSON(http.StatusOK, echo.Map{"message": "Image deleted successfully."})
}

// saveFile validates one multipart file and writes it into UploadDir
// under a generated name. It returns the web path stored in the DB.
func (h *ImageHandler) saveFile(fh *multipart.FileHeader) (string, error) {
	if fh.Size > h.Cfg.UploadMaxBytes {
		return "", fmt.Errorf("file too large (max %d bytes)", h.Cfg.UploadMaxBytes)
	}
	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fh.Filename)), "."); !allowedImageExts[ext] {
		return "", errors.New("invalid file extension (jpg, jpeg, png, webp only)")
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("could not open upload: %w", err)
	}
	defer src.Close()

	// Sniff the real content type from the first 512 bytes; the
	// declared Content-Type header is attacker-controlled.
	head := make([]byte, 512)
	n, err := src.Read(head)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("could not read upload: %w", err)
	}
	ext, ok := allowedImageTypes[http.DetectContentType(head[:n])]
	if !ok {
		return "", errors.New("unsupported file type (jpeg, png, webp only)")
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("could not rewind upload: %w", err)
	}

	suffix, err := utils.RandomHex(8)
	if err != nil {
		return "", fmt.Errorf("could not generate filename: %w", err)
	}
	name := time.Now().UTC().Format("20060102_150405") + "_" + suffix + "." + ext
	dstPath := filepath.Join(h.Cfg.UploadDir, name)
	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("could not create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("could not write file: %w", err)
	}
	return "/uploads/products/" + name, nil
}
