package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/equipment-inventory/internal/model"
)

// ProductImageRepo encapsulates all database queries related to
// product images. The single-primary invariant (at most one
// is_primary row per product) is enforced here: every write that sets
// a primary clears the others inside the same transaction, so a
// concurrent read never observes two primaries.
type ProductImageRepo struct {
	db *sql.DB
}

func NewProductImageRepo(db *sql.DB) *ProductImageRepo { return &ProductImageRepo{db: db} }

const imageCols = "id, product_id, image_path, is_primary, created_at"

// FindByProductID returns all images of a product, primary first.
func (r *ProductImageRepo) FindByProductID(ctx context.Context, productID uint64) ([]*model.ProductImage, error) {
	const q = "SELECT " + imageCols + ` FROM product_images
	           WHERE product_id = ? ORDER BY is_primary DESC, created_at ASC`
	rows, err := r.db.QueryContext(ctx, q, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.ProductImage{}
	for rows.Next() {
		img := new(model.ProductImage)
		if err := rows.Scan(&img.ID, &img.ProductID, &img.ImagePath, &img.IsPrimary, &img.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// FindByID fetches a single image by primary key.
func (r *ProductImageRepo) FindByID(ctx context.Context, id uint64) (*model.ProductImage, error) {
	const q = "SELECT " + imageCols + " FROM product_images WHERE id = ? LIMIT 1"
	var img model.ProductImage
	err := r.db.QueryRowContext(ctx, q, id).Scan(&img.ID, &img.ProductID, &img.ImagePath, &img.IsPrimary, &img.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &img, nil
}

// FindPrimaryByProductID returns the primary image of a product, or
// ErrNotFound when none is flagged.
func (r *ProductImageRepo) FindPrimaryByProductID(ctx context.Context, productID uint64) (*model.ProductImage, error) {
	const q = "SELECT " + imageCols + " FROM product_images WHERE product_id = ? AND is_primary = 1 LIMIT 1"
	var img model.ProductImage
	err := r.db.QueryRowContext(ctx, q, productID).Scan(&img.ID, &img.ProductID, &img.ImagePath, &img.IsPrimary, &img.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &img, nil
}

// Create inserts a new image row. When isPrimary is set, the previous
// primary of the product is cleared in the same transaction.
func (r *ProductImageRepo) Create(ctx context.Context, productID uint64, imagePath string, isPrimary bool) (uint64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if isPrimary {
		if _, err = tx.ExecContext(ctx,
			"UPDATE product_images SET is_primary = 0 WHERE product_id = ?", productID); err != nil {
			return 0, err
		}
	}
	var res sql.Result
	res, err = tx.ExecContext(ctx,
		"INSERT INTO product_images (product_id, image_path, is_primary) VALUES (?, ?, ?)",
		productID, imagePath, isPrimary)
	if err != nil {
		return 0, err
	}
	var id int64
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// SetPrimary flags one image as primary and clears the flag on every
// sibling, atomically. Returns ErrNotFound for an unknown image id.
func (r *ProductImageRepo) SetPrimary(ctx context.Context, imageID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var productID uint64
	err = tx.QueryRowContext(ctx,
		"SELECT product_id FROM product_images WHERE id = ?", imageID).Scan(&productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrNotFound
		}
		return err
	}
	if _, err = tx.ExecContext(ctx,
		"UPDATE product_images SET is_primary = 0 WHERE product_id = ?", productID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		"UPDATE product_images SET is_primary = 1 WHERE id = ?", imageID); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes an image row and returns its stored path so the
// caller can unlink the file. Returns ErrNotFound for an unknown id.
func (r *ProductImageRepo) Delete(ctx context.Context, id uint64) (string, error) {
	img, err := r.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM product_images WHERE id = ?", id)
	if err != nil {
		return "", err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return "", ErrNotFound
	}
	return img.ImagePath, nil
}

// DeleteByProductID removes every image row of a product and returns
// the removed paths for file cleanup. Used by the equipment delete
// cascade.
func (r *ProductImageRepo) DeleteByProductID(ctx context.Context, productID uint64) ([]string, error) {
	images, err := r.FindByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, nil
	}
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM product_images WHERE product_id = ?", productID); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(images))
	for _, img := range images {
		paths = append(paths, img.ImagePath)
	}
	return paths, nil
}

// CountByProductID reports how many images a product has.
func (r *ProductImageRepo) CountByProductID(ctx context.Context, productID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM product_images WHERE product_id = ?", productID).Scan(&n)
	return n, err
}
