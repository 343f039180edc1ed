package model

import "time"

// ProductImage mirrors the `product_images` table. At most one image
// per product has IsPrimary set; the repository flips the flag
// transactionally.
type ProductImage struct {
	ID        uint64    `json:"id"`
	ProductID uint64    `json:"product_id"`
	ImagePath string    `json:"image_path"`
	IsPrimary bool      `json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
}
