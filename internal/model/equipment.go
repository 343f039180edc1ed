package model

import "time"

// Equipment status values stored in products.status.
const (
	StatusAvailable   = "Available"
	StatusInUse       = "In Use"
	StatusMaintenance = "Under Maintenance"
	StatusRetired     = "Retired"
)

// Statuses lists every accepted status value in display order. The
// validator checks enum membership against this list and the
// statistics query zero-fills missing statuses from it.
var Statuses = []string{StatusAvailable, StatusInUse, StatusMaintenance, StatusRetired}

// Equipment mirrors the `products` table. CategoryName is joined in by
// the repository for list/detail responses, Images is attached by the
// handlers; neither is a column. PurchaseDate is kept as a plain
// YYYY-MM-DD string because that is the wire format on both sides.
type Equipment struct {
	ID           uint64         `json:"id"`
	Name         string         `json:"name"`
	CategoryID   uint64         `json:"category_id"`
	CategoryName string         `json:"category_name"`
	Brand        string         `json:"brand"`
	SerialNumber string         `json:"serial_number"`
	Status       string         `json:"status"`
	PurchaseDate string         `json:"purchase_date"`
	AssignedTo   *uint64        `json:"assigned_to"`
	Notes        string         `json:"notes"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Images       []ProductImage `json:"images"`
}

// Statistics aggregates inventory counts for the dashboard. ByCategory
// includes categories with zero products.
type Statistics struct {
	Total      int             `json:"total"`
	ByStatus   []StatusCount   `json:"by_status"`
	ByCategory []CategoryCount `json:"by_category"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type CategoryCount struct {
	CategoryID uint64 `json:"category_id"`
	Name       string `json:"name"`
	Count      int    `json:"count"`
}
