package model

import "time"

// CartItem is a row of the `cart` table joined with the product it
// points at. The (user_id, product_id) pair is unique; adding a
// product that is already in the cart increments Quantity instead of
// inserting a second row.
type CartItem struct {
	CartID       uint64    `json:"cart_id"`
	ProductID    uint64    `json:"product_id"`
	Name         string    `json:"name"`
	Brand        string    `json:"brand"`
	SerialNumber string    `json:"serial_number"`
	Status       string    `json:"status"`
	CategoryName string    `json:"category_name"`
	PrimaryImage *string   `json:"primary_image"`
	Quantity     int       `json:"quantity"`
	AddedAt      time.Time `json:"added_at"`
}
