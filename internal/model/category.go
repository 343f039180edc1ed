package model

import "time"

// Category mirrors the `categories` table. Each piece of equipment
// references exactly one category; a category with products cannot be
// deleted.
type Category struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
