package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/equipment-inventory/internal/model"
)

// CartRepo encapsulates all database queries related to the `cart`
// table. Every method is scoped to a user id so one client can never
// touch another client's rows.
type CartRepo struct {
	db *sql.DB
}

func NewCartRepo(db *sql.DB) *CartRepo { return &CartRepo{db: db} }

// AddToCart merges a product into the user's cart. The availability
// check and the insert-or-increment run inside one transaction with
// the product row locked, so two concurrent adds cannot both observe
// "no existing row" and duplicate it; the unique (user_id, product_id)
// index backs this up and ON DUPLICATE KEY UPDATE turns the second
// insert into an increment.
//
// Returns ErrNotFound when the product does not exist and
// ErrNotAvailable when its status is not Available.
func (r *CartRepo) AddToCart(ctx context.Context, userID, productID uint64, quantity int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var status string
	err = tx.QueryRowContext(ctx,
		"SELECT status FROM products WHERE id = ? FOR UPDATE", productID).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrNotFound
		}
		return err
	}
	if status != model.StatusAvailable {
		err = ErrNotAvailable
		return err
	}

	const q = `INSERT INTO cart (user_id, product_id, quantity)
	           VALUES (?, ?, ?)
	           ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)`
	if _, err = tx.ExecContext(ctx, q, userID, productID, quantity); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateQuantity sets the quantity of one cart row, provided it
// belongs to the user. Returns true if a row was affected.
func (r *CartRepo) UpdateQuantity(ctx context.Context, cartID, userID uint64, quantity int) (bool, error) {
	const q = "UPDATE cart SET quantity = ? WHERE id = ? AND user_id = ?"
	res, err := r.db.ExecContext(ctx, q, quantity, cartID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// RemoveFromCart deletes one cart row, provided it belongs to the
// user. Returns true if a row was removed.
func (r *CartRepo) RemoveFromCart(ctx context.Context, cartID, userID uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM cart WHERE id = ? AND user_id = ?", cartID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Items returns the user's cart joined with product details, category
// name and the product's primary image path, newest first.
func (r *CartRepo) Items(ctx context.Context, userID uint64) ([]*model.CartItem, error) {
	const q = `SELECT c.id, c.quantity, c.added_at,
	                  p.id, p.name, p.brand, p.serial_number, p.status,
	                  cat.name,
	                  (SELECT image_path FROM product_images
	                    WHERE product_id = p.id AND is_primary = 1
	                    LIMIT 1)
	             FROM cart c
	             JOIN products p ON p.id = c.product_id
	             JOIN categories cat ON cat.id = p.category_id
	            WHERE c.user_id = ?
	            ORDER BY c.added_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.CartItem{}
	for rows.Next() {
		item := new(model.CartItem)
		var primary sql.NullString
		if err := rows.Scan(&item.CartID, &item.Quantity, &item.AddedAt,
			&item.ProductID, &item.Name, &item.Brand, &item.SerialNumber, &item.Status,
			&item.CategoryName, &primary); err != nil {
			return nil, err
		}
		if primary.Valid {
			item.PrimaryImage = &primary.String
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the summed quantity across the user's cart rows.
func (r *CartRepo) Count(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(quantity), 0) FROM cart WHERE user_id = ?", userID).Scan(&n)
	return n, err
}

// Clear removes every cart row of the user.
func (r *CartRepo) Clear(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM cart WHERE user_id = ?", userID)
	return err
}

// IsInCart reports whether the user already has the product in their
// cart.
func (r *CartRepo) IsInCart(ctx context.Context, userID, productID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM cart WHERE user_id = ? AND product_id = ? LIMIT 1", userID, productID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
