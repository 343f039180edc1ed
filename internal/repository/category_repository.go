package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/equipment-inventory/internal/model"
)

// ErrCategoryNameExists is returned when an insert or update collides
// with the unique index on categories.name.
var ErrCategoryNameExists = errors.New("category name already exists")

// CategoryRepo encapsulates all database queries related to categories.
type CategoryRepo struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{db: db} }

const categoryCols = "id, name, description, created_at, updated_at"

func scanCategory(row *sql.Row) (*model.Category, error) {
	var c model.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindAll returns all categories ordered by name.
func (r *CategoryRepo) FindAll(ctx context.Context) ([]*model.Category, error) {
	const q = "SELECT " + categoryCols + " FROM categories ORDER BY name ASC"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Category{}
	for rows.Next() {
		c := new(model.Category)
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// FindByID fetches a category by primary key.
func (r *CategoryRepo) FindByID(ctx context.Context, id uint64) (*model.Category, error) {
	const q = "SELECT " + categoryCols + " FROM categories WHERE id = ? LIMIT 1"
	return scanCategory(r.db.QueryRowContext(ctx, q, id))
}

// Create inserts a new category. On success the ID and timestamp
// fields are populated from a follow-up SELECT.
func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	const qInsert = "INSERT INTO categories (name, description) VALUES (?, ?)"
	res, err := r.db.ExecContext(ctx, qInsert, c.Name, c.Description)
	if err != nil {
		if isDuplicate(err) {
			return ErrCategoryNameExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)

	const qSelect = "SELECT created_at, updated_at FROM categories WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, c.ID).Scan(&c.CreatedAt, &c.UpdatedAt)
}

// Update rewrites name and description. Returns true if a row was
// affected.
func (r *CategoryRepo) Update(ctx context.Context, id uint64, name, description string) (bool, error) {
	const q = `UPDATE categories
	           SET name = ?, description = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, name, description, id)
	if err != nil {
		if isDuplicate(err) {
			return false, ErrCategoryNameExists
		}
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Delete removes a category by id. Callers must check CountProducts
// first; the FK constraint backs that check up at the store level.
func (r *CategoryRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// NameExists probes for a name collision, optionally excluding one id.
func (r *CategoryRepo) NameExists(ctx context.Context, name string, excludeID *uint64) (bool, error) {
	q := "SELECT 1 FROM categories WHERE name = ?"
	args := []any{name}
	if excludeID != nil {
		q += " AND id != ?"
		args = append(args, *excludeID)
	}
	var one int
	err := r.db.QueryRowContext(ctx, q+" LIMIT 1", args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CountProducts reports how many products reference the category.
func (r *CategoryRepo) CountProducts(ctx context.Context, id uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products WHERE category_id = ?", id).Scan(&n)
	return n, err
}
