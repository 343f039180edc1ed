package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/equipment-inventory/internal/model"
)

// ErrSerialExists is returned when an insert or update collides with
// the unique index on products.serial_number.
var ErrSerialExists = errors.New("serial_number already exists")

// EquipmentRepo encapsulates all database queries related to the
// `products` table. Every read joins the category name in so handlers
// never issue a second lookup per row.
type EquipmentRepo struct {
	db *sql.DB
}

func NewEquipmentRepo(db *sql.DB) *EquipmentRepo { return &EquipmentRepo{db: db} }

const equipmentSelect = `SELECT p.id, p.name, p.category_id, c.name, p.brand, p.serial_number,
	       p.status, DATE_FORMAT(p.purchase_date, '%Y-%m-%d'), p.assigned_to, p.notes,
	       p.created_at, p.updated_at
	  FROM products p
	  JOIN categories c ON c.id = p.category_id`

func scanEquipment(s interface{ Scan(...any) error }) (*model.Equipment, error) {
	var e model.Equipment
	var assigned sql.NullInt64
	err := s.Scan(&e.ID, &e.Name, &e.CategoryID, &e.CategoryName, &e.Brand, &e.SerialNumber,
		&e.Status, &e.PurchaseDate, &assigned, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if assigned.Valid {
		v := uint64(assigned.Int64)
		e.AssignedTo = &v
	}
	return &e, nil
}

func (r *EquipmentRepo) queryMany(ctx context.Context, q string, args ...any) ([]*model.Equipment, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Equipment{}
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// FindAll returns every item, newest first.
func (r *EquipmentRepo) FindAll(ctx context.Context) ([]*model.Equipment, error) {
	return r.queryMany(ctx, equipmentSelect+" ORDER BY p.created_at DESC")
}

// FindByID fetches a single item by primary key.
func (r *EquipmentRepo) FindByID(ctx context.Context, id uint64) (*model.Equipment, error) {
	return scanEquipment(r.db.QueryRowContext(ctx, equipmentSelect+" WHERE p.id = ? LIMIT 1", id))
}

// FindByAssignedTo returns the items assigned to one user, newest
// first. This is the only listing a client-role user ever sees.
func (r *EquipmentRepo) FindByAssignedTo(ctx context.Context, userID uint64) ([]*model.Equipment, error) {
	return r.queryMany(ctx, equipmentSelect+" WHERE p.assigned_to = ? ORDER BY p.created_at DESC", userID)
}

// FindByCategoryID returns the items in one category, newest first.
func (r *EquipmentRepo) FindByCategoryID(ctx context.Context, categoryID uint64) ([]*model.Equipment, error) {
	return r.queryMany(ctx, equipmentSelect+" WHERE p.category_id = ? ORDER BY p.created_at DESC", categoryID)
}

// Create inserts a new item and reloads the stored row so the caller
// gets timestamps and the joined category name back.
func (r *EquipmentRepo) Create(ctx context.Context, e *model.Equipment) error {
	const q = `INSERT INTO products
	           (name, category_id, brand, serial_number, status, purchase_date, assigned_to, notes)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		e.Name, e.CategoryID, e.Brand, e.SerialNumber, e.Status, e.PurchaseDate, assignedArg(e.AssignedTo), e.Notes)
	if err != nil {
		if isDuplicate(err) {
			return ErrSerialExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.FindByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*e = *stored
	return nil
}

// Update rewrites every mutable column. Returns true if a row was
// affected.
func (r *EquipmentRepo) Update(ctx context.Context, id uint64, e *model.Equipment) (bool, error) {
	const q = `UPDATE products
	           SET name = ?, category_id = ?, brand = ?, serial_number = ?,
	               status = ?, purchase_date = ?, assigned_to = ?, notes = ?,
	               updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		e.Name, e.CategoryID, e.Brand, e.SerialNumber, e.Status, e.PurchaseDate, assignedArg(e.AssignedTo), e.Notes, id)
	if err != nil {
		if isDuplicate(err) {
			return false, ErrSerialExists
		}
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Delete removes an item by id. Image rows and files are the handler's
// responsibility (they are removed before the product row).
func (r *EquipmentRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// SerialExists probes for a serial collision, optionally excluding one
// id. Case-sensitive exact match via the BINARY column collation.
func (r *EquipmentRepo) SerialExists(ctx context.Context, serial string, excludeID *uint64) (bool, error) {
	q := "SELECT 1 FROM products WHERE serial_number = ?"
	args := []any{serial}
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

// Statistics aggregates dashboard counts: overall total, per status
// (every known status present, zero-filled) and per category
// (LEFT JOIN keeps empty categories in the result).
func (r *EquipmentRepo) Statistics(ctx context.Context) (*model.Statistics, error) {
	stats := &model.Statistics{ByCategory: []model.CategoryCount{}}

	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&stats.Total); err != nil {
		return nil, err
	}

	byStatus := make(map[string]int, len(model.Statuses))
	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM products GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		byStatus[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, s := range model.Statuses {
		stats.ByStatus = append(stats.ByStatus, model.StatusCount{Status: s, Count: byStatus[s]})
	}

	const qCat = `SELECT c.id, c.name, COUNT(p.id)
	              FROM categories c
	              LEFT JOIN products p ON p.category_id = c.id
	              GROUP BY c.id, c.name
	              ORDER BY c.name ASC`
	catRows, err := r.db.QueryContext(ctx, qCat)
	if err != nil {
		return nil, err
	}
	defer catRows.Close()
	for catRows.Next() {
		var cc model.CategoryCount
		if err := catRows.Scan(&cc.CategoryID, &cc.Name, &cc.Count); err != nil {
			return nil, err
		}
		stats.ByCategory = append(stats.ByCategory, cc)
	}
	if err := catRows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

// assignedArg converts the optional user reference into a nullable
// SQL argument.
func assignedArg(p *uint64) any {
	if p == nil {
		return nil
	}
	return *p
}
