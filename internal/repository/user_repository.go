package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/equipment-inventory/internal/model"
)

// ErrUsernameExists is returned when an insert or update collides with
// the unique index on users.username.
var ErrUsernameExists = errors.New("username already exists")

// UserRepo encapsulates all database queries related to users.
type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// UserPatch lists the columns an update may touch. Nil fields are left
// alone, which is how update-mode validation expresses "field absent".
type UserPatch struct {
	Username     *string
	PasswordHash *string
	Role         *string
	FullName     *string
	Email        *string
}

const userCols = "id, username, password_hash, role, full_name, email, created_at"

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.FullName, &u.Email, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByUsername fetches a user by exact username, including the
// password hash for login verification.
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = "SELECT " + userCols + " FROM users WHERE username = ? LIMIT 1"
	return scanUser(r.db.QueryRowContext(ctx, q, username))
}

// FindByID fetches a user by id.
func (r *UserRepo) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	const q = "SELECT " + userCols + " FROM users WHERE id = ? LIMIT 1"
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// FindAll returns every user, newest first. Password hashes are never
// selected here.
func (r *UserRepo) FindAll(ctx context.Context) ([]*model.User, error) {
	const q = `SELECT id, username, role, full_name, email, created_at
	           FROM users ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.User{}
	for rows.Next() {
		u := new(model.User)
		if err := rows.Scan(&u.ID, &u.Username, &u.Role, &u.FullName, &u.Email, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// FindAllClients returns client-role users ordered by username, used
// for the assignment dropdown.
func (r *UserRepo) FindAllClients(ctx context.Context) ([]*model.User, error) {
	const q = `SELECT id, username, role, full_name, email, created_at
	           FROM users WHERE role = ? ORDER BY username ASC`
	rows, err := r.db.QueryContext(ctx, q, model.RoleClient)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.User{}
	for rows.Next() {
		u := new(model.User)
		if err := rows.Scan(&u.ID, &u.Username, &u.Role, &u.FullName, &u.Email, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a user (password already hashed by the caller) and
// populates the generated ID and created_at.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const qInsert = `INSERT INTO users (username, password_hash, role, full_name, email)
	                 VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, u.Username, u.PasswordHash, u.Role, u.FullName, u.Email)
	if err != nil {
		if isDuplicate(err) {
			return ErrUsernameExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)

	const qSelect = "SELECT created_at FROM users WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, u.ID).Scan(&u.CreatedAt)
}

// Update applies the non-nil fields of the patch. It returns false
// when no row was affected or the patch is empty.
func (r *UserRepo) Update(ctx context.Context, id uint64, p UserPatch) (bool, error) {
	var set []string
	var args []any
	if p.Username != nil {
		set, args = append(set, "username = ?"), append(args, *p.Username)
	}
	if p.PasswordHash != nil {
		set, args = append(set, "password_hash = ?"), append(args, *p.PasswordHash)
	}
	if p.Role != nil {
		set, args = append(set, "role = ?"), append(args, *p.Role)
	}
	if p.FullName != nil {
		set, args = append(set, "full_name = ?"), append(args, *p.FullName)
	}
	if p.Email != nil {
		set, args = append(set, "email = ?"), append(args, *p.Email)
	}
	if len(set) == 0 {
		return false, nil
	}
	args = append(args, id)

	q := "UPDATE users SET " + strings.Join(set, ", ") + " WHERE id = ?"
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		if isDuplicate(err) {
			return false, ErrUsernameExists
		}
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Delete removes a user by id. Returns true if a row was removed.
func (r *UserRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// UsernameExists probes for a username collision, optionally excluding
// one id (the row being updated).
func (r *UserRepo) UsernameExists(ctx context.Context, username string, excludeID *uint64) (bool, error) {
	q := "SELECT 1 FROM users WHERE username = ?"
	args := []any{username}
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
