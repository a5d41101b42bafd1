package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/hotdesk/internal/model"
)

// DeskRepo encapsulates all database queries related to desks.
type DeskRepo struct {
	db *sql.DB
}

// NewDeskRepo constructs a DeskRepo with the provided DB handle.
func NewDeskRepo(db *sql.DB) *DeskRepo {
	return &DeskRepo{db: db}
}

const deskColumns = "id, name, created_at"

// Create inserts a new desk and populates its ID and CreatedAt.  A name
// that is already used yields ErrDuplicateDesk.
func (r *DeskRepo) Create(ctx context.Context, d *model.Desk) error {
	const q = "INSERT INTO desks (name) VALUES (?)"
	res, err := r.db.ExecContext(ctx, q, d.Name)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrDuplicateDesk
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	const sel = "SELECT " + deskColumns + " FROM desks WHERE id = ?"
	return r.db.QueryRowContext(ctx, sel, d.ID).Scan(&d.ID, &d.Name, &d.CreatedAt)
}

// GetByID retrieves a desk by its ID.  It returns ErrDeskNotFound if
// there is no matching row.
func (r *DeskRepo) GetByID(ctx context.Context, id uint64) (*model.Desk, error) {
	const q = "SELECT " + deskColumns + " FROM desks WHERE id = ?"
	var d model.Desk
	err := r.db.QueryRowContext(ctx, q, id).Scan(&d.ID, &d.Name, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeskNotFound
		}
		return nil, err
	}
	return &d, nil
}

// GetByName retrieves a desk by its unique name.
func (r *DeskRepo) GetByName(ctx context.Context, name string) (*model.Desk, error) {
	const q = "SELECT " + deskColumns + " FROM desks WHERE name = ?"
	var d model.Desk
	err := r.db.QueryRowContext(ctx, q, name).Scan(&d.ID, &d.Name, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeskNotFound
		}
		return nil, err
	}
	return &d, nil
}

// ListAll returns every desk ordered by name.  When no desks exist it
// returns an empty slice and nil error.
func (r *DeskRepo) ListAll(ctx context.Context) ([]model.Desk, error) {
	const q = "SELECT " + deskColumns + " FROM desks ORDER BY name ASC"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Desk, 0)
	for rows.Next() {
		var d model.Desk
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// EnsureByName returns the desk with the given name, creating it first
// when it does not exist.  The boolean reports whether a row was inserted.
func (r *DeskRepo) EnsureByName(ctx context.Context, name string) (*model.Desk, bool, error) {
	const q = "INSERT IGNORE INTO desks (name) VALUES (?)"
	res, err := r.db.ExecContext(ctx, q, name)
	if err != nil {
		return nil, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	d, err := r.GetByName(ctx, name)
	if err != nil {
		return nil, false, err
	}
	return d, n > 0, nil
}
