package objects

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) List(ctx context.Context) ([]Object, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, address, status, created_at
		FROM client_objects ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Object
	for rows.Next() {
		var o Object
		if err := rows.Scan(&o.ID, &o.Name, &o.Address, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Object, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, address, status, created_at
		FROM client_objects WHERE id = $1
	`, id)
	var o Object
	if err := row.Scan(&o.ID, &o.Name, &o.Address, &o.Status, &o.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *Repo) Create(ctx context.Context, name, address string, status Status) (*Object, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO client_objects (name, address, status)
		VALUES ($1,$2,$3)
		RETURNING id, name, address, status, created_at
	`, name, address, string(status))
	var o Object
	if err := row.Scan(&o.ID, &o.Name, &o.Address, &o.Status, &o.CreatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repo) Update(ctx context.Context, id int64, name, address *string, status *Status) (*Object, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE client_objects
		SET name    = COALESCE($2, name),
		    address = COALESCE($3, address),
		    status  = COALESCE($4, status)
		WHERE id = $1
		RETURNING id, name, address, status, created_at
	`, id, name, address, (*string)(status))
	var o Object
	if err := row.Scan(&o.ID, &o.Name, &o.Address, &o.Status, &o.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM client_objects WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
