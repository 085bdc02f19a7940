package prices

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) List(ctx context.Context) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, category, name, price, coefficient, created_at
		FROM price_items ORDER BY category, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Category, &it.Name, &it.Price, &it.Coefficient, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, category, name, price, coefficient, created_at
		FROM price_items WHERE id = $1
	`, id)
	var it Item
	if err := row.Scan(&it.ID, &it.Category, &it.Name, &it.Price, &it.Coefficient, &it.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &it, nil
}

// NamesByIDs — один запрос для резолва названий позиций в отчёте.
// Удалённые позиции в карте отсутствуют.
func (r *Repo) NamesByIDs(ctx context.Context, ids []int64) (map[int64]string, error) {
	out := map[int64]string{}
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM price_items WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = name
	}
	return out, rows.Err()
}

func (r *Repo) Create(ctx context.Context, category, name string, price int64, coefficient float64) (*Item, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO price_items (category, name, price, coefficient)
		VALUES ($1,$2,$3,$4)
		RETURNING id, category, name, price, coefficient, created_at
	`, category, name, price, coefficient)
	var it Item
	if err := row.Scan(&it.ID, &it.Category, &it.Name, &it.Price, &it.Coefficient, &it.CreatedAt); err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *Repo) Update(ctx context.Context, id int64, category, name *string, price *int64, coefficient *float64) (*Item, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE price_items
		SET category    = COALESCE($2, category),
		    name        = COALESCE($3, name),
		    price       = COALESCE($4, price),
		    coefficient = COALESCE($5, coefficient)
		WHERE id = $1
		RETURNING id, category, name, price, coefficient, created_at
	`, id, category, name, price, coefficient)
	var it Item
	if err := row.Scan(&it.ID, &it.Category, &it.Name, &it.Price, &it.Coefficient, &it.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &it, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM price_items WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
