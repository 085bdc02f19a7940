package schedule

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) GetByID(ctx context.Context, id int64) (*Report, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, date, object_id, status, earnings, completed, created_at
		FROM scheduled_days WHERE id = $1
	`, id)
	rep, err := scanReport(row)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, nil
	}
	if err := r.loadWorkLogs(ctx, []*Report{rep}); err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *Repo) GetByUserDate(ctx context.Context, userID int64, date string) (*Report, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, date, object_id, status, earnings, completed, created_at
		FROM scheduled_days WHERE user_id = $1 AND date = $2
	`, userID, date)
	rep, err := scanReport(row)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, nil
	}
	if err := r.loadWorkLogs(ctx, []*Report{rep}); err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *Repo) List(ctx context.Context, userID *int64, status *Status) ([]Report, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, date, object_id, status, earnings, completed, created_at
		FROM scheduled_days
		WHERE ($1::bigint IS NULL OR user_id = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY date, user_id
	`, userID, (*string)(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		var rep Report
		if err := rows.Scan(&rep.ID, &rep.UserID, &rep.Date, &rep.ObjectID,
			&rep.Status, &rep.Earnings, &rep.Completed, &rep.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ptrs := make([]*Report, len(out))
	for i := range out {
		ptrs[i] = &out[i]
	}
	if err := r.loadWorkLogs(ctx, ptrs); err != nil {
		return nil, err
	}
	return out, nil
}

// Save пишет строку отчёта и (опционально) заменяет журнал работ одной
// транзакцией: отчёт не может остаться с пустым несохранённым журналом.
// Вставка идёт через ON CONFLICT (user_id, date) — гонка двух создании
// за одну дату схлопывается в обновление, второй строки не будет.
func (r *Repo) Save(ctx context.Context, rep *Report, replaceLog bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if rep.ID == 0 {
		err = tx.QueryRow(ctx, `
			INSERT INTO scheduled_days (user_id, date, object_id, status, earnings, completed)
			VALUES ($1,$2,$3,$4,$5,$6)
			ON CONFLICT (user_id, date) DO UPDATE SET
				object_id = EXCLUDED.object_id,
				status    = EXCLUDED.status,
				earnings  = EXCLUDED.earnings,
				completed = EXCLUDED.completed
			RETURNING id, created_at
		`, rep.UserID, rep.Date, rep.ObjectID, string(rep.Status), rep.Earnings, rep.Completed).
			Scan(&rep.ID, &rep.CreatedAt)
	} else {
		_, err = tx.Exec(ctx, `
			UPDATE scheduled_days
			SET object_id = $2, status = $3, earnings = $4, completed = $5
			WHERE id = $1
		`, rep.ID, rep.ObjectID, string(rep.Status), rep.Earnings, rep.Completed)
	}
	if err != nil {
		return err
	}

	if replaceLog {
		if _, err := tx.Exec(ctx, `DELETE FROM work_log_items WHERE scheduled_day_id = $1`, rep.ID); err != nil {
			return err
		}
		for _, e := range rep.WorkLog {
			if _, err := tx.Exec(ctx, `
				INSERT INTO work_log_items (scheduled_day_id, price_item_id, quantity, coefficient)
				VALUES ($1,$2,$3,$4)
			`, rep.ID, e.PriceItemID, e.Quantity, e.Coefficient); err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

// PricesByIDs — снимок прайс-листа одним запросом (реализация Catalog).
func (r *Repo) PricesByIDs(ctx context.Context, ids []int64) (map[int64]CatalogPrice, error) {
	out := map[int64]CatalogPrice{}
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, price, coefficient FROM price_items WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var p CatalogPrice
		if err := rows.Scan(&id, &p.UnitPrice, &p.Coefficient); err != nil {
			return nil, err
		}
		out[id] = p
	}
	return out, rows.Err()
}

func (r *Repo) loadWorkLogs(ctx context.Context, reps []*Report) error {
	if len(reps) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(reps))
	byID := make(map[int64]*Report, len(reps))
	for _, rep := range reps {
		ids = append(ids, rep.ID)
		byID[rep.ID] = rep
		rep.WorkLog = []WorkLogEntry{}
	}

	rows, err := r.pool.Query(ctx, `
		SELECT scheduled_day_id, price_item_id, quantity, coefficient
		FROM work_log_items
		WHERE scheduled_day_id = ANY($1)
		ORDER BY id
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var dayID int64
		var e WorkLogEntry
		if err := rows.Scan(&dayID, &e.PriceItemID, &e.Quantity, &e.Coefficient); err != nil {
			return err
		}
		if rep, ok := byID[dayID]; ok {
			rep.WorkLog = append(rep.WorkLog, e)
		}
	}
	return rows.Err()
}

func scanReport(row pgx.Row) (*Report, error) {
	var rep Report
	if err := row.Scan(&rep.ID, &rep.UserID, &rep.Date, &rep.ObjectID,
		&rep.Status, &rep.Earnings, &rep.Completed, &rep.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &rep, nil
}
