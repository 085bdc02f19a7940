package docs

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// List возвращает документы; objectID == nil — только общие,
// objectID != nil — документы конкретного объекта.
func (r *Repo) List(ctx context.Context, objectID *int64) ([]Doc, error) {
	q := `
		SELECT id, title, type, COALESCE(url,''), COALESCE(content,''), object_id, created_at
		FROM doc_items
	`
	var rows pgx.Rows
	var err error
	if objectID != nil {
		rows, err = r.pool.Query(ctx, q+` WHERE object_id = $1 ORDER BY id`, *objectID)
	} else {
		rows, err = r.pool.Query(ctx, q+` WHERE object_id IS NULL ORDER BY id`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocs(rows)
}

func (r *Repo) ListAll(ctx context.Context) ([]Doc, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, type, COALESCE(url,''), COALESCE(content,''), object_id, created_at
		FROM doc_items ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocs(rows)
}

func scanDocs(rows pgx.Rows) ([]Doc, error) {
	var out []Doc
	for rows.Next() {
		var d Doc
		if err := rows.Scan(&d.ID, &d.Title, &d.Type, &d.URL, &d.Content, &d.ObjectID, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Doc, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, title, type, COALESCE(url,''), COALESCE(content,''), object_id, created_at
		FROM doc_items WHERE id = $1
	`, id)
	var d Doc
	if err := row.Scan(&d.ID, &d.Title, &d.Type, &d.URL, &d.Content, &d.ObjectID, &d.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *Repo) Create(ctx context.Context, d Doc) (*Doc, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO doc_items (title, type, url, content, object_id)
		VALUES ($1,$2,NULLIF($3,''),NULLIF($4,''),$5)
		RETURNING id, title, type, COALESCE(url,''), COALESCE(content,''), object_id, created_at
	`, d.Title, string(d.Type), d.URL, d.Content, d.ObjectID)
	var out Doc
	if err := row.Scan(&out.ID, &out.Title, &out.Type, &out.URL, &out.Content, &out.ObjectID, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update — патч метаданных документа. nil означает «поле не менять»;
// для url/content пустая строка очищает значение, ObjectSet с nil
// отвязывает документ от объекта.
type Update struct {
	Title     *string
	Type      *Type
	URL       *string
	Content   *string
	ObjectID  *int64
	ObjectSet bool
}

func (r *Repo) Update(ctx context.Context, id int64, u Update) (*Doc, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE doc_items
		SET title     = COALESCE($2, title),
		    type      = COALESCE($3, type),
		    url       = CASE WHEN $4::boolean THEN NULLIF($5,'') ELSE url END,
		    content   = CASE WHEN $6::boolean THEN NULLIF($7,'') ELSE content END,
		    object_id = CASE WHEN $8::boolean THEN $9 ELSE object_id END
		WHERE id = $1
		RETURNING id, title, type, COALESCE(url,''), COALESCE(content,''), object_id, created_at
	`, id, u.Title, (*string)(u.Type),
		u.URL != nil, strVal(u.URL),
		u.Content != nil, strVal(u.Content),
		u.ObjectSet, u.ObjectID)

	var out Doc
	if err := row.Scan(&out.ID, &out.Title, &out.Type, &out.URL, &out.Content, &out.ObjectID, &out.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM doc_items WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
