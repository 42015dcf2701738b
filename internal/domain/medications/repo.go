package medications

import (
	"context"
	"database/sql"
)

type Repo struct{ db *sql.DB }

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) List(ctx context.Context) ([]Medication, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, prep FROM medication ORDER BY prep`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Medication
	for rows.Next() {
		var m Medication
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// NamesByIDs возвращает имена по списку id; неизвестные id в карту не
// попадают — заглушку подставляет вызывающий код.
func (r *Repo) NamesByIDs(ctx context.Context, ids []int64) (map[int64]string, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]string, len(all))
	for _, m := range all {
		byID[m.ID] = m.Name
	}
	out := make(map[int64]string, len(ids))
	for _, id := range ids {
		if name, ok := byID[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}
