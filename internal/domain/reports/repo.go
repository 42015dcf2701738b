package reports

import (
	"context"
	"database/sql"
	"strings"
)

type Repo struct{ db *sql.DB }

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

// SaveDoctorReport пишет заголовок и возвращает сгенерированный id.
// Дочерние строки вставляются отдельным вызовом — если между ними
// случится сбой, пользователю показывают ошибку и оставляют диалог на
// шаге подтверждения для повтора.
func (r *Repo) SaveDoctorReport(ctx context.Context, h DoctorReport) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO main_reports (user, district, road, lpu, doc_name, doc_spec, doc_num, term, commentary)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`, h.User, h.District, h.Road, h.LPU, h.DocName, h.DocSpec, h.DocNum, h.Term, h.Comment).Scan(&id)
	return id, err
}

func (r *Repo) AddDoctorPreps(ctx context.Context, reportID int64, preps []string) error {
	if reportID == 0 || len(preps) == 0 {
		return nil
	}
	for _, p := range preps {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO detailed_report (report_id, prep) VALUES (?, ?)`,
			reportID, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) SaveApothecaryReport(ctx context.Context, h ApothecaryReport) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO apothecary_reports (user, district, road, apothecary, commentary)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`, h.User, h.District, h.Road, h.Apothecary, h.Comment).Scan(&id)
	return id, err
}

func (r *Repo) AddApothecaryItems(ctx context.Context, reportID int64, items []QtyLine) error {
	if reportID == 0 || len(items) == 0 {
		return nil
	}
	for _, it := range items {
		if _, err := r.db.ExecContext(ctx, `
			INSERT INTO apothecary_detailed (report_id, prep, req_qty, rem_qty)
			VALUES (?, ?, ?, ?)
		`, reportID, it.Prep, it.Requested, it.Remaining); err != nil {
			return err
		}
	}
	return nil
}

func filterClause(f Filter) (string, []any) {
	var cond []string
	var args []any
	// date хранится как CURRENT_TIMESTAMP (UTC, "YYYY-MM-DD HH:MM:SS"),
	// поэтому границы передаём строками того же вида.
	if !f.From.IsZero() {
		cond = append(cond, "date >= ?")
		args = append(args, f.From.UTC().Format("2006-01-02 15:04:05"))
	}
	if !f.To.IsZero() {
		cond = append(cond, "date < ?")
		args = append(args, f.To.UTC().Format("2006-01-02 15:04:05"))
	}
	if f.User != "" {
		cond = append(cond, "user = ?")
		args = append(args, f.User)
	}
	if len(cond) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(cond, " AND "), args
}

// ListDoctorReports читает заголовки по фильтру и подтягивает дочерние
// строки, сохраняя порядок вставки препаратов.
func (r *Repo) ListDoctorReports(ctx context.Context, f Filter) ([]DoctorReport, error) {
	where, args := filterClause(f)
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, user, district, road, lpu, doc_name, doc_spec, doc_num, term, commentary
		FROM main_reports`+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DoctorReport
	index := map[int64]int{}
	for rows.Next() {
		var h DoctorReport
		if err := rows.Scan(&h.ID, &h.Date, &h.User, &h.District, &h.Road, &h.LPU,
			&h.DocName, &h.DocSpec, &h.DocNum, &h.Term, &h.Comment); err != nil {
			return nil, err
		}
		index[h.ID] = len(out)
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}

	crows, err := r.db.QueryContext(ctx,
		`SELECT report_id, prep FROM detailed_report ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer crows.Close()
	for crows.Next() {
		var id int64
		var prep string
		if err := crows.Scan(&id, &prep); err != nil {
			return nil, err
		}
		if i, ok := index[id]; ok {
			out[i].Preps = append(out[i].Preps, prep)
		}
	}
	return out, crows.Err()
}

func (r *Repo) ListApothecaryReports(ctx context.Context, f Filter) ([]ApothecaryReport, error) {
	where, args := filterClause(f)
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, user, district, road, apothecary, commentary
		FROM apothecary_reports`+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ApothecaryReport
	index := map[int64]int{}
	for rows.Next() {
		var h ApothecaryReport
		if err := rows.Scan(&h.ID, &h.Date, &h.User, &h.District, &h.Road,
			&h.Apothecary, &h.Comment); err != nil {
			return nil, err
		}
		index[h.ID] = len(out)
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}

	crows, err := r.db.QueryContext(ctx,
		`SELECT report_id, prep, req_qty, rem_qty FROM apothecary_detailed ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer crows.Close()
	for crows.Next() {
		var id int64
		var it QtyLine
		if err := crows.Scan(&id, &it.Prep, &it.Requested, &it.Remaining); err != nil {
			return nil, err
		}
		if i, ok := index[id]; ok {
			out[i].Items = append(out[i].Items, it)
		}
	}
	return out, crows.Err()
}
