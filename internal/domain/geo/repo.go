package geo

import (
	"context"
	"database/sql"
)

type Repo struct{ db *sql.DB }

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) ListDistricts(ctx context.Context, region string) ([]District, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, region FROM districts
		WHERE region = ? ORDER BY name
	`, region)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []District
	for rows.Next() {
		var d District
		if err := rows.Scan(&d.ID, &d.Name, &d.Region); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repo) GetDistrict(ctx context.Context, id int64) (*District, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, region FROM districts WHERE id = ?`, id)
	var d District
	if err := row.Scan(&d.ID, &d.Name, &d.Region); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *Repo) ListRoadNums(ctx context.Context, districtID int64) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT road_num FROM roads WHERE district_id = ? ORDER BY road_num
	`, districtID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// RoadID находит уникальный маршрут по району и номеру.
func (r *Repo) RoadID(ctx context.Context, districtID int64, roadNum int) (int64, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT road_id FROM roads WHERE district_id = ? AND road_num = ?`,
		districtID, roadNum)
	var id int64
	if err := row.Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	return id, nil
}

func (r *Repo) ListFacilities(ctx context.Context, kind FacilityKind, roadID int64) ([]Facility, error) {
	q := `SELECT lpu_id, road_id, name, url FROM lpu WHERE road_id = ? ORDER BY name`
	if kind == KindApothecary {
		q = `SELECT id, road_id, name, url FROM apothecary WHERE road_id = ? ORDER BY name`
	}
	rows, err := r.db.QueryContext(ctx, q, roadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Facility
	for rows.Next() {
		f := Facility{Kind: kind}
		if err := rows.Scan(&f.ID, &f.RoadID, &f.Name, &f.URL); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *Repo) GetFacility(ctx context.Context, kind FacilityKind, id int64) (*Facility, error) {
	q := `SELECT lpu_id, road_id, name, url FROM lpu WHERE lpu_id = ?`
	if kind == KindApothecary {
		q = `SELECT id, road_id, name, url FROM apothecary WHERE id = ?`
	}
	row := r.db.QueryRowContext(ctx, q, id)
	f := Facility{Kind: kind}
	if err := row.Scan(&f.ID, &f.RoadID, &f.Name, &f.URL); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

// AddFacility добавляет новую точку, заведённую представителем с экрана
// выбора. Возвращает id вставленной строки.
func (r *Repo) AddFacility(ctx context.Context, kind FacilityKind, roadID int64, name, url string) (int64, error) {
	q := `INSERT INTO lpu (road_id, name, url) VALUES (?, ?, ?) RETURNING lpu_id`
	if kind == KindApothecary {
		q = `INSERT INTO apothecary (road_id, name, url) VALUES (?, ?, ?) RETURNING id`
	}
	var id int64
	err := r.db.QueryRowContext(ctx, q, roadID, name, url).Scan(&id)
	return id, err
}
