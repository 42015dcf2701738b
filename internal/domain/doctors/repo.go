package doctors

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type Repo struct{ db *sql.DB }

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) ListByLPU(ctx context.Context, lpuID int64) ([]Doctor, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT d.id, d.lpu_id, d.doctor, COALESCE(d.spec_id, 0), COALESCE(s.spec, ''), d.numb, d.birthdate
		FROM doctors d
		LEFT JOIN specs s ON s.spec_id = d.spec_id
		WHERE d.lpu_id = ?
		ORDER BY d.doctor
	`, lpuID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Doctor
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.ID, &d.LPUID, &d.Name, &d.SpecID, &d.Spec, &d.Phone, &d.Birthdate); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Doctor, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT d.id, d.lpu_id, d.doctor, COALESCE(d.spec_id, 0), COALESCE(s.spec, ''), d.numb, d.birthdate
		FROM doctors d
		LEFT JOIN specs s ON s.spec_id = d.spec_id
		WHERE d.id = ?
	`, id)
	var d Doctor
	if err := row.Scan(&d.ID, &d.LPUID, &d.Name, &d.SpecID, &d.Spec, &d.Phone, &d.Birthdate); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *Repo) ListMainSpecs(ctx context.Context) ([]MainSpec, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT main_spec_id, spec FROM main_specs ORDER BY spec`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MainSpec
	for rows.Next() {
		var s MainSpec
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ResolveSpecByMainID находит строку specs, привязанную к канонической
// специальности, создавая её при первом обращении. Врачи ссылаются на
// specs, а не на main_specs напрямую.
func (r *Repo) ResolveSpecByMainID(ctx context.Context, mainSpecID int64) (int64, error) {
	var specID int64
	err := r.db.QueryRowContext(ctx,
		`SELECT spec_id FROM specs WHERE ms_id = ?`, mainSpecID).Scan(&specID)
	if err == nil {
		return specID, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	var name string
	err = r.db.QueryRowContext(ctx,
		`SELECT spec FROM main_specs WHERE main_spec_id = ?`, mainSpecID).Scan(&name)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("main spec %d not found", mainSpecID)
	}
	if err != nil {
		return 0, err
	}

	err = r.db.QueryRowContext(ctx,
		`INSERT INTO specs (ms_id, spec) VALUES (?, ?) RETURNING spec_id`,
		mainSpecID, name).Scan(&specID)
	return specID, err
}

// ResolveSpecByName ищет специальность по свободному тексту без учёта
// регистра; если её нет — заводит новую строку без привязки к main_specs.
// Повторный вызов с тем же текстом возвращает тот же id. Сравнение
// делаем на стороне Go: встроенный NOCASE в SQLite не складывает
// кириллицу.
func (r *Repo) ResolveSpecByName(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)

	rows, err := r.db.QueryContext(ctx, `SELECT spec_id, spec FROM specs`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	for rows.Next() {
		var specID int64
		var spec string
		if err := rows.Scan(&specID, &spec); err != nil {
			return 0, err
		}
		if strings.EqualFold(spec, name) {
			return specID, nil
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	var specID int64
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO specs (ms_id, spec) VALUES (NULL, ?) RETURNING spec_id`,
		name).Scan(&specID)
	return specID, err
}

func (r *Repo) Add(ctx context.Context, lpuID int64, name string, specID int64, phone, birthdate string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO doctors (lpu_id, doctor, spec_id, numb, birthdate)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`, lpuID, name, specID, phone, birthdate).Scan(&id)
	return id, err
}
