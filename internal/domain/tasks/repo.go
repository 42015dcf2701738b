package tasks

import (
	"context"
	"database/sql"
)

type Repo struct{ db *sql.DB }

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Create(ctx context.Context, text string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO tasks (text, active) VALUES (?, 1) RETURNING id`, text).Scan(&id)
	return id, err
}

func (r *Repo) ListActive(ctx context.Context) ([]Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, text, active, created_at FROM tasks WHERE active = 1 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Text, &t.Active, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UnreadCount — сколько активных задач пользователь ещё не открывал.
// Курсор — максимальный прочитанный id.
func (r *Repo) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tasks
		WHERE active = 1
		  AND id > COALESCE((SELECT last_task_id FROM task_reads WHERE user_id = ?), 0)
	`, userID).Scan(&n)
	return n, err
}

// MarkAllRead двигает курсор на последнюю активную задачу.
func (r *Repo) MarkAllRead(ctx context.Context, userID int64) error {
	var maxID sql.NullInt64
	if err := r.db.QueryRowContext(ctx,
		`SELECT MAX(id) FROM tasks WHERE active = 1`).Scan(&maxID); err != nil {
		return err
	}
	if !maxID.Valid {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO task_reads (user_id, last_task_id) VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET last_task_id = excluded.last_task_id
	`, userID, maxID.Int64)
	return err
}
