package users

import (
	"context"
	"database/sql"
)

type Repo struct{ db *sql.DB }

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

const userCols = `id, user_id, user_name, user_password, region, join_date, logged_in, is_approved`

func scanUser(row *sql.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.TelegramID, &u.Name, &u.PasswordHash,
		&u.Region, &u.JoinDate, &u.LoggedIn, &u.Approved); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repo) GetByTelegramID(ctx context.Context, tgID int64) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE user_id = ?`, tgID))
}

func (r *Repo) GetByName(ctx context.Context, name string) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE user_name = ?`, name))
}

func (r *Repo) Create(ctx context.Context, tgID int64, name, passwordHash, region string) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `
		INSERT INTO users (user_id, user_name, user_password, region, logged_in, is_approved)
		VALUES (?, ?, ?, ?, 1, 0)
		RETURNING `+userCols, tgID, name, passwordHash, region))
}

// ListApprovedNames — имена для клавиатуры входа.
func (r *Repo) ListApprovedNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_name FROM users WHERE is_approved = 1 ORDER BY user_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (r *Repo) ListPending(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userCols+` FROM users WHERE is_approved = 0 ORDER BY join_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.TelegramID, &u.Name, &u.PasswordHash,
			&u.Region, &u.JoinDate, &u.LoggedIn, &u.Approved); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *Repo) Approve(ctx context.Context, tgID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_approved = 1 WHERE user_id = ?`, tgID)
	return err
}

// Reject удаляет заявку целиком: отклонённый пользователь может
// зарегистрироваться заново.
func (r *Repo) Reject(ctx context.Context, tgID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM users WHERE user_id = ? AND is_approved = 0`, tgID)
	return err
}

func (r *Repo) SetLoggedIn(ctx context.Context, tgID int64, loggedIn bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET logged_in = ? WHERE user_id = ?`, loggedIn, tgID)
	return err
}
