package dialog

import (
	"context"
	"database/sql"
	"encoding/json"
)

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Get(ctx context.Context, chatID int64) (*Item, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT state, payload FROM dialog_states WHERE chat_id = ?`, chatID)
	var state string
	var raw []byte
	if err := row.Scan(&state, &raw); err != nil {
		// строки нет — состояния пока нет
		return &Item{ChatID: chatID, State: StateIdle, Payload: Payload{}}, nil
	}
	var p Payload
	_ = json.Unmarshal(raw, &p)
	if p == nil {
		p = Payload{}
	}
	return &Item{ChatID: chatID, State: State(state), Payload: p}, nil
}

func (r *Repo) Set(ctx context.Context, chatID int64, state State, payload Payload) error {
	raw, _ := json.Marshal(payload)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dialog_states (chat_id, state, payload, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (chat_id) DO UPDATE SET
		  state = excluded.state, payload = excluded.payload, updated_at = CURRENT_TIMESTAMP
	`, chatID, string(state), raw)
	return err
}

func (r *Repo) Reset(ctx context.Context, chatID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM dialog_states WHERE chat_id = ?`, chatID)
	return err
}
