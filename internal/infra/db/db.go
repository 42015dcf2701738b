package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Connect открывает файл SQLite и включает внешние ключи.
// Каждая логическая база (accounts / pharmacy / reports) — отдельный файл.
func Connect(ctx context.Context, path string) (*sql.DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// одно соединение: файл маленький, а так не ловим SQLITE_BUSY
	d.SetMaxOpenConns(1)

	if _, err := d.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("pragma %s: %w", path, err)
	}
	if _, err := d.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("pragma %s: %w", path, err)
	}
	if err := d.PingContext(ctx); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("ping %s: %w", path, err)
	}
	return d, nil
}
