package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE tasks (
		    id         INTEGER PRIMARY KEY AUTOINCREMENT,
		    text       TEXT NOT NULL,
		    active     INTEGER NOT NULL DEFAULT 1,
		    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE task_reads (
		    user_id      BIGINT PRIMARY KEY,
		    last_task_id INTEGER NOT NULL DEFAULT 0
		)`)
	if err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

func TestUnreadCursor(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	// без задач и без курсора — ноль
	n, err := repo.UnreadCount(ctx, 100)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("empty table: unread = %d", n)
	}

	if _, err := repo.Create(ctx, "Собрать заявки по Ауэзовскому району"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Create(ctx, "Обновить прайс в аптеках"); err != nil {
		t.Fatal(err)
	}

	n, _ = repo.UnreadCount(ctx, 100)
	if n != 2 {
		t.Errorf("unread = %d, want 2", n)
	}

	if err := repo.MarkAllRead(ctx, 100); err != nil {
		t.Fatal(err)
	}
	n, _ = repo.UnreadCount(ctx, 100)
	if n != 0 {
		t.Errorf("unread after read = %d, want 0", n)
	}

	// у другого пользователя свой курсор
	n, _ = repo.UnreadCount(ctx, 200)
	if n != 2 {
		t.Errorf("other user unread = %d, want 2", n)
	}

	// новая задача снова поднимает бейдж
	if _, err := repo.Create(ctx, "Отчёт за месяц до пятницы"); err != nil {
		t.Fatal(err)
	}
	n, _ = repo.UnreadCount(ctx, 100)
	if n != 1 {
		t.Errorf("unread after new task = %d, want 1", n)
	}
}

func TestListActive(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	id1, err := repo.Create(ctx, "первая")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Create(ctx, "вторая"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`UPDATE tasks SET active = 0 WHERE id = ?`, id1); err != nil {
		t.Fatal(err)
	}

	list, err := repo.ListActive(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Text != "вторая" {
		t.Fatalf("active tasks = %+v", list)
	}
}

func TestMarkAllReadNoTasks(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	if err := repo.MarkAllRead(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
}
