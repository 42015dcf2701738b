package users

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
		CREATE TABLE users (
		    id            INTEGER PRIMARY KEY AUTOINCREMENT,
		    user_id       BIGINT NOT NULL UNIQUE,
		    user_name     TEXT   NOT NULL UNIQUE,
		    user_password TEXT   NOT NULL,
		    region        TEXT   NOT NULL DEFAULT '',
		    join_date     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		    logged_in     INTEGER NOT NULL DEFAULT 0,
		    is_approved   INTEGER NOT NULL DEFAULT 0
		)`)
	if err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

func TestCreateAndApprove(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	u, err := repo.Create(ctx, 1001, "Айгуль", "hash", "АЛА")
	if err != nil {
		t.Fatal(err)
	}
	if u.Approved {
		t.Error("new user is approved, want pending")
	}
	if !u.LoggedIn {
		t.Error("new user is not logged in, registration implies login")
	}
	if u.Region != "АЛА" {
		t.Errorf("region = %q", u.Region)
	}

	// до одобрения имя не светится в клавиатуре входа
	names, err := repo.ListApprovedNames(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 0 {
		t.Errorf("pending user in approved list: %v", names)
	}

	pending, err := repo.ListPending(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].TelegramID != 1001 {
		t.Fatalf("pending = %+v", pending)
	}

	if err := repo.Approve(ctx, 1001); err != nil {
		t.Fatal(err)
	}
	u, err = repo.GetByTelegramID(ctx, 1001)
	if err != nil {
		t.Fatal(err)
	}
	if !u.Approved {
		t.Error("user not approved after Approve")
	}
	names, _ = repo.ListApprovedNames(ctx)
	if len(names) != 1 || names[0] != "Айгуль" {
		t.Errorf("approved names = %v", names)
	}
}

func TestReject(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	if _, err := repo.Create(ctx, 1002, "Болат", "hash", "ЮКО"); err != nil {
		t.Fatal(err)
	}
	if err := repo.Reject(ctx, 1002); err != nil {
		t.Fatal(err)
	}
	u, err := repo.GetByTelegramID(ctx, 1002)
	if err != nil {
		t.Fatal(err)
	}
	if u != nil {
		t.Errorf("rejected user still exists: %+v", u)
	}
}

func TestGetMissing(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	u, err := repo.GetByTelegramID(ctx, 404)
	if err != nil {
		t.Fatal(err)
	}
	if u != nil {
		t.Errorf("got %+v for unknown id, want nil", u)
	}
	u, err = repo.GetByName(ctx, "нет такого")
	if err != nil || u != nil {
		t.Errorf("GetByName = %+v, %v", u, err)
	}
}

func TestSetLoggedIn(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	if _, err := repo.Create(ctx, 1003, "Дана", "hash", "АЛА"); err != nil {
		t.Fatal(err)
	}
	if err := repo.SetLoggedIn(ctx, 1003, false); err != nil {
		t.Fatal(err)
	}
	u, _ := repo.GetByTelegramID(ctx, 1003)
	if u.LoggedIn {
		t.Error("still logged in after logout")
	}
	if err := repo.SetLoggedIn(ctx, 1003, true); err != nil {
		t.Fatal(err)
	}
	u, _ = repo.GetByTelegramID(ctx, 1003)
	if !u.LoggedIn {
		t.Error("not logged in after login")
	}
}
