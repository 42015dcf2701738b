package medications

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

	if _, err := db.Exec(`
		CREATE TABLE medication (
		    id   INTEGER PRIMARY KEY AUTOINCREMENT,
		    prep TEXT NOT NULL
		)`); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

func TestNamesByIDs(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	for _, name := range []string{"Эреспал", "Кардиомагнил", "Мезим"} {
		if _, err := db.Exec(`INSERT INTO medication (prep) VALUES (?)`, name); err != nil {
			t.Fatal(err)
		}
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 || list[0].Name != "Кардиомагнил" {
		t.Fatalf("list = %+v, want sorted by name", list)
	}

	names, err := repo.NamesByIDs(ctx, []int64{1, 3, 99})
	if err != nil {
		t.Fatal(err)
	}
	if names[1] != "Эреспал" || names[3] != "Мезим" {
		t.Errorf("names = %v", names)
	}
	if _, ok := names[99]; ok {
		t.Error("unknown id resolved to a name")
	}
}
