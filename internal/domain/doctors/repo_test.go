package doctors

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
		CREATE TABLE main_specs (
		    main_spec_id INTEGER PRIMARY KEY AUTOINCREMENT,
		    spec         TEXT NOT NULL
		);
		CREATE TABLE specs (
		    spec_id INTEGER PRIMARY KEY AUTOINCREMENT,
		    ms_id   INTEGER REFERENCES main_specs (main_spec_id),
		    spec    TEXT NOT NULL
		);
		CREATE TABLE doctors (
		    id        INTEGER PRIMARY KEY AUTOINCREMENT,
		    lpu_id    INTEGER NOT NULL,
		    doctor    TEXT NOT NULL,
		    spec_id   INTEGER REFERENCES specs (spec_id),
		    numb      TEXT NOT NULL DEFAULT '',
		    birthdate TEXT NOT NULL DEFAULT ''
		)`)
	if err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

func TestResolveSpecByMainID(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	var msID int64
	if err := db.QueryRow(
		`INSERT INTO main_specs (spec) VALUES ('Терапевт') RETURNING main_spec_id`).Scan(&msID); err != nil {
		t.Fatal(err)
	}

	id1, err := repo.ResolveSpecByMainID(ctx, msID)
	if err != nil {
		t.Fatal(err)
	}
	id2, err := repo.ResolveSpecByMainID(ctx, msID)
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Errorf("repeated resolve created new spec: %d then %d", id1, id2)
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM specs`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("specs table has %d rows, want 1", n)
	}

	if _, err := repo.ResolveSpecByMainID(ctx, 999); err == nil {
		t.Error("resolve of unknown main spec did not fail")
	}
}

func TestResolveSpecByName(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	id1, err := repo.ResolveSpecByName(ctx, "Кардиолог")
	if err != nil {
		t.Fatal(err)
	}
	// регистр и пробелы не плодят дубликаты
	id2, err := repo.ResolveSpecByName(ctx, "  кардиолог ")
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Errorf("case-insensitive resolve gave %d and %d", id1, id2)
	}

	id3, err := repo.ResolveSpecByName(ctx, "ЛОР")
	if err != nil {
		t.Fatal(err)
	}
	if id3 == id1 {
		t.Error("different name resolved to same spec")
	}
}

func TestAddAndList(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	specID, err := repo.ResolveSpecByName(ctx, "Педиатр")
	if err != nil {
		t.Fatal(err)
	}
	id, err := repo.Add(ctx, 7, "Пак Анджелика Владимировна", specID, "+77771234567", "14.03.1985")
	if err != nil {
		t.Fatal(err)
	}

	list, err := repo.ListByLPU(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("ListByLPU returned %d doctors, want 1", len(list))
	}
	d := list[0]
	if d.ID != id || d.Name != "Пак Анджелика Владимировна" || d.Spec != "Педиатр" {
		t.Errorf("listed doctor = %+v", d)
	}

	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Phone != "+77771234567" || got.Birthdate != "14.03.1985" {
		t.Errorf("GetByID = %+v", got)
	}

	// чужое ЛПУ — пусто
	list, err = repo.ListByLPU(ctx, 8)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("foreign lpu returned %d doctors", len(list))
	}
}
