package reports

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

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
		CREATE TABLE main_reports (
		    id         INTEGER PRIMARY KEY AUTOINCREMENT,
		    date       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		    user       TEXT NOT NULL,
		    district   TEXT NOT NULL,
		    road       TEXT NOT NULL,
		    lpu        TEXT NOT NULL,
		    doc_name   TEXT NOT NULL,
		    doc_spec   TEXT NOT NULL DEFAULT '',
		    doc_num    TEXT NOT NULL DEFAULT '',
		    term       TEXT NOT NULL DEFAULT '',
		    commentary TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE detailed_report (
		    report_id INTEGER NOT NULL REFERENCES main_reports (id),
		    prep      TEXT NOT NULL
		);
		CREATE TABLE apothecary_reports (
		    id         INTEGER PRIMARY KEY AUTOINCREMENT,
		    date       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		    user       TEXT NOT NULL,
		    district   TEXT NOT NULL,
		    road       TEXT NOT NULL,
		    apothecary TEXT NOT NULL,
		    commentary TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE apothecary_detailed (
		    report_id INTEGER NOT NULL REFERENCES apothecary_reports (id),
		    prep      TEXT NOT NULL,
		    req_qty   INTEGER NOT NULL DEFAULT 0,
		    rem_qty   INTEGER NOT NULL DEFAULT 0
		)`)
	if err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

func TestDoctorReportRoundTrip(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	id, err := repo.SaveDoctorReport(ctx, DoctorReport{
		User: "Айгуль", District: "Ауэзовский", Road: "Маршрут 2",
		LPU: "Поликлиника №4", DocName: "Пак Анджелика Владимировна",
		DocSpec: "Терапевт", DocNum: "+77771234567",
		Term: "скидка 10%", Comment: "-",
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.AddDoctorPreps(ctx, id, []string{"Кардиомагнил", "Эреспал"}); err != nil {
		t.Fatal(err)
	}

	list, err := repo.ListDoctorReports(ctx, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d reports, want 1", len(list))
	}
	r := list[0]
	if r.ID != id || r.DocName != "Пак Анджелика Владимировна" || r.Term != "скидка 10%" {
		t.Errorf("header = %+v", r)
	}
	if len(r.Preps) != 2 || r.Preps[0] != "Кардиомагнил" || r.Preps[1] != "Эреспал" {
		t.Errorf("preps = %v, want insertion order kept", r.Preps)
	}
	if r.Date.IsZero() {
		t.Error("date not filled by default")
	}
}

func TestApothecaryReportRoundTrip(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	id, err := repo.SaveApothecaryReport(ctx, ApothecaryReport{
		User: "Болат", District: "Бостандыкский", Road: "Маршрут 1",
		Apothecary: "Европа", Comment: "нет остатков",
	})
	if err != nil {
		t.Fatal(err)
	}
	items := []QtyLine{
		{Prep: "Кардиомагнил", Requested: 30, Remaining: 2},
		{Prep: "Мезим", Requested: 10, Remaining: 0},
	}
	if err := repo.AddApothecaryItems(ctx, id, items); err != nil {
		t.Fatal(err)
	}

	list, err := repo.ListApothecaryReports(ctx, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d reports, want 1", len(list))
	}
	r := list[0]
	if r.Apothecary != "Европа" || len(r.Items) != 2 {
		t.Fatalf("report = %+v", r)
	}
	if r.Items[0] != items[0] || r.Items[1] != items[1] {
		t.Errorf("items = %+v, want %+v", r.Items, items)
	}
}

func TestFilterByUser(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	for _, user := range []string{"Айгуль", "Болат", "Айгуль"} {
		if _, err := repo.SaveDoctorReport(ctx, DoctorReport{
			User: user, District: "р", Road: "м", LPU: "л", DocName: "в",
		}); err != nil {
			t.Fatal(err)
		}
	}

	list, err := repo.ListDoctorReports(ctx, Filter{User: "Айгуль"})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("filter by user returned %d, want 2", len(list))
	}
	for _, r := range list {
		if r.User != "Айгуль" {
			t.Errorf("foreign report in filtered list: %+v", r)
		}
	}
}

// date заполняется CURRENT_TIMESTAMP (UTC), границы периода должны
// отсекать свежие строки от старых.
func TestFilterByDate(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	if _, err := repo.SaveDoctorReport(ctx, DoctorReport{
		User: "Айгуль", District: "р", Road: "м", LPU: "л", DocName: "сегодня",
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`
		INSERT INTO main_reports (date, user, district, road, lpu, doc_name)
		VALUES ('2020-01-15 10:00:00', 'Айгуль', 'р', 'м', 'л', 'давно')`); err != nil {
		t.Fatal(err)
	}

	now := time.Now().UTC()
	list, err := repo.ListDoctorReports(ctx, Filter{From: now.Add(-time.Hour)})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].DocName != "сегодня" {
		t.Fatalf("From filter returned %+v, want only fresh row", list)
	}

	list, err = repo.ListDoctorReports(ctx, Filter{To: now.Add(-time.Hour)})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].DocName != "давно" {
		t.Fatalf("To filter returned %+v, want only old row", list)
	}
}

func TestListEmpty(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	list, err := repo.ListDoctorReports(ctx, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if list != nil {
		t.Errorf("empty table returned %v", list)
	}
}
