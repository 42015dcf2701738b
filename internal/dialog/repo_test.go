package dialog

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
		CREATE TABLE dialog_states (
		    chat_id    BIGINT PRIMARY KEY,
		    state      TEXT NOT NULL,
		    payload    TEXT NOT NULL DEFAULT '{}',
		    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

func TestRepoGetMissing(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	st, err := repo.Get(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	if st.State != StateIdle {
		t.Errorf("state = %q, want %q", st.State, StateIdle)
	}
	if st.Payload == nil {
		t.Error("payload is nil, want empty map")
	}
}

func TestRepoSetGetReset(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	p := Payload{"kind": "doc", "district_id": int64(3), "selected": []int64{5, 1}}
	if err := repo.Set(ctx, 100, StateVisitPickMeds, p); err != nil {
		t.Fatal(err)
	}

	st, err := repo.Get(ctx, 100)
	if err != nil {
		t.Fatal(err)
	}
	if st.State != StateVisitPickMeds {
		t.Errorf("state = %q, want %q", st.State, StateVisitPickMeds)
	}
	if kind, _ := GetString(st.Payload, "kind"); kind != "doc" {
		t.Errorf("kind = %q, want doc", kind)
	}
	if id, _ := GetInt64(st.Payload, "district_id"); id != 3 {
		t.Errorf("district_id = %d, want 3", id)
	}
	if sel := GetInt64Slice(st.Payload, "selected"); len(sel) != 2 || sel[0] != 5 {
		t.Errorf("selected = %v, want [5 1]", sel)
	}

	// повторный Set — upsert, не вторая строка
	if err := repo.Set(ctx, 100, StateVisitTerm, Payload{"kind": "doc"}); err != nil {
		t.Fatal(err)
	}
	st, err = repo.Get(ctx, 100)
	if err != nil {
		t.Fatal(err)
	}
	if st.State != StateVisitTerm {
		t.Errorf("state after upsert = %q, want %q", st.State, StateVisitTerm)
	}
	if _, ok := GetInt64(st.Payload, "district_id"); ok {
		t.Error("old payload survived upsert")
	}

	if err := repo.Reset(ctx, 100); err != nil {
		t.Fatal(err)
	}
	st, err = repo.Get(ctx, 100)
	if err != nil {
		t.Fatal(err)
	}
	if st.State != StateIdle {
		t.Errorf("state after reset = %q, want idle", st.State)
	}
}
