package bot

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "modernc.org/sqlite"

	"github.com/anovapharm/medrep-bot/internal/dialog"
)

// newTestBot поднимает бота поверх заглушки Telegram API: любой вызов
// отвечает ok, ничего никуда не уходит.
func newTestBot(t *testing.T) (*Bot, *dialog.Repo) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/getMe") {
			fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"test","username":"test_bot"}}`)
			return
		}
		fmt.Fprint(w, `{"ok":true,"result":{}}`)
	}))
	t.Cleanup(srv.Close)

	api, err := tgbotapi.NewBotAPIWithAPIEndpoint("test-token", srv.URL+"/bot%s/%s")
	if err != nil {
		t.Fatalf("bot api: %v", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if _, err := db.Exec(`
		CREATE TABLE dialog_states (
		    chat_id    BIGINT PRIMARY KEY,
		    state      TEXT NOT NULL,
		    payload    TEXT NOT NULL DEFAULT '{}',
		    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	states := dialog.NewRepo(db)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(api, log, nil, nil, nil, states, nil, nil, nil, nil, nil), states
}

func testCallback(chatID int64, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb1",
		Data:    data,
		Message: &tgbotapi.Message{MessageID: 10, Chat: &tgbotapi.Chat{ID: chatID}},
	}
}

// Кнопки со старого сообщения не должны выдёргивать пользователя из
// текущего шага: пагинация и сброс работают только в своём состоянии.
func TestStaleCallbacksKeepState(t *testing.T) {
	b, states := newTestBot(t)
	ctx := context.Background()
	const chatID = int64(42)

	p := dialog.Payload{"kind": dialog.KindApothecary}
	if err := states.Set(ctx, chatID, dialog.StateVisitReqQty, p); err != nil {
		t.Fatal(err)
	}
	st, err := states.Get(ctx, chatID)
	if err != nil {
		t.Fatal(err)
	}

	b.medPage(ctx, testCallback(chatID, "med:pg:1"), st, "med:pg:1")
	b.medReset(ctx, testCallback(chatID, "med:reset"), st)
	b.visitFacilityPage(ctx, testCallback(chatID, "lpu:pg:1"), st, "lpu:pg:1")
	b.visitDoctorPage(ctx, testCallback(chatID, "doc:pg:1"), st, "doc:pg:1")

	got, err := states.Get(ctx, chatID)
	if err != nil {
		t.Fatal(err)
	}
	if got.State != dialog.StateVisitReqQty {
		t.Errorf("state = %q, want %q untouched", got.State, dialog.StateVisitReqQty)
	}
	if _, ok := got.Payload["med_page"]; ok {
		t.Error("stale med:pg callback wrote med_page into payload")
	}
	if _, ok := got.Payload["selected"]; ok {
		t.Error("stale med:reset callback wrote selected into payload")
	}
}
