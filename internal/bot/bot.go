package bot

import (
	"context"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/anovapharm/medrep-bot/internal/dialog"
	"github.com/anovapharm/medrep-bot/internal/domain/doctors"
	"github.com/anovapharm/medrep-bot/internal/domain/geo"
	"github.com/anovapharm/medrep-bot/internal/domain/medications"
	"github.com/anovapharm/medrep-bot/internal/domain/reports"
	"github.com/anovapharm/medrep-bot/internal/domain/tasks"
	"github.com/anovapharm/medrep-bot/internal/domain/users"
	"github.com/anovapharm/medrep-bot/internal/infra/metrics"
)

type Bot struct {
	api        *tgbotapi.BotAPI
	log        *slog.Logger
	adminChats []int64
	loc        *time.Location
	users      *users.Repo
	states     *dialog.Repo
	geo        *geo.Repo
	doctors    *doctors.Repo
	meds       *medications.Repo
	reports    *reports.Repo
	tasks      *tasks.Repo
}

func New(api *tgbotapi.BotAPI, log *slog.Logger, adminChats []int64, loc *time.Location,
	usersRepo *users.Repo, statesRepo *dialog.Repo, geoRepo *geo.Repo,
	doctorsRepo *doctors.Repo, medsRepo *medications.Repo,
	reportsRepo *reports.Repo, tasksRepo *tasks.Repo) *Bot {

	if loc == nil {
		loc = time.UTC
	}
	return &Bot{
		api: api, log: log, adminChats: adminChats, loc: loc,
		users: usersRepo, states: statesRepo, geo: geoRepo,
		doctors: doctorsRepo, meds: medsRepo,
		reports: reportsRepo, tasks: tasksRepo,
	}
}

func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd := <-updates:
			if upd.Message != nil {
				metrics.UpdatesTotal.WithLabelValues("message").Inc()
				b.onMessage(ctx, upd)
			} else if upd.CallbackQuery != nil {
				metrics.UpdatesTotal.WithLabelValues("callback").Inc()
				b.onCallback(ctx, upd)
			}
		}
	}
}

func (b *Bot) onMessage(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	b.handleStateMessage(ctx, msg)
}

func (b *Bot) onCallback(ctx context.Context, upd tgbotapi.Update) {
	b.handleCallback(ctx, upd.CallbackQuery)
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send failed", "err", err)
	}
}

func (b *Bot) answerCallback(cb *tgbotapi.CallbackQuery, text string, alert bool) error {
	resp := tgbotapi.NewCallback(cb.ID, text)
	resp.ShowAlert = alert
	_, err := b.api.Request(resp)
	return err
}

func (b *Bot) editTextAndClear(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(
		chatID, messageID, text,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}},
	)
	b.send(edit)
}

func (b *Bot) editTextWithNav(chatID int64, messageID int, text string) {
	kb := navKeyboard(true, true)
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, kb)
	b.send(edit)
}

func (b *Bot) isAdmin(chatID int64) bool {
	for _, id := range b.adminChats {
		if id == chatID {
			return true
		}
	}
	return false
}

// notifyAdmins рассылает сообщение во все админ-чаты; недоставка в один
// чат не мешает остальным.
func (b *Bot) notifyAdmins(text string, kb *tgbotapi.InlineKeyboardMarkup) {
	for _, chatID := range b.adminChats {
		m := tgbotapi.NewMessage(chatID, text)
		if kb != nil {
			m.ReplyMarkup = *kb
		}
		if _, err := b.api.Send(m); err != nil {
			b.log.Error("admin notify failed", "chat_id", chatID, "err", err)
		}
	}
}

// notifyUser — уведомление конкретного пользователя; если бот
// заблокирован, ошибка логируется и глотается.
func (b *Bot) notifyUser(chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	m := tgbotapi.NewMessage(chatID, text)
	if kb != nil {
		m.ReplyMarkup = *kb
	}
	if _, err := b.api.Send(m); err != nil {
		b.log.Warn("user notify failed", "chat_id", chatID, "err", err)
	}
}

// showMainMenu рисует главное меню с актуальным бейджем задач.
func (b *Bot) showMainMenu(ctx context.Context, chatID int64, text string) {
	unread, err := b.tasks.UnreadCount(ctx, chatID)
	if err != nil {
		b.log.Error("unread count failed", "err", err)
	}
	m := tgbotapi.NewMessage(chatID, text)
	m.ReplyMarkup = mainMenuKeyboard(unread, b.isAdmin(chatID))
	b.send(m)
}

func (b *Bot) showGuestMenu(chatID int64, text string) {
	m := tgbotapi.NewMessage(chatID, text)
	m.ReplyMarkup = guestMenuKeyboard()
	b.send(m)
}
