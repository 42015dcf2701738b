package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/anovapharm/medrep-bot/internal/dialog"
	"github.com/anovapharm/medrep-bot/internal/domain/reports"
)

func (b *Bot) adminMenu(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	if !b.isAdmin(chatID) {
		_ = b.answerCallback(cb, "Доступ запрещён", true)
		return
	}
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, cb.Message.MessageID,
		"⚙️ Админка — выберите действие:", adminMenuKeyboard()))
	_ = b.answerCallback(cb, "", false)
}

/*** МОДЕРАЦИЯ ***/

func (b *Bot) adminPending(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	if !b.isAdmin(chatID) {
		_ = b.answerCallback(cb, "Доступ запрещён", true)
		return
	}
	list, err := b.users.ListPending(ctx)
	if err != nil {
		b.log.Error("list pending failed", "err", err)
		_ = b.answerCallback(cb, "Ошибка, попробуйте позже", true)
		return
	}
	if len(list) == 0 {
		b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, cb.Message.MessageID,
			"Заявок на регистрацию нет.", adminMenuKeyboard()))
		_ = b.answerCallback(cb, "", false)
		return
	}
	var sb strings.Builder
	sb.WriteString("👥 Заявки на регистрацию:\n")
	for _, u := range list {
		sb.WriteString(fmt.Sprintf("• %s (%s)\n", u.Name, u.Region))
	}
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, cb.Message.MessageID,
		sb.String(), pendingKeyboard(list)))
	_ = b.answerCallback(cb, "", false)
}

func (b *Bot) adminApprove(ctx context.Context, cb *tgbotapi.CallbackQuery, raw string) {
	chatID := cb.Message.Chat.ID
	if !b.isAdmin(chatID) {
		_ = b.answerCallback(cb, "Доступ запрещён", true)
		return
	}
	tgID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		_ = b.answerCallback(cb, "Неактуально", false)
		return
	}
	if err := b.users.Approve(ctx, tgID); err != nil {
		b.log.Error("approve failed", "tg_id", tgID, "err", err)
		_ = b.answerCallback(cb, "Ошибка, попробуйте позже", true)
		return
	}
	_ = b.answerCallback(cb, "Принят ✅", false)
	b.editTextAndClear(chatID, cb.Message.MessageID, "✅ Пользователь подтверждён.")

	unread, _ := b.tasks.UnreadCount(ctx, tgID)
	kb := mainMenuKeyboard(unread, b.isAdmin(tgID))
	b.notifyUser(tgID, "✅ Ваша заявка одобрена! Добро пожаловать.", &kb)
}

func (b *Bot) adminReject(ctx context.Context, cb *tgbotapi.CallbackQuery, raw string) {
	chatID := cb.Message.Chat.ID
	if !b.isAdmin(chatID) {
		_ = b.answerCallback(cb, "Доступ запрещён", true)
		return
	}
	tgID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		_ = b.answerCallback(cb, "Неактуально", false)
		return
	}
	if err := b.users.Reject(ctx, tgID); err != nil {
		b.log.Error("reject failed", "tg_id", tgID, "err", err)
		_ = b.answerCallback(cb, "Ошибка, попробуйте позже", true)
		return
	}
	_ = b.answerCallback(cb, "Отклонён ❌", false)
	b.editTextAndClear(chatID, cb.Message.MessageID, "❌ Заявка отклонена.")
	b.notifyUser(tgID, "❌ Ваша заявка на регистрацию отклонена.", nil)
}

/*** ЗАДАЧИ ***/

func (b *Bot) adminTaskStart(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	if !b.isAdmin(chatID) {
		_ = b.answerCallback(cb, "Доступ запрещён", true)
		return
	}
	_ = b.states.Set(ctx, chatID, dialog.StateAdmTaskText, dialog.Payload{})
	b.editTextAndClear(chatID, cb.Message.MessageID, "📢 Введите текст задачи для сотрудников:")
	_ = b.answerCallback(cb, "", false)
}

func (b *Bot) adminTaskText(ctx context.Context, msg *tgbotapi.Message, st *dialog.Item) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		b.send(tgbotapi.NewMessage(chatID, "Текст задачи не может быть пустым. Введите ещё раз:"))
		return
	}
	if _, err := b.tasks.Create(ctx, text); err != nil {
		b.log.Error("create task failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "❌ Не удалось сохранить задачу. Попробуйте ещё раз:"))
		return
	}
	_ = b.states.Reset(ctx, chatID)
	b.send(tgbotapi.NewMessage(chatID, "✅ Задача опубликована."))
	b.showMainMenu(ctx, chatID, "🏠 Главное меню.")
}

func (b *Bot) tasksShow(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	list, err := b.tasks.ListActive(ctx)
	if err != nil {
		b.log.Error("list tasks failed", "err", err)
		_ = b.answerCallback(cb, "Ошибка, попробуйте позже", true)
		return
	}
	if len(list) == 0 {
		_ = b.answerCallback(cb, "🎉 Задач пока нет, отдыхайте!", true)
		return
	}

	var sb strings.Builder
	sb.WriteString("📋 АКТУАЛЬНЫЕ ЗАДАЧИ ОТ РУКОВОДСТВА:\n\n")
	for i, t := range list {
		sb.WriteString(fmt.Sprintf("🔹 Задача №%d\n%s\n➖➖➖➖➖➖\n", i+1, t.Text))
	}
	if err := b.tasks.MarkAllRead(ctx, chatID); err != nil {
		b.log.Error("mark tasks read failed", "err", err)
	}
	b.send(tgbotapi.NewMessage(chatID, sb.String()))

	// Обновляем бейдж на исходном меню.
	b.send(tgbotapi.NewEditMessageReplyMarkup(chatID, cb.Message.MessageID,
		mainMenuKeyboard(0, b.isAdmin(chatID))))
	_ = b.answerCallback(cb, "", false)
}

/*** ЭКСПОРТ ***/

func (b *Bot) adminExportStart(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	if !b.isAdmin(chatID) {
		_ = b.answerCallback(cb, "Доступ запрещён", true)
		return
	}
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, cb.Message.MessageID,
		"📊 Экспорт отчётов\n\nВыберите период:", periodKeyboard()))
	_ = b.answerCallback(cb, "", false)
}

// periodRange переводит ключ периода в границы [from, to). «Сегодня» —
// от полуночи в зоне now, а не от полуночи UTC.
func periodRange(key string, now time.Time) (from, to time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch key {
	case "today":
		return day, day.Add(24 * time.Hour)
	case "yesterday":
		return day.Add(-24 * time.Hour), day
	case "week":
		return day.Add(-6 * 24 * time.Hour), day.Add(24 * time.Hour)
	case "month":
		return day.Add(-29 * 24 * time.Hour), day.Add(24 * time.Hour)
	default: // all
		return time.Time{}, time.Time{}
	}
}

func (b *Bot) adminExportPeriod(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item, key string) {
	chatID := cb.Message.Chat.ID
	if !b.isAdmin(chatID) {
		_ = b.answerCallback(cb, "Доступ запрещён", true)
		return
	}
	names, err := b.users.ListApprovedNames(ctx)
	if err != nil {
		b.log.Error("list users failed", "err", err)
		_ = b.answerCallback(cb, "Ошибка, попробуйте позже", true)
		return
	}
	_ = b.states.Set(ctx, chatID, dialog.StateAdmExportUser, dialog.Payload{"exp_period": key})
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, cb.Message.MessageID,
		"Выберите сотрудника:", userFilterKeyboard(names)))
	_ = b.answerCallback(cb, "", false)
}

func (b *Bot) adminExportRun(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item, user string) {
	chatID := cb.Message.Chat.ID
	if !b.isAdmin(chatID) {
		_ = b.answerCallback(cb, "Доступ запрещён", true)
		return
	}
	if st.State != dialog.StateAdmExportUser {
		_ = b.answerCallback(cb, "Неактуально", false)
		return
	}
	period, _ := dialog.GetString(st.Payload, "exp_period")
	from, to := periodRange(period, time.Now().In(b.loc))
	f := reports.Filter{From: from, To: to}
	if user != "*" {
		f.User = user
	}
	_ = b.states.Reset(ctx, chatID)
	b.editTextAndClear(chatID, cb.Message.MessageID, "⏳ Формирую таблицу, подождите...")
	_ = b.answerCallback(cb, "", false)
	b.sendExport(ctx, chatID, f)
}
