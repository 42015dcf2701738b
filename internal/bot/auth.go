package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/anovapharm/medrep-bot/internal/dialog"
)

func (b *Bot) authStart(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	_ = b.states.Reset(ctx, chatID)
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, cb.Message.MessageID,
		"🔐 Авторизация\n\nВы впервые в системе или уже зарегистрированы?",
		authChoiceKeyboard()))
	_ = b.answerCallback(cb, "", false)
}

func (b *Bot) authCancel(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	_ = b.states.Reset(ctx, chatID)
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, cb.Message.MessageID,
		"🏠 Возврат в меню гостя.", guestMenuKeyboard()))
	_ = b.answerCallback(cb, "", false)
}

func (b *Bot) authLogout(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	if err := b.users.SetLoggedIn(ctx, chatID, false); err != nil {
		b.log.Error("logout failed", "err", err)
	}
	_ = b.states.Reset(ctx, chatID)
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, cb.Message.MessageID,
		"🚪 Вы вышли из учётной записи.", guestMenuKeyboard()))
	_ = b.answerCallback(cb, "", false)
}

/*** РЕГИСТРАЦИЯ ***/

func (b *Bot) authNew(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item) {
	chatID := cb.Message.Chat.ID
	_ = b.states.Set(ctx, chatID, dialog.StateRegRegion, dialog.Payload{})
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, cb.Message.MessageID,
		"📝 Регистрация\n\nВыберите ваш регион:", regionKeyboard()))
	_ = b.answerCallback(cb, "", false)
}

func (b *Bot) regRegionPick(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item, region string) {
	chatID := cb.Message.Chat.ID
	if st.State != dialog.StateRegRegion {
		_ = b.answerCallback(cb, "Неактуально", false)
		return
	}
	st.Payload["region"] = region
	_ = b.states.Set(ctx, chatID, dialog.StateRegLogin, st.Payload)
	b.editTextAndClear(chatID, cb.Message.MessageID,
		fmt.Sprintf("Регион: %s\n\n👤 Придумайте логин (имя пользователя):", region))
	_ = b.answerCallback(cb, "", false)
}

// regRegionText — регион можно ввести и текстом (АЛА / ЮКО).
func (b *Bot) regRegionText(ctx context.Context, msg *tgbotapi.Message, st *dialog.Item) {
	chatID := msg.Chat.ID
	region := strings.ToUpper(strings.TrimSpace(msg.Text))
	if region == "" {
		b.send(tgbotapi.NewMessage(chatID, "Введите регион (например: АЛА или ЮКО)."))
		return
	}
	st.Payload["region"] = region
	_ = b.states.Set(ctx, chatID, dialog.StateRegLogin, st.Payload)
	b.send(tgbotapi.NewMessage(chatID, "👤 Придумайте логин (имя пользователя):"))
}

func (b *Bot) regLogin(ctx context.Context, msg *tgbotapi.Message, st *dialog.Item) {
	chatID := msg.Chat.ID
	name := strings.TrimSpace(msg.Text)
	if name == "" {
		b.send(tgbotapi.NewMessage(chatID, "Логин не может быть пустым. Попробуйте ещё раз:"))
		return
	}
	if existing, err := b.users.GetByName(ctx, name); err == nil && existing != nil {
		b.send(tgbotapi.NewMessage(chatID, "⚠️ Такой логин уже занят. Придумайте другой:"))
		return
	}
	st.Payload["login"] = name
	_ = b.states.Set(ctx, chatID, dialog.StateRegPassword, st.Payload)
	b.send(tgbotapi.NewMessage(chatID, "🔑 Придумайте пароль:"))
}

func (b *Bot) regPassword(ctx context.Context, msg *tgbotapi.Message, st *dialog.Item) {
	chatID := msg.Chat.ID
	b.deleteMessage(chatID, msg.MessageID)

	hash, err := bcrypt.GenerateFromPassword([]byte(msg.Text), bcrypt.DefaultCost)
	if err != nil {
		b.log.Error("hash password failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Внутренняя ошибка. Попробуйте ещё раз:"))
		return
	}
	st.Payload["pw_hash"] = string(hash)
	_ = b.states.Set(ctx, chatID, dialog.StateRegRepeat, st.Payload)
	b.send(tgbotapi.NewMessage(chatID, "🔐 Повторите пароль для подтверждения:"))
}

func (b *Bot) regRepeat(ctx context.Context, msg *tgbotapi.Message, st *dialog.Item) {
	chatID := msg.Chat.ID
	b.deleteMessage(chatID, msg.MessageID)

	hash, _ := dialog.GetString(st.Payload, "pw_hash")
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(msg.Text)) != nil {
		delete(st.Payload, "pw_hash")
		_ = b.states.Set(ctx, chatID, dialog.StateRegPassword, st.Payload)
		b.send(tgbotapi.NewMessage(chatID, "❌ Пароли не совпадают! Придумайте пароль заново:"))
		return
	}

	name, _ := dialog.GetString(st.Payload, "login")
	region, _ := dialog.GetString(st.Payload, "region")
	u, err := b.users.Create(ctx, chatID, name, hash, region)
	if err != nil {
		b.log.Error("create user failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "❌ Ошибка при регистрации. Попробуйте позже."))
		_ = b.states.Reset(ctx, chatID)
		return
	}
	_ = b.states.Reset(ctx, chatID)

	b.send(tgbotapi.NewMessage(chatID,
		fmt.Sprintf("✅ Заявка отправлена!\nЛогин: %s\n\nДождитесь подтверждения администратора.", u.Name)))

	kb := pendingApproveKeyboard(u.TelegramID, u.Name)
	b.notifyAdmins(
		fmt.Sprintf("🆕 Новая заявка на регистрацию:\n👤 %s\n🌍 Регион: %s", u.Name, u.Region),
		&kb)
}

func pendingApproveKeyboard(tgID int64, name string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Принять", fmt.Sprintf("adm:appr:%d", tgID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отклонить", fmt.Sprintf("adm:rej:%d", tgID)),
		),
	)
}

/*** ЛОГИН ***/

func (b *Bot) authLogin(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item) {
	chatID := cb.Message.Chat.ID
	names, err := b.users.ListApprovedNames(ctx)
	if err != nil {
		b.log.Error("list users failed", "err", err)
		_ = b.answerCallback(cb, "Ошибка, попробуйте позже", true)
		return
	}
	if len(names) == 0 {
		b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, cb.Message.MessageID,
			"⚠️ В базе пока нет подтверждённых пользователей. Пожалуйста, зарегистрируйтесь.",
			guestMenuKeyboard()))
		_ = b.answerCallback(cb, "", false)
		return
	}
	_ = b.states.Set(ctx, chatID, dialog.StateLoginPickUser, dialog.Payload{})
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, cb.Message.MessageID,
		"👇 Выберите свой профиль:", userPickKeyboard(names)))
	_ = b.answerCallback(cb, "", false)
}

func (b *Bot) loginPickUser(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item, name string) {
	chatID := cb.Message.Chat.ID
	if st.State != dialog.StateLoginPickUser {
		_ = b.answerCallback(cb, "Неактуально", false)
		return
	}
	st.Payload["login_name"] = name
	_ = b.states.Set(ctx, chatID, dialog.StateLoginPassword, st.Payload)
	b.editTextAndClear(chatID, cb.Message.MessageID,
		fmt.Sprintf("🔑 Профиль: %s\n\n✍️ Введите ваш пароль:", name))
	_ = b.answerCallback(cb, "", false)
}

func (b *Bot) loginPassword(ctx context.Context, msg *tgbotapi.Message, st *dialog.Item) {
	chatID := msg.Chat.ID
	b.deleteMessage(chatID, msg.MessageID)

	name, _ := dialog.GetString(st.Payload, "login_name")
	u, err := b.users.GetByName(ctx, name)
	if err != nil || u == nil || !u.Approved {
		b.send(tgbotapi.NewMessage(chatID, "⚠️ Профиль не найден. Начните заново: /start"))
		_ = b.states.Reset(ctx, chatID)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(msg.Text)) != nil {
		b.send(tgbotapi.NewMessage(chatID, "❌ Неверный пароль. Попробуйте снова:"))
		return
	}

	if err := b.users.SetLoggedIn(ctx, u.TelegramID, true); err != nil {
		b.log.Error("set logged_in failed", "err", err)
	}
	_ = b.states.Reset(ctx, chatID)
	b.showMainMenu(ctx, chatID, fmt.Sprintf("✅ Добро пожаловать, %s!", u.Name))
}

func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.log.Debug("delete message failed", "err", err)
	}
}
