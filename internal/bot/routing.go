package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/anovapharm/medrep-bot/internal/dialog"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		_ = b.states.Reset(ctx, chatID)
		u, _ := b.users.GetByTelegramID(ctx, chatID)
		if u != nil && u.Approved && u.LoggedIn {
			b.showMainMenu(ctx, chatID, "🏠 Главное меню. Что делаем?")
			return
		}
		if u != nil && !u.Approved {
			b.send(tgbotapi.NewMessage(chatID, "⏳ Ваша заявка ещё на рассмотрении у администратора."))
			return
		}
		b.showGuestMenu(chatID, "👋 Добро пожаловать! Авторизуйтесь, чтобы начать работу.")

	case "help":
		b.send(tgbotapi.NewMessage(chatID,
			"Команды:\n/start — главное меню\n/help — помощь"))

	default:
		b.send(tgbotapi.NewMessage(chatID, "Не знаю такую команду. Наберите /help"))
	}
}

func (b *Bot) handleStateMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	st, err := b.states.Get(ctx, chatID)
	if err != nil {
		b.log.Error("state load failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Внутренняя ошибка. Попробуйте /start"))
		return
	}

	switch st.State {
	case dialog.StateRegRegion:
		b.regRegionText(ctx, msg, st)
	case dialog.StateRegLogin:
		b.regLogin(ctx, msg, st)
	case dialog.StateRegPassword:
		b.regPassword(ctx, msg, st)
	case dialog.StateRegRepeat:
		b.regRepeat(ctx, msg, st)
	case dialog.StateLoginPassword:
		b.loginPassword(ctx, msg, st)

	case dialog.StateVisitReqQty:
		b.visitReqQty(ctx, msg, st)
	case dialog.StateVisitRemQty:
		b.visitRemQty(ctx, msg, st)
	case dialog.StateVisitTerm:
		b.visitTerm(ctx, msg, st)
	case dialog.StateVisitComment:
		b.visitComment(ctx, msg, st)

	case dialog.StateAddLPUName, dialog.StateAddAptName:
		b.addFacilityName(ctx, msg, st)
	case dialog.StateAddLPUURL, dialog.StateAddAptURL:
		b.addFacilityURL(ctx, msg, st)
	case dialog.StateAddDocName:
		b.addDoctorName(ctx, msg, st)
	case dialog.StateAddDocSpec:
		b.addDoctorSpecText(ctx, msg, st)
	case dialog.StateAddDocPhone:
		b.addDoctorPhone(ctx, msg, st)
	case dialog.StateAddDocBirthdate:
		b.addDoctorBirthdate(ctx, msg, st)

	case dialog.StateAdmTaskText:
		b.adminTaskText(ctx, msg, st)

	default:
		// Свободный текст вне диалога — подсказываем меню.
		b.send(tgbotapi.NewMessage(chatID, "Выберите действие через меню: /start"))
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	data := cb.Data
	chatID := cb.Message.Chat.ID

	if data == "nav:cancel" {
		_ = b.states.Reset(ctx, chatID)
		b.editTextAndClear(chatID, cb.Message.MessageID, "Операция отменена.")
		_ = b.answerCallback(cb, "Отменено", false)
		u, _ := b.users.GetByTelegramID(ctx, chatID)
		if u != nil && u.Approved && u.LoggedIn {
			b.showMainMenu(ctx, chatID, "🏠 Главное меню.")
		} else {
			b.showGuestMenu(chatID, "🏠 Меню гостя.")
		}
		return
	}

	st, err := b.states.Get(ctx, chatID)
	if err != nil {
		b.log.Error("state load failed", "err", err)
		_ = b.answerCallback(cb, "Ошибка, попробуйте /start", true)
		return
	}

	if data == "nav:back" {
		b.handleBack(ctx, cb, st)
		return
	}

	switch {
	case data == "auth:start":
		b.authStart(ctx, cb)
	case data == "auth:new":
		b.authNew(ctx, cb, st)
	case data == "auth:login":
		b.authLogin(ctx, cb, st)
	case data == "auth:cancel":
		b.authCancel(ctx, cb)
	case data == "auth:logout":
		b.authLogout(ctx, cb)
	case strings.HasPrefix(data, "auth:user:"):
		b.loginPickUser(ctx, cb, st, strings.TrimPrefix(data, "auth:user:"))
	case strings.HasPrefix(data, "reg:region:"):
		b.regRegionPick(ctx, cb, st, strings.TrimPrefix(data, "reg:region:"))

	case data == "visit:doc":
		b.visitStart(ctx, cb, dialog.KindDoctor)
	case data == "visit:apt":
		b.visitStart(ctx, cb, dialog.KindApothecary)
	case strings.HasPrefix(data, "dist:"):
		b.visitPickDistrict(ctx, cb, st, data)
	case strings.HasPrefix(data, "road:"):
		b.visitPickRoad(ctx, cb, st, data)
	case strings.HasPrefix(data, "lpu:pg:"), strings.HasPrefix(data, "apt:pg:"):
		b.visitFacilityPage(ctx, cb, st, data)
	case strings.HasPrefix(data, "lpu:"), strings.HasPrefix(data, "apt:"):
		b.visitPickFacility(ctx, cb, st, data)
	case strings.HasPrefix(data, "doc:pg:"):
		b.visitDoctorPage(ctx, cb, st, data)
	case strings.HasPrefix(data, "doc:"):
		b.visitPickDoctor(ctx, cb, st, data)

	case strings.HasPrefix(data, "med:tg:"):
		b.medToggle(ctx, cb, st, data)
	case strings.HasPrefix(data, "med:pg:"):
		b.medPage(ctx, cb, st, data)
	case data == "med:reset":
		b.medReset(ctx, cb, st)
	case data == "med:ok":
		b.medConfirm(ctx, cb, st)

	case data == "ord:yes":
		b.visitHasOrder(ctx, cb, st, true)
	case data == "ord:no":
		b.visitHasOrder(ctx, cb, st, false)

	case data == "rep:show":
		b.reportShow(ctx, cb, st)
	case data == "rep:save":
		b.reportSave(ctx, cb, st)
	case data == "rep:back":
		b.reportBack(ctx, cb, st)

	case data == "add:lpu", data == "add:apt":
		b.addFacilityStart(ctx, cb, st, data)
	case data == "add:doc":
		b.addDoctorStart(ctx, cb, st)
	case strings.HasPrefix(data, "spec:"):
		b.addDoctorSpecPick(ctx, cb, st, strings.TrimPrefix(data, "spec:"))

	case data == "tasks:show":
		b.tasksShow(ctx, cb)

	case data == "adm:menu":
		b.adminMenu(ctx, cb)
	case data == "adm:pending":
		b.adminPending(ctx, cb)
	case strings.HasPrefix(data, "adm:appr:"):
		b.adminApprove(ctx, cb, strings.TrimPrefix(data, "adm:appr:"))
	case strings.HasPrefix(data, "adm:rej:"):
		b.adminReject(ctx, cb, strings.TrimPrefix(data, "adm:rej:"))
	case data == "adm:export":
		b.adminExportStart(ctx, cb)
	case strings.HasPrefix(data, "adm:per:"):
		b.adminExportPeriod(ctx, cb, st, strings.TrimPrefix(data, "adm:per:"))
	case strings.HasPrefix(data, "adm:user:"):
		b.adminExportRun(ctx, cb, st, strings.TrimPrefix(data, "adm:user:"))
	case data == "adm:task":
		b.adminTaskStart(ctx, cb)

	default:
		_ = b.answerCallback(cb, "Неактуально", false)
	}
}

// handleBack — переход на шаг назад в зависимости от текущего состояния.
func (b *Bot) handleBack(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item) {
	chatID := cb.Message.Chat.ID
	_ = b.answerCallback(cb, "Назад", false)

	switch st.State {
	case dialog.StateVisitPickRoad:
		b.showDistricts(ctx, chatID, cb.Message.MessageID, st)
	case dialog.StateVisitPickLPU:
		b.showRoads(ctx, chatID, cb.Message.MessageID, st)
	case dialog.StateVisitPickDoctor, dialog.StateVisitHasOrder:
		b.showFacilities(ctx, chatID, cb.Message.MessageID, st, 0)
	case dialog.StateVisitPickMeds:
		kind, _ := dialog.GetString(st.Payload, "kind")
		if kind == dialog.KindDoctor {
			b.showDoctors(ctx, chatID, cb.Message.MessageID, st, 0)
		} else {
			_ = b.states.Set(ctx, chatID, dialog.StateVisitHasOrder, st.Payload)
			b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, cb.Message.MessageID,
				"📦 Есть ли заявка на препараты?", hasOrderKeyboard()))
		}
	default:
		// Шага назад нет — остаёмся на месте.
	}
}

func parseTailID(data string) (int64, bool) {
	i := strings.LastIndex(data, ":")
	if i < 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(data[i+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
