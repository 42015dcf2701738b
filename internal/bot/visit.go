package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/anovapharm/medrep-bot/internal/dialog"
	"github.com/anovapharm/medrep-bot/internal/domain/geo"
	"github.com/anovapharm/medrep-bot/internal/domain/reports"
	"github.com/anovapharm/medrep-bot/internal/infra/metrics"
)

// visitStart — вход в маршрут (врачи) или аптеку из главного меню.
func (b *Bot) visitStart(ctx context.Context, cb *tgbotapi.CallbackQuery, kind string) {
	chatID := cb.Message.Chat.ID
	u, _ := b.users.GetByTelegramID(ctx, chatID)
	if u == nil || !u.Approved || !u.LoggedIn {
		_ = b.answerCallback(cb, "Сначала авторизуйтесь: /start", true)
		return
	}
	st := &dialog.Item{ChatID: chatID, State: dialog.StateVisitPickDistrict,
		Payload: dialog.Payload{"kind": kind}}
	b.showDistricts(ctx, chatID, cb.Message.MessageID, st)
	_ = b.answerCallback(cb, "", false)
}

func (b *Bot) showDistricts(ctx context.Context, chatID int64, messageID int, st *dialog.Item) {
	region := ""
	if u, _ := b.users.GetByTelegramID(ctx, chatID); u != nil {
		region = u.Region
	}
	ds, err := b.geo.ListDistricts(ctx, region)
	if err != nil {
		b.log.Error("list districts failed", "err", err)
		b.editTextAndClear(chatID, messageID, "Не удалось загрузить районы. Попробуйте позже.")
		return
	}
	kb := districtKeyboard(ds, st.Payload)
	_ = b.states.Set(ctx, chatID, dialog.StateVisitPickDistrict, st.Payload)
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, "🗺 Выберите район:", kb))
}

func (b *Bot) visitPickDistrict(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item, data string) {
	chatID := cb.Message.Chat.ID
	if st.State != dialog.StateVisitPickDistrict {
		_ = b.answerCallback(cb, "Неактуально", false)
		return
	}
	id, ok := parseTailID(data)
	if !ok {
		_ = b.answerCallback(cb, "Неактуально", false)
		return
	}

	name, ok := dialog.ButtonName(st.Payload, data)
	if !ok {
		if d, err := b.geo.GetDistrict(ctx, id); err == nil && d != nil {
			name = d.Name
		} else {
			name = fmt.Sprintf("ID %d", id)
		}
	}
	st.Payload["district_id"] = id
	st.Payload["district_name"] = name
	b.showRoads(ctx, chatID, cb.Message.MessageID, st)
	_ = b.answerCallback(cb, "", false)
}

func (b *Bot) showRoads(ctx context.Context, chatID int64, messageID int, st *dialog.Item) {
	districtID, _ := dialog.GetInt64(st.Payload, "district_id")
	nums, err := b.geo.ListRoadNums(ctx, districtID)
	if err != nil {
		b.log.Error("list roads failed", "err", err)
		b.editTextAndClear(chatID, messageID, "Не удалось загрузить маршруты. Попробуйте позже.")
		return
	}
	_ = b.states.Set(ctx, chatID, dialog.StateVisitPickRoad, st.Payload)
	name, _ := dialog.GetString(st.Payload, "district_name")
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID,
		fmt.Sprintf("📍 Район: %s\n\nВыберите маршрут:", name), roadKeyboard(nums)))
}

func (b *Bot) visitPickRoad(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item, data string) {
	chatID := cb.Message.Chat.ID
	if st.State != dialog.StateVisitPickRoad {
		_ = b.answerCallback(cb, "Неактуально", false)
		return
	}
	num, ok := parseTailID(data)
	if !ok {
		_ = b.answerCallback(cb, "Неактуально", false)
		return
	}
	districtID, _ := dialog.GetInt64(st.Payload, "district_id")
	roadID, err := b.geo.RoadID(ctx, districtID, int(num))
	if err != nil || roadID == 0 {
		b.log.Error("road lookup failed", "district_id", districtID, "num", num, "err", err)
		_ = b.answerCallback(cb, "Маршрут не найден", true)
		return
	}
	st.Payload["road_num"] = num
	st.Payload["road_id"] = roadID
	st.Payload["road_name"] = fmt.Sprintf("Маршрут %d", num)
	b.showFacilities(ctx, chatID, cb.Message.MessageID, st, 0)
	_ = b.answerCallback(cb, "", false)
}

func (b *Bot) facilityKind(p dialog.Payload) geo.FacilityKind {
	if kind, _ := dialog.GetString(p, "kind"); kind == dialog.KindApothecary {
		return geo.KindApothecary
	}
	return geo.KindLPU
}

func (b *Bot) showFacilities(ctx context.Context, chatID int64, messageID int, st *dialog.Item, page int) {
	kind := b.facilityKind(st.Payload)
	roadID, _ := dialog.GetInt64(st.Payload, "road_id")
	fs, err := b.geo.ListFacilities(ctx, kind, roadID)
	if err != nil {
		b.log.Error("list facilities failed", "err", err)
		b.editTextAndClear(chatID, messageID, "Не удалось загрузить список. Попробуйте позже.")
		return
	}
	st.Payload["fac_page"] = page
	// клавиатура заполняет кэш подписей — собираем её до записи состояния
	kb := facilityKeyboard(fs, kind, page, st.Payload)
	_ = b.states.Set(ctx, chatID, dialog.StateVisitPickLPU, st.Payload)

	title := "🏥 Выберите ЛПУ:"
	if kind == geo.KindApothecary {
		title = "💊 Выберите аптеку:"
	}
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, title, kb))
}

func (b *Bot) visitFacilityPage(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item, data string) {
	if st.State != dialog.StateVisitPickLPU {
		_ = b.answerCallback(cb, "Неактуально", false)
		return
	}
	page, _ := parseTailID(data)
	b.showFacilities(ctx, cb.Message.Chat.ID, cb.Message.MessageID, st, int(page))
	_ = b.answerCallback(cb, "", false)
}

func (b *Bot) visitPickFacility(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item, data string) {
	chatID := cb.Message.Chat.ID
	if st.State != dialog.StateVisitPickLPU {
		_ = b.answerCallback(cb, "Неактуально", false)
		return
	}
	id, ok := parseTailID(data)
	if !ok {
		_ = b.answerCallback(cb, "Неактуально", false)
		return
	}
	kind := b.facilityKind(st.Payload)
	name, ok := dialog.ButtonName(st.Payload, data)
	if !ok {
		if f, err := b.geo.GetFacility(ctx, kind, id); err == nil && f != nil {
			name = f.Name
		} else {
			name = fmt.Sprintf("ID %d", id)
		}
	}
	st.Payload["lpu_id"] = id
	st.Payload["lpu_name"] = name

	if kind == geo.KindApothecary {
		_ = b.states.Set(ctx, chatID, dialog.StateVisitHasOrder, st.Payload)
		b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, cb.Message.MessageID,
			fmt.Sprintf("🏥 %s\n\n📦 Есть ли заявка на препараты?", name), hasOrderKeyboard()))
	} else {
		b.showDoctors(ctx, chatID, cb.Message.MessageID, st, 0)
	}
	_ = b.answerCallback(cb, "", false)
}

func (b *Bot) showDoctors(ctx context.Context, chatID int64, messageID int, st *dialog.Item, page int) {
	lpuID, _ := dialog.GetInt64(st.Payload, "lpu_id")
	list, err := b.doctors.ListByLPU(ctx, lpuID)
	if err != nil {
		b.log.Error("list doctors failed", "err", err)
		b.editTextAndClear(chatID, messageID, "Не удалось загрузить врачей. Попробуйте позже.")
		return
	}
	st.Payload["doc_page"] = page
	kb := doctorKeyboard(list, page, st.Payload)
	_ = b.states.Set(ctx, chatID, dialog.StateVisitPickDoctor, st.Payload)

	lpuName, _ := dialog.GetString(st.Payload, "lpu_name")
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID,
		fmt.Sprintf("🏥 %s\n\n👨‍⚕️ Выберите врача:", lpuName), kb))
}

func (b *Bot) visitDoctorPage(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item, data string) {
	if st.State != dialog.StateVisitPickDoctor {
		_ = b.answerCallback(cb, "Неактуально", false)
		return
	}
	page, _ := parseTailID(data)
	b.showDoctors(ctx, cb.Message.Chat.ID, cb.Message.MessageID, st, int(page))
	_ = b.answerCallback(cb, "", false)
}

func (b *Bot) visitPickDoctor(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item, data string) {
	chatID := cb.Message.Chat.ID
	if st.State != dialog.StateVisitPickDoctor {
		_ = b.answerCallback(cb, "Неактуально", false)
		return
	}
	id, ok := parseTailID(data)
	if !ok {
		_ = b.answerCallback(cb, "Неактуально", false)
		return
	}
	d, err := b.doctors.GetByID(ctx, id)
	if err != nil || d == nil {
		_ = b.answerCallback(cb, "Врач не найден", true)
		return
	}
	name, ok := dialog.ButtonName(st.Payload, data)
	if !ok {
		name = d.Name
	}
	st.Payload["doc_id"] = id
	st.Payload["doc_name"] = name
	st.Payload["doc_spec"] = d.Spec
	st.Payload["doc_num"] = d.Phone
	b.showMeds(ctx, chatID, cb.Message.MessageID, st, 0)
	_ = b.answerCallback(cb, "", false)
}

/*** МУЛЬТИВЫБОР ПРЕПАРАТОВ ***/

func (b *Bot) showMeds(ctx context.Context, chatID int64, messageID int, st *dialog.Item, page int) {
	meds, err := b.meds.List(ctx)
	if err != nil {
		b.log.Error("list medications failed", "err", err)
		b.editTextAndClear(chatID, messageID, "Не удалось загрузить препараты. Попробуйте позже.")
		return
	}
	selected := dialog.GetInt64Slice(st.Payload, "selected")
	st.Payload["med_page"] = page
	_ = b.states.Set(ctx, chatID, dialog.StateVisitPickMeds, st.Payload)
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID,
		"💊 Выберите препараты:", multiSelectKeyboard(meds, selected, page)))
}

// medToggle переключает отметку; повторный выбор снятого препарата
// ставит его в конец списка.
func (b *Bot) medToggle(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item, data string) {
	chatID := cb.Message.Chat.ID
	if st.State != dialog.StateVisitPickMeds {
		_ = b.answerCallback(cb, "Неактуально", false)
		return
	}
	id, ok := parseTailID(data)
	if !ok {
		_ = b.answerCallback(cb, "Неактуально", false)
		return
	}
	selected := dialog.GetInt64Slice(st.Payload, "selected")
	st.Payload["selected"] = toggleID(selected, id)
	_ = b.states.Set(ctx, chatID, dialog.StateVisitPickMeds, st.Payload)
	b.rerenderMeds(ctx, cb, st)
	_ = b.answerCallback(cb, "", false)
}

func toggleID(selected []int64, id int64) []int64 {
	for i, s := range selected {
		if s == id {
			return append(selected[:i], selected[i+1:]...)
		}
	}
	return append(selected, id)
}

func (b *Bot) medPage(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item, data string) {
	if st.State != dialog.StateVisitPickMeds {
		_ = b.answerCallback(cb, "Неактуально", false)
		return
	}
	page, _ := parseTailID(data)
	st.Payload["med_page"] = page
	_ = b.states.Set(ctx, cb.Message.Chat.ID, dialog.StateVisitPickMeds, st.Payload)
	b.rerenderMeds(ctx, cb, st)
	_ = b.answerCallback(cb, "", false)
}

func (b *Bot) medReset(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item) {
	if st.State != dialog.StateVisitPickMeds {
		_ = b.answerCallback(cb, "Неактуально", false)
		return
	}
	st.Payload["selected"] = []int64{}
	_ = b.states.Set(ctx, cb.Message.Chat.ID, dialog.StateVisitPickMeds, st.Payload)
	b.rerenderMeds(ctx, cb, st)
	_ = b.answerCallback(cb, "Выбор сброшен ✅", false)
}

func (b *Bot) rerenderMeds(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item) {
	meds, err := b.meds.List(ctx)
	if err != nil {
		b.log.Error("list medications failed", "err", err)
		return
	}
	page, _ := dialog.GetInt64(st.Payload, "med_page")
	selected := dialog.GetInt64Slice(st.Payload, "selected")
	b.send(tgbotapi.NewEditMessageReplyMarkup(cb.Message.Chat.ID, cb.Message.MessageID,
		multiSelectKeyboard(meds, selected, int(page))))
}

func (b *Bot) medConfirm(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item) {
	chatID := cb.Message.Chat.ID
	if st.State != dialog.StateVisitPickMeds {
		_ = b.answerCallback(cb, "Неактуально", false)
		return
	}
	selected := dialog.GetInt64Slice(st.Payload, "selected")
	if len(selected) == 0 {
		_ = b.answerCallback(cb, "⚠️ Ничего не выбрано", true)
		return
	}

	names, err := b.meds.NamesByIDs(ctx, selected)
	if err != nil {
		b.log.Error("resolve medications failed", "err", err)
		_ = b.answerCallback(cb, "Ошибка, попробуйте ещё раз", true)
		return
	}
	list := make([]string, 0, len(selected))
	for _, id := range selected {
		name, ok := names[id]
		if !ok {
			name = fmt.Sprintf("ID %d", id)
		}
		list = append(list, name)
	}
	st.Payload["prep_names"] = list

	kind, _ := dialog.GetString(st.Payload, "kind")
	if kind == dialog.KindApothecary {
		q := dialog.NewQtyQueue(selected)
		dialog.SetQueue(st.Payload, q)
		_ = b.states.Set(ctx, chatID, dialog.StateVisitReqQty, st.Payload)
		b.editTextAndClear(chatID, cb.Message.MessageID,
			"📋 Вы выбрали препараты:\n"+bulletList(list))
		b.askNextQty(ctx, chatID, st, q)
	} else {
		_ = b.states.Set(ctx, chatID, dialog.StateVisitTerm, st.Payload)
		b.editTextAndClear(chatID, cb.Message.MessageID,
			"📋 Вы выбрали препараты:\n"+bulletList(list))
		b.send(tgbotapi.NewMessage(chatID, "✍️ Введите условие договора:"))
	}
	_ = b.answerCallback(cb, "✅ Выбор сохранён", false)
}

func bulletList(items []string) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString("• ")
		b.WriteString(it)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

/*** ЦИКЛ КОЛИЧЕСТВ (АПТЕКА) ***/

func (b *Bot) medName(ctx context.Context, st *dialog.Item, id int64) string {
	names := dialog.GetStringSlice(st.Payload, "prep_names")
	selected := dialog.GetInt64Slice(st.Payload, "selected")
	for i, sid := range selected {
		if sid == id && i < len(names) {
			return names[i]
		}
	}
	if m, err := b.meds.NamesByIDs(ctx, []int64{id}); err == nil {
		if name, ok := m[id]; ok {
			return name
		}
	}
	return fmt.Sprintf("ID %d", id)
}

func (b *Bot) askNextQty(ctx context.Context, chatID int64, st *dialog.Item, q *dialog.QtyQueue) {
	id, ok := q.Next()
	if !ok {
		_ = b.states.Set(ctx, chatID, dialog.StateVisitComment, st.Payload)
		b.send(tgbotapi.NewMessage(chatID, "✍️ Напишите ваш комментарий:"))
		return
	}
	dialog.SetQueue(st.Payload, q)
	_ = b.states.Set(ctx, chatID, dialog.StateVisitReqQty, st.Payload)
	b.send(tgbotapi.NewMessage(chatID,
		fmt.Sprintf("📦 «%s» — на какое количество заявка? (число)", b.medName(ctx, st, id))))
}

func parseQty(text string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (b *Bot) visitReqQty(ctx context.Context, msg *tgbotapi.Message, st *dialog.Item) {
	chatID := msg.Chat.ID
	n, ok := parseQty(msg.Text)
	if !ok {
		b.send(tgbotapi.NewMessage(chatID, "⚠️ Введите целое неотрицательное число:"))
		return
	}
	q, ok := dialog.GetQueue(st.Payload)
	if !ok {
		b.sessionLost(ctx, chatID)
		return
	}
	id, ok := q.Next()
	if !ok {
		b.sessionLost(ctx, chatID)
		return
	}
	q.SetRequested(n)
	dialog.SetQueue(st.Payload, q)
	_ = b.states.Set(ctx, chatID, dialog.StateVisitRemQty, st.Payload)
	b.send(tgbotapi.NewMessage(chatID,
		fmt.Sprintf("📦 «%s» — какой остаток? (число)", b.medName(ctx, st, id))))
}

func (b *Bot) visitRemQty(ctx context.Context, msg *tgbotapi.Message, st *dialog.Item) {
	chatID := msg.Chat.ID
	n, ok := parseQty(msg.Text)
	if !ok {
		b.send(tgbotapi.NewMessage(chatID, "⚠️ Введите целое неотрицательное число:"))
		return
	}
	q, ok := dialog.GetQueue(st.Payload)
	if !ok {
		b.sessionLost(ctx, chatID)
		return
	}
	q.SetRemaining(n)
	dialog.SetQueue(st.Payload, q)
	b.askNextQty(ctx, chatID, st, q)
}

// sessionLost — ожидаемый ключ пропал из диалога (например, после
// рестарта посреди цикла): чистим состояние и просим начать заново.
func (b *Bot) sessionLost(ctx context.Context, chatID int64) {
	_ = b.states.Reset(ctx, chatID)
	b.send(tgbotapi.NewMessage(chatID, "⚠️ Данные диалога потеряны. Начните заново: /start"))
}

func (b *Bot) visitHasOrder(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item, yes bool) {
	chatID := cb.Message.Chat.ID
	if st.State != dialog.StateVisitHasOrder {
		_ = b.answerCallback(cb, "Неактуально", false)
		return
	}
	if yes {
		b.showMeds(ctx, chatID, cb.Message.MessageID, st, 0)
	} else {
		_ = b.states.Set(ctx, chatID, dialog.StateVisitComment, st.Payload)
		b.editTextAndClear(chatID, cb.Message.MessageID, "✍️ Напишите ваш комментарий:")
	}
	_ = b.answerCallback(cb, "", false)
}

/*** ТЕКСТОВЫЕ ШАГИ И ПОДТВЕРЖДЕНИЕ ***/

func (b *Bot) visitTerm(ctx context.Context, msg *tgbotapi.Message, st *dialog.Item) {
	chatID := msg.Chat.ID
	st.Payload["term"] = strings.TrimSpace(msg.Text)
	_ = b.states.Set(ctx, chatID, dialog.StateVisitComment, st.Payload)
	b.send(tgbotapi.NewMessage(chatID, "✅ Условие договора сохранено.\n✍️ Напишите ваш комментарий:"))
}

func (b *Bot) visitComment(ctx context.Context, msg *tgbotapi.Message, st *dialog.Item) {
	chatID := msg.Chat.ID
	st.Payload["comms"] = strings.TrimSpace(msg.Text)
	_ = b.states.Set(ctx, chatID, dialog.StateVisitConfirm, st.Payload)
	m := tgbotapi.NewMessage(chatID, "📌 Хотите посмотреть или сохранить отчёт?")
	m.ReplyMarkup = confirmKeyboard()
	b.send(m)
}

// reportShow — карточка предварительного просмотра.
func (b *Bot) reportShow(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item) {
	chatID := cb.Message.Chat.ID
	if st.State != dialog.StateVisitConfirm {
		_ = b.answerCallback(cb, "Неактуально", false)
		return
	}
	kind, _ := dialog.GetString(st.Payload, "kind")
	lpuName, _ := dialog.GetString(st.Payload, "lpu_name")
	comms, _ := dialog.GetString(st.Payload, "comms")
	if comms == "" {
		comms = "Без комментария"
	}

	var sb strings.Builder
	sb.WriteString("📋 ПРЕДВАРИТЕЛЬНЫЙ ПРОСМОТР\n➖➖➖➖➖➖➖➖➖➖\n")
	if kind == dialog.KindDoctor {
		docName, _ := dialog.GetString(st.Payload, "doc_name")
		docSpec, _ := dialog.GetString(st.Payload, "doc_spec")
		if docSpec == "" {
			docSpec = "Нет"
		}
		sb.WriteString(fmt.Sprintf("📍 ЛПУ: %s\n👨‍⚕️ Врач: %s\n🩺 Спец: %s\n", lpuName, docName, docSpec))
		if term, _ := dialog.GetString(st.Payload, "term"); term != "" {
			sb.WriteString("📝 Условия: " + term + "\n")
		}
		sb.WriteString("➖➖➖➖➖➖➖➖➖➖\n💊 Препараты:\n")
		names := dialog.GetStringSlice(st.Payload, "prep_names")
		if len(names) == 0 {
			sb.WriteString("Список пуст\n")
		} else {
			for _, n := range names {
				sb.WriteString("▫️ " + n + "\n")
			}
		}
	} else {
		sb.WriteString(fmt.Sprintf("🏥 Аптека: %s\n➖➖➖➖➖➖➖➖➖➖\n💊 Препараты:\n", lpuName))
		q, ok := dialog.GetQueue(st.Payload)
		if !ok || len(q.Done) == 0 {
			sb.WriteString("Список пуст\n")
		} else {
			for _, it := range q.Done {
				sb.WriteString(fmt.Sprintf("▫️ %s — Заявка: %d / Остаток: %d\n",
					b.medName(ctx, st, it.MedID), it.Requested, it.Remaining))
			}
		}
	}
	sb.WriteString("\n💬 Комментарий: " + comms)

	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, cb.Message.MessageID,
		sb.String(), reviewKeyboard()))
	_ = b.answerCallback(cb, "", false)
}

// reportBack возвращает к выбору препаратов; условия договора и
// комментарий при этом сохраняются.
func (b *Bot) reportBack(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item) {
	if st.State != dialog.StateVisitConfirm {
		_ = b.answerCallback(cb, "Неактуально", false)
		return
	}
	dialog.ClearQueue(st.Payload)
	b.showMeds(ctx, cb.Message.Chat.ID, cb.Message.MessageID, st, 0)
	_ = b.answerCallback(cb, "", false)
}

func (b *Bot) reportSave(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item) {
	chatID := cb.Message.Chat.ID
	if st.State != dialog.StateVisitConfirm {
		_ = b.answerCallback(cb, "Неактуально", false)
		return
	}

	userName := cb.From.FirstName
	if u, _ := b.users.GetByTelegramID(ctx, chatID); u != nil {
		userName = u.Name
	}
	district, _ := dialog.GetString(st.Payload, "district_name")
	road, _ := dialog.GetString(st.Payload, "road_name")
	lpuName, _ := dialog.GetString(st.Payload, "lpu_name")
	comms, _ := dialog.GetString(st.Payload, "comms")
	if comms == "" {
		comms = "-"
	}

	kind, _ := dialog.GetString(st.Payload, "kind")
	switch kind {
	case dialog.KindDoctor:
		b.saveDoctorReport(ctx, cb, st, userName, district, road, lpuName, comms)
	case dialog.KindApothecary:
		b.saveApothecaryReport(ctx, cb, st, userName, district, road, lpuName, comms)
	default:
		_ = b.answerCallback(cb, "Не удалось определить тип отчёта", true)
	}
}

func (b *Bot) saveDoctorReport(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item,
	userName, district, road, lpuName, comms string) {

	chatID := cb.Message.Chat.ID
	docName, _ := dialog.GetString(st.Payload, "doc_name")
	docSpec, _ := dialog.GetString(st.Payload, "doc_spec")
	if s := strings.ToLower(strings.TrimSpace(docSpec)); s == "" || s == "нет" || s == "-" {
		docSpec = "Не указана"
	}
	docNum, _ := dialog.GetString(st.Payload, "doc_num")
	term, _ := dialog.GetString(st.Payload, "term")
	if term == "" {
		term = "Нет условий"
	}
	preps := dialog.GetStringSlice(st.Payload, "prep_names")

	id, err := b.reports.SaveDoctorReport(ctx, reports.DoctorReport{
		User: userName, District: district, Road: road, LPU: lpuName,
		DocName: docName, DocSpec: docSpec, DocNum: docNum,
		Term: term, Comment: comms,
	})
	if err == nil {
		err = b.reports.AddDoctorPreps(ctx, id, preps)
	}
	if err != nil {
		// Состояние не сбрасываем: пользователь может повторить сохранение.
		b.log.Error("save doctor report failed", "err", err)
		_ = b.answerCallback(cb, "❌ Ошибка при сохранении, попробуйте ещё раз", true)
		return
	}
	metrics.ReportsSavedTotal.WithLabelValues(dialog.KindDoctor).Inc()
	_ = b.answerCallback(cb, "✅ Отчёт по врачу сохранён", false)

	// Остаёмся в том же ЛПУ: чистим поля визита и ждём следующего врача.
	for _, k := range []string{"selected", "prep_names", "term", "comms",
		"doc_id", "doc_name", "doc_spec", "doc_num"} {
		delete(st.Payload, k)
	}
	dialog.ClearQueue(st.Payload)
	b.editTextAndClear(chatID, cb.Message.MessageID,
		fmt.Sprintf("✅ Отчёт по врачу (%s) принят.", docName))
	m := tgbotapi.NewMessage(chatID, "👨‍⚕️ Выберите следующего врача:")
	b.send(m)
	b.showDoctorsAsNew(ctx, chatID, st)
}

// showDoctorsAsNew — список врачей новым сообщением (после сохранения
// исходное сообщение уже очищено).
func (b *Bot) showDoctorsAsNew(ctx context.Context, chatID int64, st *dialog.Item) {
	lpuID, _ := dialog.GetInt64(st.Payload, "lpu_id")
	list, err := b.doctors.ListByLPU(ctx, lpuID)
	if err != nil {
		b.log.Error("list doctors failed", "err", err)
		b.sessionLost(ctx, chatID)
		return
	}
	st.Payload["doc_page"] = 0
	kb := doctorKeyboard(list, 0, st.Payload)
	_ = b.states.Set(ctx, chatID, dialog.StateVisitPickDoctor, st.Payload)
	lpuName, _ := dialog.GetString(st.Payload, "lpu_name")
	m := tgbotapi.NewMessage(chatID, fmt.Sprintf("🏥 %s", lpuName))
	m.ReplyMarkup = kb
	b.send(m)
}

func (b *Bot) saveApothecaryReport(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item,
	userName, district, road, aptName, comms string) {

	chatID := cb.Message.Chat.ID
	var items []reports.QtyLine
	if q, ok := dialog.GetQueue(st.Payload); ok {
		for _, it := range q.Done {
			items = append(items, reports.QtyLine{
				Prep:      b.medName(ctx, st, it.MedID),
				Requested: it.Requested,
				Remaining: it.Remaining,
			})
		}
	}

	id, err := b.reports.SaveApothecaryReport(ctx, reports.ApothecaryReport{
		User: userName, District: district, Road: road,
		Apothecary: aptName, Comment: comms,
	})
	if err == nil {
		err = b.reports.AddApothecaryItems(ctx, id, items)
	}
	if err != nil {
		b.log.Error("save apothecary report failed", "err", err)
		_ = b.answerCallback(cb, "❌ Ошибка при сохранении, попробуйте ещё раз", true)
		return
	}
	metrics.ReportsSavedTotal.WithLabelValues(dialog.KindApothecary).Inc()
	_ = b.answerCallback(cb, "✅ Отчёт по аптеке сохранён", false)

	_ = b.states.Reset(ctx, chatID)
	b.editTextAndClear(chatID, cb.Message.MessageID,
		fmt.Sprintf("✅ Отчёт по аптеке «%s» сохранён!", aptName))
	b.showMainMenu(ctx, chatID, "Что делаем дальше?")
}
