package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/anovapharm/medrep-bot/internal/dialog"
	"github.com/anovapharm/medrep-bot/internal/domain/geo"
	"github.com/anovapharm/medrep-bot/internal/textutil"
)

/*** ДОБАВЛЕНИЕ ЛПУ / АПТЕКИ ***/

func (b *Bot) addFacilityStart(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item, data string) {
	chatID := cb.Message.Chat.ID
	if st.State != dialog.StateVisitPickLPU {
		_ = b.answerCallback(cb, "Неактуально", false)
		return
	}
	if data == "add:apt" {
		_ = b.states.Set(ctx, chatID, dialog.StateAddAptName, st.Payload)
		b.editTextAndClear(chatID, cb.Message.MessageID, "➕ Добавление новой аптеки!\n\nВведите название:")
	} else {
		_ = b.states.Set(ctx, chatID, dialog.StateAddLPUName, st.Payload)
		b.editTextAndClear(chatID, cb.Message.MessageID, "➕ Добавление нового ЛПУ!\n\nВведите название:")
	}
	_ = b.answerCallback(cb, "", false)
}

func (b *Bot) addFacilityName(ctx context.Context, msg *tgbotapi.Message, st *dialog.Item) {
	chatID := msg.Chat.ID
	name := strings.TrimSpace(msg.Text)
	if name == "" {
		b.send(tgbotapi.NewMessage(chatID, "Название не может быть пустым. Введите ещё раз:"))
		return
	}
	st.Payload["new_name"] = name
	next := dialog.StateAddLPUURL
	if st.State == dialog.StateAddAptName {
		next = dialog.StateAddAptURL
	}
	_ = b.states.Set(ctx, chatID, next, st.Payload)
	b.send(tgbotapi.NewMessage(chatID, "Отправьте ссылку (2ГИС) на эту точку:"))
}

func (b *Bot) addFacilityURL(ctx context.Context, msg *tgbotapi.Message, st *dialog.Item) {
	chatID := msg.Chat.ID
	url := strings.TrimSpace(msg.Text)
	name, _ := dialog.GetString(st.Payload, "new_name")
	roadID, _ := dialog.GetInt64(st.Payload, "road_id")

	kind := geo.KindLPU
	if st.State == dialog.StateAddAptURL {
		kind = geo.KindApothecary
	}
	if _, err := b.geo.AddFacility(ctx, kind, roadID, name, url); err != nil {
		b.log.Error("add facility failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "❌ Не удалось сохранить. Попробуйте ещё раз:"))
		return
	}
	delete(st.Payload, "new_name")
	b.send(tgbotapi.NewMessage(chatID, "✅ Точка успешно добавлена!"))
	b.showFacilitiesAsNew(ctx, chatID, st)
}

func (b *Bot) showFacilitiesAsNew(ctx context.Context, chatID int64, st *dialog.Item) {
	kind := b.facilityKind(st.Payload)
	roadID, _ := dialog.GetInt64(st.Payload, "road_id")
	fs, err := b.geo.ListFacilities(ctx, kind, roadID)
	if err != nil {
		b.log.Error("list facilities failed", "err", err)
		b.sessionLost(ctx, chatID)
		return
	}
	st.Payload["fac_page"] = 0
	kb := facilityKeyboard(fs, kind, 0, st.Payload)
	_ = b.states.Set(ctx, chatID, dialog.StateVisitPickLPU, st.Payload)

	title := "🏥 Выберите ЛПУ:"
	if kind == geo.KindApothecary {
		title = "💊 Выберите аптеку:"
	}
	m := tgbotapi.NewMessage(chatID, title)
	m.ReplyMarkup = kb
	b.send(m)
}

/*** ДОБАВЛЕНИЕ ВРАЧА ***/

func (b *Bot) addDoctorStart(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item) {
	chatID := cb.Message.Chat.ID
	if st.State != dialog.StateVisitPickDoctor {
		_ = b.answerCallback(cb, "Неактуально", false)
		return
	}
	_ = b.states.Set(ctx, chatID, dialog.StateAddDocName, st.Payload)
	b.editTextAndClear(chatID, cb.Message.MessageID, "➕ Добавление нового врача!\n\nВведите ФИО врача:")
	_ = b.answerCallback(cb, "", false)
}

func (b *Bot) addDoctorName(ctx context.Context, msg *tgbotapi.Message, st *dialog.Item) {
	chatID := msg.Chat.ID
	fio := strings.TrimSpace(msg.Text)
	if fio == "" {
		b.send(tgbotapi.NewMessage(chatID, "ФИО не может быть пустым. Введите ещё раз:"))
		return
	}
	st.Payload["new_doc_name"] = fio
	_ = b.states.Set(ctx, chatID, dialog.StateAddDocSpec, st.Payload)

	specs, err := b.doctors.ListMainSpecs(ctx)
	if err != nil {
		b.log.Error("list specs failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Введите специальность врача текстом:"))
		return
	}
	m := tgbotapi.NewMessage(chatID,
		fmt.Sprintf("Вы ввели: %s\n\n🩺 Выберите специальность или введите её текстом:",
			textutil.ShortenName(fio)))
	m.ReplyMarkup = specKeyboard(specs)
	b.send(m)
}

func (b *Bot) addDoctorSpecPick(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item, raw string) {
	chatID := cb.Message.Chat.ID
	if st.State != dialog.StateAddDocSpec {
		_ = b.answerCallback(cb, "Неактуально", false)
		return
	}
	msID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		_ = b.answerCallback(cb, "Неактуально", false)
		return
	}
	specID, err := b.doctors.ResolveSpecByMainID(ctx, msID)
	if err != nil {
		b.log.Error("resolve spec failed", "ms_id", msID, "err", err)
		_ = b.answerCallback(cb, "Ошибка, попробуйте ещё раз", true)
		return
	}
	st.Payload["new_spec_id"] = specID
	_ = b.states.Set(ctx, chatID, dialog.StateAddDocPhone, st.Payload)
	b.editTextAndClear(chatID, cb.Message.MessageID,
		"📞 Введите телефон врача (или «нет», если номера нет):")
	_ = b.answerCallback(cb, "", false)
}

func (b *Bot) addDoctorSpecText(ctx context.Context, msg *tgbotapi.Message, st *dialog.Item) {
	chatID := msg.Chat.ID
	specID, err := b.doctors.ResolveSpecByName(ctx, msg.Text)
	if err != nil {
		b.log.Error("resolve spec failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "❌ Не удалось сохранить специальность. Введите ещё раз:"))
		return
	}
	st.Payload["new_spec_id"] = specID
	_ = b.states.Set(ctx, chatID, dialog.StateAddDocPhone, st.Payload)
	b.send(tgbotapi.NewMessage(chatID, "📞 Введите телефон врача (или «нет», если номера нет):"))
}

func (b *Bot) addDoctorPhone(ctx context.Context, msg *tgbotapi.Message, st *dialog.Item) {
	chatID := msg.Chat.ID
	phone, ok := textutil.NormalizePhone(msg.Text)
	if !ok {
		b.send(tgbotapi.NewMessage(chatID,
			"⚠️ Неверный формат номера. Пример: 8 (777) 123-45-67. Попробуйте ещё раз:"))
		return
	}
	st.Payload["new_phone"] = phone
	_ = b.states.Set(ctx, chatID, dialog.StateAddDocBirthdate, st.Payload)
	b.send(tgbotapi.NewMessage(chatID, "🎂 Введите дату рождения врача (ДД.ММ.ГГГГ):"))
}

func (b *Bot) addDoctorBirthdate(ctx context.Context, msg *tgbotapi.Message, st *dialog.Item) {
	chatID := msg.Chat.ID
	date, ok := textutil.ValidateDate(msg.Text, time.Now())
	if !ok {
		b.send(tgbotapi.NewMessage(chatID,
			"⚠️ Неверная дата. Формат ДД.ММ.ГГГГ, например 17.01.2000. Попробуйте ещё раз:"))
		return
	}

	name, _ := dialog.GetString(st.Payload, "new_doc_name")
	specID, _ := dialog.GetInt64(st.Payload, "new_spec_id")
	phone, _ := dialog.GetString(st.Payload, "new_phone")
	lpuID, _ := dialog.GetInt64(st.Payload, "lpu_id")

	if _, err := b.doctors.Add(ctx, lpuID, name, specID, phone, date); err != nil {
		b.log.Error("add doctor failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "❌ Не удалось сохранить врача. Попробуйте ещё раз:"))
		return
	}
	for _, k := range []string{"new_doc_name", "new_spec_id", "new_phone"} {
		delete(st.Payload, k)
	}
	b.send(tgbotapi.NewMessage(chatID, "✅ Врач успешно добавлен!"))
	b.showDoctorsAsNew(ctx, chatID, st)
}
