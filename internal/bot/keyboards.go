package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/anovapharm/medrep-bot/internal/dialog"
	"github.com/anovapharm/medrep-bot/internal/domain/doctors"
	"github.com/anovapharm/medrep-bot/internal/domain/geo"
	"github.com/anovapharm/medrep-bot/internal/domain/medications"
	"github.com/anovapharm/medrep-bot/internal/domain/users"
	"github.com/anovapharm/medrep-bot/internal/textutil"
)

const pageSize = 8

func navKeyboard(back bool, cancel bool) tgbotapi.InlineKeyboardMarkup {
	row := []tgbotapi.InlineKeyboardButton{}
	if back {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "nav:back"))
	}
	if cancel {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("✖️ Отменить", "nav:cancel"))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func guestMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Регистрация / Вход", "auth:start"),
		),
	)
}

// mainMenuKeyboard — меню авторизованного сотрудника; на кнопке задач
// висит бейдж с числом непрочитанных объявлений.
func mainMenuKeyboard(unread int, admin bool) tgbotapi.InlineKeyboardMarkup {
	tasksText := "📋 Задачи"
	if unread > 0 {
		tasksText = fmt.Sprintf("📋 Задачи (%d❗)", unread)
	}
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📍 Маршрут (Врачи)", "visit:doc"),
			tgbotapi.NewInlineKeyboardButtonData("🏥 Аптека", "visit:apt"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(tasksText, "tasks:show"),
		),
	}
	if admin {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Админка", "adm:menu"),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🚪 Выйти", "auth:logout"),
	))
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func authChoiceKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🆕 Я новый пользователь", "auth:new"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👤 У меня есть аккаунт", "auth:login"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", "auth:cancel"),
		),
	)
}

func regionKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("АЛА", "reg:region:АЛА"),
			tgbotapi.NewInlineKeyboardButtonData("ЮКО", "reg:region:ЮКО"),
		),
		navKeyboard(false, true).InlineKeyboard[0],
	)
}

func userPickKeyboard(names []string) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	row := []tgbotapi.InlineKeyboardButton{}
	for i, name := range names {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("👤 "+name, "auth:user:"+name))
		if (i+1)%2 == 0 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, navKeyboard(false, true).InlineKeyboard[0])
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func districtKeyboard(ds []geo.District, p dialog.Payload) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	row := []tgbotapi.InlineKeyboardButton{}
	for i, d := range ds {
		data := fmt.Sprintf("dist:%d", d.ID)
		dialog.SaveButton(p, data, d.Name)
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(d.Name, data))
		if (i+1)%2 == 0 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, navKeyboard(false, true).InlineKeyboard[0])
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func roadKeyboard(nums []int) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	row := []tgbotapi.InlineKeyboardButton{}
	for i, n := range nums {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("Маршрут %d", n), fmt.Sprintf("road:%d", n)))
		if (i+1)%3 == 0 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, navKeyboard(true, true).InlineKeyboard[0])
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// pageBounds возвращает границы страницы и признаки наличия соседних
// страниц. page считается с нуля; выход за правый край прижимается к
// последней странице.
func pageBounds(total, page, per int) (start, end int, hasPrev, hasNext bool) {
	if total == 0 {
		return 0, 0, false, false
	}
	last := (total - 1) / per
	if page > last {
		page = last
	}
	if page < 0 {
		page = 0
	}
	start = page * per
	end = start + per
	if end > total {
		end = total
	}
	return start, end, page > 0, end < total
}

func pageNavRow(prefix string, page int, hasPrev, hasNext bool) []tgbotapi.InlineKeyboardButton {
	row := []tgbotapi.InlineKeyboardButton{}
	if hasPrev {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("⬅️", fmt.Sprintf("%s:pg:%d", prefix, page-1)))
	}
	if hasNext {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("➡️", fmt.Sprintf("%s:pg:%d", prefix, page+1)))
	}
	return row
}

// facilityKeyboard — постраничный список ЛПУ или аптек с кнопкой
// добавления новой точки. Полное имя уезжает в кэш подписей.
func facilityKeyboard(fs []geo.Facility, kind geo.FacilityKind, page int, p dialog.Payload) tgbotapi.InlineKeyboardMarkup {
	prefix := "lpu"
	if kind == geo.KindApothecary {
		prefix = "apt"
	}
	start, end, hasPrev, hasNext := pageBounds(len(fs), page, pageSize)

	rows := [][]tgbotapi.InlineKeyboardButton{}
	row := []tgbotapi.InlineKeyboardButton{}
	for i, f := range fs[start:end] {
		data := fmt.Sprintf("%s:%d", prefix, f.ID)
		dialog.SaveButton(p, data, f.Name)
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(f.Name, data))
		if (i+1)%2 == 0 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	if nav := pageNavRow(prefix, page, hasPrev, hasNext); len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ Добавить", "add:"+prefix),
	))
	rows = append(rows, navKeyboard(true, true).InlineKeyboard[0])
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// doctorKeyboard — список врачей ЛПУ; подписи сокращаются до
// «Фамилия И.О.», полное ФИО остаётся в кэше подписей.
func doctorKeyboard(list []doctors.Doctor, page int, p dialog.Payload) tgbotapi.InlineKeyboardMarkup {
	start, end, hasPrev, hasNext := pageBounds(len(list), page, pageSize)

	rows := [][]tgbotapi.InlineKeyboardButton{}
	row := []tgbotapi.InlineKeyboardButton{}
	for i, d := range list[start:end] {
		data := fmt.Sprintf("doc:%d", d.ID)
		dialog.SaveButton(p, data, d.Name)
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(textutil.ShortenName(d.Name), data))
		if (i+1)%2 == 0 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	if nav := pageNavRow("doc", page, hasPrev, hasNext); len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ Добавить", "add:doc"),
	))
	rows = append(rows, navKeyboard(true, true).InlineKeyboard[0])
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// multiSelectKeyboard — чекбоксы по препаратам, одна кнопка в строке.
func multiSelectKeyboard(meds []medications.Medication, selected []int64, page int) tgbotapi.InlineKeyboardMarkup {
	sel := make(map[int64]bool, len(selected))
	for _, id := range selected {
		sel[id] = true
	}
	start, end, hasPrev, hasNext := pageBounds(len(meds), page, pageSize)

	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, m := range meds[start:end] {
		icon := "⬜"
		if sel[m.ID] {
			icon = "✅"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(icon+" "+m.Name, fmt.Sprintf("med:tg:%d", m.ID)),
		))
	}
	if nav := pageNavRow("med", page, hasPrev, hasNext); len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔄 Сброс", "med:reset"),
		tgbotapi.NewInlineKeyboardButtonData("💾 Сохранить", "med:ok"),
	))
	rows = append(rows, navKeyboard(false, true).InlineKeyboard[0])
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func hasOrderKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Да ✅", "ord:yes"),
			tgbotapi.NewInlineKeyboardButtonData("Нет ❌", "ord:no"),
		),
		navKeyboard(true, true).InlineKeyboard[0],
	)
}

func confirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📖 Посмотреть", "rep:show"),
			tgbotapi.NewInlineKeyboardButtonData("💾 Сохранить", "rep:save"),
		),
		navKeyboard(false, true).InlineKeyboard[0],
	)
}

func reviewKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💾 Сохранить", "rep:save"),
			tgbotapi.NewInlineKeyboardButtonData("✏️ Изменить", "rep:back"),
		),
		navKeyboard(false, true).InlineKeyboard[0],
	)
}

func specKeyboard(specs []doctors.MainSpec) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	row := []tgbotapi.InlineKeyboardButton{}
	for i, s := range specs {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(s.Name, fmt.Sprintf("spec:%d", s.ID)))
		if (i+1)%2 == 0 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, navKeyboard(false, true).InlineKeyboard[0])
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func adminMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👥 Заявки на регистрацию", "adm:pending"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Экспорт отчётов", "adm:export"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📢 Новая задача", "adm:task"),
		),
		navKeyboard(false, true).InlineKeyboard[0],
	)
}

func pendingKeyboard(list []users.User) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, u := range list {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ "+u.Name, fmt.Sprintf("adm:appr:%d", u.TelegramID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ "+u.Name, fmt.Sprintf("adm:rej:%d", u.TelegramID)),
		))
	}
	rows = append(rows, navKeyboard(false, true).InlineKeyboard[0])
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func periodKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Сегодня", "adm:per:today"),
			tgbotapi.NewInlineKeyboardButtonData("Вчера", "adm:per:yesterday"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Неделя", "adm:per:week"),
			tgbotapi.NewInlineKeyboardButtonData("Месяц", "adm:per:month"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Всё время", "adm:per:all"),
		),
		navKeyboard(false, true).InlineKeyboard[0],
	)
}

func userFilterKeyboard(names []string) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Все сотрудники", "adm:user:*"),
		),
	}
	row := []tgbotapi.InlineKeyboardButton{}
	for i, name := range names {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(name, "adm:user:"+name))
		if (i+1)%2 == 0 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, navKeyboard(false, true).InlineKeyboard[0])
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}
