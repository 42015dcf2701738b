package bot

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xuri/excelize/v2"

	"github.com/anovapharm/medrep-bot/internal/domain/reports"
	"github.com/anovapharm/medrep-bot/internal/infra/metrics"
)

const (
	sheetDoctors      = "Врачи"
	sheetApothecaries = "Аптеки"
	maxColWidth       = 50
)

var doctorHeaders = []string{
	"ID", "Дата", "Сотрудник",
	"Район", "Маршрут", "ЛПУ",
	"Врач", "Специальность", "Телефон",
	"Условия", "Препараты", "Комментарий",
}

var apothecaryHeaders = []string{
	"ID", "Дата", "Сотрудник",
	"Район", "Маршрут", "Точка (Аптека)",
	"Препарат", "Заявка (шт)", "Остаток (шт)",
	"Комментарий",
}

// buildExport собирает книгу с двумя листами: по врачам — строка на
// отчёт, препараты одной ячейкой через перенос строки; по аптекам —
// строка на каждую позицию заявки.
func buildExport(doc []reports.DoctorReport, apt []reports.ApothecaryReport) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetDoctors); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(sheetApothecaries); err != nil {
		return nil, err
	}

	if err := writeRow(f, sheetDoctors, 1, toAny(doctorHeaders)); err != nil {
		return nil, err
	}
	row := 2
	for _, r := range doc {
		vals := []any{
			r.ID, r.Date.Format("02.01.2006 15:04"), r.User,
			r.District, r.Road, r.LPU,
			r.DocName, r.DocSpec, r.DocNum,
			r.Term, strings.Join(r.Preps, "\n"), r.Comment,
		}
		if err := writeRow(f, sheetDoctors, row, vals); err != nil {
			return nil, err
		}
		row++
	}

	if err := writeRow(f, sheetApothecaries, 1, toAny(apothecaryHeaders)); err != nil {
		return nil, err
	}
	row = 2
	for _, r := range apt {
		for _, it := range r.Items {
			vals := []any{
				r.ID, r.Date.Format("02.01.2006 15:04"), r.User,
				r.District, r.Road, r.Apothecary,
				it.Prep, it.Requested, it.Remaining,
				r.Comment,
			}
			if err := writeRow(f, sheetApothecaries, row, vals); err != nil {
				return nil, err
			}
			row++
		}
	}

	if err := styleHeaders(f, sheetDoctors, len(doctorHeaders)); err != nil {
		return nil, err
	}
	if err := styleHeaders(f, sheetApothecaries, len(apothecaryHeaders)); err != nil {
		return nil, err
	}
	autoWidth(f, sheetDoctors, len(doctorHeaders))
	autoWidth(f, sheetApothecaries, len(apothecaryHeaders))

	if idx, err := f.GetSheetIndex(sheetDoctors); err == nil {
		f.SetActiveSheet(idx)
	}
	return f, nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func writeRow(f *excelize.File, sheet string, row int, vals []any) error {
	for i, v := range vals {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func styleHeaders(f *excelize.File, sheet string, cols int) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

// autoWidth подгоняет ширину колонок под содержимое с верхним пределом,
// чтобы длинные комментарии не растягивали лист.
func autoWidth(f *excelize.File, sheet string, cols int) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return
	}
	widths := make([]int, cols)
	for _, row := range rows {
		for i, cell := range row {
			if i >= cols {
				break
			}
			for _, line := range strings.Split(cell, "\n") {
				if n := len([]rune(line)); n > widths[i] {
					widths[i] = n
				}
			}
		}
	}
	for i, w := range widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			continue
		}
		width := float64(w + 2)
		if width > maxColWidth {
			width = maxColWidth
		}
		_ = f.SetColWidth(sheet, name, name, width)
	}
}

func (b *Bot) sendExport(ctx context.Context, chatID int64, f reports.Filter) {
	doc, err := b.reports.ListDoctorReports(ctx, f)
	if err != nil {
		b.log.Error("read doctor reports failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "❌ Ошибка при чтении отчётов."))
		return
	}
	apt, err := b.reports.ListApothecaryReports(ctx, f)
	if err != nil {
		b.log.Error("read apothecary reports failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "❌ Ошибка при чтении отчётов."))
		return
	}
	if len(doc) == 0 && len(apt) == 0 {
		b.send(tgbotapi.NewMessage(chatID, "❌ Нет отчётов за выбранный период."))
		b.showMainMenu(ctx, chatID, "🏠 Главное меню.")
		return
	}

	book, err := buildExport(doc, apt)
	if err != nil {
		b.log.Error("build export failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "❌ Ошибка при создании отчёта."))
		return
	}
	var buf bytes.Buffer
	if err := book.Write(&buf); err != nil {
		b.log.Error("write export failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "❌ Ошибка при создании отчёта."))
		return
	}
	_ = book.Close()

	now := time.Now()
	msg := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("reports_%s.xlsx", now.Format("2006-01-02_15-04")),
		Bytes: buf.Bytes(),
	})
	msg.Caption = fmt.Sprintf("📊 Сводный отчёт\n📅 %s", now.Format("02.01.2006 15:04"))
	b.send(msg)
	metrics.ExportsTotal.Inc()

	b.showMainMenu(ctx, chatID, "🏠 Главное меню.")
}
