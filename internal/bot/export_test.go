package bot

import (
	"testing"
	"time"

	"github.com/anovapharm/medrep-bot/internal/domain/reports"
	"github.com/xuri/excelize/v2"
)

func TestBuildExport(t *testing.T) {
	date := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	doc := []reports.DoctorReport{{
		ID: 1, Date: date, User: "Айгуль",
		District: "Ауэзовский", Road: "Маршрут 2", LPU: "Поликлиника №4",
		DocName: "Пак Анджелика Владимировна", DocSpec: "Терапевт",
		DocNum: "+77771234567", Term: "скидка 10%", Comment: "-",
		Preps: []string{"Кардиомагнил", "Эреспал"},
	}}
	apt := []reports.ApothecaryReport{{
		ID: 5, Date: date, User: "Айгуль",
		District: "Ауэзовский", Road: "Маршрут 2", Apothecary: "Европа",
		Comment: "нет остатков",
		Items: []reports.QtyLine{
			{Prep: "Кардиомагнил", Requested: 30, Remaining: 2},
			{Prep: "Мезим", Requested: 10, Remaining: 0},
		},
	}}

	built, err := buildExport(doc, apt)
	if err != nil {
		t.Fatal(err)
	}
	buf, err := built.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	_ = built.Close()

	// читаем то, что реально уедет пользователю
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if list := f.GetSheetList(); len(list) != 2 || list[0] != "Врачи" || list[1] != "Аптеки" {
		t.Fatalf("sheets = %v, want [Врачи Аптеки]", list)
	}

	rows, err := f.GetRows("Врачи")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("Врачи has %d rows, want header + 1", len(rows))
	}
	wantHdr := []string{"ID", "Дата", "Сотрудник", "Район", "Маршрут", "ЛПУ",
		"Врач", "Специальность", "Телефон", "Условия", "Препараты", "Комментарий"}
	for i, h := range wantHdr {
		if rows[0][i] != h {
			t.Errorf("Врачи header col %d = %q, want %q", i, rows[0][i], h)
		}
	}
	r := rows[1]
	if r[1] != "14.03.2026 09:30" {
		t.Errorf("date cell = %q", r[1])
	}
	if r[10] != "Кардиомагнил\nЭреспал" {
		t.Errorf("preps cell = %q, want newline-joined list", r[10])
	}

	rows, err = f.GetRows("Аптеки")
	if err != nil {
		t.Fatal(err)
	}
	// по строке на препарат, заголовок общий
	if len(rows) != 3 {
		t.Fatalf("Аптеки has %d rows, want header + 2", len(rows))
	}
	wantHdr = []string{"ID", "Дата", "Сотрудник", "Район", "Маршрут",
		"Точка (Аптека)", "Препарат", "Заявка (шт)", "Остаток (шт)", "Комментарий"}
	for i, h := range wantHdr {
		if rows[0][i] != h {
			t.Errorf("Аптеки header col %d = %q, want %q", i, rows[0][i], h)
		}
	}
	if rows[1][6] != "Кардиомагнил" || rows[1][7] != "30" || rows[1][8] != "2" {
		t.Errorf("item row 1 = %v", rows[1])
	}
	if rows[2][6] != "Мезим" || rows[2][0] != "5" {
		t.Errorf("item row 2 = %v", rows[2])
	}
}

func TestBuildExportEmpty(t *testing.T) {
	f, err := buildExport(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows("Врачи")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("empty export: Врачи has %d rows, want header only", len(rows))
	}
}

func TestPeriodRange(t *testing.T) {
	now := time.Date(2026, 8, 31, 15, 45, 0, 0, time.UTC)
	day := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		key      string
		from, to time.Time
	}{
		{"today", day, day.Add(24 * time.Hour)},
		{"yesterday", day.Add(-24 * time.Hour), day},
		{"week", day.Add(-6 * 24 * time.Hour), day.Add(24 * time.Hour)},
		{"month", day.Add(-29 * 24 * time.Hour), day.Add(24 * time.Hour)},
		{"all", time.Time{}, time.Time{}},
	}
	for _, tc := range tests {
		from, to := periodRange(tc.key, now)
		if !from.Equal(tc.from) || !to.Equal(tc.to) {
			t.Errorf("periodRange(%q) = (%v, %v), want (%v, %v)", tc.key, from, to, tc.from, tc.to)
		}
	}
}

// «Сегодня» отсчитывается от местной полуночи, а не от полуночи UTC:
// в 3 часа ночи по Алматы сегодняшний день уже начался, хотя по UTC ещё
// вчера.
func TestPeriodRangeLocalMidnight(t *testing.T) {
	almaty := time.FixedZone("ALMT", 6*3600)
	now := time.Date(2026, 8, 31, 3, 0, 0, 0, almaty)

	from, to := periodRange("today", now)
	wantFrom := time.Date(2026, 8, 31, 0, 0, 0, 0, almaty)
	if !from.Equal(wantFrom) || !to.Equal(wantFrom.Add(24*time.Hour)) {
		t.Errorf("today in ALMT = (%v, %v), want (%v, %v)",
			from, to, wantFrom, wantFrom.Add(24*time.Hour))
	}

	// полночь UTC этого дня была бы на 6 часов позже местной
	if from.UTC().Hour() != 18 {
		t.Errorf("local midnight in UTC = %v, want previous day 18:00", from.UTC())
	}
}
