package reports

import "time"

// DoctorReport — заголовок отчёта о визите к врачу плюс список
// обсуждённых препаратов (по одной дочерней строке на препарат).
type DoctorReport struct {
	ID       int64
	Date     time.Time
	User     string
	District string
	Road     string
	LPU      string
	DocName  string
	DocSpec  string
	DocNum   string
	Term     string
	Comment  string
	Preps    []string
}

// ApothecaryReport — заголовок отчёта по аптеке; дочерние строки несут
// заявленное и остаточное количество по каждому препарату.
type ApothecaryReport struct {
	ID         int64
	Date       time.Time
	User       string
	District   string
	Road       string
	Apothecary string
	Comment    string
	Items      []QtyLine
}

type QtyLine struct {
	Prep      string
	Requested int
	Remaining int
}

// Filter ограничивает выборку для экспорта. Нулевые значения — без
// ограничения.
type Filter struct {
	From time.Time
	To   time.Time
	User string
}
