package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpdatesTotal считает входящие апдейты Telegram по типу.
	UpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_updates_total",
		Help: "Processed Telegram updates by kind.",
	}, []string{"kind"})

	// ReportsSavedTotal считает сохранённые отчёты по типу (doc/apt).
	ReportsSavedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_reports_saved_total",
		Help: "Visit reports persisted, by report kind.",
	}, []string{"kind"})

	// ExportsTotal считает выгрузки Excel.
	ExportsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_exports_total",
		Help: "Excel exports generated for admins.",
	})
)
