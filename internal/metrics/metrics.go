package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "planhebdo",
			Name:      "http_requests_total",
			Help:      "Count of HTTP API requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	slotsToggled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "planhebdo",
			Name:      "slots_toggled_total",
			Help:      "Count of slot toggles by outcome.",
		},
		[]string{"outcome"},
	)

	weeksValidated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "planhebdo",
			Name:      "weeks_validated_total",
			Help:      "Count of week validations.",
		},
	)

	employeesUnlocked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "planhebdo",
			Name:      "employees_unlocked_total",
			Help:      "Count of explicit employee unlocks.",
		},
	)

	importRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "planhebdo",
			Name:      "import_rows_total",
			Help:      "Count of spreadsheet rows processed by result.",
		},
		[]string{"result"},
	)

	exportsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "planhebdo",
			Name:      "exports_generated_total",
			Help:      "Count of generated recap exports by format.",
		},
		[]string{"format"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests, slotsToggled, weeksValidated,
			employeesUnlocked, importRows, exportsGenerated,
		)
	})
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncSlotToggled(outcome string) {
	slotsToggled.WithLabelValues(outcome).Inc()
}

func IncWeekValidated() {
	weeksValidated.Inc()
}

func IncEmployeeUnlocked() {
	employeesUnlocked.Inc()
}

func IncImportRow(result string) {
	importRows.WithLabelValues(result).Inc()
}

func AddImportRows(result string, n int) {
	importRows.WithLabelValues(result).Add(float64(n))
}

func IncExport(format string) {
	exportsGenerated.WithLabelValues(format).Inc()
}
