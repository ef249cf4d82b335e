package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	PaymentsTotal       *prometheus.CounterVec
	LoansCreatedTotal   prometheus.Counter
	LoansCompletedTotal prometheus.Counter
	OverdueSweepTotal   *prometheus.CounterVec
	ReportCacheTotal    *prometheus.CounterVec
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lending_engine_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Business = BusinessMetrics{
		PaymentsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lending_engine_payments_total",
				Help: "Total number of payment attempts by outcome.",
			},
			[]string{"status"},
		),
		LoansCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "lending_engine_loans_created_total",
				Help: "Total number of loans created with their installment schedule.",
			},
		),
		LoansCompletedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "lending_engine_loans_completed_total",
				Help: "Total number of loans moved to completado.",
			},
		),
		OverdueSweepTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lending_engine_overdue_sweep_rows_total",
				Help: "Rows changed by the overdue sweep.",
			},
			[]string{"kind"},
		),
		ReportCacheTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lending_engine_report_cache_total",
				Help: "Report cache lookups by result.",
			},
			[]string{"result"},
		),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordPayment(status string) {
	Business.PaymentsTotal.WithLabelValues(status).Inc()
}

func RecordLoanCreated() {
	Business.LoansCreatedTotal.Inc()
}

func RecordLoanCompleted() {
	Business.LoansCompletedTotal.Inc()
}

func RecordOverdueSweep(kind string, rows int64) {
	Business.OverdueSweepTotal.WithLabelValues(kind).Add(float64(rows))
}

func RecordReportCache(result string) {
	Business.ReportCacheTotal.WithLabelValues(result).Inc()
}
