package services

import "github.com/prometheus/client_golang/prometheus"

var (
	cardsCreatedCounter prometheus.Counter
	rowsFailedCounter   prometheus.Counter
	cardsReadCounter    prometheus.Counter
	backfillCounter     *prometheus.CounterVec
)

func init() {
	cardsCreatedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cards_created_total",
			Help: "Total number of treatment cards created from uploaded spreadsheets.",
		},
	)
	rowsFailedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "card_rows_failed_total",
			Help: "Total number of spreadsheet rows that could not be stored as cards.",
		},
	)
	cardsReadCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cards_canonicalized_total",
			Help: "Total number of cards canonicalized for read responses.",
		},
	)
	backfillCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "card_backfill_records_total",
			Help: "Records visited by the backfill job, by outcome.",
		},
		[]string{"outcome"},
	)
	prometheus.MustRegister(cardsCreatedCounter, rowsFailedCounter, cardsReadCounter, backfillCounter)
}
