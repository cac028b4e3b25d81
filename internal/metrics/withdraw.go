package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Withdrawal construction metrics by branch (native, token, token_create)
	withdrawalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "earn",
			Subsystem: "withdraw",
			Name:      "withdrawals_total",
			Help:      "Total number of withdrawal transactions constructed",
		},
		[]string{"branch", "status"},
	)

	withdrawalDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "earn",
			Subsystem: "withdraw",
			Name:      "construction_duration_seconds",
			Help:      "Time taken to construct a withdrawal transaction",
			Buckets:   prometheus.DefBuckets,
		},
	)

	ataCreationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "earn",
			Subsystem: "withdraw",
			Name:      "ata_creations_total",
			Help:      "Total number of associated token account creations included in plans",
		},
		[]string{"owner"}, // recipient, fee_payer
	)

	confirmationPollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "earn",
			Subsystem: "withdraw",
			Name:      "confirmation_polls_total",
			Help:      "Outcomes of fee payer provisioning confirmation polls",
		},
		[]string{"outcome"}, // confirmed, failed, timed_out
	)
)

func RecordWithdrawal(branch, status string) {
	withdrawalsTotal.WithLabelValues(branch, status).Inc()
}

func ObserveConstruction(d time.Duration) {
	withdrawalDuration.Observe(d.Seconds())
}

func RecordATACreation(owner string) {
	ataCreationsTotal.WithLabelValues(owner).Inc()
}

func RecordConfirmationPoll(outcome string) {
	confirmationPollsTotal.WithLabelValues(outcome).Inc()
}
