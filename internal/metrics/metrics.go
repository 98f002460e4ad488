// Package metrics registers the Prometheus series the market updates during
// operation:
//   - market_bets_total{side}        – bets accepted (bull|bear)
//   - market_rounds_settled_total{winner} – finished rounds (bull|bear|tie)
//   - market_claims_total            – successful winnings claims
//   - market_payout_units_total      – total units paid to claimants
//   - market_fees_flushed_total      – fee flushes to the rewards sink
//
// Served at /metrics in Prometheus text exposition format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BetsPlaced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_bets_total",
			Help: "Bets accepted by side",
		},
		[]string{"side"},
	)

	RoundsSettled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_rounds_settled_total",
			Help: "Rounds settled by winner",
		},
		[]string{"winner"},
	)

	ClaimsPaid = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "market_claims_total",
			Help: "Successful winnings claims",
		},
	)

	PayoutUnits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "market_payout_units_total",
			Help: "Total units paid out to claimants",
		},
	)

	FeesFlushed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "market_fees_flushed_total",
			Help: "Fee flushes forwarded to the rewards sink",
		},
	)
)
