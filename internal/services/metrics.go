package services

import (
	"github.com/prometheus/client_golang/prometheus"

	"wagerpool/internal/models"
)

// Metrics are the Prometheus collectors updated by PoolService. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	entries      prometheus.Counter
	staked       prometheus.Counter
	settlements  prometheus.Counter
	paidOut      prometheus.Counter
	rejections   *prometheus.CounterVec
	balance      prometheus.Gauge
	participants prometheus.Gauge
}

// NewMetrics creates the pool collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		entries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wagerpool",
			Name:      "entries_total",
			Help:      "Accepted pool entries.",
		}),
		staked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wagerpool",
			Name:      "staked_base_units_total",
			Help:      "Base units deposited by accepted entries.",
		}),
		settlements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wagerpool",
			Name:      "settlements_total",
			Help:      "Successful winner selections.",
		}),
		paidOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wagerpool",
			Name:      "paid_out_base_units_total",
			Help:      "Base units paid to winners.",
		}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wagerpool",
			Name:      "rejections_total",
			Help:      "Rejected calls by operation and reason.",
		}, []string{"operation", "reason"}),
		balance: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wagerpool",
			Name:      "balance_base_units",
			Help:      "Current pooled balance.",
		}),
		participants: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wagerpool",
			Name:      "participants",
			Help:      "Current number of entries in the pool.",
		}),
	}
	reg.MustRegister(m.entries, m.staked, m.settlements, m.paidOut, m.rejections, m.balance, m.participants)
	return m
}

func (m *Metrics) observeState(s *models.PoolSnapshot) {
	if m == nil {
		return
	}
	m.balance.Set(float64(s.Balance))
	m.participants.Set(float64(len(s.Participants)))
}

func (m *Metrics) observeEntry(stake models.Amount) {
	if m == nil {
		return
	}
	m.entries.Inc()
	m.staked.Add(float64(stake))
}

func (m *Metrics) observeSettlement(payout models.Amount) {
	if m == nil {
		return
	}
	m.settlements.Inc()
	m.paidOut.Add(float64(payout))
}

func (m *Metrics) observeRejection(op string, err error) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(op, RejectReason(err)).Inc()
}
