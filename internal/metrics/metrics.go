// Package metrics defines the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	ReferralsSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stakeback",
		Name:      "referrals_submitted_total",
		Help:      "Referrals created through the join flow.",
	})

	PayoutsAppended = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stakeback",
		Name:      "payouts_appended_total",
		Help:      "Payouts appended by admins, by currency.",
	}, []string{"currency"})

	Exports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stakeback",
		Name:      "exports_total",
		Help:      "Email list exports, by filter.",
	}, []string{"filter"})

	EmailsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stakeback",
		Name:      "emails_sent_total",
		Help:      "Transactional emails, by kind and result.",
	}, []string{"kind", "result"})
)

// Registry holds every collector above plus the Go runtime collectors.
var Registry = newRegistry()

func newRegistry() *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		ReferralsSubmitted,
		PayoutsAppended,
		Exports,
		EmailsSent,
	)
	return r
}
