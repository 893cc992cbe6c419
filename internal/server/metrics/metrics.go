// Package metrics exposes prometheus counters for the link lifecycle and
// settlement outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	LinksCreated  prometheus.Counter
	ClaimsSettled prometheus.Counter
	ClaimFailures *prometheus.CounterVec
	Registry      *prometheus.Registry
}

// New builds a Metrics set on its own registry so tests can run in parallel
// without colliding on the global default registerer.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		LinksCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "ziplink_links_created_total",
			Help: "Number of claim links created.",
		}),
		ClaimsSettled: factory.NewCounter(prometheus.CounterOpts{
			Name: "ziplink_claims_settled_total",
			Help: "Number of claims settled with a confirmed transfer.",
		}),
		ClaimFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ziplink_claim_failures_total",
			Help: "Number of failed claim attempts by error code.",
		}, []string{"code"}),
	}
}
