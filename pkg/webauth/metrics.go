package webauth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	authTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "webauth",
		Name:      "authentications_total",
		Help:      "Authentication attempts by result.",
	}, []string{"result"})

	authDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "webauth",
		Name:      "authentication_duration_seconds",
		Help:      "Duration of authentication attempts.",
		Buckets:   prometheus.DefBuckets,
	})
)
