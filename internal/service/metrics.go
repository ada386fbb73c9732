package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	postTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_post_transitions_total",
			Help: "Successful post lifecycle transitions",
		},
		[]string{"action", "locale"},
	)

	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_uploads_total",
			Help: "Image uploads by destination (r2, local, primary_error, rejected)",
		},
		[]string{"destination"},
	)
)
