package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	matchRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studycon_matching_runs_total",
		Help: "Number of matching runs, by scope (event, user, all, rebuild).",
	}, []string{"scope"})

	autoMatchesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studycon_auto_matches_created_total",
		Help: "Number of auto-matched invitations created.",
	})

	autoMatchesClearedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studycon_auto_matches_cleared_total",
		Help: "Number of auto-matched invitations removed by rebuilds.",
	})
)
