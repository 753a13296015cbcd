package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Update kind label values.
const (
	updateKindMessage  = "message"
	updateKindCallback = "callback"
)

var (
	// updatesTotal counts handled webhook updates by kind.
	updatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_updates_total",
		Help: "Total number of handled webhook updates",
	}, []string{"kind"})

	// linksTotal counts detected supported links by platform.
	linksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_links_total",
		Help: "Total number of supported links detected in messages",
	}, []string{"platform"})
)
