package scroll

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	restoreAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "daybook",
		Subsystem: "scroll",
		Name:      "restore_attempts_total",
		Help:      "Scroll restoration attempts, by result.",
	}, []string{"result"})

	followFlips = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "daybook",
		Subsystem: "scroll",
		Name:      "follow_flips_total",
		Help:      "Auto-follow flag changes caused by manual scrolling, by new state.",
	}, []string{"state"})

	forcedEdgeScrolls = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "daybook",
		Subsystem: "scroll",
		Name:      "forced_edge_scrolls_total",
		Help:      "Forced jumps to the follow edge.",
	})

	storeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "daybook",
		Subsystem: "scroll",
		Name:      "store_failures_total",
		Help:      "Position store failures, by operation.",
	}, []string{"op"})

	staleCallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "daybook",
		Subsystem: "scroll",
		Name:      "stale_callbacks_total",
		Help:      "Deferred callbacks dropped because their viewport or request was superseded.",
	})

	attachments = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "daybook",
		Subsystem: "scroll",
		Name:      "attached",
		Help:      "1 while a viewport is bound to the coordinator.",
	})
)
