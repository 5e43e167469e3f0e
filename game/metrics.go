package game

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	searchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "othello_agent_search_duration_seconds",
		Help:    "Time spent choosing a move, by algorithm",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1, 5},
	}, []string{"algorithm"})

	moveRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "othello_agent_requests_total",
		Help: "Move requests answered by the agent, by algorithm and result",
	}, []string{"algorithm", "result"})
)

func observeSearch(alg Algorithm, mv Move, elapsed time.Duration) {
	searchDuration.WithLabelValues(alg.String()).Observe(elapsed.Seconds())
	result := "move"
	if !mv.Valid() {
		result = "pass"
	}
	moveRequests.WithLabelValues(alg.String(), result).Inc()
}
