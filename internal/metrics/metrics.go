package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder exports attempt and leaderboard metrics to Prometheus.
type Recorder struct {
	attempts     *prometheus.CounterVec
	scoreRatio   prometheus.Histogram
	leaderboards *prometheus.CounterVec
}

// NewRecorder registers the collectors on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quizarena",
			Name:      "attempts_recorded_total",
			Help:      "Scored attempts persisted, by quiz.",
		}, []string{"quiz_id"}),
		scoreRatio: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quizarena",
			Name:      "attempt_score_ratio",
			Help:      "Score divided by question count for recorded attempts.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
		leaderboards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quizarena",
			Name:      "leaderboard_reads_total",
			Help:      "Leaderboard reads, by cache outcome.",
		}, []string{"cached"}),
	}
	reg.MustRegister(r.attempts, r.scoreRatio, r.leaderboards)
	return r
}

func (r *Recorder) AttemptRecorded(quizID string, score, total int) {
	r.attempts.WithLabelValues(quizID).Inc()
	if total > 0 {
		r.scoreRatio.Observe(float64(score) / float64(total))
	}
}

func (r *Recorder) LeaderboardServed(cached bool) {
	r.leaderboards.WithLabelValues(strconv.FormatBool(cached)).Inc()
}
