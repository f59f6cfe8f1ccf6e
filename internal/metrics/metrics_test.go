package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewRecorder(reg)

	rec.AttemptRecorded("quiz-1", 2, 3)
	rec.AttemptRecorded("quiz-1", 3, 3)
	rec.LeaderboardServed(true)
	rec.LeaderboardServed(false)
	rec.LeaderboardServed(false)

	if got := testutil.ToFloat64(rec.attempts.WithLabelValues("quiz-1")); got != 2 {
		t.Fatalf("expected 2 attempts, got %v", got)
	}
	if got := testutil.ToFloat64(rec.leaderboards.WithLabelValues("false")); got != 2 {
		t.Fatalf("expected 2 uncached reads, got %v", got)
	}
	if got := testutil.CollectAndCount(rec.scoreRatio); got != 1 {
		t.Fatalf("expected score histogram collected, got %d", got)
	}
}
