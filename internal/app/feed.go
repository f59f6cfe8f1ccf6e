package app

import (
	"sync"

	"quizarena-service/internal/domain"
)

// LeaderboardFeed fans leaderboard snapshots out to live subscribers of a quiz.
type LeaderboardFeed struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan domain.Leaderboard]struct{}
}

func NewLeaderboardFeed() *LeaderboardFeed {
	return &LeaderboardFeed{subscribers: make(map[string]map[chan domain.Leaderboard]struct{})}
}

// Subscribe registers a listener for quizID. The caller must invoke the
// returned cancel function to avoid leaks.
func (f *LeaderboardFeed) Subscribe(quizID string) (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)

	f.mu.Lock()
	subs, ok := f.subscribers[quizID]
	if !ok {
		subs = make(map[chan domain.Leaderboard]struct{})
		f.subscribers[quizID] = subs
	}
	subs[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		subs, ok := f.subscribers[quizID]
		if !ok {
			return
		}
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(f.subscribers, quizID)
		}
	}
	return ch, cancel
}

// HasSubscribers reports whether anyone listens on quizID.
func (f *LeaderboardFeed) HasSubscribers(quizID string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers[quizID]) > 0
}

// Publish delivers board to every subscriber of its quiz without blocking.
func (f *LeaderboardFeed) Publish(board domain.Leaderboard) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers[board.QuizID] {
		select {
		case ch <- board:
		default:
			// slow reader: drop its oldest snapshot and keep the newest
			select {
			case <-ch:
			default:
			}
			ch <- board
		}
	}
}
