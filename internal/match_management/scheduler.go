package match_management

import (
	"github.com/jonboulle/clockwork"

	"duel/internal/models"
)

// timerChain holds at most one pending phase timer per match. It is only
// touched from the event loop, so it needs no locking.
type timerChain struct {
	clock  clockwork.Clock
	timers map[string]clockwork.Timer
}

func newTimerChain(clock clockwork.Clock) *timerChain {
	return &timerChain{clock: clock, timers: make(map[string]clockwork.Timer)}
}

// arm replaces any pending timer for the match. fire runs on the clock's
// goroutine and must only hand the event to the loop.
func (tc *timerChain) arm(matchID string, step Step, fire func(matchID string, from models.MatchStatus)) {
	tc.cancel(matchID)
	from := step.From
	tc.timers[matchID] = tc.clock.AfterFunc(step.Delay, func() {
		fire(matchID, from)
	})
}

// fired forgets the timer that just expired for the match.
func (tc *timerChain) fired(matchID string) {
	delete(tc.timers, matchID)
}

func (tc *timerChain) cancel(matchID string) {
	if t, ok := tc.timers[matchID]; ok {
		t.Stop()
		delete(tc.timers, matchID)
	}
}

func (tc *timerChain) stopAll() {
	for id, t := range tc.timers {
		t.Stop()
		delete(tc.timers, id)
	}
}

func (tc *timerChain) pending() int {
	return len(tc.timers)
}
