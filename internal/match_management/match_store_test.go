package match_management

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"duel/internal/models"
)

func storedMatch(id string, status models.MatchStatus, created time.Time, ended *time.Time) models.Match {
	return models.Match{
		MatchID:   id,
		Category:  "squats",
		Player1:   models.Player{UserID: "u1", ConnectionID: "c1", DisplayName: "Alice"},
		Player2:   models.Player{UserID: "u2", ConnectionID: "c2", DisplayName: "Bob"},
		Status:    status,
		CreatedAt: created,
		EndTime:   ended,
	}
}

func TestMatchStore_GetReturnsCopy(t *testing.T) {
	s := NewMatchStore()
	s.Put(storedMatch("m1", models.StatusWaiting, time.Now(), nil))

	m, ok := s.Get("m1")
	assert.True(t, ok)
	m.Status = models.StatusCompleted
	m.Player1.Vote = "u1"

	again, _ := s.Get("m1")
	assert.Equal(t, models.StatusWaiting, again.Status)
	assert.Empty(t, again.Player1.Vote)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestMatchStore_ActiveSkipsTerminal(t *testing.T) {
	s := NewMatchStore()
	base := time.Now()
	end := base

	s.Put(storedMatch("late", models.StatusReview, base.Add(time.Minute), nil))
	s.Put(storedMatch("early", models.StatusCountdown, base, nil))
	s.Put(storedMatch("done", models.StatusCompleted, base, &end))
	s.Put(storedMatch("gone", models.StatusCancelled, base, &end))

	active := s.Active()
	if assert.Len(t, active, 2) {
		assert.Equal(t, "early", active[0].MatchID)
		assert.Equal(t, "late", active[1].MatchID)
	}

	assert.Len(t, s.ActiveForConnection("c1"), 2)
	assert.Empty(t, s.ActiveForConnection("c9"))
}

func TestMatchStore_EvictExpired(t *testing.T) {
	s := NewMatchStore()
	now := time.Now()
	old := now.Add(-25 * time.Hour)
	recent := now.Add(-23 * time.Hour)

	s.Put(storedMatch("old-completed", models.StatusCompleted, old, &old))
	s.Put(storedMatch("old-cancelled", models.StatusCancelled, old, &old))
	s.Put(storedMatch("recent", models.StatusCompleted, recent, &recent))
	s.Put(storedMatch("running", models.StatusInProgress, old, nil))

	evicted := s.EvictExpired(now, 24*time.Hour)

	assert.Equal(t, 2, evicted)
	assert.Equal(t, 2, s.Len())
	_, ok := s.Get("recent")
	assert.True(t, ok)
	_, ok = s.Get("running")
	assert.True(t, ok)
	_, ok = s.Get("old-completed")
	assert.False(t, ok)
}
