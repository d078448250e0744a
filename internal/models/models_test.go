package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMatchClone_DeepCopiesPointers(t *testing.T) {
	start := time.Now()
	reps := 10
	m := Match{
		MatchID:   "m1",
		StartTime: &start,
		Player1:   Player{UserID: "u1", ConnectionID: "c1", Reps: &reps},
		Player2:   Player{UserID: "u2", ConnectionID: "c2"},
	}

	c := m.Clone()
	*c.StartTime = start.Add(time.Hour)
	*c.Player1.Reps = 99

	assert.Equal(t, start, *m.StartTime)
	assert.Equal(t, 10, *m.Player1.Reps)
}

func TestMatchLookups(t *testing.T) {
	m := Match{
		Player1: Player{UserID: "u1", ConnectionID: "c1"},
		Player2: Player{UserID: "u2", ConnectionID: "c2"},
	}

	assert.Equal(t, 1, m.PlayerByConnection("c1"))
	assert.Equal(t, 2, m.PlayerByUser("u2"))
	assert.Equal(t, 0, m.PlayerByUser("u3"))

	opp, ok := m.Opponent("c2")
	assert.True(t, ok)
	assert.Equal(t, ConnectionHandle("c1"), opp)
	_, ok = m.Opponent("c3")
	assert.False(t, ok)

	m.Slot(2).Vote = "u1"
	assert.Equal(t, "u1", m.Player2.Vote)
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusReview.Terminal())
	assert.False(t, StatusWaiting.Terminal())
}

func TestCatalog(t *testing.T) {
	ex, ok := LookupExercise("plank")
	assert.True(t, ok)
	assert.Equal(t, KindTimeBased, ex.Kind)
	assert.Equal(t, 90, ex.DurationSeconds)

	_, ok = LookupExercise("yoga")
	assert.False(t, ok)
	assert.Len(t, Categories(), 7)
}

func TestErrorFrame(t *testing.T) {
	f := ErrorFrame(ErrMatchNotFound)
	assert.Equal(t, MsgError, f.Type)
	assert.Equal(t, ErrorData{Message: "match not found"}, f.Data)

	var de *DuelError
	assert.True(t, errors.As(ErrVotingClosed, &de))
}
