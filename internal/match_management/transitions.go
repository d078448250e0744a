package match_management

import (
	"time"

	"duel/internal/models"
)

const (
	// MatchFoundDelay is the pause between match-found and countdown-start.
	MatchFoundDelay = 2 * time.Second
	// CountdownDelay is the length of the countdown before the duel starts.
	CountdownDelay = 3 * time.Second
)

type Notification struct {
	To    models.ConnectionHandle
	Frame models.Frame
}

// Step is the next timer-driven transition. From is the status the match
// must still have when the timer fires, otherwise the firing is stale.
type Step struct {
	Delay time.Duration
	From  models.MatchStatus
}

// Transition is the result of applying one event to a match.
type Transition struct {
	Match         models.Match
	Notifications []Notification
	Next          *Step
}

func broadcast(m models.Match, frame models.Frame) []Notification {
	return []Notification{
		{To: m.Player1.ConnectionID, Frame: frame},
		{To: m.Player2.ConnectionID, Frame: frame},
	}
}

func opponentOf(p models.Player) models.Opponent {
	return models.Opponent{UserID: p.UserID, DisplayName: p.DisplayName, AvatarRef: p.AvatarRef}
}

// NewMatch builds a WAITING match from two consumed queue entries and the
// match-found notifications for both players.
func NewMatch(matchID string, e1, e2 models.QueueEntry, now time.Time) (Transition, error) {
	exercise, ok := models.LookupExercise(e1.Category)
	if !ok {
		return Transition{}, models.ErrInvalidCategory
	}

	m := models.Match{
		MatchID:         matchID,
		Category:        e1.Category,
		Player1:         models.PlayerFromEntry(e1),
		Player2:         models.PlayerFromEntry(e2),
		Status:          models.StatusWaiting,
		CreatedAt:       now,
		DurationSeconds: exercise.DurationSeconds,
	}

	return Transition{
		Match: m,
		Notifications: []Notification{
			{To: m.Player1.ConnectionID, Frame: models.Frame{Type: models.MsgMatchFound, Data: models.MatchFoundData{
				MatchID:  matchID,
				Opponent: opponentOf(m.Player2),
				Category: m.Category,
				YourRole: models.RolePlayer1,
			}}},
			{To: m.Player2.ConnectionID, Frame: models.Frame{Type: models.MsgMatchFound, Data: models.MatchFoundData{
				MatchID:  matchID,
				Opponent: opponentOf(m.Player1),
				Category: m.Category,
				YourRole: models.RolePlayer2,
			}}},
		},
		Next: &Step{Delay: MatchFoundDelay, From: models.StatusWaiting},
	}, nil
}

// Advance applies the timer-driven edge leaving the match's current status.
// It returns false for statuses that are not left by a timer.
func Advance(m models.Match, now time.Time) (Transition, bool) {
	ref := models.MatchRef{MatchID: m.MatchID}

	switch m.Status {
	case models.StatusWaiting:
		m.Status = models.StatusCountdown
		return Transition{
			Match:         m,
			Notifications: broadcast(m, models.Frame{Type: models.MsgCountdownStart, Data: ref}),
			Next:          &Step{Delay: CountdownDelay, From: models.StatusCountdown},
		}, true

	case models.StatusCountdown:
		m.Status = models.StatusInProgress
		if m.StartTime == nil {
			start := now
			m.StartTime = &start
		}
		return Transition{
			Match: m,
			Notifications: broadcast(m, models.Frame{Type: models.MsgDuelStart, Data: models.DuelStartData{
				MatchID:  m.MatchID,
				Duration: m.DurationSeconds,
			}}),
			Next: &Step{Delay: time.Duration(m.DurationSeconds) * time.Second, From: models.StatusInProgress},
		}, true

	case models.StatusInProgress:
		m.Status = models.StatusReview
		return Transition{
			Match:         m,
			Notifications: broadcast(m, models.Frame{Type: models.MsgDuelEnd, Data: ref}),
		}, true
	}

	return Transition{}, false
}

// Cancel moves a non-terminal match to CANCELLED. The participant holding
// skip (the one who disconnected, if any) is not notified.
func Cancel(m models.Match, reason string, skip models.ConnectionHandle, now time.Time) (Transition, error) {
	if m.Status.Terminal() {
		return Transition{}, models.ErrMatchFinished
	}

	m.Status = models.StatusCancelled
	m.CancelReason = reason
	end := now
	m.EndTime = &end

	frame := models.Frame{Type: models.MsgMatchCancelled, Data: models.MatchCancelledData{MatchID: m.MatchID, Reason: reason}}
	var notes []Notification
	for _, n := range broadcast(m, frame) {
		if skip != "" && n.To == skip {
			continue
		}
		notes = append(notes, n)
	}
	return Transition{Match: m, Notifications: notes}, nil
}

// ApplyResult records the reps or hold time a player reports for a match.
func ApplyResult(m models.Match, userID string, reps *int, seconds *float64) (models.Match, error) {
	slot := m.PlayerByUser(userID)
	if slot == 0 {
		return m, models.ErrNotAParticipant
	}
	p := m.Slot(slot)
	if reps != nil {
		r := *reps
		p.Reps = &r
	}
	if seconds != nil {
		s := *seconds
		p.TimeSeconds = &s
	}
	return m, nil
}
