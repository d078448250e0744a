package match_management

import (
	"time"

	"duel/internal/models"
)

const disagreementNotice = "No mutual agreement. Both players must agree on the winner."

func voteUpdate(m models.Match) models.Frame {
	return models.Frame{Type: models.MsgVoteUpdate, Data: models.VoteUpdateData{
		MatchID:      m.MatchID,
		Player1Voted: m.Player1.Vote != "",
		Player2Voted: m.Player2.Vote != "",
	}}
}

// ApplyVote records the winner selected by the participant on conn.
//
// A connection that is not part of the match is ignored: the returned
// transition carries no notifications and the match unchanged. Only the
// fact that each player has voted is broadcast until both have voted, so
// neither side sees the other's choice early. When both votes name the same
// user the match completes; otherwise both players get a disagreement
// notice and the votes stay in place until a revote is requested.
func ApplyVote(m models.Match, conn models.ConnectionHandle, winnerUserID string, now time.Time) (Transition, error) {
	slot := m.PlayerByConnection(conn)
	if slot == 0 {
		return Transition{Match: m}, nil
	}
	if m.Status != models.StatusReview {
		return Transition{}, models.ErrVotingClosed
	}
	if m.PlayerByUser(winnerUserID) == 0 {
		return Transition{}, models.ErrInvalidWinner
	}

	m.Slot(slot).Vote = winnerUserID
	notes := broadcast(m, voteUpdate(m))

	if m.Player1.Vote == "" || m.Player2.Vote == "" {
		return Transition{Match: m, Notifications: notes}, nil
	}

	if m.Player1.Vote != m.Player2.Vote {
		notes = append(notes, broadcast(m, models.Frame{Type: models.MsgDisagreement, Data: models.NoticeData{
			MatchID: m.MatchID,
			Message: disagreementNotice,
		}})...)
		return Transition{Match: m, Notifications: notes}, nil
	}

	m.WinnerUserID = m.Player1.Vote
	m.Status = models.StatusCompleted
	end := now
	m.EndTime = &end

	winner := m.Slot(m.PlayerByUser(m.WinnerUserID))
	notes = append(notes, broadcast(m, models.Frame{Type: models.MsgWinnerDeclared, Data: models.WinnerDeclaredData{
		MatchID:    m.MatchID,
		WinnerID:   m.WinnerUserID,
		WinnerName: winner.DisplayName,
	}})...)
	return Transition{Match: m, Notifications: notes}, nil
}

// Revote clears both votes of a match still in review.
func Revote(m models.Match, conn models.ConnectionHandle) (Transition, error) {
	if m.PlayerByConnection(conn) == 0 {
		return Transition{}, models.ErrNotAParticipant
	}
	if m.Status != models.StatusReview {
		return Transition{}, models.ErrVotingClosed
	}

	m.Player1.Vote = ""
	m.Player2.Vote = ""

	notes := broadcast(m, voteUpdate(m))
	notes = append(notes, broadcast(m, models.Frame{Type: models.MsgRevoteStarted, Data: models.MatchRef{MatchID: m.MatchID}})...)
	return Transition{Match: m, Notifications: notes}, nil
}
