package models

import (
	"time"
)

// ConnectionHandle identifies one live websocket connection. It is assigned
// by the server and is unrelated to the userId a client claims.
type ConnectionHandle string

// Category is the exercise a queue and its duels are for.
type Category string

type MatchStatus string

// Match phases
const (
	StatusWaiting    MatchStatus = "waiting"
	StatusCountdown  MatchStatus = "countdown"
	StatusInProgress MatchStatus = "in-progress"
	StatusReview     MatchStatus = "review"
	StatusCompleted  MatchStatus = "completed"
	StatusCancelled  MatchStatus = "cancelled"
)

// Terminal reports whether no further transition can leave the status.
func (s MatchStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Player roles sent in match-found
const (
	RolePlayer1 = "player1"
	RolePlayer2 = "player2"
)

// Cancellation reasons
const (
	ReasonOpponentDisconnected = "opponent-disconnected"
	ReasonPlayerLeft           = "player-left"
	ReasonAborted              = "aborted"
)

type Identity struct {
	ConnectionID ConnectionHandle `json:"connectionId"`
	UserID       string           `json:"userId"`
	DisplayName  string           `json:"displayName"`
	AvatarRef    string           `json:"avatarRef,omitempty"`
}

type QueueEntry struct {
	UserID       string           `json:"userId"`
	ConnectionID ConnectionHandle `json:"connectionId"`
	DisplayName  string           `json:"displayName"`
	AvatarRef    string           `json:"avatarRef,omitempty"`
	Category     Category         `json:"category"`
	JoinedAt     time.Time        `json:"joinedAt"`
}

type Player struct {
	UserID       string           `json:"userId"`
	ConnectionID ConnectionHandle `json:"connectionId"`
	DisplayName  string           `json:"displayName"`
	AvatarRef    string           `json:"avatarRef,omitempty"`
	Vote         string           `json:"vote,omitempty"`
	Reps         *int             `json:"reps,omitempty"`
	TimeSeconds  *float64         `json:"timeSeconds,omitempty"`
}

// PlayerFromEntry turns a consumed queue entry into a match participant.
func PlayerFromEntry(e QueueEntry) Player {
	return Player{
		UserID:       e.UserID,
		ConnectionID: e.ConnectionID,
		DisplayName:  e.DisplayName,
		AvatarRef:    e.AvatarRef,
	}
}

type Match struct {
	MatchID         string      `json:"matchId"`
	Category        Category    `json:"category"`
	Player1         Player      `json:"player1"`
	Player2         Player      `json:"player2"`
	Status          MatchStatus `json:"status"`
	CreatedAt       time.Time   `json:"createdAt"`
	StartTime       *time.Time  `json:"startTime,omitempty"`
	EndTime         *time.Time  `json:"endTime,omitempty"`
	DurationSeconds int         `json:"durationSeconds"`
	WinnerUserID    string      `json:"winnerUserId,omitempty"`
	CancelReason    string      `json:"cancelReason,omitempty"`
}

// PlayerByConnection returns the slot (1 or 2) held by the connection, or 0.
func (m *Match) PlayerByConnection(conn ConnectionHandle) int {
	switch conn {
	case m.Player1.ConnectionID:
		return 1
	case m.Player2.ConnectionID:
		return 2
	default:
		return 0
	}
}

// PlayerByUser returns the slot (1 or 2) held by the user, or 0.
func (m *Match) PlayerByUser(userID string) int {
	switch userID {
	case m.Player1.UserID:
		return 1
	case m.Player2.UserID:
		return 2
	default:
		return 0
	}
}

// Slot returns a pointer to player 1 or 2.
func (m *Match) Slot(n int) *Player {
	if n == 1 {
		return &m.Player1
	}
	return &m.Player2
}

// Opponent returns the connection of the participant other than conn.
func (m *Match) Opponent(conn ConnectionHandle) (ConnectionHandle, bool) {
	switch conn {
	case m.Player1.ConnectionID:
		return m.Player2.ConnectionID, true
	case m.Player2.ConnectionID:
		return m.Player1.ConnectionID, true
	default:
		return "", false
	}
}

// Clone returns a deep copy so callers never share pointer fields with the store.
func (m Match) Clone() Match {
	out := m
	if m.StartTime != nil {
		t := *m.StartTime
		out.StartTime = &t
	}
	if m.EndTime != nil {
		t := *m.EndTime
		out.EndTime = &t
	}
	out.Player1 = m.Player1.clone()
	out.Player2 = m.Player2.clone()
	return out
}

func (p Player) clone() Player {
	out := p
	if p.Reps != nil {
		r := *p.Reps
		out.Reps = &r
	}
	if p.TimeSeconds != nil {
		t := *p.TimeSeconds
		out.TimeSeconds = &t
	}
	return out
}

type Resp struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

type ResultReq struct {
	UserID string   `json:"userId"`
	Reps   *int     `json:"reps,omitempty"`
	Time   *float64 `json:"time,omitempty"`
}

type CreateUserReq struct {
	Username string `json:"username"`
}

// User is the profile handed out by the mock user endpoint.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatarUrl"`
	Stats     UserStats `json:"stats"`
	CreatedAt time.Time `json:"createdAt"`
}

type UserStats struct {
	Wins       int `json:"wins"`
	Losses     int `json:"losses"`
	TotalDuels int `json:"totalDuels"`
	WinStreak  int `json:"winStreak"`
}

type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Wins     int    `json:"wins"`
}
