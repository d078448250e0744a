package models

import "encoding/json"

// Websocket message types
const (
	MsgConnected      = "connected"
	MsgIdentify       = "identify"
	MsgJoinQueue      = "join-queue"
	MsgLeaveQueue     = "leave-queue"
	MsgQueueStatus    = "queue-status"
	MsgMatchFound     = "match-found"
	MsgCountdownStart = "countdown-start"
	MsgDuelStart      = "duel-start"
	MsgDuelEnd        = "duel-end"
	MsgSelectWinner   = "select-winner"
	MsgVoteUpdate     = "vote-update"
	MsgWinnerDeclared = "winner-declared"
	MsgDisagreement   = "vote-disagreement"
	MsgRequestRevote  = "request-revote"
	MsgRevoteStarted  = "revote-started"
	MsgLeaveMatch     = "leave-match"
	MsgMatchCancelled = "match-cancelled"
	MsgError          = "error"

	// video channel
	MsgSignalOffer  = "signal-offer"
	MsgSignalAnswer = "signal-answer"
	MsgSignalICE    = "signal-ice"
	// voice channel
	MsgVoiceOffer  = "voice-offer"
	MsgVoiceAnswer = "voice-answer"
	MsgVoiceICE    = "voice-ice"
)

// SignalKinds are the negotiation message types relayed between participants.
var SignalKinds = map[string]bool{
	MsgSignalOffer:  true,
	MsgSignalAnswer: true,
	MsgSignalICE:    true,
	MsgVoiceOffer:   true,
	MsgVoiceAnswer:  true,
	MsgVoiceICE:     true,
}

// InboundFrame is what clients send. Data is decoded per Type.
type InboundFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Frame is what the server sends.
type Frame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type IdentifyData struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type JoinQueueData struct {
	UserID      string   `json:"userId"`
	DisplayName string   `json:"displayName"`
	Category    Category `json:"category"`
	AvatarRef   string   `json:"avatarRef,omitempty"`
}

type MatchRef struct {
	MatchID string `json:"matchId"`
}

type SelectWinnerData struct {
	MatchID      string `json:"matchId"`
	WinnerUserID string `json:"winnerUserId"`
}

type SignalData struct {
	MatchID string          `json:"matchId"`
	Payload json.RawMessage `json:"payload"`
}

type ConnectedData struct {
	ConnectionID ConnectionHandle `json:"connectionId"`
}

type QueueStatusData struct {
	Position int      `json:"position"`
	Waiting  bool     `json:"waiting"`
	Category Category `json:"category"`
}

type Opponent struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	AvatarRef   string `json:"avatarRef,omitempty"`
}

type MatchFoundData struct {
	MatchID  string   `json:"matchId"`
	Opponent Opponent `json:"opponent"`
	Category Category `json:"category"`
	YourRole string   `json:"yourRole"`
}

type DuelStartData struct {
	MatchID  string `json:"matchId"`
	Duration int    `json:"duration"`
}

type VoteUpdateData struct {
	MatchID      string `json:"matchId"`
	Player1Voted bool   `json:"player1Voted"`
	Player2Voted bool   `json:"player2Voted"`
}

type WinnerDeclaredData struct {
	MatchID    string `json:"matchId"`
	WinnerID   string `json:"winnerId"`
	WinnerName string `json:"winnerName"`
}

type NoticeData struct {
	MatchID string `json:"matchId"`
	Message string `json:"message"`
}

type MatchCancelledData struct {
	MatchID string `json:"matchId"`
	Reason  string `json:"reason"`
}

type RelayedSignal struct {
	Payload json.RawMessage  `json:"payload"`
	From    ConnectionHandle `json:"from"`
}

type ErrorData struct {
	Message string `json:"message"`
}

// ErrorFrame wraps an error for the originating connection.
func ErrorFrame(err error) Frame {
	return Frame{Type: MsgError, Data: ErrorData{Message: err.Error()}}
}
