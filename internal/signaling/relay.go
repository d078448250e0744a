package signaling

import (
	"encoding/json"

	"go.uber.org/zap"

	"duel/internal/models"
)

// MatchLookup resolves a match id to a snapshot of the match.
type MatchLookup interface {
	Get(matchID string) (models.Match, bool)
}

// Sender delivers a frame to one connection.
type Sender interface {
	Send(handle models.ConnectionHandle, frame models.Frame) bool
}

// Relay forwards negotiation payloads between the two players of a match.
// Payloads are never inspected.
type Relay struct {
	matches  MatchLookup
	sender   Sender
	logger   *zap.Logger
	observer func(kind string)
}

func NewRelay(matches MatchLookup, sender Sender, logger *zap.Logger) *Relay {
	return &Relay{matches: matches, sender: sender, logger: logger}
}

// OnRelayed registers a callback invoked after every forwarded payload.
func (r *Relay) OnRelayed(fn func(kind string)) {
	r.observer = fn
}

// Forward sends payload from one participant to the other. It returns
// ErrSignalingRejected when the match is unknown or from is not one of its
// players; callers drop those silently.
func (r *Relay) Forward(matchID string, from models.ConnectionHandle, kind string, payload json.RawMessage) error {
	if !models.SignalKinds[kind] {
		return models.ErrSignalingRejected
	}

	m, ok := r.matches.Get(matchID)
	if !ok {
		return models.ErrSignalingRejected
	}

	target, ok := m.Opponent(from)
	if !ok {
		r.logger.Warn("Signaling from non-participant dropped",
			zap.String("matchId", matchID),
			zap.String("connection", string(from)),
			zap.String("kind", kind))
		return models.ErrSignalingRejected
	}

	r.sender.Send(target, models.Frame{Type: kind, Data: models.RelayedSignal{Payload: payload, From: from}})
	if r.observer != nil {
		r.observer(kind)
	}
	return nil
}
