package models

// DuelError is a simple error type for client-caused failures. Its message is
// safe to send back to the originating connection.
type DuelError struct{ Msg string }

func (e *DuelError) Error() string { return e.Msg }

var (
	ErrInvalidCategory   = &DuelError{"invalid exercise category"}
	ErrMatchNotFound     = &DuelError{"match not found"}
	ErrNotAParticipant   = &DuelError{"user not in this match"}
	ErrSignalingRejected = &DuelError{"signaling rejected"}
	ErrVotingClosed      = &DuelError{"voting is not open for this match"}
	ErrInvalidWinner     = &DuelError{"winner must be one of the match players"}
	ErrMatchFinished     = &DuelError{"match already finished"}
	ErrMissingIdentity   = &DuelError{"userId and displayName are required"}
	ErrAlreadyInMatch    = &DuelError{"already playing in an active match"}
	ErrQueuedElsewhere   = &DuelError{"queue entry replaced by another connection of the same user"}
	ErrRateLimited       = &DuelError{"too many messages, slow down"}
	ErrUnknownMessage    = &DuelError{"unknown message type"}
	ErrMalformedMessage  = &DuelError{"malformed message"}
)
