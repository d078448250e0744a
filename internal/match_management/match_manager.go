package match_management

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"duel/internal/events"
	"duel/internal/metrics"
	"duel/internal/models"
	"duel/internal/queue"
	"duel/internal/registry"
	"duel/internal/signaling"
)

const eventBuffer = 1024

// ErrStopped is returned by Exec once the event loop has exited.
var ErrStopped = errors.New("match manager stopped")

type Options struct {
	Queue          *queue.QueueManager
	Store          *MatchStore
	Registry       *registry.Registry
	Publisher      events.Publisher
	Clock          clockwork.Clock
	Logger         *zap.Logger
	Retention      time.Duration
	MessageRate    float64
	MessageBurst   int
	AllowedOrigins []string
	WebRTC         signaling.WebRTCConfig
}

// MatchManager owns the queues and matches. Every mutation runs on the single
// goroutine started by Run; everything else submits work to it.
type MatchManager struct {
	queue     *queue.QueueManager
	store     *MatchStore
	registry  *registry.Registry
	relay     *signaling.Relay
	publisher events.Publisher
	clock     clockwork.Clock
	logger    *zap.Logger
	timers    *timerChain
	upgrader  websocket.Upgrader
	webrtc    signaling.WebRTCConfig

	retention    time.Duration
	messageRate  float64
	messageBurst int

	events  chan func()
	stopped chan struct{}
	newID   func() string
}

func NewMatchManager(opts Options) *MatchManager {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Publisher == nil {
		opts.Publisher = events.NopPublisher{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Store == nil {
		opts.Store = NewMatchStore()
	}
	if opts.Queue == nil {
		opts.Queue = queue.NewQueueManager(opts.Logger)
	}
	if opts.Registry == nil {
		opts.Registry = registry.NewRegistry(opts.Logger)
	}
	if opts.Retention == 0 {
		opts.Retention = 24 * time.Hour
	}
	if opts.MessageRate == 0 {
		opts.MessageRate = 20
	}
	if opts.MessageBurst == 0 {
		opts.MessageBurst = 40
	}

	relay := signaling.NewRelay(opts.Store, opts.Registry, opts.Logger)
	relay.OnRelayed(metrics.SignalRelayed)

	return &MatchManager{
		queue:     opts.Queue,
		store:     opts.Store,
		registry:  opts.Registry,
		relay:     relay,
		publisher: opts.Publisher,
		clock:     opts.Clock,
		logger:    opts.Logger,
		timers:    newTimerChain(opts.Clock),
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(opts.AllowedOrigins),
		},
		webrtc:       opts.WebRTC,
		retention:    opts.Retention,
		messageRate:  opts.MessageRate,
		messageBurst: opts.MessageBurst,
		events:       make(chan func(), eventBuffer),
		stopped:      make(chan struct{}),
		newID:        func() string { return uuid.New().String() },
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// --- Event loop ---

// Run processes submitted events one at a time until ctx is done.
func (mm *MatchManager) Run(ctx context.Context) {
	defer close(mm.stopped)
	mm.logger.Info("Match event loop started")

	for {
		select {
		case <-ctx.Done():
			mm.timers.stopAll()
			mm.logger.Info("Match event loop stopped")
			return
		case fn := <-mm.events:
			fn()
		}
	}
}

func (mm *MatchManager) submit(fn func()) bool {
	select {
	case mm.events <- fn:
		return true
	case <-mm.stopped:
		return false
	}
}

// Exec runs fn on the event loop and waits for its result.
func (mm *MatchManager) Exec(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	if !mm.submit(func() { done <- fn() }) {
		return ErrStopped
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-mm.stopped:
		return ErrStopped
	}
}

// HandleFrame queues an inbound client frame for processing. Errors are
// reported to conn only.
func (mm *MatchManager) HandleFrame(conn models.ConnectionHandle, frame models.InboundFrame) {
	mm.submit(func() {
		if err := mm.dispatch(conn, frame); err != nil {
			if errors.Is(err, models.ErrSignalingRejected) {
				return
			}
			mm.registry.Send(conn, models.ErrorFrame(err))
		}
	})
}

// Disconnect drops everything the connection holds.
func (mm *MatchManager) Disconnect(conn models.ConnectionHandle) {
	if !mm.submit(func() { mm.handleDisconnect(conn) }) {
		mm.registry.Remove(conn)
	}
}

// Abort cancels a match on behalf of an operator.
func (mm *MatchManager) Abort(matchID string) {
	mm.submit(func() {
		m, ok := mm.store.Get(matchID)
		if !ok {
			mm.logger.Warn("Abort for unknown match", zap.String("matchId", matchID))
			return
		}
		tr, err := Cancel(m, models.ReasonAborted, "", mm.clock.Now())
		if err != nil {
			return
		}
		mm.apply(m.Status, tr)
	})
}

// SubmitResult records a player's reps or hold time for a match.
func (mm *MatchManager) SubmitResult(ctx context.Context, matchID string, req models.ResultReq) error {
	return mm.Exec(ctx, func() error {
		m, ok := mm.store.Get(matchID)
		if !ok {
			return models.ErrMatchNotFound
		}
		next, err := ApplyResult(m, req.UserID, req.Reps, req.Time)
		if err != nil {
			return err
		}
		mm.store.Put(next)
		return nil
	})
}

// SweepExpired evicts finished matches older than the retention window.
func (mm *MatchManager) SweepExpired(ctx context.Context) (int, error) {
	var evicted int
	err := mm.Exec(ctx, func() error {
		evicted = mm.store.EvictExpired(mm.clock.Now(), mm.retention)
		return nil
	})
	if err == nil && evicted > 0 {
		metrics.MatchesEvicted(evicted)
	}
	return evicted, err
}

// PendingTimers reports how many matches have a phase timer armed.
func (mm *MatchManager) PendingTimers(ctx context.Context) (int, error) {
	var n int
	err := mm.Exec(ctx, func() error {
		n = mm.timers.pending()
		return nil
	})
	return n, err
}

// --- Loop-side handlers ---

func decode(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return models.ErrMalformedMessage
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return models.ErrMalformedMessage
	}
	return nil
}

func (mm *MatchManager) dispatch(conn models.ConnectionHandle, frame models.InboundFrame) error {
	switch frame.Type {
	case models.MsgIdentify:
		var data models.IdentifyData
		if err := decode(frame.Data, &data); err != nil {
			return err
		}
		return mm.handleIdentify(conn, data)

	case models.MsgJoinQueue:
		var data models.JoinQueueData
		if err := decode(frame.Data, &data); err != nil {
			return err
		}
		return mm.handleJoinQueue(conn, data)

	case models.MsgLeaveQueue:
		mm.handleLeaveQueue(conn)
		return nil

	case models.MsgSelectWinner:
		var data models.SelectWinnerData
		if err := decode(frame.Data, &data); err != nil {
			return err
		}
		return mm.handleSelectWinner(conn, data)

	case models.MsgRequestRevote:
		var data models.MatchRef
		if err := decode(frame.Data, &data); err != nil {
			return err
		}
		return mm.handleRevote(conn, data)

	case models.MsgLeaveMatch:
		var data models.MatchRef
		if err := decode(frame.Data, &data); err != nil {
			return err
		}
		return mm.handleLeaveMatch(conn, data)
	}

	if models.SignalKinds[frame.Type] {
		var data models.SignalData
		if err := decode(frame.Data, &data); err != nil {
			return models.ErrSignalingRejected
		}
		return mm.relay.Forward(data.MatchID, conn, frame.Type, data.Payload)
	}

	return models.ErrUnknownMessage
}

func (mm *MatchManager) handleIdentify(conn models.ConnectionHandle, data models.IdentifyData) error {
	if data.UserID == "" || data.DisplayName == "" {
		return models.ErrMissingIdentity
	}
	mm.registry.Identify(models.Identity{
		ConnectionID: conn,
		UserID:       data.UserID,
		DisplayName:  data.DisplayName,
	})
	return nil
}

func (mm *MatchManager) handleJoinQueue(conn models.ConnectionHandle, data models.JoinQueueData) error {
	if _, ok := models.LookupExercise(data.Category); !ok {
		return models.ErrInvalidCategory
	}
	if data.UserID == "" || data.DisplayName == "" {
		return models.ErrMissingIdentity
	}
	if len(mm.store.ActiveForConnection(conn)) > 0 {
		return models.ErrAlreadyInMatch
	}

	mm.registry.Identify(models.Identity{
		ConnectionID: conn,
		UserID:       data.UserID,
		DisplayName:  data.DisplayName,
		AvatarRef:    data.AvatarRef,
	})

	entry := models.QueueEntry{
		UserID:       data.UserID,
		ConnectionID: conn,
		DisplayName:  data.DisplayName,
		AvatarRef:    data.AvatarRef,
		Category:     data.Category,
		JoinedAt:     mm.clock.Now(),
	}
	if err := mm.queue.Join(entry); err != nil {
		return err
	}

	mm.tryPair(data.Category)

	if pos := mm.queue.PositionOf(conn, data.Category); pos > 0 {
		mm.registry.Send(conn, models.Frame{Type: models.MsgQueueStatus, Data: models.QueueStatusData{
			Position: pos,
			Waiting:  true,
			Category: data.Category,
		}})
	}
	mm.observeQueues()
	return nil
}

// tryPair forms at most one match from the category queue. Two entries of
// the same user (two connections) never face each other: the older entry is
// dropped and the newer one goes back to the head of the queue.
func (mm *MatchManager) tryPair(category models.Category) {
	for {
		e1, e2, ok := mm.queue.TryPair(category)
		if !ok {
			return
		}
		if e1.UserID == e2.UserID {
			mm.logger.Warn("Same user queued twice, dropping older entry",
				zap.String("userId", e1.UserID),
				zap.String("connection", string(e1.ConnectionID)))
			mm.registry.Send(e1.ConnectionID, models.ErrorFrame(models.ErrQueuedElsewhere))
			mm.queue.Requeue(e2)
			continue
		}
		mm.createMatch(e1, e2)
		return
	}
}

func (mm *MatchManager) createMatch(e1, e2 models.QueueEntry) {
	tr, err := NewMatch(mm.newID(), e1, e2, mm.clock.Now())
	if err != nil {
		mm.logger.Error("Failed to create match", zap.Error(err))
		return
	}

	mm.logger.Info("Match found",
		zap.String("matchId", tr.Match.MatchID),
		zap.String("player1", tr.Match.Player1.DisplayName),
		zap.String("player2", tr.Match.Player2.DisplayName),
		zap.String("category", string(tr.Match.Category)))

	metrics.MatchCreated(string(tr.Match.Category))
	mm.apply("", tr)
}

func (mm *MatchManager) handleLeaveQueue(conn models.ConnectionHandle) {
	if mm.queue.Leave(conn) {
		mm.observeQueues()
	}
}

func (mm *MatchManager) handleSelectWinner(conn models.ConnectionHandle, data models.SelectWinnerData) error {
	m, ok := mm.store.Get(data.MatchID)
	if !ok {
		return models.ErrMatchNotFound
	}
	tr, err := ApplyVote(m, conn, data.WinnerUserID, mm.clock.Now())
	if err != nil {
		return err
	}
	if len(tr.Notifications) == 0 {
		return nil
	}
	mm.apply(m.Status, tr)
	return nil
}

func (mm *MatchManager) handleRevote(conn models.ConnectionHandle, data models.MatchRef) error {
	m, ok := mm.store.Get(data.MatchID)
	if !ok {
		return models.ErrMatchNotFound
	}
	tr, err := Revote(m, conn)
	if err != nil {
		return err
	}
	mm.apply(m.Status, tr)
	return nil
}

func (mm *MatchManager) handleLeaveMatch(conn models.ConnectionHandle, data models.MatchRef) error {
	m, ok := mm.store.Get(data.MatchID)
	if !ok {
		return models.ErrMatchNotFound
	}
	if m.PlayerByConnection(conn) == 0 {
		return models.ErrNotAParticipant
	}
	tr, err := Cancel(m, models.ReasonPlayerLeft, "", mm.clock.Now())
	if err != nil {
		return err
	}
	mm.apply(m.Status, tr)
	return nil
}

func (mm *MatchManager) handleDisconnect(conn models.ConnectionHandle) {
	if mm.queue.Leave(conn) {
		mm.observeQueues()
	}

	for _, id := range mm.store.ActiveForConnection(conn) {
		m, ok := mm.store.Get(id)
		if !ok {
			continue
		}
		tr, err := Cancel(m, models.ReasonOpponentDisconnected, conn, mm.clock.Now())
		if err != nil {
			continue
		}
		mm.logger.Info("Match cancelled on disconnect",
			zap.String("matchId", id), zap.String("connection", string(conn)))
		mm.apply(m.Status, tr)
	}

	mm.registry.Remove(conn)
}

func (mm *MatchManager) onTimer(matchID string, from models.MatchStatus) {
	m, ok := mm.store.Get(matchID)
	if !ok || m.Status != from {
		return
	}
	mm.timers.fired(matchID)

	tr, ok := Advance(m, mm.clock.Now())
	if !ok {
		return
	}
	mm.apply(from, tr)
}

// apply stores the transition's match, delivers its notifications and keeps
// the timer chain in step with the new status.
func (mm *MatchManager) apply(prev models.MatchStatus, tr Transition) {
	m := tr.Match
	mm.store.Put(m)

	for _, n := range tr.Notifications {
		mm.registry.Send(n.To, n.Frame)
	}

	switch {
	case tr.Next != nil:
		mm.timers.arm(m.MatchID, *tr.Next, func(matchID string, from models.MatchStatus) {
			mm.submit(func() { mm.onTimer(matchID, from) })
		})
	case m.Status.Terminal():
		mm.timers.cancel(m.MatchID)
	}

	if prev == m.Status {
		return
	}
	if prev != "" {
		mm.logger.Info("Match status updated",
			zap.String("matchId", m.MatchID),
			zap.String("from", string(prev)),
			zap.String("to", string(m.Status)))
	}

	switch m.Status {
	case models.StatusWaiting:
		mm.publisher.Publish(events.EventMatchCreated, m)
	case models.StatusInProgress:
		mm.publisher.Publish(events.EventMatchStarted, m)
	case models.StatusCompleted:
		metrics.MatchFinished(string(m.Status))
		mm.publisher.Publish(events.EventMatchCompleted, m)
	case models.StatusCancelled:
		metrics.MatchFinished(string(m.Status))
		mm.publisher.Publish(events.EventMatchCancelled, m)
	}
}

func (mm *MatchManager) observeQueues() {
	stats := mm.queue.Stats()
	out := make(map[string]int, len(stats))
	for c, n := range stats {
		out[string(c)] = n
	}
	metrics.SetQueueLengths(out)
}
