package match_management

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"duel/internal/metrics"
	"duel/internal/models"
	"duel/internal/registry"
	"duel/internal/utils"
)

// --- WebSocket Handler ---
func (mm *MatchManager) WsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := mm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		mm.logger.Warn("Upgrade error", zap.Error(err))
		return
	}

	handle := models.ConnectionHandle(uuid.New().String())
	client := registry.NewClient(handle, conn)
	mm.registry.Register(client)
	metrics.ConnectionOpened()

	mm.logger.Info("WebSocket connected", zap.String("connection", string(handle)))

	go client.WritePump(mm.logger)
	client.Send(models.Frame{Type: models.MsgConnected, Data: models.ConnectedData{ConnectionID: handle}})

	mm.readPump(client)
}

func (mm *MatchManager) readPump(client *registry.Client) {
	defer func() {
		mm.Disconnect(client.Handle)
		metrics.ConnectionClosed()
		mm.logger.Info("WebSocket disconnected", zap.String("connection", string(client.Handle)))
	}()

	client.PrepareRead()
	limiter := rate.NewLimiter(rate.Limit(mm.messageRate), mm.messageBurst)

	for {
		_, data, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				mm.logger.Warn("WebSocket read error",
					zap.String("connection", string(client.Handle)), zap.Error(err))
			}
			return
		}

		if !limiter.Allow() {
			client.Send(models.ErrorFrame(models.ErrRateLimited))
			continue
		}

		var frame models.InboundFrame
		if err := json.Unmarshal(data, &frame); err != nil || frame.Type == "" {
			client.Send(models.ErrorFrame(models.ErrMalformedMessage))
			continue
		}
		mm.HandleFrame(client.Handle, frame)
	}
}

// --- REST Handlers ---

func (mm *MatchManager) ExercisesHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteData(w, models.Exercises)
}

func (mm *MatchManager) QueueStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats := mm.queue.Stats()
	total := 0
	for _, n := range stats {
		total += n
	}
	utils.WriteData(w, map[string]interface{}{
		"queues": stats,
		"total":  total,
	})
}

func (mm *MatchManager) ActiveMatchesHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteData(w, mm.store.Active())
}

func (mm *MatchManager) GetMatchHandler(w http.ResponseWriter, r *http.Request) {
	m, ok := mm.store.Get(chi.URLParam(r, "matchId"))
	if !ok {
		utils.WriteError(w, http.StatusNotFound, models.ErrMatchNotFound.Error())
		return
	}
	utils.WriteData(w, m)
}

func (mm *MatchManager) SubmitResultHandler(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchId")

	var req models.ResultReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.UserID == "" {
		utils.WriteError(w, http.StatusBadRequest, "userId is required")
		return
	}
	if req.Reps == nil && req.Time == nil {
		utils.WriteError(w, http.StatusBadRequest, "reps or time is required")
		return
	}

	err := mm.SubmitResult(r.Context(), matchID, req)
	switch {
	case err == nil:
		utils.WriteJSON(w, http.StatusOK, models.Resp{Success: true, Message: "result recorded"})
	case errors.Is(err, models.ErrMatchNotFound):
		utils.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrNotAParticipant):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		mm.logger.Error("Failed to record result", zap.String("matchId", matchID), zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to record result")
	}
}

// CreateUserHandler hands out a fresh user id and avatar. Nothing is stored.
func (mm *MatchManager) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		utils.WriteError(w, http.StatusBadRequest, "username is required")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, models.Resp{Success: true, Data: models.User{
		ID:        uuid.New().String(),
		Username:  username,
		AvatarURL: fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%s", url.QueryEscape(username)),
		CreatedAt: time.Now(),
	}})
}

// LeaderboardHandler returns an empty board; rankings live outside this service.
func (mm *MatchManager) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteData(w, []models.LeaderboardEntry{})
}

func (mm *MatchManager) WebRTCConfigHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteData(w, mm.webrtc)
}
