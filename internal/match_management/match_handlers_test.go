package match_management

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"duel/internal/models"
	"duel/internal/signaling"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}

func withMatchID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("matchId", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestExercisesHandler(t *testing.T) {
	mm := NewMatchManager(Options{Logger: zap.NewNop()})
	rr := httptest.NewRecorder()

	mm.ExercisesHandler(rr, httptest.NewRequest(http.MethodGet, "/api/v1/exercises", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.True(t, env.Success)
	var list []models.Exercise
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 7)
	assert.Equal(t, models.Category("squats"), list[0].ID)
}

func TestQueueStatsHandler(t *testing.T) {
	h := newHarness(t, nil)
	h.connect("c1")
	h.join("c1", "u1", "Alice", "plank")
	h.flush()

	rr := httptest.NewRecorder()
	h.mm.QueueStatsHandler(rr, httptest.NewRequest(http.MethodGet, "/api/v1/queue/status", nil))

	env := decodeEnvelope(t, rr)
	var stats struct {
		Queues map[string]int `json:"queues"`
		Total  int            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 1, stats.Queues["plank"])
	assert.Equal(t, 0, stats.Queues["squats"])
	assert.Equal(t, 1, stats.Total)
}

func TestMatchHandlers(t *testing.T) {
	h := newHarness(t, nil)
	h.connect("c1")
	h.connect("c2")
	h.join("c1", "u1", "Alice", "squats")
	h.join("c2", "u2", "Bob", "squats")
	h.flush()

	t.Run("active", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.mm.ActiveMatchesHandler(rr, httptest.NewRequest(http.MethodGet, "/api/v1/matches/active", nil))
		var active []models.Match
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Data, &active))
		require.Len(t, active, 1)
		assert.Equal(t, "match-1", active[0].MatchID)
	})

	t.Run("get", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.mm.GetMatchHandler(rr, withMatchID(httptest.NewRequest(http.MethodGet, "/api/v1/matches/match-1", nil), "match-1"))
		assert.Equal(t, http.StatusOK, rr.Code)
		var m models.Match
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Data, &m))
		assert.Equal(t, models.StatusWaiting, m.Status)
	})

	t.Run("get missing", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.mm.GetMatchHandler(rr, withMatchID(httptest.NewRequest(http.MethodGet, "/api/v1/matches/x", nil), "x"))
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.False(t, decodeEnvelope(t, rr).Success)
	})
}

func TestSubmitResultHandler(t *testing.T) {
	h := newHarness(t, nil)
	h.connect("c1")
	h.connect("c2")
	h.join("c1", "u1", "Alice", "plank")
	h.join("c2", "u2", "Bob", "plank")
	h.flush()

	tests := []struct {
		name    string
		matchID string
		body    string
		status  int
	}{
		{"records time", "match-1", `{"userId":"u2","time":71.5}`, http.StatusOK},
		{"invalid json", "match-1", `{`, http.StatusBadRequest},
		{"missing user", "match-1", `{"reps":3}`, http.StatusBadRequest},
		{"missing result", "match-1", `{"userId":"u1"}`, http.StatusBadRequest},
		{"not a participant", "match-1", `{"userId":"u9","reps":3}`, http.StatusBadRequest},
		{"unknown match", "nope", `{"userId":"u1","reps":3}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/matches/"+tt.matchID+"/result", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			h.mm.SubmitResultHandler(rr, withMatchID(req, tt.matchID))
			assert.Equal(t, tt.status, rr.Code)
		})
	}

	m := h.match("match-1")
	require.NotNil(t, m.Player2.TimeSeconds)
	assert.Equal(t, 71.5, *m.Player2.TimeSeconds)
}

func TestCreateUserHandler(t *testing.T) {
	mm := NewMatchManager(Options{Logger: zap.NewNop()})

	rr := httptest.NewRecorder()
	mm.CreateUserHandler(rr, httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewBufferString(`{"username":" rocky "}`)))
	assert.Equal(t, http.StatusCreated, rr.Code)

	var u models.User
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Data, &u))
	assert.Equal(t, "rocky", u.Username)
	assert.NotEmpty(t, u.ID)
	assert.Contains(t, u.AvatarURL, "seed=rocky")
	assert.Zero(t, u.Stats.Wins)

	rr = httptest.NewRecorder()
	mm.CreateUserHandler(rr, httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewBufferString(`{"username":""}`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestWebRTCConfigHandler(t *testing.T) {
	mm := NewMatchManager(Options{
		Logger: zap.NewNop(),
		WebRTC: signaling.BuildWebRTCConfig(signaling.ICEConfig{}),
	})

	rr := httptest.NewRecorder()
	mm.WebRTCConfigHandler(rr, httptest.NewRequest(http.MethodGet, "/api/v1/webrtc/config", nil))

	var cfg struct {
		ICEServers []struct {
			URLs []string `json:"urls"`
		} `json:"iceServers"`
		ICECandidatePoolSize int `json:"iceCandidatePoolSize"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Data, &cfg))
	assert.Len(t, cfg.ICEServers, len(signaling.DefaultSTUNServers))
	assert.Equal(t, 10, cfg.ICECandidatePoolSize)
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(waitFor)))
	var frame map[string]interface{}
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestWsHandler_EndToEnd(t *testing.T) {
	mm := NewMatchManager(Options{Logger: zap.NewNop()})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go mm.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(mm.WsHandler))
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	dial := func() *websocket.Conn {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		return conn
	}

	alice := dial()
	hello := readFrame(t, alice)
	assert.Equal(t, models.MsgConnected, hello["type"])

	require.NoError(t, alice.WriteJSON(map[string]interface{}{
		"type": models.MsgJoinQueue,
		"data": map[string]string{"userId": "u1", "displayName": "Alice", "category": "sit-ups"},
	}))
	status := readFrame(t, alice)
	assert.Equal(t, models.MsgQueueStatus, status["type"])

	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("not json")))
	bad := readFrame(t, alice)
	assert.Equal(t, models.MsgError, bad["type"])

	bob := dial()
	readFrame(t, bob)
	require.NoError(t, bob.WriteJSON(map[string]interface{}{
		"type": models.MsgJoinQueue,
		"data": map[string]string{"userId": "u2", "displayName": "Bob", "category": "sit-ups"},
	}))

	found := readFrame(t, bob)
	assert.Equal(t, models.MsgMatchFound, found["type"])
	found = readFrame(t, alice)
	assert.Equal(t, models.MsgMatchFound, found["type"])

	require.NoError(t, bob.Close())
	cancelled := readFrame(t, alice)
	assert.Equal(t, models.MsgMatchCancelled, cancelled["type"])
	data := cancelled["data"].(map[string]interface{})
	assert.Equal(t, models.ReasonOpponentDisconnected, data["reason"])
}
