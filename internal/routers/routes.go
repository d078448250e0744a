package routers

import (
	matchManager "duel/internal/match_management"

	"github.com/go-chi/chi/v5"
)

func MatchRoutes(r chi.Router, mm *matchManager.MatchManager) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/exercises", mm.ExercisesHandler)
		r.Get("/queue/status", mm.QueueStatsHandler)
		r.Get("/matches/active", mm.ActiveMatchesHandler)
		r.Get("/matches/{matchId}", mm.GetMatchHandler)
		r.Post("/matches/{matchId}/result", mm.SubmitResultHandler)
		r.Post("/users", mm.CreateUserHandler)
		r.Get("/leaderboard", mm.LeaderboardHandler)
		r.Get("/webrtc/config", mm.WebRTCConfigHandler)
		r.HandleFunc("/ws", mm.WsHandler)
	})
}
