package utils

import (
	"encoding/json"
	"net/http"

	"duel/internal/models"
)

func WriteJSON(w http.ResponseWriter, code int, resp models.Resp) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(resp)
}

func WriteData(w http.ResponseWriter, data interface{}) {
	WriteJSON(w, http.StatusOK, models.Resp{Success: true, Data: data})
}

func WriteError(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, models.Resp{Success: false, Error: msg})
}
