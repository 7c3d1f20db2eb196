package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nijaru/yt-transcript/middleware"
	"github.com/nijaru/yt-transcript/models"
)

func respondJSON(w http.ResponseWriter, r *http.Request, code int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		middleware.GetLogger(r.Context()).WithError(err).Error("Failed to encode response")
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(body)
}

func respondError(w http.ResponseWriter, r *http.Request, code int, message string) {
	respondJSON(w, r, code, models.ErrorResponse{Error: message})
}
