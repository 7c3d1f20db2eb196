package handlers

import (
	"net/http"

	"github.com/nijaru/yt-transcript/middleware"
	"github.com/nijaru/yt-transcript/models"
	"github.com/nijaru/yt-transcript/validation"
	"github.com/sirupsen/logrus"
)

func (s *Server) handleAPITranscript(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		respondError(w, r, http.StatusBadRequest, msgMissingURL)
		return
	}

	videoID, ok := validation.VideoID(rawURL)
	if !ok {
		logger.WithField("url", rawURL).Debug("Unresolvable YouTube URL")
		respondError(w, r, http.StatusBadRequest, msgInvalidURL)
		return
	}

	text, err := s.fetchText(r.Context(), videoID)
	if err != nil {
		status, message := describeFailure(err)
		logger.WithFields(logrus.Fields{
			"video_id": videoID,
			"status":   status,
			"error":    err,
		}).Info("Transcript request failed")
		respondError(w, r, status, message)
		return
	}

	respondJSON(w, r, http.StatusOK, models.TranscriptResponse{Text: text})
}
