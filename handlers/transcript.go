package handlers

import (
	"context"
	"errors"
	"net/http"

	provider "github.com/nijaru/yt-transcript/transcript"
)

// User-facing messages shared by the page and the API.
const (
	msgMissingURL = "Please provide a YouTube URL"
	msgInvalidURL = "Invalid YouTube URL"
	msgDisabled   = "Transcripts are disabled for this video"
	msgNotFound   = "No transcript found for this video"
	msgFailed     = "An error occurred: "
)

var errNoTranscript = errors.New("no transcript returned")

// fetchText fetches a transcript and assembles its text.
func (s *Server) fetchText(ctx context.Context, videoID string) (string, error) {
	t, err := s.transcripts.Fetch(ctx, videoID)
	if err != nil {
		return "", err
	}
	if t == nil {
		return "", provider.Unknown(videoID, errNoTranscript)
	}
	return provider.Join(t.Segments), nil
}

// describeFailure maps a fetch error to the API status and the message
// shown to the user.
func describeFailure(err error) (int, string) {
	switch provider.KindOf(err) {
	case provider.KindDisabled:
		return http.StatusBadRequest, msgDisabled
	case provider.KindNotFound:
		return http.StatusNotFound, msgNotFound
	default:
		return http.StatusInternalServerError, msgFailed + err.Error()
	}
}
