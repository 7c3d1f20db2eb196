// Package transcript defines the caption provider contract shared by the
// provider implementations and the handlers.
package transcript

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nijaru/yt-transcript/models"
)

// Provider fetches the caption track of a single video.
type Provider interface {
	Fetch(ctx context.Context, videoID string) (*models.Transcript, error)
}

// ProviderFunc adapts a plain function to Provider.
type ProviderFunc func(ctx context.Context, videoID string) (*models.Transcript, error)

func (f ProviderFunc) Fetch(ctx context.Context, videoID string) (*models.Transcript, error) {
	return f(ctx, videoID)
}

// Kind classifies a provider failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindDisabled
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindDisabled:
		return "transcripts_disabled"
	case KindNotFound:
		return "no_transcript_found"
	default:
		return "unknown"
	}
}

// Error is returned by providers. Err carries the detail of unknown
// failures and is surfaced to users verbatim.
type Error struct {
	Kind    Kind
	VideoID string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return e.Err.Error()
	case e.Kind == KindDisabled:
		return fmt.Sprintf("transcripts are disabled for video %s", e.VideoID)
	case e.Kind == KindNotFound:
		return fmt.Sprintf("no transcript found for video %s", e.VideoID)
	default:
		return fmt.Sprintf("transcript fetch failed for video %s", e.VideoID)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Disabled(videoID string) *Error {
	return &Error{Kind: KindDisabled, VideoID: videoID}
}

func NotFound(videoID string, err error) *Error {
	return &Error{Kind: KindNotFound, VideoID: videoID, Err: err}
}

func Unknown(videoID string, err error) *Error {
	return &Error{Kind: KindUnknown, VideoID: videoID, Err: err}
}

// KindOf returns the failure kind of err. Errors that did not come from a
// provider are KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Join concatenates segment texts with single spaces, in order.
func Join(segments []models.Segment) string {
	texts := make([]string, len(segments))
	for i, s := range segments {
		texts[i] = s.Text
	}
	return strings.Join(texts, " ")
}
