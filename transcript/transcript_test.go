package transcript

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nijaru/yt-transcript/models"
	"github.com/stretchr/testify/assert"
)

func TestJoin(t *testing.T) {
	tests := []struct {
		name     string
		segments []models.Segment
		want     string
	}{
		{
			name:     "two segments",
			segments: []models.Segment{{Text: "Hello"}, {Text: "world"}},
			want:     "Hello world",
		},
		{
			name:     "keeps provider order",
			segments: []models.Segment{{Text: "b", Start: 0}, {Text: "a", Start: 5}},
			want:     "b a",
		},
		{
			name:     "inner whitespace untouched",
			segments: []models.Segment{{Text: "line one\nline two"}, {Text: " x"}},
			want:     "line one\nline two  x",
		},
		{
			name:     "single",
			segments: []models.Segment{{Text: "only"}},
			want:     "only",
		},
		{
			name: "empty",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Join(tt.segments))
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"disabled", Disabled("abc"), KindDisabled},
		{"not found", NotFound("abc", nil), KindNotFound},
		{"unknown", Unknown("abc", errors.New("boom")), KindUnknown},
		{"wrapped", fmt.Errorf("fetch: %w", Disabled("abc")), KindDisabled},
		{"plain", errors.New("boom"), KindUnknown},
		{"context", context.Canceled, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "boom", Unknown("abc", errors.New("boom")).Error())
	assert.Equal(t, "transcripts are disabled for video abc", Disabled("abc").Error())
	assert.Equal(t, "no transcript found for video abc", NotFound("abc", nil).Error())
	assert.Equal(t, "transcript fetch failed for video abc", Unknown("abc", nil).Error())

	cause := errors.New("cause")
	assert.ErrorIs(t, Unknown("abc", cause), cause)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "transcripts_disabled", KindDisabled.String())
	assert.Equal(t, "no_transcript_found", KindNotFound.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}

func TestProviderFunc(t *testing.T) {
	var p Provider = ProviderFunc(func(ctx context.Context, videoID string) (*models.Transcript, error) {
		return &models.Transcript{VideoID: videoID}, nil
	})

	tr, err := p.Fetch(context.Background(), "abc")
	assert.NoError(t, err)
	assert.Equal(t, "abc", tr.VideoID)
}
