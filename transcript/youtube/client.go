// Package youtube fetches caption tracks straight from YouTube: it reads
// the innertube API key from the watch page, asks the player endpoint for
// the caption track list and downloads the selected timedtext document.
package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nijaru/yt-transcript/models"
	"github.com/nijaru/yt-transcript/transcript"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "https://www.youtube.com"

	innertubeClientName    = "ANDROID"
	innertubeClientVersion = "20.10.38"

	maxBodySize = 10 << 20
)

var errTooManyRequests = errors.New("too many requests: YouTube is blocking requests from this IP")

type Config struct {
	BaseURL    string
	Languages  []string
	UserAgent  string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     logrus.FieldLogger
}

type Client struct {
	baseURL   string
	languages []string
	userAgent string
	http      *http.Client
	logger    logrus.FieldLogger
}

var _ transcript.Provider = (*Client)(nil)

func New(cfg Config) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		languages: cfg.Languages,
		userAgent: cfg.UserAgent,
		http:      cfg.HTTPClient,
		logger:    cfg.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if len(c.languages) == 0 {
		c.languages = []string{"en"}
	}
	if c.http == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.logger == nil {
		c.logger = logrus.StandardLogger()
	}
	return c
}

// Fetch returns the caption segments of videoID in the first configured
// language that has a track, preferring manually created tracks over
// auto-generated ones.
func (c *Client) Fetch(ctx context.Context, videoID string) (*models.Transcript, error) {
	logger := c.logger.WithField("video_id", videoID)

	page, err := c.get(ctx, c.baseURL+"/watch?v="+url.QueryEscape(videoID))
	if err != nil {
		return nil, transcript.Unknown(videoID, errors.Wrap(err, "fetch watch page"))
	}

	apiKey, err := extractAPIKey(page)
	if err != nil {
		return nil, transcript.Unknown(videoID, err)
	}

	player, err := c.player(ctx, apiKey, videoID)
	if err != nil {
		return nil, transcript.Unknown(videoID, errors.Wrap(err, "fetch player response"))
	}

	if status := player.PlayabilityStatus; status.Status != "OK" {
		reason := status.Reason
		if reason == "" {
			reason = status.Status
		}
		return nil, transcript.Unknown(videoID, errors.Errorf("video %s is unavailable: %s", videoID, reason))
	}

	tracks := player.captionTracks()
	if len(tracks) == 0 {
		logger.Debug("Video has no caption tracks")
		return nil, transcript.Disabled(videoID)
	}

	track, ok := selectTrack(tracks, c.languages)
	if !ok {
		return nil, transcript.NotFound(videoID, errors.Errorf(
			"no transcript found for video %s in languages %v (available: %v)",
			videoID, c.languages, trackLanguages(tracks),
		))
	}

	logger.WithFields(logrus.Fields{
		"language":  track.LanguageCode,
		"generated": track.isGenerated(),
	}).Debug("Selected caption track")

	body, err := c.get(ctx, strings.Replace(track.BaseURL, "&fmt=srv3", "", 1))
	if err != nil {
		return nil, transcript.Unknown(videoID, errors.Wrap(err, "fetch caption track"))
	}

	segments, err := parseTimedText(body)
	if err != nil {
		return nil, transcript.Unknown(videoID, err)
	}

	return &models.Transcript{
		VideoID:   videoID,
		Language:  track.LanguageCode,
		Segments:  segments,
		FetchedAt: time.Now().UTC(),
	}, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) player(ctx context.Context, apiKey, videoID string) (*playerResponse, error) {
	payload := playerRequest{VideoID: videoID}
	payload.Context.Client.ClientName = innertubeClientName
	payload.Context.Client.ClientVersion = innertubeClientVersion

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/youtubei/v1/player?key=" + url.QueryEscape(apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var resp playerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, "decode player response")
	}
	return &resp, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept-Language", "en-US")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, errTooManyRequests
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Path)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
}

type playerRequest struct {
	Context struct {
		Client struct {
			ClientName    string `json:"clientName"`
			ClientVersion string `json:"clientVersion"`
		} `json:"client"`
	} `json:"context"`
	VideoID string `json:"videoId"`
}

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	Captions *struct {
		Renderer *struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

func (p *playerResponse) captionTracks() []captionTrack {
	if p.Captions == nil || p.Captions.Renderer == nil {
		return nil
	}
	return p.Captions.Renderer.CaptionTracks
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

func (t captionTrack) isGenerated() bool {
	return t.Kind == "asr"
}

func selectTrack(tracks []captionTrack, languages []string) (captionTrack, bool) {
	for _, lang := range languages {
		for _, generated := range []bool{false, true} {
			for _, t := range tracks {
				if t.LanguageCode == lang && t.isGenerated() == generated {
					return t, true
				}
			}
		}
	}
	return captionTrack{}, false
}

func trackLanguages(tracks []captionTrack) []string {
	langs := make([]string, 0, len(tracks))
	for _, t := range tracks {
		langs = append(langs, t.LanguageCode)
	}
	return langs
}
