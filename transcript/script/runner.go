// Package script fetches transcripts by running the youtube_transcript_api
// command-line tool and decoding its JSON output.
package script

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/nijaru/yt-transcript/models"
	"github.com/nijaru/yt-transcript/transcript"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// waitDelay bounds how long a cancelled run may hold its output pipes open.
const waitDelay = 2 * time.Second

// Config holds the configuration for the Runner
type Config struct {
	Path        string   // Executable to run, youtube_transcript_api by default
	Languages   []string // Preferred languages, in order
	Environment []string // Additional environment variables
	Logger      logrus.FieldLogger
}

type Runner struct {
	config Config
	logger logrus.FieldLogger
}

var _ transcript.Provider = (*Runner)(nil)

func NewRunner(cfg Config) (*Runner, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Runner{config: cfg, logger: logger}, nil
}

func validateConfig(cfg Config) error {
	if cfg.Path == "" {
		return errors.New("transcript script path is required")
	}
	if _, err := exec.LookPath(cfg.Path); err != nil {
		return errors.Wrapf(err, "transcript script %s not found", cfg.Path)
	}
	return nil
}

// Fetch runs the tool for a single video.
func (r *Runner) Fetch(ctx context.Context, videoID string) (*models.Transcript, error) {
	logger := r.logger.WithField("video_id", videoID)

	cmd := exec.CommandContext(ctx, r.config.Path, buildCommandArgs(videoID, r.config.Languages)...)
	cmd.Env = buildEnvironment(r.config.Environment)
	cmd.WaitDelay = waitDelay

	logger.WithField("args", cmd.Args[1:]).Debug("Executing transcript script")

	start := time.Now()
	output, stderr, runErr := executeCommand(cmd)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, transcript.Unknown(videoID, errors.Wrap(ctxErr, "transcript script interrupted"))
	}

	segments, err := decodeOutput(output)
	if runErr != nil || err != nil {
		logger.WithFields(logrus.Fields{
			"exit_error": runErr,
			"stderr":     truncate(stderr, 512),
			"output":     truncate(string(output), 512),
		}).Warn("Transcript script failed")
		return nil, classifyFailure(videoID, runErr, err, string(output)+"\n"+stderr)
	}

	logger.WithFields(logrus.Fields{
		"segments": len(segments),
		"duration": time.Since(start),
	}).Debug("Transcript script finished")

	return &models.Transcript{
		VideoID:   videoID,
		Segments:  segments,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// buildCommandArgs escapes a leading hyphen in the identifier so the tool's
// argument parser does not read it as a flag; the tool strips the backslash.
func buildCommandArgs(videoID string, languages []string) []string {
	if strings.HasPrefix(videoID, "-") {
		videoID = `\` + videoID
	}
	args := []string{videoID}
	if len(languages) > 0 {
		args = append(args, "--languages")
		args = append(args, languages...)
	}
	return append(args, "--format", "json")
}

func buildEnvironment(additionalEnv []string) []string {
	env := append(os.Environ(), "PYTHONIOENCODING=utf-8")
	if len(additionalEnv) > 0 {
		env = append(env, additionalEnv...)
	}
	return env
}

func executeCommand(cmd *exec.Cmd) ([]byte, string, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.String(), err
}

// The tool reports failures as the text of the Python exception, on stdout
// or stderr depending on the version; the exception names and the first
// lines of their messages identify the failure kind.
var (
	disabledMarkers = []string{"TranscriptsDisabled", "Subtitles are disabled for this video"}
	notFoundMarkers = []string{"NoTranscriptFound", "No transcripts were found"}
)

func classifyFailure(videoID string, runErr, decodeErr error, diagnostics string) error {
	switch {
	case containsAny(diagnostics, disabledMarkers):
		return transcript.Disabled(videoID)
	case containsAny(diagnostics, notFoundMarkers):
		return transcript.NotFound(videoID, nil)
	}

	if runErr == nil {
		return transcript.Unknown(videoID, decodeErr)
	}
	if msg := strings.TrimSpace(diagnostics); msg != "" {
		return transcript.Unknown(videoID, fmt.Errorf("transcript script failed: %s", lastLine(msg)))
	}
	return transcript.Unknown(videoID, errors.Wrap(runErr, "transcript script failed"))
}

// decodeOutput accepts the tool's JSON format: one list of segments per
// requested video.
func decodeOutput(output []byte) ([]models.Segment, error) {
	if len(bytes.TrimSpace(output)) == 0 {
		return nil, errors.New("transcript script produced no output")
	}

	var result [][]models.Segment
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal script output")
	}
	if len(result) == 0 {
		return nil, errors.New("transcript script returned no transcripts")
	}
	return result[0], nil
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func lastLine(s string) string {
	lines := strings.Split(s, "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
