package validation

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/nijaru/yt-transcript/errors"
)

const (
	hostShort = "youtu.be"
	hostBare  = "youtube.com"
	hostWWW   = "www.youtube.com"
)

// VideoID extracts the video identifier from a YouTube URL. The second
// return value is false when the URL cannot be parsed, points at another
// host, or has a path shape that carries no identifier.
//
// Recognized shapes:
//
//	https://youtu.be/<id>
//	https://www.youtube.com/watch?v=<id>
//	https://www.youtube.com/embed/<id>
//	https://www.youtube.com/v/<id>
func VideoID(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}

	// Identifiers taken from the path keep their percent-encoding.
	path := u.EscapedPath()

	var id string
	switch strings.ToLower(u.Hostname()) {
	case hostShort:
		id = strings.TrimPrefix(path, "/")
	case hostBare, hostWWW:
		switch {
		case path == "/watch":
			id = firstNonEmpty(u.Query()["v"])
		case strings.HasPrefix(path, "/embed/"), strings.HasPrefix(path, "/v/"):
			id = strings.Split(path, "/")[2]
		}
	}

	if id == "" {
		return "", false
	}
	return id, true
}

// firstNonEmpty skips blank query values, so v=&v=abc yields abc.
func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// RequestValidationOpts holds options for request validation
type RequestValidationOpts struct {
	MaxContentLength int64
	AllowedMethods   []string
	RequireJSON      bool
}

// ValidateRequest validates HTTP requests
func ValidateRequest(r *http.Request, opts RequestValidationOpts) error {
	const op = "validation.ValidateRequest"

	if len(opts.AllowedMethods) > 0 {
		methodAllowed := false
		for _, method := range opts.AllowedMethods {
			if r.Method == method {
				methodAllowed = true
				break
			}
		}
		if !methodAllowed {
			return errors.E(op, nil, fmt.Sprintf("Method %s not allowed", r.Method), http.StatusMethodNotAllowed)
		}
	}

	if opts.RequireJSON {
		if contentType := r.Header.Get("Content-Type"); !strings.Contains(contentType, "application/json") {
			return errors.InvalidInput(op, nil, "Content-Type must be application/json")
		}
	}

	if opts.MaxContentLength > 0 && r.ContentLength > opts.MaxContentLength {
		return errors.E(op, nil, "Request body too large", http.StatusRequestEntityTooLarge)
	}

	return nil
}
