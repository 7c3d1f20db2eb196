package youtube

import (
	"bytes"
	"encoding/xml"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/nijaru/yt-transcript/models"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

var (
	apiKeyPattern = regexp.MustCompile(`"INNERTUBE_API_KEY":\s*"([a-zA-Z0-9_-]+)"`)
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
)

// extractAPIKey scans the inline scripts of a watch page for the innertube
// API key.
func extractAPIKey(page []byte) (string, error) {
	z := html.NewTokenizer(bytes.NewReader(page))
	inScript := false

	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return "", errors.New("could not find the innertube API key on the watch page")
			}
			return "", errors.Wrap(z.Err(), "parse watch page")

		case html.StartTagToken:
			tok := z.Token()
			inScript = tok.Data == "script"
			for _, a := range tok.Attr {
				if a.Key == "class" && strings.Contains(a.Val, "g-recaptcha") {
					return "", errTooManyRequests
				}
			}

		case html.EndTagToken:
			inScript = false

		case html.TextToken:
			if !inScript {
				continue
			}
			if m := apiKeyPattern.FindSubmatch(z.Text()); m != nil {
				return string(m[1]), nil
			}
		}
	}
}

type timedText struct {
	Texts []struct {
		Start string `xml:"start,attr"`
		Dur   string `xml:"dur,attr"`
		Body  string `xml:",chardata"`
	} `xml:"text"`
}

// parseTimedText decodes a timedtext transcript document. Text bodies are
// entity-unescaped and stripped of inline formatting tags; segments left
// without text are dropped.
func parseTimedText(body []byte) ([]models.Segment, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("caption track is empty")
	}

	var doc timedText
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, errors.Wrap(err, "decode caption track")
	}

	segments := make([]models.Segment, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		text := tagPattern.ReplaceAllString(html.UnescapeString(t.Body), "")
		if text == "" {
			continue
		}
		segments = append(segments, models.Segment{
			Text:     text,
			Start:    parseSeconds(t.Start),
			Duration: parseSeconds(t.Dur),
		})
	}
	return segments, nil
}

func parseSeconds(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
