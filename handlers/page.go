package handlers

import (
	"bytes"
	"embed"
	stderrors "errors"
	"html/template"
	"net/http"

	"github.com/nijaru/yt-transcript/errors"
	"github.com/nijaru/yt-transcript/middleware"
	"github.com/nijaru/yt-transcript/validation"
	"github.com/sirupsen/logrus"
)

//go:embed templates/index.html
var templateFS embed.FS

const maxFormSize = 64 << 10

const (
	msgTooLarge    = "Request body too large"
	msgInvalidForm = "Invalid form data"
)

// pageData holds the variables of the index template.
type pageData struct {
	Error      string
	Transcript string
	YoutubeURL string
	VideoID    string
}

type pageRenderer struct {
	tmpl *template.Template
}

func newPageRenderer() *pageRenderer {
	return &pageRenderer{
		tmpl: template.Must(template.ParseFS(templateFS, "templates/index.html")),
	}
}

func (p *pageRenderer) render(w http.ResponseWriter, r *http.Request, code int, data pageData) {
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		middleware.GetLogger(r.Context()).WithError(err).Error("Failed to render page")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.page.render(w, r, http.StatusOK, pageData{})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	err := validation.ValidateRequest(r, validation.RequestValidationOpts{
		MaxContentLength: maxFormSize,
	})
	if err != nil {
		s.page.render(w, r, errors.StatusCode(err), pageData{Error: err.Error()})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)

	err = r.ParseMultipartForm(maxFormSize)
	if err != nil && !stderrors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.page.render(w, r, http.StatusRequestEntityTooLarge, pageData{Error: msgTooLarge})
			return
		}
		logger.WithError(err).Debug("Malformed form body")
		s.page.render(w, r, http.StatusBadRequest, pageData{Error: msgInvalidForm})
		return
	}

	rawURL := r.PostForm.Get("youtube_url")
	if rawURL == "" {
		s.page.render(w, r, http.StatusOK, pageData{Error: msgMissingURL + "."})
		return
	}

	videoID, ok := validation.VideoID(rawURL)
	if !ok {
		logger.WithField("url", rawURL).Debug("Unresolvable YouTube URL")
		s.page.render(w, r, http.StatusOK, pageData{Error: msgInvalidURL, YoutubeURL: rawURL})
		return
	}

	text, err := s.fetchText(r.Context(), videoID)
	if err != nil {
		_, message := describeFailure(err)
		logger.WithFields(logrus.Fields{
			"video_id": videoID,
			"error":    err,
		}).Info("Transcript request failed")
		s.page.render(w, r, http.StatusOK, pageData{Error: message, YoutubeURL: rawURL})
		return
	}

	s.page.render(w, r, http.StatusOK, pageData{
		Transcript: text,
		YoutubeURL: rawURL,
		VideoID:    videoID,
	})
}
