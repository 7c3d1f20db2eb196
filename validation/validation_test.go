package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestVideoID(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		wantID string
		wantOK bool
	}{
		{
			name:   "short link",
			url:    "https://youtu.be/SA2iWivDJiE",
			wantID: "SA2iWivDJiE",
			wantOK: true,
		},
		{
			name:   "watch with extra params",
			url:    "https://www.youtube.com/watch?v=_oPAwA_Udwc&feature=feedu",
			wantID: "_oPAwA_Udwc",
			wantOK: true,
		},
		{
			name:   "embed",
			url:    "https://www.youtube.com/embed/SA2iWivDJiE",
			wantID: "SA2iWivDJiE",
			wantOK: true,
		},
		{
			name:   "v path with query",
			url:    "http://www.youtube.com/v/SA2iWivDJiE?version=3&amp;hl=en_US",
			wantID: "SA2iWivDJiE",
			wantOK: true,
		},
		{
			name:   "bare host watch",
			url:    "https://youtube.com/watch?v=dQw4w9WgXcQ",
			wantID: "dQw4w9WgXcQ",
			wantOK: true,
		},
		{
			name:   "repeated v keeps first",
			url:    "https://www.youtube.com/watch?v=first&v=second",
			wantID: "first",
			wantOK: true,
		},
		{
			name:   "blank v skipped",
			url:    "https://www.youtube.com/watch?v=&v=abc",
			wantID: "abc",
			wantOK: true,
		},
		{
			name:   "only blank v values",
			url:    "https://www.youtube.com/watch?v=&v=",
			wantOK: false,
		},
		{
			name:   "short link keeps percent-encoding",
			url:    "https://youtu.be/a%20b",
			wantID: "a%20b",
			wantOK: true,
		},
		{
			name:   "embed keeps percent-encoding",
			url:    "https://www.youtube.com/embed/a%2Fb",
			wantID: "a%2Fb",
			wantOK: true,
		},
		{
			name:   "upper case host",
			url:    "https://WWW.YouTube.com/embed/abc",
			wantID: "abc",
			wantOK: true,
		},
		{
			name:   "surrounding whitespace",
			url:    "  https://youtu.be/abc \n",
			wantID: "abc",
			wantOK: true,
		},
		{
			name:   "watch without v",
			url:    "https://www.youtube.com/watch?feature=feedu",
			wantOK: false,
		},
		{
			name:   "watch with empty v",
			url:    "https://www.youtube.com/watch?v=",
			wantOK: false,
		},
		{
			name:   "short link without id",
			url:    "https://youtu.be/",
			wantOK: false,
		},
		{
			name:   "unrecognized path",
			url:    "https://www.youtube.com/shorts/dQw4w9WgXcQ",
			wantOK: false,
		},
		{
			name:   "watch with trailing slash",
			url:    "https://www.youtube.com/watch/?v=abc",
			wantOK: false,
		},
		{
			name:   "mobile host",
			url:    "https://m.youtube.com/watch?v=abc",
			wantOK: false,
		},
		{
			name:   "other host",
			url:    "https://example.com/watch?v=abc",
			wantOK: false,
		},
		{
			name:   "lookalike host",
			url:    "https://youtube.com.example.com/watch?v=abc",
			wantOK: false,
		},
		{
			name:   "no scheme",
			url:    "youtu.be/abc",
			wantOK: false,
		},
		{
			name:   "malformed",
			url:    "http://[::1",
			wantOK: false,
		},
		{
			name:   "control characters",
			url:    "https://youtu.be/\x7f",
			wantOK: false,
		},
		{
			name:   "empty",
			url:    "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := VideoID(tt.url)
			if ok != tt.wantOK {
				t.Fatalf("VideoID(%q) ok = %v, want %v", tt.url, ok, tt.wantOK)
			}
			if id != tt.wantID {
				t.Errorf("VideoID(%q) = %q, want %q", tt.url, id, tt.wantID)
			}
		})
	}
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		contentType    string
		contentLength  int
		options        RequestValidationOpts
		wantErr        bool
		wantErrMessage string
	}{
		{
			name:    "GET request with default options",
			method:  "GET",
			options: RequestValidationOpts{},
			wantErr: false,
		},
		{
			name:          "POST request with valid Content-Type",
			method:        "POST",
			contentType:   "application/json",
			contentLength: 100,
			options: RequestValidationOpts{
				RequireJSON: true,
			},
			wantErr: false,
		},
		{
			name:          "PUT request with invalid Content-Type",
			method:        "PUT",
			contentType:   "text/plain",
			contentLength: 100,
			options: RequestValidationOpts{
				RequireJSON: true,
			},
			wantErr:        true,
			wantErrMessage: "application/json",
		},
		{
			name:          "POST request with excessive content length",
			method:        "POST",
			contentType:   "application/x-www-form-urlencoded",
			contentLength: 2 * 1024 * 1024,
			options: RequestValidationOpts{
				MaxContentLength: 1024 * 1024,
			},
			wantErr:        true,
			wantErrMessage: "body too large",
		},
		{
			name:           "Method not allowed",
			method:         "DELETE",
			options:        RequestValidationOpts{AllowedMethods: []string{"GET", "POST"}},
			wantErr:        true,
			wantErrMessage: "method",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			req.ContentLength = int64(tt.contentLength)

			err := ValidateRequest(req, tt.options)

			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequest() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if tt.wantErr && tt.wantErrMessage != "" {
				if !strings.Contains(strings.ToLower(err.Error()), strings.ToLower(tt.wantErrMessage)) {
					t.Errorf("ValidateRequest() error message = %v, wantErrMessage to contain %v",
						err.Error(), tt.wantErrMessage)
				}
			}
		})
	}
}

func TestValidateRequestMethodStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/", nil)
	err := ValidateRequest(req, RequestValidationOpts{AllowedMethods: []string{http.MethodGet}})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "PUT") {
		t.Errorf("expected method in message, got %q", err.Error())
	}
}
