// Package fetch performs the bounded outbound page and document fetches of
// a sweep.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"govjobs/harvester-service/internal/config"
)

// Kind is the coarse content type of a fetched resource.
type Kind string

const (
	KindHTML  Kind = "html"
	KindText  Kind = "text"
	KindPDF   Kind = "pdf"
	KindOther Kind = "other"
)

// Document is a fetched resource.
type Document struct {
	URL         string // final URL after redirects
	Kind        Kind
	ContentType string
	Body        []byte
	Truncated   bool
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Code)
}

// Fetcher is shared by every fetch of a sweep. The limiter spaces requests
// so a sweep never hammers a board's site.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	maxBytes  int64
	userAgent string
}

// New builds a Fetcher. A nil client means http.DefaultClient's transport
// with no client-level timeout; every call carries its own.
func New(cfg config.FetchConfig, client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 8 << 20
	}
	return &Fetcher{
		client:    client,
		limiter:   rate.NewLimiter(limit, 1),
		maxBytes:  maxBytes,
		userAgent: cfg.UserAgent,
	}
}

// Fetch GETs rawURL within timeout. The body is capped at the configured
// size; a capped body is returned with Truncated set.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, timeout time.Duration) (*Document, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf,text/plain;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: rawURL, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	truncated := int64(len(body)) > f.maxBytes
	if truncated {
		body = body[:f.maxBytes]
	}

	final := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	contentType := resp.Header.Get("Content-Type")

	return &Document{
		URL:         final,
		Kind:        DetectKind(contentType, final, body),
		ContentType: contentType,
		Body:        body,
		Truncated:   truncated,
	}, nil
}

// DetectKind decides the kind from the Content-Type header, then the URL
// extension, then the leading bytes.
func DetectKind(contentType, rawURL string, body []byte) Kind {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		switch {
		case mt == "application/pdf" || mt == "application/x-pdf":
			return KindPDF
		case mt == "text/html" || mt == "application/xhtml+xml":
			return KindHTML
		case mt == "text/plain":
			return KindText
		case mt == "application/octet-stream" || mt == "binary/octet-stream":
			// servers often mislabel documents; fall through to the URL
		default:
			if strings.HasPrefix(mt, "image/") || strings.HasPrefix(mt, "video/") || strings.HasPrefix(mt, "audio/") {
				return KindOther
			}
		}
	}

	u := rawURL
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	switch strings.ToLower(path.Ext(u)) {
	case ".pdf":
		return KindPDF
	case ".html", ".htm", ".php", ".asp", ".aspx", ".jsp":
		return KindHTML
	case ".txt":
		return KindText
	}

	trimmed := bytes.TrimLeft(body, " \t\r\n\ufeff")
	switch {
	case bytes.HasPrefix(trimmed, []byte("%PDF-")):
		return KindPDF
	case hasHTMLPrefix(trimmed):
		return KindHTML
	}
	return KindOther
}

func hasHTMLPrefix(b []byte) bool {
	if len(b) > 512 {
		b = b[:512]
	}
	lower := bytes.ToLower(b)
	return bytes.HasPrefix(lower, []byte("<!doctype html")) ||
		bytes.HasPrefix(lower, []byte("<html")) ||
		bytes.Contains(lower, []byte("<body"))
}

// Textual reports whether the kind carries extractable text.
func (k Kind) Textual() bool {
	return k == KindHTML || k == KindText || k == KindPDF
}
