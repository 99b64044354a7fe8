// Package fetch provides the lightweight outbound HTTP probe used to judge whether a
// reference URL plausibly describes a training program.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 6 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; FormationFinder/1.0)"

// DefaultMaxBodyBytes bounds how much of a page is read. Title and meta tags live in
// the head, so the first chunk is enough.
const DefaultMaxBodyBytes = 256 << 10

// Result holds what a probe learned about a URL.
type Result struct {
	URL         string
	FinalURL    string
	StatusCode  int
	ContentType string
	Title       string
	Description string
	OGType      string
}

// IsHTML reports whether the response declared an HTML content type.
func (r *Result) IsHTML() bool {
	return mediaType(r.ContentType) == "text/html" || mediaType(r.ContentType) == "application/xhtml+xml"
}

// IsDocument reports whether the response is a raw document (PDF, office file) rather
// than a web page.
func (r *Result) IsDocument() bool {
	mt := mediaType(r.ContentType)
	switch {
	case mt == "application/pdf",
		mt == "application/msword",
		mt == "application/octet-stream",
		strings.HasPrefix(mt, "application/vnd.openxmlformats"),
		strings.HasPrefix(mt, "application/vnd.ms-"),
		strings.HasPrefix(mt, "application/vnd.oasis.opendocument"):
		return true
	}
	return false
}

// Error represents an error during URL fetching.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	Headers      map[string]string
	MaxBodyBytes int64
	Client       *http.Client
}

// DefaultOptions returns sensible defaults for probing.
func DefaultOptions() *Options {
	return &Options{
		Timeout:      DefaultTimeout,
		UserAgent:    DefaultUserAgent,
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

func (o *Options) withDefaults() *Options {
	out := DefaultOptions()
	if o == nil {
		return out
	}
	if o.Timeout > 0 {
		out.Timeout = o.Timeout
	}
	if o.UserAgent != "" {
		out.UserAgent = o.UserAgent
	}
	if o.MaxBodyBytes > 0 {
		out.MaxBodyBytes = o.MaxBodyBytes
	}
	out.Headers = o.Headers
	out.Client = o.Client
	return out
}

// URL probes urlStr: it issues a GET, records status and content type, and for HTML
// responses extracts the title, description and og:type. Documents are not read.
//
// A non-2xx status returns the partial result together with an *Error.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	opts = opts.withDefaults()

	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Host == "" || (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") {
		return nil, &Error{
			URL:     urlStr,
			Message: "invalid URL",
			Cause:   err,
		}
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to create request",
			Cause:   err,
		}
	}

	req.Header.Set("User-Agent", opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "HTTP request failed",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	result := &Result{
		URL:         urlStr,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return result, &Error{
			URL:     urlStr,
			Message: fmt.Sprintf("HTTP status %d", resp.StatusCode),
		}
	}

	if result.IsDocument() || !result.IsHTML() {
		return result, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, opts.MaxBodyBytes))
	if err != nil {
		return result, &Error{
			URL:     urlStr,
			Message: "failed to read response body",
			Cause:   err,
		}
	}

	if err := result.readHead(body); err != nil {
		return result, &Error{
			URL:     urlStr,
			Message: "failed to parse HTML",
			Cause:   err,
		}
	}

	return result, nil
}

func (r *Result) readHead(body []byte) error {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return err
	}

	r.Title = cleanWhitespace(doc.Find("title").First().Text())
	if r.Title == "" {
		r.Title = metaContent(doc, `meta[property="og:title"]`)
	}
	r.Description = metaContent(doc, `meta[name="description"]`)
	if r.Description == "" {
		r.Description = metaContent(doc, `meta[property="og:description"]`)
	}
	r.OGType = strings.ToLower(metaContent(doc, `meta[property="og:type"]`))
	return nil
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return cleanWhitespace(content)
}

func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	}
	return mt
}

// cleanWhitespace collapses runs of whitespace into single spaces.
func cleanWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
