// Package transfer performs authenticated streaming downloads from the
// registry: status classification, content-type gating, chunked writes
// with progress accounting, and filename resolution.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// ChunkSize is the streaming write granularity.
const ChunkSize = 16 << 20 // 16 MiB

const userAgent = "Mozilla/5.0 (compatible; civget)"

// ProgressFunc reports streaming progress. total is -1 when the
// response declared no Content-Length.
type ProgressFunc func(written, total int64)

// Target is one URL to fetch.
type Target struct {
	URL string
	// Auth controls whether the bearer token is attached.
	Auth bool
}

// Result describes a completed transfer.
type Result struct {
	Path           string
	Filename       string
	BytesWritten   int64
	DeclaredLength int64
	Elapsed        time.Duration
	Redirects      []string
}

// Downloader fetches targets into a destination directory.
// It is safe to use one Downloader per goroutine; a single transfer
// is always a single sequential writer.
type Downloader struct {
	destDir  string
	token    string
	httpc    *http.Client
	progress ProgressFunc
	logger   *slog.Logger
}

// NewDownloader creates a downloader writing into destDir.
func NewDownloader(destDir, token string, logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{
		destDir: destDir,
		token:   token,
		httpc:   &http.Client{},
		logger:  logger,
	}
}

// SetProgressFunc installs a progress callback for subsequent transfers.
func (d *Downloader) SetProgressFunc(fn ProgressFunc) {
	d.progress = fn
}

// Transfer fetches one target. Redirects are followed by the client;
// status and content type are validated on the final response before
// any byte is written. A failed transfer leaves any partial file in
// place for the caller to inspect or remove.
func (d *Downloader) Transfer(ctx context.Context, target Target) (*Result, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if target.Auth && d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}

	resp, err := d.httpc.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindUpstream, URL: target.URL, Err: err}
	}
	defer resp.Body.Close()

	redirects := redirectHistory(resp)
	for _, hop := range redirects {
		d.logger.Debug("redirected", "hop", hop)
	}

	if err := classifyStatus(resp.StatusCode, target.URL, redirects); err != nil {
		return nil, err
	}

	if ct := resp.Header.Get("Content-Type"); isHTML(ct) {
		return nil, &Error{
			Kind:        KindUnexpectedContentType,
			URL:         target.URL,
			ContentType: ct,
			Redirects:   redirects,
		}
	}

	filename := ResolveFilename(resp.Header, resp.Request.URL)
	if err := os.MkdirAll(d.destDir, 0755); err != nil {
		return nil, &Error{Kind: KindIO, URL: target.URL, Err: err}
	}

	destPath := filepath.Join(d.destDir, filename)
	out, err := os.Create(destPath)
	if err != nil {
		return nil, &Error{Kind: KindIO, URL: target.URL, Err: err}
	}

	// Content-Length feeds progress only; absence or mismatch is not an
	// error, the registry does not always send it accurately.
	total := resp.ContentLength

	written, err := d.stream(out, resp, total)
	if cerr := out.Close(); cerr != nil && err == nil {
		err = &Error{Kind: KindIO, URL: target.URL, Err: cerr}
	}
	if err != nil {
		d.logger.Debug("transfer failed", "url", target.URL, "written", written, "partial", destPath)
		return nil, err
	}

	d.logger.Debug("transfer complete",
		"path", destPath, "written", written, "declared", total,
		"elapsed", time.Since(start))

	return &Result{
		Path:           destPath,
		Filename:       filename,
		BytesWritten:   written,
		DeclaredLength: total,
		Elapsed:        time.Since(start),
		Redirects:      redirects,
	}, nil
}

// stream copies the body in fixed-size chunks, reporting progress
// after every write.
func (d *Downloader) stream(out *os.File, resp *http.Response, total int64) (int64, error) {
	buf := make([]byte, ChunkSize)
	var written int64
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return written, &Error{Kind: KindIO, URL: resp.Request.URL.String(), Err: werr}
			}
			written += int64(n)
			if d.progress != nil {
				d.progress(written, total)
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				return written, nil
			}
			return written, &Error{Kind: KindUpstream, URL: resp.Request.URL.String(), Err: rerr}
		}
	}
}

func classifyStatus(status int, url string, redirects []string) error {
	switch {
	case status == http.StatusBadRequest,
		status == http.StatusUnauthorized,
		status == http.StatusForbidden:
		return &Error{Kind: KindAccessDenied, Status: status, URL: url, Redirects: redirects}
	case status == http.StatusNotFound, status == http.StatusGone:
		return &Error{Kind: KindNotFound, Status: status, URL: url, Redirects: redirects}
	case status < 200 || status > 299:
		return &Error{Kind: KindUpstream, Status: status, URL: url, Redirects: redirects}
	default:
		return nil
	}
}

// isHTML reports whether a content type indicates an HTML error page
// (invalid token, expired link) where a binary payload was expected.
func isHTML(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(strings.ToLower(contentType), "text/html")
	}
	return mt == "text/html" || mt == "application/xhtml+xml"
}

// redirectHistory reconstructs the hop chain from the final response,
// oldest hop first.
func redirectHistory(resp *http.Response) []string {
	var hops []string
	for r := resp.Request.Response; r != nil; r = r.Request.Response {
		hops = append(hops, fmt.Sprintf("%d %s", r.StatusCode, r.Request.URL))
	}
	slices.Reverse(hops)
	return hops
}
