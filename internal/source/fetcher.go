package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/ppiankov/crules/internal/logging"
	"github.com/ppiankov/crules/internal/model"
)

const fetchMaxRetries = 3

// fetchSleepFunc waits between retries (injectable for tests)
var fetchSleepFunc = sleepContext

// ErrTooLarge is returned when a document exceeds the configured body limit
var ErrTooLarge = errors.New("document too large")

// sleepContext waits for d or until ctx is done, whichever comes first
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %s", e.Status)
}

// Retryable reports whether the request may succeed if repeated
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// FetchMeta contains HTTP metadata from fetching a document
type FetchMeta struct {
	StatusCode   int    `json:"status_code"`
	ContentType  string `json:"content_type,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
	ETag         string `json:"etag,omitempty"`
}

// FetchResult is a downloaded rules document
type FetchResult struct {
	Document
	Meta     FetchMeta
	FinalURL string
}

// Fetcher downloads rules documents over HTTP
type Fetcher struct {
	httpClient *http.Client
	robots     *RobotsChecker
	userAgent  string
	maxBytes   int64
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher from the HTTP section of the configuration.
// robots.txt is only consulted when cfg.RespectRobots is set.
func NewFetcher(cfg model.HTTPConfig, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = logging.Discard()
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy: NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return fmt.Errorf("stopped after 3 redirects")
			}
			return nil
		},
	}

	var robots *RobotsChecker
	if cfg.RespectRobots {
		robots = NewRobotsChecker(cfg.UserAgent, client)
	}

	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = model.DefaultConfig().HTTP.MaxBodyBytes
	}

	return &Fetcher{
		httpClient: client,
		robots:     robots,
		userAgent:  cfg.UserAgent,
		maxBytes:   maxBytes,
		logger:     logger,
	}
}

// FetchWithRetry fetches rawURL, retrying transient failures (429 and
// 5xx) with exponential backoff.
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	var lastErr error
	for attempt := 0; attempt < fetchMaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			f.logger.Debug("retrying fetch", "url", rawURL, "attempt", attempt+1, "backoff", backoff)
			if err := fetchSleepFunc(ctx, backoff); err != nil {
				return nil, err
			}
		}

		result, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err

		var statusErr *StatusError
		if !errors.As(err, &statusErr) || !statusErr.Retryable() {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

// Fetch retrieves a rules document and decodes it to UTF-8 using the
// charset declared by the server, falling back to content sniffing.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	if f.robots != nil {
		allowed, _, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrDisallowed)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/plain,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	meta := FetchMeta{
		StatusCode:   resp.StatusCode,
		ContentType:  resp.Header.Get("Content-Type"),
		LastModified: resp.Header.Get("Last-Modified"),
		ETag:         resp.Header.Get("ETag"),
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(raw)) > f.maxBytes {
		return nil, fmt.Errorf("%s: %w: exceeds %d bytes", rawURL, ErrTooLarge, f.maxBytes)
	}

	body, err := charset.NewReader(bytes.NewReader(raw), meta.ContentType)
	if err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	text, err := ReadAll(body)
	if err != nil {
		return nil, err
	}

	finalURL := resp.Request.URL.String()
	f.logger.Debug("fetched document", "url", finalURL, "status", resp.StatusCode, "bytes", len(text))

	return &FetchResult{
		Document: Document{Name: NameFromURL(finalURL), Text: text},
		Meta:     meta,
		FinalURL: finalURL,
	}, nil
}
