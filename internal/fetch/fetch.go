// Package fetch acquires web page text for the extraction engine. It owns
// every network concern the engine explicitly does not: timeouts, retries,
// rate limiting, block detection, and HTML-to-text conversion.
package fetch

import (
	"context"
	"io"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cardsift/cardsift/internal/model"
)

const (
	defaultUserAgent = "Mozilla/5.0 (compatible; cardsift/1.0)"
	maxBodyBytes     = 2 * 1024 * 1024
)

// Options configures a Fetcher.
type Options struct {
	UserAgent      string
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	RequestsPerSec float64
}

// DefaultOptions returns fetch settings suitable for issuer product pages.
func DefaultOptions() Options {
	return Options{
		UserAgent:      defaultUserAgent,
		Timeout:        30 * time.Second,
		MaxRetries:     3,
		InitialBackoff: 500 * time.Millisecond,
		RequestsPerSec: 2,
	}
}

// Fetcher retrieves a URL and converts it into a web RawDocument.
type Fetcher struct {
	client  *http.Client
	opts    Options
	limiter *rate.Limiter
}

// New creates a Fetcher. Zero-valued options fall back to defaults.
func New(opts Options) *Fetcher {
	def := DefaultOptions()
	if opts.UserAgent == "" {
		opts.UserAgent = def.UserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = def.MaxRetries
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = def.InitialBackoff
	}
	if opts.RequestsPerSec <= 0 {
		opts.RequestsPerSec = def.RequestsPerSec
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSec), 1),
	}
}

// Fetch retrieves the URL and returns its plaintext as a web RawDocument.
// Transient failures (5xx, 429, network timeouts) are retried with capped
// exponential backoff and jitter; blocks and client errors are not.
func (f *Fetcher) Fetch(ctx context.Context, url string) (model.RawDocument, error) {
	var lastErr error
	for attempt := 0; attempt < f.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := f.backoff(attempt)
			zap.L().Debug("fetch: retrying",
				zap.String("url", url),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
			)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return model.RawDocument{}, eris.Wrap(ctx.Err(), "fetch: cancelled")
			case <-timer.C:
			}
		}

		doc, retryable, err := f.fetchOnce(ctx, url)
		if err == nil {
			return doc, nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			return model.RawDocument{}, err
		}
	}
	return model.RawDocument{}, lastErr
}

// fetchOnce performs one request. The second return reports whether the
// failure is worth retrying.
func (f *Fetcher) fetchOnce(ctx context.Context, url string) (model.RawDocument, bool, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return model.RawDocument{}, false, eris.Wrap(err, "fetch: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.RawDocument{}, false, eris.Wrap(err, "fetch: create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return model.RawDocument{}, true, eris.Wrapf(err, "fetch: get %s", url)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return model.RawDocument{}, true, eris.Wrap(err, "fetch: read body")
	}

	if blocked, blockType := DetectBlock(resp, body); blocked {
		return model.RawDocument{}, false, eris.Errorf("fetch: blocked (%s) at %s", blockType, url)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return model.RawDocument{}, true, eris.Errorf("fetch: status %d from %s", resp.StatusCode, url)
	}
	if resp.StatusCode >= 400 {
		return model.RawDocument{}, false, eris.Errorf("fetch: status %d from %s", resp.StatusCode, url)
	}

	text := HTMLToText(string(body))
	if text == "" {
		return model.RawDocument{}, false, eris.Errorf("fetch: empty page at %s", url)
	}

	zap.L().Info("fetch: page retrieved",
		zap.String("url", url),
		zap.String("title", PageTitle(string(body))),
		zap.Int("text_bytes", len(text)),
	)

	return model.RawDocument{Text: text, Kind: model.SourceWeb}, false, nil
}

// backoff computes the delay before the given retry attempt with ±25% jitter.
func (f *Fetcher) backoff(attempt int) time.Duration {
	d := float64(f.opts.InitialBackoff) * math.Pow(2, float64(attempt-1))
	jitter := 1 + (rand.Float64()-0.5)*0.5
	return time.Duration(d * jitter)
}
