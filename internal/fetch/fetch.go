package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/snarg/clipcast/internal/media"
	"github.com/snarg/clipcast/internal/metrics"
)

// Requirements validate a fetched payload before it reaches the caller.
// The zero value accepts anything.
type Requirements struct {
	Mime    string // expected media type of the Content-Type header ("" = any)
	MinSize int    // minimum payload length in bytes (0 = any)
}

// Result is a validated fetch payload.
type Result struct {
	Body []byte
	Mime string // media type the server declared
}

// ValidationError reports a payload that arrived but failed its requirements.
// It is terminal for the request; callers must not retry.
type ValidationError struct {
	URL    string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Reason)
}

// Fetcher retrieves upstream resources with a shared client, a fixed
// User-Agent, and an optional politeness limiter.
type Fetcher struct {
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
	log       zerolog.Logger
}

// NewFetcher creates a fetcher. rps caps outgoing requests per second across
// all calls on this fetcher; rps <= 0 disables the limiter.
func NewFetcher(userAgent string, timeout time.Duration, rps float64, log zerolog.Logger) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		log:       log,
	}
	if rps > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return f
}

// Fetch retrieves url and validates the payload against req. Transport and
// status failures come back as wrapped errors; a payload that violates req
// comes back as a *ValidationError. Either way the caller gets nothing to
// work with, so an error page can never masquerade as a result.
func (f *Fetcher) Fetch(ctx context.Context, url string, req Requirements) (*Result, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate wait: %w", err)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("User-Agent", f.userAgent)

	start := time.Now()
	resp, err := f.client.Do(httpReq)
	if err != nil {
		metrics.FetchesTotal.WithLabelValues("transport").Inc()
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.FetchesTotal.WithLabelValues("http_error").Inc()
		return nil, fmt.Errorf("got status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.FetchesTotal.WithLabelValues("transport").Inc()
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	metrics.FetchDuration.Observe(time.Since(start).Seconds())

	declared := resp.Header.Get("Content-Type")
	mt := declared
	if declared != "" {
		if parsed, _, err := mime.ParseMediaType(declared); err == nil {
			mt = parsed
		}
	}
	mt = normalizeMime(mt)

	if req.Mime != "" && mt != req.Mime {
		metrics.FetchesTotal.WithLabelValues("mime_mismatch").Inc()
		return nil, &ValidationError{URL: url, Reason: fmt.Sprintf("mime %q, want %q", mt, req.Mime)}
	}
	if len(body) < req.MinSize {
		metrics.FetchesTotal.WithLabelValues("undersized").Inc()
		return nil, &ValidationError{URL: url, Reason: fmt.Sprintf("%d bytes, want at least %d", len(body), req.MinSize)}
	}

	metrics.FetchesTotal.WithLabelValues("ok").Inc()
	f.log.Debug().Str("url", url).Int("bytes", len(body)).Str("mime", mt).
		Dur("elapsed", time.Since(start)).Msg("fetched")

	return &Result{Body: body, Mime: mt}, nil
}

// Download fetches url, validates it against req, and writes the payload to
// dst atomically. On any failure dst is left untouched.
func (f *Fetcher) Download(ctx context.Context, dst, url string, req Requirements) error {
	res, err := f.Fetch(ctx, url, req)
	if err != nil {
		return err
	}
	if err := media.WriteAtomic(dst, res.Body); err != nil {
		return fmt.Errorf("store %s: %w", url, err)
	}
	return nil
}

// Upstream servers label MPEG audio inconsistently.
func normalizeMime(mt string) string {
	switch mt {
	case "audio/mp3", "audio/x-mpeg", "audio/mpeg3":
		return "audio/mpeg"
	}
	return mt
}
