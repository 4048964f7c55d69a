package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"NoticeWatcher/internal/domain"
	"NoticeWatcher/internal/ports"
)

// Options tune delivery behavior; zero values fall back to defaults the
// sink is known to tolerate.
type Options struct {
	MaxAttempts   int           // total attempts per item, default 5
	FallbackDelay time.Duration // backoff when Retry-After is absent or unparsable, default 2s
	Spacing       time.Duration // minimum gap between sends, default 500ms
	Timeout       time.Duration // per-request timeout, default 30s
	Footer        string
}

// Notifier posts one embed per item to a Discord-compatible webhook.
// The webhook URL is a secret: it is never logged and never appears in
// returned errors.
type Notifier struct {
	webhookURL    string
	client        *http.Client
	limiter       *rate.Limiter
	maxAttempts   int
	fallbackDelay time.Duration
	footer        string
	now           func() time.Time
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier wires the webhook endpoint with delivery tunables.
func NewNotifier(webhookURL string, opts Options) *Notifier {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.FallbackDelay <= 0 {
		opts.FallbackDelay = 2 * time.Second
	}
	if opts.Spacing <= 0 {
		opts.Spacing = 500 * time.Millisecond
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	return &Notifier{
		webhookURL:    webhookURL,
		client:        &http.Client{Timeout: opts.Timeout},
		limiter:       rate.NewLimiter(rate.Every(opts.Spacing), 1),
		maxAttempts:   opts.MaxAttempts,
		fallbackDelay: opts.FallbackDelay,
		footer:        opts.Footer,
		now:           time.Now,
	}
}

type embedFooter struct {
	Text string `json:"text"`
}

type embed struct {
	Title       string      `json:"title"`
	URL         string      `json:"url"`
	Timestamp   string      `json:"timestamp"`
	Description string      `json:"description,omitempty"`
	Footer      embedFooter `json:"footer"`
}

type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

// Deliver posts a single item. Rate-limit answers are retried after the
// sink-supplied delay up to the attempt bound; any other non-2xx answer
// or transport error fails immediately so the item stays eligible for
// the next run.
func (n *Notifier) Deliver(ctx context.Context, item domain.Item) error {
	if n.webhookURL == "" {
		return fmt.Errorf("webhook notifier misconfigured")
	}

	body, err := json.Marshal(n.buildPayload(item))
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	for attempt := 1; attempt <= n.maxAttempts; attempt++ {
		// The limiter paces consecutive sends so a burst of new items
		// does not hammer the sink.
		if err := n.limiter.Wait(ctx); err != nil {
			return err
		}

		status, retryAfter, err := n.post(ctx, body)
		if err != nil {
			return fmt.Errorf("post webhook: %w", err)
		}

		switch {
		case status == http.StatusTooManyRequests:
			if err := sleepFor(ctx, retryAfter); err != nil {
				return err
			}
		case status < 200 || status >= 300:
			return fmt.Errorf("webhook returned status %d", status)
		default:
			return nil
		}
	}

	return fmt.Errorf("webhook rate limited after %d attempts", n.maxAttempts)
}

func (n *Notifier) buildPayload(item domain.Item) webhookPayload {
	e := embed{
		Title:     fmt.Sprintf("[%s] %s", item.Section, item.Title),
		URL:       item.URL,
		Timestamp: n.now().UTC().Format(time.RFC3339),
		Footer:    embedFooter{Text: n.footer},
	}
	if item.DateHint != "" {
		e.Description = fmt.Sprintf("Detected on page: %s", item.DateHint)
	}
	return webhookPayload{Embeds: []embed{e}}
}

func (n *Notifier) post(ctx context.Context, body []byte) (int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		// url.Error echoes the webhook address; keep only the cause.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return 0, 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode, n.retryDelay(resp), nil
}

// retryDelay reads the Retry-After hint in seconds (fractions allowed),
// falling back to a fixed delay when the header is absent or malformed.
func (n *Notifier) retryDelay(resp *http.Response) time.Duration {
	raw := resp.Header.Get("Retry-After")
	if raw == "" {
		return n.fallbackDelay
	}

	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil || seconds < 0 {
		return n.fallbackDelay
	}
	return time.Duration(seconds * float64(time.Second))
}

func sleepFor(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
