// internal/adapters/gezgi/client.go
package gezgi

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"gezgi_admin/internal/adapters/observability"
	"gezgi_admin/internal/domain"
)

// TokenHeader carries the session token on every API call.
const TokenHeader = "x-auth-token"

const service = "gezgi"

var _ domain.Gateway = (*Client)(nil)

// Client is the remote tour-operator API: list reads, mutations and login.
type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

func New(base string, rps int, timeout time.Duration) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("API base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: timeout},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- Public API ----

// Fetch GETs path and decodes the JSON body into out. Transient failures
// are retried; reads are idempotent.
func (c *Client) Fetch(ctx context.Context, token, path string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		// build a fresh request each attempt
		req, err := c.request(ctx, http.MethodGet, path, token, nil)
		if err != nil {
			return err
		}

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal(service, endpoint(path), 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal(service, endpoint(path), resp.StatusCode, time.Since(start))
		log.Debug().Str("path", path).Int("status", resp.StatusCode).Dur("dur", time.Since(start)).Msg("api fetch")

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if errors.Is(err, io.EOF) {
				return nil // empty body
			}
			return err

		case retryable(resp.StatusCode):
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			lastErr = apiError(resp)
			if wait == 0 {
				wait = backoff(i)
			}
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			return apiError(resp)
		}
	}

	return lastErr
}

// Send issues a mutation (POST, PUT or DELETE) with an optional JSON body
// and returns the server's confirmation text. Mutations are never retried.
func (c *Client) Send(ctx context.Context, token, method, path string, body any) (string, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rd = bytes.NewReader(b)
	}
	if err := c.rl.Wait(ctx); err != nil {
		return "", err
	}
	req, err := c.request(ctx, method, path, token, rd)
	if err != nil {
		return "", err
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal(service, endpoint(path), 0, time.Since(start))
		return "", err
	}
	observability.ObserveExternal(service, endpoint(path), resp.StatusCode, time.Since(start))
	log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Dur("dur", time.Since(start)).Msg("api send")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apiError(resp)
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
	return confirmation(b), nil
}

// Login exchanges credentials for a session token. The token is the
// response body. A 400 carries a plain-text reason.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	b, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return "", err
	}
	if err := c.rl.Wait(ctx); err != nil {
		return "", err
	}
	req, err := c.request(ctx, http.MethodPost, "/post/login", "", bytes.NewReader(b))
	if err != nil {
		return "", err
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal(service, "/post", 0, time.Since(start))
		return "", err
	}
	observability.ObserveExternal(service, "/post", resp.StatusCode, time.Since(start))
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return strings.Trim(strings.TrimSpace(string(body)), `"`), nil
	case resp.StatusCode == http.StatusBadRequest:
		return "", &domain.APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	default:
		return "", &domain.APIError{Status: resp.StatusCode, Message: message(body)}
	}
}

// ---- Internals ----

func (c *Client) request(ctx context.Context, method, path, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set(TokenHeader, token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "gezgi-admin/1.0")
	return req, nil
}

// apiError consumes resp and builds a domain.APIError from its JSON
// "message", falling back to the generic text.
func apiError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
	return &domain.APIError{Status: resp.StatusCode, Message: message(b)}
}

func message(b []byte) string {
	var m struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(b, &m); err != nil || strings.TrimSpace(m.Message) == "" {
		return domain.GenericFailure
	}
	return m.Message
}

// confirmation turns a success body into notification text: a JSON string,
// an object's "message", or the raw text.
func confirmation(b []byte) string {
	var s string
	if json.Unmarshal(b, &s) == nil {
		return s
	}
	var m struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(b, &m) == nil && m.Message != "" {
		return m.Message
	}
	t := strings.TrimSpace(string(b))
	if strings.HasPrefix(t, "{") || strings.HasPrefix(t, "[") {
		return ""
	}
	return t
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// endpoint is the metrics label for path: its first segment only, so ids
// and team codes never become label values.
func endpoint(path string) string {
	p := strings.TrimPrefix(path, "/")
	if i := strings.IndexAny(p, "/?"); i >= 0 {
		p = p[:i]
	}
	return "/" + p
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns 200ms, 400ms, 800ms... plus up to 50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
