package ollama

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"
)

const (
	defaultMaxRetries = 3
	defaultBackoffMs  = 500
)

// retryPolicy retries transport errors, 429 and 5xx responses with
// exponential backoff. A Retry-After header overrides the computed delay.
type retryPolicy struct {
	maxAttempts int
	baseBackoff time.Duration
}

func retryPolicyFromEnv() retryPolicy {
	return retryPolicy{
		maxAttempts: envInt("OLLAMA_MAX_RETRIES", defaultMaxRetries),
		baseBackoff: time.Duration(envInt("OLLAMA_RETRY_BACKOFF_MS", defaultBackoffMs)) * time.Millisecond,
	}
}

func envInt(key string, def int) int {
	if raw := os.Getenv(key); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}

// do sends the request built by newReq until it succeeds or attempts run
// out. newReq is called once per attempt so the body can be replayed.
func (p retryPolicy) do(ctx context.Context, client *http.Client, newReq func() (*http.Request, error)) (*http.Response, error) {
	attempts := p.maxAttempts
	if attempts <= 0 {
		attempts = defaultMaxRetries
	}
	backoff := p.baseBackoff
	if backoff <= 0 {
		backoff = time.Duration(defaultBackoffMs) * time.Millisecond
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("ollama: request canceled: %w", err)
		}
		req, err := newReq()
		if err != nil {
			return nil, err
		}

		// #nosec G107 -- URL built from the configured Ollama host
		resp, err := client.Do(req)
		wait, retry := shouldRetry(resp, err)
		if !retry {
			return resp, err
		}

		switch {
		case err != nil:
			lastErr = err
			log.Printf("WARN ollama: attempt %d/%d failed: %v", attempt, attempts, err)
		default:
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			log.Printf("WARN ollama: attempt %d/%d got status %d", attempt, attempts, resp.StatusCode)
			_ = resp.Body.Close()
		}
		if attempt == attempts {
			break
		}

		if wait <= 0 {
			wait = backoff << (attempt - 1)
		}
		if err := sleepWithContext(ctx, wait); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("ollama: request failed after %d attempts: %w", attempts, lastErr)
}

func shouldRetry(resp *http.Response, err error) (time.Duration, bool) {
	if err != nil {
		return 0, true
	}
	if resp == nil {
		return 0, false
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return parseRetryAfter(resp.Header.Get("Retry-After")), true
	}
	return 0, false
}

// parseRetryAfter accepts both the delay-seconds and HTTP-date forms.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(v); err == nil {
		if until := time.Until(when); until > 0 {
			return until
		}
	}
	return 0
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("ollama: request canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
