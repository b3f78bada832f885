package store

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

const (
	retryMax       = 3
	retryBaseDelay = 500 * time.Millisecond
	retryMaxDelay  = 5 * time.Second
)

// withRetry runs fn, retrying transient throttling/network errors with
// exponential backoff and jitter. Reads against the artifact store are safe
// to retry; writes are attempted once by their callers.
func withRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= retryMax; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isTransient(lastErr) {
			return lastErr
		}
		if attempt < retryMax {
			select {
			case <-ctx.Done():
				return fmt.Errorf("retry cancelled: %w", ctx.Err())
			case <-time.After(backoff(attempt)):
			}
		}
	}
	return fmt.Errorf("max retries (%d) exceeded: %w", retryMax, lastErr)
}

func backoff(attempt int) time.Duration {
	d := float64(retryBaseDelay) * math.Pow(2, float64(attempt))
	if d > float64(retryMaxDelay) {
		d = float64(retryMaxDelay)
	}
	return time.Duration(rand.Float64() * d)
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"throttl",
		"rate exceed",
		"too many requests",
		"service unavailable",
		"internal server error",
		"connection reset",
		"i/o timeout",
		"tls handshake",
		"temporary failure",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
