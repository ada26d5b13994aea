package docgen

import (
	"context"
	"math/rand"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter is the shared, mutex-protected pacing primitive. Two monotonic
// floors drive throttling: the steady-state minimum interval (delegated to
// an x/time/rate.Limiter so normal pacing is idiomatic token-bucket waiting)
// and blockedUntil, an externally-pushed floor driven by response headers or
// 429s that the token bucket cannot express on its own.
type RateLimiter struct {
	cfg ThrottleConfig

	steady *rate.Limiter

	mu           sync.Mutex
	blockedUntil time.Time
}

// NewRateLimiter builds a limiter from a ThrottleConfig snapshot.
func NewRateLimiter(cfg ThrottleConfig) *RateLimiter {
	var steady *rate.Limiter
	if cfg.MinIntervalSeconds > 0 {
		steady = rate.NewLimiter(rate.Every(time.Duration(cfg.MinIntervalSeconds*float64(time.Second))), 1)
	}
	return &RateLimiter{cfg: cfg, steady: steady}
}

// Acquire blocks until both the steady-state interval and any header- or
// 429-driven floor have elapsed.
func (l *RateLimiter) Acquire(ctx context.Context) error {
	if !l.cfg.Enabled {
		return nil
	}

	for {
		l.mu.Lock()
		target := l.blockedUntil
		l.mu.Unlock()

		if wait := time.Until(target); wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			continue
		}

		if l.steady != nil {
			if err := l.steady.Wait(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

// ObserveSuccess inspects response headers from a successful call and, if
// the remaining-token budget is at or below the configured minimum, pushes
// blockedUntil out to the reported reset window plus jitter.
func (l *RateLimiter) ObserveSuccess(headers http.Header) {
	if !l.cfg.Enabled {
		return
	}

	remaining, ok := parseIntHeader(headers, "x-ratelimit-remaining-tokens")
	if !ok {
		return
	}
	resetSeconds, ok := parseDurationHeader(headers, "x-ratelimit-reset-tokens")
	if !ok {
		return
	}

	if remaining <= l.cfg.MinRemainingTokens {
		jitter := 0.2 + rand.Float64()*0.3
		l.pushBlockedUntil(time.Duration((resetSeconds + jitter) * float64(time.Second)))
	}
}

// ObserveRateLimited reacts to a 429 (or dedicated rate-limit error), taking
// the larger of retry-after and the reported reset window, defaulting to 3s
// if neither header is usable.
func (l *RateLimiter) ObserveRateLimited(headers http.Header) {
	if !l.cfg.Enabled {
		return
	}

	var wait float64
	if ra, ok := parseDurationHeader(headers, "retry-after"); ok && ra > wait {
		wait = ra
	}
	if reset, ok := parseDurationHeader(headers, "x-ratelimit-reset-tokens"); ok && reset > wait {
		wait = reset
	}
	if wait <= 0 {
		wait = 3.0
	}

	jitter := 0.3 + rand.Float64()*0.7
	l.pushBlockedUntil(time.Duration((wait + jitter) * float64(time.Second)))
}

func (l *RateLimiter) pushBlockedUntil(d time.Duration) {
	candidate := time.Now().Add(d)

	l.mu.Lock()
	defer l.mu.Unlock()
	if candidate.After(l.blockedUntil) {
		l.blockedUntil = candidate
	}
}

var durationPattern = regexp.MustCompile(`(?i)^(?:(\d+(?:\.\d+)?)h)?(?:(\d+(?:\.\d+)?)m)?(?:(\d+(?:\.\d+)?)s)?$`)

// parseDurationSeconds accepts the backend's small (h)?(m)?(s)? grammar with
// decimal components, falling back to a bare decimal interpreted as seconds.
func parseDurationSeconds(value string) (float64, bool) {
	v := strings.TrimSpace(strings.ToLower(value))
	if v == "" {
		return 0, false
	}

	m := durationPattern.FindStringSubmatch(v)
	if m == nil || (m[1] == "" && m[2] == "" && m[3] == "") {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, true
		}
		return 0, false
	}

	var total float64
	if m[1] != "" {
		h, _ := strconv.ParseFloat(m[1], 64)
		total += h * 3600
	}
	if m[2] != "" {
		mm, _ := strconv.ParseFloat(m[2], 64)
		total += mm * 60
	}
	if m[3] != "" {
		s, _ := strconv.ParseFloat(m[3], 64)
		total += s
	}
	if total <= 0 {
		return 0, false
	}
	return total, true
}

func parseDurationHeader(headers http.Header, key string) (float64, bool) {
	v := headers.Get(key)
	if v == "" {
		return 0, false
	}
	return parseDurationSeconds(v)
}

func parseIntHeader(headers http.Header, key string) (int, bool) {
	v := headers.Get(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}
