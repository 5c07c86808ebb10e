package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter paces requests to each endpoint host. Re-reading every catalog
// table on each proposal would otherwise trip the spreadsheet host's abuse
// protection.
type Limiter struct {
	mu    sync.Mutex
	hosts map[string]*rate.Limiter
	rate  rate.Limit
	burst int
}

// NewLimiter paces every host at requestsPerSecond; zero or less disables it
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	l := &Limiter{
		hosts: make(map[string]*rate.Limiter),
		rate:  toLimit(requestsPerSecond),
		burst: burst,
	}
	if l.burst <= 0 {
		l.burst = 5
	}
	return l
}

func toLimit(rps float64) rate.Limit {
	if rps <= 0 {
		return rate.Inf
	}
	return rate.Limit(rps)
}

// SetHostRate overrides the pace for one host. A non-positive burst keeps the
// limiter's default.
func (l *Limiter) SetHostRate(host string, requestsPerSecond float64, burst int) {
	if burst <= 0 {
		burst = l.burst
	}
	l.mu.Lock()
	l.hosts[strings.ToLower(host)] = rate.NewLimiter(toLimit(requestsPerSecond), burst)
	l.mu.Unlock()
}

// Wait blocks until a request to rawURL may go out or ctx is done
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	lim, err := l.forURL(rawURL)
	if err != nil {
		return err
	}
	return lim.Wait(ctx)
}

// Allow reports whether a request to rawURL may go out now
func (l *Limiter) Allow(rawURL string) bool {
	lim, err := l.forURL(rawURL)
	return err == nil && lim.Allow()
}

func (l *Limiter) forURL(rawURL string) (*rate.Limiter, error) {
	host, err := hostOf(rawURL)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.hosts[host]
	if !ok {
		lim = rate.NewLimiter(l.rate, l.burst)
		l.hosts[host] = lim
	}
	return lim, nil
}

func hostOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	return strings.ToLower(u.Host), nil
}
