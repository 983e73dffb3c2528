package auth

import (
	"context"
	"sync"
	"time"
)

// LimiterConfig bounds login attempts per client key.
type LimiterConfig struct {
	// Window is the fixed interval over which attempts are counted.
	Window time.Duration
	// Max is the number of attempts allowed within one window.
	Max int
}

// DefaultLimiterConfig allows 5 attempts per minute per client.
func DefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		Window: time.Minute,
		Max:    5,
	}
}

type attemptWindow struct {
	count int
	start time.Time
}

// LoginLimiter is an in-memory fixed-window attempt counter keyed by client
// identity (source address). It is process-local: a coarse defense, not a
// distributed limiter.
type LoginLimiter struct {
	cfg     LimiterConfig
	mu      sync.Mutex
	clients map[string]*attemptWindow
}

func NewLoginLimiter(cfg LimiterConfig) *LoginLimiter {
	if cfg.Window <= 0 || cfg.Max <= 0 {
		cfg = DefaultLimiterConfig()
	}
	return &LoginLimiter{
		cfg:     cfg,
		clients: make(map[string]*attemptWindow),
	}
}

// Allow records one attempt for key and reports whether it fits the window
// budget. Increment-and-check runs inside a single critical section so
// concurrent requests cannot both slip past the threshold. An expired window
// resets the counter.
func (l *LoginLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.clients[key]
	if !ok || now.Sub(w.start) >= l.cfg.Window {
		w = &attemptWindow{start: now}
		l.clients[key] = w
	}

	w.count++
	return w.count <= l.cfg.Max
}

// Window reports the configured window length.
func (l *LoginLimiter) Window() time.Duration {
	return l.cfg.Window
}

// Cleanup drops windows that have expired.
func (l *LoginLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key, w := range l.clients {
		if now.Sub(w.start) >= l.cfg.Window {
			delete(l.clients, key)
		}
	}
}

// StartCleanup sweeps expired windows in the background until ctx is done.
func (l *LoginLimiter) StartCleanup(ctx context.Context) {
	ticker := time.NewTicker(l.cfg.Window)
	go func() {
		for {
			select {
			case <-ticker.C:
				l.Cleanup()
			case <-ctx.Done():
				ticker.Stop()
				return
			}
		}
	}()
}
