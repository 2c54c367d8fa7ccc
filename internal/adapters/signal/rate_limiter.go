package signal

import (
	"github.com/dkeye/LiveSession/internal/config"
	"golang.org/x/time/rate"
)

// newLimiter returns the per-connection inbound limiter, or nil when disabled.
func newLimiter(cfg config.RelayConfig) *rate.Limiter {
	if cfg.RateLimit <= 0 {
		return nil
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
}

func allow(l *rate.Limiter) bool {
	return l == nil || l.Allow()
}
