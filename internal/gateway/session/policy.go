package session

import "time"

// ReconnectPolicy bounds the reconnect loop: exponential backoff between
// attempts, hard cap on both the delay and the number of attempts. Silent
// indefinite retry would mask systemic outages (wrong credentials, dead
// front) as transient ones, so the loop gives up after MaxAttempts.
type ReconnectPolicy struct {
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxAttempts int
}

// DefaultReconnectPolicy matches the gateway operators' guidance: 1s base,
// 60s ceiling, five attempts.
func DefaultReconnectPolicy() ReconnectPolicy {
	return ReconnectPolicy{
		BaseDelay:   time.Second,
		MaxDelay:    60 * time.Second,
		MaxAttempts: 5,
	}
}

// Delay returns min(2^attempt * base, max) for attempt >= 0.
func (p ReconnectPolicy) Delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}
