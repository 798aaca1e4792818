package gateway

import (
	"context"
	"sync"
	"time"

	"trading-gateway/internal/gateway/session"
	"trading-gateway/internal/logger"
)

func (c *Connection) superviseBoth() {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.supervise(c.md, c.redialMarket)
	}()
	go func() {
		defer wg.Done()
		c.supervise(c.td, c.connectTrader)
	}()
	wg.Wait()
}

// supervise sleeps until the session signals a disconnect, then runs the
// bounded reconnect loop. A session that exhausts its attempts goes Failed
// and stays there until an operator Reset.
func (c *Connection) supervise(s *session.Session, redial func(context.Context) error) {
	for {
		select {
		case <-c.bgCtx.Done():
			return
		case <-s.Disconnects():
		}
		c.reconnectLoop(s, redial)
	}
}

func (c *Connection) reconnectLoop(s *session.Session, redial func(context.Context) error) {
	s.SetReconnecting(true)
	defer s.SetReconnecting(false)

	policy := c.opts.Reconnect
	for {
		// Stale wake-up from a queued signal the session already
		// recovered (or failed) past.
		if s.State() != session.Disconnected {
			return
		}
		if s.Attempts() >= policy.MaxAttempts {
			s.SetState(session.Failed)
			logger.Error(c.bgCtx, "Reconnect attempts exhausted",
				"session", string(s.Kind()),
				"attempts", policy.MaxAttempts,
			)
			logger.Session(c.bgCtx, string(s.Kind()), s.State().String())
			return
		}

		attempt := s.IncrementAttempts()
		delay := policy.Delay(attempt - 1)
		logger.Info(c.bgCtx, "Reconnecting",
			"session", string(s.Kind()),
			"attempt", attempt,
			"max_attempts", policy.MaxAttempts,
			"delay", delay.String(),
		)
		select {
		case <-c.bgCtx.Done():
			return
		case <-time.After(delay):
		}

		if err := redial(c.bgCtx); err != nil {
			logger.Warn(c.bgCtx, "Reconnect attempt failed",
				"session", string(s.Kind()),
				"attempt", attempt,
				"error", err,
			)
			continue
		}

		// A drop can land while the redial is still finishing, for
		// example during subscription replay. Swallow the queued
		// signal and re-check before declaring the session restored.
		select {
		case <-s.Disconnects():
		default:
		}
		if s.State() == session.Disconnected {
			logger.Warn(c.bgCtx, "Session dropped during recovery",
				"session", string(s.Kind()),
				"attempt", attempt,
			)
			continue
		}

		s.ResetAttempts()
		logger.Info(c.bgCtx, "Session restored", "session", string(s.Kind()), "attempt", attempt)
		return
	}
}

// redialMarket re-runs the market-data handshake and replays the recorded
// subscriptions so tick flow resumes without caller involvement.
func (c *Connection) redialMarket(ctx context.Context) error {
	if err := c.connectMarket(ctx); err != nil {
		return err
	}
	instruments := c.md.Subscribed()
	if len(instruments) == 0 {
		return nil
	}
	if code := c.mdAPI.Subscribe(instruments); code != 0 {
		logger.Warn(ctx, "Subscription replay rejected", "code", code, "count", len(instruments))
		return &SubmitError{Op: "subscribe replay", Code: code}
	}
	logger.Info(ctx, "Subscriptions replayed", "count", len(instruments))
	return nil
}
