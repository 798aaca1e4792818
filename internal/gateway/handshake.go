package gateway

import (
	"context"
	"errors"
	"time"

	"trading-gateway/internal/gateway/bridge"
	"trading-gateway/internal/gateway/session"
	"trading-gateway/internal/logger"
)

var errHandshakeTimeout = errors.New("handshake step timed out")

// connectMarket runs the market-data handshake: front connect, then login.
func (c *Connection) connectMarket(ctx context.Context) error {
	c.mdHandshake.Lock()
	defer c.mdHandshake.Unlock()

	s := c.md
	s.DrainConnectedSignal()
	s.SetState(session.Connecting)

	if err := c.mdAPI.Connect(c.opts.MDAddress); err != nil {
		s.SetState(session.Disconnected)
		return &ConnectError{Session: s.Kind(), Step: StepConnect, Cause: err}
	}
	if err := c.awaitConnected(ctx, s); err != nil {
		s.SetState(session.Disconnected)
		return &ConnectError{Session: s.Kind(), Step: StepConnect, Cause: err}
	}
	s.SetState(session.Connected)

	cred := c.opts.Credentials
	requestID := s.NextRequestID()
	if code := c.mdAPI.Login(cred.BrokerID, cred.UserID, cred.Password, requestID); code != 0 {
		s.SetState(session.Disconnected)
		return &ConnectError{Session: s.Kind(), Step: StepLogin, Cause: &SubmitError{Op: "login", Code: code}}
	}
	if err := awaitResult(ctx, c.mdBridge.Login(), requestID, c.opts.LoginTimeout); err != nil {
		s.SetState(session.Disconnected)
		return &ConnectError{Session: s.Kind(), Step: StepLogin, Cause: err}
	}

	s.SetState(session.LoggedIn)
	s.SetState(session.Ready)
	logger.Session(ctx, string(s.Kind()), s.State().String())
	return nil
}

// connectTrader runs the trading handshake: front connect, terminal
// authentication when app credentials are configured, then login.
func (c *Connection) connectTrader(ctx context.Context) error {
	c.tdHandshake.Lock()
	defer c.tdHandshake.Unlock()

	s := c.td
	s.DrainConnectedSignal()
	s.SetState(session.Connecting)

	if err := c.tdAPI.Connect(c.opts.TDAddress); err != nil {
		s.SetState(session.Disconnected)
		return &ConnectError{Session: s.Kind(), Step: StepConnect, Cause: err}
	}
	if err := c.awaitConnected(ctx, s); err != nil {
		s.SetState(session.Disconnected)
		return &ConnectError{Session: s.Kind(), Step: StepConnect, Cause: err}
	}
	s.SetState(session.Connected)

	cred := c.opts.Credentials
	if cred.AppID != "" && cred.AuthCode != "" {
		s.SetState(session.Authenticating)
		requestID := s.NextRequestID()
		if code := c.tdAPI.Authenticate(cred.BrokerID, cred.UserID, cred.AppID, cred.AuthCode, requestID); code != 0 {
			s.SetState(session.Disconnected)
			return &ConnectError{Session: s.Kind(), Step: StepAuthenticate, Cause: &SubmitError{Op: "authenticate", Code: code}}
		}
		if err := awaitResult(ctx, c.tdBridge.Auth(), requestID, c.opts.LoginTimeout); err != nil {
			s.SetState(session.Disconnected)
			return &ConnectError{Session: s.Kind(), Step: StepAuthenticate, Cause: err}
		}
	}

	requestID := s.NextRequestID()
	if code := c.tdAPI.Login(cred.BrokerID, cred.UserID, cred.Password, requestID); code != 0 {
		s.SetState(session.Disconnected)
		return &ConnectError{Session: s.Kind(), Step: StepLogin, Cause: &SubmitError{Op: "login", Code: code}}
	}
	if err := awaitResult(ctx, c.tdBridge.Login(), requestID, c.opts.LoginTimeout); err != nil {
		s.SetState(session.Disconnected)
		return &ConnectError{Session: s.Kind(), Step: StepLogin, Cause: err}
	}

	s.SetState(session.LoggedIn)
	s.SetState(session.Ready)
	logger.Session(ctx, string(s.Kind()), s.State().String())
	return nil
}

// awaitConnected waits for the front-connected edge routed by watchConn.
func (c *Connection) awaitConnected(ctx context.Context, s *session.Session) error {
	timer := time.NewTimer(c.opts.ConnectTimeout)
	defer timer.Stop()

	select {
	case <-s.ConnectedSignal():
		return nil
	case <-timer.C:
		return errHandshakeTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// awaitResult waits for the acknowledgement matching requestID. Buffered
// acknowledgements from earlier, abandoned attempts are skipped by ID.
func awaitResult(ctx context.Context, ch <-chan bridge.ResultEvent, requestID int, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case ev := <-ch:
			if ev.RequestID != requestID {
				continue
			}
			return ev.Err
		case <-timer.C:
			return errHandshakeTimeout
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
