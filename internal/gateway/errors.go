package gateway

import (
	"errors"
	"fmt"

	"trading-gateway/internal/gateway/session"
)

var (
	// ErrNotConnected is returned when an operation needs a Ready session.
	ErrNotConnected = errors.New("session not ready")

	// ErrQueryTimeout is returned when a query was submitted but no
	// terminal response arrived within the query timeout.
	ErrQueryTimeout = errors.New("query timed out")

	// ErrNotFound is returned by GetMarketData when no tick has been
	// cached for the instrument.
	ErrNotFound = errors.New("no market data for instrument")

	// ErrFatal is returned on every operation against a session whose
	// reconnect attempts are exhausted, until an operator reset.
	ErrFatal = errors.New("reconnect attempts exhausted")
)

// HandshakeStep names the step of the connect sequence that failed.
type HandshakeStep string

const (
	StepConnect      HandshakeStep = "connect"
	StepAuthenticate HandshakeStep = "authenticate"
	StepLogin        HandshakeStep = "login"
)

// ConnectError reports which session and handshake step failed. Partial
// progress is rolled back to Disconnected before it is returned.
type ConnectError struct {
	Session session.Kind
	Step    HandshakeStep
	Cause   error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("%s session: %s failed: %v", e.Session, e.Step, e.Cause)
}

func (e *ConnectError) Unwrap() error { return e.Cause }

// SubmitError reports a synchronous rejection: the SDK call itself returned a
// nonzero code before anything went on the wire.
type SubmitError struct {
	Op   string
	Code int
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("%s rejected by gateway, code %d", e.Op, e.Code)
}

// AsyncRejectError reports a rejection delivered through a later callback,
// correlated by request ID. Never retried automatically: retrying an order
// submission without caller confirmation risks duplicate execution.
type AsyncRejectError struct {
	RequestID int
	Reason    error
}

func (e *AsyncRejectError) Error() string {
	return fmt.Sprintf("request %d rejected: %v", e.RequestID, e.Reason)
}

func (e *AsyncRejectError) Unwrap() error { return e.Reason }
