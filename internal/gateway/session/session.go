// Package session owns the per-session connection state machine: connection
// state, login flag, request-ID generation, the subscribed-instrument set and
// reconnect bookkeeping. All transitions go through the Session itself; other
// components observe it through Snapshot.
package session

import (
	"sync"
	"sync/atomic"
)

type Kind string

const (
	MarketData Kind = "market-data"
	Trading    Kind = "trading"
)

// State is the session's position in the handshake lifecycle.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
	Authenticating
	LoggedIn
	Ready
	// Failed is terminal: reconnect attempts are exhausted and every
	// subsequent operation must surface a fatal error until an operator
	// reset.
	Failed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "DISCONNECTED"
	case Connecting:
		return "CONNECTING"
	case Connected:
		return "CONNECTED"
	case Authenticating:
		return "AUTHENTICATING"
	case LoggedIn:
		return "LOGGED_IN"
	case Ready:
		return "READY"
	case Failed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Snapshot is a read-only copy of session state for observers.
type Snapshot struct {
	Kind         Kind
	State        State
	LoggedIn     bool
	Subscribed   int
	Attempts     int
	Reconnecting bool
}

type Session struct {
	kind  Kind
	reqID atomic.Int64

	mu           sync.Mutex
	state        State
	loggedIn     bool
	subscribed   map[string]struct{}
	subOrder     []string
	attempts     int
	reconnecting bool

	// connected carries front-connected edges to the handshake in
	// flight; disconnects wakes the reconnect supervisor. Both are
	// capacity 1 so signalling never blocks.
	connected   chan struct{}
	disconnects chan struct{}
}

func New(kind Kind) *Session {
	return &Session{
		kind:        kind,
		state:       Disconnected,
		subscribed:  make(map[string]struct{}),
		connected:   make(chan struct{}, 1),
		disconnects: make(chan struct{}, 1),
	}
}

func (s *Session) Kind() Kind { return s.kind }

// NextRequestID returns a request ID unique for the session's lifetime.
// IDs are strictly increasing across reconnects so stale responses can be
// discarded by ID mismatch.
func (s *Session) NextRequestID() int {
	return int(s.reqID.Add(1))
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetState performs a transition. Failed is terminal: once entered, only
// Reset leaves it.
func (s *Session) SetState(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Failed {
		return
	}
	s.state = st
	switch st {
	case Ready:
		s.loggedIn = true
	case Disconnected, Connecting, Connected, Failed:
		s.loggedIn = false
	}
}

func (s *Session) IsReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == Ready
}

func (s *Session) IsFailed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == Failed
}

// SignalConnected records a front-connected edge for a waiting handshake.
func (s *Session) SignalConnected() {
	select {
	case s.connected <- struct{}{}:
	default:
	}
}

// ConnectedSignal is waited on by the handshake after issuing Connect.
func (s *Session) ConnectedSignal() <-chan struct{} { return s.connected }

// DrainConnectedSignal discards a stale connected edge from a previous
// attempt. Called before each new Connect.
func (s *Session) DrainConnectedSignal() {
	select {
	case <-s.connected:
	default:
	}
}

// NotifyDisconnect transitions to Disconnected, clears the login flag, and
// enqueues a wake-up for the reconnect supervisor. The cap-1 channel
// deduplicates: a second disconnect while one is already pending is a no-op.
// The signal is enqueued even while a reconnect is in flight, so a drop that
// lands during recovery is never lost. Reports whether a new signal was
// enqueued.
func (s *Session) NotifyDisconnect() bool {
	s.mu.Lock()
	if s.state == Failed {
		s.mu.Unlock()
		return false
	}
	s.state = Disconnected
	s.loggedIn = false
	s.mu.Unlock()

	select {
	case s.disconnects <- struct{}{}:
		return true
	default:
		return false
	}
}

// Disconnects is consumed by the reconnect supervisor.
func (s *Session) Disconnects() <-chan struct{} { return s.disconnects }

// RecordSubscriptions merges instruments into the subscribed set. The set is
// append-only; disconnection never clears it, so the supervisor can replay it
// after a successful reconnect.
func (s *Session) RecordSubscriptions(instruments []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range instruments {
		if _, ok := s.subscribed[id]; ok {
			continue
		}
		s.subscribed[id] = struct{}{}
		s.subOrder = append(s.subOrder, id)
	}
}

// Subscribed returns the subscribed instruments in first-subscription order.
func (s *Session) Subscribed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.subOrder))
	copy(out, s.subOrder)
	return out
}

func (s *Session) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

func (s *Session) IncrementAttempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	return s.attempts
}

func (s *Session) ResetAttempts() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = 0
}

func (s *Session) SetReconnecting(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconnecting = v
}

func (s *Session) Reconnecting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconnecting
}

// Reset returns a Failed session to Disconnected with zeroed attempts.
// Operator-initiated; a no-op in any other state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Failed {
		return
	}
	s.state = Disconnected
	s.attempts = 0
	s.reconnecting = false
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Kind:         s.kind,
		State:        s.state,
		LoggedIn:     s.loggedIn,
		Subscribed:   len(s.subOrder),
		Attempts:     s.attempts,
		Reconnecting: s.reconnecting,
	}
}
