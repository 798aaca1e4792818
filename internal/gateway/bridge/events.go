// Package bridge adapts the SDK's callback interfaces onto typed channels.
// Handlers run on the vendor binding's dispatch thread, so they do nothing
// beyond decoding the event and attempting a non-blocking send; all stateful
// logic runs on the manager's side of the channels. Blocking here would stall
// the binding's dispatch loop.
package bridge

import "trading-gateway/internal/types"

// ConnEvent is a front connected/disconnected edge.
type ConnEvent struct {
	Up     bool
	Reason int
}

// ResultEvent is the outcome of a login or authenticate request.
type ResultEvent struct {
	RequestID int
	Err       error
}

// SubscribeEvent is a per-instrument subscription acknowledgment.
type SubscribeEvent struct {
	InstrumentID string
	Err          error
}

// AccountEvent is the terminal chunk of an account query.
type AccountEvent struct {
	RequestID int
	Snapshot  types.AccountSnapshot
	Err       error
}

// PositionEvent is the fully accumulated result of a position query.
type PositionEvent struct {
	RequestID int
	Positions []types.PositionRecord
	Err       error
}
