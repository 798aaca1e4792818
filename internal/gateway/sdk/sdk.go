// Package sdk defines the abstract contract of the vendor gateway binding.
//
// The real gateway API is callback-driven: imperative calls return a
// synchronous result code, actual results arrive later through the registered
// handler, invoked from the binding's own thread. Everything above this
// package treats the binding as an opaque collaborator.
package sdk

import (
	"fmt"

	"trading-gateway/internal/types"
)

// RspInfo is the response status attached to gateway callbacks. A nil RspInfo
// or a zero ErrorID means success.
type RspInfo struct {
	ErrorID  int
	ErrorMsg string
}

// OK reports whether the response carries no error.
func (r *RspInfo) OK() bool {
	return r == nil || r.ErrorID == 0
}

// Err converts the response status to an error, nil on success.
func (r *RspInfo) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("%s", FormatError(r.ErrorID, r.ErrorMsg))
}

// LoginInfo carries the session details reported on a successful login.
type LoginInfo struct {
	TradingDay  string
	LoginTime   string
	FrontID     int
	SessionID   int
	MaxOrderRef string
}

// Front disconnect reason codes as reported by the gateway.
const (
	ReasonReadFailed       = 0x1001
	ReasonWriteFailed      = 0x1002
	ReasonHeartbeatTimeout = 0x2001
	ReasonHeartbeatFailed  = 0x2002
	ReasonBadPacket        = 0x2003
)

// DisconnectReason renders a front disconnect reason code.
func DisconnectReason(code int) string {
	switch code {
	case ReasonReadFailed:
		return "network read failed"
	case ReasonWriteFailed:
		return "network write failed"
	case ReasonHeartbeatTimeout:
		return "heartbeat receive timeout"
	case ReasonHeartbeatFailed:
		return "heartbeat send failed"
	case ReasonBadPacket:
		return "malformed packet received"
	default:
		return "unknown"
	}
}

// MarketDataHandler receives callbacks from a market-data binding. All
// methods are invoked from the binding's dispatch thread and must not block.
type MarketDataHandler interface {
	OnFrontConnected()
	OnFrontDisconnected(reason int)
	OnLoginResponse(info *LoginInfo, rsp *RspInfo, requestID int)
	OnSubscribeResponse(instrumentID string, rsp *RspInfo)
	OnMarketTick(tick types.MarketTick)
	OnError(rsp *RspInfo, requestID int)
}

// TraderHandler receives callbacks from a trading binding. All methods are
// invoked from the binding's dispatch thread and must not block.
type TraderHandler interface {
	OnFrontConnected()
	OnFrontDisconnected(reason int)
	OnAuthResponse(rsp *RspInfo, requestID int)
	OnLoginResponse(info *LoginInfo, rsp *RspInfo, requestID int)
	OnOrderUpdate(update types.OrderUpdate)
	OnTradeUpdate(fill types.TradeFill)
	OnAccountQueryResponse(acct *types.AccountSnapshot, rsp *RspInfo, requestID int, isLast bool)
	OnPositionQueryResponse(pos *types.PositionRecord, rsp *RspInfo, requestID int, isLast bool)
	OnError(rsp *RspInfo, requestID int)
}

// MarketDataAPI is the imperative surface of a market-data binding.
// Non-Connect calls return the gateway result code: zero on accepted, nonzero
// on synchronous rejection.
type MarketDataAPI interface {
	RegisterHandler(h MarketDataHandler)
	Connect(frontAddress string) error
	Login(brokerID, userID, password string, requestID int) int
	Subscribe(instrumentIDs []string) int
	Close() error
}

// TraderAPI is the imperative surface of a trading binding.
type TraderAPI interface {
	RegisterHandler(h TraderHandler)
	Connect(frontAddress string) error
	Authenticate(brokerID, userID, appID, authCode string, requestID int) int
	Login(brokerID, userID, password string, requestID int) int
	SubmitOrder(req types.OrderRequest, orderRef string, requestID int) int
	QueryAccount(requestID int) int
	QueryPositions(requestID int) int
	Close() error
}
