package bridge

import (
	"context"
	"errors"
	"sync"

	"trading-gateway/internal/gateway/sdk"
	"trading-gateway/internal/logger"
	"trading-gateway/internal/types"
)

const streamBufferSize = 256

var errNoAccountData = errors.New("account query returned no data")

// TraderBridge forwards trading callbacks onto typed channels. Multi-chunk
// position responses are accumulated here, keyed by request ID, so that two
// in-flight queries can never interleave their partial results.
type TraderBridge struct {
	conn      chan ConnEvent
	auth      chan ResultEvent
	login     chan ResultEvent
	orders    chan types.OrderUpdate
	trades    chan types.TradeFill
	accounts  chan AccountEvent
	positions chan PositionEvent

	mu      sync.Mutex
	partial map[int][]types.PositionRecord
}

var _ sdk.TraderHandler = (*TraderBridge)(nil)

func NewTraderBridge() *TraderBridge {
	return &TraderBridge{
		conn:      make(chan ConnEvent, controlBufferSize),
		auth:      make(chan ResultEvent, controlBufferSize),
		login:     make(chan ResultEvent, controlBufferSize),
		orders:    make(chan types.OrderUpdate, streamBufferSize),
		trades:    make(chan types.TradeFill, streamBufferSize),
		accounts:  make(chan AccountEvent, controlBufferSize),
		positions: make(chan PositionEvent, controlBufferSize),
		partial:   make(map[int][]types.PositionRecord),
	}
}

func (b *TraderBridge) Conn() <-chan ConnEvent         { return b.conn }
func (b *TraderBridge) Auth() <-chan ResultEvent       { return b.auth }
func (b *TraderBridge) Login() <-chan ResultEvent      { return b.login }
func (b *TraderBridge) Orders() <-chan types.OrderUpdate { return b.orders }
func (b *TraderBridge) Trades() <-chan types.TradeFill { return b.trades }
func (b *TraderBridge) Accounts() <-chan AccountEvent  { return b.accounts }
func (b *TraderBridge) Positions() <-chan PositionEvent { return b.positions }

func (b *TraderBridge) OnFrontConnected() {
	sendConn(b.conn, ConnEvent{Up: true}, "td connection")
}

func (b *TraderBridge) OnFrontDisconnected(reason int) {
	logger.Warn(context.Background(), "Trading front disconnected",
		"reason_code", reason,
		"reason", sdk.DisconnectReason(reason),
	)
	// Partial query accumulations can never complete on this connection.
	b.mu.Lock()
	b.partial = make(map[int][]types.PositionRecord)
	b.mu.Unlock()
	sendConn(b.conn, ConnEvent{Up: false, Reason: reason}, "td connection")
}

func (b *TraderBridge) OnAuthResponse(rsp *sdk.RspInfo, requestID int) {
	select {
	case b.auth <- ResultEvent{RequestID: requestID, Err: rsp.Err()}:
	default:
		logger.Warn(context.Background(), "Dropped auth event: channel full", "request_id", requestID)
	}
}

func (b *TraderBridge) OnLoginResponse(info *sdk.LoginInfo, rsp *sdk.RspInfo, requestID int) {
	if rsp.OK() && info != nil {
		logger.Info(context.Background(), "Trading login succeeded",
			"trading_day", info.TradingDay,
			"login_time", info.LoginTime,
			"max_order_ref", info.MaxOrderRef,
		)
	}
	select {
	case b.login <- ResultEvent{RequestID: requestID, Err: rsp.Err()}:
	default:
		logger.Warn(context.Background(), "Dropped td login event: channel full", "request_id", requestID)
	}
}

func (b *TraderBridge) OnOrderUpdate(update types.OrderUpdate) {
	select {
	case b.orders <- update:
	default:
		logger.Warn(context.Background(), "Dropped order update: channel full", "order_ref", update.OrderRef)
	}
}

func (b *TraderBridge) OnTradeUpdate(fill types.TradeFill) {
	select {
	case b.trades <- fill:
	default:
		logger.Warn(context.Background(), "Dropped trade fill: channel full", "trade_id", fill.TradeID)
	}
}

// OnAccountQueryResponse forwards only the terminal chunk; intermediate
// chunks carry no information the snapshot replacement needs.
func (b *TraderBridge) OnAccountQueryResponse(acct *types.AccountSnapshot, rsp *sdk.RspInfo, requestID int, isLast bool) {
	if !isLast {
		return
	}
	ev := AccountEvent{RequestID: requestID}
	switch {
	case !rsp.OK():
		ev.Err = rsp.Err()
	case acct == nil:
		ev.Err = errNoAccountData
	default:
		ev.Snapshot = *acct
	}
	select {
	case b.accounts <- ev:
	default:
		logger.Warn(context.Background(), "Dropped account result: channel full", "request_id", requestID)
	}
}

// OnPositionQueryResponse accumulates chunks per request ID and emits one
// PositionEvent on the terminal chunk. An errored terminal chunk discards the
// accumulation rather than emitting a partial result.
func (b *TraderBridge) OnPositionQueryResponse(pos *types.PositionRecord, rsp *sdk.RspInfo, requestID int, isLast bool) {
	b.mu.Lock()
	if pos != nil {
		b.partial[requestID] = append(b.partial[requestID], *pos)
	}
	if !isLast {
		b.mu.Unlock()
		return
	}
	records := b.partial[requestID]
	delete(b.partial, requestID)
	b.mu.Unlock()

	ev := PositionEvent{RequestID: requestID}
	if err := rsp.Err(); err != nil {
		ev.Err = err
	} else {
		ev.Positions = records
	}
	select {
	case b.positions <- ev:
	default:
		logger.Warn(context.Background(), "Dropped position result: channel full", "request_id", requestID)
	}
}

func (b *TraderBridge) OnError(rsp *sdk.RspInfo, requestID int) {
	if rsp == nil {
		return
	}
	logger.Error(context.Background(), "Trading front error",
		"error_id", rsp.ErrorID,
		"error_msg", rsp.ErrorMsg,
		"request_id", requestID,
	)
}

// DropPartial discards any accumulated chunks for an abandoned query.
func (b *TraderBridge) DropPartial(requestID int) {
	b.mu.Lock()
	delete(b.partial, requestID)
	b.mu.Unlock()
}
