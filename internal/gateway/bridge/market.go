package bridge

import (
	"context"

	"trading-gateway/internal/gateway/sdk"
	"trading-gateway/internal/logger"
	"trading-gateway/internal/types"
)

const (
	controlBufferSize = 8
	subBufferSize     = 64
	tickBufferSize    = 1024
)

// MarketBridge forwards market-data callbacks onto typed channels. The tick
// channel degrades under backpressure by dropping the oldest unread tick;
// control channels are best-effort with a logged warning on overflow.
type MarketBridge struct {
	conn  chan ConnEvent
	login chan ResultEvent
	subs  chan SubscribeEvent
	ticks chan types.MarketTick
}

var _ sdk.MarketDataHandler = (*MarketBridge)(nil)

func NewMarketBridge() *MarketBridge {
	return &MarketBridge{
		conn:  make(chan ConnEvent, controlBufferSize),
		login: make(chan ResultEvent, controlBufferSize),
		subs:  make(chan SubscribeEvent, subBufferSize),
		ticks: make(chan types.MarketTick, tickBufferSize),
	}
}

func (b *MarketBridge) Conn() <-chan ConnEvent             { return b.conn }
func (b *MarketBridge) Login() <-chan ResultEvent          { return b.login }
func (b *MarketBridge) Subscriptions() <-chan SubscribeEvent { return b.subs }
func (b *MarketBridge) Ticks() <-chan types.MarketTick     { return b.ticks }

func (b *MarketBridge) OnFrontConnected() {
	sendConn(b.conn, ConnEvent{Up: true}, "md connection")
}

func (b *MarketBridge) OnFrontDisconnected(reason int) {
	logger.Warn(context.Background(), "Market-data front disconnected",
		"reason_code", reason,
		"reason", sdk.DisconnectReason(reason),
	)
	sendConn(b.conn, ConnEvent{Up: false, Reason: reason}, "md connection")
}

func (b *MarketBridge) OnLoginResponse(info *sdk.LoginInfo, rsp *sdk.RspInfo, requestID int) {
	if rsp.OK() && info != nil {
		logger.Info(context.Background(), "Market-data login succeeded",
			"trading_day", info.TradingDay,
			"login_time", info.LoginTime,
		)
	}
	select {
	case b.login <- ResultEvent{RequestID: requestID, Err: rsp.Err()}:
	default:
		logger.Warn(context.Background(), "Dropped md login event: channel full", "request_id", requestID)
	}
}

func (b *MarketBridge) OnSubscribeResponse(instrumentID string, rsp *sdk.RspInfo) {
	select {
	case b.subs <- SubscribeEvent{InstrumentID: instrumentID, Err: rsp.Err()}:
	default:
		logger.Warn(context.Background(), "Dropped subscription ack: channel full", "instrument", instrumentID)
	}
}

// OnMarketTick enqueues the tick, evicting the oldest unread tick when the
// buffer is full. The cache is eventually consistent, never complete, so
// losing a stale tick is preferable to blocking the dispatch thread.
func (b *MarketBridge) OnMarketTick(tick types.MarketTick) {
	select {
	case b.ticks <- tick:
		return
	default:
	}
	select {
	case <-b.ticks:
	default:
	}
	select {
	case b.ticks <- tick:
	default:
	}
}

func (b *MarketBridge) OnError(rsp *sdk.RspInfo, requestID int) {
	if rsp == nil {
		return
	}
	logger.Error(context.Background(), "Market-data front error",
		"error_id", rsp.ErrorID,
		"error_msg", rsp.ErrorMsg,
		"request_id", requestID,
	)
}

func sendConn(ch chan ConnEvent, ev ConnEvent, label string) {
	select {
	case ch <- ev:
	default:
		logger.Warn(context.Background(), "Dropped connection event: channel full",
			"channel", label,
			"up", ev.Up,
		)
	}
}
