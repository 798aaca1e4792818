package gateway

import (
	"trading-gateway/internal/gateway/bridge"
	"trading-gateway/internal/gateway/session"
	"trading-gateway/internal/logger"
	"trading-gateway/internal/tradelog"
	"trading-gateway/internal/types"
)

// watchConn is the sole consumer of a session's connection events. Up edges
// are routed to the handshake code, down edges wake the reconnect supervisor.
func (c *Connection) watchConn(s *session.Session, events <-chan bridge.ConnEvent) {
	defer c.wg.Done()
	for {
		select {
		case <-c.bgCtx.Done():
			return
		case ev := <-events:
			if ev.Up {
				s.SignalConnected()
				continue
			}
			logger.Warn(c.bgCtx, "Session disconnected",
				"session", string(s.Kind()),
				"reason", ev.Reason,
			)
			s.NotifyDisconnect()
		}
	}
}

// drainMarket consumes subscription acknowledgements and ticks. It is the
// only writer to the tick cache.
func (c *Connection) drainMarket() {
	defer c.wg.Done()
	for {
		select {
		case <-c.bgCtx.Done():
			return
		case ev := <-c.mdBridge.Subscriptions():
			if ev.Err != nil {
				logger.Warn(c.bgCtx, "Subscription rejected",
					"instrument", ev.InstrumentID,
					"error", ev.Err,
				)
				continue
			}
			logger.Debug(c.bgCtx, "Subscription confirmed", "instrument", ev.InstrumentID)
		case tick := <-c.mdBridge.Ticks():
			c.tickMu.Lock()
			c.ticks[tick.InstrumentID] = tick
			c.tickMu.Unlock()
		}
	}
}

// drainTrader consumes order and trade updates and resolves pending query
// waiters. Responses with no registered waiter belong to abandoned requests
// and never touch the caches.
func (c *Connection) drainTrader() {
	defer c.wg.Done()
	for {
		select {
		case <-c.bgCtx.Done():
			return
		case update := <-c.tdBridge.Orders():
			logger.Debug(c.bgCtx, "Order update",
				"order_ref", update.OrderRef,
				"instrument", update.InstrumentID,
				"status", string(update.Status),
			)
			if err := tradelog.AppendOrder(update); err != nil {
				logger.Warn(c.bgCtx, "Order journal write failed", "error", err)
			}
		case fill := <-c.tdBridge.Trades():
			logger.Trade(c.bgCtx, fill.InstrumentID, string(fill.Side), fill.Volume, fill.Price, fill.OrderRef,
				"trade_id", fill.TradeID)
			if err := tradelog.AppendFill(fill); err != nil {
				logger.Warn(c.bgCtx, "Fill journal write failed", "error", err)
			}
		case ev := <-c.tdBridge.Accounts():
			c.resolveAccount(ev)
		case ev := <-c.tdBridge.Positions():
			c.resolvePositions(ev)
		}
	}
}

func (c *Connection) resolveAccount(ev bridge.AccountEvent) {
	c.pendingMu.Lock()
	waiter, ok := c.pendingAcct[ev.RequestID]
	if ok {
		delete(c.pendingAcct, ev.RequestID)
	}
	c.pendingMu.Unlock()

	if !ok {
		logger.Debug(c.bgCtx, "Dropping stale account response", "request_id", ev.RequestID)
		return
	}
	if ev.Err == nil {
		c.acctMu.Lock()
		c.account = ev.Snapshot
		c.acctSet = true
		c.acctMu.Unlock()
	}
	waiter <- ev
}

func (c *Connection) resolvePositions(ev bridge.PositionEvent) {
	c.pendingMu.Lock()
	waiter, ok := c.pendingPos[ev.RequestID]
	if ok {
		delete(c.pendingPos, ev.RequestID)
	}
	c.pendingMu.Unlock()

	if !ok {
		logger.Debug(c.bgCtx, "Dropping stale position response", "request_id", ev.RequestID)
		return
	}
	if ev.Err == nil {
		c.posMu.Lock()
		c.positions = append([]types.PositionRecord(nil), ev.Positions...)
		c.posMu.Unlock()
	}
	waiter <- ev
}
