package gateway

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"trading-gateway/internal/gateway/bridge"
	"trading-gateway/internal/logger"
	"trading-gateway/internal/types"
)

// Subscribe registers instruments for tick flow. The set is recorded before
// the wire call so a reconnect replays it even if the front drops mid-call.
func (c *Connection) Subscribe(ctx context.Context, instruments []string) error {
	if len(instruments) == 0 {
		return nil
	}
	if err := c.marketGuard(); err != nil {
		return err
	}

	c.md.RecordSubscriptions(instruments)
	if code := c.mdAPI.Subscribe(instruments); code != 0 {
		return &SubmitError{Op: "subscribe", Code: code}
	}
	logger.Info(ctx, "Subscribed to market data", "count", len(instruments))
	return nil
}

// GetMarketData returns the latest cached tick for an instrument.
func (c *Connection) GetMarketData(instrumentID string) (types.MarketTick, error) {
	c.tickMu.RLock()
	tick, ok := c.ticks[instrumentID]
	c.tickMu.RUnlock()
	if !ok {
		return types.MarketTick{}, fmt.Errorf("market data for %s: %w", instrumentID, ErrNotFound)
	}
	return tick, nil
}

// PlaceOrder submits an order and returns a provisional acknowledgement.
// Definitive status arrives asynchronously through order updates; the ack
// only confirms the request left the process.
func (c *Connection) PlaceOrder(ctx context.Context, req types.OrderRequest) (types.OrderAck, error) {
	if err := c.tradingGuard(); err != nil {
		return types.OrderAck{}, err
	}

	requestID := c.td.NextRequestID()
	orderRef := strconv.Itoa(requestID)
	clientRef := uuid.NewString()

	logger.Trade(ctx, req.InstrumentID, string(req.Side), req.Volume, req.Price, orderRef,
		"client_ref", clientRef,
		"offset", string(req.Offset),
	)
	if code := c.tdAPI.SubmitOrder(req, orderRef, requestID); code != 0 {
		return types.OrderAck{}, &SubmitError{Op: "order submit", Code: code}
	}

	return types.OrderAck{
		OrderRef:     orderRef,
		ClientRef:    clientRef,
		InstrumentID: req.InstrumentID,
		Status:       types.OrderStatusUnknown,
		StatusMsg:    "order submitted",
	}, nil
}

// QueryAccount fetches a fresh account snapshot. Queries are paced through
// the shared gate so the front's flow control is never tripped.
func (c *Connection) QueryAccount(ctx context.Context) (types.AccountSnapshot, error) {
	if err := c.tradingGuard(); err != nil {
		return types.AccountSnapshot{}, err
	}
	if err := c.queryGate.Acquire(ctx); err != nil {
		return types.AccountSnapshot{}, err
	}

	requestID := c.td.NextRequestID()
	waiter := make(chan bridge.AccountEvent, 1)
	c.pendingMu.Lock()
	c.pendingAcct[requestID] = waiter
	c.pendingMu.Unlock()
	defer func() {
		c.pendingMu.Lock()
		delete(c.pendingAcct, requestID)
		c.pendingMu.Unlock()
	}()

	if code := c.tdAPI.QueryAccount(requestID); code != 0 {
		return types.AccountSnapshot{}, &SubmitError{Op: "account query", Code: code}
	}

	timer := time.NewTimer(c.opts.QueryTimeout)
	defer timer.Stop()
	select {
	case ev := <-waiter:
		if ev.Err != nil {
			return types.AccountSnapshot{}, &AsyncRejectError{RequestID: requestID, Reason: ev.Err}
		}
		return ev.Snapshot, nil
	case <-timer.C:
		return types.AccountSnapshot{}, fmt.Errorf("account query request %d: %w", requestID, ErrQueryTimeout)
	case <-ctx.Done():
		return types.AccountSnapshot{}, ctx.Err()
	}
}

// QueryPositions fetches the full position list. The bridge assembles the
// chunked response; a timed-out request has its partial chunks discarded so
// they never bleed into a later query.
func (c *Connection) QueryPositions(ctx context.Context) ([]types.PositionRecord, error) {
	if err := c.tradingGuard(); err != nil {
		return nil, err
	}
	if err := c.queryGate.Acquire(ctx); err != nil {
		return nil, err
	}

	requestID := c.td.NextRequestID()
	waiter := make(chan bridge.PositionEvent, 1)
	c.pendingMu.Lock()
	c.pendingPos[requestID] = waiter
	c.pendingMu.Unlock()
	defer func() {
		c.pendingMu.Lock()
		delete(c.pendingPos, requestID)
		c.pendingMu.Unlock()
	}()

	if code := c.tdAPI.QueryPositions(requestID); code != 0 {
		return nil, &SubmitError{Op: "position query", Code: code}
	}

	timer := time.NewTimer(c.opts.QueryTimeout)
	defer timer.Stop()
	select {
	case ev := <-waiter:
		if ev.Err != nil {
			return nil, &AsyncRejectError{RequestID: requestID, Reason: ev.Err}
		}
		return ev.Positions, nil
	case <-timer.C:
		c.tdBridge.DropPartial(requestID)
		return nil, fmt.Errorf("position query request %d: %w", requestID, ErrQueryTimeout)
	case <-ctx.Done():
		c.tdBridge.DropPartial(requestID)
		return nil, ctx.Err()
	}
}

// Account returns the last completed account snapshot, if any query has
// succeeded since startup.
func (c *Connection) Account() (types.AccountSnapshot, bool) {
	c.acctMu.RLock()
	defer c.acctMu.RUnlock()
	return c.account, c.acctSet
}

// Positions returns the last completed position list.
func (c *Connection) Positions() []types.PositionRecord {
	c.posMu.RLock()
	defer c.posMu.RUnlock()
	return append([]types.PositionRecord(nil), c.positions...)
}
