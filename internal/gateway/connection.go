// Package gateway maintains the two long-lived sessions against an exchange
// front: a market-data session and a trading session. Each session runs the
// connect/authenticate/login handshake independently, detects disconnects,
// reconnects with bounded backoff, and restores its subscriptions. The
// Connection facade is what the broker adapter layer consumes.
package gateway

import (
	"context"
	"sync"
	"time"

	"trading-gateway/internal/gateway/bridge"
	"trading-gateway/internal/gateway/sdk"
	"trading-gateway/internal/gateway/session"
	"trading-gateway/internal/logger"
	"trading-gateway/internal/types"
)

// Credentials identify the investor against both fronts.
type Credentials struct {
	BrokerID    string
	UserID      string
	Password    string
	AppID       string
	AuthCode    string
	ProductInfo string
}

// Options configures a Connection. Zero fields take defaults.
type Options struct {
	MDAddress string
	TDAddress string

	Credentials Credentials

	ConnectTimeout   time.Duration
	LoginTimeout     time.Duration
	QueryTimeout     time.Duration
	QueryMinInterval time.Duration

	Reconnect session.ReconnectPolicy
}

func (o *Options) withDefaults() {
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = 30 * time.Second
	}
	if o.LoginTimeout <= 0 {
		o.LoginTimeout = 10 * time.Second
	}
	if o.QueryTimeout <= 0 {
		o.QueryTimeout = 5 * time.Second
	}
	if o.QueryMinInterval <= 0 {
		o.QueryMinInterval = time.Second
	}
	if o.Reconnect.MaxAttempts <= 0 {
		o.Reconnect = session.DefaultReconnectPolicy()
	}
}

// Connection manages both sessions and their shared caches.
type Connection struct {
	opts Options

	mdAPI sdk.MarketDataAPI
	tdAPI sdk.TraderAPI

	mdBridge *bridge.MarketBridge
	tdBridge *bridge.TraderBridge

	md *session.Session
	td *session.Session

	// One handshake at a time per session: only the initial Connect or
	// the reconnect supervisor may drive it.
	mdHandshake sync.Mutex
	tdHandshake sync.Mutex

	queryGate *session.QueryGate

	// Caches, written only by the draining goroutines.
	tickMu sync.RWMutex
	ticks  map[string]types.MarketTick

	acctMu  sync.RWMutex
	account types.AccountSnapshot
	acctSet bool

	posMu     sync.RWMutex
	positions []types.PositionRecord

	// Pending query waiters keyed by request ID.
	pendingMu   sync.Mutex
	pendingAcct map[int]chan bridge.AccountEvent
	pendingPos  map[int]chan bridge.PositionEvent

	startOnce sync.Once
	bgCtx     context.Context
	bgCancel  context.CancelFunc
	wg        sync.WaitGroup
}

// New wires the bindings to fresh bridges and sessions. Nothing connects
// until Connect is called.
func New(mdAPI sdk.MarketDataAPI, tdAPI sdk.TraderAPI, opts Options) *Connection {
	opts.withDefaults()

	c := &Connection{
		opts:        opts,
		mdAPI:       mdAPI,
		tdAPI:       tdAPI,
		mdBridge:    bridge.NewMarketBridge(),
		tdBridge:    bridge.NewTraderBridge(),
		md:          session.New(session.MarketData),
		td:          session.New(session.Trading),
		queryGate:   session.NewQueryGate(opts.QueryMinInterval),
		ticks:       make(map[string]types.MarketTick),
		pendingAcct: make(map[int]chan bridge.AccountEvent),
		pendingPos:  make(map[int]chan bridge.PositionEvent),
	}
	c.bgCtx, c.bgCancel = context.WithCancel(context.Background())

	mdAPI.RegisterHandler(c.mdBridge)
	tdAPI.RegisterHandler(c.tdBridge)
	return c
}

// Connect drives both handshakes in sequence and starts the background
// machinery (event draining, reconnect supervision). A failed step rolls the
// session back to Disconnected and aborts the whole call.
func (c *Connection) Connect(ctx context.Context) error {
	c.start()

	logger.Info(ctx, "Connecting to gateway",
		"md_address", c.opts.MDAddress,
		"td_address", c.opts.TDAddress,
	)

	if err := c.connectMarket(ctx); err != nil {
		return err
	}
	if err := c.connectTrader(ctx); err != nil {
		return err
	}

	logger.Info(ctx, "Gateway connected", "md", c.md.State().String(), "td", c.td.State().String())
	return nil
}

// start launches the event watchers, draining tasks and reconnect
// supervisors exactly once.
func (c *Connection) start() {
	c.startOnce.Do(func() {
		c.wg.Add(5)
		go c.watchConn(c.md, c.mdBridge.Conn())
		go c.watchConn(c.td, c.tdBridge.Conn())
		go c.drainMarket()
		go c.drainTrader()
		go func() {
			defer c.wg.Done()
			c.superviseBoth()
		}()
	})
}

// Disconnect tears down both sessions. The Connection cannot be reused after.
func (c *Connection) Disconnect(ctx context.Context) error {
	logger.Info(ctx, "Disconnecting from gateway")
	c.bgCancel()
	if err := c.mdAPI.Close(); err != nil {
		logger.Warn(ctx, "Closing market-data binding failed", "error", err)
	}
	if err := c.tdAPI.Close(); err != nil {
		logger.Warn(ctx, "Closing trading binding failed", "error", err)
	}
	c.md.SetState(session.Disconnected)
	c.td.SetState(session.Disconnected)
	c.wg.Wait()
	return nil
}

// IsConnected reports whether both sessions are Ready.
func (c *Connection) IsConnected() bool {
	return c.md.IsReady() && c.td.IsReady()
}

// ReconnectStatus reports both supervisors' state.
func (c *Connection) ReconnectStatus() (md, td types.ReconnectStatus) {
	ms, ts := c.md.Snapshot(), c.td.Snapshot()
	return types.ReconnectStatus{InProgress: ms.Reconnecting, Attempts: ms.Attempts},
		types.ReconnectStatus{InProgress: ts.Reconnecting, Attempts: ts.Attempts}
}

// Reset clears the terminal Failed state on both sessions so an operator can
// attempt a fresh Connect.
func (c *Connection) Reset() {
	c.md.Reset()
	c.td.Reset()
}

func (c *Connection) marketGuard() error {
	if c.md.IsFailed() {
		return ErrFatal
	}
	if !c.md.IsReady() {
		return ErrNotConnected
	}
	return nil
}

func (c *Connection) tradingGuard() error {
	if c.td.IsFailed() {
		return ErrFatal
	}
	if !c.td.IsReady() {
		return ErrNotConnected
	}
	return nil
}
