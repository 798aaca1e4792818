// Package sim is an in-process gateway binding with scripted behavior. It
// stands in for the vendor SDK in mock mode and in tests: connects complete
// immediately, logins are acknowledged from a dispatch goroutine, and test
// hooks inject disconnects and scripted failures.
package sim

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"trading-gateway/internal/gateway/sdk"
	"trading-gateway/internal/types"
)

var errClosed = errors.New("sim: binding closed")

// Script configures failure injection. The zero value means every call
// succeeds.
type Script struct {
	// ConnectFailures makes the first n Connect calls fail.
	ConnectFailures int
	// LoginFailures makes the first n login requests come back rejected.
	LoginFailures int
	// AuthFailures makes the first n authenticate requests come back
	// rejected.
	AuthFailures int
	// QueryRejectCode, when nonzero, is returned synchronously from
	// account and position queries.
	QueryRejectCode int
	// SubscribeDrops makes the first n Subscribe calls drop the
	// connection from inside the call instead of acknowledging.
	SubscribeDrops int
	// SilentLogin suppresses the login acknowledgement entirely so
	// timeout paths can be exercised.
	SilentLogin bool
	// SilentQueries suppresses query responses entirely.
	SilentQueries bool
}

type core struct {
	mu     sync.Mutex
	script Script
	closed bool
	// connected mirrors whether the fake front link is up.
	connected bool
}

// SetScript swaps the failure script, so tests can arm failures after a
// successful first connect.
func (c *core) SetScript(s Script) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.script = s
}

func (c *core) consumeConnectFailure() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.script.ConnectFailures > 0 {
		c.script.ConnectFailures--
		return true
	}
	return false
}

func (c *core) consumeLoginFailure() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.script.LoginFailures > 0 {
		c.script.LoginFailures--
		return true
	}
	return false
}

func (c *core) consumeSubscribeDrop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.script.SubscribeDrops > 0 {
		c.script.SubscribeDrops--
		return true
	}
	return false
}

func (c *core) consumeAuthFailure() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.script.AuthFailures > 0 {
		c.script.AuthFailures--
		return true
	}
	return false
}

// MarketData is a scripted market-data binding.
type MarketData struct {
	core
	handler sdk.MarketDataHandler

	tickMu     sync.Mutex
	tickStop   chan struct{}
	subscribed []string
}

var _ sdk.MarketDataAPI = (*MarketData)(nil)

func NewMarketData(script Script) *MarketData {
	return &MarketData{core: core{script: script}}
}

func (m *MarketData) RegisterHandler(h sdk.MarketDataHandler) { m.handler = h }

func (m *MarketData) Connect(frontAddress string) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return errClosed
	}
	m.mu.Unlock()

	if m.consumeConnectFailure() {
		return fmt.Errorf("sim: connect to %s refused", frontAddress)
	}
	m.mu.Lock()
	m.connected = true
	m.mu.Unlock()
	go m.handler.OnFrontConnected()
	return nil
}

func (m *MarketData) Login(brokerID, userID, password string, requestID int) int {
	m.mu.Lock()
	silent := m.script.SilentLogin
	m.mu.Unlock()
	if silent {
		return 0
	}
	go func() {
		if m.consumeLoginFailure() {
			m.handler.OnLoginResponse(nil, &sdk.RspInfo{ErrorID: 3, ErrorMsg: "invalid login"}, requestID)
			return
		}
		info := &sdk.LoginInfo{TradingDay: "20260830", LoginTime: "09:00:00"}
		m.handler.OnLoginResponse(info, nil, requestID)
	}()
	return 0
}

func (m *MarketData) Subscribe(instrumentIDs []string) int {
	m.tickMu.Lock()
	m.subscribed = append(m.subscribed, instrumentIDs...)
	m.tickMu.Unlock()
	if m.consumeSubscribeDrop() {
		m.DropConnection(sdk.ReasonReadFailed)
		return 0
	}
	go func() {
		for _, id := range instrumentIDs {
			m.handler.OnSubscribeResponse(id, nil)
		}
	}()
	return 0
}

func (m *MarketData) Close() error {
	m.mu.Lock()
	m.closed = true
	m.connected = false
	m.mu.Unlock()
	m.StopTicks()
	return nil
}

// SubscribedInstruments returns every instrument subscribed so far,
// replayed entries included.
func (m *MarketData) SubscribedInstruments() []string {
	m.tickMu.Lock()
	defer m.tickMu.Unlock()
	return append([]string(nil), m.subscribed...)
}

// DropConnection simulates a front disconnect with the given reason code.
func (m *MarketData) DropConnection(reason int) {
	m.mu.Lock()
	m.connected = false
	m.mu.Unlock()
	m.handler.OnFrontDisconnected(reason)
}

// PushTick delivers one tick through the handler, as the vendor thread would.
func (m *MarketData) PushTick(tick types.MarketTick) {
	m.handler.OnMarketTick(tick)
}

// StartTicks emits a deterministic tick sequence for the subscribed
// instruments until StopTicks or Close.
func (m *MarketData) StartTicks(interval time.Duration) {
	m.tickMu.Lock()
	defer m.tickMu.Unlock()
	if m.tickStop != nil {
		return
	}
	stop := make(chan struct{})
	m.tickStop = stop

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		seq := 0
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				m.tickMu.Lock()
				instruments := append([]string(nil), m.subscribed...)
				m.tickMu.Unlock()
				for i, id := range instruments {
					base := 3000.0 + float64(i)*500
					price := base + float64(seq%20)
					m.handler.OnMarketTick(types.MarketTick{
						InstrumentID: id,
						LastPrice:    price,
						BidPrice:     price - 1,
						BidVolume:    10,
						AskPrice:     price + 1,
						AskVolume:    10,
						Volume:       int64(seq + 1),
						UpdateTime:   time.Now().Format("15:04:05"),
					})
				}
				seq++
			}
		}
	}()
}

func (m *MarketData) StopTicks() {
	m.tickMu.Lock()
	defer m.tickMu.Unlock()
	if m.tickStop != nil {
		close(m.tickStop)
		m.tickStop = nil
	}
}
