package live

import (
	"sync"
	"testing"

	"trading-gateway/internal/gateway/sdk"
	"trading-gateway/internal/types"
)

type recordingMDHandler struct {
	mu     sync.Mutex
	logins []int
	subs   []string
	ticks  []types.MarketTick
	errs   []int
}

func (h *recordingMDHandler) OnFrontConnected()        {}
func (h *recordingMDHandler) OnFrontDisconnected(int)  {}
func (h *recordingMDHandler) OnLoginResponse(info *sdk.LoginInfo, rsp *sdk.RspInfo, requestID int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.logins = append(h.logins, requestID)
}
func (h *recordingMDHandler) OnSubscribeResponse(instrumentID string, rsp *sdk.RspInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs = append(h.subs, instrumentID)
}
func (h *recordingMDHandler) OnMarketTick(tick types.MarketTick) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ticks = append(h.ticks, tick)
}
func (h *recordingMDHandler) OnError(rsp *sdk.RspInfo, requestID int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs = append(h.errs, rsp.ErrorID)
}

func TestMarketDispatchRoutesFrames(t *testing.T) {
	h := &recordingMDHandler{}
	m := NewMarketData()
	m.RegisterHandler(h)

	m.dispatch(frame{Type: frameLogin, RequestID: 3})
	m.dispatch(frame{Type: frameSubscribe, Data: marshalData(subscribeAck{InstrumentID: "rb2611"})})
	m.dispatch(frame{Type: frameTick, Data: marshalData(types.MarketTick{InstrumentID: "rb2611", LastPrice: 3500})})
	m.dispatch(frame{Type: frameError, Error: &wireError{Code: 91, Msg: "query rate too high"}})
	m.dispatch(frame{Type: "unknown"})

	if len(h.logins) != 1 || h.logins[0] != 3 {
		t.Errorf("Expected login for request 3, got %v", h.logins)
	}
	if len(h.subs) != 1 || h.subs[0] != "rb2611" {
		t.Errorf("Expected subscription ack, got %v", h.subs)
	}
	if len(h.ticks) != 1 || h.ticks[0].LastPrice != 3500 {
		t.Errorf("Expected one tick, got %v", h.ticks)
	}
	if len(h.errs) != 1 || h.errs[0] != 91 {
		t.Errorf("Expected one error callback, got %v", h.errs)
	}
}

func TestMarketDispatchBadTickIgnored(t *testing.T) {
	h := &recordingMDHandler{}
	m := NewMarketData()
	m.RegisterHandler(h)

	m.dispatch(frame{Type: frameTick, Data: []byte(`{"last_price": "bogus"}`)})
	if len(h.ticks) != 0 {
		t.Errorf("Expected malformed tick dropped, got %v", h.ticks)
	}
}

func TestRspOf(t *testing.T) {
	if rspOf(nil) != nil {
		t.Error("Expected nil rsp for nil wire error")
	}
	rsp := rspOf(&wireError{Code: 51, Msg: "insufficient funds"})
	if rsp.OK() {
		t.Error("Expected error rsp")
	}
	if rsp.ErrorID != 51 {
		t.Errorf("Expected code 51, got %d", rsp.ErrorID)
	}
}

func TestSendWithoutDial(t *testing.T) {
	m := NewMarketData()
	if code := m.Login("9999", "100001", "pw", 1); code != codeSendFailed {
		t.Errorf("Expected send-failed code, got %d", code)
	}
}
