package live

import (
	"encoding/json"

	"trading-gateway/internal/gateway/sdk"
	"trading-gateway/internal/types"
)

// Frame types on the market-data connection.
const (
	frameLogin     = "login"
	frameSubscribe = "subscribe"
	frameTick      = "tick"
	frameError     = "error"
)

type loginData struct {
	BrokerID string `json:"broker_id"`
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

type subscribeData struct {
	Instruments []string `json:"instruments"`
}

type subscribeAck struct {
	InstrumentID string `json:"instrument_id"`
}

func rspOf(e *wireError) *sdk.RspInfo {
	if e == nil {
		return nil
	}
	return &sdk.RspInfo{ErrorID: e.Code, ErrorMsg: e.Msg}
}

// MarketData is the websocket market-data binding.
type MarketData struct {
	ws      wsClient
	handler sdk.MarketDataHandler
}

var _ sdk.MarketDataAPI = (*MarketData)(nil)

func NewMarketData() *MarketData {
	return &MarketData{}
}

func (m *MarketData) RegisterHandler(h sdk.MarketDataHandler) { m.handler = h }

func (m *MarketData) Connect(frontAddress string) error {
	if err := m.ws.dial(frontAddress, m.dispatch, m.dropped); err != nil {
		return err
	}
	m.handler.OnFrontConnected()
	return nil
}

func (m *MarketData) dropped(error) {
	m.handler.OnFrontDisconnected(sdk.ReasonReadFailed)
}

func (m *MarketData) dispatch(f frame) {
	switch f.Type {
	case frameLogin:
		var info sdk.LoginInfo
		if f.Data != nil {
			_ = json.Unmarshal(f.Data, &info)
		}
		m.handler.OnLoginResponse(&info, rspOf(f.Error), f.RequestID)
	case frameSubscribe:
		var ack subscribeAck
		if f.Data != nil {
			_ = json.Unmarshal(f.Data, &ack)
		}
		m.handler.OnSubscribeResponse(ack.InstrumentID, rspOf(f.Error))
	case frameTick:
		var tick types.MarketTick
		if err := json.Unmarshal(f.Data, &tick); err != nil {
			return
		}
		m.handler.OnMarketTick(tick)
	case frameError:
		m.handler.OnError(rspOf(f.Error), f.RequestID)
	}
}

func (m *MarketData) Login(brokerID, userID, password string, requestID int) int {
	return m.ws.send(frame{
		Type:      frameLogin,
		RequestID: requestID,
		Data:      marshalData(loginData{BrokerID: brokerID, UserID: userID, Password: password}),
	})
}

func (m *MarketData) Subscribe(instrumentIDs []string) int {
	return m.ws.send(frame{
		Type: frameSubscribe,
		Data: marshalData(subscribeData{Instruments: instrumentIDs}),
	})
}

func (m *MarketData) Close() error {
	return m.ws.close()
}
