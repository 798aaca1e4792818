package live

import (
	"encoding/json"

	"trading-gateway/internal/gateway/sdk"
	"trading-gateway/internal/types"
)

// Frame types specific to the trading connection.
const (
	frameAuth     = "auth"
	frameOrder    = "order"
	frameTrade    = "trade"
	frameAccount  = "account"
	framePosition = "position"
)

type authData struct {
	BrokerID string `json:"broker_id"`
	UserID   string `json:"user_id"`
	AppID    string `json:"app_id"`
	AuthCode string `json:"auth_code"`
}

type orderData struct {
	OrderRef string             `json:"order_ref"`
	Request  types.OrderRequest `json:"request"`
}

type queryData struct {
	Kind string `json:"kind"`
}

// Trader is the websocket trading binding.
type Trader struct {
	ws      wsClient
	handler sdk.TraderHandler
}

var _ sdk.TraderAPI = (*Trader)(nil)

func NewTrader() *Trader {
	return &Trader{}
}

func (t *Trader) RegisterHandler(h sdk.TraderHandler) { t.handler = h }

func (t *Trader) Connect(frontAddress string) error {
	if err := t.ws.dial(frontAddress, t.dispatch, t.dropped); err != nil {
		return err
	}
	t.handler.OnFrontConnected()
	return nil
}

func (t *Trader) dropped(error) {
	t.handler.OnFrontDisconnected(sdk.ReasonReadFailed)
}

func (t *Trader) dispatch(f frame) {
	switch f.Type {
	case frameAuth:
		t.handler.OnAuthResponse(rspOf(f.Error), f.RequestID)
	case frameLogin:
		var info sdk.LoginInfo
		if f.Data != nil {
			_ = json.Unmarshal(f.Data, &info)
		}
		t.handler.OnLoginResponse(&info, rspOf(f.Error), f.RequestID)
	case frameOrder:
		var update types.OrderUpdate
		if err := json.Unmarshal(f.Data, &update); err != nil {
			return
		}
		t.handler.OnOrderUpdate(update)
	case frameTrade:
		var fill types.TradeFill
		if err := json.Unmarshal(f.Data, &fill); err != nil {
			return
		}
		t.handler.OnTradeUpdate(fill)
	case frameAccount:
		var acct *types.AccountSnapshot
		if f.Data != nil {
			acct = new(types.AccountSnapshot)
			if err := json.Unmarshal(f.Data, acct); err != nil {
				acct = nil
			}
		}
		t.handler.OnAccountQueryResponse(acct, rspOf(f.Error), f.RequestID, f.IsLast)
	case framePosition:
		var pos *types.PositionRecord
		if f.Data != nil {
			pos = new(types.PositionRecord)
			if err := json.Unmarshal(f.Data, pos); err != nil {
				pos = nil
			}
		}
		t.handler.OnPositionQueryResponse(pos, rspOf(f.Error), f.RequestID, f.IsLast)
	case frameError:
		t.handler.OnError(rspOf(f.Error), f.RequestID)
	}
}

func (t *Trader) Authenticate(brokerID, userID, appID, authCode string, requestID int) int {
	return t.ws.send(frame{
		Type:      frameAuth,
		RequestID: requestID,
		Data:      marshalData(authData{BrokerID: brokerID, UserID: userID, AppID: appID, AuthCode: authCode}),
	})
}

func (t *Trader) Login(brokerID, userID, password string, requestID int) int {
	return t.ws.send(frame{
		Type:      frameLogin,
		RequestID: requestID,
		Data:      marshalData(loginData{BrokerID: brokerID, UserID: userID, Password: password}),
	})
}

func (t *Trader) SubmitOrder(req types.OrderRequest, orderRef string, requestID int) int {
	return t.ws.send(frame{
		Type:      frameOrder,
		RequestID: requestID,
		Data:      marshalData(orderData{OrderRef: orderRef, Request: req}),
	})
}

func (t *Trader) QueryAccount(requestID int) int {
	return t.ws.send(frame{
		Type:      frameAccount,
		RequestID: requestID,
		Data:      marshalData(queryData{Kind: "account"}),
	})
}

func (t *Trader) QueryPositions(requestID int) int {
	return t.ws.send(frame{
		Type:      framePosition,
		RequestID: requestID,
		Data:      marshalData(queryData{Kind: "position"}),
	})
}

func (t *Trader) Close() error {
	return t.ws.close()
}
