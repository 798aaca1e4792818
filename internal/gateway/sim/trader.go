package sim

import (
	"fmt"
	"sync"

	"trading-gateway/internal/gateway/sdk"
	"trading-gateway/internal/types"
)

// Trader is a scripted trading binding. Orders fill immediately at the
// requested price; account and position state evolve with the fills so query
// responses stay consistent.
type Trader struct {
	core
	handler sdk.TraderHandler

	stateMu   sync.Mutex
	account   types.AccountSnapshot
	positions map[string]*types.PositionRecord
	orderSeq  int
}

var _ sdk.TraderAPI = (*Trader)(nil)

func NewTrader(script Script) *Trader {
	return &Trader{
		core: core{script: script},
		account: types.AccountSnapshot{
			AccountID:  "sim-000001",
			Available:  1_000_000,
			PreBalance: 1_000_000,
			Balance:    1_000_000,
		},
		positions: make(map[string]*types.PositionRecord),
	}
}

func (t *Trader) RegisterHandler(h sdk.TraderHandler) { t.handler = h }

func (t *Trader) Connect(frontAddress string) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return errClosed
	}
	t.mu.Unlock()

	if t.consumeConnectFailure() {
		return fmt.Errorf("sim: connect to %s refused", frontAddress)
	}
	t.mu.Lock()
	t.connected = true
	t.mu.Unlock()
	go t.handler.OnFrontConnected()
	return nil
}

func (t *Trader) Authenticate(brokerID, userID, appID, authCode string, requestID int) int {
	go func() {
		if t.consumeAuthFailure() {
			t.handler.OnAuthResponse(&sdk.RspInfo{ErrorID: 6, ErrorMsg: "authentication failed"}, requestID)
			return
		}
		t.handler.OnAuthResponse(nil, requestID)
	}()
	return 0
}

func (t *Trader) Login(brokerID, userID, password string, requestID int) int {
	t.mu.Lock()
	silent := t.script.SilentLogin
	t.mu.Unlock()
	if silent {
		return 0
	}
	go func() {
		if t.consumeLoginFailure() {
			t.handler.OnLoginResponse(nil, &sdk.RspInfo{ErrorID: 3, ErrorMsg: "invalid login"}, requestID)
			return
		}
		info := &sdk.LoginInfo{TradingDay: "20260830", LoginTime: "09:00:00", MaxOrderRef: "1"}
		t.handler.OnLoginResponse(info, nil, requestID)
	}()
	return 0
}

func (t *Trader) SubmitOrder(req types.OrderRequest, orderRef string, requestID int) int {
	go func() {
		t.stateMu.Lock()
		t.orderSeq++
		sysID := fmt.Sprintf("sim-%06d", t.orderSeq)
		t.applyFill(req)
		t.stateMu.Unlock()

		t.handler.OnOrderUpdate(types.OrderUpdate{
			OrderSysID:   sysID,
			OrderRef:     orderRef,
			InstrumentID: req.InstrumentID,
			Status:       types.OrderStatusQueued,
			StatusMsg:    "queued",
		})
		t.handler.OnTradeUpdate(types.TradeFill{
			TradeID:      sysID,
			OrderRef:     orderRef,
			InstrumentID: req.InstrumentID,
			Side:         req.Side,
			Price:        req.Price,
			Volume:       req.Volume,
		})
		t.handler.OnOrderUpdate(types.OrderUpdate{
			OrderSysID:   sysID,
			OrderRef:     orderRef,
			InstrumentID: req.InstrumentID,
			Status:       types.OrderStatusFilled,
			StatusMsg:    "all traded",
		})
	}()
	return 0
}

// applyFill mutates the scripted account and position books. Caller holds
// stateMu.
func (t *Trader) applyFill(req types.OrderRequest) {
	dir := types.PositionLong
	if req.Side == types.SideSell {
		dir = types.PositionShort
	}
	if req.Offset == types.OffsetOpen {
		key := req.InstrumentID + "/" + string(dir)
		pos, ok := t.positions[key]
		if !ok {
			pos = &types.PositionRecord{InstrumentID: req.InstrumentID, Direction: dir}
			t.positions[key] = pos
		}
		pos.Total += req.Volume
		pos.Today += req.Volume
		pos.Available += req.Volume
		pos.OpenCost += req.Price * float64(req.Volume)
		return
	}
	// Closing reduces the opposite side.
	closeDir := types.PositionShort
	if req.Side == types.SideSell {
		closeDir = types.PositionLong
	}
	key := req.InstrumentID + "/" + string(closeDir)
	if pos, ok := t.positions[key]; ok {
		pos.Total -= req.Volume
		pos.Available -= req.Volume
		if pos.Total <= 0 {
			delete(t.positions, key)
		}
	}
}

func (t *Trader) QueryAccount(requestID int) int {
	t.mu.Lock()
	reject := t.script.QueryRejectCode
	silent := t.script.SilentQueries
	t.mu.Unlock()
	if reject != 0 {
		return reject
	}
	if silent {
		return 0
	}
	go func() {
		t.stateMu.Lock()
		acct := t.account
		t.stateMu.Unlock()
		t.handler.OnAccountQueryResponse(&acct, nil, requestID, true)
	}()
	return 0
}

func (t *Trader) QueryPositions(requestID int) int {
	t.mu.Lock()
	reject := t.script.QueryRejectCode
	silent := t.script.SilentQueries
	t.mu.Unlock()
	if reject != 0 {
		return reject
	}
	if silent {
		return 0
	}
	go func() {
		t.stateMu.Lock()
		records := make([]types.PositionRecord, 0, len(t.positions))
		for _, pos := range t.positions {
			records = append(records, *pos)
		}
		t.stateMu.Unlock()

		if len(records) == 0 {
			t.handler.OnPositionQueryResponse(nil, nil, requestID, true)
			return
		}
		for i := range records {
			t.handler.OnPositionQueryResponse(&records[i], nil, requestID, i == len(records)-1)
		}
	}()
	return 0
}

func (t *Trader) Close() error {
	t.mu.Lock()
	t.closed = true
	t.connected = false
	t.mu.Unlock()
	return nil
}

// DropConnection simulates a front disconnect with the given reason code.
func (t *Trader) DropConnection(reason int) {
	t.mu.Lock()
	t.connected = false
	t.mu.Unlock()
	t.handler.OnFrontDisconnected(reason)
}
