package types

// MarketTick is the latest level-1 snapshot for one instrument, as pushed by
// the market-data front.
type MarketTick struct {
	InstrumentID string  `json:"instrument_id"`
	LastPrice    float64 `json:"last_price"`
	BidPrice     float64 `json:"bid_price"`
	BidVolume    int64   `json:"bid_volume"`
	AskPrice     float64 `json:"ask_price"`
	AskVolume    int64   `json:"ask_volume"`
	Volume       int64   `json:"volume"`
	OpenInterest int64   `json:"open_interest"`
	HighestPrice float64 `json:"highest_price"`
	LowestPrice  float64 `json:"lowest_price"`
	UpdateTime   string  `json:"update_time"`
}

// AccountSnapshot is the trading account as reported by the gateway. It is
// replaced wholesale on each completed account query.
type AccountSnapshot struct {
	AccountID      string  `json:"account_id"`
	Available      float64 `json:"available"`
	Margin         float64 `json:"margin"`
	FrozenMargin   float64 `json:"frozen_margin"`
	CloseProfit    float64 `json:"close_profit"`
	PositionProfit float64 `json:"position_profit"`
	Commission     float64 `json:"commission"`
	PreBalance     float64 `json:"pre_balance"`
	Balance        float64 `json:"balance"`
}

// Equity is balance plus unrealized position profit.
func (a AccountSnapshot) Equity() float64 {
	return a.Balance + a.PositionProfit
}

// RiskRatio is margin used over balance, 0 when the account is empty.
func (a AccountSnapshot) RiskRatio() float64 {
	if a.Balance > 0 {
		return a.Margin / a.Balance
	}
	return 0
}

type PositionDirection string

const (
	PositionLong  PositionDirection = "LONG"
	PositionShort PositionDirection = "SHORT"
)

// PositionRecord is one instrument's position on one side. Positions are
// queried in bulk and replace the whole position map per query cycle.
type PositionRecord struct {
	InstrumentID   string            `json:"instrument_id"`
	Direction      PositionDirection `json:"direction"`
	Total          int64             `json:"total"`
	Today          int64             `json:"today"`
	Available      int64             `json:"available"`
	OpenCost       float64           `json:"open_cost"`
	PositionProfit float64           `json:"position_profit"`
}

type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

type OffsetFlag string

const (
	OffsetOpen       OffsetFlag = "OPEN"
	OffsetClose      OffsetFlag = "CLOSE"
	OffsetCloseToday OffsetFlag = "CLOSE_TODAY"
)

type PriceType string

const (
	PriceLimit  PriceType = "LIMIT"
	PriceMarket PriceType = "MARKET"
)

type OrderRequest struct {
	InstrumentID string     `json:"instrument_id"`
	Side         OrderSide  `json:"side"`
	Offset       OffsetFlag `json:"offset"`
	Price        float64    `json:"price"`
	Volume       int64      `json:"volume"`
	PriceType    PriceType  `json:"price_type"`
}

type OrderStatus string

const (
	OrderStatusUnknown    OrderStatus = "UNKNOWN"
	OrderStatusQueued     OrderStatus = "QUEUED"
	OrderStatusPartFilled OrderStatus = "PART_FILLED"
	OrderStatusFilled     OrderStatus = "FILLED"
	OrderStatusCanceled   OrderStatus = "CANCELED"
	OrderStatusRejected   OrderStatus = "REJECTED"
)

// OrderAck is the provisional acknowledgment returned by PlaceOrder. The
// authoritative state arrives later through order-update events.
type OrderAck struct {
	OrderRef     string      `json:"order_ref"`
	ClientRef    string      `json:"client_ref"`
	InstrumentID string      `json:"instrument_id"`
	Status       OrderStatus `json:"status"`
	StatusMsg    string      `json:"status_msg"`
}

// OrderUpdate is an asynchronous order-state notification from the trading
// front.
type OrderUpdate struct {
	OrderSysID   string      `json:"order_sys_id"`
	OrderRef     string      `json:"order_ref"`
	InstrumentID string      `json:"instrument_id"`
	Status       OrderStatus `json:"status"`
	StatusMsg    string      `json:"status_msg"`
}

// TradeFill is an executed-trade notification.
type TradeFill struct {
	TradeID      string    `json:"trade_id"`
	OrderRef     string    `json:"order_ref"`
	InstrumentID string    `json:"instrument_id"`
	Side         OrderSide `json:"side"`
	Price        float64   `json:"price"`
	Volume       int64     `json:"volume"`
}

// ReconnectStatus reports one session's reconnect supervisor state.
type ReconnectStatus struct {
	InProgress bool `json:"in_progress"`
	Attempts   int  `json:"attempts"`
}
