package eod

// fillLine matches the JSON entries written by the tradelog package.
type fillLine struct {
	Time         string  `json:"time"`
	InstrumentID string  `json:"instrument_id"`
	Side         string  `json:"side"`
	TradeID      string  `json:"trade_id"`
	OrderRef     string  `json:"order_ref"`
	Volume       int64   `json:"volume"`
	Price        float64 `json:"price"`
}

// aggRow accumulates per-instrument totals across the day's fills.
type aggRow struct {
	InstrumentID string
	BuyQty       int64
	BuyValue     float64
	SellQty      int64
	SellValue    float64
	RealizedPnL  float64
}
