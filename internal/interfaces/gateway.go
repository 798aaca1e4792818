package interfaces

import (
	"context"

	"trading-gateway/internal/types"
)

// Gateway is the session-managed surface of the exchange gateway consumed by
// the trading layers above it.
type Gateway interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	IsConnected() bool

	Subscribe(ctx context.Context, instruments []string) error
	GetMarketData(instrumentID string) (types.MarketTick, error)

	PlaceOrder(ctx context.Context, req types.OrderRequest) (types.OrderAck, error)
	QueryAccount(ctx context.Context) (types.AccountSnapshot, error)
	QueryPositions(ctx context.Context) ([]types.PositionRecord, error)

	ReconnectStatus() (md, td types.ReconnectStatus)
	Reset()
}
