package gatewayobs

import (
	"context"
	"fmt"

	"trading-gateway/internal/interfaces"
	"trading-gateway/internal/logger"
	"trading-gateway/internal/trace"
	"trading-gateway/internal/types"
)

// observableGateway wraps a Gateway with observability (logging & tracing)
type observableGateway struct {
	gw interfaces.Gateway
}

// Compile-time interface check
var _ interfaces.Gateway = (*observableGateway)(nil)

// Wrap wraps a gateway with observability middleware
func Wrap(gw interfaces.Gateway) interfaces.Gateway {
	return &observableGateway{
		gw: gw,
	}
}

// Connect establishes both sessions with observability
func (og *observableGateway) Connect(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "gateway.Connect")
	defer span.End()

	logger.Info(ctx, "Connecting gateway sessions")

	if err := og.gw.Connect(ctx); err != nil {
		trace.RecordError(ctx, err)
		logger.ErrorWithErr(ctx, "Gateway connect failed", err)
		return fmt.Errorf("gateway connect failed: %w", err)
	}

	logger.Info(ctx, "Gateway sessions established")
	return nil
}

// Disconnect tears down both sessions with observability
func (og *observableGateway) Disconnect(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "gateway.Disconnect")
	defer span.End()

	logger.Info(ctx, "Disconnecting gateway sessions")
	if err := og.gw.Disconnect(ctx); err != nil {
		trace.RecordError(ctx, err)
		logger.ErrorWithErr(ctx, "Gateway disconnect failed", err)
		return err
	}
	logger.Info(ctx, "Gateway sessions closed")
	return nil
}

func (og *observableGateway) IsConnected() bool {
	return og.gw.IsConnected()
}

// Subscribe registers instruments with observability
func (og *observableGateway) Subscribe(ctx context.Context, instruments []string) error {
	ctx, span := trace.StartSpan(ctx, "gateway.Subscribe")
	defer span.End()

	logger.Debug(ctx, "Subscribing instruments", "instruments", instruments, "count", len(instruments))

	if err := og.gw.Subscribe(ctx, instruments); err != nil {
		trace.RecordError(ctx, err)
		logger.ErrorWithErr(ctx, "Subscription failed", err, "instruments", instruments)
		return err
	}

	logger.Debug(ctx, "Subscription accepted", "count", len(instruments))
	return nil
}

// GetMarketData reads the tick cache with observability
func (og *observableGateway) GetMarketData(instrumentID string) (types.MarketTick, error) {
	tick, err := og.gw.GetMarketData(instrumentID)
	if err != nil {
		return types.MarketTick{}, err
	}
	return tick, nil
}

// PlaceOrder submits an order with observability
func (og *observableGateway) PlaceOrder(ctx context.Context, req types.OrderRequest) (types.OrderAck, error) {
	ctx, span := trace.StartSpan(ctx, "gateway.PlaceOrder")
	defer span.End()

	logger.Info(ctx, "Placing order",
		"instrument", req.InstrumentID,
		"side", string(req.Side),
		"offset", string(req.Offset),
		"volume", req.Volume,
	)

	ack, err := og.gw.PlaceOrder(ctx, req)
	if err != nil {
		trace.RecordError(ctx, err)
		logger.ErrorWithErr(ctx, "Failed to place order", err,
			"instrument", req.InstrumentID,
			"side", string(req.Side),
			"volume", req.Volume,
		)
		return types.OrderAck{}, err
	}

	logger.Info(ctx, "Order accepted for submission",
		"instrument", ack.InstrumentID,
		"order_ref", ack.OrderRef,
		"client_ref", ack.ClientRef,
		"status", string(ack.Status),
	)
	return ack, nil
}

// QueryAccount fetches the account snapshot with observability
func (og *observableGateway) QueryAccount(ctx context.Context) (types.AccountSnapshot, error) {
	ctx, span := trace.StartSpan(ctx, "gateway.QueryAccount")
	defer span.End()

	logger.Debug(ctx, "Querying account")

	acct, err := og.gw.QueryAccount(ctx)
	if err != nil {
		trace.RecordError(ctx, err)
		logger.ErrorWithErr(ctx, "Account query failed", err)
		return types.AccountSnapshot{}, err
	}

	logger.Debug(ctx, "Account query completed",
		"balance", acct.Balance,
		"available", acct.Available,
		"risk_ratio", acct.RiskRatio(),
	)
	return acct, nil
}

// QueryPositions fetches the position list with observability
func (og *observableGateway) QueryPositions(ctx context.Context) ([]types.PositionRecord, error) {
	ctx, span := trace.StartSpan(ctx, "gateway.QueryPositions")
	defer span.End()

	logger.Debug(ctx, "Querying positions")

	positions, err := og.gw.QueryPositions(ctx)
	if err != nil {
		trace.RecordError(ctx, err)
		logger.ErrorWithErr(ctx, "Position query failed", err)
		return nil, err
	}

	logger.Debug(ctx, "Position query completed", "count", len(positions))
	return positions, nil
}

func (og *observableGateway) ReconnectStatus() (md, td types.ReconnectStatus) {
	return og.gw.ReconnectStatus()
}

func (og *observableGateway) Reset() {
	logger.Warn(context.Background(), "Operator reset requested")
	og.gw.Reset()
}
