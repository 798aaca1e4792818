package bridge

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"trading-gateway/internal/gateway/sdk"
	"trading-gateway/internal/logger"
	"trading-gateway/internal/types"
)

func TestMain(m *testing.M) {
	_ = logger.InitWithConfig(logger.LogConfig{Level: "ERROR", Format: "text"})
	os.Exit(m.Run())
}

func TestTickOverflowDropsOldest(t *testing.T) {
	b := NewMarketBridge()

	total := tickBufferSize + 5
	for i := 0; i < total; i++ {
		b.OnMarketTick(types.MarketTick{
			InstrumentID: "rb2611",
			LastPrice:    float64(i),
		})
	}

	// The buffer holds the newest tickBufferSize ticks; the first read must
	// be one of the evicted range's successors.
	first := <-b.Ticks()
	if first.LastPrice < 5 {
		t.Errorf("Expected oldest ticks to be evicted, got price %v", first.LastPrice)
	}

	var last types.MarketTick
	drained := 1
	for {
		select {
		case last = <-b.Ticks():
			drained++
			continue
		default:
		}
		break
	}
	if drained != tickBufferSize {
		t.Errorf("Expected %d buffered ticks, got %d", tickBufferSize, drained)
	}
	if last.LastPrice != float64(total-1) {
		t.Errorf("Expected newest tick last, got price %v", last.LastPrice)
	}
}

func TestLoginEventCarriesRejection(t *testing.T) {
	b := NewMarketBridge()

	b.OnLoginResponse(nil, &sdk.RspInfo{ErrorID: 3, ErrorMsg: "invalid login"}, 7)

	ev := <-b.Login()
	if ev.RequestID != 7 {
		t.Errorf("Expected request ID 7, got %d", ev.RequestID)
	}
	if ev.Err == nil {
		t.Error("Expected a login error")
	}
}

func TestDisconnectEventCarriesReason(t *testing.T) {
	b := NewMarketBridge()

	b.OnFrontConnected()
	b.OnFrontDisconnected(sdk.ReasonHeartbeatTimeout)

	up := <-b.Conn()
	if !up.Up {
		t.Fatal("Expected up event first")
	}
	down := <-b.Conn()
	if down.Up || down.Reason != sdk.ReasonHeartbeatTimeout {
		t.Errorf("Expected down event with heartbeat reason, got %+v", down)
	}
}

func TestAccountForwardsOnlyTerminalChunk(t *testing.T) {
	b := NewTraderBridge()

	acct := &types.AccountSnapshot{AccountID: "a1", Balance: 100}
	b.OnAccountQueryResponse(acct, nil, 1, false)

	select {
	case ev := <-b.Accounts():
		t.Fatalf("Expected no event for an intermediate chunk, got %+v", ev)
	default:
	}

	b.OnAccountQueryResponse(acct, nil, 1, true)
	ev := <-b.Accounts()
	if ev.Err != nil {
		t.Fatalf("Unexpected error: %v", ev.Err)
	}
	if ev.Snapshot.Balance != 100 {
		t.Errorf("Expected balance 100, got %v", ev.Snapshot.Balance)
	}
}

func TestAccountNilDataIsError(t *testing.T) {
	b := NewTraderBridge()

	b.OnAccountQueryResponse(nil, nil, 2, true)
	ev := <-b.Accounts()
	if !errors.Is(ev.Err, errNoAccountData) {
		t.Errorf("Expected no-data error, got %v", ev.Err)
	}
}

func TestPositionChunksAccumulatePerRequest(t *testing.T) {
	b := NewTraderBridge()

	mk := func(id string) *types.PositionRecord {
		return &types.PositionRecord{InstrumentID: id, Direction: types.PositionLong, Total: 1}
	}

	// Interleave two requests; each must see only its own chunks.
	b.OnPositionQueryResponse(mk("rb2611"), nil, 1, false)
	b.OnPositionQueryResponse(mk("au2612"), nil, 2, false)
	b.OnPositionQueryResponse(mk("IF2609"), nil, 1, true)
	b.OnPositionQueryResponse(mk("sc2610"), nil, 2, true)

	first := <-b.Positions()
	second := <-b.Positions()

	if first.RequestID != 1 || len(first.Positions) != 2 {
		t.Fatalf("Expected request 1 with 2 records, got %+v", first)
	}
	if first.Positions[0].InstrumentID != "rb2611" || first.Positions[1].InstrumentID != "IF2609" {
		t.Errorf("Chunks out of order: %+v", first.Positions)
	}
	if second.RequestID != 2 || len(second.Positions) != 2 {
		t.Fatalf("Expected request 2 with 2 records, got %+v", second)
	}
}

func TestPositionEmptyResultIsLegal(t *testing.T) {
	b := NewTraderBridge()

	// A flat account answers with a single nil-record terminal chunk.
	b.OnPositionQueryResponse(nil, nil, 3, true)
	ev := <-b.Positions()
	if ev.Err != nil {
		t.Fatalf("Unexpected error: %v", ev.Err)
	}
	if len(ev.Positions) != 0 {
		t.Errorf("Expected empty positions, got %+v", ev.Positions)
	}
}

func TestPositionErroredTerminalDiscardsChunks(t *testing.T) {
	b := NewTraderBridge()

	b.OnPositionQueryResponse(&types.PositionRecord{InstrumentID: "rb2611"}, nil, 4, false)
	b.OnPositionQueryResponse(nil, &sdk.RspInfo{ErrorID: 91, ErrorMsg: "query failed"}, 4, true)

	ev := <-b.Positions()
	if ev.Err == nil {
		t.Fatal("Expected an error event")
	}
	if len(ev.Positions) != 0 {
		t.Errorf("Expected discarded chunks, got %+v", ev.Positions)
	}

	// A fresh query for the same ID must start clean.
	b.OnPositionQueryResponse(&types.PositionRecord{InstrumentID: "au2612"}, nil, 4, true)
	ev = <-b.Positions()
	if len(ev.Positions) != 1 || ev.Positions[0].InstrumentID != "au2612" {
		t.Errorf("Expected a single fresh record, got %+v", ev.Positions)
	}
}

func TestDropPartialClearsAbandonedQuery(t *testing.T) {
	b := NewTraderBridge()

	b.OnPositionQueryResponse(&types.PositionRecord{InstrumentID: "rb2611"}, nil, 5, false)
	b.DropPartial(5)
	b.OnPositionQueryResponse(&types.PositionRecord{InstrumentID: "au2612"}, nil, 5, true)

	ev := <-b.Positions()
	if len(ev.Positions) != 1 || ev.Positions[0].InstrumentID != "au2612" {
		t.Errorf("Expected only the post-drop chunk, got %+v", ev.Positions)
	}
}

func TestDisconnectClearsAllPartials(t *testing.T) {
	b := NewTraderBridge()

	for req := 10; req < 13; req++ {
		b.OnPositionQueryResponse(&types.PositionRecord{InstrumentID: fmt.Sprintf("c%d", req)}, nil, req, false)
	}
	b.OnFrontDisconnected(sdk.ReasonReadFailed)
	<-b.Conn()

	b.OnPositionQueryResponse(nil, nil, 10, true)
	ev := <-b.Positions()
	if len(ev.Positions) != 0 {
		t.Errorf("Expected pre-disconnect chunks discarded, got %+v", ev.Positions)
	}
}
