package tradelog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"trading-gateway/internal/types"
)

func TestAppendFillWritesDailyJournal(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GATEWAY_LOG_DIR", dir)

	fill := types.TradeFill{
		TradeID:      "t1",
		OrderRef:     "42",
		InstrumentID: "rb2611",
		Side:         types.SideBuy,
		Price:        3500.5,
		Volume:       3,
	}
	if err := AppendFill(fill); err != nil {
		t.Fatal(err)
	}

	day := time.Now().In(exchangeTZ).Format("2006-01-02")
	f, err := os.Open(filepath.Join(dir, day+".txt"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		t.Fatal("Expected one journal line")
	}
	var e FillEntry
	if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
		t.Fatal(err)
	}
	if e.InstrumentID != "rb2611" || e.Side != "BUY" || e.Volume != 3 || e.Price != 3500.5 {
		t.Errorf("Unexpected entry: %+v", e)
	}
	if e.Time == "" {
		t.Error("Expected a timestamp")
	}
}

func TestAppendOrderWritesOrdersJournal(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GATEWAY_LOG_DIR", dir)

	update := types.OrderUpdate{
		OrderSysID:   "sys1",
		OrderRef:     "42",
		InstrumentID: "rb2611",
		Status:       types.OrderStatusFilled,
	}
	if err := AppendOrder(update); err != nil {
		t.Fatal(err)
	}

	day := time.Now().In(exchangeTZ).Format("2006-01-02")
	if _, err := os.Stat(filepath.Join(dir, "orders", day+".txt")); err != nil {
		t.Errorf("Expected orders journal file: %v", err)
	}
}

func TestCompressOlderIgnoresFreshFiles(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GATEWAY_LOG_DIR", dir)

	if err := AppendFill(types.TradeFill{InstrumentID: "rb2611", Side: types.SideBuy, Volume: 1}); err != nil {
		t.Fatal(err)
	}
	if err := CompressOlder(7); err != nil {
		t.Fatal(err)
	}

	day := time.Now().In(exchangeTZ).Format("2006-01-02")
	if _, err := os.Stat(filepath.Join(dir, day+".txt")); err != nil {
		t.Errorf("Expected fresh journal untouched: %v", err)
	}
}
