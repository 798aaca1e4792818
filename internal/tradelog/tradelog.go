// Package tradelog journals order updates and fills to daily JSONL files,
// one file per calendar day in exchange time, with gzip retention.
package tradelog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"trading-gateway/internal/types"
)

var mu sync.Mutex

// Exchange local time for daily file rollover.
var exchangeTZ = time.FixedZone("CST", 8*3600)

type FillEntry struct {
	Time         string  `json:"time"`
	InstrumentID string  `json:"instrument_id"`
	Side         string  `json:"side"`
	TradeID      string  `json:"trade_id"`
	OrderRef     string  `json:"order_ref"`
	Volume       int64   `json:"volume"`
	Price        float64 `json:"price"`
}

type OrderEntry struct {
	Time         string `json:"time"`
	InstrumentID string `json:"instrument_id"`
	OrderRef     string `json:"order_ref"`
	OrderSysID   string `json:"order_sys_id"`
	Status       string `json:"status"`
	StatusMsg    string `json:"status_msg,omitempty"`
}

func logDir() string {
	if v := os.Getenv("GATEWAY_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func fillsFilepath(t time.Time) string {
	d := t.In(exchangeTZ).Format("2006-01-02")
	return filepath.Join(logDir(), d+".txt")
}

func ordersFilepath(t time.Time) string {
	d := t.In(exchangeTZ).Format("2006-01-02")
	return filepath.Join(logDir(), "orders", d+".txt")
}

// AppendFill records an executed trade.
func AppendFill(fill types.TradeFill) error {
	now := time.Now().In(exchangeTZ)
	e := FillEntry{
		Time:         now.Format("2006-01-02 15:04:05"),
		InstrumentID: fill.InstrumentID,
		Side:         string(fill.Side),
		TradeID:      fill.TradeID,
		OrderRef:     fill.OrderRef,
		Volume:       fill.Volume,
		Price:        fill.Price,
	}
	return appendJSON(fillsFilepath(now), e)
}

// AppendOrder records an order status change.
func AppendOrder(update types.OrderUpdate) error {
	now := time.Now().In(exchangeTZ)
	e := OrderEntry{
		Time:         now.Format("2006-01-02 15:04:05"),
		InstrumentID: update.InstrumentID,
		OrderRef:     update.OrderRef,
		OrderSysID:   update.OrderSysID,
		Status:       string(update.Status),
		StatusMsg:    update.StatusMsg,
	}
	return appendJSON(ordersFilepath(now), e)
}

func appendJSON(p string, v any) error {
	mu.Lock()
	defer mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, _ := json.Marshal(v)
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips journal files older than retentionDays.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	root := logDir()
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(p) != ".txt" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil {
			return nil
		}
		cutoff := time.Now().AddDate(0, 0, -retentionDays)
		if info.ModTime().Before(cutoff) {
			gz := p + ".gz"
			// if already gz exists, remove original .txt
			if _, e2 := os.Stat(gz); e2 == nil {
				_ = os.Remove(p)
				return nil
			}

			in, e3 := os.Open(p)
			if e3 != nil {
				return nil
			}
			defer in.Close()

			out, e4 := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
			if e4 != nil {
				return nil
			}
			gw := gzip.NewWriter(out)
			if _, e5 := io.Copy(gw, in); e5 == nil {
				_ = gw.Close()
				_ = out.Close()
				_ = os.Remove(p)
			} else {
				_ = gw.Close()
				_ = out.Close()
			}
		}
		return nil
	})
}
