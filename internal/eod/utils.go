package eod

import (
	"os"
	"path/filepath"
	"time"
)

func logDir() string {
	if v := os.Getenv("GATEWAY_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func exchangeNow() time.Time {
	return time.Now().In(time.FixedZone("CST", 8*3600))
}

func fillsFile(t time.Time) string {
	dateStr := t.Format("2006-01-02")
	return filepath.Join(logDir(), dateStr+".txt")
}

func eodCSVPath(t time.Time) string {
	dateStr := t.Format("2006-01-02")
	return filepath.Join(logDir(), "eod", dateStr+".csv")
}

// marketCloseTime is the day-session close of the Chinese futures markets.
func marketCloseTime(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 15, 5, 0, 0, t.Location())
}
