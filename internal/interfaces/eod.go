package interfaces

import "time"

// EodSummarizer aggregates the day's fill journal into a CSV report.
type EodSummarizer interface {
	SummarizeDay(t time.Time) (csvPath string, err error)
	SummarizeToday() (csvPath string, err error)
	ShouldRunNow() (shouldRun bool, csvPath string)
}
