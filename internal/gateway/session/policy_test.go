package session

import (
	"context"
	"testing"
	"time"
)

func TestBackoffDoublesAndCaps(t *testing.T) {
	p := ReconnectPolicy{
		BaseDelay:   time.Second,
		MaxDelay:    60 * time.Second,
		MaxAttempts: 5,
	}

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{5, 32 * time.Second},
		{6, 60 * time.Second},
		{10, 60 * time.Second},
	}
	for _, c := range cases {
		if got := p.Delay(c.attempt); got != c.want {
			t.Errorf("Delay(%d): expected %v, got %v", c.attempt, c.want, got)
		}
	}
}

func TestBackoffNegativeAttempt(t *testing.T) {
	p := DefaultReconnectPolicy()
	if got := p.Delay(-1); got != p.BaseDelay {
		t.Errorf("Expected base delay for negative attempt, got %v", got)
	}
}

func TestQueryGateSpacesCalls(t *testing.T) {
	gate := NewQueryGate(time.Second)

	// Fake clock: sleeps are recorded and advance the clock instead of
	// waiting.
	clock := time.Unix(0, 0)
	var slept []time.Duration
	gate.now = func() time.Time { return clock }
	gate.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		clock = clock.Add(d)
		return nil
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := gate.Acquire(ctx); err != nil {
			t.Fatalf("Unexpected acquire error: %v", err)
		}
	}

	// First acquire is free, each later one must wait out the interval.
	if len(slept) != 2 {
		t.Fatalf("Expected 2 waits, got %v", slept)
	}
	for i, d := range slept {
		if d <= 0 || d > time.Second {
			t.Errorf("Wait %d: expected up to the full interval, got %v", i, d)
		}
	}
	if total := slept[0] + slept[1]; total < 2*time.Second-time.Millisecond {
		t.Errorf("Expected ~2s of spacing across 3 acquires, got %v", total)
	}
}

func TestQueryGateHonorsContext(t *testing.T) {
	gate := NewQueryGate(time.Hour)
	clock := time.Unix(0, 0)
	gate.now = func() time.Time { return clock }

	ctx := context.Background()
	if err := gate.Acquire(ctx); err != nil {
		t.Fatalf("Unexpected acquire error: %v", err)
	}

	// The second acquire owes an hour; a cancelled context must abort
	// instead of waiting.
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := gate.Acquire(cancelled); err == nil {
		t.Error("Expected context error for a blocked acquire")
	}
}
