package session

import (
	"sort"
	"sync"
	"testing"
	"time"
)

func TestRequestIDsMonotonic(t *testing.T) {
	s := New(Trading)

	prev := s.NextRequestID()
	for i := 0; i < 100; i++ {
		next := s.NextRequestID()
		if next <= prev {
			t.Fatalf("Expected strictly increasing IDs, got %d after %d", next, prev)
		}
		prev = next
	}
}

func TestRequestIDsUniqueUnderConcurrency(t *testing.T) {
	s := New(Trading)

	const workers = 8
	const perWorker = 200
	var mu sync.Mutex
	seen := make(map[int]bool)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				id := s.NextRequestID()
				mu.Lock()
				if seen[id] {
					t.Errorf("Duplicate request ID %d", id)
				}
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Errorf("Expected %d unique IDs, got %d", workers*perWorker, len(seen))
	}
}

func TestFailedIsSticky(t *testing.T) {
	s := New(MarketData)
	s.SetState(Failed)

	// No transition may leave Failed except Reset.
	s.SetState(Ready)
	if s.State() != Failed {
		t.Errorf("Expected state to stay FAILED, got %s", s.State())
	}

	if s.NotifyDisconnect() {
		t.Error("Expected NotifyDisconnect to be a no-op on a failed session")
	}

	s.Reset()
	if s.State() != Disconnected {
		t.Errorf("Expected DISCONNECTED after reset, got %s", s.State())
	}
	if s.Attempts() != 0 {
		t.Errorf("Expected attempts cleared by reset, got %d", s.Attempts())
	}
}

func TestLoginFlagFollowsState(t *testing.T) {
	s := New(Trading)
	s.SetState(Ready)
	if !s.IsReady() {
		t.Fatal("Expected session to be ready")
	}

	s.SetState(Disconnected)
	snap := s.Snapshot()
	if snap.LoggedIn {
		t.Error("Expected login flag cleared on disconnect")
	}
}

func TestNotifyDisconnectSignalsOnce(t *testing.T) {
	s := New(MarketData)
	s.SetState(Ready)

	if !s.NotifyDisconnect() {
		t.Fatal("Expected first disconnect to signal the supervisor")
	}
	// Signal still pending, second notification must not block or re-signal.
	if s.NotifyDisconnect() {
		t.Error("Expected second disconnect to be deduplicated")
	}

	select {
	case <-s.Disconnects():
	case <-time.After(time.Second):
		t.Fatal("Expected a pending disconnect signal")
	}
}

func TestNotifyDisconnectSignalsDuringReconnect(t *testing.T) {
	s := New(MarketData)
	s.SetState(Ready)
	s.SetReconnecting(true)

	// A drop that lands mid-recovery must still queue a wake-up, or the
	// supervisor exits believing the session is up and nothing ever
	// retries.
	if !s.NotifyDisconnect() {
		t.Error("Expected the disconnect to queue a signal during reconnect")
	}
	if s.State() != Disconnected {
		t.Errorf("Expected DISCONNECTED, got %s", s.State())
	}
	select {
	case <-s.Disconnects():
	case <-time.After(time.Second):
		t.Fatal("Expected a pending disconnect signal")
	}
}

func TestSubscriptionsSurviveDisconnect(t *testing.T) {
	s := New(MarketData)
	s.RecordSubscriptions([]string{"rb2611", "au2612"})
	s.RecordSubscriptions([]string{"au2612", "IF2609"})

	s.NotifyDisconnect()

	got := s.Subscribed()
	want := []string{"IF2609", "au2612", "rb2611"}
	sort.Strings(got)
	if len(got) != len(want) {
		t.Fatalf("Expected %d subscriptions, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected subscription %s, got %s", want[i], got[i])
		}
	}
}

func TestConnectedSignalNonBlocking(t *testing.T) {
	s := New(MarketData)

	// Repeated edges must never block the caller.
	s.SignalConnected()
	s.SignalConnected()
	s.SignalConnected()

	select {
	case <-s.ConnectedSignal():
	default:
		t.Fatal("Expected a pending connected signal")
	}

	s.SignalConnected()
	s.DrainConnectedSignal()
	select {
	case <-s.ConnectedSignal():
		t.Error("Expected signal to be drained")
	default:
	}
}
