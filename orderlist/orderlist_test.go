package orderlist

import (
	"sync"
	"sync/atomic"
	"testing"

	"lockfree-matcher/domain"
)

func TestInsertMaintainsBuySidePriceDescending(t *testing.T) {
	l := New(true)
	l.Insert(domain.NewOrder(domain.SideBuy, "X", 10, 100.0))
	l.Insert(domain.NewOrder(domain.SideBuy, "X", 10, 102.0))
	l.Insert(domain.NewOrder(domain.SideBuy, "X", 10, 101.0))

	snapshot := l.Snapshot()
	if len(snapshot) != 3 {
		t.Fatalf("expected 3 resting orders, got %d", len(snapshot))
	}
	want := []float64{102.0, 101.0, 100.0}
	for i, o := range snapshot {
		if o.Price != want[i] {
			t.Errorf("position %d: expected price %v, got %v", i, want[i], o.Price)
		}
	}
}

func TestInsertMaintainsSellSidePriceAscending(t *testing.T) {
	l := New(false)
	l.Insert(domain.NewOrder(domain.SideSell, "X", 10, 102.0))
	l.Insert(domain.NewOrder(domain.SideSell, "X", 10, 100.0))
	l.Insert(domain.NewOrder(domain.SideSell, "X", 10, 101.0))

	snapshot := l.Snapshot()
	want := []float64{100.0, 101.0, 102.0}
	for i, o := range snapshot {
		if o.Price != want[i] {
			t.Errorf("position %d: expected price %v, got %v", i, want[i], o.Price)
		}
	}
}

func TestInsertBreaksEqualPriceTiesByAdmissionOrder(t *testing.T) {
	l := New(true)
	first := domain.NewOrder(domain.SideBuy, "X", 10, 100.0)
	second := domain.NewOrder(domain.SideBuy, "X", 10, 100.0)
	l.Insert(first)
	l.Insert(second)

	snapshot := l.Snapshot()
	if snapshot[0].ID != first.ID || snapshot[1].ID != second.ID {
		t.Errorf("expected earlier-admitted order first at an equal price, got order %s then %s", snapshot[0].ID, snapshot[1].ID)
	}
}

func TestRemoveHeadReturnsNilOnEmptyList(t *testing.T) {
	l := New(true)
	if got := l.RemoveHead(); got != nil {
		t.Errorf("expected nil from an empty list, got %v", got)
	}
}

func TestRemoveHeadIfFailsWhenHeadChanged(t *testing.T) {
	l := New(true)
	a := domain.NewOrder(domain.SideBuy, "X", 10, 100.0)
	b := domain.NewOrder(domain.SideBuy, "X", 10, 99.0)
	l.Insert(a)
	l.Insert(b)

	if l.RemoveHeadIf(b) {
		t.Error("expected RemoveHeadIf to fail against a stale head")
	}
	if !l.RemoveHeadIf(a) {
		t.Error("expected RemoveHeadIf to succeed against the current head")
	}
}

func TestConcurrentInsertPreservesAllOrders(t *testing.T) {
	l := New(true)
	const goroutines = 16
	const perGoroutine = 200

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				price := float64(100 + (workerID*perGoroutine+i)%50)
				l.Insert(domain.NewOrder(domain.SideBuy, "X", 1, price))
			}
		}(g)
	}
	wg.Wait()

	snapshot := l.Snapshot()
	if len(snapshot) != goroutines*perGoroutine {
		t.Fatalf("expected %d resting orders, got %d", goroutines*perGoroutine, len(snapshot))
	}
	for i := 1; i < len(snapshot); i++ {
		if snapshot[i].Price > snapshot[i-1].Price {
			t.Fatalf("price ordering violated at position %d: %v came after %v", i, snapshot[i].Price, snapshot[i-1].Price)
		}
	}
}

func TestDegradedInsertCallbackFiresOnlyOnFallbackExhaustion(t *testing.T) {
	var degradedCount int
	var mu sync.Mutex
	l := NewWithLimits(true, 0, 0, 10, func(o *domain.Order) {
		mu.Lock()
		degradedCount++
		mu.Unlock()
	})

	l.Insert(domain.NewOrder(domain.SideBuy, "X", 10, 100.0))

	mu.Lock()
	defer mu.Unlock()
	if degradedCount != 1 {
		t.Errorf("expected the degraded-insert callback to fire exactly once with both bounded phases disabled, got %d", degradedCount)
	}
}

// TestConcurrentInsertAttemptsAreBounded exercises the retry cap under real
// contention: an injected hook counts every insertOnce attempt across all
// concurrent Insert calls. A single Insert call never tries insertOnce more
// than primaryRetries+fallbackRetries times before either succeeding or
// falling through to the background inserter (which does not call
// insertOnce at all), so the grand total across every Insert call can never
// exceed goroutines*perGoroutine*(primaryRetries+fallbackRetries).
func TestConcurrentInsertAttemptsAreBounded(t *testing.T) {
	const primaryRetries = 10
	const fallbackRetries = 50
	const goroutines = 16
	const perGoroutine = 100

	l := NewWithLimits(true, primaryRetries, fallbackRetries, DefaultScanLimit, nil)

	var attempts atomic.Int64
	l.SetAttemptHookForTest(func() {
		attempts.Add(1)
	})

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				price := float64(100 + (workerID*perGoroutine+i)%50)
				l.Insert(domain.NewOrder(domain.SideBuy, "X", 1, price))
			}
		}(g)
	}
	wg.Wait()

	maxAttempts := int64(goroutines*perGoroutine) * int64(primaryRetries+fallbackRetries)
	if got := attempts.Load(); got > maxAttempts {
		t.Errorf("expected at most %d total insertOnce attempts across %d inserts, got %d", maxAttempts, goroutines*perGoroutine, got)
	}
}
