package engine

import (
	"testing"

	"github.com/rs/zerolog"

	"lockfree-matcher/domain"
	"lockfree-matcher/orderlist"
)

func newTestEngine() *MatchingEngine {
	return New(zerolog.Nop())
}

func TestBasicCross(t *testing.T) {
	e := newTestEngine()
	e.Admit(domain.SideBuy, "X", 100, 250.0)
	e.Admit(domain.SideSell, "X", 100, 245.0)

	pair, _ := e.OrderBook().Slot("X")
	if !pair.Buy.IsEmpty() {
		t.Error("expected buy side of X empty after a fully matching cross")
	}
	if !pair.Sell.IsEmpty() {
		t.Error("expected sell side of X empty after a fully matching cross")
	}
}

func TestPartialFill(t *testing.T) {
	e := newTestEngine()
	e.Admit(domain.SideBuy, "Y", 100, 1000.0)
	e.Admit(domain.SideSell, "Y", 60, 990.0)

	pair, _ := e.OrderBook().Slot("Y")
	head := pair.Buy.Peek()
	if head == nil {
		t.Fatal("expected a resting buy order after partial fill")
	}
	if head.LoadQty() != 40 || head.Price != 1000.0 {
		t.Errorf("expected resting buy qty=40 at 1000.0, got qty=%d price=%v", head.LoadQty(), head.Price)
	}
	if !pair.Sell.IsEmpty() {
		t.Error("expected sell side of Y empty after partial fill")
	}

	e.Admit(domain.SideSell, "Y", 50, 995.0)

	if !pair.Buy.IsEmpty() {
		t.Error("expected buy side of Y empty after the second sell drains the resting buy")
	}
	sellHead := pair.Sell.Peek()
	if sellHead == nil {
		t.Fatal("expected a resting sell order after the second admission")
	}
	if sellHead.LoadQty() != 10 || sellHead.Price != 995.0 {
		t.Errorf("expected resting sell qty=10 at 995.0, got qty=%d price=%v", sellHead.LoadQty(), sellHead.Price)
	}
}

func TestNoCross(t *testing.T) {
	e := newTestEngine()
	e.Admit(domain.SideBuy, "Z", 100, 800.0)
	e.Admit(domain.SideSell, "Z", 100, 805.0)

	pair, _ := e.OrderBook().Slot("Z")
	buyHead := pair.Buy.Peek()
	sellHead := pair.Sell.Peek()
	if buyHead == nil || buyHead.LoadQty() != 100 {
		t.Error("expected buy head unchanged at qty=100")
	}
	if sellHead == nil || sellHead.LoadQty() != 100 {
		t.Error("expected sell head unchanged at qty=100")
	}
}

func TestBuyPricePriority(t *testing.T) {
	e := newTestEngine()
	e.Admit(domain.SideBuy, "A", 100, 150.0)
	e.Admit(domain.SideBuy, "A", 100, 152.0)
	e.Admit(domain.SideBuy, "A", 100, 151.0)

	pair, _ := e.OrderBook().Slot("A")
	got := pair.Buy.Snapshot()
	if len(got) != 3 {
		t.Fatalf("expected 3 resting buy orders, got %d", len(got))
	}
	want := []float64{152.0, 151.0, 150.0}
	for i, w := range want {
		if got[i].Price != w {
			t.Errorf("position %d: expected price %v, got %v", i, w, got[i].Price)
		}
	}
}

func TestMultiLevelSweep(t *testing.T) {
	e := newTestEngine()
	e.Admit(domain.SideBuy, "B", 100, 300.0)
	e.Admit(domain.SideBuy, "B", 200, 305.0)
	e.Admit(domain.SideBuy, "B", 150, 302.0)

	e.Admit(domain.SideSell, "B", 120, 301.0)
	e.Admit(domain.SideSell, "B", 180, 304.0)
	e.Admit(domain.SideSell, "B", 100, 306.0)

	pair, _ := e.OrderBook().Slot("B")
	buys := pair.Buy.Snapshot()
	if len(buys) != 2 {
		t.Fatalf("expected 2 resting buy orders, got %d", len(buys))
	}
	if buys[0].Price != 302.0 || buys[0].LoadQty() != 150 {
		t.Errorf("expected head (150 @ 302.0), got (%d @ %v)", buys[0].LoadQty(), buys[0].Price)
	}
	if buys[1].Price != 300.0 || buys[1].LoadQty() != 100 {
		t.Errorf("expected next (100 @ 300.0), got (%d @ %v)", buys[1].LoadQty(), buys[1].Price)
	}

	// The 304.0 sell fills 80 against the 305.0 buy, then stops: the next
	// buy (302.0) is below it, so 100 @ 304.0 rests ahead of 100 @ 306.0.
	sells := pair.Sell.Snapshot()
	if len(sells) != 2 {
		t.Fatalf("expected 2 resting sell orders, got %d", len(sells))
	}
	if sells[0].Price != 304.0 || sells[0].LoadQty() != 100 {
		t.Errorf("expected sell head (100 @ 304.0), got (%d @ %v)", sells[0].LoadQty(), sells[0].Price)
	}
	if sells[1].Price != 306.0 || sells[1].LoadQty() != 100 {
		t.Errorf("expected next sell (100 @ 306.0), got (%d @ %v)", sells[1].LoadQty(), sells[1].Price)
	}
}

func TestCrossSlotNonInterference(t *testing.T) {
	e := newTestEngine()
	pairP, slotP := e.OrderBook().Slot("P")
	_, slotQ := e.OrderBook().Slot("Q")
	if slotP == slotQ {
		t.Skip("symbol hash collision for this pair, not a correctness bug")
	}

	e.Admit(domain.SideBuy, "P", 100, 150.0)
	e.Admit(domain.SideSell, "Q", 100, 145.0)

	pairQ, _ := e.OrderBook().Slot("Q")

	buyHead := pairP.Buy.Peek()
	sellHead := pairQ.Sell.Peek()
	if buyHead == nil || buyHead.LoadQty() != 100 {
		t.Error("expected P's buy order resting at qty=100, undisturbed by Q's sell")
	}
	if sellHead == nil || sellHead.LoadQty() != 100 {
		t.Error("expected Q's sell order resting at qty=100, undisturbed by P's buy")
	}
}

func TestRejectsNonPositiveQtyAndPrice(t *testing.T) {
	e := newTestEngine()
	e.Admit(domain.SideBuy, "R", 0, 100.0)
	e.Admit(domain.SideBuy, "R", 100, 0)
	e.Admit(domain.SideBuy, "R", -5, 100.0)

	pair, _ := e.OrderBook().Slot("R")
	if !pair.Buy.IsEmpty() {
		t.Error("expected no order admitted for non-positive qty or price")
	}
	if got := e.Stats().Rejected; got != 3 {
		t.Errorf("expected Stats().Rejected=3, got %d", got)
	}
}

func TestStatsCountsDegradedInsertsOnly(t *testing.T) {
	e := newTestEngine()
	e.Admit(domain.SideBuy, "S", 100, 100.0)

	stats := e.Stats()
	if stats.Degraded != 0 {
		t.Errorf("expected no degraded inserts under default retry budgets, got %d", stats.Degraded)
	}
	if stats.Rejected != 0 {
		t.Errorf("expected no rejections for a valid admission, got %d", stats.Rejected)
	}
}

// TestMatchLoopIterationsAreBounded exercises the crossing loop's own cap
// via an injected hook: a multi-level sweep needs a handful of iterations
// to fully cross, and the count must never exceed matchIterations.
func TestMatchLoopIterationsAreBounded(t *testing.T) {
	const matchIterations = 5
	e := NewWithLimits(zerolog.Nop(), orderlist.DefaultPrimaryRetries, orderlist.DefaultFallbackRetries, orderlist.DefaultScanLimit, matchIterations)

	var iterations int
	e.SetMatchIterationHookForTest(func() {
		iterations++
	})

	e.Admit(domain.SideBuy, "T", 100, 300.0)
	e.Admit(domain.SideBuy, "T", 100, 301.0)
	e.Admit(domain.SideBuy, "T", 100, 302.0)

	iterations = 0
	e.Admit(domain.SideSell, "T", 250, 299.0)

	if iterations > matchIterations {
		t.Errorf("expected at most %d crossing-loop iterations, got %d", matchIterations, iterations)
	}
	if iterations == 0 {
		t.Error("expected the crossing loop to run at least one iteration for a crossing admission")
	}
}
