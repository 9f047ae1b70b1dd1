// Package engine implements the admission/matching loop over an
// orderbook.OrderBook: admit_order constructs and inserts an Order, then
// invokes a bounded crossing loop against the resting book at that slot.
package engine

import (
	"runtime"
	"sync/atomic"

	"github.com/rs/zerolog"

	"lockfree-matcher/domain"
	"lockfree-matcher/orderbook"
	"lockfree-matcher/orderlist"
)

// DefaultMatchIterations bounds the crossing loop per admission call.
const DefaultMatchIterations = 100

// Stats holds the engine's counted, non-fatal event totals — a point-in-time
// copy, not a live handle.
type Stats struct {
	// Degraded counts orders handed off to an OrderList's background
	// inserter after both bounded insertion phases were exhausted.
	Degraded int64
	// Rejected counts Admit calls dropped for non-positive qty or price.
	Rejected int64
}

// MatchingEngine owns one OrderBook (all symbols, all slots) and applies
// admit_order/match_slot to it. It holds no goroutine of its own:
// admission is synchronous in the caller's goroutine, matching only ever
// touches the slot the admitted order landed in.
type MatchingEngine struct {
	book            *orderbook.OrderBook
	matchIterations int
	log             zerolog.Logger

	degraded atomic.Int64
	rejected atomic.Int64

	onMatchIteration func()
}

// New builds a MatchingEngine with the default retry/scan/match budgets.
func New(log zerolog.Logger) *MatchingEngine {
	return NewWithLimits(log, orderlist.DefaultPrimaryRetries, orderlist.DefaultFallbackRetries, orderlist.DefaultScanLimit, DefaultMatchIterations)
}

// NewWithLimits builds a MatchingEngine with explicit policy knobs.
func NewWithLimits(log zerolog.Logger, primaryRetries, fallbackRetries, scanLimit, matchIterations int) *MatchingEngine {
	e := &MatchingEngine{matchIterations: matchIterations, log: log}
	e.book = orderbook.NewWithLimits(primaryRetries, fallbackRetries, scanLimit, e.onDegradedInsert)
	return e
}

// OrderBook exposes the underlying book for depth inspection and tests.
func (e *MatchingEngine) OrderBook() *orderbook.OrderBook { return e.book }

// Stats returns a snapshot of the engine's counted non-fatal events.
func (e *MatchingEngine) Stats() Stats {
	return Stats{Degraded: e.degraded.Load(), Rejected: e.rejected.Load()}
}

// SetMatchIterationHookForTest installs a callback invoked once per
// crossing-loop iteration, letting a test bound how many iterations a
// matchSlot call actually took against matchIterations. Test scaffolding
// only — production code must never call this.
func (e *MatchingEngine) SetMatchIterationHookForTest(onIteration func()) {
	e.onMatchIteration = onIteration
}

func (e *MatchingEngine) onDegradedInsert(o *domain.Order) {
	e.degraded.Add(1)
	e.log.Warn().Str("order_id", o.ID).Str("symbol", o.Symbol).Str("side", o.Side.String()).
		Msg("order handed off to background inserter, price ordering relaxed for this order")
}

// Admit constructs an Order from (side, symbol, qty, price), inserts it
// into its slot's side list, and runs the crossing loop for that slot.
// Invalid input (qty <= 0 or price <= 0) is rejected silently: logged once
// at warn, nothing constructed or inserted.
func (e *MatchingEngine) Admit(side domain.Side, symbol string, qty int32, price float64) {
	if qty <= 0 || price <= 0 {
		e.rejected.Add(1)
		e.log.Warn().Str("side", side.String()).Str("symbol", symbol).Int32("qty", qty).Float64("price", price).
			Msg("rejected admission: qty and price must be positive")
		return
	}

	order := domain.NewOrder(side, symbol, qty, price)
	pair, slot := e.book.Slot(symbol)

	if side == domain.SideBuy {
		pair.Buy.Insert(order)
	} else {
		pair.Sell.Insert(order)
	}

	e.matchSlot(pair, slot)
}

// Match re-invokes the bounded crossing loop for symbol's slot without
// admitting a new order. Exposed so a caller can resume matching a slot
// whose crossing loop previously exhausted its iteration budget without
// fully draining a crossed book, instead of having to submit another order
// just to trigger another pass.
func (e *MatchingEngine) Match(symbol string) {
	pair, slot := e.book.Slot(symbol)
	e.matchSlot(pair, slot)
}

// matchSlot runs the bounded crossing loop for one (buy, sell) pair: up to
// matchIterations iterations, each attempting to cross the current heads
// of both lists.
func (e *MatchingEngine) matchSlot(pair orderbook.Pair, slot int) {
	for i := 0; i < e.matchIterations; i++ {
		if e.onMatchIteration != nil {
			e.onMatchIteration()
		}

		b := pair.Buy.Peek()
		s := pair.Sell.Peek()
		if b == nil || s == nil {
			return
		}
		if b.Price < s.Price {
			return
		}

		bq := b.LoadQty()
		sq := s.LoadQty()

		if bq == 0 {
			pair.Buy.RemoveHeadIf(b)
			continue
		}
		if sq == 0 {
			pair.Sell.RemoveHeadIf(s)
			continue
		}

		m := bq
		if sq < m {
			m = sq
		}

		if !b.TryDecrement(bq, bq-m) || !s.TryDecrement(sq, sq-m) {
			runtime.Gosched()
			continue
		}

		if bq-m == 0 {
			pair.Buy.RemoveHeadIf(b)
		}
		if sq-m == 0 {
			pair.Sell.RemoveHeadIf(s)
		}
	}

	e.log.Debug().Int("slot", slot).Int("iterations", e.matchIterations).
		Msg("crossing loop exhausted its iteration budget for this admission")
}
