// Package orderbook holds the fixed-size, lock-free order book: a
// Capacity-sized array of (buy, sell) OrderList pairs indexed by an opaque
// symbol hash, plus non-hot-path inspection helpers.
package orderbook

import (
	"lockfree-matcher/orderlist"
)

// Pair is one symbol slot's resting buy and sell lists.
type Pair struct {
	Buy  *orderlist.OrderList
	Sell *orderlist.OrderList
}

// OrderBook is the fixed Capacity-slot array. Slot lookups are O(1) array
// indexing: the array is immutable after construction, only the lists it
// points to ever mutate, and they mutate only through CAS. The first lookup
// of a symbol not yet seen at its slot takes the registry's write lock (see
// SymbolRegistry); Depth walks both lists of the slot.
type OrderBook struct {
	slots [Capacity]Pair

	registry *SymbolRegistry
}

// New builds an OrderBook with every slot initialized to a fresh
// (buy, sell) OrderList pair, using the default retry/scan budgets and the
// given degraded-insert callback (see orderlist.DegradedInsertFunc).
func New(onDegraded orderlist.DegradedInsertFunc) *OrderBook {
	return NewWithLimits(orderlist.DefaultPrimaryRetries, orderlist.DefaultFallbackRetries, orderlist.DefaultScanLimit, onDegraded)
}

// NewWithLimits builds an OrderBook whose lists use explicit retry/scan
// budgets instead of the defaults, exposed as configuration.
func NewWithLimits(primaryRetries, fallbackRetries, scanLimit int, onDegraded orderlist.DegradedInsertFunc) *OrderBook {
	b := &OrderBook{registry: NewSymbolRegistry()}
	for i := range b.slots {
		b.slots[i] = Pair{
			Buy:  orderlist.NewWithLimits(true, primaryRetries, fallbackRetries, scanLimit, onDegraded),
			Sell: orderlist.NewWithLimits(false, primaryRetries, fallbackRetries, scanLimit, onDegraded),
		}
	}
	return b
}

// SlotIndex resolves a symbol to its slot index via the symbol-to-slot
// hash, recording the symbol against that slot in the collision registry
// along the way.
func (b *OrderBook) SlotIndex(symbol string) int {
	idx := slotForSymbol(symbol)
	b.registry.observe(idx, symbol)
	return idx
}

// SlotAt returns the (buy, sell) pair for a precomputed slot index, for
// callers that already hold one from a prior SlotIndex call and want to
// skip the hash and registry observation on a repeat lookup.
func (b *OrderBook) SlotAt(index int) Pair {
	return b.slots[index]
}

// Slot resolves a symbol and returns its (buy, sell) pair in one call.
func (b *OrderBook) Slot(symbol string) (Pair, int) {
	idx := b.SlotIndex(symbol)
	return b.slots[idx], idx
}

// Registry exposes the collision-diagnostic registry.
func (b *OrderBook) Registry() *SymbolRegistry {
	return b.registry
}

// PriceLevel is one aggregated price point in a Depth snapshot.
type PriceLevel struct {
	Price    float64
	Quantity int64
	Orders   int
}

// Depth aggregates a point-in-time snapshot of both sides of symbol's book
// into up to levels price points each, read-only and off the hot path. It
// never mutates the underlying OrderList.
func (b *OrderBook) Depth(symbol string, levels int) (bids, asks []PriceLevel) {
	pair, _ := b.Slot(symbol)
	return AggregateDepth(pair.Buy, levels), AggregateDepth(pair.Sell, levels)
}
