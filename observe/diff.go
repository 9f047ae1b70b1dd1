// Package observe recovers fill observations by diffing two point-in-time
// snapshots of an order book's resting quantity, the strategy the matching
// core itself expects external observers to use: it never emits a trade
// record of its own.
package observe

import (
	"lockfree-matcher/domain"
	"lockfree-matcher/orderbook"
)

// OrderState is the minimal per-order view a snapshot needs to later
// detect a quantity decrease or a removal.
type OrderState struct {
	ID    string
	Side  domain.Side
	Price float64
	Qty   int32
}

// BookSnapshot is a point-in-time capture of every resting order for one
// symbol's book, keyed by order ID for O(1) before/after lookup.
type BookSnapshot struct {
	Symbol string
	Orders map[string]OrderState
}

// Snapshot captures the current resting orders for symbol in book.
func Snapshot(book *orderbook.OrderBook, symbol string) BookSnapshot {
	pair, _ := book.Slot(symbol)
	orders := make(map[string]OrderState)

	for _, o := range pair.Buy.Snapshot() {
		orders[o.ID] = OrderState{ID: o.ID, Side: o.Side, Price: o.Price, Qty: o.LoadQty()}
	}
	for _, o := range pair.Sell.Snapshot() {
		orders[o.ID] = OrderState{ID: o.ID, Side: o.Side, Price: o.Price, Qty: o.LoadQty()}
	}

	return BookSnapshot{Symbol: symbol, Orders: orders}
}

// Diff compares before and after snapshots of the same symbol and
// reconstructs the fills that must have happened to explain the
// difference: every order whose quantity decreased, or that disappeared
// entirely (fully filled and removed from its list), produces one
// FillObservation. Orders present in after but absent from before (newly
// admitted, untouched) produce none.
//
// Only orders present in before are examined: an order admitted and then
// filled (partly or fully) between the two snapshots produces no
// observation, so the incoming side of a fill is not reported.
func Diff(before, after BookSnapshot) []*domain.FillObservation {
	var fills []*domain.FillObservation

	for id, was := range before.Orders {
		now, stillResting := after.Orders[id]

		switch {
		case !stillResting:
			if was.Qty > 0 {
				fills = append(fills, domain.NewFillObservation(before.Symbol, was.Side, was.Price, was.Qty, id))
			}
		case now.Qty < was.Qty:
			fills = append(fills, domain.NewFillObservation(before.Symbol, was.Side, was.Price, was.Qty-now.Qty, id))
		}
	}

	return fills
}
