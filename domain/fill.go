package domain

import (
	"sync"
	"time"
)

// FillObservation is not engine output — the matching core never emits a
// trade record. It is the shape an external observer reconstructs by
// diffing two OrderBook snapshots (see package observe), kept here so both
// the simulator's reporter and tests share one pooled, cache-padded type
// instead of each allocating their own.
//
// Group 1 (56 bytes): Price, Quantity, Timestamp, Symbol.
// Group 2 (56 bytes): ID, RestingOrderID, IncomingOrderID, RestingSide.
// The struct is not padded to cache-line boundaries.
type FillObservation struct {
	Price     float64   // 8 bytes - price at which the resting order was decremented
	Quantity  int32     // 4 bytes - quantity inferred from the qty delta
	_         [4]byte   // padding to keep Timestamp 8-byte aligned
	Timestamp time.Time // 24 bytes - wall-clock time the diff was taken
	Symbol    string    // 16 bytes

	ID              string // 16 bytes - observation ID, not an engine concept
	RestingOrderID  string // 16 bytes - order ID that was resting in the book
	IncomingOrderID string // 16 bytes - best-effort: empty if not known to the observer
	RestingSide     Side   // 8 bytes
}

var fillPool = sync.Pool{
	New: func() any {
		return &FillObservation{}
	},
}

var fillIDs = NewIDGenerator("F")

// NewFillObservation builds a pooled FillObservation. Unlike domain.Order,
// pooling here is safe: observations are detached copies produced after the
// fact by observe.Diff, never reachable from a live OrderList, so there is
// no hazard-pointer concern in recycling them.
func NewFillObservation(symbol string, restingSide Side, price float64, qty int32, restingOrderID string) *FillObservation {
	f := fillPool.Get().(*FillObservation)
	f.ID = fillIDs.Next()
	f.Symbol = symbol
	f.RestingSide = restingSide
	f.Price = price
	f.Quantity = qty
	f.RestingOrderID = restingOrderID
	f.IncomingOrderID = ""
	f.Timestamp = time.Now()
	return f
}

// Destroy returns the observation to the pool.
func (f *FillObservation) Destroy() {
	f.Reset()
	fillPool.Put(f)
}

func (f *FillObservation) Reset() {
	// Zero-value assignment lets the compiler emit a single DUFFZERO-style
	// clear instead of field-by-field zeroing.
	*f = FillObservation{}
}
