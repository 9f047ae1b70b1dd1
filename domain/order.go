// Package domain holds the core order record shared by the lock-free order
// lists and the matching engine.
package domain

import "sync/atomic"

// Side represents the order side (Buy or Sell).
type Side int

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	if s == SideBuy {
		return "BUY"
	}
	return "SELL"
}

var orderIDs = NewIDGenerator("O")
var orderSeq atomic.Uint64

// Order is the immutable-identity, atomically-mutable record described by
// the core data model: Side/Symbol/Price never change after construction;
// qty, next and version are only ever touched through atomic ops once the
// order has been published into an OrderList.
//
// Hot fields (qty, next, version) are isolated from neighboring heap
// allocations by padding on both sides, so CAS traffic on one Order never
// false-shares a cache line with its list neighbors. The padding width is a
// tuning parameter, not a correctness requirement — two cache lines (one
// before, one after) is the floor the design notes call for.
type Order struct {
	_pad0 [8]uint64

	// Immutable after construction.
	ID     string
	Side   Side
	Symbol string
	Price  float64

	// seq breaks ties between orders resting at an identical price.
	// Compared only when prices are bitwise equal, so it can never override
	// price ordering.
	seq uint64

	// Mutable, CAS-only once published.
	qty     atomic.Int32
	next    atomic.Pointer[Order]
	version atomic.Uint64

	_pad1 [8]uint64
}

// NewOrder constructs a pre-publication Order. qty and price are assumed
// already validated positive by the caller (engine.Admit does this);
// NewOrder does not re-validate.
func NewOrder(side Side, symbol string, qty int32, price float64) *Order {
	o := &Order{
		ID:     orderIDs.Next(),
		Side:   side,
		Symbol: symbol,
		Price:  price,
		seq:    orderSeq.Add(1),
	}
	o.qty.Store(qty)
	return o
}

// Seq returns the order's admission sequence number, used only to break
// equal-price ties during insertion.
func (o *Order) Seq() uint64 { return o.seq }

// LoadQty returns the current residual quantity.
func (o *Order) LoadQty() int32 { return o.qty.Load() }

// TryDecrement succeeds iff the observed quantity still equals expected, and
// newQty must not exceed it. On success the reserved version counter is
// bumped, so a future hazard- or epoch-based reclamation scheme has a
// ready-made generation stamp; nothing in this engine reads it back today.
func (o *Order) TryDecrement(expected, newQty int32) bool {
	if newQty > expected {
		panic("domain: TryDecrement newQty must not exceed expected")
	}
	if o.qty.CompareAndSwap(expected, newQty) {
		o.version.Add(1)
		return true
	}
	return false
}

// LoadNext returns the successor in this order's list, or nil.
func (o *Order) LoadNext() *Order { return o.next.Load() }

// StoreNext plainly stores the successor pointer. Only safe on a
// pre-publication order (the inserting goroutine's private node) or
// immediately after winning a head/next CAS that makes this write part of
// the same happens-before edge.
func (o *Order) StoreNext(next *Order) { o.next.Store(next) }

// CasNext attempts to swing next from expected to next. Used by OrderList
// to publish a predecessor's successor pointer during insertion.
func (o *Order) CasNext(expected, next *Order) bool {
	return o.next.CompareAndSwap(expected, next)
}

// LoadVersion returns the reserved ABA-mitigation counter.
func (o *Order) LoadVersion() uint64 { return o.version.Load() }
