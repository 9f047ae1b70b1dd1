// Package orderlist implements a per-symbol, per-side, price-sorted
// singly-linked order list: concurrent insertion and head removal under
// CAS, no mutex, no condition variable.
package orderlist

import (
	"runtime"
	"sync/atomic"

	"lockfree-matcher/domain"
)

// Retry/scan budgets, exposed as configuration rather than hardcoded so
// callers needing different policy knobs can build an OrderList with
// NewWithLimits.
const (
	DefaultPrimaryRetries  = 10
	DefaultFallbackRetries = 50
	DefaultScanLimit       = 100
)

// DegradedInsertFunc is invoked, at most once per Insert call, when an
// order is handed off to the best-effort background inserter after the
// fallback phase is exhausted. It exists so callers (engine.MatchingEngine)
// can log/count this ordering relaxation instead of it passing silently.
type DegradedInsertFunc func(o *domain.Order)

// OrderList is a lock-free, price-sorted singly-linked list for one side of
// one symbol's book.
type OrderList struct {
	head atomic.Pointer[domain.Order]

	isBuySide bool

	primaryRetries  int
	fallbackRetries int
	scanLimit       int

	onDegraded DegradedInsertFunc
	onAttempt  func()
}

// New builds an OrderList with the spec's default retry/scan budgets.
func New(isBuySide bool) *OrderList {
	return NewWithLimits(isBuySide, DefaultPrimaryRetries, DefaultFallbackRetries, DefaultScanLimit, nil)
}

// NewWithLimits builds an OrderList with explicit policy knobs. onDegraded
// may be nil.
func NewWithLimits(isBuySide bool, primaryRetries, fallbackRetries, scanLimit int, onDegraded DegradedInsertFunc) *OrderList {
	return &OrderList{
		isBuySide:       isBuySide,
		primaryRetries:  primaryRetries,
		fallbackRetries: fallbackRetries,
		scanLimit:       scanLimit,
		onDegraded:      onDegraded,
	}
}

// IsBuySide reports the price ordering this list maintains.
func (l *OrderList) IsBuySide() bool { return l.isBuySide }

// SetAttemptHookForTest installs a callback invoked once per insertOnce
// attempt (both the primary and fallback phases), letting a test bound the
// number of CAS attempts a single Insert call actually took. Test
// scaffolding only — production code must never call this.
func (l *OrderList) SetAttemptHookForTest(onAttempt func()) {
	l.onAttempt = onAttempt
}

// beats reports whether candidate strictly outranks current in this list's
// price-then-seq ordering: strict price comparison first, the admission
// sequence number only breaks a bitwise-equal price.
func (l *OrderList) beats(candidate, current *domain.Order) bool {
	if candidate.Price == current.Price {
		return candidate.Seq() < current.Seq()
	}
	if l.isBuySide {
		return candidate.Price > current.Price
	}
	return candidate.Price < current.Price
}

// Insert publishes newOrder into the list at the position that preserves
// price ordering: a bounded optimistic primary phase, a lengthening
// fallback phase, and — only if both are exhausted — handoff to a
// best-effort background inserter that sacrifices ordering for liveness.
func (l *OrderList) Insert(newOrder *domain.Order) {
	if l.insertBounded(newOrder, l.primaryRetries, l.scanLimit, false) {
		return
	}
	if l.insertFallback(newOrder) {
		return
	}
	if l.onDegraded != nil {
		l.onDegraded(newOrder)
	}
	go l.backgroundInsert(newOrder)
}

// insertBounded runs up to attempts iterations of the primary algorithm.
// Insert calls it with yieldBetweenAttempts false; the fallback phase runs
// its own loop in insertFallback.
func (l *OrderList) insertBounded(newOrder *domain.Order, attempts, scanLimit int, yieldBetweenAttempts bool) bool {
	for attempt := 0; attempt < attempts; attempt++ {
		if l.insertOnce(newOrder, scanLimit) {
			return true
		}
		if yieldBetweenAttempts {
			runtime.Gosched()
		}
	}
	return false
}

// insertOnce attempts a single CAS-based placement of newOrder. It returns
// true on success.
func (l *OrderList) insertOnce(newOrder *domain.Order, scanLimit int) bool {
	if l.onAttempt != nil {
		l.onAttempt()
	}

	h := l.head.Load()

	if h == nil {
		newOrder.StoreNext(nil)
		return l.head.CompareAndSwap(nil, newOrder)
	}

	if l.beats(newOrder, h) {
		newOrder.StoreNext(h)
		return l.head.CompareAndSwap(h, newOrder)
	}

	prev := h
	cur := h.LoadNext()
	for i := 0; i < scanLimit && cur != nil; i++ {
		if l.beats(newOrder, cur) {
			break
		}
		prev = cur
		cur = cur.LoadNext()
	}

	newOrder.StoreNext(cur)
	return prev.CasNext(cur, newOrder)
}

// insertFallback runs the lengthened, backed-off retry phase: the
// traversal cap grows with each attempt, the scheduler is yielded between
// attempts, and a bounded spin precedes each retry.
func (l *OrderList) insertFallback(newOrder *domain.Order) bool {
	for attempt := 0; attempt < l.fallbackRetries; attempt++ {
		scanLimit := 10 + 5*attempt
		if l.insertOnce(newOrder, scanLimit) {
			return true
		}
		spinBackoff(attempt)
		runtime.Gosched()
	}
	return false
}

// spinBackoff issues 2^min(attempt,10) spin-wait hints.
func spinBackoff(attempt int) {
	shift := attempt
	if shift > 10 {
		shift = 10
	}
	spins := 1 << shift
	for i := 0; i < spins; i++ {
		runtime.Gosched()
	}
}

// backgroundInsert is the best-effort liveness-over-ordering handoff: it
// loops indefinitely attempting head-CAS only, so the order is guaranteed
// to eventually publish but may land ahead of better-priced resting orders,
// relaxing price ordering for this one order. This is a deliberate,
// documented trade-off rather than an error.
func (l *OrderList) backgroundInsert(newOrder *domain.Order) {
	for {
		h := l.head.Load()
		newOrder.StoreNext(h)
		if l.head.CompareAndSwap(h, newOrder) {
			return
		}
		runtime.Gosched()
	}
}

// Peek returns the current head without mutating the list. May return nil.
func (l *OrderList) Peek() *domain.Order {
	return l.head.Load()
}

// RemoveHead unlinks and returns the current head, retrying until it wins
// the CAS — there is no retry cap; removal is always attempted to
// completion. Returns nil if the list was already empty.
func (l *OrderList) RemoveHead() *domain.Order {
	for {
		h := l.head.Load()
		if h == nil {
			return nil
		}
		next := h.LoadNext()
		if l.head.CompareAndSwap(h, next) {
			h.StoreNext(nil)
			return h
		}
	}
}

// RemoveHeadIf removes the head only if it still equals expected. Returns
// true if the removal happened.
func (l *OrderList) RemoveHeadIf(expected *domain.Order) bool {
	next := expected.LoadNext()
	return l.head.CompareAndSwap(expected, next)
}

// IsEmpty reports whether the list currently has no head.
func (l *OrderList) IsEmpty() bool {
	return l.head.Load() == nil
}

// ClearForTest atomically resets head to nil. Restricted to test
// scaffolding — production code must never call this, as it silently
// discards any resting orders without severing their next pointers.
func (l *OrderList) ClearForTest() {
	l.head.Store(nil)
}

// Snapshot walks the list from head and returns every order currently
// reachable, for read-only inspection (tests, depth aggregation). It never
// mutates the list and makes no ordering guarantee beyond what was true at
// the moment of each individual Peek()/LoadNext() call — concurrent
// mutation may make a snapshot taken this way slightly stale by the time
// the caller inspects it.
func (l *OrderList) Snapshot() []*domain.Order {
	var out []*domain.Order
	for o := l.Peek(); o != nil; o = o.LoadNext() {
		out = append(out, o)
	}
	return out
}
