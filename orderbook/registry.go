package orderbook

import (
	"sync"
	"sync/atomic"
)

// SymbolRegistry makes the tolerated-collision design of symbol slotting
// observable instead of silent: it remembers which symbol strings have
// ever been seen at each slot, so a slot shared by two distinct symbols
// can be logged and counted without changing matching semantics or the
// O(1) array-index contract.
//
// Read path is lock-free (a single atomic.Value.Load), matching the
// teacher's ExchangeEngine.GetEngine pattern: writes are rare (the first
// time a new symbol maps into a slot) and pay a copy-on-write map clone;
// reads, which happen on every admission, never take a lock.
type SymbolRegistry struct {
	bySlot atomic.Value // map[int]map[string]struct{}, immutable once stored
	mu     sync.Mutex   // serializes the rare copy-on-write writers only

	collisions atomic.Value // []string, immutable once stored
}

// NewSymbolRegistry builds an empty registry.
func NewSymbolRegistry() *SymbolRegistry {
	r := &SymbolRegistry{}
	r.bySlot.Store(make(map[int]map[string]struct{}))
	r.collisions.Store([]string{})
	return r
}

// observe records that symbol maps to slot. If slot already holds a
// different symbol, symbol is appended to the collisions list; this happens
// once for each new symbol joining an occupied slot. Nothing is logged.
func (r *SymbolRegistry) observe(slot int, symbol string) {
	slots := r.bySlot.Load().(map[int]map[string]struct{})
	if symbols, ok := slots[slot]; ok {
		if _, seen := symbols[symbol]; seen {
			return // fast path: nothing new, no lock taken
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-read under the lock: another writer may have already recorded
	// this exact (slot, symbol) pair.
	slots = r.bySlot.Load().(map[int]map[string]struct{})
	existing := slots[slot]
	if _, seen := existing[symbol]; seen {
		return
	}

	newSlots := make(map[int]map[string]struct{}, len(slots)+1)
	for k, v := range slots {
		newSlots[k] = v
	}
	newSymbols := make(map[string]struct{}, len(existing)+1)
	for s := range existing {
		newSymbols[s] = struct{}{}
	}
	newSymbols[symbol] = struct{}{}
	newSlots[slot] = newSymbols

	wasCollision := len(existing) >= 1
	r.bySlot.Store(newSlots)

	if wasCollision {
		cols := r.collisions.Load().([]string)
		newCols := make([]string, len(cols), len(cols)+1)
		copy(newCols, cols)
		newCols = append(newCols, symbol)
		r.collisions.Store(newCols)
	}
}

// Collisions returns the symbols that were observed joining a slot already
// claimed by a different symbol, in first-observed order.
func (r *SymbolRegistry) Collisions() []string {
	return append([]string(nil), r.collisions.Load().([]string)...)
}

// SymbolsAt returns the distinct symbols ever observed at slot, for
// diagnostics.
func (r *SymbolRegistry) SymbolsAt(slot int) []string {
	slots := r.bySlot.Load().(map[int]map[string]struct{})
	symbols := slots[slot]
	out := make([]string, 0, len(symbols))
	for s := range symbols {
		out = append(out, s)
	}
	return out
}
