package orderbook

// Capacity is the fixed number of (buy, sell) slots in an OrderBook. It is
// a compile-time constant: the universe of symbols is not dynamic.
const Capacity = 1024

const (
	fnvOffsetBasis uint64 = 14695981039346656037
	fnvPrime       uint64 = 1099511628211
)

// slotForSymbol hashes symbol with an FNV-1a variant, reduces it modulo
// Capacity, and takes the absolute value. The core treats this as opaque;
// distinct symbols may collide into the same slot and that is tolerated by
// design.
func slotForSymbol(symbol string) int {
	h := fnvOffsetBasis
	for i := 0; i < len(symbol); i++ {
		h ^= uint64(symbol[i])
		h *= fnvPrime
	}
	idx := int64(h) % int64(Capacity)
	if idx < 0 {
		idx = -idx
	}
	return int(idx)
}
