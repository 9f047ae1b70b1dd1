package orderbook

import "lockfree-matcher/orderlist"

// AggregatorType selects which DepthAggregator implementation backs a
// Depth() call.
type AggregatorType int

const (
	// HashMapListAggregator groups by price in a plain map, then sorts —
	// simplest, fine for the level counts a depth snapshot realistically
	// asks for.
	HashMapListAggregator AggregatorType = iota

	// ShardedAggregator groups by price in a red-black tree, trading a
	// little constant-factor overhead for tree-maintained sort order.
	ShardedAggregator
)

// NewDepthAggregator returns the DepthAggregator implementation for t,
// defaulting to HashMapListAggregator for any unrecognized value.
func NewDepthAggregator(t AggregatorType) DepthAggregator {
	switch t {
	case ShardedAggregator:
		return shardedDepthAggregator{}
	case HashMapListAggregator:
		fallthrough
	default:
		return hashMapDepthAggregator{}
	}
}

// defaultAggregator is the DepthAggregator used by AggregateDepth.
var defaultAggregator DepthAggregator = hashMapDepthAggregator{}

// AggregateDepth snapshots list and aggregates it into up to levels
// PriceLevel entries using the default aggregator.
func AggregateDepth(list *orderlist.OrderList, levels int) []PriceLevel {
	snapshot := list.Snapshot()
	orders := make([]priceQty, 0, len(snapshot))
	for _, o := range snapshot {
		orders = append(orders, priceQty{price: o.Price, qty: int64(o.LoadQty())})
	}
	return defaultAggregator.Aggregate(orders, levels, list.IsBuySide())
}
