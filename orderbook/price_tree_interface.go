package orderbook

// DepthAggregator turns a flat snapshot of resting orders into sorted,
// volume-aggregated price levels. It is never part of the admit/match hot
// path — matching mutates only through OrderList/Order CAS — this exists
// purely for a read-only inspection surface.
//
// Two implementations are kept, one plain and one backed by the
// emirpasic/gods/v2 red-black tree: at the modest level counts a depth
// snapshot realistically asks for, either is fine, but the tree-backed
// aggregator demonstrates the dependency still earning its place once the
// live, mutated price tree it used to back is gone.
type DepthAggregator interface {
	// Aggregate turns orders (already in the list's price-priority order,
	// per orderlist.OrderList.Snapshot) into up to levels PriceLevel
	// entries.
	Aggregate(orders []priceQty, levels int, isBuySide bool) []PriceLevel
}

// priceQty is the minimal view an aggregator needs from a resting order;
// decoupling it from *domain.Order keeps this package's depth logic
// testable without constructing real orders.
type priceQty struct {
	price float64
	qty   int64
}
