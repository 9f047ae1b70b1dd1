package orderbook

import (
	rbt "github.com/emirpasic/gods/v2/trees/redblacktree"
)

// shardedDepthAggregator buckets a resting-order snapshot into a red-black
// tree keyed by price, grouping volume within each bucket before iterating
// the tree in sorted order. The tree indexes a frozen snapshot, built
// fresh on every Aggregate call, rather than a live mutated index — an
// alternative aggregation strategy to hashMapDepthAggregator, useful when a
// caller wants sorted iteration without a separate sort step.
type shardedDepthAggregator struct{}

func (shardedDepthAggregator) Aggregate(orders []priceQty, levels int, isBuySide bool) []PriceLevel {
	if levels <= 0 || len(orders) == 0 {
		return nil
	}

	var comparator func(a, b float64) int
	if isBuySide {
		comparator = func(a, b float64) int {
			switch {
			case a > b:
				return -1
			case a < b:
				return 1
			default:
				return 0
			}
		}
	} else {
		comparator = func(a, b float64) int {
			switch {
			case a < b:
				return -1
			case a > b:
				return 1
			default:
				return 0
			}
		}
	}

	tree := rbt.NewWith[float64, *PriceLevel](comparator)
	for _, o := range orders {
		if o.qty <= 0 {
			continue
		}
		if level, ok := tree.Get(o.price); ok {
			level.Quantity += o.qty
			level.Orders++
			continue
		}
		tree.Put(o.price, &PriceLevel{Price: o.price, Quantity: o.qty, Orders: 1})
	}

	out := make([]PriceLevel, 0, levels)
	it := tree.Iterator()
	for it.Next() && len(out) < levels {
		out = append(out, *it.Value())
	}
	return out
}
