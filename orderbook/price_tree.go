package orderbook

import "sort"

// hashMapDepthAggregator groups a resting-order snapshot by price in a map,
// then sorts the resulting distinct prices — adequate for the modest level
// counts a depth inspection realistically asks for.
//
// This is a pure aggregation function rather than a live, mutated
// structure: price ordering lives in orderlist.OrderList under CAS, so
// this package only ever aggregates a read-only snapshot of it.
type hashMapDepthAggregator struct{}

func (hashMapDepthAggregator) Aggregate(orders []priceQty, levels int, isBuySide bool) []PriceLevel {
	if levels <= 0 || len(orders) == 0 {
		return nil
	}

	index := make(map[float64]int, levels)
	var out []PriceLevel

	for _, o := range orders {
		if o.qty <= 0 {
			continue
		}
		if i, ok := index[o.price]; ok {
			out[i].Quantity += o.qty
			out[i].Orders++
			continue
		}
		index[o.price] = len(out)
		out = append(out, PriceLevel{Price: o.price, Quantity: o.qty, Orders: 1})
	}

	sort.Slice(out, func(i, j int) bool {
		if isBuySide {
			return out[i].Price > out[j].Price
		}
		return out[i].Price < out[j].Price
	})

	if len(out) > levels {
		out = out[:levels]
	}
	return out
}
