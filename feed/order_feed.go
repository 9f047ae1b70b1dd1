// Package feed provides a batch-reading, semaphore-synchronized ring
// buffer used to decouple synthetic order generation from admission in the
// workload simulator: producer goroutines publish generated orders here
// instead of calling engine.MatchingEngine.Admit directly, and a separate
// admitter goroutine drains the buffer and calls Admit. The matching core
// itself has no queue in front of it — this sits entirely in cmd/simulator,
// between order generation and the Admit call.
package feed

import (
	"sync/atomic"
	_ "unsafe" // for go:linkname

	"lockfree-matcher/domain"
)

//go:linkname semacquireSafe sync.runtime_Semacquire
func semacquireSafe(s *uint32)

//go:linkname semreleaseSafe sync.runtime_Semrelease
func semreleaseSafe(s *uint32, handoff bool, skipframes int)

// OrderFeed is a fixed-size ring buffer of *domain.Order, synchronized
// purely through semaphore acquire/release (no CAS on the buffer itself):
// every slot transition goes through semacquire/semrelease, giving a
// strict happens-before edge between publish and consume.
type OrderFeed struct {
	buffer     []*domain.Order
	mask       int64
	writeSeq   atomic.Int64
	readSeq    atomic.Int64
	emptySlots uint32
	fullSlots  uint32
}

// OrderFeedConsumer holds a consumer's local read-ahead cache, so a batch
// of ready orders can be drained with one round of semaphore operations
// instead of one round per order.
type OrderFeedConsumer struct {
	feed       *OrderFeed
	localCache [128]*domain.Order
	cacheStart int
	cacheEnd   int
}

// NewOrderFeed builds a ring buffer of size slots. size must be a power
// of two.
func NewOrderFeed(size int) *OrderFeed {
	if size&(size-1) != 0 {
		panic("feed: OrderFeed size must be a power of 2")
	}

	f := &OrderFeed{
		buffer: make([]*domain.Order, size),
		mask:   int64(size - 1),
	}
	for i := 0; i < size; i++ {
		semreleaseSafe(&f.emptySlots, false, 0)
	}
	return f
}

// NewConsumer builds a consumer reading from f.
func (f *OrderFeed) NewConsumer() *OrderFeedConsumer {
	return &OrderFeedConsumer{feed: f}
}

// Publish appends order to the feed, blocking until a slot is free.
func (f *OrderFeed) Publish(order *domain.Order) {
	semacquireSafe(&f.emptySlots)

	seq := f.writeSeq.Add(1) - 1
	index := seq & f.mask
	f.buffer[index] = order

	semreleaseSafe(&f.fullSlots, false, 0)
}

// Consume blocks until an order is available and returns it.
func (c *OrderFeedConsumer) Consume() *domain.Order {
	if c.cacheStart < c.cacheEnd {
		order := c.localCache[c.cacheStart]
		c.cacheStart++
		return order
	}

	c.fillCache()

	order := c.localCache[c.cacheStart]
	c.cacheStart++
	return order
}

// fillCache blocks for the first order, then opportunistically drains up
// to 127 more without blocking further than necessary.
func (c *OrderFeedConsumer) fillCache() {
	f := c.feed

	semacquireSafe(&f.fullSlots)
	seq := f.readSeq.Add(1) - 1
	index := seq & f.mask
	c.localCache[0] = f.buffer[index]
	semreleaseSafe(&f.emptySlots, false, 0)

	acquired := 1

	maxBatch := len(c.localCache)
	available := int(f.writeSeq.Load() - f.readSeq.Load())
	if available > maxBatch-1 {
		available = maxBatch - 1
	}

	for i := 0; i < available; i++ {
		semacquireSafe(&f.fullSlots)

		seq := f.readSeq.Add(1) - 1
		index := seq & f.mask
		c.localCache[acquired] = f.buffer[index]

		semreleaseSafe(&f.emptySlots, false, 0)
		acquired++
	}

	c.cacheStart = 0
	c.cacheEnd = acquired
}
