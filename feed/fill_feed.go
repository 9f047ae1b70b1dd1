package feed

import (
	"sync/atomic"

	"lockfree-matcher/domain"
)

// FillFeed is a fixed-size ring buffer of *domain.FillObservation for the
// simulator's reporter goroutine. Unlike OrderFeed it offers a non-blocking
// TryConsume, since a reporter should never stall the producers waiting on
// a diff-observed fill that may never come.
type FillFeed struct {
	buffer     []*domain.FillObservation
	mask       int64
	writeSeq   atomic.Int64
	readSeq    atomic.Int64
	emptySlots uint32
	fullSlots  uint32
}

// FillFeedConsumer holds a consumer's local read-ahead cache.
type FillFeedConsumer struct {
	feed       *FillFeed
	localCache [128]*domain.FillObservation
	cacheStart int
	cacheEnd   int
}

// NewFillFeed builds a ring buffer of size slots. size must be a power of
// two.
func NewFillFeed(size int) *FillFeed {
	if size&(size-1) != 0 {
		panic("feed: FillFeed size must be a power of 2")
	}

	f := &FillFeed{
		buffer: make([]*domain.FillObservation, size),
		mask:   int64(size - 1),
	}
	for i := 0; i < size; i++ {
		semreleaseSafe(&f.emptySlots, false, 0)
	}
	return f
}

// NewConsumer builds a consumer reading from f.
func (f *FillFeed) NewConsumer() *FillFeedConsumer {
	return &FillFeedConsumer{feed: f}
}

// Publish appends a fill observation, blocking until a slot is free.
func (f *FillFeed) Publish(fill *domain.FillObservation) {
	semacquireSafe(&f.emptySlots)

	seq := f.writeSeq.Add(1) - 1
	index := seq & f.mask
	f.buffer[index] = fill

	semreleaseSafe(&f.fullSlots, false, 0)
}

// TryConsume returns the next fill observation without blocking, or
// (nil, false) if none is currently available.
func (c *FillFeedConsumer) TryConsume() (*domain.FillObservation, bool) {
	if c.cacheStart < c.cacheEnd {
		fill := c.localCache[c.cacheStart]
		c.cacheStart++
		return fill, true
	}

	if !c.tryFillCache() {
		return nil, false
	}

	fill := c.localCache[c.cacheStart]
	c.cacheStart++
	return fill, true
}

func (c *FillFeedConsumer) tryFillCache() bool {
	f := c.feed

	available := int(f.writeSeq.Load() - f.readSeq.Load())
	if available == 0 {
		return false
	}
	if available > len(c.localCache) {
		available = len(c.localCache)
	}

	acquired := 0
	for i := 0; i < available; i++ {
		slots := atomic.LoadUint32(&f.fullSlots)
		if slots == 0 {
			break
		}
		if !atomic.CompareAndSwapUint32(&f.fullSlots, slots, slots-1) {
			continue
		}

		seq := f.readSeq.Add(1) - 1
		index := seq & f.mask
		c.localCache[acquired] = f.buffer[index]

		semreleaseSafe(&f.emptySlots, false, 0)
		acquired++
	}

	if acquired == 0 {
		return false
	}

	c.cacheStart = 0
	c.cacheEnd = acquired
	return true
}
