package domain

import (
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// IDGenerator generates unique, allocation-light IDs for orders and fill
// observations.
//
// Performance notes (carried over from the original matching-engine
// ingestion path this was lifted from):
//   - strings.Builder + sync.Pool avoids per-call allocation.
//   - an atomic counter alone guarantees uniqueness; no timestamp needed.
//   - strconv, not fmt, for the number-to-string conversion.
type IDGenerator struct {
	prefix      string
	counter     uint64
	builderPool sync.Pool
}

// NewIDGenerator creates a new ID generator with the given prefix.
func NewIDGenerator(prefix string) *IDGenerator {
	gen := &IDGenerator{prefix: prefix}
	gen.builderPool = sync.Pool{
		New: func() any {
			b := &strings.Builder{}
			b.Grow(24) // prefix + ~16 digit counter
			return b
		},
	}
	return gen
}

// Next generates the next unique ID: prefix + counter (e.g. "O1", "O2"...).
// Uniqueness is guaranteed by the atomic counter increment.
func (g *IDGenerator) Next() string {
	count := atomic.AddUint64(&g.counter, 1)

	b := g.builderPool.Get().(*strings.Builder)
	defer func() {
		b.Reset()
		g.builderPool.Put(b)
	}()

	b.WriteString(g.prefix)
	b.WriteString(strconv.FormatUint(count, 10))
	return b.String()
}
