package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"lockfree-matcher/domain"
)

// TestConcurrentAdmissionThroughput runs many producers calling Admit
// directly for a short fixed window and reports admission QPS; not an
// assertion, just a logged sanity measurement.
func TestConcurrentAdmissionThroughput(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping throughput measurement in -short mode")
	}

	e := newTestEngine()

	numWorkers := 8
	duration := 500 * time.Millisecond

	var orderCount atomic.Int64
	var wg sync.WaitGroup

	stopChan := make(chan struct{})
	start := time.Now()

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			orderID := 0
			for {
				select {
				case <-stopChan:
					return
				default:
				}

				side := domain.SideBuy
				if orderID%2 != 0 {
					side = domain.SideSell
				}
				price := 50000.0 + float64(orderID%200)

				e.Admit(side, fmt.Sprintf("PAIR-%d", workerID), 100, price)
				orderCount.Add(1)
				orderID++
			}
		}(w)
	}

	time.Sleep(duration)
	close(stopChan)
	wg.Wait()

	elapsed := time.Since(start)
	orders := orderCount.Load()
	qps := float64(orders) / elapsed.Seconds()
	t.Logf("admitted %d orders in %v (%.0f orders/sec)", orders, elapsed, qps)
}
