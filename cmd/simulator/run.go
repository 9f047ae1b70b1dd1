package main

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"lockfree-matcher/config"
	"lockfree-matcher/domain"
	"lockfree-matcher/engine"
	"lockfree-matcher/feed"
	"lockfree-matcher/observe"
)

func newRunCommand() *cobra.Command {
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Submit randomized concurrent order flow and report recovered fills",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			runSimulation(cfg, duration)
			return nil
		},
	}

	cmd.Flags().DurationVar(&duration, "duration", 5*time.Second, "how long to generate order flow")
	return cmd
}

func runSimulation(cfg config.Config, duration time.Duration) {
	log := newLogger()
	e := engine.NewWithLimits(log, cfg.PrimaryRetries, cfg.FallbackRetries, cfg.ScanLimit, cfg.MatchIterations)

	symbols := make([]string, cfg.Symbols)
	for i := range symbols {
		symbols[i] = fmt.Sprintf("SYM-%d", i)
	}

	before := make(map[string]observe.BookSnapshot, len(symbols))
	for _, s := range symbols {
		before[s] = observe.Snapshot(e.OrderBook(), s)
	}

	fills := feed.NewFillFeed(65536)

	reportStop := make(chan struct{})
	var reporterWg sync.WaitGroup
	reporterWg.Add(1)
	go func() {
		defer reporterWg.Done()
		consumer := fills.NewConsumer()
		for {
			select {
			case <-reportStop:
				return
			default:
			}
			consumer.TryConsume()
		}
	}()

	// Producers generate random orders and hand them off through a ring
	// buffer rather than calling Admit directly, decoupling the rate of
	// synthetic order generation from the rate the engine can admit at. A
	// single admitter goroutine drains it, so every Admit call in this
	// subcommand runs on that one goroutine, and the one nil sentinel
	// published after the producers finish is enough to stop it.
	orders := feed.NewOrderFeed(4096)

	var admitterWg sync.WaitGroup
	admitterWg.Add(1)
	go func() {
		defer admitterWg.Done()
		consumer := orders.NewConsumer()
		for {
			order := consumer.Consume()
			if order == nil {
				return
			}
			e.Admit(order.Side, order.Symbol, order.LoadQty(), order.Price)
		}
	}()

	deadline := time.Now().Add(duration)

	var producers sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		producers.Add(1)
		go func(workerID int) {
			defer producers.Done()
			rng := rand.New(rand.NewSource(int64(workerID) + time.Now().UnixNano()))
			for i := 0; i < cfg.OrdersPerWorker; i++ {
				if time.Now().After(deadline) {
					return
				}
				symbol := symbols[rng.Intn(len(symbols))]
				side := domain.SideBuy
				if rng.Intn(2) == 0 {
					side = domain.SideSell
				}
				price := 100.0 + float64(rng.Intn(2000))/10.0
				qty := int32(1 + rng.Intn(500))
				orders.Publish(domain.NewOrder(side, symbol, qty, price))
			}
		}(w)
	}
	producers.Wait()

	orders.Publish(nil)
	admitterWg.Wait()

	var totalFills int
	for _, s := range symbols {
		after := observe.Snapshot(e.OrderBook(), s)
		for _, fill := range observe.Diff(before[s], after) {
			fills.Publish(fill)
			totalFills++
		}
	}

	close(reportStop)
	reporterWg.Wait()

	log.Info().
		Int("symbols", len(symbols)).
		Int("workers", cfg.Workers).
		Int("orders_per_worker", cfg.OrdersPerWorker).
		Int("fills_recovered", totalFills).
		Msg("simulation complete")
}
