package main

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"lockfree-matcher/config"
	"lockfree-matcher/domain"
	"lockfree-matcher/engine"
)

func newBenchCommand() *cobra.Command {
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure sustained admission throughput under concurrent load",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			runBench(cfg, duration)
			return nil
		},
	}

	cmd.Flags().DurationVar(&duration, "duration", 3*time.Second, "how long to sustain admission load")
	return cmd
}

func runBench(cfg config.Config, duration time.Duration) {
	log := newLogger()
	e := engine.NewWithLimits(log, cfg.PrimaryRetries, cfg.FallbackRetries, cfg.ScanLimit, cfg.MatchIterations)

	var admitted int64
	stop := make(chan struct{})

	var workers sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		workers.Add(1)
		go func(workerID int) {
			defer workers.Done()
			rng := rand.New(rand.NewSource(int64(workerID) + time.Now().UnixNano()))
			var local int64
			for {
				select {
				case <-stop:
					atomic.AddInt64(&admitted, local)
					return
				default:
				}
				symbol := "SYM-0"
				side := domain.SideBuy
				if rng.Intn(2) == 0 {
					side = domain.SideSell
				}
				price := 100.0 + float64(rng.Intn(2000))/10.0
				qty := int32(1 + rng.Intn(500))
				e.Admit(side, symbol, qty, price)
				local++
			}
		}(w)
	}

	time.Sleep(duration)
	close(stop)
	workers.Wait()

	total := atomic.LoadInt64(&admitted)
	qps := float64(total) / duration.Seconds()

	log.Info().
		Int64("admitted", total).
		Dur("duration", duration).
		Float64("orders_per_second", qps).
		Int("workers", cfg.Workers).
		Msg("bench complete")
}
