package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"lockfree-matcher/config"
	"lockfree-matcher/domain"
	"lockfree-matcher/engine"
)

func newProfileCommand() *cobra.Command {
	var duration time.Duration
	var cpuProfilePath string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Capture a CPU profile while admitting sustained concurrent order flow",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			return runProfile(cfg, duration, cpuProfilePath)
		},
	}

	cmd.Flags().DurationVar(&duration, "duration", 10*time.Second, "how long to drive load under the profiler")
	cmd.Flags().StringVar(&cpuProfilePath, "cpu-profile", "cpu.prof", "output path for the CPU profile")
	return cmd
}

func runProfile(cfg config.Config, duration time.Duration, cpuProfilePath string) error {
	log := newLogger()

	cpuFile, err := os.Create(cpuProfilePath)
	if err != nil {
		return fmt.Errorf("create cpu profile: %w", err)
	}
	defer cpuFile.Close()

	if err := pprof.StartCPUProfile(cpuFile); err != nil {
		return fmt.Errorf("start cpu profile: %w", err)
	}
	defer pprof.StopCPUProfile()

	e := engine.NewWithLimits(log, cfg.PrimaryRetries, cfg.FallbackRetries, cfg.ScanLimit, cfg.MatchIterations)

	numCPU := runtime.NumCPU()
	numWorkers := numCPU - 2
	if numWorkers < 1 {
		numWorkers = 1
	}

	var admitted atomic.Int64

	log.Info().
		Int("cpu", numCPU).
		Int("workers", numWorkers).
		Dur("duration", duration).
		Str("cpu_profile", cpuProfilePath).
		Msg("profiling started")

	stop := make(chan struct{})
	var workers sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		workers.Add(1)
		go func(workerID int) {
			defer workers.Done()
			orderID := 0
			for {
				select {
				case <-stop:
					return
				default:
				}
				side := domain.SideBuy
				if orderID%2 != 0 {
					side = domain.SideSell
				}
				price := 50000.0 + float64(orderID%200)
				e.Admit(side, "BTCUSDT", 1, price)
				admitted.Add(1)
				orderID++
			}
		}(w)
	}

	start := time.Now()
	time.Sleep(duration)
	close(stop)
	workers.Wait()
	elapsed := time.Since(start)

	total := admitted.Load()
	log.Info().
		Int64("admitted", total).
		Float64("orders_per_second", float64(total)/elapsed.Seconds()).
		Str("next_step", fmt.Sprintf("go tool pprof -http=:8080 %s", cpuProfilePath)).
		Msg("profiling complete")

	return nil
}
