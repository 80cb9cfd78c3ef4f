// Package main runs a synthetic workload under the profiler and prints the report.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/hyp3rd/sectionprof"
	"github.com/hyp3rd/sectionprof/pkg/middleware"
)

var (
	workers    int
	iterations int
	mgmtAddr   string
	debugMode  bool
)

var rootCmd = &cobra.Command{
	Use:   "sectionprof",
	Short: "Profile a synthetic nested workload",
	Long: `Runs a nested, multi-goroutine workload with every step wrapped in a
profiling region, then prints the aggregated call tree.`,
	RunE:         run,
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 4, "Number of concurrent workers")
	rootCmd.Flags().IntVarP(&iterations, "iterations", "n", 20, "Iterations per worker")
	rootCmd.Flags().StringVar(&mgmtAddr, "mgmt-addr", "", "Serve /report and /snapshot on this address until interrupted")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Log every region boundary")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	lvl := level.AllowInfo()
	if debugMode {
		lvl = level.AllowDebug()
	}

	logger = level.NewFilter(logger, lvl)

	prof := sectionprof.New(
		sectionprof.WithLogger(logger),
		sectionprof.WithHooks(middleware.NewLoggingHook(logger)),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	workload(ctx, prof)
	prof.PrintReport()

	if mgmtAddr == "" {
		return nil
	}

	return serve(ctx, prof, logger)
}

func workload(ctx context.Context, prof *sectionprof.Profiler) {
	ctx, region := prof.Begin(ctx, "main")
	defer region.End()

	var wg sync.WaitGroup

	for w := range workers {
		wg.Add(1)

		go func(ctx context.Context) {
			defer wg.Done()

			prof.Measure(ctx, "worker", func(ctx context.Context) {
				for i := range iterations {
					step(ctx, prof, w, i)
				}
			})
		}(prof.Fork(ctx))
	}

	wg.Wait()
}

func step(ctx context.Context, prof *sectionprof.Profiler, worker, iteration int) {
	ctx, region := prof.Begin(ctx, "step")
	defer region.End()

	prof.Measure(ctx, "decode", func(context.Context) {
		time.Sleep(time.Duration(100+worker*10) * time.Microsecond)
	})

	prof.Measure(ctx, "process", func(ctx context.Context) {
		if iteration%5 == 0 {
			prof.Measure(ctx, "flush", func(context.Context) {
				time.Sleep(500 * time.Microsecond)
			})
		}

		time.Sleep(200 * time.Microsecond)
	})
}

func serve(ctx context.Context, prof *sectionprof.Profiler, logger log.Logger) error {
	srv := sectionprof.NewManagementHTTPServer(mgmtAddr, sectionprof.WithMgmtLogger(logger))

	err := srv.Start(ctx, prof)
	if err != nil {
		return err
	}

	_ = level.Info(logger).Log("msg", "serving profiling report", "addr", srv.Address())

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-sigCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
