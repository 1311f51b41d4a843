// Command workerpool squares a range of integers on a pool of workers fed
// through a bounded job channel, and prints the sum of the results.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"

	"github.com/panyam/gochan"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML pool config")
	jobs := flag.Int("jobs", 100, "Number of jobs to submit")
	verbose := flag.Bool("v", false, "Log channel lifecycle events")
	flag.Parse()

	cfg := gochan.PoolConfig{
		Workers: 4,
		Jobs:    gochan.Config{Name: "squares.jobs", Mode: gochan.ModeBounded, Capacity: 8},
		Results: gochan.Config{Name: "squares.results", Mode: gochan.ModeUnbounded},
	}
	if *configPath != "" {
		loaded, err := gochan.LoadPoolConfig(*configPath)
		if err != nil {
			slog.Error("Failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	reg := prometheus.NewRegistry()
	metrics, err := gochan.NewMetrics(reg, "workerpool")
	if err != nil {
		slog.Error("Failed to register metrics", "error", err)
		os.Exit(1)
	}

	pool, err := gochan.NewWorkerPoolFromConfig(cfg,
		func(ctx context.Context, n int) (int, error) {
			return n * n, nil
		},
		gochan.WithPoolName[int, int]("squares"),
		gochan.WithChannelOptions[int, int](gochan.WithLogrus(logger), gochan.WithMetrics(metrics)),
	)
	if err != nil {
		slog.Error("Failed to start pool", "error", err)
		os.Exit(1)
	}

	go func() {
		defer pool.Close()
		for i := 1; i <= *jobs; i++ {
			if err := pool.Submit(i); err != nil {
				slog.Warn("Submit failed", "job", i, "error", err)
				return
			}
		}
	}()

	sum, count := 0, 0
	for msg := range pool.Results().All() {
		if msg.Error != nil {
			slog.Warn("Job failed", "job", msg.Source, "error", msg.Error)
			continue
		}
		sum += msg.Value
		count++
	}
	pool.Wait()

	slog.Info("Pool finished", "workers", pool.Workers(), "results", count)
	totals, err := channelTotals(reg)
	if err != nil {
		slog.Warn("Failed to gather metrics", "error", err)
	}
	for _, key := range slices.Sorted(maps.Keys(totals)) {
		slog.Info("Channel total", "series", key, "value", totals[key])
	}
	fmt.Println(sum)
}

// channelTotals gathers every counter in g, keyed as name{channel}.
func channelTotals(g prometheus.Gatherer) (map[string]float64, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}
	totals := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if m.GetCounter() == nil {
				continue
			}
			channel := ""
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "channel" {
					channel = lp.GetValue()
				}
			}
			totals[mf.GetName()+"{"+channel+"}"] = m.GetCounter().GetValue()
		}
	}
	return totals, nil
}
