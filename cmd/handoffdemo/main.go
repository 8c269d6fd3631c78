// Program handoffdemo runs a slow worker fed by fast producers through a
// debouncing handoff channel, and logs what the worker actually sees.
//
// Usage:
//
//	handoffdemo [-config demo.yaml] [-producers n] [-interval d] [-delay d] ...
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/creachadair/handoff/metrics"
	"github.com/creachadair/handoff/snapshot"
	"github.com/creachadair/handoff/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		logrus.Fatal(err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("handoffdemo", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path of YAML configuration file")
	var flagCfg Config
	fs.StringVar(&flagCfg.Name, "name", "", "Worker name for logs and metrics")
	fs.StringVar(&flagCfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.DurationVar(&flagCfg.Delay, "delay", 0, "Simulated processing time per value")
	fs.IntVar(&flagCfg.Producers, "producers", 0, "Number of producer goroutines")
	fs.DurationVar(&flagCfg.Interval, "interval", 0, "Time between sends per producer")
	fs.DurationVar(&flagCfg.Duration, "duration", 0, "How long to run (0 means until interrupted)")
	fs.StringVar(&flagCfg.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics at this address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			cfg.Name = flagCfg.Name
		case "log-level":
			cfg.LogLevel = flagCfg.LogLevel
		case "delay":
			cfg.Delay = flagCfg.Delay
		case "producers":
			cfg.Producers = flagCfg.Producers
		case "interval":
			cfg.Interval = flagCfg.Interval
		case "duration":
			cfg.Duration = flagCfg.Duration
		case "metrics-addr":
			cfg.MetricsAddr = flagCfg.MetricsAddr
		}
	})
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logrus.New()
	lvl, _ := logrus.ParseLevel(cfg.LogLevel) // checked by validate
	log.SetLevel(lvl)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Duration)
		defer cancel()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	opts := []worker.Option{
		worker.WithName(cfg.Name),
		worker.WithLogger(log),
		worker.WithMetrics(metrics.NewRegistry(reg)),
	}

	var srv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("Metrics server failed")
			}
		}()
		log.Infof("Serving metrics at http://%s/metrics", cfg.MetricsAddr)
	}

	step := &worker.Delay[*snapshot.Tree]{
		Duration: cfg.Delay,
		Summary:  (*snapshot.Tree).String,
		Logger:   log.WithField("worker", cfg.Name),
	}
	t := worker.Start(step.Process, opts...)

	var gen atomic.Uint64
	var wg sync.WaitGroup
	for i := range cfg.Producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			produce(ctx, t, i, cfg.Interval, &gen)
		}()
	}
	wg.Wait()

	log.Info("Producers finished; waiting for worker")
	werr := t.Close()
	if srv != nil {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(sctx)
	}
	return werr
}

// produce sends a fresh tree to t every interval until ctx ends.
func produce(ctx context.Context, t *worker.Thread[*snapshot.Tree], id int, interval time.Duration, gen *atomic.Uint64) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			n := gen.Add(1)
			roots := make([]snapshot.Fragment, 1+int(n%5))
			for i := range roots {
				roots[i] = snapshot.Fragment{Name: fmt.Sprintf("p%d-f%d", id, i)}
			}
			t.Send(snapshot.New(n, roots...))
		}
	}
}
